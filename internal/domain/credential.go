package domain

import (
	"strings"
	"time"
)

// Credential representa a concessão OAuth armazenada para um par usuário/serviço.
// Existe no máximo uma credencial viva por (user_id, provider); o callback OAuth
// faz upsert e o disconnect remove a linha.
type Credential struct {
	UserID       int        `json:"user_id"`
	Provider     Service    `json:"provider"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	Scopes       []string   `json:"scopes"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasScope verifica se o escopo concedido contém o escopo requerido.
// A comparação é por substring porque o Google devolve URLs completas
// ("https://www.googleapis.com/auth/adwords") enquanto a configuração
// usa apenas o sufixo do escopo.
func (c *Credential) HasScope(required string) bool {
	for _, scope := range c.Scopes {
		if strings.Contains(scope, required) {
			return true
		}
	}
	return false
}

// ExpiresWithin informa se o token expira dentro da janela dada.
// Credenciais sem data de expiração nunca expiram por tempo.
func (c *Credential) ExpiresWithin(window time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(*c.ExpiresAt) < window
}
