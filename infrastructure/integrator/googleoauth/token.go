package googleoauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// TokenResponse representa a resposta do endpoint de token do Google
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Exchanger troca refresh tokens por access tokens de curta duração.
// Compartilhado entre Google Ads e Google Analytics, que usam o mesmo
// app OAuth.
type Exchanger struct {
	cfg    config.Google
	client *http.Client
}

func NewExchanger(cfg config.Google) *Exchanger {
	return &Exchanger{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RefreshAccessToken obtém um access token novo a partir do refresh token
// armazenado. O Google invalida refresh tokens revogados com o erro
// "invalid_grant", que é o sinal de que o usuário precisa reconectar.
func (e *Exchanger) RefreshAccessToken(ctx context.Context, service domain.Service, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, domain.NewAuthError(service, domain.ReasonTokenExpired,
			"refresh token ausente, reconecte a conta", nil)
	}

	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("client_id", e.cfg.ClientID)
	form.Add("client_secret", e.cfg.ClientSecret)
	form.Add("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.NewVendorError(service, "erro ao criar requisição de token", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, domain.NewTimeoutError(service, "timeout ao renovar token do Google", err)
		}
		return nil, domain.NewVendorError(service, "erro ao renovar token do Google", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewVendorError(service, "erro ao ler resposta do token", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyStr := string(body)
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   bodyStr,
		}).Warn("googleoauth: falha ao renovar access token")

		if strings.Contains(bodyStr, "invalid_grant") {
			return nil, domain.NewAuthError(service, domain.ReasonTokenExpired,
				"refresh token expirado ou revogado, reconecte a conta",
				fmt.Errorf("status %d: %s", resp.StatusCode, bodyStr))
		}

		return nil, domain.NewVendorError(service,
			"erro ao renovar token do Google",
			fmt.Errorf("status %d: %s", resp.StatusCode, bodyStr))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, domain.NewVendorError(service, "erro ao decodificar resposta do token", err)
	}

	if tokenResp.AccessToken == "" {
		return nil, domain.NewVendorError(service, "token retornado pela API é vazio", nil)
	}

	return &tokenResp, nil
}
