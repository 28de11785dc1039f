package domain

// ConnectionStatus é o nível de saúde apresentado pelo painel
type ConnectionStatus string

const (
	StatusError   ConnectionStatus = "error"
	StatusWarning ConnectionStatus = "warning"
	StatusPending ConnectionStatus = "pending"
	StatusSuccess ConnectionStatus = "success"
)

// StatusResult é a avaliação pontual de uma conexão usuário/serviço.
// Efêmero: calculado sob demanda e guardado apenas no cache com TTL.
type StatusResult struct {
	Status            ConnectionStatus `json:"status"`
	Connected         bool             `json:"connected"`
	HasCredential     bool             `json:"has_credential"`
	HasRequiredScopes bool             `json:"has_required_scopes"`
	HasSubAccounts    bool             `json:"has_sub_accounts"`
	Message           string           `json:"message"`
	Scope             string           `json:"scope,omitempty"`
}
