package domain

// AnalysisParams é o saco de parâmetros enviado pelo painel para uma análise.
// Cada serviço consome apenas os campos que lhe dizem respeito.
type AnalysisParams struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	// Google Ads: ID do cliente com exatamente 10 dígitos
	CustomerID string `json:"customer_id,omitempty"`

	// Google Analytics: ID numérico da propriedade GA4
	PropertyID string `json:"property_id,omitempty"`

	// Meta Ads e Microsoft Ads: ID da conta de anúncios
	AccountID string `json:"account_id,omitempty"`

	// Microsoft Ads: ID da conta de cliente exigido nos cabeçalhos da API
	CustomerAccountID string `json:"customer_account_id,omitempty"`

	// Meta Ads: token colado pelo usuário na própria consulta; quando
	// presente tem precedência sobre a credencial armazenada
	AccessToken string `json:"access_token,omitempty"`
}

// HasDateRange verifica se o período obrigatório foi informado
func (p *AnalysisParams) HasDateRange() bool {
	return p != nil && p.StartDate != "" && p.EndDate != ""
}

// CampaignMetrics é a fatia por campanha do resultado normalizado
type CampaignMetrics struct {
	Name        string  `json:"name"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        string  `json:"cost"`
	CTR         string  `json:"ctr"`
	Conversions float64 `json:"conversions,omitempty"`
	Reach       int64   `json:"reach,omitempty"`
}

// DailyMetrics é uma linha diária do Google Analytics; esse fornecedor
// devolve linhas por data em vez de totais agregados
type DailyMetrics struct {
	Date               string  `json:"date"`
	Sessions           int64   `json:"sessions"`
	TotalUsers         int64   `json:"total_users"`
	BounceRate         float64 `json:"bounce_rate"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	PurchaseRevenue    float64 `json:"purchase_revenue"`
	Transactions       int64   `json:"transactions"`
}

// AnalysisResult é o formato único para o qual todos os formatos de
// relatório dos fornecedores são normalizados. Transiente: produzido por
// requisição e nunca persistido.
type AnalysisResult struct {
	Service           Service           `json:"service"`
	Impressions       int64             `json:"impressions"`
	Clicks            int64             `json:"clicks"`
	Cost              string            `json:"cost"`
	CTR               string            `json:"ctr"`
	Conversions       float64           `json:"conversions,omitempty"`
	CostPerConversion string            `json:"cost_per_conversion,omitempty"`
	Reach             int64             `json:"reach,omitempty"`
	Campaigns         []CampaignMetrics `json:"campaigns,omitempty"`
	Rows              []DailyMetrics    `json:"rows,omitempty"`
	RawRowCount       int               `json:"raw_row_count"`
}
