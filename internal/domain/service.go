package domain

// Service identifica a plataforma de origem de uma análise ou credencial
type Service string

const (
	ServiceTrackingData    Service = "tracking_data"
	ServiceGoogleAnalytics Service = "google_analytics"
	ServiceGoogleAds       Service = "google_ads"
	ServiceMetaAds         Service = "meta_ads"
	ServiceMicrosoftAds    Service = "microsoft_ads"
)

// AnalyzableServices lista os serviços que possuem um adaptador de análise.
// TrackingData existe apenas como tipo de consulta salva e não consulta
// nenhuma API externa.
var AnalyzableServices = []Service{
	ServiceGoogleAnalytics,
	ServiceGoogleAds,
	ServiceMetaAds,
	ServiceMicrosoftAds,
}

// Valid verifica se o serviço é um dos valores conhecidos
func (s Service) Valid() bool {
	switch s {
	case ServiceTrackingData, ServiceGoogleAnalytics, ServiceGoogleAds, ServiceMetaAds, ServiceMicrosoftAds:
		return true
	}
	return false
}

// Analyzable verifica se o serviço possui um adaptador de análise
func (s Service) Analyzable() bool {
	for _, svc := range AnalyzableServices {
		if s == svc {
			return true
		}
	}
	return false
}
