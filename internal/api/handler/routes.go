package handler

import (
	"net/http"

	"github.com/vfg2006/ads-analytics-api/infrastructure/repository"
	"github.com/vfg2006/ads-analytics-api/internal/api/handler/router"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/connecting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/me",
			Method:  http.MethodGet,
			Handler: GetMe(service),
		},
	}
}

func Analysis(service analyzing.Analyzer) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/analyze/:service",
			Method:  http.MethodPost,
			Handler: RunAnalysis(service),
		},
	}
}

func Connections(checker connecting.StatusChecker, credentialRepo repository.CredentialRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/connections/:provider/status",
			Method:  http.MethodGet,
			Handler: GetConnectionStatus(checker),
		},
		{
			Path:    "/v1/connections/:provider/callback",
			Method:  http.MethodPost,
			Handler: ConnectionCallback(credentialRepo),
		},
		{
			Path:    "/v1/connections/:provider",
			Method:  http.MethodDelete,
			Handler: Disconnect(credentialRepo),
		},
	}
}

func SavedQueries(queryRepo repository.SavedQueryRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/queries",
			Method:  http.MethodGet,
			Handler: ListQueries(queryRepo),
		},
		{
			Path:    "/v1/queries",
			Method:  http.MethodPost,
			Handler: CreateQuery(queryRepo),
		},
		{
			Path:    "/v1/queries/:id",
			Method:  http.MethodPut,
			Handler: UpdateQuery(queryRepo),
		},
		{
			Path:    "/v1/queries/:id",
			Method:  http.MethodDelete,
			Handler: DeleteQuery(queryRepo),
		},
	}
}
