package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/infrastructure/cache"
	"github.com/vfg2006/ads-analytics-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleanalytics"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleoauth"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/meta"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/microsoftads"
	"github.com/vfg2006/ads-analytics-api/infrastructure/repository"
	"github.com/vfg2006/ads-analytics-api/internal/api"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
	"github.com/vfg2006/ads-analytics-api/internal/scheduler"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-analytics-api/internal/usecases/connecting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	credentialRepo := repository.NewCredentialRepository(pgConn)
	savedQueryRepo := repository.NewSavedQueryRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg.Auth)

	statusCache := newStatusCache(ctx, cfg.Redis)

	exchanger := googleoauth.NewExchanger(cfg.Google)

	googleAdsService := googleads.New(googleads.NewClient(cfg.GoogleAds), exchanger)
	googleAnalyticsService := googleanalytics.New(googleanalytics.NewClient(cfg.GoogleAnalytics), exchanger)
	metaService := meta.New(meta.NewClient(cfg.Meta))
	microsoftAdsService := microsoftads.New(microsoftads.NewClient(cfg.MicrosoftAds), cfg.MicrosoftAds)

	analyzer := analyzing.NewService(credentialRepo, map[domain.Service]analyzing.ProviderAdapter{
		domain.ServiceGoogleAds:       googleAdsService,
		domain.ServiceGoogleAnalytics: googleAnalyticsService,
		domain.ServiceMetaAds:         metaService,
		domain.ServiceMicrosoftAds:    microsoftAdsService,
	})

	statusChecker := connecting.NewService(credentialRepo, map[domain.Service]connecting.AccountProber{
		domain.ServiceGoogleAds:       googleAdsService,
		domain.ServiceGoogleAnalytics: googleAnalyticsService,
		domain.ServiceMetaAds:         metaService,
		domain.ServiceMicrosoftAds:    microsoftAdsService,
	}, statusCache, cfg.StatusCheck)

	// Inicia o agendador de renovação de tokens em background
	tokenRefreshService := scheduler.NewTokenRefreshService(credentialRepo, exchanger, cfg.TokenRefresh)
	if err := tokenRefreshService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de renovação de tokens")
	} else {
		logrus.Info("Agendador de renovação de tokens iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		analyzer,
		statusChecker,
		authenticator,
		credentialRepo,
		savedQueryRepo,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// newStatusCache conecta ao Redis quando configurado; sem Redis o
// verificador de status roda com o cache desabilitado
func newStatusCache(ctx context.Context, cfg config.Redis) cache.StatusCache {
	if cfg.Addr == "" {
		logrus.Info("Redis não configurado, cache de status desabilitado")
		return cache.NewNoopCache()
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Warn("Erro ao conectar ao Redis, cache de status desabilitado")
		return cache.NewNoopCache()
	}

	return redisCache
}
