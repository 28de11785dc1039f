package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-analytics-api/infrastructure/integrator/googleoauth"
	"github.com/vfg2006/ads-analytics-api/infrastructure/repository"
	"github.com/vfg2006/ads-analytics-api/internal/config"
	"github.com/vfg2006/ads-analytics-api/internal/domain"
)

// Janela de antecedência da renovação: credenciais que expiram dentro
// desse intervalo são renovadas na próxima rodada
const refreshWindow = 24 * time.Hour

// TokenRefreshService renova proativamente os refresh tokens do Google
// antes de expirarem, para que as análises não esbarrem em token morto.
// Meta e Microsoft usam tokens de longa duração sem rota de renovação
// programática, então ficam fora daqui.
type TokenRefreshService struct {
	scheduler      *gocron.Scheduler
	cfg            config.TokenRefresh
	credentialRepo repository.CredentialRepository
	exchanger      *googleoauth.Exchanger
	refreshRunning bool
	refreshMutex   sync.Mutex
}

// NewTokenRefreshService cria uma nova instância do serviço de renovação de tokens
func NewTokenRefreshService(
	credentialRepo repository.CredentialRepository,
	exchanger *googleoauth.Exchanger,
	cfg config.TokenRefresh,
) *TokenRefreshService {
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":   cfg.CronSchedule,
		"refresh_enabled": cfg.Enabled,
	}).Info("Configuração do agendador de renovação de tokens carregada")

	return &TokenRefreshService{
		scheduler:      scheduler,
		cfg:            cfg,
		credentialRepo: credentialRepo,
		exchanger:      exchanger,
	}
}

// Start inicia o agendador
func (s *TokenRefreshService) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logrus.Info("Renovação proativa de tokens desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.cfg.CronSchedule).Info("Iniciando agendador de renovação de tokens")

	_, err := s.scheduler.Cron(s.cfg.CronSchedule).Do(func() {
		s.refreshExpiringTokens(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar renovação de tokens: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de renovação de tokens")
		s.scheduler.Stop()
	}()

	return nil
}

// refreshExpiringTokens busca as credenciais perto de expirar e renova
// uma a uma. Falha individual não aborta a rodada.
func (s *TokenRefreshService) refreshExpiringTokens(ctx context.Context) {
	s.refreshMutex.Lock()
	if s.refreshRunning {
		s.refreshMutex.Unlock()
		logrus.Info("Renovação de tokens já em andamento, ignorando")
		return
	}
	s.refreshRunning = true
	s.refreshMutex.Unlock()

	defer func() {
		s.refreshMutex.Lock()
		s.refreshRunning = false
		s.refreshMutex.Unlock()
	}()

	expiring, err := s.credentialRepo.ListExpiring(refreshWindow)
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar credenciais perto de expirar")
		return
	}

	if len(expiring) == 0 {
		logrus.Info("Nenhuma credencial perto de expirar")
		return
	}

	logrus.WithField("count", len(expiring)).Info("Renovando credenciais perto de expirar")

	var refreshed, failed int
	for _, credential := range expiring {
		if err := s.refreshOne(ctx, credential); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{
				"user_id": credential.UserID,
				"service": credential.Provider,
				"error":   err.Error(),
			}).Warn("Falha ao renovar credencial")
			continue
		}
		refreshed++
	}

	logrus.WithFields(logrus.Fields{
		"refreshed": refreshed,
		"failed":    failed,
	}).Info("Rodada de renovação de tokens concluída")
}

func (s *TokenRefreshService) refreshOne(ctx context.Context, credential *domain.Credential) error {
	// Só serviços do Google possuem refresh token renovável
	if credential.Provider != domain.ServiceGoogleAds && credential.Provider != domain.ServiceGoogleAnalytics {
		return nil
	}
	if credential.RefreshToken == "" {
		return fmt.Errorf("credencial sem refresh token")
	}

	tokenResp, err := s.exchanger.RefreshAccessToken(ctx, credential.Provider, credential.RefreshToken)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	credential.AccessToken = tokenResp.AccessToken
	credential.ExpiresAt = &expiresAt

	return s.credentialRepo.UpsertCredential(credential)
}
