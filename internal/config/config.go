package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App             App             `mapstructure:",squash"`
	Server          Server          `mapstructure:",squash"`
	Database        Database        `mapstructure:",squash"`
	Redis           Redis           `mapstructure:",squash"`
	Auth            Auth            `mapstructure:",squash"`
	Google          Google          `mapstructure:",squash"`
	GoogleAds       GoogleAds       `mapstructure:",squash"`
	GoogleAnalytics GoogleAnalytics `mapstructure:",squash"`
	Meta            Meta            `mapstructure:",squash"`
	MicrosoftAds    MicrosoftAds    `mapstructure:",squash"`
	StatusCheck     StatusCheck     `mapstructure:",squash"`
	TokenRefresh    TokenRefresh    `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// Redis configura o cache de status; quando Addr está vazio o serviço
// roda com um cache desabilitado (no-op) sem perda de correção
type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Google guarda as credenciais do app OAuth compartilhadas entre
// Google Ads e Google Analytics
type Google struct {
	ClientID     string `mapstructure:"google_client_id"`
	ClientSecret string `mapstructure:"google_client_secret"`
	TokenURL     string `mapstructure:"google_token_url"`
}

type GoogleAds struct {
	BaseURL         string `mapstructure:"google_ads_base_url"`
	DeveloperToken  string `mapstructure:"google_ads_developer_token"`
	LoginCustomerID string `mapstructure:"google_ads_login_customer_id"`
}

type GoogleAnalytics struct {
	DataURL  string `mapstructure:"google_analytics_data_url"`
	AdminURL string `mapstructure:"google_analytics_admin_url"`
}

type Meta struct {
	BaseURL string `mapstructure:"meta_base_url"`
	Version string `mapstructure:"meta_version"`
	URL     string `mapstructure:"-"`
}

type MicrosoftAds struct {
	ReportingURL        string `mapstructure:"microsoft_ads_reporting_url"`
	CustomerMgmtURL     string `mapstructure:"microsoft_ads_customer_mgmt_url"`
	DeveloperToken      string `mapstructure:"microsoft_ads_developer_token"`
	ReportPollSeconds   int    `mapstructure:"microsoft_ads_report_poll_seconds"`
	ReportMaxPollCount  int    `mapstructure:"microsoft_ads_report_max_poll_count"`
	DownloadTimeoutSecs int    `mapstructure:"microsoft_ads_download_timeout_seconds"`
}

// StatusCheck parametriza o verificador de conexões: timeout da sondagem
// e os dois TTLs de cache (resultado estável vs. resultado transiente)
type StatusCheck struct {
	ProbeTimeoutSeconds int `mapstructure:"status_probe_timeout_seconds"`
	StableTTLSeconds    int `mapstructure:"status_stable_ttl_seconds"`
	TransientTTLSeconds int `mapstructure:"status_transient_ttl_seconds"`
}

type TokenRefresh struct {
	CronSchedule string `mapstructure:"token_refresh_cron"`
	Enabled      bool   `mapstructure:"token_refresh_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_analytics")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_ADDR", "") // vazio = cache desabilitado
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("GOOGLE_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")

	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com/v17")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")

	viper.SetDefault("GOOGLE_ANALYTICS_DATA_URL", "https://analyticsdata.googleapis.com/v1beta")
	viper.SetDefault("GOOGLE_ANALYTICS_ADMIN_URL", "https://analyticsadmin.googleapis.com/v1beta")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")

	viper.SetDefault("MICROSOFT_ADS_REPORTING_URL", "https://reporting.api.bingads.microsoft.com/Reporting/v13")
	viper.SetDefault("MICROSOFT_ADS_CUSTOMER_MGMT_URL", "https://clientcenter.api.bingads.microsoft.com/CustomerManagement/v13")
	viper.SetDefault("MICROSOFT_ADS_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("MICROSOFT_ADS_REPORT_POLL_SECONDS", 5)
	viper.SetDefault("MICROSOFT_ADS_REPORT_MAX_POLL_COUNT", 12)
	viper.SetDefault("MICROSOFT_ADS_DOWNLOAD_TIMEOUT_SECONDS", 30)

	viper.SetDefault("STATUS_PROBE_TIMEOUT_SECONDS", 20)
	viper.SetDefault("STATUS_STABLE_TTL_SECONDS", 3600)
	viper.SetDefault("STATUS_TRANSIENT_TTL_SECONDS", 600)

	// Renovação proativa de tokens (desligada por padrão; a renovação
	// sob demanda cobre o fluxo normal)
	viper.SetDefault("TOKEN_REFRESH_CRON", "0 */6 * * *")
	viper.SetDefault("TOKEN_REFRESH_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
