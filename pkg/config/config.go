package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config representa a configuração completa da aplicação
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Auth          AuthConfig
	LLM           LLMConfig
	Mail          MailConfig
	HotelAPI      HotelAPIConfig
	Pipeline      PipelineConfig
	Notifications NotificationsConfig
	Metrics       MetricsConfig
	Logging       LoggingConfig
	Tracing       TracingConfig
}

// ServerConfig contém configurações do servidor HTTP
type ServerConfig struct {
	Port           int
	Host           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TLS            bool
	CertFile       string
	KeyFile        string
	Domains        []string
	CORSOrigins    []string
}

// DatabaseConfig contém configurações do banco de dados
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
	SlowThreshold   time.Duration
	MigrationDir    string
	SkipMigrations  bool
}

// RedisOptions contém configurações específicas para Redis
type RedisOptions struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

// CacheConfig contém configurações do cache
type CacheConfig struct {
	Enabled bool
	Type    string // redis, memory
	TTL     time.Duration
	Redis   RedisOptions
}

// AuthConfig contém configurações de autenticação do dashboard
type AuthConfig struct {
	DashboardAPIKey string
	JWTSecret       string
	TokenExpiration time.Duration
}

// LLMConfig contém configurações da API Gemini usada pelos agentes
type LLMConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	MaxTokens      int
	Temperature    float64
	Retries        int
	RequestsPerMin int // orçamento de chamadas aplicado via rate limiter
	RequestTimeout time.Duration

	// Embeddings usados pela busca de respostas anteriores similares
	EmbeddingsAPIKey  string
	EmbeddingsModel   string
	EmbeddingsBaseURL string
}

// MailConfig contém configurações IMAP/SMTP da caixa do hotel
type MailConfig struct {
	Address       string // endereço da caixa (info@das-elb.de)
	Password      string
	IMAPHost      string
	IMAPPort      int
	SMTPHost      string
	SMTPPort      int
	ImportFolders []string // pastas varridas pela importação completa
}

// HotelAPIConfig aponta para as APIs existentes do hotel
type HotelAPIConfig struct {
	ManagementBase   string
	ReservationsBase string
	Timeout          time.Duration
}

// PipelineConfig contém parâmetros da pipeline multi-agente
type PipelineConfig struct {
	PollInterval     time.Duration
	MaxBodyChars     int
	MaxAgentParallel int
	PromptVersion    string
}

// NotificationsConfig contém configurações de alertas à equipe
type NotificationsConfig struct {
	WhatsAppEnabled    bool
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	ManagerWhatsApp    string
	ManagerEmail       string
}

// MetricsConfig contém configurações de métricas
type MetricsConfig struct {
	Enabled        bool
	PrometheusPath string
}

// LoggingConfig contém configurações de logging
type LoggingConfig struct {
	Level      string
	Format     string // json, console
	Production bool
}

// TracingConfig contém configurações de rastreamento
type TracingConfig struct {
	Enabled       bool
	Endpoint      string
	ServiceName   string
	SamplingRatio float64
}

// LoadConfig carrega a configuração de diversas fontes (arquivo, env, defaults)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Definir valores padrão
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Locais para procurar arquivos de configuração
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/emailagent")

	// Ler arquivo de configuração (ausência não é erro)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
		}
	}

	// Ler variáveis de ambiente com prefixo EA_
	v.SetEnvPrefix("EA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("erro ao mapear configuração: %w", err)
	}

	// PORT sem prefixo tem precedência — contrato da plataforma de containers
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("valor inválido para PORT: %q", port)
		}
		config.Server.Port = p
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults define valores padrão para a configuração
func setDefaults(v *viper.Viper) {
	// Servidor
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "60s")
	v.SetDefault("server.maxHeaderBytes", 1<<20) // 1 MB
	v.SetDefault("server.tls", false)
	v.SetDefault("server.corsOrigins", []string{"http://localhost:3001"})

	// Banco de dados
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./daselb_agent.db")
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.connMaxLifetime", "1h")
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.slowThreshold", "200ms")
	v.SetDefault("database.migrationDir", "./migrations")
	v.SetDefault("database.skipMigrations", false)

	// Cache
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.redis.min_idle_conns", 5)
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")
	v.SetDefault("cache.redis.dial_timeout", "5s")

	// Autenticação
	v.SetDefault("auth.dashboardAPIKey", "change-me")
	v.SetDefault("auth.tokenExpiration", "24h")

	// LLM (Gemini)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.maxTokens", 4096)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.retries", 5)
	v.SetDefault("llm.requestsPerMin", 120)
	v.SetDefault("llm.requestTimeout", "60s")
	v.SetDefault("llm.embeddingsModel", "text-embedding-3-small")
	v.SetDefault("llm.embeddingsBaseURL", "https://api.openai.com/v1")

	// Caixa de email do hotel (IONOS Exchange)
	v.SetDefault("mail.address", "info@das-elb.de")
	v.SetDefault("mail.imapHost", "exchange.ionos.eu")
	v.SetDefault("mail.imapPort", 993)
	v.SetDefault("mail.smtpHost", "smtp.exchange.ionos.eu")
	v.SetDefault("mail.smtpPort", 587) // STARTTLS, não 465 SSL
	v.SetDefault("mail.importFolders", []string{
		"INBOX",
		"INBOX/Archiv",
		"INBOX/KS",
	})

	// APIs do hotel
	v.SetDefault("hotelapi.managementBase", "https://daselb-management-os-v2-api-912934217177.europe-west3.run.app")
	v.SetDefault("hotelapi.reservationsBase", "https://das-elb-backend.onrender.com")
	v.SetDefault("hotelapi.timeout", "5s")

	// Pipeline
	v.SetDefault("pipeline.pollInterval", "180s")
	v.SetDefault("pipeline.maxBodyChars", 4000)
	v.SetDefault("pipeline.maxAgentParallel", 3)
	v.SetDefault("pipeline.promptVersion", "v1")

	// Notificações
	v.SetDefault("notifications.whatsAppEnabled", false)
	v.SetDefault("notifications.managerEmail", "manager@das-elb.de")

	// Métricas
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.prometheusPath", "/metrics")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.production", true)

	// Tracing
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.samplingRatio", 0.1)
	v.SetDefault("tracing.serviceName", "email-agent")
}

// validateConfig valida a configuração
func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("porta inválida: %d", config.Server.Port)
	}

	if config.Server.TLS {
		if config.Server.CertFile == "" || config.Server.KeyFile == "" {
			return fmt.Errorf("TLS habilitado, mas CertFile ou KeyFile não estão definidos")
		}
	}

	validDrivers := map[string]bool{"sqlite": true, "mysql": true, "postgres": true}
	if !validDrivers[config.Database.Driver] {
		return fmt.Errorf("driver de banco de dados inválido: %s", config.Database.Driver)
	}

	if config.Cache.Enabled {
		validTypes := map[string]bool{"memory": true, "redis": true}
		if !validTypes[config.Cache.Type] {
			return fmt.Errorf("tipo de cache inválido: %s", config.Cache.Type)
		}
		if config.Cache.Type == "redis" && config.Cache.Redis.Address == "" {
			return fmt.Errorf("tipo de cache redis requer um endereço")
		}
	}

	if config.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.maxTokens deve ser maior que zero")
	}

	return nil
}
