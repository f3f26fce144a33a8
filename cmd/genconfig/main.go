package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/das-elb/email-agent-go/pkg/config"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	// Configuração com valores padrão
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
			TLS:            false,
		},
		Database: config.DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "./daselb_agent.db",
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 1 * time.Hour,
			LogLevel:        "warn",
			SlowThreshold:   200 * time.Millisecond,
			MigrationDir:    "./migrations",
		},
		Cache: config.CacheConfig{
			Enabled: true,
			Type:    "memory",
			TTL:     5 * time.Minute,
		},
		Auth: config.AuthConfig{
			DashboardAPIKey: "defina-uma-chave-para-o-dashboard",
			JWTSecret:       "defina-um-segredo-de-no-minimo-32-bytes",
			TokenExpiration: 24 * time.Hour,
		},
		LLM: config.LLMConfig{
			Model:          "gemini-2.0-flash",
			MaxTokens:      2048,
			Temperature:    0.7,
			Retries:        3,
			RequestsPerMin: 8,
			RequestTimeout: 2 * time.Minute,
		},
		Mail: config.MailConfig{
			Address:  "info@das-elb.de",
			IMAPHost: "imap.example.com",
			IMAPPort: 993,
			SMTPHost: "smtp.example.com",
			SMTPPort: 587,
			ImportFolders: []string{
				"INBOX",
				"Gesendete Elemente",
			},
		},
		HotelAPI: config.HotelAPIConfig{
			ManagementBase: "https://hotel.example.com",
			Timeout:        10 * time.Second,
		},
		Pipeline: config.PipelineConfig{
			PollInterval:  5 * time.Minute,
			MaxBodyChars:  4000,
			PromptVersion: "v1",
		},
		Notifications: config.NotificationsConfig{
			WhatsAppEnabled: false,
			ManagerEmail:    "manager@das-elb.de",
		},
		Metrics: config.MetricsConfig{
			Enabled:        true,
			PrometheusPath: "/metrics",
		},
		Logging: config.LoggingConfig{
			Level:      "info",
			Format:     "json",
			Production: true,
		},
		Tracing: config.TracingConfig{
			Enabled:       false,
			ServiceName:   "email-agent",
			SamplingRatio: 0.1,
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Printf("Erro ao gerar YAML: %v\n", err)
		os.Exit(1)
	}

	// Durações em formato legível (5m0s em vez de nanossegundos)
	re := regexp.MustCompile(`(?m)^(\s*\w+:)\s*(\d{9,})$`)
	out := re.ReplaceAllStringFunc(string(data), func(match string) string {
		groups := re.FindStringSubmatch(match)
		var ns int64
		fmt.Sscanf(groups[2], "%d", &ns)
		return fmt.Sprintf("%s %s", groups[1], time.Duration(ns).String())
	})

	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		fmt.Printf("Erro ao escrever arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Configuração gerada em %s\n", outputPath)
}
