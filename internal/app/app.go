package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/internal/adapter/hotelapi"
	apphttp "github.com/das-elb/email-agent-go/internal/adapter/http"
	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/adapter/mail"
	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/app/auth"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/internal/infra/middleware"
	"github.com/das-elb/email-agent-go/internal/integrations"
	"github.com/das-elb/email-agent-go/internal/learning"
	"github.com/das-elb/email-agent-go/internal/pipeline"
	"github.com/das-elb/email-agent-go/internal/poller"
	"github.com/das-elb/email-agent-go/internal/rag"
	"github.com/das-elb/email-agent-go/pkg/cache"
	"github.com/das-elb/email-agent-go/pkg/config"
	"github.com/das-elb/email-agent-go/pkg/ratelimit"
	"github.com/das-elb/email-agent-go/pkg/security"
)

// App agrega todos os componentes do agente de emails
type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *database.Database
	Cache          cache.Cache
	Middleware     *middleware.Middleware
	MetricsHandler *middleware.MetricsHandler
	AgentMetrics   *metrics.AgentMetrics
	Poller         *poller.Poller

	emailHandler     *apphttp.EmailHandler
	learningHandler  *apphttp.LearningHandler
	analyticsHandler *apphttp.AnalyticsHandler
	vipHandler       *apphttp.VIPHandler
	userHandler      *apphttp.UserHandler
	healthChecker    *apphttp.HealthChecker
}

// NewApp cria uma nova instância da aplicação com todas as dependências injetadas
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	// Banco de dados. Falha de migração impede a subida do servidor.
	dbConfig := database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        database.ParseLogLevel(cfg.Database.LogLevel),
		SlowThreshold:   cfg.Database.SlowThreshold,
		MigrationDir:    cfg.Database.MigrationDir,
		SkipMigrations:  cfg.Database.SkipMigrations,
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbConfig, logger)
	if err != nil {
		return nil, err
	}

	// Métricas com registro próprio
	agentMetrics := metrics.NewAgentMetrics()
	metricsHandler := middleware.NewMetricsHandler(agentMetrics, logger)

	// Cache: Redis quando configurado, memória caso contrário
	var appCache cache.Cache
	if cfg.Cache.Type == "redis" && cfg.Cache.Redis.Address != "" {
		redisCache, cacheErr := cache.NewRedisCache(cfg.Cache.Redis.Address, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, logger)
		if cacheErr != nil {
			logger.Warn("Redis indisponível, usando cache em memória", zap.Error(cacheErr))
			appCache = cache.NewMemoryCache(5*time.Minute, 10*time.Minute, agentMetrics, logger)
		} else {
			appCache = redisCache
		}
	} else {
		appCache = cache.NewMemoryCache(5*time.Minute, 10*time.Minute, agentMetrics, logger)
	}

	// Repositórios
	emailRepo := database.NewEmailRepository(db.DB())
	vipRepo := database.NewVIPRepository(db.DB())
	styleRepo := database.NewStyleRepository(db.DB())
	userRepo := database.NewUserRepository(db.DB())

	// Autenticação da equipe
	keyManager, err := security.NewKeyManager(cfg.Auth.JWTSecret, logger)
	if err != nil {
		return nil, fmt.Errorf("falha ao inicializar gerenciador de chaves: %w", err)
	}
	authService := auth.NewAuthService(keyManager, userRepo, logger)

	// Cliente LLM com orçamento de chamadas por minuto
	llmLimiter := ratelimit.NewMemoryLimiter()
	llmClient := llm.NewClient(&cfg.LLM, llmLimiter, agentMetrics, logger)

	// API de gestão do hotel, protegida por circuit breaker
	hotelClient := hotelapi.NewClient(&cfg.HotelAPI, agentMetrics, logger)

	// Agentes da pipeline
	intent := agents.NewIntentClassifier(llmClient)
	entities := agents.NewEntityExtractor(llmClient)
	risk := agents.NewRiskAnalyzer(llmClient)
	policy := agents.NewPolicyValidator(llmClient, hotelClient)
	response := agents.NewResponseWriter(llmClient)
	styleLearner := agents.NewStyleLearner(llmClient, logger)

	// Busca de respostas anteriores similares
	embedder := rag.NewOpenAIEmbedder(&cfg.LLM)
	ragStore := rag.NewStore(embedder, logger)

	// Email e notificações
	imapClient := mail.NewIMAPClient(&cfg.Mail, logger)
	smtpSender := mail.NewSMTPSender(&cfg.Mail, logger)
	notifier := integrations.NewNotifier(cfg.Notifications, smtpSender, agentMetrics, logger)

	orchestrator := pipeline.NewOrchestrator(pipeline.Options{
		Intent:        intent,
		Entities:      entities,
		Risk:          risk,
		Policy:        policy,
		Response:      response,
		Store:         emailRepo,
		VIPs:          vipRepo,
		Styles:        styleRepo,
		References:    ragStore,
		Notifier:      notifier,
		MaxBodyChars:  cfg.Pipeline.MaxBodyChars,
		PromptVersion: cfg.Pipeline.PromptVersion,
		Metrics:       agentMetrics,
		Logger:        logger,
	})

	mailPoller := poller.New(imapClient, orchestrator, emailRepo, cfg.Pipeline.PollInterval, agentMetrics, logger)

	learningService := learning.NewService(imapClient, styleLearner, styleRepo, ragStore, logger)

	// Middlewares e handlers
	middlewares := middleware.NewMiddleware(cfg, logger, authService, agentMetrics)
	middlewares.SetMetricsMiddleware(middleware.NewMetricsMiddleware(agentMetrics, logger))

	emailHandler := apphttp.NewEmailHandler(emailRepo, orchestrator, smtpSender, notifier,
		response, mailPoller, cfg.Notifications.ManagerEmail, agentMetrics, logger)
	learningHandler := apphttp.NewLearningHandler(learningService, styleRepo, logger)
	analyticsHandler := apphttp.NewAnalyticsHandler(emailRepo, appCache, logger)
	vipHandler := apphttp.NewVIPHandler(vipRepo, logger)
	userHandler := apphttp.NewUserHandler(authService, userRepo, logger)
	healthChecker := apphttp.NewHealthChecker(db, appCache, logger)

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             db,
		Cache:          appCache,
		Middleware:     middlewares,
		MetricsHandler: metricsHandler,
		AgentMetrics:   agentMetrics,
		Poller:         mailPoller,

		emailHandler:     emailHandler,
		learningHandler:  learningHandler,
		analyticsHandler: analyticsHandler,
		vipHandler:       vipHandler,
		userHandler:      userHandler,
		healthChecker:    healthChecker,
	}, nil
}

// StartPoller inicia o polling da caixa de entrada em segundo plano
func (a *App) StartPoller(ctx context.Context) {
	go a.Poller.Run(ctx)
}

// RegisterRoutes registra todas as rotas no router
func (a *App) RegisterRoutes(router *gin.Engine) {
	router.Use(a.Middleware.Recovery())
	router.Use(a.Middleware.Logger())
	router.Use(a.Middleware.SecurityHeaders())
	router.Use(a.Middleware.IgnoreFavicon())
	router.Use(a.Middleware.Metrics())
	if a.Config.Tracing.Enabled {
		router.Use(a.Middleware.Tracing())
	}

	// Rotas públicas
	router.GET("/health", a.healthChecker.LivenessCheck)
	router.GET("/health/liveness", a.healthChecker.LivenessCheck)
	router.GET("/health/readiness", a.healthChecker.ReadinessCheck)

	if a.Config.Metrics.Enabled {
		a.MetricsHandler.RegisterEndpoint(router)
	}

	api := router.Group("/api/v1")

	api.POST("/auth/login", a.userHandler.Login)

	// Fluxo de aprovação de emails
	emails := api.Group("/emails")
	emails.Use(a.Middleware.Authenticate)
	emails.Use(a.Middleware.RateLimit())
	{
		emails.GET("", a.emailHandler.ListEmails)
		emails.GET("/:id", a.emailHandler.GetEmail)
		emails.POST("/:id/approve", a.emailHandler.ApproveEmail)
		emails.POST("/:id/reject", a.emailHandler.RejectEmail)
		emails.POST("/:id/escalate", a.emailHandler.EscalateEmail)
		emails.POST("/:id/retry", a.emailHandler.RetryEmail)
		emails.POST("/:id/refine", a.emailHandler.RefineDraft)
		emails.POST("/trigger-poll", a.emailHandler.TriggerPoll)
		emails.POST("/import-all", a.emailHandler.ImportAll)
	}

	// Aprendizado de estilo
	learningGroup := api.Group("/learning")
	learningGroup.Use(a.Middleware.Authenticate)
	{
		learningGroup.POST("/sync", a.learningHandler.Sync)
		learningGroup.GET("/profile", a.learningHandler.GetProfile)
		learningGroup.PUT("/profile/:id/prompt", a.learningHandler.UpdatePrompt)
	}

	// Analytics do dashboard
	analytics := api.Group("/analytics")
	analytics.Use(a.Middleware.Authenticate)
	{
		analytics.GET("/summary", a.analyticsHandler.GetSummary)
	}

	// Cadastro de VIPs
	vips := api.Group("/vips")
	vips.Use(a.Middleware.Authenticate)
	{
		vips.GET("", a.vipHandler.ListVIPs)
		vips.POST("", a.vipHandler.AddVIP)
		vips.DELETE("/:email", a.vipHandler.RemoveVIP)
	}

	// Administração restrita à gerência
	admin := api.Group("/admin")
	admin.Use(a.Middleware.AuthenticateManager)
	{
		admin.POST("/users", a.userHandler.RegisterUser)
		admin.GET("/users", a.userHandler.ListUsers)
		admin.GET("/health/detailed", a.healthChecker.DetailedHealth)
	}
}
