package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/app/auth"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/cache"
	"github.com/das-elb/email-agent-go/pkg/config"
	"github.com/das-elb/email-agent-go/pkg/ratelimit"
)

// Middleware contém todos os middlewares da aplicação
type Middleware struct {
	logger              *zap.Logger
	authMiddleware      *AuthMiddleware
	recoveryMiddleware  *RecoveryMiddleware
	securityMiddleware  *SecurityMiddleware
	tracingMiddleware   *TracingMiddleware
	metricsMiddleware   *MetricsMiddleware
	rateLimitMiddleware *RateLimitMiddleware
}

// NewMiddleware cria um novo conjunto de middlewares
func NewMiddleware(cfg *config.Config, logger *zap.Logger, authService *auth.AuthService, agentMetrics *metrics.AgentMetrics) *Middleware {
	serviceName := "email-agent"
	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName != "" {
		serviceName = cfg.Tracing.ServiceName
	}

	// Rate limiting compartilhado via Redis quando disponível, senão
	// janela fixa em memória
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()

	if cfg.Cache.Type == "redis" && cfg.Cache.Redis.Address != "" {
		redisClient, err := cache.NewRedisClientWithConfig(&redis.Options{
			Addr:     cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, logger)

		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
				logger.Error("Erro ao conectar ao Redis para rate limiting, usando limitador em memória",
					zap.Error(pingErr),
					zap.String("redis.address", cfg.Cache.Redis.Address))
			} else {
				logger.Info("Conectado ao Redis para rate limiting",
					zap.String("redis.address", cfg.Cache.Redis.Address))
				limiter = ratelimit.NewRedisLimiter(redisClient, logger)
			}
		}
	} else {
		logger.Info("Redis não configurado para rate limiting, usando limitador em memória")
	}

	return &Middleware{
		logger:              logger,
		authMiddleware:      NewAuthMiddleware(authService, cfg.Auth.DashboardAPIKey, logger),
		recoveryMiddleware:  NewRecoveryMiddleware(logger),
		securityMiddleware:  NewSecurityMiddleware(logger),
		tracingMiddleware:   NewTracingMiddleware(logger, serviceName),
		rateLimitMiddleware: NewRateLimitMiddleware(limiter, agentMetrics, logger),
	}
}

// SetMetricsMiddleware configura o middleware de métricas
func (m *Middleware) SetMetricsMiddleware(metricsMiddleware *MetricsMiddleware) {
	m.metricsMiddleware = metricsMiddleware
}

// Metrics retorna o middleware de métricas
func (m *Middleware) Metrics() gin.HandlerFunc {
	if m.metricsMiddleware != nil {
		return m.metricsMiddleware.Middleware()
	}
	return func(c *gin.Context) {
		c.Next() // No-op se não configurado
	}
}

// Authenticate middleware para autenticação da equipe
func (m *Middleware) Authenticate(c *gin.Context) {
	m.authMiddleware.Authenticate(c)
}

// AuthenticateManager middleware para ações restritas à gerência
func (m *Middleware) AuthenticateManager(c *gin.Context) {
	m.authMiddleware.AuthenticateManager(c)
}

// Recovery middleware para recuperação de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// IgnoreFavicon é um middleware que ignora requisições para /favicon.ico
func (m *Middleware) IgnoreFavicon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/favicon.ico" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Logger middleware para logging de requisições
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		m.logger.Info("request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", clientIP),
		)
	}
}

// SecurityHeaders middleware para adicionar cabeçalhos de segurança
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return m.securityMiddleware.Headers()
}

// CORS middleware para configurar CORS
func (m *Middleware) CORS() gin.HandlerFunc {
	return m.securityMiddleware.CORS()
}

// RateLimit limita requisições por IP
func (m *Middleware) RateLimit() gin.HandlerFunc {
	return m.rateLimitMiddleware.IPRateLimit()
}

// Tracing retorna o middleware de tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}
