package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/pkg/cache"
	apierrors "github.com/das-elb/email-agent-go/pkg/errors"
)

const (
	summaryCacheKey = "analytics:summary"
	summaryCacheTTL = 30 * time.Second
)

// SummaryProvider calcula as métricas agregadas do dashboard
type SummaryProvider interface {
	Summary(ctx context.Context) (*database.AnalyticsSummary, error)
}

// AnalyticsHandler expõe o resumo agregado dos emails processados
type AnalyticsHandler struct {
	provider SummaryProvider
	cache    cache.Cache
	logger   *zap.Logger
}

// NewAnalyticsHandler cria um novo handler de analytics
func NewAnalyticsHandler(provider SummaryProvider, c cache.Cache, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{provider: provider, cache: c, logger: logger}
}

// GetSummary devolve contagens por status e intenção, receita e risco médio.
// O resumo agrega a tabela inteira, então fica em cache por um curto período.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		var cached database.AnalyticsSummary
		if found, err := h.cache.Get(ctx, summaryCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, &cached)
			return
		}
	}

	summary, err := h.provider.Summary(ctx)
	if err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao calcular resumo", err))
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, summaryCacheKey, summary, summaryCacheTTL); err != nil {
			h.logger.Warn("Falha ao armazenar resumo no cache", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, summary)
}
