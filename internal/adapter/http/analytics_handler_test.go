package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/pkg/cache"
)

type fakeSummaryProvider struct {
	calls   int
	summary *database.AnalyticsSummary
	err     error
}

func (f *fakeSummaryProvider) Summary(ctx context.Context) (*database.AnalyticsSummary, error) {
	f.calls++
	return f.summary, f.err
}

func analyticsRouter(t *testing.T, provider *fakeSummaryProvider, c cache.Cache) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewAnalyticsHandler(provider, c, zaptest.NewLogger(t))
	router := gin.New()
	router.GET("/api/v1/analytics/summary", handler.GetSummary)
	return router
}

func TestAnalyticsHandler_ResumoComCache(t *testing.T) {
	provider := &fakeSummaryProvider{
		summary: &database.AnalyticsSummary{
			TotalEmails:     12,
			TotalRevenue:    3400.50,
			PendingApproval: 3,
		},
	}
	memCache := cache.NewMemoryCache(time.Minute, time.Minute, nil, zaptest.NewLogger(t))
	router := analyticsRouter(t, provider, memCache)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_emails":12`)
	}

	// Segunda requisição foi servida pelo cache
	assert.Equal(t, 1, provider.calls)
}

func TestAnalyticsHandler_FalhaNoProvedor(t *testing.T) {
	provider := &fakeSummaryProvider{err: errors.New("banco indisponível")}
	router := analyticsRouter(t, provider, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
