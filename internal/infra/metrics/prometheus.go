package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AgentMetrics gerencia métricas da API e do pipeline de e-mails
type AgentMetrics struct {
	registry *prometheus.Registry

	requestCounter     *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	activeRequests     *prometheus.GaugeVec
	errorsTotal        *prometheus.CounterVec
	circuitBreakerOpen *prometheus.GaugeVec
	rateLimited        *prometheus.CounterVec
	cacheHitRatio      *prometheus.GaugeVec

	emailsProcessed *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	llmCalls        *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	llmRetries      prometheus.Counter
	draftsSent      *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	pollCycles      prometheus.Counter
}

// NewAgentMetrics cria e registra métricas do prometheus em um registro
// próprio, exposto via Registry para o handler /metrics
func NewAgentMetrics() *AgentMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &AgentMetrics{
		registry: registry,

		requestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_requests_total",
				Help: "Total number of HTTP requests by path, method, and status code",
			},
			[]string{"path", "method", "status"},
		),

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailagent_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		activeRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "emailagent_active_requests",
				Help: "Number of in-flight requests being processed",
			},
			[]string{"path", "method"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"path", "method", "error_type"},
		),

		circuitBreakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "emailagent_circuit_breaker_open",
				Help: "Indicates if a circuit breaker is open (1) or closed (0)",
			},
			[]string{"service"},
		),

		rateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_rate_limited_total",
				Help: "Total number of rate limited operations",
			},
			[]string{"scope"},
		),

		cacheHitRatio: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "emailagent_cache_hit_ratio",
				Help: "Cache hit ratio (0.0 to 1.0)",
			},
			[]string{"cache_type"},
		),

		emailsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_emails_processed_total",
				Help: "Total number of emails processed by intent and final status",
			},
			[]string{"intent", "status"},
		),

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailagent_pipeline_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"stage"},
		),

		llmCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_llm_calls_total",
				Help: "Total number of LLM completions by agent and outcome",
			},
			[]string{"agent", "outcome"},
		),

		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emailagent_llm_call_duration_seconds",
				Help:    "LLM completion latency in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"agent"},
		),

		llmRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emailagent_llm_retries_total",
				Help: "Total number of LLM call retries (rate limit or truncation)",
			},
		),

		draftsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_drafts_sent_total",
				Help: "Total number of approved drafts delivered via SMTP",
			},
			[]string{"intent"},
		),

		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emailagent_notifications_total",
				Help: "Total number of staff notifications by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),

		pollCycles: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "emailagent_poll_cycles_total",
				Help: "Total number of completed IMAP poll cycles",
			},
		),
	}
}

// Registry devolve o registro prometheus desta instância
func (m *AgentMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted registra o início de uma requisição
func (m *AgentMetrics) RequestStarted(path, method string) {
	m.activeRequests.WithLabelValues(path, method).Inc()
}

// RequestCompleted registra a conclusão de uma requisição
func (m *AgentMetrics) RequestCompleted(path, method, status string, duration time.Duration) {
	m.requestCounter.WithLabelValues(path, method, status).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
	m.activeRequests.WithLabelValues(path, method).Dec()
}

// RequestError registra um erro de requisição
func (m *AgentMetrics) RequestError(path, method, errorType string) {
	m.errorsTotal.WithLabelValues(path, method, errorType).Inc()
}

// CircuitBreakerStateChanged registra mudança no estado de um circuit breaker
func (m *AgentMetrics) CircuitBreakerStateChanged(service string, isOpen bool) {
	value := 0.0
	if isOpen {
		value = 1.0
	}
	m.circuitBreakerOpen.WithLabelValues(service).Set(value)
}

// RateLimitExceeded registra quando um limite de taxa é excedido
func (m *AgentMetrics) RateLimitExceeded(scope string) {
	m.rateLimited.WithLabelValues(scope).Inc()
}

// UpdateCacheHitRatio atualiza a taxa de acertos do cache
func (m *AgentMetrics) UpdateCacheHitRatio(cacheType string, hitRatio float64) {
	m.cacheHitRatio.WithLabelValues(cacheType).Set(hitRatio)
}

// EmailProcessed registra um e-mail que concluiu o pipeline
func (m *AgentMetrics) EmailProcessed(intent, status string) {
	m.emailsProcessed.WithLabelValues(intent, status).Inc()
}

// StageCompleted registra a duração de uma etapa do pipeline
func (m *AgentMetrics) StageCompleted(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// LLMCallCompleted registra uma chamada ao LLM
func (m *AgentMetrics) LLMCallCompleted(agent, outcome string, duration time.Duration) {
	m.llmCalls.WithLabelValues(agent, outcome).Inc()
	m.llmDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// LLMRetry registra uma nova tentativa de chamada ao LLM
func (m *AgentMetrics) LLMRetry() {
	m.llmRetries.Inc()
}

// DraftSent registra o envio de um rascunho aprovado
func (m *AgentMetrics) DraftSent(intent string) {
	m.draftsSent.WithLabelValues(intent).Inc()
}

// NotificationSent registra uma notificação à equipe
func (m *AgentMetrics) NotificationSent(channel, outcome string) {
	m.notifications.WithLabelValues(channel, outcome).Inc()
}

// PollCycleCompleted registra a conclusão de um ciclo de polling
func (m *AgentMetrics) PollCycleCompleted() {
	m.pollCycles.Inc()
}
