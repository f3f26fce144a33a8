// Package llm implementa o cliente REST da API Gemini usado por todos os
// agentes do pipeline.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/config"
	"github.com/das-elb/email-agent-go/pkg/logging"
	"github.com/das-elb/email-agent-go/pkg/ratelimit"
)

// Completer é a interface que os agentes usam para obter uma resposta
// JSON do modelo de linguagem.
type Completer interface {
	Complete(ctx context.Context, agent, systemPrompt, userMessage string, maxTokens int) (model.JSONMap, error)
}

// Escada de budget de tokens para retries por MAX_TOKENS
var tokenLadder = []int{512, 1024, 2048, 4096, 8192}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client chama a API Gemini via REST e devolve o JSON já parseado.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	maxTokens  int
	maxRetries int
	rpm        int
	limiter    ratelimit.Limiter
	metrics    *metrics.AgentMetrics
	logger     *logging.ContextLogger
}

// NewClient cria um cliente Gemini a partir da configuração
func NewClient(cfg *config.LLMConfig, limiter ratelimit.Limiter, m *metrics.AgentMetrics, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		temp:       cfg.Temperature,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.Retries,
		rpm:        cfg.RequestsPerMin,
		limiter:    limiter,
		metrics:    m,
		logger:     logging.NewContextLogger(logger),
	}
}

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Filtros de segurança desativados: e-mails de hotel não são conteúdo nocivo
var safetyOff = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// Complete chama o modelo e devolve a resposta como mapa JSON.
//
// Estratégia de retry:
//   - finishReason MAX_TOKENS: sobe o budget de tokens pela escada até 8192
//   - HTTP 429: backoff exponencial limitado a 30s
//   - Falha de parse JSON: sanitiza e tenta de novo; mapa vazio na última tentativa
//   - Outros erros da API: backoff fixo de 2s
func (c *Client) Complete(ctx context.Context, agent, systemPrompt, userMessage string, maxTokens int) (model.JSONMap, error) {
	base := maxTokens
	if base <= 0 {
		base = c.maxTokens
	}

	ladder := buildLadder(base)
	ladderIdx := 0
	currentMax := ladder[0]

	retries := c.maxRetries
	if retries <= 0 {
		retries = 5
	}

	start := time.Now()
	for attempt := 0; attempt < retries; attempt++ {
		if err := c.waitBudget(ctx); err != nil {
			return nil, err
		}

		raw, finishReason, err := c.generate(ctx, systemPrompt, userMessage, currentMax)
		if err != nil {
			var rl *rateLimitedError
			switch {
			case errors.As(err, &rl):
				wait := backoff(attempt)
				c.logger.WarnCtx(ctx, "rate limit do Gemini, aguardando",
					zap.String("agent", agent),
					zap.Duration("wait", wait),
					zap.Int("attempt", attempt+1))
				c.metrics.LLMRetry()
				if err := sleepCtx(ctx, wait); err != nil {
					return nil, err
				}
				continue
			default:
				c.logger.ErrorCtx(ctx, "erro da API Gemini",
					zap.String("agent", agent),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
				if attempt >= retries-1 {
					c.metrics.LLMCallCompleted(agent, "error", time.Since(start))
					return nil, err
				}
				c.metrics.LLMRetry()
				if err := sleepCtx(ctx, 2*time.Second); err != nil {
					return nil, err
				}
				continue
			}
		}

		if finishReason == "MAX_TOKENS" {
			ladderIdx++
			if ladderIdx < len(ladder) {
				currentMax = ladder[ladderIdx]
				c.logger.WarnCtx(ctx, "resposta truncada por MAX_TOKENS, subindo budget",
					zap.String("agent", agent),
					zap.Int("newBudget", currentMax),
					zap.Int("attempt", attempt+1))
				c.metrics.LLMRetry()
				if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
					return nil, err
				}
				continue
			}
			c.metrics.LLMCallCompleted(agent, "truncated", time.Since(start))
			return nil, fmt.Errorf("resposta truncada mesmo com budget máximo de %d tokens", ladder[len(ladder)-1])
		}

		if finishReason == "SAFETY" {
			c.metrics.LLMCallCompleted(agent, "safety", time.Since(start))
			return nil, fmt.Errorf("filtro de segurança do Gemini disparou inesperadamente")
		}

		parsed, perr := ParseJSON(raw)
		if perr != nil {
			c.logger.WarnCtx(ctx, "falha ao parsear JSON da resposta",
				zap.String("agent", agent),
				zap.Int("attempt", attempt+1),
				zap.Error(perr))
			if attempt >= retries-1 {
				// Última tentativa: mapa vazio para o pipeline degradar com graça
				c.logger.ErrorCtx(ctx, "parse JSON falhou em todas as tentativas",
					zap.String("agent", agent))
				c.metrics.LLMCallCompleted(agent, "parse_failed", time.Since(start))
				return model.JSONMap{}, nil
			}
			c.metrics.LLMRetry()
			if err := sleepCtx(ctx, time.Second); err != nil {
				return nil, err
			}
			continue
		}

		c.metrics.LLMCallCompleted(agent, "ok", time.Since(start))
		return parsed, nil
	}

	c.metrics.LLMCallCompleted(agent, "exhausted", time.Since(start))
	return nil, fmt.Errorf("chamada ao Gemini falhou após %d tentativas", retries)
}

// generate faz uma única requisição generateContent
func (c *Client) generate(ctx context.Context, systemPrompt, userMessage string, maxOutputTokens int) (string, string, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: userMessage}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temp,
			MaxOutputTokens: maxOutputTokens,
		},
		SafetySettings: safetyOff,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("erro ao serializar requisição: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("erro de transporte na chamada ao Gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", "", &rateLimitedError{}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", fmt.Errorf("resposta inválida da API (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			if parsed.Error.Status == "RESOURCE_EXHAUSTED" {
				return "", "", &rateLimitedError{}
			}
			return "", "", fmt.Errorf("API Gemini retornou erro %d: %s", parsed.Error.Code, parsed.Error.Message)
		}
		return "", "", fmt.Errorf("API Gemini retornou status %d", resp.StatusCode)
	}

	if len(parsed.Candidates) == 0 {
		return "", "", fmt.Errorf("resposta sem candidates")
	}

	cand := parsed.Candidates[0]
	text := ""
	if len(cand.Content.Parts) > 0 {
		text = strings.TrimSpace(cand.Content.Parts[0].Text)
	}

	return text, cand.FinishReason, nil
}

// waitBudget respeita o budget de chamadas por minuto antes de cada request
func (c *Client) waitBudget(ctx context.Context) error {
	if c.limiter == nil || c.rpm <= 0 {
		return nil
	}

	for {
		allowed, _, _, resetAfter, err := c.limiter.Allow(ctx, ratelimit.LimitConfig{
			Key:    "llm:gemini",
			Limit:  c.rpm,
			Period: time.Minute,
		})
		if err != nil {
			// Limitador indisponível não deve bloquear o pipeline
			return nil
		}
		if allowed {
			return nil
		}

		c.metrics.RateLimitExceeded("llm")
		if resetAfter <= 0 {
			resetAfter = time.Second
		}
		if err := sleepCtx(ctx, resetAfter); err != nil {
			return err
		}
	}
}

type rateLimitedError struct{}

func (e *rateLimitedError) Error() string { return "rate limit excedido na API Gemini" }

func backoff(attempt int) time.Duration {
	wait := time.Duration(1<<uint(attempt)) * time.Second
	if wait > 30*time.Second {
		wait = 30 * time.Second
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func buildLadder(base int) []int {
	var ladder []int
	for _, t := range tokenLadder {
		if t >= base {
			ladder = append(ladder, t)
		}
	}
	if len(ladder) == 0 {
		ladder = []int{base}
	}
	return ladder
}

var (
	fenceOpen  = regexp.MustCompile("(?m)^```(?:json)?[ \t]*\n?")
	fenceClose = regexp.MustCompile("(?m)\n?[ \t]*```[ \t]*$")
)

// ParseJSON remove cercas de markdown, sanitiza escapes inválidos e
// parseia o texto como objeto JSON.
func ParseJSON(raw string) (model.JSONMap, error) {
	cleaned := fenceOpen.ReplaceAllString(raw, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var out model.JSONMap
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil {
		return out, nil
	}

	sanitized := sanitizeEscapes(cleaned)
	if err := json.Unmarshal([]byte(sanitized), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// sanitizeEscapes troca barras invertidas que não iniciam um escape JSON
// válido por barras duplas. Modelos ocasionalmente emitem sequências como
// \P ou \S dentro de strings.
func sanitizeEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			continue
		}
		if i+1 < len(s) {
			switch s[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				b.WriteByte(ch)
				continue
			}
		}
		b.WriteString(`\\`)
	}

	return b.String()
}
