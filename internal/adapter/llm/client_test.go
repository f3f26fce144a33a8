package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/config"
)

func TestParseJSON_ComCercasMarkdown(t *testing.T) {
	raw := "```json\n{\"intent\": \"room_booking\", \"confidence\": 0.92}\n```"

	out, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "room_booking", out.String("intent"))
	assert.InDelta(t, 0.92, out.Float("confidence"), 0.001)
}

func TestParseJSON_SemCercas(t *testing.T) {
	out, err := ParseJSON(`{"ok": true}`)
	require.NoError(t, err)
	assert.True(t, out.Bool("ok"))
}

func TestParseJSON_EscapeInvalido(t *testing.T) {
	// Modelos às vezes emitem \P dentro de strings, o que não é um
	// escape JSON válido
	raw := `{"note": "Preis \Pro Nacht"}`

	out, err := ParseJSON(raw)
	require.NoError(t, err)
	assert.Contains(t, out.String("note"), "Pro Nacht")
}

func TestParseJSON_Invalido(t *testing.T) {
	_, err := ParseJSON("isto não é JSON")
	assert.Error(t, err)
}

func TestSanitizeEscapes(t *testing.T) {
	assert.Equal(t, `a\\Pb`, sanitizeEscapes(`a\Pb`))
	assert.Equal(t, `a\nb`, sanitizeEscapes(`a\nb`))
	assert.Equal(t, `a\"b`, sanitizeEscapes(`a\"b`))
	assert.Equal(t, `fim\\`, sanitizeEscapes(`fim\`))
}

func TestBuildLadder(t *testing.T) {
	assert.Equal(t, []int{4096, 8192}, buildLadder(4096))
	assert.Equal(t, []int{512, 1024, 2048, 4096, 8192}, buildLadder(100))
	assert.Equal(t, []int{16384}, buildLadder(16384))
}

func newTestClient(t *testing.T, serverURL string, retries int) *Client {
	t.Helper()
	cfg := &config.LLMConfig{
		APIKey:      "test-key",
		Model:       "gemini-2.5-flash",
		BaseURL:     serverURL,
		MaxTokens:   1024,
		Temperature: 0.3,
		Retries:     retries,
	}
	return NewClient(cfg, nil, metrics.NewAgentMetrics(), zaptest.NewLogger(t))
}

func geminiResponse(text, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": finishReason,
			},
		},
	}
}

func TestComplete_Sucesso(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Contains(t, r.URL.RawQuery, "key=test-key")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "prompt de sistema", req.SystemInstruction.Parts[0].Text)

		json.NewEncoder(w).Encode(geminiResponse(`{"intent": "complaint"}`, "STOP"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)
	out, err := client.Complete(context.Background(), "intent", "prompt de sistema", "corpo do e-mail", 0)

	require.NoError(t, err)
	assert.Equal(t, "complaint", out.String("intent"))
}

func TestComplete_EscadaDeTokens(t *testing.T) {
	var budgets []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		budgets = append(budgets, req.GenerationConfig.MaxOutputTokens)

		if len(budgets) == 1 {
			json.NewEncoder(w).Encode(geminiResponse("", "MAX_TOKENS"))
			return
		}
		json.NewEncoder(w).Encode(geminiResponse(`{"ok": true}`, "STOP"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	out, err := client.Complete(context.Background(), "response", "sys", "user", 1024)

	require.NoError(t, err)
	assert.True(t, out.Bool("ok"))
	assert.Equal(t, []int{1024, 2048}, budgets)
}

func TestComplete_RateLimitComBackoff(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(geminiResponse(`{"ok": true}`, "STOP"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)
	out, err := client.Complete(context.Background(), "risk", "sys", "user", 0)

	require.NoError(t, err)
	assert.True(t, out.Bool("ok"))
	assert.Equal(t, 2, calls)
}

func TestComplete_ParseFalhaEmTodasAsTentativas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse("resposta sem JSON nenhum", "STOP"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)
	out, err := client.Complete(context.Background(), "entities", "sys", "user", 0)

	// Mapa vazio para o pipeline degradar com graça
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestComplete_FiltroDeSeguranca(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse("", "SAFETY"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)
	_, err := client.Complete(context.Background(), "intent", "sys", "user", 0)
	assert.Error(t, err)
}
