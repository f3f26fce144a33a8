// Package rag mantém um índice vetorial em memória dos e-mails enviados
// pela equipe e busca as respostas humanas mais similares a uma consulta.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/pkg/config"
)

const (
	maxEmbedChars = 8000
	minSimilarity = 0.4
)

// Embedder calcula embeddings de texto
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Store é o índice em memória de e-mails enviados com seus embeddings
type Store struct {
	mu         sync.RWMutex
	emails     []model.SentEmail
	embeddings [][]float64

	embedder Embedder
	logger   *zap.Logger
}

// NewStore cria um índice vazio
func NewStore(embedder Embedder, logger *zap.Logger) *Store {
	return &Store{embedder: embedder, logger: logger}
}

// UpdateIndex embeda todos os e-mails fornecidos e substitui o índice atual
func (s *Store) UpdateIndex(ctx context.Context, sentEmails []model.SentEmail) error {
	if len(sentEmails) == 0 {
		s.logger.Warn("nenhum e-mail fornecido ao índice, limpando")
		s.mu.Lock()
		s.emails = nil
		s.embeddings = nil
		s.mu.Unlock()
		return nil
	}

	texts := make([]string, len(sentEmails))
	for i, e := range sentEmails {
		text := fmt.Sprintf("Subject: %s\nTo: %s\nBody:\n%s", e.Subject, e.To, e.Body)
		texts[i] = truncate(text, maxEmbedChars)
	}

	s.logger.Info("construindo índice de referências", zap.Int("emails", len(sentEmails)))

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("erro ao calcular embeddings: %w", err)
	}

	s.mu.Lock()
	s.emails = sentEmails
	s.embeddings = embeddings
	s.mu.Unlock()

	s.logger.Info("índice de referências atualizado")
	return nil
}

// Size devolve o número de e-mails indexados
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails)
}

// Search encontra as topK respostas humanas mais similares à consulta.
// Índice vazio ou falha de embedding devolvem lista vazia: o redator
// funciona sem referências.
func (s *Store) Search(ctx context.Context, query string, topK int) []agents.SimilarReply {
	s.mu.RLock()
	if len(s.emails) == 0 {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	queryEmbeddings, err := s.embedder.Embed(ctx, []string{truncate(query, maxEmbedChars)})
	if err != nil || len(queryEmbeddings) == 0 {
		s.logger.Error("busca por similaridade falhou", zap.Error(err))
		return nil
	}
	queryVec := queryEmbeddings[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}

	candidates := make([]scored, 0, len(s.embeddings))
	for i, vec := range s.embeddings {
		candidates = append(candidates, scored{idx: i, score: cosineSimilarity(queryVec, vec)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var results []agents.SimilarReply
	for _, c := range candidates {
		if len(results) >= topK {
			break
		}
		if c.score <= minSimilarity {
			continue
		}
		e := s.emails[c.idx]
		results = append(results, agents.SimilarReply{
			Subject:    e.Subject,
			Body:       e.Body,
			Similarity: c.score,
		})
	}

	s.logger.Info("referências similares encontradas", zap.Int("count", len(results)))
	return results
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// OpenAIEmbedder calcula embeddings via API da OpenAI
type OpenAIEmbedder struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewOpenAIEmbedder cria o cliente de embeddings
func NewOpenAIEmbedder(cfg *config.LLMConfig) *OpenAIEmbedder {
	baseURL := cfg.EmbeddingsBaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.EmbeddingsModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	return &OpenAIEmbedder{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.EmbeddingsAPIKey,
		model:      model,
	}
}

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Embed calcula os embeddings dos textos na ordem fornecida
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	payload, err := json.Marshal(embeddingsRequest{Input: texts, Model: e.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, err
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("resposta inválida da API de embeddings (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, fmt.Errorf("API de embeddings retornou erro: %s", parsed.Error.Message)
		}
		return nil, fmt.Errorf("API de embeddings retornou status %d", resp.StatusCode)
	}

	out := make([][]float64, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
