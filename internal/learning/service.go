package learning

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// SentFetcher busca os emails da pasta de itens enviados do hotel
type SentFetcher interface {
	FetchSent(ctx context.Context, maxResults, sinceDays int) ([]model.SentEmail, error)
}

// StyleStore persiste os perfis de estilo aprendidos
type StyleStore interface {
	SaveProfile(ctx context.Context, profile *model.StyleProfile) error
	LatestProfile(ctx context.Context) (*model.StyleProfile, error)
}

// Indexer atualiza o índice de respostas similares
type Indexer interface {
	UpdateIndex(ctx context.Context, sentEmails []model.SentEmail) error
	Size() int
}

// Service executa o job de aprendizado: lê os itens enviados, aprende o
// perfil de estilo do hotel e reconstrói o índice de respostas de
// referência. Uma sincronização por vez.
type Service struct {
	fetcher SentFetcher
	learner *agents.StyleLearner
	store   StyleStore
	index   Indexer
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewService cria o serviço de aprendizado
func NewService(fetcher SentFetcher, learner *agents.StyleLearner, store StyleStore, index Indexer, logger *zap.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		learner: learner,
		store:   store,
		index:   index,
		logger:  logger,
	}
}

// SyncResult resume o resultado de uma sincronização
type SyncResult struct {
	EmailsAnalyzed int    `json:"emails_analyzed"`
	IndexSize      int    `json:"index_size"`
	InjectedPrompt string `json:"injected_prompt"`
}

// Sync busca os enviados recentes, aprende o perfil e atualiza o índice
func (s *Service) Sync(ctx context.Context, maxResults, sinceDays int) (*SyncResult, error) {
	if !s.mu.TryLock() {
		return nil, fmt.Errorf("sincronização de aprendizado já em andamento")
	}
	defer s.mu.Unlock()

	if maxResults <= 0 {
		maxResults = 50
	}
	if sinceDays <= 0 {
		sinceDays = 90
	}

	sent, err := s.fetcher.FetchSent(ctx, maxResults, sinceDays)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar itens enviados: %w", err)
	}

	s.logger.Info("itens enviados carregados para aprendizado",
		zap.Int("quantidade", len(sent)))

	profile := s.learner.AnalyzeSentEmails(ctx, sent)
	injection := agents.BuildStyleInjection(profile)

	now := model.NowBerlin()
	record := &model.StyleProfile{
		LearnedAt:      now,
		EmailsAnalyzed: len(sent),
		ProfileJSON:    profile,
		InjectedPrompt: injection,
	}
	if err := s.store.SaveProfile(ctx, record); err != nil {
		return nil, fmt.Errorf("falha ao gravar perfil de estilo: %w", err)
	}

	if err := s.index.UpdateIndex(ctx, sent); err != nil {
		// o perfil já foi gravado; o índice fica com o conteúdo anterior
		s.logger.Warn("falha ao atualizar índice de respostas similares", zap.Error(err))
	}

	s.logger.Info("sincronização de aprendizado concluída",
		zap.Int("emails_analisados", len(sent)),
		zap.Int("tamanho_indice", s.index.Size()))

	return &SyncResult{
		EmailsAnalyzed: len(sent),
		IndexSize:      s.index.Size(),
		InjectedPrompt: injection,
	}, nil
}

// Profile devolve o perfil mais recente, ou o padrão quando o job
// nunca rodou.
func (s *Service) Profile(ctx context.Context) (*model.StyleProfile, error) {
	profile, err := s.store.LatestProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		fallback := agents.DefaultStyleProfile()
		return &model.StyleProfile{
			ProfileJSON:    fallback,
			InjectedPrompt: agents.BuildStyleInjection(fallback),
		}, nil
	}
	return profile, nil
}
