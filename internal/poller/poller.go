// Package poller varre a caixa IMAP do hotel em intervalos regulares e
// encaminha cada e-mail novo para a pipeline multi-agente.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
)

// Fetcher lê e-mails da caixa do hotel
type Fetcher interface {
	FetchRecent(ctx context.Context, maxResults, sinceDays int) ([]model.InboundEmail, error)
	FetchAll(ctx context.Context, maxPerFolder, sinceDays int) ([]model.InboundEmail, error)
}

// Processor roda a pipeline sobre um e-mail
type Processor interface {
	Process(ctx context.Context, email model.InboundEmail) (*model.EmailRecord, error)
}

// DedupStore verifica se um e-mail já foi processado
type DedupStore interface {
	IsProcessed(ctx context.Context, messageID string) (bool, error)
}

// ImportResult resume uma importação completa
type ImportResult struct {
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	TotalFound int `json:"total_found"`
}

// Poller agenda os ciclos de polling. Um mutex garante que ciclos nunca
// se sobreponham, mesmo quando um ciclo demora mais que o intervalo.
type Poller struct {
	fetcher   Fetcher
	processor Processor
	dedup     DedupStore

	interval time.Duration
	metrics  *metrics.AgentMetrics
	logger   *zap.Logger

	mu sync.Mutex
}

// New cria o poller
func New(fetcher Fetcher, processor Processor, dedup DedupStore, interval time.Duration, m *metrics.AgentMetrics, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 3 * time.Minute
	}
	return &Poller{
		fetcher:   fetcher,
		processor: processor,
		dedup:     dedup,
		interval:  interval,
		metrics:   m,
		logger:    logger,
	}
}

// Run executa o loop de polling até o contexto ser cancelado
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller de e-mails iniciado", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller de e-mails encerrado")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce executa um ciclo: busca e-mails recentes e processa os novos
func (p *Poller) PollOnce(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("verificando caixa de entrada")

	emails, err := p.fetcher.FetchRecent(ctx, 10, 2)
	if err != nil {
		p.logger.Error("erro no ciclo de polling", zap.Error(err))
		return
	}
	if len(emails) == 0 {
		p.logger.Debug("nenhum e-mail novo")
		p.metrics.PollCycleCompleted()
		return
	}

	p.logger.Info("e-mails novos encontrados", zap.Int("count", len(emails)))
	p.processBatch(ctx, emails)
	p.metrics.PollCycleCompleted()
}

// ImportAll busca todos os e-mails da INBOX e subpastas e roda a pipeline
// sobre os ainda não processados. Usado na importação inicial.
func (p *Poller) ImportAll(ctx context.Context, maxPerFolder, sinceDays int) ImportResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("iniciando importação completa",
		zap.Int("maxPerFolder", maxPerFolder),
		zap.Int("sinceDays", sinceDays))

	var result ImportResult

	emails, err := p.fetcher.FetchAll(ctx, maxPerFolder, sinceDays)
	if err != nil {
		p.logger.Error("erro na importação completa", zap.Error(err))
		return result
	}
	result.TotalFound = len(emails)

	for _, email := range emails {
		processed, err := p.dedup.IsProcessed(ctx, email.MessageID)
		if err != nil {
			p.logger.Error("erro na deduplicação", zap.Error(err))
			result.Failed++
			continue
		}
		if processed {
			result.Skipped++
			continue
		}

		if _, err := p.processor.Process(ctx, email); err != nil {
			p.logger.Error("pipeline falhou durante importação",
				zap.String("messageID", email.MessageID),
				zap.Error(err))
			result.Failed++
			continue
		}
		result.Imported++
	}

	p.logger.Info("importação completa concluída",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("totalFound", result.TotalFound))
	return result
}

func (p *Poller) processBatch(ctx context.Context, emails []model.InboundEmail) {
	for _, email := range emails {
		processed, err := p.dedup.IsProcessed(ctx, email.MessageID)
		if err != nil {
			p.logger.Error("erro na deduplicação", zap.Error(err))
			continue
		}
		if processed {
			p.logger.Debug("e-mail já processado, pulando",
				zap.String("messageID", email.MessageID))
			continue
		}

		if _, err := p.processor.Process(ctx, email); err != nil {
			p.logger.Error("pipeline falhou",
				zap.String("messageID", email.MessageID),
				zap.Error(err))
		}
	}
}
