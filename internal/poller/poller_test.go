package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
)

type fakeFetcher struct {
	recent []model.InboundEmail
	all    []model.InboundEmail
	err    error
}

func (f *fakeFetcher) FetchRecent(ctx context.Context, maxResults, sinceDays int) ([]model.InboundEmail, error) {
	return f.recent, f.err
}

func (f *fakeFetcher) FetchAll(ctx context.Context, maxPerFolder, sinceDays int) ([]model.InboundEmail, error) {
	return f.all, f.err
}

type fakeProcessor struct {
	processed []string
	failFor   map[string]bool
}

func (p *fakeProcessor) Process(ctx context.Context, email model.InboundEmail) (*model.EmailRecord, error) {
	if p.failFor[email.MessageID] {
		return nil, errors.New("pipeline falhou")
	}
	p.processed = append(p.processed, email.MessageID)
	return &model.EmailRecord{MessageID: email.MessageID}, nil
}

type fakeDedup struct {
	known map[string]bool
}

func (d *fakeDedup) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	return d.known[messageID], nil
}

func newTestPoller(t *testing.T, fetcher Fetcher, processor Processor, dedup DedupStore) *Poller {
	t.Helper()
	return New(fetcher, processor, dedup, time.Minute, metrics.NewAgentMetrics(), zaptest.NewLogger(t))
}

func TestPollOnce_ProcessaApenasNovos(t *testing.T) {
	fetcher := &fakeFetcher{recent: []model.InboundEmail{
		{MessageID: "<a@x>"},
		{MessageID: "<b@x>"},
		{MessageID: "<c@x>"},
	}}
	processor := &fakeProcessor{}
	dedup := &fakeDedup{known: map[string]bool{"<b@x>": true}}

	p := newTestPoller(t, fetcher, processor, dedup)
	p.PollOnce(context.Background())

	assert.Equal(t, []string{"<a@x>", "<c@x>"}, processor.processed)
}

func TestPollOnce_ErroDeFetchNaoDerruba(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("imap indisponível")}
	processor := &fakeProcessor{}

	p := newTestPoller(t, fetcher, processor, &fakeDedup{})
	p.PollOnce(context.Background())

	assert.Empty(t, processor.processed)
}

func TestImportAll_ContaResultados(t *testing.T) {
	fetcher := &fakeFetcher{all: []model.InboundEmail{
		{MessageID: "<1@x>"},
		{MessageID: "<2@x>"},
		{MessageID: "<3@x>"},
		{MessageID: "<4@x>"},
	}}
	processor := &fakeProcessor{failFor: map[string]bool{"<3@x>": true}}
	dedup := &fakeDedup{known: map[string]bool{"<2@x>": true}}

	p := newTestPoller(t, fetcher, processor, dedup)
	result := p.ImportAll(context.Background(), 500, 180)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 4, result.TotalFound)
}

func TestRun_EncerraComContexto(t *testing.T) {
	fetcher := &fakeFetcher{}
	p := New(fetcher, &fakeProcessor{}, &fakeDedup{}, 10*time.Millisecond, metrics.NewAgentMetrics(), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller não encerrou após cancelamento do contexto")
	}
}
