package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
)

// fakeCompleter devolve respostas prontas por agente
type fakeCompleter struct {
	responses map[string]model.JSONMap
	errors    map[string]error
	calls     []string
}

func (f *fakeCompleter) Complete(ctx context.Context, agent, system, user string, maxTokens int) (model.JSONMap, error) {
	f.calls = append(f.calls, agent)
	if err, ok := f.errors[agent]; ok {
		return nil, err
	}
	if resp, ok := f.responses[agent]; ok {
		return resp, nil
	}
	return model.JSONMap{}, nil
}

type fakeStore struct {
	saved    []*model.EmailRecord
	updateID uint
}

func (s *fakeStore) SaveRecord(ctx context.Context, record *model.EmailRecord, updateID uint) (*model.EmailRecord, error) {
	s.saved = append(s.saved, record)
	s.updateID = updateID
	record.ID = uint(len(s.saved))
	return record, nil
}

type fakeVIPs struct {
	info *model.VIPInfo
}

func (v *fakeVIPs) Lookup(ctx context.Context, email string) (*model.VIPInfo, error) {
	return v.info, nil
}

type fakeStyles struct {
	profile *model.StyleProfile
}

func (s *fakeStyles) LatestProfile(ctx context.Context) (*model.StyleProfile, error) {
	return s.profile, nil
}

type fakeNotifier struct {
	notified bool
	recordID uint
}

func (n *fakeNotifier) NotifyIfNeeded(ctx context.Context, risk, policy model.JSONMap, subject, fromEmail string, recordID uint) {
	n.notified = true
	n.recordID = recordID
}

func happyResponses() map[string]model.JSONMap {
	return map[string]model.JSONMap{
		"intent": {
			"primary_intent": "room_booking",
			"confidence":     0.95,
			"language":       "de",
			"urgency":        "medium",
		},
		"entities": {
			"guest_name":        "Max Mustermann",
			"estimated_revenue": 338.0,
		},
		"risk": {
			"overall_risk_score":   0.1,
			"recommended_priority": "normal",
		},
		"policy": {
			"is_fulfillable":            true,
			"requires_manager_approval": false,
		},
		"response": {
			"subject":           "Re: Zimmeranfrage",
			"body_text":         "Sehr geehrter Herr Mustermann, ...",
			"detected_language": "de",
		},
	}
}

func newTestOrchestrator(t *testing.T, completer *fakeCompleter, store *fakeStore, notifier *fakeNotifier) *Orchestrator {
	t.Helper()
	return NewOrchestrator(Options{
		Intent:   agents.NewIntentClassifier(completer),
		Entities: agents.NewEntityExtractor(completer),
		Risk:     agents.NewRiskAnalyzer(completer),
		Policy:   agents.NewPolicyValidator(completer, nil),
		Response: agents.NewResponseWriter(completer),
		Store:    store,
		VIPs:     &fakeVIPs{},
		Styles:   &fakeStyles{},
		Notifier: notifier,
		Metrics:  metrics.NewAgentMetrics(),
		Logger:   zaptest.NewLogger(t),
	})
}

func TestProcess_FluxoCompleto(t *testing.T) {
	completer := &fakeCompleter{responses: happyResponses()}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := newTestOrchestrator(t, completer, store, notifier)

	email := model.InboundEmail{
		MessageID: "<msg-1@gmail.com>",
		FromEmail: "max@gmail.com",
		Subject:   "Zimmeranfrage",
		Body:      "Guten Tag, ich möchte eine Suite buchen.",
	}

	record, err := orch.Process(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraftCreated, record.Status)
	assert.Equal(t, "room_booking", record.Intent)
	assert.Equal(t, "de", record.Language)
	assert.Equal(t, "Re: Zimmeranfrage", record.DraftSubject)
	assert.InDelta(t, 338.0, record.RevenueAttributed, 0.001)
	assert.True(t, notifier.notified)
	require.Len(t, store.saved, 1)
}

func TestProcess_NoReplyPulaRascunho(t *testing.T) {
	completer := &fakeCompleter{responses: happyResponses()}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	orch := newTestOrchestrator(t, completer, store, notifier)

	email := model.InboundEmail{
		MessageID: "<msg-2@booking.com>",
		FromEmail: "noreply@booking.com",
		Subject:   "Neue Buchung eingegangen",
		Body:      "Buchungsdetails...",
	}

	record, err := orch.Process(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, model.StatusNoReplyNeeded, record.Status)
	assert.Empty(t, record.DraftBody)
	assert.False(t, notifier.notified)

	// Redator nunca deve ter sido chamado
	assert.NotContains(t, completer.calls, "response")
	assert.NotContains(t, completer.calls, "policy")
}

func TestProcess_FalhaGeraRegistroFailed(t *testing.T) {
	completer := &fakeCompleter{
		responses: happyResponses(),
		errors:    map[string]error{"response": errors.New("api indisponível")},
	}
	store := &fakeStore{}
	orch := newTestOrchestrator(t, completer, store, &fakeNotifier{})

	email := model.InboundEmail{
		MessageID: "<msg-3@gmail.com>",
		FromEmail: "gast@gmail.com",
		Subject:   "Anfrage",
		Body:      "Hallo",
	}

	_, err := orch.Process(context.Background(), email)
	require.Error(t, err)

	require.Len(t, store.saved, 1)
	assert.Equal(t, model.StatusFailed, store.saved[0].Status)
	assert.Equal(t, "<msg-3@gmail.com>", store.saved[0].MessageID)
}

func TestProcess_ReprocessamentoUsaUpdateID(t *testing.T) {
	completer := &fakeCompleter{responses: happyResponses()}
	store := &fakeStore{}
	orch := newTestOrchestrator(t, completer, store, &fakeNotifier{})

	email := model.InboundEmail{
		MessageID: "<msg-4@gmail.com>",
		FromEmail: "gast@gmail.com",
		Subject:   "Anfrage",
		Body:      "Hallo",
		UpdateID:  42,
	}

	_, err := orch.Process(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, uint(42), store.updateID)
}

func TestProcess_AssuntoVazio(t *testing.T) {
	completer := &fakeCompleter{responses: happyResponses()}
	store := &fakeStore{}
	orch := newTestOrchestrator(t, completer, store, &fakeNotifier{})

	email := model.InboundEmail{
		MessageID: "<msg-5@gmail.com>",
		FromEmail: "gast@gmail.com",
		Body:      "Hallo",
	}

	record, err := orch.Process(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "(no subject)", record.Subject)
}
