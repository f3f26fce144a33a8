package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/internal/poller"
)

type fakeEmailStore struct {
	records   map[uint]*model.EmailRecord
	sentID    uint
	sentBody  string
	rejected  uint
	escalated uint
	drafts    map[uint][2]string
	audits    []*model.AuditLog
}

func newFakeEmailStore(records ...*model.EmailRecord) *fakeEmailStore {
	s := &fakeEmailStore{
		records: map[uint]*model.EmailRecord{},
		drafts:  map[uint][2]string{},
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeEmailStore) GetByID(ctx context.Context, id uint) (*model.EmailRecord, error) {
	if r, ok := s.records[id]; ok {
		return r, nil
	}
	return nil, database.ErrRecordNotFound
}

func (s *fakeEmailStore) List(ctx context.Context, status, intent string, limit, offset int) ([]*model.EmailRecord, error) {
	var out []*model.EmailRecord
	for _, r := range s.records {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeEmailStore) MarkSent(ctx context.Context, id uint, approvedBy, finalBody string, revenue float64) error {
	s.sentID = id
	s.sentBody = finalBody
	return nil
}

func (s *fakeEmailStore) MarkRejected(ctx context.Context, id uint, rejectedBy, reason string) error {
	s.rejected = id
	return nil
}

func (s *fakeEmailStore) MarkEscalated(ctx context.Context, id uint, escalatedBy string) error {
	s.escalated = id
	return nil
}

func (s *fakeEmailStore) UpdateDraft(ctx context.Context, id uint, subject, body string) error {
	s.drafts[id] = [2]string{subject, body}
	return nil
}

func (s *fakeEmailStore) AddAuditLog(ctx context.Context, log *model.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

type fakeSender struct {
	sent     []string
	subjects []string
	err      error
}

func (f *fakeSender) SendReply(ctx context.Context, to, subject, body, inReplyTo string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	f.subjects = append(f.subjects, subject)
	return nil
}

type fakeEscalator struct {
	sent int
}

func (f *fakeEscalator) SendEscalationEmail(ctx context.Context, to, originalSubject, fromEmail, reason string, recordID uint) error {
	f.sent++
	return nil
}

type fakeRefiner struct {
	draft *agents.Draft
	err   error
}

func (f *fakeRefiner) Refine(ctx context.Context, originalSubject, originalBody, draftSubject, draftBody, instructions, language string) (*agents.Draft, error) {
	return f.draft, f.err
}

type fakeReprocessor struct {
	record *model.EmailRecord
	err    error
	seen   []model.InboundEmail
}

func (f *fakeReprocessor) Process(ctx context.Context, email model.InboundEmail) (*model.EmailRecord, error) {
	f.seen = append(f.seen, email)
	return f.record, f.err
}

type fakeImporter struct {
	polls   int
	imports int
}

func (f *fakeImporter) PollOnce(ctx context.Context) { f.polls++ }

func (f *fakeImporter) ImportAll(ctx context.Context, maxPerFolder, sinceDays int) poller.ImportResult {
	f.imports++
	return poller.ImportResult{Imported: 3}
}

type handlerFixture struct {
	handler     *EmailHandler
	store       *fakeEmailStore
	sender      *fakeSender
	escalator   *fakeEscalator
	reprocessor *fakeReprocessor
	importer    *fakeImporter
	router      *gin.Engine
}

func newHandlerFixture(t *testing.T, records ...*model.EmailRecord) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		store:     newFakeEmailStore(records...),
		sender:    &fakeSender{},
		escalator: &fakeEscalator{},
		reprocessor: &fakeReprocessor{
			record: &model.EmailRecord{ID: 1, Intent: "booking_request", Status: model.StatusDraftCreated},
		},
		importer: &fakeImporter{},
	}

	refiner := &fakeRefiner{draft: &agents.Draft{Subject: "Re: Anfrage", BodyText: "Rascunho refinado"}}

	f.handler = NewEmailHandler(f.store, f.reprocessor, f.sender, f.escalator, refiner, f.importer,
		"manager@das-elb.de", metrics.NewAgentMetrics(), zaptest.NewLogger(t))

	f.router = gin.New()
	f.router.GET("/emails", f.handler.ListEmails)
	f.router.GET("/emails/:id", f.handler.GetEmail)
	f.router.POST("/emails/:id/approve", f.handler.ApproveEmail)
	f.router.POST("/emails/:id/reject", f.handler.RejectEmail)
	f.router.POST("/emails/:id/escalate", f.handler.EscalateEmail)
	f.router.POST("/emails/:id/retry", f.handler.RetryEmail)
	f.router.POST("/emails/:id/refine", f.handler.RefineDraft)
	f.router.POST("/emails/import-all", f.handler.ImportAll)
	f.router.POST("/emails/poll", f.handler.TriggerPoll)
	return f
}

func pendingRecord() *model.EmailRecord {
	return &model.EmailRecord{
		ID:           1,
		MessageID:    "<msg-1@example.com>",
		FromEmail:    "gast@example.com",
		Subject:      "Anfrage",
		Body:         "Haben Sie ein Zimmer frei?",
		Intent:       "availability_inquiry",
		Status:       model.StatusDraftCreated,
		DraftSubject: "Re: Anfrage",
		DraftBody:    "Sehr geehrter Gast, ...",
	}
}

func doJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEmailHandler_GetEmail(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodGet, "/emails/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(f.router, http.MethodGet, "/emails/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(f.router, http.MethodGet, "/emails/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmailHandler_ApproveEnviaEAudita(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/approve", ApproveRequest{EditedBody: "Corpo editado"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []string{"gast@example.com"}, f.sender.sent)
	assert.Equal(t, uint(1), f.store.sentID)
	assert.Equal(t, "Corpo editado", f.store.sentBody)
	require.Len(t, f.store.audits, 1)
	assert.Equal(t, "approved_and_sent", f.store.audits[0].Action)
	assert.NotZero(t, f.store.audits[0].DiffChars)
}

func TestEmailHandler_ApproveComAssuntoEditado(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/approve", ApproveRequest{
		EditedSubject: "Ihre Zimmeranfrage",
		EditedBody:    "Corpo editado",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, f.sender.subjects, 1)
	assert.Equal(t, "Ihre Zimmeranfrage", f.sender.subjects[0])
}

func TestEmailHandler_ApproveReconsideraRejeitado(t *testing.T) {
	record := pendingRecord()
	record.Status = model.StatusRejected
	f := newHandlerFixture(t, record)

	// Um rascunho rejeitado ainda pode ser aprovado em reconsideração
	w := doJSON(f.router, http.MethodPost, "/emails/1/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, uint(1), f.store.sentID)
}

func TestEmailHandler_ApproveStatusInvalido(t *testing.T) {
	record := pendingRecord()
	record.Status = model.StatusSent
	f := newHandlerFixture(t, record)

	w := doJSON(f.router, http.MethodPost, "/emails/1/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, f.sender.sent)
}

func TestEmailHandler_ApproveFalhaDeSMTPNaoAtualizaRegistro(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())
	f.sender.err = errors.New("conexão recusada")

	w := doJSON(f.router, http.MethodPost, "/emails/1/approve", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, f.store.sentID)
}

func TestEmailHandler_Reject(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/reject", RejectRequest{Reason: "tom inadequado"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), f.store.rejected)
	require.Len(t, f.store.audits, 1)
	assert.Equal(t, "rejected", f.store.audits[0].Action)
}

func TestEmailHandler_EscalateNotificaGerencia(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/escalate", EscalateRequest{Reason: "pedido incomum"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(1), f.store.escalated)
	assert.Equal(t, 1, f.escalator.sent)
}

func TestEmailHandler_RetryReprocessaNoLugar(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/retry", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.reprocessor.seen, 1)
	assert.Equal(t, uint(1), f.reprocessor.seen[0].UpdateID)
	assert.Equal(t, "<msg-1@example.com>", f.reprocessor.seen[0].MessageID)
}

func TestEmailHandler_RefineAtualizaRascunho(t *testing.T) {
	f := newHandlerFixture(t, pendingRecord())

	w := doJSON(f.router, http.MethodPost, "/emails/1/refine", RefineRequest{Instructions: "mais formal"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [2]string{"Re: Anfrage", "Rascunho refinado"}, f.store.drafts[1])

	w = doJSON(f.router, http.MethodPost, "/emails/1/refine", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "instruções são obrigatórias")
}

func TestEmailHandler_ImportAllRespondeImediatamente(t *testing.T) {
	f := newHandlerFixture(t)

	w := doJSON(f.router, http.MethodPost, "/emails/import-all", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
