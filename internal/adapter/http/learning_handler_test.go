package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/learning"
	"github.com/das-elb/email-agent-go/internal/testutils"
)

type fakeLearningService struct {
	result  *learning.SyncResult
	profile *model.StyleProfile
	err     error
}

func (f *fakeLearningService) Sync(ctx context.Context, maxResults, sinceDays int) (*learning.SyncResult, error) {
	return f.result, f.err
}

func (f *fakeLearningService) Profile(ctx context.Context) (*model.StyleProfile, error) {
	return f.profile, f.err
}

type fakePromptUpdater struct {
	updated map[uint]string
}

func (f *fakePromptUpdater) UpdateInjectedPrompt(ctx context.Context, id uint, prompt string) error {
	if f.updated == nil {
		f.updated = map[uint]string{}
	}
	if id == 999 {
		return errors.New("perfil de estilo não encontrado")
	}
	f.updated[id] = prompt
	return nil
}

func TestLearningHandler_Sync(t *testing.T) {
	service := &fakeLearningService{
		result: &learning.SyncResult{EmailsAnalyzed: 12, IndexSize: 12, InjectedPrompt: "estilo"},
	}
	handler := NewLearningHandler(service, &fakePromptUpdater{}, zaptest.NewLogger(t))

	router := testutils.SetupTestRouter(t)
	router.POST("/learning/sync", handler.Sync)

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/learning/sync", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	testutils.RequireJSONContentType(t, resp)

	var result learning.SyncResult
	testutils.ParseResponse(t, resp, &result)
	assert.Equal(t, 12, result.EmailsAnalyzed)
}

func TestLearningHandler_SyncComFalha(t *testing.T) {
	service := &fakeLearningService{err: errors.New("IMAP indisponível")}
	handler := NewLearningHandler(service, &fakePromptUpdater{}, zaptest.NewLogger(t))

	router := testutils.SetupTestRouter(t)
	router.POST("/learning/sync", handler.Sync)

	resp := testutils.MakeRequest(t, router, http.MethodPost, "/learning/sync", nil, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusInternalServerError)
}

func TestLearningHandler_UpdatePrompt(t *testing.T) {
	updater := &fakePromptUpdater{}
	handler := NewLearningHandler(&fakeLearningService{}, updater, zaptest.NewLogger(t))

	router := testutils.SetupTestRouter(t)
	router.PUT("/learning/profile/:id/prompt", handler.UpdatePrompt)

	resp := testutils.MakeRequest(t, router, http.MethodPut, "/learning/profile/3/prompt",
		UpdatePromptRequest{InjectedPrompt: "novo estilo"}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusOK)
	require.Equal(t, "novo estilo", updater.updated[3])

	resp = testutils.MakeRequest(t, router, http.MethodPut, "/learning/profile/999/prompt",
		UpdatePromptRequest{InjectedPrompt: "x"}, nil)
	testutils.RequireHTTPStatus(t, resp, http.StatusNotFound)
}
