package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

func TestStyleRepository_LatestProfile(t *testing.T) {
	repo := NewStyleRepository(setupTestDB(t))
	ctx := context.Background()

	profile, err := repo.LatestProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, profile, "sem perfis gravados deve devolver nil")

	old := &model.StyleProfile{
		LearnedAt:      time.Now().Add(-48 * time.Hour),
		EmailsAnalyzed: 10,
		InjectedPrompt: "perfil antigo",
	}
	require.NoError(t, repo.SaveProfile(ctx, old))

	recent := &model.StyleProfile{
		LearnedAt:      time.Now(),
		EmailsAnalyzed: 25,
		InjectedPrompt: "perfil recente",
		ProfileJSON:    model.JSONMap{"greeting_style": "Sehr geehrte/r"},
	}
	require.NoError(t, repo.SaveProfile(ctx, recent))

	got, err := repo.LatestProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "perfil recente", got.InjectedPrompt)
	assert.Equal(t, 25, got.EmailsAnalyzed)
}

func TestStyleRepository_UpdateInjectedPrompt(t *testing.T) {
	repo := NewStyleRepository(setupTestDB(t))
	ctx := context.Background()

	profile := &model.StyleProfile{LearnedAt: time.Now(), InjectedPrompt: "original"}
	require.NoError(t, repo.SaveProfile(ctx, profile))

	require.NoError(t, repo.UpdateInjectedPrompt(ctx, profile.ID, "ajustado pela equipe"))

	got, err := repo.LatestProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ajustado pela equipe", got.InjectedPrompt)

	assert.Error(t, repo.UpdateInjectedPrompt(ctx, 999, "x"))
}
