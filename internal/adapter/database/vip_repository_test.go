package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

func TestVIPRepository_LookupNormalizaEmail(t *testing.T) {
	repo := NewVIPRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Add(ctx, &model.VIPGuest{
		Email:   "Anna.Schmidt@Example.COM",
		Name:    "Anna Schmidt",
		Tier:    "platinum",
		Company: "Schmidt GmbH",
	})
	require.NoError(t, err)

	info, err := repo.Lookup(ctx, "  anna.schmidt@example.com ")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Anna Schmidt", info.Name)
	assert.Equal(t, "platinum", info.Tier)
}

func TestVIPRepository_LookupAusenteDevolveNil(t *testing.T) {
	repo := NewVIPRepository(setupTestDB(t))

	info, err := repo.Lookup(context.Background(), "ninguem@example.com")
	require.NoError(t, err)
	assert.Nil(t, info)

	info, err = repo.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestVIPRepository_AddAtualizaExistente(t *testing.T) {
	repo := NewVIPRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &model.VIPGuest{Email: "vip@example.com", Tier: "gold"}))
	require.NoError(t, repo.Add(ctx, &model.VIPGuest{Email: "vip@example.com", Tier: "press"}))

	guests, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "press", guests[0].Tier)
}

func TestVIPRepository_Remove(t *testing.T) {
	repo := NewVIPRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &model.VIPGuest{Email: "vip@example.com", Tier: "gold"}))
	require.NoError(t, repo.Remove(ctx, "VIP@example.com"))

	assert.Error(t, repo.Remove(ctx, "vip@example.com"))
}
