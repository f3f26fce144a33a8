package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateEAutenticar(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "maria", "senha-forte", "maria@das-elb.de", "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "staff", created.Role, "papel padrão")

	user, err := repo.GetUserByCredentials(ctx, "maria", "senha-forte")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = repo.GetUserByCredentials(ctx, "maria", "senha-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.GetUserByCredentials(ctx, "inexistente", "senha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserRepository_GetUserByIDEList(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "joao", "outra-senha", "joao@das-elb.de", "manager")
	require.NoError(t, err)

	got, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "manager", got.Role)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
