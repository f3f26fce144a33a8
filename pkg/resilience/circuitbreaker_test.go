package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestBreaker(t *testing.T, maxFails int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:            "teste",
		MaxRequestsFail: maxFails,
		Timeout:         timeout,
	}, zaptest.NewLogger(t), nil)
}

func TestCircuitBreaker_AbreAposFalhasConsecutivas(t *testing.T) {
	cb := newTestBreaker(t, 2, time.Minute)
	failing := func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("serviço indisponível")
	}

	ctx := context.Background()
	_, err := cb.Execute(ctx, failing)
	require.Error(t, err)
	assert.Equal(t, StateClose, cb.GetState())

	_, err = cb.Execute(ctx, failing)
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.GetState())

	// Com o circuito aberto, a chamada nem chega na função
	_, err = cb.Execute(ctx, failing)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SucessoZeraContador(t *testing.T) {
	cb := newTestBreaker(t, 2, time.Minute)
	ctx := context.Background()

	_, _ = cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("falha")
	})
	_, err := cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	// Uma nova falha isolada não abre o circuito
	_, _ = cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("falha")
	})
	assert.Equal(t, StateClose, cb.GetState())
}

func TestCircuitBreaker_RecuperacaoViaHalfOpen(t *testing.T) {
	cb := newTestBreaker(t, 1, 10*time.Millisecond)
	ctx := context.Background()

	_, _ = cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("falha")
	})
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(20 * time.Millisecond)

	// Sonda bem-sucedida fecha o circuito
	result, err := cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, StateClose, cb.GetState())
}

func TestCircuitBreaker_FalhaNaSondaReabre(t *testing.T) {
	cb := newTestBreaker(t, 1, 10*time.Millisecond)
	ctx := context.Background()

	_, _ = cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("falha")
	})
	time.Sleep(20 * time.Millisecond)

	_, err := cb.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("ainda fora do ar")
	})
	require.Error(t, err)
	assert.Equal(t, StateOpen, cb.GetState())
}
