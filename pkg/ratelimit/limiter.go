package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter é a interface comum entre os limitadores Redis e em memória
type Limiter interface {
	Allow(ctx context.Context, config LimitConfig) (bool, int, int, time.Duration, error)
}

// MemoryLimiter implementa rate limiting em memória, por janela fixa.
// Usado quando o Redis está desabilitado na configuração.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count    int
	expireAt time.Time
}

// NewMemoryLimiter cria um limitador em memória
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window)}
}

// Allow verifica se a operação é permitida dentro do limite de taxa
func (m *MemoryLimiter) Allow(ctx context.Context, config LimitConfig) (bool, int, int, time.Duration, error) {
	if config.Limit <= 0 || config.Period <= 0 {
		return true, config.Limit, config.Limit, 0, nil
	}

	burst := config.BurstFactor
	if burst <= 0 {
		burst = 1.0
	}
	burstLimit := int(float64(config.Limit) * burst)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[config.Key]
	if !ok || now.After(w.expireAt) {
		w = &window{expireAt: now.Truncate(config.Period).Add(config.Period)}
		m.windows[config.Key] = w
	}

	w.count++
	remaining := config.Limit - w.count
	if remaining < 0 {
		remaining = 0
	}

	return w.count <= burstLimit, config.Limit, remaining, time.Until(w.expireAt), nil
}
