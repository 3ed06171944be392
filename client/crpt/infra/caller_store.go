package infra

import (
	"context"
	"sync"
	"time"

	"crpt-gateway/client/crpt/domain"

	"golang.org/x/time/rate"
)

// CallerStore mantém um token bucket (x/time/rate) por chamador do gateway.
// Chamadores sem atividade por idleTTL são descartados pelo janitor.
type CallerStore struct {
	mu      sync.Mutex
	callers map[domain.Key]*caller
	every   time.Duration
	burst   int
	idleTTL time.Duration
	sweep   time.Duration
	now     func() time.Time
}

type caller struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type CallerStoreOption func(*CallerStore)

func WithIdleTTL(d time.Duration) CallerStoreOption {
	return func(s *CallerStore) { s.idleTTL = d }
}

func WithSweepEvery(d time.Duration) CallerStoreOption {
	return func(s *CallerStore) { s.sweep = d }
}

// NewCallerStore libera um envio a cada `every` por chamador, com rajada `burst`.
func NewCallerStore(every time.Duration, burst int, opts ...CallerStoreOption) *CallerStore {
	s := &CallerStore{
		callers: make(map[domain.Key]*caller),
		every:   every,
		burst:   burst,
		idleTTL: 15 * time.Minute,
		sweep:   2 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CallerStore) Every() time.Duration { return s.every }
func (s *CallerStore) Burst() int           { return s.burst }

// RPS é a taxa sustentada por chamador (usada nos headers X-RateLimit-*).
func (s *CallerStore) RPS() float64 { return float64(rate.Every(s.every)) }

// Get implementa domain.LimiterStore.
func (s *CallerStore) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.callers[key]
	if !ok {
		c = &caller{lim: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.callers[key] = c
	}
	c.lastSeen = now
	return c.lim
}

// Len é o número de chamadores rastreados.
func (s *CallerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callers)
}

// Sweep remove os chamadores inativos há mais de idleTTL.
func (s *CallerStore) Sweep() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, c := range s.callers {
		if c.lastSeen.Before(cutoff) {
			delete(s.callers, k)
		}
	}
}

// StartJanitor roda Sweep periodicamente até o ctx encerrar.
func (s *CallerStore) StartJanitor(ctx context.Context) {
	if s.sweep <= 0 {
		return
	}

	t := time.NewTicker(s.sweep)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}
