package application

import (
	"time"

	"crpt-gateway/client/crpt/domain"
)

// CallerLimitService decide se um chamador do gateway pode enviar agora.
// Só devolve a decisão; status e headers ficam com o adapter HTTP.
type CallerLimitService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s CallerLimitService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}
