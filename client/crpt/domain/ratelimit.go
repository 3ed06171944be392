package domain

// Limite por chamador na entrada do gateway (antes do gate de admissão).
//
// O gate protege a cota da API; este limite evita que um único participante
// ocupe a janela inteira.

import "time"

// Key identifica o chamador (INN do participante, IP...).
type Key string

// Limiter decide se uma ação é permitida agora.
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave.
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor devolvido em Retry-After quando bloquear.
	RetryAfter time.Duration
}
