package domain

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeFailed   Outcome = "failed"
)

// SubmissionEvent registra o resultado de um envio.
//
// Cuidado com cardinalidade: SubmissionID é único por envio e não deve virar
// chave em Redis/Prometheus; use ProductGroup/Outcome para agregar.
type SubmissionEvent struct {
	SubmissionID string
	ProductGroup ProductGroup
	Outcome      Outcome
	StatusCode   int

	// Waited é o tempo parado no gate; Took é a duração total do envio.
	Waited time.Duration
	Took   time.Duration

	At time.Time
}

// StatsStore persiste estatísticas de envio. O cliente trata como best-effort:
// erro aqui é só logado, nunca derruba o envio.
type StatsStore interface {
	Record(ctx context.Context, ev SubmissionEvent) error
}
