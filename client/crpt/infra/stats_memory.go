package infra

import (
	"context"
	"sync"
	"time"

	"crpt-gateway/client/crpt/domain"
)

type Counters struct {
	Accepted int64
	Rejected int64
	Invalid  int64
	Failed   int64

	// Waited soma o tempo parado no gate (só envios admitidos).
	Waited time.Duration
}

func (c *Counters) add(ev domain.SubmissionEvent) {
	switch ev.Outcome {
	case domain.OutcomeAccepted:
		c.Accepted++
	case domain.OutcomeRejected:
		c.Rejected++
	case domain.OutcomeInvalid:
		c.Invalid++
	default:
		c.Failed++
	}
	c.Waited += ev.Waited
}

// MemoryStatsStore guarda os contadores em memória.
// Útil para testes e para o CLI. Não expira nada.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byGroup map[domain.ProductGroup]Counters
	last    domain.SubmissionEvent
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byGroup: make(map[domain.ProductGroup]Counters)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.SubmissionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)
	c := s.byGroup[ev.ProductGroup]
	c.add(ev)
	s.byGroup[ev.ProductGroup] = c
	s.last = ev
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByGroup() map[domain.ProductGroup]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.ProductGroup]Counters, len(s.byGroup))
	for k, v := range s.byGroup {
		out[k] = v
	}
	return out
}

// Last é o evento mais recente registrado.
func (s *MemoryStatsStore) Last() domain.SubmissionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
