package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crpt-gateway/client/crpt/domain"
)

// AdmissionService concentra a espera pela permissão do gate,
// sem saber nada sobre HTTP.
type AdmissionService struct {
	Gate           domain.PermitGate
	AcquireTimeout time.Duration
}

// Acquire espera uma permissão.
// - Se `AcquireTimeout <= 0`, espera até o ctx do chamador encerrar.
// - Se `AcquireTimeout > 0`, desiste com domain.ErrAdmissionTimeout.
// Cancelamento do chamador volta como ctx.Err() (embrulhado, errors.Is funciona).
func (s AdmissionService) Acquire(ctx context.Context) error {
	if s.Gate == nil {
		return nil
	}

	if s.AcquireTimeout <= 0 {
		if err := s.Gate.Acquire(ctx); err != nil {
			return fmt.Errorf("waiting for admission: %w", err)
		}
		return nil
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()

	err := s.Gate.Acquire(acqCtx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", domain.ErrAdmissionTimeout, s.AcquireTimeout)
	default:
		return fmt.Errorf("waiting for admission: %w", err)
	}
}
