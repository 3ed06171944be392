package crpt

import (
	"context"
	"net/http"
	"time"
)

// WaitingRoomOptions limita quantos pedidos ficam dentro do relay ao mesmo tempo
// (parados no gate ou falando com a API). Quem não consegue lugar em
// AcquireTimeout recebe RejectStatus (padrão 503).
type WaitingRoomOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

func WaitingRoom(opts WaitingRoomOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	seats := make(chan struct{}, opts.Max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			waitCtx := r.Context()
			if opts.AcquireTimeout > 0 {
				var cancel context.CancelFunc
				waitCtx, cancel = context.WithTimeout(waitCtx, opts.AcquireTimeout)
				defer cancel()
			}

			select {
			case seats <- struct{}{}:
			case <-waitCtx.Done():
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer func() { <-seats }()

			next.ServeHTTP(w, r)
		})
	}
}
