package infra

import (
	"context"
	"math"
	"time"

	"crpt-gateway/client/crpt/domain"
)

// WindowGate é um semáforo em channel cuja vaga volta por timer, não por quem adquiriu.
//
// Cada Acquire bem-sucedido agenda a devolução da vaga para daqui a
// unit*delay. Com isso no máximo `limit` admissões acontecem em qualquer janela,
// mesmo que as chamadas terminem na hora ou fiquem penduradas.
//
// Observação: a janela conta a partir da admissão. Chamadas mais longas que a
// janela podem ficar em andamento ao mesmo tempo que novas admissões.
type WindowGate struct {
	sem       chan struct{}
	unit      time.Duration
	delay     int64
	scheduler domain.Scheduler
}

type WindowGateOption func(*WindowGate)

// WithTimeDelay define a janela em unidades de tempo (padrão 1).
func WithTimeDelay(n int64) WindowGateOption {
	return func(g *WindowGate) { g.delay = n }
}

// WithScheduler troca o agendador da devolução (padrão time.AfterFunc).
func WithScheduler(s domain.Scheduler) WindowGateOption {
	return func(g *WindowGate) { g.scheduler = s }
}

var afterFunc = domain.SchedulerFunc(func(d time.Duration, f func()) { time.AfterFunc(d, f) })

// NewWindowGate cria o gate com `requestLimit` permissões por janela de unit*delay.
func NewWindowGate(unit time.Duration, requestLimit int, opts ...WindowGateOption) (*WindowGate, error) {
	if unit <= 0 {
		return nil, &domain.ConfigError{Field: "timeUnit", Reason: "must be set"}
	}
	if requestLimit < 1 {
		return nil, &domain.ConfigError{Field: "requestLimit", Reason: "must be greater than 0"}
	}

	g := &WindowGate{
		sem:       make(chan struct{}, requestLimit),
		unit:      unit,
		delay:     1,
		scheduler: afterFunc,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.delay < 1 {
		return nil, &domain.ConfigError{Field: "timeDelay", Reason: "must be greater than 0"}
	}
	if g.delay > math.MaxInt64/int64(unit) {
		return nil, &domain.ConfigError{Field: "timeDelay", Reason: "overflows the window duration"}
	}
	if g.scheduler == nil {
		g.scheduler = afterFunc
	}
	return g, nil
}

// Acquire bloqueia até existir vaga ou o ctx encerrar.
// Cancelado, devolve ctx.Err() e não mexe na contagem.
func (g *WindowGate) Acquire(ctx context.Context) error {
	// o select escolhe aleatoriamente entre casos prontos; sem isso um ctx
	// já cancelado ainda poderia ser admitido.
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case g.sem <- struct{}{}:
		g.scheduler.AfterFunc(g.Window(), g.release)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release roda na goroutine do timer. Nunca bloqueia: existe uma vaga
// ocupada para cada devolução agendada.
func (g *WindowGate) release() { <-g.sem }

func (g *WindowGate) Limit() int { return cap(g.sem) }

// Available é a quantidade de permissões livres agora.
func (g *WindowGate) Available() int { return cap(g.sem) - len(g.sem) }

func (g *WindowGate) Window() time.Duration { return g.unit * time.Duration(g.delay) }
