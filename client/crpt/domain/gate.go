package domain

import (
	"context"
	"time"
)

// PermitGate é o controle de admissão das chamadas à API.
//
// A semântica é: Acquire bloqueia até existir uma permissão livre ou até o ctx encerrar.
// Diferente de um semáforo comum, quem chama não devolve a permissão: ela volta
// sozinha depois da janela configurada, contada a partir da aquisição.
// Assim o limite é "N admissões por janela" e não "N chamadas em andamento".
type PermitGate interface {
	Acquire(ctx context.Context) error
}

// Scheduler agenda f para rodar depois de d, fora da goroutine de quem chamou.
// time.AfterFunc satisfaz o contrato; nos testes entra um agendador manual.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SchedulerFunc adapta uma função para Scheduler.
type SchedulerFunc func(d time.Duration, f func())

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) { fn(d, f) }
