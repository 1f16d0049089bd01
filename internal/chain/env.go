package chain

import (
	"context"
	"math/rand"
	"time"
)

// Clock supplies outcome timestamps so tests can pin time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Sleeper blocks for the simulated transport latency. It must honor ctx:
// cancellation during the sleep aborts the attempt at that layer only,
// never the rest of the chain.
type Sleeper func(ctx context.Context, d time.Duration) error

func systemSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Jitter is the randomness source behind carrier-queuing simulation.
// Handlers never reach for a global unseeded generator.
type Jitter interface {
	Float64() float64
}

// Env bundles the time and randomness sources shared by the handlers of a
// chain. A zero Env is usable: missing fields fall back to system sources.
type Env struct {
	Clock  Clock
	Sleep  Sleeper
	Jitter Jitter
}

// SystemEnv returns an Env backed by the wall clock and a time-seeded
// random generator.
func SystemEnv() Env {
	return Env{
		Clock:  systemClock{},
		Sleep:  systemSleep,
		Jitter: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = systemClock{}
	}
	if e.Sleep == nil {
		e.Sleep = systemSleep
	}
	if e.Jitter == nil {
		e.Jitter = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}
