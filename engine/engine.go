package engine

import (
	"context"

	"catan/experiments/metrics"
	"catan/meta"
)

const MaxTurns = meta.MAX_TURNS

type Runner interface {
	// Run plays a game till there's a winner or a max number of turns is reached
	Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

type Option func(e *Engine)

func WithMaxTurns(turns int) Option {
	return func(e *Engine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithObserver calls observe after every applied action. It runs on the
// engine's goroutine.
func WithObserver(observe func(e *Engine)) Option {
	return func(e *Engine) {
		if observe != nil {
			e.observers = append(e.observers, observe)
		}
	}
}
