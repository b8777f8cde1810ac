package searcher

import "catan/game"

// Evaluator scores an encoded game state: a prior over every action id and
// the expected outcome in [-1, 1] for the player to move.
type Evaluator interface {
	Evaluate(state game.Tensor) (priors []float64, value float64)
}

// BatchEvaluator scores several states in one call. Training code uses it;
// the search calls Evaluate one state at a time.
type BatchEvaluator interface {
	Evaluator
	EvaluateBatch(states []game.Tensor) (priors [][]float64, values []float64)
}

type EvaluatorFunc func(state game.Tensor) ([]float64, float64)

func (f EvaluatorFunc) Evaluate(state game.Tensor) ([]float64, float64) {
	return f(state)
}
