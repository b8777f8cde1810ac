package agent

import (
	"context"

	"catan/experiments/metrics"
	"catan/game"
	"catan/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
	book *SampleBook
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// book may be nil.
func NewEvaluationAgent(mcts *searcher.MCTS, book *SampleBook) Agent {
	return evaluationAgent{mcts: mcts, book: book}
}

func (a evaluationAgent) FindAction(ctx context.Context, g *game.Game) (game.Action, metrics.SearchMetric, error) {
	policy, metric, err := decide(ctx, a.mcts, a.book, g)
	if err != nil {
		return game.Action{}, metric, err
	}
	action, err := resolve(g, findMax(policy))
	return action, metric, err
}

// findMax returns the first id with the most visits.
func findMax(policy []float64) int {
	best := 0
	for id, visit := range policy {
		if visit > policy[best] {
			best = id
		}
	}
	return best
}
