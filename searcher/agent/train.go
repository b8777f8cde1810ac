package agent

import (
	"context"
	"math"
	"sync"

	"catan/experiments/metrics"
	"catan/game"
	"catan/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts *searcher.MCTS
	book *SampleBook
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training.
// book may be nil.
func NewTrainingAgent(mcts *searcher.MCTS, book *SampleBook, seed uint64) Agent {
	return &trainingAgent{
		mcts: mcts,
		book: book,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindAction(ctx context.Context, g *game.Game) (game.Action, metrics.SearchMetric, error) {
	policy, metric, err := decide(ctx, a.mcts, a.book, g)
	if err != nil {
		return game.Action{}, metric, err
	}
	// TODO: anneal the temperature towards zero after the opening moves
	policy = adjustTemperature(policy, 1.0)

	a.mu.Lock()
	id := sample(policy, a.rng)
	a.mu.Unlock()

	action, err := resolve(g, id)
	return action, metric, err
}

func adjustTemperature(policy []float64, temperature float64) []float64 {
	// Compute temperature-adjusted action probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(policy))
	for id, visit := range policy {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[id] = prob
	}
	// Normalize
	for id := range adjusted {
		adjusted[id] /= sum
	}
	return adjusted
}

func sample(policy []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	last := -1
	for id, prob := range policy {
		if prob == 0 {
			continue
		}
		last = id
		cumulative += prob
		if sampled < cumulative {
			return id
		}
	}
	return last // Fallback in case of rounding errors
}
