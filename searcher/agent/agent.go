package agent

import (
	"context"
	"fmt"

	"catan/experiments/metrics"
	"catan/game"
	"catan/searcher"
)

type Agent interface {
	// FindAction returns the chosen action and performance metrics (if collected) from the search
	FindAction(ctx context.Context, g *game.Game) (game.Action, metrics.SearchMetric, error)
}

// decide runs the search and records the state and policy when book is set.
func decide(ctx context.Context, mcts *searcher.MCTS, book *SampleBook, g *game.Game) ([]float64, metrics.SearchMetric, error) {
	policy, metric, err := mcts.Search(ctx, g)
	if err != nil {
		return nil, metric, err
	}
	if book != nil {
		book.Record(mcts.Encoder().Encode(g), policy, g.CurrentSeat())
	}
	return policy, metric, nil
}

func resolve(g *game.Game, id int) (game.Action, error) {
	action, err := g.ActionSpace().Resolve(id)
	if err != nil {
		return game.Action{}, fmt.Errorf("resolving searched action %d: %w", id, err)
	}
	return action, nil
}
