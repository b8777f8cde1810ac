package searcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"catan/game"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newSearchGame(t *testing.T, options ...game.Option) *game.Game {
	t.Helper()
	g, err := game.NewGame([]string{"alice", "bob"}, append([]game.Option{game.WithSeed(42)}, options...)...)
	require.NoError(t, err)
	return g
}

func flatEvaluator(value float64) Evaluator {
	return EvaluatorFunc(func(state game.Tensor) ([]float64, float64) {
		priors := make([]float64, 207)
		for i := range priors {
			priors[i] = 1
		}
		return priors, value
	})
}

func requireDistribution(t *testing.T, g *game.Game, policy []float64) {
	t.Helper()
	legal := map[int]bool{}
	for _, id := range game.LegalActionIDs(g) {
		legal[id] = true
	}
	sum := 0.0
	for id, p := range policy {
		require.GreaterOrEqual(t, p, 0.0)
		if !legal[id] {
			require.Zero(t, p, "Illegal action %d should get no visits", id)
		}
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-9, "Policy should sum to 1")
}

func TestSearch(t *testing.T) {
	t.Run("visit shares over legal actions", func(t *testing.T) {
		g := newSearchGame(t)
		m := NewMCTS(flatEvaluator(0), WithIterations(50), WithSeed(7), WithMetrics())

		policy, metric, err := m.Search(context.Background(), g)

		require.NoError(t, err)
		require.Len(t, policy, 207)
		requireDistribution(t, g, policy)
		require.Equal(t, 49, metric.Descents, "Search should descend K-1 times after the root visit")
	})

	t.Run("does not modify the game", func(t *testing.T) {
		g := newSearchGame(t)
		before := g.Snapshot()
		m := NewMCTS(flatEvaluator(0), WithIterations(30), WithSeed(7))

		_, _, err := m.Search(context.Background(), g)

		require.NoError(t, err)
		require.Equal(t, before, g.Snapshot())
	})

	t.Run("deterministic with a fixed seed", func(t *testing.T) {
		g := newSearchGame(t)
		evaluator := EvaluatorFunc(func(state game.Tensor) ([]float64, float64) {
			priors := make([]float64, 207)
			for i := range priors {
				priors[i] = float64(i%7 + 1)
			}
			return priors, 0.1
		})

		first, _, err := NewMCTS(evaluator, WithIterations(80), WithSeed(11)).Search(context.Background(), g)
		require.NoError(t, err)
		second, _, err := NewMCTS(evaluator, WithIterations(80), WithSeed(11)).Search(context.Background(), g)
		require.NoError(t, err)

		require.Equal(t, first, second, "Equal seeds should give equal policies")
	})

	t.Run("follows the prior without noise", func(t *testing.T) {
		g := newSearchGame(t)
		legal := game.LegalActionIDs(g)
		favourite := legal[len(legal)-1]
		evaluator := EvaluatorFunc(func(state game.Tensor) ([]float64, float64) {
			priors := make([]float64, 207)
			for i := range priors {
				priors[i] = 0.001
			}
			priors[favourite] = 10
			return priors, 0
		})

		policy, _, err := NewMCTS(evaluator, WithIterations(40), WithoutNoise()).Search(context.Background(), g)

		require.NoError(t, err)
		for id, p := range policy {
			if id != favourite {
				require.Less(t, p, policy[favourite], "Dominant prior should collect the most visits")
			}
		}
	})

	t.Run("single legal action", func(t *testing.T) {
		g := newSearchGame(t)
		for g.Phase() == game.Setup {
			require.NoError(t, g.ApplyID(game.LegalActionIDs(g)[0]))
		}
		require.Equal(t, []int{game.RollID}, game.LegalActionIDs(g))

		policy, _, err := NewMCTS(flatEvaluator(0)).Search(context.Background(), g)

		require.NoError(t, err)
		require.Equal(t, 1.0, policy[game.RollID])
	})

	t.Run("even policy without a budget", func(t *testing.T) {
		g := newSearchGame(t)
		legal := game.LegalActionIDs(g)

		policy, _, err := NewMCTS(flatEvaluator(0), WithIterations(0)).Search(context.Background(), g)

		require.NoError(t, err)
		for _, id := range legal {
			require.InDelta(t, 1/float64(len(legal)), policy[id], 1e-9)
		}
	})

	t.Run("finished game", func(t *testing.T) {
		g := newSearchGame(t, game.WithVictoryTarget(1))
		require.NoError(t, g.ApplyID(game.LegalActionIDs(g)[0]))
		require.True(t, g.Finished())

		_, _, err := NewMCTS(flatEvaluator(0)).Search(context.Background(), g)

		require.ErrorIs(t, err, game.ErrGameFinished)
	})

	t.Run("winning moves short-circuit", func(t *testing.T) {
		g := newSearchGame(t, game.WithVictoryTarget(2))
		for i := 0; i < 6; i++ {
			require.NoError(t, g.ApplyID(game.LegalActionIDs(g)[0]))
		}
		require.Equal(t, 1, g.CurrentSeat(), "Second player should place again")

		policy, metric, err := NewMCTS(flatEvaluator(-1), WithIterations(60), WithMetrics()).Search(context.Background(), g)

		require.NoError(t, err)
		requireDistribution(t, g, policy)
		require.Positive(t, metric.Terminals, "Every settlement wins, so descents should reach finished games")
	})

	t.Run("evaluator with wrong prior length", func(t *testing.T) {
		g := newSearchGame(t)
		evaluator := EvaluatorFunc(func(state game.Tensor) ([]float64, float64) {
			return []float64{1, 2, 3}, 0
		})

		_, _, err := NewMCTS(evaluator, WithIterations(10)).Search(context.Background(), g)

		require.ErrorIs(t, err, ErrEvaluator)
	})

	t.Run("cancelled context", func(t *testing.T) {
		g := newSearchGame(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := NewMCTS(flatEvaluator(0), WithIterations(10)).Search(ctx, g)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("duration bound", func(t *testing.T) {
		g := newSearchGame(t)
		m := NewMCTS(flatEvaluator(0), WithIterations(0), WithDuration(20*time.Millisecond), WithMetrics())

		policy, metric, err := m.Search(context.Background(), g)

		require.NoError(t, err)
		requireDistribution(t, g, policy)
		require.Positive(t, metric.Descents)
	})
}

func TestConcurrentSearch(t *testing.T) {
	t.Run("valid distribution", func(t *testing.T) {
		g := newSearchGame(t)
		m := NewMCTS(flatEvaluator(0.2), WithIterations(200), WithWorkers(4), WithSeed(3), WithMetrics())

		policy, metric, err := m.Search(context.Background(), g)

		require.NoError(t, err)
		requireDistribution(t, g, policy)
		require.Equal(t, 4, metric.Workers)
		require.Equal(t, 199, metric.Descents)
	})

	t.Run("evaluator failure stops the search", func(t *testing.T) {
		g := newSearchGame(t)
		calls := make(chan struct{}, 1000)
		evaluator := EvaluatorFunc(func(state game.Tensor) ([]float64, float64) {
			calls <- struct{}{}
			if len(calls) > 1 {
				return nil, 0
			}
			return make([]float64, 207), 0
		})

		_, _, err := NewMCTS(evaluator, WithIterations(100), WithWorkers(2)).Search(context.Background(), g)

		require.ErrorIs(t, err, ErrEvaluator)
	})
}

func TestNoLegalAction(t *testing.T) {
	g := newSearchGame(t)
	root, err := newRoot(g, 207)
	require.NoError(t, err)
	root.legal = nil
	root.priors = make([]float64, 207)
	var out bytes.Buffer
	s := &search{MCTS: NewMCTS(flatEvaluator(0), WithLogger(zerolog.New(&out))), root: root}

	_, err = s.favoriteChild(context.Background(), root)

	var noLegal *NoLegalActionError
	require.True(t, errors.As(err, &noLegal))
	require.Equal(t, "alice", noLegal.Player)
	require.Equal(t, 0, noLegal.Seat)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	require.Equal(t, "error", entry["level"])
	require.Len(t, entry["priors"], 207, "The log should carry the priors")
	require.Contains(t, entry, "state", "The log should carry a snapshot of the game")
}

// expanded returns a child whose expansion already completed.
func expanded(parent *node, seat int, w float64, n int) *node {
	done := make(chan struct{})
	close(done)
	return &node{parent: parent, seat: seat, w: w, n: n, done: done}
}

func newSelectionRoot(legal []int) *node {
	root := &node{seat: 0, n: 3, legal: legal, priors: make([]float64, 4), children: make([]*node, 4), done: make(chan struct{})}
	close(root.done)
	for _, id := range legal {
		root.priors[id] = 1 / float64(len(legal))
	}
	return root
}

func TestFavoriteChild(t *testing.T) {
	s := &search{MCTS: NewMCTS(flatEvaluator(0))}

	t.Run("equal scores go to the lowest id", func(t *testing.T) {
		root := newSelectionRoot([]int{1, 2, 3})
		for _, id := range root.legal {
			root.children[id] = expanded(root, 0, 0.5, 1)
		}

		child, err := s.favoriteChild(context.Background(), root)

		require.NoError(t, err)
		require.Same(t, root.children[1], child)
	})

	t.Run("opponent's value is negated", func(t *testing.T) {
		root := newSelectionRoot([]int{1, 2})
		root.children[1] = expanded(root, 0, 0.4, 1)
		root.children[2] = expanded(root, 1, -0.6, 1)

		child, err := s.favoriteChild(context.Background(), root)

		require.NoError(t, err)
		require.Same(t, root.children[2], child, "Opponent losing by 0.6 should outrank own 0.4")
	})

	t.Run("opponent's win ranks below own gain", func(t *testing.T) {
		root := newSelectionRoot([]int{1, 2})
		root.children[1] = expanded(root, 0, 0.4, 1)
		root.children[2] = expanded(root, 1, 0.6, 1)

		child, err := s.favoriteChild(context.Background(), root)

		require.NoError(t, err)
		require.Same(t, root.children[1], child)
	})

	t.Run("skips pending children", func(t *testing.T) {
		root := newSelectionRoot([]int{1, 2})
		root.children[1] = &node{parent: root, seat: 0, w: 0.9, n: 1, done: make(chan struct{})}
		root.children[2] = expanded(root, 0, -0.5, 1)

		child, err := s.favoriteChild(context.Background(), root)

		require.NoError(t, err)
		require.Same(t, root.children[2], child)
	})
}

func TestFailedExpansion(t *testing.T) {
	g := newSearchGame(t)
	root, err := newRoot(g, 207)
	require.NoError(t, err)
	root.priors = evenPolicy(207, root.legal)
	root.n = 1
	close(root.done)
	failure := errors.New("evaluator crashed")
	for _, id := range root.legal {
		child := expanded(root, 1, 0, 1)
		child.err = failure
		root.children[id] = child
	}
	s := &search{MCTS: NewMCTS(flatEvaluator(0)), root: root}

	require.NotPanics(t, func() {
		err = s.descend(context.Background())
	})
	require.ErrorIs(t, err, failure, "A failed child should end the descent with its error")
}
