package engine

import (
	"context"
	"testing"

	"catan/evaluator"
	"catan/game"
	"catan/player"
	"catan/searcher"
	"catan/searcher/agent"

	"github.com/stretchr/testify/require"
)

func newEngineGame(t *testing.T, options ...game.Option) *game.Game {
	t.Helper()
	g, err := game.NewGame([]string{"alice", "bob"}, append([]game.Option{game.WithSeed(21)}, options...)...)
	require.NoError(t, err)
	return g
}

func TestLocalEngine(t *testing.T) {
	t.Run("rejects a wrong number of agents", func(t *testing.T) {
		_, err := LocalEngine(newEngineGame(t), []player.Agent{player.NewBasic("alice", 1)})
		require.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	t.Run("bots play to the end", func(t *testing.T) {
		g := newEngineGame(t)
		e, err := LocalEngine(g, []player.Agent{player.NewBasic("alice", 1), player.NewSimple("bob", 2)})
		require.NoError(t, err)

		gameMetric, _, err := e.Run(context.Background())

		require.NoError(t, err)
		require.True(t, g.Finished() || g.Turn >= MaxTurns, "Game should end with a winner or at the turn cap")
		require.Equal(t, g.Turn, gameMetric.TotalTurns)
		require.Positive(t, gameMetric.TotalMoves)
		require.NoError(t, g.Validate())
		if g.Finished() {
			require.Equal(t, g.Players[g.Winner()].Name, gameMetric.Winner)
		}
	})

	t.Run("turn cap", func(t *testing.T) {
		g := newEngineGame(t)
		e, err := LocalEngine(g, []player.Agent{player.NewRandom("alice", 1), player.NewRandom("bob", 2)}, WithMaxTurns(10))
		require.NoError(t, err)

		gameMetric, _, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, 10, g.Turn)
		require.Empty(t, gameMetric.Winner)
	})

	t.Run("search agents label samples", func(t *testing.T) {
		g := newEngineGame(t)
		book := agent.NewSampleBook()
		eval := evaluator.Heuristic{Size: g.ActionSpace().Size()}
		agents := make([]player.Agent, 2)
		for i, name := range []string{"alice", "bob"} {
			mcts := searcher.NewMCTS(eval, searcher.WithIterations(8), searcher.WithSeed(uint64(i+1)), searcher.WithMetrics())
			agents[i] = player.NewZero(name, agent.NewTrainingAgent(mcts, book, uint64(i+1)))
		}
		e, err := LocalEngine(g, agents, WithMaxTurns(12))
		require.NoError(t, err)

		_, moves, err := e.Run(context.Background())

		require.NoError(t, err)
		require.NotEmpty(t, moves)
		require.Equal(t, len(moves), book.Len(), "Every search should record one sample")
		for _, s := range book.Cook(g.Winner()) {
			require.Contains(t, []float64{-1, 0, 1}, s.Outcome)
		}
	})

	t.Run("observers see every action", func(t *testing.T) {
		g := newEngineGame(t)
		seen := 0
		e, err := LocalEngine(g, []player.Agent{player.NewBasic("alice", 1), player.NewBasic("bob", 2)},
			WithMaxTurns(8), WithObserver(func(*Engine) { seen++ }))
		require.NoError(t, err)

		gameMetric, _, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, gameMetric.TotalMoves, seen)
	})
}

func TestHumanPlayer(t *testing.T) {
	t.Run("stops for a human", func(t *testing.T) {
		g := newEngineGame(t)
		e, err := LocalEngine(g, []player.Agent{player.NewHuman("alice"), player.NewBasic("bob", 2)})
		require.NoError(t, err)

		require.NoError(t, e.Advance(context.Background()))
		require.True(t, e.Waiting())
		require.Equal(t, 0, g.CurrentSeat())

		_, _, err = e.Run(context.Background())
		require.ErrorIs(t, err, ErrWaiting)
	})

	t.Run("applies a human action and hands control back", func(t *testing.T) {
		g := newEngineGame(t)
		e, err := LocalEngine(g, []player.Agent{player.NewHuman("alice"), player.NewBasic("bob", 2)})
		require.NoError(t, err)

		action, err := g.ActionSpace().Resolve(game.LegalActionIDs(g)[0])
		require.NoError(t, err)
		require.NoError(t, e.Apply(context.Background(), action))
		require.True(t, e.Waiting(), "Alice still has to build a road")

		action, err = g.ActionSpace().Resolve(game.LegalActionIDs(g)[0])
		require.NoError(t, err)
		require.NoError(t, e.Apply(context.Background(), action))
		require.True(t, e.Waiting())
		require.Equal(t, 0, g.CurrentSeat(), "Bob should have played both setup turns")
		require.Len(t, g.Players[1].Settlements, 2)
	})

	t.Run("rejects an illegal action", func(t *testing.T) {
		g := newEngineGame(t)
		e, err := LocalEngine(g, []player.Agent{player.NewHuman("alice"), player.NewBasic("bob", 2)})
		require.NoError(t, err)

		err = e.Apply(context.Background(), game.Action{Kind: game.RollAction})
		require.ErrorIs(t, err, game.ErrIllegalAction)
	})
}
