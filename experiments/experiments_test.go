package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catan/config"
	"catan/experiments/store"
	"catan/player"

	"github.com/stretchr/testify/require"
)

func botConfig(t *testing.T) config.Config {
	t.Helper()
	c := config.Default()
	c.Seed = 17
	c.Games = 4
	c.Parallel = 2
	c.MaxTurns = 60
	c.Agents = []config.Agent{
		config.DefaultAgent("basic", player.Basic),
		config.DefaultAgent("simple", player.Simple),
	}
	require.NoError(t, c.Validate())
	return c
}

func TestVs(t *testing.T) {
	t.Run("plays every game", func(t *testing.T) {
		c := botConfig(t)

		result, err := Vs(context.Background(), "bots", c)

		require.NoError(t, err)
		require.Equal(t, 4, result.Games)
		require.Zero(t, result.Failed)
		require.Equal(t, 4, result.Wins["basic"]+result.Wins["simple"]+result.Capped)
	})

	t.Run("writes metrics and game records", func(t *testing.T) {
		c := botConfig(t)
		c.Output = t.TempDir()
		c.Database = filepath.Join(t.TempDir(), "games.db")

		result, err := Vs(context.Background(), "bots", c)
		require.NoError(t, err)

		runs, err := os.ReadDir(filepath.Join(c.Output, "bots"))
		require.NoError(t, err)
		require.Len(t, runs, 1)
		for _, file := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv"} {
			require.FileExists(t, filepath.Join(c.Output, "bots", runs[0].Name(), file))
		}

		db, err := store.Open(c.Database)
		require.NoError(t, err)
		defer db.Close()
		ratio, err := db.WinRatio("bots", "basic")
		require.NoError(t, err)
		require.InDelta(t, result.WinRatio("basic"), ratio, 1e-9)
	})

	t.Run("refuses human players", func(t *testing.T) {
		c := botConfig(t)
		c.Agents[1] = config.DefaultAgent("me", player.Human)

		_, err := Vs(context.Background(), "bots", c)
		require.ErrorIs(t, err, config.ErrInvalid)
	})

	t.Run("search agent against a bot", func(t *testing.T) {
		c := botConfig(t)
		c.Games = 2
		c.MaxTurns = 10
		zero := config.DefaultAgent("zero", player.Zero)
		zero.Iterations = 6
		c.Agents[0] = zero

		result, err := Vs(context.Background(), "zero", c)

		require.NoError(t, err)
		require.Equal(t, 2, result.Games)
	})
}

func TestSample(t *testing.T) {
	c := botConfig(t)
	c.Games = 2
	c.MaxTurns = 8
	for i, name := range []string{"alice", "bob"} {
		a := config.DefaultAgent(name, player.Zero)
		a.Iterations = 5
		c.Agents[i] = a
	}

	samples, result, err := Sample(context.Background(), "self-play", c)

	require.NoError(t, err)
	require.Equal(t, 2, result.Games)
	require.NotEmpty(t, samples)
	for _, s := range samples {
		require.Contains(t, []float64{-1, 0, 1}, s.Outcome)
		require.Len(t, s.Policy, 207)
	}
}

func TestRunThroughput(t *testing.T) {
	c := botConfig(t)
	a := config.DefaultAgent("zero", player.Zero)
	a.Iterations = 20
	c.Agents[0] = a
	c.Output = t.TempDir()

	records, err := RunThroughput(context.Background(), c, []int{0, 2}, 2)

	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		require.Equal(t, 19, r.Descents)
	}
	require.Equal(t, 2, records[2].Workers)
}
