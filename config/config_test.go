package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"catan/meta"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate(), "Defaults should be valid")
	require.Equal(t, meta.BoardWidth, c.Board.Width)
	require.Len(t, c.Agents, 2)
}

func TestLoad(t *testing.T) {
	t.Run("without a file", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		require.Equal(t, Default().Board, c.Board)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
seed: 99
games: 4
board:
  width: 6
  random: true
  victory_target: 8
agents:
  - name: deep
    kind: zero
    iterations: 400
    duration: 250ms
    workers: 8
  - name: bot
    kind: simple
`)
		c, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "debug", c.LogLevel)
		require.Equal(t, uint64(99), c.Seed)
		require.Equal(t, 4, c.Games)
		require.True(t, c.Board.Random)
		require.Equal(t, 8, c.Board.VictoryTarget)
		require.Equal(t, meta.MAX_TURNS, c.MaxTurns, "Missing keys should keep defaults")

		require.Len(t, c.Agents, 2)
		require.Equal(t, 400, c.Agents[0].Iterations)
		require.Equal(t, 250*time.Millisecond, c.Agents[0].Duration)
		require.Equal(t, 8, c.Agents[0].Workers)
		require.Equal(t, meta.C_PUCT, c.Agents[0].CPuct, "Missing agent keys should keep defaults")
		require.Equal(t, "heuristic", c.Agents[0].Evaluator)
		require.Equal(t, "simple", c.Agents[1].Kind)
	})

	t.Run("explicit zero iterations are kept", func(t *testing.T) {
		path := writeConfig(t, `
agents:
  - name: a
    iterations: 0
  - name: b
`)
		c, err := Load(path)
		require.NoError(t, err)
		require.Zero(t, c.Agents[0].Iterations)
		require.Equal(t, meta.ITERATIONS, c.Agents[1].Iterations)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "games: 4\n")
		t.Setenv("CATAN_GAMES", "12")
		t.Setenv("CATAN_ITERATIONS", "30")

		c, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 12, c.Games)
		for _, a := range c.Agents {
			require.Equal(t, 30, a.Iterations)
		}
	})

	t.Run("bad environment value", func(t *testing.T) {
		t.Setenv("CATAN_GAMES", "many")
		_, err := Load("")
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "games: [1, 2\n")
		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"narrow board", func(c *Config) { c.Board.Width = 2 }},
		{"no games", func(c *Config) { c.Games = 0 }},
		{"one agent", func(c *Config) { c.Agents = c.Agents[:1] }},
		{"duplicate names", func(c *Config) { c.Agents[1].Name = c.Agents[0].Name }},
		{"unknown agent kind", func(c *Config) { c.Agents[1].Kind = "oracle" }},
		{"unknown evaluator", func(c *Config) { c.Agents[0].Evaluator = "resnet" }},
		{"negative workers", func(c *Config) { c.Agents[0].Workers = -1 }},
		{"epsilon above one", func(c *Config) { c.Agents[0].Epsilon = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.modify(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	require.NoError(t, SetupLogging("warn"))
	require.ErrorIs(t, SetupLogging("loud"), ErrInvalid)
}
