// Package config loads run settings from a YAML file, a .env file and
// CATAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"catan/evaluator"
	"catan/game"
	"catan/meta"
	"catan/player"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Agent struct {
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	Iterations int           `yaml:"iterations"`
	Duration   time.Duration `yaml:"duration"`
	Workers    int           `yaml:"workers"`
	CPuct      float64       `yaml:"c_puct"`
	Alpha      float64       `yaml:"dirichlet_alpha"`
	Epsilon    float64       `yaml:"dirichlet_epsilon"`
	Evaluator  string        `yaml:"evaluator"`
	Training   bool          `yaml:"training"` // sample from the policy instead of playing the most visited action
}

// UnmarshalYAML fills fields missing from the file with the defaults of a
// search agent.
func (a *Agent) UnmarshalYAML(value *yaml.Node) error {
	type plain Agent
	p := plain(DefaultAgent("", player.Zero))
	if err := value.Decode(&p); err != nil {
		return err
	}
	*a = Agent(p)
	return nil
}

type Board struct {
	Width         int  `yaml:"width"`
	Random        bool `yaml:"random"`
	ShuffleSeats  bool `yaml:"shuffle_seats"`
	VictoryTarget int  `yaml:"victory_target"`
}

type Config struct {
	LogLevel string  `yaml:"log_level"`
	Seed     uint64  `yaml:"seed"` // 0 seeds from the clock
	Board    Board   `yaml:"board"`
	MaxTurns int     `yaml:"max_turns"`
	Games    int     `yaml:"games"`
	Parallel int     `yaml:"parallel"` // games played at once
	Agents   []Agent `yaml:"agents"`
	Output   string  `yaml:"output"`   // directory for CSV metrics, empty to skip
	Database string  `yaml:"database"` // SQLite file for game records, empty to skip
	Addr     string  `yaml:"addr"`     // listen address of the snapshot server
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Board: Board{
			Width:         meta.BoardWidth,
			VictoryTarget: meta.VictoryPoints,
		},
		MaxTurns: meta.MAX_TURNS,
		Games:    1,
		Parallel: meta.GO_ROUTINES,
		Agents: []Agent{
			DefaultAgent("zero", player.Zero),
			DefaultAgent("basic", player.Basic),
		},
		Addr: ":8080",
	}
}

func DefaultAgent(name string, kind player.Kind) Agent {
	return Agent{
		Name:       name,
		Kind:       kind.String(),
		Iterations: meta.ITERATIONS,
		CPuct:      meta.C_PUCT,
		Alpha:      meta.DIRICHLET_ALPHA,
		Epsilon:    meta.DIRICHLET_EPSILON,
		Evaluator:  evaluator.HeuristicKind.String(),
	}
}

// Load reads path (optional), then .env (optional), then the environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("reading .env: %w", err)
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, set func(int)) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, key, v)
		}
		set(n)
		return nil
	}

	str("CATAN_LOG_LEVEL", &c.LogLevel)
	str("CATAN_OUTPUT", &c.Output)
	str("CATAN_DATABASE", &c.Database)
	str("CATAN_ADDR", &c.Addr)
	if v, ok := lookup("CATAN_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: CATAN_SEED=%q is not a number", ErrInvalid, v)
		}
		c.Seed = seed
	}
	for key, set := range map[string]func(int){
		"CATAN_GAMES":     func(n int) { c.Games = n },
		"CATAN_PARALLEL":  func(n int) { c.Parallel = n },
		"CATAN_MAX_TURNS": func(n int) { c.MaxTurns = n },
		"CATAN_WIDTH":     func(n int) { c.Board.Width = n },
		"CATAN_ITERATIONS": func(n int) {
			for i := range c.Agents {
				c.Agents[i].Iterations = n
			}
		},
		"CATAN_WORKERS": func(n int) {
			for i := range c.Agents {
				c.Agents[i].Workers = n
			}
		},
	} {
		if err := num(key, set); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []string
	if c.Board.Width < 3 {
		errs = append(errs, fmt.Sprintf("board width %d is below 3", c.Board.Width))
	}
	if c.Board.VictoryTarget < 1 {
		errs = append(errs, "victory target must be positive")
	}
	if c.MaxTurns < 1 {
		errs = append(errs, "max turns must be positive")
	}
	if c.Games < 1 {
		errs = append(errs, "games must be positive")
	}
	if c.Parallel < 1 {
		errs = append(errs, "parallel must be positive")
	}
	if len(c.Agents) < 2 || len(c.Agents) > game.MaxPlayers {
		errs = append(errs, fmt.Sprintf("%d agents, need 2 to %d", len(c.Agents), game.MaxPlayers))
	}
	names := map[string]bool{}
	for i, a := range c.Agents {
		if a.Name == "" {
			errs = append(errs, fmt.Sprintf("agent %d has no name", i))
		} else if names[a.Name] {
			errs = append(errs, fmt.Sprintf("agent name %q is used twice", a.Name))
		}
		names[a.Name] = true
		kind, err := player.ParseKind(a.Kind)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if kind != player.Zero {
			continue
		}
		if _, err := evaluator.ParseKind(a.Evaluator); err != nil {
			errs = append(errs, err.Error())
		}
		if a.Iterations < 0 || a.Workers < 0 || a.Duration < 0 {
			errs = append(errs, fmt.Sprintf("agent %q has a negative budget", a.Name))
		}
		if a.Epsilon < 0 || a.Epsilon > 1 {
			errs = append(errs, fmt.Sprintf("agent %q has dirichlet epsilon outside [0, 1]", a.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}
