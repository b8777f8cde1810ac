package player

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catan/experiments/metrics"
	"catan/game"
	"catan/searcher/agent"
)

var ErrNotAutonomous = errors.New("agent is not autonomous")

// Agent picks actions for one seat.
type Agent interface {
	Name() string
	// Autonomous agents are asked for actions by the engine. Others wait for
	// actions supplied from outside.
	Autonomous() bool
	ChooseAction(ctx context.Context, g *game.Game) (game.Action, error)
}

// Searching is implemented by agents that run a tree search per decision.
type Searching interface {
	LastSearch() metrics.SearchMetric
}

type Kind int

const (
	Basic Kind = iota
	Random
	Simple
	Zero
	Human
)

var kindNames = []string{"basic", "random", "simple", "zero", "human"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown agent kind %q", s)
}

type human struct {
	name string
}

func NewHuman(name string) Agent {
	return human{name: name}
}

func (h human) Name() string      { return h.name }
func (h human) Autonomous() bool  { return false }
func (h human) ChooseAction(ctx context.Context, g *game.Game) (game.Action, error) {
	return game.Action{}, fmt.Errorf("%w: %s plays through the server", ErrNotAutonomous, h.name)
}

type zero struct {
	name  string
	agent agent.Agent
	last  metrics.SearchMetric
}

// NewZero returns an agent that plays what the search-backed agent finds.
func NewZero(name string, a agent.Agent) Agent {
	return &zero{name: name, agent: a}
}

func (z *zero) Name() string     { return z.name }
func (z *zero) Autonomous() bool { return true }

func (z *zero) ChooseAction(ctx context.Context, g *game.Game) (game.Action, error) {
	action, metric, err := z.agent.FindAction(ctx, g)
	z.last = metric
	return action, err
}

func (z *zero) LastSearch() metrics.SearchMetric {
	return z.last
}
