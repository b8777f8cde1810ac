package experiments

import (
	"fmt"

	"catan/config"
	"catan/evaluator"
	"catan/experiments/metrics"
	"catan/game"
	"catan/player"
	"catan/searcher"
	"catan/searcher/agent"
)

// createAgent builds the agent described by c. book collects samples of
// search agents and may be nil.
func createAgent(c config.Agent, seed uint64, size int, book *agent.SampleBook) (player.Agent, error) {
	kind, err := player.ParseKind(c.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	switch kind {
	case player.Basic:
		return player.NewBasic(c.Name, seed), nil
	case player.Random:
		return player.NewRandom(c.Name, seed), nil
	case player.Simple:
		return player.NewSimple(c.Name, seed), nil
	case player.Human:
		return player.NewHuman(c.Name), nil
	case player.Zero:
		evaluatorKind, err := evaluator.ParseKind(c.Evaluator)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		eval, err := evaluator.New(evaluatorKind, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
		}
		mcts := createMCTS(c, eval, seed)
		if c.Training {
			return player.NewZero(c.Name, agent.NewTrainingAgent(mcts, book, seed)), nil
		}
		return player.NewZero(c.Name, agent.NewEvaluationAgent(mcts, book)), nil
	}
	return nil, fmt.Errorf("%w: agent kind %s", config.ErrInvalid, kind)
}

// CreateAgents builds one agent per seat of g from the configured agent with
// the player's name.
func CreateAgents(c config.Config, g *game.Game) ([]player.Agent, error) {
	agents := make([]player.Agent, len(g.Players))
	for seat, p := range g.Players {
		for _, a := range c.Agents {
			if a.Name != p.Name {
				continue
			}
			var err error
			agents[seat], err = createAgent(a, g.Seed()+uint64(seat)+1, g.ActionSpace().Size(), nil)
			if err != nil {
				return nil, err
			}
		}
		if agents[seat] == nil {
			return nil, fmt.Errorf("%w: no agent named %q", config.ErrInvalid, p.Name)
		}
	}
	return agents, nil
}

func createMCTS(c config.Agent, eval searcher.Evaluator, seed uint64) *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithIterations(c.Iterations),
		searcher.WithSeed(seed),
	}

	if c.Duration > 0 {
		options = append(options, searcher.WithDuration(c.Duration))
	}
	if c.Workers > 0 {
		options = append(options, searcher.WithWorkers(c.Workers))
	}
	if c.CPuct > 0 {
		options = append(options, searcher.WithCPuct(c.CPuct))
	}
	if c.Epsilon == 0 {
		options = append(options, searcher.WithoutNoise())
	} else {
		options = append(options, searcher.WithDirichlet(c.Alpha, c.Epsilon))
	}

	options = append(options, searcher.WithMetrics())
	return searcher.NewMCTS(eval, options...)
}

func agentConfigs(agents []config.Agent) []metrics.AgentConfig {
	configs := make([]metrics.AgentConfig, len(agents))
	for i, a := range agents {
		configs[i] = metrics.AgentConfig{
			ID:         i,
			Name:       a.Name,
			Kind:       a.Kind,
			Iterations: a.Iterations,
			Duration:   a.Duration,
			Workers:    a.Workers,
			Evaluator:  a.Evaluator,
		}
	}
	return configs
}

func newGame(c config.Config, names []string, seed uint64) (*game.Game, error) {
	return game.NewGame(names,
		game.WithSeed(seed),
		game.WithWidth(c.Board.Width),
		game.WithRandomBoard(c.Board.Random),
		game.WithShuffledSeats(c.Board.ShuffleSeats),
		game.WithVictoryTarget(c.Board.VictoryTarget),
	)
}
