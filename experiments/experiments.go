package experiments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catan/config"
	"catan/engine"
	"catan/experiments/metrics"
	"catan/experiments/store"
	"catan/player"
	"catan/searcher/agent"
	"catan/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Result struct {
	Games  int
	Failed int // games stopped by an error
	Capped int // games that reached the turn cap
	Wins   map[string]int
}

func (r Result) WinRatio(name string) float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins[name]) / float64(r.Games)
}

// played is one finished game as seen by the experiment.
type played struct {
	seats   []int // agent index per seat
	names   []string
	metric  metrics.GameMetric
	moves   []metrics.MoveMetric
	winner  int
	samples []agent.Sample
}

// Vs plays c.Games games between the configured agents, rotating the
// seating every game so each agent starts equally often.
func Vs(ctx context.Context, name string, c config.Config) (Result, error) {
	for _, a := range c.Agents {
		if a.Kind == player.Human.String() {
			return Result{}, fmt.Errorf("%w: %s is human and cannot play unattended", config.ErrInvalid, a.Name)
		}
	}
	result, _, err := runExperiment(ctx, name, c, false)
	return result, err
}

// Sample plays self-play games with every search agent sampling from its
// policy and returns the labelled training samples.
func Sample(ctx context.Context, name string, c config.Config) ([]agent.Sample, Result, error) {
	agents := make([]config.Agent, len(c.Agents))
	for i, a := range c.Agents {
		if a.Kind == player.Human.String() {
			return nil, Result{}, fmt.Errorf("%w: %s is human and cannot play unattended", config.ErrInvalid, a.Name)
		}
		a.Training = true
		agents[i] = a
	}
	c.Agents = agents
	result, samples, err := runExperiment(ctx, name, c, true)
	return samples, result, err
}

func runExperiment(ctx context.Context, name string, c config.Config, collect bool) (Result, []agent.Sample, error) {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var db *store.Store
	if c.Database != "" {
		var err error
		db, err = store.Open(c.Database)
		if err != nil {
			return Result{}, nil, err
		}
		defer db.Close()
	}

	log.Info().Msgf("starting %s experiment with %d games...", name, c.Games)

	var (
		mu      sync.Mutex
		games   []played
		failed  int
		samples []agent.Sample
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.Parallel)
	for i := 0; i < c.Games; i++ {
		group.Go(func() error {
			p, err := runGame(ctx, c, i, seed+uint64(i)*7919, collect)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Error().Err(err).Msgf("game %d of %d failed", i+1, c.Games)
				return nil
			}
			games = append(games, p)
			samples = append(samples, p.samples...)
			if db != nil {
				if err := db.SaveGame(name, p.names, p.metric); err != nil {
					return err
				}
			}
			log.Info().Msgf("completed game %d of %d with winner: %q", i+1, c.Games, p.metric.Winner)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, nil, err
	}

	result := Result{Games: len(games), Failed: failed, Wins: map[string]int{}}
	for _, p := range games {
		if p.winner < 0 {
			result.Capped++
			continue
		}
		result.Wins[p.metric.Winner]++
	}
	log.Info().Msgf("completed %s experiment", name)

	if c.Output != "" {
		if err := writeRecords(c, name, games); err != nil {
			return result, samples, err
		}
	}
	return result, samples, nil
}

// runGame plays game number i with the agents rotated by i seats.
func runGame(ctx context.Context, c config.Config, i int, seed uint64, collect bool) (played, error) {
	n := len(c.Agents)
	p := played{seats: make([]int, n), names: make([]string, n)}
	for seat := range p.seats {
		p.seats[seat] = (seat + i) % n
		p.names[seat] = c.Agents[p.seats[seat]].Name
	}

	g, err := newGame(c, p.names, seed)
	if err != nil {
		return p, err
	}
	// Seat shuffling may reorder players, so read the seating back.
	configured := make([]string, n)
	for index, a := range c.Agents {
		configured[index] = a.Name
	}
	for seat, gp := range g.Players {
		p.seats[seat] = utils.FindIndex(configured, gp.Name)
		p.names[seat] = gp.Name
	}

	var book *agent.SampleBook
	if collect {
		book = agent.NewSampleBook()
	}
	size := g.ActionSpace().Size()
	agents := make([]player.Agent, n)
	for seat, index := range p.seats {
		agents[seat], err = createAgent(c.Agents[index], seed+uint64(seat)+1, size, book)
		if err != nil {
			return p, err
		}
	}

	e, err := engine.LocalEngine(g, agents, engine.WithMaxTurns(c.MaxTurns))
	if err != nil {
		return p, err
	}
	p.metric, p.moves, err = e.Run(ctx)
	if err != nil {
		return p, err
	}
	p.winner = g.Winner()
	if book != nil {
		p.samples = book.Cook(p.winner)
	}
	return p, nil
}

func writeRecords(c config.Config, name string, games []played) error {
	writer, err := metrics.NewWriter(c.Output, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(agentConfigs(c.Agents)); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	gameRecords := make([]metrics.GameRecord, 0, len(games))
	moveRecords := []metrics.MoveRecord{}
	for _, p := range games {
		gameRecords = append(gameRecords, metrics.GameRecord{Seats: p.seats, GameMetric: p.metric})
		for _, mm := range p.moves {
			moveRecords = append(moveRecords, metrics.MoveRecord{Game: p.metric.ID.String(), MoveMetric: mm})
		}
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return nil
}
