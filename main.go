package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"catan/config"
	"catan/engine"
	"catan/experiments"
	"catan/game"
	"catan/server"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	mode := flag.String("mode", "vs", "One of play, sample, vs, serve, throughput")
	games := flag.Int("games", 0, "Number of games, overrides the configuration")
	seed := flag.Uint64("seed", 0, "Random seed, overrides the configuration")
	iterations := flag.Int("iterations", -1, "Search iterations for every agent, overrides the configuration")
	workers := flag.String("workers", "0,2,4,8", "Worker counts compared by the throughput mode")
	flag.Parse()

	c, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(2)
	}
	if *games > 0 {
		c.Games = *games
	}
	if *seed > 0 {
		c.Seed = *seed
	}
	if *iterations >= 0 {
		for i := range c.Agents {
			c.Agents[i].Iterations = *iterations
		}
	}
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(2)
	}
	if err := config.SetupLogging(c.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *mode, c, *workers); err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func run(ctx context.Context, mode string, c config.Config, workers string) error {
	switch mode {
	case "vs":
		result, err := experiments.Vs(ctx, "vs", c)
		if err != nil {
			return err
		}
		for _, a := range c.Agents {
			log.Info().Msgf("%s won %d of %d games (%.2f)", a.Name, result.Wins[a.Name], result.Games, result.WinRatio(a.Name))
		}
		log.Info().Msgf("%d games hit the turn cap, %d failed", result.Capped, result.Failed)
		return nil
	case "sample":
		samples, result, err := experiments.Sample(ctx, "sample", c)
		if err != nil {
			return err
		}
		log.Info().Msgf("collected %d samples from %d games", len(samples), result.Games)
		return nil
	case "play":
		c.Games = 1
		result, err := experiments.Vs(ctx, "play", c)
		if err != nil {
			return err
		}
		log.Info().Msgf("winners: %v", result.Wins)
		return nil
	case "serve":
		return serve(ctx, c)
	case "throughput":
		counts, err := parseInts(workers)
		if err != nil {
			return err
		}
		_, err = experiments.RunThroughput(ctx, c, counts, c.Games)
		return err
	}
	return fmt.Errorf("%w: unknown mode %q", config.ErrInvalid, mode)
}

// serve plays one game with the configured agents, where human agents act
// through the snapshot server.
func serve(ctx context.Context, c config.Config) error {
	names := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		names[i] = a.Name
	}
	g, err := game.NewGame(names,
		game.WithSeed(c.Seed),
		game.WithWidth(c.Board.Width),
		game.WithRandomBoard(c.Board.Random),
		game.WithVictoryTarget(c.Board.VictoryTarget),
	)
	if err != nil {
		return err
	}
	agents, err := experiments.CreateAgents(c, g)
	if err != nil {
		return err
	}
	e, err := engine.LocalEngine(g, agents, engine.WithMaxTurns(c.MaxTurns))
	if err != nil {
		return err
	}

	s := server.New(e)
	go func() {
		if err := s.Start(ctx); err != nil {
			log.Error().Err(err).Msg("game stopped")
		}
	}()
	return s.ListenAndServe(ctx, c.Addr)
}

func parseInts(s string) ([]int, error) {
	var ints []int
	for _, field := range strings.Split(s, ",") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(field), "%d", &n); err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", config.ErrInvalid, field)
		}
		ints = append(ints, n)
	}
	return ints, nil
}
