package experiments

import (
	"context"
	"fmt"

	"catan/config"
	"catan/evaluator"
	"catan/experiments/metrics"

	"github.com/rs/zerolog/log"
)

// RunThroughput repeats searches of the opening position with every worker
// count in workers, using the first configured agent's budget, and reports
// one record per search.
func RunThroughput(ctx context.Context, c config.Config, workers []int, searches int) ([]metrics.MoveRecord, error) {
	names := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		names[i] = a.Name
	}
	g, err := newGame(c, names, max(c.Seed, 1))
	if err != nil {
		return nil, err
	}
	kind, err := evaluator.ParseKind(c.Agents[0].Evaluator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	eval, err := evaluator.New(kind, g.ActionSpace().Size())
	if err != nil {
		return nil, err
	}

	log.Info().Msg("starting throughput experiment...")

	records := []metrics.MoveRecord{}
	configs := []metrics.AgentConfig{}
	for id, w := range workers {
		agentConfig := c.Agents[0]
		agentConfig.Workers = w
		agentConfig.Name = fmt.Sprintf("workers-%d", w)
		configs = append(configs, agentConfigs([]config.Agent{agentConfig})[0])
		configs[len(configs)-1].ID = id
		mcts := createMCTS(agentConfig, eval, max(c.Seed, 1))

		log.Info().Msgf("starting %d searches with %d workers...", searches, w)
		for i := 0; i < searches; i++ {
			_, metric, err := mcts.Search(ctx, g)
			if err != nil {
				return records, err
			}
			records = append(records, metrics.MoveRecord{
				Game: agentConfig.Name,
				MoveMetric: metrics.MoveMetric{
					Step:         i,
					Player:       g.CurrentSeat(),
					SearchMetric: metric,
				},
			})
		}
	}

	log.Info().Msg("completed throughput experiment")

	if c.Output != "" {
		writer, err := metrics.NewWriter(c.Output, "throughput")
		if err != nil {
			return records, fmt.Errorf("failed to create experiment writer: %w", err)
		}
		if err := writer.WriteAgentConfigs(configs); err != nil {
			return records, fmt.Errorf("failed to store agent configs: %w", err)
		}
		if err := writer.WriteMoveRecords(records); err != nil {
			return records, fmt.Errorf("failed to write move records: %w", err)
		}
	}
	return records, nil
}
