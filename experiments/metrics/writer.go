package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type AgentConfig struct {
	ID         int
	Name       string
	Kind       string
	Iterations int
	Duration   time.Duration
	Workers    int
	Evaluator  string
}

type GameRecord struct {
	Seats []int // AgentConfig.ID per seat
	GameMetric
}

type MoveRecord struct {
	Game string // GameMetric.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(dir, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			config.Kind,
			strconv.Itoa(config.Iterations),
			config.Duration.String(),
			strconv.Itoa(config.Workers),
			config.Evaluator,
		})
	}
	header := []string{"id", "name", "kind", "iterations", "duration", "workers", "evaluator"}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		seats := ""
		for i, id := range record.Seats {
			if i > 0 {
				seats += " "
			}
			seats += strconv.Itoa(id)
		}
		rows = append(rows, []string{
			record.ID.String(),
			seats,
			strconv.Itoa(record.StartingPlayer),
			record.Winner,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
			strconv.Itoa(record.TotalTurns),
		})
	}
	header := []string{"id", "seats", "starting_player", "winner", "start_time", "end_time", "duration", "moves", "turns"}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.Workers),
			record.Duration.String(),
			strconv.Itoa(record.Descents),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.Terminals),
			strconv.Itoa(record.WaitedNodes),
		})
	}
	header := []string{"game", "step", "player", "workers", "duration", "descents", "expansions", "terminals", "waits"}
	return w.write("move_records.csv", header, rows)
}
