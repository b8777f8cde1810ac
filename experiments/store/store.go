// Package store keeps finished game records in SQLite.
package store

import (
	"fmt"
	"strings"
	"time"

	"catan/experiments/metrics"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection for game records.
type Store struct {
	conn *sqlx.DB
}

type GameRow struct {
	ID             string `db:"id"`
	Experiment     string `db:"experiment"`
	Players        string `db:"players"` // names in seat order, comma separated
	StartingPlayer int    `db:"starting_player"`
	Winner         string `db:"winner"`
	StartedAt      int64  `db:"started_at"` // unix milliseconds
	DurationMs     int64  `db:"duration_ms"`
	Moves          int    `db:"moves"`
	Turns          int    `db:"turns"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		experiment TEXT NOT NULL,
		players TEXT NOT NULL,
		starting_player INTEGER NOT NULL,
		winner TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		moves INTEGER NOT NULL,
		turns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_games_experiment ON games(experiment);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveGame records one finished game of an experiment.
func (s *Store) SaveGame(experiment string, players []string, game metrics.GameMetric) error {
	row := GameRow{
		ID:             game.ID.String(),
		Experiment:     experiment,
		Players:        strings.Join(players, ","),
		StartingPlayer: game.StartingPlayer,
		Winner:         game.Winner,
		StartedAt:      game.StartTime.UnixMilli(),
		DurationMs:     game.Duration.Milliseconds(),
		Moves:          game.TotalMoves,
		Turns:          game.TotalTurns,
	}
	_, err := s.conn.NamedExec(`
		INSERT INTO games (id, experiment, players, starting_player, winner, started_at, duration_ms, moves, turns)
		VALUES (:id, :experiment, :players, :starting_player, :winner, :started_at, :duration_ms, :moves, :turns)`, row)
	if err != nil {
		return fmt.Errorf("save game %s: %w", row.ID, err)
	}
	return nil
}

// Games returns the records of an experiment, oldest first.
func (s *Store) Games(experiment string) ([]GameRow, error) {
	var rows []GameRow
	err := s.conn.Select(&rows, `SELECT * FROM games WHERE experiment = ? ORDER BY started_at, id`, experiment)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	return rows, nil
}

// WinRatio is the share of an experiment's games won by player. Games that
// hit the turn cap count as played but not won.
func (s *Store) WinRatio(experiment, player string) (float64, error) {
	var counts struct {
		Played int `db:"played"`
		Won    int `db:"won"`
	}
	err := s.conn.Get(&counts, `
		SELECT COUNT(*) AS played, COALESCE(SUM(winner = ?), 0) AS won
		FROM games WHERE experiment = ?`, player, experiment)
	if err != nil {
		return 0, fmt.Errorf("win ratio: %w", err)
	}
	if counts.Played == 0 {
		return 0, nil
	}
	return float64(counts.Won) / float64(counts.Played), nil
}

func (r GameRow) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}
