package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catan/experiments/metrics"
	"catan/game"
	"catan/player"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrWaiting = errors.New("game is waiting for a player who is not autonomous")

// Engine drives one top-level game: it rolls and plays forced actions
// itself, asks autonomous agents for the rest, and stops when a player who
// is not autonomous must act.
type Engine struct {
	Game      *game.Game
	ID        uuid.UUID
	agents    []player.Agent
	maxTurns  int
	observers []func(e *Engine)
	moves     []metrics.MoveMetric
	step      int
}

func LocalEngine(g *game.Game, agents []player.Agent, options ...Option) (*Engine, error) {
	if len(agents) != len(g.Players) {
		return nil, fmt.Errorf("%d agents for %d players", len(agents), len(g.Players))
	}
	e := &Engine{
		Game:     g,
		ID:       uuid.New(),
		agents:   agents,
		maxTurns: MaxTurns,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// Observe adds observe to the functions called after every applied action.
// Add observers before the engine starts playing.
func (e *Engine) Observe(observe func(e *Engine)) {
	e.observers = append(e.observers, observe)
}

func (e *Engine) Agent(seat int) player.Agent {
	return e.agents[seat]
}

// Over reports whether the game finished or hit the turn cap.
func (e *Engine) Over() bool {
	return e.Game.Finished() || e.Game.Turn >= e.maxTurns
}

// Waiting reports whether the next action must come from outside.
func (e *Engine) Waiting() bool {
	if e.Over() {
		return false
	}
	return len(game.LegalActionIDs(e.Game)) > 1 && !e.agents[e.Game.CurrentSeat()].Autonomous()
}

// Advance plays until the game is over or waiting.
func (e *Engine) Advance(ctx context.Context) error {
	for !e.Over() {
		if err := ctx.Err(); err != nil {
			return err
		}
		legal := game.LegalActionIDs(e.Game)
		if len(legal) == 0 {
			return fmt.Errorf("%w: no legal action for %s", game.ErrIllegalAction, e.Game.Current().Name)
		}
		if len(legal) == 1 {
			if err := e.applyID(legal[0]); err != nil {
				return err
			}
			continue
		}

		seat := e.Game.CurrentSeat()
		agent := e.agents[seat]
		if !agent.Autonomous() {
			return nil
		}
		action, err := agent.ChooseAction(ctx, e.Game)
		if err != nil {
			return fmt.Errorf("%s failed to choose an action: %w", agent.Name(), err)
		}
		if searching, ok := agent.(player.Searching); ok {
			e.moves = append(e.moves, metrics.MoveMetric{
				Step:         e.step,
				Player:       seat,
				SearchMetric: searching.LastSearch(),
			})
		}
		if err := e.apply(action); err != nil {
			return fmt.Errorf("%s chose %s: %w", agent.Name(), action, err)
		}
	}
	return nil
}

// Apply plays an action supplied from outside for the current player and
// then advances.
func (e *Engine) Apply(ctx context.Context, action game.Action) error {
	if e.Over() {
		return fmt.Errorf("%w: game is over", game.ErrGameFinished)
	}
	if err := e.apply(action); err != nil {
		return err
	}
	return e.Advance(ctx)
}

func (e *Engine) applyID(id int) error {
	action, err := e.Game.ActionSpace().Resolve(id)
	if err != nil {
		return err
	}
	return e.apply(action)
}

func (e *Engine) apply(action game.Action) error {
	if err := e.Game.Apply(action); err != nil {
		return err
	}
	e.step++
	for _, observe := range e.observers {
		observe(e)
	}
	return nil
}

// Run executes the entire game loop until a winner is found or the turn cap
// is reached. A panic inside the game ends only this game.
func (e *Engine) Run(ctx context.Context) (gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error) {
	gameMetric = metrics.GameMetric{
		ID:             e.ID,
		StartingPlayer: e.Game.CurrentSeat(),
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %s is starting", e.Game.Current().Name)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("game %s panicked: %v", e.ID, r)
		}
		gameMetric.EndTime = time.Now()
		gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
		gameMetric.TotalMoves = e.step
		gameMetric.TotalTurns = e.Game.Turn
		if winner := e.Game.Winner(); winner >= 0 {
			gameMetric.Winner = e.Game.Players[winner].Name
		}
		moveMetrics = e.moves
	}()

	if err = e.Advance(ctx); err != nil {
		return
	}
	if e.Waiting() {
		err = ErrWaiting
		return
	}

	if e.Game.Finished() {
		log.Info().Msgf("game ended due to a winner: %s", e.Game.Players[e.Game.Winner()].Name)
	} else {
		log.Info().Msgf("stopped after %d turns (no winner yet)", e.maxTurns)
	}
	return
}

var _ Runner = (*Engine)(nil)
