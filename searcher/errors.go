package searcher

import (
	"errors"
	"fmt"
)

var ErrEvaluator = errors.New("evaluator returned an unusable result")

// NoLegalActionError reports a node whose player has nothing selectable
// although the game is not over.
type NoLegalActionError struct {
	Seat   int
	Player string
	Legal  []int
	Priors []float64
}

func (e *NoLegalActionError) Error() string {
	return fmt.Sprintf("no legal action for player %s (seat %d): legal=%v", e.Player, e.Seat, e.Legal)
}
