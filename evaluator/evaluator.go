// Package evaluator holds the evaluators the search can run without a
// trained network.
package evaluator

import (
	"errors"
	"fmt"
	"strings"

	"catan/game"
	"catan/searcher"

	"golang.org/x/sync/errgroup"
)

var ErrUnknownKind = errors.New("unknown evaluator kind")

type Kind int

const (
	UniformKind Kind = iota
	HeuristicKind
)

var kindNames = []string{"uniform", "heuristic"}

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
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// New returns an evaluator of kind producing priors over size action ids.
func New(kind Kind, size int) (searcher.Evaluator, error) {
	switch kind {
	case UniformKind:
		return Uniform{Size: size}, nil
	case HeuristicKind:
		return Heuristic{Size: size}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Uniform gives every action the same prior and every state a value of 0.
type Uniform struct {
	Size int
}

func (u Uniform) Evaluate(state game.Tensor) ([]float64, float64) {
	return flat(u.Size), 0
}

func flat(size int) []float64 {
	priors := make([]float64, size)
	for i := range priors {
		priors[i] = 1 / float64(size)
	}
	return priors
}

// Heuristic values a state by the generation and cards of the player to move
// against the strongest opponent, both read off the tensor.
type Heuristic struct {
	Size int
}

func (h Heuristic) Evaluate(state game.Tensor) ([]float64, float64) {
	var gen, cards [game.MaxPlayers]float64
	for k := 0; k < game.MaxPlayers; k++ {
		gen[k] = generation(state, k)
		for r := game.Resource(0); r < game.NumResources; r++ {
			cards[k] += float64(state.Plane(game.CardPlane(k, r))[0])
		}
	}
	var bestGen, bestCards float64
	for k := 1; k < game.MaxPlayers; k++ {
		bestGen = max(bestGen, gen[k])
		bestCards = max(bestCards, cards[k])
	}
	value := 0.75*relative(gen[0], bestGen) + 0.25*relative(cards[0], bestCards)
	return flat(h.Size), value
}

// generation estimates the roll weight collected by the k-th seat: every
// marked hex counts once for a settlement and twice for a city.
func generation(state game.Tensor, k int) float64 {
	settlements := state.Plane(game.PiecePlane(k, game.Settlement))
	cities := state.Plane(game.PiecePlane(k, game.City))
	total := 0.0
	for i := range settlements {
		rate := float64(settlements[i]) + 2*float64(cities[i])
		if rate == 0 {
			continue
		}
		for r := game.Resource(0); r < game.NumResources; r++ {
			total += rate * float64(state.Plane(int(r))[i])
		}
	}
	return total
}

func relative(own, other float64) float64 {
	if own+other == 0 {
		return 0
	}
	return (own - other) / (own + other)
}

// Batch evaluates batches by calling the wrapped evaluator on up to limit
// states at once. The wrapped evaluator must be safe for concurrent use.
type Batch struct {
	searcher.Evaluator
	limit int
}

func NewBatch(e searcher.Evaluator, limit int) *Batch {
	return &Batch{Evaluator: e, limit: max(limit, 1)}
}

func (b *Batch) EvaluateBatch(states []game.Tensor) ([][]float64, []float64) {
	priors := make([][]float64, len(states))
	values := make([]float64, len(states))

	var group errgroup.Group
	group.SetLimit(b.limit)
	for i, state := range states {
		group.Go(func() error {
			priors[i], values[i] = b.Evaluate(state)
			return nil
		})
	}
	_ = group.Wait()
	return priors, values
}

var _ searcher.BatchEvaluator = (*Batch)(nil)
