package searcher

import (
	"fmt"
	"math"
	"sync"

	"catan/game"

	"github.com/rs/zerolog/log"
)

type node struct {
	sync.RWMutex
	parent   *node
	action   int        // action id leading here from parent, -1 at the root
	game     *game.Game // private copy, never shared with other nodes
	seat     int        // player to move
	finished bool
	legal    []int
	priors   []float64 // masked to legal ids
	children []*node   // indexed by action id
	w        float64
	n        int
	done     chan struct{} // closed once expanded and backed up
	err      error         // set before done is closed
}

func newRoot(g *game.Game, size int) (*node, error) {
	c, err := g.Copy()
	if err != nil {
		return nil, err
	}
	return &node{
		action:   -1,
		game:     c,
		seat:     c.CurrentSeat(),
		finished: c.Finished(),
		legal:    game.LegalActionIDs(c),
		children: make([]*node, size),
		done:     make(chan struct{}),
	}, nil
}

// newChild copies parent's game, applies action and then every forced action
// that follows it.
func newChild(parent *node, action int) (*node, error) {
	g, err := parent.game.Copy()
	if err != nil {
		return nil, err
	}
	if err := g.ApplyID(action); err != nil {
		return nil, fmt.Errorf("applying action %d: %w", action, err)
	}
	legal := game.LegalActionIDs(g)
	for len(legal) == 1 {
		if err := g.ApplyID(legal[0]); err != nil {
			return nil, fmt.Errorf("applying forced action %d: %w", legal[0], err)
		}
		legal = game.LegalActionIDs(g)
	}
	return &node{
		parent:   parent,
		action:   action,
		game:     g,
		seat:     g.CurrentSeat(),
		finished: g.Finished(),
		legal:    legal,
		children: make([]*node, len(parent.children)),
		done:     make(chan struct{}),
	}, nil
}

// q is the mean value from the perspective of the player to move here. A
// finished game is a win for the player who just moved, who is still to move.
func (n *node) q() float64 {
	n.RLock()
	defer n.RUnlock()

	return n.qLocked()
}

func (n *node) qLocked() float64 {
	if n.finished {
		return 1
	}
	return n.w / float64(max(n.n, 1))
}

func (n *node) visits() int {
	n.RLock()
	defer n.RUnlock()

	return n.n
}

func (n *node) visit() int {
	n.Lock()
	defer n.Unlock()

	n.n++
	return n.n
}

func (n *node) pending() bool {
	select {
	case <-n.done:
		return false
	default:
		return true
	}
}

func (n *node) child(action int) *node {
	n.RLock()
	defer n.RUnlock()

	return n.children[action]
}

func (n *node) setChild(action int, child *node) {
	n.Lock()
	defer n.Unlock()

	n.children[action] = child
}

// expand seeds w with the evaluator's value and stores the prior masked to
// legal actions. The root also gets exploration noise when enabled.
func (n *node) expand(s *search) error {
	priors, value := s.evaluator.Evaluate(s.encoder.Encode(n.game))
	if len(priors) != len(n.children) {
		return fmt.Errorf("%w: %d priors for %d actions", ErrEvaluator, len(priors), len(n.children))
	}
	if math.IsNaN(value) {
		return fmt.Errorf("%w: value is NaN", ErrEvaluator)
	}

	masked := mask(priors, n.legal)
	if n.parent == nil && s.noise != nil {
		s.noise.blend(masked)
	}

	n.Lock()
	n.priors = masked
	n.w = math.Max(-1, math.Min(1, value))
	n.Unlock()
	return nil
}

func mask(priors []float64, legal []int) []float64 {
	masked := make([]float64, len(priors))
	sum := 0.0
	for _, id := range legal {
		if p := priors[id]; p > 0 && !math.IsInf(p, 0) {
			masked[id] = p
			sum += p
		}
	}
	if sum == 0 {
		log.Warn().Ints("legal", legal).Msg("evaluator gave no weight to legal actions, using a uniform prior")
		for _, id := range legal {
			masked[id] = 1 / float64(len(legal))
		}
		return masked
	}
	for _, id := range legal {
		masked[id] /= sum
	}
	return masked
}

// backup adds the node's value to every ancestor, negating it whenever the
// player to move changes between a node and its parent.
func (n *node) backup() {
	value := n.q()
	current := n
	for current.parent != nil {
		if current.seat != current.parent.seat {
			value = -value
		}
		current = current.parent
		current.Lock()
		current.w += value
		current.Unlock()
	}
}

// policy is each child's share of the visits made to the root's children.
func (n *node) policy() []float64 {
	pi := make([]float64, len(n.children))
	total := 0
	for i := range n.children {
		if child := n.child(i); child != nil {
			visits := child.visits()
			pi[i] = float64(visits)
			total += visits
		}
	}
	if total == 0 {
		return evenPolicy(len(n.children), n.legal)
	}
	for i := range pi {
		pi[i] /= float64(total)
	}
	return pi
}

func evenPolicy(size int, legal []int) []float64 {
	pi := make([]float64, size)
	for _, id := range legal {
		pi[id] = 1 / float64(len(legal))
	}
	return pi
}
