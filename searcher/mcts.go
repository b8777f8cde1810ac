package searcher

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"catan/experiments/metrics"
	"catan/game"
	"catan/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

type Option func(mcts *MCTS)

type MCTS struct {
	iterations int
	duration   time.Duration
	cPuct      float64
	alpha      float64
	epsilon    float64
	noise      bool
	seed       uint64
	workers    int
	evaluator  Evaluator
	encoder    *game.Encoder
	metrics    metrics.Collector
	logger     zerolog.Logger
	searches   atomic.Uint64
}

// WithIterations sets the descent budget, counting the initial root visit.
// Zero, without a duration, makes agents play from an even policy.
func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations >= 0 {
			m.iterations = iterations
		}
	}
}

// WithDuration bounds every search by wall time. With no iteration budget
// the search runs until the duration elapses.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithCPuct(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.cPuct = c
		}
	}
}

func WithDirichlet(alpha, epsilon float64) Option {
	return func(m *MCTS) {
		if alpha > 0 && epsilon >= 0 && epsilon <= 1 {
			m.alpha = alpha
			m.epsilon = epsilon
			m.noise = epsilon > 0
		}
	}
}

func WithoutNoise() Option {
	return func(m *MCTS) {
		m.noise = false
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		if seed != 0 {
			m.seed = seed
		}
	}
}

// WithWorkers expands leaves on a pool of workers goroutines. Zero keeps
// expansion on the searching goroutine.
func WithWorkers(workers int) Option {
	return func(m *MCTS) {
		if workers >= 0 {
			m.workers = workers
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithEncoder(encoder *game.Encoder) Option {
	return func(m *MCTS) {
		if encoder != nil {
			m.encoder = encoder
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = logger
	}
}

func NewMCTS(evaluator Evaluator, options ...Option) *MCTS {
	if evaluator == nil {
		panic("MCTS needs an evaluator")
	}
	m := &MCTS{ // Default values
		iterations: meta.ITERATIONS,
		cPuct:      meta.C_PUCT,
		alpha:      meta.DIRICHLET_ALPHA,
		epsilon:    meta.DIRICHLET_EPSILON,
		noise:      true,
		seed:       uint64(time.Now().UnixNano()),
		evaluator:  evaluator,
		encoder:    game.NewEncoder(),
		metrics:    metrics.NewDummyCollector(),
		logger:     log.Logger,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *MCTS) Iterations() int {
	return m.iterations
}

func (m *MCTS) Encoder() *game.Encoder {
	return m.encoder
}

type search struct {
	*MCTS
	root  *node
	noise *dirichlet
	rng   *rand.Rand // only used by the descending goroutine
	tasks chan *node
	wg    sync.WaitGroup
	mu    sync.Mutex
	err   error
}

// Search returns the share of root visits spent on every action id. g is
// not modified.
func (m *MCTS) Search(ctx context.Context, g *game.Game) ([]float64, metrics.SearchMetric, error) {
	if g.Finished() {
		return nil, metrics.SearchMetric{}, fmt.Errorf("%w: cannot search", game.ErrGameFinished)
	}
	size := g.ActionSpace().Size()
	legal := game.LegalActionIDs(g)
	if len(legal) == 0 {
		return nil, metrics.SearchMetric{}, &NoLegalActionError{Seat: g.CurrentSeat(), Player: g.Current().Name}
	}
	if len(legal) == 1 {
		policy := make([]float64, size)
		policy[legal[0]] = 1
		return policy, metrics.SearchMetric{}, nil
	}
	if m.iterations <= 1 && m.duration <= 0 {
		return evenPolicy(size, legal), metrics.SearchMetric{}, nil
	}

	n := m.searches.Add(1)
	s := &search{
		MCTS: m,
		rng:  rand.New(rand.NewSource(m.seed + n)),
	}
	if m.noise {
		s.noise = newDirichlet(m.alpha, m.epsilon, size, m.seed^n)
	}
	root, err := newRoot(g, size)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	s.root = root

	m.metrics.Start(m.workers, m.iterations)
	if err := root.expand(s); err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	root.visit()
	close(root.done)
	m.metrics.AddExpansion()

	if m.workers > 0 {
		s.tasks = make(chan *node, m.workers)
		for i := 0; i < m.workers; i++ {
			s.wg.Add(1)
			go s.work()
		}
	}

	err = s.run(ctx)
	if s.tasks != nil {
		close(s.tasks)
		s.wg.Wait()
	}
	if err == nil {
		err = s.failure()
	}
	metric := m.metrics.Complete()
	if err != nil {
		return nil, metric, err
	}

	policy := root.policy()
	m.logger.Trace().
		Int("seat", root.seat).
		Int("descents", metric.Descents).
		Dur("duration", metric.Duration).
		Msg("search complete")
	return policy, metric, nil
}

func (s *search) run(ctx context.Context) error {
	var deadline <-chan time.Time
	if s.duration > 0 {
		timer := time.NewTimer(s.duration)
		defer timer.Stop()
		deadline = timer.C
	}

	for i := 1; s.iterations <= 0 || i < s.iterations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return nil
		default:
		}
		if err := s.failure(); err != nil {
			return err
		}
		if err := s.descend(ctx); err != nil {
			return err
		}
		s.metrics.AddDescent()
	}
	return nil
}

// descend walks from the root through favourite children, counting visits,
// until it reaches a node seen for the first time or a finished game.
func (s *search) descend(ctx context.Context) error {
	current := s.root
	visits := current.visit()
	for visits > 1 {
		next, err := s.favoriteChild(ctx, current)
		if err != nil {
			return err
		}
		current = next
		visits = current.visit()
		if current.finished {
			current.backup()
			s.metrics.AddTerminal()
			break
		}
	}
	return nil
}

func (s *search) favoriteChild(ctx context.Context, parent *node) (*node, error) {
	parent.RLock()
	priors := parent.priors
	parentQ := parent.qLocked()
	score := newPUCT(s.cPuct, parent.n)
	parent.RUnlock()

	best, bestScore := -1, 0.0
	var pending []*node
	for _, id := range parent.legal {
		var u float64
		child := parent.child(id)
		switch {
		case child == nil:
			u = score.unexplored(parentQ, priors[id])
		case child.pending():
			pending = append(pending, child)
			continue
		default:
			if child.err != nil {
				return nil, child.err
			}
			q := child.q()
			if child.seat != parent.seat {
				q = -q
			}
			u = score.evaluate(q, priors[id], child.visits())
		}
		if best < 0 || u > bestScore {
			best, bestScore = id, u
		}
	}

	if best >= 0 && !math.IsInf(bestScore, -1) {
		if child := parent.child(best); child != nil {
			return child, nil
		}
		return s.create(parent, best)
	}
	if len(pending) > 0 {
		return s.await(ctx, pending[s.rng.Intn(len(pending))])
	}
	err := &NoLegalActionError{
		Seat:   parent.seat,
		Player: parent.game.Current().Name,
		Legal:  parent.legal,
		Priors: priors,
	}
	s.logger.Error().
		Err(err).
		Floats64("priors", priors).
		Interface("state", parent.game.Snapshot()).
		Msg("search stopped")
	return nil, err
}

func (s *search) await(ctx context.Context, child *node) (*node, error) {
	s.metrics.AddWait()
	select {
	case <-child.done:
		if child.err != nil {
			return nil, child.err
		}
		return child, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// create adds the child reached by action. A finished child needs no
// evaluation; others are expanded inline or handed to the workers.
func (s *search) create(parent *node, action int) (*node, error) {
	child, err := newChild(parent, action)
	if err != nil {
		return nil, err
	}
	parent.setChild(action, child)
	if child.finished {
		close(child.done)
		return child, nil
	}
	if s.tasks != nil {
		s.tasks <- child
		return child, nil
	}
	s.expand(child)
	return child, s.failure()
}

func (s *search) work() {
	defer s.wg.Done()

	for child := range s.tasks {
		s.expand(child)
	}
}

func (s *search) expand(child *node) {
	defer close(child.done)

	if err := child.expand(s); err != nil {
		child.err = err
		s.fail(err)
		return
	}
	child.backup()
	s.metrics.AddExpansion()
}

func (s *search) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

func (s *search) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

type dirichlet struct {
	epsilon float64
	dist    *distmv.Dirichlet
}

func newDirichlet(alpha, epsilon float64, size int, seed uint64) *dirichlet {
	concentration := make([]float64, size)
	for i := range concentration {
		concentration[i] = alpha
	}
	return &dirichlet{
		epsilon: epsilon,
		dist:    distmv.NewDirichlet(concentration, rand.NewSource(seed)),
	}
}

// blend mixes one noise sample over every action id into priors.
func (d *dirichlet) blend(priors []float64) {
	noise := d.dist.Rand(nil)
	for i := range priors {
		priors[i] = (1-d.epsilon)*priors[i] + d.epsilon*noise[i]
	}
}
