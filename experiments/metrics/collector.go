package metrics

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type SearchMetric struct {
	Workers     int
	Duration    time.Duration
	Iterations  int // descents requested, 0 when bounded by duration
	Descents    int
	Expansions  int
	Terminals   int // descents that reached a finished game
	WaitedNodes int // descents that blocked on a pending expansion
}

type MoveMetric struct {
	Step   int
	Player int // seat
	SearchMetric
}

type GameMetric struct {
	ID             uuid.UUID
	StartingPlayer int    // seat
	Winner         string // player name, empty when the game hit the turn cap
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
	TotalTurns     int
}

type Collector interface {
	Start(workers, iterations int)
	AddDescent()
	AddExpansion()
	AddTerminal()
	AddWait()
	Complete() SearchMetric
}

type collector struct {
	workers     int
	iterations  int
	startTime   time.Time
	descents    atomic.Int32
	expansions  atomic.Int32
	terminals   atomic.Int32
	waitedNodes atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers, iterations int) {
	m.startTime = time.Now()
	m.workers = workers
	m.iterations = iterations
	m.descents.Store(0)
	m.expansions.Store(0)
	m.terminals.Store(0)
	m.waitedNodes.Store(0)
}

func (m *collector) AddDescent() {
	m.descents.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddTerminal() {
	m.terminals.Add(1)
}

func (m *collector) AddWait() {
	m.waitedNodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Workers:     m.workers,
		Duration:    time.Since(m.startTime),
		Iterations:  m.iterations,
		Descents:    int(m.descents.Load()),
		Expansions:  int(m.expansions.Load()),
		Terminals:   int(m.terminals.Load()),
		WaitedNodes: int(m.waitedNodes.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers, iterations int) {}
func (m *dummyCollector) AddDescent()                   {}
func (m *dummyCollector) AddExpansion()                 {}
func (m *dummyCollector) AddTerminal()                  {}
func (m *dummyCollector) AddWait()                      {}
func (m *dummyCollector) Complete() SearchMetric        { return SearchMetric{} }
