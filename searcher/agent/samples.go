package agent

import (
	"sync"

	"catan/game"
)

// Sample is one training example: the encoded state, the search policy and
// the final outcome for the player who was to move.
type Sample struct {
	State   game.Tensor
	Policy  []float64
	Seat    int
	Outcome float64
}

// SampleBook collects raw samples during a game. It is safe for use by the
// agents of every seat at once.
type SampleBook struct {
	mu  sync.Mutex
	raw []Sample
}

func NewSampleBook() *SampleBook {
	return &SampleBook{}
}

func (b *SampleBook) Record(state game.Tensor, policy []float64, seat int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.raw = append(b.raw, Sample{State: state, Policy: policy, Seat: seat})
}

func (b *SampleBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.raw)
}

// Cook labels every recorded sample with +1 when its seat won and -1
// otherwise. A game without a winner (winner < 0) labels everything 0.
func (b *SampleBook) Cook(winner int) []Sample {
	b.mu.Lock()
	defer b.mu.Unlock()

	cooked := make([]Sample, len(b.raw))
	for i, s := range b.raw {
		switch {
		case winner < 0:
			s.Outcome = 0
		case s.Seat == winner:
			s.Outcome = 1
		default:
			s.Outcome = -1
		}
		cooked[i] = s
	}
	return cooked
}
