package searcher

import "math"

// puct scores children of one parent:
// U = Q + c * P * sqrt(N) / (1 + n)
type puct struct {
	c     float64
	sqrtN float64
}

func newPUCT(c float64, N int) puct {
	if N < 0 {
		panic("N cannot be negative")
	}
	return puct{c: c, sqrtN: math.Sqrt(float64(N))}
}

func (p puct) evaluate(q, prior float64, n int) float64 {
	if prior == 0 {
		return math.Inf(-1)
	}
	return q + p.c*prior*p.sqrtN/float64(1+n)
}

// unexplored scores a child that does not exist yet, bootstrapping Q from the parent.
func (p puct) unexplored(parentQ, prior float64) float64 {
	return p.evaluate(parentQ, prior, 0)
}
