package game

import "sort"

// PointValue scores building on point for p: the point's generation per
// resource, discounted by how much of that resource p already generates.
func PointValue(p *Player, point Point) float64 {
	value := 0.0
	for r, gen := range point.Generation {
		value += float64(gen) / float64(p.Generation[r]+1)
	}
	return value
}

// Standings orders seats by victory points, then by total generation.
// Ties keep seat order.
func Standings(g *Game) []int {
	seats := make([]int, len(g.Players))
	for i := range seats {
		seats[i] = i
	}
	sort.SliceStable(seats, func(i, j int) bool {
		a, b := g.Players[seats[i]], g.Players[seats[j]]
		if va, vb := a.VictoryPoints(), b.VictoryPoints(); va != vb {
			return va > vb
		}
		return a.Generation.Total() > b.Generation.Total()
	})
	return seats
}

// Progress scores the game between -1 and 1 from seat's perspective by
// comparing victory points and generation against the strongest opponent.
func Progress(g *Game, seat int) float64 {
	own := g.Players[seat]
	var vp, gen int
	for _, p := range g.Players {
		if p.Seat == seat {
			continue
		}
		vp = max(vp, p.VictoryPoints())
		gen = max(gen, p.Generation.Total())
	}
	return (relative(own.VictoryPoints(), vp) + relative(own.Generation.Total(), gen)) / 2
}

func relative(own, other int) float64 {
	if own+other == 0 {
		return 0
	}
	return float64(own-other) / float64(own+other)
}
