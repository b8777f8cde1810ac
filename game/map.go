package game

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
)

var ErrInvalidWidth = errors.New("invalid board width")

// Coord is an axial coordinate. Hexes and points use separate coordinate systems.
type Coord struct {
	Q, R int
}

type Hex struct {
	Coord
	Resource Resource
	Number   int // 0 when the hex has no number token
	Weight   int
	Points   [6]int // N, NE, SE, S, SW, NW
}

type Point struct {
	Coord
	Hexes      []int
	Lanes      []int
	Generation Resources // roll weight summed per resource over adjacent numbered hexes
}

type Lane struct {
	Points [2]int
}

// Layout is the static topology of a board. It never changes after
// construction and is shared by every copy of a game.
type Layout struct {
	Width  int
	Hexes  []Hex
	Points []Point
	Lanes  []Lane

	pointIndex map[Coord]int
	laneIndex  map[[2]Coord]int
}

// NewLayout builds a hexagonal board that fits in a Width x Width axial grid.
// Widths 5 and 6 give the standard 19-hex board.
func NewLayout(width int, shuffle bool, rng *rand.Rand) (*Layout, error) {
	if width < 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if shuffle && rng == nil {
		return nil, fmt.Errorf("shuffled board requires a random source")
	}

	l := &Layout{
		Width:      width,
		pointIndex: make(map[Coord]int),
		laneIndex:  make(map[[2]Coord]int),
	}

	coords := hexCoords(width)
	tiles, numbers := deal(len(coords), shuffle, rng)
	for i, c := range coords {
		l.Hexes = append(l.Hexes, Hex{
			Coord:    c,
			Resource: tiles[i],
			Number:   numbers[i],
			Weight:   RollWeight(numbers[i]),
		})
	}

	for h := range l.Hexes {
		l.makePoints(h)
	}
	for h := range l.Hexes {
		l.makeLanes(h)
	}
	return l, nil
}

func hexCoords(width int) []Coord {
	radius := (width - 1) / 2
	coords := []Coord{}
	for r := 0; r < width; r++ {
		for q := 0; q < width; q++ {
			if q > 2*radius || r > 2*radius {
				continue
			}
			if sum := q + r; sum >= radius && sum <= 3*radius {
				coords = append(coords, Coord{Q: q, R: r})
			}
		}
	}
	return coords
}

// deal hands out tiles and number tokens from the end of the standard set,
// cycling through it for boards with more than 19 hexes. Shuffled boards keep
// the desert without a number.
func deal(n int, shuffle bool, rng *rand.Rand) ([]Resource, []int) {
	tiles := make([]Resource, n)
	numbers := make([]int, n)
	for i := 0; i < n; i++ {
		k := len(standardTiles) - 1 - i%len(standardTiles)
		tiles[i] = standardTiles[k]
		numbers[i] = standardNumbers[k]
	}
	if !shuffle {
		return tiles, numbers
	}

	tokens := []int{}
	for _, number := range numbers {
		if number > 0 {
			tokens = append(tokens, number)
		}
	}
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
	rng.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })

	next := 0
	for i, tile := range tiles {
		if tile == Desert || next >= len(tokens) {
			numbers[i] = 0
			continue
		}
		numbers[i] = tokens[next]
		next++
	}
	return tiles, numbers
}

func (l *Layout) makePoints(h int) {
	q, r := l.Hexes[h].Q, l.Hexes[h].R
	corners := [6]Coord{
		{3*q + 1, 3*r - 2},
		{3*q + 2, 3*r - 1},
		{3*q + 1, 3*r + 1},
		{3*q - 1, 3*r + 2},
		{3*q - 2, 3*r + 1},
		{3*q - 1, 3*r - 1},
	}
	for i, c := range corners {
		p, ok := l.pointIndex[c]
		if !ok {
			p = len(l.Points)
			l.Points = append(l.Points, Point{Coord: c})
			l.pointIndex[c] = p
		}
		point := &l.Points[p]
		if len(point.Hexes) == 3 {
			panic(fmt.Sprintf("point %v touches more than 3 hexes", c))
		}
		point.Hexes = append(point.Hexes, h)
		if hex := l.Hexes[h]; hex.Number > 0 {
			point.Generation[hex.Resource] += hex.Weight
		}
		l.Hexes[h].Points[i] = p
	}
}

func (l *Layout) makeLanes(h int) {
	points := l.Hexes[h].Points
	for i := range points {
		a, b := points[i], points[(i+1)%len(points)]
		if _, ok := l.LaneBetween(l.Points[a].Coord, l.Points[b].Coord); ok {
			continue
		}
		lane := len(l.Lanes)
		l.Lanes = append(l.Lanes, Lane{Points: [2]int{a, b}})
		l.laneIndex[[2]Coord{l.Points[a].Coord, l.Points[b].Coord}] = lane
		l.Points[a].Lanes = append(l.Points[a].Lanes, lane)
		l.Points[b].Lanes = append(l.Points[b].Lanes, lane)
	}
}

func (l *Layout) PointAt(c Coord) (int, bool) {
	p, ok := l.pointIndex[c]
	return p, ok
}

// LaneBetween looks a lane up by its endpoints in either order.
func (l *Layout) LaneBetween(a, b Coord) (int, bool) {
	if lane, ok := l.laneIndex[[2]Coord{a, b}]; ok {
		return lane, true
	}
	lane, ok := l.laneIndex[[2]Coord{b, a}]
	return lane, ok
}

// Other returns the endpoint of lane opposite to point.
func (l *Layout) Other(lane, point int) int {
	ends := l.Lanes[lane].Points
	if ends[0] == point {
		return ends[1]
	}
	return ends[0]
}
