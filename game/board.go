package game

// Board tracks which player occupies each point and lane of a Layout.
type Board struct {
	*Layout
	pointOwner []int // -1 indicates unoccupied
	pointPiece []PieceKind
	laneOwner  []int // -1 indicates unoccupied
}

func NewBoard(layout *Layout) *Board {
	b := &Board{
		Layout:     layout,
		pointOwner: make([]int, len(layout.Points)),
		pointPiece: make([]PieceKind, len(layout.Points)),
		laneOwner:  make([]int, len(layout.Lanes)),
	}
	for i := range b.pointOwner {
		b.pointOwner[i] = -1
	}
	for i := range b.laneOwner {
		b.laneOwner[i] = -1
	}
	return b
}

// PointOwner returns the seat holding a building at point, or -1.
func (b *Board) PointOwner(point int) (int, PieceKind) {
	return b.pointOwner[point], b.pointPiece[point]
}

func (b *Board) LaneOwner(lane int) int {
	return b.laneOwner[lane]
}

// Crowded reports whether point or any point one lane away holds a building.
func (b *Board) Crowded(point int) bool {
	for _, lane := range b.Points[point].Lanes {
		for _, p := range b.Lanes[lane].Points {
			if b.pointOwner[p] >= 0 {
				return true
			}
		}
	}
	return false
}

// PointReachable reports whether seat owns the building at point or a road
// touching it.
func (b *Board) PointReachable(point, seat int) bool {
	if b.pointOwner[point] == seat {
		return true
	}
	for _, lane := range b.Points[point].Lanes {
		if b.laneOwner[lane] == seat {
			return true
		}
	}
	return false
}

func (b *Board) LaneReachable(lane, seat int) bool {
	ends := b.Lanes[lane].Points
	return b.PointReachable(ends[0], seat) || b.PointReachable(ends[1], seat)
}

func (b *Board) place(piece Piece) {
	switch piece.Kind {
	case Road:
		b.laneOwner[piece.Location] = piece.Owner
	case Settlement, City:
		b.pointOwner[piece.Location] = piece.Owner
		b.pointPiece[piece.Location] = piece.Kind
	default:
		panic("unexpected piece kind")
	}
}

// Distribute credits every building next to a hex numbered roll.
func (b *Board) Distribute(roll int, credit func(seat int, resource Resource, amount int)) {
	for _, hex := range b.Hexes {
		if hex.Number == 0 || hex.Number != roll || hex.Resource == Desert {
			continue
		}
		for _, p := range hex.Points {
			owner := b.pointOwner[p]
			if owner < 0 {
				continue
			}
			credit(owner, hex.Resource, b.pointPiece[p].CollectionRate())
		}
	}
}
