package game

import "fmt"

type PieceKind int

const (
	Road PieceKind = iota
	Settlement
	City
)

var pieceKinds = []struct {
	name string
	max  int
	cost Resources
	rate int
}{
	Road:       {name: "road", max: 15, cost: Resources{1, 1, 0, 0, 0}},
	Settlement: {name: "settlement", max: 5, cost: Resources{1, 1, 1, 1, 0}, rate: 1},
	City:       {name: "city", max: 4, cost: Resources{0, 0, 0, 2, 3}, rate: 2},
}

func (k PieceKind) valid() bool {
	return k >= Road && k <= City
}

func (k PieceKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("piece(%d)", int(k))
	}
	return pieceKinds[k].name
}

func (k PieceKind) MaxPerPlayer() int {
	if !k.valid() {
		return 0
	}
	return pieceKinds[k].max
}

func (k PieceKind) Cost() Resources {
	if !k.valid() {
		return Resources{}
	}
	return pieceKinds[k].cost
}

// CollectionRate is the number of cards a building yields per matching roll.
func (k PieceKind) CollectionRate() int {
	if !k.valid() {
		return 0
	}
	return pieceKinds[k].rate
}

// Piece is a placed road or building. Location indexes Layout.Lanes for roads
// and Layout.Points for buildings.
type Piece struct {
	Kind     PieceKind
	Owner    int
	Location int
}
