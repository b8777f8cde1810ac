package game

var playerColors = []string{"purple", "blue", "maroon", "cyan"}

// MaxPlayers is bounded by the available seat colors.
const MaxPlayers = 4

type Player struct {
	Seat        int
	Name        string
	Cards       Resources
	DevCards    [NumDevCards]int
	Roads       []Piece
	Settlements []Piece
	Cities      []Piece
	Generation  Resources
	Turns       int // turns this player has completed
}

func (p *Player) Color() string {
	return playerColors[p.Seat]
}

func (p *Player) VictoryPoints() int {
	return len(p.Settlements) + 2*len(p.Cities) + p.DevCards[VictoryPoint]
}

// Placed returns how many pieces of kind the player has on the board.
func (p *Player) Placed(kind PieceKind) int {
	switch kind {
	case Road:
		return len(p.Roads)
	case Settlement:
		return len(p.Settlements)
	case City:
		return len(p.Cities)
	}
	return 0
}

// clone copies scalars and arrays by value and gives the piece lists their
// own backing arrays.
func (p *Player) clone() *Player {
	c := *p
	c.Roads = append([]Piece(nil), p.Roads...)
	c.Settlements = append([]Piece(nil), p.Settlements...)
	c.Cities = append([]Piece(nil), p.Cities...)
	return &c
}
