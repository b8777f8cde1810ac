package game

// Snapshot is a read-only view of a game for renderers and clients.
type Snapshot struct {
	Phase    string       `json:"phase"`
	Turn     int          `json:"turn"`
	Current  int          `json:"current"`
	LastRoll [2]int       `json:"last_roll"`
	Winner   int          `json:"winner"`
	Deck     int          `json:"deck"`
	Width    int          `json:"width"`
	Hexes    []HexView    `json:"hexes"`
	Points   []PointView  `json:"points"`
	Lanes    []LaneView   `json:"lanes"`
	Players  []PlayerView `json:"players"`
	Legal    []int        `json:"legal"`
}

type HexView struct {
	Q        int    `json:"q"`
	R        int    `json:"r"`
	Resource string `json:"resource"`
	Number   int    `json:"number"`
}

type PointView struct {
	Q     int    `json:"q"`
	R     int    `json:"r"`
	Owner int    `json:"owner"`
	Piece string `json:"piece,omitempty"`
}

type LaneView struct {
	Points [2]int `json:"points"`
	Owner  int    `json:"owner"`
}

type PlayerView struct {
	Seat          int              `json:"seat"`
	Name          string           `json:"name"`
	Color         string           `json:"color"`
	VictoryPoints int              `json:"victory_points"`
	Cards         Resources        `json:"cards"`
	DevCards      [NumDevCards]int `json:"dev_cards"`
	Roads         int              `json:"roads"`
	Settlements   int              `json:"settlements"`
	Cities        int              `json:"cities"`
	Generation    Resources        `json:"generation"`
}

func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Phase:    g.Phase().String(),
		Turn:     g.Turn,
		Current:  g.current,
		LastRoll: g.LastRoll,
		Winner:   g.Winner(),
		Deck:     len(g.Deck),
		Width:    g.Board.Width,
		Legal:    LegalActionIDs(g),
	}
	for _, h := range g.Board.Hexes {
		s.Hexes = append(s.Hexes, HexView{Q: h.Q, R: h.R, Resource: h.Resource.String(), Number: h.Number})
	}
	for i, p := range g.Board.Points {
		owner, kind := g.Board.PointOwner(i)
		view := PointView{Q: p.Q, R: p.R, Owner: owner}
		if owner >= 0 {
			view.Piece = kind.String()
		}
		s.Points = append(s.Points, view)
	}
	for i, l := range g.Board.Lanes {
		s.Lanes = append(s.Lanes, LaneView{Points: l.Points, Owner: g.Board.LaneOwner(i)})
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerView{
			Seat:          p.Seat,
			Name:          p.Name,
			Color:         p.Color(),
			VictoryPoints: p.VictoryPoints(),
			Cards:         p.Cards,
			DevCards:      p.DevCards,
			Roads:         len(p.Roads),
			Settlements:   len(p.Settlements),
			Cities:        len(p.Cities),
			Generation:    p.Generation,
		})
	}
	return s
}
