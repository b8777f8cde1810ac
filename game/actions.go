package game

import (
	"fmt"
)

type ActionKind int

const (
	RollAction ActionKind = iota
	EndTurnAction
	BuyCardAction
	PlayCardAction
	BuildAction
	TradeAction
)

var actionKindNames = []string{"roll", "end_turn", "buy_card", "play_card", "build", "trade"}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionKindNames) {
		return fmt.Sprintf("action(%d)", int(k))
	}
	return actionKindNames[k]
}

// Action is a concrete operation on a game. Only the fields relevant to Kind are set.
type Action struct {
	Kind     ActionKind
	Card     DevCard
	Piece    PieceKind
	Location int
	Give     Resource
	Receive  Resource
}

func (a Action) String() string {
	switch a.Kind {
	case PlayCardAction:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Card)
	case BuildAction:
		return fmt.Sprintf("%s(%s@%d)", a.Kind, a.Piece, a.Location)
	case TradeAction:
		return fmt.Sprintf("%s(%s->%s)", a.Kind, a.Give, a.Receive)
	}
	return a.Kind.String()
}

const (
	RollID      = 0
	EndTurnID   = 1
	BuyCardID   = 2
	playCardID  = 3
	roadID      = playCardID + NumPlayableDevCards
	NumTradeIDs = NumResources * (NumResources - 1)
)

// ActionSpace numbers every action on a layout:
// roll | end turn | buy card | play card x4 | road per lane | settlement per point | city per point | trade x20
type ActionSpace struct {
	lanes  int
	points int
}

func NewActionSpace(layout *Layout) ActionSpace {
	return ActionSpace{lanes: len(layout.Lanes), points: len(layout.Points)}
}

func (s ActionSpace) settlementID() int { return roadID + s.lanes }
func (s ActionSpace) cityID() int       { return s.settlementID() + s.points }
func (s ActionSpace) tradeID() int      { return s.cityID() + s.points }

// Size is the number of action ids, 207 on the standard board.
func (s ActionSpace) Size() int {
	return s.tradeID() + NumTradeIDs
}

func (s ActionSpace) Resolve(id int) (Action, error) {
	switch {
	case id < 0 || id >= s.Size():
		return Action{}, fmt.Errorf("%w: action id %d out of range [0, %d)", ErrIllegalAction, id, s.Size())
	case id == RollID:
		return Action{Kind: RollAction}, nil
	case id == EndTurnID:
		return Action{Kind: EndTurnAction}, nil
	case id == BuyCardID:
		return Action{Kind: BuyCardAction}, nil
	case id < roadID:
		return Action{Kind: PlayCardAction, Card: DevCard(id - playCardID)}, nil
	case id < s.settlementID():
		return Action{Kind: BuildAction, Piece: Road, Location: id - roadID}, nil
	case id < s.cityID():
		return Action{Kind: BuildAction, Piece: Settlement, Location: id - s.settlementID()}, nil
	case id < s.tradeID():
		return Action{Kind: BuildAction, Piece: City, Location: id - s.cityID()}, nil
	}
	give, receive := TradeIDToPair(id - s.tradeID())
	return Action{Kind: TradeAction, Give: give, Receive: receive}, nil
}

// ID is the inverse of Resolve.
func (s ActionSpace) ID(a Action) (int, error) {
	switch a.Kind {
	case RollAction:
		return RollID, nil
	case EndTurnAction:
		return EndTurnID, nil
	case BuyCardAction:
		return BuyCardID, nil
	case PlayCardAction:
		if a.Card.Playable() {
			return playCardID + int(a.Card), nil
		}
	case BuildAction:
		switch a.Piece {
		case Road:
			if a.Location >= 0 && a.Location < s.lanes {
				return roadID + a.Location, nil
			}
		case Settlement:
			if a.Location >= 0 && a.Location < s.points {
				return s.settlementID() + a.Location, nil
			}
		case City:
			if a.Location >= 0 && a.Location < s.points {
				return s.cityID() + a.Location, nil
			}
		}
	case TradeAction:
		if id := TradePairToID(a.Give, a.Receive); id >= 0 {
			return s.tradeID() + id, nil
		}
	}
	return -1, fmt.Errorf("%w: no id for %s", ErrIllegalAction, a)
}

// TradePairToID numbers the 20 ordered pairs of distinct resources. It
// returns -1 for a pair that is not a valid trade.
func TradePairToID(give, receive Resource) int {
	if give == receive || give < 0 || give >= NumResources || receive < 0 || receive >= NumResources {
		return -1
	}
	id := int(give)*(NumResources-1) + int(receive)
	if give < receive {
		id--
	}
	return id
}

func TradeIDToPair(id int) (give, receive Resource) {
	give = Resource(id / (NumResources - 1))
	receive = Resource(id % (NumResources - 1))
	if give <= receive {
		receive++
	}
	return give, receive
}

// Legal lists every action id the current player may take, ascending.
func (s ActionSpace) Legal(g *Game) []int {
	if g.Finished() {
		return []int{}
	}
	if g.CanRoll() {
		return []int{RollID}
	}

	ids := []int{}
	if g.CanEndTurn() {
		ids = append(ids, EndTurnID)
	}
	if g.CanBuyDevelopmentCard() {
		ids = append(ids, BuyCardID)
	}
	for card := RoadBuilding; card < VictoryPoint; card++ {
		if g.CanPlayDevelopmentCard(card) {
			ids = append(ids, playCardID+int(card))
		}
	}
	if g.CanBuyPiece(Road) {
		for lane := 0; lane < s.lanes; lane++ {
			if g.CanPlacePiece(Road, lane) {
				ids = append(ids, roadID+lane)
			}
		}
	}
	if g.CanBuyPiece(Settlement) {
		for point := 0; point < s.points; point++ {
			if g.CanPlacePiece(Settlement, point) {
				ids = append(ids, s.settlementID()+point)
			}
		}
	}
	if g.CanBuyPiece(City) {
		for point := 0; point < s.points; point++ {
			if g.CanPlacePiece(City, point) {
				ids = append(ids, s.cityID()+point)
			}
		}
	}
	cards := g.Current().Cards
	for give := Wood; give < NumResources; give++ {
		if cards[give] < 4 {
			continue
		}
		for receive := Wood; receive < NumResources; receive++ {
			if receive != give {
				ids = append(ids, s.tradeID()+TradePairToID(give, receive))
			}
		}
	}
	return ids
}

func (g *Game) ActionSpace() ActionSpace {
	return NewActionSpace(g.Board.Layout)
}

func LegalActionIDs(g *Game) []int {
	return g.ActionSpace().Legal(g)
}

func (g *Game) Apply(a Action) error {
	switch a.Kind {
	case RollAction:
		return g.Roll()
	case EndTurnAction:
		return g.EndTurn()
	case BuyCardAction:
		return g.BuyDevelopmentCard()
	case PlayCardAction:
		return g.PlayDevelopmentCard(a.Card)
	case BuildAction:
		return g.Build(a.Piece, a.Location)
	case TradeAction:
		return g.Trade(a.Give, a.Receive)
	}
	return g.illegal("unknown action kind %d", a.Kind)
}

func (g *Game) ApplyID(id int) error {
	a, err := g.ActionSpace().Resolve(id)
	if err != nil {
		return err
	}
	return g.Apply(a)
}
