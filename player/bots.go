package player

import (
	"context"
	"fmt"

	"catan/game"

	"golang.org/x/exp/rand"
)

type random struct {
	name string
	rng  *rand.Rand
}

// NewRandom returns an agent that picks uniformly among legal action ids.
func NewRandom(name string, seed uint64) Agent {
	return &random{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (r *random) Name() string     { return r.name }
func (r *random) Autonomous() bool { return true }

func (r *random) ChooseAction(ctx context.Context, g *game.Game) (game.Action, error) {
	legal := game.LegalActionIDs(g)
	if len(legal) == 0 {
		return game.Action{}, fmt.Errorf("%w: nothing to choose", game.ErrGameFinished)
	}
	return g.ActionSpace().Resolve(legal[r.rng.Intn(len(legal))])
}

// heuristic plays a fixed priority list: roll, upgrade the best settlement,
// settle the best point, extend a road, trade, end the turn.
type heuristic struct {
	name     string
	rng      *rand.Rand
	targeted bool // trade only to cover a missing resource
}

func NewBasic(name string, seed uint64) Agent {
	return &heuristic{name: name, rng: rand.New(rand.NewSource(seed))}
}

func NewSimple(name string, seed uint64) Agent {
	return &heuristic{name: name, rng: rand.New(rand.NewSource(seed)), targeted: true}
}

func (h *heuristic) Name() string     { return h.name }
func (h *heuristic) Autonomous() bool { return true }

func (h *heuristic) ChooseAction(ctx context.Context, g *game.Game) (game.Action, error) {
	if g.Finished() {
		return game.Action{}, fmt.Errorf("%w: nothing to choose", game.ErrGameFinished)
	}
	p := g.Current()

	if g.CanRoll() {
		return game.Action{Kind: game.RollAction}, nil
	}
	if g.CanBuyPiece(game.City) && len(p.Settlements) > 0 {
		if point, ok := bestPoint(g, game.City); ok {
			return game.Action{Kind: game.BuildAction, Piece: game.City, Location: point}, nil
		}
	}
	if g.CanBuyPiece(game.Settlement) {
		if point, ok := bestPoint(g, game.Settlement); ok {
			return game.Action{Kind: game.BuildAction, Piece: game.Settlement, Location: point}, nil
		}
	}
	if g.CanBuyPiece(game.Road) {
		var lanes []int
		for lane := range g.Board.Lanes {
			if g.CanPlacePiece(game.Road, lane) {
				lanes = append(lanes, lane)
			}
		}
		if len(lanes) > 0 {
			return game.Action{Kind: game.BuildAction, Piece: game.Road, Location: lanes[h.rng.Intn(len(lanes))]}, nil
		}
	}
	if trade, ok := h.trade(g); ok {
		return trade, nil
	}
	if g.CanEndTurn() {
		return game.Action{Kind: game.EndTurnAction}, nil
	}

	legal := game.LegalActionIDs(g)
	if len(legal) == 0 {
		return game.Action{}, fmt.Errorf("%w: no legal action for %s", game.ErrIllegalAction, p.Name)
	}
	return g.ActionSpace().Resolve(legal[0])
}

func (h *heuristic) trade(g *game.Game) (game.Action, bool) {
	cards := g.Current().Cards
	if h.targeted {
		give, receive := -1, -1
		for r, n := range cards {
			if n >= 4 && give < 0 {
				give = r
			}
			if n == 0 && receive < 0 {
				receive = r
			}
		}
		if give < 0 || receive < 0 || !g.CanTrade(game.Resource(give), game.Resource(receive)) {
			return game.Action{}, false
		}
		return game.Action{Kind: game.TradeAction, Give: game.Resource(give), Receive: game.Resource(receive)}, true
	}

	var trades []game.Action
	for give := game.Resource(0); give < game.NumResources; give++ {
		for receive := game.Resource(0); receive < game.NumResources; receive++ {
			if g.CanTrade(give, receive) {
				trades = append(trades, game.Action{Kind: game.TradeAction, Give: give, Receive: receive})
			}
		}
	}
	if len(trades) == 0 {
		return game.Action{}, false
	}
	return trades[h.rng.Intn(len(trades))], true
}

// bestPoint returns the placeable point with the highest value for the
// current player. Ties keep the lowest index.
func bestPoint(g *game.Game, kind game.PieceKind) (int, bool) {
	p := g.Current()
	best, bestValue := -1, 0.0
	for i, point := range g.Board.Points {
		if !g.CanPlacePiece(kind, i) {
			continue
		}
		if value := game.PointValue(p, point); best < 0 || value > bestValue {
			best, bestValue = i, value
		}
	}
	return best, best >= 0
}
