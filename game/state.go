package game

import (
	"errors"
	"fmt"
	"time"

	"catan/meta"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Phase int

const (
	Setup Phase = iota
	Play
	Finished
)

func (p Phase) String() string {
	switch p {
	case Setup:
		return "setup"
	case Play:
		return "play"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	ErrIllegalAction = errors.New("illegal action")
	ErrGameFinished  = fmt.Errorf("%w: game is finished", ErrIllegalAction)
	ErrConsistency   = errors.New("inconsistent game state")
	ErrSetup         = errors.New("invalid game setup")
)

// Game is the complete mutable state of one game of Catan.
type Game struct {
	Board         *Board
	Players       []*Player // indexed by seat
	Deck          []DevCard // drawn from the end
	LastRoll      [2]int    // zeros until the current player rolls
	Turn          int
	Depth         int // 0 for a real game, +1 for every copy taken from it
	VictoryTarget int

	current int
	order   *TurnOrder
	seed    uint64
	steps   uint64
	rng     *rand.Rand
}

type Option func(s *settings)

type settings struct {
	seed          uint64
	width         int
	randomBoard   bool
	shuffleSeats  bool
	victoryTarget int
	layout        *Layout
}

// WithSeed fixes the random source. Zero picks a seed from the clock.
func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

func WithWidth(width int) Option {
	return func(s *settings) {
		if width > 0 {
			s.width = width
		}
	}
}

func WithRandomBoard(random bool) Option {
	return func(s *settings) {
		s.randomBoard = random
	}
}

func WithShuffledSeats(shuffle bool) Option {
	return func(s *settings) {
		s.shuffleSeats = shuffle
	}
}

func WithVictoryTarget(points int) Option {
	return func(s *settings) {
		if points > 0 {
			s.victoryTarget = points
		}
	}
}

// WithLayout reuses an existing board layout instead of generating one.
func WithLayout(layout *Layout) Option {
	return func(s *settings) {
		s.layout = layout
	}
}

func NewGame(names []string, options ...Option) (*Game, error) {
	s := settings{ // Default values
		width:         meta.BoardWidth,
		victoryTarget: meta.VictoryPoints,
	}
	for _, option := range options {
		option(&s)
	}
	if len(names) < 2 || len(names) > MaxPlayers {
		return nil, fmt.Errorf("%w: need 2 to %d players, got %d", ErrSetup, MaxPlayers, len(names))
	}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(s.seed))

	layout := s.layout
	if layout == nil {
		var err error
		layout, err = NewLayout(s.width, s.randomBoard, rng)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSetup, err)
		}
	}

	seated := append([]string(nil), names...)
	if s.shuffleSeats {
		rng.Shuffle(len(seated), func(i, j int) { seated[i], seated[j] = seated[j], seated[i] })
	}
	players := make([]*Player, len(seated))
	for i, name := range seated {
		players[i] = &Player{Seat: i, Name: name}
	}

	deck := standardDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	g := &Game{
		Board:         NewBoard(layout),
		Players:       players,
		Deck:          deck,
		VictoryTarget: s.victoryTarget,
		order:         NewTurnOrder(len(players)),
		seed:          s.seed,
		rng:           rng,
	}
	g.current = g.order.Next()
	return g, nil
}

func (g *Game) Seed() uint64 {
	return g.seed
}

func (g *Game) Current() *Player {
	return g.Players[g.current]
}

func (g *Game) CurrentSeat() int {
	return g.current
}

func (g *Game) Phase() Phase {
	if g.Winner() >= 0 {
		return Finished
	}
	if g.Turn < 2*len(g.Players) {
		return Setup
	}
	return Play
}

func (g *Game) Finished() bool {
	return g.Winner() >= 0
}

// Winner returns the seat of the player who reached the victory target, or -1.
func (g *Game) Winner() int {
	for _, p := range g.Players {
		if p.VictoryPoints() >= g.VictoryTarget {
			return p.Seat
		}
	}
	return -1
}

func (g *Game) illegal(format string, args ...any) error {
	reason := fmt.Sprintf(format, args...)
	if g.Finished() {
		return fmt.Errorf("%w: %s", ErrGameFinished, reason)
	}
	return fmt.Errorf("%w: %s (seat %d)", ErrIllegalAction, reason, g.current)
}

func (g *Game) logAction(action string, fields func(e *zerolog.Event)) {
	e := log.Trace()
	if g.Depth == 0 {
		e = log.Debug()
	}
	if e == nil {
		return
	}
	if fields != nil {
		fields(e)
	}
	e.Int("seat", g.current).
		Str("player", g.Current().Name).
		Int("depth", g.Depth).
		Int("turn", g.Turn).
		Msg(action)
}

func (g *Game) CanRoll() bool {
	return g.Phase() == Play && g.LastRoll[0] == 0
}

func (g *Game) Roll() error {
	if !g.CanRoll() {
		return g.illegal("cannot roll")
	}
	g.LastRoll = [2]int{g.rng.Intn(6) + 1, g.rng.Intn(6) + 1}
	g.Board.Distribute(g.LastRoll[0]+g.LastRoll[1], func(seat int, resource Resource, amount int) {
		g.Players[seat].Cards[resource] += amount
	})
	g.steps++
	g.logAction("roll", func(e *zerolog.Event) { e.Ints("dice", g.LastRoll[:]) })
	return nil
}

func (g *Game) CanEndTurn() bool {
	p := g.Current()
	switch g.Phase() {
	case Setup:
		return len(p.Settlements) == p.Turns+1 && len(p.Roads) == p.Turns+1
	case Play:
		return g.LastRoll[0] != 0
	}
	return false
}

func (g *Game) EndTurn() error {
	if !g.CanEndTurn() {
		return g.illegal("cannot end turn")
	}
	g.logAction("end turn", nil)
	g.Turn++
	g.LastRoll = [2]int{}
	g.Current().Turns++
	g.current = g.order.Next()
	g.steps++
	return nil
}

func (g *Game) CanBuyPiece(kind PieceKind) bool {
	if !kind.valid() {
		return false
	}
	p := g.Current()
	if p.Placed(kind) >= kind.MaxPerPlayer() {
		return false
	}
	switch g.Phase() {
	case Setup:
		switch kind {
		case Settlement:
			return len(p.Settlements) == p.Turns
		case Road:
			return len(p.Roads) == len(p.Settlements)-1
		}
		return false
	case Play:
		return p.Cards.Covers(kind.Cost())
	}
	return false
}

func (g *Game) CanPlacePiece(kind PieceKind, location int) bool {
	seat := g.current
	setup := g.Phase() == Setup
	switch kind {
	case Settlement:
		if location < 0 || location >= len(g.Board.Points) {
			return false
		}
		if g.Board.Crowded(location) {
			return false
		}
		return setup || g.Board.PointReachable(location, seat)
	case City:
		if location < 0 || location >= len(g.Board.Points) || setup {
			return false
		}
		owner, piece := g.Board.PointOwner(location)
		return owner == seat && piece == Settlement
	case Road:
		if location < 0 || location >= len(g.Board.Lanes) {
			return false
		}
		if g.Board.LaneOwner(location) >= 0 {
			return false
		}
		if setup {
			settlements := g.Current().Settlements
			if len(settlements) == 0 {
				return false
			}
			last := settlements[len(settlements)-1].Location
			ends := g.Board.Lanes[location].Points
			return ends[0] == last || ends[1] == last
		}
		return g.Board.LaneReachable(location, seat)
	}
	return false
}

func (g *Game) Build(kind PieceKind, location int) error {
	if !g.CanBuyPiece(kind) {
		return g.illegal("cannot buy a %s", kind)
	}
	if !g.CanPlacePiece(kind, location) {
		return g.illegal("cannot place a %s at %d", kind, location)
	}
	p := g.Current()
	if g.Phase() != Setup {
		p.Cards = p.Cards.Minus(kind.Cost())
	}
	g.place(p, Piece{Kind: kind, Owner: p.Seat, Location: location})
	g.steps++
	g.logAction("build", func(e *zerolog.Event) { e.Stringer("piece", kind).Int("location", location) })
	return nil
}

func (g *Game) place(p *Player, piece Piece) {
	switch piece.Kind {
	case Road:
		p.Roads = append(p.Roads, piece)
	case Settlement:
		p.Settlements = append(p.Settlements, piece)
		p.Generation = p.Generation.Plus(g.Board.Points[piece.Location].Generation)
	case City:
		for i, s := range p.Settlements {
			if s.Location == piece.Location {
				p.Settlements = append(p.Settlements[:i:i], p.Settlements[i+1:]...)
				break
			}
		}
		p.Cities = append(p.Cities, piece)
		// The settlement's share stays, so the point now counts twice.
		p.Generation = p.Generation.Plus(g.Board.Points[piece.Location].Generation)
	}
	g.Board.place(piece)
}

func (g *Game) CanBuyDevelopmentCard() bool {
	if g.Finished() {
		return false
	}
	return len(g.Deck) > 0 && g.Current().Cards.Covers(DevCardCost)
}

func (g *Game) BuyDevelopmentCard() error {
	if !g.CanBuyDevelopmentCard() {
		return g.illegal("cannot buy a development card")
	}
	p := g.Current()
	p.Cards = p.Cards.Minus(DevCardCost)
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	p.DevCards[card]++
	g.steps++
	g.logAction("buy development card", nil)
	return nil
}

func (g *Game) CanPlayDevelopmentCard(card DevCard) bool {
	if g.Finished() || !card.Playable() {
		return false
	}
	return g.Current().DevCards[card] > 0
}

// PlayDevelopmentCard spends a card from the current player's hand.
// TODO: resolve card effects (free roads, year of plenty, monopoly, robber).
func (g *Game) PlayDevelopmentCard(card DevCard) error {
	if !g.CanPlayDevelopmentCard(card) {
		return g.illegal("cannot play development card %s", card)
	}
	g.Current().DevCards[card]--
	g.steps++
	g.logAction("play development card", func(e *zerolog.Event) { e.Stringer("card", card) })
	return nil
}

func (g *Game) CanTrade(give, receive Resource) bool {
	if g.Finished() {
		return false
	}
	if give < 0 || give >= NumResources || receive < 0 || receive >= NumResources || give == receive {
		return false
	}
	return g.Current().Cards[give] >= 4
}

// Trade exchanges four cards of one resource for one of another with the bank.
func (g *Game) Trade(give, receive Resource) error {
	if !g.CanTrade(give, receive) {
		return g.illegal("cannot trade %s for %s", give, receive)
	}
	p := g.Current()
	p.Cards[give] -= 4
	p.Cards[receive]++
	g.steps++
	g.logAction("trade", func(e *zerolog.Event) { e.Stringer("give", give).Stringer("receive", receive) })
	return nil
}

// Copy returns an independent game one level deeper. Occupancy is rebuilt
// from the players' pieces on a fresh board sharing the same layout.
func (g *Game) Copy() (*Game, error) {
	c := &Game{
		Board:         NewBoard(g.Board.Layout),
		Players:       make([]*Player, len(g.Players)),
		Deck:          append([]DevCard(nil), g.Deck...),
		LastRoll:      g.LastRoll,
		Turn:          g.Turn,
		Depth:         g.Depth + 1,
		VictoryTarget: g.VictoryTarget,
		order:         NewTurnOrder(len(g.Players)),
		seed:          mix(g.seed, g.steps),
	}
	c.rng = rand.New(rand.NewSource(c.seed))

	for i, p := range g.Players {
		c.Players[i] = p.clone()
	}
	for _, p := range c.Players {
		for _, pieces := range [][]Piece{p.Cities, p.Settlements, p.Roads} {
			for _, piece := range pieces {
				if err := c.replay(piece); err != nil {
					return nil, err
				}
			}
		}
	}

	for i := 0; i <= g.Turn; i++ {
		c.current = c.order.Next()
	}
	if c.current != g.current || c.Current().Name != g.Current().Name {
		return nil, fmt.Errorf("%w: copied current seat %d does not match %d", ErrConsistency, c.current, g.current)
	}
	return c, nil
}

func (g *Game) replay(piece Piece) error {
	switch piece.Kind {
	case Road:
		if piece.Location < 0 || piece.Location >= len(g.Board.Lanes) || g.Board.laneOwner[piece.Location] >= 0 {
			return fmt.Errorf("%w: road at lane %d", ErrConsistency, piece.Location)
		}
	case Settlement, City:
		if piece.Location < 0 || piece.Location >= len(g.Board.Points) || g.Board.pointOwner[piece.Location] >= 0 {
			return fmt.Errorf("%w: %s at point %d", ErrConsistency, piece.Kind, piece.Location)
		}
	default:
		return fmt.Errorf("%w: unknown piece kind %d", ErrConsistency, piece.Kind)
	}
	g.Board.place(piece)
	return nil
}

// Validate checks that board occupancy matches the pieces players hold.
func (g *Game) Validate() error {
	points, lanes := 0, 0
	for _, p := range g.Players {
		for _, piece := range p.Roads {
			if owner := g.Board.LaneOwner(piece.Location); owner != p.Seat {
				return fmt.Errorf("%w: lane %d owned by %d, expected %d", ErrConsistency, piece.Location, owner, p.Seat)
			}
			lanes++
		}
		for _, pieces := range [][]Piece{p.Settlements, p.Cities} {
			for _, piece := range pieces {
				owner, kind := g.Board.PointOwner(piece.Location)
				if owner != p.Seat || kind != piece.Kind {
					return fmt.Errorf("%w: point %d holds %s of %d, expected %s of %d", ErrConsistency, piece.Location, kind, owner, piece.Kind, p.Seat)
				}
				points++
			}
		}
	}
	for _, owner := range g.Board.pointOwner {
		if owner >= 0 {
			points--
		}
	}
	for _, owner := range g.Board.laneOwner {
		if owner >= 0 {
			lanes--
		}
	}
	if points != 0 || lanes != 0 {
		return fmt.Errorf("%w: board holds pieces no player owns", ErrConsistency)
	}
	return nil
}

// mix derives a child seed (splitmix64 finalizer).
func mix(seed, step uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15*(step+1)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
