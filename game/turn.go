package game

// TurnOrder yields seats ascending once, descending once, then ascending forever.
type TurnOrder struct {
	players int
	step    int
}

func NewTurnOrder(players int) *TurnOrder {
	return &TurnOrder{players: players}
}

func (o *TurnOrder) Next() int {
	seat := SeatAt(o.players, o.step)
	o.step++
	return seat
}

// SeatAt returns the seat yielded at step k of the turn order.
func SeatAt(players, k int) int {
	switch {
	case k < players:
		return k
	case k < 2*players:
		return 2*players - 1 - k
	default:
		return (k - 2*players) % players
	}
}
