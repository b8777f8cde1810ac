package game

import (
	"fmt"
	"strings"
)

// DevCard is a development card kind.
type DevCard int

const (
	RoadBuilding DevCard = iota
	Plenty
	Monopoly
	Knight
	VictoryPoint
)

const (
	NumDevCards = 5
	// NumPlayableDevCards excludes VictoryPoint, which only counts toward score.
	NumPlayableDevCards = 4
)

var DevCardCost = Resources{0, 0, 1, 1, 1}

var devCardNames = []string{"roads", "plenty", "monopoly", "knight", "vp"}

func (c DevCard) String() string {
	if c < 0 || int(c) >= len(devCardNames) {
		return fmt.Sprintf("devcard(%d)", int(c))
	}
	return devCardNames[c]
}

func ParseDevCard(name string) (DevCard, error) {
	for i, n := range devCardNames {
		if strings.EqualFold(n, name) {
			return DevCard(i), nil
		}
	}
	return 0, fmt.Errorf("unknown development card %q", name)
}

func (c DevCard) Playable() bool {
	return c >= RoadBuilding && c < VictoryPoint
}

func standardDeck() []DevCard {
	counts := [NumDevCards]int{2, 2, 2, 4, 2}
	deck := make([]DevCard, 0, 12)
	for card, count := range counts {
		for i := 0; i < count; i++ {
			deck = append(deck, DevCard(card))
		}
	}
	return deck
}
