package game

import (
	"fmt"
	"strings"
)

// Resource is the kind of terrain on a hex and of the cards it yields.
type Resource int

const (
	Wood Resource = iota
	Brick
	Grain
	Sheep
	Ore
	Desert
)

// NumResources is the number of card-bearing resources. Desert yields nothing.
const NumResources = 5

var resourceNames = []string{"wood", "brick", "grain", "sheep", "ore", "desert"}

func (r Resource) String() string {
	if r < 0 || int(r) >= len(resourceNames) {
		return fmt.Sprintf("resource(%d)", int(r))
	}
	return resourceNames[r]
}

func ParseResource(name string) (Resource, error) {
	for i, n := range resourceNames {
		if strings.EqualFold(n, name) {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", name)
}

// Resources holds one count per card-bearing resource, indexed by Resource.
type Resources [NumResources]int

func (r Resources) Covers(cost Resources) bool {
	for i := range r {
		if r[i] < cost[i] {
			return false
		}
	}
	return true
}

func (r Resources) Plus(o Resources) Resources {
	for i := range r {
		r[i] += o[i]
	}
	return r
}

func (r Resources) Minus(o Resources) Resources {
	for i := range r {
		r[i] -= o[i]
	}
	return r
}

func (r Resources) Total() int {
	total := 0
	for _, v := range r {
		total += v
	}
	return total
}

// Tiles and number tokens of the standard board. Boards are dealt from the end.
var (
	standardTiles = []Resource{
		Wood, Grain, Ore, Ore, Sheep, Sheep, Brick, Grain, Wood, Grain,
		Wood, Desert, Sheep, Brick, Ore, Brick, Grain, Sheep, Wood,
	}
	standardNumbers = []int{6, 2, 5, 3, 9, 10, 8, 8, 4, 11, 3, 0, 10, 5, 6, 4, 9, 12, 11}
)

var rollWeights = [13]int{0, 0, 1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}

// RollWeight returns how many of the 36 two-dice outcomes sum to number.
func RollWeight(number int) int {
	if number < 0 || number >= len(rollWeights) {
		return 0
	}
	return rollWeights[number]
}
