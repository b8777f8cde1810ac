package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestNewLayout(t *testing.T) {
	t.Run("standard widths give the 19 hex board", func(t *testing.T) {
		for _, width := range []int{5, 6} {
			layout, err := NewLayout(width, false, nil)
			require.NoError(t, err)
			require.Len(t, layout.Hexes, 19, "Board should have 19 hexes")
			require.Len(t, layout.Points, 54, "Board should have 54 points")
			require.Len(t, layout.Lanes, 72, "Board should have 72 lanes")
		}
	})

	t.Run("smallest board", func(t *testing.T) {
		layout, err := NewLayout(3, false, nil)
		require.NoError(t, err)
		require.Len(t, layout.Hexes, 7)
		require.Len(t, layout.Points, 24)
		require.Len(t, layout.Lanes, 30)
	})

	t.Run("invalid width", func(t *testing.T) {
		_, err := NewLayout(2, false, nil)
		require.ErrorIs(t, err, ErrInvalidWidth)
	})

	t.Run("unshuffled board deals from the end of the standard set", func(t *testing.T) {
		layout, err := NewLayout(6, false, nil)
		require.NoError(t, err)
		require.Equal(t, Coord{Q: 2, R: 0}, layout.Hexes[0].Coord, "Hexes should be dealt row by row")
		require.Equal(t, Wood, layout.Hexes[0].Resource)
		require.Equal(t, 11, layout.Hexes[0].Number)

		deserts := 0
		for _, h := range layout.Hexes {
			if h.Resource == Desert {
				deserts++
				require.Zero(t, h.Number, "Desert should carry no number")
			}
		}
		require.Equal(t, 1, deserts)
	})

	t.Run("shuffled board keeps the desert unnumbered", func(t *testing.T) {
		for seed := uint64(1); seed <= 20; seed++ {
			layout, err := NewLayout(6, true, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			numbered := 0
			for _, h := range layout.Hexes {
				if h.Resource == Desert {
					require.Zero(t, h.Number, "Desert should carry no number")
				} else {
					require.NotZero(t, h.Number, "Every other hex should carry a number")
					numbered++
				}
			}
			require.Equal(t, 18, numbered)
		}
	})

	t.Run("points touch at most three hexes and sum their generation", func(t *testing.T) {
		for _, width := range []int{3, 5, 6, 7} {
			layout, err := NewLayout(width, false, nil)
			require.NoError(t, err)
			for _, p := range layout.Points {
				require.LessOrEqual(t, len(p.Hexes), 3, "Point should touch at most 3 hexes")
				want := Resources{}
				for _, h := range p.Hexes {
					hex := layout.Hexes[h]
					if hex.Number > 0 {
						want[hex.Resource] += RollWeight(hex.Number)
					}
				}
				require.Equal(t, want, p.Generation, "Generation should sum adjacent hex weights")
			}
		}
	})

	t.Run("lanes are unique and connect adjacent points", func(t *testing.T) {
		layout, err := NewLayout(6, false, nil)
		require.NoError(t, err)
		for i, lane := range layout.Lanes {
			a, b := layout.Points[lane.Points[0]], layout.Points[lane.Points[1]]
			found, ok := layout.LaneBetween(b.Coord, a.Coord)
			require.True(t, ok)
			require.Equal(t, i, found, "Lane lookup should work in either direction")
			require.Equal(t, lane.Points[1], layout.Other(i, lane.Points[0]))
		}
		for _, p := range layout.Points {
			require.GreaterOrEqual(t, len(p.Lanes), 2)
			require.LessOrEqual(t, len(p.Lanes), 3)
		}
	})
}

func TestRollWeight(t *testing.T) {
	want := []int{1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}
	total := 0
	for roll := 2; roll <= 12; roll++ {
		require.Equal(t, want[roll-2], RollWeight(roll))
		total += RollWeight(roll)
	}
	require.Equal(t, 36, total, "Weights should cover all 36 dice outcomes")
	require.Zero(t, RollWeight(0))
	require.Zero(t, RollWeight(13))
}

func TestBoardDistribute(t *testing.T) {
	layout, err := NewLayout(6, false, nil)
	require.NoError(t, err)
	board := NewBoard(layout)

	hex := layout.Hexes[0] // wood, 11
	board.place(Piece{Kind: Settlement, Owner: 0, Location: hex.Points[0]})
	board.place(Piece{Kind: City, Owner: 1, Location: hex.Points[3]})

	got := map[int]Resources{}
	credit := func(seat int, resource Resource, amount int) {
		cards := got[seat]
		cards[resource] += amount
		got[seat] = cards
	}

	board.Distribute(hex.Number, credit)
	require.Equal(t, 1, got[0][Wood], "Settlement should collect one card")
	require.Equal(t, 2, got[1][Wood], "City should collect two cards")

	got = map[int]Resources{}
	board.Distribute(7, credit)
	require.Empty(t, got, "No hex on the standard board is numbered 7")
}

func TestBoardCrowded(t *testing.T) {
	layout, err := NewLayout(6, false, nil)
	require.NoError(t, err)
	board := NewBoard(layout)

	point := 10
	neighbour := layout.Other(layout.Points[point].Lanes[0], point)
	require.False(t, board.Crowded(point))

	board.place(Piece{Kind: Settlement, Owner: 0, Location: neighbour})
	require.True(t, board.Crowded(point), "Point next to a building should be crowded")
	require.True(t, board.Crowded(neighbour), "Occupied point should be crowded")
	require.True(t, board.PointReachable(neighbour, 0))
	require.False(t, board.PointReachable(point, 0))

	board.place(Piece{Kind: Road, Owner: 0, Location: layout.Points[point].Lanes[0]})
	require.True(t, board.PointReachable(point, 0), "Road should make its endpoints reachable")
	require.False(t, board.PointReachable(point, 1))
}
