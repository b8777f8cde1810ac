package game

import "sync"

// Planes per seat in the encoding. Seats are encoded up to MaxPlayers; absent
// seats stay zero so the shape does not depend on the player count.
const (
	boardPlanes    = NumResources
	piecePlanes    = 3 // road, settlement, city
	resourcePlanes = NumResources
	devCardPlanes  = NumDevCards

	NumChannels = boardPlanes + MaxPlayers*(piecePlanes+resourcePlanes+devCardPlanes)
)

// PiecePlane is the channel marking hexes next to kind pieces of the k-th
// seat after the player to move.
func PiecePlane(k int, kind PieceKind) int {
	return boardPlanes + k*piecePlanes + int(kind)
}

func CardPlane(k int, r Resource) int {
	return boardPlanes + MaxPlayers*piecePlanes + k*resourcePlanes + int(r)
}

func DevCardPlane(k int, d DevCard) int {
	return boardPlanes + MaxPlayers*(piecePlanes+resourcePlanes) + k*devCardPlanes + int(d)
}

// Tensor is a dense [Channels][Width][Width] grid indexed by hex axial coordinates.
type Tensor struct {
	Channels int
	Width    int
	Data     []float32
}

func NewTensor(channels, width int) Tensor {
	return Tensor{Channels: channels, Width: width, Data: make([]float32, channels*width*width)}
}

func (t Tensor) index(c, q, r int) int {
	return (c*t.Width+q)*t.Width + r
}

func (t Tensor) At(c, q, r int) float32 {
	return t.Data[t.index(c, q, r)]
}

func (t Tensor) Set(c, q, r int, v float32) {
	t.Data[t.index(c, q, r)] = v
}

// Plane returns channel c as a slice sharing the tensor's storage.
func (t Tensor) Plane(c int) []float32 {
	size := t.Width * t.Width
	return t.Data[c*size : (c+1)*size]
}

func (t Tensor) fill(c int, v float32) {
	plane := t.Plane(c)
	for i := range plane {
		plane[i] = v
	}
}

const maxCachedLayouts = 64

// Encoder turns games into evaluator input. It caches the static board
// planes per layout and is safe for concurrent use.
type Encoder struct {
	mu     sync.RWMutex
	boards map[*Layout][]float32
}

func NewEncoder() *Encoder {
	return &Encoder{boards: make(map[*Layout][]float32)}
}

// Encode is deterministic: equal game snapshots give equal tensors. Seats are
// rotated so the player to move comes first.
func (e *Encoder) Encode(g *Game) Tensor {
	layout := g.Board.Layout
	t := NewTensor(NumChannels, layout.Width)
	copy(t.Data, e.board(layout))

	seats := len(g.Players)
	for k := 0; k < seats; k++ {
		p := g.Players[(g.current+k)%seats]
		for _, road := range p.Roads {
			for _, point := range layout.Lanes[road.Location].Points {
				markHexes(t, layout, PiecePlane(k, Road), point)
			}
		}
		for _, s := range p.Settlements {
			markHexes(t, layout, PiecePlane(k, Settlement), s.Location)
		}
		for _, c := range p.Cities {
			markHexes(t, layout, PiecePlane(k, City), c.Location)
		}

		for r, count := range p.Cards {
			t.fill(CardPlane(k, Resource(r)), float32(count))
		}
		for d, count := range p.DevCards {
			t.fill(DevCardPlane(k, DevCard(d)), float32(count))
		}
	}
	return t
}

func markHexes(t Tensor, layout *Layout, channel, point int) {
	for _, h := range layout.Points[point].Hexes {
		hex := layout.Hexes[h]
		t.Set(channel, hex.Q, hex.R, 1)
	}
}

func (e *Encoder) board(layout *Layout) []float32 {
	e.mu.RLock()
	planes, ok := e.boards[layout]
	e.mu.RUnlock()
	if ok {
		return planes
	}

	t := NewTensor(boardPlanes, layout.Width)
	for _, hex := range layout.Hexes {
		if hex.Resource == Desert {
			continue
		}
		t.Set(int(hex.Resource), hex.Q, hex.R, float32(hex.Weight))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if planes, ok := e.boards[layout]; ok {
		return planes
	}
	if len(e.boards) >= maxCachedLayouts {
		e.boards = make(map[*Layout][]float32)
	}
	e.boards[layout] = t.Data
	return t.Data
}
