// meta/meta.go
package meta

// BoardWidth is the side of the axial grid holding the standard board.
const BoardWidth = 6

// VictoryPoints needed to win.
const VictoryPoints = 10

// ITERATIONS is the default number of MCTS descents per decision.
const ITERATIONS = 100

// C_PUCT weights the prior term of PUCT selection.
const C_PUCT = 1.0

// Dirichlet root noise.
const (
	DIRICHLET_ALPHA   = 0.3
	DIRICHLET_EPSILON = 0.25
)

// MAX_TURNS caps a game's turns so a stalled game still terminates.
const MAX_TURNS = 500

// GO_ROUTINES is the default number of games an experiment plays at once.
const GO_ROUTINES = 4
