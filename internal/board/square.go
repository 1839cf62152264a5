// Package board implements the hybrid shogi/chess board: pieces, per-player
// rule sets, incremental hashing, and legal move generation including drops.
package board

import "fmt"

// Board limits. Boards narrower or shorter than this use a prefix of the grid.
const (
	MaxWidth   = 9
	MaxHeight  = 9
	NumSquares = MaxWidth * MaxHeight
)

// Square indexes the grid as y*MaxWidth + x. Rank 0 is Player2's back rank.
type Square int8

// NoSquare represents an absent square.
const NoSquare Square = -1

// NewSquare creates a square from file x and rank y.
func NewSquare(x, y int) Square {
	return Square(y*MaxWidth + x)
}

// X returns the file (0-8).
func (sq Square) X() int {
	return int(sq) % MaxWidth
}

// Y returns the rank (0-8).
func (sq Square) Y() int {
	return int(sq) / MaxWidth
}

// String returns "(x,y)".
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", sq.X(), sq.Y())
}

// Coord is the JSON form of a square.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coord converts a square to its JSON form.
func (sq Square) Coord() Coord {
	return Coord{X: sq.X(), Y: sq.Y()}
}

// Square converts a coordinate back, without bounds checking against a board.
func (c Coord) Square() Square {
	return NewSquare(c.X, c.Y)
}
