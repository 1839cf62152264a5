package board

import "fmt"

// Move encodes a normal move or a drop in 32 bits:
// bits 0-6:   from square (normal moves)
// bits 7-13:  to square
// bit 14:     promotion flag
// bit 15:     drop flag
// bits 16-20: dropped piece kind
type Move uint32

const (
	moveSquareMask = 0x7F
	flagPromote    = 1 << 14
	flagDrop       = 1 << 15
)

// NoMove represents an invalid or absent move.
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square, promote bool) Move {
	m := Move(from) | Move(to)<<7
	if promote {
		m |= flagPromote
	}
	return m
}

// NewDrop creates a drop of a hand piece.
func NewDrop(kind PieceKind, to Square) Move {
	return Move(to)<<7 | flagDrop | Move(kind)<<16
}

// From returns the origin square, or NoSquare for drops.
func (m Move) From() Square {
	if m.IsDrop() {
		return NoSquare
	}
	return Square(m & moveSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 7) & moveSquareMask)
}

// IsPromotion returns true if the moving piece promotes.
func (m Move) IsPromotion() bool {
	return m&flagPromote != 0
}

// IsDrop returns true if the move places a hand piece.
func (m Move) IsDrop() bool {
	return m&flagDrop != 0
}

// DropKind returns the dropped kind (only valid for drops).
func (m Move) DropKind() PieceKind {
	return PieceKind((m >> 16) & 31)
}

// IsCapture returns true if the destination holds a piece.
func (m Move) IsCapture(pos *Position) bool {
	return !m.IsDrop() && pos.Squares[m.To()] != NoPiece
}

// IsQuiet returns true for non-captures without promotion, drops included.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns a compact notation: "x,y-x,y[+]" or "Kind*x,y".
func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	to := m.To()
	if m.IsDrop() {
		return fmt.Sprintf("%s*%d,%d", m.DropKind(), to.X(), to.Y())
	}
	from := m.From()
	s := fmt.Sprintf("%d,%d-%d,%d", from.X(), from.Y(), to.X(), to.Y())
	if m.IsPromotion() {
		s += "+"
	}
	return s
}
