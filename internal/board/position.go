package board

import (
	"errors"
	"strconv"
	"strings"
)

// ErrIllegalMove is returned when a move is not legal in the position.
var ErrIllegalMove = errors.New("illegal move")

// Grid is the piece placement of a board of Width x Height squares.
type Grid struct {
	Width   int
	Height  int
	Squares [NumSquares]Piece
}

// OnBoard reports whether (x, y) lies inside the board.
func (g *Grid) OnBoard(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Contains reports whether the square lies inside the board.
func (g *Grid) Contains(sq Square) bool {
	return sq >= 0 && int(sq) < NumSquares && g.OnBoard(sq.X(), sq.Y())
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (g *Grid) PieceAt(sq Square) Piece {
	return g.Squares[sq]
}

// RelativeRank returns how far a rank is from the player's own back rank
// (0 = back rank, Height-1 = the opponent's back rank).
func (g *Grid) RelativeRank(c Color, y int) int {
	if c == Player1 {
		return g.Height - 1 - y
	}
	return y
}

// InPromotionZone reports whether rank y is within the last three ranks for c.
func (g *Grid) InPromotionZone(c Color, y int) bool {
	return g.RelativeRank(c, y) >= g.Height-3
}

// Position is a complete game state.
type Position struct {
	Grid

	// Hands holds captured pieces available for dropping, by unpromoted kind.
	Hands [2][NumKinds]uint8

	// Rules per player.
	Rules [2]RuleSet

	SideToMove Color
	Ply        int

	// Zobrist hash for transposition table
	Hash uint64

	// Pawn hash key for pawn structure caching
	PawnKey uint64

	// King positions, NoSquare when absent
	KingSquare [2]Square

	// hashes of every earlier position, oldest first
	history []uint64
}

// Undo holds the state needed to take back a move.
type Undo struct {
	Captured Piece
	Hash     uint64
	PawnKey  uint64
}

// NewPosition creates an empty position of the given size.
func NewPosition(width, height int, p1, p2 RuleSet) *Position {
	p := &Position{
		Grid:  Grid{Width: width, Height: height},
		Rules: [2]RuleSet{p1, p2},
	}
	p.KingSquare = [2]Square{NoSquare, NoSquare}
	p.Hash, p.PawnKey = p.ComputeHash()
	return p
}

// Copy creates a deep copy of the position, history included.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.history = append([]uint64(nil), p.history...)
	return &newPos
}

// Hand returns how many pieces of kind k player c holds.
func (p *Position) Hand(c Color, k PieceKind) int {
	return int(p.Hands[c][k])
}

// Place puts a piece on an empty or occupied square, updating keys.
// Intended for setting up positions.
func (p *Position) Place(sq Square, pc Piece) {
	if old := p.Squares[sq]; old != NoPiece {
		p.removePiece(sq)
	}
	if pc != NoPiece {
		p.setPiece(pc, sq)
	}
}

// SetHand sets a hand count, updating keys.
func (p *Position) SetHand(c Color, k PieceKind, n int) {
	p.setHand(c, k, n)
}

// SetSideToMove changes the side to move, updating keys.
func (p *Position) SetSideToMove(c Color) {
	if p.SideToMove != c {
		p.SideToMove = c
		p.Hash ^= zobristSideToMove
	}
}

// SetHistory replaces the repetition history with earlier position hashes.
func (p *Position) SetHistory(hashes []uint64) {
	p.history = append(p.history[:0], hashes...)
}

// History returns the hashes of earlier positions, oldest first.
func (p *Position) History() []uint64 {
	return p.history
}

// IsRepetition reports whether the current position occurred before.
func (p *Position) IsRepetition() bool {
	for i := len(p.history) - 1; i >= 0; i-- {
		if p.history[i] == p.Hash {
			return true
		}
	}
	return false
}

func (p *Position) setPiece(pc Piece, sq Square) {
	p.Squares[sq] = pc
	key := ZobristPiece(pc, sq)
	p.Hash ^= key
	if pc.Kind().IsPawn() {
		p.PawnKey ^= key
	}
	if pc.Kind().IsKing() {
		p.KingSquare[pc.Owner()] = sq
	}
}

func (p *Position) removePiece(sq Square) Piece {
	pc := p.Squares[sq]
	p.Squares[sq] = NoPiece
	key := ZobristPiece(pc, sq)
	p.Hash ^= key
	if pc.Kind().IsPawn() {
		p.PawnKey ^= key
	}
	if pc.Kind().IsKing() && p.KingSquare[pc.Owner()] == sq {
		p.KingSquare[pc.Owner()] = NoSquare
	}
	return pc
}

func (p *Position) setHand(c Color, k PieceKind, n int) {
	old := int(p.Hands[c][k])
	if old <= MaxHandCount {
		p.Hash ^= zobristHand[c][k][old]
	}
	if n <= MaxHandCount {
		p.Hash ^= zobristHand[c][k][n]
	}
	p.Hands[c][k] = uint8(n)
}

// MakeMove applies a move assumed to be at least pseudo-legal.
func (p *Position) MakeMove(m Move) Undo {
	undo := Undo{Hash: p.Hash, PawnKey: p.PawnKey}
	us := p.SideToMove
	p.history = append(p.history, p.Hash)

	to := m.To()
	if m.IsDrop() {
		k := m.DropKind()
		p.setHand(us, k, int(p.Hands[us][k])-1)
		p.setPiece(NewPiece(k, us), to)
	} else {
		from := m.From()
		pc := p.removePiece(from)
		if captured := p.Squares[to]; captured != NoPiece {
			undo.Captured = p.removePiece(to)
			if p.Rules[us].KeepCaptured && !captured.Kind().IsKing() {
				k := captured.Kind().Unpromoted()
				p.setHand(us, k, int(p.Hands[us][k])+1)
			}
		}
		if m.IsPromotion() {
			pc = NewPiece(pc.Kind().Promoted(), us)
		}
		p.setPiece(pc, to)
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristSideToMove
	p.Ply++
	return undo
}

// UnmakeMove takes back a move made with MakeMove.
func (p *Position) UnmakeMove(m Move, undo Undo) {
	p.Ply--
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	to := m.To()

	if m.IsDrop() {
		p.Squares[to] = NoPiece
		p.Hands[us][m.DropKind()]++
		if m.DropKind().IsKing() {
			p.KingSquare[us] = NoSquare
		}
	} else {
		from := m.From()
		pc := p.Squares[to]
		if m.IsPromotion() {
			pc = NewPiece(unpromotedOnBoard(pc.Kind()), us)
		}
		p.Squares[from] = pc
		p.Squares[to] = undo.Captured
		if pc.Kind().IsKing() {
			p.KingSquare[us] = from
		}
		if c := undo.Captured; c != NoPiece {
			if c.Kind().IsKing() {
				p.KingSquare[c.Owner()] = to
			}
			if p.Rules[us].KeepCaptured && !c.Kind().IsKing() {
				p.Hands[us][c.Kind().Unpromoted()]--
			}
		}
	}

	p.Hash = undo.Hash
	p.PawnKey = undo.PawnKey
	p.history = p.history[:len(p.history)-1]
}

// unpromotedOnBoard reverses a promotion made by a move.
func unpromotedOnBoard(k PieceKind) PieceKind {
	if k == ChessQueen {
		return ChessPawn
	}
	return k.Unpromoted()
}

// MakeNullMove passes the turn.
func (p *Position) MakeNullMove() Undo {
	undo := Undo{Hash: p.Hash, PawnKey: p.PawnKey}
	p.history = append(p.history, p.Hash)
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove
	p.Ply++
	return undo
}

// UnmakeNullMove takes back a null move.
func (p *Position) UnmakeNullMove(undo Undo) {
	p.Ply--
	p.SideToMove = p.SideToMove.Other()
	p.Hash = undo.Hash
	p.history = p.history[:len(p.history)-1]
}

// InCheck returns true if the side to move's king is attacked.
func (p *Position) InCheck() bool {
	ksq := p.KingSquare[p.SideToMove]
	if ksq == NoSquare {
		return false
	}
	return p.IsAttacked(ksq, p.SideToMove.Other())
}

// Apply plays a move after checking it is legal.
func (p *Position) Apply(m Move) error {
	for _, lm := range p.GenerateLegalMoves(nil) {
		if lm == m {
			p.MakeMove(m)
			return nil
		}
	}
	return ErrIllegalMove
}

// String returns a text diagram, Player2's back rank first, hands below.
func (p *Position) String() string {
	var sb strings.Builder
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			s := p.Squares[NewSquare(x, y)].String()
			sb.WriteString(s)
			sb.WriteString(strings.Repeat(" ", 4-len(s)))
		}
		sb.WriteString("\n")
	}
	for c := Player1; c <= Player2; c++ {
		sb.WriteString(c.String())
		sb.WriteString(" hand:")
		for k := ShogiKing; k < NumKinds; k++ {
			if n := p.Hands[c][k]; n > 0 {
				sb.WriteString(" ")
				sb.WriteString(k.String())
				sb.WriteString("x")
				sb.WriteString(strconv.Itoa(int(n)))
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("to move: ")
	sb.WriteString(p.SideToMove.String())
	sb.WriteString("\n")
	return sb.String()
}
