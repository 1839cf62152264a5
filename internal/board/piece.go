package board

import (
	"fmt"
	"strings"
)

// Color identifies a player. Player1 moves toward rank 0.
type Color uint8

const (
	Player1 Color = iota
	Player2
	NoColor Color = 2
)

// Other returns the opponent.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the player name.
func (c Color) String() string {
	switch c {
	case Player1:
		return "Player1"
	case Player2:
		return "Player2"
	default:
		return "NoColor"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	if c > Player2 {
		return nil, fmt.Errorf("invalid color %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Player1":
		*c = Player1
	case "Player2":
		*c = Player2
	default:
		return fmt.Errorf("unknown player %q", text)
	}
	return nil
}

// PieceKind is the type of a piece, shogi and chess families combined.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	ShogiKing
	ShogiRook
	ShogiBishop
	ShogiGold
	ShogiSilver
	ShogiKnight
	ShogiLance
	ShogiPawn
	ShogiDragon
	ShogiHorse
	ShogiProSilver
	ShogiProKnight
	ShogiProLance
	ShogiTokin
	ChessKing
	ChessQueen
	ChessRook
	ChessBishop
	ChessKnight
	ChessPawn
	NumKinds
)

var kindNames = [NumKinds]string{
	"None",
	"ShogiKing", "ShogiRook", "ShogiBishop", "ShogiGold", "ShogiSilver", "ShogiKnight", "ShogiLance", "ShogiPawn",
	"ShogiDragon", "ShogiHorse", "ShogiProSilver", "ShogiProKnight", "ShogiProLance", "ShogiTokin",
	"ChessKing", "ChessQueen", "ChessRook", "ChessBishop", "ChessKnight", "ChessPawn",
}

// Short board symbols, uppercase form. Player2 pieces render lowercase.
var kindSymbols = [NumKinds]string{
	" ",
	"K", "R", "B", "G", "S", "N", "L", "P",
	"+R", "+B", "+S", "+N", "+L", "+P",
	"CK", "CQ", "CR", "CB", "CN", "CP",
}

// String returns the kind name used in JSON and configuration.
func (k PieceKind) String() string {
	if k >= NumKinds {
		return "None"
	}
	return kindNames[k]
}

// Symbol returns the short board symbol.
func (k PieceKind) Symbol() string {
	if k >= NumKinds {
		return "?"
	}
	return kindSymbols[k]
}

// ParseKind resolves a kind name as produced by String.
func ParseKind(s string) (PieceKind, error) {
	for k := ShogiKing; k < NumKinds; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k PieceKind) MarshalText() ([]byte, error) {
	if k == NoKind || k >= NumKinds {
		return nil, fmt.Errorf("invalid piece kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PieceKind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// IsChess reports whether the kind belongs to the chess family.
func (k PieceKind) IsChess() bool {
	return k >= ChessKing && k < NumKinds
}

// IsKing reports whether the kind is a royal piece.
func (k PieceKind) IsKing() bool {
	return k == ShogiKing || k == ChessKing
}

// IsPawn reports whether the kind participates in pawn structure.
func (k PieceKind) IsPawn() bool {
	return k == ShogiPawn || k == ChessPawn
}

// IsPromoted reports whether the kind is a promoted shogi piece.
func (k PieceKind) IsPromoted() bool {
	return k >= ShogiDragon && k <= ShogiTokin
}

// CanPromote reports whether the kind has a promoted form.
func (k PieceKind) CanPromote() bool {
	switch k {
	case ShogiRook, ShogiBishop, ShogiSilver, ShogiKnight, ShogiLance, ShogiPawn, ChessPawn:
		return true
	}
	return false
}

// Promoted returns the promoted form, or k itself when it has none.
func (k PieceKind) Promoted() PieceKind {
	switch k {
	case ShogiRook:
		return ShogiDragon
	case ShogiBishop:
		return ShogiHorse
	case ShogiSilver:
		return ShogiProSilver
	case ShogiKnight:
		return ShogiProKnight
	case ShogiLance:
		return ShogiProLance
	case ShogiPawn:
		return ShogiTokin
	case ChessPawn:
		return ChessQueen
	}
	return k
}

// Unpromoted returns the kind a captured piece reverts to in hand.
func (k PieceKind) Unpromoted() PieceKind {
	switch k {
	case ShogiDragon:
		return ShogiRook
	case ShogiHorse:
		return ShogiBishop
	case ShogiProSilver:
		return ShogiSilver
	case ShogiProKnight:
		return ShogiKnight
	case ShogiProLance:
		return ShogiLance
	case ShogiTokin:
		return ShogiPawn
	}
	return k
}

// Piece combines a PieceKind and an owner.
// Encoded as: kind | owner<<5. The zero value is NoPiece.
type Piece uint8

// NoPiece marks an empty square.
const NoPiece Piece = 0

// NewPiece creates a Piece from a kind and owner.
func NewPiece(k PieceKind, c Color) Piece {
	if k == NoKind || k >= NumKinds || c >= NoColor {
		return NoPiece
	}
	return Piece(k) | Piece(c)<<5
}

// Kind returns the piece kind.
func (p Piece) Kind() PieceKind {
	return PieceKind(p & 31)
}

// Owner returns the owning player. Undefined for NoPiece.
func (p Piece) Owner() Color {
	return Color(p >> 5)
}

// String returns the board symbol: uppercase for Player1, lowercase for Player2.
func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	s := p.Kind().Symbol()
	if p.Owner() == Player2 {
		return strings.ToLower(s)
	}
	return s
}
