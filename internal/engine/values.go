package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

// Default material values, tuned so shogi and chess armies stay balanced
// in the mixed setups.
var defaultMaterial = [board.NumKinds]int{
	board.ShogiKing:      20000,
	board.ShogiRook:      1000,
	board.ShogiBishop:    800,
	board.ShogiGold:      600,
	board.ShogiSilver:    500,
	board.ShogiKnight:    400, // jumps over the front line
	board.ShogiLance:     300,
	board.ShogiPawn:      100,
	board.ShogiDragon:    1500,
	board.ShogiHorse:     1200,
	board.ShogiProSilver: 700,
	board.ShogiProKnight: 700,
	board.ShogiProLance:  700,
	board.ShogiTokin:     700, // as valuable as a gold
	board.ChessKing:      20000,
	board.ChessQueen:     1800,
	board.ChessRook:      1000,
	board.ChessBishop:    800,
	board.ChessKnight:    400,
	board.ChessPawn:      100,
}

// DefaultHandMultiplier weights pieces in hand above the same piece on the
// board, for the flexibility of dropping it anywhere.
const DefaultHandMultiplier = 1.1

// PieceValues maps piece kinds to material values.
type PieceValues struct {
	material [board.NumKinds]int
	hand     [board.NumKinds]int

	HandMultiplier float64
}

// DefaultPieceValues returns the built-in values.
func DefaultPieceValues() *PieceValues {
	return NewPieceValues(nil, DefaultHandMultiplier)
}

// NewPieceValues applies overrides on top of the defaults.
func NewPieceValues(overrides map[board.PieceKind]int, handMultiplier float64) *PieceValues {
	v := &PieceValues{material: defaultMaterial, HandMultiplier: handMultiplier}
	for k, val := range overrides {
		if k > board.NoKind && k < board.NumKinds {
			v.material[k] = val
		}
	}
	for k := range v.material {
		v.hand[k] = int(float64(v.material[k]) * handMultiplier)
	}
	return v
}

// Of returns the material value of a kind on the board.
func (v *PieceValues) Of(k board.PieceKind) int {
	return v.material[k]
}

// Hand returns the value of one piece of kind k held in hand.
func (v *PieceValues) Hand(k board.PieceKind) int {
	return v.hand[k]
}

// CaptureGain is the material a player with rules r wins by taking victim:
// its board value, plus its value in hand when captures are kept.
func (v *PieceValues) CaptureGain(victim board.Piece, r board.RuleSet) int {
	if victim == board.NoPiece {
		return 0
	}
	k := victim.Kind()
	gain := v.material[k]
	if r.KeepCaptured && !k.IsKing() {
		gain += v.hand[k.Unpromoted()]
	}
	return gain
}

// PromotionGain is the value added by promoting kind k.
func (v *PieceValues) PromotionGain(k board.PieceKind) int {
	return v.material[k.Promoted()] - v.material[k]
}
