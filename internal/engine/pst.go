package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

// Piece-square tables, Player1's view on a 9x9 board: row 0 is the far
// rank, row 8 Player1's own back rank. Player2 reads them rotated.
var pstPawn = [81]int{
	15, 15, 15, 15, 15, 15, 15, 15, 15,
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	5, 5, 5, 5, 5, 5, 5, 5, 5,
	2, 2, 2, 10, 10, 2, 2, 2, 2,
	1, 1, 2, 10, 10, 2, 1, 1, 1,
	0, 0, 0, 5, 5, 0, 0, 0, 0,
	0, 0, 0, -5, -5, 0, 0, 0, 0,
	0, 0, 0, -5, -5, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var pstLance = [81]int{
	20, 20, 20, 20, 20, 20, 20, 20, 20,
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	5, 5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	-5, -5, -5, -5, -5, -5, -5, -5, -5,
	0, 0, 0, 5, 5, 0, 0, 0, 0,
}

var pstKnight = [81]int{
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	15, 15, 15, 15, 15, 15, 15, 15, 15,
	5, 5, 10, 10, 10, 10, 10, 5, 5,
	0, 0, 5, 5, 5, 5, 5, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 5, 0, 0, 0, 0, 0, 5, 0,
	0, -10, 0, 0, 0, 0, 0, -10, 0,
}

var pstSilver = [81]int{
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	5, 5, 5, 5, 5, 5, 5, 5, 5,
	5, 5, 5, 5, 5, 5, 5, 5, 5,
	2, 2, 10, 10, 10, 10, 10, 2, 2,
	0, 2, 5, 5, 5, 5, 5, 2, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	-5, -5, -5, -5, -5, -5, -5, -5, -5,
}

var pstGold = [81]int{
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	5, 5, 5, 5, 5, 5, 5, 5, 5,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 2, 2, 2, 2, 2, 0, 0,
	0, 0, 2, 5, 5, 5, 2, 0, 0,
	0, 0, 1, 2, 2, 2, 1, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	-5, -5, -5, -5, -5, -5, -5, -5, -5,
}

var pstKing = [81]int{
	-30, -40, -40, -40, -40, -40, -40, -40, -30,
	-30, -40, -40, -40, -40, -40, -40, -40, -30,
	-30, -40, -40, -40, -40, -40, -40, -40, -30,
	-30, -40, -40, -40, -40, -40, -40, -40, -30,
	-10, -20, -20, -20, -20, -20, -20, -20, -10,
	0, -10, -10, -10, -10, -10, -10, -10, 0,
	10, 0, 0, 0, 0, 0, 0, 0, 10,
	20, 10, 0, 0, 0, 0, 0, 10, 20,
	30, 40, 30, 10, 0, 10, 30, 40, 30,
}

// Long-range pieces: rooks, bishops, their promotions and the queen.
var pstGeneric = [81]int{
	10, 10, 10, 10, 10, 10, 10, 10, 10,
	5, 5, 5, 5, 10, 5, 5, 5, 5,
	0, 0, 0, 5, 5, 5, 0, 0, 0,
	-5, 0, 5, 10, 10, 10, 5, 0, -5,
	-5, 0, 5, 10, 10, 10, 5, 0, -5,
	-5, 0, 0, 5, 5, 5, 0, 0, -5,
	-5, -5, 0, 0, 0, 0, 0, -5, -5,
	-5, -5, -5, -5, -5, -5, -5, -5, -5,
	-10, -10, -10, -10, -10, -10, -10, -10, -10,
}

var pstByKind = [board.NumKinds]*[81]int{
	board.ShogiKing:      &pstKing,
	board.ShogiRook:      &pstGeneric,
	board.ShogiBishop:    &pstGeneric,
	board.ShogiGold:      &pstGold,
	board.ShogiSilver:    &pstSilver,
	board.ShogiKnight:    &pstKnight,
	board.ShogiLance:     &pstLance,
	board.ShogiPawn:      &pstPawn,
	board.ShogiDragon:    &pstGeneric,
	board.ShogiHorse:     &pstGeneric,
	board.ShogiProSilver: &pstGold,
	board.ShogiProKnight: &pstGold,
	board.ShogiProLance:  &pstGold,
	board.ShogiTokin:     &pstGold,
	board.ChessKing:      &pstKing,
	board.ChessQueen:     &pstGeneric,
	board.ChessRook:      &pstGeneric,
	board.ChessBishop:    &pstGeneric,
	board.ChessKnight:    &pstKnight,
	board.ChessPawn:      &pstPawn,
}

// pstValue returns the table bonus for a piece. Player2 squares are
// rotated relative to the actual board size.
func pstValue(g *board.Grid, pc board.Piece, sq board.Square) int {
	table := pstByKind[pc.Kind()]
	if table == nil {
		return 0
	}
	x, y := sq.X(), sq.Y()
	if pc.Owner() == board.Player2 {
		x = g.Width - 1 - x
		y = g.Height - 1 - y
	}
	return table[y*9+x]
}
