package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

const maxExchange = 64

// SEE returns the static exchange evaluation of m for the side to move:
// the material it nets once both sides have recaptured on the target
// square for as long as that pays. Drops and quiet non-promotions are 0.
//
// Captured pieces are valued with the capturer's rules, so a side that
// keeps captures also gains the piece's hand value. Promotions on the
// initial move and on every recapture add the promotion difference.
func SEE(pos *board.Position, m board.Move, values *PieceValues) int {
	if m.IsDrop() {
		return 0
	}
	from, to := m.From(), m.To()
	mover := pos.PieceAt(from)
	if mover == board.NoPiece {
		return 0
	}
	target := pos.PieceAt(to)
	if target == board.NoPiece && !m.IsPromotion() {
		return 0
	}

	us := mover.Owner()
	g := pos.Grid // private copy, pieces are lifted off as they trade

	var gain [maxExchange]int
	kind := mover.Kind()
	gain[0] = values.CaptureGain(target, pos.Rules[us])
	if m.IsPromotion() {
		gain[0] += values.PromotionGain(kind)
		kind = kind.Promoted()
	}
	g.Squares[from] = board.NoPiece
	g.Squares[to] = board.NewPiece(kind, us)

	side := us.Other()
	d := 0
	var buf [16]board.Square
	for d+1 < maxExchange {
		if !pos.Rules[side].CanCapture {
			break
		}
		sq := leastValuableAttacker(&g, to, side, values, buf[:0])
		if sq == board.NoSquare {
			break
		}
		d++
		victim := g.Squares[to]
		attacker := g.Squares[sq].Kind()
		gain[d] = values.CaptureGain(victim, pos.Rules[side]) - gain[d-1]
		if recapturePromotes(&g, pos.Rules[side], attacker, side, sq, to) {
			gain[d] += values.PromotionGain(attacker)
			attacker = attacker.Promoted()
		}
		g.Squares[sq] = board.NoPiece
		g.Squares[to] = board.NewPiece(attacker, side)
		side = side.Other()
	}

	// Each side may stop instead of recapturing.
	for ; d > 0; d-- {
		gain[d-1] = -max(-gain[d-1], gain[d])
	}
	return gain[0]
}

// leastValuableAttacker returns the cheapest piece of side c attacking sq,
// lowest square first on ties, or NoSquare.
func leastValuableAttacker(g *board.Grid, sq board.Square, c board.Color, values *PieceValues, buf []board.Square) board.Square {
	best := board.NoSquare
	bestVal := 0
	for _, from := range g.AttackersTo(sq, c, buf) {
		v := values.Of(g.Squares[from].Kind())
		if best == board.NoSquare || v < bestVal || (v == bestVal && from < best) {
			best, bestVal = from, v
		}
	}
	return best
}

// recapturePromotes reports whether a recapture would promote, taking the
// promotion whenever the rules allow it.
func recapturePromotes(g *board.Grid, r board.RuleSet, k board.PieceKind, c board.Color, from, to board.Square) bool {
	if k == board.ChessPawn {
		return g.RelativeRank(c, to.Y()) == g.Height-1
	}
	return r.CanPromote && k.CanPromote() &&
		(g.InPromotionZone(c, from.Y()) || g.InPromotionZone(c, to.Y()))
}
