package engine

import (
	"sort"

	"github.com/hailam/shogiplay/internal/board"
)

// Move ordering bands, highest first. Each band sits 2^40 above the next,
// leaving the low bits for the in-band ranking.
const (
	TTMoveScore        int64 = 7 << 40
	GoodCaptureBase    int64 = 6 << 40 // captures with SEE >= 0
	QuietPromotionBase int64 = 5 << 40
	KillerScore        int64 = 4 << 40
	QuietBase          int64 = 3 << 40
	DropBase           int64 = 2 << 40
	BadCaptureBase     int64 = 1 << 40 // captures and promotions with SEE < 0
)

const (
	seeOffset       = 1 << 20
	historyMax      = 1 << 30
	historyFromSize = board.NumSquares + int(board.NumKinds) // drops index 81+kind
)

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	values *PieceValues

	// Killer moves (quiet moves that caused beta cutoffs), slot 0 most recent
	killers [MaxPly][2]board.Move

	// History heuristic indexed by [side][from or 81+drop kind][to]
	history [2][historyFromSize][board.NumSquares]int64

	scoreBufs [MaxPly][]int64
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer(values *PieceValues) *MoveOrderer {
	return &MoveOrderer{values: values}
}

// NewSearch clears killers and ages history at the start of a search.
func (mo *MoveOrderer) NewSearch() {
	for i := range mo.killers {
		mo.killers[i] = [2]board.Move{}
	}
	mo.ageHistory()
}

// Clear resets killers and history completely, for a new game.
func (mo *MoveOrderer) Clear() {
	mo.killers = [MaxPly][2]board.Move{}
	mo.history = [2][historyFromSize][board.NumSquares]int64{}
}

// Age history scores (divide by 2 to prevent overflow)
func (mo *MoveOrderer) ageHistory() {
	for c := range mo.history {
		for i := range mo.history[c] {
			for j := range mo.history[c][i] {
				mo.history[c][i][j] /= 2
			}
		}
	}
}

func historyFrom(m board.Move) int {
	if m.IsDrop() {
		return board.NumSquares + int(m.DropKind())
	}
	return int(m.From())
}

// ScoreMove returns the ordering key of a single move.
func (mo *MoveOrderer) ScoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int64 {
	if m == ttMove {
		return TTMoveScore
	}

	us := pos.SideToMove
	if m.IsDrop() {
		return DropBase + mo.history[us][historyFrom(m)][m.To()]
	}

	capture := m.IsCapture(pos)
	if capture || m.IsPromotion() {
		see := SEE(pos, m, mo.values)
		if see < 0 {
			return BadCaptureBase + int64(max(see+seeOffset, 0))
		}
		if !capture {
			return QuietPromotionBase + int64(min(see, seeOffset-1))
		}
		// MVV-LVA breaks SEE ties: most valuable victim, then least valuable attacker.
		victim := min(mo.values.Of(pos.PieceAt(m.To()).Kind())/100, 4095)
		attacker := min(mo.values.Of(pos.PieceAt(m.From()).Kind())/100, 255)
		return GoodCaptureBase | int64(min(see, 1<<19-1))<<20 | int64(victim)<<8 | int64(255-attacker)
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore + 1
		}
		if m == mo.killers[ply][1] {
			return KillerScore
		}
	}
	return QuietBase + mo.history[us][historyFrom(m)][m.To()]
}

// OrderMoves sorts moves in place, best first, and returns their keys.
// The sort is stable so equal keys keep generation order. The returned
// slice is reused by the next call at the same ply.
func (mo *MoveOrderer) OrderMoves(pos *board.Position, moves []board.Move, ply int, ttMove board.Move) []int64 {
	scores := mo.scoreBufs[ply][:0]
	for _, m := range moves {
		scores = append(scores, mo.ScoreMove(pos, m, ply, ttMove))
	}
	mo.scoreBufs[ply] = scores
	sort.Stable(byScore{moves, scores})
	return scores
}

type byScore struct {
	moves  []board.Move
	scores []int64
}

func (b byScore) Len() int           { return len(b.moves) }
func (b byScore) Less(i, j int) bool { return b.scores[i] > b.scores[j] }
func (b byScore) Swap(i, j int) {
	b.moves[i], b.moves[j] = b.moves[j], b.moves[i]
	b.scores[i], b.scores[j] = b.scores[j], b.scores[i]
}

// IsBadTactical reports whether an ordering key belongs to a losing capture.
func IsBadTactical(score int64) bool {
	return score < DropBase
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly {
		return
	}

	// Don't store if it's already the first killer
	if mo.killers[ply][0] == m {
		return
	}

	// Shift killers
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// Killers returns the two killer moves of a ply.
func (mo *MoveOrderer) Killers(ply int) [2]board.Move {
	return mo.killers[ply]
}

// UpdateHistory rewards a quiet move or drop that caused a cutoff.
func (mo *MoveOrderer) UpdateHistory(us board.Color, m board.Move, depth int) {
	h := &mo.history[us][historyFrom(m)][m.To()]
	*h += int64(depth * depth)
	if *h > historyMax {
		mo.ageHistory()
	}
}

// HistoryScore returns the history score for a move.
func (mo *MoveOrderer) HistoryScore(us board.Color, m board.Move) int64 {
	return mo.history[us][historyFrom(m)][m.To()]
}
