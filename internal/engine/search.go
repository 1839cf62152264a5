package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

// Search constants
const (
	Infinity  = 200000
	MateScore = 100000
	MaxPly    = 128

	// Scores at or beyond MateBound encode a forced mate.
	MateBound = MateScore - MaxPly

	// Static evaluations are clamped well inside the mate range.
	EvalLimit = 50000
)

// Pruning constants
const (
	nodeCheckInterval  = 1024
	nullMoveMinDepth   = 3
	nullMoveMinPieces  = 1000 // non-pawn material of the side to move, board and hand
	lmrMinDepth        = 3
	lmrFullDepthMoves  = 3
	aspirationMinDepth = 5
	aspirationWindow   = 50
)

// LMR reduction table: r = max(1, 0.75 + ln(depth)*ln(moveNumber)/2.25)
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := int(0.75 + math.Log(float64(d))*math.Log(float64(m))/2.25)
			lmrReductions[d][m] = max(1, r)
		}
	}
}

func lmrReduction(depth, moveNumber int) int {
	return lmrReductions[min(depth, 63)][min(moveNumber, 63)]
}

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	next := pv.length[ply+1]
	for j := ply + 1; j < next; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = max(next, ply+1)
}

func (pv *PVTable) line() []board.Move {
	return append([]board.Move(nil), pv.moves[0][:pv.length[0]]...)
}

// Searcher holds the state of one search: the working position, budgets,
// move-ordering tables and counters. It belongs to a single Engine.
type Searcher struct {
	pos     *board.Position
	cfg     config.SearchConfig
	eval    Evaluator
	tt      *TranspositionTable
	orderer *MoveOrderer
	values  *PieceValues

	ctx      context.Context
	stopFlag atomic.Bool
	tm       TimeManager

	// Time and node budgets only apply once depth 1 is complete.
	depthOneDone bool
	aborted      bool

	// Best root move of the last completed iteration, tried first when the
	// transposition table has nothing for the root.
	rootBest board.Move

	nodes     uint64
	nextCheck uint64
	stats     Stats
	pv        PVTable

	moveBufs [MaxPly][]board.Move
}

// NewSearcher creates a searcher bound to a transposition table.
func NewSearcher(tt *TranspositionTable, values *PieceValues) *Searcher {
	s := &Searcher{
		tt:      tt,
		values:  values,
		orderer: NewMoveOrderer(values),
	}
	for i := range s.moveBufs {
		s.moveBufs[i] = make([]board.Move, 0, 128)
	}
	return s
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// reset prepares the searcher for a new top-level search.
func (s *Searcher) reset(ctx context.Context, pos *board.Position, cfg config.SearchConfig, ev Evaluator) {
	s.ctx = ctx
	s.pos = pos
	s.cfg = cfg
	s.eval = ev
	s.depthOneDone = false
	s.aborted = false
	s.rootBest = board.NoMove
	s.nodes = 0
	s.nextCheck = 0
	s.stats = Stats{}
	s.pv = PVTable{}
	s.tm.Init(cfg.MoveTime(), cfg.MaxNodes)
	s.orderer.NewSearch()
}

// shouldAbort polls the stop sources every nodeCheckInterval nodes.
func (s *Searcher) shouldAbort() bool {
	if s.aborted {
		return true
	}
	if s.nodes < s.nextCheck {
		return false
	}
	s.nextCheck = s.nodes + nodeCheckInterval
	if s.stopFlag.Load() || s.ctx.Err() != nil {
		s.aborted = true
		return true
	}
	if s.depthOneDone && s.tm.Exceeded(s.nodes) {
		s.aborted = true
	}
	return s.aborted
}

func (s *Searcher) evaluate() int {
	return clampEval(s.eval.Evaluate(s.pos))
}

func clampEval(v int) int {
	return max(-EvalLimit, min(EvalLimit, v))
}

// drawScore returns the configured draw score seen from the side to move
// at ply, so that the root always receives exactly DrawScore.
func (s *Searcher) drawScore(ply int) int {
	if ply%2 == 0 {
		return s.cfg.DrawScore
	}
	return -s.cfg.DrawScore
}

// nonPawnMaterial sums the material of side c, board and hand, without
// kings and pawns.
func (s *Searcher) nonPawnMaterial(c board.Color) int {
	pos := s.pos
	total := 0
	for sq := 0; sq < board.NumSquares; sq++ {
		pc := pos.Squares[sq]
		if pc == board.NoPiece || pc.Owner() != c {
			continue
		}
		if k := pc.Kind(); !k.IsKing() && !k.IsPawn() {
			total += s.values.Of(k)
		}
	}
	for k := board.ShogiKing; k < board.NumKinds; k++ {
		if n := pos.Hand(c, k); n > 0 && !k.IsPawn() {
			total += n * s.values.Of(k)
		}
	}
	return total
}

// rootFallback returns the first legal move in ordering order.
func (s *Searcher) rootFallback(moves []board.Move) board.Move {
	if len(moves) == 0 {
		return board.NoMove
	}
	ordered := append([]board.Move(nil), moves...)
	s.orderer.OrderMoves(s.pos, ordered, 0, board.NoMove)
	return ordered[0]
}

// elapsed returns the time since the search began.
func (s *Searcher) elapsed() time.Duration {
	return s.tm.Elapsed()
}

// IsMateScore reports whether a score encodes a forced mate.
func IsMateScore(score int) bool {
	return score >= MateBound || score <= -MateBound
}
