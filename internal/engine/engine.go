// Package engine implements the game-tree search and position evaluation
// for shogi/chess hybrid variants: iterative deepening negamax with a
// transposition table, null-move pruning, late move reductions, principal
// variation search, aspiration windows and quiescence, on top of a
// handcrafted or neural-network evaluator.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

// ErrInvalidPosition is wrapped when a search is asked to run on a
// position that fails validation.
var ErrInvalidPosition = board.ErrInvalidPosition

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Result is the outcome of a search. Score is from the point of view of the
// side to move at the root. Depth is the last fully completed iteration, 0
// when the search was stopped before depth 1 finished.
type Result struct {
	BestMove board.Move
	Score    int
	Depth    int
	Nodes    uint64
	PV       []board.Move
	Stats    Stats
	Elapsed  time.Duration
}

// ValueSource is implemented by evaluators whose material table should also
// drive exchange evaluation, move ordering and null-move material checks.
type ValueSource interface {
	Values() *PieceValues
}

// Engine is the search engine. It owns its transposition table and move
// ordering state, which persist between searches until NewGame.
// An Engine runs one search at a time; Stop may be called concurrently.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable
	eval     Evaluator
	ttSizeMB int

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine scoring positions with ev and a transposition
// table of ttSizeMB megabytes.
func NewEngine(ev Evaluator, ttSizeMB int) *Engine {
	values := DefaultPieceValues()
	if vs, ok := ev.(ValueSource); ok {
		values = vs.Values()
	}
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher: NewSearcher(tt, values),
		tt:       tt,
		eval:     ev,
		ttSizeMB: ttSizeMB,
	}
}

// Search finds the best move for pos within the limits of cfg. The input
// position is never modified. Stopping through Stop or ctx is not an error:
// the best move of the last completed iteration is returned, or the first
// ordered legal move when depth 1 never completed.
func (e *Engine) Search(ctx context.Context, pos *board.Position, cfg config.SearchConfig) (Result, error) {
	if err := pos.Validate(); err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.TTSizeMB != e.ttSizeMB {
		e.tt = NewTranspositionTable(cfg.TTSizeMB)
		e.ttSizeMB = cfg.TTSizeMB
		e.searcher.tt = e.tt
	}

	maxDepth := min(max(cfg.MaxDepth, 1), config.MaxSearchDepth)
	work := pos.Copy()
	s := e.searcher
	s.stopFlag.Store(false)
	s.reset(ctx, work, cfg, e.eval)
	e.tt.NewSearch()

	rootMoves := work.GenerateLegalMoves(nil)
	if len(rootMoves) == 0 {
		res := Result{BestMove: board.NoMove, Score: cfg.DrawScore}
		if work.InCheck() {
			res.Score = -MateScore
		}
		res.Elapsed = s.elapsed()
		return res, nil
	}

	res := Result{
		BestMove: s.rootFallback(rootMoves),
		Score:    s.evaluate(),
	}

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && !s.tm.CanStartIteration(s.nodes) {
			break
		}

		score := s.searchRoot(depth, res.Score)
		if s.aborted {
			log.Warn().
				Int("depth", depth).
				Uint64("nodes", s.nodes).
				Dur("elapsed", s.elapsed()).
				Msg("search-aborted")
			break
		}
		s.depthOneDone = true

		res.Score = score
		res.Depth = depth
		if pv := s.pv.line(); len(pv) > 0 {
			res.PV = pv
			res.BestMove = pv[0]
			s.rootBest = pv[0]
		}
		s.stats.IterationNodes = append(s.stats.IterationNodes, s.nodes)

		log.Debug().
			Int("depth", depth).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Str("pv", formatPV(res.PV)).
			Msg("iteration-complete")

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     s.elapsed(),
				PV:       res.PV,
				HashFull: e.tt.HashFull(),
			})
		}

		// Early termination: found mate
		if IsMateScore(score) {
			break
		}
	}

	s.stats.Depth = res.Depth
	s.stats.Nodes = s.nodes
	res.Nodes = s.nodes
	res.Stats = s.stats
	res.Elapsed = s.elapsed()
	if len(res.PV) == 0 {
		res.PV = []board.Move{res.BestMove}
	}
	return res, nil
}

// Search runs a one-off search with a fresh engine.
func Search(ctx context.Context, pos *board.Position, cfg config.SearchConfig, ev Evaluator) (Result, error) {
	return NewEngine(ev, cfg.TTSizeMB).Search(ctx, pos, cfg)
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// NewGame invalidates the transposition table, resets move ordering and
// empties the evaluator's caches.
func (e *Engine) NewGame() {
	e.tt.NewGame()
	e.searcher.orderer.Clear()
	if c, ok := e.eval.(interface{ Clear() }); ok {
		c.Clear()
	}
}

// Evaluate returns the static evaluation of a position for the side to move.
func (e *Engine) Evaluate(pos *board.Position) int {
	return clampEval(e.eval.Evaluate(pos))
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves(nil)
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := pos.MakeMove(m)
		nodes += Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= MateBound {
		return "Mate in " + strconv.Itoa((MateScore-score+1)/2)
	}
	if score <= -MateBound {
		return "Mated in " + strconv.Itoa((MateScore+score+1)/2)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}

func formatPV(pv []board.Move) string {
	parts := make([]string, len(pv))
	for i, m := range pv {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
