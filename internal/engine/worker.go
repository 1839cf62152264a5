package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

// searchRoot runs one iteration at the given depth. From aspirationMinDepth
// on it starts with a narrow window around the previous score and widens
// to the full window on failure.
func (s *Searcher) searchRoot(depth, prevScore int) int {
	if s.cfg.EnableAspiration && depth >= aspirationMinDepth && !IsMateScore(prevScore) {
		alpha := prevScore - aspirationWindow
		beta := prevScore + aspirationWindow
		for {
			score := s.negamax(depth, 0, alpha, beta, true)
			if s.aborted {
				return score
			}
			switch {
			case score <= alpha:
				alpha = -Infinity
			case score >= beta:
				beta = Infinity
			default:
				return score
			}
		}
	}
	return s.negamax(depth, 0, -Infinity, Infinity, true)
}

// negamax is a fail-soft alpha-beta search returning the score for the
// side to move. The working position is restored before it returns.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, nullAllowed bool) int {
	s.pv.length[ply] = ply
	pos := s.pos

	if ply > 0 && pos.IsRepetition() {
		return s.drawScore(ply)
	}

	// Quiescence search at depth 0
	if depth <= 0 {
		if s.cfg.EnableQuiescence {
			return s.quiescence(ply, 0, alpha, beta)
		}
		if s.shouldAbort() {
			return 0
		}
		s.nodes++
		return s.evaluate()
	}

	if s.shouldAbort() {
		return 0
	}
	s.nodes++

	// Bounds check, pv.length[ply+1] is written below
	if ply >= MaxPly-1 {
		return s.evaluate()
	}

	isPV := beta-alpha > 1

	// Probe transposition table. The root never uses the entry's score so
	// that it always produces a move.
	var ttMove board.Move
	if entry, ok := s.tt.Probe(pos.Hash); ok {
		s.stats.TTHits++
		ttMove = entry.BestMove
		if ply > 0 && int(entry.Depth) >= depth {
			var score int
			var cutoff bool
			score, alpha, beta, cutoff = ttBound(entry, ply, alpha, beta)
			if cutoff {
				s.stats.TTCutoffs++
				return score
			}
		}
	}
	if ply == 0 && ttMove == board.NoMove {
		ttMove = s.rootBest
	}

	inCheck := pos.InCheck()

	// Null Move Pruning, skipped in PV nodes and right after another null move
	if s.cfg.EnableNullMove && nullAllowed && !isPV && !inCheck && ply > 0 &&
		depth >= nullMoveMinDepth && !IsMateScore(beta) &&
		s.nonPawnMaterial(pos.SideToMove) >= nullMoveMinPieces {
		r := 2 + depth/4

		nullUndo := pos.MakeNullMove()
		nullScore := -s.negamax(depth-1-r, ply+1, -beta, -beta+1, false)
		pos.UnmakeNullMove(nullUndo)

		if s.aborted {
			return 0
		}
		if nullScore >= beta {
			s.stats.NullMoveCutoffs++
			// Don't return unproven mate scores
			if IsMateScore(nullScore) {
				nullScore = beta
			}
			return nullScore
		}
	}

	moves := pos.GenerateLegalMoves(s.moveBufs[ply][:0])
	s.moveBufs[ply] = moves
	if len(moves) == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return s.drawScore(ply)
	}
	s.orderer.OrderMoves(pos, moves, ply, ttMove)

	// Bounds are stored against the window actually searched, which the
	// transposition entry may have narrowed.
	alphaOrig := alpha
	bestScore := -Infinity
	bestMove := board.NoMove

	for i, m := range moves {
		quiet := m.IsQuiet(pos)
		undo := pos.MakeMove(m)
		newDepth := depth - 1

		var score int
		if i == 0 {
			score = -s.negamax(newDepth, ply+1, -beta, -alpha, true)
		} else {
			// Late Move Reduction
			r := 0
			if s.cfg.EnableLMR && i >= lmrFullDepthMoves && depth >= lmrMinDepth && quiet && !inCheck {
				r = max(0, min(lmrReduction(depth, i+1), newDepth-1))
				if r > 0 {
					s.stats.LMRReductions++
				}
			}

			// PVS probes later moves with a null window
			hi := beta
			if s.cfg.EnablePVS {
				hi = alpha + 1
			}
			score = -s.negamax(newDepth-r, ply+1, -hi, -alpha, true)

			if r > 0 && score > alpha && !s.aborted {
				s.stats.LMRReSearches++
				score = -s.negamax(newDepth, ply+1, -hi, -alpha, true)
			}
			if s.cfg.EnablePVS && score > alpha && score < beta && !s.aborted {
				s.stats.PVSReSearches++
				score = -s.negamax(newDepth, ply+1, -beta, -alpha, true)
			}
		}
		pos.UnmakeMove(m, undo)

		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				bestMove = m
				s.pv.update(ply, m)

				if score >= beta {
					s.stats.BetaCutoffs++
					if quiet {
						s.orderer.UpdateKillers(m, ply)
						s.orderer.UpdateHistory(pos.SideToMove, m, depth)
					}
					break
				}
			}
		}
	}

	flag := TTExact
	switch {
	case bestScore <= alphaOrig:
		flag = TTUpperBound
	case bestScore >= beta:
		flag = TTLowerBound
	}
	s.tt.Store(pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// ttBound applies a deep enough transposition entry to the window. An
// exact score, or a bound outside the window, is a cutoff. Otherwise a
// lower bound raises alpha and an upper bound lowers beta.
func ttBound(e TTEntry, ply, alpha, beta int) (score, newAlpha, newBeta int, cutoff bool) {
	score = AdjustScoreFromTT(int(e.Score), ply)
	switch e.Flag {
	case TTExact:
		return score, alpha, beta, true
	case TTLowerBound:
		if score >= beta {
			return score, alpha, beta, true
		}
		alpha = max(alpha, score)
	case TTUpperBound:
		if score <= alpha {
			return score, alpha, beta, true
		}
		beta = min(beta, score)
	}
	return score, alpha, beta, false
}

// quiescence extends the search past the horizon with captures and
// promotions that do not lose material, or every evasion when in check.
func (s *Searcher) quiescence(ply, qply int, alpha, beta int) int {
	s.pv.length[ply] = ply
	if s.shouldAbort() {
		return 0
	}
	s.nodes++
	s.stats.QNodes++
	pos := s.pos

	if ply >= MaxPly-1 || qply >= s.cfg.QuiescenceLimit {
		return s.evaluate()
	}

	inCheck := pos.InCheck()
	bestScore := -Infinity

	var moves []board.Move
	if inCheck {
		moves = pos.GenerateLegalMoves(s.moveBufs[ply][:0])
		if len(moves) == 0 {
			return -MateScore + ply
		}
	} else {
		// Stand pat
		standPat := s.evaluate()
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		bestScore = standPat
		moves = pos.GenerateTacticalMoves(s.moveBufs[ply][:0])
	}
	s.moveBufs[ply] = moves
	scores := s.orderer.OrderMoves(pos, moves, ply, board.NoMove)

	for i, m := range moves {
		// Losing exchanges sort last
		if !inCheck && IsBadTactical(scores[i]) {
			break
		}

		undo := pos.MakeMove(m)
		score := -s.quiescence(ply+1, qply+1, -beta, -alpha)
		pos.UnmakeMove(m, undo)

		if s.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				if score >= beta {
					break
				}
			}
		}
	}

	return bestScore
}
