package engine

import (
	"testing"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

func rulesFor(shogi bool) board.RuleSet {
	if shogi {
		return board.ShogiRules()
	}
	return board.ChessRules()
}

func mustSetup(t *testing.T, rows []string, p1Shogi, p2Shogi bool) *board.Position {
	t.Helper()
	pos, err := board.ParseSetup(rows, rulesFor(p1Shogi), rulesFor(p2Shogi), p1Shogi, p2Shogi)
	if err != nil {
		t.Fatalf("parse setup: %v", err)
	}
	return pos
}

func mustNamedSetup(t *testing.T, name string) *board.Position {
	t.Helper()
	pos, err := board.NewSetup(name)
	if err != nil {
		t.Fatalf("setup %s: %v", name, err)
	}
	return pos
}

func newTestEvaluator(t *testing.T) *HandcraftedEvaluator {
	t.Helper()
	ev, err := NewHandcraftedEvaluator(config.Default().Evaluation)
	if err != nil {
		t.Fatalf("NewHandcraftedEvaluator: %v", err)
	}
	return ev
}

// searchConfig returns unlimited-time settings searching to depth.
func searchConfig(depth int) config.SearchConfig {
	cfg := config.DefaultSearch()
	cfg.MaxDepth = depth
	cfg.MoveTimeMs = 0
	return cfg
}

// mateInOne has Player1 (chess) to move and mate a lone shogi king with
// the rook on file 8 going to the back rank.
func mateInOne(t *testing.T) (*board.Position, board.Move) {
	t.Helper()
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		"R . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . R",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, false, true)
	return pos, board.NewMove(board.NewSquare(8, 5), board.NewSquare(8, 0), false)
}

// smallMiddlegame is a sparse mixed position for exhaustive comparisons.
func smallMiddlegame(t *testing.T) *board.Position {
	t.Helper()
	return mustSetup(t, []string{
		". . . . k . . . .",
		". . . s . g . . .",
		". . . p p p . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . CP CP CP . . .",
		". . . . CN . . . .",
		". . . . CK . . . .",
	}, false, true)
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
