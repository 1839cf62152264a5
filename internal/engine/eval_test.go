package engine

import (
	"strings"
	"testing"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

func TestEvaluateStartingPositions(t *testing.T) {
	ev := newTestEvaluator(t)

	// Both armies are point mirrors of each other.
	for _, name := range []string{"shogi", "chess"} {
		pos := mustNamedSetup(t, name)
		if score := ev.Evaluate(pos); score != 0 {
			t.Errorf("%s: Expected 0 at the start, got %d\n%s", name, score, ev.Breakdown(pos))
		}
	}
}

func TestEvaluateSideToMoveSymmetry(t *testing.T) {
	ev := newTestEvaluator(t)
	for _, name := range board.SetupNames() {
		pos := mustNamedSetup(t, name)
		// Play a few moves to get away from the start.
		for i := 0; i < 4; i++ {
			moves := pos.GenerateLegalMoves(nil)
			if len(moves) == 0 {
				break
			}
			pos.MakeMove(moves[(i*7)%len(moves)])
		}

		score := ev.Evaluate(pos)
		flipped := pos.Copy()
		flipped.SetSideToMove(pos.SideToMove.Other())
		if got := ev.Evaluate(flipped); got != -score {
			t.Errorf("%s: Expected %d after switching the side to move, got %d", name, -score, got)
		}
	}
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	ev := newTestEvaluator(t)
	pos := mustNamedSetup(t, "shogi")
	pos.Place(board.NewSquare(1, 1), board.NoPiece) // Player2's rook

	if score := ev.Evaluate(pos); score < 500 {
		t.Errorf("Expected a clear advantage for Player1, got %d", score)
	}
}

func TestEvaluateHandPieces(t *testing.T) {
	ev := newTestEvaluator(t)
	pos := mustNamedSetup(t, "shogi")
	before := ev.Evaluate(pos)

	pos.SetHand(board.Player1, board.ShogiPawn, 1)
	after := ev.Evaluate(pos)
	if after <= before {
		t.Errorf("A pawn in hand should raise the score: %d -> %d", before, after)
	}

	b := ev.Breakdown(pos)
	if b.Side[board.Player1].Hand != ev.Values().Hand(board.ShogiPawn) {
		t.Errorf("Expected hand term %d, got %d", ev.Values().Hand(board.ShogiPawn), b.Side[board.Player1].Hand)
	}
}

func TestEvaluateMaterialOverride(t *testing.T) {
	cfg := config.Default().Evaluation
	cfg.MaterialValues = map[string]int{"ShogiRook": 3000}
	ev, err := NewHandcraftedEvaluator(cfg)
	if err != nil {
		t.Fatalf("NewHandcraftedEvaluator: %v", err)
	}
	if got := ev.Values().Of(board.ShogiRook); got != 3000 {
		t.Errorf("Expected overridden rook value 3000, got %d", got)
	}
	if got := ev.Values().Of(board.ShogiBishop); got != 800 {
		t.Errorf("Expected default bishop value 800, got %d", got)
	}
}

func TestGamePhase(t *testing.T) {
	ev := newTestEvaluator(t)
	if phase := ev.Phase(mustNamedSetup(t, "shogi")); phase != Opening {
		t.Errorf("Expected opening at the start, got %s", phase)
	}

	bare := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . R . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)
	if phase := ev.Phase(bare); phase != Endgame {
		t.Errorf("Expected endgame with a single rook, got %s", phase)
	}
}

func TestPawnStructure(t *testing.T) {
	ev := newTestEvaluator(t)
	// Player1 has an isolated passed pawn; Player2 has none.
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". P . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)

	p1, p2 := ev.pawnStructure(pos)
	if p2 != 0 {
		t.Errorf("Expected no pawn term for Player2, got %d", p2)
	}
	// Relative rank 3 passed bonus, isolated penalty.
	want := passedPawnBonus[3] - isolatedPawnPenalty
	if p1 != want {
		t.Errorf("Expected %d, got %d", want, p1)
	}

	// Second call is served from the pawn table with the same result.
	if c1, c2 := ev.pawnStructure(pos); c1 != p1 || c2 != p2 {
		t.Errorf("Cached pawn score differs: %d/%d vs %d/%d", c1, c2, p1, p2)
	}
}

func TestBreakdownString(t *testing.T) {
	ev := newTestEvaluator(t)
	out := ev.Breakdown(mustNamedSetup(t, "mixed")).String()
	for _, want := range []string{"material", "mobility", "total", "Player1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Breakdown is missing %q:\n%s", want, out)
		}
	}
}

func TestPSTDisabled(t *testing.T) {
	cfg := config.Default().Evaluation
	cfg.PSTEnabled = false
	ev, err := NewHandcraftedEvaluator(cfg)
	if err != nil {
		t.Fatalf("NewHandcraftedEvaluator: %v", err)
	}
	b := ev.Breakdown(mustNamedSetup(t, "mixed"))
	if b.Side[0].PST != 0 || b.Side[1].PST != 0 {
		t.Errorf("Expected no PST terms, got %d/%d", b.Side[0].PST, b.Side[1].PST)
	}
}

func TestPawnTable(t *testing.T) {
	pt := NewPawnTable(1)
	pt.Store(0xABCDEF, 12, -7)
	if p1, p2, ok := pt.Probe(0xABCDEF); !ok || p1 != 12 || p2 != -7 {
		t.Errorf("Expected 12/-7, got %d/%d (found %v)", p1, p2, ok)
	}
	if _, _, ok := pt.Probe(0xABCDEE); ok {
		t.Error("Probe should miss on a different key")
	}
	if _, _, ok := pt.Probe(0); ok {
		t.Error("Key 0 must never hit")
	}
	pt.Clear()
	if _, _, ok := pt.Probe(0xABCDEF); ok {
		t.Error("Probe should miss after Clear")
	}
}

func TestNewGameClearsEvaluatorCaches(t *testing.T) {
	inner := newTestEvaluator(t)
	ev := NewCachedEvaluator(inner, 64)
	eng := NewEngine(ev, 1)

	filled := func() int {
		n := 0
		for _, e := range inner.pawns.entries {
			if e.Key != 0 {
				n++
			}
		}
		return n
	}

	eng.Evaluate(mustNamedSetup(t, "shogi"))
	if filled() == 0 {
		t.Fatal("Expected the pawn structure to be cached")
	}
	if ev.HitRate() != 0 {
		t.Fatalf("Expected a cold cache, got hit rate %.1f", ev.HitRate())
	}

	eng.NewGame()
	if n := filled(); n != 0 {
		t.Errorf("Expected an empty pawn table after NewGame, got %d entries", n)
	}
	eng.Evaluate(mustNamedSetup(t, "shogi"))
	if ev.HitRate() != 0 {
		t.Errorf("Expected the evaluation cache to be empty after NewGame, hit rate %.1f", ev.HitRate())
	}
}

func TestDevelopmentPenaltyCoversRooks(t *testing.T) {
	ev := newTestEvaluator(t)
	start := board.StandardShogi()
	b := ev.Breakdown(start)
	if b.Phase != Opening {
		t.Fatalf("Expected the opening phase, got %v", b.Phase)
	}
	// Two silvers, the bishop and the rook start at home.
	if got, want := b.Side[board.Player1].Development, -4*developmentPenalty; got != want {
		t.Errorf("Expected development %d, got %d", want, got)
	}

	// Lifting the rook off its home ranks removes its penalty.
	pos := start.Copy()
	rook := board.NewSquare(7, 7)
	if pos.PieceAt(rook).Kind() != board.ShogiRook {
		t.Fatalf("Expected a rook on %s", rook)
	}
	pos.Place(board.NewSquare(7, 5), pos.PieceAt(rook))
	pos.Place(rook, board.NoPiece)
	if got, want := ev.Breakdown(pos).Side[board.Player1].Development, -3*developmentPenalty; got != want {
		t.Errorf("Expected development %d with the rook raised, got %d", want, got)
	}
}
