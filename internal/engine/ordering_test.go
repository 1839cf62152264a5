package engine

import (
	"testing"

	"github.com/hailam/shogiplay/internal/board"
)

func defendedPawnPosition(t *testing.T) *board.Position {
	t.Helper()
	return mustSetup(t, []string{
		". . . . . cr . . ck",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . cp . . .",
		". . . . . . . . .",
		". . . . CN . . . .",
		". . . . . . . . .",
		"CK . . . . . . . .",
	}, false, false)
}

func TestOrderMovesBands(t *testing.T) {
	pos := defendedPawnPosition(t)
	mo := NewMoveOrderer(DefaultPieceValues())

	moves := pos.GenerateLegalMoves(nil)
	badCapture := board.NewMove(board.NewSquare(4, 6), board.NewSquare(5, 4), false)
	if !containsMove(moves, badCapture) {
		t.Fatalf("Expected %s among %v", badCapture, moves)
	}

	scores := mo.OrderMoves(pos, moves, 0, board.NoMove)
	last := len(moves) - 1
	if moves[last] != badCapture {
		t.Errorf("Expected the losing capture last, got %s", moves[last])
	}
	if !IsBadTactical(scores[last]) {
		t.Errorf("Expected score %d to be a bad tactical key", scores[last])
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Fatalf("Scores not sorted at %d: %d > %d", i, scores[i], scores[i-1])
		}
	}

	// The transposition move always comes first.
	ttMove := moves[last]
	mo.OrderMoves(pos, moves, 0, ttMove)
	if moves[0] != ttMove {
		t.Errorf("Expected TT move %s first, got %s", ttMove, moves[0])
	}
}

func TestOrderMovesGoodCaptureFirst(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . . . . . ck",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . cr . . .",
		". . . . . . . . .",
		". . . . CN . . . .",
		". . . . . . . . .",
		"CK . . . . . . . .",
	}, false, false)
	mo := NewMoveOrderer(DefaultPieceValues())

	moves := pos.GenerateLegalMoves(nil)
	scores := mo.OrderMoves(pos, moves, 0, board.NoMove)
	want := board.NewMove(board.NewSquare(4, 6), board.NewSquare(5, 4), false)
	if moves[0] != want {
		t.Errorf("Expected %s first, got %s", want, moves[0])
	}
	if scores[0] < GoodCaptureBase || scores[0] >= TTMoveScore {
		t.Errorf("Expected a good capture key, got %d", scores[0])
	}
}

func TestOrderMovesStable(t *testing.T) {
	pos := mustNamedSetup(t, "shogi")
	mo := NewMoveOrderer(DefaultPieceValues())

	moves := pos.GenerateLegalMoves(nil)
	original := append([]board.Move(nil), moves...)
	mo.OrderMoves(pos, moves, 0, board.NoMove)

	// No captures at the start and no history: generation order is kept.
	for i := range moves {
		if moves[i] != original[i] {
			t.Fatalf("Order changed at %d: %s vs %s", i, moves[i], original[i])
		}
	}
}

func TestKillersAndHistory(t *testing.T) {
	pos := mustNamedSetup(t, "shogi")
	mo := NewMoveOrderer(DefaultPieceValues())
	moves := pos.GenerateLegalMoves(nil)
	a, b := moves[3], moves[5]

	mo.UpdateKillers(a, 2)
	mo.UpdateKillers(b, 2)
	mo.UpdateKillers(b, 2)
	if k := mo.Killers(2); k[0] != b || k[1] != a {
		t.Errorf("Expected killers [%s %s], got %v", b, a, k)
	}

	mo.OrderMoves(pos, moves, 2, board.NoMove)
	if moves[0] != b || moves[1] != a {
		t.Errorf("Expected killers first, got %s %s", moves[0], moves[1])
	}

	quiet := moves[10]
	mo.UpdateHistory(board.Player1, quiet, 4)
	if got := mo.HistoryScore(board.Player1, quiet); got != 16 {
		t.Errorf("Expected history 16, got %d", got)
	}
	if got := mo.HistoryScore(board.Player2, quiet); got != 0 {
		t.Errorf("History must be per side, got %d", got)
	}

	mo.NewSearch()
	if got := mo.HistoryScore(board.Player1, quiet); got != 8 {
		t.Errorf("Expected history halved to 8, got %d", got)
	}
	if k := mo.Killers(2); k[0] != board.NoMove {
		t.Errorf("Expected killers cleared, got %v", k)
	}

	mo.Clear()
	if got := mo.HistoryScore(board.Player1, quiet); got != 0 {
		t.Errorf("Expected history cleared, got %d", got)
	}
}

func TestDropsOrderAfterQuietMoves(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)
	pos.SetHand(board.Player1, board.ShogiGold, 1)
	mo := NewMoveOrderer(DefaultPieceValues())

	moves := pos.GenerateLegalMoves(nil)
	mo.OrderMoves(pos, moves, 0, board.NoMove)
	seenDrop := false
	for _, m := range moves {
		if m.IsDrop() {
			seenDrop = true
		} else if seenDrop {
			t.Fatalf("Board move %s ordered after a drop", m)
		}
	}
	if !seenDrop {
		t.Fatal("Expected drops")
	}
}
