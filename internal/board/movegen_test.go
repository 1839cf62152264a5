package board

import "testing"

func countMoves(moves []Move, pred func(Move) bool) int {
	n := 0
	for _, m := range moves {
		if pred(m) {
			n++
		}
	}
	return n
}

func TestPawnDropRestrictions(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		"P . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)
	pos.SetHand(Player1, ShogiPawn, 1)
	pos.SetHand(Player1, ShogiKnight, 1)

	moves := pos.GenerateLegalMoves(nil)
	for _, m := range moves {
		if !m.IsDrop() {
			continue
		}
		to := m.To()
		switch m.DropKind() {
		case ShogiPawn:
			if to.X() == 0 {
				t.Errorf("pawn drop %s on a file that already has a pawn", m)
			}
			if to.Y() == 0 {
				t.Errorf("pawn drop %s on the last rank", m)
			}
		case ShogiKnight:
			if to.Y() <= 1 {
				t.Errorf("knight drop %s on the last two ranks", m)
			}
		}
	}

	// 9 files minus the occupied pawn file, 8 ranks minus the king squares.
	pawnDrops := countMoves(moves, func(m Move) bool { return m.IsDrop() && m.DropKind() == ShogiPawn })
	if want := 8*8 - 1; pawnDrops != want {
		t.Errorf("pawn drops = %d, want %d", pawnDrops, want)
	}
}

func TestChessPlayerCannotDrop(t *testing.T) {
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
	}, false, true)
	pos.SetHand(Player1, ChessQueen, 1)

	for _, m := range pos.GenerateLegalMoves(nil) {
		if m.IsDrop() {
			t.Fatalf("chess rules produced drop %s", m)
		}
	}
}

func TestPromotionChoices(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . P .",
		". . . . . . . . .",
		"P . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)

	moves := pos.GenerateLegalMoves(nil)
	from3 := NewSquare(0, 3)
	into := countMoves(moves, func(m Move) bool { return m.From() == from3 })
	if into != 2 {
		t.Errorf("pawn entering the zone has %d moves, want promote and stay", into)
	}

	from1 := NewSquare(7, 1)
	last := countMoves(moves, func(m Move) bool { return m.From() == from1 })
	forced := countMoves(moves, func(m Move) bool { return m.From() == from1 && m.IsPromotion() })
	if last != 1 || forced != 1 {
		t.Errorf("pawn reaching the last rank: %d moves, %d promotions, want 1 and 1", last, forced)
	}
}

func TestChessPawnPromotesToQueen(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . P",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, false, true)

	m := NewMove(NewSquare(8, 1), NewSquare(8, 0), true)
	if err := pos.Apply(m); err != nil {
		t.Fatalf("apply %s: %v", m, err)
	}
	if got := pos.PieceAt(NewSquare(8, 0)); got != NewPiece(ChessQueen, Player1) {
		t.Errorf("promoted piece = %v, want CQ", got)
	}
}

func TestCaptureGoesToHand(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		"+p . . . . . . . .",
		". . . . . . . . .",
		"R . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, true, true)

	m := NewMove(NewSquare(0, 6), NewSquare(0, 4), false)
	undo := pos.MakeMove(m)
	if got := pos.Hand(Player1, ShogiPawn); got != 1 {
		t.Errorf("hand pawns = %d, want 1 (tokin reverts)", got)
	}
	pos.UnmakeMove(m, undo)
	if got := pos.Hand(Player1, ShogiPawn); got != 0 {
		t.Errorf("hand pawns after unmake = %d, want 0", got)
	}
	if pos.PieceAt(NewSquare(0, 4)) != NewPiece(ShogiTokin, Player2) {
		t.Error("captured tokin not restored")
	}
}

func TestChessCaptureIsDiscarded(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		"p . . . . . . . .",
		". . . . . . . . .",
		"R . . . . . . . .",
		". . . . . . . . .",
		". . . . K . . . .",
	}, false, true)

	pos.MakeMove(NewMove(NewSquare(0, 6), NewSquare(0, 4), false))
	for k := ShogiKing; k < NumKinds; k++ {
		if pos.Hand(Player1, k) != 0 {
			t.Errorf("chess player kept a captured %s", k)
		}
	}
}

func TestAttacks(t *testing.T) {
	pos := mustSetup(t, []string{
		". . . . k . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . N . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		". . . . . . . . .",
		"L . . . K . . . .",
	}, true, true)

	knight := NewSquare(4, 4)
	if !pos.Attacks(knight, NewSquare(3, 2)) || !pos.Attacks(knight, NewSquare(5, 2)) {
		t.Error("shogi knight should attack two squares ahead")
	}
	if pos.Attacks(knight, NewSquare(3, 6)) {
		t.Error("shogi knight cannot jump backwards")
	}
	lance := NewSquare(0, 8)
	if !pos.Attacks(lance, NewSquare(0, 0)) {
		t.Error("lance should see the whole open file")
	}

	attackers := pos.AttackersTo(NewSquare(3, 2), Player1, nil)
	if len(attackers) != 1 || attackers[0] != knight {
		t.Errorf("attackers of (3,2) = %v, want [%s]", attackers, knight)
	}
}
