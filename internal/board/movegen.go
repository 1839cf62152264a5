package board

// GenerateLegalMoves appends all legal moves for the side to move to buf.
func (p *Position) GenerateLegalMoves(buf []Move) []Move {
	start := len(buf)
	buf = p.GeneratePseudoMoves(buf)
	return p.filterLegal(buf, start)
}

// GenerateTacticalMoves appends legal captures and promotions.
func (p *Position) GenerateTacticalMoves(buf []Move) []Move {
	start := len(buf)
	buf = p.generateBoardMoves(p.SideToMove, buf, true)
	return p.filterLegal(buf, start)
}

// GeneratePseudoMoves appends board moves and drops without the king-safety check.
func (p *Position) GeneratePseudoMoves(buf []Move) []Move {
	buf = p.generateBoardMoves(p.SideToMove, buf, false)
	return p.generateDrops(p.SideToMove, buf)
}

// HasLegalMove reports whether the side to move has any legal move.
func (p *Position) HasLegalMove() bool {
	var arr [256]Move
	moves := p.GeneratePseudoMoves(arr[:0])
	for _, m := range moves {
		if p.IsLegal(m) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is in check with no legal move.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMove()
}

// IsStalemate returns true if the side to move is not in check but cannot move.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMove()
}

// IsLegal reports whether a pseudo-legal move leaves the mover's king safe.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	ksq := p.KingSquare[us]
	ok := ksq == NoSquare || !p.IsAttacked(ksq, us.Other())
	p.UnmakeMove(m, undo)
	return ok
}

func (p *Position) filterLegal(buf []Move, start int) []Move {
	n := start
	for i := start; i < len(buf); i++ {
		if p.IsLegal(buf[i]) {
			buf[n] = buf[i]
			n++
		}
	}
	return buf[:n]
}

// MobilityCounts returns the number of pseudo-legal board moves of side c,
// split into quiet moves and captures/promotions. Drops are not counted.
func (p *Position) MobilityCounts(c Color) (quiet, tactical int) {
	var arr [256]Move
	moves := p.generateBoardMoves(c, arr[:0], false)
	for _, m := range moves {
		if m.IsPromotion() || p.Squares[m.To()] != NoPiece {
			tactical++
		} else {
			quiet++
		}
	}
	return quiet, tactical
}

func (p *Position) generateBoardMoves(c Color, buf []Move, tacticalOnly bool) []Move {
	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Squares[sq]
		if pc == NoPiece || pc.Owner() != c {
			continue
		}
		from := Square(sq)
		if pc.Kind() == ChessPawn {
			buf = p.chessPawnMoves(from, c, buf, tacticalOnly)
			continue
		}
		mv := movements[pc.Kind()]
		for _, v := range mv.steps {
			v = orient(v, c)
			x, y := from.X()+v.dx, from.Y()+v.dy
			if p.OnBoard(x, y) {
				buf = p.addMove(from, NewSquare(x, y), pc, buf, tacticalOnly)
			}
		}
		for _, v := range mv.slides {
			v = orient(v, c)
			x, y := from.X()+v.dx, from.Y()+v.dy
			for p.OnBoard(x, y) {
				to := NewSquare(x, y)
				buf = p.addMove(from, to, pc, buf, tacticalOnly)
				if p.Squares[to] != NoPiece {
					break
				}
				x += v.dx
				y += v.dy
			}
		}
	}
	return buf
}

// addMove appends the move(s) from -> to for a non-chess-pawn piece,
// expanding promotion choices.
func (p *Position) addMove(from, to Square, pc Piece, buf []Move, tacticalOnly bool) []Move {
	c := pc.Owner()
	target := p.Squares[to]
	if target != NoPiece {
		if target.Owner() == c || !p.Rules[c].CanCapture {
			return buf
		}
	}
	capture := target != NoPiece
	k := pc.Kind()

	canPromote := p.Rules[c].CanPromote && k.CanPromote() &&
		(p.InPromotionZone(c, from.Y()) || p.InPromotionZone(c, to.Y()))
	if canPromote {
		buf = append(buf, NewMove(from, to, true))
		if p.mustPromote(k, c, to.Y()) {
			return buf
		}
	}
	if capture || !tacticalOnly {
		buf = append(buf, NewMove(from, to, false))
	}
	return buf
}

// mustPromote reports whether a piece arriving on rank y could never move again.
func (p *Position) mustPromote(k PieceKind, c Color, y int) bool {
	rel := p.RelativeRank(c, y)
	switch k {
	case ShogiPawn, ShogiLance, ChessPawn:
		return rel == p.Height-1
	case ShogiKnight:
		return rel >= p.Height-2
	}
	return false
}

func (p *Position) chessPawnMoves(from Square, c Color, buf []Move, tacticalOnly bool) []Move {
	dy := -1
	startY := p.Height - 2
	if c == Player2 {
		dy = 1
		startY = 1
	}
	x, y := from.X(), from.Y()
	lastRank := func(ty int) bool { return p.RelativeRank(c, ty) == p.Height-1 }

	// Pushes
	if p.OnBoard(x, y+dy) {
		to := NewSquare(x, y+dy)
		if p.Squares[to] == NoPiece {
			if lastRank(y + dy) {
				buf = append(buf, NewMove(from, to, true))
			} else if !tacticalOnly {
				buf = append(buf, NewMove(from, to, false))
				if y == startY && p.OnBoard(x, y+2*dy) {
					to2 := NewSquare(x, y+2*dy)
					if p.Squares[to2] == NoPiece {
						buf = append(buf, NewMove(from, to2, false))
					}
				}
			}
		}
	}

	// Diagonal captures
	if !p.Rules[c].CanCapture {
		return buf
	}
	for _, dx := range [2]int{-1, 1} {
		tx, ty := x+dx, y+dy
		if !p.OnBoard(tx, ty) {
			continue
		}
		to := NewSquare(tx, ty)
		target := p.Squares[to]
		if target == NoPiece || target.Owner() == c {
			continue
		}
		buf = append(buf, NewMove(from, to, lastRank(ty)))
	}
	return buf
}

func (p *Position) generateDrops(c Color, buf []Move) []Move {
	if !p.Rules[c].CanDrop {
		return buf
	}
	for k := ShogiKing; k < NumKinds; k++ {
		if p.Hands[c][k] == 0 || k.IsKing() {
			continue
		}
		for y := 0; y < p.Height; y++ {
			if p.mustPromote(k, c, y) {
				continue
			}
			for x := 0; x < p.Width; x++ {
				to := NewSquare(x, y)
				if p.Squares[to] != NoPiece {
					continue
				}
				if k == ShogiPawn && p.hasUnpromotedPawnOnFile(c, x) {
					continue
				}
				buf = append(buf, NewDrop(k, to))
			}
		}
	}
	return buf
}

// hasUnpromotedPawnOnFile checks the two-pawns (nifu) restriction.
func (p *Position) hasUnpromotedPawnOnFile(c Color, x int) bool {
	want := NewPiece(ShogiPawn, c)
	for y := 0; y < p.Height; y++ {
		if p.Squares[NewSquare(x, y)] == want {
			return true
		}
	}
	return false
}
