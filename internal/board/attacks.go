package board

// Adjacent directions scanned when looking for attackers.
var rayDirs = [8]vec{{0, -1}, {0, 1}, {-1, 0}, {1, 0}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// IsAttacked reports whether any piece of side by attacks sq.
func (g *Grid) IsAttacked(sq Square, by Color) bool {
	return g.forEachAttacker(sq, by, func(Square) bool { return true })
}

// AttackersTo appends the squares of every piece of side by attacking sq.
func (g *Grid) AttackersTo(sq Square, by Color, buf []Square) []Square {
	g.forEachAttacker(sq, by, func(from Square) bool {
		buf = append(buf, from)
		return false
	})
	return buf
}

// forEachAttacker scans outward from sq. fn returns true to stop early;
// the result reports whether it did.
func (g *Grid) forEachAttacker(sq Square, by Color, fn func(Square) bool) bool {
	x0, y0 := sq.X(), sq.Y()

	for _, d := range rayDirs {
		x, y := x0+d.dx, y0+d.dy
		for dist := 1; g.OnBoard(x, y); dist++ {
			from := NewSquare(x, y)
			pc := g.Squares[from]
			if pc != NoPiece {
				if pc.Owner() == by {
					// The attacker moves in the opposite direction of the scan.
					ay, ax := -d.dy+1, -d.dx+1
					k := pc.Kind()
					if attackSlide[by][k][ay][ax] || (dist == 1 && attackStep[by][k][ay][ax]) {
						if fn(from) {
							return true
						}
					}
				}
				break
			}
			x += d.dx
			y += d.dy
		}
	}

	// Jumping pieces: look back along each jump vector.
	for _, k := range [...]PieceKind{ShogiKnight, ChessKnight} {
		for _, j := range attackJumps[by][k] {
			x, y := x0-j.dx, y0-j.dy
			if !g.OnBoard(x, y) {
				continue
			}
			from := NewSquare(x, y)
			if g.Squares[from] == NewPiece(k, by) {
				if fn(from) {
					return true
				}
			}
		}
	}
	return false
}

// Attacks reports whether the piece on from attacks to, given the current occupancy.
func (g *Grid) Attacks(from, to Square) bool {
	pc := g.Squares[from]
	if pc == NoPiece || from == to {
		return false
	}
	c, k := pc.Owner(), pc.Kind()
	dx, dy := to.X()-from.X(), to.Y()-from.Y()

	for _, j := range attackJumps[c][k] {
		if j.dx == dx && j.dy == dy {
			return true
		}
	}
	if abs(dx) <= 1 && abs(dy) <= 1 && attackStep[c][k][dy+1][dx+1] {
		return true
	}
	// Slides need a straight line.
	if dx != 0 && dy != 0 && abs(dx) != abs(dy) {
		return false
	}
	sx, sy := sign(dx), sign(dy)
	if !attackSlide[c][k][sy+1][sx+1] {
		return false
	}
	x, y := from.X()+sx, from.Y()+sy
	for NewSquare(x, y) != to {
		if g.Squares[NewSquare(x, y)] != NoPiece {
			return false
		}
		x += sx
		y += sy
	}
	return true
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
