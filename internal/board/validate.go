package board

import (
	"errors"
	"fmt"
)

// ErrInvalidPosition is wrapped by every validation failure.
var ErrInvalidPosition = errors.New("invalid position")

// inventoryLimit is the most pieces of one unpromoted kind both armies
// together can own, on the board and in hand.
var inventoryLimit = [NumKinds]int{
	ShogiRook:   2,
	ShogiBishop: 2,
	ShogiGold:   4,
	ShogiSilver: 4,
	ShogiKnight: 4,
	ShogiLance:  4,
	ShogiPawn:   18,
	ChessRook:   4,
	ChessBishop: 4,
	ChessKnight: 4,
	ChessPawn:   18,
}

// Chess pawns turn into queens, so the two are bounded together.
const chessPawnQueenLimit = 22

// Validate checks that the position is well formed and searchable.
// All problems found are reported together.
func (p *Position) Validate() error {
	if p.Width < 1 || p.Width > MaxWidth || p.Height < 1 || p.Height > MaxHeight {
		return fmt.Errorf("%w: board size %dx%d", ErrInvalidPosition, p.Width, p.Height)
	}

	var errs []error
	var kings [2]int
	var pawnFiles [2][MaxWidth]int
	var inventory [NumKinds]int

	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Squares[sq]
		if pc == NoPiece {
			continue
		}
		s := Square(sq)
		if !p.OnBoard(s.X(), s.Y()) {
			errs = append(errs, fmt.Errorf("piece %s outside the %dx%d board at %s", pc, p.Width, p.Height, s))
			continue
		}
		if pc.Kind() == NoKind || pc.Kind() >= NumKinds || pc.Owner() > Player2 {
			errs = append(errs, fmt.Errorf("corrupt piece value %d at %s", pc, s))
			continue
		}
		c := pc.Owner()
		inventory[pc.Kind().Unpromoted()]++
		if pc.Kind().IsKing() {
			kings[c]++
		}
		if pc.Kind() == ShogiPawn {
			pawnFiles[c][s.X()]++
		}
		if p.mustPromote(pc.Kind(), c, s.Y()) {
			errs = append(errs, fmt.Errorf("%s %s cannot move from %s", c, pc.Kind(), s))
		}
	}

	for c := Player1; c <= Player2; c++ {
		switch {
		case kings[c] == 0:
			errs = append(errs, fmt.Errorf("%s has no king", c))
		case kings[c] > 1:
			errs = append(errs, fmt.Errorf("%s has %d kings", c, kings[c]))
		}
		for x := 0; x < p.Width; x++ {
			if pawnFiles[c][x] > 1 {
				errs = append(errs, fmt.Errorf("%s has %d pawns on file %d", c, pawnFiles[c][x], x))
			}
		}

		total := 0
		for k := ShogiKing; k < NumKinds; k++ {
			n := int(p.Hands[c][k])
			if n == 0 {
				continue
			}
			total += n
			inventory[k] += n
			if k.IsKing() || k.IsPromoted() {
				errs = append(errs, fmt.Errorf("%s holds %d %s in hand", c, n, k))
			}
			if n > MaxHandCount {
				errs = append(errs, fmt.Errorf("%s holds %d %s, limit %d", c, n, k, MaxHandCount))
			}
		}
		if total > 0 && !p.Rules[c].KeepCaptured && !p.Rules[c].CanDrop {
			errs = append(errs, fmt.Errorf("%s holds %d pieces but neither keeps nor drops them", c, total))
		}
	}

	for k := ShogiKing; k < NumKinds; k++ {
		if limit := inventoryLimit[k]; limit > 0 && inventory[k] > limit {
			errs = append(errs, fmt.Errorf("%d %s on board and in hand, at most %d exist", inventory[k], k, limit))
		}
	}
	if n := inventory[ChessPawn] + inventory[ChessQueen]; n > chessPawnQueenLimit {
		errs = append(errs, fmt.Errorf("%d chess pawns and queens, at most %d exist", n, chessPawnQueenLimit))
	}

	if len(errs) == 0 {
		// The side that just moved must not have left its king attacked.
		them := p.SideToMove.Other()
		if ksq := p.KingSquare[them]; ksq != NoSquare && p.IsAttacked(ksq, p.SideToMove) {
			errs = append(errs, fmt.Errorf("%s king on %s is capturable", them, ksq))
		}
		if hash, pawnKey := p.ComputeHash(); hash != p.Hash || pawnKey != p.PawnKey {
			errs = append(errs, errors.New("hash keys out of sync with the board"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPosition, errors.Join(errs...))
	}
	return nil
}
