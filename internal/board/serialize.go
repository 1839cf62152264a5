package board

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PieceJSON is the serialized form of a piece.
type PieceJSON struct {
	Kind  PieceKind `json:"kind"`
	Owner Color     `json:"owner"`
}

// NormalMoveJSON is the payload of a board move.
type NormalMoveJSON struct {
	From    Coord      `json:"from"`
	To      Coord      `json:"to"`
	Capture *PieceJSON `json:"capture"`
	Promote bool       `json:"promote"`
}

// DropMoveJSON is the payload of a drop.
type DropMoveJSON struct {
	Piece PieceKind `json:"piece"`
	To    Coord     `json:"to"`
}

// MoveJSON is a tagged union: exactly one of Normal or Drop is set.
type MoveJSON struct {
	Normal *NormalMoveJSON `json:"Normal,omitempty"`
	Drop   *DropMoveJSON   `json:"Drop,omitempty"`
}

// EncodeMove converts a move to its JSON form. When pos is the position the
// move is played from, the captured piece is filled in.
func EncodeMove(m Move, pos *Position) MoveJSON {
	if m.IsDrop() {
		return MoveJSON{Drop: &DropMoveJSON{Piece: m.DropKind(), To: m.To().Coord()}}
	}
	n := &NormalMoveJSON{From: m.From().Coord(), To: m.To().Coord(), Promote: m.IsPromotion()}
	if pos != nil {
		if captured := pos.Squares[m.To()]; captured != NoPiece {
			n.Capture = &PieceJSON{Kind: captured.Kind(), Owner: captured.Owner()}
		}
	}
	return MoveJSON{Normal: n}
}

// Decode converts the JSON form back to a move.
func (mj MoveJSON) Decode() (Move, error) {
	switch {
	case mj.Normal != nil && mj.Drop != nil:
		return NoMove, errors.New("move has both Normal and Drop")
	case mj.Normal != nil:
		from, to := mj.Normal.From, mj.Normal.To
		if !validCoord(from) || !validCoord(to) {
			return NoMove, fmt.Errorf("move square out of range: %v -> %v", from, to)
		}
		return NewMove(from.Square(), to.Square(), mj.Normal.Promote), nil
	case mj.Drop != nil:
		if !validCoord(mj.Drop.To) {
			return NoMove, fmt.Errorf("drop square out of range: %v", mj.Drop.To)
		}
		if mj.Drop.Piece == NoKind || mj.Drop.Piece.IsKing() {
			return NoMove, fmt.Errorf("cannot drop %s", mj.Drop.Piece)
		}
		return NewDrop(mj.Drop.Piece, mj.Drop.To.Square()), nil
	}
	return NoMove, errors.New("empty move")
}

func validCoord(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < MaxWidth && c.Y < MaxHeight
}

// MarshalMoveJSON encodes a move played from pos.
func MarshalMoveJSON(m Move, pos *Position) ([]byte, error) {
	return json.Marshal(EncodeMove(m, pos))
}

// UnmarshalMoveJSON decodes a move.
func UnmarshalMoveJSON(data []byte) (Move, error) {
	var mj MoveJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return NoMove, fmt.Errorf("decode move: %w", err)
	}
	return mj.Decode()
}

// PlacedPiece is one entry of the sparse piece map.
type PlacedPiece struct {
	Square Coord     `json:"square"`
	Piece  PieceJSON `json:"piece"`
}

// PositionJSON is the serialized form of a position.
type PositionJSON struct {
	Width      int                         `json:"width"`
	Height     int                         `json:"height"`
	SideToMove Color                       `json:"side_to_move"`
	Pieces     []PlacedPiece               `json:"pieces"`
	Hands      map[Color]map[PieceKind]int `json:"hands"`
	Rules      map[Color]RuleSet           `json:"rules"`
	History    []uint64                    `json:"history,omitempty"`
}

// ToJSON converts the position to its serialized form.
func (p *Position) ToJSON() PositionJSON {
	pj := PositionJSON{
		Width:      p.Width,
		Height:     p.Height,
		SideToMove: p.SideToMove,
		Hands:      map[Color]map[PieceKind]int{Player1: {}, Player2: {}},
		Rules:      map[Color]RuleSet{Player1: p.Rules[Player1], Player2: p.Rules[Player2]},
		History:    append([]uint64(nil), p.history...),
	}
	for sq := 0; sq < NumSquares; sq++ {
		if pc := p.Squares[sq]; pc != NoPiece {
			pj.Pieces = append(pj.Pieces, PlacedPiece{
				Square: Square(sq).Coord(),
				Piece:  PieceJSON{Kind: pc.Kind(), Owner: pc.Owner()},
			})
		}
	}
	for c := Player1; c <= Player2; c++ {
		for k := ShogiKing; k < NumKinds; k++ {
			if n := p.Hands[c][k]; n > 0 {
				pj.Hands[c][k] = int(n)
			}
		}
	}
	return pj
}

// Position builds a position from its serialized form. The result is not
// validated; call Validate before searching it.
func (pj PositionJSON) Position() (*Position, error) {
	if pj.Width < 1 || pj.Width > MaxWidth || pj.Height < 1 || pj.Height > MaxHeight {
		return nil, fmt.Errorf("%w: board size %dx%d", ErrInvalidPosition, pj.Width, pj.Height)
	}
	if pj.SideToMove > Player2 {
		return nil, fmt.Errorf("%w: side to move %d", ErrInvalidPosition, pj.SideToMove)
	}
	rules := [2]RuleSet{ShogiRules(), ShogiRules()}
	for c, r := range pj.Rules {
		if c > Player2 {
			return nil, fmt.Errorf("%w: rules for unknown player", ErrInvalidPosition)
		}
		rules[c] = r
	}
	pos := NewPosition(pj.Width, pj.Height, rules[Player1], rules[Player2])
	for _, pp := range pj.Pieces {
		sq := pp.Square.Square()
		if !validCoord(pp.Square) || !pos.Contains(sq) {
			return nil, fmt.Errorf("%w: piece off board at (%d,%d)", ErrInvalidPosition, pp.Square.X, pp.Square.Y)
		}
		if pos.Squares[sq] != NoPiece {
			return nil, fmt.Errorf("%w: two pieces on %s", ErrInvalidPosition, sq)
		}
		pc := NewPiece(pp.Piece.Kind, pp.Piece.Owner)
		if pc == NoPiece {
			return nil, fmt.Errorf("%w: invalid piece on %s", ErrInvalidPosition, sq)
		}
		pos.Place(sq, pc)
	}
	for c, hand := range pj.Hands {
		if c > Player2 {
			return nil, fmt.Errorf("%w: hand for unknown player", ErrInvalidPosition)
		}
		for k, n := range hand {
			if n < 0 || n > MaxHandCount {
				return nil, fmt.Errorf("%w: %s holds %d %s", ErrInvalidPosition, c, n, k)
			}
			pos.setHand(c, k, n)
		}
	}
	pos.SetSideToMove(pj.SideToMove)
	pos.SetHistory(pj.History)
	return pos, nil
}

// MarshalJSON implements json.Marshaler.
func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToJSON())
}

// ParsePositionJSON decodes a serialized position.
func ParsePositionJSON(data []byte) (*Position, error) {
	var pj PositionJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	return pj.Position()
}
