package board

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Setup is a named starting layout. Rows run from Player2's back rank down;
// uppercase tokens belong to Player1, a "c" prefix marks a chess piece.
type Setup struct {
	Name    string
	Rows    []string
	P1Shogi bool
	P2Shogi bool
}

var setups = map[string]Setup{
	"shogi": {
		Name: "shogi", P1Shogi: true, P2Shogi: true,
		Rows: []string{
			"l n s g k g s n l",
			". r . . . . . b .",
			"p p p p p p p p p",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"P P P P P P P P P",
			". B . . . . . R .",
			"L N S G K G S N L",
		},
	},
	"chess": {
		Name: "chess",
		Rows: []string{
			"cr cn cb cq ck cq cb cn cr",
			"cp cp cp cp cp cp cp cp cp",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"CP CP CP CP CP CP CP CP CP",
			"CR CN CB CQ CK CQ CB CN CR",
		},
	},
	"mixed": {
		Name: "mixed", P1Shogi: true,
		Rows: []string{
			"cr cn cb cq ck cq cb cn cr",
			"cp cp cp cp cp cp cp cp cp",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"P P P P P P P P P",
			". B . . . . . R .",
			"L N S G K G S N L",
		},
	},
	"reversed-mixed": {
		Name: "reversed-mixed", P2Shogi: true,
		Rows: []string{
			"l n s g k g s n l",
			". r . . . . . b .",
			"p p p p p p p p p",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"CP CP CP CP CP CP CP CP CP",
			"CR CN CB CQ CK CQ CB CN CR",
		},
	},
	"fair": {
		Name: "fair", P1Shogi: true, P2Shogi: true,
		Rows: []string{
			"l n s g ck cq cb cn cr",
			". r . . . . . cb .",
			"p p p p p cp cp cp cp",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"P P P P P CP CP CP CP",
			". R . . . . . CB .",
			"L N S G CK CQ CB CN CR",
		},
	},
	"reversed-fair": {
		Name: "reversed-fair", P1Shogi: true, P2Shogi: true,
		Rows: []string{
			"cr cn cb cq ck g s n l",
			". cb . . . . . r .",
			"cp cp cp cp p p p p p",
			". . . . . . . . .",
			". . . . . . . . .",
			". . . . . . . . .",
			"CP CP CP CP P P P P P",
			". CB . . . . . R .",
			"CR CN CB CQ CK G S N L",
		},
	},
}

// SetupNames lists the built-in setups in sorted order.
func SetupNames() []string {
	names := make([]string, 0, len(setups))
	for name := range setups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSetup builds the named starting position.
func NewSetup(name string) (*Position, error) {
	s, ok := setups[name]
	if !ok {
		return nil, fmt.Errorf("unknown setup %q", name)
	}
	return ParseSetup(s.Rows, rulesFor(s.P1Shogi), rulesFor(s.P2Shogi), s.P1Shogi, s.P2Shogi)
}

// StandardShogi returns the shogi starting position.
func StandardShogi() *Position {
	pos, _ := NewSetup("shogi")
	return pos
}

// StandardChess returns the chess starting position on a nine-file board.
func StandardChess() *Position {
	pos, _ := NewSetup("chess")
	return pos
}

// MixedShogiChess returns the position with a shogi army for Player1 facing a
// chess army.
func MixedShogiChess() *Position {
	pos, _ := NewSetup("mixed")
	return pos
}

func rulesFor(shogi bool) RuleSet {
	if shogi {
		return ShogiRules()
	}
	return ChessRules()
}

// ParseSetup builds a position from setup rows. Single-letter tokens are
// shogi pieces for a shogi player and chess pieces otherwise.
func ParseSetup(rows []string, p1, p2 RuleSet, p1Shogi, p2Shogi bool) (*Position, error) {
	height := len(rows)
	if height == 0 || height > MaxHeight {
		return nil, fmt.Errorf("setup has %d rows, want 1-%d", height, MaxHeight)
	}
	width := len(strings.Fields(rows[0]))
	if width == 0 || width > MaxWidth {
		return nil, fmt.Errorf("setup has %d files, want 1-%d", width, MaxWidth)
	}

	pos := NewPosition(width, height, p1, p2)
	for y, row := range rows {
		tokens := strings.Fields(row)
		if len(tokens) != width {
			return nil, fmt.Errorf("setup row %d has %d files, want %d", y, len(tokens), width)
		}
		for x, tok := range tokens {
			if tok == "." {
				continue
			}
			letters := strings.TrimPrefix(tok, "+")
			if letters == "" {
				return nil, fmt.Errorf("setup row %d file %d: empty piece token", y, x)
			}
			owner := Player2
			if unicode.IsUpper(rune(letters[0])) {
				owner = Player1
			}
			shogi := p2Shogi
			if owner == Player1 {
				shogi = p1Shogi
			}
			k, err := parseSetupToken(tok, shogi)
			if err != nil {
				return nil, fmt.Errorf("setup row %d file %d: %w", y, x, err)
			}
			pos.Place(NewSquare(x, y), NewPiece(k, owner))
		}
	}
	return pos, nil
}

func parseSetupToken(tok string, shogi bool) (PieceKind, error) {
	lower := strings.ToLower(tok)
	switch lower {
	case "cp":
		return ChessPawn, nil
	case "ck":
		return ChessKing, nil
	case "cq":
		return ChessQueen, nil
	case "cr":
		return ChessRook, nil
	case "cb":
		return ChessBishop, nil
	case "cn":
		return ChessKnight, nil
	case "+r":
		return ShogiDragon, nil
	case "+b":
		return ShogiHorse, nil
	case "+s":
		return ShogiProSilver, nil
	case "+n":
		return ShogiProKnight, nil
	case "+l":
		return ShogiProLance, nil
	case "+p":
		return ShogiTokin, nil
	}
	if len(lower) != 1 {
		return NoKind, fmt.Errorf("unknown piece token %q", tok)
	}
	if shogi {
		switch lower[0] {
		case 'k':
			return ShogiKing, nil
		case 'r':
			return ShogiRook, nil
		case 'b':
			return ShogiBishop, nil
		case 'g':
			return ShogiGold, nil
		case 's':
			return ShogiSilver, nil
		case 'n':
			return ShogiKnight, nil
		case 'l':
			return ShogiLance, nil
		case 'p':
			return ShogiPawn, nil
		}
	} else {
		switch lower[0] {
		case 'k':
			return ChessKing, nil
		case 'q':
			return ChessQueen, nil
		case 'r':
			return ChessRook, nil
		case 'b':
			return ChessBishop, nil
		case 'n':
			return ChessKnight, nil
		case 'p':
			return ChessPawn, nil
		}
	}
	return NoKind, fmt.Errorf("unknown piece token %q", tok)
}
