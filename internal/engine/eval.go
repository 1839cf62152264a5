package engine

import (
	"fmt"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

// GamePhase is derived from the non-king material left on the board.
type GamePhase uint8

const (
	Opening GamePhase = iota
	Middlegame
	Endgame
)

func (p GamePhase) String() string {
	switch p {
	case Opening:
		return "opening"
	case Middlegame:
		return "middlegame"
	default:
		return "endgame"
	}
}

// Pawn structure penalties
const (
	doubledPawnPenalty  = 15
	isolatedPawnPenalty = 10
)

// Passed pawn bonuses by relative rank on a 9-rank board
// (index 0 = own back rank).
var passedPawnBonus = [board.MaxHeight]int{0, 0, 5, 10, 20, 35, 60, 100, 150}

// King safety
const (
	kingDefenderBonus    = 10
	kingEscapeBonus      = 5
	kingAttackerPenalty  = 15 // enemy piece within two squares
	handThreatPenalty    = 5  // per enemy hand piece that can be dropped
	handThreatCap        = 60
	endgameKingSafetyPct = 40
)

// Mobility
const (
	mobilityQuietWeight    = 1
	mobilityTacticalWeight = 2
	mobilityScale          = 2
)

const (
	bishopPairBonus       = 30
	rookOpenFileBonus     = 20
	rookSemiOpenFileBonus = 10
	developmentPenalty    = 12 // silver, bishop, rook or knight still in the back two ranks, opening only
)

// Terms is one player's evaluation, split by feature.
type Terms struct {
	Material    int
	PST         int
	Hand        int
	Pawns       int
	KingSafety  int
	Mobility    int
	Patterns    int
	Development int
}

// Total sums the terms.
func (t Terms) Total() int {
	return t.Material + t.PST + t.Hand + t.Pawns + t.KingSafety + t.Mobility + t.Patterns + t.Development
}

// Breakdown is a full evaluation of both players.
type Breakdown struct {
	Phase GamePhase
	Side  [2]Terms
}

// Score returns the evaluation from the point of view of player c.
func (b Breakdown) Score(c board.Color) int {
	return b.Side[c].Total() - b.Side[c.Other()].Total()
}

func (b Breakdown) String() string {
	row := func(name string, f func(Terms) int) string {
		return fmt.Sprintf("%-12s %7d %7d\n", name, f(b.Side[0]), f(b.Side[1]))
	}
	return fmt.Sprintf("%-12s %7s %7s\n", b.Phase, "Player1", "Player2") +
		row("material", func(t Terms) int { return t.Material }) +
		row("pst", func(t Terms) int { return t.PST }) +
		row("hand", func(t Terms) int { return t.Hand }) +
		row("pawns", func(t Terms) int { return t.Pawns }) +
		row("king", func(t Terms) int { return t.KingSafety }) +
		row("mobility", func(t Terms) int { return t.Mobility }) +
		row("patterns", func(t Terms) int { return t.Patterns }) +
		row("development", func(t Terms) int { return t.Development }) +
		row("total", Terms.Total)
}

// HandcraftedEvaluator scores positions from material, piece-square
// tables, hands, pawn structure, king safety, mobility and patterns.
// It caches pawn structure and is not safe for concurrent use.
type HandcraftedEvaluator struct {
	values          *PieceValues
	pstEnabled      bool
	openingMaterial int
	endgameMaterial int
	mobilityCap     int
	pawns           *PawnTable
}

// NewHandcraftedEvaluator builds the evaluator from configuration.
func NewHandcraftedEvaluator(cfg config.EvaluationConfig) (*HandcraftedEvaluator, error) {
	overrides, err := cfg.MaterialOverrides()
	if err != nil {
		return nil, err
	}
	return &HandcraftedEvaluator{
		values:          NewPieceValues(overrides, cfg.HandMultiplier),
		pstEnabled:      cfg.PSTEnabled,
		openingMaterial: cfg.OpeningMaterial,
		endgameMaterial: cfg.EndgameMaterial,
		mobilityCap:     cfg.MobilityCap,
		pawns:           NewPawnTable(1),
	}, nil
}

// Values returns the material values in use.
func (e *HandcraftedEvaluator) Values() *PieceValues {
	return e.values
}

// Clear empties the pawn structure cache.
func (e *HandcraftedEvaluator) Clear() {
	e.pawns.Clear()
}

// Evaluate returns the score for the side to move.
func (e *HandcraftedEvaluator) Evaluate(pos *board.Position) int {
	return clampEval(e.Breakdown(pos).Score(pos.SideToMove))
}

// Phase classifies the position by on-board non-king material.
func (e *HandcraftedEvaluator) Phase(pos *board.Position) GamePhase {
	total := 0
	for sq := 0; sq < board.NumSquares; sq++ {
		pc := pos.Squares[sq]
		if pc != board.NoPiece && !pc.Kind().IsKing() {
			total += e.values.Of(pc.Kind())
		}
	}
	switch {
	case total >= e.openingMaterial:
		return Opening
	case total <= e.endgameMaterial:
		return Endgame
	default:
		return Middlegame
	}
}

// fileInfo counts unpromoted pawns per file and player.
type fileInfo [2][board.MaxWidth]int

// Breakdown evaluates every term for both players.
func (e *HandcraftedEvaluator) Breakdown(pos *board.Position) Breakdown {
	b := Breakdown{Phase: e.Phase(pos)}
	var pawnFiles fileInfo
	var bishops [2]int

	for i := 0; i < board.NumSquares; i++ {
		pc := pos.Squares[i]
		if pc == board.NoPiece {
			continue
		}
		sq := board.Square(i)
		c, k := pc.Owner(), pc.Kind()
		t := &b.Side[c]

		if !k.IsKing() {
			t.Material += e.values.Of(k)
		}
		if e.pstEnabled {
			t.PST += pstValue(&pos.Grid, pc, sq)
		}
		switch k {
		case board.ShogiPawn, board.ChessPawn:
			pawnFiles[c][sq.X()]++
		case board.ShogiBishop, board.ShogiHorse, board.ChessBishop:
			bishops[c]++
		}
		if b.Phase == Opening && isDevelopingPiece(k) && pos.RelativeRank(c, sq.Y()) <= 1 {
			t.Development -= developmentPenalty
		}
	}

	for c := board.Player1; c <= board.Player2; c++ {
		t := &b.Side[c]
		for k := board.ShogiKing; k < board.NumKinds; k++ {
			if n := pos.Hand(c, k); n > 0 {
				t.Hand += n * e.values.Hand(k)
			}
		}
		t.KingSafety = e.kingSafety(pos, c, b.Phase)
		t.Mobility = e.mobility(pos, c)
		if bishops[c] >= 2 {
			t.Patterns += bishopPairBonus
		}
	}

	p1, p2 := e.pawnStructure(pos)
	b.Side[board.Player1].Pawns = p1
	b.Side[board.Player2].Pawns = p2

	e.rookFiles(pos, &pawnFiles, &b)
	return b
}

// isDevelopingPiece reports whether k is expected to leave its home ranks
// during the opening.
func isDevelopingPiece(k board.PieceKind) bool {
	switch k {
	case board.ShogiSilver, board.ShogiBishop, board.ShogiRook,
		board.ChessKnight, board.ChessBishop, board.ChessRook:
		return true
	}
	return false
}

// pawnStructure returns the doubled, isolated and passed pawn terms of
// both players, cached by pawn key.
func (e *HandcraftedEvaluator) pawnStructure(pos *board.Position) (p1, p2 int) {
	key := pos.PawnKey ^ (uint64(pos.Width)<<8|uint64(pos.Height))*0x9E3779B97F4A7C15
	if p1, p2, ok := e.pawns.Probe(key); ok {
		return p1, p2
	}

	var files fileInfo
	var pawns [2][]board.Square
	var buf [2][32]board.Square
	pawns[0], pawns[1] = buf[0][:0], buf[1][:0]
	for i := 0; i < board.NumSquares; i++ {
		pc := pos.Squares[i]
		if pc == board.NoPiece || !pc.Kind().IsPawn() {
			continue
		}
		c := pc.Owner()
		files[c][board.Square(i).X()]++
		pawns[c] = append(pawns[c], board.Square(i))
	}

	var score [2]int
	for c := board.Player1; c <= board.Player2; c++ {
		them := c.Other()
		for x := 0; x < pos.Width; x++ {
			if n := files[c][x]; n > 1 {
				score[c] -= doubledPawnPenalty * (n - 1)
			}
		}
		for _, sq := range pawns[c] {
			x := sq.X()
			left := x > 0 && files[c][x-1] > 0
			right := x < pos.Width-1 && files[c][x+1] > 0
			if !left && !right {
				score[c] -= isolatedPawnPenalty
			}
			if isPassed(pos, sq, c, pawns[them]) {
				rel := pos.RelativeRank(c, sq.Y()) + board.MaxHeight - pos.Height
				score[c] += passedPawnBonus[min(rel, board.MaxHeight-1)]
			}
		}
	}

	e.pawns.Store(key, score[0], score[1])
	return score[0], score[1]
}

// isPassed reports whether no enemy pawn stands ahead of sq on its own or
// an adjacent file.
func isPassed(pos *board.Position, sq board.Square, c board.Color, enemy []board.Square) bool {
	rank := pos.RelativeRank(c, sq.Y())
	for _, esq := range enemy {
		if abs(esq.X()-sq.X()) <= 1 && pos.RelativeRank(c, esq.Y()) > rank {
			return false
		}
	}
	return true
}

func (e *HandcraftedEvaluator) kingSafety(pos *board.Position, c board.Color, phase GamePhase) int {
	ksq := pos.KingSquare[c]
	if ksq == board.NoSquare {
		return 0
	}
	them := c.Other()
	kx, ky := ksq.X(), ksq.Y()
	score := 0

	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x, y := kx+dx, ky+dy
			if (dx == 0 && dy == 0) || !pos.OnBoard(x, y) {
				continue
			}
			sq := board.NewSquare(x, y)
			pc := pos.Squares[sq]
			adjacent := abs(dx) <= 1 && abs(dy) <= 1
			switch {
			case pc != board.NoPiece && pc.Owner() == them:
				score -= kingAttackerPenalty
			case !adjacent:
			case pc != board.NoPiece:
				score += kingDefenderBonus
			case !pos.IsAttacked(sq, them):
				score += kingEscapeBonus
			}
		}
	}

	if pos.Rules[them].CanDrop {
		inHand := 0
		for k := board.ShogiKing; k < board.NumKinds; k++ {
			inHand += pos.Hand(them, k)
		}
		score -= min(inHand*handThreatPenalty, handThreatCap)
	}

	if phase == Endgame {
		score = score * endgameKingSafetyPct / 100
	}
	return score
}

func (e *HandcraftedEvaluator) mobility(pos *board.Position, c board.Color) int {
	quiet, tactical := pos.MobilityCounts(c)
	m := (quiet*mobilityQuietWeight + tactical*mobilityTacticalWeight) * mobilityScale
	return min(m, e.mobilityCap)
}

// rookFiles rewards rooks on files without own pawns, more so without any.
func (e *HandcraftedEvaluator) rookFiles(pos *board.Position, files *fileInfo, b *Breakdown) {
	for i := 0; i < board.NumSquares; i++ {
		pc := pos.Squares[i]
		switch pc.Kind() {
		case board.ShogiRook, board.ShogiDragon, board.ChessRook:
		default:
			continue
		}
		c := pc.Owner()
		x := board.Square(i).X()
		switch {
		case files[c][x] == 0 && files[c.Other()][x] == 0:
			b.Side[c].Patterns += rookOpenFileBonus
		case files[c][x] == 0:
			b.Side[c].Patterns += rookSemiOpenFileBonus
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
