package board

// RuleSet holds one player's capabilities, allowing asymmetric games.
type RuleSet struct {
	CanCapture   bool `json:"can_capture"`
	CanPromote   bool `json:"can_promote"`
	CanDrop      bool `json:"can_drop"`
	KeepCaptured bool `json:"keep_captured"`
}

// ShogiRules enables captures, promotion, drops and keeping captured pieces.
func ShogiRules() RuleSet {
	return RuleSet{CanCapture: true, CanPromote: true, CanDrop: true, KeepCaptured: true}
}

// ChessRules only allows captures. Chess pawns still promote on the last rank.
func ChessRules() RuleSet {
	return RuleSet{CanCapture: true}
}

type vec struct{ dx, dy int }

// movement describes a kind from Player1's point of view (forward is dy<0).
type movement struct {
	steps  []vec // single steps, adjacent or jumping
	slides []vec // repeated until blocked
}

var (
	orthogonal = []vec{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	diagonal   = []vec{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	allDirs    = append(append([]vec{}, orthogonal...), diagonal...)
	goldSteps  = []vec{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}
)

var movements = [NumKinds]movement{
	ShogiKing:      {steps: allDirs},
	ShogiRook:      {slides: orthogonal},
	ShogiBishop:    {slides: diagonal},
	ShogiGold:      {steps: goldSteps},
	ShogiSilver:    {steps: []vec{{-1, -1}, {0, -1}, {1, -1}, {-1, 1}, {1, 1}}},
	ShogiKnight:    {steps: []vec{{-1, -2}, {1, -2}}},
	ShogiLance:     {slides: []vec{{0, -1}}},
	ShogiPawn:      {steps: []vec{{0, -1}}},
	ShogiDragon:    {steps: diagonal, slides: orthogonal},
	ShogiHorse:     {steps: orthogonal, slides: diagonal},
	ShogiProSilver: {steps: goldSteps},
	ShogiProKnight: {steps: goldSteps},
	ShogiProLance:  {steps: goldSteps},
	ShogiTokin:     {steps: goldSteps},
	ChessKing:      {steps: allDirs},
	ChessQueen:     {slides: allDirs},
	ChessRook:      {slides: orthogonal},
	ChessBishop:    {slides: diagonal},
	ChessKnight:    {steps: []vec{{-1, -2}, {1, -2}, {-2, -1}, {2, -1}, {-2, 1}, {2, 1}, {-1, 2}, {1, 2}}},
	// Chess pawns are generated separately; this entry lists capture directions.
	ChessPawn: {steps: []vec{{-1, -1}, {1, -1}}},
}

// Attack tables indexed by [owner][kind][dy+1][dx+1] for adjacent directions,
// plus jump lists for non-adjacent steps.
var (
	attackStep  [2][NumKinds][3][3]bool
	attackSlide [2][NumKinds][3][3]bool
	attackJumps [2][NumKinds][]vec
)

func init() {
	for c := Player1; c <= Player2; c++ {
		for k := ShogiKing; k < NumKinds; k++ {
			mv := movements[k]
			for _, v := range mv.steps {
				v = orient(v, c)
				if abs(v.dx) <= 1 && abs(v.dy) <= 1 {
					attackStep[c][k][v.dy+1][v.dx+1] = true
				} else {
					attackJumps[c][k] = append(attackJumps[c][k], v)
				}
			}
			for _, v := range mv.slides {
				v = orient(v, c)
				attackSlide[c][k][v.dy+1][v.dx+1] = true
			}
		}
	}
}

// orient flips a Player1-relative vector for Player2.
func orient(v vec, c Color) vec {
	if c == Player2 {
		return vec{-v.dx, -v.dy}
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
