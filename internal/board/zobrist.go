package board

// MaxHandCount bounds the count of one kind a player can hold.
const MaxHandCount = 40

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][NumKinds][NumSquares]uint64
	zobristHand       [2][NumKinds][MaxHandCount + 1]uint64 // index 0 stays zero
	zobristSideToMove uint64                                // XOR when Player2 to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x5A0B17C3D00DF00D)

	for c := Player1; c <= Player2; c++ {
		for k := ShogiKing; k < NumKinds; k++ {
			for sq := 0; sq < NumSquares; sq++ {
				zobristPiece[c][k][sq] = rng.next()
			}
		}
	}

	for c := Player1; c <= Player2; c++ {
		for k := ShogiKing; k < NumKinds; k++ {
			for n := 1; n <= MaxHandCount; n++ {
				zobristHand[c][k][n] = rng.next()
			}
		}
	}

	zobristSideToMove = rng.next()
}

// ZobristPiece returns the key for a piece on a square.
func ZobristPiece(p Piece, sq Square) uint64 {
	return zobristPiece[p.Owner()][p.Kind()][sq]
}

// ZobristHand returns the key for holding n pieces of a kind.
func ZobristHand(c Color, k PieceKind, n int) uint64 {
	return zobristHand[c][k][n]
}

// ComputeHash recomputes the position and pawn keys from scratch.
func (p *Position) ComputeHash() (hash, pawnKey uint64) {
	for sq := 0; sq < NumSquares; sq++ {
		pc := p.Squares[sq]
		if pc == NoPiece {
			continue
		}
		key := ZobristPiece(pc, Square(sq))
		hash ^= key
		if pc.Kind().IsPawn() {
			pawnKey ^= key
		}
	}
	for c := Player1; c <= Player2; c++ {
		for k := ShogiKing; k < NumKinds; k++ {
			if n := int(p.Hands[c][k]); n > 0 && n <= MaxHandCount {
				hash ^= zobristHand[c][k][n]
			}
		}
	}
	if p.SideToMove == Player2 {
		hash ^= zobristSideToMove
	}
	return hash, pawnKey
}
