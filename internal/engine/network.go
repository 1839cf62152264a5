package engine

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/hailam/shogiplay/internal/board"
)

// Weight file format constants
const (
	NetworkMagic   = "SGNN"
	NetworkVersion = 1
)

// Feature layout: a one-hot piece code per square, normalized hand counts
// for both players, and a constant side-to-move input.
const (
	featurePieceTypes = 41 // empty, 20 own kinds, 20 opponent kinds
	boardFeatures     = board.NumSquares * featurePieceTypes
	handFeatureKinds  = 11
	handNormalizer    = 18.0
	NumFeatures       = boardFeatures + 2*handFeatureKinds + 1

	networkOutputScale = 10000
)

var handFeatureOrder = [handFeatureKinds]board.PieceKind{
	board.ShogiPawn, board.ShogiLance, board.ShogiKnight, board.ShogiSilver,
	board.ShogiGold, board.ShogiBishop, board.ShogiRook,
	board.ChessPawn, board.ChessKnight, board.ChessBishop, board.ChessRook,
}

// Own-piece codes; opponent pieces add 20.
var featureCode = [board.NumKinds]int{
	board.ShogiPawn:      1,
	board.ShogiLance:     2,
	board.ShogiKnight:    3,
	board.ShogiSilver:    4,
	board.ShogiGold:      5,
	board.ShogiBishop:    6,
	board.ShogiRook:      7,
	board.ShogiKing:      8,
	board.ShogiTokin:     9,
	board.ShogiProLance:  10,
	board.ShogiProKnight: 11,
	board.ShogiProSilver: 12,
	board.ShogiHorse:     13,
	board.ShogiDragon:    14,
	board.ChessPawn:      15,
	board.ChessKnight:    16,
	board.ChessBishop:    17,
	board.ChessRook:      18,
	board.ChessQueen:     19,
	board.ChessKing:      20,
}

// FileHeader is the header of the weight file.
type FileHeader struct {
	Magic   [4]byte
	Version uint32
	Inputs  uint32
	Hidden  uint32
}

// Network is a dense network with one ReLU hidden layer and a tanh output.
type Network struct {
	Hidden int

	W1 []float32 // NumFeatures x Hidden, row per input
	B1 []float32
	W2 []float32
	B2 float32
}

// NewNetwork creates a zero-weight network with the given hidden size.
func NewNetwork(hidden int) *Network {
	return &Network{
		Hidden: hidden,
		W1:     make([]float32, NumFeatures*hidden),
		B1:     make([]float32, hidden),
		W2:     make([]float32, hidden),
	}
}

// LoadNetwork loads network weights from a binary file.
// File format (little endian):
//   - Header: Magic "SGNN", Version, Inputs, Hidden (uint32 each)
//   - W1: Inputs * Hidden * float32
//   - B1: Hidden * float32
//   - W2: Hidden * float32
//   - B2: float32
func LoadNetwork(filename string) (*Network, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrModelNotFound, filename, err)
		}
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	net, err := ReadNetwork(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return net, nil
}

// ReadNetwork decodes a network in the weights file format.
func ReadNetwork(r io.Reader) (*Network, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != NetworkMagic {
		return nil, fmt.Errorf("invalid magic: expected %q, got %q", NetworkMagic, header.Magic[:])
	}
	if header.Version != NetworkVersion {
		return nil, fmt.Errorf("unsupported version: expected %d, got %d", NetworkVersion, header.Version)
	}
	if header.Inputs != NumFeatures {
		return nil, fmt.Errorf("input size mismatch: expected %d, got %d", NumFeatures, header.Inputs)
	}
	if header.Hidden == 0 || header.Hidden > 4096 {
		return nil, fmt.Errorf("hidden size %d out of range", header.Hidden)
	}

	n := NewNetwork(int(header.Hidden))
	if err := binary.Read(r, binary.LittleEndian, n.W1); err != nil {
		return nil, fmt.Errorf("failed to read input weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, n.B1); err != nil {
		return nil, fmt.Errorf("failed to read hidden bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, n.W2); err != nil {
		return nil, fmt.Errorf("failed to read output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.B2); err != nil {
		return nil, fmt.Errorf("failed to read output bias: %w", err)
	}
	return n, nil
}

// Write encodes the network in the weights file format.
func (n *Network) Write(w io.Writer) error {
	header := FileHeader{
		Version: NetworkVersion,
		Inputs:  NumFeatures,
		Hidden:  uint32(n.Hidden),
	}
	copy(header.Magic[:], NetworkMagic)
	for _, v := range []any{&header, n.W1, n.B1, n.W2, &n.B2} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write weights: %w", err)
		}
	}
	return nil
}

// Save writes the network to a file.
func (n *Network) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := n.Write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// forward returns the network output in [-1, 1] for the position seen by
// perspective. hidden is scratch space of length n.Hidden.
func (n *Network) forward(pos *board.Position, perspective board.Color, hidden []float32) float64 {
	copy(hidden, n.B1)
	add := func(feature int, v float32) {
		row := n.W1[feature*n.Hidden : (feature+1)*n.Hidden]
		for j := range hidden {
			hidden[j] += v * row[j]
		}
	}

	for y := 0; y < pos.Height; y++ {
		for x := 0; x < pos.Width; x++ {
			sq := board.NewSquare(x, y)
			code := 0
			if pc := pos.Squares[sq]; pc != board.NoPiece {
				code = featureCode[pc.Kind()]
				if pc.Owner() != perspective {
					code += 20
				}
			}
			add(int(sq)*featurePieceTypes+code, 1)
		}
	}

	for pi, c := range [2]board.Color{board.Player1, board.Player2} {
		for ki, k := range handFeatureOrder {
			count := pos.Hand(c, k)
			if count == 0 {
				continue
			}
			v := min(float32(count)/handNormalizer, 1)
			if c != perspective {
				v = -v
			}
			add(boardFeatures+pi*handFeatureKinds+ki, v)
		}
	}
	add(NumFeatures-1, 1)

	out := n.B2
	for j, h := range hidden {
		if h > 0 {
			out += h * n.W2[j]
		}
	}
	return math.Tanh(float64(out))
}

// NetworkEvaluator scores positions with a Network. The raw output is
// taken from both players' points of view and halved, so swapping the
// side to move negates the score exactly.
type NetworkEvaluator struct {
	net    *Network
	hidden []float32
}

// NewNetworkEvaluator wraps a loaded network.
func NewNetworkEvaluator(net *Network) *NetworkEvaluator {
	return &NetworkEvaluator{net: net, hidden: make([]float32, net.Hidden)}
}

// Evaluate returns the score for the side to move, within ±10000.
func (e *NetworkEvaluator) Evaluate(pos *board.Position) int {
	us := pos.SideToMove
	own := e.net.forward(pos, us, e.hidden)
	other := e.net.forward(pos, us.Other(), e.hidden)
	return int((own - other) * networkOutputScale / 2)
}
