package engine

import (
	"bytes"
	"errors"
	"io/fs"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

func randomNetwork(hidden int) *Network {
	r := rand.New(rand.NewPCG(1, 2))
	n := NewNetwork(hidden)
	for i := range n.W1 {
		n.W1[i] = float32(r.NormFloat64() * 0.05)
	}
	for i := range n.B1 {
		n.B1[i] = float32(r.NormFloat64() * 0.05)
		n.W2[i] = float32(r.NormFloat64() * 0.5)
	}
	n.B2 = 0.01
	return n
}

func TestNetworkSaveLoad(t *testing.T) {
	net := randomNetwork(16)
	path := filepath.Join(t.TempDir(), "weights.bin")
	if err := net.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadNetwork(path)
	if err != nil {
		t.Fatalf("LoadNetwork: %v", err)
	}
	if loaded.Hidden != net.Hidden || loaded.B2 != net.B2 {
		t.Fatalf("Header mismatch: hidden %d, b2 %f", loaded.Hidden, loaded.B2)
	}
	for i := range net.W1 {
		if loaded.W1[i] != net.W1[i] {
			t.Fatalf("W1[%d] differs", i)
		}
	}

	pos := mustNamedSetup(t, "mixed")
	a := NewNetworkEvaluator(net).Evaluate(pos)
	b := NewNetworkEvaluator(loaded).Evaluate(pos)
	if a != b {
		t.Errorf("Loaded network evaluates %d, original %d", b, a)
	}
}

func TestNetworkSymmetry(t *testing.T) {
	ev := NewNetworkEvaluator(randomNetwork(8))
	for _, name := range board.SetupNames() {
		pos := mustNamedSetup(t, name)
		pos.SetHand(board.Player2, board.ShogiSilver, 2)

		score := ev.Evaluate(pos)
		if score < -networkOutputScale || score > networkOutputScale {
			t.Errorf("%s: score %d out of range", name, score)
		}
		flipped := pos.Copy()
		flipped.SetSideToMove(board.Player2)
		if got := ev.Evaluate(flipped); got != -score {
			t.Errorf("%s: Expected %d with the other side to move, got %d", name, -score, got)
		}
	}
}

func TestReadNetworkRejectsBadFiles(t *testing.T) {
	var buf bytes.Buffer
	if err := randomNetwork(4).Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	bad := append([]byte(nil), data...)
	copy(bad, "XXXX")
	if _, err := ReadNetwork(bytes.NewReader(bad)); err == nil {
		t.Error("Expected an error for a bad magic")
	}

	if _, err := ReadNetwork(bytes.NewReader(data[:len(data)-10])); err == nil {
		t.Error("Expected an error for a truncated file")
	}

	if _, err := ReadNetwork(bytes.NewReader(data)); err != nil {
		t.Errorf("Unexpected error for a valid file: %v", err)
	}
}

func TestNewEvaluatorMissingModel(t *testing.T) {
	cfg := config.Default().Evaluation
	cfg.EvaluatorType = config.NeuralNetwork
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.bin")
	cfg.FallbackToHandcrafted = false

	_, err := NewEvaluator(cfg)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected the not-exist cause to be kept, got %v", err)
	}

	cfg.FallbackToHandcrafted = true
	ev, err := NewEvaluator(cfg)
	if err != nil {
		t.Fatalf("Expected a fallback evaluator, got %v", err)
	}
	if _, ok := ev.(*HandcraftedEvaluator); !ok {
		t.Errorf("Expected the handcrafted evaluator, got %T", ev)
	}
}

func TestNewEvaluatorNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.bin")
	if err := randomNetwork(8).Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cfg := config.Default().Evaluation
	cfg.EvaluatorType = config.NeuralNetwork
	cfg.ModelPath = path
	cfg.EvalCacheSize = 1024

	ev, err := NewEvaluator(cfg)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	if _, ok := ev.(*CachedEvaluator); !ok {
		t.Errorf("Expected a cached evaluator, got %T", ev)
	}

	cfg.EvaluatorType = "random"
	if _, err := NewEvaluator(cfg); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for an unknown type, got %v", err)
	}
}

type countingEvaluator struct {
	calls int
}

func (c *countingEvaluator) Evaluate(pos *board.Position) int {
	c.calls++
	return int(pos.Hash % 1000)
}

func TestCachedEvaluator(t *testing.T) {
	inner := &countingEvaluator{}
	ce := NewCachedEvaluator(inner, 100)
	if len(ce.entries) != 128 {
		t.Errorf("Expected 128 slots, got %d", len(ce.entries))
	}

	pos := mustNamedSetup(t, "shogi")
	a := ce.Evaluate(pos)
	b := ce.Evaluate(pos)
	if a != b || inner.calls != 1 {
		t.Errorf("Expected one inner call and equal scores, got %d calls, %d/%d", inner.calls, a, b)
	}
	if ce.HitRate() != 50 {
		t.Errorf("Expected 50%% hit rate, got %f", ce.HitRate())
	}

	ce.Clear()
	ce.Evaluate(pos)
	if inner.calls != 2 {
		t.Errorf("Expected a miss after Clear, got %d calls", inner.calls)
	}
}
