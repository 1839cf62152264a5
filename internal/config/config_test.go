package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hailam/shogiplay/internal/board"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Evaluation.HandMultiplier != 1.1 {
		t.Errorf("hand multiplier = %v, want 1.1", cfg.Evaluation.HandMultiplier)
	}
	if !cfg.Search.EnableNullMove || !cfg.Search.EnableLMR || !cfg.Search.EnablePVS {
		t.Error("pruning should be enabled by default")
	}
	if cfg.Search.DrawScore != 0 {
		t.Errorf("draw score = %d, want 0", cfg.Search.DrawScore)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"evaluation": {"pst_enabled": false, "material_values": {"ShogiGold": 650}},
		"search": {"max_depth": 3, "enable_lmr": false}
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Evaluation.PSTEnabled {
		t.Error("pst_enabled override ignored")
	}
	if cfg.Search.MaxDepth != 3 || cfg.Search.EnableLMR {
		t.Errorf("search overrides ignored: %+v", cfg.Search)
	}
	// Untouched fields keep their defaults.
	if !cfg.Search.EnableNullMove || cfg.Search.TTSizeMB != 64 {
		t.Errorf("defaults lost: %+v", cfg.Search)
	}

	over, err := cfg.Evaluation.MaterialOverrides()
	if err != nil {
		t.Fatal(err)
	}
	if over[board.ShogiGold] != 650 || len(over) != 1 {
		t.Errorf("overrides = %v", over)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"unknown field", `{"search": {"depth": 3}}`, "unknown field"},
		{"depth too deep", `{"search": {"max_depth": 100}}`, "max_depth"},
		{"zero depth", `{"search": {"max_depth": 0}}`, "max_depth"},
		{"negative tt", `{"search": {"tt_size_mb": -1}}`, "tt_size_mb"},
		{"bad evaluator", `{"evaluation": {"evaluator_type": "Oracle"}}`, "evaluator_type"},
		{"network without model", `{"evaluation": {"evaluator_type": "NeuralNetwork"}}`, "model_path"},
		{"bad material key", `{"evaluation": {"material_values": {"Wizard": 5}}}`, "Wizard"},
		{"bad strength", `{"search": {"strength": "godlike"}}`, "godlike"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Search.MaxDepth = 0
	cfg.Search.QuiescenceLimit = 99
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"max_depth", "quiescence_limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err = %q, missing %q", err, want)
		}
	}
}

func TestStrengthPresets(t *testing.T) {
	for _, st := range []Strength{Light, Medium, Strong} {
		s, err := DefaultSearch().WithStrength(st)
		if err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		p, _ := Preset(st)
		if s.MaxDepth != p.MaxDepth || s.MoveTime() != p.MoveTime {
			t.Errorf("%s: got depth %d time %v", st, s.MaxDepth, s.MoveTime())
		}
	}

	light, _ := Preset(Light)
	strong, _ := Preset(Strong)
	if light.MaxDepth >= strong.MaxDepth {
		t.Error("light should search shallower than strong")
	}

	cfg, err := Parse([]byte(`{"search": {"strength": "light"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.MaxDepth != light.MaxDepth || cfg.Search.MoveTime() != time.Second {
		t.Errorf("strength in JSON not applied: %+v", cfg.Search)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	cfg := Default()
	cfg.Search.MaxDepth = 5
	cfg.Evaluation.MaterialValues = map[string]int{"ChessQueen": 1700}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.Search != cfg.Search {
		t.Errorf("search = %+v, want %+v", back.Search, cfg.Search)
	}
	if back.Evaluation.MaterialValues["ChessQueen"] != 1700 {
		t.Errorf("material values = %v", back.Evaluation.MaterialValues)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestBaseline(t *testing.T) {
	s := DefaultSearch().Baseline()
	if s.EnableNullMove || s.EnableLMR || s.EnablePVS || s.EnableAspiration || s.TTSizeMB != 0 {
		t.Errorf("baseline still prunes: %+v", s)
	}
	if !s.EnableQuiescence {
		t.Error("baseline should keep quiescence")
	}
}
