// Package config holds the engine configuration: evaluator selection,
// evaluation weights and search limits. A Config is built once, validated,
// and passed by value to the components that need it.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/shogiplay/internal/board"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// EvaluatorType selects the static evaluator.
type EvaluatorType string

const (
	Handcrafted   EvaluatorType = "Handcrafted"
	NeuralNetwork EvaluatorType = "NeuralNetwork"
)

// Strength is a named preset of search limits.
type Strength string

const (
	Light  Strength = "light"
	Medium Strength = "medium"
	Strong Strength = "strong"
)

// StrengthPreset is the depth and per-move time a Strength maps to.
type StrengthPreset struct {
	MaxDepth int
	MoveTime time.Duration
}

var presets = map[Strength]StrengthPreset{
	Light:  {MaxDepth: 2, MoveTime: 1 * time.Second},
	Medium: {MaxDepth: 4, MoveTime: 3 * time.Second},
	Strong: {MaxDepth: 6, MoveTime: 10 * time.Second},
}

// Preset returns the limits of a strength level.
func Preset(s Strength) (StrengthPreset, error) {
	p, ok := presets[s]
	if !ok {
		return StrengthPreset{}, fmt.Errorf("%w: unknown strength %q", ErrInvalidConfig, s)
	}
	return p, nil
}

// Limits beyond which a search could overrun the ply stack.
const (
	MaxSearchDepth      = 64
	MaxQuiescenceLimit  = 32
	maxHandMultiplier   = 10.0
	defaultTTSizeMB     = 64
	defaultEvalCacheLen = 1 << 16
)

// Config is the complete engine configuration.
type Config struct {
	Version    string           `json:"version"`
	Evaluation EvaluationConfig `json:"evaluation"`
	Search     SearchConfig     `json:"search"`
}

// EvaluationConfig controls how positions are scored.
type EvaluationConfig struct {
	EvaluatorType         EvaluatorType  `json:"evaluator_type"`
	ModelPath             string         `json:"model_path,omitempty"`
	FallbackToHandcrafted bool           `json:"fallback_to_handcrafted"`
	EvalCacheSize         int            `json:"eval_cache_size"`
	PSTEnabled            bool           `json:"pst_enabled"`
	HandMultiplier        float64        `json:"hand_piece_bonus_multiplier"`
	MaterialValues        map[string]int `json:"material_values,omitempty"`
	OpeningMaterial       int            `json:"opening_material"`
	EndgameMaterial       int            `json:"endgame_material"`
	MobilityCap           int            `json:"mobility_cap"`
}

// SearchConfig controls the search limits and pruning features.
type SearchConfig struct {
	MaxDepth         int      `json:"max_depth"`
	MoveTimeMs       int      `json:"move_time_ms"`
	MaxNodes         uint64   `json:"max_nodes"`
	TTSizeMB         int      `json:"tt_size_mb"`
	EnableNullMove   bool     `json:"enable_null_move"`
	EnableLMR        bool     `json:"enable_lmr"`
	EnablePVS        bool     `json:"enable_pvs"`
	EnableAspiration bool     `json:"enable_aspiration"`
	EnableQuiescence bool     `json:"enable_quiescence"`
	QuiescenceLimit  int      `json:"quiescence_limit"`
	DrawScore        int      `json:"draw_score"`
	Strength         Strength `json:"strength,omitempty"`
}

// MoveTime returns the per-move budget, zero meaning unlimited.
func (s SearchConfig) MoveTime() time.Duration {
	return time.Duration(s.MoveTimeMs) * time.Millisecond
}

// WithStrength returns a copy with depth and time taken from a preset.
func (s SearchConfig) WithStrength(st Strength) (SearchConfig, error) {
	p, err := Preset(st)
	if err != nil {
		return s, err
	}
	s.Strength = st
	s.MaxDepth = p.MaxDepth
	s.MoveTimeMs = int(p.MoveTime / time.Millisecond)
	return s, nil
}

// Baseline returns a copy with every pruning and window heuristic turned
// off and the transposition table disabled. Quiescence is kept as is.
func (s SearchConfig) Baseline() SearchConfig {
	s.EnableNullMove = false
	s.EnableLMR = false
	s.EnablePVS = false
	s.EnableAspiration = false
	s.TTSizeMB = 0
	return s
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version: "1.0",
		Evaluation: EvaluationConfig{
			EvaluatorType:   Handcrafted,
			EvalCacheSize:   defaultEvalCacheLen,
			PSTEnabled:      true,
			HandMultiplier:  1.1,
			OpeningMaterial: 9000,
			EndgameMaterial: 4000,
			MobilityCap:     150,
		},
		Search: DefaultSearch(),
	}
}

// DefaultSearch returns the default search settings.
func DefaultSearch() SearchConfig {
	return SearchConfig{
		MaxDepth:         6,
		MoveTimeMs:       3000,
		TTSizeMB:         defaultTTSizeMB,
		EnableNullMove:   true,
		EnableLMR:        true,
		EnablePVS:        true,
		EnableAspiration: true,
		EnableQuiescence: true,
		QuiescenceLimit:  16,
	}
}

// Parse decodes JSON on top of the defaults, so absent fields keep their
// default values. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.Search.Strength != "" {
		s, err := cfg.Search.WithStrength(cfg.Search.Strength)
		if err != nil {
			return Config{}, err
		}
		cfg.Search = s
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	e := c.Evaluation
	switch e.EvaluatorType {
	case Handcrafted:
	case NeuralNetwork:
		if e.ModelPath == "" {
			add("evaluator %s needs model_path", e.EvaluatorType)
		}
	default:
		add("unknown evaluator_type %q", e.EvaluatorType)
	}
	if e.EvalCacheSize < 0 {
		add("eval_cache_size %d is negative", e.EvalCacheSize)
	}
	if e.HandMultiplier < 0 || e.HandMultiplier > maxHandMultiplier {
		add("hand_piece_bonus_multiplier %.2f out of range [0, %.0f]", e.HandMultiplier, maxHandMultiplier)
	}
	if e.EndgameMaterial < 0 || e.OpeningMaterial <= e.EndgameMaterial {
		add("phase thresholds: opening_material %d must exceed endgame_material %d", e.OpeningMaterial, e.EndgameMaterial)
	}
	if e.MobilityCap < 0 {
		add("mobility_cap %d is negative", e.MobilityCap)
	}
	if _, err := e.MaterialOverrides(); err != nil {
		errs = append(errs, err)
	}

	s := c.Search
	if s.MaxDepth < 1 || s.MaxDepth > MaxSearchDepth {
		add("max_depth %d out of range [1, %d]", s.MaxDepth, MaxSearchDepth)
	}
	if s.MoveTimeMs < 0 {
		add("move_time_ms %d is negative", s.MoveTimeMs)
	}
	if s.TTSizeMB < 0 {
		add("tt_size_mb %d is negative", s.TTSizeMB)
	}
	if s.QuiescenceLimit < 0 || s.QuiescenceLimit > MaxQuiescenceLimit {
		add("quiescence_limit %d out of range [0, %d]", s.QuiescenceLimit, MaxQuiescenceLimit)
	}
	if s.DrawScore < -1000 || s.DrawScore > 1000 {
		add("draw_score %d out of range [-1000, 1000]", s.DrawScore)
	}
	if s.Strength != "" {
		if _, ok := presets[s.Strength]; !ok {
			add("unknown strength %q", s.Strength)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// MaterialOverrides resolves material_values keys to piece kinds.
// Keys are kind names such as "ShogiGold" or "ChessQueen".
func (e EvaluationConfig) MaterialOverrides() (map[board.PieceKind]int, error) {
	keys := lo.Keys(e.MaterialValues)
	sort.Strings(keys)

	out := make(map[board.PieceKind]int, len(keys))
	var errs []error
	for _, name := range keys {
		k, err := board.ParseKind(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("material_values: %w", err))
			continue
		}
		v := e.MaterialValues[name]
		if v < 0 || v > 50000 {
			errs = append(errs, fmt.Errorf("material_values: %s = %d out of range [0, 50000]", name, v))
			continue
		}
		out[k] = v
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return out, nil
}
