package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
)

// ErrModelNotFound is wrapped when a network weights file does not exist.
var ErrModelNotFound = errors.New("evaluation model not found")

// Evaluator scores a position from the point of view of the side to move.
// Swapping the side to move negates the score.
//
// Evaluators keep scratch buffers and caches between calls and are not safe
// for concurrent use. Give each goroutine its own.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// NewEvaluator builds the evaluator selected by configuration. A network
// that fails to load is an error unless FallbackToHandcrafted is set, in
// which case the handcrafted evaluator is returned instead.
func NewEvaluator(cfg config.EvaluationConfig) (Evaluator, error) {
	switch cfg.EvaluatorType {
	case config.Handcrafted, "":
		return NewHandcraftedEvaluator(cfg)
	case config.NeuralNetwork:
		net, err := LoadNetwork(cfg.ModelPath)
		if err != nil {
			if !cfg.FallbackToHandcrafted {
				return nil, err
			}
			log.Warn().Err(err).Str("model", cfg.ModelPath).Msg("network-unavailable-using-handcrafted")
			return NewHandcraftedEvaluator(cfg)
		}
		var ev Evaluator = NewNetworkEvaluator(net)
		if cfg.EvalCacheSize > 0 {
			ev = NewCachedEvaluator(ev, cfg.EvalCacheSize)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: unknown evaluator_type %q", config.ErrInvalidConfig, cfg.EvaluatorType)
	}
}
