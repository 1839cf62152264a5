// Command shogiplay-engine runs the search engine behind the line protocol
// on stdin and stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/engine"
	"github.com/hailam/shogiplay/internal/protocol"
	"github.com/hailam/shogiplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "engine config file (JSON)")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile to this directory")
	logLevel   = flag.String("log-level", "info", "log level: trace, debug, info, warn, error")
	usePrefs   = flag.Bool("prefs", false, "load and save preferences in the data directory")
)

// defaultModelFile is the network loaded from the model directory when the
// preferences select the network evaluator without a path.
const defaultModelFile = "network.bin"

func main() {
	flag.Parse()
	setupLogging(*logLevel)

	if err := run(); err != nil {
		log.Error().Err(err).Msg("engine")
		os.Exit(1)
	}
}

// run serves the protocol until quit or end of input. Deferred cleanup
// runs before main exits.
func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profileDir := *cpuprofile
	if profileDir == "" {
		profileDir = os.Getenv("CPUPROFILE")
	}
	if profileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
		log.Info().Str("dir", profileDir).Msg("cpu-profiling-enabled")
	}

	var (
		store *storage.Storage
		prefs = storage.DefaultPreferences()
	)
	if *usePrefs {
		var err error
		if store, err = storage.NewStorage(); err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		if prefs, err = store.LoadPreferences(); err != nil {
			log.Warn().Err(err).Msg("load-preferences")
			prefs = storage.DefaultPreferences()
		}
		if *configPath == "" {
			*configPath = prefs.ConfigPath
		}
	}

	cfg, err := loadConfig(*configPath, prefs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ev, err := engine.NewEvaluator(cfg.Evaluation)
	if err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}
	eng := engine.NewEngine(ev, cfg.Search.TTSizeMB)

	h := protocol.New(eng, ev, cfg, os.Stdout)
	if err := h.SetSetup(prefs.Setup); err != nil {
		log.Warn().Err(err).Str("setup", prefs.Setup).Msg("unknown-setup")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := h.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}

	if store != nil {
		prefs.ConfigPath = *configPath
		if err := store.SavePreferences(prefs); err != nil {
			log.Warn().Err(err).Msg("save-preferences")
		}
	}
	return nil
}

// loadConfig reads the config file, or starts from the defaults with the
// preferred strength and evaluator when there is none. A preferred network
// without a path is looked up in the model directory.
func loadConfig(path string, prefs *storage.Preferences) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	if prefs.EvaluatorType != "" {
		cfg.Evaluation.EvaluatorType = prefs.EvaluatorType
		cfg.Evaluation.ModelPath = prefs.ModelPath
		cfg.Evaluation.FallbackToHandcrafted = true
		if cfg.Evaluation.EvaluatorType == config.NeuralNetwork && cfg.Evaluation.ModelPath == "" {
			dir, err := storage.GetModelDir()
			if err != nil {
				return cfg, err
			}
			cfg.Evaluation.ModelPath = filepath.Join(dir, defaultModelFile)
		}
	}
	if prefs.Strength != "" {
		var err error
		if cfg.Search, err = cfg.Search.WithStrength(prefs.Strength); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	// stdout carries the protocol, so logs go to stderr.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}
