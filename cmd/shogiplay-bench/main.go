// Command shogiplay-bench searches every built-in setup to a fixed depth,
// reports speed, and records the results so changes in search behavior
// between runs are flagged.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/engine"
	"github.com/hailam/shogiplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "engine config file (JSON)")
	fixtures   = flag.String("fixtures", "", "comma-separated setups to search (default all)")
	depth      = flag.Int("depth", 5, "search depth")
	nodes      = flag.Uint64("nodes", 0, "node limit per search, 0 for none")
	parallel   = flag.Int("parallel", 0, "concurrent searches, 0 for one per fixture")
	dbDir      = flag.String("db", "", "database directory (default: the data directory)")
	noRecord   = flag.Bool("no-record", false, "do not store results")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile to this directory")
	logLevel   = flag.String("log-level", "info", "log level")
)

type benchResult struct {
	fixture string
	hash    uint64
	result  engine.Result
}

func main() {
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile), profile.Quiet).Stop()
	}

	if err := run(context.Background()); err != nil {
		log.Error().Err(err).Msg("bench")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	// Fixed limits keep runs comparable.
	cfg.Search.MaxDepth = *depth
	cfg.Search.MoveTimeMs = 0
	cfg.Search.MaxNodes = *nodes
	if err := cfg.Validate(); err != nil {
		return err
	}

	names := board.SetupNames()
	if *fixtures != "" {
		names = lo.Uniq(lo.Compact(lo.Map(strings.Split(*fixtures, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})))
	}

	configHash, err := storage.Fingerprint(cfg)
	if err != nil {
		return err
	}

	results := make([]benchResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if *parallel > 0 {
		g.SetLimit(*parallel)
	}
	for i, name := range names {
		g.Go(func() error {
			pos, err := board.NewSetup(name)
			if err != nil {
				return err
			}
			// Evaluators keep caches, so each search gets its own.
			ev, err := engine.NewEvaluator(cfg.Evaluation)
			if err != nil {
				return err
			}
			res, err := engine.NewEngine(ev, cfg.Search.TTSizeMB).Search(gctx, pos, cfg.Search)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = benchResult{fixture: name, hash: pos.Hash, result: res}
			log.Debug().Str("fixture", name).Int("depth", res.Depth).Uint64("nodes", res.Nodes).Msg("fixture-done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printResults(results)

	if *noRecord {
		return nil
	}
	return record(results, configHash)
}

func printResults(results []benchResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "fixture\tdepth\tscore\tbest\tnodes\ttime\tknps\tebf")
	for _, r := range results {
		res := r.result
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\t%.0f\t%.2f\n",
			r.fixture, res.Depth, engine.ScoreToString(res.Score), res.BestMove,
			res.Nodes, res.Elapsed.Round(time.Millisecond), knps(res.Nodes, res.Elapsed),
			res.Stats.BranchingFactor())
	}
	total := lo.SumBy(results, func(r benchResult) uint64 { return r.result.Nodes })
	elapsed := lo.SumBy(results, func(r benchResult) time.Duration { return r.result.Elapsed })
	fmt.Fprintf(w, "total\t\t\t\t%d\t%s\t%.0f\t\n", total, elapsed.Round(time.Millisecond), knps(total, elapsed))
	w.Flush()
}

func knps(nodes uint64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(nodes) / d.Seconds() / 1000
}

func record(results []benchResult, configHash uint64) error {
	var (
		store *storage.Storage
		err   error
	)
	if *dbDir != "" {
		store, err = storage.Open(*dbDir)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		return err
	}
	defer store.Close()

	for _, r := range results {
		res := r.result
		rec := storage.SearchRecord{
			Fixture:    r.fixture,
			ConfigHash: configHash,
			Position:   r.hash,
			BestMove:   res.BestMove.String(),
			Score:      res.Score,
			Depth:      res.Depth,
			Nodes:      res.Nodes,
			ElapsedMs:  res.Elapsed.Milliseconds(),
		}
		prev, err := store.RecordSearch(rec, engine.IsMateScore(res.Score))
		if err != nil {
			return err
		}
		if prev != nil && !prev.SameResult(rec) {
			log.Warn().
				Str("fixture", r.fixture).
				Str("was", fmt.Sprintf("%s %d/%d", prev.BestMove, prev.Score, prev.Nodes)).
				Str("now", fmt.Sprintf("%s %d/%d", rec.BestMove, rec.Score, rec.Nodes)).
				Msg("result-changed")
		}
	}

	totals, err := store.LoadTotals()
	if err != nil {
		return err
	}
	log.Info().
		Int("searches", totals.Searches).
		Int("max-depth", totals.MaxDepth).
		Int("mates", totals.Mates).
		Float64("nps", totals.NodesPerSecond()).
		Msg("recorded")
	return nil
}
