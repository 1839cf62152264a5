// Package protocol implements a line-based text protocol for driving the
// engine over stdin/stdout. Positions and moves travel as JSON.
//
// Commands:
//
//	newgame                      reset tables, back to the current setup
//	setup <name>                 load a built-in setup
//	position <json>              load a serialized position
//	move <json>                  play a move on the current position
//	go [depth N] [movetime MS] [nodes N] [strength S] [infinite]
//	stop                         stop the running search
//	isready                      answers readyok
//	eval                         static evaluation, stops a running search
//	d                            print the board
//	perft N                      count leaf nodes to depth N
//	quit
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/shogiplay/internal/board"
	"github.com/hailam/shogiplay/internal/config"
	"github.com/hailam/shogiplay/internal/engine"
)

// Handler runs the protocol for one engine.
type Handler struct {
	engine   *engine.Engine
	eval     engine.Evaluator
	cfg      config.Config
	setup    string
	position *board.Position

	out   io.Writer
	outMu sync.Mutex

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
}

// New creates a protocol handler writing responses to out. The engine must
// have been built around ev.
func New(eng *engine.Engine, ev engine.Evaluator, cfg config.Config, out io.Writer) *Handler {
	return &Handler{
		engine:   eng,
		eval:     ev,
		cfg:      cfg,
		setup:    "shogi",
		position: board.StandardShogi(),
		out:      out,
	}
}

// SetSetup selects the setup used by newgame and loads it.
func (h *Handler) SetSetup(name string) error {
	pos, err := board.NewSetup(name)
	if err != nil {
		return err
	}
	h.setup = name
	h.position = pos
	return nil
}

// Run reads commands from in until quit or end of input. A running search
// is allowed to finish at end of input and stopped on quit or when ctx is
// cancelled.
func (h *Handler) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		log.Debug().Str("component", "protocol").Str("cmd", cmd).Msg("command")

		switch cmd {
		case "isready":
			h.println("readyok")
		case "newgame":
			h.handleNewGame()
		case "setup":
			h.handleSetup(rest)
		case "position":
			h.handlePosition(rest)
		case "move":
			h.handleMove(rest)
		case "go":
			h.handleGo(ctx, strings.Fields(rest))
		case "stop":
			h.handleStop()
		case "quit":
			h.handleStop()
			return nil
		case "eval":
			h.handleEval()
		case "d":
			h.println(h.position.String())
		case "perft":
			h.handlePerft(rest)
		default:
			h.printf("info string unknown command %s", cmd)
		}
	}

	h.wait()
	return scanner.Err()
}

func (h *Handler) println(s string) {
	h.outMu.Lock()
	defer h.outMu.Unlock()
	fmt.Fprintln(h.out, s)
}

func (h *Handler) printf(format string, args ...any) {
	h.println(fmt.Sprintf(format, args...))
}

// handleNewGame resets the engine for a new game.
func (h *Handler) handleNewGame() {
	h.handleStop()
	h.engine.NewGame()
	if err := h.SetSetup(h.setup); err != nil {
		h.printf("info string %v", err)
	}
}

func (h *Handler) handleSetup(name string) {
	h.handleStop()
	if err := h.SetSetup(name); err != nil {
		h.printf("info string %v", err)
	}
}

func (h *Handler) handlePosition(data string) {
	h.handleStop()
	pos, err := board.ParsePositionJSON([]byte(data))
	if err != nil {
		h.printf("info string invalid position: %v", err)
		return
	}
	if err := pos.Validate(); err != nil {
		h.printf("info string %v", err)
		return
	}
	h.position = pos
}

func (h *Handler) handleMove(data string) {
	h.handleStop()
	m, err := board.UnmarshalMoveJSON([]byte(data))
	if err != nil {
		h.printf("info string invalid move: %v", err)
		return
	}
	if err := h.position.Apply(m); err != nil {
		h.printf("info string %s: %v", m, err)
	}
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Strength config.Strength
	Infinite bool
}

// ParseGoOptions parses "go" command arguments. Unknown tokens are ignored.
func ParseGoOptions(args []string) (GoOptions, error) {
	var opts GoOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "infinite" {
			opts.Infinite = true
			continue
		}
		if i+1 >= len(args) {
			break
		}
		value := args[i+1]
		var err error
		switch arg {
		case "depth":
			opts.Depth, err = strconv.Atoi(value)
		case "nodes":
			opts.Nodes, err = strconv.ParseUint(value, 10, 64)
		case "movetime":
			var ms int
			ms, err = strconv.Atoi(value)
			opts.MoveTime = time.Duration(ms) * time.Millisecond
		case "strength":
			opts.Strength = config.Strength(value)
		default:
			continue
		}
		if err != nil {
			return GoOptions{}, fmt.Errorf("go %s: %w", arg, err)
		}
		i++
	}
	return opts, nil
}

// Limits applies the options on top of base search settings.
func (o GoOptions) Limits(base config.SearchConfig) (config.SearchConfig, error) {
	cfg := base
	if o.Strength != "" {
		var err error
		if cfg, err = cfg.WithStrength(o.Strength); err != nil {
			return cfg, err
		}
	}
	if o.Infinite {
		cfg.MaxDepth = config.MaxSearchDepth
		cfg.MoveTimeMs = 0
		cfg.MaxNodes = 0
	}
	if o.Depth > 0 {
		cfg.MaxDepth = min(o.Depth, config.MaxSearchDepth)
	}
	if o.MoveTime > 0 {
		cfg.MoveTimeMs = int(o.MoveTime / time.Millisecond)
	}
	if o.Nodes > 0 {
		cfg.MaxNodes = o.Nodes
	}
	return cfg, nil
}

// handleGo starts a search on a copy of the current position.
func (h *Handler) handleGo(ctx context.Context, args []string) {
	h.handleStop()

	opts, err := ParseGoOptions(args)
	if err != nil {
		h.printf("info string %v", err)
		return
	}
	cfg, err := opts.Limits(h.cfg.Search)
	if err != nil {
		h.printf("info string %v", err)
		return
	}

	pos := h.position.Copy()
	h.engine.OnInfo = func(info engine.SearchInfo) {
		h.sendInfo(info)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	h.cancel = cancel
	h.searchDone = done

	go func() {
		defer close(done)
		defer cancel()

		res, err := h.engine.Search(searchCtx, pos, cfg)
		if err != nil {
			h.printf("info string %v", err)
			h.println("bestmove null")
			return
		}
		if res.BestMove == board.NoMove {
			h.printf("info string no legal moves, score %s", engine.ScoreToString(res.Score))
			h.println("bestmove null")
			return
		}
		data, err := board.MarshalMoveJSON(res.BestMove, pos)
		if err != nil {
			h.printf("info string %v", err)
			h.println("bestmove null")
			return
		}
		h.printf("info string %s", res.Stats)
		h.printf("bestmove %s", data)
	}()
}

// sendInfo outputs one iteration of search progress.
func (h *Handler) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	switch {
	case info.Score >= engine.MateBound:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-info.Score+1)/2))
	case info.Score <= -engine.MateBound:
		parts = append(parts, fmt.Sprintf("score mate %d", -(engine.MateScore+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts,
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		pv := lo.Map(info.PV, func(m board.Move, _ int) string { return m.String() })
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	h.printf("info %s", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (h *Handler) handleStop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.wait()
}

func (h *Handler) wait() {
	if h.searchDone != nil {
		<-h.searchDone
		h.searchDone = nil
	}
}

// handleEval prints the static evaluation. Evaluators are not safe for
// concurrent use, so a running search is stopped first.
func (h *Handler) handleEval() {
	h.handleStop()
	score := h.engine.Evaluate(h.position)
	if b, ok := h.eval.(interface {
		Breakdown(*board.Position) engine.Breakdown
	}); ok {
		h.println(strings.TrimRight(b.Breakdown(h.position).String(), "\n"))
	}
	h.printf("eval %d (%s)", score, engine.ScoreToString(score))
}

// handlePerft runs a perft test.
func (h *Handler) handlePerft(arg string) {
	depth := 3
	if arg != "" {
		d, err := strconv.Atoi(arg)
		if err != nil || d < 0 {
			h.printf("info string invalid perft depth %q", arg)
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := engine.Perft(h.position.Copy(), depth)
	elapsed := time.Since(start)

	h.printf("nodes %d", nodes)
	h.printf("time %dms", elapsed.Milliseconds())
	if elapsed > 0 {
		h.printf("nps %.0f", float64(nodes)/elapsed.Seconds())
	}
}
