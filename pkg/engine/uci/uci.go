// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/engine"
	"github.com/ravenhollow/corvid/pkg/movegen"
	"github.com/ravenhollow/corvid/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Option is a UCI driver option.
type Option func(*options)

type options struct {
	useBook bool
	rand    *rand.Rand
}

// UseBook instructs the driver to consult the engine's opening book while
// useBook is set, breaking ties among equally-good book lines with a random
// source seeded by seed.
func UseBook(seed int64) Option {
	return func(opt *options) {
		opt.useBook = true
		opt.rand = rand.New(rand.NewSource(seed))
	}
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	iox.AsyncCloser

	e   *engine.Engine
	opt options

	out chan<- string

	active atomic.Bool // bestmove still owed to the GUI for the current go
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		opt:         opt,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", engine.DefaultHash, engine.MinHash, engine.MaxHash)
	if d.opt.rand != nil {
		d.out <- fmt.Sprintf("option name OwnBook type check default %v", d.opt.useBook)
	}
	d.out <- "uciok"

	lastPosition := "" // last "position" line received, for the continuation optimization below.

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				d.out <- "readyok"

			case "debug":
				// No debug-mode output supported; accepted and ignored.

			case "setoption":
				name, value := parseSetOption(args)
				switch name {
				case "Hash":
					if n, err := strconv.Atoi(value); err == nil {
						d.e.SetHash(ctx, n)
					}
				case "OwnBook":
					if v, err := strconv.ParseBool(value); err == nil {
						d.opt.useBook = v
					}
				}

			case "register":
				// No registration required.

			case "ucinewgame":
				d.ensureInactive(ctx)
				d.e.NewGame(ctx)
				lastPosition = ""

			case "position":
				d.ensureInactive(ctx)

				if lastPosition != "" && strings.HasPrefix(line, lastPosition) {
					// Continuation of the same game: just push the new moves, keeping
					// the transposition, killer and history tables warm.

					rest := strings.TrimSpace(strings.TrimPrefix(line, lastPosition))
					for _, arg := range strings.Fields(rest) {
						if arg == "moves" {
							continue
						}
						if err := d.e.Move(ctx, arg); err != nil {
							logw.Warningf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
							break
						}
					}
					lastPosition = line
					break
				}

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}
				if err := d.e.Reset(ctx, position); err != nil {
					logw.Errorf(ctx, "Invalid position: %v", line)
					break
				}

				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}
					if err := d.e.Move(ctx, arg); err != nil {
						logw.Warningf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						break
					}
				}
				lastPosition = line

			case "go":
				d.handleGo(ctx, args)

			case "stop":
				d.ensureInactive(ctx)

			case "ponderhit":
				// Pondering is not implemented; never sent by this engine.

			case "quit":
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func parseSetOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	mode := 0 // 0=skip, 1=name, 2=value
	for _, a := range args {
		switch a {
		case "name":
			mode = 1
		case "value":
			mode = 2
		default:
			switch mode {
			case 1:
				nameParts = append(nameParts, a)
			case 2:
				valueParts = append(valueParts, a)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

// handleGo parses a `go` command's arguments into search.Options, consults the
// opening book if enabled, and otherwise launches the engine's search.
func (d *Driver) handleGo(ctx context.Context, args []string) {
	d.ensureInactive(ctx)

	var opt search.Options
	var perftDepth int
	isPerft := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			// Restricting the root move list is not supported; ignored.
		case "ponder":
			// Pondering is not implemented; treated as a normal go.
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "movetime", "mate":
			if i+1 >= len(args) {
				logw.Warningf(ctx, "No argument for %v", args[i])
				continue
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Warningf(ctx, "Invalid argument for %v: %v", args[i-1], err)
				continue
			}
			switch args[i-1] {
			case "wtime":
				opt.WhiteTime = time.Duration(n) * time.Millisecond
			case "btime":
				opt.BlackTime = time.Duration(n) * time.Millisecond
			case "winc":
				opt.WhiteInc = time.Duration(n) * time.Millisecond
			case "binc":
				opt.BlackInc = time.Duration(n) * time.Millisecond
			case "movestogo":
				opt.MovesToGo = n
			case "depth":
				opt.DepthLimit = n
			case "nodes":
				opt.NodeLimit = uint64(n)
			case "movetime":
				opt.MoveTime = time.Duration(n) * time.Millisecond
			}
		case "perft":
			isPerft = true
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil {
					perftDepth = n
					i++
				}
			}
		case "infinite":
			opt.Infinite = true
		default:
			// Silently ignore anything not handled.
		}
	}

	if isPerft {
		d.runPerft(ctx, perftDepth)
		return
	}

	if d.opt.useBook {
		g := d.e.Game()
		if moves, err := d.e.Book().Find(ctx, g); err == nil && len(moves) > 0 {
			winner := moves[d.opt.rand.Intn(len(moves))]
			d.active.Store(true)
			d.out <- fmt.Sprintf("bestmove %v", engine.EncodeMove(g.Turn(), winner))
			d.active.Store(false)
			return
		}
	}

	turn := d.e.Game().Turn()
	d.active.Store(true)
	err := d.e.Go(ctx, opt, func(pv search.PV) {
		if d.active.Load() {
			d.out <- printPV(turn, pv)
		}
	}, func(pv search.PV) {
		d.searchCompleted(turn, pv)
	})
	if err != nil {
		logw.Errorf(ctx, "Go failed: %v", err)
		d.active.Store(false)
		return
	}

	if opt.MoveTime > 0 {
		time.AfterFunc(opt.MoveTime, func() {
			_, _ = d.e.Halt(ctx)
		})
	}
}

// runPerft answers a non-standard "go perft <depth>" with a divide listing and
// a total node count, the shape perft-capable GUIs and test harnesses expect.
func (d *Driver) runPerft(ctx context.Context, depth int) {
	g := d.e.Game()
	turn := g.Turn()
	divide, total := movegen.PerftDivide(g.Position(), depth)

	for m, n := range divide {
		d.out <- fmt.Sprintf("%v: %v", engine.EncodeMove(turn, m), n)
	}
	d.out <- fmt.Sprintf("total: %v", total)
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

// searchCompleted emits the final info line and bestmove for a finished or
// halted search. Both the naturally-finished and halted-by-stop cases funnel
// through here via Engine.Go's done callback.
func (d *Driver) searchCompleted(turn board.Color, pv search.PV) {
	if !d.active.CAS(true, false) {
		return // stale: already reported.
	}

	if len(pv.Moves) > 0 {
		d.out <- printPV(turn, pv)
		d.out <- fmt.Sprintf("bestmove %v", engine.EncodeMove(turn, pv.Moves[0]))
	} else {
		d.out <- "bestmove 0000"
	}
}

func printPV(turn board.Color, pv search.PV) string {
	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if d, ok := pv.Score.MateDistance(); ok {
		moves := (d + 1) / 2
		if pv.Score < 0 {
			moves = -moves
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", engine.EncodePV(turn, pv.Moves))
	}
	return strings.Join(parts, " ")
}
