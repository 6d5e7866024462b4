// Package console contains an interactive driver for debugging the engine
// from a terminal, outside the UCI protocol.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/engine"
	"github.com/ravenhollow/corvid/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

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
			case "reset", "r":
				// reset [<fenstring>] moves ...

				d.ensureInactive(ctx)

				pos := fen.Initial
				if len(args) >= 6 && args[0] != "moves" {
					pos = strings.Join(args[0:6], " ")
				}
				if err := d.e.Reset(ctx, pos); err != nil {
					d.out <- fmt.Sprintf("invalid position: %v", line)
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
						d.out <- fmt.Sprintf("invalid move '%v': %v", arg, err)
						break
					}
				}
				d.printBoard(ctx)

			case "undo", "u":
				d.ensureInactive(ctx)

				_ = d.e.TakeBack(ctx)
				d.printBoard(ctx)

			case "print", "p":
				d.printBoard(ctx)

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt search.Options
				if len(args) > 0 {
					if depth, err := strconv.Atoi(args[0]); err == nil {
						opt.DepthLimit = depth
					}
				}

				turn := d.e.Game().Turn()
				d.active.Store(true)
				err := d.e.Go(ctx, opt, func(pv search.PV) {
					if d.active.Load() {
						d.out <- engine.EncodePV(turn, pv.Moves) + "  " + pv.String()
					}
				}, func(pv search.PV) {
					d.searchCompleted(ctx, turn, pv)
				})
				if err != nil {
					d.out <- fmt.Sprintf("analyze failed: %v", err)
					d.active.Store(false)
				}

			case "depth", "d":
				if len(args) > 0 {
					if depth, err := strconv.Atoi(args[0]); err == nil {
						d.e.SetDepth(depth)
					}
				}

			case "hash":
				if len(args) > 0 {
					if hash, err := strconv.Atoi(args[0]); err == nil {
						d.e.SetHash(ctx, hash)
					}
				}

			case "halt", "stop":
				pv, halted := d.e.Halt(ctx)
				if halted {
					d.searchCompleted(ctx, d.e.Game().Turn(), pv)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
				} else {
					d.printBoard(ctx)
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, turn board.Color, pv search.PV) {
	if !d.active.CAS(true, false) {
		return // stale or duplicate result.
	}

	if len(pv.Moves) > 0 {
		d.out <- fmt.Sprintf("bestmove %v", engine.EncodeMove(turn, pv.Moves[0]))
	} else {
		d.out <- "bestmove 0000"
	}
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard(ctx context.Context) {
	g := d.e.Game()
	p := g.Position()

	grid := make([][8]board.Placement, 8) // [rank][file]
	set := make([][8]bool, 8)
	for _, pl := range p.AbsolutePlacements(g.Turn()) {
		r, f := pl.Square.Rank(), pl.Square.File()
		grid[r][f] = pl
		set[r][f] = true
	}

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for rank := 7; rank >= 0; rank-- {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%v", rank+1))
		sb.WriteString(vertical)
		for file := 0; file < 8; file++ {
			if set[rank][file] {
				sb.WriteString(printPiece(grid[rank][file].Color, grid[rank][file].Piece))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen:    %v", d.e.Position())
	d.out <- fmt.Sprintf("result: %v, fullmove: %v, hash: 0x%x", g.Result(), g.Fullmove(), g.Hash())
	d.out <- ""
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return strings.ToLower(p.String())
}
