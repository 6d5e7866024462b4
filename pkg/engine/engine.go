// Package engine wires together board.Game, movegen, eval and search into the
// engine the protocol adapters in pkg/engine/uci and pkg/engine/console drive.
// It owns the mutable state a running engine needs across many searches: the
// current game, the transposition/killer/history tables (inside *search.Search),
// and the runtime Options a host can change via UCI's setoption.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/eval"
	"github.com/ravenhollow/corvid/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Hash size bounds in MB (spec.md section 6's `option name Hash ... min 1 max
// 256`). SetHash clamps out-of-range requests rather than rejecting them
// (spec.md section 7: ResourceOversubscription).
const (
	MinHash     = 1
	MaxHash     = 256
	DefaultHash = 1
)

// Options are the runtime-configurable engine parameters a UCI `setoption` or
// the console driver can change.
type Options struct {
	// Depth is the hard search depth limit. Zero means no limit beyond what a
	// `go` command itself requests.
	Depth int
	// Hash is the transposition table size in MB.
	Hash int
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%vMB}", o.Depth, o.Hash)
}

// Engine encapsulates game state, search and evaluation for one protocol
// driver. It is safe for concurrent use: every exported method that reads or
// changes game or search state takes the engine's mutex (Name, Author and Book
// return values fixed at construction), and a running search only ever touches its own cloned Game
// (spec.md section 5: "no data is shared between I/O and search besides
// [the stop] flag").
type Engine struct {
	name, author string

	zt   *board.ZobristTable
	seed int64
	ev   eval.Evaluator
	book Book

	mu     sync.Mutex
	opts   Options
	g      *board.Game
	s      *search.Search
	active bool
	done   chan struct{}
	lastPV search.PV
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithZobristSeed uses seed instead of the default (zero) seed for the
// Zobrist key table.
func WithZobristSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithBook equips the engine with a fixed opening book.
func WithBook(book Book) Option {
	return func(e *Engine) { e.book = book }
}

// WithOptions sets the initial runtime Options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// New constructs an Engine at the standard starting position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		opts:   Options{Hash: DefaultHash},
		book:   NoBook,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)
	e.ev = eval.NewEvaluator()

	if err := e.reset(ctx, fen.Initial); err != nil {
		logw.Exitf(ctx, "Invalid starting position: %v", err)
	}

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version, for UCI's `id name`.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author, for UCI's `id author`.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// SetDepth changes the engine's depth limit. 0 disables the limit.
func (e *Engine) SetDepth(depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Depth = depth
}

// SetHash resizes the transposition table, clamping to [MinHash, MaxHash]
// (spec.md section 7: ResourceOversubscription). Any active search is halted
// first, since the table is not safe for concurrent use (spec.md section 5).
func (e *Engine) SetHash(ctx context.Context, sizeMB int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked(ctx)

	if sizeMB < MinHash {
		sizeMB = MinHash
	}
	if sizeMB > MaxHash {
		sizeMB = MaxHash
	}
	e.opts.Hash = sizeMB
	e.s.TT = search.NewTable(ctx, uint64(sizeMB)<<20)
}

// Position returns the current position in FEN notation.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Encode(e.g.Position(), e.g.Turn(), e.g.Position().HalfmoveClock(), e.g.Fullmove())
}

// Game returns the engine's live Game. Callers must not mutate it concurrently
// with a running search; Halt first if one may be active.
func (e *Engine) Game() *board.Game {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g
}

// Reset rebuilds the engine at the given FEN, discarding the transposition
// table (a new position means old entries are worthless) along with the
// killer and history tables.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reset(ctx, position)
}

func (e *Engine) reset(ctx context.Context, position string) error {
	e.haltLocked(ctx)

	pos, turn, _, fullmove, err := fen.Decode(position, true)
	if err != nil {
		return err
	}

	e.g = board.NewGame(e.zt, pos, turn, fullmove)
	e.s = search.NewSearch(ctx, e.ev, uint64(e.opts.Hash)<<20)

	logw.Infof(ctx, "Reset to %v, options=%v", position, e.opts)
	return nil
}

// NewGame clears every table that must not leak information across games
// (spec.md section 6's `ucinewgame`), without otherwise touching the current
// position.
func (e *Engine) NewGame(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked(ctx)
	e.s.NewGame()

	logw.Infof(ctx, "New game")
}

// Move applies a single move, given in UCI coordinate notation, usually an
// opponent's move received via `position ... moves ...`. An unrecognized or
// illegal move string is a no-op that returns an error (spec.md section 7:
// IllegalMove is silently ignored by the caller, which stops applying further
// moves in the list).
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked(ctx)

	m, err := decodeMove(e.g.Position(), e.g.Turn(), move)
	if err != nil {
		return err
	}
	e.g.PushMove(m)

	logw.Infof(ctx, "Move %v: %v", move, e.Position())
	return nil
}

// TakeBack undoes the latest move, used by the console driver.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltLocked(ctx)

	if _, ok := e.g.PopMove(); !ok {
		return fmt.Errorf("no move to take back")
	}
	return nil
}

// Book returns the engine's opening book.
func (e *Engine) Book() Book {
	return e.book
}

// Go launches a search from the current position on its own goroutine, calling
// info for every completed iteration and done exactly once when the search
// finishes or is halted. Only one search may be active at a time.
func (e *Engine) Go(ctx context.Context, opt search.Options, info, done func(search.PV)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return fmt.Errorf("search already active")
	}
	if e.opts.Depth > 0 && (opt.DepthLimit <= 0 || opt.DepthLimit > e.opts.Depth) {
		opt.DepthLimit = e.opts.Depth
	}

	g := e.g.Clone()
	s := e.s
	e.active = true
	e.done = make(chan struct{})
	doneCh := e.done

	logw.Infof(ctx, "Go %v", opt)

	go func() {
		pv := s.Run(ctx, g, opt, info)

		e.mu.Lock()
		e.lastPV = pv
		e.active = false
		e.mu.Unlock()

		// done runs, and must complete, before doneCh closes: Halt's callers
		// block on doneCh and expect the final bestmove to already be written.
		if done != nil {
			done(pv)
		}
		close(doneCh)
	}()
	return nil
}

// Halt stops any active search and blocks until it has unwound, returning the
// last completed iteration's principal variation.
func (e *Engine) Halt(ctx context.Context) (search.PV, bool) {
	e.mu.Lock()
	if !e.active {
		pv := e.lastPV
		e.mu.Unlock()
		return pv, false
	}
	s, doneCh := e.s, e.done
	e.mu.Unlock()

	s.Stop()
	<-doneCh

	e.mu.Lock()
	defer e.mu.Unlock()
	logw.Infof(ctx, "Halted: %v", e.lastPV)
	return e.lastPV, true
}

// haltLocked is Halt's body for callers that already hold e.mu; it must not
// re-take the lock. Used before any command that mutates the Game or tables.
func (e *Engine) haltLocked(ctx context.Context) {
	if !e.active {
		return
	}
	s, doneCh := e.s, e.done
	e.mu.Unlock()
	s.Stop()
	<-doneCh
	e.mu.Lock()
}
