package search

import (
	"context"
	"math/bits"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/seekerror/logw"
)

// Bound classifies how an Entry's score relates to the true minimax value, the
// information a later probe needs to decide whether the stored score can be used
// directly or only to refine the alpha/beta window (spec.md section 3).
type Bound uint8

const (
	NoBound Bound = iota
	Exact
	UpperBound
	LowerBound
)

func (b Bound) String() string {
	switch b {
	case Exact:
		return "Exact"
	case UpperBound:
		return "Upper"
	case LowerBound:
		return "Lower"
	default:
		return "None"
	}
}

// Entry is one transposition table slot: a 64-bit key, depth, score, best move and
// bound type, plus an age used only for the replacement policy.
type Entry struct {
	Key   board.ZobristHash
	Depth int
	Score board.Score
	Move  board.Move
	Bound Bound
	Age   uint8
}

// Table is a fixed-size, directly-indexed transposition table keyed by hash modulo
// size. It is not safe for concurrent use: spec.md section 5 guarantees search has
// exactly one writer, so no locking or atomics are needed here.
type Table struct {
	entries []Entry
	mask    uint64
	age     uint8
	used    int
}

// NewTable allocates a table sized to the nearest power of two number of entries
// that fits within sizeBytes.
func NewTable(ctx context.Context, sizeBytes uint64) *Table {
	const entrySize = 32
	n := sizeBytes / entrySize
	if n < 1 {
		n = 1
	}
	shift := bits.Len64(n) - 1
	count := uint64(1) << uint(shift)

	logw.Infof(ctx, "Allocating %vMB transposition table with %v entries", sizeBytes>>20, count)

	return &Table{
		entries: make([]Entry, count),
		mask:    count - 1,
	}
}

// Size returns the table's nominal size in bytes, counting 32 bytes per entry as
// NewTable does when sizing it.
func (t *Table) Size() uint64 {
	return uint64(len(t.entries)) * 32
}

// Used returns the fraction of slots ever written, in [0, 1].
func (t *Table) Used() float64 {
	return float64(t.used) / float64(len(t.entries))
}

// Clear resets every slot, used on ucinewgame so stale entries from a previous game
// never leak into a new one.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.used = 0
	t.age = 0
}

// NewSearch bumps the table's age generation, called once per root search so the
// replacement policy prefers entries from the current search over stale ones left
// by a previous, now-irrelevant position.
func (t *Table) NewSearch() {
	t.age++
}

// Probe returns the entry stored for hash, if any.
func (t *Table) Probe(hash board.ZobristHash) (Entry, bool) {
	e := t.entries[uint64(hash)&t.mask]
	if e.Bound != NoBound && e.Key == hash {
		return e, true
	}
	return Entry{}, false
}

// Store writes an entry, skipping the write only when the existing slot is both at
// least as new and at least as deep; a strictly older or strictly shallower entry
// always yields (spec.md section 4.5).
func (t *Table) Store(hash board.ZobristHash, bound Bound, depth int, score board.Score, move board.Move) {
	idx := uint64(hash) & t.mask
	old := t.entries[idx]
	if old.Bound != NoBound && old.Age >= t.age && old.Depth >= depth {
		return
	}
	if old.Bound == NoBound {
		t.used++
	}
	if move == 0 && old.Key == hash {
		move = old.Move // preserve the known best move when a shallower write has none.
	}
	t.entries[idx] = Entry{
		Key:   hash,
		Depth: depth,
		Score: score,
		Move:  move,
		Bound: bound,
		Age:   t.age,
	}
}
