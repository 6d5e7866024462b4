package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
)

// Book represents a fixed opening book: a small, hand-curated set of known-good
// lines, not a learned or tuned one (spec.md section 1's non-goal is the
// latter; section 9.5's supplement is this, grounded in the teacher's own
// book.go, which is itself already just this).
type Book interface {
	// Find returns the candidate moves -- potentially empty -- for the given
	// Game's current position. Once empty, the caller should stop consulting
	// the book for the rest of the game.
	Find(ctx context.Context, g *board.Game) ([]board.Move, error)
}

// Line is a sequence of moves in UCI coordinate notation from the starting
// position, e.g. {"e2e4", "e7e5", "g1f3"}.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook is an empty opening book.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// NewBook builds an opening book from a set of lines, replaying each one from
// the starting position to validate it and to key every prefix by its cropped
// FEN (placement + turn + castling + en passant, the position-identity part
// of spec.md section 4.5's Zobrist hash, minus the clocks, so transpositions
// into the same book position still hit).
func NewBook(zt *board.ZobristTable, lines []Line) (Book, error) {
	dedup := map[string]map[board.Move]bool{}

	for _, line := range lines {
		pos, turn, _, fullmove, err := fen.Decode(fen.Initial, true)
		if err != nil {
			return nil, fmt.Errorf("invalid starting position: %v", err)
		}
		g := board.NewGame(zt, pos, turn, fullmove)

		for _, str := range line {
			key := cropFEN(fen.Encode(g.Position(), g.Turn(), 0, g.Fullmove()))

			m, err := decodeMove(g.Position(), g.Turn(), str)
			if err != nil {
				return nil, fmt.Errorf("invalid line %q: %v", line, err)
			}

			if dedup[key] == nil {
				dedup[key] = map[board.Move]bool{}
			}
			dedup[key][m] = true

			g.PushMove(m)
		}
	}

	moves := make(map[string][]board.Move, len(dedup))
	for k, v := range dedup {
		list := make([]board.Move, 0, len(v))
		for m := range v {
			list = append(list, m)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		moves[k] = list
	}
	return &book{moves: moves}, nil
}

type book struct {
	moves map[string][]board.Move // cropped fen -> candidate moves
}

func (b *book) Find(ctx context.Context, g *board.Game) ([]board.Move, error) {
	key := cropFEN(fen.Encode(g.Position(), g.Turn(), 0, g.Fullmove()))
	return b.moves[key], nil
}

// cropFEN strips the halfmove clock and fullmove number, the two fields that
// vary between otherwise-identical book positions reached by different move
// orders.
func cropFEN(s string) string {
	parts := strings.Fields(s)
	if len(parts) < 4 {
		return s
	}
	return strings.Join(parts[:4], " ")
}
