package search_test

import (
	"context"
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/eval"
	"github.com/ravenhollow/corvid/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, f string) *board.Game {
	t.Helper()
	zt := board.NewZobristTable(0)
	pos, turn, _, fullmove, err := fen.Decode(f, true)
	require.NoError(t, err)
	return board.NewGame(zt, pos, turn, fullmove)
}

func TestSearchFindsMate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		fen       string
		depth     int
		mateMoves int // plies/2, rounded up, matching board.Score.String's M-notation
	}{
		{"k7/7R/6R1/8/8/8/8/7K w - - 0 1", 2, 1},
		{"7k/8/8/8/8/8/R7/1R5K w - - 0 1", 3, 2},
	}

	for _, tt := range tests {
		g := newGame(t, tt.fen)
		s := search.NewSearch(ctx, eval.NewEvaluator(), 1<<20)

		pv := s.Run(ctx, g, search.Options{DepthLimit: tt.depth}, nil)

		d, ok := pv.Score.MateDistance()
		require.Truef(t, ok, "expected a mate score for %v, got %v", tt.fen, pv.Score)
		assert.Equalf(t, tt.mateMoves, (d+1)/2, "wrong mate distance for %v", tt.fen)
		assert.NotEmpty(t, pv.Moves)
	}
}

func TestSearchStopIsRespected(t *testing.T) {
	ctx := context.Background()
	g := newGame(t, fen.Initial)
	s := search.NewSearch(ctx, eval.NewEvaluator(), 1<<20)

	s.Stop() // stopped before it ever starts: Run must still return a usable, if empty, PV.
	pv := s.Run(ctx, g, search.Options{DepthLimit: 6}, nil)
	assert.False(t, s.Searching())
	assert.GreaterOrEqual(t, pv.Depth, 0)
}

func TestSearchDoesNotMutateGame(t *testing.T) {
	ctx := context.Background()
	g := newGame(t, fen.Initial)
	before := *g.Position()
	beforeHash := g.Hash()

	s := search.NewSearch(ctx, eval.NewEvaluator(), 1<<20)
	s.Run(ctx, g, search.Options{DepthLimit: 3}, nil)

	assert.Equal(t, before, *g.Position())
	assert.Equal(t, beforeHash, g.Hash())
}
