package engine_test

import (
	"context"
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable(0)

	book, err := engine.NewBook(zt, []engine.Line{
		{"e2e4", "d7d5", "d2d4"},
		{"e2e4", "d7d6"},
		{"d2d4", "d7d6"},
	})
	require.NoError(t, err)

	newGame := func(position string) *board.Game {
		pos, turn, _, fullmove, err := fen.Decode(position, true)
		require.NoError(t, err)
		return board.NewGame(zt, pos, turn, fullmove)
	}

	tests := []struct {
		pos   string
		moves []string
	}{
		{fen.Initial, []string{"d2d4", "e2e4"}},
		{"rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 1", []string{"d7d6"}},
	}

	for _, tt := range tests {
		g := newGame(tt.pos)
		list, err := book.Find(ctx, g)
		require.NoError(t, err)

		var got []string
		for _, m := range list {
			got = append(got, encodeMoveForTest(g.Turn(), m))
		}
		assert.ElementsMatch(t, tt.moves, got)
	}
}

func encodeMoveForTest(turn board.Color, m board.Move) string {
	from, to := m.From(), m.To()
	if turn == board.Black {
		from, to = from.Flip(), to.Flip()
	}
	return from.String() + to.String()
}
