package board_test

import (
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, f string) *board.Game {
	t.Helper()
	zt := board.NewZobristTable(0)
	pos, turn, _, fullmove, err := fen.Decode(f, true)
	require.NoError(t, err)
	return board.NewGame(zt, pos, turn, fullmove)
}

func findMove(t *testing.T, pos *board.Position, from, to board.Square) board.Move {
	t.Helper()
	m, ok := movegen.FindMove(pos, from, to, board.NoPiece)
	require.True(t, ok, "no legal move %v%v", from, to)
	return m
}

func TestGamePushPopMoveRoundTrips(t *testing.T) {
	g := newTestGame(t, fen.Initial)
	before := *g.Position()
	beforeHash := g.Hash()

	m := findMove(t, g.Position(), board.E2, board.E4)
	g.PushMove(m)
	assert.NotEqual(t, beforeHash, g.Hash())

	popped, ok := g.PopMove()
	require.True(t, ok)
	assert.Equal(t, m, popped)
	assert.Equal(t, before, *g.Position())
	assert.Equal(t, beforeHash, g.Hash())
}

func TestGameThreefoldRepetition(t *testing.T) {
	g := newTestGame(t, fen.Initial)
	assert.False(t, g.IsThreefoldRepetition())

	// Black's moves are given in Position's side-relative frame (squares flipped).
	shuffle := func() {
		g.PushMove(findMove(t, g.Position(), board.G1, board.F3))
		g.PushMove(findMove(t, g.Position(), board.G8.Flip(), board.F6.Flip()))
		g.PushMove(findMove(t, g.Position(), board.F3, board.G1))
		g.PushMove(findMove(t, g.Position(), board.F6.Flip(), board.G8.Flip()))
	}

	shuffle()
	assert.False(t, g.IsThreefoldRepetition())
	shuffle()
	assert.True(t, g.IsThreefoldRepetition())
}

func TestGameCloneIsIndependent(t *testing.T) {
	g := newTestGame(t, fen.Initial)
	g.PushMove(findMove(t, g.Position(), board.E2, board.E4))

	clone := g.Clone()
	assert.Equal(t, *g.Position(), *clone.Position())
	assert.Equal(t, g.Hash(), clone.Hash())

	clone.PushMove(findMove(t, clone.Position(), board.E7.Flip(), board.E5.Flip()))
	assert.NotEqual(t, *g.Position(), *clone.Position())
	assert.NotEqual(t, g.Hash(), clone.Hash())
}
