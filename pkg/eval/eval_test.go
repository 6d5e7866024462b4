package eval_test

import (
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/eval"
	"github.com/ravenhollow/corvid/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStartingPositionIsSymmetric(t *testing.T) {
	// Material, PST, mobility and pawn structure are identical for both sides at
	// the start; only the side-to-move tempo bonus should show up.
	pos, _, _, _, err := fen.Decode(fen.Initial, true)
	require.NoError(t, err)

	e := eval.NewEvaluator()
	assert.Equal(t, eval.DefaultWeights().Tempo, e.Evaluate(pos))
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	// White is up a rook.
	pos, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1", true)
	require.NoError(t, err)

	e := eval.NewEvaluator()
	assert.Greater(t, e.Evaluate(pos), board.Score(400))
}

func TestSEEWinningCapture(t *testing.T) {
	// White rook on d1 can take a hanging knight on d5.
	pos, _, _, _, err := fen.Decode("4k3/8/8/3n4/8/8/8/3RK3 w - - 0 1", true)
	require.NoError(t, err)

	var capture board.Move
	found := false
	for _, m := range movegen.GenerateAll(pos) {
		if m.From() == board.D1 && m.To() == board.D5 {
			capture = m
			found = true
		}
	}
	require.True(t, found, "expected Rd1xd5 to be a legal move")
	assert.Greater(t, eval.SEE(pos, capture), board.Score(0))
}
