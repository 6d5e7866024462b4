package movegen_test

import (
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/ravenhollow/corvid/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) *board.Position {
	t.Helper()
	pos, _, _, _, err := fen.Decode(s, true)
	require.NoError(t, err)
	return pos
}

// Perft results are the published values from
// https://www.chessprogramming.org/Perft_Results (also spec.md section 8). Depths are
// capped below the full published depth so the suite runs in a reasonable time; cmd/perft
// exercises the deeper counts on demand.
func TestPerftStartingPosition(t *testing.T) {
	pos := decode(t, fen.Initial)
	want := []uint64{20, 400, 8902, 197281}
	for depth, w := range want {
		assert.Equal(t, w, movegen.Perft(pos, depth+1), "depth %v", depth+1)
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	want := []uint64{48, 2039, 97862}
	for depth, w := range want {
		assert.Equal(t, w, movegen.Perft(pos, depth+1), "depth %v", depth+1)
	}
}

func TestPerftPosition3(t *testing.T) {
	pos := decode(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	want := []uint64{14, 191, 2812, 43238}
	for depth, w := range want {
		assert.Equal(t, w, movegen.Perft(pos, depth+1), "depth %v", depth+1)
	}
}

// End-to-end scenario 2 from spec.md section 8: divide at Kiwipete depth 3 sums to 97862.
func TestPerftDivideKiwipete(t *testing.T) {
	pos := decode(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	_, total := movegen.PerftDivide(pos, 3)
	assert.Equal(t, uint64(97862), total)
}

// Scenario 4: after 1.e4 a6 2.e5 d5, White's capture generator must include e5d6 en
// passant.
func TestEnPassantCaptureGenerated(t *testing.T) {
	pos := decode(t, fen.Initial)
	for i, mv := range []string{"e2e4", "a7a6", "e4e5", "d7d5"} {
		m, err := board.ParseMove(mv)
		require.NoError(t, err)
		from, to := m.From(), m.To()
		if i%2 == 1 { // Black's move: Position squares are side-relative.
			from, to = from.Flip(), to.Flip()
		}
		found, ok := movegen.FindMove(pos, from, to, board.NoPiece)
		require.True(t, ok, mv)
		next, _ := pos.MakeMove(found)
		pos = &next
	}

	captures := movegen.Generate(pos, movegen.AllCaptures, nil)
	var found bool
	for _, m := range captures {
		if m.Type() == board.EnPassantCapture && m.From() == board.E5 && m.To() == board.D6 {
			found = true
		}
	}
	assert.True(t, found, "expected e5d6 en passant capture, got %v", captures)
}

// Scenario 5: after 1.e4 e5 2.Ke2 a6, neither White castling move is legal, even though
// White's king and both rooks are still on the board.
func TestCastlingRightsLostAfterKingMove(t *testing.T) {
	pos := decode(t, fen.Initial)
	for i, mv := range []string{"e2e4", "e7e5", "e1e2", "a7a6"} {
		m, err := board.ParseMove(mv)
		require.NoError(t, err)
		from, to := m.From(), m.To()
		if i%2 == 1 { // Black's move: Position squares are side-relative.
			from, to = from.Flip(), to.Flip()
		}
		found, ok := movegen.FindMove(pos, from, to, board.NoPiece)
		require.True(t, ok, mv)
		next, _ := pos.MakeMove(found)
		pos = &next
	}

	// White to move again; the king walk should have forfeited both castling rights.
	require.False(t, pos.CanCastleKingSide())
	require.False(t, pos.CanCastleQueenSide())
	for _, m := range movegen.GenerateAll(pos) {
		assert.NotEqual(t, board.KingSideCastle, m.Type())
		assert.NotEqual(t, board.QueenSideCastle, m.Type())
	}
}

func TestNoLegalMovesCheckmate(t *testing.T) {
	pos := decode(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	m, err := board.ParseMove("a1a8")
	require.NoError(t, err)
	found, ok := movegen.FindMove(pos, m.From(), m.To(), board.NoPiece)
	require.True(t, ok)
	next, _ := pos.MakeMove(found)

	assert.False(t, movegen.HasLegalMove(&next))
	assert.True(t, next.IsChecked())
}

func TestStalemateHasNoLegalMoves(t *testing.T) {
	pos := decode(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.False(t, movegen.HasLegalMove(pos))
	assert.False(t, pos.IsChecked())
}

func TestCastlingThroughCheckIsIllegal(t *testing.T) {
	// Black rooks on d8 and f8 cover d1 and f1, squares the White king crosses when
	// castling queenside and kingside; the king itself is not in check.
	pos := decode(t, "k2r1r2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	for _, m := range movegen.GenerateAll(pos) {
		assert.NotEqual(t, board.KingSideCastle, m.Type())
		assert.NotEqual(t, board.QueenSideCastle, m.Type())
	}
}
