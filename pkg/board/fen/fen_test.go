package fen_test

import (
	"testing"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR b KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, tt := range tests {
		pos, turn, halfmove, fullmove, err := fen.Decode(tt, true)
		require.NoError(t, err)
		assert.Equal(t, tt, fen.Encode(pos, turn, halfmove, fullmove))
	}
}

func TestDecodeNoMoveNumbers(t *testing.T) {
	pos, turn, halfmove, fullmove, err := fen.Decode("8/8/8/4k3/4K3/8/8/8 w - -", false)
	require.NoError(t, err)
	assert.Equal(t, board.White, turn)
	assert.Equal(t, 0, halfmove)
	assert.Equal(t, 1, fullmove)
	assert.Equal(t, board.King, pos.PieceAt(board.E4))
}

func TestDecodeInvalid(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // missing black king
		"rnbqkbnr/pppppppp/8/8/8/8 w - - 0 1",
	}
	for _, tt := range tests {
		_, _, _, _, err := fen.Decode(tt, true)
		assert.Error(t, err, tt)
	}
}
