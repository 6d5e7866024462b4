package engine

import (
	"fmt"
	"strings"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/movegen"
)

// decodeMove parses a move string in UCI's physical coordinate notation (spec.md
// section 6: ranks are always absolute, never side-relative) and resolves it to
// the matching legal move of pos, whose squares are in Position's side-relative
// frame. board.ParseMove alone cannot do this -- it has no board context, so it
// can't disambiguate castling or en passant from a bare from/to pair, and it
// knows nothing of which physical color is "Us" right now -- which is why the
// lookup lives here, one layer above board, rather than as a Position method.
func decodeMove(pos *board.Position, turn board.Color, str string) (board.Move, error) {
	candidate, err := board.ParseMove(str)
	if err != nil {
		return 0, fmt.Errorf("invalid move: %v", err)
	}

	from, to := candidate.From(), candidate.To()
	if turn == board.Black {
		from, to = from.Flip(), to.Flip()
	}
	promo := board.NoPiece
	if candidate.IsPromotion() {
		promo = candidate.PromotionPiece()
	}

	m, ok := movegen.FindMove(pos, from, to, promo)
	if !ok {
		return 0, fmt.Errorf("illegal move: %v", str)
	}
	return m, nil
}

// encodeMove renders m -- played by turn, in pos's side-relative frame -- in
// UCI's physical coordinate notation.
func encodeMove(turn board.Color, m board.Move) string {
	from, to := m.From(), m.To()
	if turn == board.Black {
		from, to = from.Flip(), to.Flip()
	}
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", from, to, m.PromotionPiece())
	}
	return fmt.Sprintf("%v%v", from, to)
}

// encodePV renders a principal variation as a space-separated move string,
// alternating the physical side to move at each ply the way a PV itself does.
func encodePV(turn board.Color, moves []board.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = encodeMove(turn, m)
		turn = turn.Opponent()
	}
	return strings.Join(parts, " ")
}

// EncodeMove is the exported form of encodeMove, for protocol drivers in
// sibling packages (pkg/engine/uci, pkg/engine/console).
func EncodeMove(turn board.Color, m board.Move) string {
	return encodeMove(turn, m)
}

// EncodePV is the exported form of encodePV.
func EncodePV(turn board.Color, moves []board.Move) string {
	return encodePV(turn, moves)
}
