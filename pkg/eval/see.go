package eval

import "github.com/ravenhollow/corvid/pkg/board"

// seePieceValue gives each piece type the nominal value used only by static exchange
// evaluation and capture ordering; kept separate from Weights.Material so the
// (unimplemented) tuner never perturbs the numbers SEE's correctness depends on.
var seePieceValue = [board.NumPieces + 1]board.Score{0, 100, 320, 330, 500, 900, 10000}

// CaptureValue returns the nominal value gained by playing m, used to order captures
// before a full SEE is computed (MVV ordering). En passant captures a pawn; a
// promoting capture additionally gains the promoted piece's value over a pawn's.
func CaptureValue(pos *board.Position, m board.Move) board.Score {
	var v board.Score
	if m.Type() == board.EnPassantCapture {
		v = seePieceValue[board.Pawn]
	} else {
		v = seePieceValue[pos.PieceAt(m.To())]
	}
	if m.IsPromotion() {
		v += seePieceValue[m.PromotionPiece()] - seePieceValue[board.Pawn]
	}
	return v
}

// SEE performs a static exchange evaluation of move m: it plays out every capture on
// m's target square in least-valuable-attacker order, alternating sides, and returns
// the net material gain for the side making m, assuming both sides always recapture
// with their cheapest attacker and stop the moment continuing would lose material.
// Adapted from the iterative swap algorithm
// (https://www.chessprogramming.org/SEE_-_The_Swap_Algorithm).
func SEE(pos *board.Position, m board.Move) board.Score {
	target := m.To()
	occ := pos.Occupied()

	var gain [32]board.Score
	gain[0] = CaptureValue(pos, m)

	targetType := pos.PieceAt(m.From())
	if m.IsPromotion() {
		targetType = m.PromotionPiece()
	}

	fromBit := board.BitMask(m.From())
	usToMove := pos.Us()&fromBit == 0
	occ &^= fromBit

	attackers := attackersTo(pos, occ, target) & occ

	d := 0
	for d < len(gain)-1 {
		mask := pos.Them() & occ
		if usToMove {
			mask = pos.Us() & occ
		}
		sq, pt, ok := leastValuableAttacker(pos, attackers&mask)
		if !ok {
			break
		}
		d++
		gain[d] = seePieceValue[targetType] - gain[d-1]
		if gain[d] < 0 {
			break
		}
		targetType = pt
		bit := board.BitMask(sq)
		occ &^= bit
		attackers &^= bit
		attackers |= attackersTo(pos, occ, target)
		attackers &= occ
		usToMove = !usToMove
	}

	for d > 0 {
		if -gain[d] < gain[d-1] {
			gain[d-1] = -gain[d]
		}
		d--
	}
	return gain[0]
}

// attackersTo returns every piece of either color attacking sq given occupancy occ,
// recomputing slider attacks fresh so it stays correct as SEE peels attackers off the
// board one at a time and uncovers batteries behind them.
func attackersTo(pos *board.Position, occ board.Bitboard, sq board.Square) board.Bitboard {
	var att board.Bitboard
	att |= board.KnightAttackboard(sq) & pos.Knights()
	att |= board.KingAttackboard(sq) & pos.Kings()
	att |= board.BishopAttackboard(occ, sq) & (pos.Bishops() | pos.Queens())
	att |= board.RookAttackboard(occ, sq) & (pos.Rooks() | pos.Queens())
	att |= board.PawnCaptureOrigins(board.White, board.BitMask(sq)) & pos.Pawns() & pos.Us()
	att |= board.PawnCaptureOrigins(board.Black, board.BitMask(sq)) & pos.Pawns() & pos.Them()
	return att & occ
}

// leastValuableAttacker returns the cheapest attacker in bb, by piece type.
func leastValuableAttacker(pos *board.Position, bb board.Bitboard) (board.Square, board.Piece, bool) {
	if bb == 0 {
		return 0, board.NoPiece, false
	}
	order := []struct {
		bb board.Bitboard
		p  board.Piece
	}{
		{pos.Pawns() & bb, board.Pawn},
		{pos.Knights() & bb, board.Knight},
		{pos.Bishops() & bb, board.Bishop},
		{pos.Rooks() & bb, board.Rook},
		{pos.Queens() & bb, board.Queen},
		{pos.Kings() & bb, board.King},
	}
	for _, o := range order {
		if o.bb != 0 {
			return o.bb.LastPopSquare(), o.p, true
		}
	}
	return 0, board.NoPiece, false
}
