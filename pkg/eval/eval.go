// Package eval implements the static position evaluator: material, piece-square
// tables, mobility, pawn structure, piece-specific features, king safety and a
// tempo bonus, summed from the side to move's perspective (spec.md section 4.4).
// Static exchange evaluation, used by the search's capture ordering and pruning,
// lives alongside it in see.go.
package eval

import "github.com/ravenhollow/corvid/pkg/board"

// Weights holds every tunable coefficient the evaluator sums. The zero value is
// invalid; use DefaultWeights. Kept as a plain struct, not package constants, so a
// future tuner (explicitly out of scope here, see spec.md section 1) has a single
// value to mutate.
type Weights struct {
	Material [board.NumPieces + 1]board.Score

	KnightMobility    board.Score
	BishopMobility    board.Score
	RookVertMobility  board.Score
	RookHorMobility   board.Score

	DoubledPawn   board.Score
	TripledPawn   board.Score
	IsolatedPawn  board.Score
	BackwardPawn  board.Score
	ConnectedPawn board.Score
	FileIsland    board.Score
	PassedPawn    [8]board.Score

	BishopPair        board.Score
	UndefendedBishop   board.Score
	UndefendedKnight   board.Score
	KnightOutpost      board.Score

	RookOpenFile      board.Score
	RookSemiOpenFile  board.Score
	RookOn7th         board.Score
	RookConnected     board.Score
	RookDoubled       board.Score
	RookBehindPassed  board.Score

	KingShield        board.Score
	KingFileOpen      board.Score
	KingAdjFileOpen   board.Score
	KingAttacker      [board.NumPieces + 1]board.Score

	KingCenter      board.Score
	KingCenterRing  board.Score
	KingPawnTropism board.Score

	Tempo board.Score
}

// DefaultWeights returns the built-in coefficient set. Values follow the rough
// centipawn conventions common to bitboard engines in this family (pawn=100,
// knight/bishop≈320, rook=500, queen=900); they are starting points for the
// (unimplemented, out-of-scope) tuner, not claims of optimality.
func DefaultWeights() Weights {
	var w Weights
	w.Material[board.Pawn] = 100
	w.Material[board.Knight] = 320
	w.Material[board.Bishop] = 330
	w.Material[board.Rook] = 500
	w.Material[board.Queen] = 900
	w.Material[board.King] = 0

	w.KnightMobility = 4
	w.BishopMobility = 4
	w.RookVertMobility = 3
	w.RookHorMobility = 2

	w.DoubledPawn = -10
	w.TripledPawn = -20
	w.IsolatedPawn = -15
	w.BackwardPawn = -8
	w.ConnectedPawn = 6
	w.FileIsland = -4
	w.PassedPawn = [8]board.Score{0, 5, 10, 20, 35, 60, 100, 0}

	w.BishopPair = 35
	w.UndefendedBishop = -5
	w.UndefendedKnight = -5
	w.KnightOutpost = 18

	w.RookOpenFile = 20
	w.RookSemiOpenFile = 10
	w.RookOn7th = 20
	w.RookConnected = 8
	w.RookDoubled = 12
	w.RookBehindPassed = 15

	w.KingShield = 8
	w.KingFileOpen = -18
	w.KingAdjFileOpen = -10
	w.KingAttacker[board.Knight] = 15
	w.KingAttacker[board.Bishop] = 15
	w.KingAttacker[board.Rook] = 25
	w.KingAttacker[board.Queen] = 50

	w.KingCenter = 10
	w.KingCenterRing = 5
	w.KingPawnTropism = -4

	w.Tempo = 10
	return w
}

// Evaluator is a static position evaluator parameterized by Weights.
type Evaluator struct {
	W Weights
}

// NewEvaluator returns an Evaluator using the default coefficient set.
func NewEvaluator() Evaluator {
	return Evaluator{W: DefaultWeights()}
}

// side collects the pieces and derived bitboards for one color, reused across the
// per-feature helpers below so each only computes what it needs once.
type side struct {
	pawns, knights, bishops, rooks, queens, king board.Bitboard
	all                                          board.Bitboard
}

func newSide(pos *board.Position, us bool) side {
	mask := pos.Them()
	if us {
		mask = pos.Us()
	}
	return side{
		pawns:   pos.Pawns() & mask,
		knights: pos.Knights() & mask,
		bishops: pos.Bishops() & mask,
		rooks:   pos.Rooks() & mask,
		queens:  pos.Queens() & mask,
		king:    pos.Kings() & mask,
		all:     mask,
	}
}

// Evaluate returns the static score of pos from the side to move's perspective.
func (e Evaluator) Evaluate(pos *board.Position) board.Score {
	w := &e.W
	us := newSide(pos, true)
	them := newSide(pos, false)
	occ := pos.Occupied()

	var score board.Score
	score += materialScore(w, us) - materialScore(w, them)
	score += pstScore(w, us, false) - pstScore(w, them, true)
	score += mobilityScore(w, occ, us, them) - mobilityScore(w, occ, them, us)
	score += evalPawns(w, us.pawns, them.pawns)
	score += evalKnights(w, us, them)
	score += evalBishops(w, us, them)
	score += evalRooks(w, occ, us, them)
	score += evalKings(w, pos, us, them)
	score += w.Tempo

	return score
}

// Material returns only the material-balance term of Evaluate, from the side to
// move's perspective. Used by search's futility pruning (spec.md section 4.6),
// which reasons about material without paying for a full positional evaluation.
func (e Evaluator) Material(pos *board.Position) board.Score {
	us := newSide(pos, true)
	them := newSide(pos, false)
	return materialScore(&e.W, us) - materialScore(&e.W, them)
}

func materialScore(w *Weights, s side) board.Score {
	var sc board.Score
	sc += board.Score(s.pawns.PopCount()) * w.Material[board.Pawn]
	sc += board.Score(s.knights.PopCount()) * w.Material[board.Knight]
	sc += board.Score(s.bishops.PopCount()) * w.Material[board.Bishop]
	sc += board.Score(s.rooks.PopCount()) * w.Material[board.Rook]
	sc += board.Score(s.queens.PopCount()) * w.Material[board.Queen]
	return sc
}

// mobilityScore counts attacked squares for knights, bishops and rooks (rooks split
// into horizontal/vertical), excluding squares occupied by our own pieces, squares
// covered by the opponent's pawn attacks (squares we couldn't safely occupy add no
// information) and our own king's square, per spec.md section 4.4.
func mobilityScore(w *Weights, occ board.Bitboard, s, opp side) board.Score {
	excl := s.all | board.PawnCaptureboard(board.White, opp.pawns) | s.king

	var sc board.Score
	bb := s.knights
	for bb != 0 {
		sq, rest := bb.PopLSB()
		bb = rest
		sc += board.Score((board.KnightAttackboard(sq) &^ excl).PopCount()) * w.KnightMobility
	}
	bb = s.bishops
	for bb != 0 {
		sq, rest := bb.PopLSB()
		bb = rest
		sc += board.Score((board.BishopAttackboard(occ, sq) &^ excl).PopCount()) * w.BishopMobility
	}
	bb = s.rooks
	for bb != 0 {
		sq, rest := bb.PopLSB()
		bb = rest
		attacks := board.RookAttackboard(occ, sq) &^ excl
		sc += board.Score((attacks & board.BitFile(sq.File())).PopCount()) * w.RookVertMobility
		sc += board.Score((attacks & board.BitRank(sq.Rank())).PopCount()) * w.RookHorMobility
	}
	return sc
}
