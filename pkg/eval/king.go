package eval

import "github.com/ravenhollow/corvid/pkg/board"

// endgameMaterialThreshold is the non-pawn material (in the Material[] units) below
// which a side's attack no longer carries enough force to make king safety the
// deciding feature; evalKings switches that side's king term to the endgame
// centralization/pawn-race term below this point.
const endgameMaterialThreshold = board.Score(1300)

// attackerScale turns the number of enemy pieces attacking the king zone into a
// percentage of their summed weight: a single attacker counts at half weight, two
// at 75%, three at the full nominal penalty and four or more at 125% (a lone
// attacker rarely mates; several together do).
var attackerScale = [5]int{0, 50, 75, 100, 125}

// evalKings scores each side's king position: middlegame king safety (shelter,
// open files, attacker pressure) while the opponent still has enough material to
// attack with, endgame centralization and pawn-race distance otherwise.
func evalKings(w *Weights, pos *board.Position, us, them side) board.Score {
	occ := pos.Occupied()
	return kingScore(w, occ, us, them) - kingScore(w, occ, them, us)
}

// kingScore scores s's own king, given the opposing side opp for attacker and
// material context. Positive is good for s.
func kingScore(w *Weights, occ board.Bitboard, s, opp side) board.Score {
	if nonPawnMaterial(w, opp) < endgameMaterialThreshold {
		return endgameKingScore(s, opp)
	}
	return middlegameKingScore(w, occ, s, opp)
}

func nonPawnMaterial(w *Weights, s side) board.Score {
	var sc board.Score
	sc += board.Score(s.knights.PopCount()) * w.Material[board.Knight]
	sc += board.Score(s.bishops.PopCount()) * w.Material[board.Bishop]
	sc += board.Score(s.rooks.PopCount()) * w.Material[board.Rook]
	sc += board.Score(s.queens.PopCount()) * w.Material[board.Queen]
	return sc
}

func middlegameKingScore(w *Weights, occ board.Bitboard, s, opp side) board.Score {
	if s.king == 0 {
		return 0
	}
	var sc board.Score
	kingSq := s.king.LastPopSquare()
	kf := kingSq.File()

	shield := board.AdjacentFiles(kf) | board.BitFile(kf)
	ahead := rankAndAbove(kingSq.Rank() + 1)
	sc += board.Score((shield & ahead & s.pawns).PopCount()) * w.KingShield

	if board.BitFile(kf)&s.pawns == 0 {
		sc += w.KingFileOpen
	}
	adj := board.AdjacentFiles(kf)
	openAdj := adj &^ board.FillFiles(s.pawns)
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		if openAdj&board.BitFile(f) != 0 && adj&board.BitFile(f) != 0 {
			sc += w.KingAdjFileOpen
		}
	}

	zone := board.KingAttackboard(kingSq) | s.king
	var attackers int
	var weighted board.Score
	addAttacker := func(p board.Piece, bb board.Bitboard, atk func(board.Square) board.Bitboard) {
		bb2 := bb
		for bb2 != 0 {
			sq, rest := bb2.PopLSB()
			bb2 = rest
			if atk(sq)&zone != 0 {
				attackers++
				weighted += w.KingAttacker[p]
			}
		}
	}
	addAttacker(board.Knight, opp.knights, func(sq board.Square) board.Bitboard { return board.KnightAttackboard(sq) })
	addAttacker(board.Bishop, opp.bishops, func(sq board.Square) board.Bitboard { return board.BishopAttackboard(occ, sq) })
	addAttacker(board.Rook, opp.rooks, func(sq board.Square) board.Bitboard { return board.RookAttackboard(occ, sq) })
	addAttacker(board.Queen, opp.queens, func(sq board.Square) board.Bitboard { return board.QueenAttackboard(occ, sq) })

	if attackers > 0 {
		scale := attackerScale[len(attackerScale)-1]
		if attackers < len(attackerScale) {
			scale = attackerScale[attackers]
		}
		sc -= board.Score(int(weighted) * scale / 100)
	}

	return sc
}

// centerDistance is the Chebyshev distance of sq from the nearest of the four
// central squares, used to reward king centralization in the endgame.
func centerDistance(sq board.Square) int {
	f, r := int(sq.File()), int(sq.Rank())
	df := 0
	if f < 3 {
		df = 3 - f
	} else if f > 4 {
		df = f - 4
	}
	dr := 0
	if r < 3 {
		dr = 3 - r
	} else if r > 4 {
		dr = r - 4
	}
	if df > dr {
		return df
	}
	return dr
}

// endgameKingScore rewards a centralized king and a king close to its own passed
// pawns (it either escorts them home or blocks the enemy king from doing so).
func endgameKingScore(s, opp side) board.Score {
	if s.king == 0 {
		return 0
	}
	kingSq := s.king.LastPopSquare()
	var sc board.Score

	d := centerDistance(kingSq)
	sc += board.Score(4-d) * 5

	passed, _ := detectPassedPawns(s.pawns, opp.pawns)
	if passed != 0 {
		best := 64
		bb := passed
		for bb != 0 {
			sq, rest := bb.PopLSB()
			bb = rest
			if dist := chebyshev(kingSq, sq); dist < best {
				best = dist
			}
		}
		sc -= board.Score(best)
	}

	return sc
}

func chebyshev(a, b board.Square) int {
	fa, ra := int(a.File()), int(a.Rank())
	fb, rb := int(b.File()), int(b.Rank())
	df := fa - fb
	if df < 0 {
		df = -df
	}
	dr := ra - rb
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}
