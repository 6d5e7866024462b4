package eval

import "github.com/ravenhollow/corvid/pkg/board"

// pst holds one centipawn bonus per square, indexed A1=0..H8=63, from the table
// owner's own perspective (its home rank is rank 1, same convention Position uses
// for "Us"). King placement is scored separately by evalKings, not here.
type pst [64]board.Score

var (
	pawnPST = pst{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -15, -15, 10, 10, 5,
		5, -5, -10, 5, 5, -10, -5, 5,
		0, 0, 10, 20, 20, 10, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		40, 40, 40, 40, 40, 40, 40, 40,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightPST = pst{
		-30, -20, -15, -15, -15, -15, -20, -30,
		-20, -10, 0, 5, 5, 0, -10, -20,
		-15, 0, 10, 15, 15, 10, 0, -15,
		-15, 5, 15, 20, 20, 15, 5, -15,
		-15, 5, 15, 20, 20, 15, 5, -15,
		-15, 0, 10, 15, 15, 10, 0, -15,
		-20, -10, 0, 5, 5, 0, -10, -20,
		-30, -20, -15, -15, -15, -15, -20, -30,
	}
	bishopPST = pst{
		-10, -5, -5, -5, -5, -5, -5, -10,
		-5, 5, 0, 0, 0, 0, 5, -5,
		-5, 10, 10, 10, 10, 10, 10, -5,
		-5, 0, 10, 10, 10, 10, 0, -5,
		-5, 5, 5, 10, 10, 5, 5, -5,
		-5, 0, 5, 10, 10, 5, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-10, -5, -5, -5, -5, -5, -5, -10,
	}
	rookPST = pst{
		0, 0, 5, 10, 10, 5, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 5, 5, 0, 0, 0,
	}
	queenPST = pst{
		-10, -5, -5, 0, 0, -5, -5, -10,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, 0,
		0, 0, 5, 5, 5, 5, 0, 0,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-10, -5, -5, 0, 0, -5, -5, -10,
	}
)

// pstScore sums the table bonus for every non-king piece of s. mirror flips each
// square (rank 1 <-> rank 8) first, used when s is Them: Them's home rank appears at
// rank 8 in the side-relative frame Position works in, so its pieces are looked up
// as though the board were flipped back to Them's own point of view.
func pstScore(w *Weights, s side, mirror bool) board.Score {
	look := func(tbl *pst, bb board.Bitboard) board.Score {
		var sc board.Score
		for bb != 0 {
			sq, rest := bb.PopLSB()
			bb = rest
			if mirror {
				sq = sq.Flip()
			}
			sc += tbl[sq]
		}
		return sc
	}
	var sc board.Score
	sc += look(&pawnPST, s.pawns)
	sc += look(&knightPST, s.knights)
	sc += look(&bishopPST, s.bishops)
	sc += look(&rookPST, s.rooks)
	sc += look(&queenPST, s.queens)
	return sc
}
