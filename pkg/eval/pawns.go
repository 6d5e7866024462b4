package eval

import "github.com/ravenhollow/corvid/pkg/board"

// evalPawns scores one side's pawn structure against the other's, from mine's
// perspective, covering every pawn feature spec.md section 4.4 names: doubled,
// tripled, isolated, backward, passed, connected and file-island count. Both
// bitboards are given in the side-relative frame (mine always advances north).
func evalPawns(w *Weights, mine, theirs board.Bitboard) board.Score {
	var sc board.Score

	for f := board.ZeroFile; f < board.NumFiles; f++ {
		n := (mine & board.BitFile(f)).PopCount()
		if n >= 2 {
			sc += w.DoubledPawn
		}
		if n >= 3 {
			sc += w.TripledPawn
		}
	}

	connected := mine & board.PawnCaptureboard(board.White, mine)
	sc += board.Score(connected.PopCount()) * w.ConnectedPawn

	bb := mine
	for bb != 0 {
		sq, rest := bb.PopLSB()
		bb = rest

		f, r := sq.File(), sq.Rank()
		adjFiles := board.AdjacentFiles(f)

		if adjFiles&mine == 0 {
			sc += w.IsolatedPawn
			continue // an isolated pawn is never also scored as backward.
		}

		aheadRanks := rankAndAbove(r + 1)
		if theirs&((board.BitFile(f)|adjFiles)&aheadRanks) == 0 {
			sc += w.PassedPawn[r]
		}

		behind := ^aheadRanks &^ rankAndAbove(r)
		stopAttacked := board.PawnCaptureboard(board.Black, theirs)&board.BitMask(board.Square(int(sq)+8)) != 0
		if adjFiles&mine&behind == 0 && stopAttacked {
			sc += w.BackwardPawn
		}
	}

	sc += board.Score(countFileIslands(mine)) * w.FileIsland

	return sc
}

// rankAndAbove returns the bitboard of every square whose rank is >= r (r given as
// a 0-based rank index; r >= 8 yields the empty board).
func rankAndAbove(r board.Rank) board.Bitboard {
	if r >= board.NumRanks {
		return 0
	}
	return board.FullBitboard << uint(8*r)
}

// countFileIslands counts maximal runs of adjacent files that contain at least one
// of pawns, separated by at least one pawnless file.
func countFileIslands(pawns board.Bitboard) int {
	files := board.FillFiles(pawns)
	islands := 0
	inIsland := false
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		occupied := files&board.BitFile(f) != 0
		if occupied && !inIsland {
			islands++
		}
		inIsland = occupied
	}
	return islands
}
