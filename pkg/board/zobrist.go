package board

import "math/rand"

// ZobristHash is a position hash based on piece-squares, castling rights, en
// passant target and side to move. It is used for 3-fold repetition draw
// detection and transposition table indexing, and hashes "identical" positions
// to the same value under the repetition rule.
//
// See also: https://research.cs.wisc.edu/techreports/1970/TR88.pdf.
type ZobristHash uint64

// ZobristTable is a pseudo-randomized table for computing a position hash.
type ZobristTable struct {
	pieces    [NumColors][NumPieces + 1][NumSquares]ZobristHash
	castling  [NumCastling]ZobristHash
	enpassant [NumSquares]ZobristHash
	turn      [NumColors]ZobristHash
}

func NewZobristTable(seed int64) *ZobristTable {
	ret := &ZobristTable{}

	r := rand.New(rand.NewSource(seed))

	for c := ZeroColor; c < NumColors; c++ {
		for p := Pawn; p <= King; p++ {
			for sq := ZeroSquare; sq < NumSquares; sq++ {
				ret.pieces[c][p][sq] = ZobristHash(r.Uint64())
			}
		}
		ret.turn[c] = ZobristHash(r.Uint64())
	}
	for i := ZeroCastling; i < NumCastling; i++ {
		ret.castling[i] = ZobristHash(r.Uint64())
	}
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if sq.Rank() == Rank3 || sq.Rank() == Rank6 {
			ret.enpassant[sq] = ZobristHash(r.Uint64())
		}
	}
	return ret
}

// Hash computes the zobrist hash for the given position and side to move from
// scratch. Used only to seed a Game's hash at construction time; make/unmake keeps
// it current afterwards via UpdateMove/UpdateNullMove below, since recomputing this
// on every ply would cost an O(64) rescan plus the AbsolutePlacements allocation on
// every node of search and perft (spec.md section 2, section 4.5).
func (z *ZobristTable) Hash(pos *Position, turn Color) ZobristHash {
	var hash ZobristHash

	for _, pl := range pos.AbsolutePlacements(turn) {
		hash ^= z.pieces[pl.Color][pl.Piece][pl.Square]
	}
	hash ^= z.castling[pos.CastlingRights(turn)]
	if ep, ok := pos.EnPassantSquare(turn); ok {
		hash ^= z.enpassant[ep]
	}
	hash ^= z.turn[turn]

	return hash
}

// castlingRookSquares returns the rook's home and destination squares for a
// castling move type, in the side-relative (White-home) frame.
func castlingRookSquares(mt MoveType) (from, to Square, ok bool) {
	switch mt {
	case KingSideCastle:
		return H1, F1, true
	case QueenSideCastle:
		return A1, D1, true
	default:
		return 0, 0, false
	}
}

// UpdateMove incrementally updates hash for the move that turned before (with turn
// to move) into next (the already-flipped position MakeMove returned, with turn's
// opponent to move), using the Undo data MakeMove already produced. Every move
// toggles side to move; removing and placing a piece XORs its triple's key; a
// changed castling right or en passant square XORs the old key out and the new key
// in (spec.md section 4.5).
func (z *ZobristTable) UpdateMove(hash ZobristHash, before, next *Position, turn Color, u Undo) ZobristHash {
	them := turn.Opponent()
	m := u.Move

	from, to := m.From(), m.To()
	placed := u.Moved
	if m.IsPromotion() {
		placed = m.PromotionPiece()
	}

	fromAbs, toAbs, capAbs := from, to, u.CapturedSq
	if turn == Black {
		fromAbs, toAbs, capAbs = fromAbs.Flip(), toAbs.Flip(), capAbs.Flip()
	}

	hash ^= z.pieces[turn][u.Moved][fromAbs]
	hash ^= z.pieces[turn][placed][toAbs]
	if u.Captured != NoPiece {
		hash ^= z.pieces[them][u.Captured][capAbs]
	}

	if rookFrom, rookTo, ok := castlingRookSquares(m.Type()); ok {
		if turn == Black {
			rookFrom, rookTo = rookFrom.Flip(), rookTo.Flip()
		}
		hash ^= z.pieces[turn][Rook][rookFrom]
		hash ^= z.pieces[turn][Rook][rookTo]
	}

	hash ^= z.castling[before.CastlingRights(turn)]
	hash ^= z.castling[next.CastlingRights(them)]

	if ep, ok := before.EnPassantSquare(turn); ok {
		hash ^= z.enpassant[ep]
	}
	if ep, ok := next.EnPassantSquare(them); ok {
		hash ^= z.enpassant[ep]
	}

	hash ^= z.turn[turn]
	hash ^= z.turn[them]

	return hash
}

// UpdateNullMove incrementally updates hash for a null move made from before (with
// turn to move): it only expires any pending en passant right and toggles side to
// move, since no piece or castling right changes.
func (z *ZobristTable) UpdateNullMove(hash ZobristHash, before *Position, turn Color) ZobristHash {
	them := turn.Opponent()
	if ep, ok := before.EnPassantSquare(turn); ok {
		hash ^= z.enpassant[ep]
	}
	hash ^= z.turn[turn]
	hash ^= z.turn[them]
	return hash
}
