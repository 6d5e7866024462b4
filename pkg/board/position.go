package board

import (
	"fmt"
	"math/bits"
)

// Position is the side-relative board representation: it is always expressed from the
// point of view of the side to move ("Us" vs "Them"), using the Quad BitBoard (QBB)
// encoding of three overlapping 64-bit words. Every piece type is recovered from the
// overlap of pbq/nbk/rqk:
//
//	pawns   = pbq &^ nbk &^ rqk
//	knights = nbk &^ pbq &^ rqk
//	bishops = nbk &  pbq
//	rooks   = rqk &^ nbk &^ pbq
//	queens  = pbq &  rqk
//	kings   = rqk &  nbk
//
// us holds the occupancy of the side to move's own pieces; meta packs castling rights
// (a bit on each home square that is still unmoved), the en passant target (a single
// bit on rank 6, valid for exactly one ply) and the halfmove clock (6 bits at offset
// 24). There is no explicit color field: after every move the whole position is
// byte-swapped (flip, the Go analogue of the C original's _byteswap_uint64-based
// flipQBB) so that the side to move always appears to be moving "up" the board, and
// a single move generator serves both colors.
type Position struct {
	us   Bitboard
	pbq  Bitboard
	nbk  Bitboard
	rqk  Bitboard
	meta Bitboard
}

// Placement is a (color, piece, square) triple used to construct a Position from an
// absolute (White/Black) board, such as one decoded from FEN.
type Placement struct {
	Color  Color
	Piece  Piece
	Square Square
}

const clockShift = 24
const clockMask = Bitboard(0x3f) << clockShift

// FromAbsolute builds a Position from an absolute board description. castling and ep
// are given in absolute board terms, exactly as FEN expresses them; turn identifies
// the side to move, which becomes "Us" in the returned Position.
func FromAbsolute(placements []Placement, turn Color, castling Castling, ep Square, hasEP bool, halfmove int) (*Position, error) {
	var whiteAbs, pbqAbs, nbkAbs, rqkAbs Bitboard
	var whiteKings, blackKings int

	for _, pl := range placements {
		if !pl.Square.IsValid() || !pl.Piece.IsValid() {
			return nil, fmt.Errorf("invalid placement: %+v", pl)
		}
		setPieceBits(&pbqAbs, &nbkAbs, &rqkAbs, pl.Square, pl.Piece)
		if pl.Color == White {
			whiteAbs |= BitMask(pl.Square)
		}
		if pl.Piece == King {
			if pl.Color == White {
				whiteKings++
			} else {
				blackKings++
			}
		}
	}
	if whiteKings != 1 || blackKings != 1 {
		return nil, fmt.Errorf("position must have exactly one king per side, got white=%d black=%d", whiteKings, blackKings)
	}

	var metaAbs Bitboard
	if castling.IsAllowed(WhiteQueenSideCastle) {
		metaAbs |= BitMask(A1)
	}
	if castling.IsAllowed(WhiteKingSideCastle) {
		metaAbs |= BitMask(H1)
	}
	if castling.IsAllowed(WhiteQueenSideCastle) || castling.IsAllowed(WhiteKingSideCastle) {
		metaAbs |= BitMask(E1)
	}
	if castling.IsAllowed(BlackQueenSideCastle) {
		metaAbs |= BitMask(A8)
	}
	if castling.IsAllowed(BlackKingSideCastle) {
		metaAbs |= BitMask(H8)
	}
	if castling.IsAllowed(BlackQueenSideCastle) || castling.IsAllowed(BlackKingSideCastle) {
		metaAbs |= BitMask(E8)
	}
	if hasEP {
		if !ep.IsValid() {
			return nil, fmt.Errorf("invalid en passant square: %v", ep)
		}
		metaAbs |= BitMask(ep)
	}
	metaAbs |= Bitboard(halfmove&0x3f) << clockShift

	raw := Position{us: whiteAbs, pbq: pbqAbs, nbk: nbkAbs, rqk: rqkAbs, meta: metaAbs}
	if turn == White {
		return &raw, nil
	}
	flipped := raw.flip()
	return &flipped, nil
}

func setPieceBits(pbq, nbk, rqk *Bitboard, sq Square, piece Piece) {
	bit := BitMask(sq)
	switch piece {
	case Pawn:
		*pbq |= bit
	case Knight:
		*nbk |= bit
	case Bishop:
		*pbq |= bit
		*nbk |= bit
	case Rook:
		*rqk |= bit
	case Queen:
		*pbq |= bit
		*rqk |= bit
	case King:
		*nbk |= bit
		*rqk |= bit
	}
}

func clearPieceBits(pbq, nbk, rqk *Bitboard, sq Square) {
	bit := ^BitMask(sq)
	*pbq &= bit
	*nbk &= bit
	*rqk &= bit
}

func pieceAtBB(pbq, nbk, rqk Bitboard, sq Square) Piece {
	bit := BitMask(sq)
	pb := pbq&bit != 0
	nb := nbk&bit != 0
	rb := rqk&bit != 0
	switch {
	case pb && nb:
		return Bishop
	case pb && rb:
		return Queen
	case rb && nb:
		return King
	case pb:
		return Pawn
	case nb:
		return Knight
	case rb:
		return Rook
	default:
		return NoPiece
	}
}

// Occupied returns the occupancy of all pieces, both sides.
func (p *Position) Occupied() Bitboard { return p.pbq | p.nbk | p.rqk }

func (p *Position) Pawns() Bitboard   { return p.pbq &^ p.nbk &^ p.rqk }
func (p *Position) Knights() Bitboard { return p.nbk &^ p.pbq &^ p.rqk }
func (p *Position) Bishops() Bitboard { return p.nbk & p.pbq }
func (p *Position) Rooks() Bitboard   { return p.rqk &^ p.nbk &^ p.pbq }
func (p *Position) Queens() Bitboard  { return p.pbq & p.rqk }
func (p *Position) Kings() Bitboard   { return p.rqk & p.nbk }

// Us returns the occupancy of the side to move's own pieces.
func (p *Position) Us() Bitboard { return p.us }

// Them returns the occupancy of the opponent's pieces.
func (p *Position) Them() Bitboard { return p.Occupied() &^ p.us }

func (p *Position) IsEmpty(sq Square) bool {
	return !p.Occupied().IsSet(sq)
}

// PieceAt returns the piece type occupying sq, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return pieceAtBB(p.pbq, p.nbk, p.rqk, sq)
}

// KingSquare returns the square of the side to move's king (ours=true) or the
// opponent's king (ours=false).
func (p *Position) KingSquare(ours bool) Square {
	k := p.Kings()
	if ours {
		return (k & p.us).LastPopSquare()
	}
	return (k &^ p.us).LastPopSquare()
}

// CanCastleKingSide reports whether the side to move still has the king and
// kingside rook on their home squares.
func (p *Position) CanCastleKingSide() bool {
	need := BitMask(E1) | BitMask(H1)
	return p.meta&need == need
}

// CanCastleQueenSide reports whether the side to move still has the king and
// queenside rook on their home squares.
func (p *Position) CanCastleQueenSide() bool {
	need := BitMask(E1) | BitMask(A1)
	return p.meta&need == need
}

// TheirCanCastleKingSide/TheirCanCastleQueenSide mirror the above for the
// opponent; used to construct the Castling for FEN output.
func (p *Position) TheirCanCastleKingSide() bool {
	need := BitMask(E8) | BitMask(H8)
	return p.meta&need == need
}

func (p *Position) TheirCanCastleQueenSide() bool {
	need := BitMask(E8) | BitMask(A8)
	return p.meta&need == need
}

// CastlingRights renders the internal castling-tracking bits as an absolute
// Castling value, given which color is to move.
func (p *Position) CastlingRights(turn Color) Castling {
	var c Castling
	ours := func(ks, qs Castling) {
		if p.CanCastleKingSide() {
			c |= ks
		}
		if p.CanCastleQueenSide() {
			c |= qs
		}
	}
	theirs := func(ks, qs Castling) {
		if p.TheirCanCastleKingSide() {
			c |= ks
		}
		if p.TheirCanCastleQueenSide() {
			c |= qs
		}
	}
	if turn == White {
		ours(WhiteKingSideCastle, WhiteQueenSideCastle)
		theirs(BlackKingSideCastle, BlackQueenSideCastle)
	} else {
		ours(BlackKingSideCastle, BlackQueenSideCastle)
		theirs(WhiteKingSideCastle, WhiteQueenSideCastle)
	}
	return c
}

// EnPassantSquare returns the absolute en passant target square, if any, given
// which color is to move.
func (p *Position) EnPassantSquare(turn Color) (Square, bool) {
	bb := p.meta & BitRank(Rank6)
	if bb == 0 {
		return 0, false
	}
	sq := bb.LastPopSquare()
	if turn == Black {
		sq = sq.Flip()
	}
	return sq, true
}

// EnPassantTarget returns the en passant target square in the side-relative frame (the
// frame every other Position accessor and the move generator work in), without
// converting back to absolute board terms the way EnPassantSquare does.
func (p *Position) EnPassantTarget() (Square, bool) {
	bb := p.meta & BitRank(Rank6)
	if bb == 0 {
		return 0, false
	}
	return bb.LastPopSquare(), true
}

// HalfmoveClock returns the number of halfmoves since the last capture or pawn
// move. Unaffected by flip, so it reads the same regardless of perspective.
func (p *Position) HalfmoveClock() int {
	return int((p.meta & clockMask) >> clockShift)
}

func (p *Position) setHalfmoveClock(v int) {
	p.meta = (p.meta &^ clockMask) | (Bitboard(v&0x3f) << clockShift)
}

// IsAttacked reports whether sq is attacked by the given side: byUs=true checks
// the side to move's own pieces, byUs=false the opponent's.
func (p *Position) IsAttacked(sq Square, byUs bool) bool {
	occ := p.Occupied()
	by := p.Them()
	if byUs {
		by = p.us
	}

	if KnightAttackboard(sq)&by&p.Knights() != 0 {
		return true
	}
	if KingAttackboard(sq)&by&p.Kings() != 0 {
		return true
	}
	if BishopAttackboard(occ, sq)&by&(p.Bishops()|p.Queens()) != 0 {
		return true
	}
	if RookAttackboard(occ, sq)&by&(p.Rooks()|p.Queens()) != 0 {
		return true
	}

	pawns := by & p.Pawns()
	if byUs {
		return PawnCaptureboard(White, pawns)&BitMask(sq) != 0
	}
	return PawnCaptureboard(Black, pawns)&BitMask(sq) != 0
}

// IsChecked reports whether the side to move's king is currently attacked.
func (p *Position) IsChecked() bool {
	return p.IsAttacked(p.KingSquare(true), false)
}

// Undo captures the information needed to reverse a MakeMove call.
type Undo struct {
	Move       Move
	Meta       Bitboard
	Moved      Piece
	Captured   Piece
	CapturedSq Square
}

// flip returns the position as seen from the opponent's perspective: every
// bitboard is vertically mirrored (math/bits.ReverseBytes64, one rank per
// byte) and the side-to-move occupancy is swapped to the opponent's pieces.
func (p *Position) flip() Position {
	theirs := p.Occupied() &^ p.us
	return Position{
		us:   Bitboard(bits.ReverseBytes64(uint64(theirs))),
		pbq:  Bitboard(bits.ReverseBytes64(uint64(p.pbq))),
		nbk:  Bitboard(bits.ReverseBytes64(uint64(p.nbk))),
		rqk:  Bitboard(bits.ReverseBytes64(uint64(p.rqk))),
		meta: p.flipMeta(),
	}
}

// flipMeta mirrors the castling-tracking ranks (1<->8) and relocates any en
// passant bit between rank 3 and rank 6, while leaving the halfmove clock
// untouched (it lives at bits [24:30), which would otherwise collide with
// ordinary square bits under a naive whole-word byte reversal).
func (p *Position) flipMeta() Bitboard {
	castling := p.meta & (BitRank(Rank1) | BitRank(Rank8))
	ep := p.meta & (BitRank(Rank3) | BitRank(Rank6))
	clock := p.meta & clockMask
	return Bitboard(bits.ReverseBytes64(uint64(castling))) |
		Bitboard(bits.ReverseBytes64(uint64(ep))) |
		clock
}

// MakeMove applies m (assumed pseudo-legal) and returns the resulting position,
// from the opponent's perspective, along with an Undo to reverse it. The move
// generator is responsible for only producing moves that are legal to attempt;
// IsLegal below is used to filter out the ones that leave the mover in check.
func (p *Position) MakeMove(m Move) (Position, Undo) {
	from, to, mt := m.From(), m.To(), m.Type()
	moved := p.PieceAt(from)

	next := *p
	next.meta &^= BitRank(Rank6) // any inherited en passant right expires now.

	capturedSq := to
	captured := p.PieceAt(to)
	if mt == EnPassantCapture {
		capturedSq = Square(int(to) - 8)
		captured = Pawn
	}

	if captured != NoPiece {
		clearPieceBits(&next.pbq, &next.nbk, &next.rqk, capturedSq)
	}

	clearPieceBits(&next.pbq, &next.nbk, &next.rqk, from)
	next.us &^= BitMask(from)

	placed := moved
	if m.IsPromotion() {
		placed = m.PromotionPiece()
	}
	setPieceBits(&next.pbq, &next.nbk, &next.rqk, to, placed)
	next.us |= BitMask(to)

	switch mt {
	case KingSideCastle:
		clearPieceBits(&next.pbq, &next.nbk, &next.rqk, H1)
		next.us &^= BitMask(H1)
		setPieceBits(&next.pbq, &next.nbk, &next.rqk, F1, Rook)
		next.us |= BitMask(F1)
	case QueenSideCastle:
		clearPieceBits(&next.pbq, &next.nbk, &next.rqk, A1)
		next.us &^= BitMask(A1)
		setPieceBits(&next.pbq, &next.nbk, &next.rqk, D1, Rook)
		next.us |= BitMask(D1)
	}

	switch from {
	case E1:
		next.meta &^= BitMask(E1) | BitMask(A1) | BitMask(H1)
	case A1:
		next.meta &^= BitMask(A1)
	case H1:
		next.meta &^= BitMask(H1)
	}
	switch capturedSq {
	case E8:
		next.meta &^= BitMask(E8) | BitMask(A8) | BitMask(H8)
	case A8:
		next.meta &^= BitMask(A8)
	case H8:
		next.meta &^= BitMask(H8)
	}

	if moved == Pawn || captured != NoPiece {
		next.setHalfmoveClock(0)
	} else {
		next.setHalfmoveClock(p.HalfmoveClock() + 1)
	}

	if moved == Pawn && mt == Quiet && int(to)-int(from) == 16 {
		next.meta |= BitMask(Square(int(from) + 8))
	}

	undo := Undo{Move: m, Meta: p.meta, Moved: moved, Captured: captured, CapturedSq: capturedSq}
	return next.flip(), undo
}

// UnmakeMove reverses the effect of the MakeMove call that produced u, given the
// resulting position p. make(m); unmake(m) is the identity.
func (p *Position) UnmakeMove(u Undo) Position {
	prev := p.flip()
	m := u.Move
	from, to := m.From(), m.To()

	clearPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, to)
	prev.us &^= BitMask(to)

	setPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, from, u.Moved)
	prev.us |= BitMask(from)

	if u.Captured != NoPiece {
		setPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, u.CapturedSq, u.Captured)
	}

	switch m.Type() {
	case KingSideCastle:
		clearPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, F1)
		prev.us &^= BitMask(F1)
		setPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, H1, Rook)
		prev.us |= BitMask(H1)
	case QueenSideCastle:
		clearPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, D1)
		prev.us &^= BitMask(D1)
		setPieceBits(&prev.pbq, &prev.nbk, &prev.rqk, A1, Rook)
		prev.us |= BitMask(A1)
	}

	prev.meta = u.Meta
	return prev
}

// MakeNullMove passes the turn without moving a piece, used by the search's
// null-move pruning. It clears any pending en passant right, matching real
// chess rules (a null move forfeits the right to capture en passant).
func (p *Position) MakeNullMove() (Position, Bitboard) {
	saved := p.meta
	next := *p
	next.meta &^= BitRank(Rank6)
	return next.flip(), saved
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(saved Bitboard) Position {
	prev := p.flip()
	prev.meta = saved
	return prev
}

// IsLegal reports whether making m leaves the mover's own king safe. It does not
// check that m is a pseudo-legal move of p (that a piece of the right kind stands
// on its from-square); callers holding a move from elsewhere, such as a hash or
// killer move, match it against the move generator first (movegen.FindMove).
func (p *Position) IsLegal(m Move) bool {
	next, _ := p.MakeMove(m)
	return !next.IsAttacked(next.KingSquare(false), true)
}

// AbsolutePlacements renders the position back into an absolute (White/Black)
// board, given which color is to move. Used by the FEN encoder.
func (p *Position) AbsolutePlacements(turn Color) []Placement {
	pbq, nbk, rqk, mine := p.pbq, p.nbk, p.rqk, p.us
	if turn == Black {
		pbq = Bitboard(bits.ReverseBytes64(uint64(pbq)))
		nbk = Bitboard(bits.ReverseBytes64(uint64(nbk)))
		rqk = Bitboard(bits.ReverseBytes64(uint64(rqk)))
		mine = Bitboard(bits.ReverseBytes64(uint64(mine)))
	}
	white := mine
	if turn == Black {
		white = (pbq | nbk | rqk) &^ mine
	}

	var out []Placement
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		piece := pieceAtBB(pbq, nbk, rqk, sq)
		if piece == NoPiece {
			continue
		}
		c := Black
		if white.IsSet(sq) {
			c = White
		}
		out = append(out, Placement{Color: c, Piece: piece, Square: sq})
	}
	return out
}
