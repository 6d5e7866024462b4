// Package movegen generates legal moves from a board.Position. It works entirely in
// the side-relative frame Position already presents (the side to move is always "Us",
// always pushing pawns north), so a single generator serves both colors.
//
// Legality is established the same way board.Position.IsLegal does: a candidate move is
// tried and kept iff it does not leave the mover's own king in check. This trades the
// pin-ray bookkeeping a bitboard engine would normally thread through generation for a
// simpler generator built directly on the primitives Position already exports; it costs
// an extra trial MakeMove per candidate, but every move it produces is correct by
// construction, including the tricky horizontal-pin en passant case, since the trial
// move removes the captured pawn before the king safety check runs.
package movegen

import "github.com/ravenhollow/corvid/pkg/board"

// Kind selects which subset of legal moves Generate produces, matching the staged
// consumption order the search's move orderer wants: captures before quiets.
type Kind uint8

const (
	AllCaptures Kind = iota
	AllQuiets
	All
)

// Generate appends every legal move of the requested Kind to out and returns the
// extended slice.
func Generate(pos *board.Position, kind Kind, out []board.Move) []board.Move {
	if kind == AllCaptures || kind == All {
		walkPseudoLegal(pos, func(m board.Move) bool {
			if isCapture(pos, m) && pos.IsLegal(m) {
				out = append(out, m)
			}
			return true
		})
	}
	if kind == AllQuiets || kind == All {
		walkPseudoLegal(pos, func(m board.Move) bool {
			if !isCapture(pos, m) && pos.IsLegal(m) {
				out = append(out, m)
			}
			return true
		})
		out = genCastles(pos, out)
	}
	return out
}

// GenerateAll is a convenience wrapper returning every legal move in the position.
func GenerateAll(pos *board.Position) []board.Move {
	return Generate(pos, All, make([]board.Move, 0, 48))
}

// HasLegalMove reports whether the side to move has any legal move at all, without
// building the full move list. Used to detect checkmate and stalemate cheaply.
func HasLegalMove(pos *board.Position) bool {
	found := false
	walkPseudoLegal(pos, func(m board.Move) bool {
		if pos.IsLegal(m) {
			found = true
			return false
		}
		return true
	})
	if !found {
		for _, m := range genCastles(pos, nil) {
			if pos.IsLegal(m) {
				return true
			}
		}
	}
	return found
}

// FindMove returns the legal move from "from" to "to" in pos, disambiguating promotion
// piece and move type (castling, en passant) the way a UCI driver needs to when decoding
// a bare from/to pair read off the wire. promo is NoPiece for a non-promoting move.
func FindMove(pos *board.Position, from, to board.Square, promo board.Piece) (board.Move, bool) {
	var found board.Move
	ok := false
	walkPseudoLegal(pos, func(m board.Move) bool {
		if m.From() != from || m.To() != to {
			return true
		}
		if m.IsPromotion() && m.PromotionPiece() != promo {
			return true
		}
		if !m.IsPromotion() && promo != board.NoPiece {
			return true
		}
		if pos.IsLegal(m) {
			found, ok = m, true
			return false
		}
		return true
	})
	if ok {
		return found, true
	}
	for _, m := range genCastles(pos, nil) {
		if m.From() == from && m.To() == to {
			return m, true
		}
	}
	return 0, false
}

// Perft counts the number of leaf positions reachable from pos in exactly depth plies,
// the standard move-generator correctness benchmark (spec.md section 8).
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range GenerateAll(pos) {
		next, _ := pos.MakeMove(m)
		nodes += Perft(&next, depth-1)
	}
	return nodes
}

// PerftDivide is Perft broken down by each root move, returned as an unordered map
// together with the total; used to localize a move-generator bug to a specific
// root move.
func PerftDivide(pos *board.Position, depth int) (map[board.Move]uint64, uint64) {
	out := make(map[board.Move]uint64)
	var total uint64
	for _, m := range GenerateAll(pos) {
		next, _ := pos.MakeMove(m)
		var n uint64
		if depth <= 1 {
			n = 1
		} else {
			n = Perft(&next, depth-1)
		}
		out[m] = n
		total += n
	}
	return out, total
}

// isCapture reports whether m removes an enemy piece from the board, including en
// passant. A quiet promotion (no piece on the target square) is not a capture.
func isCapture(pos *board.Position, m board.Move) bool {
	if m.Type() == board.EnPassantCapture {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// walkPseudoLegal calls visit for every pseudo-legal move in pos, other than castling
// (handled separately by genCastles, which needs extra "king passes through check"
// bookkeeping beyond what a trial MakeMove alone provides). Stops early if visit
// returns false.
func walkPseudoLegal(pos *board.Position, visit func(board.Move) bool) {
	us, them, occ := pos.Us(), pos.Them(), pos.Occupied()

	if !walkPawnMoves(pos, us, them, occ, visit) {
		return
	}

	officers := []struct {
		bb board.Bitboard
		p  board.Piece
	}{
		{pos.Knights() & us, board.Knight},
		{pos.Bishops() & us, board.Bishop},
		{pos.Rooks() & us, board.Rook},
		{pos.Queens() & us, board.Queen},
		{pos.Kings() & us, board.King},
	}
	for _, oc := range officers {
		bb := oc.bb
		for bb != 0 {
			from, rest := bb.PopLSB()
			bb = rest
			targets := board.Attackboard(occ, from, oc.p) &^ us
			for targets != 0 {
				to, restT := targets.PopLSB()
				targets = restT
				if !visit(board.NewMove(from, to, board.Quiet)) {
					return
				}
			}
		}
	}
}

// walkPawnMoves generates single/double pushes, diagonal captures, promotions and en
// passant for our pawns. Always generated in White's forward direction: Position is
// side-relative, so "our" pawns always push north regardless of the physical color to
// move.
func walkPawnMoves(pos *board.Position, us, them, occ board.Bitboard, visit func(board.Move) bool) bool {
	pawns := pos.Pawns() & us
	promoRank := board.PawnPromotionRank(board.White)
	jumpRank := board.PawnJumpRank(board.White)

	emit := func(from, to board.Square) bool {
		if promoRank.IsSet(to) {
			for _, t := range []board.MoveType{board.QueenPromotion, board.RookPromotion, board.BishopPromotion, board.KnightPromotion} {
				if !visit(board.NewMove(from, to, t)) {
					return false
				}
			}
			return true
		}
		return visit(board.NewMove(from, to, board.Quiet))
	}

	single := board.PawnMoveboard(occ, board.White, pawns)
	bb := single
	for bb != 0 {
		to, rest := bb.PopLSB()
		bb = rest
		if !emit(board.Square(int(to)-8), to) {
			return false
		}
	}

	midRank := jumpRank >> 8
	doubleTargets := board.PawnMoveboard(occ, board.White, single&midRank)
	bb = doubleTargets & jumpRank
	for bb != 0 {
		to, rest := bb.PopLSB()
		bb = rest
		if !visit(board.NewMove(board.Square(int(to)-16), to, board.Quiet)) {
			return false
		}
	}

	captures := board.PawnCaptureboard(board.White, pawns) & them
	bb = captures
	for bb != 0 {
		to, rest := bb.PopLSB()
		bb = rest
		origins := board.PawnCaptureOrigins(board.White, board.BitMask(to)) & pawns
		o := origins
		for o != 0 {
			from, restO := o.PopLSB()
			o = restO
			if !emit(from, to) {
				return false
			}
		}
	}

	if epSq, ok := pos.EnPassantTarget(); ok {
		origins := board.PawnCaptureOrigins(board.White, board.BitMask(epSq)) & pawns
		for origins != 0 {
			from, rest := origins.PopLSB()
			origins = rest
			if !visit(board.NewMove(from, epSq, board.EnPassantCapture)) {
				return false
			}
		}
	}

	return true
}

// genCastles generates the legal castling moves, if any. Castling additionally requires
// the king not be in check and not pass through an attacked square, neither of which a
// trial MakeMove + IsLegal check alone would catch (that only verifies the final square).
func genCastles(pos *board.Position, out []board.Move) []board.Move {
	if pos.IsChecked() {
		return out
	}
	occ := pos.Occupied()
	if pos.CanCastleKingSide() {
		empty := board.BitMask(board.F1) | board.BitMask(board.G1)
		if occ&empty == 0 && !pos.IsAttacked(board.F1, false) && !pos.IsAttacked(board.G1, false) {
			m := board.NewMove(board.E1, board.G1, board.KingSideCastle)
			if pos.IsLegal(m) {
				out = append(out, m)
			}
		}
	}
	if pos.CanCastleQueenSide() {
		empty := board.BitMask(board.D1) | board.BitMask(board.C1) | board.BitMask(board.B1)
		if occ&empty == 0 && !pos.IsAttacked(board.D1, false) && !pos.IsAttacked(board.C1, false) {
			m := board.NewMove(board.E1, board.C1, board.QueenSideCastle)
			if pos.IsLegal(m) {
				out = append(out, m)
			}
		}
	}
	return out
}
