package board

// Result is the outcome of a finished game.
type Result uint8

const (
	NoResult Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

type gameEntry struct {
	move          Move
	undo          Undo
	hash          ZobristHash
	fullmove      int
	prevCastled   bool
	castledThisMv bool
}

// Game wraps a Position with the in-place make/unmake history needed for
// repetition and fifty-move detection, and tracks which side has castled
// (HasCastled). It is the adapted, mutable counterpart of
// the teacher's immutable board.Board/node chain: the same bookkeeping
// (repetition counting, fullmove tracking, HasCastled), rebuilt on top of
// Position's in-place-style make/unmake rather than a persistent linked list.
type Game struct {
	zt       *ZobristTable
	pos      *Position
	turn     Color
	fullmove int
	hash     ZobristHash

	repetitions map[ZobristHash]int
	history     []gameEntry
	nullHistory []nullEntry
	castled     [NumColors]bool

	result Result
}

// NewGame starts a Game at the given position.
func NewGame(zt *ZobristTable, pos *Position, turn Color, fullmove int) *Game {
	g := &Game{
		zt:          zt,
		pos:         pos,
		turn:        turn,
		fullmove:    fullmove,
		repetitions: map[ZobristHash]int{},
	}
	g.hash = zt.Hash(pos, turn)
	g.repetitions[g.hash]++
	return g
}

func (g *Game) Position() *Position { return g.pos }
func (g *Game) Turn() Color         { return g.turn }
func (g *Game) Fullmove() int       { return g.fullmove }
func (g *Game) Hash() ZobristHash   { return g.hash }
func (g *Game) Result() Result      { return g.result }

// HasCastled reports whether the given color has castled at any point in this
// game's history.
func (g *Game) HasCastled(c Color) bool { return g.castled[c] }

// Clone returns an independent copy of g, sharing only the immutable ZobristTable.
// Used to hand the search worker its own Position to mutate in place (spec.md
// section 5: "no data is shared between I/O and search besides [the stop] flag"),
// the adapted counterpart of the teacher's Board.Fork.
func (g *Game) Clone() *Game {
	pos := *g.pos
	fork := &Game{
		zt:          g.zt,
		pos:         &pos,
		turn:        g.turn,
		fullmove:    g.fullmove,
		hash:        g.hash,
		repetitions: make(map[ZobristHash]int, len(g.repetitions)),
		history:     append([]gameEntry(nil), g.history...),
		nullHistory: append([]nullEntry(nil), g.nullHistory...),
		castled:     g.castled,
		result:      g.result,
	}
	for k, v := range g.repetitions {
		fork.repetitions[k] = v
	}
	return fork
}

// PushMove applies m (assumed legal) and records it in the history.
func (g *Game) PushMove(m Move) {
	before := *g.pos
	beforeTurn := g.turn
	next, undo := g.pos.MakeMove(m)

	entry := gameEntry{move: m, undo: undo, hash: g.hash, fullmove: g.fullmove, prevCastled: g.castled[g.turn]}
	if mt := m.Type(); mt == KingSideCastle || mt == QueenSideCastle {
		g.castled[g.turn] = true
		entry.castledThisMv = true
	}
	g.history = append(g.history, entry)

	*g.pos = next
	g.turn = g.turn.Opponent()
	if g.turn == White {
		g.fullmove++
	}
	g.hash = g.zt.UpdateMove(g.hash, &before, g.pos, beforeTurn, undo)
	g.repetitions[g.hash]++
}

// nullEntry mirrors gameEntry for the null moves PushNullMove/PopNullMove apply;
// kept separate since a null move never touches castling rights or the move
// counter.
type nullEntry struct {
	meta     Bitboard
	hash     ZobristHash
	fullmove int
}

// PushNullMove passes the turn without moving a piece, used only by the search's
// null-move pruning (spec.md section 4.6); never appears in PushMove's history.
func (g *Game) PushNullMove() {
	before := *g.pos
	beforeTurn := g.turn
	next, saved := g.pos.MakeNullMove()
	g.nullHistory = append(g.nullHistory, nullEntry{meta: saved, hash: g.hash, fullmove: g.fullmove})

	*g.pos = next
	g.turn = g.turn.Opponent()
	if g.turn == White {
		g.fullmove++
	}
	g.hash = g.zt.UpdateNullMove(g.hash, &before, beforeTurn)
	g.repetitions[g.hash]++
}

// PopNullMove reverses the most recent PushNullMove.
func (g *Game) PopNullMove() {
	n := len(g.nullHistory)
	last := g.nullHistory[n-1]
	g.nullHistory = g.nullHistory[:n-1]

	g.repetitions[g.hash]--
	if g.repetitions[g.hash] <= 0 {
		delete(g.repetitions, g.hash)
	}

	*g.pos = g.pos.UnmakeNullMove(last.meta)
	g.turn = g.turn.Opponent()
	g.fullmove = last.fullmove
	g.hash = last.hash
}

// PopMove reverses the most recent PushMove, returning the move undone.
func (g *Game) PopMove() (Move, bool) {
	if len(g.history) == 0 {
		return 0, false
	}

	g.repetitions[g.hash]--
	if g.repetitions[g.hash] <= 0 {
		delete(g.repetitions, g.hash)
	}

	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	*g.pos = g.pos.UnmakeMove(last.undo)
	g.turn = g.turn.Opponent()
	g.fullmove = last.fullmove
	g.hash = last.hash
	if last.castledThisMv {
		g.castled[g.turn] = last.prevCastled
	}
	g.result = NoResult

	return last.move, true
}

// IsThreefoldRepetition reports whether the current position has occurred at
// least 3 times in this game's history.
func (g *Game) IsThreefoldRepetition() bool {
	return g.repetitions[g.hash] >= 3
}

// IsFiftyMoveRule reports whether the halfmove clock has reached 50.
func (g *Game) IsFiftyMoveRule() bool {
	return g.pos.HalfmoveClock() >= 50
}

// IsInsufficientMaterial reports whether neither side has enough material to
// deliver checkmate: at most 2 total pieces (the two kings) is always a draw;
// 3 pieces is a draw iff the extra piece is a minor; 4 pieces is a draw iff
// both sides have a single same-colored bishop and nothing else.
func (g *Game) IsInsufficientMaterial() bool {
	p := g.pos
	occ := p.Occupied()
	n := occ.PopCount()
	if n <= 2 {
		return true
	}

	pawns := p.Pawns()
	rooks := p.Rooks()
	queens := p.Queens()
	if pawns != 0 || rooks != 0 || queens != 0 {
		return false
	}

	minors := p.Knights() | p.Bishops()
	if n == 3 {
		return minors.PopCount() == 1
	}
	if n == 4 && p.Bishops().PopCount() == 2 && p.Knights() == 0 && (p.Bishops()&p.Us()).PopCount() == 1 {
		bishops := p.Bishops()
		a, rest := bishops.PopLSB()
		b, _ := rest.PopLSB()
		return squareColor(a) == squareColor(b)
	}
	return false
}

func squareColor(sq Square) int {
	return (int(sq.Rank()) + int(sq.File())) % 2
}

// AdjudicateNoLegalMoves sets the game result once the move generator reports
// no legal moves for the side to move: checkmate if in check, stalemate draw
// otherwise.
func (g *Game) AdjudicateNoLegalMoves() Result {
	if g.pos.IsChecked() {
		if g.turn == White {
			g.result = BlackWins
		} else {
			g.result = WhiteWins
		}
	} else {
		g.result = Draw
	}
	return g.result
}

// AdjudicateDraws checks the automatic draw conditions (repetition, fifty-move,
// insufficient material) and sets the result if any apply.
func (g *Game) AdjudicateDraws() (Result, bool) {
	if g.IsThreefoldRepetition() || g.IsFiftyMoveRule() || g.IsInsufficientMaterial() {
		g.result = Draw
		return Draw, true
	}
	return NoResult, false
}
