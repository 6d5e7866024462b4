// Package search implements the negamax alpha-beta tree search described in
// spec.md section 4.6: quiescence at the horizon, a transposition table with
// bound-aware cutoffs, killer and history move ordering, null-move pruning, late
// move reductions, futility pruning, check extension, iterative deepening with a
// computed move-time budget, and PV extraction.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/eval"
	"go.uber.org/atomic"
)

// PV is the principal variation found at some completed search depth.
type PV struct {
	Depth int
	Score board.Score
	Nodes uint64
	Time  time.Duration
	Moves []board.Move
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, p.Moves)
}

// Options holds the per-search parameters a UCI `go` command supplies.
type Options struct {
	DepthLimit int // 0 == no limit
	NodeLimit  uint64

	MoveTime time.Duration // exact time for this move, if set

	WhiteTime, BlackTime time.Duration
	WhiteInc, BlackInc   time.Duration
	MovesToGo            int

	Infinite bool
}

// Search runs negamax alpha-beta search over a board.Game, maintaining a
// transposition table and killer/history move-ordering tables across calls so
// they keep paying off move after move in a game.
type Search struct {
	Eval eval.Evaluator
	TT   *Table

	killers Killers
	history History

	searching atomic.Bool
	nodes     atomic.Uint64
	nodeLimit uint64
	deadline  time.Time
	hasClock  bool
}

// NewSearch returns a Search ready to run, with its own transposition table sized
// to sizeBytes.
func NewSearch(ctx context.Context, e eval.Evaluator, sizeBytes uint64) *Search {
	return &Search{
		Eval: e,
		TT:   NewTable(ctx, sizeBytes),
	}
}

// NewGame clears every table that must not leak information across games (spec.md
// section 3: "cleared on new-game").
func (s *Search) NewGame() {
	s.TT.Clear()
	s.killers.Clear()
	s.history.Clear()
}

// Stop clears the searching flag; the running search observes it at the next move
// boundary and unwinds without committing a half-finished result (spec.md
// section 5).
func (s *Search) Stop() {
	s.searching.Store(false)
}

// Searching reports whether a search is currently in flight.
func (s *Search) Searching() bool {
	return s.searching.Load()
}

// Run launches iterative deepening from g's current position, calling info after
// every completed depth, and returns the last fully completed iteration's PV. g is
// used and restored (every PushMove is matched by a PopMove) but not left mutated.
func (s *Search) Run(ctx context.Context, g *board.Game, opt Options, info func(PV)) PV {
	s.searching.Store(true)
	defer s.searching.Store(false)

	s.nodes.Store(0)
	s.nodeLimit = opt.NodeLimit
	s.deadline, s.hasClock = computeDeadline(g, opt)
	s.TT.NewSearch()

	var best PV
	depthLimit := opt.DepthLimit
	if depthLimit <= 0 {
		depthLimit = 127
	}

	for depth := 1; depth <= depthLimit; depth++ {
		start := time.Now()
		score, moves, aborted := s.searchRoot(ctx, g, depth)
		if aborted && depth > 1 {
			break // keep the previous completed iteration's result.
		}
		if aborted {
			// Depth 1 aborted before completing: no iteration has finished, so
			// the returned PV is empty.
			break
		}

		best = PV{Depth: depth, Score: score, Nodes: s.nodes.Load(), Time: time.Since(start), Moves: moves}
		if info != nil {
			info(best)
		}

		if _, ok := score.MateDistance(); ok && !opt.Infinite {
			break
		}
		if s.shouldStop() {
			break
		}
	}
	return best
}

// searchRoot runs one iterative-deepening pass at depth, ordering root moves by
// the previous iteration's stored best move (via the transposition table) and
// returning its score, PV and whether it was aborted before completing.
func (s *Search) searchRoot(ctx context.Context, g *board.Game, depth int) (board.Score, []board.Move, bool) {
	pos := g.Position()
	hashMove := board.Move(0)
	if e, ok := s.TT.Probe(g.Hash()); ok {
		hashMove = e.Move
	}
	k1, k2 := s.killers.Get(0)
	ord := newOrderer(pos, hashMove, k1, k2, &s.history)

	alpha, beta := -board.Inf, board.Inf
	best := -board.Inf
	var bestMoves []board.Move
	first := true
	hasMove := false

	for {
		m, ok := ord.Next()
		if !ok {
			break
		}
		g.PushMove(m)
		hasMove = true

		var score board.Score
		var rem []board.Move
		var aborted bool
		if first {
			score, rem, aborted = s.negamax(ctx, g, 1, depth-1, beta.Negate(), alpha.Negate(), true)
			first = false
		} else {
			score, rem, aborted = s.negamax(ctx, g, 1, depth-1, (alpha + 1).Negate(), alpha.Negate(), true)
			if !aborted && score > alpha {
				score, rem, aborted = s.negamax(ctx, g, 1, depth-1, beta.Negate(), alpha.Negate(), true)
			}
		}
		score = incMateDistance(score).Negate()
		g.PopMove()

		if aborted {
			return best, bestMoves, true
		}
		if score > best {
			best = score
			bestMoves = append([]board.Move{m}, rem...)
		}
		if score > alpha {
			alpha = score
		}
	}

	if !hasMove {
		if pos.IsChecked() {
			return -board.MateIn(0), nil, false
		}
		return 0, nil, false
	}
	if len(bestMoves) > 0 {
		s.TT.Store(g.Hash(), Exact, depth, best, bestMoves[0])
	}
	return best, bestMoves, false
}

// negamax searches g's current position to depth plies, returning a score from the
// side to move's perspective, the continuation below the current node, and
// whether the search was aborted (time/node budget or external stop) before a
// usable result was produced.
func (s *Search) negamax(ctx context.Context, g *board.Game, ply, depth int, alpha, beta board.Score, nullOk bool) (board.Score, []board.Move, bool) {
	if s.shouldStop() {
		return 0, nil, true
	}
	s.nodes.Inc()

	if ply > 0 && (g.IsThreefoldRepetition() || g.IsFiftyMoveRule() || g.IsInsufficientMaterial()) {
		return 0, nil, false
	}

	isPV := beta-alpha > 1

	var hashMove board.Move
	if e, ok := s.TT.Probe(g.Hash()); ok {
		hashMove = e.Move
		if e.Depth >= depth {
			switch {
			case e.Bound == Exact:
				return e.Score, nil, false
			case e.Bound == LowerBound && e.Score >= beta:
				return e.Score, nil, false
			case e.Bound == UpperBound && e.Score <= alpha:
				return e.Score, nil, false
			}
		}
	}

	pos := g.Position()
	inCheck := pos.IsChecked()

	if depth <= 0 {
		score, aborted := s.quiescence(ctx, g, alpha, beta)
		return score, nil, aborted
	}

	if !isPV && nullOk && !inCheck && depth >= 3 && hasNonPawnMaterial(pos) {
		g.PushNullMove()
		score, _, aborted := s.negamax(ctx, g, ply+1, depth-1-3, beta.Negate(), (beta-1).Negate(), false)
		score = score.Negate()
		g.PopNullMove()
		if aborted {
			return 0, nil, true
		}
		if score >= beta {
			return score, nil, false
		}
	}

	if inCheck {
		depth++
	}

	k1, k2 := s.killers.Get(ply)
	ord := newOrderer(pos, hashMove, k1, k2, &s.history)

	best := -board.Inf
	var bestMove board.Move
	var pvMoves []board.Move
	bound := UpperBound
	hasMove := false
	sawAnyMove := false
	futilityPruned := false
	material := s.Eval.Material(pos)

	idx := 0
	for {
		m, ok := ord.Next()
		if !ok {
			break
		}
		sawAnyMove = true

		if idx > 0 && !isPV && depth <= 2 && !inCheck && !m.IsPromotion() && !isCaptureMove(pos, m) {
			margin := board.Score(300)
			if depth == 2 {
				margin = 500
			}
			if material+eval.CaptureValue(pos, m)+margin <= alpha {
				futilityPruned = true
				idx++
				continue
			}
		}

		g.PushMove(m)
		hasMove = true
		afterInCheck := g.Position().IsChecked()

		var score board.Score
		var rem []board.Move
		var aborted bool
		if idx == 0 {
			score, rem, aborted = s.negamax(ctx, g, ply+1, depth-1, beta.Negate(), alpha.Negate(), true)
		} else {
			r := lmrReduction(ply, idx, inCheck, afterInCheck, depth, isPV, m == k1 || m == k2, isCaptureMove(pos, m) || m.IsPromotion())
			score, rem, aborted = s.negamax(ctx, g, ply+1, depth-1-r, (alpha+1).Negate(), alpha.Negate(), true)
			if !aborted && r > 0 && score.Negate() > alpha {
				score, rem, aborted = s.negamax(ctx, g, ply+1, depth-1, (alpha+1).Negate(), alpha.Negate(), true)
			}
			if !aborted && score.Negate() > alpha && score.Negate() < beta {
				score, rem, aborted = s.negamax(ctx, g, ply+1, depth-1, beta.Negate(), alpha.Negate(), true)
			}
		}
		score = incMateDistance(score).Negate()
		g.PopMove()

		if aborted {
			return 0, nil, true
		}

		if score > best {
			best = score
			bestMove = m
			pvMoves = append([]board.Move{m}, rem...)
		}
		if best >= beta {
			s.TT.Store(g.Hash(), LowerBound, depth, best, bestMove)
			if !isCaptureMove(pos, m) {
				s.killers.Store(ply, m)
				s.history.Add(pos.PieceAt(m.From()), m.To(), depth)
			}
			return best, pvMoves, false
		}
		if score > alpha {
			alpha = score
			bound = Exact
		}
		idx++
	}

	if !sawAnyMove {
		if inCheck {
			return -board.MateIn(0), nil, false
		}
		return 0, nil, false
	}

	if !hasMove && futilityPruned {
		// Every legal move was futility-pruned: the node still has replies, just
		// none worth searching at this margin, so its value is the alpha it
		// never managed to raise (spec.md section 4.6).
		return alpha, nil, false
	}

	s.TT.Store(g.Hash(), bound, depth, best, bestMove)
	return best, pvMoves, false
}

func (s *Search) shouldStop() bool {
	if !s.searching.Load() {
		return true
	}
	if s.nodeLimit > 0 && s.nodes.Load() >= s.nodeLimit {
		return true
	}
	if s.hasClock && !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return true
	}
	return false
}

// Nodes returns the number of nodes visited by the search currently or most
// recently in flight. Safe to read concurrently while a search is running, for
// the host's periodic `info nodes/nps` line (spec.md section 6) between PVs.
func (s *Search) Nodes() uint64 {
	return s.nodes.Load()
}

// hasNonPawnMaterial reports whether the side to move has any piece other than
// pawns and king, the usual zugzwang guard for null-move pruning.
func hasNonPawnMaterial(pos *board.Position) bool {
	us := pos.Us()
	return (pos.Knights()|pos.Bishops()|pos.Rooks()|pos.Queens())&us != 0
}

// lmrReduction implements spec.md section 4.6's late move reduction rule.
func lmrReduction(ply, idx int, beforeCheck, afterCheck bool, depth int, isPV, isKiller, isTactical bool) int {
	if beforeCheck || afterCheck || depth < 3 || isPV || isKiller || isTactical || idx < 4 {
		return 0
	}
	if ply >= 6 {
		return 2
	}
	return 1
}

// incMateDistance adjusts a mate score by one ply as it propagates up the
// recursion, so a mate found deeper in the tree scores strictly less urgently
// than one found closer to the current node.
func incMateDistance(s board.Score) board.Score {
	d, ok := s.MateDistance()
	if !ok {
		return s
	}
	if s > 0 {
		return board.MateIn(d + 1)
	}
	return board.MateIn(d + 1).Negate()
}
