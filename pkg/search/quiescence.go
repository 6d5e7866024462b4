package search

import (
	"context"
	"sort"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/eval"
	"github.com/ravenhollow/corvid/pkg/movegen"
)

// quiescence extends the search along captures (and, while in check, every legal
// move) past the nominal horizon, so alpha-beta never evaluates a position with a
// hanging piece on the board (spec.md section 4.6). When in check and no capture
// resolves it, evasion falls back to the full legal move list before quiescence
// reports the side has no reply at all (this repo's resolution of the spec's
// open question on that edge case).
func (s *Search) quiescence(ctx context.Context, g *board.Game, alpha, beta board.Score) (board.Score, bool) {
	if s.shouldStop() {
		return 0, true
	}
	s.nodes.Inc()

	if g.IsThreefoldRepetition() || g.IsFiftyMoveRule() || g.IsInsufficientMaterial() {
		return 0, false
	}

	pos := g.Position()
	inCheck := pos.IsChecked()

	if e, ok := s.TT.Probe(g.Hash()); ok {
		switch {
		case e.Bound == Exact:
			return e.Score, false
		case e.Bound == LowerBound && e.Score >= beta:
			return e.Score, false
		case e.Bound == UpperBound && e.Score <= alpha:
			return e.Score, false
		}
	}

	var standPat board.Score
	if inCheck {
		standPat = -board.Inf
	} else {
		standPat = s.Eval.Evaluate(pos)
		if standPat >= beta {
			return standPat, false
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	best := standPat
	triedAny := false

	var moves []board.Move
	if inCheck {
		moves = movegen.GenerateAll(pos)
	} else {
		moves = movegen.Generate(pos, movegen.AllCaptures, nil)
	}

	type scored struct {
		m   board.Move
		see board.Score
	}
	list := make([]scored, 0, len(moves))
	for _, m := range moves {
		var v board.Score
		if isCaptureMove(pos, m) {
			v = eval.SEE(pos, m)
		}
		list = append(list, scored{m, v})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].see > list[j].see })

	for _, c := range list {
		m := c.m
		if !inCheck {
			if !isCaptureMove(pos, m) {
				continue // outside check, quiescence only follows captures.
			}
			if c.see < 0 {
				continue
			}
			if standPat+eval.CaptureValue(pos, m)+200 <= alpha {
				continue // delta pruning: even winning this capture can't reach alpha.
			}
		}

		g.PushMove(m)
		triedAny = true
		score, aborted := s.quiescence(ctx, g, beta.Negate(), alpha.Negate())
		score = incMateDistance(score).Negate()
		g.PopMove()

		if aborted {
			return 0, true
		}
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}

	if inCheck && !triedAny {
		return -board.MateIn(0), false
	}
	return best, false
}
