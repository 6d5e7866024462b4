package search

import (
	"sort"

	"github.com/ravenhollow/corvid/pkg/board"
	"github.com/ravenhollow/corvid/pkg/eval"
	"github.com/ravenhollow/corvid/pkg/movegen"
)

type stage uint8

const (
	stageHash stage = iota
	stageCapturesGen
	stageWinning
	stageKiller1
	stageKiller2
	stageQuietsGen
	stageQuiets
	stageLosing
	stageDone
)

type scoredMove struct {
	m     board.Move
	score board.Score
}

// orderer yields every legal move of a position in the stage order spec.md section
// 4.6 names: hash move, winning captures (SEE descending), both killers, quiet
// moves (history descending), then losing captures. Moves already yielded in an
// earlier stage are skipped if a later stage would produce them again.
type orderer struct {
	pos               *board.Position
	hash, k1, k2      board.Move
	hist              *History

	stage              stage
	captures, quiets, losing []scoredMove
	ci, qi, li         int
	emitted            map[board.Move]bool
}

func newOrderer(pos *board.Position, hash, k1, k2 board.Move, hist *History) *orderer {
	return &orderer{
		pos:     pos,
		hash:    hash,
		k1:      k1,
		k2:      k2,
		hist:    hist,
		emitted: make(map[board.Move]bool, 8),
	}
}

// Next returns the next move in stage order, or ok=false once every legal move has
// been produced exactly once.
func (o *orderer) Next() (board.Move, bool) {
	for {
		switch o.stage {
		case stageHash:
			o.stage = stageCapturesGen
			if o.hash != 0 && o.isValid(o.hash) {
				o.emitted[o.hash] = true
				return o.hash, true
			}
		case stageCapturesGen:
			o.genCaptures()
			o.stage = stageWinning
		case stageWinning:
			if o.ci < len(o.captures) {
				c := o.captures[o.ci]
				o.ci++
				if o.emitted[c.m] {
					continue
				}
				o.emitted[c.m] = true
				return c.m, true
			}
			o.stage = stageKiller1
		case stageKiller1:
			o.stage = stageKiller2
			if o.k1 != 0 && !o.emitted[o.k1] && !isCaptureMove(o.pos, o.k1) && o.isValid(o.k1) {
				o.emitted[o.k1] = true
				return o.k1, true
			}
		case stageKiller2:
			o.stage = stageQuietsGen
			if o.k2 != 0 && !o.emitted[o.k2] && !isCaptureMove(o.pos, o.k2) && o.isValid(o.k2) {
				o.emitted[o.k2] = true
				return o.k2, true
			}
		case stageQuietsGen:
			o.genQuiets()
			o.stage = stageQuiets
		case stageQuiets:
			if o.qi < len(o.quiets) {
				q := o.quiets[o.qi]
				o.qi++
				if o.emitted[q.m] {
					continue
				}
				o.emitted[q.m] = true
				return q.m, true
			}
			o.stage = stageLosing
		case stageLosing:
			if o.li < len(o.losing) {
				l := o.losing[o.li]
				o.li++
				if o.emitted[l.m] {
					continue
				}
				o.emitted[l.m] = true
				return l.m, true
			}
			o.stage = stageDone
		case stageDone:
			return 0, false
		}
	}
}

// isValid reports whether m is a legal move of o.pos: the move generator must
// produce exactly m for its from/to/promotion, which rejects hash and killer moves
// that belong to a different position.
func (o *orderer) isValid(m board.Move) bool {
	found, ok := movegen.FindMove(o.pos, m.From(), m.To(), m.PromotionPiece())
	return ok && found == m
}

func (o *orderer) genCaptures() {
	for _, m := range movegen.Generate(o.pos, movegen.AllCaptures, nil) {
		s := eval.SEE(o.pos, m)
		if s >= 0 {
			o.captures = append(o.captures, scoredMove{m, s})
		} else {
			o.losing = append(o.losing, scoredMove{m, s})
		}
	}
	sort.SliceStable(o.captures, func(i, j int) bool { return o.captures[i].score > o.captures[j].score })
}

func (o *orderer) genQuiets() {
	for _, m := range movegen.Generate(o.pos, movegen.AllQuiets, nil) {
		s := board.Score(o.hist.Score(o.pos.PieceAt(m.From()), m.To()))
		o.quiets = append(o.quiets, scoredMove{m, s})
	}
	sort.SliceStable(o.quiets, func(i, j int) bool { return o.quiets[i].score > o.quiets[j].score })
}

// isCaptureMove reports whether m removes an enemy piece, including en passant.
func isCaptureMove(pos *board.Position, m board.Move) bool {
	if m.Type() == board.EnPassantCapture {
		return true
	}
	return !pos.IsEmpty(m.To())
}
