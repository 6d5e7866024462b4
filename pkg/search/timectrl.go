package search

import (
	"time"

	"github.com/ravenhollow/corvid/pkg/board"
)

// computeDeadline turns a go command's clock options into a wall-clock deadline,
// per spec.md section 4.6's move-time budget: movetime is used verbatim if given;
// otherwise, with no movestogo, mytime/40 before move 12 else mytime*0.05; with
// movestogo, 0.95*mytime/movestogo. Increment is not added (spec.md section 4.6).
func computeDeadline(g *board.Game, opt Options) (time.Time, bool) {
	if opt.Infinite {
		return time.Time{}, false
	}
	if opt.MoveTime > 0 {
		return time.Now().Add(opt.MoveTime), true
	}

	myTime := opt.WhiteTime
	if g.Turn() == board.Black {
		myTime = opt.BlackTime
	}
	if myTime <= 0 {
		return time.Time{}, false
	}

	var budget time.Duration
	if opt.MovesToGo > 0 {
		budget = time.Duration(0.95 * float64(myTime) / float64(opt.MovesToGo))
	} else if g.Fullmove() < 12 {
		budget = myTime / 40
	} else {
		budget = time.Duration(0.05 * float64(myTime))
	}
	return time.Now().Add(budget), true
}
