package search

import "github.com/ravenhollow/corvid/pkg/board"

// maxKillerPly bounds the killer table's depth; spec.md section 3 caps it at 16
// plies, beyond which killer moves stop paying for the bookkeeping.
const maxKillerPly = 16

// Killers is a two-slot-per-ply table of quiet moves that caused a beta cutoff.
// Insertion pushes the existing first slot into the second, so the most recent
// killer is always tried first.
type Killers struct {
	slots [maxKillerPly][2]board.Move
}

// Store records m as a killer at ply, unless it is already the first slot.
func (k *Killers) Store(ply int, m board.Move) {
	if ply < 0 || ply >= maxKillerPly {
		return
	}
	if k.slots[ply][0] == m {
		return
	}
	k.slots[ply][1] = k.slots[ply][0]
	k.slots[ply][0] = m
}

// Get returns the two killer moves at ply (the zero move if a slot is unused).
func (k *Killers) Get(ply int) (board.Move, board.Move) {
	if ply < 0 || ply >= maxKillerPly {
		return 0, 0
	}
	return k.slots[ply][0], k.slots[ply][1]
}

// Clear resets every slot, used on ucinewgame.
func (k *Killers) Clear() {
	*k = Killers{}
}
