package search

import "github.com/ravenhollow/corvid/pkg/board"

// History is a butterfly table: a counter per (piece type, to-square) pair,
// incremented by depth^2 whenever a quiet move causes a beta cutoff, used to order
// quiet moves that are not killers (spec.md section 3).
type History struct {
	counts [board.NumPieces + 1][board.NumSquares]uint32
}

// Add increments the counter for a quiet move that caused a cutoff at the given
// depth.
func (h *History) Add(piece board.Piece, to board.Square, depth int) {
	v := uint32(depth * depth)
	c := &h.counts[piece][to]
	if uint64(*c)+uint64(v) > 0xffffffff {
		h.age()
	}
	*c += v
}

// Score returns the move's ordering value, clipped to fit a 16-bit range so it
// never dominates a killer or hash move's priority.
func (h *History) Score(piece board.Piece, to board.Square) int32 {
	v := h.counts[piece][to]
	if v > 0xffff {
		return 0xffff
	}
	return int32(v)
}

// age halves every counter, keeping the table from saturating over a long search
// without ever clearing the accumulated ordering information outright.
func (h *History) age() {
	for p := range h.counts {
		for sq := range h.counts[p] {
			h.counts[p][sq] /= 2
		}
	}
}

// Clear resets every counter, used on ucinewgame.
func (h *History) Clear() {
	*h = History{}
}
