package board

import "fmt"

// Score is a signed, centipawn-scaled evaluation or search result. Positive favors
// the side to move. The static evaluator is bound to +/-12000 (spec.md section 4.4);
// the search additionally uses the range above MaxScore/below MinScore to carry
// mate-distance-adjusted scores, and Inf as the outermost alpha-beta window.
type Score int16

const (
	MinScore Score = -12000
	MaxScore Score = 12000

	// Inf is used to seed the outermost alpha-beta window. It is never itself a
	// returned score (spec.md section 7: "excluding the inaccessible +/-INF
	// itself except as mate-adjacent markers").
	Inf Score = 32000

	// MateScore is the score for delivering mate at the current node (ply 0 from
	// the mating side). MateIn discounts it by ply so shorter mates score higher.
	MateScore Score = 31000
)

// MateIn returns the score for a forced mate found ply plies from the root.
func MateIn(ply int) Score {
	return MateScore - Score(ply)
}

// IsMateScore reports whether s represents a forced mate rather than a heuristic
// evaluation.
func (s Score) IsMateScore() bool {
	return s > MaxScore || s < -MaxScore
}

// MateDistance returns the number of plies to mate and true, iff s is a mate score.
func (s Score) MateDistance() (int, bool) {
	switch {
	case s > MaxScore:
		return int(MateScore - s), true
	case s < -MaxScore:
		return int(MateScore + s), true
	default:
		return 0, false
	}
}

// Negate flips the score to the opponent's perspective, as used by negamax.
func (s Score) Negate() Score {
	return -s
}

func (s Score) String() string {
	if d, ok := s.MateDistance(); ok {
		if s < 0 {
			return fmt.Sprintf("-M%d", (d+1)/2)
		}
		return fmt.Sprintf("M%d", (d+1)/2)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}
