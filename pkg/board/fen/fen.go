// Package fen contains utilities for reading and writing positions in Forsyth-Edwards
// Notation. See spec.md section 6: the standard 6-field format, with the halfmove and
// fullmove fields optional when the caller has no use for move numbers.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ravenhollow/corvid/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ParseError reports a malformed FEN string. The UCI adapter treats it as a reason to
// ignore the offending command rather than crash (spec.md section 7).
type ParseError struct {
	FEN    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid FEN %q: %v", e.FEN, e.Reason)
}

// Decode parses a FEN string into a Position plus the game bookkeeping fields that
// don't belong on Position itself: the physical side to move, the halfmove clock and
// the fullmove number. If includeMoveNumbers is false, the last two fields may be
// absent; they then default to 0 and 1 respectively.
func Decode(s string, includeMoveNumbers bool) (*board.Position, board.Color, int, int, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	minFields := 4
	if includeMoveNumbers {
		minFields = 6
	}
	if len(parts) < minFields {
		return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "too few fields"}
	}

	placements, err := decodePlacement(parts[0])
	if err != nil {
		return nil, 0, 0, 0, &ParseError{FEN: s, Reason: err.Error()}
	}

	turn, ok := parseColor(parts[1])
	if !ok {
		return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "invalid active color"}
	}

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "invalid castling rights"}
	}

	var ep board.Square
	hasEP := false
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "invalid en passant square"}
		}
		ep = sq
		hasEP = true
	}

	halfmove, fullmove := 0, 1
	if includeMoveNumbers {
		halfmove, err = strconv.Atoi(parts[4])
		if err != nil || halfmove < 0 {
			return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "invalid halfmove clock"}
		}
		fullmove, err = strconv.Atoi(parts[5])
		if err != nil || fullmove < 1 {
			return nil, 0, 0, 0, &ParseError{FEN: s, Reason: "invalid fullmove number"}
		}
	}

	pos, err := board.FromAbsolute(placements, turn, castling, ep, hasEP, halfmove)
	if err != nil {
		return nil, 0, 0, 0, &ParseError{FEN: s, Reason: err.Error()}
	}
	return pos, turn, halfmove, fullmove, nil
}

func decodePlacement(field string) ([]board.Placement, error) {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("expected 8 ranks, got %v", len(ranks))
	}

	var placements []board.Placement
	for i, rankStr := range ranks {
		rank := board.Rank(7 - i) // field lists rank 8 first.
		file := board.ZeroFile
		for _, r := range rankStr {
			if file >= board.NumFiles {
				return nil, fmt.Errorf("rank %v has more than 8 files", rank)
			}
			switch {
			case unicode.IsDigit(r):
				n := board.File(r - '0')
				if n < 1 || n > 8 {
					return nil, fmt.Errorf("invalid empty-square count '%v'", r)
				}
				file += n
			case unicode.IsLetter(r):
				piece, ok := board.ParsePiece(r)
				if !ok {
					return nil, fmt.Errorf("invalid piece '%v'", r)
				}
				color := board.Black
				if unicode.IsUpper(r) {
					color = board.White
				}
				placements = append(placements, board.Placement{Color: color, Piece: piece, Square: board.NewSquare(file, rank)})
				file++
			default:
				return nil, fmt.Errorf("invalid character '%v'", r)
			}
		}
		if file != board.NumFiles {
			return nil, fmt.Errorf("rank %v did not fill 8 files", rank)
		}
	}
	return placements, nil
}

// Encode renders the position in FEN notation. Ranks are printed from White's
// absolute perspective; turn identifies which side the Position's "Us" refers to.
func Encode(pos *board.Position, turn board.Color, halfmove, fullmove int) string {
	abs := make(map[board.Square]board.Placement, 32)
	for _, pl := range pos.AbsolutePlacements(turn) {
		abs[pl.Square] = pl
	}

	var sb strings.Builder
	for r := int(board.Rank8); r >= int(board.Rank1); r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			sq := board.NewSquare(f, board.Rank(r))
			pl, ok := abs[sq]
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(pl.Color, pl.Piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > int(board.Rank1) {
			sb.WriteRune('/')
		}
	}

	castling := printCastling(pos.CastlingRights(turn))

	ep := "-"
	if sq, ok := pos.EnPassantSquare(turn); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), printColor(turn), castling, ep, halfmove, fullmove)
}

func parseColor(s string) (board.Color, bool) {
	switch s {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func printColor(c board.Color) string {
	if c == board.White {
		return "w"
	}
	return "b"
}

func parseCastling(s string) (board.Castling, bool) {
	var c board.Castling
	if s == "-" {
		return c, true
	}
	for _, r := range s {
		switch r {
		case 'K':
			c |= board.WhiteKingSideCastle
		case 'Q':
			c |= board.WhiteQueenSideCastle
		case 'k':
			c |= board.BlackKingSideCastle
		case 'q':
			c |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return c, true
}

func printCastling(c board.Castling) string {
	return c.String()
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
