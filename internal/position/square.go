package position

import "fmt"

// Square is a board square indexed file + 8*rank, so A1 = 0 and H8 = 63.
type Square int8

// NoSquare marks an absent square, e.g. no en-passant target.
const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A8 Square = iota + 56
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NewSquare builds a square from 0-based file and rank. Out of range inputs
// give NoSquare.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(file + 8*rank)
}

// File returns 0 for the a-file through 7 for the h-file.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns 0 for the first rank through 7 for the eighth.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// Valid reports whether sq is on the board.
func (sq Square) Valid() bool {
	return sq >= 0 && sq < 64
}

// String returns lower-case algebraic notation, or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare parses lower-case algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	sq := NewSquare(int(s[0])-'a', int(s[1])-'1')
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return sq, nil
}

// FileLabel and RankLabel give the upper-case coordinate labels used on the
// board border.
func FileLabel(file int) string {
	return string(rune('A' + file))
}

func RankLabel(rank int) string {
	return string(rune('1' + rank))
}
