package position

import "fmt"

// MoveFlag marks moves that touch more than the origin and target squares.
type MoveFlag uint8

const (
	FlagNone MoveFlag = iota
	FlagCastle
	FlagEnPassant
	FlagDoublePush
)

// Move is a fully specified move. Two moves are equal iff all fields are.
type Move struct {
	From      Square
	To        Square
	Promotion Role
	Flag      MoveFlag
}

// UCI returns the coordinate notation used by the engine protocol, e.g.
// "e2e4" or "a7a8q". Castling is written as the king's move.
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoRole {
		s += string(m.Promotion.Char())
	}
	return s
}

func (m Move) String() string {
	return m.UCI()
}

// ParseUCI splits a coordinate string into origin, target and promotion role.
// It checks syntax only; legality is up to the position.
func ParseUCI(s string) (from, to Square, promo Role, err error) {
	if len(s) != 4 && len(s) != 5 {
		return NoSquare, NoSquare, NoRole, fmt.Errorf("invalid move %q", s)
	}
	if from, err = ParseSquare(s[0:2]); err != nil {
		return NoSquare, NoSquare, NoRole, fmt.Errorf("invalid move %q: %w", s, err)
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return NoSquare, NoSquare, NoRole, fmt.Errorf("invalid move %q: %w", s, err)
	}
	if len(s) == 5 {
		promo = roleFromChar(s[4])
		if promo == NoRole || promo == Pawn || promo == King {
			return NoSquare, NoSquare, NoRole, fmt.Errorf("invalid promotion in %q", s)
		}
	}
	return from, to, promo, nil
}
