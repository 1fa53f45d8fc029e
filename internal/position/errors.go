package position

import "errors"

var (
	// ErrInvalidFEN is wrapped by every ParseFEN failure.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a move does not match any legal move.
	ErrIllegalMove = errors.New("illegal move")
)
