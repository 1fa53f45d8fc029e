package board

import "github.com/dulchik/chess-position-trainer/internal/position"

// DragState is a piece lifted from its square and following the pointer.
// X and Y are in board pixel space.
type DragState struct {
	Origin position.Square
	Piece  position.Piece
	X, Y   int
}

// ViewModel is everything the renderer needs besides the position.
type ViewModel struct {
	Orientation Orientation
	Drag        *DragState

	// LastMove and Hint are only highlighted, never played.
	LastMove *position.Move
	Hint     *position.Move
}

// Dragging reports whether a piece is being dragged.
func (v ViewModel) Dragging() bool {
	return v.Drag != nil
}

// Clone returns a deep copy that shares nothing with v.
func (v ViewModel) Clone() ViewModel {
	c := ViewModel{Orientation: v.Orientation}
	if v.Drag != nil {
		d := *v.Drag
		c.Drag = &d
	}
	if v.LastMove != nil {
		m := *v.LastMove
		c.LastMove = &m
	}
	if v.Hint != nil {
		m := *v.Hint
		c.Hint = &m
	}
	return c
}
