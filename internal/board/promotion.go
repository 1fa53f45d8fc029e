package board

import (
	"image"

	"github.com/dulchik/chess-position-trainer/internal/position"
)

// Promotion is the answer of a promotion prompt.
type Promotion uint8

const (
	PromoteQueen Promotion = iota
	PromoteRook
	PromoteBishop
	PromoteKnight
)

// Promotions lists the choices in prompt order.
var Promotions = [4]Promotion{PromoteQueen, PromoteRook, PromoteBishop, PromoteKnight}

// Role returns the piece role the pawn becomes.
func (p Promotion) Role() position.Role {
	switch p {
	case PromoteRook:
		return position.Rook
	case PromoteBishop:
		return position.Bishop
	case PromoteKnight:
		return position.Knight
	default:
		return position.Queen
	}
}

// Key returns the keyboard shortcut for the choice.
func (p Promotion) Key() byte {
	return p.Role().Char()
}

func (p Promotion) String() string {
	return p.Role().String()
}

// PromotionFromKey maps q, r, b or n (either case) to a choice.
func PromotionFromKey(c byte) (Promotion, bool) {
	for _, p := range Promotions {
		if p.Key() == c|0x20 {
			return p, true
		}
	}
	return PromoteQueen, false
}

// PromotionChooser asks the user which piece a pawn promotes to. Choose
// blocks until the user picks (true) or dismisses the prompt (false).
type PromotionChooser interface {
	Choose(side position.Color) (Promotion, bool)
}

// ChooserFunc adapts a function to PromotionChooser.
type ChooserFunc func(side position.Color) (Promotion, bool)

func (f ChooserFunc) Choose(side position.Color) (Promotion, bool) {
	return f(side)
}

// PromotionLayout places the four choices in a column starting on the
// promotion square and running toward the centre of the board, queen first.
type PromotionLayout struct {
	Geometry    Geometry
	Orientation Orientation
	Target      position.Square
	Side        position.Color
}

// Square returns the board square covered by choice p.
func (l PromotionLayout) Square(p Promotion) position.Square {
	step := -int(p)
	if l.Side == position.Black {
		step = int(p)
	}
	return position.NewSquare(l.Target.File(), l.Target.Rank()+step)
}

// Rect returns the pixel rectangle of choice p.
func (l PromotionLayout) Rect(p Promotion) image.Rectangle {
	x, y := l.Geometry.CellToScreen(l.Square(p), l.Orientation)
	return image.Rect(x, y, x+l.Geometry.CellSize, y+l.Geometry.CellSize)
}

// ChoiceAt returns the choice under the pixel; false means the click
// dismisses the prompt.
func (l PromotionLayout) ChoiceAt(px, py int) (Promotion, bool) {
	pt := image.Pt(px, py)
	for _, p := range Promotions {
		if pt.In(l.Rect(p)) {
			return p, true
		}
	}
	return PromoteQueen, false
}
