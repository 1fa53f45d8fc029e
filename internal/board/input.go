package board

import (
	"github.com/rs/zerolog"

	"github.com/dulchik/chess-position-trainer/internal/position"
)

// Controller is the pointer state machine. It is Idle while the view has no
// drag and Dragging otherwise. It is not safe for concurrent use; one
// goroutine must own it together with its position.
type Controller struct {
	pos        position.Position
	view       ViewModel
	geom       Geometry
	chooser    PromotionChooser
	invalidate func()
	log        zerolog.Logger
}

// NewController returns an idle controller over pos. A nil chooser
// promotes to a queen without asking.
func NewController(pos position.Position, geom Geometry, chooser PromotionChooser, log zerolog.Logger) *Controller {
	return &Controller{
		pos:        pos,
		geom:       geom,
		chooser:    chooser,
		invalidate: func() {},
		log:        log,
	}
}

// OnInvalidate registers the callback run whenever the view needs a repaint.
func (c *Controller) OnInvalidate(f func()) {
	if f == nil {
		f = func() {}
	}
	c.invalidate = f
}

// Position returns a copy of the current position.
func (c *Controller) Position() position.Position {
	return c.pos
}

// View returns a copy of the view model.
func (c *Controller) View() ViewModel {
	return c.view.Clone()
}

// Geometry returns the pixel geometry used for hit testing.
func (c *Controller) Geometry() Geometry {
	return c.geom
}

// PointerDown lifts the piece under the pointer if it belongs to the side to
// move. It reports whether a drag started.
func (c *Controller) PointerDown(px, py int) bool {
	if c.view.Drag != nil {
		return false
	}
	sq, ok := c.geom.ScreenToCell(px, py, c.view.Orientation)
	if !ok {
		return false
	}
	pc := c.pos.Piece(sq)
	if pc.IsEmpty() || pc.Color != c.pos.SideToMove() {
		return false
	}
	c.view.Drag = &DragState{Origin: sq, Piece: pc, X: px, Y: py}
	c.invalidate()
	return true
}

// PointerMove moves the dragged piece.
func (c *Controller) PointerMove(px, py int) {
	if c.view.Drag == nil {
		return
	}
	c.view.Drag.X, c.view.Drag.Y = px, py
	c.invalidate()
}

// PointerUp drops the dragged piece. An illegal or off-board drop, or a
// dismissed promotion prompt, puts the piece back. The played move is
// returned with true.
func (c *Controller) PointerUp(px, py int) (position.Move, bool) {
	d := c.view.Drag
	if d == nil {
		return position.Move{}, false
	}
	c.view.Drag = nil
	defer c.invalidate()

	to, ok := c.geom.ScreenToCell(px, py, c.view.Orientation)
	if !ok || to == d.Origin {
		return position.Move{}, false
	}
	if !c.pos.IsLegal(d.Origin, to, position.NoRole) {
		c.log.Debug().Str("from", d.Origin.String()).Str("to", to.String()).Msg("illegal drop")
		return position.Move{}, false
	}

	promo := position.NoRole
	if c.pos.IsPromotion(d.Origin, to) {
		choice := PromoteQueen
		if c.chooser != nil {
			// Repaint with the pawn back home while the prompt is open.
			c.invalidate()
			var picked bool
			if choice, picked = c.chooser.Choose(c.pos.SideToMove()); !picked {
				c.log.Debug().Msg("promotion cancelled")
				return position.Move{}, false
			}
		}
		promo = choice.Role()
	}
	return c.commit(d.Origin, to, promo)
}

// ApplyUCI plays a move given in coordinate notation, as returned by an
// engine. Any drag in progress is dropped.
func (c *Controller) ApplyUCI(s string) (position.Move, error) {
	m, err := c.pos.MoveFromUCI(s)
	if err != nil {
		return position.Move{}, err
	}
	c.view.Drag = nil
	m, err = c.pos.Apply(m.From, m.To, m.Promotion)
	if err != nil {
		return position.Move{}, err
	}
	c.played(m)
	return m, nil
}

func (c *Controller) commit(from, to position.Square, promo position.Role) (position.Move, bool) {
	m, err := c.pos.Apply(from, to, promo)
	if err != nil {
		// Legality was checked above; the board is left as it was.
		c.log.Warn().Err(err).Msg("move rejected")
		return position.Move{}, false
	}
	c.played(m)
	return m, true
}

func (c *Controller) played(m position.Move) {
	c.view.LastMove = &m
	c.view.Hint = nil
	c.log.Info().Str("move", m.UCI()).Str("fen", c.pos.FEN()).Msg("move played")
	c.invalidate()
}

// SetHint highlights m without playing it. A nil move clears the hint.
func (c *Controller) SetHint(m *position.Move) {
	c.view.Hint = m
	c.invalidate()
}

// Flip turns the board around. A drag in progress is cancelled.
func (c *Controller) Flip() {
	c.view.Orientation = c.view.Orientation.Flip()
	c.view.Drag = nil
	c.invalidate()
}

// SetOrientation sets which side is drawn at the bottom.
func (c *Controller) SetOrientation(o Orientation) {
	c.view.Orientation = o
	c.invalidate()
}

// Reset replaces the position and clears drag and highlights. The
// orientation is kept.
func (c *Controller) Reset(pos position.Position) {
	c.pos = pos
	c.view = ViewModel{Orientation: c.view.Orientation}
	c.invalidate()
}
