// Package render paints a chessboard into any draw.Image.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/fonts"
	"github.com/dulchik/chess-position-trainer/internal/position"
)

// SpriteSource returns the image for a piece keyed by its FEN letter, or nil
// when it has none. Sprites are expected to be about 0.8 of a cell.
type SpriteSource interface {
	Sprite(fen byte) image.Image
}

// Renderer paints boards of one geometry.
type Renderer struct {
	geom    board.Geometry
	theme   Theme
	sprites SpriteSource
	label   font.Face
}

// New returns a renderer. Coordinates are drawn at 0.38 of a cell.
func New(geom board.Geometry, sprites SpriteSource, theme Theme) (*Renderer, error) {
	face, err := fonts.Bold(0.38 * float64(geom.CellSize))
	if err != nil {
		return nil, err
	}
	return &Renderer{geom: geom, theme: theme, sprites: sprites, label: face}, nil
}

// Geometry returns the geometry the renderer paints with.
func (r *Renderer) Geometry() board.Geometry {
	return r.geom
}

// Bounds is the rectangle Paint covers.
func (r *Renderer) Bounds() image.Rectangle {
	n := r.geom.BoardSize()
	return image.Rect(0, 0, n, n)
}

// Paint draws the board from bottom to top: background, cells, highlights,
// static pieces except the dragged one, the dragged piece, coordinates and
// the side to move disc.
func (r *Renderer) Paint(dst draw.Image, pos *position.Position, view *board.ViewModel) {
	o := view.Orientation
	fill(dst, r.Bounds(), r.theme.Background, draw.Src)

	for sq := position.A1; sq <= position.H8; sq++ {
		c := r.theme.DarkCell
		if board.Light(sq) {
			c = r.theme.LightCell
		}
		fill(dst, r.cellRect(sq, o), c, draw.Src)
	}
	r.paintHighlights(dst, pos, view)

	for sq := position.A1; sq <= position.H8; sq++ {
		pc := pos.Piece(sq)
		if pc.IsEmpty() || (view.Drag != nil && view.Drag.Origin == sq) {
			continue
		}
		r.paintSprite(dst, pc, r.cellRect(sq, o))
	}

	if d := view.Drag; d != nil {
		// Centre the floating piece on the pointer.
		n := r.geom.CellSize
		r.paintSprite(dst, d.Piece, image.Rect(d.X-n/2, d.Y-n/2, d.X-n/2+n, d.Y-n/2+n))
	}

	r.paintCoordinates(dst, o)
	r.paintSideToMove(dst, pos.SideToMove())
}

func (r *Renderer) paintHighlights(dst draw.Image, pos *position.Position, view *board.ViewModel) {
	o := view.Orientation
	if m := view.LastMove; m != nil {
		fill(dst, r.cellRect(m.From, o), r.theme.LastMove, draw.Over)
		fill(dst, r.cellRect(m.To, o), r.theme.LastMove, draw.Over)
	}
	if m := view.Hint; m != nil {
		fill(dst, r.cellRect(m.From, o), r.theme.Hint, draw.Over)
		fill(dst, r.cellRect(m.To, o), r.theme.Hint, draw.Over)
	}
	if pos.InCheck() {
		fill(dst, r.cellRect(pos.KingSquare(pos.SideToMove()), o), r.theme.Check, draw.Over)
	}
	if d := view.Drag; d != nil {
		for _, m := range pos.LegalMovesFrom(d.Origin) {
			c := r.theme.Target
			if !pos.Piece(m.To).IsEmpty() {
				c = r.theme.Capture
			}
			fill(dst, r.cellRect(m.To, o), c, draw.Over)
		}
	}
}

// paintSprite centres the sprite of pc in rect.
func (r *Renderer) paintSprite(dst draw.Image, pc position.Piece, rect image.Rectangle) {
	if r.sprites == nil {
		return
	}
	img := r.sprites.Sprite(pc.FEN())
	if img == nil {
		return
	}
	b := img.Bounds()
	at := rect.Min.Add(image.Pt((rect.Dx()-b.Dx())/2, (rect.Dy()-b.Dy())/2))
	draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(b.Size())}, img, b.Min, draw.Over)
}

func (r *Renderer) paintCoordinates(dst draw.Image, o board.Orientation) {
	n := float64(r.geom.CellSize)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.theme.Coordinates), Face: r.label}
	for col := 0; col < 8; col++ {
		s := position.FileLabel(r.geom.FileAtColumn(col, o))
		x := n * (0.9 + float64(col))
		r.drawLabel(d, s, x, n*0.4)
		r.drawLabel(d, s, x, n*8.9)
	}
	for row := 0; row < 8; row++ {
		s := position.RankLabel(r.geom.RankAtRow(row, o))
		y := n * (1.2 + float64(row))
		r.drawLabel(d, s, n*0.1, y)
		r.drawLabel(d, s, n*8.6, y)
	}
}

func (r *Renderer) drawLabel(d *font.Drawer, s string, x, y float64) {
	d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	d.DrawString(s)
}

// paintSideToMove draws the disc in the bottom right corner of the border.
func (r *Renderer) paintSideToMove(dst draw.Image, side position.Color) {
	n := r.geom.CellSize
	centre := image.Pt(n*8+n/2+n/4, n*8+n/2+n/4)
	radius := n / 5
	c := r.theme.WhiteToMove
	if side == position.Black {
		c = r.theme.BlackToMove
	}
	// Dark rim, then the fill.
	disc(dst, centre, radius, r.theme.BlackToMove)
	disc(dst, centre, radius-1, c)
}

// PaintPromotionPrompt draws the four choices of layout over the board.
func (r *Renderer) PaintPromotionPrompt(dst draw.Image, layout board.PromotionLayout) {
	for _, p := range board.Promotions {
		rect := layout.Rect(p)
		fill(dst, rect, r.theme.PromptCell, draw.Over)
		r.paintSprite(dst, position.Piece{Role: p.Role(), Color: layout.Side}, rect)
	}
}

func (r *Renderer) cellRect(sq position.Square, o board.Orientation) image.Rectangle {
	x, y := r.geom.CellToScreen(sq, o)
	return image.Rect(x, y, x+r.geom.CellSize, y+r.geom.CellSize)
}

func fill(dst draw.Image, rect image.Rectangle, c color.Color, op draw.Op) {
	draw.Draw(dst, rect, image.NewUniform(c), image.Point{}, op)
}

func disc(dst draw.Image, centre image.Point, radius int, c color.Color) {
	if radius <= 0 {
		return
	}
	rect := image.Rect(centre.X-radius, centre.Y-radius, centre.X+radius+1, centre.Y+radius+1)
	draw.DrawMask(dst, rect, image.NewUniform(c), image.Point{}, &circle{centre, radius}, rect.Min, draw.Over)
}

// circle is an alpha mask, as in the image/draw package documentation.
type circle struct {
	p image.Point
	r int
}

func (c *circle) ColorModel() color.Model {
	return color.AlphaModel
}

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.p.X-c.r, c.p.Y-c.r, c.p.X+c.r+1, c.p.Y+c.r+1)
}

func (c *circle) At(x, y int) color.Color {
	dx, dy := x-c.p.X, y-c.p.Y
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{255}
	}
	return color.Alpha{0}
}
