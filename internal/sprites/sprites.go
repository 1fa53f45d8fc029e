// Package sprites loads piece images and scales them for a board.
package sprites

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/dulchik/chess-position-trainer/internal/fonts"
	"github.com/dulchik/chess-position-trainer/internal/position"
)

// Scale is the sprite side relative to a board cell.
const Scale = 0.8

// Set maps FEN letters to sprites of one size. It is read-only after
// construction and safe to share.
type Set struct {
	size   int
	images map[byte]image.Image
}

// Sprite returns the image for a FEN letter, nil if unknown.
func (s *Set) Sprite(fen byte) image.Image {
	return s.images[fen]
}

// Size is the side of every sprite in pixels.
func (s *Set) Size() int {
	return s.size
}

// SizeFor returns the sprite side for a cell size.
func SizeFor(cell int) int {
	return int(Scale * float64(cell))
}

// FileName returns the sprite file for pc, e.g. Chess_ql.png for the white
// queen and Chess_nd.png for the black knight.
func FileName(pc position.Piece) string {
	shade := 'l'
	if pc.Color == position.Black {
		shade = 'd'
	}
	return fmt.Sprintf("Chess_%c%c.png", pc.Role.Char(), shade)
}

func allPieces() []position.Piece {
	var out []position.Piece
	for _, c := range [2]position.Color{position.White, position.Black} {
		for r := position.Pawn; r <= position.King; r++ {
			out = append(out, position.Piece{Role: r, Color: c})
		}
	}
	return out
}

// Load reads the twelve PNG sprites from dir and scales them for cell.
func Load(dir string, cell int) (*Set, error) {
	s := &Set{size: SizeFor(cell), images: make(map[byte]image.Image, 12)}
	for _, pc := range allPieces() {
		img, err := decode(filepath.Join(dir, FileName(pc)))
		if err != nil {
			return nil, err
		}
		s.images[pc.FEN()] = scale(img, s.size)
	}
	return s, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func scale(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// Generated draws plain sprites: a disc in the piece colour with the piece
// letter on it.
func Generated(cell int) (*Set, error) {
	size := SizeFor(cell)
	face, err := fonts.Bold(0.6 * float64(size))
	if err != nil {
		return nil, err
	}
	s := &Set{size: size, images: make(map[byte]image.Image, 12)}
	for _, pc := range allPieces() {
		s.images[pc.FEN()] = letterSprite(pc, size, face)
	}
	return s, nil
}

func letterSprite(pc position.Piece, size int, face font.Face) image.Image {
	body, ink := color.RGBA{250, 250, 250, 255}, color.RGBA{20, 20, 20, 255}
	if pc.Color == position.Black {
		body, ink = ink, body
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := size / 2
	c := image.Pt(r, r)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-c.X, y-c.Y
			switch d := dx*dx + dy*dy; {
			case d <= (r-2)*(r-2):
				img.Set(x, y, body)
			case d <= r*r:
				img.Set(x, y, color.RGBA{90, 90, 90, 255})
			}
		}
	}

	letter := string(pc.Role.Char() - 0x20)
	d := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: face}
	w := d.MeasureString(letter)
	asc := face.Metrics().CapHeight
	if asc == 0 {
		asc = face.Metrics().Ascent
	}
	d.Dot = fixed.Point26_6{
		X: fixed.I(size)/2 - w/2,
		Y: fixed.I(size)/2 + asc/2,
	}
	d.DrawString(letter)
	return img
}

// LoadOrGenerate loads sprites from dir, falling back to generated ones when
// dir is empty or unreadable.
func LoadOrGenerate(dir string, cell int, log zerolog.Logger) (*Set, error) {
	if dir != "" {
		s, err := Load(dir, cell)
		if err == nil {
			log.Info().Str("dir", dir).Int("size", s.size).Msg("sprites loaded")
			return s, nil
		}
		log.Warn().Err(err).Str("dir", dir).Msg("falling back to generated sprites")
	}
	return Generated(cell)
}
