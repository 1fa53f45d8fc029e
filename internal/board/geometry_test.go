package board

import (
	"testing"

	"github.com/dulchik/chess-position-trainer/internal/position"
)

func TestScreenToCellInvertsCellToScreen(t *testing.T) {
	for _, cell := range []int{50, 37, 80} {
		g := NewGeometry(cell)
		for _, o := range []Orientation{WhiteBottom, BlackBottom} {
			for sq := position.A1; sq <= position.H8; sq++ {
				x, y := g.CellToScreen(sq, o)
				for _, d := range []int{1, cell / 2, cell - 1} {
					got, ok := g.ScreenToCell(x+d, y+d, o)
					if !ok || got != sq {
						t.Fatalf("cell %d %v: ScreenToCell(CellToScreen(%s)+%d) = %s, %v", cell, o, sq, d, got, ok)
					}
				}
			}
		}
	}
}

func TestScreenToCell(t *testing.T) {
	g := NewGeometry(50)
	tests := []struct {
		name   string
		x, y   int
		o      Orientation
		want   position.Square
		wantOK bool
	}{
		{"top left white", 26, 26, WhiteBottom, position.A8, true},
		{"bottom right white", 424, 424, WhiteBottom, position.H1, true},
		{"top left black", 26, 26, BlackBottom, position.H1, true},
		{"bottom right black", 424, 424, BlackBottom, position.A8, true},
		{"e2 white", 25 + 4*50 + 10, 25 + 6*50 + 10, WhiteBottom, position.NewSquare(4, 1), true},
		{"left border", 10, 200, WhiteBottom, position.NoSquare, false},
		{"top border", 200, 24, WhiteBottom, position.NoSquare, false},
		{"right border", 425, 200, WhiteBottom, position.NoSquare, false},
		{"bottom border", 200, 440, BlackBottom, position.NoSquare, false},
		{"negative", -5, -5, WhiteBottom, position.NoSquare, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.ScreenToCell(tt.x, tt.y, tt.o)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("ScreenToCell(%d, %d) = %s, %v; want %s, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGeometryDefaults(t *testing.T) {
	g := NewGeometry(0)
	if g.CellSize != DefaultCellSize {
		t.Fatalf("CellSize = %d", g.CellSize)
	}
	if g.BoardSize() != 450 {
		t.Fatalf("BoardSize() = %d, want 450", g.BoardSize())
	}
}

func TestLightIsOrientationInvariant(t *testing.T) {
	if !Light(position.H1) || !Light(position.A8) || Light(position.A1) || Light(position.H8) {
		t.Fatalf("corner colours wrong")
	}
	g := NewGeometry(50)
	// Neighbouring squares on screen always differ, in both orientations.
	for _, o := range []Orientation{WhiteBottom, BlackBottom} {
		for sq := position.A1; sq <= position.H8; sq++ {
			x, y := g.CellToScreen(sq, o)
			right, ok := g.ScreenToCell(x+50+1, y+1, o)
			if ok && Light(right) == Light(sq) {
				t.Errorf("%v: %s and %s share a colour", o, sq, right)
			}
		}
	}
}

func TestOrientationFlip(t *testing.T) {
	if WhiteBottom.Flip() != BlackBottom || BlackBottom.Flip() != WhiteBottom {
		t.Fatalf("Flip is not an involution")
	}
}
