package sprites

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dulchik/chess-position-trainer/internal/position"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		pc   position.Piece
		want string
	}{
		{position.Piece{Role: position.Queen, Color: position.White}, "Chess_ql.png"},
		{position.Piece{Role: position.Knight, Color: position.Black}, "Chess_nd.png"},
		{position.Piece{Role: position.Pawn, Color: position.White}, "Chess_pl.png"},
	}
	for _, tt := range tests {
		if got := FileName(tt.pc); got != tt.want {
			t.Errorf("FileName(%v) = %q, want %q", tt.pc, got, tt.want)
		}
	}
}

func writeSprites(t *testing.T, dir string, side int) {
	t.Helper()
	for _, pc := range allPieces() {
		img := image.NewRGBA(image.Rect(0, 0, side, side))
		for y := 0; y < side; y++ {
			for x := 0; x < side; x++ {
				img.Set(x, y, color.RGBA{10, 200, 10, 255})
			}
		}
		f, err := os.Create(filepath.Join(dir, FileName(pc)))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
}

func TestLoadScales(t *testing.T) {
	dir := t.TempDir()
	writeSprites(t, dir, 120)

	s, err := Load(dir, 50)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Size() != 40 {
		t.Fatalf("Size() = %d, want 40", s.Size())
	}
	for _, c := range []byte("PNBRQKpnbrqk") {
		img := s.Sprite(c)
		if img == nil {
			t.Fatalf("no sprite for %q", c)
		}
		if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
			t.Fatalf("sprite %q is %v", c, b)
		}
	}
	if s.Sprite('x') != nil {
		t.Fatalf("sprite for unknown letter")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir(), 50); err == nil {
		t.Fatalf("Load of an empty directory succeeded")
	}
}

func TestLoadOrGenerateFallsBack(t *testing.T) {
	s, err := LoadOrGenerate(filepath.Join(t.TempDir(), "missing"), 50, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadOrGenerate: %v", err)
	}
	white, black := s.Sprite('Q'), s.Sprite('q')
	if white == nil || black == nil {
		t.Fatalf("generated set is incomplete")
	}
	// Sample a body pixel left of the letter.
	p := image.Pt(6, s.Size()/2)
	wr, _, _, _ := white.At(p.X, p.Y).RGBA()
	br, _, _, _ := black.At(p.X, p.Y).RGBA()
	if wr <= br {
		t.Fatalf("white sprite is not lighter than black: %d vs %d", wr, br)
	}
}
