// Command boardpng writes a position to a PNG file.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/logging"
	"github.com/dulchik/chess-position-trainer/internal/position"
	"github.com/dulchik/chess-position-trainer/internal/render"
	"github.com/dulchik/chess-position-trainer/internal/sprites"
)

type options struct {
	fen     string
	last    string
	cell    int
	flip    bool
	sprites string
}

func paint(w io.Writer, opt options, logger zerolog.Logger) error {
	pos, err := position.ParseFEN(opt.fen)
	if err != nil {
		return err
	}
	view := board.ViewModel{}
	if opt.flip {
		view.Orientation = board.BlackBottom
	}
	if opt.last != "" {
		m, err := pos.MoveFromUCI(opt.last)
		if err != nil {
			return fmt.Errorf("last move: %w", err)
		}
		if _, err := pos.Apply(m.From, m.To, m.Promotion); err != nil {
			return err
		}
		view.LastMove = &m
	}

	geom := board.NewGeometry(opt.cell)
	set, err := sprites.LoadOrGenerate(opt.sprites, opt.cell, logger)
	if err != nil {
		return err
	}
	r, err := render.New(geom, set, render.DefaultTheme())
	if err != nil {
		return err
	}

	img := image.NewRGBA(r.Bounds())
	r.Paint(img, &pos, &view)
	return png.Encode(w, img)
}

func main() {
	var (
		opt options
		out string
	)
	flag.StringVar(&opt.fen, "fen", position.StartFEN, "position to draw")
	flag.StringVar(&opt.last, "play", "", "move to play first and highlight, e.g. e2e4")
	flag.IntVar(&opt.cell, "cell", board.DefaultCellSize, "cell size in pixels")
	flag.BoolVar(&opt.flip, "flip", false, "draw black at the bottom")
	flag.StringVar(&opt.sprites, "sprites", "", "directory with piece sprites")
	flag.StringVar(&out, "o", "chessboard.png", "output file")
	flag.Parse()

	logger, err := logging.New(os.Stderr, "info")
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	if err := paint(f, opt, logger); err != nil {
		f.Close()
		os.Remove(out)
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	logger.Info().Str("file", out).Msg("board written")
}
