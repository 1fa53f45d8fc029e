package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/config"
	"github.com/dulchik/chess-position-trainer/internal/fonts"
	"github.com/dulchik/chess-position-trainer/internal/logging"
	"github.com/dulchik/chess-position-trainer/internal/render"
	"github.com/dulchik/chess-position-trainer/internal/sprites"
	"github.com/dulchik/chess-position-trainer/internal/table"
	"github.com/dulchik/chess-position-trainer/internal/uci"
)

const (
	panelWidth = 220
	lineHeight = 18
)

var panelColor = color.RGBA{30, 30, 30, 255}

type Game struct {
	table    *table.Table
	renderer *render.Renderer

	// frame is painted on the CPU and uploaded to board when the snapshot
	// changes.
	frame *image.RGBA
	board *ebiten.Image
	snap  table.Snapshot
	seq   uint64

	lastX, lastY int
	textFace     font.Face
	boardSize    int
}

// ---------------- INPUT ------------------

func (g *Game) handlePromotion(x, y int) {
	prompt := g.snap.Prompt

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) ||
		inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.table.Dismiss()
		return
	}

	for _, p := range board.Promotions {
		if inpututil.IsKeyJustPressed(promotionKeys[p]) {
			g.table.Choose(p)
			return
		}
	}

	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	if p, ok := prompt.ChoiceAt(x, y); ok {
		g.table.Choose(p)
	} else {
		g.table.Dismiss()
	}
}

var promotionKeys = map[board.Promotion]ebiten.Key{
	board.PromoteQueen:  ebiten.KeyQ,
	board.PromoteRook:   ebiten.KeyR,
	board.PromoteBishop: ebiten.KeyB,
	board.PromoteKnight: ebiten.KeyN,
}

func (g *Game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.table.Flip()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.table.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.table.Hint()
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.table.EngineMove()
	}
}

func (g *Game) handlePointer(x, y int) {
	down := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	up := inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	// A fast click can press and release within one tick; deliver both.
	if down {
		g.table.PointerDown(x, y)
	}
	if up {
		g.table.PointerUp(x, y)
	}
	if !down && !up && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && (x != g.lastX || y != g.lastY) {
		g.table.PointerMove(x, y)
	}
	g.lastX, g.lastY = x, y
}

func (g *Game) Update() error {
	g.snap = g.table.Snapshot()
	x, y := ebiten.CursorPosition()

	// Promotion Picker
	if g.snap.Prompt != nil {
		g.handlePromotion(x, y)
		return nil
	}

	g.handleKeys()
	g.handlePointer(x, y)
	return nil
}

// ---------------- DRAW ------------------

func (g *Game) repaint() {
	if g.snap.Seq == g.seq {
		return
	}
	g.seq = g.snap.Seq
	g.renderer.Paint(g.frame, &g.snap.Position, &g.snap.View)
	if g.snap.Prompt != nil {
		g.renderer.PaintPromotionPrompt(g.frame, *g.snap.Prompt)
	}
	g.board.WritePixels(g.frame.Pix)
}

func (g *Game) panelLines() []string {
	s := g.snap
	lines := []string{s.Status}
	if s.Engine != "" {
		lines = append(lines, s.Engine)
	}
	switch {
	case s.Thinking:
		lines = append(lines, "Engine thinking...")
	case s.Hint != "":
		lines = append(lines, "Hint: "+s.Hint)
	}
	if s.Err != "" {
		lines = append(lines, "Error: "+s.Err)
	}
	lines = append(lines, "")
	return append(lines, s.Moves...)
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.repaint()
	screen.DrawImage(g.board, nil)

	ebitenutil.DrawRect(screen, float64(g.boardSize), 0, panelWidth, float64(g.boardSize), panelColor)

	y := 24
	for _, line := range g.panelLines() {
		if y > g.boardSize-2*lineHeight {
			break
		}
		text.Draw(screen, line, g.textFace, g.boardSize+12, y, color.White)
		y += lineHeight
	}

	help := "F flip  R reset  H hint  Space engine"
	if g.snap.Prompt != nil {
		help = "Q R B N choose  right click cancels"
	}
	ebitenutil.DebugPrintAt(screen, help, g.boardSize+12, g.boardSize-lineHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.boardSize + panelWidth, g.boardSize
}

// ---------------- SETUP ------------------

func startEngine(cfg config.Config, logger zerolog.Logger) []table.Option {
	if cfg.EnginePath == "" {
		logger.Info().Msg("no engine configured")
		return nil
	}
	eng, err := uci.Start(context.Background(), cfg.EnginePath,
		uci.WithMoveTime(cfg.MoveTimeMS),
		uci.WithLogger(logger),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("engine features disabled")
		return nil
	}
	for _, o := range cfg.EngineOptions() {
		if err := eng.SetOption(o.Name, o.Value); err != nil {
			logger.Warn().Err(err).Str("option", o.Name).Msg("engine option rejected")
		}
	}

	opts := []table.Option{table.WithEngine(eng)}
	if side, ok, _ := cfg.EngineColor(); ok {
		opts = append(opts, table.WithEngineSide(side))
	}
	return opts
}

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	pos, err := cfg.Position()
	if err != nil {
		log.Fatal(err)
	}

	geom := board.NewGeometry(cfg.CellSize)
	set, err := sprites.LoadOrGenerate(cfg.SpriteDir, cfg.CellSize, logger)
	if err != nil {
		log.Fatal(err)
	}
	renderer, err := render.New(geom, set, render.DefaultTheme())
	if err != nil {
		log.Fatal(err)
	}
	textFace, err := fonts.Bold(14)
	if err != nil {
		log.Fatal(err)
	}

	opts := append([]table.Option{
		table.WithLogger(logger),
		table.WithOrientation(cfg.Orientation()),
	}, startEngine(cfg, logger)...)
	tbl := table.New(pos, geom, opts...)

	size := geom.BoardSize()
	game := &Game{
		table:     tbl,
		renderer:  renderer,
		frame:     image.NewRGBA(renderer.Bounds()),
		board:     ebiten.NewImage(size, size),
		textFace:  textFace,
		boardSize: size,
	}
	ebiten.SetWindowSize(size+panelWidth, size)
	ebiten.SetWindowTitle("Chess Position Trainer")

	runErr := ebiten.RunGame(game)
	if err := tbl.Close(); err != nil {
		logger.Warn().Err(err).Msg("engine did not stop cleanly")
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
