// Command chesscli plays through positions in a terminal. Moves are typed in
// coordinate notation; the engine, when configured, answers with go or gives
// hints.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/config"
	"github.com/dulchik/chess-position-trainer/internal/logging"
	"github.com/dulchik/chess-position-trainer/internal/position"
	"github.com/dulchik/chess-position-trainer/internal/table"
	"github.com/dulchik/chess-position-trainer/internal/uci"
)

const help = `commands:
  e2e4, e7e8q   play a move
  go            let the engine move
  hint          ask the engine for a move
  board         print the board
  moves         print the moves played
  fen [FEN]     print the position, or load one
  flip          turn the board around
  reset         go back to the starting position
  raw CMD       send CMD to the engine and print its answer
  opt NAME VAL  set an engine option
  quit          leave`

var (
	errorText = color.New(color.FgRed)
	replyText = color.New(color.FgCyan)
)

var errQuit = errors.New("quit")

type repl struct {
	table       *table.Table
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
}

func (r *repl) run() error {
	r.printBoard()
	for {
		if r.interactive {
			fmt.Fprintf(r.out, "%s> ", r.table.Snapshot().Position.SideToMove())
		}
		if !r.in.Scan() {
			return r.in.Err()
		}
		line := strings.TrimSpace(r.in.Text())
		if line == "" {
			continue
		}
		err := r.exec(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			errorText.Fprintln(r.out, "Error:", err)
		}
	}
}

func (r *repl) exec(line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		fmt.Fprintln(r.out, help)
	case "board":
		r.printBoard()
	case "moves":
		for _, l := range r.table.Snapshot().Moves {
			fmt.Fprintln(r.out, l)
		}
	case "fen":
		if arg == "" {
			fmt.Fprintln(r.out, r.table.Snapshot().Position.FEN())
			return nil
		}
		if err := <-r.table.Load(arg); err != nil {
			return err
		}
		r.printBoard()
	case "flip":
		r.table.Flip()
		r.table.Sync()
		r.printBoard()
	case "reset":
		r.table.Reset()
		r.table.Sync()
		r.printBoard()
	case "go":
		if err := <-r.table.EngineMove(); err != nil {
			return err
		}
		r.printBoard()
	case "hint":
		if err := <-r.table.Hint(); err != nil {
			return err
		}
		replyText.Fprintln(r.out, "Hint:", r.table.Snapshot().Hint)
	case "raw":
		out, err := r.table.EngineCommand(arg)
		if err != nil {
			return err
		}
		replyText.Fprintln(r.out, out)
	case "opt":
		name, value, ok := strings.Cut(arg, " ")
		if !ok {
			return fmt.Errorf("usage: opt NAME VALUE")
		}
		return r.table.SetEngineOption(name, strings.TrimSpace(value))
	default:
		return r.play(line)
	}
	return nil
}

// play makes a typed move, asking for the piece when a promotion was typed
// without one.
func (r *repl) play(s string) error {
	from, to, promo, err := position.ParseUCI(s)
	if err != nil {
		return fmt.Errorf("unknown command %q (try help)", s)
	}
	pos := r.table.Snapshot().Position
	if promo == position.NoRole && pos.IsPromotion(from, to) {
		p, ok := r.choose(pos.SideToMove())
		if !ok {
			fmt.Fprintln(r.out, "Promotion cancelled")
			return nil
		}
		s += string(p.Key())
	}
	if err := <-r.table.Play(s); err != nil {
		return err
	}
	r.printBoard()
	return nil
}

// choose reads a promotion piece. Anything but q, r, b or n cancels.
func (r *repl) choose(side position.Color) (board.Promotion, bool) {
	fmt.Fprintf(r.out, "Promote %s pawn to (q/r/b/n): ", strings.ToLower(side.String()))
	if !r.in.Scan() {
		return board.PromoteQueen, false
	}
	answer := strings.TrimSpace(strings.ToLower(r.in.Text()))
	if len(answer) != 1 {
		return board.PromoteQueen, false
	}
	return board.PromotionFromKey(answer[0])
}

func (r *repl) printBoard() {
	s := r.table.Snapshot()
	printBoard(r.out, &s.Position, s.View.Orientation, s.View.LastMove)
	fmt.Fprintln(r.out, s.Status)
	if s.Err != "" {
		errorText.Fprintln(r.out, s.Err)
	}
}

func newTable(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*table.Table, error) {
	pos, err := cfg.Position()
	if err != nil {
		return nil, err
	}
	opts := []table.Option{
		table.WithLogger(logger),
		table.WithOrientation(cfg.Orientation()),
	}

	if cfg.EnginePath != "" {
		eng, err := uci.Start(ctx, cfg.EnginePath,
			uci.WithMoveTime(cfg.MoveTimeMS),
			uci.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("engine features disabled")
		} else {
			for _, o := range cfg.EngineOptions() {
				if err := eng.SetOption(o.Name, o.Value); err != nil {
					logger.Warn().Err(err).Str("option", o.Name).Msg("engine option rejected")
				}
			}
			opts = append(opts, table.WithEngine(eng))
			if side, ok, _ := cfg.EngineColor(); ok {
				opts = append(opts, table.WithEngineSide(side))
			}
		}
	}
	return table.New(pos, board.NewGeometry(cfg.CellSize), opts...), nil
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

	tbl, err := newTable(context.Background(), cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	r := &repl{
		table:       tbl,
		in:          bufio.NewScanner(os.Stdin),
		out:         color.Output,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if r.interactive {
		fmt.Fprintln(r.out, "Type help for commands.")
	}
	runErr := r.run()
	if err := tbl.Close(); err != nil {
		logger.Warn().Err(err).Msg("engine did not stop cleanly")
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
