package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/position"
)

var labels = color.New(color.FgHiBlue)

// printBoard writes the position as text, rank 8 on top unless o puts
// black at the bottom. The squares of the last move are marked.
func printBoard(w io.Writer, pos *position.Position, o board.Orientation, last *position.Move) {
	geom := board.NewGeometry(board.DefaultCellSize)
	for row := 0; row < 8; row++ {
		rank := geom.RankAtRow(row, o)
		labels.Fprintf(w, "%s ", position.RankLabel(rank))
		for col := 0; col < 8; col++ {
			sq := position.NewSquare(geom.FileAtColumn(col, o), rank)
			printSquare(w, sq, pos.Piece(sq), last)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "  ")
	for col := 0; col < 8; col++ {
		labels.Fprintf(w, " %s ", position.FileLabel(geom.FileAtColumn(col, o)))
	}
	fmt.Fprintln(w)
}

func printSquare(w io.Writer, sq position.Square, pc position.Piece, last *position.Move) {
	bg := color.BgYellow
	if board.Light(sq) {
		bg = color.BgHiYellow
	}
	if last != nil && (sq == last.From || sq == last.To) {
		bg = color.BgHiGreen
	}

	if pc.IsEmpty() {
		color.New(bg).Fprint(w, " . ")
		return
	}
	fg := color.FgBlack
	if pc.Color == position.White {
		fg = color.FgHiWhite
	}
	color.New(fg, color.Bold, bg).Fprintf(w, " %c ", pc.FEN())
}
