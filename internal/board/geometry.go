// Package board holds the view state of an interactive chessboard and the
// pointer state machine that turns drags into moves.
package board

import "github.com/dulchik/chess-position-trainer/internal/position"

// DefaultCellSize is the side of one square in pixels.
const DefaultCellSize = 50

// Orientation selects which side is drawn at the bottom.
type Orientation uint8

const (
	WhiteBottom Orientation = iota
	BlackBottom
)

// Flip returns the other orientation.
func (o Orientation) Flip() Orientation {
	if o == WhiteBottom {
		return BlackBottom
	}
	return WhiteBottom
}

func (o Orientation) String() string {
	if o == BlackBottom {
		return "black-bottom"
	}
	return "white-bottom"
}

// Geometry maps board squares to pixels. The 8x8 grid is inset by half a
// cell on every side to leave room for coordinates.
type Geometry struct {
	CellSize int
}

// NewGeometry returns a geometry with the given cell size, or the default
// when cell is not positive.
func NewGeometry(cell int) Geometry {
	if cell <= 0 {
		cell = DefaultCellSize
	}
	return Geometry{CellSize: cell}
}

// Inset is the border width: half a cell.
func (g Geometry) Inset() int {
	return g.CellSize / 2
}

// BoardSize is the side of the whole board including the border.
func (g Geometry) BoardSize() int {
	return 8*g.CellSize + 2*g.Inset()
}

// ScreenToCell returns the square under the pixel, false outside the grid.
func (g Geometry) ScreenToCell(px, py int, o Orientation) (position.Square, bool) {
	x, y := px-g.Inset(), py-g.Inset()
	if x < 0 || y < 0 {
		return position.NoSquare, false
	}
	file, row := x/g.CellSize, y/g.CellSize
	if file > 7 || row > 7 {
		return position.NoSquare, false
	}
	rank := 7 - row
	if o == BlackBottom {
		file, rank = 7-file, 7-rank
	}
	return position.NewSquare(file, rank), true
}

// CellToScreen returns the top-left pixel of the square.
func (g Geometry) CellToScreen(sq position.Square, o Orientation) (x, y int) {
	col, row := g.column(sq.File(), o), g.row(sq.Rank(), o)
	return g.Inset() + col*g.CellSize, g.Inset() + row*g.CellSize
}

// column and row give the on-screen grid position of a file or rank.
func (g Geometry) column(file int, o Orientation) int {
	if o == BlackBottom {
		return 7 - file
	}
	return file
}

func (g Geometry) row(rank int, o Orientation) int {
	if o == BlackBottom {
		return rank
	}
	return 7 - rank
}

// FileAtColumn returns the file drawn in screen column col.
func (g Geometry) FileAtColumn(col int, o Orientation) int {
	return g.column(col, o)
}

// RankAtRow returns the rank drawn in screen row row.
func (g Geometry) RankAtRow(row int, o Orientation) int {
	return g.row(row, o)
}

// Light reports whether sq is a light square: a8 and h1 are light. The
// parity is taken in board coordinates (file and row counted from rank 8),
// so flipping the board keeps the pattern.
func Light(sq position.Square) bool {
	return (sq.File()+7-sq.Rank())%2 == 0
}
