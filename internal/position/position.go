package position

import "github.com/corentings/chess/v2"

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// CastlingRights is a bitmask of the four castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSide != 0 {
		s += "K"
	}
	if cr&WhiteQueenSide != 0 {
		s += "Q"
	}
	if cr&BlackKingSide != 0 {
		s += "k"
	}
	if cr&BlackQueenSide != 0 {
		s += "q"
	}
	return s
}

// Status is the game state implied by a position alone.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// Position is one chess position. It wraps an immutable corentings position
// whose legal move list is generated when the position is built, so a copy
// may be read from other goroutines. Apply replaces the wrapped position
// rather than changing it, which leaves earlier copies untouched. The zero
// value is the standard starting position.
type Position struct {
	cp *chess.Position
}

var startPosition = newPosition(chess.StartingPosition())

func newPosition(cp *chess.Position) Position {
	// Fill the move cache now; afterwards every method only reads cp.
	cp.ValidMoves()
	return Position{cp: cp}
}

func (p Position) inner() *chess.Position {
	if p.cp == nil {
		return startPosition.cp
	}
	return p.cp
}

// Equal reports whether both positions have the same placement, side to move,
// castling rights, en-passant target and counters.
func (p Position) Equal(q Position) bool {
	return p.FEN() == q.FEN()
}

// PieceAt returns the piece on the given 0-based file and rank. Out of range
// coordinates and empty squares report false.
func (p Position) PieceAt(file, rank int) (Piece, bool) {
	sq := NewSquare(file, rank)
	if sq == NoSquare {
		return NoPiece, false
	}
	pc := p.Piece(sq)
	return pc, !pc.IsEmpty()
}

// Piece returns the piece on sq, NoPiece if empty or off the board.
func (p Position) Piece(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return pieceOf(p.inner().Board().Piece(chess.Square(sq)))
}

// SideToMove returns the colour whose turn it is.
func (p Position) SideToMove() Color {
	return colorOf(p.inner().Turn())
}

// CastlingRights returns the remaining castling options.
func (p Position) CastlingRights() CastlingRights {
	return castlingOf(p.inner().CastleRights())
}

// EnPassant returns the en-passant target square or NoSquare.
func (p Position) EnPassant() Square {
	sq := p.inner().EnPassantSquare()
	if sq == chess.NoSquare {
		return NoSquare
	}
	return Square(sq)
}

// HalfmoveClock returns the number of half-moves since the last pawn move or
// capture.
func (p Position) HalfmoveClock() int {
	return p.inner().HalfMoveClock()
}

// FullmoveNumber returns the move counter, incremented after each black move.
func (p Position) FullmoveNumber() int {
	cp := p.inner()
	if cp.Turn() == chess.White {
		return (cp.Ply() + 1) / 2
	}
	return cp.Ply() / 2
}

// KingSquare returns the square of the king of colour c, NoSquare if absent.
func (p Position) KingSquare(c Color) Square {
	king := chess.NewPiece(chess.King, c.chessColor())
	for sq, pc := range p.inner().Board().SquareMap() {
		if pc == king {
			return Square(sq)
		}
	}
	return NoSquare
}

// InCheck reports whether the side to move is in check.
func (p Position) InCheck() bool {
	us := p.SideToMove()
	return p.Attacked(p.KingSquare(us), us.Other())
}

// Status reports checkmate or stalemate when the side to move has no legal
// move.
func (p Position) Status() Status {
	switch p.inner().Status() {
	case chess.Checkmate:
		return Checkmate
	case chess.Stalemate:
		return Stalemate
	default:
		return Ongoing
	}
}

type step struct{ df, dr int }

var (
	knightSteps = [8]step{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8]step{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs    = [4]step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs  = [4]step{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func (s Square) offset(st step) Square {
	return NewSquare(s.File()+st.df, s.Rank()+st.dr)
}

// Attacked reports whether any piece of colour by attacks sq. Occupancy of sq
// itself does not matter.
func (p Position) Attacked(sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}

	// A pawn attacks diagonally forward, so look one rank behind sq from
	// the attacker's point of view.
	back := -1
	if by == Black {
		back = 1
	}
	pawn := Piece{Role: Pawn, Color: by}
	for _, df := range [2]int{-1, 1} {
		if from := sq.offset(step{df, back}); from != NoSquare && p.Piece(from) == pawn {
			return true
		}
	}

	knight := Piece{Role: Knight, Color: by}
	for _, st := range knightSteps {
		if from := sq.offset(st); from != NoSquare && p.Piece(from) == knight {
			return true
		}
	}

	king := Piece{Role: King, Color: by}
	for _, st := range kingSteps {
		if from := sq.offset(st); from != NoSquare && p.Piece(from) == king {
			return true
		}
	}

	if p.slidingAttack(sq, by, rookDirs[:], Rook) {
		return true
	}
	return p.slidingAttack(sq, by, bishopDirs[:], Bishop)
}

func (p Position) slidingAttack(sq Square, by Color, dirs []step, role Role) bool {
	for _, d := range dirs {
		for to := sq.offset(d); to != NoSquare; to = to.offset(d) {
			pc := p.Piece(to)
			if pc.IsEmpty() {
				continue
			}
			if pc.Color == by && (pc.Role == role || pc.Role == Queen) {
				return true
			}
			break
		}
	}
	return false
}
