// Package position implements a single chess position: FEN parsing and
// printing, legal move generation and move application.
package position

// Color is the colour of a piece or of the side to move.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite colour.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Role is the kind of a piece. NoRole doubles as "no promotion".
type Role uint8

const (
	NoRole Role = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var roleChars = [...]byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}

// Char returns the lower-case FEN letter for the role, or ' ' for NoRole.
func (r Role) Char() byte {
	if int(r) >= len(roleChars) {
		return ' '
	}
	return roleChars[r]
}

func (r Role) String() string {
	switch r {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// PromotionRoles lists the roles a pawn may promote to, strongest first.
var PromotionRoles = [4]Role{Queen, Rook, Bishop, Knight}

func roleFromChar(c byte) Role {
	switch c | 0x20 {
	case 'p':
		return Pawn
	case 'n':
		return Knight
	case 'b':
		return Bishop
	case 'r':
		return Rook
	case 'q':
		return Queen
	case 'k':
		return King
	}
	return NoRole
}

// Piece is a role tagged with a colour. The zero value is an empty square.
type Piece struct {
	Role  Role
	Color Color
}

// NoPiece is the empty square.
var NoPiece = Piece{}

// IsEmpty reports whether p is NoPiece.
func (p Piece) IsEmpty() bool {
	return p.Role == NoRole
}

// FEN returns the FEN letter of the piece: upper case for white.
func (p Piece) FEN() byte {
	c := p.Role.Char()
	if p.Color == White && c != ' ' {
		return c - 0x20
	}
	return c
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "-"
	}
	return string(p.FEN())
}

// PieceFromFEN parses a FEN piece letter.
func PieceFromFEN(c byte) (Piece, bool) {
	r := roleFromChar(c)
	if r == NoRole {
		return NoPiece, false
	}
	col := Black
	if c >= 'A' && c <= 'Z' {
		col = White
	}
	return Piece{Role: r, Color: col}, true
}
