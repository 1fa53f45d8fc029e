package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corentings/chess/v2"
)

// ParseFEN parses a FEN record. The halfmove clock and fullmove number may be
// omitted (EPD form); they default to 0 and 1. Every failure wraps
// ErrInvalidFEN, including positions that break the invariants checked by
// validate.
func ParseFEN(fen string) (Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return Position{}, fmt.Errorf("%w: expected 4 to 6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	if fields[1] != "w" && fields[1] != "b" {
		return Position{}, fmt.Errorf("%w: active colour %q", ErrInvalidFEN, fields[1])
	}
	castling, err := parseCastling(fields[2])
	if err != nil {
		return Position{}, err
	}
	if fields[3] != "-" {
		if _, err := ParseSquare(fields[3]); err != nil {
			return Position{}, fmt.Errorf("%w: en-passant target: %v", ErrInvalidFEN, err)
		}
	}
	halfmove, fullmove := 0, 1
	if len(fields) > 4 {
		if halfmove, err = parseCounter(fields[4], "halfmove clock"); err != nil {
			return Position{}, err
		}
	}
	if len(fields) > 5 {
		if fullmove, err = parseCounter(fields[5], "fullmove number"); err != nil {
			return Position{}, err
		}
	}

	record := fmt.Sprintf("%s %s %s %s %d %d", fields[0], fields[1], castling, fields[3], halfmove, fullmove)
	opt, err := chess.FEN(record)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	p := Position{cp: chess.NewGame(opt).Position()}
	// The decoder checks syntax only; kings, pawns, castling homes and the
	// en-passant target are ours to check.
	if err := p.validate(); err != nil {
		return Position{}, err
	}
	return newPosition(p.cp), nil
}

// MustParseFEN is ParseFEN for constant inputs. It panics on error.
func MustParseFEN(fen string) Position {
	p, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return p
}

func parseCastling(field string) (CastlingRights, error) {
	if field == "-" {
		return NoCastling, nil
	}
	var cr CastlingRights
	for i := 0; i < len(field); i++ {
		var r CastlingRights
		switch field[i] {
		case 'K':
			r = WhiteKingSide
		case 'Q':
			r = WhiteQueenSide
		case 'k':
			r = BlackKingSide
		case 'q':
			r = BlackQueenSide
		default:
			return NoCastling, fmt.Errorf("%w: castling rights %q", ErrInvalidFEN, field)
		}
		if cr&r != 0 {
			return NoCastling, fmt.Errorf("%w: repeated castling right in %q", ErrInvalidFEN, field)
		}
		cr |= r
	}
	return cr, nil
}

func parseCounter(field, name string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil || n < 0 || strings.HasPrefix(field, "+") {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidFEN, name, field)
	}
	return n, nil
}

// validate checks the invariants every loaded position must hold.
func (p Position) validate() error {
	var kings [2]int
	for sq := A1; sq <= H8; sq++ {
		pc := p.Piece(sq)
		switch {
		case pc.Role == King:
			kings[pc.Color]++
		case pc.Role == Pawn && (sq.Rank() == 0 || sq.Rank() == 7):
			return fmt.Errorf("%w: pawn on %s", ErrInvalidFEN, sq)
		}
	}
	for _, c := range [2]Color{White, Black} {
		if kings[c] != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, kings[c])
		}
	}

	us := p.SideToMove()
	if p.Attacked(p.KingSquare(us.Other()), us) {
		return fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}

	homes := []struct {
		right      CastlingRights
		king, rook Square
		color      Color
	}{
		{WhiteKingSide, E1, H1, White},
		{WhiteQueenSide, E1, A1, White},
		{BlackKingSide, E8, H8, Black},
		{BlackQueenSide, E8, A8, Black},
	}
	castling := p.CastlingRights()
	for _, h := range homes {
		if castling&h.right == 0 {
			continue
		}
		if p.Piece(h.king) != (Piece{Role: King, Color: h.color}) ||
			p.Piece(h.rook) != (Piece{Role: Rook, Color: h.color}) {
			return fmt.Errorf("%w: castling right %s without king and rook at home", ErrInvalidFEN, h.right)
		}
	}

	if ep := p.EnPassant(); ep != NoSquare {
		// The target is the square skipped by the opponent's double push.
		wantRank, dir := 5, -1
		if us == Black {
			wantRank, dir = 2, 1
		}
		pushed := NewSquare(ep.File(), ep.Rank()+dir)
		origin := NewSquare(ep.File(), ep.Rank()-dir)
		if ep.Rank() != wantRank ||
			!p.Piece(ep).IsEmpty() ||
			!p.Piece(origin).IsEmpty() ||
			p.Piece(pushed) != (Piece{Role: Pawn, Color: us.Other()}) {
			return fmt.Errorf("%w: en-passant target %s", ErrInvalidFEN, ep)
		}
	}
	return nil
}

// FEN returns the canonical six-field FEN of the position.
func (p Position) FEN() string {
	return p.inner().String()
}
