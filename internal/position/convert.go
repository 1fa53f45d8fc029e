package position

import "github.com/corentings/chess/v2"

// Both libraries index squares file + 8*rank from a1, so squares convert by
// value. Colours and piece types are numbered differently.

var roleTypes = [...]chess.PieceType{
	NoRole: chess.NoPieceType,
	Pawn:   chess.Pawn,
	Knight: chess.Knight,
	Bishop: chess.Bishop,
	Rook:   chess.Rook,
	Queen:  chess.Queen,
	King:   chess.King,
}

func (r Role) pieceType() chess.PieceType {
	if int(r) >= len(roleTypes) {
		return chess.NoPieceType
	}
	return roleTypes[r]
}

func roleOf(pt chess.PieceType) Role {
	for r, t := range roleTypes {
		if t == pt {
			return Role(r)
		}
	}
	return NoRole
}

func colorOf(c chess.Color) Color {
	if c == chess.Black {
		return Black
	}
	return White
}

func (c Color) chessColor() chess.Color {
	if c == Black {
		return chess.Black
	}
	return chess.White
}

func pieceOf(pc chess.Piece) Piece {
	if pc == chess.NoPiece {
		return NoPiece
	}
	return Piece{Role: roleOf(pc.Type()), Color: colorOf(pc.Color())}
}

func castlingOf(cr chess.CastleRights) CastlingRights {
	var out CastlingRights
	if cr.CanCastle(chess.White, chess.KingSide) {
		out |= WhiteKingSide
	}
	if cr.CanCastle(chess.White, chess.QueenSide) {
		out |= WhiteQueenSide
	}
	if cr.CanCastle(chess.Black, chess.KingSide) {
		out |= BlackKingSide
	}
	if cr.CanCastle(chess.Black, chess.QueenSide) {
		out |= BlackQueenSide
	}
	return out
}

// moveOf converts a generated move. mover is the piece on the origin square
// before the move is played.
func moveOf(m *chess.Move, mover Piece) Move {
	out := Move{
		From:      Square(m.S1()),
		To:        Square(m.S2()),
		Promotion: roleOf(m.Promo()),
	}
	switch {
	case m.HasTag(chess.KingSideCastle), m.HasTag(chess.QueenSideCastle):
		out.Flag = FlagCastle
	case m.HasTag(chess.EnPassant):
		out.Flag = FlagEnPassant
	case mover.Role == Pawn && abs(out.To.Rank()-out.From.Rank()) == 2:
		out.Flag = FlagDoublePush
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
