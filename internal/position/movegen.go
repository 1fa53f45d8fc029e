package position

// LegalMoves returns every legal move of the side to move. The order is
// unspecified and no move appears twice.
func (p Position) LegalMoves() []Move {
	cp := p.inner()
	valid := cp.ValidMoves()
	out := make([]Move, 0, len(valid))
	for i := range valid {
		m := &valid[i]
		out = append(out, moveOf(m, pieceOf(cp.Board().Piece(m.S1()))))
	}
	return out
}

// LegalMovesFrom returns the legal moves starting on from.
func (p Position) LegalMovesFrom(from Square) []Move {
	var out []Move
	for _, m := range p.LegalMoves() {
		if m.From == from {
			out = append(out, m)
		}
	}
	return out
}

// IsLegal reports whether a legal move goes from origin to target. With
// promo == NoRole any promotion role matches; otherwise the role must match.
func (p Position) IsLegal(from, to Square, promo Role) bool {
	for _, m := range p.LegalMoves() {
		if m.From == from && m.To == to && (promo == NoRole || m.Promotion == promo) {
			return true
		}
	}
	return false
}

// IsPromotion reports whether the legal moves from origin to target are
// promotions.
func (p Position) IsPromotion(from, to Square) bool {
	for _, m := range p.LegalMoves() {
		if m.From == from && m.To == to && m.Promotion != NoRole {
			return true
		}
	}
	return false
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func (p Position) Perft(depth int) int {
	if depth <= 0 {
		return 1
	}
	cp := p.inner()
	moves := cp.ValidMoves()
	if depth == 1 {
		return len(moves)
	}
	n := 0
	for i := range moves {
		n += newPosition(cp.Update(&moves[i])).Perft(depth - 1)
	}
	return n
}
