package position

import (
	"fmt"

	"github.com/corentings/chess/v2"
)

// Apply plays the legal move from origin to target. promo must name the
// promotion role of a promoting move and be NoRole otherwise. On error the
// position is left unchanged.
func (p *Position) Apply(from, to Square, promo Role) (Move, error) {
	cp := p.inner()
	m, ok := p.find(from, to, promo)
	if !ok {
		return Move{}, fmt.Errorf("%w: %s%s%s", ErrIllegalMove, from, to, promoSuffix(promo))
	}
	played := moveOf(m, p.Piece(from))
	*p = newPosition(cp.Update(m))
	return played, nil
}

// MoveFromUCI maps a coordinate string such as "e2e4" or "e7e8q" to the
// matching legal move without playing it.
func (p Position) MoveFromUCI(s string) (Move, error) {
	from, to, promo, err := ParseUCI(s)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	m, ok := p.find(from, to, promo)
	if !ok {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalMove, s)
	}
	return moveOf(m, p.Piece(from)), nil
}

// find returns the generated move with exactly these squares and promotion.
func (p Position) find(from, to Square, promo Role) (*chess.Move, bool) {
	moves := p.inner().ValidMoves()
	want := promo.pieceType()
	for i := range moves {
		m := &moves[i]
		if Square(m.S1()) == from && Square(m.S2()) == to && m.Promo() == want {
			return m, true
		}
	}
	return nil, false
}

func promoSuffix(r Role) string {
	if r == NoRole {
		return ""
	}
	return string(r.Char())
}
