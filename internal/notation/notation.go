// Package notation turns moves and positions into text for people.
package notation

import (
	"fmt"

	"github.com/corentings/chess/v2"

	"github.com/dulchik/chess-position-trainer/internal/position"
)

// SAN returns m in standard algebraic notation, e.g. "Nf3", "exd6" or
// "a8=Q+". m must be legal in pos.
func SAN(pos *position.Position, m position.Move) (string, error) {
	opt, err := chess.FEN(pos.FEN())
	if err != nil {
		return "", fmt.Errorf("notation: %w", err)
	}
	cp := chess.NewGame(opt).Position()
	cm, err := chess.UCINotation{}.Decode(cp, m.UCI())
	if err != nil {
		return "", fmt.Errorf("notation: %s: %w", m.UCI(), err)
	}
	return chess.AlgebraicNotation{}.Encode(cp, cm), nil
}

// SANOrUCI is SAN falling back to coordinate notation.
func SANOrUCI(pos *position.Position, m position.Move) string {
	s, err := SAN(pos, m)
	if err != nil {
		return m.UCI()
	}
	return s
}

// Status describes the position in one line.
func Status(pos *position.Position) string {
	side := pos.SideToMove()
	switch pos.Status() {
	case position.Checkmate:
		return fmt.Sprintf("%s wins by checkmate", side.Other())
	case position.Stalemate:
		return "Draw by stalemate"
	}
	if pos.InCheck() {
		return fmt.Sprintf("%s to move, check", side)
	}
	return fmt.Sprintf("%s to move", side)
}

// FormatMoves numbers a list of SAN moves two per line, starting at move
// number first. When blackFirst is set the first line opens with "...".
func FormatMoves(sans []string, first int, blackFirst bool) []string {
	var lines []string
	i, n := 0, first
	if blackFirst && len(sans) > 0 {
		lines = append(lines, fmt.Sprintf("%d. ... %s", n, sans[0]))
		i, n = 1, n+1
	}
	for ; i < len(sans); i += 2 {
		line := fmt.Sprintf("%d. %s", n, sans[i])
		if i+1 < len(sans) {
			line += " " + sans[i+1]
		}
		lines = append(lines, line)
		n++
	}
	return lines
}
