package uci

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMoveTime is the search budget per best move, in milliseconds.
	DefaultMoveTime = 100
	// DefaultCommandDelay is the pause Command takes before its handshake.
	DefaultCommandDelay = 100 * time.Millisecond
)

// Option configures a Session at Start.
type Option func(*Session)

// WithMoveTime sets the movetime sent with every go command.
func WithMoveTime(ms int) Option {
	return func(s *Session) {
		if ms > 0 {
			s.moveTime = ms
		}
	}
}

// WithLogger sets the logger for engine traffic. Lines are logged at debug
// level.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithCommandDelay changes the pause Command takes between sending a raw
// command and the isready handshake. Zero disables it. Nothing in the
// protocol requires the pause.
func WithCommandDelay(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.commandDelay = d
		}
	}
}

// WithoutGreeting skips reading the banner line for engines that print
// nothing before uci.
func WithoutGreeting() Option {
	return func(s *Session) {
		s.greeting = false
	}
}
