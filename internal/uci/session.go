// Package uci drives a chess engine speaking the UCI line protocol over the
// standard streams of a long-lived child process.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the protocol state of a Session.
type State uint8

const (
	Spawned State = iota
	Initialised
	Ready
	Busy
	Poisoned
	Stopped
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Initialised:
		return "initialised"
	case Ready:
		return "ready"
	case Busy:
		return "busy"
	case Poisoned:
		return "poisoned"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// EngineInfo is what the engine announced between uci and uciok.
type EngineInfo struct {
	Name    string
	Author  string
	Options []string
}

// Session is one running engine. All methods are safe for concurrent use;
// calls are serialised, so a best move search never overlaps another call.
type Session struct {
	id     string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	log    zerolog.Logger

	moveTime     int
	commandDelay time.Duration
	greeting     bool

	mu    sync.Mutex
	state State
	err   error
	fen   string
	info  EngineInfo

	stopOnce sync.Once
	stopErr  error
}

// Start spawns the engine at path and runs the uci and isready handshakes.
// Cancelling ctx kills the process.
func Start(ctx context.Context, path string, opts ...Option) (*Session, error) {
	cmd := exec.CommandContext(ctx, path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineSpawn, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEngineSpawn, path, err)
	}

	s := newSession(stdout, stdin, opts...)
	s.cmd = cmd
	s.log.Info().Str("path", path).Int("pid", cmd.Process.Pid).Msg("engine started")

	if err := s.init(); err != nil {
		s.Stop()
		return nil, err
	}
	return s, nil
}

func newSession(r io.Reader, w io.WriteCloser, opts ...Option) *Session {
	s := &Session{
		id:           uuid.New().String(),
		stdin:        w,
		stdout:       bufio.NewReader(r),
		log:          zerolog.Nop(),
		moveTime:     DefaultMoveTime,
		commandDelay: DefaultCommandDelay,
		greeting:     true,
		state:        Spawned,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("engine", s.id).Logger()
	return s
}

// init reads the banner, collects the uci identification and waits for the
// first readyok.
func (s *Session) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.greeting {
		line, err := s.readLine()
		if err != nil {
			return err
		}
		s.log.Debug().Str("line", line).Msg("greeting")
	}

	if err := s.send("uci"); err != nil {
		return err
	}
	for {
		line, err := s.readLine()
		if err != nil {
			return err
		}
		if line == "uciok" {
			break
		}
		switch {
		case strings.HasPrefix(line, "id name "):
			s.info.Name = strings.TrimPrefix(line, "id name ")
		case strings.HasPrefix(line, "id author "):
			s.info.Author = strings.TrimPrefix(line, "id author ")
		case strings.HasPrefix(line, "option "):
			s.info.Options = append(s.info.Options, line)
		}
	}
	s.state = Initialised

	if _, err := s.handshake(); err != nil {
		return err
	}
	s.log.Info().Str("name", s.info.Name).Int("options", len(s.info.Options)).Msg("engine ready")
	return nil
}

// ID returns the session id used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Info returns the identification collected during Start.
func (s *Session) Info() EngineInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// State returns the current protocol state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FEN returns the root position most recently sent to the engine.
func (s *Session) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fen
}

// SetPosition sends the root position with an empty move list. No reply is
// read.
func (s *Session) SetPosition(fen string) error {
	return s.SetPositionWithMoves(fen, nil)
}

// SetPositionWithMoves sends the root position followed by moves already
// played from it, in coordinate notation.
func (s *Session) SetPositionWithMoves(fen string, moves []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}
	if err := s.send("position fen " + fen + " moves " + strings.Join(moves, " ")); err != nil {
		return err
	}
	s.fen = fen
	return nil
}

// BestMove searches the current position for the configured movetime and
// returns the move token of the bestmove reply, e.g. "e2e4". Info lines are
// discarded.
func (s *Session) BestMove() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return "", err
	}
	s.state = Busy
	if err := s.send(fmt.Sprintf("go movetime %d", s.moveTime)); err != nil {
		return "", err
	}
	for {
		line, err := s.readLine()
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(line, "bestmove") {
			continue
		}
		s.state = Ready
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return "", fmt.Errorf("uci: malformed reply %q", line)
		}
		return fields[1], nil
	}
}

// SetOption sends setoption and runs a handshake. Engines stay silent on
// options they accept; any text before readyok is reported as an
// *UnknownOptionError.
func (s *Session) SetOption(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}
	if err := s.send(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
		return err
	}
	collected, err := s.handshake()
	if err != nil {
		return err
	}
	if len(collected) > 0 {
		return &UnknownOptionError{Name: name, Reply: strings.Join(collected, "\n")}
	}
	return nil
}

// Command sends a raw line, waits the command delay and returns whatever
// the engine printed before readyok. Meant for diagnostics such as "d".
func (s *Session) Command(raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return "", err
	}
	if err := s.send(raw); err != nil {
		return "", err
	}
	if s.commandDelay > 0 {
		time.Sleep(s.commandDelay)
	}
	collected, err := s.handshake()
	if err != nil {
		return "", err
	}
	return strings.Join(collected, "\n"), nil
}

// Stop closes the engine's standard input and waits for it to exit. It is
// safe to call more than once and does not wait for a running search to
// return first.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		err := s.stdin.Close()
		if s.cmd != nil {
			if werr := s.cmd.Wait(); werr != nil && err == nil {
				err = werr
			}
		}
		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()
		if err != nil {
			s.stopErr = fmt.Errorf("uci: stop: %w", err)
		}
		s.log.Info().Err(err).Msg("engine stopped")
	})
	return s.stopErr
}

func (s *Session) usable() error {
	switch s.state {
	case Poisoned:
		return s.err
	case Stopped:
		return fmt.Errorf("%w: session stopped", ErrEngineIO)
	}
	return nil
}

// handshake sends isready and collects every line up to readyok.
func (s *Session) handshake() ([]string, error) {
	if err := s.send("isready"); err != nil {
		return nil, err
	}
	var collected []string
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if line == "readyok" {
			s.state = Ready
			return collected, nil
		}
		collected = append(collected, line)
	}
}

func (s *Session) send(line string) error {
	if s.state == Poisoned {
		return s.err
	}
	s.log.Debug().Str("line", line).Msg(">>")
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return s.poison(err)
	}
	return nil
}

// readLine returns the next line without its line terminator.
func (s *Session) readLine() (string, error) {
	if s.state == Poisoned {
		return "", s.err
	}
	b, err := s.stdout.ReadBytes('\n')
	if err != nil {
		return "", s.poison(err)
	}
	line := strings.TrimRight(string(b), "\r\n")
	s.log.Debug().Str("line", line).Msg("<<")
	return line, nil
}

func (s *Session) poison(err error) error {
	s.err = fmt.Errorf("%w: %v", ErrEngineIO, err)
	if s.state != Stopped {
		s.state = Poisoned
	}
	s.log.Error().Err(err).Msg("engine session poisoned")
	return s.err
}
