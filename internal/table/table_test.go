package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/position"
	"github.com/dulchik/chess-position-trainer/internal/uci"
)

// fakeEngine answers from a fixed table of replies, falling back to the
// first legal move in coordinate order.
type fakeEngine struct {
	mu       sync.Mutex
	replies  map[string]string
	fen      string
	searched []string
	err      error
	stopped  int
	commands []string
}

func (e *fakeEngine) SetPosition(fen string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fen = fen
	return e.err
}

func (e *fakeEngine) BestMove() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.searched = append(e.searched, e.fen)
	if m, ok := e.replies[e.fen]; ok {
		return m, nil
	}
	pos := position.MustParseFEN(e.fen)
	var moves []string
	for _, m := range pos.LegalMoves() {
		moves = append(moves, m.UCI())
	}
	sort.Strings(moves)
	return moves[0], nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped++
	return nil
}

type diagEngine struct {
	fakeEngine
}

func (e *diagEngine) Command(raw string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, raw)
	return "echo " + raw, nil
}

func (e *diagEngine) SetOption(name, value string) error {
	if name != "Hash" {
		return &uci.UnknownOptionError{Name: name, Reply: "No such option: " + name}
	}
	return nil
}

const afterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

func newTestTable(t *testing.T, fen string, opts ...Option) *Table {
	t.Helper()
	pos, err := position.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	tb := New(pos, board.NewGeometry(50), opts...)
	t.Cleanup(func() { tb.Close() })
	if err := tb.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	return tb
}

func sq(name string) position.Square {
	s, err := position.ParseSquare(name)
	if err != nil {
		panic(err)
	}
	return s
}

func centre(tb *Table, name string) (int, int) {
	s := tb.Snapshot()
	g := board.NewGeometry(50)
	x, y := g.CellToScreen(sq(name), s.View.Orientation)
	return x + g.CellSize/2, y + g.CellSize/2
}

func drag(tb *Table, from, to string) {
	fx, fy := centre(tb, from)
	tx, ty := centre(tb, to)
	tb.PointerDown(fx, fy)
	tb.PointerMove((fx+tx)/2, (fy+ty)/2)
	tb.PointerUp(tx, ty)
}

func waitFor(t *testing.T, tb *Table, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := tb.Snapshot(); cond(s) {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached; last snapshot %+v", tb.Snapshot())
	return Snapshot{}
}

func equalLines(a, b []string) bool {
	return strings.Join(a, "\n") == strings.Join(b, "\n")
}

func TestDragPlaysMove(t *testing.T) {
	tb := newTestTable(t, position.StartFEN)

	drag(tb, "e2", "e4")
	if err := tb.Sync(); err != nil {
		t.Fatal(err)
	}

	s := tb.Snapshot()
	if got := s.Position.FEN(); got != afterE4 {
		t.Errorf("FEN = %q, want %q", got, afterE4)
	}
	if !equalLines(s.Moves, []string{"1. e4"}) {
		t.Errorf("Moves = %q", s.Moves)
	}
	if s.Status != "Black to move" {
		t.Errorf("Status = %q", s.Status)
	}
	if s.View.LastMove == nil || s.View.LastMove.UCI() != "e2e4" {
		t.Errorf("LastMove = %v", s.View.LastMove)
	}
	if s.View.Drag != nil {
		t.Errorf("drag left behind: %+v", s.View.Drag)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tb := newTestTable(t, position.StartFEN)
	drag(tb, "e2", "e4")
	tb.Sync()

	s := tb.Snapshot()
	s.Moves[0] = "changed"
	s.View.LastMove.To = sq("a1")
	again := tb.Snapshot()
	if again.Moves[0] != "1. e4" || again.View.LastMove.To != sq("e4") {
		t.Errorf("snapshot shares state with the table: %+v", again)
	}
	if again.Seq <= 1 {
		t.Errorf("Seq = %d, want it to advance", again.Seq)
	}
}

func TestPromotionPrompt(t *testing.T) {
	const fen = "8/P7/8/8/8/8/8/k6K w - - 0 1"
	tests := []struct {
		name     string
		answer   func(*Table)
		want     position.Piece
		moves    []string
		pawnBack bool
	}{
		{
			name:   "knight",
			answer: func(tb *Table) { tb.Choose(board.PromoteKnight) },
			want:   position.Piece{Role: position.Knight, Color: position.White},
			moves:  []string{"1. a8=N"},
		},
		{
			name:   "queen",
			answer: func(tb *Table) { tb.Choose(board.PromoteQueen) },
			want:   position.Piece{Role: position.Queen, Color: position.White},
			moves:  []string{"1. a8=Q+"},
		},
		{
			name:     "dismissed",
			answer:   func(tb *Table) { tb.Dismiss() },
			want:     position.NoPiece,
			pawnBack: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestTable(t, fen)
			drag(tb, "a7", "a8")

			s := waitFor(t, tb, func(s Snapshot) bool { return s.Prompt != nil })
			if s.Prompt.Target != sq("a8") || s.Prompt.Side != position.White {
				t.Errorf("prompt = %+v", *s.Prompt)
			}
			if s.View.Drag != nil {
				t.Errorf("drag still shown under the prompt")
			}

			// The board ignores the pointer while the prompt is open.
			x, y := centre(tb, "h1")
			tb.PointerDown(x, y)

			tt.answer(tb)
			waitFor(t, tb, func(s Snapshot) bool { return s.Prompt == nil })
			tb.Sync()
			s = tb.Snapshot()

			if got := s.Position.Piece(sq("a8")); got != tt.want {
				t.Errorf("a8 = %+v, want %+v", got, tt.want)
			}
			if tt.pawnBack {
				if got := s.Position.Piece(sq("a7")); got.Role != position.Pawn {
					t.Errorf("a7 = %+v, want the pawn back", got)
				}
			}
			if !equalLines(s.Moves, tt.moves) {
				t.Errorf("Moves = %q, want %q", s.Moves, tt.moves)
			}
			if s.View.Drag != nil {
				t.Errorf("pointer down during the prompt started a drag")
			}
		})
	}
}

func TestPromptForBlack(t *testing.T) {
	tb := newTestTable(t, "k7/8/8/8/8/8/6p1/K7 b - - 0 1", WithOrientation(board.BlackBottom))
	drag(tb, "g2", "g1")

	s := waitFor(t, tb, func(s Snapshot) bool { return s.Prompt != nil })
	if s.Prompt.Side != position.Black || s.Prompt.Orientation != board.BlackBottom {
		t.Errorf("prompt = %+v", *s.Prompt)
	}
	if got := s.Prompt.Square(board.PromoteKnight); got != sq("g4") {
		t.Errorf("knight cell = %s, want g4", got)
	}
	tb.Choose(board.PromoteRook)
	waitFor(t, tb, func(s Snapshot) bool { return s.Prompt == nil })
	tb.Sync()
	if got := tb.Snapshot().Position.Piece(sq("g1")); got.Role != position.Rook {
		t.Errorf("g1 = %+v, want a rook", got)
	}
}

func TestPlayLoadReset(t *testing.T) {
	tb := newTestTable(t, position.StartFEN)

	for _, m := range []string{"e2e4", "e7e5", "g1f3"} {
		if err := <-tb.Play(m); err != nil {
			t.Fatalf("Play(%s): %v", m, err)
		}
	}
	if err := <-tb.Play("e1e3"); !errors.Is(err, position.ErrIllegalMove) {
		t.Errorf("Play(e1e3) = %v, want ErrIllegalMove", err)
	}
	s := tb.Snapshot()
	if !equalLines(s.Moves, []string{"1. e4 e5", "2. Nf3"}) {
		t.Errorf("Moves = %q", s.Moves)
	}
	if s.Err == "" {
		t.Errorf("illegal move not reported in the snapshot")
	}

	if err := <-tb.Load("not a fen"); !errors.Is(err, position.ErrInvalidFEN) {
		t.Errorf("Load = %v, want ErrInvalidFEN", err)
	}
	if err := <-tb.Load(afterE4); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := <-tb.Play("e7e5"); err != nil {
		t.Fatal(err)
	}
	if s := tb.Snapshot(); !equalLines(s.Moves, []string{"1. ... e5"}) || s.Err != "" {
		t.Errorf("after load: Moves = %q, Err = %q", s.Moves, s.Err)
	}

	tb.Reset()
	tb.Sync()
	s = tb.Snapshot()
	if s.Position.FEN() != afterE4 || len(s.Moves) != 0 || s.View.LastMove != nil {
		t.Errorf("Reset did not return to the loaded position: %+v", s)
	}
}

func TestFlip(t *testing.T) {
	tb := newTestTable(t, position.StartFEN)
	tb.Flip()
	tb.Sync()
	if o := tb.Snapshot().View.Orientation; o != board.BlackBottom {
		t.Fatalf("Orientation = %v", o)
	}

	// Hit testing follows the flipped board.
	drag(tb, "d2", "d4")
	tb.Sync()
	if got := tb.Snapshot().Position.Piece(sq("d4")); got.Role != position.Pawn {
		t.Errorf("d4 = %+v after a flipped drag", got)
	}
}

func TestHintAndEngineMove(t *testing.T) {
	eng := &fakeEngine{replies: map[string]string{position.StartFEN: "g1f3"}}
	tb := newTestTable(t, position.StartFEN, WithEngine(eng))

	if err := <-tb.Hint(); err != nil {
		t.Fatalf("Hint: %v", err)
	}
	s := tb.Snapshot()
	if s.Hint != "Nf3" || s.View.Hint == nil || s.View.Hint.UCI() != "g1f3" {
		t.Errorf("hint = %q %v", s.Hint, s.View.Hint)
	}
	if s.Position.FEN() != position.StartFEN {
		t.Errorf("hint changed the position")
	}
	if s.Thinking {
		t.Errorf("still thinking after the reply")
	}

	if err := <-tb.EngineMove(); err != nil {
		t.Fatalf("EngineMove: %v", err)
	}
	s = tb.Snapshot()
	if !equalLines(s.Moves, []string{"1. Nf3"}) || s.Hint != "" || s.View.Hint != nil {
		t.Errorf("after engine move: Moves = %q, Hint = %q", s.Moves, s.Hint)
	}
}

func TestEngineSide(t *testing.T) {
	t.Run("replies after the human", func(t *testing.T) {
		eng := &fakeEngine{replies: map[string]string{afterE4: "c7c5"}}
		tb := newTestTable(t, position.StartFEN, WithEngine(eng), WithEngineSide(position.Black))
		drag(tb, "e2", "e4")
		tb.Sync()
		if s := tb.Snapshot(); !equalLines(s.Moves, []string{"1. e4 c5"}) {
			t.Errorf("Moves = %q", s.Moves)
		}
	})

	t.Run("opens as white", func(t *testing.T) {
		eng := &fakeEngine{replies: map[string]string{position.StartFEN: "d2d4"}}
		tb := newTestTable(t, position.StartFEN, WithEngine(eng), WithEngineSide(position.White))
		s := tb.Snapshot()
		if !equalLines(s.Moves, []string{"1. d4"}) || s.Position.SideToMove() != position.Black {
			t.Errorf("Moves = %q", s.Moves)
		}
	})

	t.Run("quiet after mate", func(t *testing.T) {
		eng := &fakeEngine{}
		tb := newTestTable(t, "7k/6Q1/6K1/8/8/8/8/8 b - - 0 1", WithEngine(eng), WithEngineSide(position.Black))
		s := tb.Snapshot()
		if len(eng.searched) != 0 || s.Status != "White wins by checkmate" {
			t.Errorf("searched %q, status %q", eng.searched, s.Status)
		}
	})
}

func TestEngineFailures(t *testing.T) {
	t.Run("no engine", func(t *testing.T) {
		tb := newTestTable(t, position.StartFEN)
		if err := <-tb.Hint(); !errors.Is(err, ErrNoEngine) {
			t.Errorf("Hint = %v, want ErrNoEngine", err)
		}
		if _, err := tb.EngineCommand("d"); !errors.Is(err, ErrNoEngine) {
			t.Errorf("EngineCommand = %v, want ErrNoEngine", err)
		}
		if s := tb.Snapshot(); s.Err != ErrNoEngine.Error() {
			t.Errorf("Err = %q", s.Err)
		}
	})

	t.Run("broken pipe", func(t *testing.T) {
		eng := &fakeEngine{err: fmt.Errorf("%w: broken pipe", uci.ErrEngineIO)}
		tb := newTestTable(t, position.StartFEN, WithEngine(eng))
		if err := <-tb.EngineMove(); !errors.Is(err, uci.ErrEngineIO) {
			t.Errorf("EngineMove = %v", err)
		}
		s := tb.Snapshot()
		if !strings.Contains(s.Err, "broken pipe") || s.Position.FEN() != position.StartFEN {
			t.Errorf("snapshot after failure: %+v", s)
		}
	})

	t.Run("illegal suggestion", func(t *testing.T) {
		eng := &fakeEngine{replies: map[string]string{position.StartFEN: "e2e5"}}
		tb := newTestTable(t, position.StartFEN, WithEngine(eng))
		if err := <-tb.EngineMove(); !errors.Is(err, position.ErrIllegalMove) {
			t.Errorf("EngineMove = %v", err)
		}
		if err := <-tb.Hint(); !errors.Is(err, position.ErrIllegalMove) {
			t.Errorf("Hint = %v", err)
		}
		if s := tb.Snapshot(); len(s.Moves) != 0 || s.View.Hint != nil {
			t.Errorf("bad suggestion applied: %+v", s)
		}
	})

	t.Run("game over", func(t *testing.T) {
		eng := &fakeEngine{}
		tb := newTestTable(t, "k7/8/1Q6/8/8/8/8/K7 b - - 0 1", WithEngine(eng))
		if err := <-tb.EngineMove(); err == nil {
			t.Errorf("EngineMove on stalemate succeeded")
		}
	})
}

func TestDiagnostics(t *testing.T) {
	eng := &diagEngine{}
	tb := newTestTable(t, position.StartFEN, WithEngine(eng))

	out, err := tb.EngineCommand("d")
	if err != nil || out != "echo d" {
		t.Errorf("EngineCommand = %q, %v", out, err)
	}
	if err := tb.SetEngineOption("Hash", "32"); err != nil {
		t.Errorf("SetEngineOption(Hash) = %v", err)
	}
	if err := tb.SetEngineOption("Colour", "red"); !errors.Is(err, uci.ErrUnknownOption) {
		t.Errorf("SetEngineOption(Colour) = %v", err)
	}
}

func TestClose(t *testing.T) {
	eng := &fakeEngine{}
	pos := position.MustParseFEN(position.StartFEN)
	tb := New(pos, board.NewGeometry(50), WithEngine(eng))

	if err := tb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tb.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if eng.stopped != 1 {
		t.Errorf("engine stopped %d times", eng.stopped)
	}
	if err := <-tb.Play("e2e4"); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close = %v", err)
	}
	tb.PointerDown(0, 0)
	tb.Flip()
}

func TestCloseWithFullQueue(t *testing.T) {
	pos := position.MustParseFEN("8/P7/8/8/8/8/8/k6K w - - 0 1")
	tb := New(pos, board.NewGeometry(50))
	drag(tb, "a7", "a8")
	waitFor(t, tb, func(s Snapshot) bool { return s.Prompt != nil })

	// The run goroutine is parked in the prompt, so these pile up until one
	// blocks on the full queue.
	posted := make(chan struct{})
	go func() {
		defer close(posted)
		for i := 0; i < 2*cap(tb.events); i++ {
			tb.Flip()
		}
	}()
	waitForQueue(t, tb)

	closed := make(chan error, 1)
	go func() { closed <- tb.Close() }()
	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked behind a full queue")
	}
	select {
	case <-posted:
	case <-time.After(5 * time.Second):
		t.Fatal("poster still blocked after Close")
	}
	if s := tb.Snapshot(); s.View.Orientation != board.WhiteBottom {
		t.Errorf("queued flips ran after Close: %v", s.View.Orientation)
	}
}

func waitForQueue(t *testing.T, tb *Table) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for len(tb.events) < cap(tb.events) {
		if time.Now().After(deadline) {
			t.Fatalf("queue holds %d of %d", len(tb.events), cap(tb.events))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCloseWhilePrompting(t *testing.T) {
	pos := position.MustParseFEN("8/P7/8/8/8/8/8/k6K w - - 0 1")
	tb := New(pos, board.NewGeometry(50))
	drag(tb, "a7", "a8")
	waitFor(t, tb, func(s Snapshot) bool { return s.Prompt != nil })

	done := make(chan error, 1)
	go func() { done <- tb.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked behind the prompt")
	}
}
