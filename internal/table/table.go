// Package table runs a chessboard on one goroutine. Hosts post pointer and
// key events and read immutable snapshots; the goroutine owns the position,
// the controller and the engine session, so nothing else needs locking.
package table

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dulchik/chess-position-trainer/internal/board"
	"github.com/dulchik/chess-position-trainer/internal/notation"
	"github.com/dulchik/chess-position-trainer/internal/position"
	"github.com/dulchik/chess-position-trainer/internal/uci"
)

var (
	// ErrClosed is returned for requests made after Close.
	ErrClosed = errors.New("table closed")
	// ErrNoEngine is returned for engine requests on a table without one.
	ErrNoEngine = errors.New("no engine")
)

// Engine is the part of a uci.Session the table drives.
type Engine interface {
	SetPosition(fen string) error
	BestMove() (string, error)
	Stop() error
}

// Diagnostics is implemented by engines that accept raw commands and
// options, such as *uci.Session.
type Diagnostics interface {
	Command(raw string) (string, error)
	SetOption(name, value string) error
}

// Snapshot is the state of the table at one instant. It shares nothing with
// the table and may be kept.
type Snapshot struct {
	Seq      uint64
	Position position.Position
	View     board.ViewModel

	// Prompt is set while a promotion choice is pending.
	Prompt *board.PromotionLayout

	Status   string
	Moves    []string
	Hint     string
	Engine   string
	Thinking bool
	Err      string
}

// Option configures a Table.
type Option func(*Table)

// WithEngine attaches an engine. The table stops it on Close.
func WithEngine(e Engine) Option {
	return func(t *Table) {
		t.engine = e
	}
}

// WithEngineSide makes the engine move automatically for side.
func WithEngineSide(side position.Color) Option {
	return func(t *Table) {
		t.engineSide, t.autoReply = side, true
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Table) {
		t.log = log
	}
}

// WithOrientation sets the initial orientation.
func WithOrientation(o board.Orientation) Option {
	return func(t *Table) {
		t.orientation = o
	}
}

// Table is a running board. Its methods may be called from any goroutine.
type Table struct {
	events  chan func()
	answers chan answer
	done    chan struct{}
	sealed  chan struct{}
	exited  chan struct{}
	once    sync.Once

	// postMu orders posts against Close so nothing lands after the drain.
	// Posters block on a full queue without it held.
	postMu sync.RWMutex
	closed bool

	mu   sync.Mutex
	snap Snapshot

	// Owned by the run goroutine.
	ctrl        *board.Controller
	start       position.Position
	engine      Engine
	engineName  string
	engineSide  position.Color
	autoReply   bool
	orientation board.Orientation
	dropTarget  position.Square
	sans        []string
	firstMove   int
	blackFirst  bool
	status      string
	hint        string
	thinking    bool
	lastErr     string
	seq         uint64
	prompt      *board.PromotionLayout
	log         zerolog.Logger
}

type answer struct {
	choice board.Promotion
	ok     bool
}

// New starts a table on pos.
func New(pos position.Position, geom board.Geometry, opts ...Option) *Table {
	t := &Table{
		events:  make(chan func(), 256),
		answers: make(chan answer, 1),
		done:    make(chan struct{}),
		sealed:  make(chan struct{}),
		exited:  make(chan struct{}),
		start:   pos,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if e, ok := t.engine.(interface{ Info() uci.EngineInfo }); ok {
		t.engineName = e.Info().Name
	}
	t.ctrl = board.NewController(pos, geom, board.ChooserFunc(t.choose), t.log)
	t.ctrl.SetOrientation(t.orientation)
	t.resetHistory()
	t.ctrl.OnInvalidate(t.publish)
	t.publish()

	go t.run()
	t.post(t.maybeReply)
	return t
}

func (t *Table) run() {
	defer close(t.exited)
	for {
		select {
		case <-t.done:
			<-t.sealed
			t.drain()
			return
		case f := <-t.events:
			f()
		}
	}
}

// drain answers the requests still queued at Close.
func (t *Table) drain() {
	for {
		select {
		case f := <-t.events:
			f()
		default:
			return
		}
	}
}

// stopping reports whether Close has begun. Work dequeued after that point
// is dropped, even if run picked it before noticing done.
func (t *Table) stopping() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// post queues f for the run goroutine. It reports false after Close. f is
// dropped if it is still queued when the table closes.
func (t *Table) post(f func()) bool {
	return t.enqueue(func() {
		if !t.stopping() {
			f()
		}
	})
}

func (t *Table) enqueue(f func()) bool {
	t.postMu.RLock()
	defer t.postMu.RUnlock()
	if t.closed {
		return false
	}
	select {
	case t.events <- f:
		return true
	case <-t.done:
		return false
	}
}

// call queues f and returns a channel that receives its result.
func (t *Table) call(f func() error) <-chan error {
	res := make(chan error, 1)
	ok := t.enqueue(func() {
		if t.stopping() {
			res <- ErrClosed
			return
		}
		res <- f()
	})
	if !ok {
		res <- ErrClosed
	}
	return res
}

// Snapshot returns the latest published state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.snap
	s.Moves = append([]string(nil), t.snap.Moves...)
	s.View = t.snap.View.Clone()
	if t.snap.Prompt != nil {
		p := *t.snap.Prompt
		s.Prompt = &p
	}
	return s
}

func (t *Table) prompting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap.Prompt != nil
}

// PointerDown, PointerMove and PointerUp forward board pixel coordinates to
// the controller. They are dropped while a promotion prompt is open.
func (t *Table) PointerDown(x, y int) {
	if t.prompting() {
		return
	}
	t.post(func() { t.ctrl.PointerDown(x, y) })
}

func (t *Table) PointerMove(x, y int) {
	if t.prompting() {
		return
	}
	t.post(func() { t.ctrl.PointerMove(x, y) })
}

func (t *Table) PointerUp(x, y int) {
	if t.prompting() {
		return
	}
	t.post(func() {
		before := t.ctrl.Position()
		view := t.ctrl.View()
		t.dropTarget, _ = t.ctrl.Geometry().ScreenToCell(x, y, view.Orientation)
		if m, ok := t.ctrl.PointerUp(x, y); ok {
			t.played(&before, m)
			t.maybeReply()
		}
	})
}

// Choose answers an open promotion prompt. Dismiss cancels it, which puts
// the pawn back.
func (t *Table) Choose(p board.Promotion) {
	t.answer(answer{choice: p, ok: true})
}

func (t *Table) Dismiss() {
	t.answer(answer{})
}

func (t *Table) answer(a answer) {
	select {
	case t.answers <- a:
	default:
	}
}

// choose runs on the run goroutine inside PointerUp and blocks it until the
// host answers.
func (t *Table) choose(side position.Color) (board.Promotion, bool) {
	select {
	case <-t.answers:
	default:
	}
	t.prompt = &board.PromotionLayout{
		Geometry:    t.ctrl.Geometry(),
		Orientation: t.ctrl.View().Orientation,
		Target:      t.dropTarget,
		Side:        side,
	}
	t.publish()
	defer func() {
		t.prompt = nil
		t.publish()
	}()

	select {
	case a := <-t.answers:
		t.log.Debug().Stringer("choice", a.choice).Bool("ok", a.ok).Msg("promotion answered")
		return a.choice, a.ok
	case <-t.done:
		return board.PromoteQueen, false
	}
}

// Flip turns the board around.
func (t *Table) Flip() {
	t.post(t.ctrl.Flip)
}

// Reset goes back to the starting position.
func (t *Table) Reset() {
	t.post(func() {
		t.ctrl.Reset(t.start)
		t.resetHistory()
		t.publish()
		t.maybeReply()
	})
}

// Load replaces the starting position with fen and resets to it.
func (t *Table) Load(fen string) <-chan error {
	return t.call(func() error {
		pos, err := position.ParseFEN(fen)
		if err != nil {
			t.fail(err)
			return err
		}
		t.start = pos
		t.ctrl.Reset(pos)
		t.resetHistory()
		t.publish()
		t.maybeReply()
		return nil
	})
}

// Play makes a move given in coordinate notation.
func (t *Table) Play(s string) <-chan error {
	return t.call(func() error {
		before := t.ctrl.Position()
		m, err := t.ctrl.ApplyUCI(s)
		if err != nil {
			t.fail(err)
			return err
		}
		t.played(&before, m)
		t.maybeReply()
		return nil
	})
}

// Hint asks the engine for a move and highlights it.
func (t *Table) Hint() <-chan error {
	return t.call(func() error {
		s, err := t.bestMove()
		if err != nil {
			return err
		}
		pos := t.ctrl.Position()
		m, err := pos.MoveFromUCI(s)
		if err != nil {
			t.fail(fmt.Errorf("engine suggested %q: %w", s, err))
			return err
		}
		t.hint = notation.SANOrUCI(&pos, m)
		t.ctrl.SetHint(&m)
		return nil
	})
}

// EngineMove lets the engine play for the side to move.
func (t *Table) EngineMove() <-chan error {
	return t.call(t.engineMove)
}

// EngineCommand sends a raw diagnostic command to the engine and returns its
// output.
func (t *Table) EngineCommand(raw string) (string, error) {
	var out string
	err := <-t.call(func() error {
		d, ok := t.engine.(Diagnostics)
		if !ok {
			return ErrNoEngine
		}
		var err error
		out, err = d.Command(raw)
		return err
	})
	return out, err
}

// SetEngineOption sets a UCI option.
func (t *Table) SetEngineOption(name, value string) error {
	return <-t.call(func() error {
		d, ok := t.engine.(Diagnostics)
		if !ok {
			return ErrNoEngine
		}
		return d.SetOption(name, value)
	})
}

// Sync waits until every event posted before it has been handled.
func (t *Table) Sync() error {
	return <-t.call(func() error { return nil })
}

// Close stops the run goroutine and the engine. A search in progress is
// interrupted by stopping the engine.
func (t *Table) Close() error {
	var err error
	t.once.Do(func() {
		// done goes first: it releases choose and any poster waiting on a
		// full queue, so the write lock below cannot wait on them.
		close(t.done)
		t.postMu.Lock()
		t.closed = true
		t.postMu.Unlock()
		close(t.sealed)
		if t.engine != nil {
			err = t.engine.Stop()
		}
		<-t.exited
	})
	return err
}

func (t *Table) engineMove() error {
	s, err := t.bestMove()
	if err != nil {
		return err
	}
	before := t.ctrl.Position()
	m, err := t.ctrl.ApplyUCI(s)
	if err != nil {
		t.fail(fmt.Errorf("engine played %q: %w", s, err))
		return err
	}
	t.played(&before, m)
	return nil
}

// bestMove sends the current position and waits for the engine's reply.
func (t *Table) bestMove() (string, error) {
	if t.engine == nil {
		t.fail(ErrNoEngine)
		return "", ErrNoEngine
	}
	pos := t.ctrl.Position()
	if st := pos.Status(); st != position.Ongoing {
		err := fmt.Errorf("no move to search: %s", st)
		t.fail(err)
		return "", err
	}

	t.thinking = true
	t.publish()
	defer func() {
		t.thinking = false
		t.publish()
	}()

	if err := t.engine.SetPosition(pos.FEN()); err != nil {
		t.fail(err)
		return "", err
	}
	s, err := t.engine.BestMove()
	if err != nil {
		t.fail(err)
		return "", err
	}
	t.log.Info().Str("fen", pos.FEN()).Str("bestmove", s).Msg("engine replied")
	return s, nil
}

// maybeReply lets the engine answer when it plays the side to move.
func (t *Table) maybeReply() {
	if !t.autoReply || t.engine == nil {
		return
	}
	pos := t.ctrl.Position()
	if pos.SideToMove() != t.engineSide || pos.Status() != position.Ongoing {
		return
	}
	if err := t.engineMove(); err != nil {
		t.log.Warn().Err(err).Msg("engine reply failed")
	}
}

func (t *Table) played(before *position.Position, m position.Move) {
	t.sans = append(t.sans, notation.SANOrUCI(before, m))
	t.hint = ""
	t.lastErr = ""
	pos := t.ctrl.Position()
	t.status = notation.Status(&pos)
	t.publish()
}

func (t *Table) resetHistory() {
	pos := t.ctrl.Position()
	t.sans = nil
	t.firstMove = pos.FullmoveNumber()
	t.blackFirst = pos.SideToMove() == position.Black
	t.hint = ""
	t.lastErr = ""
	t.status = notation.Status(&pos)
}

func (t *Table) fail(err error) {
	t.lastErr = err.Error()
	if errors.Is(err, uci.ErrEngineIO) {
		t.log.Error().Err(err).Msg("engine unusable")
	} else {
		t.log.Warn().Err(err).Msg("request failed")
	}
	t.publish()
}

// publish copies the owned state into the snapshot.
func (t *Table) publish() {
	t.seq++
	s := Snapshot{
		Seq:      t.seq,
		Position: t.ctrl.Position(),
		View:     t.ctrl.View(),
		Status:   t.status,
		Moves:    notation.FormatMoves(t.sans, t.firstMove, t.blackFirst),
		Hint:     t.hint,
		Engine:   t.engineName,
		Thinking: t.thinking,
		Err:      t.lastErr,
	}
	if t.prompt != nil {
		p := *t.prompt
		s.Prompt = &p
	}
	t.mu.Lock()
	t.snap = s
	t.mu.Unlock()
}
