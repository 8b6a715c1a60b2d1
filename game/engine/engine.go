package engine

import (
	"errors"
	"time"

	"github.com/wricardo/boxpusher/game/anim"
	"github.com/wricardo/boxpusher/game/level"
)

var ErrNilLevel = errors.New("level cannot be nil")

// Engine provides the main interface for playing one level
type Engine interface {
	// Input and time
	TryMove(d Direction) MoveOutcome
	Tick(dt float64) []Frame
	Settle(maxSeconds float64) bool

	// Queries
	InputLocked() bool
	IsSolved() bool
	IsFinishedAndSolved() bool
	State() *PuzzleState
	Snapshot() *Snapshot
	Level() *level.Level
	GetPossibleMoves() []Direction
	GetMoveHistory() []MoveHistoryEntry
	GetLocalView() []SurroundingCell

	// Lifecycle
	Restart()
	Close()
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	level   *level.Level
	profile Profile
	scene   Scene

	state       *PuzzleState
	inputLocked bool
	actors      map[Handle]*actor
	tileHandles []Handle
	history     []MoveHistoryEntry
	message     string
	closed      bool
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithScene sets the rendering collaborator
func WithScene(s Scene) Option {
	return func(e *GameEngine) {
		if s != nil {
			e.scene = s
		}
	}
}

// WithProfile sets the animation timings
func WithProfile(p Profile) Option {
	return func(e *GameEngine) {
		e.profile = p
	}
}

// NewEngine starts a session on the level
func NewEngine(l *level.Level, opts ...Option) (*GameEngine, error) {
	if l == nil {
		return nil, ErrNilLevel
	}

	e := &GameEngine{
		level:   l,
		profile: DefaultProfile(),
		scene:   &NopScene{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := ValidateProfile(e.profile); err != nil {
		return nil, err
	}

	e.load()
	return e, nil
}

// load builds the puzzle state and acquires every scene handle
func (e *GameEngine) load() {
	e.state = NewPuzzleState(e.level)
	e.inputLocked = false
	e.actors = make(map[Handle]*actor)
	e.tileHandles = e.tileHandles[:0]
	e.message = "Push every box onto a target"

	for y := range e.state.tiles {
		for x := range e.state.tiles[y] {
			t := &e.state.tiles[y][x]
			if kind, ok := tileHandleKind(t.Kind); ok {
				t.Handle = e.scene.Acquire(kind, t.Coordinates)
				e.tileHandles = append(e.tileHandles, t.Handle)
				e.scene.Apply(t.Handle, restingTransform(t.Coordinates, Up, e.profile.GridSize))
			}

			obj := &t.Object
			if obj.Kind == level.None {
				continue
			}
			hk := HandleBox
			if obj.Kind == level.Player {
				hk = HandlePlayer
				obj.Animation = e.profile.idleLoop()
			}
			obj.Handle = e.scene.Acquire(hk, t.Coordinates)
			a := &actor{
				handle: obj.Handle,
				kind:   obj.Kind,
				cell:   t.Coordinates,
				facing: obj.Facing,
				tf:     restingTransform(t.Coordinates, obj.Facing, e.profile.GridSize),
			}
			e.actors[obj.Handle] = a
			e.scene.Apply(a.handle, a.tf)
		}
	}
}

// release hands every handle back to the scene
func (e *GameEngine) release() {
	for _, h := range e.tileHandles {
		e.scene.Release(h)
	}
	for h := range e.actors {
		e.scene.Release(h)
	}
	e.tileHandles = nil
	e.actors = nil
}

// TryMove attempts a move. While the previous move is animating it is a
// no-op that reports ReasonLocked.
func (e *GameEngine) TryMove(d Direction) MoveOutcome {
	if e.closed || e.inputLocked {
		p := e.state.PlayerPosition()
		return MoveOutcome{Result: Blocked, Direction: d, Player: Step{From: p, To: p}, Reason: ReasonLocked}
	}

	playerHandle := e.state.tile(e.state.PlayerPosition()).Object.Handle
	out := e.state.TryMove(d)
	e.record(out)
	e.message = out.Message()
	if out.Blocked() {
		return out
	}

	e.inputLocked = true

	pa := e.actors[playerHandle]
	turn := ShortestTurn(pa.facing.Angle(), d.Angle())
	pa.cell, pa.facing = out.Player.To, d

	var move anim.Node
	if out.Box != nil {
		move = e.profile.pushTree(d, turn)

		box := &e.state.tile(out.Box.To).Object
		ba := e.actors[box.Handle]
		ba.cell = out.Box.To
		box.Animation = e.profile.boxTree(d, func() { e.snap(ba) })
	} else {
		move = e.profile.walkTree(d, turn)
	}

	player := &e.state.tile(out.Player.To).Object
	player.Animation = anim.NewSequential(
		move,
		anim.NewAction(func() {
			e.snap(pa)
			e.inputLocked = false
		}),
		e.profile.idleLoop(),
	)

	return out
}

// snap places an actor exactly on its logical cell
func (e *GameEngine) snap(a *actor) {
	a.tf = restingTransform(a.cell, a.facing, e.profile.GridSize)
	a.dirty = true
}

func (e *GameEngine) record(out MoveOutcome) {
	e.history = append(e.history, MoveHistoryEntry{
		Direction:  out.Direction,
		Result:     out.Result,
		From:       out.Player.From,
		To:         out.Player.To,
		Timestamp:  time.Now().Unix(),
		MoveNumber: len(e.history) + 1,
	})
}

// Tick advances every active animation by dt seconds and returns the
// objects whose visuals changed. Negative dt counts as zero.
func (e *GameEngine) Tick(dt float64) []Frame {
	if e.closed {
		return nil
	}
	if dt < 0 {
		dt = 0
	}

	var frames []Frame
	for y := range e.state.tiles {
		for x := range e.state.tiles[y] {
			obj := &e.state.tiles[y][x].Object
			if obj.Animation == nil {
				continue
			}
			a := e.actors[obj.Handle]
			if obj.Animation.Advance(dt, a) == anim.Finished {
				obj.Animation = nil
			}
			if f, ok := e.flush(a); ok {
				frames = append(frames, f)
			}
		}
	}
	return frames
}

func (e *GameEngine) flush(a *actor) (Frame, bool) {
	if !a.dirty && a.pose == "" {
		return Frame{}, false
	}
	f := Frame{Handle: a.handle, Kind: a.kind, Coordinates: a.cell, Transform: a.tf, Pose: a.pose}
	if a.dirty {
		e.scene.Apply(a.handle, a.tf)
	}
	if a.pose != "" {
		e.scene.Pose(a.handle, a.pose, a.poseDuration)
	}
	a.dirty, a.pose = false, ""
	return f, true
}

// Settle fast-forwards until input unlocks or maxSeconds of animation time
// pass. It reports whether input is unlocked.
func (e *GameEngine) Settle(maxSeconds float64) bool {
	for elapsed := 0.0; e.inputLocked && elapsed < maxSeconds; elapsed += e.profile.SettleStep {
		e.Tick(e.profile.SettleStep)
	}
	return !e.inputLocked
}

// InputLocked reports whether a move is still animating
func (e *GameEngine) InputLocked() bool {
	return e.inputLocked
}

// IsSolved reports whether every target holds a box
func (e *GameEngine) IsSolved() bool {
	return e.state.IsSolved()
}

// IsFinishedAndSolved is true once the solving move has finished animating
func (e *GameEngine) IsFinishedAndSolved() bool {
	return !e.inputLocked && e.state.IsSolved()
}

// State returns the live puzzle state
func (e *GameEngine) State() *PuzzleState {
	return e.state
}

// Level returns the level being played
func (e *GameEngine) Level() *level.Level {
	return e.level
}

// GetPossibleMoves returns every direction that would not be blocked
func (e *GameEngine) GetPossibleMoves() []Direction {
	if e.inputLocked {
		return nil
	}
	var possible []Direction
	for _, d := range Directions {
		if e.state.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// GetMoveHistory returns every move attempted since the level started
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLocalView returns the cells around the player
func (e *GameEngine) GetLocalView() []SurroundingCell {
	return e.state.LocalView()
}

// Restart puts the level back to its starting layout
func (e *GameEngine) Restart() {
	if e.closed {
		return
	}
	e.release()
	e.history = nil
	e.load()
}

// Close releases every scene handle. The engine is unusable afterwards.
func (e *GameEngine) Close() {
	if e.closed {
		return
	}
	e.release()
	e.closed = true
}
