package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/wricardo/boxpusher/game/level"
)

const solvable = "#####\n#@$.#\n#####"

func newTestEngine(t *testing.T, grid string, opts ...Option) (*GameEngine, *RecordingScene) {
	t.Helper()
	scene := NewRecordingScene()
	e, err := NewEngine(mustLevel(t, grid), append([]Option{WithScene(scene)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e, scene
}

// tickUntilUnlocked ticks at 60 fps and returns the elapsed time
func tickUntilUnlocked(t *testing.T, e *GameEngine) float64 {
	t.Helper()
	const dt = 1.0 / 60
	elapsed := 0.0
	for i := 0; e.InputLocked(); i++ {
		if i > 600 {
			t.Fatal("input never unlocked")
		}
		e.Tick(dt)
		elapsed += dt
	}
	return elapsed
}

func TestNewEngine(t *testing.T) {
	e, scene := newTestEngine(t, solvable)

	if e.InputLocked() {
		t.Error("Expected input unlocked initially")
	}
	if e.IsSolved() || e.IsFinishedAndSolved() {
		t.Error("Expected level not solved initially")
	}
	// 12 walls + floor + target + floor under player + floor under box, player, box
	if scene.Live() != 15+2 {
		t.Errorf("Expected 17 live handles, got %d", scene.Live())
	}
}

func TestNewEngine_Errors(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, ErrNilLevel) {
		t.Errorf("Expected ErrNilLevel, got %v", err)
	}

	bad := DefaultProfile()
	bad.GridSize = 0
	if _, err := NewEngine(mustLevel(t, solvable), WithProfile(bad)); err == nil {
		t.Error("Expected invalid profile to be rejected")
	}
}

func TestEngine_PushSolves(t *testing.T) {
	e, _ := newTestEngine(t, solvable)

	out := e.TryMove(Right)
	if out.Result != Pushed {
		t.Fatalf("Expected push, got %v", out.Result)
	}
	if !e.InputLocked() {
		t.Fatal("Expected input locked while animating")
	}
	if !e.IsSolved() {
		t.Error("Expected grid solved right after the push")
	}
	if e.IsFinishedAndSolved() {
		t.Error("Expected not finished while the push animates")
	}

	elapsed := tickUntilUnlocked(t, e)
	if elapsed < 1.0 {
		t.Errorf("Unlocked after %v, want at least the push pose duration", elapsed)
	}
	if !e.IsFinishedAndSolved() {
		t.Error("Expected finished and solved once unlocked")
	}
}

func TestEngine_LockedMoveIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, "######\n#@  .#\n######")

	e.TryMove(Right)
	before := rows(e.State())

	out := e.TryMove(Right)
	if out.Result != Blocked || out.Reason != ReasonLocked {
		t.Errorf("Expected locked block, got %v/%s", out.Result, out.Reason)
	}
	if rows(e.State()) != before {
		t.Errorf("Grid changed while locked:\n%s", rows(e.State()))
	}
	if len(e.GetMoveHistory()) != 1 {
		t.Errorf("Expected locked attempt to stay out of history, got %d entries", len(e.GetMoveHistory()))
	}
	if e.GetPossibleMoves() != nil {
		t.Error("Expected no possible moves while locked")
	}
}

func TestEngine_BlockedDoesNotLock(t *testing.T) {
	e, _ := newTestEngine(t, solvable)
	out := e.TryMove(Left)
	if !out.Blocked() || e.InputLocked() {
		t.Errorf("Expected blocked move without lock, got %v locked=%v", out.Result, e.InputLocked())
	}
}

func TestEngine_WalkTransforms(t *testing.T) {
	e, scene := newTestEngine(t, "######\n#@  .#\n######")
	playerHandle := e.State().tiles[1][1].Object.Handle

	e.Tick(0.01)
	e.TryMove(Right)
	var moved bool
	for e.InputLocked() {
		for _, f := range e.Tick(0.05) {
			if f.Handle == playerHandle && f.Transform.X > 1 && f.Transform.X < 2 {
				moved = true
			}
		}
	}
	if !moved {
		t.Error("Expected intermediate player frames between cells")
	}

	tf := scene.Transforms[playerHandle]
	if tf.X != 2 || tf.Z != 1 || tf.RotY != 90 {
		t.Errorf("Expected player resting at (2,1) facing 90, got %+v", tf)
	}
	poses := scene.Poses[playerHandle]
	if len(poses) < 2 || poses[0] != "idle" || poses[1] != "walk" {
		t.Errorf("Expected idle then walk poses, got %v", poses)
	}
}

func TestEngine_BoxTransform(t *testing.T) {
	e, scene := newTestEngine(t, solvable)
	boxHandle := e.State().tiles[1][2].Object.Handle

	e.TryMove(Right)
	e.Tick(0.05)
	if tf := scene.Transforms[boxHandle]; tf.X != 2 {
		t.Errorf("Expected box to wait for contact, got x=%v", tf.X)
	}

	tickUntilUnlocked(t, e)
	for i := 0; i < 10; i++ {
		e.Tick(0.05)
	}
	if tf := scene.Transforms[boxHandle]; tf.X != 3 || tf.Z != 1 {
		t.Errorf("Expected box resting at (3,1), got %+v", tf)
	}
}

func TestEngine_Settle(t *testing.T) {
	e, _ := newTestEngine(t, "######\n#@  .#\n######")
	e.TryMove(Right)
	if !e.Settle(5) {
		t.Fatal("Expected Settle to unlock input")
	}
	if out := e.TryMove(Right); out.Result != Moved {
		t.Errorf("Expected second move to succeed, got %v/%s", out.Result, out.Reason)
	}

	e.TryMove(Left)
	if e.Settle(0.01) {
		t.Error("Expected a too-short settle to leave input locked")
	}
}

func TestEngine_NegativeTick(t *testing.T) {
	e, scene := newTestEngine(t, "######\n#@  .#\n######")
	playerHandle := e.State().tiles[1][1].Object.Handle
	e.TryMove(Right)
	e.Tick(-5)
	if tf := scene.Transforms[playerHandle]; tf.X != 1 {
		t.Errorf("Negative dt moved the player to %v", tf.X)
	}
}

func TestEngine_RestartAndClose(t *testing.T) {
	e, scene := newTestEngine(t, solvable)
	live := scene.Live()

	e.TryMove(Right)
	e.Settle(5)
	e.Restart()

	if e.IsSolved() || e.InputLocked() || len(e.GetMoveHistory()) != 0 {
		t.Error("Expected fresh state after restart")
	}
	if scene.Live() != live {
		t.Errorf("Expected %d live handles after restart, got %d", live, scene.Live())
	}

	e.Close()
	if scene.Live() != 0 {
		t.Errorf("Expected all handles released, got %d", scene.Live())
	}
	if out := e.TryMove(Right); !out.Blocked() {
		t.Error("Expected closed engine to refuse moves")
	}
	if frames := e.Tick(1); frames != nil {
		t.Error("Expected closed engine to produce no frames")
	}
}

func TestEngine_Snapshot(t *testing.T) {
	e, _ := newTestEngine(t, solvable)
	snap := e.Snapshot()

	if snap.Width != 5 || snap.Height != 3 || len(snap.Rows) != 3 {
		t.Errorf("Unexpected snapshot size %dx%d", snap.Width, snap.Height)
	}
	if len(snap.Boxes) != 1 || len(snap.Targets) != 1 {
		t.Errorf("Expected one box and one target, got %v %v", snap.Boxes, snap.Targets)
	}
	if len(snap.Actors) != 2 {
		t.Errorf("Expected 2 actors, got %d", len(snap.Actors))
	}
	if len(snap.PossibleMoves) != 1 || snap.PossibleMoves[0] != Right {
		t.Errorf("Expected only right possible, got %v", snap.PossibleMoves)
	}

	e.TryMove(Right)
	e.Settle(5)
	snap = e.Snapshot()
	if !snap.Solved || !snap.Finished || snap.BoxesOnTargets != 1 {
		t.Errorf("Expected solved snapshot, got %+v", snap)
	}
	if snap.Player != (level.Coordinates{X: 2, Y: 1}) {
		t.Errorf("Unexpected player %v", snap.Player)
	}
}

func TestShortestTurn(t *testing.T) {
	tests := []struct {
		from, to, want float64
	}{
		{0, 90, 90},
		{0, 270, -90},
		{270, 0, 90},
		{180, 0, 180},
		{0, 180, 180},
		{90, 270, 180},
		{270, 90, 180},
		{90, 90, 0},
	}
	for _, tt := range tests {
		if got := ShortestTurn(tt.from, tt.to); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ShortestTurn(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
