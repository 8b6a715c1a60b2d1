package engine

import (
	"math"

	"github.com/wricardo/boxpusher/game/anim"
	"github.com/wricardo/boxpusher/game/level"
)

// actor is the visual side of an object. It is the anim.Target its trees
// write to and forwards changes to the scene.
type actor struct {
	handle Handle
	kind   level.ObjectKind
	cell   level.Coordinates
	facing Direction
	tf     Transform

	dirty        bool
	pose         string
	poseDuration float64
}

func (a *actor) Value(p anim.Property) float64 {
	switch p {
	case anim.PositionX:
		return a.tf.X
	case anim.PositionZ:
		return a.tf.Z
	case anim.RotationY:
		return a.tf.RotY
	}
	return 0
}

func (a *actor) SetValue(p anim.Property, v float64) {
	switch p {
	case anim.PositionX:
		a.tf.X = v
	case anim.PositionZ:
		a.tf.Z = v
	case anim.RotationY:
		a.tf.RotY = v
	default:
		return
	}
	a.dirty = true
}

func (a *actor) PlayPose(name string, duration float64) {
	a.pose, a.poseDuration = name, duration
}

// Frame is the visual change of one object during a tick
type Frame struct {
	Handle      Handle            `json:"handle"`
	Kind        level.ObjectKind  `json:"kind"`
	Coordinates level.Coordinates `json:"coordinates"`
	Transform   Transform         `json:"transform"`
	Pose        string            `json:"pose,omitempty"`
}

// ShortestTurn returns the signed rotation in degrees from one angle to
// another, always in (-180, 180]
func ShortestTurn(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

func restingTransform(c level.Coordinates, facing Direction, grid float64) Transform {
	return Transform{X: float64(c.X) * grid, Z: float64(c.Y) * grid, RotY: facing.Angle()}
}

// translate moves by fraction of a cell along d
func (p Profile) translate(d Direction, fraction, duration float64) anim.Node {
	dx, dy := d.Delta()
	ease := p.easing()
	return anim.NewParallel(
		anim.NewTween(anim.PositionX, float64(dx)*p.GridSize*fraction, duration, ease),
		anim.NewTween(anim.PositionZ, float64(dy)*p.GridSize*fraction, duration, ease),
	)
}

// walkTree turns and steps one cell with the walk pose
func (p Profile) walkTree(d Direction, turn float64) anim.Node {
	dx, dy := d.Delta()
	ease := p.easing()
	return anim.NewParallel(
		anim.NewTween(anim.RotationY, turn, p.TurnDuration, ease),
		anim.NewTween(anim.PositionX, float64(dx)*p.GridSize, p.WalkDuration, ease),
		anim.NewTween(anim.PositionZ, float64(dy)*p.GridSize, p.WalkDuration, ease),
		anim.NewPose(p.WalkPose, p.WalkDuration),
	)
}

// pushTree turns, leans into the box, travels with it and recoils
func (p Profile) pushTree(d Direction, turn float64) anim.Node {
	return anim.NewParallel(
		anim.NewSequential(
			anim.NewTween(anim.RotationY, turn, p.TurnDuration, p.easing()),
			p.translate(d, p.PushLeadFraction, p.PushLeadDuration),
			p.translate(d, 1, p.PushTravelDuration),
			p.translate(d, -p.PushLeadFraction, p.PushRecoilDuration),
		),
		anim.NewPose(p.PushPose, p.PushPoseDuration),
	)
}

// boxTree waits for the player to make contact and slides one cell
func (p Profile) boxTree(d Direction, done func()) anim.Node {
	return anim.NewSequential(
		anim.NewPause(p.BoxLeadPause),
		p.translate(d, 1, p.PushTravelDuration),
		anim.NewPause(p.BoxTrailPause),
		anim.NewAction(done),
	)
}

func (p Profile) idleLoop() anim.Node {
	return anim.NewLoop(anim.NewPose(p.IdlePose, p.IdlePoseDuration))
}
