package anim

import "fmt"

// State is the lifecycle of a node
type State int

const (
	Pending State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Property names an animatable scalar of a Target
type Property int

const (
	PositionX Property = iota
	PositionZ
	RotationY
)

func (p Property) String() string {
	switch p {
	case PositionX:
		return "position.x"
	case PositionZ:
		return "position.z"
	case RotationY:
		return "rotation.y"
	}
	return fmt.Sprintf("Property(%d)", int(p))
}

// Target receives the values a tree produces
type Target interface {
	Value(p Property) float64
	SetValue(p Property, v float64)
	PlayPose(name string, duration float64)
}

// Node is one element of an animation tree. Advance applies dt seconds of
// progress to t and returns the resulting state. Reset rewinds the node and
// its children to their initial state.
type Node interface {
	Advance(dt float64, t Target) State
	State() State
	Reset()
}

// Tween modes
type Mode int

const (
	// Delta adds Amount to the property over the duration
	Delta Mode = iota
	// Absolute moves the property from its value at start to Amount
	Absolute
)

// Tween interpolates a single property
type Tween struct {
	Property Property
	Mode     Mode
	Amount   float64
	Duration float64
	Easing   Easing

	elapsed  float64
	progress float64
	start    float64
	state    State
}

// NewTween builds a delta tween. A nil easing is linear.
func NewTween(p Property, amount, duration float64, easing Easing) *Tween {
	return &Tween{Property: p, Mode: Delta, Amount: amount, Duration: duration, Easing: easing}
}

// NewTweenTo builds an absolute tween toward value
func NewTweenTo(p Property, value, duration float64, easing Easing) *Tween {
	return &Tween{Property: p, Mode: Absolute, Amount: value, Duration: duration, Easing: easing}
}

func (tw *Tween) Advance(dt float64, t Target) State {
	if tw.state == Finished {
		return Finished
	}
	if tw.state == Pending {
		tw.start = t.Value(tw.Property)
		tw.state = Running
	}

	tw.elapsed += dt
	f := 1.0
	if tw.Duration > 0 && tw.elapsed < tw.Duration {
		ease := tw.Easing
		if ease == nil {
			ease = Linear
		}
		f = ease(tw.elapsed / tw.Duration)
	} else {
		tw.elapsed = tw.Duration
	}

	switch tw.Mode {
	case Absolute:
		t.SetValue(tw.Property, tw.start+(tw.Amount-tw.start)*f)
	default:
		t.SetValue(tw.Property, t.Value(tw.Property)+tw.Amount*(f-tw.progress))
	}
	tw.progress = f

	if tw.elapsed >= tw.Duration {
		tw.state = Finished
	}
	return tw.state
}

func (tw *Tween) State() State { return tw.state }

func (tw *Tween) Reset() {
	tw.elapsed, tw.progress, tw.start = 0, 0, 0
	tw.state = Pending
}

// Pause waits without applying anything
type Pause struct {
	Duration float64

	elapsed float64
	state   State
}

func NewPause(duration float64) *Pause {
	return &Pause{Duration: duration}
}

func (p *Pause) Advance(dt float64, _ Target) State {
	if p.state == Finished {
		return Finished
	}
	p.state = Running
	p.elapsed += dt
	if p.elapsed >= p.Duration {
		p.state = Finished
	}
	return p.state
}

func (p *Pause) State() State { return p.state }

func (p *Pause) Reset() {
	p.elapsed = 0
	p.state = Pending
}

// Pose triggers a named pose on its first tick and holds it for Duration
type Pose struct {
	Name     string
	Duration float64
	hold     Pause
}

func NewPose(name string, duration float64) *Pose {
	return &Pose{Name: name, Duration: duration, hold: Pause{Duration: duration}}
}

func (p *Pose) Advance(dt float64, t Target) State {
	if p.hold.state == Pending {
		t.PlayPose(p.Name, p.Duration)
	}
	return p.hold.Advance(dt, t)
}

func (p *Pose) State() State { return p.hold.state }

func (p *Pose) Reset() { p.hold.Reset() }

// Action invokes Fn once and finishes in the same tick
type Action struct {
	Fn    func()
	state State
}

func NewAction(fn func()) *Action {
	return &Action{Fn: fn}
}

func (a *Action) Advance(float64, Target) State {
	if a.state != Finished {
		if a.Fn != nil {
			a.Fn()
		}
		a.state = Finished
	}
	return a.state
}

func (a *Action) State() State { return a.state }

func (a *Action) Reset() { a.state = Pending }
