package anim

// Sequential runs its children one after another
type Sequential struct {
	Children []Node

	current int
	state   State
}

func NewSequential(children ...Node) *Sequential {
	s := &Sequential{Children: children}
	if len(children) == 0 {
		s.state = Finished
	}
	return s
}

// Advance gives the whole dt to the current child. When that child finishes
// the next one starts on the following tick.
func (s *Sequential) Advance(dt float64, t Target) State {
	if s.state == Finished {
		return Finished
	}
	s.state = Running

	if s.Children[s.current].Advance(dt, t) == Finished {
		s.current++
		if s.current == len(s.Children) {
			s.state = Finished
		}
	}
	return s.state
}

func (s *Sequential) State() State { return s.state }

// Current returns the index of the child that runs next
func (s *Sequential) Current() int { return s.current }

func (s *Sequential) Reset() {
	for _, c := range s.Children {
		c.Reset()
	}
	s.current = 0
	s.state = Pending
	if len(s.Children) == 0 {
		s.state = Finished
	}
}

// Parallel runs all children on the same clock
type Parallel struct {
	Children []Node
	state    State
}

func NewParallel(children ...Node) *Parallel {
	p := &Parallel{Children: children}
	if len(children) == 0 {
		p.state = Finished
	}
	return p
}

func (p *Parallel) Advance(dt float64, t Target) State {
	if p.state == Finished {
		return Finished
	}
	p.state = Running

	done := true
	for _, c := range p.Children {
		if c.State() == Finished {
			continue
		}
		if c.Advance(dt, t) != Finished {
			done = false
		}
	}
	if done {
		p.state = Finished
	}
	return p.state
}

func (p *Parallel) State() State { return p.state }

func (p *Parallel) Reset() {
	for _, c := range p.Children {
		c.Reset()
	}
	p.state = Pending
	if len(p.Children) == 0 {
		p.state = Finished
	}
}

// Loop restarts its child forever
type Loop struct {
	Child Node
	state State
}

func NewLoop(child Node) *Loop {
	return &Loop{Child: child}
}

func (l *Loop) Advance(dt float64, t Target) State {
	l.state = Running
	if l.Child == nil {
		return l.state
	}
	if l.Child.Advance(dt, t) == Finished {
		l.Child.Reset()
	}
	return l.state
}

func (l *Loop) State() State { return l.state }

func (l *Loop) Reset() {
	if l.Child != nil {
		l.Child.Reset()
	}
	l.state = Pending
}
