package engine

import "github.com/wricardo/boxpusher/game/level"

// blockedAt reports why nothing may enter c, or "" when it may
func (s *PuzzleState) blockedAt(c level.Coordinates) BlockReason {
	t := s.tile(c)
	switch {
	case t == nil:
		return ReasonOutOfBounds
	case t.Kind == level.Wall:
		return ReasonWall
	case t.Kind == level.Void:
		return ReasonVoid
	}
	return ""
}

// Resolve computes the outcome of moving d without changing anything
func (s *PuzzleState) Resolve(d Direction) MoveOutcome {
	from := s.player
	out := MoveOutcome{
		Result:    Blocked,
		Direction: d,
		Player:    Step{From: from, To: from},
	}

	dx, dy := d.Delta()
	if dx == 0 && dy == 0 {
		out.Reason = ReasonOutOfBounds
		return out
	}
	dest := from.Add(dx, dy)
	if reason := s.blockedAt(dest); reason != "" {
		out.Reason = reason
		return out
	}

	switch s.tile(dest).Object.Kind {
	case level.None:
		out.Result = Moved
	case level.Box:
		pushDest := dest.Add(dx, dy)
		if s.blockedAt(pushDest) != "" || s.tile(pushDest).Object.Kind != level.None {
			out.Reason = ReasonBoxBlocked
			return out
		}
		out.Result = Pushed
		out.Box = &Step{From: dest, To: pushDest}
	default:
		out.Reason = ReasonBoxBlocked
		return out
	}

	out.Player.To = dest
	return out
}

// TryMove resolves d and applies it. Blocked moves change nothing.
func (s *PuzzleState) TryMove(d Direction) MoveOutcome {
	out := s.Resolve(d)
	if out.Blocked() {
		return out
	}

	if out.Box != nil {
		from, to := s.tile(out.Box.From), s.tile(out.Box.To)
		to.Object = from.Object
		from.Object = Object{}
	}

	from, to := s.tile(out.Player.From), s.tile(out.Player.To)
	to.Object = from.Object
	to.Object.Facing = d
	from.Object = Object{}
	s.player = out.Player.To

	return out
}

// CanMove reports whether d would not be blocked
func (s *PuzzleState) CanMove(d Direction) bool {
	return !s.Resolve(d).Blocked()
}
