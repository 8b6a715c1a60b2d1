package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
)

var (
	ErrNoSolution  = errors.New("level has no solution")
	ErrSearchLimit = errors.New("search limit reached")
)

// Solver finds a shortest move sequence by breadth-first search over player
// and box positions. Pushes onto dead cells are pruned.
type Solver struct {
	MaxStates int
}

// NewSolver creates a solver that gives up after maxStates distinct states
func NewSolver(maxStates int) *Solver {
	return &Solver{MaxStates: maxStates}
}

type searchNode struct {
	state *engine.PuzzleState
	path  []engine.Direction
}

// Solve returns the moves that solve l. An already solved level yields an
// empty sequence.
func (s *Solver) Solve(l *level.Level) ([]engine.Direction, error) {
	start := engine.NewPuzzleState(l)
	if start.IsSolved() {
		return nil, nil
	}

	dead := deadCells(l)
	seen := map[string]bool{stateKey(start): true}
	queue := []searchNode{{state: start}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, d := range engine.Directions {
			if !n.state.CanMove(d) {
				continue
			}
			next := n.state.Clone()
			out := next.TryMove(d)
			if out.Box != nil && dead[out.Box.To] {
				continue
			}

			key := stateKey(next)
			if seen[key] {
				continue
			}
			seen[key] = true

			path := make([]engine.Direction, len(n.path)+1)
			copy(path, n.path)
			path[len(n.path)] = d
			if next.IsSolved() {
				return path, nil
			}
			if s.MaxStates > 0 && len(seen) >= s.MaxStates {
				return nil, ErrSearchLimit
			}
			queue = append(queue, searchNode{state: next, path: path})
		}
	}

	return nil, ErrNoSolution
}

// stateKey identifies a position by the player and every box
func stateKey(s *engine.PuzzleState) string {
	var b strings.Builder
	p := s.PlayerPosition()
	b.WriteString(strconv.Itoa(p.X))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(p.Y))
	for _, c := range s.Boxes() {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(c.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Y))
	}
	return b.String()
}

// deadCells marks floor corners. A box pushed into one can never leave.
func deadCells(l *level.Level) map[level.Coordinates]bool {
	walkable := func(c level.Coordinates) bool {
		t, ok := l.At(c)
		return ok && t.Kind.Walkable()
	}

	dead := make(map[level.Coordinates]bool)
	for _, row := range l.Tiles() {
		for _, t := range row {
			if t.Kind != level.Floor {
				continue
			}
			c := t.Coordinates
			vertical := !walkable(c.Add(0, -1)) || !walkable(c.Add(0, 1))
			horizontal := !walkable(c.Add(-1, 0)) || !walkable(c.Add(1, 0))
			if vertical && horizontal {
				dead[c] = true
			}
		}
	}
	return dead
}

// directionNames renders moves for the bulk move endpoint
func directionNames(moves []engine.Direction) []string {
	names := make([]string, len(moves))
	for i, d := range moves {
		names[i] = d.String()
	}
	return names
}
