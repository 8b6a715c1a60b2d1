package level

import "fmt"

// Pack is an ordered collection of levels. Order is play order.
type Pack struct {
	Name        string
	Description string
	Levels      []*Level

	// Rejected holds the errors of levels skipped while parsing
	Rejected []error
}

// Len returns the number of playable levels
func (p *Pack) Len() int {
	return len(p.Levels)
}

// Level returns the level at index i
func (p *Pack) Level(i int) (*Level, error) {
	if i < 0 || i >= len(p.Levels) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrLevelIndex, i, len(p.Levels))
	}
	return p.Levels[i], nil
}
