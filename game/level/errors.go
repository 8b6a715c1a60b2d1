package level

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLevelText = errors.New("malformed level text")
	ErrInvalidLevel       = errors.New("invalid level")
	ErrEmptyPack          = errors.New("pack contains no playable levels")
	ErrLevelIndex         = errors.New("level index out of range")
)

// LevelError locates a parse failure. Err is ErrMalformedLevelText or
// ErrInvalidLevel.
type LevelError struct {
	Index  int // position of the level block in the pack, 0-based
	Line   int // 1-based source line, 0 when not tied to a line
	Column int // 1-based column, 0 when not tied to a column
	Reason string
	Err    error
}

func (e *LevelError) Error() string {
	loc := fmt.Sprintf("level %d", e.Index+1)
	if e.Line > 0 {
		loc += fmt.Sprintf(" (line %d", e.Line)
		if e.Column > 0 {
			loc += fmt.Sprintf(", column %d", e.Column)
		}
		loc += ")"
	}
	return fmt.Sprintf("%s: %v: %s", loc, e.Err, e.Reason)
}

func (e *LevelError) Unwrap() error {
	return e.Err
}
