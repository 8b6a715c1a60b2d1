package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/boxpusher/game/anim"
	"github.com/wricardo/boxpusher/game/level"
)

// Direction is one of the four grid moves
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

const (
	// MaxBulkMoves caps a single bulk move request
	MaxBulkMoves = 50
	// WebSocketBufferSize is the per-client outbound queue length
	WebSocketBufferSize = 256
)

var ErrInvalidDirection = errors.New("invalid direction")

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Delta returns the grid offset of one step
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Angle returns the facing angle in degrees, clockwise from Up
func (d Direction) Angle() float64 {
	switch d {
	case Right:
		return 90
	case Down:
		return 180
	case Left:
		return 270
	}
	return 0
}

// ParseDirection accepts full names and single letters, case-insensitive
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Object is a movable entity on a tile
type Object struct {
	Kind   level.ObjectKind `json:"kind"`
	Facing Direction        `json:"facing"`
	Handle Handle           `json:"handle"`

	// Animation is the active tree, nil when at rest
	Animation anim.Node `json:"-"`
}

// Tile is a grid cell of a puzzle in play
type Tile struct {
	Kind        level.TileKind    `json:"kind"`
	Object      Object            `json:"object"`
	Coordinates level.Coordinates `json:"coordinates"`
	Handle      Handle            `json:"handle"`
}

// MoveResult classifies a move attempt
type MoveResult int

const (
	Blocked MoveResult = iota
	Moved
	Pushed
)

func (r MoveResult) String() string {
	switch r {
	case Moved:
		return "moved"
	case Pushed:
		return "pushed"
	}
	return "blocked"
}

func (r MoveResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *MoveResult) UnmarshalText(b []byte) error {
	switch string(b) {
	case "blocked":
		*r = Blocked
	case "moved":
		*r = Moved
	case "pushed":
		*r = Pushed
	default:
		return fmt.Errorf("unknown move result %q", b)
	}
	return nil
}

// BlockReason explains a Blocked outcome
type BlockReason string

const (
	ReasonWall        BlockReason = "wall"
	ReasonVoid        BlockReason = "void"
	ReasonOutOfBounds BlockReason = "out_of_bounds"
	ReasonBoxBlocked  BlockReason = "box_blocked"
	ReasonLocked      BlockReason = "locked"
)

// Step is the movement of one entity
type Step struct {
	From level.Coordinates `json:"from"`
	To   level.Coordinates `json:"to"`
}

// MoveOutcome describes what a move did
type MoveOutcome struct {
	Result    MoveResult  `json:"result"`
	Direction Direction   `json:"direction"`
	Player    Step        `json:"player"`
	Box       *Step       `json:"box,omitempty"`
	Reason    BlockReason `json:"reason,omitempty"`
}

// Blocked reports whether the move was rejected
func (o MoveOutcome) Blocked() bool {
	return o.Result == Blocked
}

// Message renders the outcome for humans and agents
func (o MoveOutcome) Message() string {
	switch o.Result {
	case Moved:
		return fmt.Sprintf("Moved %s to %v", o.Direction, o.Player.To)
	case Pushed:
		return fmt.Sprintf("Pushed box %s from %v to %v", o.Direction, o.Box.From, o.Box.To)
	}
	switch o.Reason {
	case ReasonLocked:
		return "Still animating the previous move"
	case ReasonBoxBlocked:
		return fmt.Sprintf("Box can't be pushed %s", o.Direction)
	case ReasonOutOfBounds, ReasonVoid:
		return fmt.Sprintf("Can't move %s: outside the level", o.Direction)
	}
	return fmt.Sprintf("Can't move %s: %s", o.Direction, o.Reason)
}

// MoveHistoryEntry records one accepted or rejected move
type MoveHistoryEntry struct {
	Direction  Direction         `json:"direction"`
	Result     MoveResult        `json:"result"`
	From       level.Coordinates `json:"from"`
	To         level.Coordinates `json:"to"`
	Timestamp  int64             `json:"timestamp"`
	MoveNumber int               `json:"move_number"`
}

// SurroundingCell is a neighbor of the player
type SurroundingCell struct {
	X      int              `json:"x"`
	Y      int              `json:"y"`
	Kind   level.TileKind   `json:"kind"`
	Object level.ObjectKind `json:"object"`
}
