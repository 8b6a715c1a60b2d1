package level

import "fmt"

// TileKind is the static terrain of a grid cell
type TileKind int

const (
	Void TileKind = iota
	Floor
	Wall
	Target
)

var tileKindNames = map[TileKind]string{
	Void:   "void",
	Floor:  "floor",
	Wall:   "wall",
	Target: "target",
}

func (k TileKind) String() string {
	if name, ok := tileKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TileKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON payloads
func (k TileKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TileKind) UnmarshalText(b []byte) error {
	for kind, name := range tileKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown tile kind %q", b)
}

// Walkable reports whether a player or box may ever occupy the kind
func (k TileKind) Walkable() bool {
	return k == Floor || k == Target
}

// ObjectKind is the movable entity occupying a cell, if any
type ObjectKind int

const (
	None ObjectKind = iota
	Player
	Box
)

var objectKindNames = map[ObjectKind]string{
	None:   "none",
	Player: "player",
	Box:    "box",
}

func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ObjectKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON payloads
func (k ObjectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ObjectKind) UnmarshalText(b []byte) error {
	for kind, name := range objectKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown object kind %q", b)
}

// Coordinates is a grid position. X grows to the right, Y grows downwards.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinates offset by dx, dy
func (c Coordinates) Add(dx, dy int) Coordinates {
	return Coordinates{X: c.X + dx, Y: c.Y + dy}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Tile is one cell of a parsed level
type Tile struct {
	Kind        TileKind    `json:"kind"`
	Object      ObjectKind  `json:"object"`
	Coordinates Coordinates `json:"coordinates"`
}

// Glyphs used by the level text format
const (
	GlyphWall           = '#'
	GlyphFloor          = ' '
	GlyphTarget         = '.'
	GlyphPlayer         = '@'
	GlyphPlayerOnTarget = '+'
	GlyphBox            = '$'
	GlyphBoxOnTarget    = '*'

	CommentMarker = ';'

	// UnnamedLevel names packs and levels without a usable name line
	UnnamedLevel = "<unnamed>"
)

// Level is an immutable, reachability-pruned grid with exactly one player
type Level struct {
	Name        string
	Description string
	Width       int
	Height      int

	tiles  [][]Tile
	player Coordinates
}

// Stats summarizes the contents of a level
type Stats struct {
	Width          int `json:"width"`
	Height         int `json:"height"`
	Walls          int `json:"walls"`
	Floors         int `json:"floors"`
	Targets        int `json:"targets"`
	Boxes          int `json:"boxes"`
	BoxesOnTargets int `json:"boxes_on_targets"`
	Void           int `json:"void"`
}

// InBounds reports whether c lies inside the grid
func (l *Level) InBounds(c Coordinates) bool {
	return c.Y >= 0 && c.Y < l.Height && c.X >= 0 && c.X < l.Width
}

// At returns the tile at c. The second result is false outside the grid.
func (l *Level) At(c Coordinates) (Tile, bool) {
	if !l.InBounds(c) {
		return Tile{}, false
	}
	return l.tiles[c.Y][c.X], true
}

// Player returns the starting position of the player
func (l *Level) Player() Coordinates {
	return l.player
}

// Tiles returns a deep copy of the grid indexed [y][x]
func (l *Level) Tiles() [][]Tile {
	out := make([][]Tile, len(l.tiles))
	for y, row := range l.tiles {
		out[y] = append([]Tile(nil), row...)
	}
	return out
}

// Stats counts terrain and objects
func (l *Level) Stats() Stats {
	s := Stats{Width: l.Width, Height: l.Height}
	for _, row := range l.tiles {
		for _, t := range row {
			switch t.Kind {
			case Wall:
				s.Walls++
			case Floor:
				s.Floors++
			case Target:
				s.Targets++
			default:
				s.Void++
			}
			if t.Object == Box {
				s.Boxes++
				if t.Kind == Target {
					s.BoxesOnTargets++
				}
			}
		}
	}
	return s
}

func (l *Level) String() string {
	return Format(l)
}
