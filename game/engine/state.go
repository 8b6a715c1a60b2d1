package engine

import "github.com/wricardo/boxpusher/game/level"

// PuzzleState is the mutable grid of a level in play
type PuzzleState struct {
	name   string
	width  int
	height int
	tiles  [][]Tile
	player level.Coordinates
}

// NewPuzzleState copies the level into a fresh state. The player starts
// facing down.
func NewPuzzleState(l *level.Level) *PuzzleState {
	src := l.Tiles()
	tiles := make([][]Tile, len(src))
	for y, row := range src {
		tiles[y] = make([]Tile, len(row))
		for x, t := range row {
			tiles[y][x] = Tile{
				Kind:        t.Kind,
				Coordinates: t.Coordinates,
				Object:      Object{Kind: t.Object},
			}
			if t.Object == level.Player {
				tiles[y][x].Object.Facing = Down
			}
		}
	}

	return &PuzzleState{
		name:   l.Name,
		width:  l.Width,
		height: l.Height,
		tiles:  tiles,
		player: l.Player(),
	}
}

func (s *PuzzleState) Name() string { return s.name }
func (s *PuzzleState) Width() int   { return s.width }
func (s *PuzzleState) Height() int  { return s.height }

// InBounds reports whether c lies inside the grid
func (s *PuzzleState) InBounds(c level.Coordinates) bool {
	return c.Y >= 0 && c.Y < len(s.tiles) && c.X >= 0 && c.X < len(s.tiles[c.Y])
}

// Tile returns a copy of the tile at c. The second result is false outside
// the grid.
func (s *PuzzleState) Tile(c level.Coordinates) (Tile, bool) {
	if !s.InBounds(c) {
		return Tile{}, false
	}
	return s.tiles[c.Y][c.X], true
}

func (s *PuzzleState) tile(c level.Coordinates) *Tile {
	if !s.InBounds(c) {
		return nil
	}
	return &s.tiles[c.Y][c.X]
}

// PlayerPosition returns the player's cell
func (s *PuzzleState) PlayerPosition() level.Coordinates {
	return s.player
}

// Facing returns the direction the player last moved
func (s *PuzzleState) Facing() Direction {
	return s.tiles[s.player.Y][s.player.X].Object.Facing
}

// IsSolved reports whether every target holds a box
func (s *PuzzleState) IsSolved() bool {
	for _, row := range s.tiles {
		for _, t := range row {
			if t.Kind == level.Target && t.Object.Kind != level.Box {
				return false
			}
		}
	}
	return true
}

// Boxes lists box positions in row-major order
func (s *PuzzleState) Boxes() []level.Coordinates {
	return s.positions(func(t Tile) bool { return t.Object.Kind == level.Box })
}

// Targets lists target positions in row-major order
func (s *PuzzleState) Targets() []level.Coordinates {
	return s.positions(func(t Tile) bool { return t.Kind == level.Target })
}

func (s *PuzzleState) positions(match func(Tile) bool) []level.Coordinates {
	var out []level.Coordinates
	for _, row := range s.tiles {
		for _, t := range row {
			if match(t) {
				out = append(out, t.Coordinates)
			}
		}
	}
	return out
}

// Rows renders the grid in level text glyphs
func (s *PuzzleState) Rows() []string {
	return level.FormatRows(s.levelTiles())
}

func (s *PuzzleState) levelTiles() [][]level.Tile {
	out := make([][]level.Tile, len(s.tiles))
	for y, row := range s.tiles {
		out[y] = make([]level.Tile, len(row))
		for x, t := range row {
			out[y][x] = level.Tile{Kind: t.Kind, Object: t.Object.Kind, Coordinates: t.Coordinates}
		}
	}
	return out
}

// Clone returns an independent copy without animations
func (s *PuzzleState) Clone() *PuzzleState {
	c := *s
	c.tiles = make([][]Tile, len(s.tiles))
	for y, row := range s.tiles {
		c.tiles[y] = append([]Tile(nil), row...)
		for x := range c.tiles[y] {
			c.tiles[y][x].Object.Animation = nil
		}
	}
	return &c
}

// LocalView returns the 8 cells around the player, clockwise from north.
// Cells outside the grid read as void.
func (s *PuzzleState) LocalView() []SurroundingCell {
	offsets := []struct{ dx, dy int }{
		{0, -1},  // North
		{1, -1},  // North-East
		{1, 0},   // East
		{1, 1},   // South-East
		{0, 1},   // South
		{-1, 1},  // South-West
		{-1, 0},  // West
		{-1, -1}, // North-West
	}

	view := make([]SurroundingCell, len(offsets))
	for i, o := range offsets {
		c := s.player.Add(o.dx, o.dy)
		cell := SurroundingCell{X: c.X, Y: c.Y, Kind: level.Void}
		if t, ok := s.Tile(c); ok {
			cell.Kind = t.Kind
			cell.Object = t.Object.Kind
		}
		view[i] = cell
	}
	return view
}
