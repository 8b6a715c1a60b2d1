package level

var neighbors = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Reachable flood-fills from start across every non-wall cell of the grid.
// The grid is indexed [y][x]; neighbors outside it are never visited.
func Reachable(tiles [][]Tile, start Coordinates) map[Coordinates]bool {
	seen := make(map[Coordinates]bool)
	if !inGrid(tiles, start) || tiles[start.Y][start.X].Kind == Wall {
		return seen
	}

	queue := []Coordinates{start}
	seen[start] = true
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		for _, d := range neighbors {
			n := c.Add(d[0], d[1])
			if seen[n] || !inGrid(tiles, n) || tiles[n.Y][n.X].Kind == Wall {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}

	return seen
}

// prune turns unreachable floor and target cells into void, dropping any
// object on them. It returns the number of cells changed.
func prune(tiles [][]Tile, start Coordinates) int {
	reach := Reachable(tiles, start)
	changed := 0
	for y, row := range tiles {
		for x, t := range row {
			if !t.Kind.Walkable() || reach[t.Coordinates] {
				continue
			}
			tiles[y][x].Kind = Void
			tiles[y][x].Object = None
			changed++
		}
	}
	return changed
}

func inGrid(tiles [][]Tile, c Coordinates) bool {
	return c.Y >= 0 && c.Y < len(tiles) && c.X >= 0 && c.X < len(tiles[c.Y])
}
