package engine

import "github.com/wricardo/boxpusher/game/level"

// CountTiles counts cells of the given kind
func CountTiles(s *PuzzleState, kind level.TileKind) int {
	count := 0
	for _, row := range s.tiles {
		for _, t := range row {
			if t.Kind == kind {
				count++
			}
		}
	}
	return count
}

// BoxesOnTargets counts boxes resting on targets
func BoxesOnTargets(s *PuzzleState) int {
	count := 0
	for _, row := range s.tiles {
		for _, t := range row {
			if t.Kind == level.Target && t.Object.Kind == level.Box {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to level.Coordinates) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NearestFreeTarget finds the closest target without a box to the player
func NearestFreeTarget(s *PuzzleState) (level.Coordinates, int, bool) {
	best := -1
	var pos level.Coordinates
	for _, row := range s.tiles {
		for _, t := range row {
			if t.Kind != level.Target || t.Object.Kind == level.Box {
				continue
			}
			d := ManhattanDistance(s.player, t.Coordinates)
			if best == -1 || d < best {
				best = d
				pos = t.Coordinates
			}
		}
	}
	return pos, best, best != -1
}
