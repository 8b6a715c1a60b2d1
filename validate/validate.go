// Package validate lints level pack files. For every pack it checks:
//   - every level block parses (rejected levels are errors)
//   - at least as many boxes as targets
//   - no box starts wedged in a corner away from a target
//   - the walkable area is enclosed by walls
//
// It also reports per-level counts and the area the player can reach.
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/boxpusher/game/level"
)

// LevelReport describes one playable level of a pack
type LevelReport struct {
	Index     int
	Name      string
	Stats     level.Stats
	Reachable int
	Errors    []string
	Warnings  []string
}

// Valid reports whether the level has no errors
func (r *LevelReport) Valid() bool {
	return len(r.Errors) == 0
}

// Result captures the outcome of validating a single file
type Result struct {
	File     string
	Pack     string
	Valid    bool
	Errors   []string
	Levels   []LevelReport
	Rejected int
}

// File loads and validates a single pack file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	return Text(result.File, string(data))
}

// Text validates pack text; name labels the result
func Text(name, text string) Result {
	result := Result{File: name, Valid: true}

	pack, err := level.ParsePackString(text)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Pack = pack.Name

	for _, rejected := range pack.Rejected {
		result.Valid = false
		result.Errors = append(result.Errors, rejected.Error())
	}
	result.Rejected = len(pack.Rejected)

	for i, lvl := range pack.Levels {
		report := Level(i, lvl)
		if !report.Valid() {
			result.Valid = false
		}
		result.Levels = append(result.Levels, report)
	}

	return result
}

// Level checks a single parsed level
func Level(index int, lvl *level.Level) LevelReport {
	tiles := lvl.Tiles()
	report := LevelReport{
		Index:     index,
		Name:      lvl.Name,
		Stats:     lvl.Stats(),
		Reachable: reachableArea(tiles, lvl.Player()),
	}
	s := report.Stats

	switch {
	case s.Targets == 0:
		report.Errors = append(report.Errors, "No targets")
	case s.Boxes < s.Targets:
		report.Errors = append(report.Errors, fmt.Sprintf("Only %d boxes for %d targets", s.Boxes, s.Targets))
	case s.Boxes > s.Targets:
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d boxes for %d targets", s.Boxes, s.Targets))
	}
	if s.Targets > 0 && s.BoxesOnTargets == s.Targets {
		report.Warnings = append(report.Warnings, "Already solved at start")
	}

	for _, c := range cornerBoxes(tiles) {
		report.Errors = append(report.Errors, fmt.Sprintf("Box stuck in a corner at %v", c))
	}

	if open := openEdges(tiles); len(open) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Not enclosed by walls: %d walkable edge cells, first at %v", len(open), open[0]))
	}

	return report
}

// reachableArea counts the floor and target cells the player can walk to
func reachableArea(tiles [][]level.Tile, start level.Coordinates) int {
	n := 0
	for c := range level.Reachable(tiles, start) {
		if tiles[c.Y][c.X].Kind.Walkable() {
			n++
		}
	}
	return n
}

// cornerBoxes finds boxes off target with a blocked side on both axes. Such
// a box can never move again.
func cornerBoxes(tiles [][]level.Tile) []level.Coordinates {
	blocked := func(c level.Coordinates) bool {
		if c.Y < 0 || c.Y >= len(tiles) || c.X < 0 || c.X >= len(tiles[c.Y]) {
			return true
		}
		return !tiles[c.Y][c.X].Kind.Walkable()
	}

	var stuck []level.Coordinates
	for _, row := range tiles {
		for _, t := range row {
			if t.Object != level.Box || t.Kind == level.Target {
				continue
			}
			c := t.Coordinates
			vertical := blocked(c.Add(0, -1)) || blocked(c.Add(0, 1))
			horizontal := blocked(c.Add(-1, 0)) || blocked(c.Add(1, 0))
			if vertical && horizontal {
				stuck = append(stuck, c)
			}
		}
	}
	return stuck
}

// openEdges lists walkable cells on the grid border
func openEdges(tiles [][]level.Tile) []level.Coordinates {
	var open []level.Coordinates
	for y, row := range tiles {
		for x, t := range row {
			edge := y == 0 || y == len(tiles)-1 || x == 0 || x == len(row)-1
			if edge && t.Kind.Walkable() {
				open = append(open, t.Coordinates)
			}
		}
	}
	return open
}

// Files expands directories into their pack files and validates each
func Files(paths []string) ([]Result, error) {
	var results []Result
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			results = append(results, File(p))
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !isPackFile(e.Name()) {
				continue
			}
			results = append(results, File(filepath.Join(p, e.Name())))
		}
	}
	return results, nil
}

func isPackFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".sok", ".xsb":
		return true
	}
	return false
}

// Report prints a concise, human-readable report. It returns true when
// every result is valid.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
		}
		if result.Pack != "" {
			fmt.Fprintf(w, "  ✓ Pack: %s (%d levels, %d rejected)\n", result.Pack, len(result.Levels), result.Rejected)
		}
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}

		for _, lr := range result.Levels {
			s := lr.Stats
			fmt.Fprintf(w, "  %d. %s: %dx%d, boxes %d, targets %d, reachable %d\n",
				lr.Index+1, lr.Name, s.Width, s.Height, s.Boxes, s.Targets, lr.Reachable)
			for _, err := range lr.Errors {
				fmt.Fprintln(w, "     ❌ "+err)
			}
			for _, warn := range lr.Warnings {
				fmt.Fprintln(w, "     ⚠️  "+warn)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All packs are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some packs have errors")
	}
	return allValid
}
