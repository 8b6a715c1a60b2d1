// Command analyze prints quick, human-readable heuristics about level packs.
// For each level it summarizes dimensions, box and target counts, the area
// the player can reach, the opening moves, and dead cells: corners away from
// any target where a pushed box can never move again.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/boxpusher/game/engine"
	"github.com/wricardo/boxpusher/game/level"
	"github.com/wricardo/boxpusher/logger"
)

// Analysis holds the heuristics computed for one level
type Analysis struct {
	Name      string
	Stats     level.Stats
	Walls     int
	Reachable int
	Opening   []engine.Direction
	DeadCells []level.Coordinates
	Stuck     []level.Coordinates

	// NearestTarget is the closest empty target, when one exists
	NearestTarget   *level.Coordinates
	NearestDistance int
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Print heuristics about level packs",
		ArgsUsage: "[pack files...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "packs-dir",
				Value:   "packs",
				Usage:   "Directory scanned when no files are given",
				Sources: cli.EnvVars("BOXPUSHER_PACKS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log skipped levels while parsing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("debug") {
				logger.Init("debug", "text")
			} else {
				logger.Silence()
			}

			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				if files, err = packFiles(cmd.String("packs-dir")); err != nil {
					return err
				}
			}
			for _, f := range files {
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(f))
				analyzeFile(os.Stdout, f)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func packFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range []string{"*.txt", "*.sok", "*.xsb"} {
		matches, err := filepath.Glob(filepath.Join(dir, ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pack files in %s", dir)
	}
	return files, nil
}

func analyzeFile(w io.Writer, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(w, "Error reading file: %v\n", err)
		return
	}
	defer f.Close()

	pack, err := level.ParsePack(f)
	if err != nil {
		fmt.Fprintf(w, "Error parsing pack: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Pack: %s\n", pack.Name)
	fmt.Fprintf(w, "Levels: %d (%d rejected)\n", pack.Len(), len(pack.Rejected))
	for i, l := range pack.Levels {
		fmt.Fprintf(w, "\n-- %d. %s --\n", i+1, l.Name)
		printAnalysis(w, analyzeLevel(l))
	}
}

func analyzeLevel(l *level.Level) Analysis {
	tiles := l.Tiles()
	a := Analysis{Name: l.Name, Stats: l.Stats()}

	for c := range level.Reachable(tiles, l.Player()) {
		if tiles[c.Y][c.X].Kind.Walkable() {
			a.Reachable++
		}
	}

	state := engine.NewPuzzleState(l)
	for _, d := range engine.Directions {
		if state.CanMove(d) {
			a.Opening = append(a.Opening, d)
		}
	}
	a.Walls = engine.CountTiles(state, level.Wall)
	if c, d, ok := engine.NearestFreeTarget(state); ok {
		a.NearestTarget = &c
		a.NearestDistance = d
	}

	for _, row := range tiles {
		for _, t := range row {
			if t.Kind != level.Floor || !isCorner(tiles, t.Coordinates) {
				continue
			}
			a.DeadCells = append(a.DeadCells, t.Coordinates)
			if t.Object == level.Box {
				a.Stuck = append(a.Stuck, t.Coordinates)
			}
		}
	}

	return a
}

// isCorner reports whether c is blocked on at least one side of both axes
func isCorner(tiles [][]level.Tile, c level.Coordinates) bool {
	blocked := func(n level.Coordinates) bool {
		if n.Y < 0 || n.Y >= len(tiles) || n.X < 0 || n.X >= len(tiles[n.Y]) {
			return true
		}
		return !tiles[n.Y][n.X].Kind.Walkable()
	}
	vertical := blocked(c.Add(0, -1)) || blocked(c.Add(0, 1))
	horizontal := blocked(c.Add(-1, 0)) || blocked(c.Add(1, 0))
	return vertical && horizontal
}

func printAnalysis(w io.Writer, a Analysis) {
	s := a.Stats
	fmt.Fprintf(w, "Size: %d x %d (%d walls)\n", s.Width, s.Height, a.Walls)
	fmt.Fprintf(w, "Boxes: %d, Targets: %d, Already placed: %d\n", s.Boxes, s.Targets, s.BoxesOnTargets)
	fmt.Fprintf(w, "Reachable area: %d of %d walkable cells\n", a.Reachable, s.Floors+s.Targets)

	names := make([]string, len(a.Opening))
	for i, d := range a.Opening {
		names[i] = d.String()
	}
	if len(names) == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: the player can't move at all\n")
	} else {
		fmt.Fprintf(w, "Opening moves: %s\n", strings.Join(names, ","))
	}

	if a.NearestTarget != nil {
		fmt.Fprintf(w, "Nearest empty target: %v, %d steps away\n", *a.NearestTarget, a.NearestDistance)
	}

	if s.Boxes < s.Targets {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d boxes can't fill %d targets\n", s.Boxes, s.Targets)
	}

	if len(a.DeadCells) > 0 {
		fmt.Fprintf(w, "Dead cells: %d\n", len(a.DeadCells))
		for i, c := range a.DeadCells {
			if i < 5 {
				fmt.Fprintf(w, "   Dead: %v\n", c)
			}
		}
		if len(a.DeadCells) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.DeadCells)-5)
		}
	} else {
		fmt.Fprintf(w, "✅ No dead corners\n")
	}

	if len(a.Stuck) > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d boxes start on dead cells\n", len(a.Stuck))
		for _, c := range a.Stuck {
			fmt.Fprintf(w, "   Stuck box: %v\n", c)
		}
	}
}
