package level

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/boxpusher/logger"
)

// ParseOption tunes pack parsing
type ParseOption func(*parseOptions)

type parseOptions struct {
	strict bool
}

// Strict makes ParsePack fail on the first bad level instead of skipping it
func Strict() ParseOption {
	return func(o *parseOptions) {
		o.strict = true
	}
}

// block is a run of non-blank lines
type block struct {
	line  int // 1-based line number of the first line
	lines []string
}

// ParsePack reads a whole level pack from r
func ParsePack(r io.Reader, opts ...ParseOption) (*Pack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read level pack: %w", err)
	}
	return ParsePackString(string(data), opts...)
}

// ParsePackString parses pack text. Bad levels are skipped and recorded in
// Pack.Rejected unless Strict is given.
func ParsePackString(text string, opts ...ParseOption) (*Pack, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.Component("level")
	blocks := splitBlocks(text)
	pack := &Pack{Name: UnnamedLevel}

	if len(blocks) > 0 && isCommentBlock(blocks[0]) {
		var desc []string
		for i, line := range blocks[0].lines {
			if i == 0 {
				pack.Name = commentText(line, UnnamedLevel)
				continue
			}
			desc = append(desc, commentText(line, ""))
		}
		pack.Description = strings.Join(desc, "\n")
		blocks = blocks[1:]
	}

	index := 0
	for _, b := range blocks {
		if isCommentBlock(b) {
			log.WithField("line", b.line).Debug("ignoring comment-only block")
			continue
		}

		lvl, err := parseBlock(b, index)
		index++
		if err != nil {
			if o.strict {
				return nil, err
			}
			log.WithFields(logrus.Fields{
				"pack":  pack.Name,
				"error": err,
			}).Warn("skipping level")
			pack.Rejected = append(pack.Rejected, err)
			continue
		}
		pack.Levels = append(pack.Levels, lvl)
	}

	if len(pack.Levels) == 0 {
		if len(pack.Rejected) > 0 {
			return nil, fmt.Errorf("%w: %d level(s) rejected, first: %v", ErrEmptyPack, len(pack.Rejected), pack.Rejected[0])
		}
		return nil, ErrEmptyPack
	}

	return pack, nil
}

// ParseLevel parses the lines of a single level block
func ParseLevel(lines []string) (*Level, error) {
	clean := make([]string, len(lines))
	for i, line := range lines {
		clean[i] = strings.TrimSuffix(line, "\r")
	}
	return parseBlock(block{line: 1, lines: clean}, 0)
}

func splitBlocks(text string) []block {
	var blocks []block
	var current *block

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			if current != nil {
				blocks = append(blocks, *current)
				current = nil
			}
			continue
		}
		if current == nil {
			current = &block{line: i + 1}
		}
		current.lines = append(current.lines, line)
	}
	if current != nil {
		blocks = append(blocks, *current)
	}

	return blocks
}

func isCommentBlock(b block) bool {
	for _, line := range b.lines {
		if line[0] != CommentMarker {
			return false
		}
	}
	return true
}

// commentText strips the marker and its separator
func commentText(line, fallback string) string {
	if len(line) < 3 {
		return fallback
	}
	return line[2:]
}

func parseBlock(b block, index int) (*Level, error) {
	lvl := &Level{Name: UnnamedLevel}
	named := false
	var desc []string

	for i, line := range b.lines {
		lineNo := b.line + i
		if line != "" && line[0] == CommentMarker {
			if !named {
				lvl.Name = commentText(line, UnnamedLevel)
				named = true
			} else {
				desc = append(desc, commentText(line, ""))
			}
			continue
		}

		row, col, err := parseRow(line, len(lvl.tiles))
		if err != nil {
			return nil, &LevelError{
				Index:  index,
				Line:   lineNo,
				Column: col,
				Reason: err.Error(),
				Err:    ErrMalformedLevelText,
			}
		}
		lvl.tiles = append(lvl.tiles, row)
	}
	lvl.Description = strings.Join(desc, "\n")

	if len(lvl.tiles) == 0 {
		return nil, &LevelError{Index: index, Line: b.line, Reason: "no grid rows", Err: ErrMalformedLevelText}
	}

	lvl.Height = len(lvl.tiles)
	for _, row := range lvl.tiles {
		if len(row) > lvl.Width {
			lvl.Width = len(row)
		}
	}
	for y, row := range lvl.tiles {
		for x := len(row); x < lvl.Width; x++ {
			row = append(row, Tile{Kind: Void, Coordinates: Coordinates{X: x, Y: y}})
		}
		lvl.tiles[y] = row
	}

	var players []Coordinates
	for _, row := range lvl.tiles {
		for _, t := range row {
			if t.Object == Player {
				players = append(players, t.Coordinates)
			}
		}
	}
	switch len(players) {
	case 0:
		return nil, &LevelError{Index: index, Line: b.line, Reason: "no player", Err: ErrInvalidLevel}
	case 1:
		lvl.player = players[0]
	default:
		return nil, &LevelError{
			Index:  index,
			Line:   b.line,
			Reason: fmt.Sprintf("%d players, want exactly one", len(players)),
			Err:    ErrInvalidLevel,
		}
	}

	prune(lvl.tiles, lvl.player)
	return lvl, nil
}

// parseRow decodes one grid line. Unknown bytes are skipped without taking
// a column; a line made only of unknown bytes is malformed, and the error
// carries the 1-based column of the first one.
func parseRow(line string, y int) ([]Tile, int, error) {
	row := make([]Tile, 0, len(line))
	seenWall := false
	firstUnknown := 0

	for i := 0; i < len(line); i++ {
		t := Tile{Coordinates: Coordinates{X: len(row), Y: y}}
		switch line[i] {
		case GlyphWall:
			t.Kind = Wall
			seenWall = true
		case GlyphFloor:
			if seenWall {
				t.Kind = Floor
			} else {
				t.Kind = Void
			}
		case GlyphTarget:
			t.Kind = Target
		case GlyphPlayer:
			t.Kind, t.Object = Floor, Player
		case GlyphPlayerOnTarget:
			t.Kind, t.Object = Target, Player
		case GlyphBox:
			t.Kind, t.Object = Floor, Box
		case GlyphBoxOnTarget:
			t.Kind, t.Object = Target, Box
		default:
			if firstUnknown == 0 {
				firstUnknown = i + 1
			}
			continue
		}
		row = append(row, t)
	}

	if len(row) == 0 && firstUnknown > 0 {
		return nil, firstUnknown, fmt.Errorf("no recognizable glyphs, first byte %q", line[firstUnknown-1])
	}
	return row, 0, nil
}
