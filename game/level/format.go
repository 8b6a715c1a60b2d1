package level

import "strings"

// Glyph returns the text glyph for a tile
func Glyph(t Tile) byte {
	switch t.Kind {
	case Wall:
		return GlyphWall
	case Target:
		switch t.Object {
		case Player:
			return GlyphPlayerOnTarget
		case Box:
			return GlyphBoxOnTarget
		}
		return GlyphTarget
	case Floor:
		switch t.Object {
		case Player:
			return GlyphPlayer
		case Box:
			return GlyphBox
		}
	}
	return GlyphFloor
}

// FormatRows renders a grid as glyph rows. Trailing blanks are trimmed and
// a row with nothing left becomes a single blank so it never reads back as
// a level separator.
func FormatRows(tiles [][]Tile) []string {
	rows := make([]string, len(tiles))
	for y, row := range tiles {
		buf := make([]byte, len(row))
		for x, t := range row {
			buf[x] = Glyph(t)
		}
		s := strings.TrimRight(string(buf), " ")
		if s == "" {
			s = " "
		}
		rows[y] = s
	}
	return rows
}

// Format renders the level grid in the pack text format, without names
func Format(l *Level) string {
	return strings.Join(FormatRows(l.tiles), "\n")
}

// FormatPack renders a pack, including names and descriptions, so that
// ParsePackString reads it back to the same levels
func FormatPack(p *Pack) string {
	var b strings.Builder
	writeComments(&b, p.Name, p.Description)
	for _, l := range p.Levels {
		b.WriteString("\n")
		writeComments(&b, l.Name, l.Description)
		b.WriteString(Format(l))
		b.WriteString("\n")
	}
	return b.String()
}

func writeComments(b *strings.Builder, name, desc string) {
	b.WriteString("; ")
	b.WriteString(name)
	b.WriteString("\n")
	if desc == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		b.WriteString("; ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}
