// Package level parses textual box-pushing level packs into validated grids.
//
// A pack is plain text. Lines starting with ';' carry names and free-form
// descriptions, blank lines separate levels, and every other line is a grid
// row built from these glyphs:
//
//	#  wall
//	   floor (void when it comes before the first wall of its row)
//	.  target
//	@  player
//	+  player on a target
//	$  box
//	*  box on a target
//
// Every parsed level is flood-filled from the player and any floor or target
// the player can never reach is turned into void, so callers can treat void
// as "outside the puzzle".
//
// Usage:
//
//	pack, err := level.ParsePack(file)
//	if err != nil {
//		return err
//	}
//	first, _ := pack.Level(0)
//	fmt.Println(first.Name)
//	fmt.Print(level.Format(first))
package level
