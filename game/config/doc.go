// Package config loads level packs and process settings.
//
// The config package handles:
//   - Loading level packs from text files in the packs directory
//   - Caching parsed packs and invalidating them when files change
//   - Choosing the default pack, with a builtin fallback
//   - Reading the animation profile (animation.yaml)
//   - Process settings from defaults, a config file and the environment
//
// Pack Format:
//
// Packs are plain text files (.txt, .sok or .xsb). Levels are separated by
// blank lines and drawn with the usual glyphs:
//
//	# wall   @ player   $ box   . target   * box on target   + player on target
//
// A block made only of ';' comment lines names the pack; a comment line at
// the top of a level block names the level.
//
// Usage:
//
//	manager, err := config.NewManager("packs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pack, err := manager.LoadPack("classic")
//	packs, err := manager.ListPacks()
//
//	changes, err := manager.Watch(ctx)
//	for id := range changes {
//		log.Printf("pack %s changed", id)
//	}
package config
