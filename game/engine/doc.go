// Package engine provides the core game logic for the box-pushing puzzle.
//
// The engine package implements the game mechanics including:
//   - Grid-based movement with box pushing and collision detection
//   - Win detection once every target holds a box
//   - Move animations that lock input until they finish
//   - Animation timing profiles loaded from YAML
//
// Core Types:
//
// PuzzleState is the mutable grid of a level in play and resolves moves.
// GameEngine wraps a PuzzleState with the animation trees of every object
// and implements the Engine interface. Visuals are pushed to a Scene,
// which hands out opaque handles.
//
// Usage:
//
//	pack, err := level.ParsePackString(text)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(pack.Levels[0])
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := gameEngine.TryMove(engine.Right)
//	for gameEngine.InputLocked() {
//		gameEngine.Tick(1.0 / 60)
//	}
//	fmt.Println(outcome.Result, gameEngine.IsFinishedAndSolved())
//
// Game Rules:
//
// The player walks on floor and targets. Walking into a box pushes it one
// cell when the cell behind it is free floor or target. Boxes can't be
// pulled and two boxes can't be pushed at once. The level is solved when
// every target holds a box.
package engine
