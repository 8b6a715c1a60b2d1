// Package service provides the business logic layer of the puzzle server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing, bulk moves and move history
//   - Level progression through a pack
//   - The animation clock that advances every session
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PackManager loads, lists and stores level packs.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine, and every engine is
// advanced by a single Clock so animations progress even when nobody calls.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	packMgr := config.NewManager("packs")
//	gameService := service.NewGameService(sessionMgr, packMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.Move(ctx, info.ID, "up")
//
//	clock := service.NewClock(gameService, time.Second/60, hub)
//	go clock.Run(ctx)
package service
