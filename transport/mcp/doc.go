// Package mcp provides the Model Context Protocol interface to the puzzle server.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON response is rendered as text for the agent.
//
// MCP Tools:
//   - create_session: Start a session on a level pack
//   - list_sessions / get_session: Inspect active sessions
//   - game_state: Current board with glyph rows and possible moves
//   - move: Single move, waits for the animation to finish
//   - bulk_move: Multiple moves in sequence
//   - restart_level / next_level: Level control
//   - move_history: Paginated move history
//   - list_packs: Level packs on the server
//   - game_instructions: Rules and board legend
//   - describe_cell: Explain one cell of the board
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the /mcp endpoint passes JSON-RPC bodies to GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
