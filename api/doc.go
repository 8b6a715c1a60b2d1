// Package api provides the HTTP REST API of the puzzle server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"pack_id":"classic","level_index":0})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - One move ({"direction":"up"})
//   - POST /api/sessions/{id}/bulk-move - Up to 50 moves, each settled ({"moves":["up","left"]})
//   - POST /api/sessions/{id}/restart - Restart the level
//   - POST /api/sessions/{id}/next - Advance to the next level once solved
//   - GET /api/sessions/{id}/history - Move history (?page=&limit=&order=)
//
// Level Packs:
//   - GET /api/packs - List packs
//   - POST /api/packs - Validate and store a pack ({"name":"mine","text":"..."})
//   - GET /api/packs/{name} - Levels of a pack
//   - GET /api/packs/{name}/levels/{index} - Layout of one level
//
// WebSocket:
//   - GET /ws?session={id} - Live frames, state updates and move commands
//
// Errors are returned as {"error":"..."} with 404 for unknown sessions or
// packs, 400 for bad input and 409 when level progression is not allowed.
package api
