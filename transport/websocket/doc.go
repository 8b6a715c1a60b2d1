// Package websocket streams session updates to browser and agent clients.
//
// Architecture:
//
// A central Hub owns every connection. Each client has a read and a write
// goroutine; only the hub's Run loop queues outbound data, so broadcasts
// from the animation clock and from HTTP handlers never race.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"frame","data":[{"handle":3,"transform":{...}}]}
//	{"session_id":"ab12","event":"solved","data":{"level_name":"..."}}
//
// Incoming commands are handed to the CommandHandler installed with
// OnCommand:
//
//	{"action":"move","direction":"up"}
//	{"action":"bulk_move","moves":["up","left"]}
//	{"action":"restart"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.OnCommand(handler)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
//	})
package websocket
