// Package session provides session management for the box-pushing game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Level switching within a session's pack
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns one engine playing one level of a pack; deleting or
// expiring a session closes the engine and releases its scene handles.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference, generated with
// cryptographic randomness. Caller-supplied IDs are accepted when they are
// short and limited to letters, digits, '-' and '_'. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(session.WithProfile(engine.DefaultProfile()))
//
//	sess, err := manager.Create("", "classic", pack, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.SetLevel(sess.ID, 1)
package session
