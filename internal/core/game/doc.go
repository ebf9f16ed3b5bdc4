// Package game holds the guessing engine: answer matching, suggestion
// catalogs, scoring, the per-track round state machine, the session that
// strings rounds together and the reveal guard that pauses playback once the
// current window has been heard.
//
// The only way out of this package is the ports.Player injected into a
// RevealGuard. Sessions are not safe for concurrent use; callers serialize
// access per session.
package game
