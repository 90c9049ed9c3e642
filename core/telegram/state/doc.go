// Package state stores per-user conversation sessions (memory or Redis) and
// dispatches free text to the handler bound to the user's current state.
package state
