// Package state keeps per-user conversation state in memory.
// It knows nothing about the bot's domain: states and payloads are opaque
// strings owned by the caller.
package state
