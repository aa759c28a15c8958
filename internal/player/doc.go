// Package player wraps OS audio playback behind a Player interface.
// The exec-backed implementation tries aplay, paplay, ffplay and afplay
// and bounds every playback with the configured ring duration.
package player
