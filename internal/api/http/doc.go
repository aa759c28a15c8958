// Package http exposes the alarm service API: alarm CRUD, the sound
// library, test playback, status/health reporting and the thin system
// configuration proxy. Handlers receive the owned store and collaborators
// explicitly; there is no package-level state.
package http
