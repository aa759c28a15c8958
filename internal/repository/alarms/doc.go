// Package alarms implements persistence for the alarm list.
//
// The FileRepository stores the list as a JSON document on disk using the
// write-to-temp-then-rename pattern, so the persisted file is never observed
// half-written, and exposes a Repository interface the store depends on.
package alarms
