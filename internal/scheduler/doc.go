// Package scheduler implements the polling loop that rings due alarms.
//
// Each tick takes a snapshot of the alarm list, matches entries against the
// current weekday and wall-clock minute, and dispatches playback on a
// bounded worker pool. Dedup is keyed on a monotonic minute index, so tick
// intervals shorter than a minute never double-fire an alarm.
package scheduler
