// Package watchdog provides the scheduler heartbeat, error counters and a
// monitor loop that fails the process run group when the heartbeat goes
// stale, so the supervisor restarts the service instead of it limping on.
package watchdog
