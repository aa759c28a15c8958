// Package server assembles and runs the bell-server process: alarm store,
// tick scheduler, heartbeat watchdog and the HTTP API, all torn down
// together when any one of them fails.
package server
