// Package client provides a typed HTTP client for the bell server API,
// used by bellctl and the updater.
package client
