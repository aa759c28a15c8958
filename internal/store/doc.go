// Package store holds the owned, in-memory alarm list behind a lock and
// writes every mutation through the repository. The scheduler reads
// point-in-time snapshots; HTTP handlers mutate through the same instance.
package store
