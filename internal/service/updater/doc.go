// Package updater implements self-update for bell-timer appliances: it
// fetches a YAML release manifest from the configured update folder,
// compares versions and SHA-512 checksums, stops the bell-timer processes,
// applies new binaries and restarts the server. The same package builds
// the manifest on the publishing side.
package updater
