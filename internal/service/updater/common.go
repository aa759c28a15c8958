package updater

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/logger"
	"github.com/vcns/bell-timer/internal/version"

	// Ensure SHA512 is linked in for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// ManifestFilename stores the release manifest published to appliances.
	ManifestFilename = "bell-timer-version.yaml"

	// MarkerFilename marks an update in progress to avoid parallel runs.
	MarkerFilename = "bell-timer-update-marker.bin"

	// DefaultFileMode is used when applying distributed artifacts.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction hashes update artifacts.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// Base executable names; platform helpers append the extension when needed.
	baseServerExecutable  = "bell-server"
	baseControlExecutable = "bellctl"
	baseUpdaterExecutable = "bell-updater"

	// markerLifetime is the period after which a stale update marker is ignored.
	markerLifetime = 30 * time.Second

	// versionCommandTimeout bounds the local version probe.
	versionCommandTimeout = 10 * time.Second
)

// Description is the release manifest fetched from the update folder.
type Description struct {
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Files maps artifact names to their base64-encoded SHA-512 checksums.
	Files map[string]string `yaml:"files"`
	// Executable is the binary restarted after a successful update.
	Executable string `yaml:"executable"`
}

// NewDescription produces a manifest for the currently built version.
func NewDescription() *Description {
	return &Description{
		VersionNumber: version.Short(),
		Files:         make(map[string]string, len(Artifacts())),
		Executable:    ServerExecutable(),
	}
}

// Artifacts returns the files distributed to an appliance for this platform.
func Artifacts() []string {
	return []string{
		ServerExecutable(),
		ControlExecutable(),
		UpdaterExecutable(),
		config.DefaultConfigFilename,
	}
}

// FileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// IsUpdaterRunningNow checks for an update marker and attempts recovery
// when it looks stale.
func IsUpdaterRunningNow(ctx context.Context) bool {
	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, attempting cleanup")

		if err = terminateProcessByName(UpdaterExecutable()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// terminateProcessByName kills other processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// ServerExecutable returns the platform-specific bell-server binary name.
func ServerExecutable() string {
	return baseServerExecutable + executableExtension()
}

// ControlExecutable returns the platform-specific bellctl binary name.
func ControlExecutable() string {
	return baseControlExecutable + executableExtension()
}

// UpdaterExecutable returns the platform-specific bell-updater binary name.
func UpdaterExecutable() string {
	return baseUpdaterExecutable + executableExtension()
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
