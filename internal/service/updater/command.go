package updater

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/vcns/bell-timer/internal/client"
	"github.com/vcns/bell-timer/internal/config"
	"github.com/vcns/bell-timer/internal/logger"
)

var (
	errUpdaterAlreadyRunning = errors.New("the updater is already running")
	errNoUpdateFolder        = errors.New("no update folder configured")
	errEmptyManifest         = errors.New("release manifest is empty")
	errNoChecksum            = errors.New("checksum missing for file")
	errBadHTTPStatus         = errors.New("unexpected http status")
	errInvalidVersionOutput  = errors.New("invalid version output format")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
}

// runner holds the mutable state for a single update execution.
// It is unexported; callers use Run.
type runner struct {
	// manifest is the remote release description.
	manifest *Description
	// cfg is the connection configuration loaded from YAML.
	cfg *config.Config
	// localVersion is the detected installed version.
	localVersion string
	// filesOutdated reports whether installed files differ from the manifest.
	filesOutdated bool
	// temporaryDirectory is where new files land before apply.
	temporaryDirectory string
	// downloadedFiles maps artifact name to local temp path.
	downloadedFiles map[string]string
}

// Run executes the updater lifecycle: fetch the manifest, compare versions
// and checksums, and when something differs, stop the bell-timer processes,
// apply the new binaries and restart the server.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bell-updater")

	up, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer up.cleanup(ctx)

	if err = up.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Updater run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Updater completed")

	return nil
}

// newRunner loads settings and writes a marker to avoid concurrent runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	u := &runner{
		downloadedFiles: make(map[string]string, len(Artifacts())),
	}

	if IsUpdaterRunningNow(ctx) {
		return u, errUpdaterAlreadyRunning
	}

	updateMarker, err := os.Create(MarkerFilename)
	if err != nil {
		return u, err
	}

	if err = updateMarker.Close(); err != nil {
		return u, err
	}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return u, err
	}

	if settings.UpdateFolder == "" {
		return u, errNoUpdateFolder
	}

	u.cfg = settings

	return u, nil
}

// run executes the update workflow for this runner instance.
func (u *runner) run(ctx context.Context) error {
	logger.Info(ctx, "Downloading the release manifest")

	if err := u.fetchManifest(ctx); err != nil {
		return fmt.Errorf("download release manifest: %w", err)
	}

	logger.Info(ctx, "Detecting the installed version")

	u.localVersion = u.detectLocalVersion(ctx)

	needed, err := u.updateNeeded(ctx)
	if err != nil {
		return err
	}

	if !needed {
		logger.Info(ctx, "No update required, version and files are current")
		return nil
	}

	logger.Info(ctx, "Stopping bell-timer processes")

	if err = u.terminateBellTimerProcesses(); err != nil {
		return fmt.Errorf("terminate bell-timer processes: %w", err)
	}

	logger.Info(ctx, "Downloading update files to a temporary folder")

	if err = u.downloadFiles(ctx); err != nil {
		return fmt.Errorf("download update files: %w", err)
	}

	logger.Info(ctx, "Applying downloaded files")

	if err = u.applyFiles(ctx); err != nil {
		return fmt.Errorf("apply update files: %w", err)
	}

	logger.InfoKV(ctx, "Restarting server", "executable", u.manifest.Executable)

	if err = u.restartServer(ctx); err != nil {
		return fmt.Errorf("restart server: %w", err)
	}

	return nil
}

// detectLocalVersion asks the running server first and falls back to
// executing the installed binary. An empty result means first install.
func (u *runner) detectLocalVersion(ctx context.Context) string {
	status, err := client.New(u.cfg.ServerURL, u.cfg.Timeout).Status(ctx)
	if err == nil && status.Version != "" {
		return status.Version
	}

	cmdCtx, cancel := context.WithTimeout(ctx, versionCommandTimeout)
	defer cancel()

	output, err := exec.CommandContext(cmdCtx, ServerExecutable(), "version").Output()
	if err != nil {
		logger.Warnf(ctx, "Could not get local version from %s: %v", ServerExecutable(), err)
		return ""
	}

	parsed, err := parseVersionFromOutput(string(output))
	if err != nil {
		logger.Warnf(ctx, "Could not parse local version output: %v", err)
		return ""
	}

	return parsed
}

// parseVersionFromOutput extracts the semantic version from the version
// subcommand output ("version: 1.0.0, commit: abc123, ..." -> "1.0.0").
func parseVersionFromOutput(output string) (string, error) {
	output = strings.TrimSpace(output)
	if strings.HasPrefix(output, "version: ") {
		parts := strings.Split(output, ",")
		if len(parts) > 0 {
			v := strings.TrimSpace(strings.TrimPrefix(parts[0], "version: "))
			if v != "" {
				return v, nil
			}
		}
	}

	return "", errInvalidVersionOutput
}

// updateNeeded compares versions and checksums against the manifest.
func (u *runner) updateNeeded(ctx context.Context) (bool, error) {
	if u.manifest == nil {
		return false, errEmptyManifest
	}

	if u.localVersion == "" {
		logger.Info(ctx, "No local version detected, update needed")
		return true, nil
	}

	if u.localVersion != u.manifest.VersionNumber {
		logger.InfoKV(ctx, "Version mismatch detected",
			"local", u.localVersion, "remote", u.manifest.VersionNumber)

		return true, nil
	}

	logger.InfoKV(ctx, "Versions match, checking file integrity", "version", u.localVersion)

	if err := u.validateChecksums(); err != nil {
		return false, fmt.Errorf("validate checksums: %w", err)
	}

	return u.filesOutdated, nil
}

// validateChecksums compares installed files against the manifest checksums.
// It returns early on the first mismatch.
func (u *runner) validateChecksums() error {
	for fileName := range u.manifest.Files {
		outdated, err := u.validateFileChecksum(fileName)
		if err != nil {
			return err
		}

		if outdated {
			u.filesOutdated = true
			return nil
		}
	}

	return nil
}

// validateFileChecksum reports whether a single installed file differs
// from the manifest.
func (u *runner) validateFileChecksum(fileName string) (bool, error) {
	remoteChecksum, err := u.manifestChecksum(fileName)
	if err != nil {
		return false, err
	}

	localChecksum, err := installedChecksum(fileName)
	if err != nil {
		return false, err
	}

	return !bytes.Equal(remoteChecksum, localChecksum), nil
}

// manifestChecksum decodes the manifest checksum for a file.
func (u *runner) manifestChecksum(fileName string) ([]byte, error) {
	encoded, ok := u.manifest.Files[fileName]
	if !ok {
		return nil, fmt.Errorf("checksum for %s: %w", fileName, errNoChecksum)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return decoded, nil
}

// installedChecksum hashes the installed file, nil when it does not exist.
func installedChecksum(fileName string) ([]byte, error) {
	if _, err := os.Stat(fileName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	return FileChecksum(fileName)
}

// fetchManifest downloads and parses the remote release manifest.
func (u *runner) fetchManifest(ctx context.Context) error {
	response, err := u.fetchFromUpdateFolder(ctx, ManifestFilename)
	if response != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}

	if err != nil {
		return err
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	var desc Description
	if err = yaml.Unmarshal(data, &desc); err != nil {
		return err
	}

	u.manifest = &desc

	return nil
}

// fetchFromUpdateFolder fetches a file from the configured update folder URL.
func (u *runner) fetchFromUpdateFolder(ctx context.Context, fileName string) (*http.Response, error) {
	folderURL, err := url.Parse(u.cfg.UpdateFolder)
	if err != nil {
		return nil, err
	}

	// path.Join normalizes duplicate slashes when composing the URL path.
	folderURL.Path = path.Join(folderURL.Path, fileName)
	finalURL := folderURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return response, err
	}

	if response.StatusCode != http.StatusOK {
		return response, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return response, nil
}

// terminateBellTimerProcesses kills known binaries before applying files.
func (u *runner) terminateBellTimerProcesses() error {
	executables := sliceToSet([]string{
		ServerExecutable(),
		ControlExecutable(),
	})

	for name := range executables {
		if err := terminateProcessByName(name); err != nil {
			return err
		}
	}

	return nil
}

// downloadFiles downloads the manifest artifacts into a temporary directory.
func (u *runner) downloadFiles(ctx context.Context) error {
	temporaryDirectory, err := os.MkdirTemp("", "bell-timer-updater-")
	if err != nil {
		return err
	}

	u.temporaryDirectory = temporaryDirectory

	for fileName := range u.manifest.Files {
		var response *http.Response

		response, err = u.fetchFromUpdateFolder(ctx, fileName)
		if err != nil {
			if response != nil {
				_ = response.Body.Close()
			}

			return err
		}

		outputFileName := filepath.Clean(filepath.Join(temporaryDirectory, fileName))

		var outputFile *os.File

		outputFile, err = os.Create(outputFileName)
		if err != nil {
			_ = response.Body.Close()

			return err
		}

		_, err = io.Copy(outputFile, response.Body)

		_ = response.Body.Close()
		_ = outputFile.Close()

		if err != nil {
			return err
		}

		u.downloadedFiles[fileName] = outputFileName
		logger.InfoKV(ctx, "Downloaded file", "path", outputFileName)
	}

	return nil
}

// applyFiles applies downloaded files with go-update, verifying checksums.
func (u *runner) applyFiles(ctx context.Context) error {
	for fileName, downloadedFileName := range u.downloadedFiles {
		logger.InfoKV(ctx, "Updating file", "file", fileName)

		data, err := os.ReadFile(filepath.Clean(downloadedFileName))
		if err != nil {
			return err
		}

		checksum, err := u.manifestChecksum(fileName)
		if err != nil {
			return err
		}

		if _, err = os.Stat(fileName); errors.Is(err, os.ErrNotExist) {
			var created *os.File

			if created, err = os.Create(fileName); err != nil {
				return err
			}

			if err = created.Close(); err != nil {
				return err
			}
		}

		options := goupdate.Options{
			TargetPath: fileName,
			TargetMode: DefaultFileMode,
			Checksum:   checksum,
			Hash:       DefaultChecksumFunction,
		}

		if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
			return err
		}

		oldFileName := fileName + ".old"
		if _, err = os.Stat(oldFileName); err == nil {
			_ = os.Remove(oldFileName)
		}
	}

	return nil
}

// restartServer launches the updated server binary in the background.
func (u *runner) restartServer(ctx context.Context) error {
	if u.manifest.Executable == "" {
		return errEmptyManifest
	}

	return exec.CommandContext(ctx, u.manifest.Executable).Start()
}

// cleanup removes temporary artifacts and the running marker.
func (u *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	if u.temporaryDirectory != "" {
		if _, err := os.Stat(u.temporaryDirectory); err == nil {
			_ = os.RemoveAll(u.temporaryDirectory)
		}
	}

	logger.Info(ctx, "The updater has been stopped")
}
