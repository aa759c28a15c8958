package updater

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vcns/bell-timer/internal/logger"
)

// PackageOptions are inputs for the release packaging entry point.
type PackageOptions struct {
	// UpdateFolder is the URL where the artifacts will be hosted.
	UpdateFolder string
}

// Package builds the release manifest for the artifacts in the current
// directory. The manifest plus the artifacts are then uploaded to the
// update folder for appliances to pick up.
func Package(ctx context.Context, opts *PackageOptions) error {
	ctx = logger.WithName(ctx, "bell-packager")

	if IsUpdaterRunningNow(ctx) {
		return errUpdaterAlreadyRunning
	}

	desc := NewDescription()

	for _, fileName := range Artifacts() {
		if _, err := os.Stat(fileName); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", fileName, os.ErrNotExist)
		} else if err != nil {
			return fmt.Errorf("stat %s: %w", fileName, err)
		}

		checksum, err := FileChecksum(fileName)
		if err != nil {
			return err
		}

		desc.Files[fileName] = base64.StdEncoding.EncodeToString(checksum)
	}

	contents, err := yaml.Marshal(desc)
	if err != nil {
		return err
	}

	if err = os.WriteFile(ManifestFilename, contents, DefaultFileMode); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Release manifest written",
		"path", ManifestFilename, "version", desc.VersionNumber)

	printUploadGuidance(ctx, desc, opts.UpdateFolder)

	return nil
}

// printUploadGuidance logs human-readable next steps for the release.
func printUploadGuidance(ctx context.Context, desc *Description, updateFolder string) {
	files := make([]string, 0, len(desc.Files)+1)
	for fileName := range desc.Files {
		files = append(files, fileName)
	}

	files = append(files, ManifestFilename)
	sort.Strings(files)

	var builder strings.Builder

	builder.WriteString("Upload the following files to ")

	if updateFolder == "" {
		builder.WriteString("the update folder")
	} else {
		builder.WriteString(updateFolder)
	}

	builder.WriteString(":\n")
	builder.WriteString(strings.Join(files, ",\n"))

	logger.Info(ctx, builder.String())
}
