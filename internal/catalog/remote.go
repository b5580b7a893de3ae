package catalog

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/gorewood/joinery/internal/logger"
)

const (
	// maxArchiveBytes caps the downloaded archive size.
	maxArchiveBytes = 64 << 20
	// maxExtractBytes caps the total decompressed size.
	maxExtractBytes = 256 << 20

	downloadAttempts = 3
	downloadDelay    = 500 * time.Millisecond
)

// openRemote downloads the archive at url, extracts it to a temp directory
// exclusively owned by this source, and serves the catalog from there.
// Close removes the temp directory; so does every error path here.
func openRemote(ctx context.Context, url string, timeout time.Duration) (Source, error) {
	tmpDir, err := os.MkdirTemp("", "joinery-catalog-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction directory: %w", err)
	}
	cleanup := func() error { return os.RemoveAll(tmpDir) }

	log := logger.G(ctx).WithField("url", url)
	log.Debug("downloading catalog archive")

	archivePath := filepath.Join(tmpDir, "catalog.zip")
	if err := download(ctx, url, archivePath, timeout); err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("downloading catalog archive: %w", err)
	}

	extractDir := filepath.Join(tmpDir, "catalog")
	if err := extractArchive(archivePath, extractDir); err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("extracting catalog archive: %w", err)
	}

	root, err := locateRoot(extractDir)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	log.WithField("root", root).Debug("catalog archive extracted")

	src, err := newDirSource(root, cleanup)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	return src, nil
}

// download fetches url into dest, retrying transient failures. Each attempt
// is bounded by the timeout; 4xx responses and context cancellation stop the
// retry loop immediately.
func download(ctx context.Context, url, dest string, timeout time.Duration) error {
	client := &http.Client{Timeout: timeout}
	log := logger.G(ctx).WithField("url", url)

	return retry.Do(
		func() error {
			return fetchOnce(ctx, client, url, dest)
		},
		retry.Attempts(downloadAttempts),
		retry.Delay(downloadDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).Warn("retrying catalog download")
		}),
	)
}

// fetchOnce performs a single download attempt into dest.
func fetchOnce(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("origin returned %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.Unrecoverable(statusErr)
		}
		return statusErr
	}

	out, err := os.Create(dest)
	if err != nil {
		return retry.Unrecoverable(err)
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, maxArchiveBytes+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if n > maxArchiveBytes {
		return retry.Unrecoverable(fmt.Errorf("archive exceeds %d bytes", int64(maxArchiveBytes)))
	}
	return nil
}

// extractArchive unpacks a zip archive into destDir. Entries may not escape
// destDir, and the total decompressed size is capped.
func extractArchive(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer reader.Close() //nolint:errcheck // read-only archive

	var total int64
	for _, file := range reader.File {
		total, err = extractFile(file, destDir, total)
		if err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes one archive member under destDir and returns the
// running decompressed total.
func extractFile(file *zip.File, destDir string, total int64) (int64, error) {
	name := filepath.FromSlash(file.Name)
	if !filepath.IsLocal(name) {
		return total, fmt.Errorf("archive entry escapes extraction root: %s", file.Name)
	}
	target := filepath.Join(destDir, name)

	if file.FileInfo().IsDir() {
		return total, os.MkdirAll(target, 0o755)
	}
	if !file.Mode().IsRegular() {
		// Symlinks and specials are not catalog content
		return total, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return total, err
	}

	in, err := file.Open()
	if err != nil {
		return total, fmt.Errorf("reading archive entry %s: %w", file.Name, err)
	}
	defer in.Close() //nolint:errcheck // read-only entry

	out, err := os.Create(target)
	if err != nil {
		return total, err
	}

	n, err := io.Copy(out, io.LimitReader(in, maxExtractBytes-total+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return total, fmt.Errorf("extracting %s: %w", file.Name, err)
	}

	total += n
	if total > maxExtractBytes {
		return total, fmt.Errorf("archive decompresses past %d bytes", int64(maxExtractBytes))
	}
	return total, nil
}

// locateRoot finds the directory containing skills/ inside an extracted
// archive, tolerating the single top-level wrapper directory that GitHub
// branch archives add.
func locateRoot(extractDir string) (string, error) {
	if hasSkillsDir(extractDir) {
		return extractDir, nil
	}

	dirEntries, err := os.ReadDir(extractDir)
	if err != nil {
		return "", fmt.Errorf("scanning extracted archive: %w", err)
	}

	var dirs []string
	for _, de := range dirEntries {
		if de.IsDir() {
			dirs = append(dirs, de.Name())
		}
	}
	if len(dirs) == 1 {
		wrapped := filepath.Join(extractDir, dirs[0])
		if hasSkillsDir(wrapped) {
			return wrapped, nil
		}
	}

	return "", fmt.Errorf("archive does not contain a %s directory", skillsDirName)
}

func hasSkillsDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, skillsDirName))
	return err == nil && info.IsDir()
}
