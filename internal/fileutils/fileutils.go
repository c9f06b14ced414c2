// Package fileutils provides the file operations shared by the CLI, the batch
// runner and the HTTP server.
package fileutils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/fatura-extractor/internal/logging"

	"github.com/google/uuid"
)

// TempPrefix marks files created by SaveTempFile. CleanupTempFiles only
// touches files carrying it.
const TempPrefix = "fatura_"

// ErrTooLarge is returned by SaveTempFile when the input exceeds its limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ReadFile reads the entire contents of a file
func ReadFile(filePath string) ([]byte, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	data, err := os.ReadFile(filePath) // #nosec G304 -- caller-selected input
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// WriteFile writes data to a file, creating parent directories as needed
func WriteFile(filePath string, data []byte, perm os.FileMode) error {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ListFilesWithExtension returns, sorted, the regular files directly inside
// dirPath whose extension matches extension case-insensitively.
func ListFilesWithExtension(dirPath, extension string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, fmt.Errorf("directory does not exist: %s", dirPath)
	}
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), extension) {
			continue
		}
		files = append(files, filepath.Join(dirPath, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// SaveTempFile copies r into a new uuid-named file in dir and returns its
// path. At most maxBytes are accepted when maxBytes is positive; a larger
// input is removed and ErrTooLarge returned.
func SaveTempFile(dir, ext string, r io.Reader, maxBytes int64) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, TempPrefix+uuid.NewString()+ext)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600) // #nosec G304 -- generated name
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write temporary file: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to close temporary file: %w", closeErr)
	case maxBytes > 0 && n > maxBytes:
		_ = os.Remove(path)
		return "", ErrTooLarge
	}
	return path, nil
}

// CleanupTempFiles removes files created by SaveTempFile in dir that are
// older than maxAge. It returns the number of files removed.
func CleanupTempFiles(dir string, maxAge time.Duration, logger logging.Logger) (int, error) {
	logger = logging.OrDefault(logger)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			logger.WithError(err).Warn("Failed to remove temporary file",
				logging.F(logging.FieldFile, path))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Debug("Removed stale temporary files",
			logging.F(logging.FieldCount, removed))
	}
	return removed, nil
}
