package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"actcli/internal/config"
	apperrors "actcli/internal/errors"
)

// Manager writes rendered artefacts under the output directory
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// Paths returns the output layout the manager writes to
func (m *Manager) Paths() *config.Paths {
	return m.paths
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// WriteAtomic streams write's output to a temporary file next to path and
// renames it into place. Readers never observe a partially written file.
func (m *Manager) WriteAtomic(path string, write func(w io.Writer) error) error {
	fullPath := m.resolvePath(path)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewExportError("failed to create directory", err).WithContext("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return apperrors.NewExportError("failed to create temp file", err).WithContext("path", fullPath)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		tmp.Close()
		cleanup()
		return apperrors.NewExportError(fmt.Sprintf("failed to write %s", filepath.Base(fullPath)), err).
			WithContext("path", fullPath)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.NewExportError("failed to close temp file", err).WithContext("path", fullPath)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return apperrors.NewExportError("failed to set permissions", err).WithContext("path", fullPath)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		cleanup()
		return apperrors.NewExportError("failed to move file into place", err).WithContext("path", fullPath)
	}

	m.logger.Info("File written", slog.String("path", fullPath))
	return nil
}

// resolvePath places relative paths under the output directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil {
		return path
	}
	return filepath.Join(m.paths.OutputDir, path)
}
