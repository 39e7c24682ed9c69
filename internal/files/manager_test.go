package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actcli/internal/config"
	apperrors "actcli/internal/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	return NewManager(paths, nil)
}

func TestWriteAtomic(t *testing.T) {
	m := newTestManager(t)

	err := m.WriteAtomic("reports/nox_merged.csv", func(w io.Writer) error {
		_, err := io.WriteString(w, "Date,no\n")
		return err
	})
	require.NoError(t, err)

	path := filepath.Join(m.Paths().ReportsDir, "nox_merged.csv")
	assert.True(t, m.FileExists(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,no\n", string(content))

	entries, err := os.ReadDir(m.Paths().ReportsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteAtomicFailureKeepsOldFile(t *testing.T) {
	m := newTestManager(t)
	path := filepath.Join(m.Paths().ChartsDir, "o3_diurnal.png")

	require.NoError(t, m.WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("old"))
		return err
	}))

	err := m.WriteAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))

	entries, err := os.ReadDir(m.Paths().ChartsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
