package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestValidateAccepts(t *testing.T) {
	path := writeFile(t, "take.m4a", 2048)
	result := Validate(OSFilesystem{}, path)
	require.True(t, result.Valid, "reason: %s", result.Reason)
	require.Empty(t, result.Reason)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		uri  func(t *testing.T) string
	}{
		{"empty uri", func(t *testing.T) string { return "" }},
		{"whitespace uri", func(t *testing.T) string { return "   " }},
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "ghost.m4a")
		}},
		{"too small", func(t *testing.T) string {
			return writeFile(t, "tiny.m4a", 50)
		}},
		{"too large", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "huge.m4a")
			f, err := os.Create(path)
			require.NoError(t, err)
			defer f.Close()
			// Sparse file: 60 MiB apparent size without writing 60 MiB.
			require.NoError(t, f.Truncate(60<<20))
			return path
		}},
		{"disallowed extension", func(t *testing.T) string {
			return writeFile(t, "notes.txt", 2048)
		}},
		{"no extension", func(t *testing.T) string {
			return writeFile(t, "bare", 2048)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(OSFilesystem{}, tc.uri(t))
			require.False(t, result.Valid)
			require.NotEmpty(t, result.Reason)
		})
	}
}

func TestValidateUppercaseExtension(t *testing.T) {
	path := writeFile(t, "TAKE.M4A", 2048)
	result := Validate(OSFilesystem{}, path)
	require.True(t, result.Valid, "reason: %s", result.Reason)
}

type failingFS struct{}

func (failingFS) Stat(string) (bool, int64, error) {
	return false, 0, errors.New("permission denied")
}

func TestValidateStatErrorFailsClosed(t *testing.T) {
	result := Validate(failingFS{}, "take.m4a")
	require.False(t, result.Valid)
	require.Contains(t, result.Reason, "stat failed")
}
