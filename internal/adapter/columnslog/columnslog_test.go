package columnslog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/raincast/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	report := pipeline.AlignmentReport{
		Present:     []string{"Date", "MinTemp", "WindGustDir_N"},
		Missing:     []string{"MaxTemp"},
		Unexpected:  []string{"Date"},
		GeneratedAt: time.Date(2024, time.April, 26, 9, 30, 0, 0, time.UTC),
	}
	path := filepath.Join(t.TempDir(), "columns_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale contents\n"), 0o600))

	require.NoError(t, WriteFile(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `Generated at: 2024-04-26T09:30:00Z

Columns in the encoded table before alignment:
  - Date
  - MinTemp
  - WindGustDir_N

Columns missing from the model schema (zero-filled):
  - MaxTemp

Unexpected columns (dropped):
  - Date

`
	assert.Equal(t, want, string(data))
}

func TestWriteFile_NothingToRepair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns_log.txt")
	require.NoError(t, WriteFile(path, pipeline.AlignmentReport{Present: []string{"MinTemp"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Columns missing from the model schema (zero-filled):\n  (none)\n")
	assert.Contains(t, string(data), "Unexpected columns (dropped):\n  (none)\n")
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "log.txt"), pipeline.AlignmentReport{})
	assert.Error(t, err)
}
