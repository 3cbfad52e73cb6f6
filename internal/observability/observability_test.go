package observability

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)
	logger.Info("scored", "rows", 3)
	assert.Contains(t, buf.String(), `"rows":3`)

	buf.Reset()
	logger = NewLogger("info", "text", &buf)
	logger.Info("scored", "rows", 3)
	assert.Contains(t, buf.String(), "rows=3")
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "text", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.RowsScored.Add(5)
	m.Predictions.WithLabelValues("1").Add(2)
	m.Runs.WithLabelValues("csv", "success").Inc()

	assert.InDelta(t, 5.0, testutil.ToFloat64(m.RowsScored), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("1")), 0)

	path := filepath.Join(t.TempDir(), "raincast.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "raincast_rows_scored_total 5")
	assert.Contains(t, string(data), `raincast_runs_total{mode="csv",outcome="success"} 1`)
}

func TestMetrics_WriteTextfileDisabled(t *testing.T) {
	m := NewMetricsForTesting()
	assert.NoError(t, m.WriteTextfile(""))
}
