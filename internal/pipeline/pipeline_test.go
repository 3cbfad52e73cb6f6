package pipeline_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/observability"
	"github.com/couchcryptid/raincast/internal/pipeline"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	artifactDir  = "../../testdata/artifacts"
	observations = "../../testdata/observations.csv"
)

func loadSet(t *testing.T) *artifact.Set {
	t.Helper()
	set, err := artifact.Load(artifact.PathsIn(artifactDir))
	require.NoError(t, err)
	return set
}

// readFrame loads a CSV fixture into a frame, inferring column kinds.
func readFrame(t *testing.T, path string) dataframe.DataFrame {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return parseFrame(t, f)
}

func parseFrame(t *testing.T, r io.Reader) dataframe.DataFrame {
	t.Helper()
	records, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 1)

	header, rows := records[0], records[1:]
	cols := make([]series.Series, len(header))
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			cells[i] = row[j]
		}
		cols[j] = domain.ParseColumn(name, cells)
	}
	return frame(t, cols...)
}

func newPipeline(t *testing.T, opts pipeline.Options) (*pipeline.Pipeline, *observability.Metrics) {
	t.Helper()
	return newPipelineFor(t, loadSet(t), opts)
}

func newPipelineFor(t *testing.T, set *artifact.Set, opts pipeline.Options) (*pipeline.Pipeline, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	return pipeline.New(set, opts, slog.Default(), metrics), metrics
}

func TestPipeline_Predict_Observations(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 9, 0, 0, 0, time.UTC))
	pipeline.SetClock(fake)
	t.Cleanup(func() { pipeline.SetClock(nil) })

	p, metrics := newPipeline(t, pipeline.Options{})
	input := readFrame(t, observations)
	before := input.Records()

	res, err := p.Predict(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 0, 1, 0}, res.Predictions)
	want := []float64{0.10887, 0.97309, 0.08097, 0.95694, 0.22211}
	require.Len(t, res.Probabilities, len(want))
	for i, w := range want {
		assert.InDelta(t, w, res.Probabilities[i], 1e-4, "row %d", i)
	}

	assert.Equal(t, pipeline.ImputeStats{Seeded: 8, Refined: 8, ModeFilled: 2}, res.Imputation)
	assert.Zero(t, res.Encoding.Unseen)
	assert.Zero(t, res.UnknownDirections)

	assert.Equal(t, []string{"Date", "Location"}, res.Alignment.Unexpected)
	assert.Empty(t, res.Alignment.Missing)
	assert.Equal(t, fake.Now(), res.Alignment.GeneratedAt)

	assert.Equal(t, p.Schema(), res.Features.Names())
	assert.Equal(t, []float64{0, 1, 1, 0, 0}, res.Features.Col("WindGustDir_N").Float(),
		"NNE and NNW fall in the north bucket")
	assert.Equal(t, []float64{1, 0, 0, 0, 1}, res.Features.Col("WindGustDir_W").Float(),
		"missing gust direction takes the mode")

	if diff := cmp.Diff(before, input.Records()); diff != "" {
		t.Errorf("input frame changed (-want +got):\n%s", diff)
	}
	assert.True(t, input.Col("Humidity9am").IsNaN()[1], "input cells are not filled in place")

	assert.Equal(t, input.Names(), res.Prepared.Names(), "the prepared frame keeps the input columns")
	assert.Equal(t, []string{"W", "N", "N", "S", "W"}, domain.Texts(res.Prepared.Col("WindGustDir")))
	assert.Equal(t, "No", domain.Texts(res.Prepared.Col("RainToday"))[4])
	assert.InDelta(t, 257.0/3, res.Prepared.Col("Humidity9am").Float()[1], 1e-9)

	assert.InDelta(t, 5.0, testutil.ToFloat64(metrics.RowsScored), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.Predictions.WithLabelValues("1")), 0)
	assert.InDelta(t, 8.0, testutil.ToFloat64(metrics.ImputedValues.WithLabelValues("knn")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.UnexpectedCols), 0)
}

func TestPipeline_Predict_KNNRefinesMissingHumidity(t *testing.T) {
	p, _ := newPipeline(t, pipeline.Options{})
	input := readFrame(t, observations)

	res, err := p.Predict(context.Background(), input)
	require.NoError(t, err)

	// Row 2 is closest to the three humid, overcast training rows, so the
	// neighbor estimate replaces the 70 median seed.
	scaled := (257.0/3 - 68.9) / 19.0
	assert.InDelta(t, scaled, res.Features.Col("Humidity9am").Float()[1], 1e-9)
}

func TestPipeline_Predict_MissingColumnsAreZeroFilled(t *testing.T) {
	p, metrics := newPipeline(t, pipeline.Options{})

	input := frame(t,
		domain.Numeric("Humidity3pm", []float64{95}),
		domain.Categorical("WindGustDir", []string{"NNE"}),
	)

	res, err := p.Predict(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, res.Predictions, 1)
	assert.Len(t, res.Alignment.Missing, 26-4, "every column but Humidity3pm and the gust indicators")
	assert.Empty(t, res.Alignment.Unexpected)
	assert.InDelta(t, 22.0, testutil.ToFloat64(metrics.MissingColumns), 0)

	// A zero-filled continuous column is standardized like any other.
	assert.InDelta(t, (0-12.2)/6.4, res.Features.Col("MinTemp").Float()[0], 1e-9)
	assert.Equal(t, []float64{1}, res.Features.Col("WindGustDir_N").Float())
}

func TestPipeline_Predict_LogsSchemaRepair(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	p := pipeline.New(loadSet(t), pipeline.Options{}, logger, observability.NewMetricsForTesting())

	_, err := p.Predict(context.Background(), readFrame(t, observations))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `msg="input repaired to the model schema"`)
	assert.Contains(t, logs.String(), "dropped=\"[Date Location]\"")
}

func TestPipeline_Predict_UnknownDirection(t *testing.T) {
	for _, fallback := range []domain.DirectionFallback{domain.PassThrough, domain.BucketOther} {
		t.Run(fallback.String(), func(t *testing.T) {
			p, _ := newPipeline(t, pipeline.Options{Fallback: fallback})
			input := readFrame(t, observations)
			dirs := domain.Texts(input.Col("WindDir3pm"))
			dirs[0] = "CALM"
			input = input.Mutate(domain.Categorical("WindDir3pm", dirs))

			res, err := p.Predict(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, 1, res.UnknownDirections)
			assert.Equal(t, 1, res.Encoding.Unseen)
			for _, name := range []string{"WindDir3pm_N", "WindDir3pm_S", "WindDir3pm_W"} {
				assert.Zero(t, res.Features.Col(name).Float()[0], name)
			}
		})
	}
}

func TestPipeline_Predict_TypeFailure(t *testing.T) {
	p, _ := newPipeline(t, pipeline.Options{})
	input := readFrame(t, observations).Mutate(domain.Categorical("Pressure3pm",
		[]string{"high", "low", "high", "low", "high"}))

	_, err := p.Predict(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, domain.FailureType, domain.FailureOf(err))
	assert.Contains(t, err.Error(), "stage standardize")
	assert.Contains(t, err.Error(), "Pressure3pm")
}

func TestPipeline_Predict_NoRows(t *testing.T) {
	p, _ := newPipeline(t, pipeline.Options{})
	_, err := p.Predict(context.Background(), frame(t, domain.Numeric("MinTemp", []float64{})))
	require.ErrorIs(t, err, domain.ErrNoRows)
	assert.Equal(t, domain.FailureInput, domain.FailureOf(err))
}

func TestPipeline_Predict_ContextCancelled(t *testing.T) {
	p, metrics := newPipeline(t, pipeline.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Predict(ctx, readFrame(t, observations))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, testutil.ToFloat64(metrics.RowsScored))
}

func TestPipeline_Predict_Deterministic(t *testing.T) {
	p, _ := newPipeline(t, pipeline.Options{})
	input := readFrame(t, observations)

	first, err := p.Predict(context.Background(), input)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Equal(t, first.Probabilities, second.Probabilities)
}

func TestPipeline_Predict_RainTodayOnlyMissing(t *testing.T) {
	set := loadSet(t)
	modes := maps.Clone(set.Modes)
	modes["RainToday"] = "Yes"
	set.Modes = modes
	p, _ := newPipelineFor(t, set, pipeline.Options{})

	input := parseFrame(t, strings.NewReader(
		"MinTemp,Humidity3pm,WindGustDir,RainToday\n"+
			"13.4,22,W,NA\n"))
	require.True(t, domain.IsNumeric(input.Col("RainToday")), "a column of gaps reads as numeric")

	res, err := p.Predict(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imputation.ModeFilled)
	assert.Zero(t, res.Encoding.Unseen)
	assert.Equal(t, []string{"Yes"}, domain.Texts(res.Prepared.Col("RainToday")))
	assert.Equal(t, []float64{1}, res.Features.Col("RainToday_Yes").Float())
}
