package csvio

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Date,MinTemp,WindGustDir,Rainfall,RainToday
2008-12-01,13.4,W,0.6,No
2008-12-02,7.0,NNE,NA,Yes
2008-12-03,,,1e-1,
`

func TestRead_InfersKinds(t *testing.T) {
	df, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, []string{"Date", "MinTemp", "WindGustDir", "Rainfall", "RainToday"}, df.Names())

	minTemp := df.Col("MinTemp")
	assert.Equal(t, series.Float, minTemp.Type())
	assert.Equal(t, 13.4, minTemp.Elem(0).Float())
	assert.Equal(t, []bool{false, false, true}, minTemp.IsNaN())

	rain := df.Col("Rainfall")
	assert.Equal(t, series.Float, rain.Type())
	assert.True(t, rain.Elem(1).IsNA(), "NA is missing")
	assert.InDelta(t, 0.1, rain.Elem(2).Float(), 1e-12)

	dir := df.Col("WindGustDir")
	assert.Equal(t, series.String, dir.Type())
	assert.Equal(t, []string{"W", "NNE", ""}, domain.Texts(dir))
	assert.Equal(t, []bool{false, false, true}, dir.IsNaN())

	assert.Equal(t, series.String, df.Col("Date").Type())
}

func TestRead_EmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = Read(strings.NewReader("MinTemp,MaxTemp\n"))
	assert.ErrorIs(t, err, domain.ErrNoRows)
}

func TestRead_Ragged(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2\n3\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, csv.ErrFieldCount)
}

func TestRead_DuplicateHeader(t *testing.T) {
	_, err := Read(strings.NewReader("MinTemp,RainToday,MinTemp\n1,No,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "MinTemp"`)
}

func TestRead_ByteOrderMark(t *testing.T) {
	df, err := Read(strings.NewReader("\ufeffMinTemp\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"MinTemp"}, df.Names())
}

func TestReadFile_Failures(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, domain.FailureInput, domain.FailureOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = ReadFile(empty)
	require.Error(t, err)
	assert.Equal(t, domain.FailureInput, domain.FailureOf(err))
	assert.ErrorIs(t, err, domain.ErrEmptyInput)

	dup := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(dup, []byte("a,a\n1,2\n"), 0o600))
	_, err = ReadFile(dup)
	require.Error(t, err)
	assert.Equal(t, domain.FailureInput, domain.FailureOf(err))
}

func TestWriteFile(t *testing.T) {
	df, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "output.csv")
	require.NoError(t, WriteFile(path, df, []int{0, 1, 0}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `Date,MinTemp,WindGustDir,Rainfall,RainToday,Prediction
2008-12-01,13.4,W,0.6,No,0
2008-12-02,7,NNE,,Yes,1
2008-12-03,,,0.1,,0
`
	assert.Equal(t, want, string(data))
}

func TestWriteFile_ImputedValues(t *testing.T) {
	df, err := domain.NewFrame(
		domain.Numeric("Humidity9am", []float64{71, 85.5}),
		domain.Categorical("WindGustDir", []string{"W", "N"}),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "output.csv")
	require.NoError(t, WriteFile(path, df, []int{1, 0}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Humidity9am,WindGustDir,Prediction\n71,W,1\n85.5,N,0\n", string(data))
}

func TestWriteFile_Mismatch(t *testing.T) {
	df, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "output.csv")
	err = WriteFile(path, df, []int{1})
	require.Error(t, err)
	assert.Equal(t, domain.FailureInternal, domain.FailureOf(err))
	assert.NoFileExists(t, path)
}

func TestWithPredictions_ReplacesColumn(t *testing.T) {
	df, err := Read(strings.NewReader("MinTemp,Prediction\n1,9\n"))
	require.NoError(t, err)
	out, err := WithPredictions(df, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"MinTemp", "Prediction"}, out.Names())
	assert.Equal(t, []string{"1"}, out.Col("Prediction").Records())
}

func TestWriteFeatures(t *testing.T) {
	df, err := domain.NewFrame(
		domain.Numeric("Humidity3pm", []float64{0.5, -1.25}),
		domain.Numeric("RainToday_Yes", []float64{1, 0}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFeatures(&buf, df, []float64{0.91, 0.2}, []int{1, 0}))
	want := `Humidity3pm,RainToday_Yes,Probability,Prediction
0.5,1,0.910000,1
-1.25,0,0.200000,0
`
	assert.Equal(t, want, buf.String())

	assert.Error(t, WriteFeatures(&buf, df, []float64{1}, []int{1}))
}
