// Package csvio reads observation CSV files into typed frames and writes scored
// output.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ProbabilityColumn is appended next to the prediction in feature dumps.
const ProbabilityColumn = "Probability"

// ReadFile opens and reads a CSV file. Every failure is an input failure.
func ReadFile(path string) (dataframe.DataFrame, error) {
	op := "read csv " + path
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, domain.Fail(domain.FailureInput, op, err)
	}
	defer f.Close()

	df, err := Read(f)
	if err != nil {
		return dataframe.DataFrame{}, domain.Fail(domain.FailureInput, op, err)
	}
	return df, nil
}

// Read parses CSV with a header row into a frame whose column kinds are
// inferred from the cells: numeric when every present cell is a number,
// categorical otherwise.
func Read(r io.Reader) (dataframe.DataFrame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv: %w", err)
	}
	switch len(records) {
	case 0:
		return dataframe.DataFrame{}, domain.ErrEmptyInput
	case 1:
		return dataframe.DataFrame{}, domain.ErrNoRows
	}
	records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")

	// gota renames repeated headers, which would change the output header.
	seen := make(map[string]bool, len(records[0]))
	for _, name := range records[0] {
		if seen[name] {
			return dataframe.DataFrame{}, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
	}

	raw := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if raw.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load records: %w", raw.Err)
	}

	cols := make([]series.Series, 0, raw.Ncol())
	for _, name := range raw.Names() {
		cols = append(cols, domain.ParseColumn(name, raw.Col(name).Records()))
	}
	df, err := domain.NewFrame(cols...)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build frame: %w", err)
	}
	return df, nil
}

// textFrame renders every column of df as text, missing cells as "".
func textFrame(df dataframe.DataFrame) dataframe.DataFrame {
	return df.Capply(func(s series.Series) series.Series {
		return series.New(domain.Texts(s), series.String, s.Name)
	})
}

// WithPredictions returns df as text with the prediction column appended. An
// existing prediction column is replaced in place.
func WithPredictions(df dataframe.DataFrame, predictions []int) (dataframe.DataFrame, error) {
	if len(predictions) != df.Nrow() {
		return dataframe.DataFrame{}, fmt.Errorf("%d predictions for %d rows", len(predictions), df.Nrow())
	}
	out := textFrame(df).Mutate(series.New(predictions, series.Int, domain.PredictionColumn))
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// WriteFile writes df plus predictions to path, replacing any existing file.
// A partially written file is removed.
func WriteFile(path string, df dataframe.DataFrame, predictions []int) error {
	op := "write csv " + path
	out, err := WithPredictions(df, predictions)
	if err != nil {
		return domain.Fail(domain.FailureInternal, op, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.Fail(domain.FailureInternal, op, err)
	}
	if err := out.WriteCSV(f); err != nil {
		f.Close()
		os.Remove(path)
		return domain.Fail(domain.FailureInternal, op, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.Fail(domain.FailureInternal, op, err)
	}
	return nil
}

// WriteFeatures writes a feature frame with per-row probabilities and
// predictions appended.
func WriteFeatures(w io.Writer, df dataframe.DataFrame, probabilities []float64, predictions []int) error {
	if len(probabilities) != df.Nrow() || len(predictions) != df.Nrow() {
		return errors.New("write features: result length does not match frame rows")
	}
	proba := make([]string, len(probabilities))
	for i, p := range probabilities {
		proba[i] = strconv.FormatFloat(p, 'f', 6, 64)
	}
	out := textFrame(df).
		Mutate(series.New(proba, series.String, ProbabilityColumn)).
		Mutate(series.New(predictions, series.Int, domain.PredictionColumn))
	if out.Err != nil {
		return fmt.Errorf("write features: %w", out.Err)
	}
	return out.WriteCSV(w)
}
