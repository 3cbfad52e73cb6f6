package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingMarkers are cell values read as missing, matching what spreadsheet and
// pandas exports write for empty measurements.
var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

// IsMissingMarker reports whether a raw cell denotes a missing value.
func IsMissingMarker(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// Numeric builds a float column. NaN entries are missing.
func Numeric(name string, values []float64) series.Series {
	return series.New(values, series.Float, name)
}

// Categorical builds a text column. Empty entries are stored as gota NaN
// elements so IsNaN reports them as missing.
func Categorical(name string, values []string) series.Series {
	cells := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = "NaN"
			continue
		}
		cells[i] = v
	}
	return series.New(cells, series.String, name)
}

// Constant builds a float column holding v in every row.
func Constant(name string, rows int, v float64) series.Series {
	values := make([]float64, rows)
	for i := range values {
		values[i] = v
	}
	return Numeric(name, values)
}

// ParseColumn infers a column from raw cells: numeric when every non-missing
// cell parses as a float, categorical otherwise. A column with only missing
// cells is numeric.
func ParseColumn(name string, cells []string) series.Series {
	nums := make([]float64, len(cells))
	for i, cell := range cells {
		if IsMissingMarker(cell) {
			nums[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return Categorical(name, Texts(series.New(cells, series.String, name)))
		}
		nums[i] = v
	}
	return Numeric(name, nums)
}

// IsNumeric reports whether s holds numbers.
func IsNumeric(s series.Series) bool {
	return s.Type() == series.Float || s.Type() == series.Int
}

// Texts returns the cells of s as trimmed text with missing entries as "".
// Floats use their shortest representation.
func Texts(s series.Series) []string {
	out := make([]string, s.Len())
	missing := s.IsNaN()
	if s.Type() == series.Float {
		for i, v := range s.Float() {
			if !missing[i] {
				out[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		return out
	}
	for i, r := range s.Records() {
		if missing[i] || IsMissingMarker(r) {
			continue
		}
		out[i] = strings.TrimSpace(r)
	}
	return out
}

// AsCategorical returns s as a text column.
func AsCategorical(s series.Series) series.Series {
	if s.Type() == series.String {
		return s
	}
	return Categorical(s.Name, Texts(s))
}

// HasColumn reports whether df has a column named name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	return slices.Contains(df.Names(), name)
}

// NewFrame assembles columns into a frame, surfacing gota's construction error.
func NewFrame(cols ...series.Series) (dataframe.DataFrame, error) {
	df := dataframe.New(cols...)
	return df, df.Err
}
