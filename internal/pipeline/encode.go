package pipeline

import (
	"fmt"

	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// EncodeStats counts values that matched no training category.
type EncodeStats struct {
	Unseen int
}

// Encoder one-hot encodes categorical columns against their training-time
// categories.
type Encoder struct {
	encoding artifact.Encoding
}

// NewEncoder creates an Encoder for the given training categories.
func NewEncoder(encoding artifact.Encoding) *Encoder {
	return &Encoder{encoding: encoding}
}

// Encode replaces every encoded column present in df with its indicator
// columns, appended at the end of the frame in training order. Missing and
// unseen values encode as all zeros. Columns absent from df are skipped.
func (e *Encoder) Encode(df dataframe.DataFrame) (dataframe.DataFrame, EncodeStats, error) {
	var stats EncodeStats
	for _, spec := range e.encoding.Columns {
		if !domain.HasColumn(df, spec.Name) {
			continue
		}
		values := domain.Texts(df.Col(spec.Name))

		names := e.encoding.Indicators(spec)
		cats := spec.Categories[len(spec.Categories)-len(names):]
		pos := make(map[string]int, len(cats))
		for k, cat := range cats {
			pos[cat] = k
		}
		known := make(map[string]bool, len(spec.Categories))
		for _, cat := range spec.Categories {
			known[cat] = true
		}

		indicators := make([][]float64, len(names))
		for k := range indicators {
			indicators[k] = make([]float64, df.Nrow())
		}
		for i, v := range values {
			if !known[v] {
				stats.Unseen++
				continue
			}
			if k, ok := pos[v]; ok {
				indicators[k][i] = 1
			}
		}

		// Indicators go in before the source column leaves so the frame never
		// runs out of columns.
		for k, name := range names {
			df = df.Mutate(series.New(indicators[k], series.Float, name))
		}
		df = df.Drop(spec.Name)
		if df.Err != nil {
			return df, stats, fmt.Errorf("encode %s: %w", spec.Name, df.Err)
		}
	}
	return df, stats, nil
}
