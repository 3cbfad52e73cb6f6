package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// AlignmentReport records how a table was reconciled with the trained schema.
type AlignmentReport struct {
	// Present lists the columns of the encoded frame before alignment, in
	// frame order.
	Present []string
	// Missing lists schema columns the table lacked; they were zero-filled.
	Missing []string
	// Unexpected lists table columns outside the schema; they were dropped.
	Unexpected []string
	// GeneratedAt is when the alignment ran.
	GeneratedAt time.Time
}

// Repaired reports whether alignment had to add or drop any column.
func (r AlignmentReport) Repaired() bool {
	return len(r.Missing) > 0 || len(r.Unexpected) > 0
}

// SchemaAligner reshapes tables to the exact feature order a model was trained on.
type SchemaAligner struct {
	schema []string
	known  map[string]bool
}

// NewSchemaAligner creates an aligner for the given feature order.
func NewSchemaAligner(schema []string) *SchemaAligner {
	known := make(map[string]bool, len(schema))
	for _, name := range schema {
		known[name] = true
	}
	return &SchemaAligner{schema: slices.Clone(schema), known: known}
}

// Schema returns the feature order the aligner produces.
func (a *SchemaAligner) Schema() []string { return slices.Clone(a.schema) }

// Align returns a frame whose columns are exactly the schema, in order.
// Schema columns absent from df are filled with 0; columns of df outside the
// schema are dropped. df is not modified, and aligning an aligned frame
// returns an equal frame.
func (a *SchemaAligner) Align(df dataframe.DataFrame) (dataframe.DataFrame, AlignmentReport, error) {
	report := AlignmentReport{
		Present:     df.Names(),
		GeneratedAt: clock.Now(),
	}
	for _, name := range report.Present {
		if !a.known[name] {
			report.Unexpected = append(report.Unexpected, name)
		}
	}

	out := df
	for _, name := range a.schema {
		if !domain.HasColumn(df, name) {
			report.Missing = append(report.Missing, name)
			out = out.Mutate(domain.Constant(name, df.Nrow(), 0))
		}
	}
	out = out.Select(a.schema)
	if out.Err != nil {
		return out, report, fmt.Errorf("align: %w", out.Err)
	}
	return out, report, nil
}
