package pipeline

import (
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/model"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// Standardizer scales the continuous measurement columns with a fitted scaler.
type Standardizer struct {
	scaler *model.StandardScaler
}

// NewStandardizer creates a Standardizer.
func NewStandardizer(scaler *model.StandardScaler) *Standardizer {
	return &Standardizer{scaler: scaler}
}

// Standardize returns df with the scaler's columns rewritten. Other columns are
// left alone. Every scaler column must be present and numeric.
func (s *Standardizer) Standardize(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	const op = "standardize"
	features := s.scaler.Features()
	for _, name := range features {
		if !domain.HasColumn(df, name) {
			return df, domain.Failf(domain.FailureType, op, "column %q is missing", name)
		}
		if !domain.IsNumeric(df.Col(name)) {
			return df, domain.Failf(domain.FailureType, op, "column %q is not numeric", name)
		}
	}
	if df.Nrow() == 0 {
		return df, nil
	}

	x := mat.NewDense(df.Nrow(), len(features), nil)
	for j, name := range features {
		x.SetCol(j, df.Col(name).Float())
	}
	scaled, err := s.scaler.Transform(x)
	if err != nil {
		return df, domain.Fail(domain.FailureInternal, op, err)
	}
	for j, name := range features {
		values := make([]float64, df.Nrow())
		mat.Col(values, j, scaled)
		if df = df.Mutate(domain.Numeric(name, values)); df.Err != nil {
			return df, domain.Fail(domain.FailureInternal, op, df.Err)
		}
	}
	return df, nil
}
