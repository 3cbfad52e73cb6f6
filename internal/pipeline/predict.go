package pipeline

import (
	"math"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/model"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// Predictor runs the classifier over an aligned, scaled frame.
type Predictor struct {
	classifier model.Classifier
}

// NewPredictor creates a Predictor.
func NewPredictor(classifier model.Classifier) *Predictor {
	return &Predictor{classifier: classifier}
}

// Matrix converts df to a row-major feature matrix in the classifier's feature
// order. Categorical columns and remaining missing values are type failures.
func (p *Predictor) Matrix(df dataframe.DataFrame) (*mat.Dense, error) {
	const op = "build feature matrix"
	features := p.classifier.Features()
	if df.Nrow() == 0 {
		return nil, domain.Fail(domain.FailureInput, op, domain.ErrNoRows)
	}
	x := mat.NewDense(df.Nrow(), len(features), nil)
	for j, name := range features {
		if !domain.HasColumn(df, name) {
			return nil, domain.Failf(domain.FailureInternal, op, "column %q is missing", name)
		}
		col := df.Col(name)
		if !domain.IsNumeric(col) {
			return nil, domain.Failf(domain.FailureType, op, "column %q is not numeric", name)
		}
		values := col.Float()
		for i, v := range values {
			if math.IsNaN(v) {
				return nil, domain.Failf(domain.FailureType, op, "column %q has a missing value in row %d", name, i+1)
			}
		}
		x.SetCol(j, values)
	}
	return x, nil
}

// Predict returns one class label per row in row order, and the positive-class
// probability of each row.
func (p *Predictor) Predict(df dataframe.DataFrame) ([]int, []float64, error) {
	x, err := p.Matrix(df)
	if err != nil {
		return nil, nil, err
	}
	labels, err := p.classifier.Predict(x)
	if err != nil {
		return nil, nil, domain.Fail(domain.FailureInternal, "predict", err)
	}
	proba, err := p.classifier.PredictProba(x)
	if err != nil {
		return nil, nil, domain.Fail(domain.FailureInternal, "predict probabilities", err)
	}
	return labels, proba, nil
}
