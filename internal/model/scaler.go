package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StandardScaler applies a pre-fit per-column affine transform (x - mean) / scale.
type StandardScaler struct {
	features []string
	mean     []float64
	scale    []float64
}

// NewStandardScaler validates fitted parameters and returns a scaler.
func NewStandardScaler(features []string, mean, scale []float64) (*StandardScaler, error) {
	if len(features) == 0 {
		return nil, errors.New("standard scaler: no features")
	}
	if len(mean) != len(features) || len(scale) != len(features) {
		return nil, fmt.Errorf("standard scaler: %d features but %d means and %d scales",
			len(features), len(mean), len(scale))
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("standard scaler: zero scale for %q", features[i])
		}
	}
	return &StandardScaler{features: features, mean: mean, scale: scale}, nil
}

// Features returns the column names the scaler was fit on, in fit order.
func (s *StandardScaler) Features() []string { return s.features }

// Transform returns a standardized copy of x, whose columns must follow Features.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != len(s.features) {
		return nil, fmt.Errorf("standard scaler: got %d columns, fit on %d", c, len(s.features))
	}
	if r == 0 {
		return nil, errors.New("standard scaler: no rows")
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}
