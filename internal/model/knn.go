package model

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Weighting selects how neighbor values are averaged.
type Weighting int

const (
	// Uniform gives every neighbor the same weight.
	Uniform Weighting = iota
	// InverseDistance weights neighbors by 1/distance.
	InverseDistance
)

// ParseWeighting accepts the scikit-learn names "uniform" and "distance".
func ParseWeighting(s string) (Weighting, error) {
	switch s {
	case "", "uniform":
		return Uniform, nil
	case "distance":
		return InverseDistance, nil
	default:
		return Uniform, fmt.Errorf("unknown weighting %q", s)
	}
}

// KNNImputer estimates missing entries from the nearest rows of a fitted
// reference set. Reference rows may themselves contain NaN.
type KNNImputer struct {
	features  []string
	k         int
	weighting Weighting
	ref       *mat.Dense
}

// NewKNNImputer validates fitted parameters and returns an imputer. ref holds
// one row per reference sample and one column per feature.
func NewKNNImputer(features []string, k int, weighting Weighting, ref *mat.Dense) (*KNNImputer, error) {
	if len(features) == 0 {
		return nil, errors.New("knn imputer: no features")
	}
	if k < 1 {
		return nil, fmt.Errorf("knn imputer: n_neighbors must be positive, got %d", k)
	}
	if ref == nil {
		return nil, errors.New("knn imputer: no reference rows")
	}
	if _, c := ref.Dims(); c != len(features) {
		return nil, fmt.Errorf("knn imputer: reference rows have %d columns, %d features", c, len(features))
	}
	return &KNNImputer{features: features, k: k, weighting: weighting, ref: ref}, nil
}

// Features returns the column names the imputer was fit on, in fit order.
func (m *KNNImputer) Features() []string { return m.features }

// Neighbors returns the configured neighbor count.
func (m *KNNImputer) Neighbors() int { return m.k }

// Refine re-estimates every cell of x flagged in mask, in place, and returns how
// many cells received a neighbor estimate. Columns of x follow Features. Flagged
// cells and NaN cells are excluded from the distance; a flagged cell with no
// usable donor keeps its current value.
func (m *KNNImputer) Refine(x *mat.Dense, mask [][]bool) (int, error) {
	rows, cols := x.Dims()
	if cols != len(m.features) {
		return 0, fmt.Errorf("knn imputer: got %d columns, fit on %d", cols, len(m.features))
	}
	if len(mask) != rows {
		return 0, fmt.Errorf("knn imputer: mask has %d rows, data has %d", len(mask), rows)
	}

	refined := 0
	for i := 0; i < rows; i++ {
		if !anyTrue(mask[i]) {
			continue
		}
		row := make([]float64, cols)
		for j := range row {
			row[j] = x.At(i, j)
			if mask[i][j] {
				row[j] = math.NaN()
			}
		}
		dist := m.distances(row)

		for j := 0; j < cols; j++ {
			if !mask[i][j] {
				continue
			}
			if v, ok := m.estimate(dist, j); ok {
				x.Set(i, j, v)
				refined++
			}
		}
	}
	return refined, nil
}

// distances returns the NaN-aware euclidean distance from row to every reference
// row, scaled up by the share of coordinates present in both. Pairs with no
// shared coordinate get NaN.
func (m *KNNImputer) distances(row []float64) []float64 {
	n, cols := m.ref.Dims()
	out := make([]float64, n)
	for r := 0; r < n; r++ {
		var sum float64
		present := 0
		for j := 0; j < cols; j++ {
			a, b := row[j], m.ref.At(r, j)
			if math.IsNaN(a) || math.IsNaN(b) {
				continue
			}
			d := a - b
			sum += d * d
			present++
		}
		if present == 0 {
			out[r] = math.NaN()
			continue
		}
		out[r] = math.Sqrt(sum * float64(cols) / float64(present))
	}
	return out
}

type donor struct {
	dist  float64
	value float64
}

// estimate averages feature j over the k nearest reference rows that have it.
func (m *KNNImputer) estimate(dist []float64, j int) (float64, bool) {
	donors := make([]donor, 0, len(dist))
	for r, d := range dist {
		v := m.ref.At(r, j)
		if math.IsNaN(d) || math.IsNaN(v) {
			continue
		}
		donors = append(donors, donor{dist: d, value: v})
	}
	if len(donors) == 0 {
		return 0, false
	}
	sort.SliceStable(donors, func(a, b int) bool { return donors[a].dist < donors[b].dist })
	if len(donors) > m.k {
		donors = donors[:m.k]
	}

	values := make([]float64, len(donors))
	for i, d := range donors {
		values[i] = d.value
	}
	if m.weighting == Uniform {
		return stat.Mean(values, nil), true
	}

	// Exact matches take all the weight.
	weights := make([]float64, len(donors))
	exact := false
	for i, d := range donors {
		if d.dist == 0 {
			weights[i] = 1
			exact = true
		}
	}
	if !exact {
		for i, d := range donors {
			weights[i] = 1 / d.dist
		}
	}
	return stat.Mean(values, weights), true
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}
