package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Classifier is a pre-fit binary classifier. Columns of x follow Features.
type Classifier interface {
	// Features returns the trained schema: the ordered feature names the
	// classifier was fit on.
	Features() []string
	// Classes returns the two class labels, negative class first.
	Classes() [2]int
	// PredictProba returns the positive-class probability per row.
	PredictProba(x mat.Matrix) ([]float64, error)
	// Predict returns one class label per row, in row order.
	Predict(x mat.Matrix) ([]int, error)
}

// LogisticRegression is a fitted binary logistic regression.
type LogisticRegression struct {
	features  []string
	classes   [2]int
	coef      *mat.VecDense
	intercept float64
}

// NewLogisticRegression validates fitted parameters and returns a classifier.
func NewLogisticRegression(features []string, classes [2]int, coef []float64, intercept float64) (*LogisticRegression, error) {
	if len(features) == 0 {
		return nil, errors.New("logistic regression: no features")
	}
	if len(coef) != len(features) {
		return nil, fmt.Errorf("logistic regression: %d coefficients for %d features", len(coef), len(features))
	}
	return &LogisticRegression{
		features:  features,
		classes:   classes,
		coef:      mat.NewVecDense(len(coef), coef),
		intercept: intercept,
	}, nil
}

func (m *LogisticRegression) Features() []string { return m.features }

func (m *LogisticRegression) Classes() [2]int { return m.classes }

// DecisionFunction returns the signed distance to the separating hyperplane.
func (m *LogisticRegression) DecisionFunction(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != len(m.features) {
		return nil, fmt.Errorf("logistic regression: got %d columns, fit on %d", c, len(m.features))
	}
	if r == 0 {
		return nil, nil
	}
	var z mat.VecDense
	z.MulVec(x, m.coef)
	out := make([]float64, r)
	for i := range out {
		out[i] = z.AtVec(i) + m.intercept
	}
	return out, nil
}

func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	for i, v := range z {
		z[i] = 1 / (1 + math.Exp(-v))
	}
	return z, nil
}

func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(z))
	for i, v := range z {
		out[i] = m.classes[0]
		if v > 0 {
			out[i] = m.classes[1]
		}
	}
	return out, nil
}

// Tree is one fitted decision tree in array form. Node 0 is the root; a node is
// a leaf when ChildrenLeft is -1. Value holds per-class weights at each node.
type Tree struct {
	ChildrenLeft  []int
	ChildrenRight []int
	Feature       []int
	Threshold     []float64
	Value         [][]float64
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays disagree on node count %d", n)
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != 2 {
			return fmt.Errorf("node %d has %d class weights, want 2", i, len(t.Value[i]))
		}
		if t.ChildrenLeft[i] == -1 {
			continue
		}
		if t.ChildrenLeft[i] <= i || t.ChildrenLeft[i] >= n || t.ChildrenRight[i] <= i || t.ChildrenRight[i] >= n {
			return fmt.Errorf("node %d has out of range children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, t.Feature[i], nFeatures)
		}
	}
	return nil
}

// leafDistribution returns the normalized class weights of the leaf reached by row.
func (t *Tree) leafDistribution(row []float64) [2]float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if row[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	v := t.Value[node]
	total := v[0] + v[1]
	if total == 0 {
		return [2]float64{0.5, 0.5}
	}
	return [2]float64{v[0] / total, v[1] / total}
}

// RandomForest averages the class distributions of its trees.
type RandomForest struct {
	features []string
	classes  [2]int
	trees    []Tree
}

// NewRandomForest validates fitted trees and returns a classifier.
func NewRandomForest(features []string, classes [2]int, trees []Tree) (*RandomForest, error) {
	if len(features) == 0 {
		return nil, errors.New("random forest: no features")
	}
	if len(trees) == 0 {
		return nil, errors.New("random forest: no estimators")
	}
	for i := range trees {
		if err := trees[i].validate(len(features)); err != nil {
			return nil, fmt.Errorf("random forest: estimator %d: %w", i, err)
		}
	}
	return &RandomForest{features: features, classes: classes, trees: trees}, nil
}

func (m *RandomForest) Features() []string { return m.features }

func (m *RandomForest) Classes() [2]int { return m.classes }

func (m *RandomForest) distributions(x mat.Matrix) ([][]float64, error) {
	r, c := x.Dims()
	if c != len(m.features) {
		return nil, fmt.Errorf("random forest: got %d columns, fit on %d", c, len(m.features))
	}
	out := make([][]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := range row {
			row[j] = x.At(i, j)
		}
		avg := make([]float64, 2)
		for t := range m.trees {
			d := m.trees[t].leafDistribution(row)
			floats.Add(avg, d[:])
		}
		floats.Scale(1/float64(len(m.trees)), avg)
		out[i] = avg
	}
	return out, nil
}

func (m *RandomForest) PredictProba(x mat.Matrix) ([]float64, error) {
	dists, err := m.distributions(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dists))
	for i, d := range dists {
		out[i] = d[1]
	}
	return out, nil
}

func (m *RandomForest) Predict(x mat.Matrix) ([]int, error) {
	dists, err := m.distributions(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(dists))
	for i, d := range dists {
		out[i] = m.classes[floats.MaxIdx(d)]
	}
	return out, nil
}
