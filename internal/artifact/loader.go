package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Paths locates the six artifact files.
type Paths struct {
	Model   string
	Scaler  string
	Imputer string
	Medians string
	Modes   string
	Encoder string
}

// Default artifact file names.
const (
	ModelFile   = "model.json"
	ScalerFile  = "scaler.json"
	ImputerFile = "knn_imputer.json"
	MediansFile = "median_values.json"
	ModesFile   = "mode_values.json"
	EncoderFile = "encoder.json"
)

// PathsIn returns the default file names inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Model:   filepath.Join(dir, ModelFile),
		Scaler:  filepath.Join(dir, ScalerFile),
		Imputer: filepath.Join(dir, ImputerFile),
		Medians: filepath.Join(dir, MediansFile),
		Modes:   filepath.Join(dir, ModesFile),
		Encoder: filepath.Join(dir, EncoderFile),
	}
}

// Encoding holds the training-time categories of every one-hot encoded column.
type Encoding struct {
	DropFirst bool
	Columns   []EncodedColumn
}

// Indicators returns the indicator column names produced for col, in training order.
func (e Encoding) Indicators(col EncodedColumn) []string {
	cats := col.Categories
	if e.DropFirst && len(cats) > 0 {
		cats = cats[1:]
	}
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = domain.IndicatorName(col.Name, c)
	}
	return out
}

// Set is the immutable bundle of fitted objects loaded at startup.
type Set struct {
	Classifier model.Classifier
	Scaler     *model.StandardScaler
	Imputer    *model.KNNImputer
	Medians    map[string]float64
	Modes      map[string]string
	Encoding   Encoding
}

// Schema returns the trained feature order: the classifier's feature names.
func (s *Set) Schema() []string { return s.Classifier.Features() }

// RawFeature is one input field before encoding.
type RawFeature struct {
	Name        string
	Categorical bool
}

// RawFeatures collapses the schema back to its source columns: every indicator
// column is replaced by the column it was encoded from, at its first
// appearance.
func (s *Set) RawFeatures() []RawFeature {
	source := make(map[string]string)
	for _, col := range s.Encoding.Columns {
		for _, ind := range s.Encoding.Indicators(col) {
			source[ind] = col.Name
		}
	}
	var out []RawFeature
	seen := make(map[string]bool)
	for _, name := range s.Schema() {
		raw, categorical := source[name]
		if !categorical {
			raw = name
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, RawFeature{Name: raw, Categorical: categorical})
	}
	return out
}

// Load reads and cross-checks all artifacts. Any failure is an artifact failure.
func Load(p Paths) (*Set, error) {
	var set Set
	var err error

	if set.Classifier, err = loadFile(p.Model, "classifier", LoadClassifier); err != nil {
		return nil, err
	}
	if set.Scaler, err = loadFile(p.Scaler, "scaler", LoadScaler); err != nil {
		return nil, err
	}
	if set.Imputer, err = loadFile(p.Imputer, "imputer", LoadImputer); err != nil {
		return nil, err
	}
	if set.Medians, err = loadFile(p.Medians, "medians", LoadMedians); err != nil {
		return nil, err
	}
	if set.Modes, err = loadFile(p.Modes, "modes", LoadModes); err != nil {
		return nil, err
	}
	if set.Encoding, err = loadFile(p.Encoder, "encoder", LoadEncoding); err != nil {
		return nil, err
	}

	if err := set.check(); err != nil {
		return nil, domain.Fail(domain.FailureArtifact, "check artifacts", err)
	}
	return &set, nil
}

// check verifies the artifacts agree on column names.
func (s *Set) check() error {
	schema := s.Schema()
	for _, f := range s.Scaler.Features() {
		if !slices.Contains(schema, f) {
			return fmt.Errorf("scaler column %q is not in the model schema", f)
		}
	}
	var missing []string
	for _, col := range s.Encoding.Columns {
		for _, ind := range s.Encoding.Indicators(col) {
			if !slices.Contains(schema, ind) {
				missing = append(missing, ind)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("encoder columns not in the model schema: %s", strings.Join(missing, ", "))
	}
	return nil
}

func loadFile[T any](path, kind string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	op := fmt.Sprintf("load %s artifact %s", kind, path)
	if path == "" {
		return zero, domain.Fail(domain.FailureArtifact, op, errors.New("no path configured"))
	}
	f, err := os.Open(path)
	if err != nil {
		return zero, domain.Fail(domain.FailureArtifact, op, err)
	}
	defer f.Close()

	v, err := decode(f)
	if err != nil {
		return zero, domain.Fail(domain.FailureArtifact, op, err)
	}
	return v, nil
}

func classes(cs []int) ([2]int, error) {
	if len(cs) != 2 {
		return [2]int{}, fmt.Errorf("binary classifier needs 2 classes, got %d", len(cs))
	}
	return [2]int{cs[0], cs[1]}, nil
}

// LoadClassifier decodes a LogisticRegression or RandomForestClassifier artifact.
func LoadClassifier(r io.Reader) (model.Classifier, error) {
	env, err := decode(r, NameLogisticRegression, NameRandomForest)
	if err != nil {
		return nil, err
	}

	switch env.ModelSpec.Name {
	case NameLogisticRegression:
		var p LogisticRegressionParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		cs, err := classes(p.Classes)
		if err != nil {
			return nil, err
		}
		return model.NewLogisticRegression(p.FeatureNamesIn, cs, p.Coef, p.Intercept)
	default:
		var p RandomForestParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		cs, err := classes(p.Classes)
		if err != nil {
			return nil, err
		}
		trees := make([]model.Tree, len(p.Estimators))
		for i, e := range p.Estimators {
			trees[i] = model.Tree{
				ChildrenLeft:  e.ChildrenLeft,
				ChildrenRight: e.ChildrenRight,
				Feature:       e.Feature,
				Threshold:     e.Threshold,
				Value:         e.Value,
			}
		}
		return model.NewRandomForest(p.FeatureNamesIn, cs, trees)
	}
}

// LoadScaler decodes a StandardScaler artifact. Without feature_names_in the
// scaler is assumed to cover the continuous measurement columns.
func LoadScaler(r io.Reader) (*model.StandardScaler, error) {
	env, err := decode(r, NameStandardScaler)
	if err != nil {
		return nil, err
	}
	var p StandardScalerParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	features := p.FeatureNamesIn
	if len(features) == 0 {
		features = slices.Clone(domain.ContinuousColumns)
	}
	return model.NewStandardScaler(features, p.Mean, p.Scale)
}

// LoadImputer decodes a KNNImputer artifact.
func LoadImputer(r io.Reader) (*model.KNNImputer, error) {
	env, err := decode(r, NameKNNImputer)
	if err != nil {
		return nil, err
	}
	var p KNNImputerParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	weighting, err := model.ParseWeighting(p.Weights)
	if err != nil {
		return nil, err
	}
	if len(p.FitX) == 0 {
		return nil, errors.New("fit_x is empty")
	}

	cols := len(p.FeatureNamesIn)
	if cols == 0 {
		return nil, errors.New("feature_names_in is empty")
	}
	data := make([]float64, 0, len(p.FitX)*cols)
	for i, row := range p.FitX {
		if len(row) != cols {
			return nil, fmt.Errorf("fit_x row %d has %d values, want %d", i, len(row), cols)
		}
		for _, v := range row {
			if v == nil {
				data = append(data, math.NaN())
				continue
			}
			data = append(data, *v)
		}
	}
	ref := mat.NewDense(len(p.FitX), cols, data)
	return model.NewKNNImputer(p.FeatureNamesIn, p.NNeighbors, weighting, ref)
}

// LoadMedians decodes the median map.
func LoadMedians(r io.Reader) (map[string]float64, error) {
	env, err := decode(r, NameMedians)
	if err != nil {
		return nil, err
	}
	var p MediansParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if p.Values == nil {
		return nil, errors.New("values are required")
	}
	return p.Values, nil
}

// LoadModes decodes the mode map.
func LoadModes(r io.Reader) (map[string]string, error) {
	env, err := decode(r, NameModes)
	if err != nil {
		return nil, err
	}
	var p ModesParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if p.Values == nil {
		return nil, errors.New("values are required")
	}
	return p.Values, nil
}

// LoadEncoding decodes a OneHotEncoder artifact.
func LoadEncoding(r io.Reader) (Encoding, error) {
	env, err := decode(r, NameOneHotEncoder)
	if err != nil {
		return Encoding{}, err
	}
	var p OneHotEncoderParams
	if err := json.Unmarshal(env.Params, &p); err != nil {
		return Encoding{}, fmt.Errorf("decode params: %w", err)
	}
	for _, c := range p.Columns {
		if c.Name == "" {
			return Encoding{}, errors.New("encoded column without a name")
		}
		if len(c.Categories) == 0 {
			return Encoding{}, fmt.Errorf("column %q has no categories", c.Name)
		}
	}
	return Encoding{DropFirst: p.DropFirst, Columns: p.Columns}, nil
}
