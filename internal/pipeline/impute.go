package pipeline

import (
	"fmt"
	"math"

	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/model"
	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

// ImputeStats counts the cells filled by each imputation step.
type ImputeStats struct {
	Seeded     int
	Refined    int
	ModeFilled int
}

// Imputer fills missing values: numeric cells are seeded with training medians
// and then re-estimated from their nearest training rows; categorical cells get
// the training mode.
type Imputer struct {
	knn     *model.KNNImputer
	medians map[string]float64
	modes   map[string]string
}

// NewImputer creates an Imputer. Any of its collaborators may be nil or empty,
// in which case that step is skipped.
func NewImputer(knn *model.KNNImputer, medians map[string]float64, modes map[string]string) *Imputer {
	return &Imputer{knn: knn, medians: medians, modes: modes}
}

// Impute returns df with missing cells filled. Cells that hold a value are
// never modified. With a k-NN imputer only its feature columns are seeded and
// refined; without one every numeric column with a median is seeded.
//
// A column with a mode is categorical whatever its cells looked like, so a
// column read with only missing cells is converted before filling.
func (im *Imputer) Impute(df dataframe.DataFrame) (dataframe.DataFrame, ImputeStats, error) {
	var stats ImputeStats
	masks := make(map[string][]bool)

	for _, name := range im.numericTargets(df) {
		col := df.Col(name)
		if !domain.IsNumeric(col) {
			continue
		}
		mask := col.IsNaN()
		if !anyMissing(mask) {
			continue
		}
		masks[name] = mask
		median, ok := im.medians[name]
		if !ok {
			continue
		}
		values := col.Float()
		for i := range values {
			if mask[i] {
				values[i] = median
				stats.Seeded++
			}
		}
		if df = df.Mutate(domain.Numeric(name, values)); df.Err != nil {
			return df, stats, df.Err
		}
	}

	if im.knn != nil && len(masks) > 0 {
		var err error
		df, stats.Refined, err = im.refine(df, masks)
		if err != nil {
			return df, stats, err
		}
	}

	for _, name := range df.Names() {
		mode, ok := im.modes[name]
		if !ok || mode == "" {
			continue
		}
		values := domain.Texts(df.Col(name))
		for i, v := range values {
			if v == "" {
				values[i] = mode
				stats.ModeFilled++
			}
		}
		if df = df.Mutate(domain.Categorical(name, values)); df.Err != nil {
			return df, stats, df.Err
		}
	}
	return df, stats, nil
}

func (im *Imputer) numericTargets(df dataframe.DataFrame) []string {
	if im.knn == nil {
		return df.Names()
	}
	var out []string
	for _, name := range im.knn.Features() {
		if domain.HasColumn(df, name) {
			out = append(out, name)
		}
	}
	return out
}

// refine runs the neighbor estimate over the imputer's feature columns. Features
// the frame lacks, or holds as text, take no part in the distance.
func (im *Imputer) refine(df dataframe.DataFrame, masks map[string][]bool) (dataframe.DataFrame, int, error) {
	features := im.knn.Features()
	rows := df.Nrow()
	x := mat.NewDense(rows, len(features), nil)
	mask := make([][]bool, rows)
	for i := range mask {
		mask[i] = make([]bool, len(features))
	}

	for j, name := range features {
		var values []float64
		if domain.HasColumn(df, name) {
			if col := df.Col(name); domain.IsNumeric(col) {
				values = col.Float()
			}
		}
		m := masks[name]
		for i := 0; i < rows; i++ {
			if values == nil {
				x.Set(i, j, math.NaN())
				continue
			}
			x.Set(i, j, values[i])
			mask[i][j] = m != nil && m[i]
		}
	}

	n, err := im.knn.Refine(x, mask)
	if err != nil {
		return df, 0, fmt.Errorf("knn refine: %w", err)
	}
	for j, name := range features {
		if masks[name] == nil {
			continue
		}
		values := make([]float64, rows)
		mat.Col(values, j, x)
		if df = df.Mutate(domain.Numeric(name, values)); df.Err != nil {
			return df, n, df.Err
		}
	}
	return df, n, nil
}

func anyMissing(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}
