package artifact

// Exported parameter layouts, one per artifact kind. Field names follow the
// attribute names of the fitted scikit-learn objects they were exported from.

// Artifact names accepted in model_spec.name.
const (
	NameLogisticRegression = "LogisticRegression"
	NameRandomForest       = "RandomForestClassifier"
	NameStandardScaler     = "StandardScaler"
	NameKNNImputer         = "KNNImputer"
	NameMedians            = "Medians"
	NameModes              = "Modes"
	NameOneHotEncoder      = "OneHotEncoder"
)

// LogisticRegressionParams is a fitted binary logistic regression.
type LogisticRegressionParams struct {
	FeatureNamesIn []string  `json:"feature_names_in"`
	Classes        []int     `json:"classes"`
	Coef           []float64 `json:"coef"`
	Intercept      float64   `json:"intercept"`
}

// TreeParams is one estimator of a random forest in sklearn tree_ array form.
type TreeParams struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// RandomForestParams is a fitted binary random forest.
type RandomForestParams struct {
	FeatureNamesIn []string     `json:"feature_names_in"`
	Classes        []int        `json:"classes"`
	Estimators     []TreeParams `json:"estimators"`
}

// StandardScalerParams is a fitted standard scaler.
type StandardScalerParams struct {
	FeatureNamesIn []string  `json:"feature_names_in,omitempty"`
	Mean           []float64 `json:"mean"`
	Scale          []float64 `json:"scale"`
}

// KNNImputerParams is a fitted k-nearest-neighbors imputer. FitX keeps the
// reference rows, with null for values missing at fit time.
type KNNImputerParams struct {
	FeatureNamesIn []string     `json:"feature_names_in"`
	NNeighbors     int          `json:"n_neighbors"`
	Weights        string       `json:"weights"`
	FitX           [][]*float64 `json:"fit_x"`
}

// MediansParams maps numeric columns to their training-time median.
type MediansParams struct {
	Values map[string]float64 `json:"values"`
}

// ModesParams maps categorical columns to their training-time mode.
type ModesParams struct {
	Values map[string]string `json:"values"`
}

// EncodedColumn lists the training-time categories of one encoded column, in
// the order their indicator columns were produced.
type EncodedColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// OneHotEncoderParams lists the one-hot encoded columns.
type OneHotEncoderParams struct {
	DropFirst bool            `json:"drop_first"`
	Columns   []EncodedColumn `json:"columns"`
}
