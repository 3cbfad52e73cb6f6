package domain

// PredictionColumn is the column appended to scored CSV output.
const PredictionColumn = "Prediction"

// DirectionColumns hold 16-point compass labels.
var DirectionColumns = []string{"WindGustDir", "WindDir9am", "WindDir3pm"}

// ContinuousColumns are the measurement columns the scaler was fit on when the
// scaler artifact does not name its own features.
var ContinuousColumns = []string{
	"MinTemp", "MaxTemp", "Rainfall", "Evaporation", "Sunshine",
	"WindGustSpeed", "WindSpeed9am", "WindSpeed3pm", "Humidity9am",
	"Humidity3pm", "Pressure9am", "Pressure3pm", "Cloud9am", "Cloud3pm",
	"Temp9am", "Temp3pm",
}

// IndicatorName returns the one-hot column name for a category of a source
// column, e.g. ("WindGustDir", "N") -> "WindGustDir_N".
func IndicatorName(column, category string) string {
	return column + "_" + category
}
