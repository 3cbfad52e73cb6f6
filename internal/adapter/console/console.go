// Package console runs the operator dialogue on a terminal: the mode menu,
// manual field entry and the spoken form of a prediction.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Menu options.
const (
	OptionCSV    = "1"
	OptionManual = "2"
)

// errInputEnded is returned when the input stream closes mid-dialogue.
var errInputEnded = errors.New("input ended before all values were entered")

// Console reads answers line by line from in and writes prompts to out.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

// New creates a Console.
func New(in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, logger: logger}
}

// Ask prints prompt and returns the next input line without surrounding space.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", domain.Fail(domain.FailureInput, "read answer", err)
		}
		return "", domain.Fail(domain.FailureInput, "read answer", errInputEnded)
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// Menu shows the mode menu and returns the chosen option as typed.
func (c *Console) Menu() (string, error) {
	fmt.Fprintln(c.out, "Select an option:")
	fmt.Fprintln(c.out, "1. Predict from CSV file")
	fmt.Fprintln(c.out, "2. Enter data manually")
	return c.Ask("Option number: ")
}

// AskPath asks for the CSV file to score.
func (c *Console) AskPath() (string, error) {
	return c.Ask("CSV file path: ")
}

// ReadObservation prompts once per raw feature and returns a one-row frame.
// Numeric answers that do not parse, and empty answers, become missing values.
func (c *Console) ReadObservation(features []artifact.RawFeature) (dataframe.DataFrame, error) {
	cols := make([]series.Series, 0, len(features))
	for _, f := range features {
		answer, err := c.Ask(f.Name + ": ")
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		if f.Categorical {
			if domain.IsMissingMarker(answer) {
				answer = ""
			}
			cols = append(cols, domain.Categorical(f.Name, []string{answer}))
			continue
		}
		cols = append(cols, domain.Numeric(f.Name, []float64{c.coerce(f.Name, answer)}))
	}
	df, err := domain.NewFrame(cols...)
	if err != nil {
		return dataframe.DataFrame{}, domain.Fail(domain.FailureInput, "read observation", err)
	}
	return df, nil
}

// coerce parses a numeric answer, degrading to a missing value.
func (c *Console) coerce(name, answer string) float64 {
	if domain.IsMissingMarker(answer) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil || math.IsInf(v, 0) {
		c.logger.Warn("value is not a number, treating it as missing", "column", name, "value", answer)
		return math.NaN()
	}
	return v
}

// Sentence renders a class label for the operator.
func Sentence(label int) string {
	if label == 1 {
		return "Lloverá"
	}
	return "No lloverá"
}

// ShowPrediction prints the single-row verdict.
func (c *Console) ShowPrediction(label int) {
	fmt.Fprintf(c.out, "Prediction: %s\n", Sentence(label))
}

// ShowSaved reports where scored rows were written.
func (c *Console) ShowSaved(path string, rows int) {
	fmt.Fprintf(c.out, "Predictions for %d rows saved to %s\n", rows, path)
}

// ShowInvalidOption reports an unknown menu option.
func (c *Console) ShowInvalidOption(option string) {
	fmt.Fprintf(c.out, "Invalid option %q. Please try again.\n", option)
}
