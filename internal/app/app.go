// Package app binds configuration, artifacts, the scoring pipeline and the
// terminal and file adapters into the runnable modes.
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/couchcryptid/raincast/internal/adapter/columnslog"
	"github.com/couchcryptid/raincast/internal/adapter/console"
	"github.com/couchcryptid/raincast/internal/adapter/csvio"
	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/config"
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/observability"
	"github.com/couchcryptid/raincast/internal/pipeline"
	"github.com/go-gota/gota/dataframe"
)

// Run modes, as reported in the runs metric.
const (
	ModeCSV      = "csv"
	ModeManual   = "manual"
	ModeFeatures = "features"
)

// App runs one scoring mode per invocation.
type App struct {
	cfg      *config.Config
	set      *artifact.Set
	pipeline *pipeline.Pipeline
	console  *console.Console
	stdout   io.Writer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates an App around an already loaded artifact set.
func New(cfg *config.Config, set *artifact.Set, con *console.Console, stdout io.Writer, logger *slog.Logger, metrics *observability.Metrics) *App {
	return &App{
		cfg:      cfg,
		set:      set,
		pipeline: pipeline.New(set, pipeline.Options{Fallback: cfg.UnknownDirection}, logger, metrics),
		console:  con,
		stdout:   stdout,
		logger:   logger,
		metrics:  metrics,
	}
}

// RunInteractive shows the mode menu and runs the chosen mode. An unknown
// option is reported to the operator and is not an error.
func (a *App) RunInteractive(ctx context.Context) error {
	option, err := a.console.Menu()
	if err != nil {
		return err
	}
	switch option {
	case console.OptionCSV:
		path, err := a.console.AskPath()
		if err != nil {
			return err
		}
		return a.RunCSV(ctx, path)
	case console.OptionManual:
		return a.RunManual(ctx)
	default:
		a.console.ShowInvalidOption(option)
		return nil
	}
}

// RunCSV scores every row of the CSV file at path and writes the rows, with
// directions normalized and gaps imputed, plus a prediction column to the
// configured output file. Nothing is written when reading or scoring fails.
func (a *App) RunCSV(ctx context.Context, path string) (err error) {
	defer a.finish(ModeCSV, &err)

	df, err := csvio.ReadFile(path)
	if err != nil {
		return err
	}
	a.logger.Info("input loaded", "path", path, "rows", df.Nrow(), "columns", df.Ncol())

	res, err := a.score(ctx, df)
	if err != nil {
		return err
	}
	if err := csvio.WriteFile(a.cfg.OutputFile, res.Prepared, res.Predictions); err != nil {
		return err
	}
	a.console.ShowSaved(a.cfg.OutputFile, len(res.Predictions))
	return nil
}

// RunManual prompts for one observation and prints its prediction.
func (a *App) RunManual(ctx context.Context) (err error) {
	defer a.finish(ModeManual, &err)

	df, err := a.console.ReadObservation(a.set.RawFeatures())
	if err != nil {
		return err
	}
	res, err := a.score(ctx, df)
	if err != nil {
		return err
	}
	a.console.ShowPrediction(res.Predictions[0])
	return nil
}

// RunFeatures scores the CSV file at path and writes the model-ready feature
// table with probabilities and predictions to stdout.
func (a *App) RunFeatures(ctx context.Context, path string) (err error) {
	defer a.finish(ModeFeatures, &err)

	df, err := csvio.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := a.score(ctx, df)
	if err != nil {
		return err
	}
	if err := csvio.WriteFeatures(a.stdout, res.Features, res.Probabilities, res.Predictions); err != nil {
		return domain.Fail(domain.FailureInternal, "write features", err)
	}
	return nil
}

// score runs the pipeline and records the alignment in the columns log.
func (a *App) score(ctx context.Context, df dataframe.DataFrame) (pipeline.Result, error) {
	res, err := a.pipeline.Predict(ctx, df)
	if err != nil {
		return pipeline.Result{}, err
	}
	if err := columnslog.WriteFile(a.cfg.ColumnsLogFile, res.Alignment); err != nil {
		return pipeline.Result{}, err
	}
	return res, nil
}

// finish records the run outcome and exports metrics.
func (a *App) finish(mode string, err *error) {
	outcome := "success"
	if *err != nil {
		outcome = domain.FailureOf(*err).String()
		a.logger.Error("run failed", "mode", mode, "failure", outcome, "error", *err)
	}
	a.metrics.Runs.WithLabelValues(mode, outcome).Inc()
	if werr := a.metrics.WriteTextfile(a.cfg.MetricsFile); werr != nil {
		a.logger.Warn("metrics export failed", "error", werr)
	}
}
