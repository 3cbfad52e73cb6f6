// Command raincast scores weather observations for next-day rain with a
// pre-trained classifier.
//
// Usage:
//
//	raincast                  # interactive menu
//	raincast csv data.csv     # score a CSV file into OUTPUT_FILE
//	raincast manual           # enter one observation by hand
//	raincast features data.csv
//	raincast schema
//
// Settings come from the environment; see internal/config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/couchcryptid/raincast/internal/adapter/console"
	"github.com/couchcryptid/raincast/internal/app"
	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/config"
	"github.com/couchcryptid/raincast/internal/observability"
)

type interactiveCmd struct{}

func (interactiveCmd) Run(ctx context.Context, a *app.App) error {
	return a.RunInteractive(ctx)
}

type csvCmd struct {
	Path string `arg:"" type:"existingfile" help:"CSV file of observations to score."`
}

func (c *csvCmd) Run(ctx context.Context, a *app.App) error {
	return a.RunCSV(ctx, c.Path)
}

type manualCmd struct{}

func (manualCmd) Run(ctx context.Context, a *app.App) error {
	return a.RunManual(ctx)
}

type featuresCmd struct {
	Path string `arg:"" type:"existingfile" help:"CSV file of observations to transform."`
}

func (c *featuresCmd) Run(ctx context.Context, a *app.App) error {
	return a.RunFeatures(ctx, c.Path)
}

type schemaCmd struct{}

func (schemaCmd) Run(a *app.App) error {
	return a.RunSchema()
}

var cli struct {
	Interactive interactiveCmd `cmd:"" default:"1" help:"Choose a mode from a menu (default)."`
	CSV         csvCmd         `cmd:"" name:"csv" help:"Score every row of a CSV file and write it with a Prediction column."`
	Manual      manualCmd      `cmd:"" help:"Enter one observation field by field and print its prediction."`
	Features    featuresCmd    `cmd:"" help:"Print the model-ready feature table of a CSV file with probabilities."`
	Schema      schemaCmd      `cmd:"" help:"Print the features and categories the loaded model expects."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("raincast"),
		kong.Description("Next-day rain prediction from weather observations."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "raincast: config:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	metrics := observability.NewMetrics()

	set, err := artifact.Load(cfg.Artifacts)
	if err != nil {
		logger.Error("failed to load artifacts", "dir", cfg.ArtifactDir, "error", err)
		fmt.Fprintln(os.Stderr, "raincast:", app.Message(err))
		os.Exit(1)
	}
	logger.Debug("artifacts loaded", "features", len(set.Schema()), "dir", cfg.ArtifactDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, set, console.New(os.Stdin, os.Stdout, logger), os.Stdout, logger, metrics)
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(a); err != nil {
		fmt.Fprintln(os.Stderr, "raincast:", app.Message(err))
		stop()
		os.Exit(1)
	}
}
