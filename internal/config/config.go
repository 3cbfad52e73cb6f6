package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	ArtifactDir string
	Artifacts   artifact.Paths

	OutputFile     string
	ColumnsLogFile string
	MetricsFile    string

	UnknownDirection domain.DirectionFallback

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	dir := sharedcfg.EnvOrDefault("ARTIFACT_DIR", "model")
	artifactPath := func(key, fallback string) string {
		p := sharedcfg.EnvOrDefault(key, fallback)
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	fallback, ok := domain.ParseDirectionFallback(sharedcfg.EnvOrDefault("UNKNOWN_DIRECTION", "passthrough"))
	if !ok {
		return nil, errors.New("invalid UNKNOWN_DIRECTION: must be passthrough or other")
	}

	cfg := &Config{
		ArtifactDir: dir,
		Artifacts: artifact.Paths{
			Model:   artifactPath("MODEL_FILE", artifact.ModelFile),
			Scaler:  artifactPath("SCALER_FILE", artifact.ScalerFile),
			Imputer: artifactPath("IMPUTER_FILE", artifact.ImputerFile),
			Medians: artifactPath("MEDIANS_FILE", artifact.MediansFile),
			Modes:   artifactPath("MODES_FILE", artifact.ModesFile),
			Encoder: artifactPath("ENCODER_FILE", artifact.EncoderFile),
		},
		OutputFile:       sharedcfg.EnvOrDefault("OUTPUT_FILE", "output.csv"),
		ColumnsLogFile:   sharedcfg.EnvOrDefault("COLUMNS_LOG_FILE", "columns_log.txt"),
		MetricsFile:      sharedcfg.EnvOrDefault("METRICS_FILE", ""),
		UnknownDirection: fallback,
		LogLevel:         strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "text")),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", cfg.LogFormat)
	}

	return cfg, nil
}
