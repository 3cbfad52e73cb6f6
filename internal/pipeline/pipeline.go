package pipeline

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/raincast/internal/artifact"
	"github.com/couchcryptid/raincast/internal/domain"
	"github.com/couchcryptid/raincast/internal/observability"
	"github.com/go-gota/gota/dataframe"
)

// Stage names, as reported in errors, logs and the stage duration metric.
const (
	StageNormalize   = "normalize"
	StageImpute      = "impute"
	StageEncode      = "encode"
	StageAlign       = "align"
	StageStandardize = "standardize"
	StagePredict     = "predict"
)

// Options tunes the pipeline beyond what the artifacts define.
type Options struct {
	// Fallback decides how direction labels outside the compass are treated.
	Fallback domain.DirectionFallback
}

// Result is the outcome of scoring a frame.
type Result struct {
	// Predictions holds one class label per input row, in row order.
	Predictions []int
	// Probabilities holds the positive-class probability per input row.
	Probabilities []float64
	// Prepared is the input after direction normalization and imputation,
	// before encoding: the values scored output reports back.
	Prepared dataframe.DataFrame
	// Features is the aligned, standardized frame the classifier saw.
	Features   dataframe.DataFrame
	Alignment  AlignmentReport
	Imputation ImputeStats
	Encoding   EncodeStats
	// UnknownDirections counts direction labels outside the 16 compass points.
	UnknownDirections int
}

// Pipeline runs the preprocessing stages and the classifier in a fixed order:
// normalize, impute, encode, align, standardize, predict.
type Pipeline struct {
	normalizer   *domain.DirectionNormalizer
	imputer      *Imputer
	encoder      *Encoder
	aligner      *SchemaAligner
	standardizer *Standardizer
	predictor    *Predictor
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Pipeline from a loaded artifact set.
func New(set *artifact.Set, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		normalizer:   domain.NewDirectionNormalizer(opts.Fallback),
		imputer:      NewImputer(set.Imputer, set.Medians, set.Modes),
		encoder:      NewEncoder(set.Encoding),
		aligner:      NewSchemaAligner(set.Schema()),
		standardizer: NewStandardizer(set.Scaler),
		predictor:    NewPredictor(set.Classifier),
		logger:       logger,
		metrics:      metrics,
	}
}

// Schema returns the trained feature order.
func (p *Pipeline) Schema() []string { return p.aligner.Schema() }

// Predict scores every row of df. Frames are values, so df itself is never
// modified. Any stage failure aborts the run with an error naming the stage.
func (p *Pipeline) Predict(ctx context.Context, df dataframe.DataFrame) (Result, error) {
	var res Result
	if df.Err != nil {
		return res, domain.Fail(domain.FailureInput, "predict", df.Err)
	}
	if df.Nrow() == 0 {
		return res, domain.Fail(domain.FailureInput, "predict", domain.ErrNoRows)
	}
	work := df

	stages := []struct {
		name string
		run  func() error
	}{
		{StageNormalize, func() error {
			var err error
			work, res.UnknownDirections, err = p.normalizer.Normalize(work, domain.DirectionColumns)
			return err
		}},
		{StageImpute, func() error {
			var err error
			work, res.Imputation, err = p.imputer.Impute(work)
			res.Prepared = work
			return err
		}},
		{StageEncode, func() error {
			var err error
			work, res.Encoding, err = p.encoder.Encode(work)
			return err
		}},
		{StageAlign, func() error {
			var err error
			work, res.Alignment, err = p.aligner.Align(work)
			return err
		}},
		{StageStandardize, func() error {
			var err error
			work, err = p.standardizer.Standardize(work)
			return err
		}},
		{StagePredict, func() error {
			var err error
			res.Predictions, res.Probabilities, err = p.predictor.Predict(work)
			return err
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		start := clock.Now()
		err := s.run()
		p.metrics.StageDuration.WithLabelValues(s.name).Observe(clock.Since(start).Seconds())
		if err != nil {
			p.logger.Debug("stage failed", "stage", s.name, "error", err)
			return Result{}, wrapStage(s.name, err)
		}
	}
	res.Features = work

	p.record(res)
	return res, nil
}

// wrapStage names the stage in err while keeping its failure kind.
func wrapStage(stage string, err error) error {
	return domain.Fail(domain.FailureOf(err), "stage "+stage, err)
}

func (p *Pipeline) record(res Result) {
	if res.UnknownDirections > 0 {
		p.logger.Warn("unrecognised wind directions", "count", res.UnknownDirections)
	}
	if res.Encoding.Unseen > 0 {
		p.logger.Debug("values outside training categories encoded as zeros", "count", res.Encoding.Unseen)
	}
	if res.Alignment.Repaired() {
		p.logger.Info("input repaired to the model schema",
			"zero_filled", res.Alignment.Missing,
			"dropped", res.Alignment.Unexpected,
		)
	}
	p.logger.Debug("schema alignment",
		"present", res.Alignment.Present,
		"missing", res.Alignment.Missing,
		"unexpected", res.Alignment.Unexpected,
	)
	p.logger.Info("rows scored",
		"rows", len(res.Predictions),
		"seeded", res.Imputation.Seeded,
		"refined", res.Imputation.Refined,
		"mode_filled", res.Imputation.ModeFilled,
		"zero_filled_columns", len(res.Alignment.Missing),
		"dropped_columns", len(res.Alignment.Unexpected),
	)

	p.metrics.RowsScored.Add(float64(len(res.Predictions)))
	for _, label := range res.Predictions {
		p.metrics.Predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	}
	p.metrics.ImputedValues.WithLabelValues("median").Add(float64(res.Imputation.Seeded))
	p.metrics.ImputedValues.WithLabelValues("knn").Add(float64(res.Imputation.Refined))
	p.metrics.ImputedValues.WithLabelValues("mode").Add(float64(res.Imputation.ModeFilled))
	p.metrics.MissingColumns.Set(float64(len(res.Alignment.Missing)))
	p.metrics.UnexpectedCols.Set(float64(len(res.Alignment.Unexpected)))
}
