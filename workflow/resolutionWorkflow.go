package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/dimension_resolver/appctx"
	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/ledger"
	"github.com/mmdatafocus/dimension_resolver/loader"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/models/reports"
	"github.com/mmdatafocus/dimension_resolver/normalizer"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/resolution"
	"github.com/sirupsen/logrus"
)

var ErrNoInput = errors.New("no invoice batch configured")

// RunResult is everything one resolution run produced.
type RunResult struct {
	RunId      string
	StartedAt  time.Time
	FinishedAt time.Time
	Snapshot   reference.Stats
	Lines      []models.ResolvedInvoiceLine
	Report     ledger.Report
	OutputPath string
}

type batchInput struct {
	source models.SourceSystem
	path   string
	sheet  string
}

// RunResolution loads the reference tables, normalizes and resolves both invoice
// batches and writes the run workbook when cfg.OutputPath is set. Reference errors
// abort before any line is read.
func RunResolution(ctx context.Context, logger *logrus.Logger, cfg config.RunConfig) (*RunResult, error) {
	runId, ok := appctx.GetRunId(ctx)
	if !ok {
		runId = uuid.NewString()
		ctx = appctx.SetRunId(ctx, runId)
	}
	log := logger.WithField("run_id", runId)
	started := time.Now().UTC()

	tables, err := loader.LoadReferenceTables(ctx, loader.ReferenceSourceFromConfig(cfg), log)
	if err != nil {
		config.LogError(log, "resolutionWorkflow.go", "RunResolution", "LoadReferenceTables", cfg.ReferencePath, err)
		return nil, err
	}
	snap, err := reference.NewSnapshot(tables, reference.WithLogger(log))
	if err != nil {
		config.LogError(log, "resolutionWorkflow.go", "RunResolution", "NewSnapshot", cfg.ReferencePath, err)
		return nil, err
	}
	config.LogInfo(log, "resolutionWorkflow.go", "RunResolution", "reference snapshot ready", snap.Stats())

	led := ledger.New()
	lines, err := readBatches(ctx, log, cfg, led)
	if err != nil {
		return nil, err
	}

	pipeline := resolution.NewPipeline(snap,
		resolution.WithLogger(log),
		resolution.WithEdiMemo(cfg.MemoizeEdi),
	)
	resolved, err := resolution.RunBatch(ctx, pipeline, lines, cfg.Workers, led)
	if err != nil {
		config.LogError(log, "resolutionWorkflow.go", "RunResolution", "RunBatch", len(lines), err)
		return nil, err
	}

	result := &RunResult{
		RunId:      runId,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Snapshot:   snap.Stats(),
		Lines:      resolved,
		Report:     led.Report(),
	}

	if cfg.OutputPath != "" {
		if err := reports.SaveRunWorkbook(ctx, cfg.OutputPath, result.Lines, result.Report); err != nil {
			config.LogError(log, "resolutionWorkflow.go", "RunResolution", "SaveRunWorkbook", cfg.OutputPath, err)
			return nil, err
		}
		result.OutputPath = cfg.OutputPath
	}

	config.LogInfo(log, "resolutionWorkflow.go", "RunResolution", "run finished", result.Report.Summary)
	return result, nil
}

func readBatches(ctx context.Context, log logrus.FieldLogger, cfg config.RunConfig, led *ledger.Ledger) ([]models.CanonicalInvoiceLine, error) {
	inputs := []batchInput{
		{source: models.SourceSystemA, path: cfg.SourceAPath, sheet: cfg.SourceASheet},
		{source: models.SourceSystemB, path: cfg.SourceBPath, sheet: cfg.SourceBSheet},
	}

	var lines []models.CanonicalInvoiceLine
	read := 0
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		if config.SkipSourceFor(string(in.source)) {
			log.WithField("source", in.source).Warn("source skipped by RESOLVER_SKIP_SOURCES")
			continue
		}
		rows, err := loader.ReadTable(ctx, in.path, in.sheet)
		if err != nil {
			config.LogError(log, "resolutionWorkflow.go", "readBatches", "ReadTable", in.path, err)
			return nil, fmt.Errorf("source %s: %w", in.source, err)
		}
		batch, rejected, err := normalizer.NormalizeBatch(rows, in.source)
		if err != nil {
			config.LogError(log, "resolutionWorkflow.go", "readBatches", "NormalizeBatch", in.path, err)
			return nil, fmt.Errorf("source %s: %w", in.source, err)
		}
		led.AppendRejected(rejected...)
		if len(rejected) > 0 {
			log.WithFields(logrus.Fields{"source": in.source, "rejected": len(rejected)}).Warn("rows rejected during normalization")
		}
		lines = append(lines, batch...)
		read++
	}
	if read == 0 {
		return nil, ErrNoInput
	}
	return lines, nil
}
