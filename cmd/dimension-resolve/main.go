package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmdatafocus/dimension_resolver/appctx"
	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/workflow"
)

func main() {
	cfg := config.LoadRunConfig()

	flag.StringVar(&cfg.ReferencePath, "reference", cfg.ReferencePath, "Reference workbook (.xlsx) or directory of <sheet>.csv files; local or gs://")
	flag.StringVar(&cfg.SourceAPath, "source-a", cfg.SourceAPath, "Source A invoice batch (.xlsx or .csv)")
	flag.StringVar(&cfg.SourceASheet, "source-a-sheet", cfg.SourceASheet, "Sheet name for an .xlsx source A batch")
	flag.StringVar(&cfg.SourceBPath, "source-b", cfg.SourceBPath, "Source B invoice batch (.xlsx or .csv)")
	flag.StringVar(&cfg.SourceBSheet, "source-b-sheet", cfg.SourceBSheet, "Sheet name for an .xlsx source B batch")
	flag.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Output workbook path; local or gs://. Empty skips the workbook.")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel resolution workers")
	flag.BoolVar(&cfg.MemoizeEdi, "memoize-edi", cfg.MemoizeEdi, "Cache EDI lookups per invoice number")
	flag.BoolVar(&cfg.Persist, "persist", cfg.Persist, "Write the run to MySQL")
	flag.StringVar(&cfg.PublishTopic, "publish-topic", cfg.PublishTopic, "Pub/Sub topic for the run report; empty disables publishing")
	runID := flag.String("run-id", "", "Optional: run id (uuid). Generated when empty.")
	operator := flag.String("operator", os.Getenv("USER"), "Name recorded on the persisted run")
	logLevel := flag.String("log-level", "", "Optional: override LOG_LEVEL")
	flag.Parse()

	logger := config.GetLogger()
	if *logLevel != "" {
		if err := config.SetLogLevel(*logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -log-level: %v\n", err)
			os.Exit(2)
		}
	}
	if strings.TrimSpace(cfg.ReferencePath) == "" {
		fmt.Fprintln(os.Stderr, "-reference (or REFERENCE_WORKBOOK) is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if strings.TrimSpace(*runID) != "" {
		ctx = appctx.SetRunId(ctx, strings.TrimSpace(*runID))
	}
	ctx = appctx.SetOperator(ctx, *operator)

	result, err := workflow.RunResolution(ctx, logger, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolution failed: %v\n", err)
		os.Exit(1)
	}

	persisted := false
	if cfg.Persist {
		config.ConnectDatabaseWithRetry()
		db := config.GetDB()
		if db == nil {
			fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
			os.Exit(1)
		}
		if err := models.MigrateTable(db); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate tables: %v\n", err)
			os.Exit(1)
		}
		config.ConnectRedisWithRetry(ctx)

		lockKey := cfg.SourceAPath + "|" + cfg.SourceBPath
		if err := workflow.PersistRun(ctx, logger, db, result, lockKey, cfg.LockTTL); err != nil {
			fmt.Fprintf(os.Stderr, "failed to persist run %s: %v\n", result.RunId, err)
			os.Exit(1)
		}
		persisted = true
	}

	if cfg.PublishTopic != "" {
		if err := workflow.PublishRun(ctx, logger, cfg.PublishTopic, result, persisted); err != nil {
			fmt.Fprintf(os.Stderr, "failed to publish run report: %v\n", err)
			os.Exit(1)
		}
	}

	out, _ := json.MarshalIndent(struct {
		RunId   string            `json:"run_id"`
		Output  string            `json:"output"`
		Summary models.RunSummary `json:"summary"`
	}{result.RunId, result.OutputPath, result.Report.Summary}, "", "  ")
	fmt.Println(string(out))
}
