package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/loader"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/normalizer"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/resolution"
	"github.com/mmdatafocus/dimension_resolver/utils"
)

// Resolves a single invoice line against the reference tables and prints what each
// step contributed. Nothing is recorded or written.
func main() {
	cfg := config.LoadRunConfig()
	flag.StringVar(&cfg.ReferencePath, "reference", cfg.ReferencePath, "Reference workbook (.xlsx) or directory of <sheet>.csv files")
	invoice := flag.String("invoice", "", "Invoice number (required)")
	source := flag.String("source", "A", "Source system: A or B")
	key := flag.String("key", "", "Location number (A) or job number (B)")
	customer := flag.String("customer", "", "Optional: source A customer label, for the job-code text fallback")
	flag.Parse()

	if strings.TrimSpace(*invoice) == "" || strings.TrimSpace(cfg.ReferencePath) == "" {
		fmt.Fprintln(os.Stderr, "-invoice and -reference are required")
		os.Exit(2)
	}
	src, err := models.ParseSourceSystem(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	logger := config.GetLogger()
	tables, err := loader.LoadReferenceTables(ctx, loader.ReferenceSourceFromConfig(cfg), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load reference tables: %v\n", err)
		os.Exit(1)
	}
	snap, err := reference.NewSnapshot(tables, reference.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid reference tables: %v\n", err)
		os.Exit(1)
	}

	line := models.CanonicalInvoiceLine{
		InvoiceNumber: strings.TrimSpace(*invoice),
		Source:        src,
		SecondaryKey:  utils.NilIfBlank(*key),
		Customer:      utils.NilIfBlank(*customer),
	}
	if src == models.SourceSystemA && line.Customer != nil {
		line.FallbackJobCode = normalizer.JobCodeFromCustomerLabel(*line.Customer)
	}

	dims, steps := resolution.NewPipeline(snap, resolution.WithLogger(logger)).Explain(line)
	out, _ := json.MarshalIndent(struct {
		Dimensions models.ResolvedDimensions `json:"dimensions"`
		Steps      []resolution.StepResult   `json:"steps"`
	}{dims, steps}, "", "  ")
	fmt.Println(string(out))
}
