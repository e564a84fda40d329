package resolution

import (
	"context"

	"github.com/mmdatafocus/dimension_resolver/ledger"
	"github.com/mmdatafocus/dimension_resolver/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/mmdatafocus/dimension_resolver/resolution")

// RunBatch resolves lines on up to workers goroutines. Each worker keeps its own
// ledger; they are merged into led once every line is done, so led only changes on
// success. The returned slice is in input order.
func RunBatch(ctx context.Context, p *Pipeline, lines []models.CanonicalInvoiceLine, workers int, led *ledger.Ledger) ([]models.ResolvedInvoiceLine, error) {
	ctx, span := tracer.Start(ctx, "resolution.RunBatch", trace.WithAttributes(
		attribute.Int("lines", len(lines)),
		attribute.Int("workers", workers),
	))
	defer span.End()

	if workers < 1 {
		workers = 1
	}
	if workers > len(lines) {
		workers = max(len(lines), 1)
	}

	out := make([]models.ResolvedInvoiceLine, len(lines))
	locals := make([]*ledger.Ledger, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		local := ledger.New()
		locals[w] = local
		g.Go(func() error {
			for i := w; i < len(lines); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = models.ResolvedInvoiceLine{
					Line:       lines[i],
					Dimensions: p.ResolveWith(lines[i], local),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if led != nil {
		for _, local := range locals {
			led.Merge(local)
		}
	}
	return out, nil
}
