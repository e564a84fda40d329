// Package resolution turns a canonical invoice line into its reporting dimensions by
// running an ordered chain of lookups against a reference snapshot.
package resolution

import (
	"sync"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/sirupsen/logrus"
)

// Recorder collects conflicts and per-line counters. *ledger.Ledger implements it.
type Recorder interface {
	ConflictRecorder
	RecordLine(source models.SourceSystem, d models.ResolvedDimensions)
}

type Pipeline struct {
	snapshot *reference.Snapshot
	steps    []Step
	logger   logrus.FieldLogger
}

type pipelineOptions struct {
	logger  logrus.FieldLogger
	memoize bool
	steps   []Step
}

type Option func(*pipelineOptions)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *pipelineOptions) { o.logger = logger }
}

// WithEdiMemo caches EDI lookups per invoice number for the lifetime of the pipeline.
func WithEdiMemo(enabled bool) Option {
	return func(o *pipelineOptions) { o.memoize = enabled }
}

// WithSteps replaces the default step chain.
func WithSteps(steps ...Step) Option {
	return func(o *pipelineOptions) { o.steps = steps }
}

func NewPipeline(snapshot *reference.Snapshot, opts ...Option) *Pipeline {
	o := pipelineOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	steps := o.steps
	if steps == nil {
		var finder EdiFinder
		if o.memoize {
			finder = &ediMemo{snapshot: snapshot}
		}
		steps = DefaultSteps(finder)
	}
	logger := o.logger
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Pipeline{snapshot: snapshot, steps: steps, logger: logger}
}

// StepNames lists the chain in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Resolve runs the chain for one line without recording anything.
func (p *Pipeline) Resolve(line models.CanonicalInvoiceLine) models.ResolvedDimensions {
	return p.ResolveWith(line, nil)
}

// ResolveWith runs the chain for one line. rec may be nil.
func (p *Pipeline) ResolveWith(line models.CanonicalInvoiceLine, rec Recorder) models.ResolvedDimensions {
	b := NewDimensionsBuilder()
	sc := p.stepContext(line, rec)
	for _, s := range p.steps {
		s.Apply(b, sc)
	}
	dims := b.Finalize()
	if rec != nil {
		rec.RecordLine(line.Source, dims)
	}
	return dims
}

// StepResult describes what one step contributed to a line.
type StepResult struct {
	Step         string        `json:"step"`
	FieldsFilled []string      `json:"fields_filled"`
	Notes        []models.Note `json:"notes"`
}

// Explain resolves a line and reports each step's contribution. Conflicts are not
// recorded.
func (p *Pipeline) Explain(line models.CanonicalInvoiceLine) (models.ResolvedDimensions, []StepResult) {
	b := NewDimensionsBuilder()
	sc := p.stepContext(line, nil)
	results := make([]StepResult, 0, len(p.steps))
	for _, s := range p.steps {
		before := b.Finalize()
		s.Apply(b, sc)
		after := b.Finalize()
		results = append(results, StepResult{
			Step:         s.Name(),
			FieldsFilled: filledFields(before, after),
			Notes:        after.Notes[len(before.Notes):],
		})
	}
	return b.Finalize(), results
}

func (p *Pipeline) stepContext(line models.CanonicalInvoiceLine, rec Recorder) StepContext {
	sc := StepContext{
		Line:     line,
		Snapshot: p.snapshot,
		Logger:   p.logger,
	}
	if rec != nil {
		sc.Conflicts = rec
	}
	return sc
}

func filledFields(before, after models.ResolvedDimensions) []string {
	var out []string
	check := func(name string, b, a *string) {
		if b == nil && a != nil {
			out = append(out, name)
		}
	}
	check("building_code", before.BuildingCode, after.BuildingCode)
	check("building_business_unit", before.BuildingBusinessUnit, after.BuildingBusinessUnit)
	check("emid", before.Emid, after.Emid)
	check("service_area", before.ServiceArea, after.ServiceArea)
	check("job_code", before.JobCode, after.JobCode)
	check("operational_region", before.OperationalRegion, after.OperationalRegion)
	check("paying_region", before.PayingRegion, after.PayingRegion)
	return out
}

type ediHit struct {
	entry models.EdiEntry
	match reference.EdiMatch
}

// ediMemo caches snapshot EDI lookups keyed by normalized invoice number. The
// snapshot is immutable so cached answers never go stale.
type ediMemo struct {
	snapshot *reference.Snapshot
	cache    sync.Map
}

func (m *ediMemo) FindEdiEntry(invoiceNumber string) (models.EdiEntry, reference.EdiMatch) {
	key := reference.NormalizeInvoiceNumber(invoiceNumber)
	if v, ok := m.cache.Load(key); ok {
		hit := v.(ediHit)
		return hit.entry, hit.match
	}
	entry, match := m.snapshot.FindEdiEntry(key)
	m.cache.Store(key, ediHit{entry: entry, match: match})
	return entry, match
}
