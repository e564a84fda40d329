package resolution

import (
	"fmt"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/sirupsen/logrus"
)

const (
	StepEdiLookup          = "edi-lookup"
	StepSecondaryKey       = "secondary-key"
	StepCrossReference     = "cross-reference"
	StepBuildingAttributes = "building-attributes"
	StepEmidAttributes     = "emid-attributes"
	StepJobCodeText        = "job-code-text"
)

// StepContext is everything a step may read besides the partial result.
type StepContext struct {
	Line      models.CanonicalInvoiceLine
	Snapshot  *reference.Snapshot
	Conflicts ConflictRecorder
	Logger    logrus.FieldLogger
}

// Step is one resolver in the ordered chain. A step only fills fields that are
// still unset.
type Step interface {
	Name() string
	Apply(b *DimensionsBuilder, sc StepContext)
}

// EdiFinder is the EDI lookup the first step uses; *reference.Snapshot satisfies it.
type EdiFinder interface {
	FindEdiEntry(invoiceNumber string) (models.EdiEntry, reference.EdiMatch)
}

// DefaultSteps is the resolution order. finder may be nil to use the snapshot directly.
func DefaultSteps(finder EdiFinder) []Step {
	return []Step{
		EdiLookupStep{Finder: finder},
		SecondaryKeyStep{},
		CrossReferenceStep{},
		BuildingAttributesStep{},
		EmidAttributesStep{},
		JobCodeTextStep{},
	}
}

// EdiLookupStep takes EMID, service area, building code and paying region straight
// from the confirmed EDI entry.
type EdiLookupStep struct {
	Finder EdiFinder
}

func (EdiLookupStep) Name() string { return StepEdiLookup }

func (s EdiLookupStep) Apply(b *DimensionsBuilder, sc StepContext) {
	var finder EdiFinder = sc.Snapshot
	if s.Finder != nil {
		finder = s.Finder
	}
	entry, match := finder.FindEdiEntry(sc.Line.InvoiceNumber)
	if !match.Found() {
		// the EDI table lags invoice generation; a miss is the common case
		if sc.Logger != nil {
			sc.Logger.WithField("invoice", sc.Line.InvoiceNumber).Debug("invoice not in EDI yet")
		}
		return
	}

	b.setEdi(entry, match)
	b.FillEmid(entry.Emid)
	b.FillServiceArea(entry.ServiceArea)
	b.FillBuildingCode(entry.BuildingCode)
	b.FillPayingRegion(entry.PayingRegion)
	b.AddNote(models.NoteEdiMatch, StepEdiLookup, "")
	if match == reference.EdiRevisionMatch {
		b.AddNote(models.NoteRevisionStripped, StepEdiLookup, "matched base invoice "+entry.InvoiceNumber)
	}
}

// SecondaryKeyStep looks the line's location or job number up in the location
// lookup table, delegating to the Disambiguator when several buildings match.
type SecondaryKeyStep struct {
	Disambiguator Disambiguator
}

func (SecondaryKeyStep) Name() string { return StepSecondaryKey }

func (s SecondaryKeyStep) Apply(b *DimensionsBuilder, sc StepContext) {
	if b.BuildingCode() != nil {
		return
	}
	keyName := sc.Line.Source.SecondaryKeyName()
	if sc.Line.SecondaryKey == nil {
		b.AddNote(models.NoteUnresolvedSecondaryKey, StepSecondaryKey, "line has no "+keyName)
		return
	}
	key := *sc.Line.SecondaryKey

	rows := sc.Snapshot.FindByLocationNumber(key)
	codes := reference.DistinctBuildingCodes(rows)
	switch len(codes) {
	case 0:
		b.AddNote(models.NoteUnresolvedSecondaryKey, StepSecondaryKey, fmt.Sprintf("%s %s not in location lookup", keyName, key))
	case 1:
		b.FillBuildingCode(&codes[0])
		b.AddNote(models.NoteUsedFallback, StepSecondaryKey, fmt.Sprintf("%s %s", keyName, key))
	default:
		code, kind, ok := s.Disambiguator.Narrow(sc.Line, key, rows, b.Emid(), sc.Conflicts)
		if !ok {
			b.AddNote(models.NoteAmbiguousFlagged, StepSecondaryKey, fmt.Sprintf("%s: %s", kind, describeCandidates(codes)))
			return
		}
		b.FillBuildingCode(&code)
		b.AddNote(models.NoteUsedFallback, StepSecondaryKey, fmt.Sprintf("%s %s", keyName, key))
		b.AddNote(models.NoteDisambiguatedByEmid, StepSecondaryKey, fmt.Sprintf("EMID %s picked %s from %s", utils.DereferencePtr(b.Emid()), code, describeCandidates(codes)))
	}
}

// CrossReferenceStep maps the EDI entry's GL location segment back to a building.
type CrossReferenceStep struct{}

func (CrossReferenceStep) Name() string { return StepCrossReference }

func (CrossReferenceStep) Apply(b *DimensionsBuilder, sc StepContext) {
	if b.BuildingCode() != nil {
		return
	}
	entry, ok := b.Edi()
	if !ok || entry.GlLocation == nil {
		return
	}
	buildings := sc.Snapshot.FindBuildingsByCrossReference(*entry.GlLocation)
	switch len(buildings) {
	case 0:
		return
	case 1:
		code := buildings[0].BuildingCode
		b.FillBuildingCode(&code)
		b.AddNote(models.NoteUsedCrossReference, StepCrossReference, "GL location "+*entry.GlLocation)
	default:
		codes := make([]string, 0, len(buildings))
		for _, bld := range buildings {
			codes = append(codes, bld.BuildingCode)
		}
		b.AddNote(models.NoteCrossReferenceAmbiguous, StepCrossReference, fmt.Sprintf("GL location %s: %s", *entry.GlLocation, describeCandidates(codes)))
	}
}

// BuildingAttributesStep fills EMID (when still unset) and the building business unit.
type BuildingAttributesStep struct{}

func (BuildingAttributesStep) Name() string { return StepBuildingAttributes }

func (BuildingAttributesStep) Apply(b *DimensionsBuilder, sc StepContext) {
	code := b.BuildingCode()
	if code == nil {
		return
	}
	bld, ok := sc.Snapshot.FindBuilding(*code)
	if !ok {
		b.AddNote(models.NoteBuildingNotFound, StepBuildingAttributes, "building "+*code)
		return
	}
	if emid := b.Emid(); emid != nil && bld.Emid != nil && utils.NormalizeKey(*emid) != utils.NormalizeKey(*bld.Emid) {
		b.AddNote(models.NoteBuildingEmidMismatch, StepBuildingAttributes, fmt.Sprintf("kept EMID %s, building %s has %s", *emid, bld.BuildingCode, *bld.Emid))
	}
	b.FillEmid(bld.Emid)
	b.FillBuildingBusinessUnit(bld.BusinessUnit)
}

// EmidAttributesStep fills service area, job code and operational region from the EMID.
type EmidAttributesStep struct{}

func (EmidAttributesStep) Name() string { return StepEmidAttributes }

func (EmidAttributesStep) Apply(b *DimensionsBuilder, sc StepContext) {
	emid := b.Emid()
	if emid == nil {
		return
	}
	entry, ok := sc.Snapshot.FindEmid(*emid)
	if !ok {
		b.AddNote(models.NoteEmidNotFound, StepEmidAttributes, "EMID "+*emid)
		return
	}
	b.FillServiceArea(entry.ServiceArea)
	b.FillJobCode(entry.JobCode)
	b.FillOperationalRegion(entry.Region)
}

// JobCodeTextStep accepts the job code parsed from the customer label, unvalidated.
type JobCodeTextStep struct{}

func (JobCodeTextStep) Name() string { return StepJobCodeText }

func (JobCodeTextStep) Apply(b *DimensionsBuilder, sc StepContext) {
	if b.JobCode() != nil || sc.Line.FallbackJobCode == nil {
		return
	}
	if b.FillJobCode(sc.Line.FallbackJobCode) {
		b.AddNote(models.NoteJobCodeTextFallback, StepJobCodeText, *sc.Line.FallbackJobCode)
	}
}
