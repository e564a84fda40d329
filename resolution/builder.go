package resolution

import (
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/reference"
)

// DimensionsBuilder is the partial result the steps fill in. Setters only ever fill
// unset fields; nothing a previous step decided is overwritten.
type DimensionsBuilder struct {
	dims models.ResolvedDimensions

	edi      *models.EdiEntry
	ediMatch reference.EdiMatch
}

func NewDimensionsBuilder() *DimensionsBuilder {
	return &DimensionsBuilder{}
}

// Edi is the EDI entry matched for the line, if any.
func (b *DimensionsBuilder) Edi() (models.EdiEntry, bool) {
	if b.edi == nil {
		return models.EdiEntry{}, false
	}
	return *b.edi, true
}

func (b *DimensionsBuilder) setEdi(e models.EdiEntry, match reference.EdiMatch) {
	b.edi = &e
	b.ediMatch = match
}

func (b *DimensionsBuilder) BuildingCode() *string         { return b.dims.BuildingCode }
func (b *DimensionsBuilder) BuildingBusinessUnit() *string { return b.dims.BuildingBusinessUnit }
func (b *DimensionsBuilder) Emid() *string                 { return b.dims.Emid }
func (b *DimensionsBuilder) ServiceArea() *string          { return b.dims.ServiceArea }
func (b *DimensionsBuilder) JobCode() *string              { return b.dims.JobCode }
func (b *DimensionsBuilder) OperationalRegion() *string    { return b.dims.OperationalRegion }
func (b *DimensionsBuilder) PayingRegion() *string         { return b.dims.PayingRegion }

func (b *DimensionsBuilder) FillBuildingCode(v *string) bool {
	return fill(&b.dims.BuildingCode, v)
}

func (b *DimensionsBuilder) FillBuildingBusinessUnit(v *string) bool {
	return fill(&b.dims.BuildingBusinessUnit, v)
}

func (b *DimensionsBuilder) FillEmid(v *string) bool {
	return fill(&b.dims.Emid, v)
}

func (b *DimensionsBuilder) FillServiceArea(v *string) bool {
	return fill(&b.dims.ServiceArea, v)
}

func (b *DimensionsBuilder) FillJobCode(v *string) bool {
	return fill(&b.dims.JobCode, v)
}

func (b *DimensionsBuilder) FillOperationalRegion(v *string) bool {
	return fill(&b.dims.OperationalRegion, v)
}

func (b *DimensionsBuilder) FillPayingRegion(v *string) bool {
	return fill(&b.dims.PayingRegion, v)
}

func (b *DimensionsBuilder) AddNote(kind models.NoteKind, step string, detail string) {
	b.dims.Notes = append(b.dims.Notes, models.Note{Kind: kind, Step: step, Detail: detail})
}

func (b *DimensionsBuilder) HasNote(kind models.NoteKind) bool {
	return b.dims.HasNote(kind)
}

// Finalize returns an independent copy of the dimensions built so far.
func (b *DimensionsBuilder) Finalize() models.ResolvedDimensions {
	out := models.ResolvedDimensions{
		BuildingCode:         clonePtr(b.dims.BuildingCode),
		BuildingBusinessUnit: clonePtr(b.dims.BuildingBusinessUnit),
		Emid:                 clonePtr(b.dims.Emid),
		ServiceArea:          clonePtr(b.dims.ServiceArea),
		JobCode:              clonePtr(b.dims.JobCode),
		OperationalRegion:    clonePtr(b.dims.OperationalRegion),
		PayingRegion:         clonePtr(b.dims.PayingRegion),
	}
	if len(b.dims.Notes) > 0 {
		out.Notes = append([]models.Note(nil), b.dims.Notes...)
	}
	return out
}

// fill sets *dst to a copy of v when *dst is unset and v carries a non-blank value.
func fill(dst **string, v *string) bool {
	if *dst != nil || v == nil || *v == "" {
		return false
	}
	*dst = clonePtr(v)
	return true
}

func clonePtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
