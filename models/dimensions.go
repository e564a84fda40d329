package models

// Note is a diagnostic left by a resolution step.
type Note struct {
	Kind   NoteKind `json:"kind"`
	Step   string   `json:"step"`
	Detail string   `json:"detail,omitempty"`
}

// ResolvedDimensions is the output of resolving one canonical line. Every field is
// either a single resolved value or nil.
type ResolvedDimensions struct {
	BuildingCode         *string `json:"building_code"`
	BuildingBusinessUnit *string `json:"building_business_unit"`
	Emid                 *string `json:"emid"`
	ServiceArea          *string `json:"service_area"`
	JobCode              *string `json:"job_code"`
	OperationalRegion    *string `json:"operational_region"`
	PayingRegion         *string `json:"paying_region"`
	Notes                []Note  `json:"notes"`
}

func (d ResolvedDimensions) HasNote(kind NoteKind) bool {
	for _, n := range d.Notes {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

func (d ResolvedDimensions) NoteKinds() []NoteKind {
	kinds := make([]NoteKind, 0, len(d.Notes))
	for _, n := range d.Notes {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// IsEmpty reports whether no dimension at all could be determined.
func (d ResolvedDimensions) IsEmpty() bool {
	return d.BuildingCode == nil &&
		d.BuildingBusinessUnit == nil &&
		d.Emid == nil &&
		d.ServiceArea == nil &&
		d.JobCode == nil &&
		d.OperationalRegion == nil &&
		d.PayingRegion == nil
}
