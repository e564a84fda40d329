package models

import "sort"

// Conflict is a multi-candidate building lookup that could not be narrowed to one
// building. It carries enough context to drive a manual-review worklist.
type Conflict struct {
	Kind          ConflictKind          `json:"kind"`
	InvoiceNumber string                `json:"invoice_number"`
	Source        SourceSystem          `json:"source"`
	SecondaryKey  string                `json:"secondary_key"`
	Emid          *string               `json:"emid"`
	Candidates    []LocationLookupEntry `json:"candidates"`
}

// BuildingCodes returns the distinct candidate building codes, sorted.
func (c Conflict) BuildingCodes() []string {
	seen := make(map[string]bool, len(c.Candidates))
	codes := make([]string, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		if seen[cand.BuildingCode] {
			continue
		}
		seen[cand.BuildingCode] = true
		codes = append(codes, cand.BuildingCode)
	}
	sort.Strings(codes)
	return codes
}

// Clone deep-copies the candidate rows.
func (c Conflict) Clone() Conflict {
	out := c
	if c.Emid != nil {
		emid := *c.Emid
		out.Emid = &emid
	}
	out.Candidates = make([]LocationLookupEntry, len(c.Candidates))
	copy(out.Candidates, c.Candidates)
	return out
}

// RunSummary holds the per-run counters reported by the conflict ledger.
type RunSummary struct {
	LinesBySource    map[SourceSystem]int `json:"lines_by_source"`
	TotalLines       int                  `json:"total_lines"`
	EdiMatched       int                  `json:"edi_matched"`
	FallbackUsed     int                  `json:"fallback_used"`
	Ambiguous        int                  `json:"ambiguous"`
	Unresolved       int                  `json:"unresolved"`
	Rejected         int                  `json:"rejected"`
	RejectedBySource map[SourceSystem]int `json:"rejected_by_source"`
	ConflictsByKind  map[ConflictKind]int `json:"conflicts_by_kind"`
}
