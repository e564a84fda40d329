// Package ledger accumulates the conflicts, rejections and counters of one batch run.
package ledger

import (
	"sort"
	"sync"

	"github.com/mmdatafocus/dimension_resolver/models"
)

// Ledger is safe for concurrent use. Workers may also keep a private ledger each and
// Merge them at the end.
type Ledger struct {
	mu sync.Mutex

	linesBySource    map[models.SourceSystem]int
	rejectedBySource map[models.SourceSystem]int
	ediMatched       int
	fallbackUsed     int
	ambiguous        int
	unresolved       int

	conflicts []models.Conflict
	rejected  []models.RejectedRow
}

func New() *Ledger {
	return &Ledger{
		linesBySource:    make(map[models.SourceSystem]int),
		rejectedBySource: make(map[models.SourceSystem]int),
	}
}

// AppendConflict records one ambiguous lookup.
func (l *Ledger) AppendConflict(c models.Conflict) {
	c = c.Clone()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conflicts = append(l.conflicts, c)
}

func (l *Ledger) AppendRejected(rows ...models.RejectedRow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rows {
		l.rejected = append(l.rejected, r)
		l.rejectedBySource[r.Source]++
	}
}

// RecordLine counts one resolved line from its final dimensions.
//
// A line is ambiguous when a step flagged it, and unresolved when it ended without a
// building code and was not flagged.
func (l *Ledger) RecordLine(source models.SourceSystem, d models.ResolvedDimensions) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.linesBySource[source]++
	if d.HasNote(models.NoteEdiMatch) {
		l.ediMatched++
	}
	if d.HasNote(models.NoteUsedFallback) || d.HasNote(models.NoteUsedCrossReference) {
		l.fallbackUsed++
	}
	switch {
	case d.HasNote(models.NoteAmbiguousFlagged):
		l.ambiguous++
	case d.BuildingCode == nil:
		l.unresolved++
	}
}

// Merge folds other into l. other must not be written to concurrently.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil || other == l {
		return
	}
	other.mu.Lock()
	defer other.mu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, v := range other.linesBySource {
		l.linesBySource[k] += v
	}
	for k, v := range other.rejectedBySource {
		l.rejectedBySource[k] += v
	}
	l.ediMatched += other.ediMatched
	l.fallbackUsed += other.fallbackUsed
	l.ambiguous += other.ambiguous
	l.unresolved += other.unresolved
	l.conflicts = append(l.conflicts, other.conflicts...)
	l.rejected = append(l.rejected, other.rejected...)
}

// Report is a point-in-time copy of the ledger.
type Report struct {
	Summary   models.RunSummary    `json:"summary"`
	Conflicts []models.Conflict    `json:"conflicts"`
	Rejected  []models.RejectedRow `json:"rejected"`
}

// Report snapshots the ledger without changing it. It can be called mid-run.
// Conflicts are ordered by invoice number, then secondary key, then kind; rejected
// rows by source then row number.
func (l *Ledger) Report() Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := models.RunSummary{
		LinesBySource:    make(map[models.SourceSystem]int, len(l.linesBySource)),
		RejectedBySource: make(map[models.SourceSystem]int, len(l.rejectedBySource)),
		ConflictsByKind:  make(map[models.ConflictKind]int),
		EdiMatched:       l.ediMatched,
		FallbackUsed:     l.fallbackUsed,
		Ambiguous:        l.ambiguous,
		Unresolved:       l.unresolved,
		Rejected:         len(l.rejected),
	}
	for k, v := range l.linesBySource {
		summary.LinesBySource[k] = v
		summary.TotalLines += v
	}
	for k, v := range l.rejectedBySource {
		summary.RejectedBySource[k] = v
	}

	conflicts := make([]models.Conflict, 0, len(l.conflicts))
	for _, c := range l.conflicts {
		conflicts = append(conflicts, c.Clone())
		summary.ConflictsByKind[c.Kind]++
	}
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.InvoiceNumber != b.InvoiceNumber {
			return a.InvoiceNumber < b.InvoiceNumber
		}
		if a.SecondaryKey != b.SecondaryKey {
			return a.SecondaryKey < b.SecondaryKey
		}
		return a.Kind < b.Kind
	})

	rejected := append([]models.RejectedRow{}, l.rejected...)
	sort.SliceStable(rejected, func(i, j int) bool {
		if rejected[i].Source != rejected[j].Source {
			return rejected[i].Source < rejected[j].Source
		}
		return rejected[i].RowNumber < rejected[j].RowNumber
	})

	return Report{Summary: summary, Conflicts: conflicts, Rejected: rejected}
}
