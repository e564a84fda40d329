package resolution

import (
	"fmt"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/utils"
)

// ConflictRecorder receives every multi-candidate case that could not be narrowed.
// *ledger.Ledger implements it.
type ConflictRecorder interface {
	AppendConflict(c models.Conflict)
}

// Disambiguator narrows several candidate buildings to one using the EMID already
// known for the line.
type Disambiguator struct{}

// Narrow returns the single building left after EMID filtering. On every failure path
// it records a conflict carrying the full candidate set and returns ok=false.
func (Disambiguator) Narrow(line models.CanonicalInvoiceLine, secondaryKey string, candidates []models.LocationLookupEntry, emid *string, conflicts ConflictRecorder) (string, models.ConflictKind, bool) {
	record := func(kind models.ConflictKind) (string, models.ConflictKind, bool) {
		if conflicts != nil {
			conflicts.AppendConflict(models.Conflict{
				Kind:          kind,
				InvoiceNumber: line.InvoiceNumber,
				Source:        line.Source,
				SecondaryKey:  secondaryKey,
				Emid:          clonePtr(emid),
				Candidates:    candidates,
			})
		}
		return "", kind, false
	}

	if emid == nil || strings.TrimSpace(*emid) == "" {
		return record(models.ConflictMultipleCandidatesNoEmid)
	}

	want := utils.NormalizeKey(*emid)
	var matching []models.LocationLookupEntry
	for _, c := range candidates {
		if c.Emid != nil && utils.NormalizeKey(*c.Emid) == want {
			matching = append(matching, c)
		}
	}

	codes := reference.DistinctBuildingCodes(matching)
	switch len(codes) {
	case 0:
		return record(models.ConflictMultipleCandidatesNoEmidMatch)
	case 1:
		return codes[0], "", true
	default:
		return record(models.ConflictMultipleCandidatesUnresolved)
	}
}

func describeCandidates(codes []string) string {
	return fmt.Sprintf("%d candidates: %s", len(codes), strings.Join(codes, ", "))
}
