package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// SourceSystem tags which upstream system emitted an invoice line.
type SourceSystem string

const (
	// SourceSystemA keys its lines by location number and carries a combined customer label.
	SourceSystemA SourceSystem = "A"
	// SourceSystemB keys its lines by job number.
	SourceSystemB SourceSystem = "B"
)

var AllSourceSystems = []SourceSystem{SourceSystemA, SourceSystemB}

func ParseSourceSystem(s string) (SourceSystem, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SourceSystemA, nil
	case "B":
		return SourceSystemB, nil
	default:
		return "", fmt.Errorf("invalid source system %q", s)
	}
}

// SecondaryKeyName is what the source calls the key used against the location lookup.
func (s SourceSystem) SecondaryKeyName() string {
	switch s {
	case SourceSystemA:
		return "location number"
	case SourceSystemB:
		return "job number"
	default:
		return "secondary key"
	}
}

func (s SourceSystem) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *SourceSystem) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	v, err := ParseSourceSystem(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// NoteKind classifies a diagnostic note attached to resolved dimensions.
type NoteKind string

const (
	NoteEdiMatch                NoteKind = "edi-match"
	NoteRevisionStripped        NoteKind = "revision-stripped"
	NoteUsedFallback            NoteKind = "used-fallback"
	NoteUnresolvedSecondaryKey  NoteKind = "unresolved-secondary-key"
	NoteAmbiguousFlagged        NoteKind = "ambiguous-flagged"
	NoteDisambiguatedByEmid     NoteKind = "disambiguated-by-emid"
	NoteUsedCrossReference      NoteKind = "used-cross-reference"
	NoteCrossReferenceAmbiguous NoteKind = "cross-reference-ambiguous"
	NoteBuildingNotFound        NoteKind = "building-not-found"
	NoteBuildingEmidMismatch    NoteKind = "building-emid-mismatch"
	NoteEmidNotFound            NoteKind = "emid-not-found"
	NoteJobCodeTextFallback     NoteKind = "job-code-text-fallback"
)

func (k NoteKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *NoteKind) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	*k = NoteKind(str)
	return nil
}

// ConflictKind classifies why a multi-candidate lookup could not be narrowed.
type ConflictKind string

const (
	ConflictMultipleCandidatesNoEmid      ConflictKind = "multiple-candidates-no-emid"
	ConflictMultipleCandidatesNoEmidMatch ConflictKind = "multiple-candidates-no-emid-match"
	ConflictMultipleCandidatesUnresolved  ConflictKind = "multiple-candidates-unresolved"
)

var AllConflictKinds = []ConflictKind{
	ConflictMultipleCandidatesNoEmid,
	ConflictMultipleCandidatesNoEmidMatch,
	ConflictMultipleCandidatesUnresolved,
}

func (k ConflictKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *ConflictKind) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	switch ConflictKind(str) {
	case ConflictMultipleCandidatesNoEmid, ConflictMultipleCandidatesNoEmidMatch, ConflictMultipleCandidatesUnresolved:
		*k = ConflictKind(str)
		return nil
	default:
		return errors.New("invalid conflict kind")
	}
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", value)
	}
}
