// Package reference builds the read-only lookup indexes every resolution step consults.
package reference

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/sirupsen/logrus"
)

// EdiMatch says how an invoice number hit the EDI index.
type EdiMatch int

const (
	EdiNoMatch EdiMatch = iota
	EdiExactMatch
	EdiRevisionMatch
)

func (m EdiMatch) Found() bool {
	return m != EdiNoMatch
}

// Stats describes what happened while indexing the reference tables.
type Stats struct {
	EdiEntries       int `json:"edi_entries"`
	EdiDuplicates    int `json:"edi_duplicates"`
	Buildings        int `json:"buildings"`
	BuildingDups     int `json:"building_duplicates"`
	Emids            int `json:"emids"`
	EmidDups         int `json:"emid_duplicates"`
	LocationRows     int `json:"location_rows"`
	LocationNumbers  int `json:"location_numbers"`
	AmbiguousNumbers int `json:"ambiguous_location_numbers"`
	SkippedRows      int `json:"skipped_rows"`
}

// Snapshot is immutable once built and safe for concurrent use.
type Snapshot struct {
	edi       map[string]models.EdiEntry
	buildings map[string]models.BuildingEntry
	emids     map[string]models.EmidEntry
	locations map[string][]models.LocationLookupEntry
	crossRef  map[string][]string
	stats     Stats
}

type options struct {
	logger logrus.FieldLogger
}

type Option func(*options)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewSnapshot indexes the four reference tables. Any *TableError it returns is fatal
// for the run.
func NewSnapshot(tables Tables, opts ...Option) (*Snapshot, error) {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := tables.check(); err != nil {
		return nil, err
	}

	s := &Snapshot{
		edi:       make(map[string]models.EdiEntry, len(tables.Edi)),
		buildings: make(map[string]models.BuildingEntry, len(tables.Buildings)),
		emids:     make(map[string]models.EmidEntry, len(tables.Emids)),
		locations: make(map[string][]models.LocationLookupEntry),
		crossRef:  make(map[string][]string),
	}
	validate := validator.New()
	log := o.logger.WithField("module", "reference")

	for _, e := range tables.Edi {
		if err := validate.Struct(e); err != nil {
			s.stats.SkippedRows++
			continue
		}
		key := NormalizeInvoiceNumber(e.InvoiceNumber)
		if _, dup := s.edi[key]; dup {
			// first row wins
			s.stats.EdiDuplicates++
			log.WithField("invoice", key).Warn("duplicate EDI invoice ignored")
			continue
		}
		s.edi[key] = e
	}

	for _, b := range tables.Buildings {
		if err := validate.Struct(b); err != nil {
			s.stats.SkippedRows++
			continue
		}
		key := utils.NormalizeKey(b.BuildingCode)
		if _, dup := s.buildings[key]; dup {
			s.stats.BuildingDups++
			log.WithField("building", key).Warn("duplicate building ignored")
			continue
		}
		s.buildings[key] = b
		if b.CrossReference != nil {
			xref := utils.NormalizeKey(*b.CrossReference)
			if xref != "" {
				s.crossRef[xref] = append(s.crossRef[xref], key)
			}
		}
	}

	for _, e := range tables.Emids {
		if err := validate.Struct(e); err != nil {
			s.stats.SkippedRows++
			continue
		}
		key := utils.NormalizeKey(e.Emid)
		if _, dup := s.emids[key]; dup {
			s.stats.EmidDups++
			log.WithField("emid", key).Warn("duplicate EMID ignored")
			continue
		}
		s.emids[key] = e
	}

	for _, l := range tables.Locations {
		if err := validate.Struct(l); err != nil {
			s.stats.SkippedRows++
			continue
		}
		key := utils.NormalizeKey(l.LocationNumber)
		s.locations[key] = append(s.locations[key], l)
		s.stats.LocationRows++
	}

	s.stats.EdiEntries = len(s.edi)
	s.stats.Buildings = len(s.buildings)
	s.stats.Emids = len(s.emids)
	s.stats.LocationNumbers = len(s.locations)
	for _, rows := range s.locations {
		if len(DistinctBuildingCodes(rows)) > 1 {
			s.stats.AmbiguousNumbers++
		}
	}

	// every table must still have at least one usable row
	if err := (Tables{
		Edi:       nonNil(len(s.edi), tables.Edi),
		Buildings: nonNil(len(s.buildings), tables.Buildings),
		Emids:     nonNil(len(s.emids), tables.Emids),
		Locations: nonNil(s.stats.LocationRows, tables.Locations),
	}).check(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"edi":       s.stats.EdiEntries,
		"buildings": s.stats.Buildings,
		"emids":     s.stats.Emids,
		"locations": s.stats.LocationRows,
		"skipped":   s.stats.SkippedRows,
	}).Info("reference snapshot built")

	return s, nil
}

func nonNil[T any](n int, rows []T) []T {
	if n == 0 {
		return rows[:0]
	}
	return rows
}

func (s *Snapshot) Stats() Stats {
	return s.stats
}

// FindEdiEntry looks the invoice up exactly, then once more with its revision
// letters stripped.
func (s *Snapshot) FindEdiEntry(invoiceNumber string) (models.EdiEntry, EdiMatch) {
	key := NormalizeInvoiceNumber(invoiceNumber)
	if e, ok := s.edi[key]; ok {
		return e, EdiExactMatch
	}
	base, ok := StripRevision(key)
	if !ok {
		return models.EdiEntry{}, EdiNoMatch
	}
	if e, ok := s.edi[base]; ok {
		return e, EdiRevisionMatch
	}
	return models.EdiEntry{}, EdiNoMatch
}

func (s *Snapshot) FindBuilding(buildingCode string) (models.BuildingEntry, bool) {
	b, ok := s.buildings[utils.NormalizeKey(buildingCode)]
	return b, ok
}

func (s *Snapshot) FindEmid(emid string) (models.EmidEntry, bool) {
	e, ok := s.emids[utils.NormalizeKey(emid)]
	return e, ok
}

// FindByLocationNumber returns every lookup row for the number. The result is a copy.
func (s *Snapshot) FindByLocationNumber(locationOrJobNumber string) []models.LocationLookupEntry {
	rows := s.locations[utils.NormalizeKey(locationOrJobNumber)]
	if len(rows) == 0 {
		return nil
	}
	out := make([]models.LocationLookupEntry, len(rows))
	copy(out, rows)
	return out
}

// FindBuildingsByCrossReference returns every building whose cross-reference code
// equals the GL location segment, ordered by building code.
func (s *Snapshot) FindBuildingsByCrossReference(locationSegment string) []models.BuildingEntry {
	codes := s.crossRef[utils.NormalizeKey(locationSegment)]
	if len(codes) == 0 {
		return nil
	}
	sorted := append([]string(nil), codes...)
	sort.Strings(sorted)
	out := make([]models.BuildingEntry, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, s.buildings[c])
	}
	return out
}

// FindBuildingByCrossReference succeeds only when exactly one building carries the code.
func (s *Snapshot) FindBuildingByCrossReference(locationSegment string) (models.BuildingEntry, bool) {
	codes := s.crossRef[utils.NormalizeKey(locationSegment)]
	if len(codes) != 1 {
		return models.BuildingEntry{}, false
	}
	return s.buildings[codes[0]], true
}

// DistinctBuildingCodes returns the building codes named by rows, in first-seen order.
// Codes that differ only in case or surrounding space count once.
func DistinctBuildingCodes(rows []models.LocationLookupEntry) []string {
	seen := make(map[string]bool, len(rows))
	var out []string
	for _, r := range rows {
		key := utils.NormalizeKey(r.BuildingCode)
		if !seen[key] {
			seen[key] = true
			out = append(out, strings.TrimSpace(r.BuildingCode))
		}
	}
	return out
}
