package reference

import (
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/utils"
)

// Tables are the four reference datasets a snapshot is built from. A nil slice means
// the table was never delivered; a non-nil empty slice means it was delivered empty.
type Tables struct {
	Edi       []models.EdiEntry
	Buildings []models.BuildingEntry
	Emids     []models.EmidEntry
	Locations []models.LocationLookupEntry
}

func (t Tables) check() error {
	counts := []struct {
		name    string
		missing bool
		n       int
	}{
		{TableEdi, t.Edi == nil, len(t.Edi)},
		{TableBuilding, t.Buildings == nil, len(t.Buildings)},
		{TableEmid, t.Emids == nil, len(t.Emids)},
		{TableLocation, t.Locations == nil, len(t.Locations)},
	}
	for _, c := range counts {
		if c.missing {
			return &TableError{Table: c.name, Err: utils.ErrMissingTable}
		}
		if c.n == 0 {
			return &TableError{Table: c.name, Err: utils.ErrEmptyTable}
		}
	}
	return nil
}
