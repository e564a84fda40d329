package reference

import "github.com/mmdatafocus/dimension_resolver/models"

// Ptr is a small helper for building fixture rows.
func Ptr(s string) *string { return &s }

// FixtureTables returns a small, consistent set of reference tables used by tests
// across packages.
func FixtureTables() Tables {
	return Tables{
		Edi: []models.EdiEntry{
			{InvoiceNumber: "5001", Emid: Ptr("E1"), ServiceArea: Ptr("SA1"), BuildingCode: Ptr("CA100"),
				GlBusinessUnit: Ptr("GL-BU-9"), GlLocation: Ptr("L100"), PayingRegion: Ptr("PR-N")},
			{InvoiceNumber: "10023", Emid: Ptr("E1"), BuildingCode: Ptr("CA100"), PayingRegion: Ptr("PR-N")},
			{InvoiceNumber: "7001", Emid: Ptr("E5"), GlBusinessUnit: Ptr("GL-BU-5"), PayingRegion: Ptr("PR-S")},
			{InvoiceNumber: "7002", Emid: Ptr("E2"), GlLocation: Ptr("X300")},
			{InvoiceNumber: "7003", Emid: Ptr("E7")},
		},
		Buildings: []models.BuildingEntry{
			{BuildingCode: "CA100", Emid: Ptr("E1"), BusinessUnit: Ptr("BU-West"), CrossReference: Ptr("L100")},
			{BuildingCode: "CA200", Emid: Ptr("E4"), BusinessUnit: Ptr("BU-North")},
			{BuildingCode: "CA201", Emid: Ptr("E5"), BusinessUnit: Ptr("BU-South")},
			{BuildingCode: "CA300", Emid: Ptr("E2"), BusinessUnit: Ptr("BU-East"), CrossReference: Ptr("X300")},
			{BuildingCode: "CA400", BusinessUnit: Ptr("BU-Central"), CrossReference: Ptr("X400")},
			{BuildingCode: "CA401", BusinessUnit: Ptr("BU-Central"), CrossReference: Ptr("X400")},
		},
		Emids: []models.EmidEntry{
			{Emid: "E1", ServiceArea: Ptr("SA1"), Region: Ptr("R-West"), JobCode: Ptr("JC-1")},
			{Emid: "E2", ServiceArea: Ptr("SA2"), Region: Ptr("R-East"), JobCode: Ptr("JC-2")},
			{Emid: "E4", ServiceArea: Ptr("SA4"), Region: Ptr("R-North"), JobCode: Ptr("JC-1")},
			{Emid: "E5", ServiceArea: Ptr("SA5"), Region: Ptr("R-South")},
		},
		Locations: []models.LocationLookupEntry{
			{LocationNumber: "LOC1", BuildingCode: "CA200", Emid: Ptr("E4")},
			{LocationNumber: "LOC9", BuildingCode: "CA200", Emid: Ptr("E4")},
			{LocationNumber: "LOC9", BuildingCode: "CA201", Emid: Ptr("E5")},
			{LocationNumber: "LOC7", BuildingCode: "CA300", Emid: Ptr("E7")},
			{LocationNumber: "LOC7", BuildingCode: "CA301", Emid: Ptr("E7")},
			{LocationNumber: "JOB55", BuildingCode: "CA300", Emid: Ptr("E2")},
			{LocationNumber: "JOB55", BuildingCode: "CA300", Emid: Ptr("E2")},
		},
	}
}
