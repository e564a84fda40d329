package models

// EdiEntry is one invoice confirmed by the paying system.
type EdiEntry struct {
	InvoiceNumber string  `json:"invoice_number" validate:"required"`
	Emid          *string `json:"emid"`
	ServiceArea   *string `json:"service_area"`
	BuildingCode  *string `json:"building_code"`

	// GL locator segments. GlBusinessUnit is a ledger coding segment and is never
	// a building business unit.
	GlBusinessUnit *string `json:"gl_business_unit"`
	GlLocation     *string `json:"gl_location"`
	GlDepartment   *string `json:"gl_department"`
	GlAccount      *string `json:"gl_account"`

	PayingRegion *string `json:"paying_region"`
}

type BuildingEntry struct {
	BuildingCode string  `json:"building_code" validate:"required"`
	Emid         *string `json:"emid"`
	ServiceArea  *string `json:"service_area"`
	BusinessUnit *string `json:"business_unit"`
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	// CrossReference is the GL location code that points back at this building.
	CrossReference *string `json:"cross_reference"`
}

type EmidEntry struct {
	Emid        string  `json:"emid" validate:"required"`
	ServiceArea *string `json:"service_area"`
	Region      *string `json:"region"`
	JobCode     *string `json:"job_code"`
	Description *string `json:"description"`
}

// LocationLookupEntry maps a source-specific location/job number to one candidate
// building. The same number may appear on several rows.
type LocationLookupEntry struct {
	LocationNumber string  `json:"location_number" validate:"required"`
	BuildingCode   string  `json:"building_code" validate:"required"`
	Emid           *string `json:"emid"`
}
