package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mmdatafocus/dimension_resolver/config"
	"github.com/mmdatafocus/dimension_resolver/models"
	"github.com/mmdatafocus/dimension_resolver/reference"
	"github.com/mmdatafocus/dimension_resolver/utils"
	"github.com/sirupsen/logrus"
)

// ReferenceSource says where the four reference tables live. Path is either one
// .xlsx workbook holding a sheet per table, or a directory (local or gs://) holding
// "<sheet>.csv" files.
type ReferenceSource struct {
	Path          string
	EdiSheet      string
	BuildingSheet string
	EmidSheet     string
	LocationSheet string
}

func ReferenceSourceFromConfig(cfg config.RunConfig) ReferenceSource {
	return ReferenceSource{
		Path:          cfg.ReferencePath,
		EdiSheet:      cfg.EdiSheet,
		BuildingSheet: cfg.BuildingSheet,
		EmidSheet:     cfg.EmidSheet,
		LocationSheet: cfg.LocationSheet,
	}
}

type column[T any] struct {
	name     string
	aliases  []string
	required bool
	assign   func(e *T, v string)
}

var ediColumns = []column[models.EdiEntry]{
	{name: "invoice number", aliases: []string{"invoice number", "invoice no", "invoice #", "invoice"}, required: true,
		assign: func(e *models.EdiEntry, v string) { e.InvoiceNumber = v }},
	{name: "emid", aliases: []string{"emid"},
		assign: func(e *models.EdiEntry, v string) { e.Emid = utils.NilIfBlank(v) }},
	{name: "service area", aliases: []string{"service area", "sa"},
		assign: func(e *models.EdiEntry, v string) { e.ServiceArea = utils.NilIfBlank(v) }},
	{name: "building code", aliases: []string{"building code", "kp bldg", "bldg", "building"},
		assign: func(e *models.EdiEntry, v string) { e.BuildingCode = utils.NilIfBlank(v) }},
	{name: "gl business unit", aliases: []string{"gl business unit", "gl bu", "business unit"},
		assign: func(e *models.EdiEntry, v string) { e.GlBusinessUnit = utils.NilIfBlank(v) }},
	{name: "gl location", aliases: []string{"gl location", "gl loc", "location"},
		assign: func(e *models.EdiEntry, v string) { e.GlLocation = utils.NilIfBlank(v) }},
	{name: "gl department", aliases: []string{"gl department", "gl dept", "department"},
		assign: func(e *models.EdiEntry, v string) { e.GlDepartment = utils.NilIfBlank(v) }},
	{name: "gl account", aliases: []string{"gl account", "gl acct", "account"},
		assign: func(e *models.EdiEntry, v string) { e.GlAccount = utils.NilIfBlank(v) }},
	{name: "paying region", aliases: []string{"paying region", "region"},
		assign: func(e *models.EdiEntry, v string) { e.PayingRegion = utils.NilIfBlank(v) }},
}

var buildingColumns = []column[models.BuildingEntry]{
	{name: "building code", aliases: []string{"building code", "kp bldg", "bldg"}, required: true,
		assign: func(e *models.BuildingEntry, v string) { e.BuildingCode = v }},
	{name: "emid", aliases: []string{"emid"},
		assign: func(e *models.BuildingEntry, v string) { e.Emid = utils.NilIfBlank(v) }},
	{name: "service area", aliases: []string{"service area", "sa"},
		assign: func(e *models.BuildingEntry, v string) { e.ServiceArea = utils.NilIfBlank(v) }},
	{name: "business unit", aliases: []string{"building business unit", "business unit", "bu"},
		assign: func(e *models.BuildingEntry, v string) { e.BusinessUnit = utils.NilIfBlank(v) }},
	{name: "name", aliases: []string{"building name", "name"},
		assign: func(e *models.BuildingEntry, v string) { e.Name = utils.NilIfBlank(v) }},
	{name: "address", aliases: []string{"address", "building address"},
		assign: func(e *models.BuildingEntry, v string) { e.Address = utils.NilIfBlank(v) }},
	{name: "cross reference", aliases: []string{"cross reference", "xref", "gl location", "location code"},
		assign: func(e *models.BuildingEntry, v string) { e.CrossReference = utils.NilIfBlank(v) }},
}

var emidColumns = []column[models.EmidEntry]{
	{name: "emid", aliases: []string{"emid"}, required: true,
		assign: func(e *models.EmidEntry, v string) { e.Emid = v }},
	{name: "service area", aliases: []string{"service area", "sa"},
		assign: func(e *models.EmidEntry, v string) { e.ServiceArea = utils.NilIfBlank(v) }},
	{name: "region", aliases: []string{"region", "operational region"},
		assign: func(e *models.EmidEntry, v string) { e.Region = utils.NilIfBlank(v) }},
	{name: "job code", aliases: []string{"job code", "job"},
		assign: func(e *models.EmidEntry, v string) { e.JobCode = utils.NilIfBlank(v) }},
	{name: "description", aliases: []string{"description", "emid description"},
		assign: func(e *models.EmidEntry, v string) { e.Description = utils.NilIfBlank(v) }},
}

var locationColumns = []column[models.LocationLookupEntry]{
	{name: "location number", aliases: []string{"location number", "location #", "job number", "location", "job"}, required: true,
		assign: func(e *models.LocationLookupEntry, v string) { e.LocationNumber = v }},
	{name: "building code", aliases: []string{"building code", "kp bldg", "bldg"}, required: true,
		assign: func(e *models.LocationLookupEntry, v string) { e.BuildingCode = v }},
	{name: "emid", aliases: []string{"emid"},
		assign: func(e *models.LocationLookupEntry, v string) { e.Emid = utils.NilIfBlank(v) }},
}

// LoadReferenceTables reads the four reference tables. A table whose sheet or file
// does not exist is left nil so the snapshot reports it as missing; a table lacking a
// required column fails here with a *reference.TableError.
func LoadReferenceTables(ctx context.Context, src ReferenceSource, logger logrus.FieldLogger) (reference.Tables, error) {
	raw, err := readReferenceSheets(ctx, src)
	if err != nil {
		return reference.Tables{}, err
	}
	strict := config.StrictReferenceColumns()

	var tables reference.Tables
	if tables.Edi, err = mapTable(reference.TableEdi, raw[src.EdiSheet], ediColumns, strict, logger); err != nil {
		return reference.Tables{}, err
	}
	if tables.Buildings, err = mapTable(reference.TableBuilding, raw[src.BuildingSheet], buildingColumns, strict, logger); err != nil {
		return reference.Tables{}, err
	}
	if tables.Emids, err = mapTable(reference.TableEmid, raw[src.EmidSheet], emidColumns, strict, logger); err != nil {
		return reference.Tables{}, err
	}
	if tables.Locations, err = mapTable(reference.TableLocation, raw[src.LocationSheet], locationColumns, strict, logger); err != nil {
		return reference.Tables{}, err
	}
	return tables, nil
}

func readReferenceSheets(ctx context.Context, src ReferenceSource) (map[string][]models.RawRow, error) {
	sheets := []string{src.EdiSheet, src.BuildingSheet, src.EmidSheet, src.LocationSheet}

	switch extension(src.Path) {
	case ".xlsx", ".xlsm":
		r, err := Open(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open reference workbook: %w", err)
		}
		defer r.Close()
		return ReadWorkbook(r, sheets...)
	case "":
		out := make(map[string][]models.RawRow, len(sheets))
		for _, s := range sheets {
			rows, err := ReadTable(ctx, Join(src.Path, s+".csv"), "")
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[s] = rows
		}
		return out, nil
	default:
		return nil, fmt.Errorf("reference %s: %w", src.Path, ErrUnsupportedFormat)
	}
}

// mapTable converts raw rows into typed entries. A nil input stays nil.
func mapTable[T any](table string, rows []models.RawRow, cols []column[T], strict bool, logger logrus.FieldLogger) ([]T, error) {
	if rows == nil {
		return nil, nil
	}
	out := make([]T, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	header := rows[0]
	for _, c := range cols {
		if header.Has(c.aliases...) {
			continue
		}
		if c.required {
			return nil, reference.NewMissingColumnError(table, c.name)
		}
		logColumn(logger, strict, table, "optional column missing", c.name)
	}
	for _, h := range unknownHeaders(header, cols) {
		logColumn(logger, strict, table, "unknown column ignored", h)
	}

	for _, row := range rows {
		if row.IsBlank() {
			continue
		}
		var e T
		for _, c := range cols {
			if v := row.Get(c.aliases...); v != "" {
				c.assign(&e, v)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func unknownHeaders[T any](row models.RawRow, cols []column[T]) []string {
	known := make(map[string]bool)
	for _, c := range cols {
		for _, a := range c.aliases {
			known[models.NormalizeHeader(a)] = true
		}
	}
	var out []string
	for h := range row.Cells {
		if !known[h] {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}

func logColumn(logger logrus.FieldLogger, strict bool, table, msg, col string) {
	if logger == nil {
		return
	}
	entry := logger.WithFields(logrus.Fields{"table": table, "column": strings.TrimSpace(col)})
	if strict {
		entry.Error(msg)
		return
	}
	entry.Debug(msg)
}
