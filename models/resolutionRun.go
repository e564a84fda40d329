package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const persistBatchSize = 500

type ResolutionRun struct {
	ID           uint       `gorm:"primary_key" json:"id"`
	RunId        string     `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	Status       RunStatus  `gorm:"size:20;not null" json:"status"`
	Operator     string     `gorm:"size:100" json:"operator"`
	LinesSourceA int        `json:"lines_source_a"`
	LinesSourceB int        `json:"lines_source_b"`
	EdiMatched   int        `json:"edi_matched"`
	FallbackUsed int        `json:"fallback_used"`
	Ambiguous    int        `json:"ambiguous"`
	Unresolved   int        `json:"unresolved"`
	Rejected     int        `json:"rejected"`
	SummaryJSON  []byte     `gorm:"type:json" json:"summary"`
	StartedAt    *time.Time `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	DurationMs   int64      `json:"duration_ms"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type ResolvedInvoiceLineRecord struct {
	ID                   uint            `gorm:"primary_key" json:"id"`
	RunId                string          `gorm:"index;size:36;not null" json:"run_id"`
	InvoiceNumber        string          `gorm:"index;size:50;not null" json:"invoice_number"`
	Source               SourceSystem    `gorm:"size:5;not null" json:"source"`
	SourceRow            int             `json:"source_row"`
	SecondaryKey         *string         `gorm:"size:50" json:"secondary_key"`
	WorkDate             time.Time       `gorm:"type:date" json:"work_date"`
	EmployeeId           *string         `gorm:"size:50" json:"employee_id"`
	EmployeeName         *string         `gorm:"size:150" json:"employee_name"`
	Hours                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hours"`
	PayRate              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pay_rate"`
	BillRate             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"bill_rate"`
	Amount               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	BuildingCode         *string         `gorm:"index;size:50" json:"building_code"`
	BuildingBusinessUnit *string         `gorm:"size:50" json:"building_business_unit"`
	Emid                 *string         `gorm:"size:50" json:"emid"`
	ServiceArea          *string         `gorm:"size:50" json:"service_area"`
	JobCode              *string         `gorm:"size:50" json:"job_code"`
	OperationalRegion    *string         `gorm:"size:50" json:"operational_region"`
	PayingRegion         *string         `gorm:"size:50" json:"paying_region"`
	NotesJSON            []byte          `gorm:"type:json" json:"notes"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ResolutionConflict struct {
	ID             uint         `gorm:"primary_key" json:"id"`
	RunId          string       `gorm:"index;size:36;not null" json:"run_id"`
	Kind           ConflictKind `gorm:"size:50;not null" json:"kind"`
	InvoiceNumber  string       `gorm:"index;size:50;not null" json:"invoice_number"`
	Source         SourceSystem `gorm:"size:5;not null" json:"source"`
	SecondaryKey   string       `gorm:"size:50" json:"secondary_key"`
	Emid           *string      `gorm:"size:50" json:"emid"`
	CandidatesJSON []byte       `gorm:"type:json" json:"candidates"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

type RejectedInvoiceRow struct {
	ID            uint         `gorm:"primary_key" json:"id"`
	RunId         string       `gorm:"index;size:36;not null" json:"run_id"`
	Source        SourceSystem `gorm:"size:5;not null" json:"source"`
	RowNumber     int          `json:"row_number"`
	InvoiceNumber string       `gorm:"size:50" json:"invoice_number"`
	Reason        string       `gorm:"size:255" json:"reason"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func NewResolutionRun(runId string, operator string, startedAt time.Time, finishedAt time.Time, summary RunSummary) (*ResolutionRun, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	return &ResolutionRun{
		RunId:        runId,
		Status:       RunStatusSuccess,
		Operator:     operator,
		LinesSourceA: summary.LinesBySource[SourceSystemA],
		LinesSourceB: summary.LinesBySource[SourceSystemB],
		EdiMatched:   summary.EdiMatched,
		FallbackUsed: summary.FallbackUsed,
		Ambiguous:    summary.Ambiguous,
		Unresolved:   summary.Unresolved,
		Rejected:     summary.Rejected,
		SummaryJSON:  summaryJSON,
		StartedAt:    &startedAt,
		FinishedAt:   &finishedAt,
		DurationMs:   finishedAt.Sub(startedAt).Milliseconds(),
	}, nil
}

func NewResolvedInvoiceLineRecord(runId string, r ResolvedInvoiceLine) (ResolvedInvoiceLineRecord, error) {
	notes := r.Dimensions.Notes
	if notes == nil {
		notes = []Note{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return ResolvedInvoiceLineRecord{}, err
	}
	d := r.Dimensions
	return ResolvedInvoiceLineRecord{
		RunId:                runId,
		InvoiceNumber:        r.Line.InvoiceNumber,
		Source:               r.Line.Source,
		SourceRow:            r.Line.SourceRow,
		SecondaryKey:         r.Line.SecondaryKey,
		WorkDate:             r.Line.WorkDate,
		EmployeeId:           r.Line.EmployeeId,
		EmployeeName:         r.Line.EmployeeName,
		Hours:                r.Line.Hours,
		PayRate:              r.Line.PayRate,
		BillRate:             r.Line.BillRate,
		Amount:               r.Line.Amount,
		BuildingCode:         d.BuildingCode,
		BuildingBusinessUnit: d.BuildingBusinessUnit,
		Emid:                 d.Emid,
		ServiceArea:          d.ServiceArea,
		JobCode:              d.JobCode,
		OperationalRegion:    d.OperationalRegion,
		PayingRegion:         d.PayingRegion,
		NotesJSON:            notesJSON,
	}, nil
}

func NewResolutionConflict(runId string, c Conflict) (ResolutionConflict, error) {
	candidatesJSON, err := json.Marshal(c.Candidates)
	if err != nil {
		return ResolutionConflict{}, err
	}
	return ResolutionConflict{
		RunId:          runId,
		Kind:           c.Kind,
		InvoiceNumber:  c.InvoiceNumber,
		Source:         c.Source,
		SecondaryKey:   c.SecondaryKey,
		Emid:           c.Emid,
		CandidatesJSON: candidatesJSON,
	}, nil
}

// SaveRun writes the run header, every resolved line, the conflicts and the rejected
// rows in one transaction.
func SaveRun(ctx context.Context, db *gorm.DB, run *ResolutionRun, lines []ResolvedInvoiceLine, conflicts []Conflict, rejected []RejectedRow) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	if run == nil || run.RunId == "" {
		return errors.New("run id is required")
	}

	lineRecords := make([]ResolvedInvoiceLineRecord, 0, len(lines))
	for _, l := range lines {
		rec, err := NewResolvedInvoiceLineRecord(run.RunId, l)
		if err != nil {
			return err
		}
		lineRecords = append(lineRecords, rec)
	}
	conflictRecords := make([]ResolutionConflict, 0, len(conflicts))
	for _, c := range conflicts {
		rec, err := NewResolutionConflict(run.RunId, c)
		if err != nil {
			return err
		}
		conflictRecords = append(conflictRecords, rec)
	}
	rejectedRecords := make([]RejectedInvoiceRow, 0, len(rejected))
	for _, r := range rejected {
		rejectedRecords = append(rejectedRecords, RejectedInvoiceRow{
			RunId:         run.RunId,
			Source:        r.Source,
			RowNumber:     r.RowNumber,
			InvoiceNumber: r.InvoiceNumber,
			Reason:        r.Reason,
		})
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(lineRecords) > 0 {
			if err := tx.CreateInBatches(lineRecords, persistBatchSize).Error; err != nil {
				return err
			}
		}
		if len(conflictRecords) > 0 {
			if err := tx.CreateInBatches(conflictRecords, persistBatchSize).Error; err != nil {
				return err
			}
		}
		if len(rejectedRecords) > 0 {
			if err := tx.CreateInBatches(rejectedRecords, persistBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
