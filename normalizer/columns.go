package normalizer

import "github.com/mmdatafocus/dimension_resolver/models"

// columnSet lists the header aliases one source system uses for each canonical field.
type columnSet struct {
	invoice      []string
	secondaryKey []string
	workDate     []string
	shiftStart   []string
	customer     []string
	employeeId   []string
	employeeName []string
	hours        []string
	payRate      []string
	billRate     []string
	amount       []string
}

var sourceColumns = map[models.SourceSystem]columnSet{
	models.SourceSystemA: {
		invoice:      []string{"invoice number", "invoice #", "invoice no", "invoice"},
		secondaryKey: []string{"location number", "location #", "location no", "location"},
		workDate:     []string{"work date", "date worked", "shift date"},
		shiftStart:   []string{"start time", "shift start"},
		customer:     []string{"customer", "customer name"},
		employeeId:   []string{"employee id", "employee #", "emp id"},
		employeeName: []string{"employee name", "employee"},
		hours:        []string{"hours", "total hours"},
		payRate:      []string{"pay rate"},
		billRate:     []string{"bill rate"},
		amount:       []string{"amount", "bill amount", "total"},
	},
	models.SourceSystemB: {
		invoice:      []string{"invoice number", "invoice no", "invoice #", "invoice"},
		secondaryKey: []string{"job number", "job #", "job no", "job"},
		workDate:     []string{"service date", "date", "work date"},
		shiftStart:   []string{"clock in", "time in"},
		customer:     []string{"client", "customer"},
		employeeId:   []string{"worker id", "employee id"},
		employeeName: []string{"worker name", "employee name"},
		hours:        []string{"units", "hours"},
		payRate:      []string{"pay rate", "wage"},
		billRate:     []string{"bill rate", "rate"},
		amount:       []string{"extended amount", "amount"},
	},
}

func (c columnSet) all() [][]string {
	return [][]string{
		c.invoice, c.secondaryKey, c.workDate, c.shiftStart, c.customer,
		c.employeeId, c.employeeName, c.hours, c.payRate, c.billRate, c.amount,
	}
}
