package attendance

import (
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/payroll"
)

// Counts - derived attendance counters, always the exact recount of the
// current day mapping.
type Counts struct {
	OnTime    int
	Late      int
	Absent    int
	ExtraDays int
}

// Record is one employee's attendance and pay for one imported period.
type Record struct {
	EmployeeCode string
	Name         string
	DNI          string
	Occupation   string

	MonthlySalary decimal.Decimal
	// DailySalary comes from the input file as-given; it is intentionally
	// not derived from MonthlySalary.
	DailySalary   decimal.Decimal
	PayrollType   payroll.Type
	PensionScheme payroll.Scheme
	Bonus         decimal.Decimal
	Site          string
	Employer      string
	BusinessLine  string

	// Days maps day number (1..DaysInPeriod) to its code. A missing entry
	// reads as CodeNoLaborable.
	Days   map[int]Code
	Counts Counts

	Financials payroll.Financials

	SourceFile string
	ReportName string
	Month      string
}

// DayCode returns the code for the given day, defaulting to non-working day.
func (r *Record) DayCode(day int) Code {
	if c, ok := r.Days[day]; ok && c != "" {
		return c
	}
	return CodeNoLaborable
}

// Recount tallies counters from scratch out of the day mapping. Incremental
// counter updates must stay exactly equivalent to this.
func (r *Record) Recount() Counts {
	var c Counts
	for _, code := range r.Days {
		switch code.Category() {
		case CategoryOnTime:
			c.OnTime++
		case CategoryLate:
			c.Late++
		case CategoryAbsence:
			c.Absent++
		case CategoryExtraDay:
			c.ExtraDays++
		}
	}
	return c
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() Record {
	out := *r
	out.Days = make(map[int]Code, len(r.Days))
	for d, c := range r.Days {
		out.Days[d] = c
	}
	return out
}

// ReportNameFor derives the report grouping label from a source file name:
// the base name without its extension.
func ReportNameFor(sourceFile string) string {
	base := filepath.Base(sourceFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Settings - session-scoped configuration shared by every record. Passed
// explicitly into each computation instead of read from a global.
type Settings struct {
	// DaysInPeriod grows to the widest imported file and never shrinks.
	DaysInPeriod int
	// LatePenalty is the flat deduction per late day, shared by all records.
	LatePenalty decimal.Decimal

	// Defaults applied to newly ingested rows.
	DefaultPayrollType   payroll.Type
	DefaultPensionScheme payroll.Scheme
	DefaultSite          string
}

// DefaultSettings mirrors the initial state of a fresh session.
func DefaultSettings() Settings {
	return Settings{
		DaysInPeriod:         28,
		LatePenalty:          decimal.NewFromInt(5),
		DefaultPayrollType:   payroll.TypePlanilla,
		DefaultPensionScheme: payroll.SchemeNone,
	}
}
