package attendance

import (
	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/payroll"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/validator"
)

// ========================================
// IMPORT DTOs
// ========================================

// RowError - one rejected row of an imported file.
type RowError struct {
	// Key is the row's DNI, or "row-N" when the DNI cell was blank.
	Key    string `json:"key"`
	Row    int    `json:"row"`
	DNI    string `json:"dni,omitempty"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult - outcome of ingesting a single file.
type ImportResult struct {
	SourceFile   string     `json:"source_file"`
	ReportName   string     `json:"report_name"`
	Month        string     `json:"month"`
	DaysInPeriod int        `json:"days_in_period"`
	Accepted     int        `json:"accepted"`
	Rejected     int        `json:"rejected"`
	Errors       []RowError `json:"errors,omitempty"`
}

// ========================================
// EDIT DTOs
// ========================================

type EditDayRequest struct {
	Day  int    `json:"day"`
	Code string `json:"code"`
	// SourceFile disambiguates when the same employee code was imported
	// from more than one file. Optional while the code is unique.
	SourceFile string `json:"source_file,omitempty"`
}

func (r *EditDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Day < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "day",
			Message: "day must be at least 1",
		})
	}
	if !Code(r.Code).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be one of the attendance vocabulary",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRecordRequest struct {
	PayrollType   *string          `json:"payroll_type,omitempty"`
	PensionScheme *string          `json:"pension_scheme,omitempty"`
	Bonus         *decimal.Decimal `json:"bonus,omitempty"`
	Site          *string          `json:"site,omitempty"`
	// SourceFile disambiguates when the same employee code was imported
	// from more than one file. Optional while the code is unique.
	SourceFile string `json:"source_file,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PayrollType != nil && !payroll.Type(*r.PayrollType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "payroll_type",
			Message: "payroll_type must be planilla or honorarios",
		})
	}
	if r.PensionScheme != nil && !payroll.Scheme(*r.PensionScheme).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "pension_scheme",
			Message: "pension_scheme must be none, afp or onp",
		})
	}
	if r.Bonus != nil && r.Bonus.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "bonus",
			Message: "bonus must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// SETTINGS DTOs
// ========================================

type UpdateSettingsRequest struct {
	LatePenalty          *decimal.Decimal `json:"late_penalty,omitempty"`
	DaysInPeriod         *int             `json:"days_in_period,omitempty"`
	DefaultPayrollType   *string          `json:"default_payroll_type,omitempty"`
	DefaultPensionScheme *string          `json:"default_pension_scheme,omitempty"`
	DefaultSite          *string          `json:"default_site,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LatePenalty != nil && r.LatePenalty.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "late_penalty",
			Message: "late_penalty must not be negative",
		})
	}
	if r.DaysInPeriod != nil && *r.DaysInPeriod < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "days_in_period",
			Message: "days_in_period must be at least 1",
		})
	}
	if r.DefaultPayrollType != nil && !payroll.Type(*r.DefaultPayrollType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_payroll_type",
			Message: "default_payroll_type must be planilla or honorarios",
		})
	}
	if r.DefaultPensionScheme != nil && !payroll.Scheme(*r.DefaultPensionScheme).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "default_pension_scheme",
			Message: "default_pension_scheme must be none, afp or onp",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettingsResponse struct {
	DaysInPeriod         int             `json:"days_in_period"`
	LatePenalty          decimal.Decimal `json:"late_penalty"`
	DefaultPayrollType   string          `json:"default_payroll_type"`
	DefaultPensionScheme string          `json:"default_pension_scheme"`
	DefaultSite          string          `json:"default_site,omitempty"`
}

// ========================================
// LIST DTOs
// ========================================

// ListFilter - search and month filter plus pagination, combined the same
// way for listing, aggregation and export.
type ListFilter struct {
	// Search matches code, name, DNI or occupation, case-insensitive.
	Search string
	// Month filters by period label; empty or "TODOS" selects all months.
	Month string
	Page  int
	Limit int
}

// Normalize fills pagination defaults in place.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

type RecordResponse struct {
	EmployeeCode string `json:"employee_code"`
	Name         string `json:"name"`
	DNI          string `json:"dni"`
	Occupation   string `json:"occupation,omitempty"`

	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	DailySalary   decimal.Decimal `json:"daily_salary"`
	PayrollType   string          `json:"payroll_type"`
	PensionScheme string          `json:"pension_scheme"`
	Bonus         decimal.Decimal `json:"bonus"`
	Site          string          `json:"site,omitempty"`
	Employer      string          `json:"employer,omitempty"`
	BusinessLine  string          `json:"business_line,omitempty"`

	Days map[int]string `json:"days"`

	OnTime    int `json:"on_time"`
	Late      int `json:"late"`
	Absent    int `json:"absent"`
	ExtraDays int `json:"extra_days"`

	AttendanceDeduction decimal.Decimal `json:"attendance_deduction"`
	PensionDeduction    decimal.Decimal `json:"pension_deduction"`
	ExtraDaysValue      decimal.Decimal `json:"extra_days_value"`
	NetPay              decimal.Decimal `json:"net_pay"`

	SourceFile string `json:"source_file"`
	ReportName string `json:"report_name"`
	Month      string `json:"month"`
}

type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// FileInfo - one loaded source file.
type FileInfo struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
}
