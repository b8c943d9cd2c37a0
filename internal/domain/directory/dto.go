package directory

import (
	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/pkg/validator"
)

// ========================================
// LOOKUP DTOs
// ========================================

// LookupStatus enum
type LookupStatus string

const (
	// LookupFound - an active entry matched.
	LookupFound LookupStatus = "found"
	// LookupNotFound - no active entry matched DNI or name.
	LookupNotFound LookupStatus = "not_found"
	// LookupUnavailable - the directory could not answer (outage, timeout).
	LookupUnavailable LookupStatus = "unavailable"
)

// LookupResult - typed outcome of a directory lookup. Consumers switch on
// Status exhaustively; Person is set only for LookupFound.
type LookupResult struct {
	Status LookupStatus
	Person *Person
	Reason string
}

// ========================================
// CRUD DTOs
// ========================================

type CreatePersonRequest struct {
	DNI          string          `json:"dni"`
	Name         string          `json:"name"`
	Occupation   string          `json:"occupation"`
	Salary       decimal.Decimal `json:"salary"`
	HireDate     string          `json:"hire_date,omitempty"`
	Active       *bool           `json:"active,omitempty"`
	Site         string          `json:"site,omitempty"`
	Employer     string          `json:"employer,omitempty"`
	BusinessLine string          `json:"business_line,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
}

func (r *CreatePersonRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidDNI(r.DNI) {
		errs = append(errs, validator.ValidationError{
			Field:   "dni",
			Message: "dni must be 8 digits",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if validator.IsEmpty(r.Occupation) {
		errs = append(errs, validator.ValidationError{
			Field:   "occupation",
			Message: "occupation is required",
		})
	}
	if r.Salary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.HireDate != "" {
		if _, ok := validator.IsValidDate(r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hire_date",
				Message: "hire_date must be YYYY-MM-DD",
			})
		}
	}
	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is invalid",
		})
	}
	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone is invalid",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePersonRequest struct {
	DNI          *string          `json:"dni,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Occupation   *string          `json:"occupation,omitempty"`
	Salary       *decimal.Decimal `json:"salary,omitempty"`
	HireDate     *string          `json:"hire_date,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	Site         *string          `json:"site,omitempty"`
	Employer     *string          `json:"employer,omitempty"`
	BusinessLine *string          `json:"business_line,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	Email        *string          `json:"email,omitempty"`
}

func (r *UpdatePersonRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DNI != nil && !validator.IsValidDNI(*r.DNI) {
		errs = append(errs, validator.ValidationError{
			Field:   "dni",
			Message: "dni must be 8 digits",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.Salary != nil && r.Salary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must not be negative",
		})
	}
	if r.HireDate != nil {
		if _, ok := validator.IsValidDate(*r.HireDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "hire_date",
				Message: "hire_date must be YYYY-MM-DD",
			})
		}
	}
	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is invalid",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PersonResponse struct {
	ID           string          `json:"id"`
	DNI          string          `json:"dni"`
	Name         string          `json:"name"`
	Occupation   string          `json:"occupation"`
	Salary       decimal.Decimal `json:"salary"`
	HireDate     string          `json:"hire_date,omitempty"`
	Active       bool            `json:"active"`
	Site         string          `json:"site,omitempty"`
	Employer     string          `json:"employer,omitempty"`
	BusinessLine string          `json:"business_line,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Email        string          `json:"email,omitempty"`
}

type ListFilter struct {
	// Search matches DNI, name, occupation or site, case-insensitive.
	Search string
	// ActiveOnly restricts to active entries.
	ActiveOnly bool
	Page       int
	Limit      int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
}

type ListPersonResponse struct {
	Data       []PersonResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// SheetImportResult - outcome of a master-list spreadsheet import.
type SheetImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
