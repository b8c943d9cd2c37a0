package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Person - one entry of the employee master list. The directory is the
// authoritative source for occupation, salary and site when attendance rows
// are validated against it.
type Person struct {
	ID           string
	DNI          string
	Name         string
	Occupation   string
	Salary       decimal.Decimal
	HireDate     time.Time
	Active       bool
	Site         string
	Employer     string
	BusinessLine string
	Phone        string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
