package payroll

import "github.com/shopspring/decimal"

// Type enum - how an employee is paid
type Type string

const (
	// TypePlanilla - regular payroll, subject to pension withholding
	TypePlanilla Type = "planilla"
	// TypeHonorarios - fee-based (recibo por honorarios), never subject to pension withholding
	TypeHonorarios Type = "honorarios"
)

func (t Type) Valid() bool {
	return t == TypePlanilla || t == TypeHonorarios
}

// Scheme enum - pension withholding tier. Only meaningful for TypePlanilla.
type Scheme string

const (
	SchemeNone Scheme = "none"
	SchemeAFP  Scheme = "afp"
	SchemeONP  Scheme = "onp"
)

func (s Scheme) Valid() bool {
	return s == SchemeNone || s == SchemeAFP || s == SchemeONP
}

// Withholding rates applied to the monthly base salary.
var (
	RateAFP = decimal.NewFromFloat(0.117)
	RateONP = decimal.NewFromFloat(0.13)
)

// Financials - derived money figures for one attendance record. Never edited
// directly, always recomputed from the record's counts and static inputs.
type Financials struct {
	AttendanceDeduction decimal.Decimal
	PensionDeduction    decimal.Decimal
	ExtraDaysValue      decimal.Decimal
	Bonus               decimal.Decimal
	NetPay              decimal.Decimal
}

// TotalDeductions returns attendance plus pension deductions.
func (f Financials) TotalDeductions() decimal.Decimal {
	return f.AttendanceDeduction.Add(f.PensionDeduction)
}
