package payroll

import (
	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/payroll"
)

// ComputeInput carries everything the financial formulas read. The shared
// late penalty is passed in explicitly so a settings change can never leave
// a stale cached deduction behind.
type ComputeInput struct {
	MonthlySalary decimal.Decimal
	DailySalary   decimal.Decimal
	LateCount     int
	AbsentCount   int
	ExtraDays     int
	PayrollType   payroll.Type
	PensionScheme payroll.Scheme
	Bonus         decimal.Decimal
	LatePenalty   decimal.Decimal
}

// Compute derives the financial outputs for one record. Pure function; the
// caller re-invokes it after any mutation of its inputs.
func Compute(in ComputeInput) payroll.Financials {
	attendanceDeduction := in.LatePenalty.Mul(decimal.NewFromInt(int64(in.LateCount))).
		Add(in.DailySalary.Mul(decimal.NewFromInt(int64(in.AbsentCount))))

	pensionDeduction := pensionFor(in.PayrollType, in.PensionScheme, in.MonthlySalary)

	extraDaysValue := in.DailySalary.Mul(decimal.NewFromInt(int64(in.ExtraDays)))

	netPay := in.MonthlySalary.
		Sub(attendanceDeduction).
		Sub(pensionDeduction).
		Add(extraDaysValue).
		Add(in.Bonus)
	if netPay.IsNegative() {
		netPay = decimal.Zero
	}

	return payroll.Financials{
		AttendanceDeduction: attendanceDeduction,
		PensionDeduction:    pensionDeduction,
		ExtraDaysValue:      extraDaysValue,
		Bonus:               in.Bonus,
		NetPay:              netPay,
	}
}

// pensionFor applies the withholding tier. Fee-based employees are never
// withheld, whatever the scheme field says.
func pensionFor(t payroll.Type, s payroll.Scheme, monthly decimal.Decimal) decimal.Decimal {
	if t != payroll.TypePlanilla {
		return decimal.Zero
	}
	switch s {
	case payroll.SchemeAFP:
		return monthly.Mul(payroll.RateAFP)
	case payroll.SchemeONP:
		return monthly.Mul(payroll.RateONP)
	default:
		return decimal.Zero
	}
}
