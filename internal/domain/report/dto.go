package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
)

// Sentinel group keys for records with a blank grouping field.
const (
	KeySinRubro       = "Sin Rubro"
	KeySinEspecificar = "Sin Especificar"
)

// Palette - fixed display colours assigned to groups by insertion order,
// cycling when exhausted.
var Palette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#F97316", "#84CC16", "#EC4899", "#6366F1",
}

// GroupSummary - aggregate figures for one group key.
type GroupSummary struct {
	Key              string          `json:"key"`
	Count            int             `json:"count"`
	SumMonthlySalary decimal.Decimal `json:"sum_monthly_salary"`
	SumDeductions    decimal.Decimal `json:"sum_deductions"`
	SumBonuses       decimal.Decimal `json:"sum_bonuses"`
	SumNetPay        decimal.Decimal `json:"sum_net_pay"`
	Color            string          `json:"color"`
}

// SummaryResponse - the three independent groupings of the current filtered
// record set, each sorted descending by net pay.
type SummaryResponse struct {
	ByReport       []GroupSummary `json:"by_report"`
	ByBusinessLine []GroupSummary `json:"by_business_line"`
	ByOccupation   []GroupSummary `json:"by_occupation"`
}

// Service derives read-only summaries from the attendance record set.
type Service interface {
	Summary(ctx context.Context, filter attendance.ListFilter) (SummaryResponse, error)
}
