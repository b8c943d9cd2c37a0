package report

import (
	"context"
	"log/slog"
	"sort"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/domain/report"
)

type service struct {
	attendance attendance.Service
	logger     *slog.Logger
}

// NewService creates the summary service reading through the attendance
// session's snapshot.
func NewService(attendanceSvc attendance.Service, logger *slog.Logger) report.Service {
	return &service{attendance: attendanceSvc, logger: logger}
}

func (s *service) Summary(ctx context.Context, filter attendance.ListFilter) (report.SummaryResponse, error) {
	records, _ := s.attendance.Snapshot(ctx, filter)

	return report.SummaryResponse{
		ByReport: groupBy(records, func(r *attendance.Record) string {
			return r.ReportName
		}),
		ByBusinessLine: groupBy(records, func(r *attendance.Record) string {
			if r.BusinessLine == "" {
				return report.KeySinRubro
			}
			return r.BusinessLine
		}),
		ByOccupation: groupBy(records, func(r *attendance.Record) string {
			if r.Occupation == "" {
				return report.KeySinEspecificar
			}
			return r.Occupation
		}),
	}, nil
}

// groupBy folds the records into per-key summaries. Colours follow the order
// in which keys first appear, so a group keeps its colour while records are
// edited; the returned slice is sorted by net pay, largest first.
func groupBy(records []attendance.Record, keyOf func(*attendance.Record) string) []report.GroupSummary {
	index := make(map[string]int)
	var groups []report.GroupSummary

	for i := range records {
		rec := &records[i]
		key := keyOf(rec)

		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, report.GroupSummary{
				Key:   key,
				Color: report.Palette[gi%len(report.Palette)],
			})
		}

		g := &groups[gi]
		g.Count++
		g.SumMonthlySalary = g.SumMonthlySalary.Add(rec.MonthlySalary)
		g.SumDeductions = g.SumDeductions.Add(rec.Financials.TotalDeductions())
		g.SumBonuses = g.SumBonuses.Add(rec.Bonus)
		g.SumNetPay = g.SumNetPay.Add(rec.Financials.NetPay)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].SumNetPay.GreaterThan(groups[j].SumNetPay)
	})
	return groups
}
