package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/domain/directory"
	"github.com/planilla-hr/planilla-backend-go/internal/domain/payroll"
	payrollsvc "github.com/planilla-hr/planilla-backend-go/internal/service/payroll"
)

// lookupWorkers bounds the concurrent directory lookups per imported file.
const lookupWorkers = 8

type service struct {
	store         *recordStore
	lookup        directory.LookupService
	logger        *slog.Logger
	lookupTimeout time.Duration
}

// NewService creates the attendance session service. lookupTimeout caps each
// directory lookup; past it the row is rejected as unavailable rather than
// blocking the import.
func NewService(lookup directory.LookupService, logger *slog.Logger, lookupTimeout time.Duration) attendance.Service {
	return &service{
		store:         newRecordStore(),
		lookup:        lookup,
		logger:        logger,
		lookupTimeout: lookupTimeout,
	}
}

// ========================================
// IMPORT
// ========================================

func (s *service) Import(ctx context.Context, grid [][]string, sourceFile string) (attendance.ImportResult, error) {
	generation := s.store.Generation(sourceFile)

	sheet, err := ParseGrid(grid)
	if err != nil {
		return attendance.ImportResult{}, err
	}

	daysInPeriod := s.store.GrowDays(sheet.DaysInPeriod)
	settings := s.store.Settings()

	result := attendance.ImportResult{
		SourceFile:   sourceFile,
		ReportName:   attendance.ReportNameFor(sourceFile),
		Month:        sheet.Month,
		DaysInPeriod: daysInPeriod,
	}

	lookups := s.lookupRows(ctx, sheet.Rows)

	var accepted []*attendance.Record
	for i, raw := range sheet.Rows {
		rec, rowErr := s.buildRecord(raw, lookups[i], settings, result)
		if rowErr != nil {
			result.Rejected++
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		accepted = append(accepted, rec)
	}

	if !s.store.Commit(sourceFile, generation, accepted) {
		s.logger.Warn("import discarded, source file removed while ingesting",
			slog.String("source_file", sourceFile),
			slog.Int("rows", len(accepted)))
		result.Accepted = 0
		return result, nil
	}

	result.Accepted = len(accepted)
	s.logger.Info("attendance file imported",
		slog.String("source_file", sourceFile),
		slog.String("month", result.Month),
		slog.Int("accepted", result.Accepted),
		slog.Int("rejected", result.Rejected))
	return result, nil
}

// lookupRows resolves every row against the directory concurrently. Results
// are index-tagged so row order is independent of completion order.
func (s *service) lookupRows(ctx context.Context, rows []RawRow) []directory.LookupResult {
	results := make([]directory.LookupResult, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupWorkers)
	for i, raw := range rows {
		i, raw := i, raw
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			results[i] = s.lookup.Lookup(lctx, raw.DNI, raw.Name)
			return nil
		})
	}
	// Workers never return errors; unavailability is a per-row status.
	_ = g.Wait()

	return results
}

func (s *service) buildRecord(raw RawRow, lookup directory.LookupResult, settings attendance.Settings, res attendance.ImportResult) (*attendance.Record, *attendance.RowError) {
	rowErr := func(reason string) *attendance.RowError {
		key := raw.DNI
		if key == "" {
			key = fmt.Sprintf("row-%d", raw.Index+1)
		}
		return &attendance.RowError{
			Key:    key,
			Row:    raw.Index + 1,
			DNI:    raw.DNI,
			Name:   raw.Name,
			Reason: reason,
		}
	}

	if raw.EmployeeCode == "" {
		return nil, rowErr("employee code is empty")
	}

	switch lookup.Status {
	case directory.LookupFound:
	case directory.LookupNotFound:
		reason := lookup.Reason
		if reason == "" {
			reason = "no active directory entry matched"
		}
		return nil, rowErr(reason)
	case directory.LookupUnavailable:
		reason := lookup.Reason
		if reason == "" {
			reason = directory.ErrLookupUnavailable.Error()
		}
		return nil, rowErr(reason)
	default:
		return nil, rowErr(fmt.Sprintf("unexpected lookup status %q", lookup.Status))
	}

	rec := &attendance.Record{
		EmployeeCode:  raw.EmployeeCode,
		Name:          raw.Name,
		DNI:           raw.DNI,
		Occupation:    raw.Occupation,
		MonthlySalary: raw.MonthlySalary,
		DailySalary:   raw.DailySalary,
		PayrollType:   settings.DefaultPayrollType,
		PensionScheme: settings.DefaultPensionScheme,
		Site:          settings.DefaultSite,
		Days:          raw.Days,
		Counts:        raw.Counts,
		SourceFile:    res.SourceFile,
		ReportName:    res.ReportName,
		Month:         res.Month,
	}
	enrich(rec, lookup.Person)

	rec.Financials = payrollsvc.Compute(computeInput(rec, settings))
	return rec, nil
}

// enrich overlays master-list data on the file row. The directory wins on
// identity and monthly salary; the daily salary stays as the file gave it.
func enrich(rec *attendance.Record, p *directory.Person) {
	if p == nil {
		return
	}
	if p.Name != "" {
		rec.Name = p.Name
	}
	if rec.DNI == "" {
		rec.DNI = p.DNI
	}
	if p.Occupation != "" {
		rec.Occupation = p.Occupation
	}
	if p.Salary.IsPositive() {
		rec.MonthlySalary = p.Salary
	}
	if p.Site != "" {
		rec.Site = p.Site
	}
	if p.Employer != "" {
		rec.Employer = p.Employer
	}
	if p.BusinessLine != "" {
		rec.BusinessLine = p.BusinessLine
	}
}

// ========================================
// LISTING
// ========================================

func (s *service) List(ctx context.Context, filter attendance.ListFilter) (attendance.ListRecordResponse, error) {
	filter.Normalize()

	records, _ := s.store.Snapshot(filter)

	total := len(records)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	resp := attendance.ListRecordResponse{
		Data:       make([]attendance.RecordResponse, 0, end-start),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, rec := range records[start:end] {
		resp.Data = append(resp.Data, toRecordResponse(rec))
	}
	return resp, nil
}

func (s *service) Months(ctx context.Context) []string {
	return s.store.Months()
}

func (s *service) Files(ctx context.Context) []attendance.FileInfo {
	return s.store.Files()
}

func (s *service) Snapshot(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, attendance.Settings) {
	return s.store.Snapshot(filter)
}

// ========================================
// EDITS
// ========================================

func (s *service) EditDay(ctx context.Context, employeeCode string, req attendance.EditDayRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	settings := s.store.Settings()
	if req.Day > settings.DaysInPeriod {
		return attendance.RecordResponse{}, attendance.ErrInvalidDay
	}
	newCode := attendance.Code(req.Code)

	rec, err := s.store.Mutate(employeeCode, req.SourceFile, func(r *attendance.Record) error {
		oldCode := r.DayCode(req.Day)
		if oldCode == newCode {
			return nil
		}
		applyCount(&r.Counts, oldCode.Category(), -1)
		applyCount(&r.Counts, newCode.Category(), +1)
		r.Days[req.Day] = newCode
		r.Financials = payrollsvc.Compute(computeInput(r, settings))
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.logger.Info("day code edited",
		slog.String("employee_code", employeeCode),
		slog.Int("day", req.Day),
		slog.String("code", req.Code))
	return toRecordResponse(rec), nil
}

func (s *service) UpdateRecord(ctx context.Context, employeeCode string, req attendance.UpdateRecordRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	settings := s.store.Settings()
	rec, err := s.store.Mutate(employeeCode, req.SourceFile, func(r *attendance.Record) error {
		if req.PayrollType != nil {
			r.PayrollType = payroll.Type(*req.PayrollType)
		}
		if req.PensionScheme != nil {
			r.PensionScheme = payroll.Scheme(*req.PensionScheme)
		}
		if req.Bonus != nil {
			r.Bonus = *req.Bonus
		}
		if req.Site != nil {
			r.Site = *req.Site
		}
		r.Financials = payrollsvc.Compute(computeInput(r, settings))
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

func (s *service) RemoveFile(ctx context.Context, sourceFile string) (int, error) {
	removed, err := s.store.RemoveFile(sourceFile)
	if err != nil {
		return 0, err
	}
	s.logger.Info("source file removed",
		slog.String("source_file", sourceFile),
		slog.Int("records", removed))
	return removed, nil
}

// ========================================
// SETTINGS
// ========================================

func (s *service) Settings(ctx context.Context) attendance.SettingsResponse {
	return toSettingsResponse(s.store.Settings())
}

func (s *service) UpdateSettings(ctx context.Context, req attendance.UpdateSettingsRequest) (attendance.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SettingsResponse{}, err
	}

	updated := s.store.UpdateSettings(func(st *attendance.Settings, records []*attendance.Record) {
		if req.DaysInPeriod != nil && *req.DaysInPeriod > st.DaysInPeriod {
			st.DaysInPeriod = *req.DaysInPeriod
		}
		if req.DefaultPayrollType != nil {
			st.DefaultPayrollType = payroll.Type(*req.DefaultPayrollType)
		}
		if req.DefaultPensionScheme != nil {
			st.DefaultPensionScheme = payroll.Scheme(*req.DefaultPensionScheme)
		}
		if req.DefaultSite != nil {
			st.DefaultSite = *req.DefaultSite
		}
		if req.LatePenalty != nil && !req.LatePenalty.Equal(st.LatePenalty) {
			st.LatePenalty = *req.LatePenalty
			// The penalty feeds every attendance deduction; recompute all
			// records so none carries the old rate.
			for _, r := range records {
				r.Financials = payrollsvc.Compute(computeInput(r, *st))
			}
		}
	})

	s.logger.Info("settings updated",
		slog.Int("days_in_period", updated.DaysInPeriod),
		slog.String("late_penalty", updated.LatePenalty.String()))
	return toSettingsResponse(updated), nil
}

// ========================================
// MAPPERS
// ========================================

func computeInput(r *attendance.Record, settings attendance.Settings) payrollsvc.ComputeInput {
	return payrollsvc.ComputeInput{
		MonthlySalary: r.MonthlySalary,
		DailySalary:   r.DailySalary,
		LateCount:     r.Counts.Late,
		AbsentCount:   r.Counts.Absent,
		ExtraDays:     r.Counts.ExtraDays,
		PayrollType:   r.PayrollType,
		PensionScheme: r.PensionScheme,
		Bonus:         r.Bonus,
		LatePenalty:   settings.LatePenalty,
	}
}

func applyCount(c *attendance.Counts, cat attendance.Category, delta int) {
	switch cat {
	case attendance.CategoryOnTime:
		c.OnTime += delta
	case attendance.CategoryLate:
		c.Late += delta
	case attendance.CategoryAbsence:
		c.Absent += delta
	case attendance.CategoryExtraDay:
		c.ExtraDays += delta
	}
}

func toRecordResponse(rec attendance.Record) attendance.RecordResponse {
	days := make(map[int]string, len(rec.Days))
	for d, c := range rec.Days {
		days[d] = string(c)
	}
	return attendance.RecordResponse{
		EmployeeCode:  rec.EmployeeCode,
		Name:          rec.Name,
		DNI:           rec.DNI,
		Occupation:    rec.Occupation,
		MonthlySalary: rec.MonthlySalary,
		DailySalary:   rec.DailySalary,
		PayrollType:   string(rec.PayrollType),
		PensionScheme: string(rec.PensionScheme),
		Bonus:         rec.Bonus,
		Site:          rec.Site,
		Employer:      rec.Employer,
		BusinessLine:  rec.BusinessLine,
		Days:          days,

		OnTime:    rec.Counts.OnTime,
		Late:      rec.Counts.Late,
		Absent:    rec.Counts.Absent,
		ExtraDays: rec.Counts.ExtraDays,

		AttendanceDeduction: rec.Financials.AttendanceDeduction,
		PensionDeduction:    rec.Financials.PensionDeduction,
		ExtraDaysValue:      rec.Financials.ExtraDaysValue,
		NetPay:              rec.Financials.NetPay,

		SourceFile: rec.SourceFile,
		ReportName: rec.ReportName,
		Month:      rec.Month,
	}
}

func toSettingsResponse(s attendance.Settings) attendance.SettingsResponse {
	return attendance.SettingsResponse{
		DaysInPeriod:         s.DaysInPeriod,
		LatePenalty:          s.LatePenalty,
		DefaultPayrollType:   string(s.DefaultPayrollType),
		DefaultPensionScheme: string(s.DefaultPensionScheme),
		DefaultSite:          s.DefaultSite,
	}
}
