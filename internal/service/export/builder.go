package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
	"github.com/planilla-hr/planilla-backend-go/internal/pkg/spreadsheet"
)

const (
	detailSheetName  = "Detalle Asistencias"
	summarySheetName = "Resumen Pagos"

	moneyFmt    = "#,##0.00"
	headerFill  = "D9E1F2"
	totalsLabel = "TOTALES"
)

// File - a rendered workbook ready to stream to the client.
type File struct {
	Name    string
	Content []byte
}

// Service renders the consolidated payroll workbook for the current
// filtered record set.
type Service interface {
	Export(ctx context.Context, filter attendance.ListFilter) (File, error)
}

type builder struct {
	attendance attendance.Service
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(attendanceSvc attendance.Service, logger *slog.Logger) Service {
	return &builder{attendance: attendanceSvc, logger: logger, now: time.Now}
}

func (b *builder) Export(ctx context.Context, filter attendance.ListFilter) (File, error) {
	records, settings := b.attendance.Snapshot(ctx, filter)
	now := b.now()

	sheets := buildSheets(records, settings, now)

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, sheets); err != nil {
		return File{}, fmt.Errorf("render workbook: %w", err)
	}

	name := exportFilename(months(records), now)
	b.logger.Info("workbook exported",
		slog.String("file", name),
		slog.Int("records", len(records)))
	return File{Name: name, Content: buf.Bytes()}, nil
}

// exportFilename joins the covered months into the conventional download
// name, spaces flattened to underscores.
func exportFilename(months []string, now time.Time) string {
	label := strings.Join(months, "-")
	if label == "" {
		label = "SIN MES"
	}
	label = strings.ReplaceAll(label, " ", "_")
	return fmt.Sprintf("Planilla_Consolidada_%s_%s.xlsx", label, now.Format("20060102_150405"))
}

func months(records []attendance.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !seen[r.Month] {
			seen[r.Month] = true
			out = append(out, r.Month)
		}
	}
	return out
}

func buildSheets(records []attendance.Record, settings attendance.Settings, now time.Time) []spreadsheet.Sheet {
	return []spreadsheet.Sheet{
		buildDetailSheet(records, settings),
		buildSummarySheet(records, now),
	}
}

// ========================================
// DETAIL SHEET
// ========================================

func buildDetailSheet(records []attendance.Record, settings attendance.Settings) spreadsheet.Sheet {
	sheet := spreadsheet.Sheet{
		Name: detailSheetName,
		ColWidths: map[int]float64{
			1: 10, 2: 32, 3: 12, 4: 22, 5: 14, 6: 14,
		},
	}

	sheet.Rows = append(sheet.Rows,
		[]spreadsheet.Cell{titleCell("DETALLE DE ASISTENCIAS")},
		[]spreadsheet.Cell{spreadsheet.Text("Meses: " + strings.Join(months(records), ", "))},
		[]spreadsheet.Cell{spreadsheet.Text(fmt.Sprintf("Penalidad por tardanza: S/ %s", settings.LatePenalty.StringFixed(2)))},
		nil,
	)

	header := []spreadsheet.Cell{
		headerCell("Codigo"), headerCell("Empleado"), headerCell("Dni"),
		headerCell("Cargo"), headerCell("Sueldo Mensual"), headerCell("Sueldo Diario"),
	}
	for d := 1; d <= settings.DaysInPeriod; d++ {
		header = append(header, headerCell(fmt.Sprintf("Dia%d", d)))
	}
	header = append(header,
		headerCell("Puntual"), headerCell("Tardanza"), headerCell("Faltas"),
		headerCell("Dias Extras"), headerCell("Descuentos"), headerCell("Pension"),
		headerCell("Bono"), headerCell("Sueldo Final"), headerCell("Mes"),
		headerCell("Archivo Origen"))
	sheet.Rows = append(sheet.Rows, header)

	for _, rec := range records {
		row := []spreadsheet.Cell{
			spreadsheet.Text(rec.EmployeeCode),
			spreadsheet.Text(rec.Name),
			spreadsheet.Text(rec.DNI),
			spreadsheet.Text(rec.Occupation),
			moneyCell(rec.MonthlySalary, false),
			moneyCell(rec.DailySalary, false),
		}
		for d := 1; d <= settings.DaysInPeriod; d++ {
			code := rec.DayCode(d)
			row = append(row, spreadsheet.Cell{
				Value: string(code),
				Style: spreadsheet.Style{FontColor: code.FontColor()},
			})
		}
		row = append(row,
			spreadsheet.Text(rec.Counts.OnTime),
			spreadsheet.Text(rec.Counts.Late),
			spreadsheet.Text(rec.Counts.Absent),
			spreadsheet.Text(rec.Counts.ExtraDays),
			moneyCell(rec.Financials.AttendanceDeduction, false),
			moneyCell(rec.Financials.PensionDeduction, false),
			moneyCell(rec.Bonus, false),
			moneyCell(rec.Financials.NetPay, false),
			spreadsheet.Text(rec.Month),
			spreadsheet.Text(rec.SourceFile))
		sheet.Rows = append(sheet.Rows, row)
	}

	sheet.Rows = append(sheet.Rows, nil)
	sheet.Rows = append(sheet.Rows, legendRows(settings)...)

	return sheet
}

// legendRows spell out the vocabulary; the late legend embeds the penalty in
// force when the workbook was rendered.
func legendRows(settings attendance.Settings) [][]spreadsheet.Cell {
	return [][]spreadsheet.Cell{
		{
			legendCell(attendance.CodePuntual, "PU = Puntual"),
			legendCell(attendance.CodeAsistio, "AS = Asistio"),
			legendCell(attendance.CodeDiaExtra, "DE = Dia Extra"),
		},
		{
			legendCell(attendance.CodeTardanza,
				fmt.Sprintf("TA = Tardanza (S/ %s de descuento)", settings.LatePenalty.StringFixed(2))),
			legendCell(attendance.CodeFalta, "FA = Falta (descuento de un dia)"),
		},
		{
			legendCell(attendance.CodeNoLaborable, "NL = No Laborable"),
			legendCell(attendance.CodeDescansoMedico, "DM = Descanso Medico"),
			legendCell(attendance.CodePermiso, "PE = Permiso"),
			legendCell(attendance.CodeVacaciones, "VA = Vacaciones"),
			legendCell(attendance.CodeJustificado, "JU = Justificado"),
		},
	}
}

// ========================================
// SUMMARY SHEET
// ========================================

func buildSummarySheet(records []attendance.Record, now time.Time) spreadsheet.Sheet {
	sheet := spreadsheet.Sheet{
		Name: summarySheetName,
		ColWidths: map[int]float64{
			1: 32, 2: 12, 3: 16, 4: 14, 5: 14, 6: 12, 7: 16, 8: 24,
		},
	}

	sheet.Rows = append(sheet.Rows,
		[]spreadsheet.Cell{titleCell("RESUMEN DE PAGOS")},
		[]spreadsheet.Cell{spreadsheet.Text("Meses: " + strings.Join(months(records), ", "))},
		nil,
		[]spreadsheet.Cell{
			headerCell("Empleado"), headerCell("DNI"), headerCell("Sueldo Mensual"),
			headerCell("Descuentos"), headerCell("Pension"), headerCell("Bono"),
			headerCell("Sueldo Final"), headerCell("Archivo Origen"),
		},
	)

	var totalSalary, totalDeductions, totalPension, totalBonus, totalNet decimal.Decimal
	for _, rec := range records {
		totalSalary = totalSalary.Add(rec.MonthlySalary)
		totalDeductions = totalDeductions.Add(rec.Financials.AttendanceDeduction)
		totalPension = totalPension.Add(rec.Financials.PensionDeduction)
		totalBonus = totalBonus.Add(rec.Bonus)
		totalNet = totalNet.Add(rec.Financials.NetPay)

		sheet.Rows = append(sheet.Rows, []spreadsheet.Cell{
			spreadsheet.Text(rec.Name),
			spreadsheet.Text(rec.DNI),
			moneyCell(rec.MonthlySalary, false),
			moneyCell(rec.Financials.AttendanceDeduction, false),
			moneyCell(rec.Financials.PensionDeduction, false),
			moneyCell(rec.Bonus, false),
			moneyCell(rec.Financials.NetPay, false),
			spreadsheet.Text(rec.SourceFile),
		})
	}

	sheet.Rows = append(sheet.Rows,
		[]spreadsheet.Cell{
			{Value: totalsLabel, Style: spreadsheet.Style{Bold: true}},
			{},
			moneyCell(totalSalary, true),
			moneyCell(totalDeductions, true),
			moneyCell(totalPension, true),
			moneyCell(totalBonus, true),
			moneyCell(totalNet, true),
		},
		nil,
		[]spreadsheet.Cell{{
			Value: "Generado: " + now.Format("2006-01-02 15:04:05"),
			Style: spreadsheet.Style{Italic: true},
		}},
	)

	return sheet
}

func titleCell(text string) spreadsheet.Cell {
	return spreadsheet.Cell{Value: text, Style: spreadsheet.Style{Bold: true}}
}

func headerCell(text string) spreadsheet.Cell {
	return spreadsheet.Cell{
		Value: text,
		Style: spreadsheet.Style{Bold: true, FillColor: headerFill},
	}
}

func legendCell(code attendance.Code, text string) spreadsheet.Cell {
	return spreadsheet.Cell{
		Value: text,
		Style: spreadsheet.Style{Italic: true, FontColor: code.FontColor()},
	}
}

func moneyCell(d decimal.Decimal, bold bool) spreadsheet.Cell {
	return spreadsheet.Cell{
		Value: d.InexactFloat64(),
		Style: spreadsheet.Style{Bold: bold, NumFmt: moneyFmt},
	}
}
