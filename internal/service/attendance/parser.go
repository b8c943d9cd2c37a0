package attendance

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/planilla-hr/planilla-backend-go/internal/domain/attendance"
)

const (
	headerMarker = "Codigo"
	dayPrefix    = "Dia"
	monthMarker  = "MES DE"
	// monthSentinel labels records from files without a month banner.
	monthSentinel = "SIN MES"
)

// Fixed data-row layout before the day columns.
const (
	colCode = iota
	colName
	colDNI
	colOccupation
	colMonthlySalary
	colDailySalary
	colFirstDay
)

// RawRow - one data row of an attendance sheet after positional extraction,
// before directory validation.
type RawRow struct {
	Index         int // 0-based position below the header row
	EmployeeCode  string
	Name          string
	DNI           string
	Occupation    string
	MonthlySalary decimal.Decimal
	DailySalary   decimal.Decimal
	Days          map[int]attendance.Code
	Counts        attendance.Counts
}

// ParsedSheet - the normalized output of one worksheet grid.
type ParsedSheet struct {
	Month        string
	DaysInPeriod int
	Rows         []RawRow
}

var (
	digitsRegex = regexp.MustCompile(`\d+`)
	monthRegex  = regexp.MustCompile(`(?i)^.*MES DE`)
)

// ParseGrid turns a decoded worksheet grid into typed raw rows. The only
// fatal condition is a missing "Codigo" header row; everything else degrades
// to defaults.
func ParseGrid(grid [][]string) (ParsedSheet, error) {
	sheet := ParsedSheet{Month: extractMonth(grid)}

	headerIdx := -1
	for i, row := range grid {
		if len(row) > 0 && row[0] == headerMarker {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return ParsedSheet{}, attendance.ErrFormatInvalid
	}

	for _, cell := range grid[headerIdx] {
		if strings.HasPrefix(cell, dayPrefix) {
			sheet.DaysInPeriod++
		}
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		row := grid[i]
		// First empty code cell ends the batch.
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			break
		}
		sheet.Rows = append(sheet.Rows, parseRow(row, i-headerIdx-1, sheet.DaysInPeriod))
	}

	return sheet, nil
}

func parseRow(row []string, index, days int) RawRow {
	raw := RawRow{
		Index:         index,
		EmployeeCode:  cellAt(row, colCode),
		Name:          cellAt(row, colName),
		DNI:           cellAt(row, colDNI),
		Occupation:    cellAt(row, colOccupation),
		MonthlySalary: parseMoney(cellAt(row, colMonthlySalary)),
		DailySalary:   parseMoney(cellAt(row, colDailySalary)),
		Days:          make(map[int]attendance.Code, days),
	}

	for d := 1; d <= days; d++ {
		code := attendance.Code(cellAt(row, colFirstDay+d-1))
		if code == "" {
			code = attendance.CodeNoLaborable
		}
		raw.Days[d] = code
		switch code.Category() {
		case attendance.CategoryOnTime:
			raw.Counts.OnTime++
		case attendance.CategoryLate:
			raw.Counts.Late++
		case attendance.CategoryAbsence:
			raw.Counts.Absent++
		case attendance.CategoryExtraDay:
			raw.Counts.ExtraDays++
		}
	}

	return raw
}

// extractMonth scans the first five rows for the "MES DE <month>" banner.
func extractMonth(grid [][]string) string {
	for i := 0; i < 5 && i < len(grid); i++ {
		joined := strings.Join(grid[i], " ")
		if !strings.Contains(strings.ToUpper(joined), monthMarker) {
			continue
		}
		month := monthRegex.ReplaceAllString(joined, "")
		month = digitsRegex.ReplaceAllString(month, "")
		return strings.TrimSpace(month)
	}
	return monthSentinel
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseMoney coerces a salary cell. A non-numeric cell defaults to zero and
// is not reported as an error.
func parseMoney(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
