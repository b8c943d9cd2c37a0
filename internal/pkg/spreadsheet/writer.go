package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Style - the subset of cell formatting the exporters use. Comparable so a
// writer can deduplicate identical styles.
type Style struct {
	Bold      bool
	Italic    bool
	FontColor string // hex without '#', e.g. "FF0000"
	FillColor string
	NumFmt    string // custom number format, e.g. "#,##0.00"
}

// Cell - one cell value with optional formatting.
type Cell struct {
	Value any
	Style Style
}

// Sheet - one worksheet to emit: a name, per-column widths and row-major
// cells.
type Sheet struct {
	Name      string
	ColWidths map[int]float64 // 1-based column index
	Rows      [][]Cell
}

// Text returns an unstyled cell.
func Text(v any) Cell { return Cell{Value: v} }

// Write emits the sheets as one xlsx workbook. Styles are registered once
// per distinct Style value.
func Write(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	styleIDs := make(map[Style]int)

	for si, sheet := range sheets {
		if si == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("add sheet %q: %w", sheet.Name, err)
			}
		}

		for col, width := range sheet.ColWidths {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet.Name, name, name, width); err != nil {
				return err
			}
		}

		for ri, row := range sheet.Rows {
			for ci, cell := range row {
				axis, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet.Name, axis, cell.Value); err != nil {
					return err
				}
				if cell.Style == (Style{}) {
					continue
				}
				id, err := styleID(f, styleIDs, cell.Style)
				if err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet.Name, axis, axis, id); err != nil {
					return err
				}
			}
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func styleID(f *excelize.File, cache map[Style]int, s Style) (int, error) {
	if id, ok := cache[s]; ok {
		return id, nil
	}

	xs := &excelize.Style{}
	if s.Bold || s.Italic || s.FontColor != "" {
		xs.Font = &excelize.Font{Bold: s.Bold, Italic: s.Italic, Color: s.FontColor}
	}
	if s.FillColor != "" {
		xs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.FillColor}}
	}
	if s.NumFmt != "" {
		xs.CustomNumFmt = &s.NumFmt
	}

	id, err := f.NewStyle(xs)
	if err != nil {
		return 0, fmt.Errorf("register style: %w", err)
	}
	cache[s] = id
	return id, nil
}
