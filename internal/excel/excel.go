package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liamw8lde/trainingplan/internal/config"
	"github.com/liamw8lde/trainingplan/internal/schedule"
	"github.com/xuri/excelize/v2"
)

// Generate creates an Excel workbook with the master schedule and one
// sheet per roster player.
func Generate(cfg *config.Config, store *schedule.Store) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, store); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}

	if err := writePlayerSheets(f, cfg, store); err != nil {
		return nil, fmt.Errorf("writing player sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func cellStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	return style
}

func sortedEntries(store *schedule.Store) []schedule.Entry {
	entries := make([]schedule.Entry, len(store.Entries()))
	copy(entries, store.Entries())
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		if entries[i].Code.Start != entries[j].Code.Start {
			return entries[i].Code.Start < entries[j].Code.Start
		}
		return entries[i].Code.Court < entries[j].Code.Court
	})
	return entries
}

func writeMasterSheet(f *excelize.File, store *schedule.Store) error {
	sheet := "Master Schedule"
	f.NewSheet(sheet)

	headers := []string{"Date", "Day", "Time", "Court", "Type", "Players"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
		}
	}

	body := cellStyle(f)
	for i, e := range sortedEntries(store) {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), e.Date.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, row), e.Date.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, row), e.Code.Start)
		f.SetCellValue(sheet, cellRef(4, row), e.Code.Court)
		f.SetCellValue(sheet, cellRef(5, row), string(e.Code.Type))
		f.SetCellValue(sheet, cellRef(6, row), strings.Join(e.Players, ", "))
		if body != 0 {
			for col := 1; col <= len(headers); col++ {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), body)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 8)
	f.SetColWidth(sheet, "D", "D", 8)
	f.SetColWidth(sheet, "E", "E", 10)
	f.SetColWidth(sheet, "F", "F", 52)

	return nil
}

func writePlayerSheets(f *excelize.File, cfg *config.Config, store *schedule.Store) error {
	entries := sortedEntries(store)

	for _, name := range cfg.AllNames() {
		sheet := name
		f.NewSheet(sheet)

		headers := []string{"Date", "Day", "Time", "Court", "Type", "With"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}
		if style := headerStyle(f); style != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
			}
		}

		body := cellStyle(f)
		row := 2
		for _, e := range entries {
			if !e.Has(name) {
				continue
			}
			var others []string
			for _, p := range e.Players {
				if p != name {
					others = append(others, p)
				}
			}
			f.SetCellValue(sheet, cellRef(1, row), e.Date.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, row), e.Date.Format("Mon"))
			f.SetCellValue(sheet, cellRef(3, row), e.Code.Start)
			f.SetCellValue(sheet, cellRef(4, row), e.Code.Court)
			f.SetCellValue(sheet, cellRef(5, row), string(e.Code.Type))
			f.SetCellValue(sheet, cellRef(6, row), strings.Join(others, ", "))
			if body != 0 {
				for col := 1; col <= len(headers); col++ {
					f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), body)
				}
			}
			row++
		}

		widths := map[string]float64{"A": 14, "B": 8, "C": 8, "D": 8, "E": 10, "F": 44}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
