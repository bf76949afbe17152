// Package export renders game history as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/vytor/timestrainer/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName   = "Results"
)

var headers = []any{
	"Completed At", "Mode", "Difficulty", "Correct", "Total", "Accuracy (%)",
	"Time (s)", "Score", "Rank",
}

// WriteResults streams results to w as an .xlsx workbook with one row per game.
func WriteResults(w io.Writer, results []models.GameResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.CompletedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Mode.String(),
			r.Difficulty.Info().Name,
			r.CorrectAnswers,
			r.TotalProblems,
			roundTo(r.Accuracy, 1),
			r.TimeElapsed,
			r.Score,
			sanitizeForExcel(r.Rank),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	return f.Write(w)
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}

// sanitizeForExcel keeps text cells from being read as formulas.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
