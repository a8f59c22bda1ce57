package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Reels"

var columns = []string{
	"URL", "ID", "Title", "Status", "Category", "Sentiment", "Score", "Confidence",
	"Topics", "Keywords", "Summary", "Analysis Source", "Error", "Transcript",
}

// WriteXLSX writes one row per entry to a new workbook at path.
func WriteXLSX(path string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := entryRow(e)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 45); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "K", "K", 60); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func entryRow(e Entry) []any {
	if e.Err != nil || e.Result == nil {
		msg := "unknown error"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return []any{e.URL, "", "", "failed", "", "", "", "", "", "", "", "", msg, ""}
	}
	r := e.Result
	a := r.Analysis
	return []any{
		e.URL, r.ID, r.Title, "ok", a.Category, a.Sentiment.Label, a.Sentiment.Score, a.Sentiment.Confidence,
		strings.Join(a.Topics, ", "), strings.Join(a.Keywords, ", "), a.Summary, r.AnalysisSource, "", r.Transcript,
	}
}
