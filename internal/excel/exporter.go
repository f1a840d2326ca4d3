package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/lernbot/pkg/models"
)

// Export writes the learner's vocabulary with its scheduling state to an
// xlsx workbook, mirroring the import column layout plus progress columns.
func Export(items []models.StudyItem) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Wort", "Übersetzung", "Beispiel", "Formen",
		"Wiederholungen", "Intervall (Tage)", "Nächste Wiederholung"}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}

	for i, item := range items {
		lemma := item.Lemma
		if item.Article != "" {
			lemma = item.Article + " " + item.Lemma
		}
		nextReview := ""
		if item.Repetitions > 0 {
			nextReview = item.NextReviewDate.Format("2006-01-02")
		}
		row := []interface{}{lemma, item.Translation, item.Example,
			item.AdditionalForms, item.Repetitions, item.IntervalDays, nextReview}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %v", err)
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %v", cell, err)
		}
	}
	return nil
}
