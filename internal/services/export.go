package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Questions"

// Exporter writes the stored questions to a spreadsheet.
type Exporter struct {
	store QuestionStore
}

func NewExporter(store QuestionStore) *Exporter {
	return &Exporter{store: store}
}

// Export writes one row per question, numbered in storage order.
func (e *Exporter) Export(ctx context.Context, path string) (int, error) {
	questions, err := e.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &[]any{"#", "Question"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for i, q := range questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &[]any{i + 1, q}); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 100); err != nil {
		return 0, fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save xlsx: %w", err)
	}
	return len(questions), nil
}
