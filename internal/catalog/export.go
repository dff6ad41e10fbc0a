package catalog

import (
	"fmt"
	"io"

	"heroes/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Characters"

var exportHeaders = []string{
	"ID", "Name", "Real name", "Origin", "Universe", "Powers", "Affiliation",
	"First appearance", "Status", "Alignment", "Description", "Image URL",
	"Created at", "Updated at",
}

// WriteXLSX renders records as a single-sheet workbook into w.
func WriteXLSX(w io.Writer, records []models.Character) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheet, "A1", last, style)
	}

	for i, c := range records {
		row := []interface{}{
			c.ID, c.Name, c.RealName, c.Origin, c.Universe, c.Powers, c.Affiliation,
			c.FirstAppearance, string(c.Status), string(c.Alignment), c.Description, c.ImageURL,
			c.CreatedAt, c.UpdatedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
