package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateHeaders are the columns of the import template
var TemplateHeaders = []string{"MATRICULA", "NOME", "SETOR", "CARGO", "EMAIL"}

// WriteTemplate writes the import template with two sample rows
func WriteTemplate(w io.Writer) error {
	rows := [][]interface{}{
		{"123456", "JOAO DA SILVA", "OPERACIONAL", "OPERADOR DE MAQUINAS", "joao@empresa.com.br"},
		{"654321", "MARIA OLIVEIRA", "ADMINISTRATIVO", "ANALISTA DE RH", "maria@empresa.com.br"},
	}
	widths := []float64{15, 40, 25, 30, 35}
	return WriteTable(w, "Modelo Importacao", TemplateHeaders, rows, widths)
}

// WriteTable writes a single-sheet workbook with a header row.
// widths is optional and applies to the leading columns.
func WriteTable(w io.Writer, sheet string, headers []string, rows [][]interface{}, widths []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
