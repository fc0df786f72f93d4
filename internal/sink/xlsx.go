package sink

import (
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Results"

// XLSXSink appends rows to an Excel workbook. Every append saves the
// workbook, so rows written before an aborted run survive it, matching
// the CSV sink's per-append flush.
type XLSXSink struct {
	mu      sync.Mutex
	path    string
	file    *excelize.File
	nextRow int
}

// OpenXLSX opens or creates an XLSX sink at path. A new workbook gets a
// header row; an existing one is appended to after its last row.
func OpenXLSX(path string) (*XLSXSink, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
		rows, err := f.GetRows(xlsxSheet)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("workbook %s has no %q sheet: %w", path, xlsxSheet, err)
		}
		return &XLSXSink{path: path, file: f, nextRow: len(rows) + 1}, nil
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create %q sheet: %w", xlsxSheet, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	return &XLSXSink{path: path, file: f, nextRow: 2}, nil
}

// Append implements Sink.
func (s *XLSXSink) Append(_ string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, err := excelize.CoordinatesToCellName(1, s.nextRow)
	if err != nil {
		return fmt.Errorf("failed to compute cell for row %d: %w", s.nextRow, err)
	}
	values := row.values()
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := s.file.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", s.nextRow, err)
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	s.nextRow++
	return nil
}

// Close saves the workbook and releases it.
func (s *XLSXSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.SaveAs(s.path); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return s.file.Close()
}
