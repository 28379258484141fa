package store

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/harithj/lanka-sitrep/internal/csvio"
)

// ExportXLSX renders the named feed as a single-sheet XLSX workbook.
// The sheet carries the feed's header row followed by the stored rows,
// cell-for-cell as they appear in the CSV file.
func (s *Store) ExportXLSX(feed string) ([]byte, error) {
	f, ok := feedFiles[feed]
	if !ok {
		return nil, fmt.Errorf("unknown feed %q", feed)
	}

	s.mu.Lock()
	text, err := s.readFile(feed)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	rows := csvio.Parse(text, csvio.Schema{Name: feed, Quotes: csvio.QuoteEscaped})

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if err := wb.SetSheetRow(sheet, "A1", &f.columns); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, 0, len(f.columns))
		for _, h := range f.columns {
			cells = append(cells, row.Values[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
