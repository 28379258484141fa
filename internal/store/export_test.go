package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/harithj/lanka-sitrep/internal/domain"
)

func TestExportXLSX(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.InsertFuel(domain.FuelRecord{
		Date:     "2026-03-01",
		DateStr:  "2026-03-01",
		Petrol92: 371,
		Source:   "Ceypetco",
	})
	require.NoError(t, err)

	data, err := s.ExportXLSX("fuel")
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "date", rows[0][1])
	assert.Equal(t, "2026-03-01", rows[1][1])
	assert.Contains(t, rows[1], "371")
	assert.Contains(t, rows[1], "Ceypetco")
}

func TestExportXLSX_UnknownFeed(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ExportXLSX("stocks")
	require.Error(t, err)
}
