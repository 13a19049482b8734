package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
)

func sampleResults() []entity.ExtractionResult {
	return []entity.ExtractionResult{
		{
			SerialNumber:       "1",
			SourceLink:         "https://example.com/a.pdf",
			Title:              "Process Validation: General Principles",
			Summary:            "  leading and trailing spaces  ",
			KeyQuestions:       "1. Purpose: p\n3. Defining Phases: d",
			IssuingAuthority:   "FDA",
			CentersInvolved:    "CDER, CBER",
			DateOfIssuance:     "January 01, 2025",
			TypeOfDocument:     "Guidance",
			CommentPeriod:      "60 days",
			DocketNumber:       "00123",
			GuidanceStatus:     "Draft",
			OpenForComment:     "TRUE",
			CommentClosingDate: "March 02, 2025",
			Relevance:          "1.50",
		},
		{
			SerialNumber:       "02",
			SourceLink:         "https://example.com/b.pdf",
			Title:              "Second",
			Summary:            constants.NotAvailable,
			CommentClosingDate: constants.NotSpecified,
		},
	}
}

func TestWriteAndReadResults_RoundTrip(t *testing.T) {
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "out", "results.xlsx")
	in := sampleResults()

	require.NoError(t, s.WriteResults(path, in))
	out, err := s.ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWriteResults_Overwrites(t *testing.T) {
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "results.xlsx")

	require.NoError(t, s.WriteResults(path, sampleResults()))
	require.NoError(t, s.WriteResults(path, sampleResults()[:1]))

	out, err := s.ReadResults(path)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestResultsXLSX_Header(t *testing.T) {
	b, err := NewService(nil).ResultsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	rows, err := f.GetRows(constants.ResultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.ResultColumns(), rows[0])
}

func TestRFQXLSX(t *testing.T) {
	items := []entity.RFQLineItem{
		{Code: "12345", Label: "Widget", Description: "Some description text", Quantity: "3", UnitOfMeasure: "NOS", ItemCode: "12345"},
	}
	b, err := NewService(nil).RFQXLSX(items)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, []string{constants.RFQSheet}, f.GetSheetList())

	rows, err := f.GetRows(constants.RFQSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, constants.RFQColumns, rows[0])
	assert.Equal(t, []string{"12345", "Widget", "Some description text", "3", "NOS", "12345"}, rows[1])
}

func TestReadResults_Missing(t *testing.T) {
	_, err := NewService(nil).ReadResults(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}
