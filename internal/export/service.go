package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
)

// Service produces XLSX workbooks for results and RFQ line items.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ResultsXLSX renders the result collection: Sr. No., Source Link, then the
// required fields. Every cell is written as a string.
func (s *Service) ResultsXLSX(results []entity.ExtractionResult) ([]byte, error) {
	start := time.Now()
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = r.Row()
	}
	b, err := s.workbook(constants.ResultsSheet, constants.ResultColumns(), rows, map[string]float64{
		"A": 8, "B": 40, "C": 40, "D": 60, "E": 60,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.results.ok", "rows", len(results), "bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

// WriteResults overwrites path with a fresh results workbook.
func (s *Service) WriteResults(path string, results []entity.ExtractionResult) error {
	b, err := s.ResultsXLSX(results)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("export.results.written", "path", path, "rows", len(results))
	return nil
}

// ReadResults re-reads a results workbook written by WriteResults.
func (s *Service) ReadResults(path string) ([]entity.ExtractionResult, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.NewAppError(common.ErrNotFound, "no export at "+path, err)
	}
	if err != nil {
		return nil, common.NewAppError(common.ErrInvalidInput, "open "+path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(constants.ResultsSheet)
	if err != nil {
		return nil, common.NewAppError(common.ErrInvalidInput, "read results sheet", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	out := make([]entity.ExtractionResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var r entity.ExtractionResult
		for i, col := range header {
			if i < len(row) {
				r.Set(strings.TrimSpace(col), row[i])
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// RFQXLSX renders parsed line items on the RFQ_Data sheet.
func (s *Service) RFQXLSX(items []entity.RFQLineItem) ([]byte, error) {
	start := time.Now()
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = it.Row()
	}
	b, err := s.workbook(constants.RFQSheet, constants.RFQColumns, rows, map[string]float64{
		"A": 10, "B": 36, "C": 70, "D": 8, "E": 8, "F": 10,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.rfq.ok", "rows", len(items), "bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds())
	return b, nil
}

func (s *Service) workbook(sheet string, headers []string, rows [][]string, widths map[string]float64) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		// only the named sheet remains
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, c, h); err != nil {
			return nil, err
		}
	}
	for r, row := range rows {
		for col, v := range row {
			c, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := f.SetCellStr(sheet, c, v); err != nil {
				return nil, fmt.Errorf("write %s: %w", c, err)
			}
		}
	}
	for col, w := range widths {
		_ = f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}
