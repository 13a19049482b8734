package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
)

// Reader loads source rows from the operator's workbook.
type Reader struct {
	logger *slog.Logger
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFile opens an .xlsx file and returns its rows.
func (r *Reader) ReadFile(path string) ([]entity.SourceRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewAppError(common.ErrInvalidInput, "open workbook "+path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("ingest.workbook_close_error", "path", path, "error", err)
		}
	}()
	return r.read(f, path)
}

// Read parses a workbook from a stream (uploads).
func (r *Reader) Read(src io.Reader) ([]entity.SourceRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, common.NewAppError(common.ErrInvalidInput, "open workbook", err)
	}
	defer func() { _ = f.Close() }()
	return r.read(f, "upload")
}

// read uses the first sheet, locating the two columns by header name.
// Rows whose both cells are blank are skipped; file order is preserved.
func (r *Reader) read(f *excelize.File, name string) ([]entity.SourceRow, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewAppError(common.ErrInvalidInput, "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.NewAppError(common.ErrInvalidInput, "read rows", err)
	}
	if len(rows) == 0 {
		return nil, common.NewAppError(common.ErrInvalidInput, "workbook is empty", nil)
	}

	serialCol, linkCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case constants.ColumnSerialNumber:
			serialCol = i
		case constants.ColumnSourceLink:
			linkCol = i
		}
	}
	if serialCol < 0 || linkCol < 0 {
		return nil, common.NewAppError(common.ErrInvalidInput,
			fmt.Sprintf("workbook must have %q and %q columns", constants.ColumnSerialNumber, constants.ColumnSourceLink), nil)
	}

	out := make([]entity.SourceRow, 0, len(rows)-1)
	seen := make(map[string]int, len(rows))
	for i, row := range rows[1:] {
		serial := strings.TrimSpace(cell(row, serialCol))
		link := strings.TrimSpace(cell(row, linkCol))
		if serial == "" && link == "" {
			continue
		}
		// a blank link is kept so the row fails at download time and is recorded
		v := common.NewValidator()
		v.Field(constants.ColumnSerialNumber, serial, common.Required)
		if v.HasErrors() {
			r.logger.Warn("ingest.invalid_row", "row", i+2, "link", link, "reason", v.ErrorMessage())
			continue
		}
		if prev, dup := seen[serial]; dup {
			r.logger.Warn("ingest.duplicate_serial", "serial", serial, "row", i+2, "first_row", prev)
		}
		seen[serial] = i + 2
		out = append(out, entity.SourceRow{SerialNumber: serial, SourceLink: link})
	}

	r.logger.Info("ingest.workbook.ok", "source", name, "sheet", sheets[0], "rows", len(out))
	return out, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
