package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/pipeline"
	"github.com/amolnak/GuidanceMind/internal/rfq"
)

const (
	headerAPIKey  = "X-API-Key"
	maxUploadSize = 64 << 20
	contentXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// EventView is the JSON form of a pipeline event.
type EventView struct {
	Index  int                `json:"index"`
	Serial string             `json:"serial"`
	Stage  constants.RowStage `json:"stage"`
	Error  string             `json:"error,omitempty"`
	Raw    string             `json:"raw,omitempty"`
}

// SessionView reports progress.
type SessionView struct {
	Name    string `json:"name"`
	Cursor  int    `json:"cursor"`
	Rows    int    `json:"rows"`
	Results int    `json:"results"`
	Done    bool   `json:"done"`
}

type RunResponse struct {
	Session SessionView `json:"session"`
	Events  []EventView `json:"events"`
	Stopped bool        `json:"stopped,omitempty"`
}

func (s *Service) view() SessionView {
	return SessionView{
		Name:    s.session.Name,
		Cursor:  s.session.Cursor,
		Rows:    len(s.rows),
		Results: len(s.session.Results),
		Done:    len(s.rows) > 0 && s.session.Done(len(s.rows)),
	}
}

// handleUpload loads the input workbook, either as multipart field "file" or
// as the raw request body.
// POST /api/v1/input
func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	src, _, closeFn, err := uploadedFile(r)
	if err != nil {
		writeError(w, common.NewAppError(common.ErrInvalidInput, "read upload", err))
		return
	}
	defer closeFn()

	rows, err := s.reader.Read(src)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
	s.logger.Info("server.input.loaded", "rows", len(rows), "session", s.session.Name)
	writeJSON(w, http.StatusOK, s.view())
}

// handleRun processes the remaining rows synchronously and returns the
// progress events.
// POST /api/v1/run
func (s *Service) handleRun(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(headerAPIKey))
	if key == "" {
		key = s.cfg.APIKey
	}
	if key == "" && s.cfg.RequireAPIKey {
		writeError(w, common.NewAppError(common.ErrInvalidInput, "an API key is required (X-API-Key header)", nil))
		return
	}

	if !s.mu.TryLock() {
		writeError(w, errBusy)
		return
	}
	defer s.mu.Unlock()

	if len(s.rows) == 0 {
		writeError(w, common.NewAppError(common.ErrInvalidInput, "no input loaded", nil))
		return
	}

	ctx := r.Context()
	ctx = common.WithRequestID(ctx, middleware.GetReqID(ctx))
	ctx = common.WithSession(ctx, s.session.Name)
	if key != "" {
		ctx = common.WithAPIKey(ctx, key)
	}

	var events []EventView
	p := *s.processor
	p.WithObserver(pipeline.ObserverFunc(func(e pipeline.Event) {
		v := EventView{Index: e.Index, Serial: e.Serial, Stage: e.Stage, Raw: e.Raw}
		if e.Err != nil {
			v.Error = e.Err.Error()
		}
		events = append(events, v)
	}))

	resp := RunResponse{}
	if err := p.Run(ctx, s.session, s.rows); err != nil {
		if !errors.Is(err, ctx.Err()) {
			writeError(w, err)
			return
		}
		resp.Stopped = true
	}
	resp.Session = s.view()
	resp.Events = events
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/v1/session
func (s *Service) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.view())
}

// GET /api/v1/results
func (s *Service) handleResults(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := s.session.Results
	if results == nil {
		results = []entity.ExtractionResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleExport writes the results workbook to the output path and returns it.
// GET /api/v1/export.xlsx
func (s *Service) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	results := append([]entity.ExtractionResult(nil), s.session.Results...)
	s.mu.Unlock()

	b, err := s.exporter.ResultsXLSX(results)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.cfg.OutputPath != "" {
		if err := writeFile(s.cfg.OutputPath, b); err != nil {
			s.logger.Error("server.export.write_failed", "path", s.cfg.OutputPath, "error", err)
			writeError(w, err)
			return
		}
	}
	writeXLSX(w, "output_excel.xlsx", b)
}

// POST /api/v1/reset
func (s *Service) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.mu.TryLock() {
		writeError(w, errBusy)
		return
	}
	defer s.mu.Unlock()
	if err := s.processor.Reset(r.Context(), s.session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

// handleRFQ converts an uploaded RFQ PDF into a workbook.
// POST /api/v1/rfq[?nearest=true]
func (s *Service) handleRFQ(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	nearest, _ := strconv.ParseBool(r.URL.Query().Get("nearest"))

	src, name, closeFn, err := uploadedFile(r)
	if err != nil {
		writeError(w, common.NewAppError(common.ErrInvalidInput, "read upload", err))
		return
	}
	defer closeFn()
	if name != "" && !constants.IsPDF(name) {
		writeError(w, common.NewAppError(common.ErrInvalidInput, "upload must be a .pdf file", nil))
		return
	}

	tmp, err := os.CreateTemp(s.cfg.UploadDir, "rfq-*.pdf")
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		writeError(w, common.NewAppError(common.ErrInvalidInput, "read upload", err))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, err)
		return
	}

	conv := rfq.NewConverter(s.text, s.exporter, rfq.Options{Nearest: nearest}, s.logger)
	b, items, err := conv.Convert(r.Context(), tmp.Name())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Item-Count", strconv.Itoa(len(items)))
	writeXLSX(w, "rfq_output.xlsx", b)
}

// uploadedFile returns multipart field "file" or, for other content types,
// the raw body. name is empty for raw bodies.
func uploadedFile(r *http.Request) (src io.Reader, name string, closeFn func(), err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", nil, err
		}
		return f, hdr.Filename, func() { f.Close() }, nil
	}
	return r.Body, "", func() {}, nil
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeXLSX(w http.ResponseWriter, name string, b []byte) {
	w.Header().Set("Content-Type", contentXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
