package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/export"
	"github.com/amolnak/GuidanceMind/internal/ingest"
	"github.com/amolnak/GuidanceMind/internal/llm"
	"github.com/amolnak/GuidanceMind/internal/pipeline"
	"github.com/amolnak/GuidanceMind/internal/textextract"
)

type fileDownloader struct{}

func (fileDownloader) Download(_ context.Context, url, dest string) error {
	return os.WriteFile(dest, []byte(url), 0o644)
}

// echoText returns the file contents as text.
type echoText struct{}

func (echoText) Extract(_ context.Context, path string) (textextract.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return textextract.Result{}, common.NewAppError(common.ErrExtraction, "read", err)
	}
	return textextract.Result{Text: string(b), Pages: 1}, nil
}

type keyRecorder struct{ keys []string }

func (k *keyRecorder) Extract(ctx context.Context, text string) (llm.Record, error) {
	k.keys = append(k.keys, common.APIKeyFromContext(ctx))
	return llm.Record{Title: llm.T("doc " + text)}, nil
}

type resetCounter struct{ n int }

func (r *resetCounter) Reset() error { r.n++; return nil }

type fixture struct {
	srv     *httptest.Server
	keys    *keyRecorder
	cache   *resetCounter
	outPath string
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	dir := t.TempDir()
	keys := &keyRecorder{}
	cache := &resetCounter{}
	p := pipeline.NewProcessor(nil, pipeline.Config{PDFDir: dir}, fileDownloader{}, echoText{}, keys, cache, nil)
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(dir, "out", "output_excel.xlsx")
	}
	cfg.UploadDir = dir
	svc := New(cfg, p, pipeline.NewSession("default"), ingest.NewReader(nil), export.NewService(nil), echoText{}, nil)
	srv := httptest.NewServer(svc.Routes())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, keys: keys, cache: cache, outPath: cfg.OutputPath}
}

func inputWorkbook(t *testing.T, n int) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Sr. No.", "Source Link"}))
	for i := 1; i <= n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &[]any{i, "https://example.test/" + string(rune('a'+i-1)) + ".pdf"}))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func multipartBody(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (f *fixture) do(t *testing.T, method, path, contentType string, body []byte, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestService_UploadRunExportReset(t *testing.T) {
	f := newFixture(t, Config{})

	body, ct := multipartBody(t, "input.xlsx", inputWorkbook(t, 2))
	resp := f.do(t, http.MethodPost, "/api/v1/input", ct, body.Bytes(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[SessionView](t, resp).Rows)

	resp = f.do(t, http.MethodPost, "/api/v1/run", "", nil, map[string]string{headerAPIKey: "sk-test"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decode[RunResponse](t, resp)
	assert.Equal(t, 2, run.Session.Cursor)
	assert.Equal(t, 2, run.Session.Results)
	assert.True(t, run.Session.Done)
	require.NotEmpty(t, run.Events)
	assert.Equal(t, constants.RowStageDownloading, run.Events[0].Stage)
	assert.Equal(t, []string{"sk-test", "sk-test"}, f.keys.keys)

	resp = f.do(t, http.MethodGet, "/api/v1/results", "", nil, nil)
	results := decode[[]entity.ExtractionResult](t, resp)
	require.Len(t, results, 2)
	assert.Equal(t, "doc https://example.test/a.pdf", results[0].Title)

	resp = f.do(t, http.MethodGet, "/api/v1/export.xlsx", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentXLSX, resp.Header.Get("Content-Type"))
	written, err := export.NewService(nil).ReadResults(f.outPath)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	resp = f.do(t, http.MethodPost, "/api/v1/reset", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[SessionView](t, resp)
	assert.Equal(t, 0, view.Cursor)
	assert.Equal(t, 0, view.Results)
	assert.Equal(t, 1, f.cache.n)
}

func TestService_RunRequiresKeyAndInput(t *testing.T) {
	f := newFixture(t, Config{RequireAPIKey: true})

	resp := f.do(t, http.MethodPost, "/api/v1/run", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", decode[errorBody](t, resp).Code)

	resp = f.do(t, http.MethodPost, "/api/v1/run", "", nil, map[string]string{headerAPIKey: "sk-test"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.keys.keys)
}

func TestService_UploadRawBody(t *testing.T) {
	f := newFixture(t, Config{})
	resp := f.do(t, http.MethodPost, "/api/v1/input", contentXLSX, inputWorkbook(t, 3), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[SessionView](t, resp).Rows)

	resp = f.do(t, http.MethodPost, "/api/v1/input", "text/csv", []byte("a,b\n"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestService_RFQ(t *testing.T) {
	f := newFixture(t, Config{})
	pdf := []byte("12345   3  Widget\nSome description text\n67890  1  Gadget\n...")
	body, ct := multipartBody(t, "rfq.pdf", pdf)

	resp := f.do(t, http.MethodPost, "/api/v1/rfq", ct, body.Bytes(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-Item-Count"))

	wb, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	rows, err := wb.GetRows(constants.RFQSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"12345", "Widget", "Some description text", "3", "NOS", "12345"}, rows[1])
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, httpStatus(errBusy))
	assert.Equal(t, http.StatusBadRequest, httpStatus(common.NewAppError(common.ErrInvalidInput, "x", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, httpStatus(common.NewAppError(common.ErrDownloadTimeout, "x", nil)))
	assert.Equal(t, http.StatusBadGateway, httpStatus(common.NewAppError(common.ErrLLMInvocation, "x", nil)))
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(common.NewAppError(common.ErrExtraction, "x", nil)))
}

func TestService_RFQRejectsNonPDF(t *testing.T) {
	f := newFixture(t, Config{})
	body, ct := multipartBody(t, "items.docx", []byte("12345 1 Widget\n"))
	resp := f.do(t, http.MethodPost, "/api/v1/rfq", ct, body.Bytes(), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
