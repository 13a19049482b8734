package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/amolnak/GuidanceMind/internal/common"
)

const (
	MethodPDFText   = "pdf-text"
	MethodPdftotext = "pdftotext"
)

type Config struct {
	Backend   string // common.TextBackendPDF (default) or common.TextBackendPdftotext
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"

	// PageSeparator is written between pages. Empty concatenates pages directly.
	PageSeparator string

	// SkipValidation disables the structural check run before extraction.
	SkipValidation bool
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

var _ TextExtractor = (*Extractor)(nil)

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backend == "" {
		cfg.Backend = common.TextBackendPDF
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner (tests).
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the concatenated plain text of every page in order.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if _, err := os.Stat(path); err != nil {
		return Result{}, common.NewAppError(common.ErrExtraction, "open "+path, err)
	}

	pages := 0
	if !e.cfg.SkipValidation {
		n, err := inspect(path)
		if err != nil {
			e.logger.Error("textextract.invalid_document", "path", path, "error", err)
			return Result{}, common.NewAppError(common.ErrExtraction, "not a valid PDF: "+path, err)
		}
		pages = n
	}

	var (
		res Result
		err error
	)
	switch e.cfg.Backend {
	case common.TextBackendPdftotext:
		res, err = e.pdftotext(ctx, path)
	default:
		res, err = e.pdfText(path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("textextract.failed", "path", path, "method", res.Method, "error", err)
		return res, common.NewAppError(common.ErrExtraction, "extract text from "+path, err)
	}
	if res.Pages == 0 {
		res.Pages = pages
	}

	e.logger.Info("textextract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// inspect parses the cross-reference structure and returns the page count.
func inspect(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return pctx.PageCount, nil
}
