package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/fetch"
	"github.com/amolnak/GuidanceMind/internal/llm"
	"github.com/amolnak/GuidanceMind/internal/textextract"
)

// Resetter clears a derived-data cache.
type Resetter interface {
	Reset() error
}

// Config holds the processor's local storage settings.
type Config struct {
	PDFDir string // default common.DefaultPDFDir
}

// Processor drives the guidance pipeline row by row:
// download -> extract text -> structured extraction -> append result.
type Processor struct {
	Logger     *slog.Logger
	Cfg        Config
	Downloader fetch.Downloader
	Text       textextract.TextExtractor
	Extractor  llm.RecordExtractor
	Cache      Resetter
	Store      SessionStore
	Observer   Observer
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	dl fetch.Downloader,
	text textextract.TextExtractor,
	ex llm.RecordExtractor,
	cache Resetter,
	store SessionStore,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PDFDir == "" {
		cfg.PDFDir = common.DefaultPDFDir
	}
	return &Processor{
		Logger:     logger,
		Cfg:        cfg,
		Downloader: dl,
		Text:       text,
		Extractor:  ex,
		Cache:      cache,
		Store:      store,
		Observer:   nopObserver{},
	}
}

// WithObserver sets the progress observer.
func (p *Processor) WithObserver(o Observer) *Processor {
	if o == nil {
		o = nopObserver{}
	}
	p.Observer = o
	return p
}

// Open returns the persisted session called name, or a fresh one.
func (p *Processor) Open(ctx context.Context, name string) (*Session, error) {
	if p.Store == nil {
		return NewSession(name), nil
	}
	snap, ok, err := p.Store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.Logger.Info("pipeline.session.new", "session", name)
		return NewSession(name), nil
	}
	p.Logger.Info("pipeline.session.resumed", "session", name, "cursor", snap.Cursor, "results", len(snap.Results))
	return FromSnapshot(snap), nil
}

// Run processes rows starting at s.Cursor until every row has been visited.
// Row failures are reported to the observer and skipped; the cursor advances
// past every visited row. ctx is only checked between rows, so a row in
// progress always completes.
func (p *Processor) Run(ctx context.Context, s *Session, rows []entity.SourceRow) error {
	start := time.Now()
	from := s.Cursor
	p.Logger.Info("pipeline.run.start", "session", s.Name, "cursor", s.Cursor, "rows", len(rows))

	for !s.Done(len(rows)) {
		if err := ctx.Err(); err != nil {
			p.Logger.Info("pipeline.run.stopped", "session", s.Name, "cursor", s.Cursor, "error", err)
			return err
		}
		// A row in flight is not interrupted.
		rowCtx := context.WithoutCancel(ctx)
		if res, ok := p.processRow(rowCtx, s.Cursor, rows[s.Cursor]); ok {
			s.Results = append(s.Results, res)
		}
		s.Cursor++
		if err := p.persist(rowCtx, s); err != nil {
			return err
		}
	}

	p.Logger.Info("pipeline.run.done",
		"session", s.Name,
		"visited", s.Cursor-from,
		"results", len(s.Results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// processRow returns the row's result and true when it should be appended.
func (p *Processor) processRow(ctx context.Context, idx int, row entity.SourceRow) (entity.ExtractionResult, bool) {
	ev := Event{Index: idx, Serial: row.SerialNumber, Link: row.SourceLink}
	emit := func(stage constants.RowStage, err error) {
		ev.Stage, ev.Err = stage, err
		p.Observer.Observe(ev)
	}
	start := time.Now()

	path := constants.PDFPath(p.Cfg.PDFDir, row.SerialNumber)
	if fetch.Exists(path) {
		emit(constants.RowStageCachedPDF, nil)
	} else {
		emit(constants.RowStageDownloading, nil)
		if err := p.Downloader.Download(ctx, row.SourceLink, path); err != nil {
			p.Logger.Error("pipeline.row.failed", "index", idx, "serial", row.SerialNumber, "stage", "download", "error", err)
			emit(constants.RowStageFailed, err)
			return entity.ExtractionResult{}, false
		}
		emit(constants.RowStageDownloaded, nil)
	}

	text, err := p.Text.Extract(ctx, path)
	if err != nil {
		p.Logger.Error("pipeline.row.failed", "index", idx, "serial", row.SerialNumber, "stage", "extract", "error", err)
		emit(constants.RowStageFailed, err)
		return entity.ExtractionResult{}, false
	}
	emit(constants.RowStageExtracted, nil)

	rec, err := p.Extractor.Extract(ctx, text.Text)
	if err != nil {
		if raw, ok := common.RawResponse(err); ok {
			ev.Raw = raw
			p.Logger.Error("pipeline.row.parse_failed", "index", idx, "serial", row.SerialNumber, "error", err)
			emit(constants.RowStageParseFailed, err)
			return entity.ExtractionResult{}, false
		}
		p.Logger.Error("pipeline.row.failed", "index", idx, "serial", row.SerialNumber, "stage", "llm", "error", err)
		emit(constants.RowStageFailed, err)
		return entity.ExtractionResult{}, false
	}

	res := BuildResult(row, rec)
	p.Logger.Info("pipeline.row.ok",
		"index", idx,
		"serial", row.SerialNumber,
		"pages", text.Pages,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	emit(constants.RowStageLLMOK, nil)
	return res, true
}

// BuildResult maps a record onto an output row. Fields the model did not
// return are filled with constants.NotAvailable.
func BuildResult(row entity.SourceRow, rec llm.Record) entity.ExtractionResult {
	res := entity.ExtractionResult{
		SerialNumber: row.SerialNumber,
		SourceLink:   row.SourceLink,
	}
	for _, f := range constants.RequiredFields {
		v, ok := rec.Cell(f)
		if !ok {
			v = constants.NotAvailable
		}
		res.Set(f, v)
	}
	if rec.ParsedIssuanceDate.Set {
		res.ParsedIssuanceDate = rec.ParsedIssuanceDate.Value
	}
	return res
}

func (p *Processor) persist(ctx context.Context, s *Session) error {
	if p.Store == nil {
		return nil
	}
	if err := p.Store.Save(ctx, s.Snapshot()); err != nil {
		p.Logger.Error("pipeline.session.save_failed", "session", s.Name, "cursor", s.Cursor, "error", err)
		return fmt.Errorf("save session %q: %w", s.Name, err)
	}
	return nil
}

// Reset clears the session's cursor and results, empties the extraction
// cache and removes the persisted session.
func (p *Processor) Reset(ctx context.Context, s *Session) error {
	s.clear()
	var errs []error
	if p.Cache != nil {
		if err := p.Cache.Reset(); err != nil {
			errs = append(errs, fmt.Errorf("reset cache: %w", err))
		}
	}
	if p.Store != nil {
		if err := p.Store.Delete(ctx, s.Name); err != nil {
			errs = append(errs, fmt.Errorf("delete session %q: %w", s.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.Logger.Error("pipeline.session.reset_failed", "session", s.Name, "error", err)
		return err
	}
	p.Logger.Info("pipeline.session.reset", "session", s.Name)
	return nil
}
