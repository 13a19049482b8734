// Package app wires the configured components for the commands.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/export"
	"github.com/amolnak/GuidanceMind/internal/fetch"
	"github.com/amolnak/GuidanceMind/internal/ingest"
	"github.com/amolnak/GuidanceMind/internal/llm"
	"github.com/amolnak/GuidanceMind/internal/llm/openai"
	"github.com/amolnak/GuidanceMind/internal/llm/vertex"
	"github.com/amolnak/GuidanceMind/internal/pipeline"
	"github.com/amolnak/GuidanceMind/internal/repository"
	"github.com/amolnak/GuidanceMind/internal/textextract"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Sessions  repository.SessionRepository
	Cache     *llm.FileCache
	Text      *textextract.Extractor
	Processor *pipeline.Processor
	Reader    *ingest.Reader
	Exporter  *export.Service

	closers []func() error
}

// New opens the store and builds the guidance pipeline.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	db, err := repository.Open(ctx, repository.Config{DSN: cfg.Store.DSN}, logger)
	if err != nil {
		return nil, common.NewAppError(common.ErrStore, "open session store", err)
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	a.Sessions = NewTimedStore(repository.NewSessionRepository(db, logger), cfg.Store.OpTimeout)

	cache, err := llm.NewFileCache(cfg.Data.CacheDir, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Cache = cache

	completer, err := NewCompleter(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c, ok := completer.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	extractor, err := llm.NewExtractor(completer, cache, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Text = NewTextExtractor(cfg, "", logger)
	dl := fetch.NewHTTPDownloader(fetch.Config{
		Timeout:   cfg.Download.Timeout,
		UserAgent: cfg.Download.UserAgent,
	}, logger)

	a.Processor = pipeline.NewProcessor(logger,
		pipeline.Config{PDFDir: cfg.Data.PDFDir},
		dl, a.Text, extractor, cache, a.Sessions)
	a.Reader = ingest.NewReader(logger)
	a.Exporter = export.NewService(logger)
	return a, nil
}

// NewCompleter returns the chat backend selected by llm.provider.
func NewCompleter(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case common.ProviderVertex:
		model := cfg.LLM.Model
		if model == "" || model == common.DefaultModel {
			model = common.DefaultVertexModel
		}
		c, err := vertex.NewClient(ctx, vertex.Config{
			Project:     cfg.Vertex.Project,
			Region:      cfg.Vertex.Region,
			Model:       model,
			Temperature: cfg.LLM.Temperature,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			JSONMode:    cfg.LLM.JSONMode,
		}, logger), nil
	}
}

// NewTextExtractor builds the configured backend with the given page separator.
func NewTextExtractor(cfg *common.Config, pageSep string, logger *slog.Logger) *textextract.Extractor {
	return textextract.NewExtractor(textextract.Config{
		Backend:       cfg.Text.Backend,
		Pdftotext:     cfg.Text.Pdftotext,
		PageSeparator: pageSep,
	}, logger)
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
