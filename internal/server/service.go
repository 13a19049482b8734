package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/export"
	"github.com/amolnak/GuidanceMind/internal/ingest"
	"github.com/amolnak/GuidanceMind/internal/pipeline"
	"github.com/amolnak/GuidanceMind/internal/textextract"
)

// Config holds the HTTP shell settings.
type Config struct {
	// OutputPath receives a fresh workbook on every export.
	OutputPath string
	// APIKey is used when a request carries no X-API-Key header.
	APIKey string
	// RequireAPIKey rejects runs that have no key from either source.
	RequireAPIKey bool
	// UploadDir holds RFQ uploads while they are converted. Default os.TempDir.
	UploadDir string
}

// Service is the operator shell around one processing session.
type Service struct {
	cfg       Config
	processor *pipeline.Processor
	reader    *ingest.Reader
	exporter  *export.Service
	text      textextract.TextExtractor
	logger    *slog.Logger

	// one operator, one run at a time
	mu      sync.Mutex
	session *pipeline.Session
	rows    []entity.SourceRow
}

func New(
	cfg Config,
	processor *pipeline.Processor,
	session *pipeline.Session,
	reader *ingest.Reader,
	exporter *export.Service,
	text textextract.TextExtractor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:       cfg,
		processor: processor,
		session:   session,
		reader:    reader,
		exporter:  exporter,
		text:      text,
		logger:    logger,
	}
}

// Routes returns the HTTP handler.
func (s *Service) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/input", s.handleUpload)
		r.Post("/run", s.handleRun)
		r.Get("/session", s.handleSession)
		r.Get("/results", s.handleResults)
		r.Get("/export.xlsx", s.handleExport)
		r.Post("/reset", s.handleReset)
		r.Post("/rfq", s.handleRFQ)
	})
	return r
}

// Close stops accepting work; the session is already persisted after each row.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("server.close", "session", s.session.Name, "cursor", s.session.Cursor)
	return nil
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http.request",
			"req_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
