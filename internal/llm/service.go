package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/amolnak/GuidanceMind/internal/common"
)

// Extractor is the cache-first structured extraction client.
type Extractor struct {
	completer Completer
	cache     Cache
	schema    *jsonschema.Schema
	logger    *slog.Logger
}

var _ RecordExtractor = (*Extractor)(nil)

func NewExtractor(completer Completer, cache Cache, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := CompileSchema(BuildGuidanceJSONSchema())
	if err != nil {
		return nil, err
	}
	return &Extractor{completer: completer, cache: cache, schema: schema, logger: logger}, nil
}

// Extract returns the normalized record for text. Identical text is served
// from the cache without a model call. Only successfully parsed records are
// cached; invocation and parse failures are returned as errors so a later
// call retries.
func (e *Extractor) Extract(ctx context.Context, text string) (Record, error) {
	key := ContentKey(text)
	rid := uuid.New().String()
	start := time.Now()

	if rec, ok, err := e.cache.Get(key); err != nil {
		e.logger.Warn("llm.cache.read_error", "req_id", rid, "key", key, "error", err)
	} else if ok {
		e.logger.Info("llm.cache.hit", "req_id", rid, "key", key)
		return rec, nil
	}

	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"key", key,
		"model", e.completer.Model(),
		"text_len", len(text),
	)

	content, err := e.completer.Complete(ctx, CompletionRequest{System: SystemPrompt, User: UserPrompt(text)})
	if err != nil {
		e.logger.Error("llm.extract.invocation_failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		var ae *common.AppError
		if errors.As(err, &ae) {
			return Record{}, err
		}
		return Record{}, common.NewAppError(common.ErrLLMInvocation, err.Error(), err)
	}

	rec, err := e.parse(content)
	if err != nil {
		e.logger.Error("llm.extract.parse_failed", "req_id", rid, "error", err,
			"content", quoteIfNeeded(content, 512),
			"elapsed_ms", time.Since(start).Milliseconds())
		return Record{}, err
	}
	rec = Normalize(rec, e.logger)

	if err := e.cache.Put(key, rec); err != nil {
		e.logger.Warn("llm.cache.write_error", "req_id", rid, "key", key, "error", err)
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"title", quoteIfNeeded(rec.Title.Value, 80),
		"issued", rec.ParsedIssuanceDate.Value,
		"closing", rec.CommentClosingDate.Value,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// parse strips fences, decodes and shape-checks the model output.
func (e *Extractor) parse(content string) (Record, error) {
	raw := strings.TrimSpace(content)
	body := StripCodeFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Record{}, common.NewParseError(raw, err)
	}
	if err := ValidateDocument(e.schema, doc); err != nil {
		return Record{}, common.NewParseError(raw, err)
	}
	rec, err := DecodeRecord([]byte(body))
	if err != nil {
		return Record{}, common.NewParseError(raw, err)
	}
	return rec, nil
}
