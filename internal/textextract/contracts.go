package textextract

import (
	"context"
	"time"
)

// TextExtractor turns a local document into a flat text blob.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdftotext"
	Duration time.Duration
	Warnings []string
}
