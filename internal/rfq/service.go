package rfq

import (
	"context"
	"log/slog"
	"time"

	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/export"
	"github.com/amolnak/GuidanceMind/internal/textextract"
)

// Converter turns one RFQ PDF into line items and an XLSX workbook.
type Converter struct {
	text     textextract.TextExtractor
	exporter *export.Service
	opts     Options
	logger   *slog.Logger
}

func NewConverter(text textextract.TextExtractor, exporter *export.Service, opts Options, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{text: text, exporter: exporter, opts: opts, logger: logger}
}

// Items extracts the document text and parses it. The extractor is expected
// to join pages with "\n"; a final newline is added so a code line on the
// last line still matches.
func (c *Converter) Items(ctx context.Context, path string) ([]entity.RFQLineItem, error) {
	start := time.Now()
	res, err := c.text.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	items := Parse(res.Text+"\n", c.opts)
	c.logger.Info("rfq.parse.ok",
		"path", path,
		"pages", res.Pages,
		"items", len(items),
		"nearest", c.opts.Nearest,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}

// Convert returns the RFQ_Data workbook for path.
func (c *Converter) Convert(ctx context.Context, path string) ([]byte, []entity.RFQLineItem, error) {
	items, err := c.Items(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.exporter.RFQXLSX(items)
	if err != nil {
		return nil, nil, err
	}
	return b, items, nil
}
