package textextract

import (
	"context"
	"fmt"
	"strings"
)

func (e *Extractor) pdftotext(ctx context.Context, path string) (Result, error) {
	res := Result{Method: MethodPdftotext}
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if len(errb) > 0 {
			res.Warnings = append(res.Warnings, string(errb))
		}
		return res, fmt.Errorf("%s: %w", e.cfg.Pdftotext, err)
	}
	// form feed terminates each page
	pages := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
	res.Pages = len(pages)
	res.Text = strings.Join(pages, e.cfg.PageSeparator)
	return res, nil
}
