package textextract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource is the slice of a PDF reader the text assembly needs.
type pageSource interface {
	NumPage() int
	// PageText returns ok=false for pages with no content object.
	PageText(n int) (text string, ok bool, err error)
}

type pdfReader struct {
	r *pdf.Reader
}

func (p pdfReader) NumPage() int { return p.r.NumPage() }

func (p pdfReader) PageText(n int) (string, bool, error) {
	page := p.r.Page(n)
	if page.V.IsNull() {
		return "", false, nil
	}
	text, err := page.GetPlainText(nil)
	return text, true, err
}

func (e *Extractor) pdfText(path string) (res Result, err error) {
	res.Method = MethodPDFText

	// the reader panics on some malformed font tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return res, err
	}
	defer f.Close()

	text, warns, err := joinPages(pdfReader{r: r}, e.cfg.PageSeparator)
	if err != nil {
		return res, err
	}
	res.Text = text
	res.Pages = r.NumPage()
	res.Warnings = warns
	return res, nil
}

// joinPages concatenates pages 1..N. A page that fails to decode is recorded
// as a warning and contributes no text.
func joinPages(src pageSource, sep string) (string, []string, error) {
	n := src.NumPage()
	if n == 0 {
		return "", nil, fmt.Errorf("document has no pages")
	}
	var (
		b     strings.Builder
		warns []string
		read  int
	)
	for i := 1; i <= n; i++ {
		text, ok, err := src.PageText(i)
		if err != nil {
			warns = append(warns, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		if !ok {
			continue
		}
		if read > 0 {
			b.WriteString(sep)
		}
		b.WriteString(text)
		read++
	}
	if read == 0 && len(warns) > 0 {
		return "", warns, fmt.Errorf("no readable pages: %s", warns[0])
	}
	return b.String(), warns, nil
}
