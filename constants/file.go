package constants

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ContentTypePDF must appear in a download's Content-Type for it to be accepted.
const ContentTypePDF = "application/pdf"

// ResultsSheet is the sheet name of the exported results workbook.
const ResultsSheet = "Sheet1"

// PDFFileName is the deterministic local name of a source row's document.
func PDFFileName(serial string) string {
	return fmt.Sprintf("doc_%s.pdf", sanitizeSerial(serial))
}

// PDFPath joins PDFFileName onto dir.
func PDFPath(dir, serial string) string {
	return filepath.Join(dir, PDFFileName(serial))
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDF reports whether path carries a .pdf extension.
func IsPDF(path string) bool {
	return NormalizeExt(filepath.Ext(path)) == "pdf"
}

// serials come from operator spreadsheets; keep them from escaping the pdf dir.
func sanitizeSerial(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, s)
}
