package rfq

import (
	"regexp"
	"strings"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/entity"
)

var (
	// <5-digit code> <qty> <label> up to end of line
	lineItem = regexp.MustCompile(`(\d{5})\s+(\d+)\s+(.+?)\n`)
	// start of the next code line, which ends a description block
	nextCode = regexp.MustCompile(`\n\d{5}`)
)

// Options tune description binding.
type Options struct {
	// Nearest binds each description to the first "<label>\n" at or after its
	// own code line. The default binds to the first occurrence in the document.
	Nearest bool
}

// Parse scans text once and returns one item per code line, in document order.
func Parse(text string, opts Options) []entity.RFQLineItem {
	matches := lineItem.FindAllStringSubmatchIndex(text, -1)
	items := make([]entity.RFQLineItem, 0, len(matches))
	for _, m := range matches {
		code := text[m[2]:m[3]]
		qty := text[m[4]:m[5]]
		label := text[m[6]:m[7]]

		from := 0
		if opts.Nearest {
			from = m[6]
		}
		items = append(items, entity.RFQLineItem{
			Code:          code,
			Label:         label,
			Description:   describe(text, label, from),
			Quantity:      qty,
			UnitOfMeasure: constants.RFQUnitOfMeas,
			ItemCode:      code,
		})
	}
	return items
}

// describe returns the text after the first "<label>\n" at or after from, up
// to the next code line or the end of the document, trimmed with newlines
// turned into spaces.
func describe(text, label string, from int) string {
	i := strings.Index(text[from:], label+"\n")
	if i < 0 {
		return ""
	}
	rest := text[from+i+len(label)+1:]
	if loc := nextCode.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return strings.ReplaceAll(strings.TrimSpace(rest), "\n", " ")
}
