package llm

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amolnak/GuidanceMind/constants"
	"github.com/amolnak/GuidanceMind/internal/common"
)

// Accepted spellings of "Date of Issuance", tried in order.
var issuanceLayouts = []string{
	"January 2, 2006",
	"2006-01-02",
	"January 2,2006",
	"January 2006", // day defaults to 1
}

// closingLayout is the only closing-date spelling kept verbatim.
const closingLayout = "January 2, 2006"

var durationDays = regexp.MustCompile(`(\d+)\s+days`)

// lastClosingDate is the latest date a computed closing date may fall on.
var lastClosingDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// ParseIssuanceDate tries each accepted layout.
func ParseIssuanceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range issuanceLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewAppError(common.ErrDateParse, fmt.Sprintf("unrecognized issuance date %q", s), nil)
}

// Normalize applies, in order: issuance/closing date reconciliation, key
// questions reshaping and centers flattening. It never fails; an unparsable
// issuance date degrades to sentinel values.
func Normalize(rec Record, logger *slog.Logger) Record {
	if logger == nil {
		logger = slog.Default()
	}
	if err := reconcileDates(&rec); err != nil {
		logger.Debug("llm.normalize.date_unparsed", "error", err)
	}
	reshapeKeyQuestions(&rec)
	flattenCenters(&rec)
	return rec
}

func reconcileDates(rec *Record) error {
	issued, err := ParseIssuanceDate(rec.DateOfIssuance.Value)
	if err != nil {
		markDateError(rec)
		return err
	}
	rec.ParsedIssuanceDate = T(issued.Format(constants.DisplayDateLayout))

	if rec.CommentClosingDate.Set {
		if _, err := time.Parse(closingLayout, strings.TrimSpace(rec.CommentClosingDate.Value)); err == nil {
			return nil
		}
	}

	m := durationDays.FindStringSubmatch(strings.ToLower(rec.CommentPeriod.Value))
	if m == nil {
		rec.CommentClosingDate = T(constants.NotSpecified)
		return nil
	}
	days, err := strconv.Atoi(m[1])
	if err != nil || int64(days) > (lastClosingDate.Unix()-issued.Unix())/86400 {
		markDateError(rec)
		return common.NewAppError(common.ErrDateParse, "comment period out of range: "+m[1], err)
	}
	rec.CommentClosingDate = T(issued.AddDate(0, 0, days).Format(constants.DisplayDateLayout))
	return nil
}

func markDateError(rec *Record) {
	rec.ParsedIssuanceDate = T(constants.ErrorParsingDate)
	rec.CommentClosingDate = T(constants.ErrorCalculatingDate)
}

// reshapeKeyQuestions numbers a mapping by the fixed topic order. Missing
// topics leave gaps in the numbering; topics outside the fixed set follow,
// unnumbered, in the model's order.
func reshapeKeyQuestions(rec *Record) {
	v := rec.KeyQuestions
	if v.Shape != ShapeMapping {
		return
	}
	answers := make(map[string]string, len(v.Topics))
	for _, t := range v.Topics {
		answers[t.Name] = t.Answer
	}
	fixed := make(map[string]bool, len(constants.KeyQuestionTopics))
	items := make([]string, 0, len(v.Topics))
	for i, name := range constants.KeyQuestionTopics {
		fixed[name] = true
		if ans, ok := answers[name]; ok {
			items = append(items, fmt.Sprintf("%d. %s: %s", i+1, name, ans))
		}
	}
	for _, t := range v.Topics {
		if !fixed[t.Name] {
			items = append(items, fmt.Sprintf("%s: %s", t.Name, t.Answer))
		}
	}
	rec.KeyQuestions = ListVariant(items...)
}

func flattenCenters(rec *Record) {
	if rec.CentersInvolved.Shape == ShapeList {
		rec.CentersInvolved = TextVariant(strings.Join(rec.CentersInvolved.Items, ", "))
	}
}
