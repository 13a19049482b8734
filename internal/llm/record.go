package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/amolnak/GuidanceMind/constants"
)

// Text is a scalar field. Set is false when the model omitted the key or sent null.
type Text struct {
	Value string
	Set   bool
}

// T builds a set Text.
func T(v string) Text { return Text{Value: v, Set: true} }

// Shape tags which JSON shape the model used for a Variant field.
type Shape int

const (
	ShapeAbsent Shape = iota
	ShapeText
	ShapeList
	ShapeMapping
)

func (s Shape) String() string {
	switch s {
	case ShapeText:
		return "text"
	case ShapeList:
		return "list"
	case ShapeMapping:
		return "mapping"
	}
	return "absent"
}

// Topic is one entry of a mapping-shaped field, kept in the model's key order.
type Topic struct {
	Name   string
	Answer string
}

// Variant is a field the model may return as text, a list of strings or a mapping.
type Variant struct {
	Shape  Shape
	Text   string
	Items  []string
	Topics []Topic
}

// TextVariant, ListVariant and MappingVariant build the three shapes.
func TextVariant(s string) Variant        { return Variant{Shape: ShapeText, Text: s} }
func ListVariant(items ...string) Variant { return Variant{Shape: ShapeList, Items: items} }
func MappingVariant(topics ...Topic) Variant {
	return Variant{Shape: ShapeMapping, Topics: topics}
}

// Cell renders the variant as spreadsheet text. Lists and mappings are one entry per line.
func (v Variant) Cell() (string, bool) {
	switch v.Shape {
	case ShapeText:
		return v.Text, true
	case ShapeList:
		return strings.Join(v.Items, "\n"), true
	case ShapeMapping:
		lines := make([]string, len(v.Topics))
		for i, t := range v.Topics {
			lines[i] = t.Name + ": " + t.Answer
		}
		return strings.Join(lines, "\n"), true
	}
	return "", false
}

func (v Variant) MarshalJSON() ([]byte, error) {
	switch v.Shape {
	case ShapeText:
		return json.Marshal(v.Text)
	case ShapeList:
		if v.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Items)
	case ShapeMapping:
		var b bytes.Buffer
		b.WriteByte('{')
		for i, t := range v.Topics {
			if i > 0 {
				b.WriteByte(',')
			}
			k, _ := json.Marshal(t.Name)
			a, _ := json.Marshal(t.Answer)
			b.Write(k)
			b.WriteByte(':')
			b.Write(a)
		}
		b.WriteByte('}')
		return b.Bytes(), nil
	}
	return []byte("null"), nil
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	out, err := decodeVariant(data)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// Record is the decoded model output for one document.
type Record struct {
	Title              Text
	Summary            Text
	KeyQuestions       Variant
	IssuingAuthority   Text
	CentersInvolved    Variant
	DateOfIssuance     Text
	TypeOfDocument     Text
	CommentPeriod      Text
	DocketNumber       Text
	GuidanceStatus     Text
	OpenForComment     Text
	CommentClosingDate Text
	Relevance          Text

	// Derived during normalization.
	ParsedIssuanceDate Text
}

func (r *Record) text(field string) *Text {
	switch field {
	case constants.FieldTitle:
		return &r.Title
	case constants.FieldSummary:
		return &r.Summary
	case constants.FieldIssuingAuthority:
		return &r.IssuingAuthority
	case constants.FieldDateOfIssuance:
		return &r.DateOfIssuance
	case constants.FieldTypeOfDocument:
		return &r.TypeOfDocument
	case constants.FieldCommentPeriod:
		return &r.CommentPeriod
	case constants.FieldDocketNumber:
		return &r.DocketNumber
	case constants.FieldGuidanceStatus:
		return &r.GuidanceStatus
	case constants.FieldOpenForComment:
		return &r.OpenForComment
	case constants.FieldCommentClosingDate:
		return &r.CommentClosingDate
	case constants.FieldRelevance:
		return &r.Relevance
	case constants.FieldParsedIssuanceDate:
		return &r.ParsedIssuanceDate
	}
	return nil
}

func (r *Record) variant(field string) *Variant {
	switch field {
	case constants.FieldKeyQuestions:
		return &r.KeyQuestions
	case constants.FieldCentersInvolved:
		return &r.CentersInvolved
	}
	return nil
}

// Cell returns the spreadsheet text for a field and whether the model supplied it.
func (r Record) Cell(field string) (string, bool) {
	if t := r.text(field); t != nil {
		return t.Value, t.Set
	}
	if v := r.variant(field); v != nil {
		return v.Cell()
	}
	return "", false
}

var recordFields = append(append([]string{}, constants.RequiredFields...), constants.FieldParsedIssuanceDate)

func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(recordFields))
	for _, f := range recordFields {
		if t := r.text(f); t != nil {
			if t.Set {
				m[f] = t.Value
			}
			continue
		}
		if v := r.variant(f); v != nil && v.Shape != ShapeAbsent {
			m[f] = *v
		}
	}
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	out, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// DecodeRecord maps a JSON object onto a Record. Unknown keys are ignored.
func DecodeRecord(data []byte) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	var rec Record
	for key, val := range raw {
		if t := rec.text(key); t != nil {
			s, ok, err := decodeScalar(val)
			if err != nil {
				return Record{}, fmt.Errorf("field %q: %w", key, err)
			}
			*t = Text{Value: s, Set: ok}
			continue
		}
		if v := rec.variant(key); v != nil {
			dv, err := decodeVariant(val)
			if err != nil {
				return Record{}, fmt.Errorf("field %q: %w", key, err)
			}
			*v = dv
		}
	}
	return rec, nil
}

// decodeScalar stringifies a JSON value. null reports ok=false.
func decodeScalar(raw json.RawMessage) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", false, err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			s, ok, err := decodeScalar(it)
			if err != nil {
				return "", false, err
			}
			if ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), true, nil
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", false, err
		}
		return buf.String(), true, nil
	}
	// numbers and booleans keep their literal spelling
	if !json.Valid(raw) {
		return "", false, fmt.Errorf("invalid JSON value %q", raw)
	}
	return string(raw), true, nil
}

func decodeVariant(raw json.RawMessage) (Variant, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Variant{}, nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Variant{}, err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok, err := decodeScalar(it)
			if err != nil {
				return Variant{}, err
			}
			if ok {
				out = append(out, s)
			}
		}
		return ListVariant(out...), nil
	case '{':
		topics, err := decodeOrderedObject(raw)
		if err != nil {
			return Variant{}, err
		}
		return MappingVariant(topics...), nil
	}
	s, _, err := decodeScalar(raw)
	if err != nil {
		return Variant{}, err
	}
	return TextVariant(s), nil
}

// decodeOrderedObject reads a flat object keeping key order; nested values are stringified.
func decodeOrderedObject(raw json.RawMessage) ([]Topic, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // {
		return nil, err
	}
	var topics []Topic
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		s, _, err := decodeScalar(val)
		if err != nil {
			return nil, err
		}
		topics = append(topics, Topic{Name: key, Answer: s})
	}
	if _, err := dec.Token(); err != nil { // }
		return nil, err
	}
	return topics, nil
}

// quoteIfNeeded is used in log lines for short field previews.
func quoteIfNeeded(s string, max int) string {
	if len(s) > max {
		s = s[:max] + "..."
	}
	return strconv.Quote(s)
}
