package entity

import "github.com/amolnak/GuidanceMind/constants"

// ExtractionResult is one output row. Every value is the exported cell text.
type ExtractionResult struct {
	SerialNumber       string `json:"Sr. No."`
	SourceLink         string `json:"Source Link"`
	Title              string `json:"Title"`
	Summary            string `json:"Summary"`
	KeyQuestions       string `json:"Key Questions and Answers"`
	IssuingAuthority   string `json:"Issuing Authority"`
	CentersInvolved    string `json:"Centers Involved"`
	DateOfIssuance     string `json:"Date of Issuance"`
	TypeOfDocument     string `json:"Type of Document"`
	CommentPeriod      string `json:"Public Comment Period"`
	DocketNumber       string `json:"Docket Number"`
	GuidanceStatus     string `json:"Guidance Status"`
	OpenForComment     string `json:"Open for Comment"`
	CommentClosingDate string `json:"Comment Closing Date"`
	Relevance          string `json:"Relevance of this Guidance"`

	// ParsedIssuanceDate is derived and not part of the exported columns.
	ParsedIssuanceDate string `json:"Parsed Issuance Date,omitempty"`
}

func (r *ExtractionResult) ref(column string) *string {
	switch column {
	case constants.ColumnSerialNumber:
		return &r.SerialNumber
	case constants.ColumnSourceLink:
		return &r.SourceLink
	case constants.FieldTitle:
		return &r.Title
	case constants.FieldSummary:
		return &r.Summary
	case constants.FieldKeyQuestions:
		return &r.KeyQuestions
	case constants.FieldIssuingAuthority:
		return &r.IssuingAuthority
	case constants.FieldCentersInvolved:
		return &r.CentersInvolved
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

// Get returns the value of a column by its header name.
func (r ExtractionResult) Get(column string) string {
	if p := r.ref(column); p != nil {
		return *p
	}
	return ""
}

// Set assigns a column by header name. Unknown columns are ignored.
func (r *ExtractionResult) Set(column, value string) bool {
	p := r.ref(column)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Row returns the exported cells in constants.ResultColumns order.
func (r ExtractionResult) Row() []string {
	cols := constants.ResultColumns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.Get(c)
	}
	return out
}
