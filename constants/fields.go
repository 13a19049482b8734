package constants

// Field names requested from the model, in output column order.
const (
	FieldTitle              = "Title"
	FieldSummary            = "Summary"
	FieldKeyQuestions       = "Key Questions and Answers"
	FieldIssuingAuthority   = "Issuing Authority"
	FieldCentersInvolved    = "Centers Involved"
	FieldDateOfIssuance     = "Date of Issuance"
	FieldTypeOfDocument     = "Type of Document"
	FieldCommentPeriod      = "Public Comment Period"
	FieldDocketNumber       = "Docket Number"
	FieldGuidanceStatus     = "Guidance Status"
	FieldOpenForComment     = "Open for Comment"
	FieldCommentClosingDate = "Comment Closing Date"
	FieldRelevance          = "Relevance of this Guidance"

	// FieldParsedIssuanceDate is derived during normalization and never exported.
	FieldParsedIssuanceDate = "Parsed Issuance Date"
)

// RequiredFields is the fixed extraction schema in output order.
var RequiredFields = []string{
	FieldTitle,
	FieldSummary,
	FieldKeyQuestions,
	FieldIssuingAuthority,
	FieldCentersInvolved,
	FieldDateOfIssuance,
	FieldTypeOfDocument,
	FieldCommentPeriod,
	FieldDocketNumber,
	FieldGuidanceStatus,
	FieldOpenForComment,
	FieldCommentClosingDate,
	FieldRelevance,
}

// Input/output identity columns.
const (
	ColumnSerialNumber = "Sr. No."
	ColumnSourceLink   = "Source Link"
)

// ResultColumns returns the exported header row.
func ResultColumns() []string {
	cols := make([]string, 0, len(RequiredFields)+2)
	cols = append(cols, ColumnSerialNumber, ColumnSourceLink)
	return append(cols, RequiredFields...)
}

// Sentinels.
const (
	NotAvailable         = "Not Available"
	NotSpecified         = "Not specified"
	ErrorParsingDate     = "Error parsing date"
	ErrorCalculatingDate = "Error calculating date"
)

// DisplayDateLayout is the "Month DD, YYYY" form used for every normalized date.
const DisplayDateLayout = "January 02, 2006"

// KeyQuestionTopics is the fixed topic order used to number a Key Questions mapping.
var KeyQuestionTopics = []string{
	"Purpose",
	"Applicability",
	"Defining Phases",
	"Use of Process Models",
	"FDA on Advanced Manufacturing",
}

// RFQ export.
const (
	RFQSheet      = "RFQ_Data"
	RFQUnitOfMeas = "NOS"
)

// RFQColumns is the RFQ export header row.
var RFQColumns = []string{"Code", "Label", "Item Long Description", "Qty", "UOM", "Item Code"}
