package entity

// SourceRow is one input record from the operator's spreadsheet.
type SourceRow struct {
	SerialNumber string `json:"sr_no"`
	SourceLink   string `json:"source_link"`
}
