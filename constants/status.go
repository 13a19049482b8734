package constants

// RowStage is reported to observers as a row moves through the pipeline.
type RowStage string

// Stable values (also stored in the session log).
const (
	RowStageDownloading RowStage = "DOWNLOADING" // fetch started
	RowStageCachedPDF   RowStage = "CACHED_PDF"  // local file already present
	RowStageDownloaded  RowStage = "DOWNLOADED"
	RowStageExtracted   RowStage = "EXTRACTED" // text extracted
	RowStageLLMOK       RowStage = "LLM_OK"    // record appended
	RowStageParseFailed RowStage = "PARSE_FAILED"
	RowStageFailed      RowStage = "FAILED" // terminal failure for this row
)

// Terminal reports whether the stage ends processing of a row.
func (s RowStage) Terminal() bool {
	switch s {
	case RowStageLLMOK, RowStageParseFailed, RowStageFailed:
		return true
	}
	return false
}
