package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// AppError represents application-specific errors.
// Kind is one of the sentinels below and is what errors.Is matches on.
type AppError struct {
	Kind    error
	Code    string
	Message string
	Cause   error

	// Raw carries the offending model output for ErrLLMResponseParse.
	Raw string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind so callers can write errors.Is(err, ErrDownload).
// A timeout is also a download error.
func (e *AppError) Is(target error) bool {
	if e.Kind == nil {
		return false
	}
	if e.Kind == target {
		return true
	}
	return e.Kind == ErrDownloadTimeout && target == ErrDownload
}

// Error kinds
var (
	ErrDownload         = errors.New("download error")
	ErrDownloadTimeout  = errors.New("download timeout")
	ErrExtraction       = errors.New("extraction error")
	ErrLLMInvocation    = errors.New("llm invocation error")
	ErrLLMResponseParse = errors.New("llm response parse error")
	ErrDateParse        = errors.New("date parse error")
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStore            = errors.New("session store error")
	ErrConfig           = errors.New("configuration error")
)

var kindCodes = map[error]string{
	ErrDownload:         "DOWNLOAD_ERROR",
	ErrDownloadTimeout:  "DOWNLOAD_TIMEOUT",
	ErrExtraction:       "EXTRACTION_ERROR",
	ErrLLMInvocation:    "LLM_INVOCATION_ERROR",
	ErrLLMResponseParse: "LLM_RESPONSE_PARSE_ERROR",
	ErrDateParse:        "DATE_PARSE_ERROR",
	ErrNotFound:         "NOT_FOUND",
	ErrInvalidInput:     "INVALID_INPUT",
	ErrStore:            "STORE_ERROR",
	ErrConfig:           "CONFIG_ERROR",
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, message string, cause error) *AppError {
	code, ok := kindCodes[kind]
	if !ok {
		code = "INTERNAL"
	}
	return &AppError{Kind: kind, Code: code, Message: message, Cause: cause}
}

// NewParseError records the raw model text alongside the decode failure.
func NewParseError(raw string, cause error) *AppError {
	e := NewAppError(ErrLLMResponseParse, "Invalid JSON", cause)
	e.Raw = raw
	return e
}

// RawResponse returns the model output attached to a parse error, if any.
func RawResponse(err error) (string, bool) {
	var ae *AppError
	if errors.As(err, &ae) && errors.Is(ae.Kind, ErrLLMResponseParse) {
		return ae.Raw, true
	}
	return "", false
}

// CodeOf returns the AppError code of err, or "INTERNAL".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "INTERNAL"
}

// GRPCCode maps an error kind to a gRPC status code for the health surface.
func GRPCCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConfig):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrDownloadTimeout):
		return codes.DeadlineExceeded
	case errors.Is(err, ErrDownload), errors.Is(err, ErrLLMInvocation), errors.Is(err, ErrStore):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
