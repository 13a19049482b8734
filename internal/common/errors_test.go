package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestAppError_Is(t *testing.T) {
	timeout := NewAppError(ErrDownloadTimeout, "deadline", errors.New("i/o timeout"))
	assert.ErrorIs(t, timeout, ErrDownloadTimeout)
	assert.ErrorIs(t, timeout, ErrDownload)
	assert.NotErrorIs(t, NewAppError(ErrDownload, "404", nil), ErrDownloadTimeout)

	wrapped := fmt.Errorf("row 3: %w", NewAppError(ErrExtraction, "bad pdf", nil))
	assert.ErrorIs(t, wrapped, ErrExtraction)
	assert.Equal(t, "EXTRACTION_ERROR", CodeOf(wrapped))
	assert.Equal(t, "INTERNAL", CodeOf(errors.New("plain")))
}

func TestRawResponse(t *testing.T) {
	err := fmt.Errorf("extract: %w", NewParseError("```json\n{bad", errors.New("unexpected EOF")))
	raw, ok := RawResponse(err)
	assert.True(t, ok)
	assert.Equal(t, "```json\n{bad", raw)
	assert.ErrorIs(t, err, ErrLLMResponseParse)

	_, ok = RawResponse(NewAppError(ErrLLMInvocation, "500", nil))
	assert.False(t, ok)
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{NewAppError(ErrInvalidInput, "x", nil), codes.InvalidArgument},
		{NewAppError(ErrNotFound, "x", nil), codes.NotFound},
		{NewAppError(ErrDownloadTimeout, "x", nil), codes.DeadlineExceeded},
		{NewAppError(ErrDownload, "x", nil), codes.Unavailable},
		{NewAppError(ErrStore, "x", nil), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GRPCCode(tt.err))
	}
}
