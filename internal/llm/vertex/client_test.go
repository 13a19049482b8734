package vertex

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amolnak/GuidanceMind/internal/common"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"Title":`), genai.Text(` "X"}`)}},
		}},
	}
	got, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"Title": "X"}`, got)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
	_, err = responseText(nil)
	assert.Error(t, err)
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Region: "us-central1"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfig))
}
