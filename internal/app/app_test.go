package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amolnak/GuidanceMind/internal/common"
	"github.com/amolnak/GuidanceMind/internal/entity"
	"github.com/amolnak/GuidanceMind/internal/llm"
	"github.com/amolnak/GuidanceMind/internal/llm/openai"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	dir := t.TempDir()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := common.LoadConfig(fs, []string{
		"--pdf-dir", filepath.Join(dir, "pdfs"),
		"--cache-dir", filepath.Join(dir, "cache"),
		"--out", filepath.Join(dir, "out.xlsx"),
		"--store", filepath.Join(dir, "session.db"),
		"--api-key", "sk-test",
	})
	require.NoError(t, err)
	return cfg
}

func TestNew_ResumesPersistedSession(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, a.Sessions.Save(ctx, entity.SessionSnapshot{Name: cfg.Store.Session, Cursor: 4}))
	require.NoError(t, a.Close())

	a, err = New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	s, err := a.Processor.Open(ctx, cfg.Store.Session)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Cursor)

	require.NoError(t, a.Processor.Reset(ctx, s))
	_, ok, err := a.Sessions.Load(ctx, cfg.Store.Session)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewCompleter_OpenAIDefault(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewCompleter(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, c)
	assert.Equal(t, common.DefaultModel, c.Model())
}

func TestNewCompleter_JSONMode(t *testing.T) {
	for _, jsonMode := range []bool{false, true} {
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
		}))

		cfg := testConfig(t)
		cfg.LLM.BaseURL = srv.URL
		cfg.LLM.JSONMode = jsonMode
		c, err := NewCompleter(context.Background(), cfg, nil)
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), llm.CompletionRequest{System: "sys", User: "doc"})
		srv.Close()
		require.NoError(t, err)

		if jsonMode {
			assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
		} else {
			assert.NotContains(t, body, "response_format")
		}
	}
}

func TestNewTimedStore_ZeroTimeoutPassesThrough(t *testing.T) {
	var repo timedStore
	assert.Same(t, &repo, NewTimedStore(&repo, 0))
	assert.IsType(t, &timedStore{}, NewTimedStore(&repo, time.Second))
}
