package llm

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amolnak/GuidanceMind/internal/common"
)

type fakeCompleter struct {
	replies []string
	err     error
	calls   int
	last    CompletionRequest
}

func (f *fakeCompleter) Model() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

const goodReply = "```json\n" + `{
  "Title": "Process Validation",
  "Date of Issuance": "January 01, 2025",
  "Public Comment Period": "comments accepted for 60 days from issuance",
  "Centers Involved": ["CDER", "CBER"],
  "Key Questions and Answers": {"Purpose": "p"}
}` + "\n```"

func newTestExtractor(t *testing.T, c Completer) (*Extractor, *FileCache) {
	t.Helper()
	cache, err := NewFileCache(t.TempDir(), nil)
	require.NoError(t, err)
	e, err := NewExtractor(c, cache, nil)
	require.NoError(t, err)
	return e, cache
}

func TestExtractor_CacheFirst(t *testing.T) {
	fc := &fakeCompleter{replies: []string{goodReply}}
	e, cache := newTestExtractor(t, fc)
	ctx := context.Background()

	first, err := e.Extract(ctx, "document text")
	require.NoError(t, err)
	second, err := e.Extract(ctx, "document text")
	require.NoError(t, err)

	assert.Equal(t, 1, fc.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, SystemPrompt, fc.last.System)
	assert.Equal(t, "document text", fc.last.User)

	assert.Equal(t, "March 02, 2025", first.CommentClosingDate.Value)
	assert.Equal(t, TextVariant("CDER, CBER"), first.CentersInvolved)
	assert.Equal(t, ListVariant("1. Purpose: p"), first.KeyQuestions)

	_, err = os.Stat(cache.Path(ContentKey("document text")))
	assert.NoError(t, err)
}

func TestExtractor_DistinctTextsDistinctKeys(t *testing.T) {
	fc := &fakeCompleter{replies: []string{`{"Title": "A"}`, `{"Title": "B"}`}}
	e, _ := newTestExtractor(t, fc)

	a, err := e.Extract(context.Background(), "text a")
	require.NoError(t, err)
	b, err := e.Extract(context.Background(), "text b")
	require.NoError(t, err)

	assert.NotEqual(t, ContentKey("text a"), ContentKey("text b"))
	assert.Equal(t, 2, fc.calls)
	assert.Equal(t, "A", a.Title.Value)
	assert.Equal(t, "B", b.Title.Value)
}

func TestExtractor_InvalidJSONNotCached(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"Sorry, I cannot help with that.", `{"Title": "ok"}`}}
	e, cache := newTestExtractor(t, fc)

	_, err := e.Extract(context.Background(), "doc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrLLMResponseParse))
	raw, ok := common.RawResponse(err)
	assert.True(t, ok)
	assert.Equal(t, "Sorry, I cannot help with that.", raw)

	_, hit, _ := cache.Get(ContentKey("doc"))
	assert.False(t, hit)

	rec, err := e.Extract(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "ok", rec.Title.Value)
	assert.Equal(t, 2, fc.calls)
}

func TestExtractor_ShapeMismatchIsParseError(t *testing.T) {
	for _, reply := range []string{`["not", "an", "object"]`, `"just text"`, `42`} {
		e, _ := newTestExtractor(t, &fakeCompleter{replies: []string{reply}})
		_, err := e.Extract(context.Background(), "doc")
		require.Error(t, err, reply)
		assert.True(t, errors.Is(err, common.ErrLLMResponseParse), reply)
	}
}

func TestExtractor_ObjectValuesAccepted(t *testing.T) {
	reply := `{
  "Title": {"nested": true},
  "Date of Issuance": "January 01, 2025",
  "Public Comment Period": {"duration": "60 days"},
  "Centers Involved": {"CDER": "Center for Drug Evaluation and Research"}
}`
	e, cache := newTestExtractor(t, &fakeCompleter{replies: []string{reply}})

	rec, err := e.Extract(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, `{"nested":true}`, rec.Title.Value)
	assert.Equal(t, `{"duration":"60 days"}`, rec.CommentPeriod.Value)
	assert.Equal(t, "March 02, 2025", rec.CommentClosingDate.Value)
	assert.Equal(t, MappingVariant(Topic{"CDER", "Center for Drug Evaluation and Research"}), rec.CentersInvolved)
	cell, ok := rec.CentersInvolved.Cell()
	assert.True(t, ok)
	assert.Equal(t, "CDER: Center for Drug Evaluation and Research", cell)

	_, hit, err := cache.Get(ContentKey("doc"))
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestExtractor_InvocationErrorNotCached(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("connection reset")}
	e, cache := newTestExtractor(t, fc)

	_, err := e.Extract(context.Background(), "doc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrLLMInvocation))

	_, hit, _ := cache.Get(ContentKey("doc"))
	assert.False(t, hit)
}

func TestFileCache_Reset(t *testing.T) {
	cache, err := NewFileCache(t.TempDir()+"/cache", nil)
	require.NoError(t, err)
	require.NoError(t, cache.Put("k", Record{Title: T("x")}))

	require.NoError(t, cache.Reset())

	_, hit, err := cache.Get("k")
	require.NoError(t, err)
	assert.False(t, hit)
	info, err := os.Stat(cache.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	cache, err := NewFileCache(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cache.Path("bad"), []byte("{not json"), 0o644))

	_, hit, err := cache.Get("bad")
	require.NoError(t, err)
	assert.False(t, hit)
}
