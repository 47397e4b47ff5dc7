package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/companion"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/prompt"
	"github.com/pbaille/journal/internal/sentiment"
	"github.com/pbaille/journal/internal/store"
	"github.com/pbaille/journal/internal/summary"
	"github.com/pbaille/journal/internal/themes"
)

type keywordClassifier struct{}

func (keywordClassifier) Classify(_ context.Context, text string) (sentiment.Polarity, error) {
	switch {
	case strings.Contains(text, "good"):
		return sentiment.Polarity{Class: "POSITIVE", Confidence: 0.9}, nil
	case strings.Contains(text, "bad"):
		return sentiment.Polarity{Class: "NEGATIVE", Confidence: 0.8}, nil
	}
	return sentiment.Polarity{Class: "POSITIVE", Confidence: 0.1}, nil
}

type fakeReplier struct {
	result companion.Result
}

func (f fakeReplier) Reply(context.Context, string) companion.Result { return f.result }

func newTestServer(t *testing.T, replier Replier) (*Server, *store.Store) {
	t.Helper()
	log := zap.NewNop()

	st, err := store.New(":memory:",
		sentiment.NewScorer(keywordClassifier{}, log),
		themes.NewExtractor(themes.DefaultTaxonomy()),
		log,
	)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := New(st,
		prompt.New(nil, 100, log),
		summary.New(nil, 300, log),
		replier, ":0", log)
	return srv, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := make(map[string]json.RawMessage)
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, body := doJSON(t, srv.Handler(), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAddEntry(t *testing.T) {
	srv, st := newTestServer(t, fakeReplier{
		result: companion.Result{State: companion.StateOk, Text: "That sounds lovely."},
	})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/entries", `{"text":"a good day at the office"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, domain.Positive, entry.SentimentLabel)
	assert.Equal(t, []string{"Work"}, entry.Themes)
	assert.Equal(t, "That sounds lovely.", entry.AIReply)
	assert.Equal(t, prompt.Opener, entry.Prompt, "first entry gets the generic opener")

	saved, err := st.Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, saved, 1)
}

func TestAddEntryBlankText(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		rec, _ := doJSON(t, srv.Handler(), "POST", "/entries", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestAddEntryFailedReplyStillSaves(t *testing.T) {
	srv, _ := newTestServer(t, fakeReplier{
		result: companion.Result{State: companion.StateFailed},
	})

	rec, _ := doJSON(t, srv.Handler(), "POST", "/entries", `{"text":"a bad evening"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry domain.JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Empty(t, entry.AIReply)
}

func TestListEntries(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	_, err := st.Save(ctx, "first entry", "", "")
	require.NoError(t, err)
	_, err = st.Save(ctx, "second entry", "", "")
	require.NoError(t, err)

	rec, body := doJSON(t, srv.Handler(), "GET", "/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []domain.JournalEntry
	require.NoError(t, json.Unmarshal(body["entries"], &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "first entry", entries[0].Text)
	assert.Equal(t, "second entry", entries[1].Text)
}

func TestListEntriesBadDays(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, _ := doJSON(t, srv.Handler(), "GET", "/entries?days=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPromptEmptyJournal(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, body := doJSON(t, srv.Handler(), "GET", "/prompt", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var p string
	require.NoError(t, json.Unmarshal(body["prompt"], &p))
	assert.Equal(t, prompt.Opener, p)
}

func TestGetSummaryEmptyWindow(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, body := doJSON(t, srv.Handler(), "GET", "/summary", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var s string
	require.NoError(t, json.Unmarshal(body["summary"], &s))
	assert.Equal(t, summary.NoEntries, s)
}

func TestGetTrends(t *testing.T) {
	srv, st := newTestServer(t, nil)
	ctx := context.Background()

	_, err := st.Save(ctx, "good work on the project", "", "")
	require.NoError(t, err)

	rec, body := doJSON(t, srv.Handler(), "GET", "/trends", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var counts []summary.ThemeCount
	require.NoError(t, json.Unmarshal(body["themes"], &counts))
	require.Len(t, counts, 1)
	assert.Equal(t, "Work", counts[0].Theme)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/entries", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
