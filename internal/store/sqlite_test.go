package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/sentiment"
	"github.com/pbaille/journal/internal/themes"
)

// keywordClassifier is a deterministic stand-in for the hosted model
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

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:",
		sentiment.NewScorer(keywordClassifier{}, zap.NewNop()),
		themes.NewExtractor(themes.DefaultTaxonomy()),
		zap.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "good progress on the project", "How was work?", "That sounds encouraging.")
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID)
	assert.InDelta(t, 0.9, saved.SentimentScore, 1e-9)
	assert.Equal(t, domain.Positive, saved.SentimentLabel)
	assert.Equal(t, []string{"Work"}, saved.Themes)

	loaded, err := s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "good progress on the project", got.Text)
	assert.InDelta(t, saved.SentimentScore, got.SentimentScore, 1e-9)
	assert.Equal(t, saved.SentimentLabel, got.SentimentLabel)
	assert.Equal(t, saved.Themes, got.Themes)
	assert.Equal(t, "How was work?", got.Prompt)
	assert.Equal(t, "That sounds encouraging.", got.AIReply)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveWithoutReply(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "a bad night of sleep", "prompt", "")
	require.NoError(t, err)

	loaded, err := s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Empty(t, loaded[0].AIReply)
	assert.Equal(t, domain.Negative, loaded[0].SentimentLabel)
}

func TestLoadAscendingOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		stamp := base.AddDate(0, 0, i)
		s.now = func() time.Time { return stamp }
		_, err := s.Save(ctx, "entry", "", "")
		require.NoError(t, err)
	}

	entries, err := s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].CreatedAt.Before(entries[i-1].CreatedAt))
		assert.Greater(t, entries[i].ID, entries[i-1].ID)
	}
}

func TestLoadWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ages := []int{20, 10, 5, 1} // days before now
	for _, age := range ages {
		stamp := now.AddDate(0, 0, -age)
		s.now = func() time.Time { return stamp }
		_, err := s.Save(ctx, "entry", "", "")
		require.NoError(t, err)
	}

	s.now = func() time.Time { return now }

	entries, err := s.Load(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))
	for _, e := range entries {
		assert.False(t, e.CreatedAt.Before(now.AddDate(0, 0, -7)))
	}

	all, err := s.Load(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.Load(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestThemesRoundTripMultiple(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "stressed about money and my job", "", "")
	require.NoError(t, err)

	entries, err := s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Work", "Finance", "Mood"}, entries[0].Themes)
}
