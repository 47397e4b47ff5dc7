package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/sentiment"
	"github.com/pbaille/journal/internal/themes"
)

//go:embed schema.sql
var schema string

// timeLayout is a fixed-width RFC 3339 variant so stored timestamps sort
// lexicographically, which the window query relies on
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists journal entries and derives their sentiment and themes
// at save time
type Store struct {
	db        *sql.DB
	scorer    *sentiment.Scorer
	extractor *themes.Extractor
	log       *zap.Logger
	now       func() time.Time
}

// New opens (or creates) the database at dbPath
func New(dbPath string, scorer *sentiment.Scorer, extractor *themes.Extractor, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{
		db:        db,
		scorer:    scorer,
		extractor: extractor,
		log:       log,
		now:       time.Now,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Save derives sentiment and themes for text, stamps the current UTC time,
// and appends one immutable record. aiReply may be empty.
func (s *Store) Save(ctx context.Context, text, prompt, aiReply string) (*domain.JournalEntry, error) {
	score, label := s.scorer.Score(ctx, text)
	entryThemes := s.extractor.Extract(text)
	createdAt := s.now().UTC()

	var reply interface{}
	if aiReply != "" {
		reply = aiReply
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO journal_entries (created_at, text, sentiment_score, sentiment_label, themes, ai_reply, prompt) VALUES (?, ?, ?, ?, ?, ?, ?)",
		createdAt.Format(timeLayout), text, score, string(label), strings.Join(entryThemes, ","), reply, prompt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("entry id: %w", err)
	}

	s.log.Debug("saved entry",
		zap.Int64("id", id),
		zap.Float64("score", score),
		zap.Strings("themes", entryThemes),
	)

	return &domain.JournalEntry{
		ID:             id,
		CreatedAt:      createdAt,
		Text:           text,
		SentimentScore: score,
		SentimentLabel: label,
		Themes:         entryThemes,
		Prompt:         prompt,
		AIReply:        aiReply,
	}, nil
}

// Load returns entries ascending by creation time. days == 0 returns every
// entry; days == N returns only entries within the trailing N-day window.
func (s *Store) Load(ctx context.Context, days int) ([]domain.JournalEntry, error) {
	const cols = "id, created_at, text, sentiment_score, sentiment_label, themes, ai_reply, prompt"

	var rows *sql.Rows
	var err error
	if days <= 0 {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+cols+" FROM journal_entries ORDER BY created_at",
		)
	} else {
		cutoff := s.now().UTC().AddDate(0, 0, -days).Format(timeLayout)
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+cols+" FROM journal_entries WHERE created_at >= ? ORDER BY created_at",
			cutoff,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		var createdAt, label, themeList string
		var aiReply, prompt sql.NullString

		if err := rows.Scan(&e.ID, &createdAt, &e.Text, &e.SentimentScore, &label, &themeList, &aiReply, &prompt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		e.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		e.SentimentLabel = domain.Label(label)
		e.Themes = strings.Split(themeList, ",")
		e.AIReply = aiReply.String
		e.Prompt = prompt.String

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}
