package domain

import "time"

// Label is the three-way sentiment classification of an entry
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// JournalEntry represents one saved journal submission with its derived metadata
type JournalEntry struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Text           string    `json:"text"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel Label     `json:"sentiment_label"`
	Themes         []string  `json:"themes"`
	Prompt         string    `json:"prompt,omitempty"`
	AIReply        string    `json:"ai_reply,omitempty"`
}
