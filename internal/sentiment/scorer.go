package sentiment

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/domain"
)

// maxChars bounds the text sent to the classifier
const maxChars = 512

// deadzone is the score band around zero collapsed to neutral, absorbing
// low-confidence classifications
const deadzone = 0.2

// Scorer maps entry text to a signed normalized score in [-1, 1]
// and a three-way label
type Scorer struct {
	clf Classifier
	log *zap.Logger
}

// NewScorer creates a Scorer over the given classifier
func NewScorer(clf Classifier, log *zap.Logger) *Scorer {
	return &Scorer{clf: clf, log: log}
}

// Score classifies text. Blank text is neutral without a classifier call.
// Classifier failures degrade to neutral rather than failing the caller.
func (s *Scorer) Score(ctx context.Context, text string) (float64, domain.Label) {
	if strings.TrimSpace(text) == "" {
		return 0.0, domain.Neutral
	}

	polarity, err := s.clf.Classify(ctx, truncate(text, maxChars))
	if err != nil {
		s.log.Warn("sentiment classification failed, defaulting to neutral", zap.Error(err))
		return 0.0, domain.Neutral
	}

	var score float64
	var label domain.Label

	switch strings.ToUpper(polarity.Class) {
	case "POSITIVE":
		score = polarity.Confidence
		label = domain.Positive
	case "NEGATIVE":
		score = -polarity.Confidence
		label = domain.Negative
	default:
		s.log.Warn("unknown polarity class, defaulting to neutral", zap.String("class", polarity.Class))
		return 0.0, domain.Neutral
	}

	if math.Abs(score) < deadzone {
		return 0.0, domain.Neutral
	}

	return score, label
}

// truncate returns the first max characters of s, respecting rune boundaries
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
