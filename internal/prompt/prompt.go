package prompt

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/companion"
	"github.com/pbaille/journal/internal/domain"
)

// Opener is suggested when the journal is empty
const Opener = "What is one thing on your mind right now?"

// contextEntries bounds how many recent entries feed the companion request
const contextEntries = 3

// Completer is the slice of the companion gateway the generator needs
type Completer interface {
	Available() bool
	Complete(ctx context.Context, prompt string, maxTokens int) companion.Result
}

// Generator produces one short reflective question from recent entries
type Generator struct {
	gw        Completer
	maxTokens int
	log       *zap.Logger
}

// New creates a Generator. gw may be nil for a rule-only generator.
func New(gw Completer, maxTokens int, log *zap.Logger) *Generator {
	return &Generator{gw: gw, maxTokens: maxTokens, log: log}
}

// Generate returns a reflective question for the user. recent is ordered
// oldest first. Always succeeds: gateway failures fall back to rules.
func (g *Generator) Generate(ctx context.Context, recent []domain.JournalEntry) string {
	if g.gw == nil || !g.gw.Available() {
		return RuleBased(recent)
	}

	res := g.gw.Complete(ctx, g.buildRequest(recent), g.maxTokens)
	if res.Ok() {
		return res.Text
	}

	g.log.Debug("prompt generation falling back to rules", zap.Error(res.Err))
	return RuleBased(recent)
}

// RuleBased is the deterministic prompt path. It inspects only the single
// most recent entry.
func RuleBased(recent []domain.JournalEntry) string {
	if len(recent) == 0 {
		return Opener
	}

	last := recent[len(recent)-1]

	if hasTheme(last.Themes, "Work") {
		return "Work has been on your mind lately. How are you feeling about your job or career?"
	}

	switch last.SentimentLabel {
	case domain.Negative:
		return "You seem to be having a heavy heart as of late. What is one small thing that brought you even a bit of joy today?"
	case domain.Positive:
		return "You seem to be in a good mood lately. What is one thing that made you smile recently?"
	}

	return "Let's take a deep breath and pause. What is the strongest feeling you feel right now?"
}

func (g *Generator) buildRequest(recent []domain.JournalEntry) string {
	var intro string
	if len(recent) == 0 {
		intro = "The user is starting journaling and may have blank page anxiety."
	} else {
		intro = "Recent entries:\n" + ContextBlock(recent, contextEntries)
	}

	return intro +
		"\n\nBased on this, suggest ONE gentle journaling prompt (at most 30 words) " +
		"that helps the user reflect today. Do not give advice or try to solve problems, " +
		"just suggest a prompt."
}

// ContextBlock renders the last n entries as date/mood/theme bullets
func ContextBlock(entries []domain.JournalEntry, n int) string {
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "- "+e.CreatedAt.UTC().Format("2006-01-02")+
			": mood "+string(e.SentimentLabel)+
			", themes: "+strings.Join(e.Themes, ", "))
	}
	return strings.Join(lines, "\n")
}

func hasTheme(entryThemes []string, name string) bool {
	for _, t := range entryThemes {
		if t == name {
			return true
		}
	}
	return false
}
