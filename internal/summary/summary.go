package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/companion"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/prompt"
)

// NoEntries is returned for an empty window on both generation paths
const NoEntries = "You don't have any entries this week yet. " +
	"Try starting with a small reflection of your day."

const closing = "As you continue to write, consider reflecting on what themes keep you grounded and bring you joy."

// contextEntries bounds how many entries feed the companion request
const contextEntries = 10

// topThemes is how many frequent themes the rule summary reports
const topThemes = 3

// Completer is the slice of the companion gateway the generator needs
type Completer interface {
	Available() bool
	Complete(ctx context.Context, prompt string, maxTokens int) companion.Result
}

// Generator produces a multi-paragraph reflective summary for a window
// of entries
type Generator struct {
	gw        Completer
	maxTokens int
	log       *zap.Logger
}

// New creates a Generator. gw may be nil for a rule-only generator.
func New(gw Completer, maxTokens int, log *zap.Logger) *Generator {
	return &Generator{gw: gw, maxTokens: maxTokens, log: log}
}

// Generate returns a reflective summary of entries, ordered oldest first.
// Always succeeds: gateway failures fall back to the rule-based summary.
func (g *Generator) Generate(ctx context.Context, entries []domain.JournalEntry) string {
	if len(entries) == 0 {
		return NoEntries
	}

	if g.gw == nil || !g.gw.Available() {
		return RuleBased(entries)
	}

	request := "Here are the user's journal entries for the week:\n" +
		prompt.ContextBlock(entries, contextEntries) +
		"\n\nBased on these entries, provide a thoughtful weekly summary " +
		"that reflects on their themes and emotional journey. " +
		"Keep it warm, encouraging, and validating, and under 3 short paragraphs."

	res := g.gw.Complete(ctx, request, g.maxTokens)
	if res.Ok() {
		return res.Text
	}

	g.log.Debug("summary generation falling back to rules", zap.Error(res.Err))
	return RuleBased(entries)
}

// RuleBased is the deterministic summary path: entry count, most frequent
// themes, and the themes whose mean sentiment sits strictly above or below
// the overall mean.
func RuleBased(entries []domain.JournalEntry) string {
	if len(entries) == 0 {
		return NoEntries
	}

	agg := aggregate(entries)

	lines := []string{
		fmt.Sprintf("This week, you made %d journal entries.", len(entries)),
	}

	if common := agg.topByCount(topThemes); len(common) > 0 {
		lines = append(lines, "You wrote most about: "+strings.Join(common, ", ")+".")
	}

	if best, mean, ok := agg.extremeByMean(true); ok && mean > agg.overallMean {
		lines = append(lines, fmt.Sprintf("Your mood seemed to be brighter when writing about %s.", best))
	}

	if worst, mean, ok := agg.extremeByMean(false); ok && mean < agg.overallMean {
		lines = append(lines, fmt.Sprintf(
			"You seemed to struggle more when writing about %s. "+
				"This might be an area to explore further later.", worst))
	}

	lines = append(lines, closing)

	return strings.Join(lines, "\n\n")
}

// aggregation holds per-theme counts and score sums over one window.
// Theme order is first-encountered, which breaks all ties.
type aggregation struct {
	order       []string
	counts      map[string]int
	scoreSums   map[string]float64
	overallMean float64
}

func aggregate(entries []domain.JournalEntry) aggregation {
	agg := aggregation{
		counts:    make(map[string]int),
		scoreSums: make(map[string]float64),
	}

	var total float64
	for _, e := range entries {
		total += e.SentimentScore
		for _, theme := range e.Themes {
			if _, seen := agg.counts[theme]; !seen {
				agg.order = append(agg.order, theme)
			}
			agg.counts[theme]++
			agg.scoreSums[theme] += e.SentimentScore
		}
	}
	agg.overallMean = total / float64(len(entries))

	return agg
}

func (a aggregation) topByCount(n int) []string {
	ranked := make([]string, len(a.order))
	copy(ranked, a.order)

	sort.SliceStable(ranked, func(i, j int) bool {
		return a.counts[ranked[i]] > a.counts[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// extremeByMean returns the theme with the highest (or lowest) mean score.
// First-encountered order wins ties.
func (a aggregation) extremeByMean(highest bool) (string, float64, bool) {
	var bestTheme string
	var bestMean float64
	found := false

	for _, theme := range a.order {
		mean := a.scoreSums[theme] / float64(a.counts[theme])
		if !found || (highest && mean > bestMean) || (!highest && mean < bestMean) {
			bestTheme, bestMean, found = theme, mean, true
		}
	}

	return bestTheme, bestMean, found
}
