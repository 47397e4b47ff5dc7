package themes

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed taxonomy.toml
var defaultTaxonomy []byte

// Fallback is assigned when no taxonomy keyword matches an entry
const Fallback = "General"

// Theme is one topical tag with its trigger keywords
type Theme struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Taxonomy is an ordered, immutable mapping from theme name to trigger keywords
type Taxonomy struct {
	Themes []Theme `toml:"theme"`
}

// DefaultTaxonomy returns the built-in taxonomy
func DefaultTaxonomy() Taxonomy {
	tax, err := parse(defaultTaxonomy)
	if err != nil {
		// The embedded file is validated by tests; this cannot happen at runtime.
		panic(fmt.Sprintf("embedded taxonomy: %v", err))
	}
	return tax
}

// LoadTaxonomy reads a taxonomy override from a TOML file
func LoadTaxonomy(path string) (Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (Taxonomy, error) {
	var tax Taxonomy
	if err := toml.Unmarshal(raw, &tax); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(tax.Themes) == 0 {
		return Taxonomy{}, fmt.Errorf("taxonomy defines no themes")
	}
	for _, th := range tax.Themes {
		if th.Name == "" || len(th.Keywords) == 0 {
			return Taxonomy{}, fmt.Errorf("taxonomy theme %q missing name or keywords", th.Name)
		}
	}
	return tax, nil
}

// Extractor assigns themes to entry text via keyword presence
type Extractor struct {
	taxonomy Taxonomy
}

// NewExtractor creates an Extractor over the given taxonomy
func NewExtractor(tax Taxonomy) *Extractor {
	return &Extractor{taxonomy: tax}
}

// Extract returns the themes whose keywords appear as exact tokens in text,
// in taxonomy order. Matching is case-insensitive. Never returns an empty
// slice: text matching nothing gets the Fallback theme.
func (e *Extractor) Extract(text string) []string {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[tok] = true
	}

	var matched []string
	for _, th := range e.taxonomy.Themes {
		for _, kw := range th.Keywords {
			if tokens[kw] {
				matched = append(matched, th.Name)
				break
			}
		}
	}

	if len(matched) == 0 {
		return []string{Fallback}
	}
	return matched
}
