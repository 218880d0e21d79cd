// Package compose assembles the localized advice response for a free-form
// health query.
package compose

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/lexicon"
	"github.com/cognicore/rhea/pkg/rhea/locale"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

const (
	// ArticlesPerDisease caps the store lookups per recognized disease.
	ArticlesPerDisease = 2
	// DiseaseSnippetRunes is the content prefix shown per disease article.
	DiseaseSnippetRunes = 300
	// SearchLimit caps free-text search results.
	SearchLimit = 3
	// SearchSnippetRunes is the content prefix shown per search result.
	SearchSnippetRunes = 250
)

const ellipsis = "..."

// Request is one free-form query after recognition.
type Request struct {
	Text      string
	Language  lang.Language
	Symptoms  []string
	Diseases  []string
	Emergency bool
}

// Composer renders advice from the lexicon, the catalog and the store.
type Composer struct {
	lex   *lexicon.Lexicon
	cat   *locale.Catalog
	store store.Store
}

// New creates a composer.
func New(lex *lexicon.Lexicon, cat *locale.Catalog, st store.Store) *Composer {
	return &Composer{
		lex:   lex,
		cat:   cat,
		store: st,
	}
}

// Compose builds the response. Sections are emitted in a fixed order:
// symptom advice, disease information, then (only when nothing was
// recognized) free-text search results or the no-symptoms message. A
// non-empty result always ends with the disclaimer; an empty composition
// yields the localized error text instead. Store failures are returned as
// errors.
func (c *Composer) Compose(ctx context.Context, req Request) (string, error) {
	var parts []string

	if len(req.Symptoms) > 0 {
		parts = append(parts, c.symptomSection(req)...)
	}

	if len(req.Diseases) > 0 {
		info, err := c.diseaseInfo(ctx, req.Diseases)
		if err != nil {
			return "", err
		}
		if info != "" {
			parts = append(parts, "\n\n"+c.cat.Text(req.Language, locale.KeyDiseaseInfo), info)
		}
	}

	if len(req.Symptoms) == 0 && len(req.Diseases) == 0 {
		results, err := c.store.SearchArticles(ctx, req.Text, SearchLimit)
		if err != nil {
			return "", fmt.Errorf("search articles: %w", err)
		}
		if len(results) > 0 {
			parts = append(parts, c.searchSection(req.Language, results)...)
		} else {
			parts = append(parts, c.cat.Text(req.Language, locale.KeyNoSymptoms))
		}
	}

	if len(parts) == 0 {
		return c.cat.Text(req.Language, locale.KeyError), nil
	}
	parts = append(parts, "\n"+c.cat.Text(req.Language, locale.KeyDisclaimer))
	return strings.Join(parts, "\n"), nil
}

func (c *Composer) symptomSection(req Request) []string {
	l := req.Language
	parts := []string{c.cat.Text(l, locale.KeySymptomsFound)}
	if req.Emergency {
		parts = append(parts, "\n"+c.cat.Text(l, locale.KeyEmergencyBanner)+"\n")
	}
	parts = append(parts, "\n"+c.cat.Text(l, locale.KeyRecommendations))

	for _, tag := range req.Symptoms {
		parts = append(parts, fmt.Sprintf("\n🔸 %s:\n   %s", c.Label(tag, l), c.Advice(tag, l)))
	}

	parts = append(parts, "\n\n"+c.cat.Text(l, locale.KeyConsultDoctor))
	return parts
}

func (c *Composer) diseaseInfo(ctx context.Context, diseases []string) (string, error) {
	var b strings.Builder
	for _, tag := range diseases {
		articles, err := c.store.MatchArticles(ctx, tag, ArticlesPerDisease)
		if err != nil {
			return "", fmt.Errorf("match articles for %s: %w", tag, err)
		}
		for _, a := range articles {
			fmt.Fprintf(&b, "\n📋 %s\n%s%s\n", a.Title, Truncate(a.Content, DiseaseSnippetRunes), ellipsis)
		}
	}
	return b.String(), nil
}

func (c *Composer) searchSection(l lang.Language, results []store.Article) []string {
	parts := []string{c.cat.Text(l, locale.KeySearchResults) + "\n"}
	for i, a := range results {
		parts = append(parts,
			fmt.Sprintf("\n📋 %d. %s (%s)", i+1, a.Title, a.Source),
			"   "+Truncate(a.Content, SearchSnippetRunes)+ellipsis,
		)
		if i < len(results)-1 {
			parts = append(parts, "")
		}
	}
	return parts
}

// Label returns the display name of a symptom tag: the authored label for
// the language, else the tag title-cased with underscores as spaces.
func (c *Composer) Label(tag string, l lang.Language) string {
	if s, ok := c.lex.Symptom(tag); ok {
		if label := s.Label(l); label != "" {
			return label
		}
	}
	// Casers carry state and are built per call.
	return cases.Title(language.Und).String(strings.ReplaceAll(tag, "_", " "))
}

// Advice returns the authored advice for tag, or the generic
// monitor-and-consult text.
func (c *Composer) Advice(tag string, l lang.Language) string {
	if s, ok := c.lex.Symptom(tag); ok {
		if text, ok := s.AdviceFor(l); ok {
			return text
		}
	}
	return c.cat.Text(l, locale.KeyGenericAdvice)
}

// Truncate returns the first n runes of s. The cut is exact and not aware
// of word boundaries.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
