// Package recognize finds symptom and disease tags in free text by keyword
// containment.
package recognize

import (
	"strings"

	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/lexicon"
)

// Recognizer scans text against a lexicon.
//
// Matching is plain substring containment on the lower-cased text, so a
// keyword inside a longer word still matches ("hot" in "photo"). Callers
// that need word boundaries must filter the result themselves.
type Recognizer struct {
	lex *lexicon.Lexicon
}

// New creates a recognizer over lex.
func New(lex *lexicon.Lexicon) *Recognizer {
	return &Recognizer{lex: lex}
}

// Symptoms returns the symptom tags found in text, in lexicon order, each
// at most once. A tag matches when a keyword of any of the given languages
// occurs in text.
func (r *Recognizer) Symptoms(text string, languages ...lang.Language) []string {
	lowerText := strings.ToLower(text)
	if strings.TrimSpace(lowerText) == "" {
		return nil
	}

	var tags []string
	for _, s := range r.lex.Symptoms() {
		if matchesIn(lowerText, s.Keywords, languages) {
			tags = append(tags, s.Tag)
		}
	}
	return tags
}

// Diseases returns the disease tags found in text, in lexicon order, each
// at most once.
func (r *Recognizer) Diseases(text string, languages ...lang.Language) []string {
	lowerText := strings.ToLower(text)
	if strings.TrimSpace(lowerText) == "" {
		return nil
	}

	var tags []string
	for _, d := range r.lex.Diseases() {
		if matchesIn(lowerText, d.Keywords, languages) {
			tags = append(tags, d.Tag)
		}
	}
	return tags
}

// DiseasesAnyLanguage returns the disease tags whose keywords in any
// language occur in text, together with the keywords that matched. Used to
// build article keyword blobs at ingestion, where the article language is
// unknown.
func (r *Recognizer) DiseasesAnyLanguage(text string) (tags []string, matched []string) {
	lowerText := strings.ToLower(text)
	if strings.TrimSpace(lowerText) == "" {
		return nil, nil
	}

	for _, d := range r.lex.Diseases() {
		hit := false
		for _, kws := range d.Keywords {
			for _, kw := range kws {
				if strings.Contains(lowerText, kw) {
					matched = append(matched, kw)
					hit = true
				}
			}
		}
		if hit {
			tags = append(tags, d.Tag)
		}
	}
	return tags, matched
}

func matchesIn(lowerText string, keywords map[lang.Language][]string, languages []lang.Language) bool {
	for _, language := range languages {
		if containsAny(lowerText, keywords[language]) {
			return true
		}
	}
	return false
}

func containsAny(lowerText string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}
