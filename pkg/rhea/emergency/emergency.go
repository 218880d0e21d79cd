// Package emergency flags messages that need the urgent-response template.
package emergency

import (
	"strings"

	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/lexicon"
	"github.com/cognicore/rhea/pkg/rhea/recognize"
)

// Classifier is a pure predicate over a message.
type Classifier struct {
	lex *lexicon.Lexicon
	rec *recognize.Recognizer
}

// New creates a classifier. The recognizer must share lex.
func New(lex *lexicon.Lexicon, rec *recognize.Recognizer) *Classifier {
	return &Classifier{lex: lex, rec: rec}
}

// IsEmergency reports whether text contains a literal emergency phrase of
// one of the languages, or a symptom whose severity is emergency.
func (c *Classifier) IsEmergency(text string, languages ...lang.Language) bool {
	lowerText := strings.ToLower(text)
	for _, language := range languages {
		for _, kw := range c.lex.EmergencyKeywords(language) {
			if strings.Contains(lowerText, kw) {
				return true
			}
		}
	}
	return c.HasEmergencySymptom(c.rec.Symptoms(text, languages...))
}

// HasEmergencySymptom reports whether any of the recognized tags is flagged
// emergency.
func (c *Classifier) HasEmergencySymptom(tags []string) bool {
	for _, tag := range tags {
		if c.lex.IsEmergencyTag(tag) {
			return true
		}
	}
	return false
}
