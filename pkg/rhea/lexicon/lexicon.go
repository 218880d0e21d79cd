package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
)

// Lexicon stores the symptom and disease vocabulary:
// - Symptoms: canonical tag -> keyword variants per language, severity, advice
// - Diseases: canonical tag -> keyword variants per language
// - Emergency keywords: literal phrases per language that flag an emergency
//
// Tags keep the order they were added in. Recognition scans in that order,
// so the YAML sequence order is part of the observable behavior.
type Lexicon struct {
	symptoms     []Symptom
	diseases     []Disease
	tagIndex     map[string]tagRef // symptom and disease tags share one namespace
	emergencyKws map[lang.Language][]string
}

// Severity classifies a symptom tag.
type Severity string

const (
	SeverityNormal    Severity = "normal"
	SeverityEmergency Severity = "emergency"
)

// Symptom is a canonical symptom tag with its localized data.
type Symptom struct {
	Tag      string                     `yaml:"tag"`
	Severity Severity                   `yaml:"severity"`
	Labels   map[lang.Language]string   `yaml:"labels"`
	Keywords map[lang.Language][]string `yaml:"keywords"`
	Advice   map[lang.Language]string   `yaml:"advice"`
}

// Disease is a canonical disease tag with its keyword variants.
type Disease struct {
	Tag      string                     `yaml:"tag"`
	Keywords map[lang.Language][]string `yaml:"keywords"`
}

type tagKind int

const (
	kindSymptom tagKind = iota
	kindDisease
)

type tagRef struct {
	kind tagKind
	pos  int
}

//go:embed default.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		tagIndex:     make(map[string]tagRef),
		emergencyKws: make(map[lang.Language][]string),
	}
}

// Default returns the built-in English/Hindi lexicon. The returned value is
// shared and must be treated as read-only.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded default is invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// LoadFromYAML loads a lexicon from a YAML file.
//
// Expected format:
//
//	symptoms:
//	  - tag: fever
//	    severity: normal
//	    labels: {hindi: बुखार}
//	    keywords:
//	      english: [fever, temperature]
//	      hindi: [बुखार]
//	    advice:
//	      english: Monitor temperature regularly.
//	diseases:
//	  - tag: covid
//	    keywords: {english: [covid, corona]}
//	emergency_keywords:
//	  english: [emergency, ambulance]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes.
func Parse(data []byte) (*Lexicon, error) {
	var doc struct {
		Symptoms          []Symptom                  `yaml:"symptoms"`
		Diseases          []Disease                  `yaml:"diseases"`
		EmergencyKeywords map[lang.Language][]string `yaml:"emergency_keywords"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	lex := New()
	for _, s := range doc.Symptoms {
		if err := lex.AddSymptom(s); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Diseases {
		if err := lex.AddDisease(d); err != nil {
			return nil, err
		}
	}
	for language, kws := range doc.EmergencyKeywords {
		lex.SetEmergencyKeywords(language, kws)
	}
	return lex, nil
}

// AddSymptom appends a symptom tag. Keywords are lower-cased and
// deduplicated; an empty severity means normal.
func (l *Lexicon) AddSymptom(s Symptom) error {
	tag, err := l.claimTag(s.Tag)
	if err != nil {
		return err
	}
	switch s.Severity {
	case "":
		s.Severity = SeverityNormal
	case SeverityNormal, SeverityEmergency:
	default:
		return fmt.Errorf("%w: symptom %q has unknown severity %q", internalerr.ErrInvalidInput, tag, s.Severity)
	}

	s.Tag = tag
	s.Keywords = normalizeKeywords(s.Keywords)
	l.tagIndex[tag] = tagRef{kind: kindSymptom, pos: len(l.symptoms)}
	l.symptoms = append(l.symptoms, s)
	return nil
}

// AddDisease appends a disease tag.
func (l *Lexicon) AddDisease(d Disease) error {
	tag, err := l.claimTag(d.Tag)
	if err != nil {
		return err
	}
	d.Tag = tag
	d.Keywords = normalizeKeywords(d.Keywords)
	l.tagIndex[tag] = tagRef{kind: kindDisease, pos: len(l.diseases)}
	l.diseases = append(l.diseases, d)
	return nil
}

func (l *Lexicon) claimTag(tag string) (string, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return "", fmt.Errorf("%w: empty tag", internalerr.ErrInvalidInput)
	}
	if _, exists := l.tagIndex[tag]; exists {
		return "", fmt.Errorf("%w: tag %q", internalerr.ErrDuplicate, tag)
	}
	return tag, nil
}

// SetEmergencyKeywords replaces the literal emergency phrases for a language.
func (l *Lexicon) SetEmergencyKeywords(language lang.Language, keywords []string) {
	l.emergencyKws[language] = normalizeList(keywords)
}

// Symptoms returns all symptom tags in insertion order.
func (l *Lexicon) Symptoms() []Symptom { return l.symptoms }

// Diseases returns all disease tags in insertion order.
func (l *Lexicon) Diseases() []Disease { return l.diseases }

// Symptom looks up a symptom by tag.
func (l *Lexicon) Symptom(tag string) (Symptom, bool) {
	ref, ok := l.tagIndex[strings.ToLower(tag)]
	if !ok || ref.kind != kindSymptom {
		return Symptom{}, false
	}
	return l.symptoms[ref.pos], true
}

// Disease looks up a disease by tag.
func (l *Lexicon) Disease(tag string) (Disease, bool) {
	ref, ok := l.tagIndex[strings.ToLower(tag)]
	if !ok || ref.kind != kindDisease {
		return Disease{}, false
	}
	return l.diseases[ref.pos], true
}

// IsEmergencyTag reports whether tag is a symptom flagged as an emergency.
func (l *Lexicon) IsEmergencyTag(tag string) bool {
	s, ok := l.Symptom(tag)
	return ok && s.Severity == SeverityEmergency
}

// EmergencyKeywords returns the literal emergency phrases for a language.
func (l *Lexicon) EmergencyKeywords(language lang.Language) []string {
	return l.emergencyKws[language]
}

// Label returns the localized display label of a symptom, or "" if none is
// authored for the language.
func (s Symptom) Label(language lang.Language) string {
	return s.Labels[language]
}

// AdviceFor returns the authored advice for a language.
func (s Symptom) AdviceFor(language lang.Language) (string, bool) {
	text, ok := s.Advice[language]
	return text, ok && strings.TrimSpace(text) != ""
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	stats := LexiconStats{
		Symptoms: len(l.symptoms),
		Diseases: len(l.diseases),
	}
	for _, s := range l.symptoms {
		if s.Severity == SeverityEmergency {
			stats.EmergencyTags++
		}
		for _, kws := range s.Keywords {
			stats.Keywords += len(kws)
		}
	}
	for _, d := range l.diseases {
		for _, kws := range d.Keywords {
			stats.Keywords += len(kws)
		}
	}
	return stats
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	Symptoms      int // Number of symptom tags
	Diseases      int // Number of disease tags
	EmergencyTags int // Symptom tags with emergency severity
	Keywords      int // Keyword variants across all tags and languages
}

func normalizeKeywords(in map[lang.Language][]string) map[lang.Language][]string {
	out := make(map[lang.Language][]string, len(in))
	for language, kws := range in {
		out[language] = normalizeList(kws)
	}
	return out
}

func normalizeList(kws []string) []string {
	out := make([]string, 0, len(kws))
	seen := make(map[string]bool, len(kws))
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
