package rhea

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/cognicore/rhea/pkg/rhea/compose"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/locale"
)

// Route names, as logged and exported as metric labels.
const (
	RouteEmpty     = "empty"
	RouteHelp      = "help"
	RouteSwitch    = "switch"
	RouteEmergency = "emergency"
	RouteGreeting  = "greeting"
	RouteAdvice    = "advice"
	RouteError     = "error"
)

// input is a message prepared once for all rule predicates.
type input struct {
	raw   string
	lower string   // trimmed, lower-cased
	words []string // lower-cased letter/digit runs
}

func newInput(text string) input {
	lower := normalize(text)
	return input{raw: text, lower: lower, words: splitWords(lower)}
}

// rule is one dispatch branch. Rules are evaluated in order and the first
// whose match returns true handles the message.
type rule struct {
	name   string
	log    bool // persist the interaction
	match  func(s *Session, in input) bool
	handle func(ctx context.Context, s *Session, in input) (string, error)
}

func (b *Bot) buildRules() []rule {
	trig := b.cat.Triggers()

	rules := []rule{
		{
			name:  RouteEmpty,
			match: func(_ *Session, in input) bool { return in.lower == "" },
			handle: func(_ context.Context, s *Session, _ input) (string, error) {
				return s.text(locale.KeyHelpPrompt), nil
			},
		},
		{
			name:  RouteHelp,
			log:   true,
			match: func(_ *Session, in input) bool { return matchesExactly(in.lower, trig.Help) },
			handle: func(_ context.Context, s *Session, _ input) (string, error) {
				return s.text(locale.KeyHelp), nil
			},
		},
	}

	// Switch and greeting triggers match whole words, unlike symptom
	// keywords, which match as raw substrings. "this" does not greet.
	for _, sw := range trig.Switch {
		target, words := sw.Language, sw.Words
		rules = append(rules, rule{
			name:  RouteSwitch + ":" + string(target),
			log:   true,
			match: func(_ *Session, in input) bool { return containsPhrase(in.words, words) },
			handle: func(_ context.Context, s *Session, _ input) (string, error) {
				s.language = target
				return s.text(locale.KeyLanguageSet), nil
			},
		})
	}

	rules = append(rules,
		rule{
			name: RouteEmergency,
			log:  true,
			match: func(s *Session, in input) bool {
				return s.bot.emerg.IsEmergency(in.raw, s.bot.recognitionLanguages(s.language)...)
			},
			handle: func(_ context.Context, s *Session, _ input) (string, error) {
				return s.text(locale.KeyEmergencyBlock), nil
			},
		},
		rule{
			name:  RouteGreeting,
			log:   true,
			match: func(_ *Session, in input) bool { return containsPhrase(in.words, trig.Greeting) },
			handle: func(_ context.Context, s *Session, _ input) (string, error) {
				return s.text(locale.KeyGreeting), nil
			},
		},
		rule{
			name:   RouteAdvice,
			log:    true,
			match:  func(*Session, input) bool { return true },
			handle: handleAdvice,
		},
	)
	return rules
}

func handleAdvice(ctx context.Context, s *Session, in input) (string, error) {
	b := s.bot
	languages := b.recognitionLanguages(s.language)
	symptoms := b.rec.Symptoms(in.raw, languages...)

	return b.composer.Compose(ctx, compose.Request{
		Text:      in.raw,
		Language:  s.language,
		Symptoms:  symptoms,
		Diseases:  b.rec.Diseases(in.raw, languages...),
		Emergency: b.emerg.HasEmergencySymptom(symptoms),
	})
}

// route returns the first rule matching in.
func (b *Bot) route(s *Session, in input) rule {
	for _, r := range b.rules {
		if r.match(s, in) {
			return r
		}
	}
	// unreachable: the advice rule matches everything
	return b.rules[len(b.rules)-1]
}

// Route reports which rule would handle text in language, without running
// it.
func (b *Bot) Route(text string, l lang.Language) string {
	s := &Session{bot: b, language: l}
	return b.route(s, newInput(text)).name
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// splitWords breaks text into runs of letters, digits and combining marks.
// Marks are kept so Devanagari vowel signs stay inside their word.
func splitWords(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

func matchesExactly(lower string, triggers []string) bool {
	return lower != "" && slices.Contains(triggers, lower)
}

// containsPhrase reports whether any trigger occurs in words as a run of
// whole words, so "hi" matches "hi there" but not "this" or "think".
// Multi-word triggers ("english me") must appear contiguously.
func containsPhrase(words []string, triggers []string) bool {
	for _, trigger := range triggers {
		phrase := splitWords(trigger)
		if len(phrase) == 0 || len(phrase) > len(words) {
			continue
		}
		for i := 0; i+len(phrase) <= len(words); i++ {
			if slices.Equal(words[i:i+len(phrase)], phrase) {
				return true
			}
		}
	}
	return false
}
