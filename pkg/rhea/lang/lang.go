package lang

import (
	"fmt"
	"strings"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
)

// Language selects which lexicon, advice text and UI strings are active.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
)

// Primary is the language a new session starts in.
const Primary = English

var aliases = map[string]Language{
	"english": English,
	"eng":     English,
	"en":      English,
	"hindi":   Hindi,
	"हिंदी":   Hindi,
	"हिन्दी":  Hindi,
	"hin":     Hindi,
	"hi":      Hindi,
}

// Parse resolves a language name or short code.
//
// Examples:
//   - Parse("EN") -> English
//   - Parse("हिंदी") -> Hindi
func Parse(s string) (Language, error) {
	if l, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", internalerr.ErrUnsupportedLanguage, s)
}

func (l Language) String() string { return string(l) }
