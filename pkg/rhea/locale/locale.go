// Package locale holds the localized UI strings and the command trigger
// tables. Everything here is data: adding a language means adding YAML,
// not code branches.
package locale

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

// Message keys.
const (
	KeyGreeting        = "greeting"
	KeyLanguageSet     = "language_set"
	KeySymptomsFound   = "symptoms_found"
	KeyRecommendations = "recommendations"
	KeyConsultDoctor   = "consult_doctor"
	KeyEmergencyBanner = "emergency"
	KeyNoSymptoms      = "no_symptoms"
	KeyError           = "error"
	KeyDisclaimer      = "disclaimer"
	KeyFetchingData    = "fetching_data"
	KeyDataLoaded      = "data_loaded"
	KeyHelpPrompt      = "help_message"
	KeyHelp            = "help"
	KeyEmergencyBlock  = "emergency_response"
	KeyGenericAdvice   = "generic_advice"
	KeyDiseaseInfo     = "disease_info"
	KeySearchResults   = "search_results"
	KeyApology         = "apology"
	KeyFarewell        = "farewell"
	KeyTip             = "tip"
	KeyPromptLabel     = "prompt_label"
	KeyInterrupted     = "interrupted"
)

// Catalog maps language -> message key -> template.
type Catalog struct {
	primary  lang.Language
	messages map[lang.Language]map[string]string
	triggers Triggers
}

// Triggers are the free-text command words recognized by the session.
type Triggers struct {
	Help     []string        `yaml:"help"`
	Greeting []string        `yaml:"greeting"`
	Exit     []string        `yaml:"exit"`
	Switch   []SwitchTrigger `yaml:"switch"`
}

// SwitchTrigger lists the words that switch the session to Language.
// Switch triggers are evaluated in file order.
type SwitchTrigger struct {
	Language lang.Language `yaml:"language"`
	Words    []string      `yaml:"words"`
}

//go:embed default.yaml
var defaultYAML []byte

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the built-in English/Hindi catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("locale: embedded default is invalid: %v", err))
		}
		defaultCat = cat
	})
	return defaultCat
}

// LoadFromYAML loads a catalog from a YAML file.
func LoadFromYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes. The primary language must have a
// message table; other languages fall back to it key by key.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Primary  lang.Language                       `yaml:"primary"`
		Messages map[lang.Language]map[string]string `yaml:"messages"`
		Triggers Triggers                            `yaml:"triggers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse locale: %w", err)
	}
	if doc.Primary == "" {
		doc.Primary = lang.Primary
	}
	if _, ok := doc.Messages[doc.Primary]; !ok {
		return nil, fmt.Errorf("%w: no messages for primary language %q", internalerr.ErrInvalidConfig, doc.Primary)
	}

	doc.Triggers.Help = lowerAll(doc.Triggers.Help)
	doc.Triggers.Greeting = lowerAll(doc.Triggers.Greeting)
	doc.Triggers.Exit = lowerAll(doc.Triggers.Exit)
	for i := range doc.Triggers.Switch {
		sw := &doc.Triggers.Switch[i]
		if _, ok := doc.Messages[sw.Language]; !ok {
			return nil, fmt.Errorf("%w: switch target %q has no messages", internalerr.ErrInvalidConfig, sw.Language)
		}
		sw.Words = lowerAll(sw.Words)
	}

	return &Catalog{
		primary:  doc.Primary,
		messages: doc.Messages,
		triggers: doc.Triggers,
	}, nil
}

// Primary returns the fallback language.
func (c *Catalog) Primary() lang.Language { return c.primary }

// Supports reports whether the catalog has a message table for language.
func (c *Catalog) Supports(language lang.Language) bool {
	_, ok := c.messages[language]
	return ok
}

// Triggers returns the command trigger tables.
func (c *Catalog) Triggers() Triggers { return c.triggers }

// Text returns the message for key in language, falling back to the
// primary language and finally to the key itself.
func (c *Catalog) Text(language lang.Language, key string) string {
	if msg, ok := c.messages[language][key]; ok {
		return msg
	}
	if msg, ok := c.messages[c.primary][key]; ok {
		return msg
	}
	return key
}

// Format renders a template, replacing each {name} with args[name].
func (c *Catalog) Format(language lang.Language, key string, args map[string]string) string {
	tmpl := c.Text(language, key)
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
