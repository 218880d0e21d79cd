package config

import (
	"fmt"

	"github.com/cognicore/rhea/pkg/rhea/lexicon"
	"github.com/cognicore/rhea/pkg/rhea/locale"
)

// Loader loads the vocabulary and UI string files
type Loader struct {
	LexiconPath string
	LocalePath  string
}

// Components holds the loaded data
type Components struct {
	Lexicon *lexicon.Lexicon
	Catalog *locale.Catalog
}

// Load reads the configured files. Empty paths use the embedded defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load lexicon
	if l.LexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.Default()
	}

	// Load locale catalog
	if l.LocalePath != "" {
		cat, err := locale.LoadFromYAML(l.LocalePath)
		if err != nil {
			return nil, fmt.Errorf("load locale: %w", err)
		}
		comp.Catalog = cat
	} else {
		comp.Catalog = locale.Default()
	}

	return comp, nil
}
