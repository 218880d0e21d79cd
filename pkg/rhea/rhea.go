// Package rhea is the chatbot facade. A Bot holds the shared, read-only
// collaborators (lexicon, catalog, store); a Session holds the per-user
// language and turn state and routes each message through an ordered list
// of rules.
package rhea

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/logging"
	"github.com/cognicore/rhea/pkg/rhea/compose"
	"github.com/cognicore/rhea/pkg/rhea/emergency"
	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/lexicon"
	"github.com/cognicore/rhea/pkg/rhea/locale"
	"github.com/cognicore/rhea/pkg/rhea/recognize"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

// Recorder receives processing and ingestion measurements.
type Recorder interface {
	ObserveMessage(route, language string, d time.Duration)
	ArticlesIngested(source string, fallback bool, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMessage(string, string, time.Duration) {}
func (nopRecorder) ArticlesIngested(string, bool, int)           {}

// Options configures a Bot
type Options struct {
	Store           store.Store // required
	Lexicon         *lexicon.Lexicon
	Catalog         *locale.Catalog
	Logger          *zap.Logger
	Metrics         Recorder
	DefaultLanguage lang.Language // language of new sessions; catalog primary when empty
	Now             func() time.Time
}

// Bot is the shared chatbot engine. It is safe for concurrent use by
// many sessions.
type Bot struct {
	store    store.Store
	lex      *lexicon.Lexicon
	cat      *locale.Catalog
	rec      *recognize.Recognizer
	emerg    *emergency.Classifier
	composer *compose.Composer
	logger   *zap.Logger
	metrics  Recorder
	language lang.Language
	now      func() time.Time
	rules    []rule
}

// New creates a Bot. Lexicon and Catalog default to the embedded
// English/Hindi data.
func New(opts Options) (*Bot, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", internalerr.ErrInvalidConfig)
	}
	if opts.Lexicon == nil {
		opts.Lexicon = lexicon.Default()
	}
	if opts.Catalog == nil {
		opts.Catalog = locale.Default()
	}
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = opts.Catalog.Primary()
	}
	if !opts.Catalog.Supports(opts.DefaultLanguage) {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrUnsupportedLanguage, opts.DefaultLanguage)
	}

	rec := recognize.New(opts.Lexicon)
	b := &Bot{
		store:    opts.Store,
		lex:      opts.Lexicon,
		cat:      opts.Catalog,
		rec:      rec,
		emerg:    emergency.New(opts.Lexicon, rec),
		composer: compose.New(opts.Lexicon, opts.Catalog, opts.Store),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		language: opts.DefaultLanguage,
		now:      opts.Now,
	}
	b.rules = b.buildRules()
	return b, nil
}

// Close closes the underlying store.
func (b *Bot) Close() error {
	return b.store.Close()
}

// DefaultLanguage returns the language new sessions start in.
func (b *Bot) DefaultLanguage() lang.Language { return b.language }

// Stats returns query and article counts from the store.
func (b *Bot) Stats(ctx context.Context) (store.Stats, error) {
	stats, err := b.store.Stats(ctx)
	if err != nil {
		return store.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// NewSession starts a session with a random ID.
func (b *Bot) NewSession() *Session {
	return b.NewSessionWithID(uuid.NewString())
}

// NewSessionWithID starts a session with a caller-chosen ID, for transports
// that carry the ID across requests.
func (b *Bot) NewSessionWithID(id string) *Session {
	return &Session{
		bot:      b,
		id:       id,
		language: b.language,
	}
}

// IsExit reports whether text is one of the exit words. Exit handling
// belongs to the console loop, not to Process.
func (b *Bot) IsExit(text string) bool {
	return matchesExactly(normalize(text), b.cat.Triggers().Exit)
}

// recognitionLanguages lists the keyword languages consulted for a session
// language. Secondary-language sessions also match primary-language
// keywords.
func (b *Bot) recognitionLanguages(l lang.Language) []lang.Language {
	primary := b.cat.Primary()
	if l == primary {
		return []lang.Language{l}
	}
	return []lang.Language{l, primary}
}
