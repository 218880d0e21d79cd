package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
)

// DefaultLimit caps search results when the caller passes limit <= 0.
const DefaultLimit = 3

// MinTokenRunes is the shortest query token that takes part in a search.
const MinTokenRunes = 3

// Store is the health data store: articles loaded at startup plus the
// append-only interaction log.
type Store interface {
	Close() error

	// Articles
	InsertArticle(ctx context.Context, a Article) (Article, error)
	// MatchArticles returns articles whose title, content or keyword blob
	// contains term, in insertion order.
	MatchArticles(ctx context.Context, term string, limit int) ([]Article, error)
	// SearchArticles OR-combines the query tokens (see SearchTokens) and
	// returns matches most-recent-first. A query with no usable tokens
	// returns the most recent articles.
	SearchArticles(ctx context.Context, query string, limit int) ([]Article, error)
	RecentArticles(ctx context.Context, n int) ([]Article, error)

	// Interactions
	AppendInteraction(ctx context.Context, in Interaction) error
	Stats(ctx context.Context) (Stats, error)
}

// Article is a stored health advisory.
type Article struct {
	ID        string
	Source    string // WHO, MOHFW, ...
	Category  string
	Title     string
	Content   string
	Keywords  string // space-separated keyword blob
	CreatedAt time.Time
	Seq       int64 // insertion sequence, assigned by the store
}

// Interaction is one processed message.
type Interaction struct {
	ID        string
	SessionID string
	Input     string
	Response  string
	Language  lang.Language
	Route     string
	CreatedAt time.Time
}

// Stats summarizes store contents.
type Stats struct {
	TotalQueries    int                   `json:"total_queries"`
	LanguageQueries map[lang.Language]int `json:"language_queries"`
	TotalArticles   int                   `json:"total_articles"`
	SourceArticles  map[string]int        `json:"source_articles"`
}

// Haystack is the lower-cased text an article is matched against. Fields
// are newline-separated so a term never spans two of them.
func Haystack(a Article) string {
	return strings.ToLower(a.Title + "\n" + a.Content + "\n" + a.Keywords)
}

// SearchTokens splits a query into lower-cased whitespace tokens and drops
// those shorter than MinTokenRunes.
func SearchTokens(query string) []string {
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(f) >= MinTokenRunes {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// PrepareArticle validates a and fills in the ID and timestamp.
func PrepareArticle(a Article, now time.Time) (Article, error) {
	a.Source = strings.TrimSpace(a.Source)
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	if a.Source == "" || a.Title == "" || a.Content == "" {
		return Article{}, fmt.Errorf("%w: article needs source, title and content", internalerr.ErrInvalidInput)
	}
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

// PrepareInteraction fills in the ID and timestamp.
func PrepareInteraction(in Interaction, now time.Time) Interaction {
	if in.ID == "" {
		in.ID = NewID()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	in.CreatedAt = in.CreatedAt.UTC()
	return in
}

// NewStats returns an empty Stats with its maps allocated.
func NewStats() Stats {
	return Stats{
		LanguageQueries: make(map[lang.Language]int),
		SourceArticles:  make(map[string]int),
	}
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable ULID string.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}
