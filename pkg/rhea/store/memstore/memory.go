package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/rhea/pkg/rhea/store"
)

// Store is an in-memory implementation of store.Store. Articles live in an
// ordered slice and are matched by direct substring scan.
type Store struct {
	mu           sync.RWMutex
	nextSeq      int64
	articles     []entry
	interactions []store.Interaction
	now          func() time.Time
}

type entry struct {
	article  store.Article
	haystack string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{nextSeq: 1, now: time.Now}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// InsertArticle appends an article.
func (s *Store) InsertArticle(ctx context.Context, a store.Article) (store.Article, error) {
	a, err := store.PrepareArticle(a, s.now())
	if err != nil {
		return store.Article{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.Seq = s.nextSeq
	s.nextSeq++
	s.articles = append(s.articles, entry{article: a, haystack: store.Haystack(a)})
	return a, nil
}

// MatchArticles returns up to limit articles containing term, oldest first.
func (s *Store) MatchArticles(ctx context.Context, term string, limit int) ([]store.Article, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Article
	for _, e := range s.articles {
		if strings.Contains(e.haystack, term) {
			out = append(out, e.article)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// SearchArticles returns up to limit articles matching any query token,
// newest first.
func (s *Store) SearchArticles(ctx context.Context, query string, limit int) ([]store.Article, error) {
	tokens := store.SearchTokens(query)
	if len(tokens) == 0 {
		return s.RecentArticles(ctx, limit)
	}
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Article
	for i := len(s.articles) - 1; i >= 0; i-- {
		e := s.articles[i]
		if containsAny(e.haystack, tokens) {
			out = append(out, e.article)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// RecentArticles returns the n most recently inserted articles.
func (s *Store) RecentArticles(ctx context.Context, n int) ([]store.Article, error) {
	if n <= 0 {
		n = store.DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.articles) {
		n = len(s.articles)
	}
	out := make([]store.Article, 0, n)
	for i := len(s.articles) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.articles[i].article)
	}
	return out, nil
}

// AppendInteraction records a processed message.
func (s *Store) AppendInteraction(ctx context.Context, in store.Interaction) error {
	in = store.PrepareInteraction(in, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, in)
	return nil
}

// Interactions returns a copy of the interaction log, oldest first.
func (s *Store) Interactions() []store.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Interaction, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// Stats implements store.Store.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := store.NewStats()
	stats.TotalQueries = len(s.interactions)
	for _, in := range s.interactions {
		stats.LanguageQueries[in.Language]++
	}
	stats.TotalArticles = len(s.articles)
	for _, e := range s.articles {
		stats.SourceArticles[e.article.Source]++
	}
	return stats, nil
}

func containsAny(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			return true
		}
	}
	return false
}
