// Package provider supplies the advisory articles loaded into the health
// data store at startup. A provider never fails: when live retrieval breaks
// it hands back its fallback feed.
package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/logging"
)

// Advisory is one title/content pair. Category overrides the feed
// category when set.
type Advisory struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category,omitempty"`
}

// Feed is the ordered output of one provider for one source.
type Feed struct {
	Source     string
	Category   string
	Advisories []Advisory
	Fallback   bool // true when Advisories came from the offline dataset
}

// Provider fetches a feed.
type Provider interface {
	Fetch(ctx context.Context) Feed
}

// FetchFunc retrieves advisories from a live source.
type FetchFunc func(ctx context.Context) ([]Advisory, error)

// ErrEmpty reports a live fetch that succeeded but produced nothing.
var ErrEmpty = errors.New("no advisories retrieved")

// Static always returns the same feed.
type Static struct {
	feed Feed
}

// NewStatic wraps a fixed feed.
func NewStatic(feed Feed) *Static {
	return &Static{feed: feed}
}

// Fetch implements Provider.
func (s *Static) Fetch(ctx context.Context) Feed {
	return cloneFeed(s.feed)
}

// Live calls a FetchFunc and falls back to a static feed on error, panic or
// empty result.
type Live struct {
	source   string
	category string
	fetch    FetchFunc
	fallback Feed
	logger   *zap.Logger
}

// NewLive creates a live provider for source.
func NewLive(source, category string, fetch FetchFunc, fallback Feed, logger *zap.Logger) *Live {
	return &Live{
		source:   source,
		category: category,
		fetch:    fetch,
		fallback: fallback,
		logger:   logging.OrNop(logger).With(zap.String("source", source)),
	}
}

// Fetch implements Provider.
func (l *Live) Fetch(ctx context.Context) Feed {
	items, err := l.safeFetch(ctx)
	if err == nil && len(items) == 0 {
		err = ErrEmpty
	}
	if err != nil {
		l.logger.Warn("live fetch failed, using fallback advisories",
			zap.Error(err),
			zap.Int("fallback_count", len(l.fallback.Advisories)),
		)
		feed := cloneFeed(l.fallback)
		feed.Fallback = true
		if feed.Source == "" {
			feed.Source = l.source
		}
		if feed.Category == "" {
			feed.Category = l.category
		}
		return feed
	}

	l.logger.Info("live fetch succeeded", zap.Int("count", len(items)))
	return Feed{Source: l.source, Category: l.category, Advisories: items}
}

func (l *Live) safeFetch(ctx context.Context) (items []Advisory, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	if l.fetch == nil {
		return nil, ErrEmpty
	}
	return l.fetch(ctx)
}

func cloneFeed(f Feed) Feed {
	out := f
	out.Advisories = append([]Advisory(nil), f.Advisories...)
	return out
}
