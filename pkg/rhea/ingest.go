package rhea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/locale"
	"github.com/cognicore/rhea/pkg/rhea/provider"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

// IngestReport summarizes one LoadHealthData run.
type IngestReport struct {
	Sources []SourceReport
	Total   int
}

// SourceReport is the outcome for one provider.
type SourceReport struct {
	Source   string
	Articles int
	Skipped  int  // advisories rejected as invalid
	Fallback bool // the provider served its offline dataset
}

// LoadHealthData fetches every provider in order and stores its
// advisories. Providers never fail, so the only errors are store errors and
// context cancellation.
func (b *Bot) LoadHealthData(ctx context.Context, providers ...provider.Provider) (IngestReport, error) {
	var report IngestReport
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		feed := p.Fetch(ctx)
		b.logger.Info("loading health data",
			zap.String("source", feed.Source),
			zap.Int("advisories", len(feed.Advisories)),
			zap.Bool("fallback", feed.Fallback))

		sr, err := b.ingestFeed(ctx, feed)
		report.Sources = append(report.Sources, sr)
		report.Total += sr.Articles
		b.metrics.ArticlesIngested(feed.Source, feed.Fallback, sr.Articles)
		if err != nil {
			return report, err
		}

		b.logger.Info("loaded health data",
			zap.String("source", feed.Source),
			zap.Int("articles", sr.Articles),
			zap.Int("skipped", sr.Skipped))
	}
	return report, nil
}

func (b *Bot) ingestFeed(ctx context.Context, feed provider.Feed) (SourceReport, error) {
	sr := SourceReport{Source: feed.Source, Fallback: feed.Fallback}
	for _, adv := range feed.Advisories {
		category := adv.Category
		if category == "" {
			category = feed.Category
		}
		_, err := b.store.InsertArticle(ctx, store.Article{
			Source:    feed.Source,
			Category:  category,
			Title:     adv.Title,
			Content:   adv.Content,
			Keywords:  b.keywordBlob(adv.Title + " " + adv.Content),
			CreatedAt: b.now(),
		})
		if errors.Is(err, internalerr.ErrInvalidInput) {
			sr.Skipped++
			b.logger.Warn("skipping advisory",
				zap.String("source", feed.Source),
				zap.String("title", adv.Title),
				zap.Error(err))
			continue
		}
		if err != nil {
			return sr, fmt.Errorf("store %s article: %w", feed.Source, err)
		}
		sr.Articles++
	}
	return sr, nil
}

// keywordBlob lists the disease tags found in text followed by the
// keywords that matched, deduplicated, space-separated.
func (b *Bot) keywordBlob(text string) string {
	tags, matched := b.rec.DiseasesAnyLanguage(text)
	seen := make(map[string]bool, len(tags)+len(matched))
	words := make([]string, 0, len(tags)+len(matched))
	for _, w := range append(tags, matched...) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// DataLoadedMessage renders the localized "data loaded" line for a report.
func (s *Session) DataLoadedMessage(r IngestReport) string {
	return s.Format(locale.KeyDataLoaded, map[string]string{"count": fmt.Sprint(r.Total)})
}
