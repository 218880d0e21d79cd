package rhea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/provider"
	"github.com/cognicore/rhea/pkg/rhea/store"
	"github.com/cognicore/rhea/pkg/rhea/store/memstore"
)

type fakeRecorder struct {
	mu       sync.Mutex
	routes   []string
	ingested map[string]int
}

func (f *fakeRecorder) ObserveMessage(route, language string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route+"/"+language)
}

func (f *fakeRecorder) ArticlesIngested(source string, fallback bool, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ingested == nil {
		f.ingested = make(map[string]int)
	}
	f.ingested[fmt.Sprintf("%s/%t", source, fallback)] += n
}

func newTestBot(t *testing.T, st store.Store) *Bot {
	t.Helper()
	if st == nil {
		st = memstore.New()
	}
	b, err := New(Options{Store: st})
	require.NoError(t, err)
	return b
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(Options{Store: memstore.New(), DefaultLanguage: "klingon"})
	assert.ErrorIs(t, err, internalerr.ErrUnsupportedLanguage)

	b, err := New(Options{Store: memstore.New(), DefaultLanguage: lang.Hindi})
	require.NoError(t, err)
	assert.Equal(t, lang.Hindi, b.NewSession().Language())
}

func TestNewSession(t *testing.T) {
	b := newTestBot(t, nil)

	s1, s2 := b.NewSession(), b.NewSession()
	assert.NotEqual(t, s1.ID(), s2.ID())
	assert.Len(t, s1.ID(), 36)
	assert.Equal(t, lang.English, s1.Language())

	s3 := b.NewSessionWithID("fixed")
	assert.Equal(t, "fixed", s3.ID())
}

func TestSetLanguage(t *testing.T) {
	s := newTestBot(t, nil).NewSession()

	require.NoError(t, s.SetLanguage(lang.Hindi))
	assert.Equal(t, lang.Hindi, s.Language())
	assert.ErrorIs(t, s.SetLanguage("french"), internalerr.ErrUnsupportedLanguage)
	assert.Equal(t, lang.Hindi, s.Language())
}

func TestIsExit(t *testing.T) {
	b := newTestBot(t, nil)

	for _, w := range []string{"quit", "EXIT", " bye ", "goodbye", "निकास", "अलविदा"} {
		assert.True(t, b.IsExit(w), w)
	}
	for _, w := range []string{"", "bye now", "help"} {
		assert.False(t, b.IsExit(w), w)
	}
}

func TestLoadHealthDataOffline(t *testing.T) {
	st := memstore.New()
	rec := &fakeRecorder{}
	b, err := New(Options{Store: st, Metrics: rec})
	require.NoError(t, err)

	report, err := b.LoadHealthData(context.Background(), provider.Offline()...)
	require.NoError(t, err)
	assert.Equal(t, 16, report.Total)
	require.Len(t, report.Sources, 2)
	assert.Equal(t, SourceReport{Source: "WHO", Articles: 8, Fallback: true}, report.Sources[0])
	assert.Equal(t, SourceReport{Source: "MOHFW", Articles: 8, Fallback: true}, report.Sources[1])
	assert.Equal(t, map[string]int{"WHO/true": 8, "MOHFW/true": 8}, rec.ingested)

	stats, err := b.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16, stats.TotalArticles)
	assert.Equal(t, map[string]int{"WHO": 8, "MOHFW": 8}, stats.SourceArticles)

	dengue, err := st.MatchArticles(context.Background(), "dengue prevention", 1)
	require.NoError(t, err)
	require.Len(t, dengue, 1)
	assert.Equal(t, "advisory", dengue[0].Category)
	assert.ElementsMatch(t, []string{"malaria", "dengue", "mosquito"}, strings.Fields(dengue[0].Keywords))
}

func TestLoadHealthDataCategoryOverrideAndSkips(t *testing.T) {
	st := memstore.New()
	b := newTestBot(t, st)

	feed := provider.Feed{
		Source:   "FILE",
		Category: "general",
		Advisories: []provider.Advisory{
			{Title: "Heat", Content: "Drink water in summer.", Category: "seasonal"},
			{Title: "Empty", Content: "  "},
			{Title: "Sleep", Content: "Sleep eight hours."},
		},
	}
	report, err := b.LoadHealthData(context.Background(), provider.NewStatic(feed))
	require.NoError(t, err)
	assert.Equal(t, SourceReport{Source: "FILE", Articles: 2, Skipped: 1}, report.Sources[0])

	recent, err := st.RecentArticles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "general", recent[0].Category)
	assert.Equal(t, "seasonal", recent[1].Category)
	assert.Empty(t, recent[0].Keywords)
}

type failingInsertStore struct {
	*memstore.Store
}

func (failingInsertStore) InsertArticle(context.Context, store.Article) (store.Article, error) {
	return store.Article{}, internalerr.ErrStoreUnavailable
}

func TestLoadHealthDataStoreError(t *testing.T) {
	b := newTestBot(t, failingInsertStore{memstore.New()})

	report, err := b.LoadHealthData(context.Background(), provider.Offline()...)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.Len(t, report.Sources, 1, "stops at the first failing source")
}

func TestLoadHealthDataCanceled(t *testing.T) {
	b := newTestBot(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := b.LoadHealthData(ctx, provider.Offline()...)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Total)
}

func TestDataLoadedMessage(t *testing.T) {
	s := newTestBot(t, nil).NewSession()
	assert.Equal(t, "Health data loaded successfully. (16 articles)", s.DataLoadedMessage(IngestReport{Total: 16}))

	require.NoError(t, s.SetLanguage(lang.Hindi))
	assert.Contains(t, s.DataLoadedMessage(IngestReport{Total: 3}), "(3 लेख)")
}

func TestCloseClosesStore(t *testing.T) {
	b := newTestBot(t, nil)
	assert.NoError(t, b.Close())
}

func TestStatsError(t *testing.T) {
	b := newTestBot(t, failingStatsStore{memstore.New()})
	_, err := b.Stats(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
}

type failingStatsStore struct {
	*memstore.Store
}

func (failingStatsStore) Stats(context.Context) (store.Stats, error) {
	return store.Stats{}, errors.Join(errors.New("disk gone"), internalerr.ErrStoreUnavailable)
}

func TestDefaultLanguage(t *testing.T) {
	b := newTestBot(t, nil)
	assert.Equal(t, lang.English, b.DefaultLanguage())
}
