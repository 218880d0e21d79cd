package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "rhea.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seed(t *testing.T, st store.Store, articles ...store.Article) {
	t.Helper()
	for _, a := range articles {
		_, err := st.InsertArticle(context.Background(), a)
		require.NoError(t, err)
	}
}

func titles(articles []store.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func TestInsertArticleRoundTrip(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	in, err := st.InsertArticle(ctx, store.Article{
		Source:   "WHO",
		Category: "health_advisory",
		Title:    "Seasonal Influenza",
		Content:  "Annual flu vaccination recommended.",
		Keywords: "influenza flu",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), in.Seq)

	got, err := st.RecentArticles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, in.ID, got[0].ID)
	assert.Equal(t, "health_advisory", got[0].Category)
	assert.Equal(t, "influenza flu", got[0].Keywords)
	assert.True(t, in.CreatedAt.Equal(got[0].CreatedAt))

	_, err = st.InsertArticle(ctx, store.Article{Title: "no source", Content: "x"})
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestMatchArticles(t *testing.T) {
	st := openTemp(t)
	seed(t, st,
		store.Article{Source: "WHO", Title: "Malaria Prevention", Content: "Use nets."},
		store.Article{Source: "WHO", Title: "Dengue", Content: "Standing water.", Keywords: "dengue malaria"},
		store.Article{Source: "MOHFW", Title: "MALARIA alert", Content: "Seasonal."},
	)
	ctx := context.Background()

	got, err := st.MatchArticles(ctx, "Malaria", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Malaria Prevention", "Dengue"}, titles(got))

	got, err = st.MatchArticles(ctx, "", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchArticlesEscapesWildcards(t *testing.T) {
	st := openTemp(t)
	seed(t, st,
		store.Article{Source: "WHO", Title: "Coverage", Content: "Reached 90% of children."},
		store.Article{Source: "WHO", Title: "Other", Content: "Reached 90 of children."},
		store.Article{Source: "WHO", Title: "Snake", Content: "sars_cov_2 variant"},
	)
	ctx := context.Background()

	got, err := st.MatchArticles(ctx, "90%", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coverage"}, titles(got))

	got, err = st.MatchArticles(ctx, "s_cov", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Snake"}, titles(got))

	got, err = st.MatchArticles(ctx, "90_", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchArticlesHindi(t *testing.T) {
	st := openTemp(t)
	seed(t, st, store.Article{Source: "MOHFW", Title: "डेंगू से बचाव", Content: "पानी जमा न होने दें।"})

	got, err := st.MatchArticles(context.Background(), "डेंगू", 2)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchArticles(t *testing.T) {
	st := openTemp(t)
	seed(t, st,
		store.Article{Source: "WHO", Title: "Tuberculosis Treatment", Content: "Six month course."},
		store.Article{Source: "WHO", Title: "Maternal Health", Content: "Antenatal care."},
		store.Article{Source: "WHO", Title: "Mental Health", Content: "Support is available."},
		store.Article{Source: "WHO", Title: "Hypertension Control", Content: "Reduce salt."},
	)
	ctx := context.Background()

	got, err := st.SearchArticles(ctx, "tuberculosis xylophone", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tuberculosis Treatment"}, titles(got), "tokens are OR-combined")

	got, err = st.SearchArticles(ctx, "health", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mental Health", "Maternal Health"}, titles(got), "newest first")

	got, err = st.SearchArticles(ctx, "a an ok", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hypertension Control", "Mental Health", "Maternal Health"}, titles(got))
}

func TestStats(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	seed(t, st,
		store.Article{Source: "WHO", Title: "A", Content: "x"},
		store.Article{Source: "MOHFW", Title: "B", Content: "y"},
		store.Article{Source: "MOHFW", Title: "C", Content: "z"},
	)
	for _, l := range []lang.Language{lang.English, lang.English, lang.Hindi} {
		require.NoError(t, st.AppendInteraction(ctx, store.Interaction{
			SessionID: "s1",
			Input:     "hello",
			Response:  "hi",
			Language:  l,
			Route:     "greeting",
		}))
	}

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalQueries)
	assert.Equal(t, map[lang.Language]int{lang.English: 2, lang.Hindi: 1}, stats.LanguageQueries)
	assert.Equal(t, 3, stats.TotalArticles)
	assert.Equal(t, map[string]int{"WHO": 1, "MOHFW": 2}, stats.SourceArticles)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rhea.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	seed(t, st, store.Article{Source: "WHO", Title: "A", Content: "x"})
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalArticles)
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	seed(t, st, store.Article{Source: "WHO", Title: "A", Content: "x"})
	got, err := st.RecentArticles(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestConcurrentWrites(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := st.AppendInteraction(ctx, store.Interaction{Language: lang.English}); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("AppendInteraction: %v", err)
	}

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, stats.TotalQueries)
}
