package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
)

func TestSearchTokens(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"is it ok", nil},
		{"Tell me about DIABETES", []string{"tell", "about", "diabetes"}},
		{"  malaria\tvaccine\n", []string{"malaria", "vaccine"}},
		{"टीबी का इलाज", []string{"टीबी", "इलाज"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchTokens(tt.query), "query %q", tt.query)
	}
}

func TestHaystack(t *testing.T) {
	h := Haystack(Article{Title: "Malaria", Content: "Use NETS", Keywords: "mosquito"})
	assert.Equal(t, "malaria\nuse nets\nmosquito", h)
}

func TestPrepareArticle(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	a, err := PrepareArticle(Article{Source: " WHO ", Title: "T", Content: "C"}, now)
	require.NoError(t, err)
	assert.Equal(t, "WHO", a.Source)
	assert.Len(t, a.ID, 26)
	assert.Equal(t, time.UTC, a.CreatedAt.Location())
	assert.True(t, a.CreatedAt.Equal(now))

	_, err = PrepareArticle(Article{Source: "WHO", Title: "T", Content: "  "}, now)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput))
}

func TestNewIDIsMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Greater(t, id, prev)
		prev = id
	}
}
