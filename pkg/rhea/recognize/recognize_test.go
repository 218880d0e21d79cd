package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/lexicon"
)

func TestEveryKeywordRecognizesItsTag(t *testing.T) {
	lex := lexicon.Default()
	r := New(lex)

	for _, s := range lex.Symptoms() {
		for language, kws := range s.Keywords {
			for _, kw := range kws {
				assert.Contains(t, r.Symptoms(kw, language), s.Tag, "keyword %q (%s)", kw, language)
			}
		}
	}
	for _, d := range lex.Diseases() {
		for language, kws := range d.Keywords {
			for _, kw := range kws {
				assert.Contains(t, r.Diseases(kw, language), d.Tag, "keyword %q (%s)", kw, language)
			}
		}
	}
}

func TestEmptyInput(t *testing.T) {
	r := New(lexicon.Default())
	for _, language := range []lang.Language{lang.English, lang.Hindi} {
		assert.Empty(t, r.Symptoms("", language))
		assert.Empty(t, r.Symptoms("   \t", language))
		assert.Empty(t, r.Diseases("", language))
	}
}

func TestOrderFollowsLexicon(t *testing.T) {
	r := New(lexicon.Default())

	got := r.Symptoms("My head hurts and I have a FEVER", lang.English)
	assert.Equal(t, []string{"fever", "headache"}, got, "lexicon order, not text order")

	got = r.Symptoms("fever fever temperature", lang.English)
	assert.Equal(t, []string{"fever"}, got, "a tag appears once")
}

func TestLanguageSelectsKeywords(t *testing.T) {
	r := New(lexicon.Default())

	assert.Equal(t, []string{"fever"}, r.Symptoms("मुझे बुखार है", lang.Hindi))
	assert.Empty(t, r.Symptoms("मुझे बुखार है", lang.English))
	assert.Empty(t, r.Symptoms("fever", lang.Hindi))
	assert.Empty(t, r.Symptoms("fever"))
}

func TestSeveralLanguages(t *testing.T) {
	r := New(lexicon.Default())

	assert.Equal(t, []string{"fever", "headache"}, r.Symptoms("बुखार and headache", lang.Hindi, lang.English))
	assert.Equal(t, []string{"malaria"}, r.Diseases("malaria", lang.Hindi, lang.English))
}

func TestNoMatch(t *testing.T) {
	r := New(lexicon.Default())
	assert.Empty(t, r.Symptoms("what is the capital of France", lang.English))
	assert.Empty(t, r.Diseases("what is the capital of France", lang.English))
}

func TestSubstringLooseness(t *testing.T) {
	r := New(lexicon.Default())
	// "hot" is a fever keyword and sits inside "photo".
	assert.Equal(t, []string{"fever"}, r.Symptoms("show me a photo", lang.English))
}

func TestDiseases(t *testing.T) {
	r := New(lexicon.Default())

	got := r.Diseases("Tell me about diabetes and malaria", lang.English)
	assert.Equal(t, []string{"diabetes", "malaria"}, got)

	got = r.Diseases("lung infection", lang.English)
	assert.Equal(t, []string{"tuberculosis", "pneumonia"}, got, "shared keyword hits every tag")
}

func TestDiseasesAnyLanguage(t *testing.T) {
	r := New(lexicon.Default())

	tags, matched := r.DiseasesAnyLanguage("Dengue (डेंगू) is spread by the Aedes mosquito")
	require.Equal(t, []string{"malaria", "dengue"}, tags)
	assert.Contains(t, matched, "mosquito")
	assert.Contains(t, matched, "aedes")
	assert.Contains(t, matched, "डेंगू")

	tags, matched = r.DiseasesAnyLanguage("")
	assert.Nil(t, tags)
	assert.Nil(t, matched)
}
