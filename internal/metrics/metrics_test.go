package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMessage(t *testing.T) {
	m := New()
	m.ObserveMessage("greeting", "english", time.Millisecond)
	m.ObserveMessage("emergency", "hindi", time.Millisecond)
	m.ObserveMessage("emergency", "hindi", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues("greeting", "english")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messages.WithLabelValues("emergency", "hindi")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.emergencies))
}

func TestArticlesIngested(t *testing.T) {
	m := New()
	m.ArticlesIngested("WHO", false, 5)
	m.ArticlesIngested("MOHFW", true, 8)
	m.ArticlesIngested("MOHFW", true, 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.articles.WithLabelValues("WHO", "live")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.articles.WithLabelValues("MOHFW", "fallback")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMessage("advice", "english", time.Second)
		m.ArticlesIngested("WHO", false, 1)
		m.SetActiveSessions(3)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetActiveSessions(2)
	m.ObserveMessage("advice", "english", 3*time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `rhea_messages_total{language="english",route="advice"} 1`)
	assert.Contains(t, string(body), "rhea_active_sessions 2")
	assert.Contains(t, string(body), "rhea_message_duration_seconds_bucket")
}
