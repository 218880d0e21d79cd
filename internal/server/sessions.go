package server

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/rhea/internal/metrics"
	"github.com/cognicore/rhea/pkg/rhea"
)

// sessions holds HTTP sessions keyed by ID. The least recently used one is
// dropped when the cap is reached.
type sessions struct {
	bot     *rhea.Bot
	metrics *metrics.Metrics

	mu    sync.Mutex // serializes get-or-create
	cache *lru.Cache[string, *rhea.Session]
}

func newSessions(bot *rhea.Bot, max int, m *metrics.Metrics) (*sessions, error) {
	cache, err := lru.New[string, *rhea.Session](max)
	if err != nil {
		return nil, err
	}
	return &sessions{bot: bot, metrics: m, cache: cache}, nil
}

// get returns the session for id, creating it when unknown. An empty id
// starts a session with a fresh ID.
func (s *sessions) get(id string) *rhea.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.cache.Get(id); ok {
			return sess
		}
	}

	var sess *rhea.Session
	if id == "" {
		sess = s.bot.NewSession()
	} else {
		sess = s.bot.NewSessionWithID(id)
	}
	s.cache.Add(sess.ID(), sess)
	s.metrics.SetActiveSessions(s.cache.Len())
	return sess
}

func (s *sessions) len() int {
	return s.cache.Len()
}
