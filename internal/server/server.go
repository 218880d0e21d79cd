// Package server exposes a Bot over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cognicore/rhea/internal/logging"
	"github.com/cognicore/rhea/internal/metrics"
	"github.com/cognicore/rhea/pkg/rhea"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

// SessionHeader carries the session ID between requests.
const SessionHeader = "X-Session-ID"

const maxBodyBytes = 64 << 10

// Config holds server dependencies.
type Config struct {
	MaxSessions int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics // nil disables /metrics
}

// Server routes requests to bot sessions.
type Server struct {
	bot      *rhea.Bot
	sessions *sessions
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a server.
func New(bot *rhea.Bot, cfg Config) (*Server, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10000
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	reg, err := newSessions(bot, cfg.MaxSessions, cfg.Metrics)
	if err != nil {
		return nil, err
	}
	return &Server{
		bot:      bot,
		sessions: reg,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/chat", s.handleChat)
	r.Get("/ws", s.handleWS)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

// StatsResponse is the GET /stats reply.
type StatsResponse struct {
	store.Stats
	ActiveSessions int `json:"active_sessions"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+SessionHeader)
			return
		}
	}

	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "message too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := s.sessions.get(id)
	reply := sess.Process(r.Context(), req.Message)

	w.Header().Set(SessionHeader, sess.ID())
	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  reply,
		SessionID: sess.ID(),
		Language:  string(sess.Language()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.bot.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Stats: stats, ActiveSessions: s.sessions.len()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
