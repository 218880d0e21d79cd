package rhea

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"github.com/cognicore/rhea/pkg/rhea/internalerr"
	"github.com/cognicore/rhea/pkg/rhea/lang"
	"github.com/cognicore/rhea/pkg/rhea/locale"
	"github.com/cognicore/rhea/pkg/rhea/store"
)

// errPanic marks a handler that panicked.
var errPanic = errors.New("handler panicked")

// Session is one user's conversation. Process calls on a session are
// serialized; different sessions run independently.
type Session struct {
	bot *Bot
	id  string

	mu       sync.Mutex
	language lang.Language
	turns    int
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Language returns the active language.
func (s *Session) Language() lang.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Turns returns the number of non-empty messages processed.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// SetLanguage switches the session language directly.
func (s *Session) SetLanguage(l lang.Language) error {
	if !s.bot.cat.Supports(l) {
		return fmt.Errorf("%w: %q", internalerr.ErrUnsupportedLanguage, l)
	}
	s.mu.Lock()
	s.language = l
	s.mu.Unlock()
	return nil
}

// Text returns a UI string in the session language.
func (s *Session) Text(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text(key)
}

// Format renders a UI template in the session language.
func (s *Session) Format(key string, args map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bot.cat.Format(s.language, key, args)
}

// text requires s.mu.
func (s *Session) text(key string) string {
	return s.bot.cat.Text(s.language, key)
}

// Process answers one message. It never fails: handler errors and panics
// are logged and answered with a localized apology.
func (s *Session) Process(ctx context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.bot
	start := b.now()
	in := newInput(text)

	r, reply, err := s.run(ctx, in)
	routeName := r.name
	if err != nil {
		routeName = RouteError
		b.logger.Error("message processing failed",
			zap.String("session", s.id),
			zap.String("route", r.name),
			zap.Error(err))
		reply = s.text(locale.KeyApology)
	}

	if in.lower != "" {
		s.turns++
	}
	if r.log {
		s.record(ctx, in.raw, reply, routeName)
	}

	elapsed := b.now().Sub(start)
	b.metrics.ObserveMessage(routeName, string(s.language), elapsed)
	b.logger.Debug("processed message",
		zap.String("session", s.id),
		zap.String("route", routeName),
		zap.String("language", string(s.language)),
		zap.Duration("duration", elapsed))
	return reply
}

// run selects the rule for in and applies it. A panic in either step
// becomes an error; r is then the rule that was chosen, or an error rule
// when selection itself failed.
func (s *Session) run(ctx context.Context, in input) (r rule, reply string, err error) {
	r = rule{name: RouteError, log: in.lower != ""}
	defer func() {
		if v := recover(); v != nil {
			s.bot.logger.Error("recovered panic",
				zap.Any("panic", v),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("%w: %v", errPanic, v)
		}
	}()
	r = s.bot.route(s, in)
	reply, err = r.handle(ctx, s, in)
	return r, reply, err
}

// record appends the interaction. A failed write is logged and otherwise
// ignored; the user already has their answer.
func (s *Session) record(ctx context.Context, input, response, route string) {
	err := s.bot.store.AppendInteraction(ctx, store.Interaction{
		SessionID: s.id,
		Input:     input,
		Response:  response,
		Language:  s.language,
		Route:     route,
		CreatedAt: s.bot.now(),
	})
	if err != nil {
		s.bot.logger.Warn("failed to log interaction",
			zap.String("session", s.id),
			zap.Error(err))
	}
}
