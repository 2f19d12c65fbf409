/*
Package session maps a browser to its form controller.

The browser holds a signed cookie carrying an opaque session id; the
controllers themselves stay in memory in a bounded, expiring LRU. A
controller dropped from the LRU, whether by capacity, idle expiry or
shutdown, is closed so that its in-flight request is cancelled.
*/
package session

import (
	"fmt"
	"net/http"
	"sync"

	"DietWallah/internal/config"
	"DietWallah/internal/dietplan"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

const (
	CookieName = "dietwallah_session"
	idKey      = "sid"
)

// Factory builds the controller for a new session id.
type Factory func(id string) *dietplan.Controller

// Store is safe for concurrent use.
type Store struct {
	cookies *sessions.CookieStore
	factory Factory
	onEvict func(id string)
	onSize  func(n int)

	// mu serialises lookup-or-create so one id never gets two controllers.
	mu          sync.Mutex
	controllers *expirable.LRU[string, *dietplan.Controller]
}

// Option customises a Store.
type Option func(*Store)

// WithEvictHook runs fn after a session's controller has been closed.
// fn must not call back into the Store.
func WithEvictHook(fn func(id string)) Option {
	return func(s *Store) { s.onEvict = fn }
}

// WithSizeHook reports the number of live sessions after each lookup.
func WithSizeHook(fn func(n int)) Option {
	return func(s *Store) { s.onSize = fn }
}

// NewStore creates a registry sized and timed by cfg.
func NewStore(cfg config.SessionConfig, secure bool, factory Factory, opts ...Option) *Store {
	cookies := sessions.NewCookieStore([]byte(cfg.Secret))
	cookies.MaxAge(int(cfg.TTL.Seconds()))
	cookies.Options.Path = "/"
	cookies.Options.HttpOnly = true
	cookies.Options.Secure = secure
	cookies.Options.SameSite = http.SameSiteLaxMode

	s := &Store{
		cookies: cookies,
		factory: factory,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.controllers = expirable.NewLRU[string, *dietplan.Controller](cfg.MaxSessions, s.evicted, cfg.TTL)
	return s
}

func (s *Store) evicted(id string, c *dietplan.Controller) {
	c.Close()
	log.Debug().Str("session_id", id).Msg("Session controller released")
	if s.onEvict != nil {
		s.onEvict(id)
	}
}

// Lookup returns the controller bound to the request's session, creating the
// session (and its cookie) on first visit. Each lookup extends the session's
// idle deadline.
func (s *Store) Lookup(w http.ResponseWriter, r *http.Request) (string, *dietplan.Controller, error) {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		// A cookie signed with an old secret decodes to a fresh session.
		log.Debug().Err(err).Msg("Discarding unreadable session cookie")
	}

	id, _ := sess.Values[idKey].(string)
	if id == "" {
		id = uuid.New().String()
		sess.Values[idKey] = id
	}
	if err := sess.Save(r, w); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.mu.Lock()
	c, ok := s.controllers.Get(id)
	if !ok {
		c = s.factory(id)
		log.Info().Str("session_id", id).Msg("New form session")
	}
	// Re-adding refreshes the expiry without firing the evict callback.
	s.controllers.Add(id, c)
	n := s.controllers.Len()
	s.mu.Unlock()

	if s.onSize != nil {
		s.onSize(n)
	}
	return id, c, nil
}

// SessionID reads the session id from the request without creating one.
func (s *Store) SessionID(r *http.Request) (string, bool) {
	sess, err := s.cookies.Get(r, CookieName)
	if err != nil {
		return "", false
	}
	id, _ := sess.Values[idKey].(string)
	return id, id != ""
}

// Peek returns the controller for id without touching its expiry.
func (s *Store) Peek(id string) (*dietplan.Controller, bool) {
	return s.controllers.Peek(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.controllers.Len()
}

// Close releases every controller, cancelling any in-flight request.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controllers.Purge()
}
