package sessions

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/secrets"
)

// CookieName is the browser cookie holding the session id.
const CookieName = "session"

// Flash is a one-shot message shown to the user on the next page render.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

// Session is the server-side state bound to one browser session: the
// CSRF token, queued flash messages and remembered values.
type Session struct {
	ID        string            `json:"-"`
	CSRFToken string            `json:"csrf_token"`
	Flashes   []Flash           `json:"flashes,omitempty"`
	Values    map[string]string `json:"values,omitempty"`

	invalid bool
}

// CSRF returns the session's CSRF token, generating one on first use.
func (s *Session) CSRF() string {
	if s.CSRFToken == "" {
		s.CSRFToken = secrets.Generate(40)
	}
	return s.CSRFToken
}

// CheckCSRF compares a submitted token against the session's token in
// constant time. An empty session token never matches.
func (s *Session) CheckCSRF(token string) bool {
	if s.CSRFToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(token)) == 1
}

// Flash queues a message for the next render.
func (s *Session) Flash(message, category string) {
	s.Flashes = append(s.Flashes, Flash{Message: message, Category: category})
}

// PopFlashes drains and returns the queued flash messages.
func (s *Session) PopFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}

// Set stores a remembered value on the session.
func (s *Session) Set(key, value string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	s.Values[key] = value
}

// Get returns a remembered value, or "".
func (s *Session) Get(key string) string {
	return s.Values[key]
}

// Invalidate marks the session for deletion at the end of the request.
func (s *Session) Invalidate() {
	s.invalid = true
	s.CSRFToken = ""
	s.Flashes = nil
	s.Values = nil
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Manager loads sessions from a request cookie and writes them back.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager over the given store.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Load resolves the request's session, creating a fresh one (and
// setting its cookie) when none exists.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		s, err := m.store.Get(r.Context(), c.Value)
		if err != nil {
			logger.Log.Errorw("failed to load session", "error", err)
		}
		if s != nil {
			return s
		}
	}

	s := &Session{ID: secrets.Generate(40)}
	issueCookie(w, s.ID)
	return s
}

// Renew invalidates the request's current session and starts a fresh
// one with its own cookie. The caller must Commit the fresh session
// itself; the middleware only commits the one it loaded.
func (m *Manager) Renew(w http.ResponseWriter, r *http.Request) *Session {
	if old := FromContext(r.Context()); old != nil {
		old.Invalidate()
	}
	s := &Session{ID: secrets.Generate(40)}
	issueCookie(w, s.ID)
	return s
}

func issueCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Commit persists the session, or removes it if it was invalidated.
func (m *Manager) Commit(ctx context.Context, s *Session) {
	var err error
	if s.invalid {
		err = m.store.Delete(ctx, s.ID)
	} else {
		err = m.store.Save(ctx, s)
	}
	if err != nil {
		logger.Log.Errorw("failed to persist session", "error", err)
	}
}

type contextKey struct{}

var sessionKey = contextKey{}

// NewContext stores a session in the context.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext retrieves the request's session. Returns nil if the
// session middleware did not run.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
