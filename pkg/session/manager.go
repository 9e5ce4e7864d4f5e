package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const contextKey = "session"

// Options configures the session cookie.
type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Manager attaches a Session to every request.
type Manager struct {
	store  Store
	codec  *Codec
	opts   Options
	logger *zap.Logger
}

// NewManager wires a store to the cookie settings.
func NewManager(store Store, opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CookieName == "" {
		opts.CookieName = "attendance_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, codec: NewCodec(opts.Secret, opts.TTL), opts: opts, logger: logger}
}

// Middleware resolves the request's session from its cookie. Unknown, expired or forged
// cookies yield a fresh anonymous session; nothing is stored until the session is written.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := &Session{manager: m, c: c}
		if raw, err := c.Cookie(m.opts.CookieName); err == nil && raw != "" {
			if id, err := m.codec.Decode(raw); err == nil {
				data, err := m.store.Get(c.Request.Context(), id)
				switch {
				case err == nil:
					sess.id = id
					sess.data = *data
				case !errors.Is(err, ErrNotFound):
					m.logger.Warn("session lookup failed", zap.Error(err))
				}
			}
		}
		c.Set(contextKey, sess)
		c.Next()
	}
}

func (m *Manager) writeCookie(c *gin.Context, id string) error {
	token, err := m.codec.Encode(id)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, token, int(m.opts.TTL/time.Second), "/", "", m.opts.Secure, true)
	return nil
}

func (m *Manager) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, "", -1, "/", "", m.opts.Secure, true)
}

// Session is the per-request view of the caller's session.
type Session struct {
	manager *Manager
	c       *gin.Context
	id      string
	data    Data
}

// FromContext returns the request's session. Without the middleware it returns an inert
// anonymous session whose writes fail.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return &Session{c: c}
}

var errNoManager = errors.New("session middleware not installed")

// ID returns the session id, empty when nothing has been stored yet.
func (s *Session) ID() string {
	return s.id
}

// Identity returns the bound instructor, if any.
func (s *Session) Identity() (Identity, bool) {
	return s.data.Identity, s.data.Authenticated()
}

// Authenticated reports whether an instructor is logged in.
func (s *Session) Authenticated() bool {
	return s.data.Authenticated()
}

func (s *Session) ensure() error {
	if s.manager == nil {
		return errNoManager
	}
	if s.id != "" {
		return nil
	}
	id := uuid.NewString()
	if err := s.manager.writeCookie(s.c, id); err != nil {
		return err
	}
	s.id = id
	return nil
}

// Login binds the instructor under a freshly issued session id; the previous id is discarded.
func (s *Session) Login(identity Identity) error {
	if s.manager == nil {
		return errNoManager
	}
	ctx := s.c.Request.Context()
	if s.id != "" {
		if err := s.manager.store.Destroy(ctx, s.id); err != nil {
			s.manager.logger.Warn("discard pre-login session failed", zap.Error(err))
		}
		s.id = ""
	}
	if err := s.ensure(); err != nil {
		return err
	}
	if err := s.manager.store.SetIdentity(ctx, s.id, identity, s.manager.opts.TTL); err != nil {
		return err
	}
	s.data = Data{Identity: identity}
	return nil
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *Session) AddFlash(kind FlashKind, message string) error {
	if err := s.ensure(); err != nil {
		return err
	}
	return s.manager.store.SetFlash(s.c.Request.Context(), s.id, kind, message, s.manager.opts.TTL)
}

// TakeFlash returns and clears pending messages.
func (s *Session) TakeFlash() (Flash, error) {
	if s.manager == nil || s.id == "" {
		return Flash{}, nil
	}
	return s.manager.store.TakeFlash(s.c.Request.Context(), s.id)
}

// Destroy deletes the stored session and expires the cookie. The cookie is cleared even when
// the store call fails.
func (s *Session) Destroy() error {
	if s.manager == nil {
		return errNoManager
	}
	s.manager.clearCookie(s.c)
	id := s.id
	s.id = ""
	s.data = Data{}
	if id == "" {
		return nil
	}
	return s.manager.store.Destroy(s.c.Request.Context(), id)
}
