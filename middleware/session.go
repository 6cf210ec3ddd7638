package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxSession         = "session"
	ctxSessionDestroy  = "sessionDestroyed"
	RememberCookieName = "remember_token"
)

// RememberLookup resolves a remember-me cookie to its user.
type RememberLookup interface {
	UserFromRememberToken(ctx context.Context, token string) (*models.User, error)
}

// Sessions loads a session for every request and stores it back afterwards.
type Sessions struct {
	Store      session.Store
	CookieName string
	TTL        time.Duration
	Secure     bool
	Remember   RememberLookup
}

func (m *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := m.load(c)

		if !sess.LoggedIn() && m.Remember != nil {
			if token, err := c.Cookie(RememberCookieName); err == nil && token != "" {
				user, err := m.Remember.UserFromRememberToken(ctx, token)
				if err != nil {
					m.ClearRemember(c)
				} else {
					m.rotate(ctx, sess)
					sess.Login(user)
				}
			}
		}

		sess.ExpiresAt = time.Now().Add(m.TTL)
		c.Set(ctxSession, sess)
		m.setCookie(c, sess.ID, int(m.TTL.Seconds()))

		c.Next()

		if c.GetBool(ctxSessionDestroy) {
			return
		}
		if err := m.Store.Save(ctx, sess); err != nil {
			slog.Error("Failed to save session", "error", err)
		}
	}
}

func (m *Sessions) load(c *gin.Context) *session.Session {
	id, err := c.Cookie(m.CookieName)
	if err != nil || id == "" {
		return session.New(m.TTL)
	}
	sess, err := m.Store.Get(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("Failed to load session", "error", err)
		}
		return session.New(m.TTL)
	}
	return sess
}

// Regenerate moves sess to a fresh id, dropping the old one. Call it on
// login before the response is written.
func (m *Sessions) Regenerate(c *gin.Context, sess *session.Session) {
	m.rotate(c.Request.Context(), sess)
	m.setCookie(c, sess.ID, int(m.TTL.Seconds()))
}

func (m *Sessions) rotate(ctx context.Context, sess *session.Session) {
	if err := m.Store.Delete(ctx, sess.ID); err != nil {
		slog.Warn("Failed to drop old session", "error", err)
	}
	sess.ID = uuid.NewString()
}

// Destroy deletes the session and its cookie.
func (m *Sessions) Destroy(c *gin.Context) {
	sess := CurrentSession(c)
	if sess == nil {
		return
	}
	if err := m.Store.Delete(c.Request.Context(), sess.ID); err != nil {
		slog.Warn("Failed to delete session", "error", err)
	}
	c.Set(ctxSessionDestroy, true)
	m.setCookie(c, "", -1)
	m.ClearRemember(c)
}

func (m *Sessions) SetRemember(c *gin.Context, token string, expires time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookieName, token, int(time.Until(expires).Seconds()), "/", "", m.Secure, true)
}

func (m *Sessions) ClearRemember(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookieName, "", -1, "/", "", m.Secure, true)
}

func (m *Sessions) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.CookieName, value, maxAge, "/", "", m.Secure, true)
}

// CurrentSession returns the request's session, or nil outside Sessions.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}
