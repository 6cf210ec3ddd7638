// Package session holds per-browser state (cart, login, failed login
// attempts) behind a Store keyed by session id with an explicit TTL.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID            string          `json:"id"`
	UserID        uint            `json:"user_id,omitempty"`
	Role          models.UserRole `json:"role,omitempty"`
	Name          string          `json:"name,omitempty"`
	Cart          cart.Cart       `json:"cart"`
	LoginAttempts int             `json:"login_attempts,omitempty"`
	LockedUntil   time.Time       `json:"locked_until,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// New starts an anonymous session expiring after ttl.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) LoggedIn() bool {
	return s.UserID != 0
}

// Login binds the session to a user and resets the failure counter.
func (s *Session) Login(u *models.User) {
	s.UserID = u.ID
	s.Role = u.Role
	s.Name = u.FullName()
	s.LoginAttempts = 0
	s.LockedUntil = time.Time{}
}

func (s *Session) Logout() {
	s.UserID = 0
	s.Role = ""
	s.Name = ""
}

// Locked reports whether login is refused because of repeated failures.
func (s *Session) Locked(now time.Time) bool {
	return now.Before(s.LockedUntil)
}

// RecordFailedLogin counts a failure; reaching max locks the session for lockout.
func (s *Session) RecordFailedLogin(now time.Time, max int, lockout time.Duration) {
	s.LoginAttempts++
	if s.LoginAttempts >= max {
		s.LockedUntil = now.Add(lockout)
		s.LoginAttempts = 0
	}
}

// Store persists sessions. Get returns ErrNotFound for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
