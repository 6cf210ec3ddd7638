package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/mailer"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/session"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	MaxLoginAttempts  = 5
	LockoutDuration   = 15 * time.Minute
	ResetTokenTTL     = time.Hour
)

type AuthService struct {
	users       *repository.UserRepository
	activity    *ActivityService
	mail        mailer.Mailer
	appURL      string
	rememberTTL time.Duration
	now         func() time.Time
}

func NewAuthService(users *repository.UserRepository, activity *ActivityService, mail mailer.Mailer, appURL string, rememberTTL time.Duration) *AuthService {
	return &AuthService{
		users:       users,
		activity:    activity,
		mail:        mail,
		appURL:      appURL,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	PasswordConfirm string
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, ip string) (*models.User, error) {
	v := &ValidationError{}
	v.required("first_name", in.FirstName)
	v.required("last_name", in.LastName)
	v.email("email", in.Email)
	validatePassword(v, "password", in.Password, in.PasswordConfirm)
	if err := v.Err(); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        repository.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.activity.Log(ctx, user.ID, ActionRegister, "Account created", ip)
	return user, nil
}

// Authenticate checks credentials without touching any session state.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// Login authenticates and binds sess to the user. Failed attempts are
// counted on the session; too many lock it for LockoutDuration.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password, ip string) (*models.User, error) {
	now := s.now()
	if sess.Locked(now) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.Authenticate(ctx, email, password)
	if errors.Is(err, ErrInvalidCredentials) {
		sess.RecordFailedLogin(now, MaxLoginAttempts, LockoutDuration)
		s.activity.Log(ctx, 0, ActionLoginFailed, "Failed login for "+repository.NormalizeEmail(email), ip)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.users.RecordLogin(ctx, user.ID, ip, now); err != nil {
		return nil, err
	}
	sess.Login(user)
	s.activity.Log(ctx, user.ID, ActionLogin, "Logged in", ip)
	return user, nil
}

// Logout clears the session user and any remember-me token.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session, ip string) {
	if !sess.LoggedIn() {
		return
	}
	if err := s.ForgetRememberToken(ctx, sess.UserID); err != nil {
		slog.Warn("Failed to clear remember token", "user_id", sess.UserID, "error", err)
	}
	s.activity.Log(ctx, sess.UserID, ActionLogout, "Logged out", ip)
	sess.Logout()
}

// IssueRememberToken stores the hash of a new random token and returns the
// plain token for the cookie.
func (s *AuthService) IssueRememberToken(ctx context.Context, userID uint) (string, time.Time, error) {
	token, hash, err := newToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expires := s.now().Add(s.rememberTTL)
	if err := s.users.SetRememberToken(ctx, userID, hash, &expires); err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (s *AuthService) UserFromRememberToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByRememberToken(ctx, hashToken(token), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

func (s *AuthService) ForgetRememberToken(ctx context.Context, userID uint) error {
	return s.users.SetRememberToken(ctx, userID, "", nil)
}

// RequestPasswordReset mails a reset link. Unknown or disabled accounts get
// the same nil result so the response never reveals who is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, ip string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, hash, err := newToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hash, &expires); err != nil {
		return err
	}

	link := s.appURL + "/reset-password?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for this, ignore this email.\n",
		user.FirstName, link)
	if err := s.mail.Send(ctx, mailer.Message{To: user.Email, Subject: "Reset your password", Body: body}); err != nil {
		slog.Error("Failed to send password reset mail", "user_id", user.ID, "error", err)
		return nil
	}
	s.activity.Log(ctx, user.ID, ActionPasswordReset, "Password reset requested", ip)
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm, ip string) error {
	v := &ValidationError{}
	validatePassword(v, "password", password, confirm)
	if err := v.Err(); err != nil {
		return err
	}
	if token == "" {
		return ErrInvalidToken
	}
	user, err := s.users.FindByResetToken(ctx, hashToken(token), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, user.ID, password); err != nil {
		return err
	}
	s.activity.Log(ctx, user.ID, ActionPasswordReset, "Password reset completed", ip)
	return nil
}

// ChangePassword requires the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, password, confirm, ip string) error {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		v := &ValidationError{}
		v.Add("current_password", "is incorrect")
		return v
	}
	v := &ValidationError{}
	validatePassword(v, "password", password, confirm)
	if err := v.Err(); err != nil {
		return err
	}
	if err := s.setPassword(ctx, userID, password); err != nil {
		return err
	}
	s.activity.Log(ctx, userID, ActionPasswordChanged, "Password changed", ip)
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, userID uint, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.SetPassword(ctx, userID, string(hash))
}

func validatePassword(v *ValidationError, field, password, confirm string) {
	if len(password) < MinPasswordLength {
		v.Add(field, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
		return
	}
	if password != confirm {
		v.Add(field+"_confirm", "does not match")
	}
}

// newToken returns a random token and the hash that is stored for it.
func newToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
