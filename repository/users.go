package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	*Repository[models.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{New[models.User](db,
		"first_name", "last_name", "email", "phone", "address",
		"password_hash", "role", "is_active",
	)}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindBy(ctx, Filters{"email": NormalizeEmail(email)})
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.Count(ctx, Filters{"email": NormalizeEmail(email)})
	return n > 0, err
}

// FindByRememberToken looks up an active user by the hash of a remember-me token.
func (r *UserRepository) FindByRememberToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.DB(ctx).
		Where("remember_token = ? AND remember_expires > ? AND is_active = ?", tokenHash, now, true).
		First(&u).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (r *UserRepository) SetRememberToken(ctx context.Context, id uint, tokenHash string, expires *time.Time) error {
	return r.set(ctx, id, map[string]any{"remember_token": tokenHash, "remember_expires": expires})
}

func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var u models.User
	err := r.DB(ctx).
		Where("reset_token = ? AND reset_expires > ?", tokenHash, now).
		First(&u).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uint, tokenHash string, expires *time.Time) error {
	return r.set(ctx, id, map[string]any{"reset_token": tokenHash, "reset_expires": expires})
}

// SetPassword stores a new hash and invalidates outstanding reset and remember tokens.
func (r *UserRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	return r.set(ctx, id, map[string]any{
		"password_hash":    hash,
		"reset_token":      "",
		"reset_expires":    nil,
		"remember_token":   "",
		"remember_expires": nil,
	})
}

func (r *UserRepository) RecordLogin(ctx context.Context, id uint, ip string, at time.Time) error {
	return r.set(ctx, id, map[string]any{
		"last_login_at": at,
		"last_login_ip": ip,
		"login_count":   gorm.Expr("login_count + ?", 1),
	})
}

// SetActive soft-disables or re-enables an account. Users are never hard-deleted.
func (r *UserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.set(ctx, id, map[string]any{"is_active": active})
}

func (r *UserRepository) SetRole(ctx context.Context, id uint, role models.UserRole) error {
	return r.set(ctx, id, map[string]any{"role": role})
}

// UserQuery narrows the admin customer listing.
type UserQuery struct {
	Role   models.UserRole
	Active *bool
	Search string
}

func (r *UserRepository) List(ctx context.Context, q UserQuery, page, perPage int) (*Page[models.User], error) {
	filters := Filters{}
	if q.Role != "" {
		filters["role"] = q.Role
	}
	if q.Active != nil {
		filters["is_active"] = *q.Active
	}
	scope := r.SearchScope(applyFilters(r.DB(ctx), filters), q.Search,
		[]string{"first_name", "last_name", "email", "phone"})
	return r.PaginateQuery(ctx, scope, page, perPage, "created_at desc")
}
