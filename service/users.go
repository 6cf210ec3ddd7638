package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
)

type UserService struct {
	users    *repository.UserRepository
	activity *ActivityService
}

func NewUserService(users *repository.UserRepository, activity *ActivityService) *UserService {
	return &UserService{users: users, activity: activity}
}

type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.Find(ctx, userID)
}

// UpdateProfile changes the user's own details. A changed email must still
// be unique.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput, ip string) (*models.User, error) {
	v := &ValidationError{}
	v.required("first_name", in.FirstName)
	v.required("last_name", in.LastName)
	v.email("email", in.Email)
	if err := v.Err(); err != nil {
		return nil, err
	}

	current, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	email := repository.NormalizeEmail(in.Email)
	if email != current.Email {
		exists, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailExists
		}
	}

	err = s.users.Update(ctx, userID, map[string]any{
		"first_name": strings.TrimSpace(in.FirstName),
		"last_name":  strings.TrimSpace(in.LastName),
		"email":      email,
		"phone":      strings.TrimSpace(in.Phone),
		"address":    strings.TrimSpace(in.Address),
	})
	if err != nil {
		return nil, err
	}
	s.activity.Log(ctx, userID, ActionProfileUpdated, "Profile updated", ip)
	return s.users.Find(ctx, userID)
}

func (s *UserService) List(ctx context.Context, q repository.UserQuery, page, perPage int) (*repository.Page[models.User], error) {
	return s.users.List(ctx, q, page, perPage)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.Find(ctx, id)
}

// SetActive enables or disables an account. Admins cannot disable themselves.
func (s *UserService) SetActive(ctx context.Context, adminID, id uint, active bool, ip string) (*models.User, error) {
	if adminID == id && !active {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", ErrForbidden)
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	if !active {
		// a disabled account must not come back through remember-me
		if err := s.users.SetRememberToken(ctx, id, "", nil); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	s.activity.Log(ctx, adminID, ActionUserChanged, fmt.Sprintf("User #%d %s", id, state), ip)
	return s.users.Find(ctx, id)
}

// SetRole changes an account's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, adminID, id uint, role models.UserRole, ip string) (*models.User, error) {
	if !role.Valid() {
		v := &ValidationError{}
		v.Add("role", "must be customer, staff or admin")
		return nil, v
	}
	if adminID == id && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, adminID, ActionUserChanged, fmt.Sprintf("User #%d role set to %s", id, role), ip)
	return s.users.Find(ctx, id)
}
