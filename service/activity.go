package service

import (
	"context"
	"log/slog"

	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
)

// Activity actions.
const (
	ActionRegister          = "register"
	ActionLogin             = "login"
	ActionLoginFailed       = "login_failed"
	ActionLogout            = "logout"
	ActionPasswordReset     = "password_reset"
	ActionPasswordChanged   = "password_changed"
	ActionProfileUpdated    = "profile_updated"
	ActionOrderPlaced       = "order_placed"
	ActionOrderStatus       = "order_status"
	ActionOrderCancelled    = "order_cancelled"
	ActionReservationMade   = "reservation_created"
	ActionReservationStatus = "reservation_status"
	ActionReservationCancel = "reservation_cancelled"
	ActionMenuChanged       = "menu_changed"
	ActionUserChanged       = "user_changed"
	ActionSettingsChanged   = "settings_changed"
)

type ActivityService struct {
	repo *repository.ActivityRepository
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Log records an action. userID 0 means anonymous. Failures are logged and
// never reach the caller.
func (s *ActivityService) Log(ctx context.Context, userID uint, action, description, ip string) {
	entry := &models.ActivityLog{Action: action, Description: description, IPAddress: ip}
	if userID != 0 {
		entry.UserID = &userID
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		slog.Error("Failed to write activity log", "action", action, "user_id", userID, "error", err)
	}
}

func (s *ActivityService) List(ctx context.Context, userID uint, action string, page, perPage int) (*repository.Page[models.ActivityLog], error) {
	return s.repo.List(ctx, userID, action, page, perPage)
}
