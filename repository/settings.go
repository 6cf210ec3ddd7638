package repository

import (
	"context"
	"errors"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"gorm.io/gorm"
)

type SettingRepository struct {
	*Repository[models.Setting]
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{New[models.Setting](db, "key", "value", "type", "description")}
}

func (r *SettingRepository) All(ctx context.Context) ([]models.Setting, error) {
	return r.FindAll(ctx, nil, "key asc", 0)
}

func (r *SettingRepository) ByKey(ctx context.Context, key string) (*models.Setting, error) {
	return r.FindBy(ctx, Filters{"key": key})
}

// EnsureDefault inserts s only when the key is missing.
func (r *SettingRepository) EnsureDefault(ctx context.Context, s *models.Setting) error {
	_, err := r.ByKey(ctx, s.Key)
	if errors.Is(err, ErrNotFound) {
		return r.Create(ctx, s)
	}
	return err
}

type ActivityRepository struct {
	*Repository[models.ActivityLog]
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{New[models.ActivityLog](db, "user_id", "action", "description", "ip_address")}
}

func (r *ActivityRepository) List(ctx context.Context, userID uint, action string, page, perPage int) (*Page[models.ActivityLog], error) {
	filters := Filters{}
	if userID != 0 {
		filters["user_id"] = userID
	}
	if action != "" {
		filters["action"] = action
	}
	return r.PaginateQuery(ctx, applyFilters(r.DB(ctx), filters), page, perPage, "created_at desc, id desc", "User")
}
