package repository

import (
	"context"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	*Repository[models.Reservation]
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{New[models.Reservation](db,
		"confirmation_code", "user_id", "name", "email", "phone",
		"reservation_date", "reservation_time", "party_size", "special_requests", "status",
	)}
}

func (r *ReservationRepository) FindByCode(ctx context.Context, code string) (*models.Reservation, error) {
	return r.FindBy(ctx, Filters{"confirmation_code": code})
}

func (r *ReservationRepository) ForUser(ctx context.Context, userID uint, page, perPage int) (*Page[models.Reservation], error) {
	q := r.DB(ctx).Where("user_id = ?", userID)
	return r.PaginateQuery(ctx, q, page, perPage, "reservation_date desc, reservation_time desc")
}

// ReservationQuery narrows the staff reservation listing.
type ReservationQuery struct {
	Status models.ReservationStatus
	Date   string
	Search string
}

func (r *ReservationRepository) List(ctx context.Context, q ReservationQuery, page, perPage int) (*Page[models.Reservation], error) {
	filters := Filters{}
	if q.Status != "" {
		filters["status"] = q.Status
	}
	if q.Date != "" {
		filters["reservation_date"] = q.Date
	}
	scope := r.SearchScope(applyFilters(r.DB(ctx), filters), q.Search,
		[]string{"confirmation_code", "name", "email", "phone"})
	return r.PaginateQuery(ctx, scope, page, perPage, "reservation_date asc, reservation_time asc")
}

// OnDate returns the non-cancelled reservations for one day in seating order.
func (r *ReservationRepository) OnDate(ctx context.Context, date string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.DB(ctx).
		Where("reservation_date = ? AND status <> ?", date, models.ReservationCancelled).
		Order("reservation_time asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

// Upcoming lists pending and confirmed reservations from date onwards.
func (r *ReservationRepository) Upcoming(ctx context.Context, fromDate string, limit int) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.DB(ctx).
		Where("reservation_date >= ? AND status IN ?", fromDate,
			[]models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
		Order("reservation_date asc, reservation_time asc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (r *ReservationRepository) SetStatus(ctx context.Context, id uint, to models.ReservationStatus) error {
	return r.set(ctx, id, map[string]any{"status": to})
}

func (r *ReservationRepository) Cancel(ctx context.Context, id uint, reason string, at time.Time) error {
	return r.set(ctx, id, map[string]any{
		"status":              models.ReservationCancelled,
		"cancellation_reason": reason,
		"cancelled_at":        at,
	})
}

func (r *ReservationRepository) CountByStatus(ctx context.Context) (map[models.ReservationStatus]int64, error) {
	var rows []struct {
		Status models.ReservationStatus
		N      int64
	}
	err := r.DB(ctx).Model(&models.Reservation{}).
		Select("status, count(*) as n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	out := make(map[models.ReservationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
