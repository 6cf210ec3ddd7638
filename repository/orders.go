package repository

import (
	"context"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	*Repository[models.Order]
	Items   *Repository[models.OrderItem]
	History *Repository[models.OrderStatusHistory]
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		Repository: New[models.Order](db,
			"order_number", "user_id", "customer_name", "customer_email", "customer_phone",
			"order_type", "delivery_address", "special_instructions", "payment_method",
			"status", "subtotal", "tax", "delivery_fee", "total",
		),
		Items: New[models.OrderItem](db,
			"order_id", "menu_item_id", "name", "quantity", "unit_price", "line_total",
			"special_instructions",
		),
		History: New[models.OrderStatusHistory](db,
			"order_id", "from_status", "to_status", "changed_by", "note",
		),
	}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{
		Repository: r.Repository.WithTx(tx),
		Items:      r.Items.WithTx(tx),
		History:    r.History.WithTx(tx),
	}
}

// Transaction runs fn with a repository bound to one database transaction.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *OrderRepository) error) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// CreateWithItems persists the order header and its item snapshots.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.Transaction(ctx, func(tx *OrderRepository) error {
		if err := tx.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Items.Create(ctx, &items[i]); err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

// WithItems loads an order with its line items and status history.
func (r *OrderRepository) WithItems(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.MenuItem").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&o, id).Error
	if err != nil {
		return nil, wrap(err)
	}
	return &o, nil
}

func (r *OrderRepository) ItemsFor(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	return r.Items.FindAll(ctx, Filters{"order_id": orderID}, "id asc", 0)
}

func (r *OrderRepository) ForUser(ctx context.Context, userID uint, page, perPage int) (*Page[models.Order], error) {
	q := r.DB(ctx).Where("user_id = ?", userID)
	return r.PaginateQuery(ctx, q, page, perPage, "created_at desc", "Items")
}

// OrderQuery narrows the staff order listing.
type OrderQuery struct {
	Status models.OrderStatus
	Date   string // YYYY-MM-DD, matched against created_at
	Search string
	Active bool // only orders still in the kitchen flow
}

var activeOrderStatuses = []models.OrderStatus{
	models.StatusPending, models.StatusConfirmed, models.StatusPreparing, models.StatusReady,
}

func (r *OrderRepository) List(ctx context.Context, q OrderQuery, page, perPage int) (*Page[models.Order], error) {
	scope := r.DB(ctx)
	if q.Status != "" {
		scope = scope.Where("status = ?", q.Status)
	}
	if q.Active {
		scope = scope.Where("status IN ?", activeOrderStatuses)
	}
	if q.Date != "" {
		day, err := time.ParseInLocation(models.DateLayout, q.Date, time.Local)
		if err == nil {
			scope = scope.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}
	scope = r.SearchScope(scope, q.Search, []string{"order_number", "customer_name", "customer_email", "customer_phone"})
	return r.PaginateQuery(ctx, scope, page, perPage, "created_at desc")
}

// SetStatus writes the new status and the matching history row atomically.
func (r *OrderRepository) SetStatus(ctx context.Context, id uint, from, to models.OrderStatus, changedBy *uint, note string) error {
	return r.Transaction(ctx, func(tx *OrderRepository) error {
		if err := tx.set(ctx, id, map[string]any{"status": to}); err != nil {
			return err
		}
		return tx.History.Create(ctx, &models.OrderStatusHistory{
			OrderID: id, FromStatus: from, ToStatus: to, ChangedBy: changedBy, Note: note,
		})
	})
}

// Cancel marks the order cancelled, recording reason and time.
func (r *OrderRepository) Cancel(ctx context.Context, id uint, from models.OrderStatus, changedBy *uint, reason string, at time.Time) error {
	return r.Transaction(ctx, func(tx *OrderRepository) error {
		err := tx.set(ctx, id, map[string]any{
			"status":              models.StatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        at,
		})
		if err != nil {
			return err
		}
		return tx.History.Create(ctx, &models.OrderStatusHistory{
			OrderID: id, FromStatus: from, ToStatus: models.StatusCancelled, ChangedBy: changedBy, Note: reason,
		})
	})
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		N      int64
	}
	err := r.DB(ctx).Model(&models.Order{}).
		Select("status, count(*) as n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, wrap(err)
	}
	out := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// RevenueBetween sums totals of non-cancelled orders created in [from, to).
func (r *OrderRepository) RevenueBetween(ctx context.Context, from, to time.Time) (float64, int64, error) {
	var row struct {
		Revenue float64
		N       int64
	}
	err := r.DB(ctx).Model(&models.Order{}).
		Select("coalesce(sum(total), 0) as revenue, count(*) as n").
		Where("created_at >= ? AND created_at < ? AND status <> ?", from, to, models.StatusCancelled).
		Scan(&row).Error
	if err != nil {
		return 0, 0, wrap(err)
	}
	return row.Revenue, row.N, nil
}

func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	return r.FindAll(ctx, nil, "created_at desc", limit)
}
