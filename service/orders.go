package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/settings"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/google/uuid"
)

// Viewer is who is asking to read an order or reservation.
type Viewer struct {
	UserID uint
	Role   models.UserRole
}

// owns reports whether the viewer may see a record belonging to ownerID.
func (v Viewer) owns(ownerID *uint) bool {
	if v.Role.IsStaff() {
		return true
	}
	return v.UserID != 0 && ownerID != nil && *ownerID == v.UserID
}

type OrderService struct {
	orders   *repository.OrderRepository
	items    *repository.MenuItemRepository
	settings *SettingsService
	activity *ActivityService
	events   events.Publisher
	now      func() time.Time
}

func NewOrderService(orders *repository.OrderRepository, items *repository.MenuItemRepository, settings *SettingsService, activity *ActivityService, pub events.Publisher) *OrderService {
	return &OrderService{
		orders:   orders,
		items:    items,
		settings: settings,
		activity: activity,
		events:   pub,
		now:      time.Now,
	}
}

type CheckoutInput struct {
	UserID              *uint
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	OrderType           models.OrderType
	DeliveryAddress     string
	SpecialInstructions string
	PaymentMethod       models.PaymentMethod
}

func (in *CheckoutInput) validate() error {
	v := &ValidationError{}
	v.required("customer_name", in.CustomerName)
	v.email("customer_email", in.CustomerEmail)
	v.required("customer_phone", in.CustomerPhone)
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeDelivery
	}
	switch in.OrderType {
	case models.OrderTypeDelivery:
		v.required("delivery_address", in.DeliveryAddress)
	case models.OrderTypePickup:
		in.DeliveryAddress = ""
	default:
		v.Add("order_type", "must be delivery or pickup")
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if in.PaymentMethod != models.PaymentCash && in.PaymentMethod != models.PaymentCard {
		v.Add("payment_method", "must be cash or card")
	}
	return v.Err()
}

// PlaceOrder turns the cart into an order. Prices are read again from the
// menu so the order reflects what the items cost now, not when they were
// added. The cart is cleared on success.
func (s *OrderService) PlaceOrder(ctx context.Context, c *cart.Cart, in CheckoutInput, ip string) (*models.Order, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Bool(settings.KeyOnlineOrdering, true) {
		return nil, ErrOrderingClosed
	}

	items := make([]models.OrderItem, 0, len(c.Lines))
	var subtotal float64
	count := 0
	for _, line := range c.Lines {
		menuItem, err := s.items.FindPublic(ctx, line.MenuItemID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, line.Name)
		}
		if err != nil {
			return nil, err
		}
		lineTotal := cart.Round(menuItem.Price * float64(line.Quantity))
		subtotal += lineTotal
		count += line.Quantity
		items = append(items, models.OrderItem{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Quantity:            line.Quantity,
			UnitPrice:           menuItem.Price,
			LineTotal:           lineTotal,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	totals := cart.Compute(subtotal, count, snap.Pricing(s.settings.defaults), in.OrderType == models.OrderTypeDelivery)
	if minAmount := snap.Float(settings.KeyMinOrderAmount, 0); totals.Subtotal < minAmount {
		v := &ValidationError{}
		v.Add("subtotal", fmt.Sprintf("minimum order amount is %.2f", minAmount))
		return nil, v
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:         newOrderNumber(now),
		UserID:              in.UserID,
		CustomerName:        strings.TrimSpace(in.CustomerName),
		CustomerEmail:       repository.NormalizeEmail(in.CustomerEmail),
		CustomerPhone:       strings.TrimSpace(in.CustomerPhone),
		OrderType:           in.OrderType,
		DeliveryAddress:     strings.TrimSpace(in.DeliveryAddress),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		PaymentMethod:       in.PaymentMethod,
		Status:              models.StatusPending,
		Subtotal:            totals.Subtotal,
		Tax:                 totals.Tax,
		DeliveryFee:         totals.DeliveryFee,
		Total:               totals.Total,
	}

	err = s.orders.Transaction(ctx, func(tx *repository.OrderRepository) error {
		if err := tx.CreateWithItems(ctx, order, items); err != nil {
			return err
		}
		return tx.History.Create(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: in.UserID,
			Note:      "Order placed",
		})
	})
	if err != nil {
		return nil, err
	}

	c.Clear()
	s.publish(ctx, events.Event{
		Type: events.OrderPlaced, EntityID: order.ID, Reference: order.OrderNumber,
		Status: string(order.Status), Amount: order.Total, ActorID: derefID(in.UserID),
	})
	s.activity.Log(ctx, derefID(in.UserID), ActionOrderPlaced,
		fmt.Sprintf("Order %s placed (%.2f)", order.OrderNumber, order.Total), ip)
	return order, nil
}

// UpdateStatus moves an order along the kitchen flow on behalf of staff.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, id uint, to models.OrderStatus, note, ip string) (*models.Order, error) {
	if to == models.StatusCancelled {
		return s.Cancel(ctx, statemachine.ActorStaff, Viewer{UserID: actorID, Role: models.RoleStaff}, id, note, ip)
	}
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(order.Status, to, statemachine.ActorStaff); err != nil {
		return nil, err
	}
	if err := s.orders.SetStatus(ctx, id, order.Status, to, &actorID, note); err != nil {
		return nil, err
	}
	return s.afterStatusChange(ctx, actorID, order, to, ip)
}

// ForceStatus sets any status, bypassing the transition table. The history
// row is marked as an override.
func (s *OrderService) ForceStatus(ctx context.Context, adminID, id uint, to models.OrderStatus, reason, ip string) (*models.Order, error) {
	if !to.Valid() {
		v := &ValidationError{}
		v.Add("status", "is not a known order status")
		return nil, v
	}
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	note := "[ADMIN OVERRIDE] " + strings.TrimSpace(reason)
	if to == models.StatusCancelled {
		err = s.orders.Cancel(ctx, id, order.Status, &adminID, note, s.now())
	} else {
		err = s.orders.SetStatus(ctx, id, order.Status, to, &adminID, note)
	}
	if err != nil {
		return nil, err
	}
	return s.afterStatusChange(ctx, adminID, order, to, ip)
}

// Cancel cancels an order. Customers may only cancel their own orders and
// only before the kitchen starts on them.
func (s *OrderService) Cancel(ctx context.Context, actor statemachine.Actor, viewer Viewer, id uint, reason, ip string) (*models.Order, error) {
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == statemachine.ActorCustomer && (order.UserID == nil || *order.UserID != viewer.UserID) {
		return nil, ErrForbidden
	}
	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, actor); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Cancelled by " + string(actor)
	}
	var changedBy *uint
	if viewer.UserID != 0 {
		changedBy = &viewer.UserID
	}
	if err := s.orders.Cancel(ctx, id, order.Status, changedBy, reason, s.now()); err != nil {
		return nil, err
	}
	return s.afterStatusChange(ctx, viewer.UserID, order, models.StatusCancelled, ip)
}

func (s *OrderService) afterStatusChange(ctx context.Context, actorID uint, before *models.Order, to models.OrderStatus, ip string) (*models.Order, error) {
	typ, action := events.OrderStatusChanged, ActionOrderStatus
	desc := fmt.Sprintf("Order %s: %s → %s", before.OrderNumber, before.Status, to)
	if to == models.StatusCancelled {
		typ, action = events.OrderCancelled, ActionOrderCancelled
		desc = fmt.Sprintf("Order %s cancelled", before.OrderNumber)
	}
	s.publish(ctx, events.Event{
		Type: typ, EntityID: before.ID, Reference: before.OrderNumber,
		Status: string(to), Amount: before.Total, ActorID: actorID,
	})
	s.activity.Log(ctx, actorID, action, desc, ip)
	return s.orders.WithItems(ctx, before.ID)
}

// Get loads an order with items and history for viewer.
func (s *OrderService) Get(ctx context.Context, viewer Viewer, id uint) (*models.Order, error) {
	order, err := s.orders.WithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.owns(order.UserID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// Items returns the line items of an order viewer may see.
func (s *OrderService) Items(ctx context.Context, viewer Viewer, orderID uint) ([]models.OrderItem, error) {
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !viewer.owns(order.UserID) {
		return nil, ErrForbidden
	}
	return s.orders.ItemsFor(ctx, orderID)
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint, page, perPage int) (*repository.Page[models.Order], error) {
	return s.orders.ForUser(ctx, userID, page, perPage)
}

func (s *OrderService) List(ctx context.Context, q repository.OrderQuery, page, perPage int) (*repository.Page[models.Order], error) {
	return s.orders.List(ctx, q, page, perPage)
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "type", e.Type, "reference", e.Reference, "error", err)
	}
}

// newOrderNumber formats ORD-YYYYMMDD-XXXXXX.
func newOrderNumber(at time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + at.Format("20060102") + "-" + id[:6]
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
