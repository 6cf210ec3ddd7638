package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/settings"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func checkoutInput(userID *uint) CheckoutInput {
	return CheckoutInput{
		UserID:          userID,
		CustomerName:    "Asha Rai",
		CustomerEmail:   "asha@x.com",
		CustomerPhone:   "0400000000",
		OrderType:       models.OrderTypeDelivery,
		DeliveryAddress: "1 Main St",
	}
}

// placeOrder fills a cart with 2 x 10.00 and 1 x 5.00 and checks out.
func placeOrder(t *testing.T, f *fixture, userID *uint) *models.Order {
	t.Helper()
	ctx := context.Background()
	cat := f.category(t, "Momo "+t.Name(), true)
	a := f.menuItem(t, cat, "Chicken Momo", 10.00, true)
	b := f.menuItem(t, cat, "Veg Momo", 5.00, true)

	var c cart.Cart
	_, err := f.cart.Add(ctx, &c, a.ID, 2, "")
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, &c, b.ID, 1, "")
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, &c, checkoutInput(userID), "")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	return order
}

func TestPlaceOrder_TotalsAndSnapshot(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "buyer@x.com")

	order := placeOrder(t, f, &u.ID)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 25.00, order.Subtotal)
	assert.Equal(t, 2.00, order.Tax)
	assert.Equal(t, 3.99, order.DeliveryFee)
	assert.Equal(t, 30.99, order.Total)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Len(t, order.OrderNumber, len("ORD-20060102-ABCDEF"))

	stored, err := f.orderRep.WithItems(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 20.00, stored.Items[0].LineTotal)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, stored.StatusHistory[0].ToStatus)

	f.pub.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.OrderPlaced && e.Reference == order.OrderNumber && e.Amount == 30.99
	}))
}

func TestPlaceOrder_PickupHasNoDeliveryFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Drinks", true)
	item := f.menuItem(t, cat, "Lassi", 4.50, true)

	var c cart.Cart
	_, err := f.cart.Add(ctx, &c, item.ID, 2, "")
	require.NoError(t, err)

	in := checkoutInput(nil)
	in.OrderType = models.OrderTypePickup
	order, err := f.orders.PlaceOrder(ctx, &c, in, "")
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.DeliveryFee)
	assert.Equal(t, "", order.DeliveryAddress)
	assert.Equal(t, 9.72, order.Total)
}

func TestPlaceOrder_UsesCurrentMenuPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Momo", true)
	item := f.menuItem(t, cat, "Jhol Momo", 10.00, true)

	var c cart.Cart
	_, err := f.cart.Add(ctx, &c, item.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.items.Update(ctx, item.ID, map[string]any{"price": 12.00}))

	order, err := f.orders.PlaceOrder(ctx, &c, checkoutInput(nil), "")
	require.NoError(t, err)
	assert.Equal(t, 12.00, order.Subtotal)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Momo", true)
	item := f.menuItem(t, cat, "Jhol Momo", 10.00, true)

	var empty cart.Cart
	_, err := f.orders.PlaceOrder(ctx, &empty, checkoutInput(nil), "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	var c cart.Cart
	_, err = f.cart.Add(ctx, &c, item.ID, 1, "")
	require.NoError(t, err)

	in := checkoutInput(nil)
	in.DeliveryAddress = ""
	_, err = f.orders.PlaceOrder(ctx, &c, in, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "delivery_address")

	f.setSetting(t, settings.KeyMinOrderAmount, "50")
	_, err = f.orders.PlaceOrder(ctx, &c, checkoutInput(nil), "")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subtotal")
	f.setSetting(t, settings.KeyMinOrderAmount, "0")

	require.NoError(t, f.items.SetAvailability(ctx, item.ID, false))
	_, err = f.orders.PlaceOrder(ctx, &c, checkoutInput(nil), "")
	assert.ErrorIs(t, err, ErrItemUnavailable)
	assert.False(t, c.IsEmpty())

	f.setSetting(t, settings.KeyOnlineOrdering, "false")
	_, err = f.orders.PlaceOrder(ctx, &c, checkoutInput(nil), "")
	assert.ErrorIs(t, err, ErrOrderingClosed)
}

func TestUpdateStatus_FollowsTransitionTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	staff := f.register(t, "staff@x.com")
	order := placeOrder(t, f, nil)

	for _, to := range []models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusReady, models.StatusDelivered, models.StatusCompleted} {
		got, err := f.orders.UpdateStatus(ctx, staff.ID, order.ID, to, "", "")
		require.NoError(t, err, "to %s", to)
		assert.Equal(t, to, got.Status)
	}

	_, err := f.orders.UpdateStatus(ctx, staff.ID, order.ID, models.StatusPreparing, "", "")
	var terr *statemachine.TransitionError
	assert.ErrorAs(t, err, &terr)

	stored, err := f.orderRep.WithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 6)
}

func TestCancel_FromTerminalStatesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin@x.com")

	for _, status := range []models.OrderStatus{models.StatusDelivered, models.StatusCompleted, models.StatusCancelled} {
		order := placeOrder(t, f, nil)
		_, err := f.orders.ForceStatus(ctx, admin.ID, order.ID, status, "test", "")
		require.NoError(t, err)

		_, err = f.orders.Cancel(ctx, statemachine.ActorStaff, Viewer{UserID: admin.ID, Role: models.RoleAdmin}, order.ID, "late", "")
		var terr *statemachine.TransitionError
		require.ErrorAs(t, err, &terr, "cancel from %s", status)

		stored, err := f.orderRep.Find(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
}

func TestCancel_CustomerOwnOrderOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@x.com")
	other := f.register(t, "other@x.com")
	order := placeOrder(t, f, &owner.ID)

	_, err := f.orders.Cancel(ctx, statemachine.ActorCustomer, Viewer{UserID: other.ID, Role: models.RoleCustomer}, order.ID, "", "")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.orders.Cancel(ctx, statemachine.ActorCustomer, Viewer{UserID: owner.ID, Role: models.RoleCustomer}, order.ID, "changed my mind", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "changed my mind", got.CancellationReason)
	assert.NotNil(t, got.CancelledAt)
}

func TestCancel_CustomerCannotCancelOnceKitchenStarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@x.com")
	order := placeOrder(t, f, &owner.ID)
	_, err := f.orders.UpdateStatus(ctx, owner.ID, order.ID, models.StatusPreparing, "", "")
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, statemachine.ActorCustomer, Viewer{UserID: owner.ID}, order.ID, "", "")
	var terr *statemachine.TransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestGetAndItems_AccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@x.com")
	other := f.register(t, "other@x.com")
	order := placeOrder(t, f, &owner.ID)

	_, err := f.orders.Get(ctx, Viewer{UserID: owner.ID, Role: models.RoleCustomer}, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, Viewer{UserID: other.ID, Role: models.RoleCustomer}, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	items, err := f.orders.Items(ctx, Viewer{UserID: other.ID, Role: models.RoleStaff}, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = f.orders.Items(ctx, Viewer{}, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestForceStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	order := placeOrder(t, f, nil)
	_, err := f.orders.ForceStatus(context.Background(), 1, order.ID, "teleported", "", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
