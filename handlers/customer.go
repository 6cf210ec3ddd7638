package handlers

import (
	"net/http"
	"strconv"

	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/service"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/gin-gonic/gin"
)

// ── Profile ──────────────────────────────────────────────────────────────────

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Users.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in service.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.Users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	if sess := middleware.CurrentSession(c); sess != nil && sess.LoggedIn() {
		sess.Name = user.FullName()
	}
	respond(c, http.StatusOK, "Profile updated", user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	err := h.Auth.ChangePassword(c.Request.Context(), middleware.GetUserID(c),
		req.CurrentPassword, req.Password, req.PasswordConfirm, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Password changed", nil)
}

// ── Orders ───────────────────────────────────────────────────────────────────

type PlaceOrderRequest struct {
	CustomerName        string               `json:"customer_name"`
	CustomerEmail       string               `json:"customer_email"`
	CustomerPhone       string               `json:"customer_phone"`
	OrderType           models.OrderType     `json:"order_type"`
	DeliveryAddress     string               `json:"delivery_address"`
	SpecialInstructions string               `json:"special_instructions"`
	PaymentMethod       models.PaymentMethod `json:"payment_method"`
}

// PlaceOrder checks out the session cart. Guests may order; logged-in
// customers get blank contact fields filled from their profile.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	in := service.CheckoutInput{
		UserID:              middleware.UserIDPtr(c),
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		OrderType:           req.OrderType,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       req.PaymentMethod,
	}
	if in.UserID != nil {
		if user, err := h.Users.Profile(ctx, *in.UserID); err == nil {
			fillContact(&in, user)
		}
	}

	sess := middleware.CurrentSession(c)
	order, err := h.Orders.PlaceOrder(ctx, &sess.Cart, in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", order)
}

func fillContact(in *service.CheckoutInput, u *models.User) {
	if in.CustomerName == "" {
		in.CustomerName = u.FullName()
	}
	if in.CustomerEmail == "" {
		in.CustomerEmail = u.Email
	}
	if in.CustomerPhone == "" {
		in.CustomerPhone = u.Phone
	}
	if in.DeliveryAddress == "" && in.OrderType != models.OrderTypePickup {
		in.DeliveryAddress = u.Address
	}
}

// GetMyOrders returns the logged-in customer's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	page, perPage := pageParams(c)
	orders, err := h.Orders.ListForUser(c.Request.Context(), middleware.GetUserID(c), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", order)
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelOrder cancels an order (customer can cancel pending or confirmed)
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.Orders.Cancel(c.Request.Context(), statemachine.ActorCustomer, viewer(c), id, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", order)
}

// GetOrderItems returns the items of one order: GET /api/order-items?order_id=
func (h *Handler) GetOrderItems(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Query("order_id"), 10, 64)
	if err != nil || orderID == 0 {
		fail(c, http.StatusBadRequest, "order_id is required")
		return
	}
	items, err := h.Orders.Items(c.Request.Context(), viewer(c), uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", items)
}

// ── Reservations ─────────────────────────────────────────────────────────────

type ReservationRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"reservation_date"`
	Time            string `json:"reservation_time"`
	PartySize       int    `json:"party_size"`
	SpecialRequests string `json:"special_requests"`
}

// CreateReservation books a table; guests allowed
func (h *Handler) CreateReservation(c *gin.Context) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	in := service.ReservationInput{
		UserID:          middleware.UserIDPtr(c),
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Date:            req.Date,
		Time:            req.Time,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
	}
	if in.UserID != nil {
		if user, err := h.Users.Profile(ctx, *in.UserID); err == nil {
			if in.Name == "" {
				in.Name = user.FullName()
			}
			if in.Email == "" {
				in.Email = user.Email
			}
			if in.Phone == "" {
				in.Phone = user.Phone
			}
		}
	}

	r, err := h.Reservations.Create(ctx, in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Reservation received", gin.H{
		"reservation":      r,
		"confirmation_url": h.Reservations.ConfirmationURL(r),
	})
}

func (h *Handler) GetMyReservations(c *gin.Context) {
	page, perPage := pageParams(c)
	list, err := h.Reservations.ListForUser(c.Request.Context(), middleware.GetUserID(c), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", list)
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.Reservations.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", r)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)
	r, err := h.Reservations.Cancel(c.Request.Context(), statemachine.ActorCustomer, viewer(c), id, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Reservation cancelled", r)
}

// ReservationConfirmation is the target of the QR code (public)
func (h *Handler) ReservationConfirmation(c *gin.Context) {
	r, err := h.Reservations.ByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", r)
}

// GetReservationQRCode renders the confirmation link as a PNG
func (h *Handler) GetReservationQRCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	png, err := h.Reservations.QRCode(c.Request.Context(), viewer(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
