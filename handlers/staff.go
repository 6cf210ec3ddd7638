package handlers

import (
	"net/http"

	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/gin-gonic/gin"
)

// StaffDashboard returns order counts and today's bookings (staff, admin)
func (h *Handler) StaffDashboard(c *gin.Context) {
	d, err := h.Dashboard.Staff(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", d)
}

// ListOrders returns orders filtered by status, date, search or active flag
func (h *Handler) ListOrders(c *gin.Context) {
	page, perPage := pageParams(c)
	q := repository.OrderQuery{
		Status: models.OrderStatus(c.Query("status")),
		Date:   c.Query("date"),
		Search: c.Query("search"),
		Active: c.Query("active") == "true",
	}
	orders, err := h.Orders.List(c.Request.Context(), q, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus moves an order along the kitchen flow
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.Orders.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, req.Status, req.Note, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated to "+string(order.Status), gin.H{
		"order":             order,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

func (h *Handler) StaffCancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)
	order, err := h.Orders.Cancel(c.Request.Context(), statemachine.ActorStaff, viewer(c), id, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled", order)
}

func (h *Handler) ListReservations(c *gin.Context) {
	page, perPage := pageParams(c)
	q := repository.ReservationQuery{
		Status: models.ReservationStatus(c.Query("status")),
		Date:   c.Query("date"),
		Search: c.Query("search"),
	}
	list, err := h.Reservations.List(c.Request.Context(), q, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", list)
}

type UpdateReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	r, err := h.Reservations.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), id, req.Status, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Reservation status updated to "+string(r.Status), r)
}

func (h *Handler) StaffCancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)
	r, err := h.Reservations.Cancel(c.Request.Context(), statemachine.ActorStaff, viewer(c), id, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Reservation cancelled", r)
}
