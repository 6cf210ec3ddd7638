package handlers

import (
	"net/http"
	"strconv"

	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/gin-gonic/gin"
)

// GetMenu returns the orderable menu (public)
func (h *Handler) GetMenu(c *gin.Context) {
	f := repository.MenuFilter{
		Vegetarian:   c.Query("vegetarian") == "true",
		Vegan:        c.Query("vegan") == "true",
		GlutenFree:   c.Query("gluten_free") == "true",
		FeaturedOnly: c.Query("featured") == "true",
		Search:       c.Query("search"),
	}
	if id, err := strconv.ParseUint(c.Query("category_id"), 10, 64); err == nil {
		f.CategoryID = uint(id)
	}
	if lvl, err := strconv.Atoi(c.Query("max_spice")); err == nil {
		f.MaxSpiceLevel = &lvl
	}

	items, err := h.Menu.Menu(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"count": len(items), "items": items})
}

// GetMenuItem returns a single orderable item
func (h *Handler) GetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.Menu.Item(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", item)
}

// GetCategories lists the active categories in display order
func (h *Handler) GetCategories(c *gin.Context) {
	cats, err := h.Menu.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", cats)
}

// CheckAvailability answers whether a table is free for the requested slot
func (h *Handler) CheckAvailability(c *gin.Context) {
	date, clock := c.Query("date"), c.Query("time")
	size := queryInt(c, "party_size", 0)
	if date == "" || clock == "" || size < 1 {
		fail(c, http.StatusBadRequest, "date, time and party_size are required")
		return
	}
	available, err := h.Reservations.CheckAvailability(c.Request.Context(), date, clock, size)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"available": available, "date": date, "time": clock, "party_size": size})
}

// GetStateMachineInfo returns the order and reservation lifecycles
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"order_statuses":          models.OrderStatuses,
		"order_transitions":       statemachine.GetAllTransitions(),
		"reservation_statuses":    models.ReservationStatuses,
		"reservation_transitions": statemachine.GetAllReservationTransitions(),
	})
}
