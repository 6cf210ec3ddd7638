package handlers

import (
	"net/http"

	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/service"

	"github.com/gin-gonic/gin"
)

// ── Menu items (admin) ───────────────────────────────────────────────────────

// ListMenuItems returns every item, including unavailable ones
func (h *Handler) ListMenuItems(c *gin.Context) {
	page, perPage := pageParams(c)
	items, err := h.Menu.ListItems(c.Request.Context(), uint(queryInt(c, "category_id", 0)), c.Query("search"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", items)
}

func (h *Handler) AdminGetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	item, err := h.Menu.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", item)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var in service.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.Menu.CreateItem(c.Request.Context(), middleware.GetUserID(c), in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Menu item created", item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.MenuItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.Menu.UpdateItem(c.Request.Context(), middleware.GetUserID(c), id, in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated", item)
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetMenuItemAvailability marks an item sold out or back on the menu
func (h *Handler) SetMenuItemAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Menu.SetAvailability(c.Request.Context(), middleware.GetUserID(c), id, *req.IsAvailable, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Availability updated", gin.H{"id": id, "is_available": *req.IsAvailable})
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Menu.DeleteItem(c.Request.Context(), middleware.GetUserID(c), id, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item deleted", nil)
}

// ── Categories (admin) ───────────────────────────────────────────────────────

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.Menu.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", cats)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := h.Menu.CreateCategory(c.Request.Context(), middleware.GetUserID(c), in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Category created", cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	cat, err := h.Menu.UpdateCategory(c.Request.Context(), middleware.GetUserID(c), id, in, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category updated", cat)
}

// DeleteCategory refuses while items still belong to the category
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Menu.DeleteCategory(c.Request.Context(), middleware.GetUserID(c), id, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Category deleted", nil)
}
