package handlers

import (
	"net/http"
	"strconv"

	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/service"

	"github.com/gin-gonic/gin"
)

// AdminDashboard returns revenue, order counts and recent orders (admin only)
func (h *Handler) AdminDashboard(c *gin.Context) {
	stats, err := h.Dashboard.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

// ── Customers ────────────────────────────────────────────────────────────────

// AdminListUsers returns accounts filtered by role, active flag or search
func (h *Handler) AdminListUsers(c *gin.Context) {
	page, perPage := pageParams(c)
	q := repository.UserQuery{
		Role:   models.UserRole(c.Query("role")),
		Search: c.Query("search"),
	}
	if v, err := strconv.ParseBool(c.Query("active")); err == nil {
		q.Active = &v
	}
	users, err := h.Users.List(c.Request.Context(), q, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", users)
}

func (h *Handler) AdminGetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", user)
}

func (h *Handler) AdminActivateUser(c *gin.Context) {
	h.setUserActive(c, true)
}

func (h *Handler) AdminDeactivateUser(c *gin.Context) {
	h.setUserActive(c, false)
}

func (h *Handler) setUserActive(c *gin.Context, active bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.SetActive(c.Request.Context(), middleware.GetUserID(c), id, active, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "User deactivated"
	if active {
		msg = "User activated"
	}
	respond(c, http.StatusOK, msg, user)
}

type SetRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

func (h *Handler) AdminSetUserRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.Users.SetRole(c.Request.Context(), middleware.GetUserID(c), id, req.Role, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Role updated", user)
}

// ── Orders ───────────────────────────────────────────────────────────────────

type ForceStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Reason string             `json:"reason"`
}

// AdminForceOrderStatus lets admin override any order state (emergency use)
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.Orders.ForceStatus(c.Request.Context(), middleware.GetUserID(c), id, req.Status, req.Reason, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status force-updated by admin", order)
}

// ── Settings ─────────────────────────────────────────────────────────────────

func (h *Handler) AdminListSettings(c *gin.Context) {
	rows, err := h.Settings.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", rows)
}

type UpdateSettingRequest struct {
	Value *string `json:"value" binding:"required"`
}

// AdminUpdateSetting changes one setting: PUT /api/admin/settings/:key
func (h *Handler) AdminUpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	row, err := h.Settings.Update(ctx, key, *req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	h.Activity.Log(ctx, middleware.GetUserID(c), service.ActionSettingsChanged, "Setting "+key+" changed", c.ClientIP())
	respond(c, http.StatusOK, "Setting updated", row)
}

// AdminActivityLog pages through the audit trail
func (h *Handler) AdminActivityLog(c *gin.Context) {
	page, perPage := pageParams(c)
	logs, err := h.Activity.List(c.Request.Context(), uint(queryInt(c, "user_id", 0)), c.Query("action"), page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", logs)
}
