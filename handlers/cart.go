package handlers

import (
	"net/http"

	"github.com/Sujan7036/friends-momo-sub001/middleware"

	"github.com/gin-gonic/gin"
)

type CartRequest struct {
	Action              string `form:"action" json:"action"`
	MenuItemID          uint   `form:"menu_item_id" json:"menu_item_id"`
	Quantity            *int   `form:"quantity" json:"quantity"`
	SpecialInstructions string `form:"special_instructions" json:"special_instructions"`
	Key                 string `form:"key" json:"key"`
}

// GetCart returns the session cart with totals
func (h *Handler) GetCart(c *gin.Context) {
	h.cartReply(c, "")
}

// UpdateCart applies one cart action: add, update, remove, clear or get
func (h *Handler) UpdateCart(c *gin.Context) {
	var req CartRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	sess := middleware.CurrentSession(c)
	ctx := c.Request.Context()

	var message string
	switch req.Action {
	case "add":
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		if req.MenuItemID == 0 {
			fail(c, http.StatusBadRequest, "menu_item_id is required")
			return
		}
		if _, err := h.Cart.Add(ctx, &sess.Cart, req.MenuItemID, qty, req.SpecialInstructions); err != nil {
			respondError(c, err)
			return
		}
		message = "Item added to cart"
	case "update":
		if req.Key == "" || req.Quantity == nil {
			fail(c, http.StatusBadRequest, "key and quantity are required")
			return
		}
		if err := h.Cart.Update(&sess.Cart, req.Key, *req.Quantity); err != nil {
			respondError(c, err)
			return
		}
		message = "Cart updated"
	case "remove":
		if err := h.Cart.Remove(&sess.Cart, req.Key); err != nil {
			respondError(c, err)
			return
		}
		message = "Item removed from cart"
	case "clear":
		h.Cart.Clear(&sess.Cart)
		message = "Cart cleared"
	case "get":
	default:
		fail(c, http.StatusBadRequest, "Invalid action")
		return
	}
	h.cartReply(c, message)
}

func (h *Handler) cartReply(c *gin.Context, message string) {
	sess := middleware.CurrentSession(c)
	summary, err := h.Cart.Summarize(c.Request.Context(), &sess.Cart)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, message, summary)
}
