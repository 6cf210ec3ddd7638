package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/service"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP layer calls into.
type Handler struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Menu         *service.MenuService
	Cart         *service.CartService
	Orders       *service.OrderService
	Reservations *service.ReservationService
	Settings     *service.SettingsService
	Activity     *service.ActivityService
	Dashboard    *service.DashboardService
	Sessions     *middleware.Sessions
	JWT          *middleware.JWT
}

const genericError = "Something went wrong. Please try again."

func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps service and repository errors onto HTTP responses.
// Anything unrecognised is logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var terr *statemachine.TransitionError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Please correct the highlighted fields",
			"errors":  verr.Fields,
		})
	case errors.As(err, &terr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":       false,
			"message":       err.Error(),
			"current_state": terr.From,
		})
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmailExists), errors.Is(err, service.ErrCategoryInUse):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrInvalidToken):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		fail(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrItemUnavailable), errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrOrderingClosed), errors.Is(err, service.ErrReservationsClosed),
		errors.Is(err, service.ErrNoAvailability), errors.Is(err, service.ErrReservationPast),
		errors.Is(err, cart.ErrLineNotFound), errors.Is(err, cart.ErrInvalidQuantity):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		fail(c, http.StatusInternalServerError, genericError)
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil {
		return n
	}
	return def
}

func pageParams(c *gin.Context) (int, int) {
	return queryInt(c, "page", 1), queryInt(c, "per_page", repository.DefaultPerPage)
}

func viewer(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}
