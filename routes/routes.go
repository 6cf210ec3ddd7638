package routes

import (
	"github.com/Sujan7036/friends-momo-sub001/handlers"
	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint. Sessions and Identify must already
// be installed on r.
func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Auth forms ─────────────────────────────────────────────────
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/register", h.Register)
	r.POST("/forgot-password", h.ForgotPassword)
	r.POST("/reset-password", h.ResetPassword)

	// QR code target
	r.GET("/reservations/confirmation/:code", h.ReservationConfirmation)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/token", h.IssueToken)

		public.GET("/menu", h.GetMenu)
		public.GET("/menu/:id", h.GetMenuItem)
		public.GET("/categories", h.GetCategories)
		public.GET("/reservations/availability", h.CheckAvailability)

		// Session cart
		public.GET("/cart", h.GetCart)
		public.POST("/cart", h.UpdateCart)

		// Guests may check out and book
		public.POST("/orders", h.PlaceOrder)
		public.POST("/reservations", h.CreateReservation)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(middleware.AuthRequired())
	{
		customer.GET("/profile", h.GetProfile)
		customer.PUT("/profile", h.UpdateProfile)
		customer.PUT("/profile/password", h.ChangePassword)

		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.GET("/order-items", h.GetOrderItems)

		customer.GET("/reservations", h.GetMyReservations)
		customer.GET("/reservations/:id", h.GetReservation)
		customer.PUT("/reservations/:id/cancel", h.CancelReservation)
		customer.GET("/reservations/:id/qrcode", h.GetReservationQRCode)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := r.Group("/api/staff")
	staff.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/dashboard", h.StaffDashboard)

		staff.GET("/orders", h.ListOrders)
		staff.PUT("/orders/:id/status", h.UpdateOrderStatus)
		staff.PUT("/orders/:id/cancel", h.StaffCancelOrder)

		staff.GET("/reservations", h.ListReservations)
		staff.PUT("/reservations/:id/status", h.UpdateReservationStatus)
		staff.PUT("/reservations/:id/cancel", h.StaffCancelReservation)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.AdminDashboard)

		admin.GET("/users", h.AdminListUsers)
		admin.GET("/users/:id", h.AdminGetUser)
		admin.PUT("/users/:id/activate", h.AdminActivateUser)
		admin.PUT("/users/:id/deactivate", h.AdminDeactivateUser)
		admin.PUT("/users/:id/role", h.AdminSetUserRole)

		admin.PUT("/orders/:id/status", h.AdminForceOrderStatus)

		// Menu management
		admin.GET("/menu", h.ListMenuItems)
		admin.POST("/menu", h.CreateMenuItem)
		admin.GET("/menu/:id", h.AdminGetMenuItem)
		admin.PUT("/menu/:id", h.UpdateMenuItem)
		admin.PUT("/menu/:id/availability", h.SetMenuItemAvailability)
		admin.DELETE("/menu/:id", h.DeleteMenuItem)

		admin.GET("/categories", h.ListCategories)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.GET("/settings", h.AdminListSettings)
		admin.PUT("/settings/:key", h.AdminUpdateSetting)
		admin.GET("/activity", h.AdminActivityLog)
	}
}
