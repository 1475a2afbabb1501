package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant-ordering-api/handlers"
	"restaurant-ordering-api/middleware"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/token"
)

func SetupRoutes(r *gin.Engine, auth *handlers.AuthHandler, orders *handlers.OrderHandler, tokens *token.Service) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/send-code", auth.SendCode)
		public.POST("/auth/register", auth.Register)
		public.POST("/auth/login", auth.Login)
		public.POST("/auth/refresh", auth.Refresh)
		public.POST("/auth/logout", auth.Logout)

		// Checkout & order tracking (no auth needed)
		public.POST("/orders", orders.Checkout)
		public.POST("/orders/quote", orders.PriceQuote)
		public.GET("/orders/number/:number", orders.GetByNumber)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", orders.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(tokens))
	{
		authed.GET("/profile", auth.Profile)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(tokens), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", orders.List)
		admin.GET("/orders/:id", orders.Get)
		admin.PUT("/orders/:id/status", orders.UpdateStatus)
		admin.PUT("/orders/status", orders.BatchUpdateStatus)
		admin.PUT("/orders/:id/pay", orders.MarkPaid)
	}
}
