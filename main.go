package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/config"
	"restaurant-ordering-api/handlers"
	"restaurant-ordering-api/orders"
	"restaurant-ordering-api/otp"
	"restaurant-ordering-api/routes"
	"restaurant-ordering-api/token"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	cfg := config.Load()
	db := config.OpenDB(cfg.DBPath)

	// Wire the service container
	clk := clock.New()
	tokens := token.NewService(cfg.JWTSecret, clk)
	otpStore := otp.NewStore(clk)
	otpStore.Start()
	defer otpStore.Stop()
	orderService := orders.NewService(db, clk, cfg.OrderNumberAttempts)

	authHandler := handlers.NewAuthHandler(db, otpStore, tokens)
	orderHandler := handlers.NewOrderHandler(orderService)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant Ordering API",
			"version": "1.0.0",
		})
	})

	// Register all routes
	routes.SetupRoutes(r, authHandler, orderHandler, tokens)

	log.Printf("Server running on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
