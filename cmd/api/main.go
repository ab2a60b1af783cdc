package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/profast/profast-backend/internal/database"
	"github.com/profast/profast-backend/internal/handlers"
	"github.com/profast/profast-backend/internal/middleware"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"github.com/stripe/stripe-go/v79"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	centersPath := os.Getenv("SERVICE_CENTERS_FILE")
	if centersPath == "" {
		centersPath = "data/serviceCenter.json"
	}
	if err := services.InitServiceCenters(centersPath); err != nil {
		log.Fatalf("Failed to load service centers: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	hub := services.NewHub()
	go hub.Run()

	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	r.Static("/uploads", "./uploads")

	// Public routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db))
		auth.POST("/login", handlers.Login(db))
	}

	r.GET("/service-centers", handlers.GetServiceCenters())
	r.GET("/service-centers/regions", handlers.GetRegions())
	r.GET("/service-centers/districts", handlers.GetDistricts())

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/ws", handlers.WebSocketHandler(db, hub))

		users := protected.Group("/users")
		{
			users.POST("", handlers.CreateUser(db))
			users.GET("/search", middleware.RequireRole(db, models.RoleAdmin), handlers.SearchUsers(db))
			users.GET("/:email/role", handlers.GetUserRole(db))
			users.PATCH("/:id/role", middleware.RequireRole(db, models.RoleAdmin), handlers.UpdateUserRole(db))
			users.POST("/photo", handlers.UploadProfilePhoto(db))
		}

		parcels := protected.Group("/parcels")
		{
			parcels.POST("", handlers.CreateParcel(db, hub))
			parcels.GET("", handlers.ListParcels(db))
			parcels.GET("/delivery/status-count", middleware.RequireRole(db, models.RoleAdmin), handlers.DeliveryStatusCount(db))
			parcels.GET("/user/:email", handlers.GetParcelsByUser(db))
			parcels.GET("/rider", middleware.RequireRole(db, models.RoleRider), handlers.GetRiderParcels(db))
			parcels.GET("/:id", handlers.GetParcel(db))
			parcels.DELETE("/:id", handlers.DeleteParcel(db))
			parcels.PATCH("/:id/assign-rider", middleware.RequireRole(db, models.RoleAdmin), handlers.AssignRider(db, hub))
			parcels.PATCH("/:id/toggle-delivery", middleware.RequireRole(db, models.RoleRider), handlers.ToggleDelivery(db, hub))
		}

		riders := protected.Group("/riders")
		{
			riders.POST("", handlers.ApplyAsRider(db))
			riders.GET("", middleware.RequireRole(db, models.RoleAdmin), handlers.ListRiders(db))
			riders.GET("/pending", middleware.RequireRole(db, models.RoleAdmin), handlers.GetPendingRiders(db))
			riders.GET("/approved", middleware.RequireRole(db, models.RoleAdmin), handlers.GetApprovedRiders(db))
			riders.PATCH("/:id", middleware.RequireRole(db, models.RoleAdmin), handlers.UpdateRiderStatus(db))
		}

		trackings := protected.Group("/trackings")
		{
			trackings.POST("", handlers.CreateTracking(db, hub))
			trackings.GET("/:trackingId", handlers.GetTrackingTimeline(db))
		}

		protected.POST("/create-payment-intent", handlers.CreatePaymentIntent(db))
		protected.POST("/payments", handlers.RecordPayment(db))
		protected.GET("/payments", handlers.GetPaymentHistory(db))

		// Rider earnings endpoints keep their historical paths
		api := protected.Group("/api")
		{
			api.GET("/rider/completed-parcels", middleware.RequireRole(db, models.RoleRider), handlers.GetCompletedParcels(db))
			api.PATCH("/parcels/:id/cashout", middleware.RequireRole(db, models.RoleRider), handlers.CashoutParcel(db))
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "7777"
	}

	log.Printf("Starting server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
