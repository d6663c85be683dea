package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/controllers"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/realtime"
	"github.com/stansam/Tuned/services"
)

func main() {
	log.Println("Starting Tuned API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	services.InitEmailService(cfg)
	if _, err := services.InitFileStorage(cfg); err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	hub := realtime.NewHub(realtime.NewMemoryPresenceStore())
	go hub.Run()
	services.SetBroadcaster(hub)

	router := setupRouter(hub)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// migrate runs gorm auto-migration for every model
func migrate() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&models.User{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.AcademicLevel{},
		&models.Deadline{},
		&models.PricingCategory{},
		&models.PriceRate{},
		&models.Order{},
		&models.OrderFile{},
		&models.OrderComment{},
		&models.SupportTicket{},
		&models.OrderDelivery{},
		&models.OrderDeliveryFile{},
		&models.Payment{},
		&models.Invoice{},
		&models.Refund{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.Notification{},
	)
}

// setupRouter builds the full route table
func setupRouter(hub *realtime.Hub) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		// Public
		v1.POST("/auth/register", controllers.Register)
		v1.POST("/auth/login", controllers.Login)
		v1.POST("/calculate-price", controllers.CalculatePrice)
		v1.GET("/services", controllers.ListServices)
		v1.GET("/academic-levels", controllers.ListAcademicLevels)
		v1.GET("/deadlines", controllers.ListDeadlines)
		v1.GET("/order-form-data", controllers.OrderFormData)

		// Authenticated
		auth := v1.Group("")
		auth.Use(middleware.RequireAuth())
		{
			auth.GET("/ws", realtime.ServeWS(hub))

			auth.GET("/profile", controllers.GetProfile)
			auth.PUT("/profile", controllers.UpdateProfile)

			auth.POST("/orders", controllers.CreateClientOrder)
			auth.GET("/orders", controllers.ListClientOrders)
			auth.GET("/orders/:id", controllers.GetOrderDetail)
			auth.POST("/orders/:id/complete", controllers.CompleteOrder)
			auth.POST("/orders/:id/revision", controllers.RequestRevision)
			auth.GET("/orders/:id/comments", controllers.ListOrderComments)
			auth.POST("/orders/:id/comments", controllers.AddOrderComment)
			auth.POST("/orders/:id/files", controllers.UploadOrderFiles)
			auth.PUT("/orders/:id/deadline", controllers.UpdateOrderDeadline)
			auth.POST("/orders/:id/payment/confirm", controllers.ConfirmClientPayment)
			auth.GET("/orders/:id/payment/status", controllers.ClientPaymentStatus)

			auth.POST("/chats", controllers.CreateChat)
			auth.GET("/chats", controllers.ListChats)
			auth.GET("/chats/:id", controllers.GetChat)
			auth.POST("/chats/:id/messages", controllers.SendChatMessage)
			auth.PUT("/chats/:id/close", controllers.CloseChat)

			auth.GET("/files/orders/:id", controllers.DownloadOrderFile)
			auth.GET("/files/deliveries/:id", controllers.DownloadDeliveryFile)
		}

		// Admin
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.GET("/orders/:id", controllers.AdminGetOrder)
			admin.PUT("/orders/:id/status", controllers.AdminUpdateOrderStatus)
			admin.POST("/orders/:id/comments", controllers.AdminAddOrderComment)
			admin.POST("/orders/:id/deliveries", controllers.AdminDeliverOrder)
			admin.POST("/orders/:id/extension", controllers.AdminRequestExtension)
			admin.PUT("/orders/:id/due-date", controllers.AdminUpdateDueDate)

			admin.POST("/payments", controllers.AdminRecordPayment)
			admin.GET("/payments", controllers.AdminListPayments)
			admin.GET("/payments/:id", controllers.AdminGetPayment)
			admin.PUT("/payments/:id/status", controllers.AdminUpdatePaymentStatus)
			admin.POST("/payments/:id/refund", controllers.AdminRefundPayment)

			admin.GET("/tickets", controllers.AdminListTickets)
			admin.PUT("/tickets/:id/status", controllers.AdminUpdateTicketStatus)
			admin.DELETE("/tickets/:id", controllers.AdminDeleteTicket)

			admin.GET("/users", controllers.AdminListUsers)
			admin.POST("/users", controllers.AdminCreateUser)
			admin.DELETE("/users/:id", controllers.AdminDeleteUser)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Tuned API is running",
	})
}
