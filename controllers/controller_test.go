package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
	"github.com/stansam/Tuned/tests/testutil"
	"gorm.io/gorm"
)

// setupControllerTest wires an in-memory database, test config, console
// email, and mock storage, and returns a router with the API routes used
// by controller tests
func setupControllerTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	testutil.SetupTestConfig(t)
	services.SetEmailService(&services.ConsoleEmailService{})
	services.SetBroadcaster(nil)
	services.SetFileStorage(services.NewMockFileStorage())

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", Register)
	v1.POST("/auth/login", Login)
	v1.POST("/calculate-price", CalculatePrice)

	auth := v1.Group("")
	auth.Use(middleware.RequireAuth())
	auth.POST("/orders", CreateClientOrder)
	auth.GET("/orders", ListClientOrders)
	auth.GET("/orders/:id", GetOrderDetail)
	auth.POST("/orders/:id/complete", CompleteOrder)
	auth.POST("/orders/:id/revision", RequestRevision)
	auth.POST("/orders/:id/payment/confirm", ConfirmClientPayment)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	admin.GET("/orders", AdminListOrders)
	admin.PUT("/orders/:id/status", AdminUpdateOrderStatus)
	admin.POST("/orders/:id/deliveries", AdminDeliverOrder)
	admin.POST("/payments", AdminRecordPayment)
	admin.GET("/tickets", AdminListTickets)

	return db, router
}

// doJSON performs a JSON request and decodes the response body
func doJSON(t *testing.T, router *gin.Engine, method, path, authHeader string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, response
}

func seedTestOrder(t *testing.T, db *gorm.DB, client *models.User, status string) *models.Order {
	t.Helper()

	service, level, deadlines := testutil.SeedPricing(t, db, 10.00, 24)
	order := models.Order{
		OrderNumber:     services.GenerateOrderNumber(time.Now()),
		ClientID:        client.ID,
		ServiceID:       service.ID,
		AcademicLevelID: level.ID,
		DeadlineID:      deadlines[0].ID,
		Title:           "Seeded order",
		WordCount:       275,
		PageCount:       1,
		Status:          status,
		TotalPrice:      10.00,
		DueDate:         time.Now().Add(24 * time.Hour),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return &order
}
