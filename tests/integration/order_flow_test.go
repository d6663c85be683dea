package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/controllers"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
	"github.com/stansam/Tuned/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIntegrationRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	testutil.SetupTestConfig(t)
	services.SetEmailService(&services.ConsoleEmailService{})
	services.SetBroadcaster(nil)
	services.SetFileStorage(services.NewMockFileStorage())

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", controllers.Register)
	v1.POST("/auth/login", controllers.Login)

	auth := v1.Group("")
	auth.Use(middleware.RequireAuth())
	auth.POST("/orders", controllers.CreateClientOrder)
	auth.GET("/orders/:id", controllers.GetOrderDetail)
	auth.POST("/orders/:id/complete", controllers.CompleteOrder)
	auth.POST("/orders/:id/revision", controllers.RequestRevision)
	auth.GET("/files/deliveries/:id", controllers.DownloadDeliveryFile)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
	admin.POST("/payments", controllers.AdminRecordPayment)
	admin.POST("/orders/:id/deliveries", controllers.AdminDeliverOrder)

	return db, router
}

func do(router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		json.Unmarshal(w.Body.Bytes(), &response)
	}
	return w, response
}

func jsonRequest(method, path, token string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

// TestOrderLifecycleIntegration walks an order from placement through
// payment, delivery, and client acceptance over the HTTP surface
func TestOrderLifecycleIntegration(t *testing.T) {
	db, router := setupIntegrationRouter(t)

	client := testutil.CreateTestUser(t, db, "client", "client@example.com")
	admin := testutil.CreateTestAdmin(t, db, "admin", "admin@example.com")
	clientToken := testutil.AuthHeader(t, client)
	adminToken := testutil.AuthHeader(t, admin)
	service, level, _ := testutil.SeedPricing(t, db, 10.00, 24)

	// Place the order
	var orderBuf bytes.Buffer
	form := multipart.NewWriter(&orderBuf)
	form.WriteField("service_id", fmt.Sprint(service.ID))
	form.WriteField("academic_level_id", fmt.Sprint(level.ID))
	form.WriteField("hours_until_deadline", "24")
	form.WriteField("word_count", "550")
	form.WriteField("title", "Integration essay")
	form.Close()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/orders", &orderBuf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", clientToken)
	w, response := do(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	orderData := response["data"].(map[string]interface{})
	orderID := uint(orderData["id"].(float64))
	assert.Equal(t, models.OrderStatusPending, orderData["status"])

	// Staff record the manual payment; the order activates
	w, _ = do(router, jsonRequest(http.MethodPost, "/api/v1/admin/payments", adminToken,
		map[string]interface{}{
			"order_id": orderID,
			"amount":   orderData["total_price"],
			"method":   "bank_transfer",
		}))
	require.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusActive, order.Status)
	assert.True(t, order.Paid)

	// Completing before delivery is refused
	w, _ = do(router, jsonRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%d/complete", orderID), clientToken, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Staff deliver the completed work
	var deliveryBuf bytes.Buffer
	deliveryForm := multipart.NewWriter(&deliveryBuf)
	part, err := deliveryForm.CreateFormFile("files", "final.pdf")
	require.NoError(t, err)
	part.Write([]byte("the finished essay"))
	deliveryForm.WriteField("file_types", models.DeliveryFileTypeDelivery)
	deliveryForm.Close()

	req, _ = http.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/admin/orders/%d/deliveries", orderID), &deliveryBuf)
	req.Header.Set("Content-Type", deliveryForm.FormDataContentType())
	req.Header.Set("Authorization", adminToken)
	w, response = do(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, models.OrderStatusPendingReview, order.Status)

	// The client downloads the delivered file
	var deliveryFile models.OrderDeliveryFile
	require.NoError(t, db.First(&deliveryFile).Error)
	w, _ = do(router, jsonRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/files/deliveries/%d", deliveryFile.ID), clientToken, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "final.pdf")

	// The client accepts the delivery
	w, response = do(router, jsonRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%d/complete", orderID), clientToken, nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusCompleted, data["status"])

	// Every lifecycle step left a notification trail for the client
	var notifications int64
	db.Model(&models.Notification{}).Where("user_id = ?", client.ID).Count(&notifications)
	assert.GreaterOrEqual(t, notifications, int64(3))
}

// TestRevisionFlowIntegration walks a delivered order through a revision
// round and a second delivery
func TestRevisionFlowIntegration(t *testing.T) {
	db, router := setupIntegrationRouter(t)

	client := testutil.CreateTestUser(t, db, "client", "client@example.com")
	admin := testutil.CreateTestAdmin(t, db, "admin", "admin@example.com")
	clientToken := testutil.AuthHeader(t, client)
	adminToken := testutil.AuthHeader(t, admin)
	service, level, deadlines := testutil.SeedPricing(t, db, 10.00, 24)

	order := models.Order{
		OrderNumber:     services.GenerateOrderNumber(time.Now()),
		ClientID:        client.ID,
		ServiceID:       service.ID,
		AcademicLevelID: level.ID,
		DeadlineID:      deadlines[0].ID,
		Title:           "Revision flow",
		WordCount:       275,
		PageCount:       1,
		Status:          models.OrderStatusPendingReview,
		TotalPrice:      10.00,
		DueDate:         time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&order).Error)

	// Client asks for changes
	w, _ := do(router, jsonRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/orders/%d/revision", order.ID), clientToken,
		map[string]interface{}{"reason": "Tighten the conclusion"}))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.Equal(t, models.OrderStatusRevision, order.Status)

	// Staff deliver the revised work; the order returns to review
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("files", "final_v2.pdf")
	require.NoError(t, err)
	part.Write([]byte("revised essay"))
	form.Close()

	req, _ := http.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/admin/orders/%d/deliveries", order.ID), &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", adminToken)
	w, _ = do(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingReview, order.Status)

	// The revised delivery notified the client distinctly
	var latest models.Notification
	require.NoError(t, db.Where("user_id = ?", client.ID).Order("id desc").First(&latest).Error)
	assert.Contains(t, latest.Title, "Revised")
}
