package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/realtime"
	"github.com/stansam/Tuned/tests/testutil"
	"github.com/stretchr/testify/assert"
)

// newTestRouter builds the real route table against an in-memory database
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testutil.SetupTestDB(t)
	testutil.SetupTestConfig(t)

	hub := realtime.NewHub(realtime.NewMemoryPresenceStore())
	go hub.Run()

	return setupRouter(hub)
}

// TestHealthEndpointIntegration tests /api/v1/health with full routing
func TestHealthEndpointIntegration(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
}

// TestRouteProtection verifies the auth boundaries of the route table
func TestRouteProtection(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "Public catalog endpoint is open",
			method:         http.MethodGet,
			path:           "/api/v1/deadlines",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Client orders require authentication",
			method:         http.MethodGet,
			path:           "/api/v1/orders",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Profile requires authentication",
			method:         http.MethodGet,
			path:           "/api/v1/profile",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Admin endpoints require authentication",
			method:         http.MethodGet,
			path:           "/api/v1/admin/orders",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Websocket endpoint requires authentication",
			method:         http.MethodGet,
			path:           "/api/v1/ws",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown route is not found",
			method:         http.MethodGet,
			path:           "/api/v1/nothing-here",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
