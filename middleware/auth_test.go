package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"github.com/stretchr/testify/assert"
)

func setupAuthTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SetConfig(&config.Config{
		GoEnv:     "test",
		JWTSecret: "test-secret",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	setupAuthTest(t)

	user := &models.User{ID: 42, Username: "client", IsAdmin: false}
	token, err := GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.False(t, claims.IsAdmin)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	setupAuthTest(t)

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	setupAuthTest(t)

	router := gin.New()
	router.Use(RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	user := &models.User{ID: 7, Username: "client"}
	token, err := GenerateToken(user)
	assert.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		query          string
		expectedStatus int
	}{
		{
			name:           "Valid bearer token",
			header:         "Bearer " + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Token via query parameter",
			query:          "?token=" + token,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed token",
			header:         "Bearer junk",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	setupAuthTest(t)

	router := gin.New()
	router.Use(RequireAuth(), RequireAdmin())
	router.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	adminToken, err := GenerateToken(&models.User{ID: 1, Username: "admin", IsAdmin: true})
	assert.NoError(t, err)
	clientToken, err := GenerateToken(&models.User{ID: 2, Username: "client"})
	assert.NoError(t, err)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "Admin allowed", token: adminToken, expectedStatus: http.StatusOK},
		{name: "Client forbidden", token: clientToken, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
