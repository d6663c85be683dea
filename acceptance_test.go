package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/tests/testutil"
	"github.com/stretchr/testify/assert"
)

// TestServerStartup verifies the full application wires together
func TestServerStartup(t *testing.T) {
	router := newTestRouter(t)
	assert.NotNil(t, router, "Router should be initialized")
}

// TestQuoteThenRegisterAcceptance walks the anonymous visitor path: pull the
// order form data, get a quote, then register an account.
func TestQuoteThenRegisterAcceptance(t *testing.T) {
	router := newTestRouter(t)
	db := config.GetDB()
	service, level, _ := testutil.SeedPricing(t, db, 12.00, 24, 48)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/order-form-data", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var formData map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &formData))
	data := formData["data"].(map[string]interface{})
	assert.Len(t, data["deadlines"], 2)

	quoteBody := fmt.Sprintf(
		`{"service_id": %d, "academic_level_id": %d, "deadline_data": 24, "word_count": 275}`,
		service.ID, level.ID)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/calculate-price", stringReader(quoteBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var quote map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, 12.00, quote["total_price"])

	registerBody := `{"username": "visitor", "email": "visitor@example.com", "password": "longenough1"}`
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/register", stringReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var registered map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.True(t, registered["success"].(bool))
	assert.NotEmpty(t, registered["data"].(map[string]interface{})["token"])
}

func stringReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
