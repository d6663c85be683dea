package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"github.com/stansam/Tuned/services"
)

const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
)

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// Register handles POST /api/v1/auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	err := db.Where("email = ? OR username = ?", email, req.Username).First(&existing).Error
	if err == nil {
		respondError(c, http.StatusConflict, "ALREADY_EXISTS", "An account with that email or username already exists")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        email,
		Name:         req.Name,
		ReferralCode: strings.ToUpper(uuid.New().String()[:8]),
	}
	if err := user.SetPassword(req.Password); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
		return
	}

	if err := db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account")
		return
	}

	services.HandleUserRegistration(db, user.ID)

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/v1/auth/login. Repeated failures lock the
// account for a cooldown window; the counter resets on success or once
// the window lapses.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	now := time.Now()
	if user.FailedLoginAttempts >= maxFailedLogins &&
		user.LastFailedLogin != nil &&
		now.Sub(*user.LastFailedLogin) < lockoutWindow {
		respondError(c, http.StatusTooManyRequests, "ACCOUNT_LOCKED",
			"Too many failed login attempts. Please try again later.")
		return
	}

	if !user.CheckPassword(req.Password) {
		attempts := user.FailedLoginAttempts + 1
		if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) >= lockoutWindow {
			attempts = 1
		}
		db.Model(&user).Updates(map[string]interface{}{
			"failed_login_attempts": attempts,
			"last_failed_login":     now,
		})
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	if user.FailedLoginAttempts > 0 {
		db.Model(&user).Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"last_failed_login":     nil,
		})
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
