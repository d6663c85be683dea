package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
)

// GetProfile handles GET /api/v1/profile
func GetProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	respondData(c, http.StatusOK, user)
}

// UpdateProfileRequest represents the request body for profile updates
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateProfile handles PUT /api/v1/profile
func UpdateProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR",
				"Password must be at least 8 characters")
			return
		}
		if err := user.SetPassword(req.Password); err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update password")
			return
		}
	}

	if err := db.Save(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile")
		return
	}

	respondData(c, http.StatusOK, user)
}

// AdminListUsers handles GET /api/v1/admin/users
func AdminListUsers(c *gin.Context) {
	db := config.GetDB()

	q := db.Order("created_at desc")
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("username LIKE ? OR email LIKE ? OR name LIKE ?", pattern, pattern, pattern)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load users")
		return
	}

	respondData(c, http.StatusOK, users)
}

// AdminCreateUserRequest represents the request body for staff-created accounts
type AdminCreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
}

// AdminCreateUser handles POST /api/v1/admin/users
func AdminCreateUser(c *gin.Context) {
	var req AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	db := config.GetDB()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := db.Where("email = ? OR username = ?", email, req.Username).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "ALREADY_EXISTS",
			"An account with that email or username already exists")
		return
	}

	user := models.User{
		Username:      req.Username,
		Email:         email,
		Name:          req.Name,
		IsAdmin:       req.IsAdmin,
		EmailVerified: true,
		ReferralCode:  strings.ToUpper(uuid.New().String()[:8]),
	}
	if err := user.SetPassword(req.Password); err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}
	if err := db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	respondData(c, http.StatusCreated, user)
}

// AdminDeleteUser handles DELETE /api/v1/admin/users/:id. Admins cannot
// delete their own account.
func AdminDeleteUser(c *gin.Context) {
	callerID, ok := mustUserID(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if userID == callerID {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "You cannot delete your own account")
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete user")
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
