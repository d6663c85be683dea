package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a user in the system (client or admin)
type User struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Username            string         `gorm:"uniqueIndex;not null" json:"username"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string         `gorm:"not null" json:"-"`
	Name                string         `json:"name"`
	IsAdmin             bool           `gorm:"not null;default:false" json:"is_admin"`
	EmailVerified       bool           `gorm:"not null;default:false" json:"email_verified"`
	RewardPoints        int            `gorm:"not null;default:0" json:"reward_points"`
	ReferralCode        string         `gorm:"uniqueIndex" json:"referral_code"`
	FailedLoginAttempts int            `gorm:"not null;default:0" json:"-"`
	LastFailedLogin     *time.Time     `json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the given plaintext password
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the given plaintext password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// GetName returns the display name for the user
func (u *User) GetName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
