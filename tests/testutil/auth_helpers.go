package testutil

import (
	"testing"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/middleware"
	"github.com/stansam/Tuned/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB opens an in-memory database, migrates every model, and wires
// it into the config package for the duration of the test
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	MustSetTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
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
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// SetupTestConfig installs a minimal configuration for tests
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		GoEnv:        "test",
		JWTSecret:    "test-secret",
		AppName:      "Tuned",
		WordsPerPage: 275,
		EmailBackend: "console",
	}
	config.SetConfig(cfg)
	return cfg
}

// CreateTestUser persists a client account with a known password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        email,
		Name:         username,
		ReferralCode: "REF-" + username,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// CreateTestAdmin persists an admin account with a known password
func CreateTestAdmin(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	admin := models.User{
		Username:     username,
		Email:        email,
		Name:         username,
		IsAdmin:      true,
		ReferralCode: "REF-" + username,
	}
	if err := admin.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return &admin
}

// AuthHeader returns the Authorization header value for a user
func AuthHeader(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := middleware.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return "Bearer " + token
}

// SeedPricing installs one service with a complete rate table across the
// given deadline tiers. Returns the service, the academic level, and the
// created deadlines in the order given.
func SeedPricing(t *testing.T, db *gorm.DB, ratePerPage float64, deadlineHours ...float64) (*models.Service, *models.AcademicLevel, []models.Deadline) {
	t.Helper()

	pricing := models.PricingCategory{Name: "Standard"}
	if err := db.Create(&pricing).Error; err != nil {
		t.Fatalf("Failed to seed pricing category: %v", err)
	}

	category := models.ServiceCategory{Name: "Writing"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed service category: %v", err)
	}

	service := models.Service{
		Name:              "Essay",
		ServiceCategoryID: category.ID,
		PricingCategoryID: pricing.ID,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("Failed to seed service: %v", err)
	}

	level := models.AcademicLevel{Name: "Undergraduate", Order: 1}
	if err := db.Create(&level).Error; err != nil {
		t.Fatalf("Failed to seed academic level: %v", err)
	}

	deadlines := make([]models.Deadline, 0, len(deadlineHours))
	for i, hours := range deadlineHours {
		deadline := models.Deadline{
			Name:  "Tier",
			Hours: hours,
			Order: i + 1,
		}
		if err := db.Create(&deadline).Error; err != nil {
			t.Fatalf("Failed to seed deadline: %v", err)
		}
		rate := models.PriceRate{
			PricingCategoryID: pricing.ID,
			AcademicLevelID:   level.ID,
			DeadlineID:        deadline.ID,
			PricePerPage:      ratePerPage,
		}
		if err := db.Create(&rate).Error; err != nil {
			t.Fatalf("Failed to seed price rate: %v", err)
		}
		deadlines = append(deadlines, deadline)
	}

	return &service, &level, deadlines
}
