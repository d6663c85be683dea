package services

import (
	"fmt"
	"testing"

	"github.com/stansam/Tuned/config"
	"github.com/stansam/Tuned/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	config.SetConfig(&config.Config{
		GoEnv:        "test",
		JWTSecret:    "test-secret",
		WordsPerPage: 275,
		EmailBackend: "console",
	})
	SetEmailService(&ConsoleEmailService{})
	SetBroadcaster(nil)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		IsAdmin:      isAdmin,
		ReferralCode: "REF-" + username,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// seedRates installs one service with a full rate row per deadline tier
func seedRates(t *testing.T, db *gorm.DB, ratePerPage float64, deadlineHours ...float64) (*models.Service, *models.AcademicLevel, []models.Deadline) {
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
			Name:  fmt.Sprintf("%.0f hours", hours),
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
