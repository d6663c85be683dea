package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceCategory groups services for the client-facing order form.
// Distinct from PricingCategory, which groups services sharing one rate table.
type ServiceCategory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Order     int            `gorm:"not null;default:0" json:"order"`
	Services  []Service      `gorm:"foreignKey:ServiceCategoryID" json:"services,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ServiceCategory model
func (ServiceCategory) TableName() string {
	return "service_categories"
}

// Service represents an orderable writing service
type Service struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	Name              string           `gorm:"not null" json:"name"`
	Description       string           `json:"description"`
	ServiceCategoryID uint             `gorm:"not null;index" json:"service_category_id"`
	ServiceCategory   ServiceCategory  `gorm:"foreignKey:ServiceCategoryID" json:"-"`
	PricingCategoryID uint             `gorm:"not null;index" json:"pricing_category_id"`
	PricingCategory   PricingCategory  `gorm:"foreignKey:PricingCategoryID" json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

// AcademicLevel represents an academic level (e.g. Undergraduate, Masters)
type AcademicLevel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Order     int            `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the AcademicLevel model
func (AcademicLevel) TableName() string {
	return "academic_levels"
}

// Deadline is a named urgency tier (label, hours) used for both pricing
// and due-date computation
type Deadline struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Hours     float64        `gorm:"not null" json:"hours"`
	Order     int            `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Deadline model
func (Deadline) TableName() string {
	return "deadlines"
}
