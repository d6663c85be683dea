package models

import (
	"time"

	"gorm.io/gorm"
)

// PricingCategory groups services that share one price-rate table
type PricingCategory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the PricingCategory model
func (PricingCategory) TableName() string {
	return "pricing_categories"
}

// PriceRate is the per-page rate for one (pricing category, academic level,
// deadline) combination. Rates are exact-match only; there is no fallback
// across the composite key.
type PriceRate struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	PricingCategoryID uint            `gorm:"not null;uniqueIndex:idx_rate_key" json:"pricing_category_id"`
	PricingCategory   PricingCategory `gorm:"foreignKey:PricingCategoryID" json:"-"`
	AcademicLevelID   uint            `gorm:"not null;uniqueIndex:idx_rate_key" json:"academic_level_id"`
	AcademicLevel     AcademicLevel   `gorm:"foreignKey:AcademicLevelID" json:"-"`
	DeadlineID        uint            `gorm:"not null;uniqueIndex:idx_rate_key" json:"deadline_id"`
	Deadline          Deadline        `gorm:"foreignKey:DeadlineID" json:"-"`
	PricePerPage      float64         `gorm:"not null" json:"price_per_page"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the PriceRate model
func (PriceRate) TableName() string {
	return "price_rates"
}
