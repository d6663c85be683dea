package models

import (
	"time"

	"gorm.io/gorm"
)

// Delivery file types
const (
	DeliveryFileTypeDelivery      = "delivery"
	DeliveryFileTypeReport        = "plagiarism_report"
	DeliveryFileTypeSupplementary = "supplementary"
)

// OrderDelivery is a bundle of files submitted by staff against an order,
// distinct from client-submitted order attachments
type OrderDelivery struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	OrderID        uint                `gorm:"not null;index" json:"order_id"`
	Order          Order               `gorm:"foreignKey:OrderID" json:"-"`
	DeliveryStatus string              `gorm:"not null;default:'delivered'" json:"delivery_status"`
	DeliveredAt    time.Time           `json:"delivered_at"`
	Files          []OrderDeliveryFile `gorm:"foreignKey:DeliveryID" json:"files,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderDelivery model
func (OrderDelivery) TableName() string {
	return "order_deliveries"
}

// OrderDeliveryFile is one file within a delivery bundle
type OrderDeliveryFile struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	DeliveryID       uint           `gorm:"not null;index" json:"delivery_id"`
	Delivery         OrderDelivery  `gorm:"foreignKey:DeliveryID" json:"-"`
	Filename         string         `gorm:"not null" json:"filename"`
	OriginalFilename string         `gorm:"not null" json:"original_filename"`
	FilePath         string         `gorm:"not null" json:"-"`
	FileType         string         `gorm:"not null;default:'supplementary'" json:"file_type"`
	FileFormat       string         `json:"file_format"`
	Description      string         `json:"description"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderDeliveryFile model
func (OrderDeliveryFile) TableName() string {
	return "order_delivery_files"
}
