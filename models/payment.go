package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment is a manually recorded payment against one order
type Payment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderID       uint           `gorm:"not null;index" json:"order_id"`
	Order         Order          `gorm:"foreignKey:OrderID" json:"order"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Amount        float64        `gorm:"not null" json:"amount"`
	Method        string         `gorm:"not null;default:'manual'" json:"method"`
	TransactionID string         `json:"transaction_id"`
	Status        string         `gorm:"not null;default:'pending';index" json:"status"`
	PaymentDate   *time.Time     `json:"payment_date,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// Invoice is created alongside a completed payment and is immutable once paid
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	PaymentID uint           `gorm:"not null;index" json:"payment_id"`
	Payment   Payment        `gorm:"foreignKey:PaymentID" json:"-"`
	Subtotal  float64        `gorm:"not null" json:"subtotal"`
	Total     float64        `gorm:"not null" json:"total"`
	DueDate   time.Time      `json:"due_date"`
	Paid      bool           `gorm:"not null;default:false" json:"paid"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// Refund references a payment; a full refund demotes both the payment and
// the order's derived payment status
type Refund struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PaymentID   uint           `gorm:"not null;index" json:"payment_id"`
	Payment     Payment        `gorm:"foreignKey:PaymentID" json:"-"`
	Amount      float64        `gorm:"not null" json:"amount"`
	Reason      string         `gorm:"type:text" json:"reason"`
	ProcessedBy uint           `gorm:"not null" json:"processed_by"`
	Status      string         `gorm:"not null;default:'processed'" json:"status"`
	RefundDate  time.Time      `json:"refund_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Refund model
func (Refund) TableName() string {
	return "refunds"
}
