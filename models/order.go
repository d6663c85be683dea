package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. "cancelled" is the canonical spelling.
const (
	OrderStatusPending       = "pending"
	OrderStatusActive        = "active"
	OrderStatusPendingReview = "completed pending review"
	OrderStatusCompleted     = "completed"
	OrderStatusRevision      = "revision"
	OrderStatusCancelled     = "cancelled"
	OrderStatusOverdue       = "overdue"
)

// Payment status values derived onto Order
const (
	PaymentStatusUnpaid   = "Unpaid"
	PaymentStatusPending  = "Pending"
	PaymentStatusPaid     = "Paid"
	PaymentStatusRefunded = "Refunded"
)

// Order represents a client's writing assignment order
type Order struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	OrderNumber        string         `gorm:"uniqueIndex;not null" json:"order_number"`
	ClientID           uint           `gorm:"not null;index" json:"client_id"`
	Client             User           `gorm:"foreignKey:ClientID" json:"client"`
	ServiceID          uint           `gorm:"not null;index" json:"service_id"`
	Service            Service        `gorm:"foreignKey:ServiceID" json:"-"`
	AcademicLevelID    uint           `gorm:"not null;index" json:"academic_level_id"`
	AcademicLevel      AcademicLevel  `gorm:"foreignKey:AcademicLevelID" json:"-"`
	DeadlineID         uint           `gorm:"not null;index" json:"deadline_id"`
	Deadline           Deadline       `gorm:"foreignKey:DeadlineID" json:"-"`
	Title              string         `gorm:"not null" json:"title"`
	Description        string         `gorm:"type:text" json:"description"`
	WordCount          int            `gorm:"not null" json:"word_count"`
	PageCount          float64        `gorm:"not null" json:"page_count"`
	FormatStyle        string         `json:"format_style"`
	ReportType         string         `json:"report_type"`
	Status             string         `gorm:"not null;default:'pending';index" json:"status"`
	TotalPrice         float64        `gorm:"not null" json:"total_price"`
	Paid               bool           `gorm:"not null;default:false" json:"paid"`
	PaymentStatus      string         `gorm:"not null;default:'Unpaid'" json:"payment_status"`
	ExtensionRequested bool           `gorm:"not null;default:false" json:"extension_requested"`
	DueDate            time.Time      `gorm:"not null;index" json:"due_date"`
	CompletionDate     *time.Time     `json:"completion_date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// OrderFile is a client-submitted attachment on an order. The row is the
// source of truth; the blob is cleaned up best-effort on delete.
type OrderFile struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderID          uint           `gorm:"not null;index" json:"order_id"`
	Order            Order          `gorm:"foreignKey:OrderID" json:"-"`
	Filename         string         `gorm:"not null" json:"filename"`
	OriginalFilename string         `gorm:"not null" json:"original_filename"`
	FilePath         string         `gorm:"not null" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderFile model
func (OrderFile) TableName() string {
	return "order_files"
}

// OrderComment is one entry in the flat append-only thread on an order,
// visible to both parties
type OrderComment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	IsAdmin   bool           `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderComment model
func (OrderComment) TableName() string {
	return "order_comments"
}

// SupportTicket statuses
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusClosed     = "closed"
)

// SupportTicket direction values. The direction is an explicit field rather
// than being inferred from the subject text.
const (
	TicketClientInitiated = "client_initiated"
	TicketAdminInitiated  = "admin_initiated"
)

// SupportTicket is a triage-able, status-bearing message tied to an order.
// It serves both client-initiated issues (revision, payment confirmation)
// and admin-initiated requests (deadline extension).
type SupportTicket struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Order     Order          `gorm:"foreignKey:OrderID" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Subject   string         `gorm:"not null" json:"subject"`
	Message   string         `gorm:"type:text" json:"message"`
	Direction string         `gorm:"not null;default:'client_initiated'" json:"direction"`
	Status    string         `gorm:"not null;default:'open';index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the SupportTicket model
func (SupportTicket) TableName() string {
	return "support_tickets"
}
