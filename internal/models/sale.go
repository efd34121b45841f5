package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer settled (or deferred) a sale
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodCard   PaymentMethod = "CARD"
	MethodCredit PaymentMethod = "CREDIT"
)

// Sale status constants
const (
	SaleStatusCompleted = "completed"
	SaleStatusReturned  = "returned"
)

// Sale is the POS sales history row read by the volume factor of the score.
// It is recorded alongside, not derived from, the sale's journal entry.
type Sale struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TenantID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_sales_tenant_ref,priority:1;index:idx_sales_tenant_sold,priority:1" json:"tenant_id"`
	Reference string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_sales_tenant_ref,priority:2" json:"reference"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"`
	Tax       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	Cost      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cost"`
	Method    PaymentMethod   `gorm:"type:varchar(16);not null" json:"method"`
	Status    string          `gorm:"type:varchar(16);not null;default:completed" json:"status"`
	EntryID   string          `gorm:"type:uuid" json:"entry_id"`
	SoldAt    time.Time       `gorm:"not null;index:idx_sales_tenant_sold,priority:2" json:"sold_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for Sale
func (Sale) TableName() string {
	return "sales"
}

// MayReturn returns true if the sale can still be reversed
func (s *Sale) MayReturn() bool {
	return s.Status == SaleStatusCompleted
}
