package models

import "time"

// Tenant is a business using the ledger. Its API key is stored only as a bcrypt hash.
type Tenant struct {
	ID         string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(200);not null" json:"name"`
	APIKeyHash string    `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}
