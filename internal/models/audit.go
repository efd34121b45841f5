package models

import (
	"time"
)

// Audit action constants
const (
	AuditActionPost  = "POST"
	AuditActionSeed  = "SEED"
	AuditActionOpen  = "OPEN"
	AuditActionClose = "CLOSE"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	Actor     string    `gorm:"size:64" json:"actor"`
	Action    string    `gorm:"size:50;not null" json:"action"` // POST, SEED, OPEN, CLOSE
	Entity    string    `gorm:"size:50;not null" json:"entity"` // JournalEntry, Chart, Shift
	EntityID  string    `gorm:"size:64" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
