package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shift status constants
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// ShiftClassification grades the cash reconciliation of a closed shift
type ShiftClassification string

const (
	ShiftPerfect ShiftClassification = "PERFECT"
	ShiftWarning ShiftClassification = "WARNING"
	ShiftAlert   ShiftClassification = "ALERT"
)

// Shift is a cashier's open-to-close session. Only the cashier who opened it
// may close it, and only once.
type Shift struct {
	ID             string               `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       string               `gorm:"type:varchar(64);not null;index:idx_shifts_tenant_closed,priority:1" json:"tenant_id"`
	CashierID      string               `gorm:"type:varchar(64);not null;index" json:"cashier_id"`
	InitialCash    decimal.Decimal      `gorm:"type:decimal(18,2);not null" json:"initial_cash"`
	CashTotal      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"cash_total"`
	CardTotal      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"card_total"`
	CreditTotal    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"credit_total"`
	ManualIn       decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"manual_in"`
	ManualOut      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0" json:"manual_out"`
	ExpectedCash   *decimal.Decimal     `gorm:"type:decimal(18,2)" json:"expected_cash,omitempty"`
	DeclaredCash   *decimal.Decimal     `gorm:"type:decimal(18,2)" json:"declared_cash,omitempty"`
	Difference     *decimal.Decimal     `gorm:"type:decimal(18,2)" json:"difference,omitempty"`
	Status         string               `gorm:"type:varchar(16);not null;default:open;index" json:"status"`
	Classification *ShiftClassification `gorm:"type:varchar(16)" json:"classification,omitempty"`
	OpenedAt       time.Time            `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time           `gorm:"index:idx_shifts_tenant_closed,priority:2" json:"closed_at,omitempty"`
}

// TableName specifies the table name for Shift
func (Shift) TableName() string {
	return "shifts"
}

// MayClose returns true if the shift can transition to closed
func (s *Shift) MayClose() bool {
	return s.Status == ShiftStatusOpen
}

// ComputeExpectedCash is the cash that should be in the drawer at close:
// initial float plus cash sales plus manual entries minus manual withdrawals.
func (s *Shift) ComputeExpectedCash() decimal.Decimal {
	return s.InitialCash.Add(s.CashTotal).Add(s.ManualIn).Sub(s.ManualOut)
}

// Classify grades a cash difference against the theft threshold
func Classify(difference, theftThreshold decimal.Decimal) ShiftClassification {
	switch {
	case difference.IsZero():
		return ShiftPerfect
	case difference.Abs().GreaterThan(theftThreshold):
		return ShiftAlert
	default:
		return ShiftWarning
	}
}

// Reconcile stamps the close-time figures on the shift: expected cash,
// the declared count, their difference and its classification.
func (s *Shift) Reconcile(declared, theftThreshold decimal.Decimal) {
	expected := s.ComputeExpectedCash()
	diff := declared.Sub(expected)
	class := Classify(diff, theftThreshold)
	s.ExpectedCash = &expected
	s.DeclaredCash = &declared
	s.Difference = &diff
	s.Classification = &class
}
