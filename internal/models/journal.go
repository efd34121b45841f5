package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceType names the business event that produced a journal entry
type SourceType string

const (
	SourceSale     SourceType = "SALE"
	SourcePayment  SourceType = "PAYMENT"
	SourcePurchase SourceType = "PURCHASE"
	SourceExpense  SourceType = "EXPENSE"
	SourceCashIn   SourceType = "CASH_IN"
	SourceCashOut  SourceType = "CASH_OUT"
	SourceReturn   SourceType = "RETURN"
)

// JournalEntry is one balanced, immutable record of a financial event.
// Corrections are new reversing entries; rows are never updated or deleted.
type JournalEntry struct {
	ID          string        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string        `gorm:"type:varchar(64);not null;index:idx_entries_tenant_date,priority:1" json:"tenant_id"`
	EntryDate   time.Time     `gorm:"not null;index:idx_entries_tenant_date,priority:2" json:"date"`
	SourceType  SourceType    `gorm:"type:varchar(16);not null;index" json:"source_type"`
	SourceRef   string        `gorm:"type:varchar(64);not null;index" json:"source_ref"`
	Description string        `gorm:"type:text" json:"description"`
	Lines       []JournalLine `gorm:"foreignKey:EntryID" json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
}

// TableName specifies the table name for JournalEntry
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalLine is one leg of an entry. Exactly one of Debit/Credit is non-zero.
type JournalLine struct {
	ID          uint            `gorm:"primaryKey" json:"-"`
	EntryID     string          `gorm:"type:uuid;not null;index" json:"-"`
	AccountCode string          `gorm:"type:varchar(32);not null;index" json:"account_code"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"debit"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"credit"`
}

// TableName specifies the table name for JournalLine
func (JournalLine) TableName() string {
	return "journal_lines"
}

// Totals returns the debit and credit sums of the entry
func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// AccountCodes returns the distinct account codes referenced by the entry
func (e *JournalEntry) AccountCodes() []string {
	seen := make(map[string]bool, len(e.Lines))
	var codes []string
	for _, l := range e.Lines {
		if !seen[l.AccountCode] {
			seen[l.AccountCode] = true
			codes = append(codes, l.AccountCode)
		}
	}
	return codes
}
