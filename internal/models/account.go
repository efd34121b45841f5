package models

import (
	"strings"
	"time"
)

// AccountType classifies an account in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// TypeForRoot maps the first code segment ("1".."5") to its account type
var TypeForRoot = map[string]AccountType{
	"1": AccountTypeAsset,
	"2": AccountTypeLiability,
	"3": AccountTypeEquity,
	"4": AccountTypeRevenue,
	"5": AccountTypeExpense,
}

// DebitNormal reports whether balances of this type grow with debits.
// Assets and expenses are debit-normal; liabilities, equity and revenue are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Valid reports whether t is one of the five account types
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account is one node of a tenant's dot-hierarchical chart of accounts
type Account struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	TenantID   string      `gorm:"type:varchar(64);not null;uniqueIndex:idx_accounts_tenant_code,priority:1" json:"tenant_id"`
	Code       string      `gorm:"type:varchar(32);not null;uniqueIndex:idx_accounts_tenant_code,priority:2" json:"code"`
	Name       string      `gorm:"type:varchar(120);not null" json:"name"`
	Type       AccountType `gorm:"type:varchar(16);not null;index" json:"type"`
	ParentCode *string     `gorm:"type:varchar(32)" json:"parent_code,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

// RootSegment returns the top-level segment of a code: "1.1.01" -> "1"
func RootSegment(code string) string {
	if i := strings.IndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return code
}

// ParentOf returns the parent code, or "" for a root: "1.1.01" -> "1.1"
func ParentOf(code string) string {
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		return code[:i]
	}
	return ""
}

// CodeHasPrefix reports whether code is prefix itself or lies beneath it.
// Matching is segment-aware: "1.1" covers "1.1.01" but not "1.10".
func CodeHasPrefix(code, prefix string) bool {
	return code == prefix || strings.HasPrefix(code, prefix+".")
}
