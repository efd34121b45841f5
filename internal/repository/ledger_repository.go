package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository defines the interface for journal data access.
// There is no Update or Delete: the journal is append-only.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	FindByID(ctx context.Context, tenantID, id string) (*models.JournalEntry, error)
	List(ctx context.Context, query *EntryQuery) ([]models.JournalEntry, int64, error)
	SumByPrefix(ctx context.Context, tenantID, prefix string, from, to *time.Time) (Sums, error)
	SumByAccount(ctx context.Context, tenantID string, from, to *time.Time) ([]AccountSums, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

// Sums is the raw debit and credit total of a set of journal lines
type Sums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// AccountSums is Sums for a single account code
type AccountSums struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// EntryQuery filters journal entry listings
type EntryQuery struct {
	*ListQuery
	TenantID   string
	SourceType models.SourceType
	SourceRef  string
	From       *time.Time
	To         *time.Time
}

// NewEntryQuery creates an EntryQuery with default pagination
func NewEntryQuery(tenantID string) *EntryQuery {
	return &EntryQuery{ListQuery: NewListQuery(), TenantID: tenantID}
}

// ledgerRepository handles database operations for journal entries
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create writes the entry header and all of its lines in one transaction
func (r *ledgerRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := entry.Lines
		entry.Lines = nil
		if err := tx.Create(entry).Error; err != nil {
			entry.Lines = lines
			return err
		}
		for i := range lines {
			lines[i].EntryID = entry.ID
		}
		entry.Lines = lines
		return tx.Create(&entry.Lines).Error
	})
}

func (r *ledgerRepository) FindByID(ctx context.Context, tenantID, id string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) List(ctx context.Context, query *EntryQuery) ([]models.JournalEntry, int64, error) {
	var entries []models.JournalEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.JournalEntry{}).Where("tenant_id = ?", query.TenantID)
	if query.SourceType != "" {
		db = db.Where("source_type = ?", query.SourceType)
	}
	if query.SourceRef != "" {
		db = db.Where("source_ref = ?", query.SourceRef)
	}
	if query.From != nil {
		db = db.Where("entry_date >= ?", *query.From)
	}
	if query.To != nil {
		db = db.Where("entry_date <= ?", *query.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.paginate(db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("entry_date DESC, created_at DESC").
		Find(&entries).Error
	return entries, total, err
}

// linesBetween joins lines to their entries and applies the tenant and date window
func (r *ledgerRepository) linesBetween(ctx context.Context, tenantID string, from, to *time.Time) *gorm.DB {
	db := r.db.WithContext(ctx).
		Table("journal_lines AS l").
		Joins("JOIN journal_entries AS e ON e.id = l.entry_id").
		Where("e.tenant_id = ?", tenantID)
	if from != nil {
		db = db.Where("e.entry_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("e.entry_date <= ?", *to)
	}
	return db
}

// SumByPrefix totals every line whose code is prefix or lies beneath it
func (r *ledgerRepository) SumByPrefix(ctx context.Context, tenantID, prefix string, from, to *time.Time) (Sums, error) {
	var result struct {
		Debit  decimal.Decimal
		Credit decimal.Decimal
	}
	err := r.linesBetween(ctx, tenantID, from, to).
		Select("COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit").
		Where("(l.account_code = ? OR l.account_code LIKE ?)", prefix, escapeLike(prefix)+".%").
		Scan(&result).Error
	if err != nil {
		return Sums{}, err
	}
	return Sums{Debit: result.Debit, Credit: result.Credit}, nil
}

func (r *ledgerRepository) SumByAccount(ctx context.Context, tenantID string, from, to *time.Time) ([]AccountSums, error) {
	var rows []AccountSums
	err := r.linesBetween(ctx, tenantID, from, to).
		Select("l.account_code AS account_code, COALESCE(SUM(l.debit), 0) AS debit, COALESCE(SUM(l.credit), 0) AS credit").
		Group("l.account_code").
		Order("l.account_code ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *ledgerRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}
