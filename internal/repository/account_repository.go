package repository

import (
	"context"
	"errors"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateAccount means a concurrent writer already inserted the code
var ErrDuplicateAccount = errors.New("account code already exists for tenant")

// AccountRepository defines the interface for chart-of-accounts data access
type AccountRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]models.Account, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
	CreateBatch(ctx context.Context, accounts []models.Account) error
	ExistingCodes(ctx context.Context, tenantID string, codes []string) (map[string]bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts accounts in a single statement
func (r *accountRepository) CreateBatch(ctx context.Context, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&accounts).Error; err != nil {
		if isDuplicateKeyError(err, "idx_accounts_tenant_code") {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// ExistingCodes returns which of codes exist in the tenant's chart
func (r *accountRepository) ExistingCodes(ctx context.Context, tenantID string, codes []string) (map[string]bool, error) {
	found := make(map[string]bool, len(codes))
	if len(codes) == 0 {
		return found, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("tenant_id = ? AND code IN ?", tenantID, codes).
		Pluck("code", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		found[c] = true
	}
	return found, nil
}
