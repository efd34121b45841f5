package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicateSale means the tenant already recorded a sale with that reference
var ErrDuplicateSale = errors.New("sale reference already exists for tenant")

// SaleRepository defines the interface for sales history data access
type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	FindByReference(ctx context.Context, tenantID, reference string) (*models.Sale, error)
	MarkReturned(ctx context.Context, sale *models.Sale) error
	SumBetween(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error)
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *models.Sale) error {
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		if isDuplicateKeyError(err, "idx_sales_tenant_ref") {
			return ErrDuplicateSale
		}
		return err
	}
	return nil
}

func (r *saleRepository) FindByReference(ctx context.Context, tenantID, reference string) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND reference = ?", tenantID, reference).First(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// MarkReturned flips a completed sale to returned. It affects zero rows if
// the sale was already returned, which is reported as gorm.ErrRecordNotFound.
func (r *saleRepository) MarkReturned(ctx context.Context, sale *models.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ? AND status = ?", sale.ID, models.SaleStatusCompleted).
		Update("status", models.SaleStatusReturned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	sale.Status = models.SaleStatusReturned
	return nil
}

// SumBetween totals completed sales (tax included) sold in [from, to]
func (r *saleRepository) SumBetween(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("tenant_id = ? AND status = ? AND sold_at >= ? AND sold_at <= ?", tenantID, models.SaleStatusCompleted, from, to).
		Scan(&result).Error
	return result.Total, err
}
