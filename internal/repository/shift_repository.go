package repository

import (
	"context"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShiftRepository defines the interface for cashier shift data access
type ShiftRepository interface {
	Create(ctx context.Context, shift *models.Shift) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Shift, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*models.Shift, error)
	Update(ctx context.Context, shift *models.Shift) error
	ListClosed(ctx context.Context, tenantID string, limit int) ([]models.Shift, error)
	List(ctx context.Context, tenantID string, query *ListQuery) ([]models.Shift, int64, error)
}

type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new shift repository
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Shift, error) {
	var shift models.Shift
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends
func (r *shiftRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	return r.db.WithContext(ctx).Save(shift).Error
}

// ListClosed returns the most recently closed shifts, newest first
func (r *shiftRepository) ListClosed(ctx context.Context, tenantID string, limit int) ([]models.Shift, error) {
	var shifts []models.Shift
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, models.ShiftStatusClosed).
		Order("closed_at DESC").
		Limit(limit).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepository) List(ctx context.Context, tenantID string, query *ListQuery) ([]models.Shift, int64, error) {
	var shifts []models.Shift
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Shift{}).Where("tenant_id = ?", tenantID)
	if status, ok := query.Filters["status"]; ok && status != "" {
		db = db.Where("status = ?", status)
	}
	if cashier, ok := query.Filters["cashier_id"]; ok && cashier != "" {
		db = db.Where("cashier_id = ?", cashier)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.paginate(db).Order("opened_at DESC").Find(&shifts).Error
	return shifts, total, err
}
