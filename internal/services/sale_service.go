package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/statemachine"
)

// SaleService records sales history together with their journal entries
type SaleService struct {
	tx     repository.Transactor
	poster *PostingService
	now    func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(tx repository.Transactor, poster *PostingService) *SaleService {
	return &SaleService{tx: tx, poster: poster, now: time.Now}
}

// RecordSale posts the sale entry and stores the sales history row in one
// unit of work. Either both exist afterwards or neither does.
func (s *SaleService) RecordSale(ctx context.Context, tenantID string, e SaleEvent) (*models.Sale, *models.JournalEntry, error) {
	if e.Reference == "" {
		return nil, nil, postingErrorf(models.SourceSale, "", "sale reference is required")
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}

	var sale *models.Sale
	var entry *models.JournalEntry
	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		posted, err := s.poster.PostWith(ctx, repos, tenantID, e)
		if err != nil {
			return err
		}

		rate, err := resolveRate(e.TaxRate, s.poster.TaxRate())
		if err != nil {
			return err
		}
		tax := ComputeTax(e.Amount, rate)
		record := &models.Sale{
			TenantID:  tenantID,
			Reference: e.Reference,
			Subtotal:  e.Amount,
			Tax:       tax,
			Total:     e.Amount.Add(tax),
			Cost:      e.Cost,
			Method:    e.Method,
			Status:    models.SaleStatusCompleted,
			EntryID:   posted.ID,
			SoldAt:    e.Date,
		}
		if err := repos.Sale.Create(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicateSale) {
				return fmt.Errorf("%w: sale %s", ErrDuplicate, e.Reference)
			}
			return fmt.Errorf("failed to record sale: %w", err)
		}
		sale, entry = record, posted
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.poster.recordPosted(ctx, entry)
	return sale, entry, nil
}

// ReturnSale reverses a recorded sale in full: the exact inverse entry,
// tax included, and the sale leaves the trailing volume.
func (s *SaleService) ReturnSale(ctx context.Context, tenantID, reference string, meta EventMeta) (*models.Sale, *models.JournalEntry, error) {
	var sale *models.Sale
	var entry *models.JournalEntry
	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		found, err := repos.Sale.FindByReference(ctx, tenantID, reference)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := statemachine.NewSaleFSM(found).Return(ctx); err != nil {
			return ErrSaleReturned
		}

		if meta.Reference == "" {
			meta.Reference = reference
		}
		tax := found.Tax
		posted, err := s.poster.PostWith(ctx, repos, tenantID, ReturnEvent{
			EventMeta: meta,
			Amount:    found.Subtotal,
			Cost:      found.Cost,
			Method:    found.Method,
			Tax:       &tax,
		})
		if err != nil {
			return err
		}

		if err := repos.Sale.MarkReturned(ctx, found); err != nil {
			if repository.IsNotFound(err) {
				return ErrSaleReturned
			}
			return fmt.Errorf("failed to mark sale returned: %w", err)
		}
		sale, entry = found, posted
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.poster.recordPosted(ctx, entry)
	return sale, entry, nil
}
