package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/internal/statemachine"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// ErrInvalidAmount means a monetary input is negative or has sub-cent digits
var ErrInvalidAmount = errors.New("monto inválido")

// CloseShiftInput is what the shift monitor supplies when a cashier closes
type CloseShiftInput struct {
	CashTotal    decimal.Decimal
	CardTotal    decimal.Decimal
	CreditTotal  decimal.Decimal
	ManualIn     decimal.Decimal
	ManualOut    decimal.Decimal
	DeclaredCash decimal.Decimal
}

// ShiftService handles the cashier shift lifecycle
type ShiftService struct {
	shifts         repository.ShiftRepository
	tx             repository.Transactor
	audit          *AuditService
	theftThreshold decimal.Decimal
	now            func() time.Time
}

// NewShiftService creates a new shift service
func NewShiftService(shifts repository.ShiftRepository, tx repository.Transactor, audit *AuditService, theftThreshold decimal.Decimal) *ShiftService {
	return &ShiftService{
		shifts:         shifts,
		tx:             tx,
		audit:          audit,
		theftThreshold: theftThreshold,
		now:            time.Now,
	}
}

// Open starts a shift owned by cashierID
func (s *ShiftService) Open(ctx context.Context, tenantID, cashierID string, initialCash decimal.Decimal) (*models.Shift, error) {
	if cashierID == "" {
		return nil, ErrUnauthorized
	}
	if err := checkAmounts(map[string]decimal.Decimal{"initial_cash": initialCash}); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate shift id: %w", err)
	}
	shift := &models.Shift{
		ID:          id.String(),
		TenantID:    tenantID,
		CashierID:   cashierID,
		InitialCash: initialCash,
		CashTotal:   decimal.Zero,
		CardTotal:   decimal.Zero,
		CreditTotal: decimal.Zero,
		ManualIn:    decimal.Zero,
		ManualOut:   decimal.Zero,
		Status:      models.ShiftStatusOpen,
		OpenedAt:    s.now(),
	}
	if err := s.shifts.Create(ctx, shift); err != nil {
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}

	s.audit.Record(ctx, tenantID, models.AuditActionOpen, "Shift", shift.ID, "Fondo inicial "+initialCash.StringFixed(2))
	return shift, nil
}

// Close reconciles and closes a shift. Only the owning cashier may close
// it, and only once; the row is locked for the duration.
func (s *ShiftService) Close(ctx context.Context, tenantID, shiftID, cashierID string, in CloseShiftInput) (*models.Shift, error) {
	if err := checkAmounts(map[string]decimal.Decimal{
		"cash_total":    in.CashTotal,
		"card_total":    in.CardTotal,
		"credit_total":  in.CreditTotal,
		"manual_in":     in.ManualIn,
		"manual_out":    in.ManualOut,
		"declared_cash": in.DeclaredCash,
	}); err != nil {
		return nil, err
	}

	var closed *models.Shift
	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		shift, err := repos.Shift.FindByIDForUpdate(ctx, tenantID, shiftID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if shift.CashierID != cashierID {
			return ErrShiftNotOwned
		}
		if !shift.MayClose() {
			return ErrShiftClosed
		}

		if err := statemachine.NewShiftFSM(shift).Close(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}

		shift.CashTotal = in.CashTotal
		shift.CardTotal = in.CardTotal
		shift.CreditTotal = in.CreditTotal
		shift.ManualIn = in.ManualIn
		shift.ManualOut = in.ManualOut
		shift.Reconcile(in.DeclaredCash, s.theftThreshold)
		closedAt := s.now()
		shift.ClosedAt = &closedAt

		if err := repos.Shift.Update(ctx, shift); err != nil {
			return fmt.Errorf("failed to save shift: %w", err)
		}
		closed = shift
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	if *closed.Classification == models.ShiftAlert {
		log.Warn("[ShiftService] cash difference beyond theft threshold",
			"tenant_id", tenantID, "shift_id", shiftID, "difference", closed.Difference.StringFixed(2))
	} else {
		log.Info("[ShiftService] shift closed", "tenant_id", tenantID, "shift_id", shiftID,
			"classification", *closed.Classification)
	}
	s.audit.Record(ctx, tenantID, models.AuditActionClose, "Shift", closed.ID,
		fmt.Sprintf("%s diferencia %s", *closed.Classification, closed.Difference.StringFixed(2)))
	return closed, nil
}

// Get returns one shift of the tenant
func (s *ShiftService) Get(ctx context.Context, tenantID, shiftID string) (*models.Shift, error) {
	shift, err := s.shifts.FindByID(ctx, tenantID, shiftID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

// List returns the tenant's shifts, newest first
func (s *ShiftService) List(ctx context.Context, tenantID string, query *repository.ListQuery) ([]models.Shift, int64, error) {
	return s.shifts.List(ctx, tenantID, query)
}

func checkAmounts(fields map[string]decimal.Decimal) error {
	for name, v := range fields {
		if v.IsNegative() || !v.Equal(v.Round(2)) {
			return fmt.Errorf("%w: %s %s", ErrInvalidAmount, name, v.String())
		}
	}
	return nil
}
