package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// legError is a leg-rule rejection; the poster wraps it into a *PostingError
type legError string

func (e legError) Error() string { return string(e) }

func errf(format string, args ...any) error {
	return legError(fmt.Sprintf(format, args...))
}

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return errf("%s must be greater than zero, got %s", field, v.String())
	}
	return requireCents(field, v)
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return errf("%s must not be negative, got %s", field, v.String())
	}
	return requireCents(field, v)
}

func requireCents(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(2)) {
		return errf("%s has more than two decimal places: %s", field, v.String())
	}
	return nil
}

// PostingService is the journal poster: one balanced entry per business event
type PostingService struct {
	repos   *repository.Repositories
	taxRate decimal.Decimal
	audit   *AuditService
	now     func() time.Time
}

// NewPostingService creates a poster using taxRate when an event carries none
func NewPostingService(repos *repository.Repositories, taxRate decimal.Decimal, audit *AuditService) *PostingService {
	return &PostingService{repos: repos, taxRate: taxRate, audit: audit, now: time.Now}
}

// TaxRate returns the default sales tax rate
func (s *PostingService) TaxRate() decimal.Decimal {
	return s.taxRate
}

func (s *PostingService) PostSale(ctx context.Context, tenantID string, e SaleEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostPayment(ctx context.Context, tenantID string, e PaymentEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostPurchase(ctx context.Context, tenantID string, e PurchaseEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostExpense(ctx context.Context, tenantID string, e ExpenseEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostCashIn(ctx context.Context, tenantID string, e CashInEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostCashOut(ctx context.Context, tenantID string, e CashOutEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

func (s *PostingService) PostReturn(ctx context.Context, tenantID string, e ReturnEvent) (*models.JournalEntry, error) {
	return s.Post(ctx, tenantID, e)
}

// Post builds, checks and stores the entry for ev. Any rejection is a
// *PostingError and nothing is written. Storage failures are returned
// wrapped and are never retried here.
func (s *PostingService) Post(ctx context.Context, tenantID string, ev Event) (*models.JournalEntry, error) {
	entry, err := s.PostWith(ctx, s.repos, tenantID, ev)
	if err != nil {
		return nil, err
	}
	s.recordPosted(ctx, entry)
	return entry, nil
}

// PostWith is Post against an explicit set of repositories, so callers can
// post inside their own unit of work. The caller audits after commit.
func (s *PostingService) PostWith(ctx context.Context, repos *repository.Repositories, tenantID string, ev Event) (*models.JournalEntry, error) {
	entry, err := s.Build(tenantID, ev)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	codes := entry.AccountCodes()
	existing, err := repos.Account.ExistingCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account codes: %w", err)
	}
	var unknown []string
	for _, c := range codes {
		if !existing[c] {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return nil, s.reject(ctx, postingErrorf(ev.Source(), entry.SourceRef, "unknown account code %s", strings.Join(unknown, ", ")))
	}

	if err := repos.Ledger.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to store journal entry: %w", err)
	}
	return entry, nil
}

func (s *PostingService) recordPosted(ctx context.Context, entry *models.JournalEntry) {
	total, _ := entry.Totals()
	logger.FromContext(ctx).Info("[PostingService] entry posted",
		"tenant_id", entry.TenantID, "entry_id", entry.ID, "source_type", entry.SourceType,
		"source_ref", entry.SourceRef, "amount", total.StringFixed(2))
	s.audit.Record(ctx, entry.TenantID, models.AuditActionPost, "JournalEntry", entry.ID,
		fmt.Sprintf("%s %s por %s", entry.SourceType, entry.SourceRef, total.StringFixed(2)))
}

// Build turns ev into a checked entry without touching storage
func (s *PostingService) Build(tenantID string, ev Event) (*models.JournalEntry, error) {
	meta := ev.meta()
	source := ev.Source()

	lines, err := ev.legs(s.taxRate)
	if err != nil {
		var le legError
		if errors.As(err, &le) {
			return nil, postingErrorf(source, meta.Reference, "%s", le.Error())
		}
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry id: %w", err)
	}

	date := meta.Date
	if date.IsZero() {
		date = s.now()
	}
	description := meta.Description
	if description == "" {
		description = defaultDescription(source, meta.Reference)
	}

	entry := &models.JournalEntry{
		ID:          id.String(),
		TenantID:    tenantID,
		EntryDate:   date.UTC(),
		SourceType:  source,
		SourceRef:   meta.Reference,
		Description: description,
		Lines:       lines,
	}
	if err := CheckBalanced(entry); err != nil {
		return nil, postingErrorf(source, meta.Reference, "%s", err.Error())
	}
	return entry, nil
}

// CheckBalanced verifies the entry-level rules: at least two lines,
// one non-negative side per line, and equal debit and credit totals.
func CheckBalanced(entry *models.JournalEntry) error {
	if len(entry.Lines) < 2 {
		return fmt.Errorf("entry needs at least 2 lines, has %d", len(entry.Lines))
	}
	for i, l := range entry.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d (%s) has a negative side", i, l.AccountCode)
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return fmt.Errorf("line %d (%s) must have exactly one non-zero side", i, l.AccountCode)
		}
	}
	debit, credit := entry.Totals()
	if !debit.Equal(credit) {
		return fmt.Errorf("debits %s != credits %s", debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

func (s *PostingService) reject(ctx context.Context, err error) error {
	var pe *PostingError
	if errors.As(err, &pe) {
		logger.FromContext(ctx).Error("[PostingService] posting rejected",
			"source_type", pe.SourceType, "source_ref", pe.SourceRef, "reason", pe.Reason)
		captureError(ctx, err)
	}
	return err
}

var sourceLabels = map[models.SourceType]string{
	models.SourceSale:     "Venta",
	models.SourcePayment:  "Abono a cuenta por cobrar",
	models.SourcePurchase: "Compra de inventario",
	models.SourceExpense:  "Gasto",
	models.SourceCashIn:   "Entrada de efectivo",
	models.SourceCashOut:  "Salida de efectivo",
	models.SourceReturn:   "Devolución",
}

func defaultDescription(source models.SourceType, ref string) string {
	label := sourceLabels[source]
	if ref == "" {
		return label
	}
	return label + " " + ref
}
