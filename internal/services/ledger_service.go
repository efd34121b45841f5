package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
)

// ErrInvalidPrefix means a code prefix does not start with a known root segment
var ErrInvalidPrefix = errors.New("prefijo de cuenta inválido")

// AccountBalance is the signed balance of one chart account
type AccountBalance struct {
	Code    string             `json:"code"`
	Name    string             `json:"name"`
	Type    models.AccountType `json:"type"`
	Balance decimal.Decimal    `json:"balance"`
	Leaf    bool               `json:"leaf"`
}

// LedgerService answers balance questions straight from the journal
type LedgerService struct {
	ledger   repository.LedgerRepository
	accounts repository.AccountRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledger repository.LedgerRepository, accounts repository.AccountRepository) *LedgerService {
	return &LedgerService{ledger: ledger, accounts: accounts}
}

// SignedBalance applies the normal-balance convention of t to raw sums
func SignedBalance(t models.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

func prefixType(prefix string) (models.AccountType, error) {
	t, ok := models.TypeForRoot[models.RootSegment(prefix)]
	if !ok || prefix == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	return t, nil
}

// BalanceOf sums every line at or below codePrefix posted on or before asOf
// (all time when asOf is nil), signed by the type of the prefix's root.
func (s *LedgerService) BalanceOf(ctx context.Context, tenantID, codePrefix string, asOf *time.Time) (decimal.Decimal, error) {
	return s.BalanceBetween(ctx, tenantID, codePrefix, nil, asOf)
}

// BalanceBetween is BalanceOf restricted to entries dated within [from, to]
func (s *LedgerService) BalanceBetween(ctx context.Context, tenantID, codePrefix string, from, to *time.Time) (decimal.Decimal, error) {
	t, err := prefixType(codePrefix)
	if err != nil {
		return decimal.Zero, err
	}
	sums, err := s.ledger.SumByPrefix(ctx, tenantID, codePrefix, from, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s: %w", codePrefix, err)
	}
	return SignedBalance(t, sums.Debit, sums.Credit), nil
}

// AccountBalances returns the balance of every chart account over [from, to].
// Parent balances roll up their descendants.
func (s *LedgerService) AccountBalances(ctx context.Context, tenantID string, from, to *time.Time) ([]AccountBalance, error) {
	accounts, err := s.accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return []AccountBalance{}, nil
	}
	sums, err := s.ledger.SumByAccount(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum accounts: %w", err)
	}

	hasChildren := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if a.ParentCode != nil {
			hasChildren[*a.ParentCode] = true
		}
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		debit, credit := decimal.Zero, decimal.Zero
		for _, row := range sums {
			if models.CodeHasPrefix(row.AccountCode, a.Code) {
				debit = debit.Add(row.Debit)
				credit = credit.Add(row.Credit)
			}
		}
		balances = append(balances, AccountBalance{
			Code:    a.Code,
			Name:    a.Name,
			Type:    a.Type,
			Balance: SignedBalance(a.Type, debit, credit),
			Leaf:    !hasChildren[a.Code],
		})
	}
	return balances, nil
}

// HasActivity reports whether the tenant has posted any entry
func (s *LedgerService) HasActivity(ctx context.Context, tenantID string) (bool, error) {
	count, err := s.ledger.CountByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Entries lists posted entries matching query
func (s *LedgerService) Entries(ctx context.Context, query *repository.EntryQuery) ([]models.JournalEntry, int64, error) {
	return s.ledger.List(ctx, query)
}

// Entry returns one posted entry with its lines
func (s *LedgerService) Entry(ctx context.Context, tenantID, id string) (*models.JournalEntry, error) {
	entry, err := s.ledger.FindByID(ctx, tenantID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}
