package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
)

// StatementService derives the Balance General and the Estado de Resultados
// from ledger balances. Unseeded or empty tenants get all-zero reports.
type StatementService struct {
	ledger *LedgerService
	now    func() time.Time
}

// NewStatementService creates a new statement service
func NewStatementService(ledger *LedgerService) *StatementService {
	return &StatementService{ledger: ledger, now: time.Now}
}

// GetBalanceGeneral builds the balance sheet as of asOf (now when nil).
// NetIncome is the income statement up to the same date, so a balanced
// ledger always satisfies Assets == Liabilities + Equity + NetIncome.
func (s *StatementService) GetBalanceGeneral(ctx context.Context, tenantID string, asOf *time.Time) (*models.BalanceGeneral, error) {
	report := &models.BalanceGeneral{
		AsOf:        asOf,
		Assets:      []models.StatementLine{},
		Liabilities: []models.StatementLine{},
		Equity:      []models.StatementLine{},
		Totals:      zeroTotals(),
		Balanced:    true,
		GeneratedAt: s.now(),
	}

	balances, err := s.ledger.AccountBalances(ctx, tenantID, nil, asOf)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		report.CurrentAssets = decimal.Zero
		report.CurrentLiabilities = decimal.Zero
		return report, nil
	}

	for _, b := range balances {
		if !b.Leaf {
			continue
		}
		line := models.StatementLine{Code: b.Code, Name: b.Name, Balance: b.Balance}
		switch b.Type {
		case models.AccountTypeAsset:
			report.Assets = append(report.Assets, line)
		case models.AccountTypeLiability:
			report.Liabilities = append(report.Liabilities, line)
		case models.AccountTypeEquity:
			report.Equity = append(report.Equity, line)
		}
	}

	sums, err := s.balances(ctx, tenantID, nil, asOf,
		PrefixAssets, PrefixLiabilities, PrefixEquity, PrefixCurrentAssets, PrefixCurrentLiabilities)
	if err != nil {
		return nil, err
	}

	results, err := s.GetEstadoResultados(ctx, tenantID, models.Period{To: asOf})
	if err != nil {
		return nil, fmt.Errorf("failed to derive net income: %w", err)
	}

	report.Totals = models.BalanceTotals{
		Assets:      sums[PrefixAssets],
		Liabilities: sums[PrefixLiabilities],
		Equity:      sums[PrefixEquity],
		NetIncome:   results.NetIncome,
	}
	report.CurrentAssets = sums[PrefixCurrentAssets]
	report.CurrentLiabilities = sums[PrefixCurrentLiabilities]
	report.Balanced = report.Totals.Assets.Equal(
		report.Totals.Liabilities.Add(report.Totals.Equity).Add(report.Totals.NetIncome))
	return report, nil
}

// GetEstadoResultados builds the income statement for period.
// GrossProfit = revenue - COGS; NetIncome = GrossProfit - operating expenses,
// where operating expenses are every expense account outside COGS.
func (s *StatementService) GetEstadoResultados(ctx context.Context, tenantID string, period models.Period) (*models.EstadoResultados, error) {
	if period.From != nil && period.To != nil && period.From.After(*period.To) {
		return nil, ErrInvalidPeriod
	}

	report := &models.EstadoResultados{
		Period:  period,
		Revenue: models.RevenueSummary{Total: decimal.Zero, Lines: []models.StatementLine{}},
		OperatingExpenses: models.OperatingExpenses{
			Total:      decimal.Zero,
			ByCategory: map[string]decimal.Decimal{},
		},
		COGS:         decimal.Zero,
		GrossProfit:  decimal.Zero,
		Depreciation: decimal.Zero,
		NetIncome:    decimal.Zero,
		GeneratedAt:  s.now(),
	}

	balances, err := s.ledger.AccountBalances(ctx, tenantID, period.From, period.To)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return report, nil
	}

	for _, b := range balances {
		if !b.Leaf {
			continue
		}
		switch {
		case b.Type == models.AccountTypeRevenue:
			report.Revenue.Lines = append(report.Revenue.Lines, models.StatementLine{Code: b.Code, Name: b.Name, Balance: b.Balance})
		case b.Type == models.AccountTypeExpense && !models.CodeHasPrefix(b.Code, PrefixCOGS):
			report.OperatingExpenses.ByCategory[b.Name] = report.OperatingExpenses.ByCategory[b.Name].Add(b.Balance)
		}
	}

	sums, err := s.balances(ctx, tenantID, period.From, period.To,
		PrefixRevenue, PrefixExpenses, PrefixCOGS, CodeDepreciation)
	if err != nil {
		return nil, err
	}

	report.Revenue.Total = sums[PrefixRevenue]
	report.COGS = sums[PrefixCOGS]
	report.Depreciation = sums[CodeDepreciation]
	report.OperatingExpenses.Total = sums[PrefixExpenses].Sub(report.COGS)
	report.GrossProfit = report.Revenue.Total.Sub(report.COGS)
	report.NetIncome = report.GrossProfit.Sub(report.OperatingExpenses.Total)
	return report, nil
}

func (s *StatementService) balances(ctx context.Context, tenantID string, from, to *time.Time, prefixes ...string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(prefixes))
	for _, p := range prefixes {
		b, err := s.ledger.BalanceBetween(ctx, tenantID, p, from, to)
		if err != nil {
			return nil, err
		}
		out[p] = b
	}
	return out, nil
}

func zeroTotals() models.BalanceTotals {
	return models.BalanceTotals{
		Assets:      decimal.Zero,
		Liabilities: decimal.Zero,
		Equity:      decimal.Zero,
		NetIncome:   decimal.Zero,
	}
}
