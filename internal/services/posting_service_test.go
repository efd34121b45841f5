package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineMap indexes an entry's lines by account code as "D:<amount>" / "C:<amount>"
func lineMap(entry *models.JournalEntry) map[string]string {
	out := map[string]string{}
	for _, l := range entry.Lines {
		if l.Debit.IsPositive() {
			out[l.AccountCode] = "D:" + l.Debit.StringFixed(2)
		} else {
			out[l.AccountCode] = "C:" + l.Credit.StringFixed(2)
		}
	}
	return out
}

func requireBalanced(t *testing.T, entry *models.JournalEntry) {
	t.Helper()
	debit, credit := entry.Totals()
	require.True(t, debit.Equal(credit), "debit %s != credit %s", debit, credit)
}

func TestPostingService_Sale_WithTaxAndCost(t *testing.T) {
	env := seededEnv("t1")

	entry, err := env.poster.PostSale(context.Background(), "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-001"},
		Amount:    d("1000"),
		Cost:      d("600"),
		Method:    models.MethodCash,
	})
	require.NoError(t, err)
	requireBalanced(t, entry)

	assert.Equal(t, map[string]string{
		CodeCash:            "D:1150.00",
		CodeSalesRevenue:    "C:1000.00",
		CodeSalesTaxPayable: "C:150.00",
		CodeCOGS:            "D:600.00",
		CodeInventory:       "C:600.00",
	}, lineMap(entry))
	assert.Equal(t, models.SourceSale, entry.SourceType)
	assert.Equal(t, "V-001", entry.SourceRef)
	assert.Equal(t, "Venta V-001", entry.Description)
	assert.Equal(t, 1, env.store.entryCount())
}

func TestPostingService_Sale_MethodSelectsDebitAccount(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	zero := decimal.Zero
	for method, code := range map[models.PaymentMethod]string{
		models.MethodCash:   CodeCash,
		models.MethodCard:   CodeBank,
		models.MethodCredit: CodeReceivable,
	} {
		entry, err := env.poster.PostSale(ctx, "t1", SaleEvent{Amount: d("200"), Method: method, TaxRate: &zero})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{code: "D:200.00", CodeSalesRevenue: "C:200.00"}, lineMap(entry), method)
	}
}

func TestPostingService_TaxRounding(t *testing.T) {
	assert.Equal(t, "15.00", ComputeTax(d("99.99"), d("0.15")).StringFixed(2))
	assert.Equal(t, "0.15", ComputeTax(d("0.99"), d("0.15")).StringFixed(2))
	assert.Equal(t, "1.50", ComputeTax(d("10"), d("0.15")).StringFixed(2))
}

func TestPostingService_EveryEventBalances(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	events := []Event{
		SaleEvent{Amount: d("99.99"), Cost: d("40.10"), Method: models.MethodCard},
		PaymentEvent{Amount: d("300"), Method: models.MethodCash},
		PurchaseEvent{Amount: d("800"), Method: models.MethodCredit},
		ExpenseEvent{Amount: d("120.50"), Category: ExpenseUtilities, Method: models.MethodCard},
		CashInEvent{Amount: d("1000"), Kind: CashInOwnerContribution},
		CashOutEvent{Amount: d("50"), Kind: CashOutMiscExpense},
		ReturnEvent{Amount: d("99.99"), Cost: d("40.10"), Method: models.MethodCard},
	}
	for _, ev := range events {
		entry, err := env.poster.Post(ctx, "t1", ev)
		require.NoError(t, err, ev.Source())
		assert.GreaterOrEqual(t, len(entry.Lines), 2)
		requireBalanced(t, entry)
		assert.NoError(t, CheckBalanced(entry))
	}
	assert.Equal(t, len(events), env.store.entryCount())
}

func TestPostingService_LegRules(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want map[string]string
	}{
		{"payment by card", PaymentEvent{Amount: d("50"), Method: models.MethodCard},
			map[string]string{CodeBank: "D:50.00", CodeReceivable: "C:50.00"}},
		{"purchase on credit", PurchaseEvent{Amount: d("800"), Method: models.MethodCredit},
			map[string]string{CodeInventory: "D:800.00", CodePayable: "C:800.00"}},
		{"purchase in cash", PurchaseEvent{Amount: d("80"), Method: models.MethodCash},
			map[string]string{CodeInventory: "D:80.00", CodeCash: "C:80.00"}},
		{"rent owed", ExpenseEvent{Amount: d("900"), Category: ExpenseRent, Method: models.MethodCredit},
			map[string]string{CodeRent: "D:900.00", CodePayable: "C:900.00"}},
		{"depreciation", ExpenseEvent{Amount: d("75"), Category: ExpenseDepreciation, Method: models.MethodCash},
			map[string]string{CodeDepreciation: "D:75.00", CodeCash: "C:75.00"}},
		{"cash in misc", CashInEvent{Amount: d("10"), Kind: CashInMiscIncome},
			map[string]string{CodeCash: "D:10.00", CodeMiscIncome: "C:10.00"}},
		{"owner withdrawal", CashOutEvent{Amount: d("10"), Kind: CashOutOwnerWithdrawal},
			map[string]string{CodeOwnerContribution: "D:10.00", CodeCash: "C:10.00"}},
		{"return inverts sale", ReturnEvent{Amount: d("1000"), Cost: d("600"), Method: models.MethodCredit},
			map[string]string{
				CodeSalesRevenue:    "D:1000.00",
				CodeSalesTaxPayable: "D:150.00",
				CodeReceivable:      "C:1150.00",
				CodeInventory:       "D:600.00",
				CodeCOGS:            "C:600.00",
			}},
	}

	poster := NewPostingService(nil, d("0.15"), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := poster.Build("t1", tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lineMap(entry))
		})
	}
}

func TestPostingService_RejectsInvalidEvents(t *testing.T) {
	tests := []struct {
		name   string
		ev     Event
		reason string
	}{
		{"zero sale", SaleEvent{Amount: decimal.Zero, Method: models.MethodCash}, "amount must be greater than zero"},
		{"negative purchase", PurchaseEvent{Amount: d("-5"), Method: models.MethodCash}, "amount must be greater than zero"},
		{"negative cost", SaleEvent{Amount: d("10"), Cost: d("-1"), Method: models.MethodCash}, "cost must not be negative"},
		{"sub-cent amount", SaleEvent{Amount: d("10.005"), Method: models.MethodCash}, "more than two decimal places"},
		{"unknown method", SaleEvent{Amount: d("10"), Method: "BARTER"}, "unknown payment method"},
		{"credit cannot settle receivable", PaymentEvent{Amount: d("10"), Method: models.MethodCredit}, "cannot settle a receivable"},
		{"unknown category", ExpenseEvent{Amount: d("10"), Category: "TRAVEL", Method: models.MethodCash}, "unknown expense category"},
		{"unknown cash-in kind", CashInEvent{Amount: d("10"), Kind: "GIFT"}, "unknown cash-in kind"},
		{"unknown cash-out kind", CashOutEvent{Amount: d("10"), Kind: "LOAN"}, "unknown cash-out kind"},
	}

	env := seededEnv("t1")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := env.poster.Post(context.Background(), "t1", tt.ev)
			assert.Nil(t, entry)

			var pe *PostingError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.ev.Source(), pe.SourceType)
			assert.Contains(t, pe.Reason, tt.reason)
		})
	}
	assert.Zero(t, env.store.entryCount())
}

func TestPostingService_UnknownAccountCode(t *testing.T) {
	env := newTestEnv() // chart never seeded

	entry, err := env.poster.PostSale(context.Background(), "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-9"},
		Amount:    d("100"),
		Method:    models.MethodCash,
	})
	assert.Nil(t, entry)
	require.True(t, IsPostingError(err))
	assert.Contains(t, err.Error(), "unknown account code")
	assert.Contains(t, err.Error(), CodeCash)
	assert.Zero(t, env.store.entryCount())
}

func TestPostingService_StorageFailureIsNotPostingError(t *testing.T) {
	env := seededEnv("t1")
	env.store.failLedgerCreate = errors.New("connection reset")

	_, err := env.poster.PostCashIn(context.Background(), "t1", CashInEvent{Amount: d("10"), Kind: CashInMiscIncome})
	require.Error(t, err)
	assert.False(t, IsPostingError(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPostingService_UsesEventDate(t *testing.T) {
	env := seededEnv("t1")
	at := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)

	entry, err := env.poster.PostExpense(context.Background(), "t1", ExpenseEvent{
		EventMeta: EventMeta{Date: at, Description: "Alquiler febrero"},
		Amount:    d("500"),
		Category:  ExpenseRent,
		Method:    models.MethodCash,
	})
	require.NoError(t, err)
	assert.True(t, entry.EntryDate.Equal(at))
	assert.Equal(t, "Alquiler febrero", entry.Description)
}

func TestCheckBalanced(t *testing.T) {
	tests := []struct {
		name    string
		lines   []models.JournalLine
		wantErr string
	}{
		{"single line", []models.JournalLine{debit(CodeCash, d("1"))}, "at least 2 lines"},
		{"both sides zero", []models.JournalLine{debit(CodeCash, d("1")), {AccountCode: CodeBank}}, "exactly one non-zero side"},
		{"both sides set", []models.JournalLine{
			{AccountCode: CodeCash, Debit: d("1"), Credit: d("1")}, credit(CodeBank, d("1")),
		}, "exactly one non-zero side"},
		{"negative", []models.JournalLine{debit(CodeCash, d("-1")), credit(CodeBank, d("-1"))}, "negative side"},
		{"unbalanced", []models.JournalLine{debit(CodeCash, d("10")), credit(CodeBank, d("9.99"))}, "debits 10.00 != credits 9.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBalanced(&models.JournalEntry{Lines: tt.lines})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
