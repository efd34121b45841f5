package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one account balance on a statement
type StatementLine struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceTotals carries the section totals of the Balance General
type BalanceTotals struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
	NetIncome   decimal.Decimal `json:"net_income"`
}

// BalanceGeneral is the balance sheet as of a date.
// Assets == Liabilities + Equity + NetIncome whenever the ledger is balanced.
type BalanceGeneral struct {
	AsOf        *time.Time      `json:"as_of,omitempty"`
	Assets      []StatementLine `json:"assets"`
	Liabilities []StatementLine `json:"liabilities"`
	Equity      []StatementLine `json:"equity"`
	Totals      BalanceTotals   `json:"totals"`
	// Current subtotals (prefixes 1.1 and 2.1) feed the liquidity ratio.
	CurrentAssets      decimal.Decimal `json:"current_assets"`
	CurrentLiabilities decimal.Decimal `json:"current_liabilities"`
	Balanced           bool            `json:"balanced"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// Period bounds an income statement. A nil From means "since the first entry".
type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// RevenueSummary groups revenue on the Estado de Resultados
type RevenueSummary struct {
	Total decimal.Decimal `json:"total"`
	Lines []StatementLine `json:"lines"`
}

// OperatingExpenses groups operating expenses (prefix 5.2) by category
type OperatingExpenses struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

// EstadoResultados is the income statement for a period.
// GrossProfit = Revenue.Total - COGS; NetIncome = GrossProfit - OperatingExpenses.Total.
type EstadoResultados struct {
	Period            Period            `json:"period"`
	Revenue           RevenueSummary    `json:"revenue"`
	COGS              decimal.Decimal   `json:"cogs"`
	GrossProfit       decimal.Decimal   `json:"gross_profit"`
	OperatingExpenses OperatingExpenses `json:"operating_expenses"`
	Depreciation      decimal.Decimal   `json:"depreciation"`
	NetIncome         decimal.Decimal   `json:"net_income"`
	GeneratedAt       time.Time         `json:"generated_at"`
}
