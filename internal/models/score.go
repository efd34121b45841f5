package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating is the letter band of a credit score
type Rating string

const (
	RatingAAA Rating = "AAA"
	RatingAA  Rating = "AA"
	RatingA   Rating = "A"
	RatingB   Rating = "B"
	RatingC   Rating = "C"
	RatingD   Rating = "D"
)

// FinancialRatios are the accounting signals used by the score.
// Division guards use sentinel values: liquidity 999 when there are no
// current liabilities, debt-to-equity 999 when equity <= 0, net margin 0
// when there is no revenue.
type FinancialRatios struct {
	Liquidity          decimal.Decimal `json:"liquidity"`
	NetMargin          decimal.Decimal `json:"net_margin"`
	DebtToEquity       decimal.Decimal `json:"debt_to_equity"`
	EBITDA             decimal.Decimal `json:"ebitda"`
	CurrentAssets      decimal.Decimal `json:"current_assets"`
	CurrentLiabilities decimal.Decimal `json:"current_liabilities"`
	Revenue            decimal.Decimal `json:"revenue"`
	NetIncome          decimal.Decimal `json:"net_income"`
}

// ScoreResult is recomputed on every request and never persisted
type ScoreResult struct {
	TenantID        string           `json:"tenant_id"`
	Score           int              `json:"score"`
	CreditLimit     decimal.Decimal  `json:"credit_limit"`
	Rating          Rating           `json:"rating"`
	Factors         []string         `json:"factors"`
	FinancialRatios *FinancialRatios `json:"financial_ratios,omitempty"`
	SalesVolume     decimal.Decimal  `json:"sales_volume"`
	CalculatedAt    time.Time        `json:"calculated_at"`
}
