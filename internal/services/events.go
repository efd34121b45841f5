package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
)

// ExpenseCategory selects the operating expense account of an EXPENSE event
type ExpenseCategory string

const (
	ExpenseRent         ExpenseCategory = "RENT"
	ExpenseUtilities    ExpenseCategory = "UTILITIES"
	ExpensePayroll      ExpenseCategory = "PAYROLL"
	ExpenseGeneral      ExpenseCategory = "GENERAL"
	ExpenseDepreciation ExpenseCategory = "DEPRECIATION"
)

var expenseAccounts = map[ExpenseCategory]string{
	ExpenseRent:         CodeRent,
	ExpenseUtilities:    CodeUtilities,
	ExpensePayroll:      CodePayroll,
	ExpenseGeneral:      CodeGeneralExpense,
	ExpenseDepreciation: CodeDepreciation,
}

// CashInKind is the counterpart of a manual cash entry
type CashInKind string

const (
	CashInMiscIncome        CashInKind = "MISC_INCOME"
	CashInOwnerContribution CashInKind = "OWNER_CONTRIBUTION"
)

// CashOutKind is the counterpart of a manual cash withdrawal
type CashOutKind string

const (
	CashOutMiscExpense     CashOutKind = "MISC_EXPENSE"
	CashOutOwnerWithdrawal CashOutKind = "OWNER_WITHDRAWAL"
)

// EventMeta is shared by every business event
type EventMeta struct {
	Reference   string
	Date        time.Time
	Description string
}

func (m EventMeta) meta() EventMeta { return m }

// Event is a business event the poster turns into one journal entry.
// The set is closed: each variant carries its own leg rule.
type Event interface {
	Source() models.SourceType
	meta() EventMeta
	legs(defaultTaxRate decimal.Decimal) ([]models.JournalLine, error)
}

// SaleEvent is a completed sale. Amount is net of tax.
type SaleEvent struct {
	EventMeta
	Amount  decimal.Decimal
	Cost    decimal.Decimal
	Method  models.PaymentMethod
	TaxRate *decimal.Decimal
}

// PaymentEvent is a customer settling a credit sale
type PaymentEvent struct {
	EventMeta
	Amount decimal.Decimal
	Method models.PaymentMethod
}

// PurchaseEvent is stock bought for inventory
type PurchaseEvent struct {
	EventMeta
	Amount decimal.Decimal
	Method models.PaymentMethod
}

// ExpenseEvent is an operating expense paid or owed
type ExpenseEvent struct {
	EventMeta
	Amount   decimal.Decimal
	Category ExpenseCategory
	Method   models.PaymentMethod
}

// CashInEvent is cash put into the drawer outside a sale
type CashInEvent struct {
	EventMeta
	Amount decimal.Decimal
	Kind   CashInKind
}

// CashOutEvent is cash taken out of the drawer outside a purchase or expense
type CashOutEvent struct {
	EventMeta
	Amount decimal.Decimal
	Kind   CashOutKind
}

// ReturnEvent reverses a sale. Tax, when set, is the exact tax to reverse
// and takes precedence over TaxRate.
type ReturnEvent struct {
	EventMeta
	Amount  decimal.Decimal
	Cost    decimal.Decimal
	Method  models.PaymentMethod
	TaxRate *decimal.Decimal
	Tax     *decimal.Decimal
}

func (SaleEvent) Source() models.SourceType     { return models.SourceSale }
func (PaymentEvent) Source() models.SourceType  { return models.SourcePayment }
func (PurchaseEvent) Source() models.SourceType { return models.SourcePurchase }
func (ExpenseEvent) Source() models.SourceType  { return models.SourceExpense }
func (CashInEvent) Source() models.SourceType   { return models.SourceCashIn }
func (CashOutEvent) Source() models.SourceType  { return models.SourceCashOut }
func (ReturnEvent) Source() models.SourceType   { return models.SourceReturn }

// ComputeTax returns round(amount * rate, 2)
func ComputeTax(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

func debit(code string, amount decimal.Decimal) models.JournalLine {
	return models.JournalLine{AccountCode: code, Debit: amount, Credit: decimal.Zero}
}

func credit(code string, amount decimal.Decimal) models.JournalLine {
	return models.JournalLine{AccountCode: code, Debit: decimal.Zero, Credit: amount}
}

// settlementAccount maps a payment method to the account it moves. CREDIT
// resolves to creditCode and is rejected when the flow cannot be deferred.
func settlementAccount(method models.PaymentMethod, creditCode string) (string, bool) {
	switch method {
	case models.MethodCash:
		return CodeCash, true
	case models.MethodCard:
		return CodeBank, true
	case models.MethodCredit:
		if creditCode == "" {
			return "", false
		}
		return creditCode, true
	}
	return "", false
}

func resolveRate(rate *decimal.Decimal, def decimal.Decimal) (decimal.Decimal, error) {
	if rate == nil {
		return def, nil
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, errf("tax rate %s outside [0, 1)", rate.String())
	}
	return *rate, nil
}

func (e SaleEvent) legs(defaultTaxRate decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	if err := requireNonNegative("cost", e.Cost); err != nil {
		return nil, err
	}
	account, ok := settlementAccount(e.Method, CodeReceivable)
	if !ok {
		return nil, errf("unknown payment method %q", e.Method)
	}
	rate, err := resolveRate(e.TaxRate, defaultTaxRate)
	if err != nil {
		return nil, err
	}

	tax := ComputeTax(e.Amount, rate)
	lines := []models.JournalLine{
		debit(account, e.Amount.Add(tax)),
		credit(CodeSalesRevenue, e.Amount),
	}
	if tax.IsPositive() {
		lines = append(lines, credit(CodeSalesTaxPayable, tax))
	}
	if e.Cost.IsPositive() {
		lines = append(lines, debit(CodeCOGS, e.Cost), credit(CodeInventory, e.Cost))
	}
	return lines, nil
}

func (e PaymentEvent) legs(decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	account, ok := settlementAccount(e.Method, "")
	if !ok {
		return nil, errf("payment method %q cannot settle a receivable", e.Method)
	}
	return []models.JournalLine{
		debit(account, e.Amount),
		credit(CodeReceivable, e.Amount),
	}, nil
}

func (e PurchaseEvent) legs(decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	account, ok := settlementAccount(e.Method, CodePayable)
	if !ok {
		return nil, errf("unknown payment method %q", e.Method)
	}
	return []models.JournalLine{
		debit(CodeInventory, e.Amount),
		credit(account, e.Amount),
	}, nil
}

func (e ExpenseEvent) legs(decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	expense, ok := expenseAccounts[e.Category]
	if !ok {
		return nil, errf("unknown expense category %q", e.Category)
	}
	account, ok := settlementAccount(e.Method, CodePayable)
	if !ok {
		return nil, errf("unknown payment method %q", e.Method)
	}
	return []models.JournalLine{
		debit(expense, e.Amount),
		credit(account, e.Amount),
	}, nil
}

func (e CashInEvent) legs(decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	var counterpart string
	switch e.Kind {
	case CashInMiscIncome:
		counterpart = CodeMiscIncome
	case CashInOwnerContribution:
		counterpart = CodeOwnerContribution
	default:
		return nil, errf("unknown cash-in kind %q", e.Kind)
	}
	return []models.JournalLine{
		debit(CodeCash, e.Amount),
		credit(counterpart, e.Amount),
	}, nil
}

func (e CashOutEvent) legs(decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	var counterpart string
	switch e.Kind {
	case CashOutMiscExpense:
		counterpart = CodeGeneralExpense
	case CashOutOwnerWithdrawal:
		counterpart = CodeOwnerContribution
	default:
		return nil, errf("unknown cash-out kind %q", e.Kind)
	}
	return []models.JournalLine{
		debit(counterpart, e.Amount),
		credit(CodeCash, e.Amount),
	}, nil
}

// legs mirrors SaleEvent.legs with every side swapped
func (e ReturnEvent) legs(defaultTaxRate decimal.Decimal) ([]models.JournalLine, error) {
	if err := requirePositive("amount", e.Amount); err != nil {
		return nil, err
	}
	if err := requireNonNegative("cost", e.Cost); err != nil {
		return nil, err
	}
	account, ok := settlementAccount(e.Method, CodeReceivable)
	if !ok {
		return nil, errf("unknown payment method %q", e.Method)
	}

	var tax decimal.Decimal
	if e.Tax != nil {
		if err := requireNonNegative("tax", *e.Tax); err != nil {
			return nil, err
		}
		tax = *e.Tax
	} else {
		rate, err := resolveRate(e.TaxRate, defaultTaxRate)
		if err != nil {
			return nil, err
		}
		tax = ComputeTax(e.Amount, rate)
	}

	lines := []models.JournalLine{
		debit(CodeSalesRevenue, e.Amount),
	}
	if tax.IsPositive() {
		lines = append(lines, debit(CodeSalesTaxPayable, tax))
	}
	lines = append(lines, credit(account, e.Amount.Add(tax)))
	if e.Cost.IsPositive() {
		lines = append(lines, debit(CodeInventory, e.Cost), credit(CodeCOGS, e.Cost))
	}
	return lines, nil
}
