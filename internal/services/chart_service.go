package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// Leaf codes the poster writes to
const (
	CodeCash              = "1.1.01"
	CodeBank              = "1.1.02"
	CodeReceivable        = "1.1.03"
	CodeInventory         = "1.1.04"
	CodePayable           = "2.1.01"
	CodeSalesTaxPayable   = "2.1.02"
	CodeOwnerContribution = "3.1.01"
	CodeSalesRevenue      = "4.1.01"
	CodeMiscIncome        = "4.2.01"
	CodeCOGS              = "5.1.01"
	CodeRent              = "5.2.01"
	CodeUtilities         = "5.2.02"
	CodePayroll           = "5.2.03"
	CodeGeneralExpense    = "5.2.04"
	CodeDepreciation      = "5.2.05"
)

// Aggregation prefixes used by statements and scoring
const (
	PrefixAssets             = "1"
	PrefixCurrentAssets      = "1.1"
	PrefixLiabilities        = "2"
	PrefixCurrentLiabilities = "2.1"
	PrefixEquity             = "3"
	PrefixRevenue            = "4"
	PrefixExpenses           = "5"
	PrefixCOGS               = "5.1"
	PrefixOperatingExpenses  = "5.2"
)

type chartNode struct {
	Code string
	Name string
}

// standardChart is the hierarchy every tenant starts with, parents first
var standardChart = []chartNode{
	{"1", "Activos"},
	{"1.1", "Activo Corriente"},
	{CodeCash, "Caja"},
	{CodeBank, "Bancos (tarjetas)"},
	{CodeReceivable, "Cuentas por Cobrar"},
	{CodeInventory, "Inventario"},
	{"1.2", "Activo No Corriente"},
	{"1.2.01", "Mobiliario y Equipo"},
	{"2", "Pasivos"},
	{"2.1", "Pasivo Corriente"},
	{CodePayable, "Cuentas por Pagar"},
	{CodeSalesTaxPayable, "Impuesto sobre Ventas por Pagar"},
	{"2.2", "Pasivo No Corriente"},
	{"2.2.01", "Préstamos a Largo Plazo"},
	{"3", "Patrimonio"},
	{"3.1", "Capital"},
	{CodeOwnerContribution, "Aportes del Propietario"},
	{"3.2", "Resultados Acumulados"},
	{"4", "Ingresos"},
	{"4.1", "Ventas"},
	{CodeSalesRevenue, "Ventas de Mercadería"},
	{"4.2", "Otros Ingresos"},
	{CodeMiscIncome, "Ingresos Varios"},
	{"5", "Gastos"},
	{"5.1", "Costo de Ventas"},
	{CodeCOGS, "Costo de Mercadería Vendida"},
	{"5.2", "Gastos Operativos"},
	{CodeRent, "Alquiler"},
	{CodeUtilities, "Servicios Públicos"},
	{CodePayroll, "Sueldos y Salarios"},
	{CodeGeneralExpense, "Gastos Generales"},
	{CodeDepreciation, "Depreciación"},
}

// StandardCodes returns the codes of the standard chart in seed order
func StandardCodes() []string {
	codes := make([]string, len(standardChart))
	for i, n := range standardChart {
		codes[i] = n.Code
	}
	return codes
}

// StandardAccounts builds the standard chart for a tenant
func StandardAccounts(tenantID string) []models.Account {
	accounts := make([]models.Account, 0, len(standardChart))
	for _, n := range standardChart {
		acc := models.Account{
			TenantID: tenantID,
			Code:     n.Code,
			Name:     n.Name,
			Type:     models.TypeForRoot[models.RootSegment(n.Code)],
		}
		if parent := models.ParentOf(n.Code); parent != "" {
			acc.ParentCode = &parent
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

// SeedResult reports what a seed call did
type SeedResult struct {
	TenantID      string `json:"tenant_id"`
	Created       int    `json:"created"`
	AlreadySeeded bool   `json:"already_seeded"`
}

// ChartService manages the per-tenant chart of accounts
type ChartService struct {
	accounts repository.AccountRepository
	tx       repository.Transactor
	audit    *AuditService
}

// NewChartService creates a new chart service
func NewChartService(accounts repository.AccountRepository, tx repository.Transactor, audit *AuditService) *ChartService {
	return &ChartService{accounts: accounts, tx: tx, audit: audit}
}

// Seed creates the standard chart if the tenant has no accounts.
// A complete, valid chart is a no-op; a partial or corrupt one is a
// *SeedConflictError.
func (s *ChartService) Seed(ctx context.Context, tenantID string) (*SeedResult, error) {
	result := &SeedResult{TenantID: tenantID}

	err := s.tx.WithinTransaction(ctx, func(repos *repository.Repositories) error {
		count, err := repos.Account.CountByTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to count accounts: %w", err)
		}
		if count > 0 {
			if err := checkExistingChart(ctx, repos.Account, tenantID); err != nil {
				return err
			}
			result.AlreadySeeded = true
			return nil
		}

		accounts := StandardAccounts(tenantID)
		if err := ValidateTree(accounts); err != nil {
			return err
		}
		if err := repos.Account.CreateBatch(ctx, accounts); err != nil {
			return err
		}
		result.Created = len(accounts)
		return nil
	})

	// A concurrent seed won the insert race; judge the chart it left behind
	if errors.Is(err, repository.ErrDuplicateAccount) {
		if err = checkExistingChart(ctx, s.accounts, tenantID); err == nil {
			return &SeedResult{TenantID: tenantID, AlreadySeeded: true}, nil
		}
	}

	if err != nil {
		var conflict *SeedConflictError
		if errors.As(err, &conflict) {
			logger.FromContext(ctx).Error("[ChartService] inconsistent chart detected", "tenant_id", tenantID,
				"missing", conflict.Missing, "reason", conflict.Reason)
			captureError(ctx, err)
			return nil, err
		}
		return nil, fmt.Errorf("failed to seed chart: %w", err)
	}

	if result.Created > 0 {
		logger.FromContext(ctx).Info("[ChartService] chart seeded", "tenant_id", tenantID, "accounts", result.Created)
		s.audit.Record(ctx, tenantID, models.AuditActionSeed, "Chart", tenantID, fmt.Sprintf("%d cuentas creadas", result.Created))
	}
	return result, nil
}

// checkExistingChart accepts a chart only when every standard code is present
// and the whole tree passes ValidateTree.
func checkExistingChart(ctx context.Context, accounts repository.AccountRepository, tenantID string) error {
	missing, err := missingStandardCodes(ctx, accounts, tenantID)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &SeedConflictError{TenantID: tenantID, Missing: missing}
	}

	existing, err := accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}
	if err := ValidateTree(existing); err != nil {
		return &SeedConflictError{TenantID: tenantID, Reason: err.Error()}
	}
	return nil
}

func missingStandardCodes(ctx context.Context, accounts repository.AccountRepository, tenantID string) ([]string, error) {
	codes := StandardCodes()
	existing, err := accounts.ExistingCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to check standard codes: %w", err)
	}
	var missing []string
	for _, c := range codes {
		if !existing[c] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}

// List returns the tenant's chart ordered by code
func (s *ChartService) List(ctx context.Context, tenantID string) ([]models.Account, error) {
	return s.accounts.ListByTenant(ctx, tenantID)
}

// IsSeeded reports whether the tenant has any accounts at all
func (s *ChartService) IsSeeded(ctx context.Context, tenantID string) (bool, error) {
	count, err := s.accounts.CountByTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ValidateTree checks that codes are unique, every parent is present and
// every account's type matches the type implied by its root segment.
func ValidateTree(accounts []models.Account) error {
	byCode := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		if _, dup := byCode[a.Code]; dup {
			return fmt.Errorf("duplicate account code %s", a.Code)
		}
		byCode[a.Code] = a
	}

	codes := make([]string, 0, len(byCode))
	for c := range byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	for _, code := range codes {
		a := byCode[code]
		rootType, ok := models.TypeForRoot[models.RootSegment(code)]
		if !ok {
			return fmt.Errorf("account %s has unknown root segment", code)
		}
		if a.Type != rootType {
			return fmt.Errorf("account %s has type %s, its root requires %s", code, a.Type, rootType)
		}
		parent := models.ParentOf(code)
		if parent == "" {
			if a.ParentCode != nil {
				return fmt.Errorf("root account %s must not have a parent", code)
			}
			continue
		}
		if a.ParentCode == nil || *a.ParentCode != parent {
			return fmt.Errorf("account %s must have parent %s", code, parent)
		}
		if p, ok := byCode[parent]; !ok {
			return fmt.Errorf("account %s references missing parent %s", code, parent)
		} else if p.Type != a.Type {
			return fmt.Errorf("account %s type %s differs from parent %s type %s", code, a.Type, parent, p.Type)
		}
	}
	return nil
}
