package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/repository"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
)

// Scoring constants
const (
	BaseScore         = 300
	MinScore          = 300
	MaxScore          = 850
	ShiftWindow       = 30
	SalesWindowDays   = 30
	perfectShiftBonus = 15
	alertShiftPenalty = 20
)

var (
	// RatioSentinel stands in for liquidity with no current liabilities and
	// for debt-to-equity with no positive equity
	RatioSentinel = decimal.NewFromInt(999)

	creditLimitShare = decimal.RequireFromString("0.30")
	hundred          = decimal.NewFromInt(100)
)

// ScoreInputs is everything the score depends on. Ratios is nil when
// accounting data is unavailable; RatiosUnavailable then says why.
type ScoreInputs struct {
	PerfectShifts     int
	AlertShifts       int
	SalesVolume       decimal.Decimal
	Ratios            *models.FinancialRatios
	RatiosUnavailable string
}

// ScoreOutcome is the deterministic result of ComputeScore
type ScoreOutcome struct {
	Score       int
	Rating      models.Rating
	CreditLimit decimal.Decimal
	Factors     []string
}

// ComputeScore runs the fixed adjustment pipeline. Factors appear in the
// order the adjustments fire; identical inputs give identical outcomes.
func ComputeScore(in ScoreInputs) ScoreOutcome {
	score := BaseScore
	factors := make([]string, 0, 8)
	apply := func(delta int, format string, args ...any) {
		score += delta
		factors = append(factors, fmt.Sprintf("%+d %s", delta, fmt.Sprintf(format, args...)))
	}

	if in.PerfectShifts > 0 {
		apply(perfectShiftBonus*in.PerfectShifts, "por %d cierres de caja perfectos", in.PerfectShifts)
	}
	if in.AlertShifts > 0 {
		apply(-alertShiftPenalty*in.AlertShifts, "por %d cierres de caja con alerta de faltante", in.AlertShifts)
	}

	switch {
	case in.SalesVolume.GreaterThan(decimal.NewFromInt(10000)):
		apply(100, "por ventas de 30 días mayores a 10,000 (%s)", in.SalesVolume.StringFixed(2))
	case in.SalesVolume.GreaterThan(decimal.NewFromInt(5000)):
		apply(50, "por ventas de 30 días mayores a 5,000 (%s)", in.SalesVolume.StringFixed(2))
	}

	if r := in.Ratios; r != nil {
		switch {
		case r.Liquidity.GreaterThanOrEqual(decimal.NewFromInt(2)):
			apply(80, "por liquidez de %s (>= 2)", r.Liquidity.StringFixed(2))
		case r.Liquidity.GreaterThanOrEqual(decimal.RequireFromString("1.5")):
			apply(50, "por liquidez de %s (>= 1.5)", r.Liquidity.StringFixed(2))
		case r.Liquidity.LessThan(decimal.NewFromInt(1)) && r.CurrentLiabilities.IsPositive():
			apply(-60, "por liquidez de %s (< 1)", r.Liquidity.StringFixed(2))
		}

		switch {
		case r.NetMargin.GreaterThan(decimal.NewFromInt(20)):
			apply(60, "por margen neto de %s%% (> 20%%)", r.NetMargin.StringFixed(2))
		case r.NetMargin.GreaterThan(decimal.NewFromInt(10)):
			apply(30, "por margen neto de %s%% (> 10%%)", r.NetMargin.StringFixed(2))
		case r.NetMargin.IsNegative():
			apply(-40, "por margen neto negativo (%s%%)", r.NetMargin.StringFixed(2))
		}

		if r.DebtToEquity.GreaterThan(decimal.NewFromInt(3)) {
			apply(-50, "por endeudamiento de %s (> 3)", r.DebtToEquity.StringFixed(2))
		}

		if r.EBITDA.GreaterThan(decimal.NewFromInt(5000)) {
			apply(40, "por EBITDA de %s (> 5,000)", r.EBITDA.StringFixed(2))
		}
	} else {
		reason := in.RatiosUnavailable
		if reason == "" {
			reason = "sin estados financieros"
		}
		factors = append(factors, "Datos contables insuficientes: "+reason)
	}

	score = clampScore(score)
	return ScoreOutcome{
		Score:       score,
		Rating:      RatingFor(score),
		CreditLimit: CreditLimit(in.SalesVolume, score),
		Factors:     factors,
	}
}

func clampScore(score int) int {
	return max(MinScore, min(MaxScore, score))
}

// CreditLimit is ceil(volume * 0.30 * score / 850 / 100) * 100, never negative
func CreditLimit(volume decimal.Decimal, score int) decimal.Decimal {
	if !volume.IsPositive() || score <= 0 {
		return decimal.Zero
	}
	raw := volume.Mul(creditLimitShare).Mul(decimal.NewFromInt(int64(score))).
		Div(decimal.NewFromInt(MaxScore * 100))
	return raw.Ceil().Mul(hundred)
}

// RatingFor maps a clamped score to its letter band
func RatingFor(score int) models.Rating {
	switch {
	case score >= 800:
		return models.RatingAAA
	case score >= 740:
		return models.RatingAA
	case score >= 670:
		return models.RatingA
	case score >= 580:
		return models.RatingB
	case score >= 500:
		return models.RatingC
	default:
		return models.RatingD
	}
}

// DeriveRatios computes the score ratios from a balance sheet and the
// income statement of the same span, applying the division sentinels.
func DeriveRatios(bg *models.BalanceGeneral, er *models.EstadoResultados) *models.FinancialRatios {
	r := &models.FinancialRatios{
		CurrentAssets:      bg.CurrentAssets,
		CurrentLiabilities: bg.CurrentLiabilities,
		Revenue:            er.Revenue.Total,
		NetIncome:          er.NetIncome,
	}

	if bg.CurrentLiabilities.IsZero() {
		r.Liquidity = RatioSentinel
	} else {
		r.Liquidity = bg.CurrentAssets.DivRound(bg.CurrentLiabilities, 4)
	}

	if er.Revenue.Total.IsZero() {
		r.NetMargin = decimal.Zero
	} else {
		r.NetMargin = er.NetIncome.Mul(hundred).DivRound(er.Revenue.Total, 4)
	}

	// Book equity includes the earnings not yet closed into 3.2
	equity := bg.Totals.Equity.Add(bg.Totals.NetIncome)
	if !equity.IsPositive() {
		r.DebtToEquity = RatioSentinel
	} else {
		r.DebtToEquity = bg.Totals.Liabilities.DivRound(equity, 4)
	}

	opexBeforeDepreciation := er.OperatingExpenses.Total.Sub(er.Depreciation)
	r.EBITDA = er.GrossProfit.Sub(opexBeforeDepreciation)
	return r
}

// ScoreService gathers score inputs for a tenant and runs ComputeScore
type ScoreService struct {
	shifts     repository.ShiftRepository
	sales      repository.SaleRepository
	chart      *ChartService
	ledger     *LedgerService
	statements *StatementService
	now        func() time.Time
}

// NewScoreService creates a new score service
func NewScoreService(shifts repository.ShiftRepository, sales repository.SaleRepository, chart *ChartService, ledger *LedgerService, statements *StatementService) *ScoreService {
	return &ScoreService{
		shifts:     shifts,
		sales:      sales,
		chart:      chart,
		ledger:     ledger,
		statements: statements,
		now:        time.Now,
	}
}

// CalculateTenantScore recomputes the tenant's score. Missing or failing
// accounting data degrades the score instead of failing the call.
func (s *ScoreService) CalculateTenantScore(ctx context.Context, tenantID string) (*models.ScoreResult, error) {
	now := s.now()

	shifts, err := s.shifts.ListClosed(ctx, tenantID, ShiftWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load closed shifts: %w", err)
	}
	in := ScoreInputs{}
	for _, sh := range shifts {
		if sh.Classification == nil {
			continue
		}
		switch *sh.Classification {
		case models.ShiftPerfect:
			in.PerfectShifts++
		case models.ShiftAlert:
			in.AlertShifts++
		}
	}

	// Same cutoff as the ledger snapshot below; future-dated sales are excluded
	since := now.AddDate(0, 0, -SalesWindowDays)
	in.SalesVolume, err = s.sales.SumBetween(ctx, tenantID, since, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum trailing sales: %w", err)
	}

	in.Ratios, in.RatiosUnavailable = s.ratios(ctx, tenantID, now)

	outcome := ComputeScore(in)
	logger.FromContext(ctx).Info("[ScoreService] score calculated",
		"tenant_id", tenantID, "score", outcome.Score, "rating", outcome.Rating)

	return &models.ScoreResult{
		TenantID:        tenantID,
		Score:           outcome.Score,
		CreditLimit:     outcome.CreditLimit,
		Rating:          outcome.Rating,
		Factors:         outcome.Factors,
		FinancialRatios: in.Ratios,
		SalesVolume:     in.SalesVolume,
		CalculatedAt:    now,
	}, nil
}

// ratios returns nil and a reason when the statements cannot back a ratio
func (s *ScoreService) ratios(ctx context.Context, tenantID string, asOf time.Time) (*models.FinancialRatios, string) {
	log := logger.FromContext(ctx)

	seeded, err := s.chart.IsSeeded(ctx, tenantID)
	if err != nil {
		log.Warn("[ScoreService] chart check failed", "tenant_id", tenantID, "error", err)
		return nil, "no se pudo consultar el catálogo de cuentas"
	}
	if !seeded {
		return nil, "catálogo de cuentas no inicializado"
	}

	active, err := s.ledger.HasActivity(ctx, tenantID)
	if err != nil {
		log.Warn("[ScoreService] ledger check failed", "tenant_id", tenantID, "error", err)
		return nil, "no se pudo consultar el libro mayor"
	}
	if !active {
		return nil, "el libro mayor no tiene movimientos"
	}

	bg, err := s.statements.GetBalanceGeneral(ctx, tenantID, &asOf)
	if err != nil {
		log.Warn("[ScoreService] balance general failed", "tenant_id", tenantID, "error", err)
		return nil, "no se pudo generar el balance general"
	}
	er, err := s.statements.GetEstadoResultados(ctx, tenantID, models.Period{To: &asOf})
	if err != nil {
		log.Warn("[ScoreService] estado de resultados failed", "tenant_id", tenantID, "error", err)
		return nil, "no se pudo generar el estado de resultados"
	}
	return DeriveRatios(bg, er), ""
}
