package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyRatios() *models.FinancialRatios {
	return &models.FinancialRatios{
		Liquidity:          d("2.2"),
		NetMargin:          d("25"),
		DebtToEquity:       d("0.5"),
		EBITDA:             d("6000"),
		CurrentLiabilities: d("100"),
	}
}

// Six perfect shifts, 12,000 in sales, liquidity 2.2, a 25% margin and no
// debt add up to 670 with the current weights: band A, not AAA. Reaching AAA
// takes more perfect shifts, see TestComputeScore_ReachesAAA.
func TestComputeScore_SixPerfectShiftsHealthyRatiosRatesA(t *testing.T) {
	out := ComputeScore(ScoreInputs{
		PerfectShifts: 6,
		SalesVolume:   d("12000"),
		Ratios:        healthyRatios(),
	})

	assert.Equal(t, 670, out.Score)
	assert.Equal(t, models.RatingA, out.Rating)
	assert.Equal(t, "2900", out.CreditLimit.String())
	assert.Equal(t, []string{
		"+90 por 6 cierres de caja perfectos",
		"+100 por ventas de 30 días mayores a 10,000 (12000.00)",
		"+80 por liquidez de 2.20 (>= 2)",
		"+60 por margen neto de 25.00% (> 20%)",
		"+40 por EBITDA de 6000.00 (> 5,000)",
	}, out.Factors)
}

func TestComputeScore_ReachesAAA(t *testing.T) {
	out := ComputeScore(ScoreInputs{
		PerfectShifts: 15,
		SalesVolume:   d("12000"),
		Ratios:        healthyRatios(),
	})

	assert.Equal(t, 805, out.Score)
	assert.Equal(t, models.RatingAAA, out.Rating)
	assert.Equal(t, "3500", out.CreditLimit.String())
}

func TestComputeScore_AlertsClampAtMinimum(t *testing.T) {
	out := ComputeScore(ScoreInputs{
		AlertShifts:       3,
		SalesVolume:       decimal.Zero,
		RatiosUnavailable: "el libro mayor no tiene movimientos",
	})

	assert.Equal(t, MinScore, out.Score)
	assert.Equal(t, models.RatingD, out.Rating)
	assert.True(t, out.CreditLimit.IsZero())
	assert.Equal(t, []string{
		"-60 por 3 cierres de caja con alerta de faltante",
		"Datos contables insuficientes: el libro mayor no tiene movimientos",
	}, out.Factors)
}

func TestComputeScore_ClampsAtMaximum(t *testing.T) {
	out := ComputeScore(ScoreInputs{PerfectShifts: 30, SalesVolume: d("50000"), Ratios: healthyRatios()})
	assert.Equal(t, MaxScore, out.Score)
	assert.Equal(t, models.RatingAAA, out.Rating)
}

func TestComputeScore_Penalties(t *testing.T) {
	out := ComputeScore(ScoreInputs{
		SalesVolume: d("6000"),
		Ratios: &models.FinancialRatios{
			Liquidity:          d("0.5"),
			NetMargin:          d("-12.5"),
			DebtToEquity:       d("4"),
			EBITDA:             d("100"),
			CurrentLiabilities: d("1000"),
		},
	})

	// 300 + 50 - 60 - 40 - 50 clamps back to 300
	assert.Equal(t, MinScore, out.Score)
	assert.Equal(t, []string{
		"+50 por ventas de 30 días mayores a 5,000 (6000.00)",
		"-60 por liquidez de 0.50 (< 1)",
		"-40 por margen neto negativo (-12.50%)",
		"-50 por endeudamiento de 4.00 (> 3)",
	}, out.Factors)
}

func TestComputeScore_Deterministic(t *testing.T) {
	in := ScoreInputs{PerfectShifts: 4, AlertShifts: 1, SalesVolume: d("7300.50"), Ratios: healthyRatios()}
	assert.Equal(t, ComputeScore(in), ComputeScore(in))
}

func TestRatingFor(t *testing.T) {
	cases := map[int]models.Rating{
		850: models.RatingAAA, 800: models.RatingAAA,
		799: models.RatingAA, 740: models.RatingAA,
		739: models.RatingA, 670: models.RatingA,
		669: models.RatingB, 580: models.RatingB,
		579: models.RatingC, 500: models.RatingC,
		499: models.RatingD, 300: models.RatingD,
	}
	for score, want := range cases {
		assert.Equal(t, want, RatingFor(score), "score %d", score)
	}
}

func TestCreditLimit(t *testing.T) {
	assert.True(t, CreditLimit(decimal.Zero, 700).IsZero())
	assert.True(t, CreditLimit(d("-100"), 700).IsZero())
	// 1000 * 0.30 * 850 / 850 = 300
	assert.Equal(t, "300", CreditLimit(d("1000"), 850).String())

	prev := decimal.Zero
	for score := MinScore; score <= MaxScore; score += 50 {
		limit := CreditLimit(d("25000"), score)
		assert.True(t, limit.GreaterThanOrEqual(prev), "limit should not drop at %d", score)
		assert.True(t, limit.Mod(hundred).IsZero())
		prev = limit
	}
}

func TestDeriveRatios_Sentinels(t *testing.T) {
	bg := &models.BalanceGeneral{
		CurrentAssets:      d("500"),
		CurrentLiabilities: decimal.Zero,
		Totals:             models.BalanceTotals{Liabilities: d("200"), Equity: d("-300"), NetIncome: d("100")},
	}
	er := &models.EstadoResultados{
		Revenue:           models.RevenueSummary{Total: decimal.Zero},
		OperatingExpenses: models.OperatingExpenses{Total: d("40")},
		GrossProfit:       d("10"),
		Depreciation:      d("15"),
		NetIncome:         d("-30"),
	}

	r := DeriveRatios(bg, er)
	assert.True(t, r.Liquidity.Equal(RatioSentinel))
	assert.True(t, r.DebtToEquity.Equal(RatioSentinel))
	assert.True(t, r.NetMargin.IsZero())
	// 10 - (40 - 15)
	assert.Equal(t, "-15", r.EBITDA.String())
}

func TestDeriveRatios_Values(t *testing.T) {
	bg := &models.BalanceGeneral{
		CurrentAssets:      d("300"),
		CurrentLiabilities: d("200"),
		Totals:             models.BalanceTotals{Liabilities: d("200"), Equity: d("300"), NetIncome: d("100")},
	}
	er := &models.EstadoResultados{
		Revenue:     models.RevenueSummary{Total: d("400")},
		GrossProfit: d("150"),
		NetIncome:   d("100"),
	}

	r := DeriveRatios(bg, er)
	assert.Equal(t, "1.5", r.Liquidity.String())
	assert.Equal(t, "25", r.NetMargin.String())
	assert.Equal(t, "0.5", r.DebtToEquity.String())
}

func TestScoreService_UnseededTenant(t *testing.T) {
	env := newTestEnv()

	result, err := env.score.CalculateTenantScore(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 300, result.Score)
	assert.Equal(t, models.RatingD, result.Rating)
	assert.Nil(t, result.FinancialRatios)
	assert.Equal(t, []string{"Datos contables insuficientes: catálogo de cuentas no inicializado"}, result.Factors)
}

func TestScoreService_SeededWithoutActivity(t *testing.T) {
	env := seededEnv("t1")

	result, err := env.score.CalculateTenantScore(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 300, result.Score)
	assert.True(t, result.CreditLimit.IsZero())
	assert.Equal(t, []string{"Datos contables insuficientes: el libro mayor no tiene movimientos"}, result.Factors)
}

func TestScoreService_UsesShiftsSalesAndStatements(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	postAll(t, env, "t1", CashInEvent{Amount: d("5000"), Kind: CashInOwnerContribution})
	_, _, err := env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-1"},
		Amount:    d("1000"), Cost: d("600"), Method: models.MethodCash,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		shift, err := env.shifts.Open(ctx, "t1", "cajero-1", d("100"))
		require.NoError(t, err)
		_, err = env.shifts.Close(ctx, "t1", shift.ID, "cajero-1", CloseShiftInput{DeclaredCash: d("100")})
		require.NoError(t, err)
	}
	other, err := env.shifts.Open(ctx, "t1", "cajero-2", d("100"))
	require.NoError(t, err)
	_, err = env.shifts.Close(ctx, "t1", other.ID, "cajero-2", CloseShiftInput{DeclaredCash: d("1000")})
	require.NoError(t, err)

	result, err := env.score.CalculateTenantScore(ctx, "t1")
	require.NoError(t, err)

	// 300 + 2 perfect (30) - 1 alert (20) + liquidity >= 2 (80) + margin 40% (60)
	assert.Equal(t, 450, result.Score)
	require.NotNil(t, result.FinancialRatios)
	assert.Equal(t, "37", result.FinancialRatios.Liquidity.String())
	assert.Equal(t, "40", result.FinancialRatios.NetMargin.String())
	assert.Equal(t, "1150", result.SalesVolume.String())
	assert.Equal(t, "+30 por 2 cierres de caja perfectos", result.Factors[0])
	assert.Equal(t, "-20 por 1 cierres de caja con alerta de faltante", result.Factors[1])
}

func TestScoreService_TrailingSalesWindow(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	env.score.now = func() time.Time { return now }

	_, _, err := env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "OLD", Date: now.AddDate(0, 0, -45)},
		Amount:    d("9000"), Method: models.MethodCash,
	})
	require.NoError(t, err)
	_, _, err = env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "NEW", Date: now.AddDate(0, 0, -2)},
		Amount:    d("100"), Method: models.MethodCash,
	})
	require.NoError(t, err)
	_, _, err = env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "FUTURE", Date: now.AddDate(1, 0, 0)},
		Amount:    d("20000"), Method: models.MethodCash,
	})
	require.NoError(t, err)

	result, err := env.score.CalculateTenantScore(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "115", result.SalesVolume.String())
	assert.True(t, CreditLimit(d("115"), result.Score).Equal(result.CreditLimit))
	for _, f := range result.Factors {
		assert.NotContains(t, f, "por ventas de 30 días")
	}
}
