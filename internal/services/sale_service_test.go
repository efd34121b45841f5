package services

import (
	"context"
	"testing"

	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleService_RecordSale(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	sale, entry, err := env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-001"},
		Amount:    d("1000"), Cost: d("600"), Method: models.MethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, "150", sale.Tax.String())
	assert.Equal(t, "1150", sale.Total.String())
	assert.Equal(t, models.SaleStatusCompleted, sale.Status)
	assert.Equal(t, entry.ID, sale.EntryID)
	assert.Equal(t, models.SourceSale, entry.SourceType)
	assert.Equal(t, 1, env.store.entryCount())
	assert.Equal(t, 1, env.store.saleCount())
}

func TestSaleService_DuplicateReferenceLeavesNoEntry(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()
	ev := SaleEvent{EventMeta: EventMeta{Reference: "V-001"}, Amount: d("10"), Method: models.MethodCash}

	_, _, err := env.sales.RecordSale(ctx, "t1", ev)
	require.NoError(t, err)

	_, _, err = env.sales.RecordSale(ctx, "t1", ev)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, env.store.entryCount())
	assert.Equal(t, 1, env.store.saleCount())

	// Same reference under another tenant is independent
	_, err = env.chart.Seed(ctx, "t2")
	require.NoError(t, err)
	_, _, err = env.sales.RecordSale(ctx, "t2", ev)
	assert.NoError(t, err)
}

func TestSaleService_RejectedSaleStoresNothing(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	_, _, err := env.sales.RecordSale(ctx, "t1", SaleEvent{Amount: d("10"), Method: models.MethodCash})
	assert.True(t, IsPostingError(err))

	_, _, err = env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-002"}, Amount: d("10"), Method: "BARTER",
	})
	assert.True(t, IsPostingError(err))

	assert.Zero(t, env.store.entryCount())
	assert.Zero(t, env.store.saleCount())
}

func TestSaleService_ReturnSale(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()
	before, err := env.ledger.AccountBalances(ctx, "t1", nil, nil)
	require.NoError(t, err)

	// 33.33 * 0.15 = 4.9995 rounds to 5.00; the return must reverse exactly that
	_, _, err = env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-010"},
		Amount:    d("33.33"), Cost: d("20"), Method: models.MethodCredit,
	})
	require.NoError(t, err)

	sale, entry, err := env.sales.ReturnSale(ctx, "t1", "V-010", EventMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusReturned, sale.Status)
	assert.Equal(t, models.SourceReturn, entry.SourceType)
	assert.Equal(t, "V-010", entry.SourceRef)
	requireBalanced(t, entry)

	after, err := env.ledger.AccountBalances(ctx, "t1", nil, nil)
	require.NoError(t, err)
	for i := range before {
		assert.True(t, before[i].Balance.Equal(after[i].Balance), before[i].Code)
	}

	volume, err := env.repos.Sale.SumBetween(ctx, "t1", sale.SoldAt, sale.SoldAt.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, volume.IsZero())
}

func TestSaleService_ReturnErrors(t *testing.T) {
	env := seededEnv("t1")
	ctx := context.Background()

	_, _, err := env.sales.ReturnSale(ctx, "t1", "missing", EventMeta{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = env.sales.RecordSale(ctx, "t1", SaleEvent{
		EventMeta: EventMeta{Reference: "V-1"}, Amount: d("10"), Method: models.MethodCash,
	})
	require.NoError(t, err)
	_, _, err = env.sales.ReturnSale(ctx, "t1", "V-1", EventMeta{})
	require.NoError(t, err)

	_, _, err = env.sales.ReturnSale(ctx, "t1", "V-1", EventMeta{})
	assert.ErrorIs(t, err, ErrSaleReturned)
	assert.Equal(t, 2, env.store.entryCount())
}
