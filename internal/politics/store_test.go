package politics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsiderWatch/internal/model"
)

func sampleTrades() []model.PoliticalTrade {
	return []model.PoliticalTrade{
		{
			Politician: "Nancy Example", Party: "D", Chamber: "House", Ticker: "NVDA",
			AssetDescription: "NVIDIA Corp", TransactionType: "Purchase",
			TransactionDate: model.NewDate(2024, time.January, 10), DisclosureDate: model.NewDate(2024, time.February, 1),
			AmountMin: decimal.NewFromInt(1001), AmountMax: decimal.NewFromInt(15000), Owner: "Spouse",
		},
		{
			Politician: "Tom Sample", Party: "R", Chamber: "Senate", Ticker: "aapl",
			AssetDescription: "Apple Inc", TransactionType: "Sale",
			TransactionDate: model.NewDate(2024, time.March, 5),
			AmountMin:       decimal.NewFromInt(15001), AmountMax: decimal.NewFromInt(50000), Owner: "Self",
		},
		{
			Politician: "Nancy Example", Party: "D", Chamber: "House", Ticker: "AAPL",
			AssetDescription: "Apple Inc", TransactionType: "Purchase",
			TransactionDate: model.NewDate(2024, time.March, 5),
			AmountMin:       decimal.NewFromInt(50001), AmountMax: decimal.NewFromInt(100000), Owner: "Joint",
		},
		{
			Politician: "Ann Placeholder", Party: "I", Chamber: "Senate",
			AssetDescription: "US Treasury Bill", TransactionType: "Purchase",
			TransactionDate: model.NewDate(2024, time.April, 2),
		},
	}
}

// storeContract checks a Store holding sampleTrades, inserted in order.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("list all newest first", func(t *testing.T) {
		trades, err := store.ListTrades(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, trades, 4)
		assert.Equal(t, "Ann Placeholder", trades[0].Politician)
		// same date: higher id first
		assert.Equal(t, "Nancy Example", trades[1].Politician)
		assert.Equal(t, "Tom Sample", trades[2].Politician)
		assert.Equal(t, "NVDA", trades[3].Ticker)
	})

	t.Run("ticker filter is case-insensitive", func(t *testing.T) {
		trades, err := store.ListTrades(ctx, Filter{Ticker: "aapl"})
		require.NoError(t, err)
		assert.Len(t, trades, 2)
	})

	t.Run("politician substring", func(t *testing.T) {
		trades, err := store.ListTrades(ctx, Filter{Politician: "nancy"})
		require.NoError(t, err)
		require.Len(t, trades, 2)
		for _, tr := range trades {
			assert.Equal(t, "Nancy Example", tr.Politician)
		}
	})

	t.Run("since and limit", func(t *testing.T) {
		trades, err := store.ListTrades(ctx, Filter{Since: model.NewDate(2024, time.March, 1), Limit: 2})
		require.NoError(t, err)
		require.Len(t, trades, 2)
		assert.Equal(t, model.NewDate(2024, time.April, 2), trades[0].TransactionDate)
	})

	t.Run("get trade round-trips amounts and dates", func(t *testing.T) {
		trades, err := store.ListTrades(ctx, Filter{Ticker: "NVDA"})
		require.NoError(t, err)
		require.Len(t, trades, 1)

		got, err := store.GetTrade(ctx, trades[0].ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(15000).Equal(got.AmountMax))
		assert.Equal(t, model.NewDate(2024, time.February, 1), got.DisclosureDate)
		assert.Equal(t, "Spouse", got.Owner)
	})

	t.Run("get missing trade", func(t *testing.T) {
		_, err := store.GetTrade(ctx, 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list tickers", func(t *testing.T) {
		tickers, err := store.ListTickers(ctx, model.NewDate(2024, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "NVDA"}, tickers)

		tickers, err = store.ListTickers(ctx, model.NewDate(2024, time.March, 1))
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL"}, tickers)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(sampleTrades()...))
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Ticker: " msft ", Politician: "  x "}.Normalize()
	assert.Equal(t, "MSFT", f.Ticker)
	assert.Equal(t, "x", f.Politician)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, MaxLimit, Filter{Limit: 5000}.Normalize().Limit)
	assert.Equal(t, 7, Filter{Limit: 7}.Normalize().Limit)
}
