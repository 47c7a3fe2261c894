package persistence

import (
	"context"
	"testing"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMetalRateRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMetalRateRepository(db)
	ctx := context.Background()

	key, err := pricing.NewRateKey("gold", "22k", "IN")
	require.NoError(t, err)
	rate, err := pricing.NewMetalRate(key, decimal.RequireFromString("6543.21"), "manual")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rate))

	bhKey, err := pricing.NewRateKey("gold", "22K", "BH")
	require.NoError(t, err)
	bhRate, err := pricing.NewMetalRate(bhKey, decimal.RequireFromString("24.125"), "manual")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, bhRate))

	t.Run("looks up the active rate per key", func(t *testing.T) {
		found, err := repo.RatePerGram(ctx, key)
		require.NoError(t, err)
		assert.True(t, found.RatePerGram.Equal(decimal.RequireFromString("6543.21")), found.RatePerGram.String())
		assert.Equal(t, valueobject.INR, found.Currency)
	})

	t.Run("missing key is RATE_NOT_FOUND", func(t *testing.T) {
		other, err := pricing.NewRateKey("platinum", "950", "IN")
		require.NoError(t, err)
		_, err = repo.RatePerGram(ctx, other)
		assert.ErrorIs(t, err, shared.ErrRateNotFound)
	})

	t.Run("retired rate is not served but still found by key", func(t *testing.T) {
		require.NoError(t, bhRate.Retire())
		require.NoError(t, repo.Save(ctx, bhRate))

		_, err := repo.RatePerGram(ctx, bhKey)
		assert.ErrorIs(t, err, shared.ErrRateNotFound)

		row, err := repo.FindByKey(ctx, bhKey)
		require.NoError(t, err)
		assert.False(t, row.IsActive)
	})

	t.Run("one row per key", func(t *testing.T) {
		dup, err := pricing.NewMetalRate(key, decimal.RequireFromString("1"), "feed")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("filters by market", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderBy = ""
		filter.IncludeInactive = true
		filter.Filters["market"] = "BH"
		rates, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, valueobject.MarketBahrain, rates[0].Market)

		count, err := repo.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
