package pricing

import (
	"testing"

	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateKey(t *testing.T) {
	t.Run("normalizes parts", func(t *testing.T) {
		key, err := NewRateKey("Gold", "22kt", "in")
		require.NoError(t, err)
		assert.Equal(t, MetalGold, key.Metal)
		assert.Equal(t, "22K", key.Purity)
		assert.Equal(t, valueobject.MarketIndia, key.Market)
		assert.Equal(t, "gold:22K:IN", key.String())
	})

	t.Run("accepts fineness", func(t *testing.T) {
		key, err := NewRateKey("silver", "925", "BH")
		require.NoError(t, err)
		assert.Equal(t, "925", key.Purity)
	})

	t.Run("rejects unknown metal", func(t *testing.T) {
		_, err := NewRateKey("copper", "22K", "IN")
		assert.Error(t, err)
	})

	t.Run("rejects bad purity", func(t *testing.T) {
		_, err := NewRateKey("gold", "30K", "IN")
		assert.Error(t, err)
	})

	t.Run("rejects unknown market", func(t *testing.T) {
		_, err := NewRateKey("gold", "22K", "US")
		assert.Error(t, err)
	})
}

func TestMetalRate(t *testing.T) {
	key, err := NewRateKey("gold", "24K", "BH")
	require.NoError(t, err)

	t.Run("derives currency from market", func(t *testing.T) {
		r, err := NewMetalRate(key, decimal.RequireFromString("25.1"), "manual")
		require.NoError(t, err)
		assert.Equal(t, valueobject.BHD, r.Currency)
		assert.True(t, r.IsActive)
		assert.Len(t, r.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := NewMetalRate(key, decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("set rate reactivates and records old value", func(t *testing.T) {
		r, err := NewMetalRate(key, decimal.NewFromInt(25), "manual")
		require.NoError(t, err)
		require.NoError(t, r.Retire())
		r.ClearDomainEvents()

		require.NoError(t, r.SetRate(decimal.NewFromInt(26), ""))
		assert.True(t, r.IsActive)
		assert.Equal(t, "manual", r.Source)

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		evt := events[0].(*MetalRateUpdatedEvent)
		assert.True(t, evt.OldRate.Equal(decimal.NewFromInt(25)))
		assert.True(t, evt.NewRate.Equal(decimal.NewFromInt(26)))
	})
}
