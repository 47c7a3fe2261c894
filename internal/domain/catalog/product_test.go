package catalog

import (
	"testing"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() Spec {
	return Spec{
		Metal:             "gold",
		Purity:            "22k",
		Market:            "IN",
		GrossWeight:       decimal.RequireFromString("8.25"),
		NetWeight:         decimal.RequireFromString("8.0"),
		MakingPct:         decimal.NewFromInt(12),
		WastagePct:        decimal.NewFromInt(3),
		HallmarkingCharge: decimal.NewFromInt(45),
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		p, err := NewProduct("rg-001", "Temple Ring", validSpec())
		require.NoError(t, err)

		assert.Equal(t, "RG-001", p.Code)
		assert.Equal(t, pricing.MetalGold, p.Metal)
		assert.Equal(t, "22K", p.Purity)
		assert.Equal(t, valueobject.MarketIndia, p.Market)
		assert.Equal(t, valueobject.INR, p.Currency())
		assert.Equal(t, 0, p.Stock)
		assert.True(t, p.IsActive)
		assert.Equal(t, 1, p.GetVersion())
		assert.NotEqual(t, uuid.Nil, p.ID)
	})

	t.Run("publishes product.created", func(t *testing.T) {
		p, err := NewProduct("RG-002", "Ring", validSpec())
		require.NoError(t, err)
		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("rejects bad code", func(t *testing.T) {
		_, err := NewProduct("", "Ring", validSpec())
		assert.Error(t, err)
		_, err = NewProduct("RG 001", "Ring", validSpec())
		assert.Error(t, err)
	})

	t.Run("rejects zero gross weight", func(t *testing.T) {
		spec := validSpec()
		spec.GrossWeight = decimal.Zero
		_, err := NewProduct("RG-003", "Ring", spec)
		assert.Error(t, err)
	})

	t.Run("rejects net weight above gross", func(t *testing.T) {
		spec := validSpec()
		spec.NetWeight = decimal.NewFromInt(9)
		_, err := NewProduct("RG-004", "Ring", spec)
		assert.Error(t, err)
	})

	t.Run("rejects percentage above 100", func(t *testing.T) {
		spec := validSpec()
		spec.MakingPct = decimal.NewFromInt(101)
		_, err := NewProduct("RG-005", "Ring", spec)
		assert.Error(t, err)
	})

	t.Run("rejects negative charges", func(t *testing.T) {
		spec := validSpec()
		spec.StonePct = decimal.NewFromInt(-5)
		_, err := NewProduct("RG-007", "Ring", spec)
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_PERCENTAGE", ""))

		spec = validSpec()
		spec.HallmarkingCharge = decimal.NewFromInt(-10)
		_, err = NewProduct("RG-008", "Ring", spec)
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_CHARGE", ""))
	})

	t.Run("rejects unknown market", func(t *testing.T) {
		spec := validSpec()
		spec.Market = "AE"
		_, err := NewProduct("RG-006", "Ring", spec)
		assert.Error(t, err)
	})
}

func TestProductStock(t *testing.T) {
	p, err := NewProduct("BG-001", "Bangle", validSpec())
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.AdjustStock(5, "restock"))
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.HasStock(5))
	assert.False(t, p.HasStock(6))

	err = p.AdjustStock(-6, "sale")
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 5, p.Stock)

	require.NoError(t, p.SetStock(2, "count"))
	assert.Equal(t, 2, p.Stock)

	assert.Error(t, p.SetStock(-1, "count"))

	events := p.GetDomainEvents()
	require.Len(t, events, 2)
	evt := events[1].(*ProductStockChangedEvent)
	assert.Equal(t, 5, evt.OldStock)
	assert.Equal(t, 2, evt.NewStock)
	assert.Equal(t, "count", evt.Reason)
}

func TestProductImages(t *testing.T) {
	p, err := NewProduct("NK-001", "Necklace", validSpec())
	require.NoError(t, err)

	require.NoError(t, p.AttachImage("products/nk-001/a.jpg"))
	require.NoError(t, p.AttachImage("products/nk-001/a.jpg"))
	assert.Len(t, p.Images, 1)

	require.NoError(t, p.DetachImage("products/nk-001/a.jpg"))
	assert.Empty(t, p.Images)
	assert.Error(t, p.DetachImage("missing"))

	for i := 0; i < MaxProductImages; i++ {
		require.NoError(t, p.AttachImage(uuid.NewString()))
	}
	assert.Error(t, p.AttachImage("one-too-many"))
}

func TestProductUpdate(t *testing.T) {
	p, err := NewProduct("ER-001", "Earring", validSpec())
	require.NoError(t, err)

	require.NoError(t, p.Update("Stud Earring", "Pair", nil, []string{" Daily ", "daily", "Gift"}, true))
	assert.Equal(t, "Stud Earring", p.Name)
	assert.Equal(t, []string{"daily", "gift"}, p.Tags)
	assert.True(t, p.IsFeatured)
	assert.Equal(t, 2, p.GetVersion())

	assert.Error(t, p.Update("", "", nil, nil, false))
}

func TestProductSoftDelete(t *testing.T) {
	p, err := NewProduct("CH-001", "Chain", validSpec())
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive)
	assert.False(t, p.HasStock(0))
	assert.Error(t, p.Deactivate())
	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive)
}
