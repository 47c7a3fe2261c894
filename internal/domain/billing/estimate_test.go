package billing

import (
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEstimate(t *testing.T) *Estimate {
	t.Helper()
	e, err := NewEstimate("ES-20261019-0001", Customer{Name: "Meera"}, valueobject.MarketIndia,
		[]PricedLine{ringLine(t, 1)}, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	return e
}

func TestNewEstimate(t *testing.T) {
	e := newEstimate(t)
	assert.Equal(t, EstimateDraft, e.Status)
	assert.True(t, e.IsEditable())
	assert.Len(t, e.Lines(), 1)

	_, err := NewEstimate("ES-1", Customer{Name: "Meera"}, valueobject.MarketIndia,
		[]PricedLine{ringLine(t, 1)}, time.Now().Add(-time.Hour))
	assert.Error(t, err)
}

func TestEstimateLifecycle(t *testing.T) {
	t.Run("draft to sent to converted", func(t *testing.T) {
		e := newEstimate(t)
		require.NoError(t, e.MarkSent())
		assert.Error(t, e.MarkSent())

		billID := uuid.New()
		require.NoError(t, e.MarkConverted(billID, time.Now()))
		assert.Equal(t, EstimateConverted, e.Status)
		assert.Equal(t, billID, *e.BillID)
		assert.False(t, e.IsEditable())
		assert.Error(t, e.Revise(e.Customer, e.Lines(), e.Totals.Discount, "", time.Now().Add(time.Hour)))
	})

	t.Run("lapsed estimate cannot convert", func(t *testing.T) {
		e := newEstimate(t)
		err := e.MarkConverted(uuid.New(), time.Now().Add(72*time.Hour))
		assert.Error(t, err)
	})

	t.Run("expire only after validity", func(t *testing.T) {
		e := newEstimate(t)
		assert.False(t, e.Expire(time.Now()))
		assert.True(t, e.Expire(time.Now().Add(72*time.Hour)))
		assert.Equal(t, EstimateExpired, e.Status)
		assert.False(t, e.Expire(time.Now().Add(96*time.Hour)))
	})

	t.Run("revise replaces lines", func(t *testing.T) {
		e := newEstimate(t)
		before := e.Totals.GrandTotal
		require.NoError(t, e.Revise(Customer{Name: "Meera S"}, []PricedLine{ringLine(t, 2)}, d("0"), "two pieces", time.Now().Add(time.Hour)))
		assert.True(t, e.Totals.GrandTotal.Equal(before.Mul(d("2"))))
		assert.Equal(t, "two pieces", e.Notes)
		assert.Equal(t, 2, e.GetVersion())
	})
}
