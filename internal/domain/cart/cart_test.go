package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart(t *testing.T) {
	c := New(uuid.New())
	p1, p2 := uuid.New(), uuid.New()

	require.NoError(t, c.Add(p1, 1))
	require.NoError(t, c.Add(p1, 2))
	require.NoError(t, c.Add(p2, 1))
	assert.Equal(t, 3, c.Quantity(p1))
	assert.Len(t, c.Items, 2)

	assert.Error(t, c.Add(p1, 0))

	require.NoError(t, c.Set(p2, 4))
	assert.Equal(t, 4, c.Quantity(p2))
	require.NoError(t, c.Set(p2, 0))
	assert.Equal(t, 0, c.Quantity(p2))
	assert.Error(t, c.Set(p2, 1))
	assert.Error(t, c.Remove(p2))

	c.Clear()
	assert.True(t, c.IsEmpty())
}

func TestCartLimit(t *testing.T) {
	c := New(uuid.New())
	for i := 0; i < MaxItems; i++ {
		require.NoError(t, c.Add(uuid.New(), 1))
	}
	assert.Error(t, c.Add(uuid.New(), 1))
}
