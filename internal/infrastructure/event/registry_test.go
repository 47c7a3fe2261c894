package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("specific and wildcard handlers", func(t *testing.T) {
		registry := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()

		registry.Register(typed, "bill.created", "bill.paid")
		registry.Register(wildcard)

		handlers := registry.GetHandlers("bill.created")
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])

		assert.Len(t, registry.GetHandlers("bill.paid"), 2)
		assert.Len(t, registry.GetHandlers("estimate.converted"), 1)
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		registry := NewHandlerRegistry()
		a := newTestHandler()
		b := newTestHandler()

		registry.Register(a, "bill.created", "bill.paid")
		registry.Register(b, "bill.created")
		registry.Register(a)

		registry.Unregister(a)

		handlers := registry.GetHandlers("bill.created")
		assert.Len(t, handlers, 1)
		assert.Same(t, b, handlers[0])
		assert.Empty(t, registry.GetHandlers("bill.paid"))
		_, exists := registry.handlers["bill.paid"]
		assert.False(t, exists)
	})
}
