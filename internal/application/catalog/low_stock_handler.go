package catalog

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"go.uber.org/zap"
)

// ThresholdFunc returns the current low-stock threshold
type ThresholdFunc func(ctx context.Context) (int, error)

// LowStockHandler warns when a stock movement drops a product to or below the threshold
type LowStockHandler struct {
	threshold ThresholdFunc
	logger    *zap.Logger
}

// NewLowStockHandler creates a new LowStockHandler
func NewLowStockHandler(threshold ThresholdFunc, logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{threshold: threshold, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductStockChanged}
}

// Handle implements shared.EventHandler
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*catalog.ProductStockChangedEvent)
	if !ok {
		return nil
	}
	// only crossings are reported, not every sale below the line
	limit, err := h.threshold(ctx)
	if err != nil {
		return err
	}
	if e.NewStock > limit || e.OldStock <= limit {
		return nil
	}
	h.logger.Warn("product stock is low",
		zap.String("product_id", e.ProductID.String()),
		zap.String("code", e.Code),
		zap.Int("stock", e.NewStock),
		zap.Int("threshold", limit),
		zap.String("reason", e.Reason))
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
