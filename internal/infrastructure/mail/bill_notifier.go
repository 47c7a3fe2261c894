package mail

import (
	"context"
	"fmt"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const billCreatedTemplate = "bill_created.tmpl"

// StoreNameFunc resolves the store name printed in customer mail
type StoreNameFunc func(ctx context.Context) string

// BillCreatedNotifier mails the customer a confirmation for online orders
type BillCreatedNotifier struct {
	sender    TemplateSender
	storeName StoreNameFunc
	logger    *zap.Logger
}

// NewBillCreatedNotifier creates a BillCreatedNotifier
func NewBillCreatedNotifier(sender TemplateSender, storeName StoreNameFunc, logger *zap.Logger) *BillCreatedNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if storeName == nil {
		storeName = func(context.Context) string { return "Jewel Store" }
	}
	return &BillCreatedNotifier{sender: sender, storeName: storeName, logger: logger}
}

// EventTypes implements shared.EventHandler
func (n *BillCreatedNotifier) EventTypes() []string {
	return []string{billing.EventTypeBillCreated}
}

// Handle implements shared.EventHandler
func (n *BillCreatedNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*billing.BillCreatedEvent)
	if !ok {
		return fmt.Errorf("bill notifier: unexpected event %T", event)
	}
	if e.Channel != billing.ChannelOnline || e.CustomerEmail == "" {
		return nil
	}

	data := map[string]any{
		"StoreName":    n.storeName(ctx),
		"CustomerName": e.CustomerName,
		"BillNumber":   e.BillNumber,
		"ItemCount":    e.ItemCount,
		"Total":        printing.FormatMoney(e.GrandTotal, e.Currency),
	}
	if err := n.sender.SendTemplate(ctx, e.CustomerEmail, billCreatedTemplate, data); err != nil {
		return err
	}
	n.logger.Info("order confirmation mailed", zap.String("bill_number", e.BillNumber))
	return nil
}

var _ shared.EventHandler = (*BillCreatedNotifier)(nil)
