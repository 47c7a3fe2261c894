package billing

import (
	"fmt"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is where a bill originated
type Channel string

const (
	ChannelStore  Channel = "store"
	ChannelOnline Channel = "online"
)

// PaymentMethod records how the customer paid
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentUPI          PaymentMethod = "upi"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOnline       PaymentMethod = "online"
)

// IsValid reports whether the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentBankTransfer, PaymentOnline:
		return true
	}
	return false
}

// PaymentStatus tracks money received for a bill
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// BillStatus is the lifecycle state of a bill
type BillStatus string

const (
	BillConfirmed BillStatus = "confirmed"
	BillCancelled BillStatus = "cancelled"
)

// BillNumberPrefix prefixes every bill number
const BillNumberPrefix = "BL"

// Bill is an invoice for a counter sale or an online order
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber    string               `gorm:"type:varchar(30);not null;uniqueIndex"`
	Channel       Channel              `gorm:"type:varchar(10);not null;index"`
	Customer      Customer             `gorm:"embedded;embeddedPrefix:customer_"`
	Market        valueobject.Market   `gorm:"type:varchar(4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	Items         []BillItem           `gorm:"foreignKey:BillID"`
	Totals        Totals               `gorm:"embedded"`
	PaymentMethod PaymentMethod        `gorm:"type:varchar(20);not null"`
	PaymentStatus PaymentStatus        `gorm:"type:varchar(20);not null;index"`
	Status        BillStatus           `gorm:"type:varchar(20);not null;index"`
	EstimateID    *uuid.UUID           `gorm:"type:uuid;index"`
	Notes         string               `gorm:"type:text"`
	PaidAt        *time.Time
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Bill) TableName() string {
	return "bills"
}

// BillItem is a priced line on a bill
type BillItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	BillID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineNo int       `gorm:"not null;default:0"`
	PricedLine
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (BillItem) TableName() string {
	return "bill_items"
}

// NewBill creates a confirmed, unpaid bill
func NewBill(number string, channel Channel, customer Customer, market valueobject.Market, lines []PricedLine, method PaymentMethod) (*Bill, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Bill number is required")
	}
	if channel != ChannelStore && channel != ChannelOnline {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Channel must be store or online")
	}
	if err := customer.validate(channel == ChannelOnline); err != nil {
		return nil, err
	}
	if !market.IsValid() {
		return nil, shared.NewDomainError("INVALID_MARKET", "Market must be IN or BH")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "A bill needs at least one item")
	}

	currency := market.Currency()
	totals, err := SumLines(lines, decimal.Zero, currency)
	if err != nil {
		return nil, err
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        number,
		Channel:           channel,
		Customer:          customer,
		Market:            market,
		Currency:          currency,
		Totals:            totals,
		PaymentMethod:     method,
		PaymentStatus:     PaymentUnpaid,
		Status:            BillConfirmed,
	}
	b.Items = make([]BillItem, len(lines))
	for i, l := range lines {
		b.Items[i] = BillItem{ID: uuid.New(), BillID: b.ID, LineNo: i + 1, PricedLine: l, CreatedAt: b.CreatedAt}
	}

	b.AddDomainEvent(NewBillCreatedEvent(b))
	return b, nil
}

// UpdateDetails replaces the customer, notes and discount
func (b *Bill) UpdateDetails(customer Customer, notes string, discount decimal.Decimal) error {
	if b.Status == BillCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled bills cannot be edited")
	}
	if err := customer.validate(b.Channel == ChannelOnline); err != nil {
		return err
	}
	lines := make([]PricedLine, len(b.Items))
	for i, it := range b.Items {
		lines[i] = it.PricedLine
	}
	totals, err := SumLines(lines, discount, b.Currency)
	if err != nil {
		return err
	}
	b.Customer = customer
	b.Notes = notes
	b.Totals = totals
	b.Touch()
	b.IncrementVersion()
	return nil
}

// MarkPaid records payment
func (b *Bill) MarkPaid(method PaymentMethod) error {
	if b.Status == BillCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled bills cannot be paid")
	}
	if b.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("INVALID_STATE", "Bill is already paid")
	}
	if method != "" {
		if !method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
		}
		b.PaymentMethod = method
	}
	now := time.Now()
	b.PaymentStatus = PaymentPaid
	b.PaidAt = &now
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaidEvent(b))
	return nil
}

// Cancel voids the bill. A paid bill becomes refunded.
// The caller is responsible for returning the items to stock.
func (b *Bill) Cancel(reason string) error {
	if b.Status == BillCancelled {
		return shared.NewDomainError("INVALID_STATE", "Bill is already cancelled")
	}
	now := time.Now()
	b.Status = BillCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	if b.PaymentStatus == PaymentPaid {
		b.PaymentStatus = PaymentRefunded
	}
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillCancelledEvent(b))
	return nil
}

// Remove soft-deletes the bill. Only cancelled or unpaid bills can be removed.
func (b *Bill) Remove() error {
	if b.Status == BillConfirmed && b.PaymentStatus == PaymentPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid bills must be cancelled before removal")
	}
	return b.Deactivate()
}

// StockLines returns the quantity per product on the bill
func (b *Bill) StockLines() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, it := range b.Items {
		if it.ProductID != nil {
			out[*it.ProductID] += it.Quantity
		}
	}
	return out
}

// FormatDocumentNumber renders PREFIX-YYYYMMDD-NNNN
func FormatDocumentNumber(prefix string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

// DocumentNumberDayPrefix renders the PREFIX-YYYYMMDD- part shared by a day's numbers
func DocumentNumberDayPrefix(prefix string, day time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, day.Format("20060102"))
}
