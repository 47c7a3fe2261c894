package billing

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shipping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillService handles bills: counter sales, storefront orders and their documents
type BillService struct {
	billRepo billing.BillRepository
	txScope  TransactionScope
	lines    lineBuilder
	renderer DocumentRenderer
	store    StoreInfoSource
	mailer   InvoiceMailer
	events   shared.EventPublisher
	now      func() time.Time
	logger   *zap.Logger
}

// BillServiceDeps groups the collaborators of BillService
type BillServiceDeps struct {
	BillRepo billing.BillRepository
	TxScope  TransactionScope
	Pricer   LinePricer
	Renderer DocumentRenderer
	Store    StoreInfoSource
	Mailer   InvoiceMailer
	Events   shared.EventPublisher
	Logger   *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(deps BillServiceDeps) *BillService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillService{
		billRepo: deps.BillRepo,
		txScope:  deps.TxScope,
		lines:    lineBuilder{pricer: deps.Pricer},
		renderer: deps.Renderer,
		store:    deps.Store,
		mailer:   deps.Mailer,
		events:   deps.Events,
		now:      time.Now,
		logger:   logger,
	}
}

// billDraft is everything needed to raise a bill inside a transaction
type billDraft struct {
	channel    billing.Channel
	customer   billing.Customer
	market     string
	items      []LineRequest
	method     billing.PaymentMethod
	discount   decimal.Decimal
	notes      string
	estimateID *uuid.UUID
	paid       bool
}

// raise prices the lines, checks and decrements stock, and saves the bill.
// It must run inside a transaction so the stock rows stay locked until commit.
func (s *BillService) raise(ctx context.Context, repos TransactionalRepositories, d billDraft) (*billing.Bill, []*catalog.Product, error) {
	doc, err := s.lines.build(ctx, d.market, d.items, repos.ProductRepo().FindByIDForUpdate)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.checkStock(); err != nil {
		return nil, nil, err
	}

	number, err := nextNumber(ctx, repos.BillRepo().CountByNumberPrefix, billing.BillNumberPrefix, s.now())
	if err != nil {
		return nil, nil, err
	}
	bill, err := billing.NewBill(number, d.channel, d.customer, doc.market, doc.lines, d.method)
	if err != nil {
		return nil, nil, err
	}
	if !d.discount.IsZero() || d.notes != "" {
		if err := bill.UpdateDetails(d.customer, d.notes, d.discount); err != nil {
			return nil, nil, err
		}
	}
	bill.EstimateID = d.estimateID
	if d.paid {
		if err := bill.MarkPaid(""); err != nil {
			return nil, nil, err
		}
	}

	touched := make([]*catalog.Product, 0, len(doc.quantities))
	for id, qty := range doc.quantities {
		p := doc.products[id]
		if err := p.AdjustStock(-qty, "sold on "+number); err != nil {
			return nil, nil, err
		}
		if err := repos.ProductRepo().Save(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("save stock for %s: %w", p.Code, err)
		}
		touched = append(touched, p)
	}

	if err := repos.BillRepo().Save(ctx, bill); err != nil {
		return nil, nil, err
	}
	return bill, touched, nil
}

// Create raises a bill at current rates and decrements stock in one transaction
func (s *BillService) Create(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	channel := billing.ChannelStore
	if req.Channel != "" {
		channel = billing.Channel(req.Channel)
	}
	draft := billDraft{
		channel:  channel,
		customer: req.Customer.toDomain(),
		market:   req.Market,
		items:    req.Items,
		method:   billing.PaymentMethod(req.PaymentMethod),
		discount: req.Discount,
		notes:    req.Notes,
		paid:     req.Paid,
	}

	var bill *billing.Bill
	var products []*catalog.Product
	err := withNumberRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			bill, products, err = s.raise(ctx, repos, draft)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishBill(ctx, bill, products)
	s.logger.Info("bill created",
		zap.String("bill_number", bill.BillNumber),
		zap.String("channel", string(bill.Channel)),
		zap.String("grand_total", bill.Totals.GrandTotal.String()))
	resp := ToBillResponse(bill)
	return &resp, nil
}

// PlaceOrder raises an online bill and a pending shipment for it in one transaction
func (s *BillService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	items := make([]LineRequest, len(req.Lines))
	for i, l := range req.Lines {
		id := l.ProductID
		items[i] = LineRequest{ProductID: &id, Quantity: l.Quantity}
	}
	method := billing.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = billing.PaymentOnline
	}
	draft := billDraft{
		channel:  billing.ChannelOnline,
		customer: req.Customer.toDomain(),
		items:    items,
		method:   method,
		notes:    req.Notes,
	}

	var bill *billing.Bill
	var products []*catalog.Product
	var shipment *shipping.Shipment
	err := withNumberRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			bill, products, err = s.raise(ctx, repos, draft)
			if err != nil {
				return err
			}
			shipment, err = shipping.NewShipment(bill.ID, "", "", bill.Customer.Address)
			if err != nil {
				return err
			}
			return repos.ShipmentRepo().Save(ctx, shipment)
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishBill(ctx, bill, products)
	publishAll(ctx, s.events, s.logger, shipment)
	s.logger.Info("online order placed",
		zap.String("bill_number", bill.BillNumber),
		zap.String("tracking_number", shipment.TrackingNumber))
	return &OrderResponse{
		Bill:           ToBillResponse(bill),
		ShipmentID:     shipment.ID,
		TrackingNumber: shipment.TrackingNumber,
	}, nil
}

// GetByID returns a bill
func (s *BillService) GetByID(ctx context.Context, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// GetByNumber returns a bill by its number
func (s *BillService) GetByNumber(ctx context.Context, number string) (*BillResponse, error) {
	bill, err := s.billRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// List returns bills matching the filter and the total count
func (s *BillService) List(ctx context.Context, filter shared.Filter) ([]BillResponse, int64, error) {
	bills, err := s.billRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}
	total, err := s.billRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i])
	}
	return out, total, nil
}

// Update edits the customer, notes and discount. Lines are never re-priced.
func (s *BillService) Update(ctx context.Context, id uuid.UUID, req UpdateBillRequest) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bill.UpdateDetails(req.Customer.toDomain(), req.Notes, req.Discount); err != nil {
		return nil, err
	}
	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// MarkPaid records payment for a bill
func (s *BillService) MarkPaid(ctx context.Context, id uuid.UUID, req MarkPaidRequest) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bill.MarkPaid(billing.PaymentMethod(req.PaymentMethod)); err != nil {
		return nil, err
	}
	if err := s.billRepo.Save(ctx, bill); err != nil {
		return nil, err
	}
	publishAll(ctx, s.events, s.logger, bill)
	resp := ToBillResponse(bill)
	return &resp, nil
}

// Cancel voids a bill and returns its items to stock
func (s *BillService) Cancel(ctx context.Context, id uuid.UUID, req CancelBillRequest) (*BillResponse, error) {
	var bill *billing.Bill
	var products []*catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		products, err = s.cancelInTx(ctx, repos, bill, req.Reason)
		if err != nil {
			return err
		}
		return repos.BillRepo().Save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}

	s.publishBill(ctx, bill, products)
	s.logger.Info("bill cancelled", zap.String("bill_number", bill.BillNumber), zap.String("reason", req.Reason))
	resp := ToBillResponse(bill)
	return &resp, nil
}

func (s *BillService) cancelInTx(ctx context.Context, repos TransactionalRepositories, bill *billing.Bill, reason string) ([]*catalog.Product, error) {
	if err := bill.Cancel(reason); err != nil {
		return nil, err
	}
	restocked := make([]*catalog.Product, 0)
	stock := bill.StockLines()
	for _, productID := range sortIDs(slices.Collect(maps.Keys(stock))) {
		qty := stock[productID]
		p, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("product on cancelled bill no longer exists",
					zap.String("bill_number", bill.BillNumber),
					zap.String("product_id", productID.String()))
				continue
			}
			return nil, err
		}
		if err := p.AdjustStock(qty, "cancelled "+bill.BillNumber); err != nil {
			return nil, err
		}
		if err := repos.ProductRepo().Save(ctx, p); err != nil {
			return nil, err
		}
		restocked = append(restocked, p)
	}
	return restocked, nil
}

// Delete soft-deletes a bill. An unpaid confirmed bill is cancelled first so its stock returns.
func (s *BillService) Delete(ctx context.Context, id uuid.UUID) error {
	var bill *billing.Bill
	var products []*catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.BillRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if bill.Status == billing.BillConfirmed && bill.PaymentStatus == billing.PaymentUnpaid {
			products, err = s.cancelInTx(ctx, repos, bill, "removed")
			if err != nil {
				return err
			}
		}
		if err := bill.Remove(); err != nil {
			return err
		}
		return repos.BillRepo().Save(ctx, bill)
	})
	if err != nil {
		return err
	}
	s.publishBill(ctx, bill, products)
	return nil
}

// Render produces the printable invoice
func (s *BillService) Render(ctx context.Context, id uuid.UUID, format DocumentFormat) (*RenderedDocument, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := s.store.StoreInfo(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderBill(ctx, bill, store, format)
}

// EmailInvoice mails the invoice to the customer, or to req.To when set.
// The HTML invoice is the body and the PDF is attached when printing is available.
func (s *BillService) EmailInvoice(ctx context.Context, id uuid.UUID, req EmailInvoiceRequest) error {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	to := req.To
	if to == "" {
		to = bill.Customer.Email
	}
	if to == "" {
		return shared.NewDomainError("INVALID_RECIPIENT", "Bill has no customer email, provide a recipient")
	}

	store, err := s.store.StoreInfo(ctx)
	if err != nil {
		return err
	}
	body, err := s.renderer.RenderBill(ctx, bill, store, FormatHTML)
	if err != nil {
		return err
	}
	var attachment *RenderedDocument
	pdf, err := s.renderer.RenderBill(ctx, bill, store, FormatPDF)
	switch {
	case err == nil:
		attachment = pdf
	case isPrintingUnavailable(err):
		s.logger.Info("pdf printing disabled, mailing html invoice only", zap.String("bill_number", bill.BillNumber))
	default:
		return err
	}

	mail := InvoiceMail{
		To:         to,
		Subject:    fmt.Sprintf("%s invoice %s", store.Name, bill.BillNumber),
		HTMLBody:   string(body.Data),
		Attachment: attachment,
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send invoice %s: %w", bill.BillNumber, err)
	}
	s.logger.Info("invoice mailed", zap.String("bill_number", bill.BillNumber), zap.Bool("pdf", attachment != nil))
	return nil
}

func (s *BillService) publishBill(ctx context.Context, bill *billing.Bill, products []*catalog.Product) {
	aggs := make([]shared.AggregateRoot, 0, len(products)+1)
	aggs = append(aggs, bill)
	for _, p := range products {
		aggs = append(aggs, p)
	}
	publishAll(ctx, s.events, s.logger, aggs...)
}

func isPrintingUnavailable(err error) bool {
	de, ok := shared.GetDomainError(err)
	return ok && de.Code == "PRINTING_UNAVAILABLE"
}
