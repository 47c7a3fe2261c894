package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultValidityDays applies when the validity setting cannot be read
const DefaultValidityDays = 7

// EstimateService handles quotations and their conversion into bills
type EstimateService struct {
	estimateRepo billing.EstimateRepository
	productRepo  catalog.ProductRepository
	bills        *BillService
	txScope      TransactionScope
	lines        lineBuilder
	validity     ValiditySource
	renderer     DocumentRenderer
	store        StoreInfoSource
	events       shared.EventPublisher
	now          func() time.Time
	logger       *zap.Logger
}

// EstimateServiceDeps groups the collaborators of EstimateService
type EstimateServiceDeps struct {
	EstimateRepo billing.EstimateRepository
	ProductRepo  catalog.ProductRepository
	Bills        *BillService
	TxScope      TransactionScope
	Pricer       LinePricer
	Validity     ValiditySource
	Renderer     DocumentRenderer
	Store        StoreInfoSource
	Events       shared.EventPublisher
	Logger       *zap.Logger
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(deps EstimateServiceDeps) *EstimateService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EstimateService{
		estimateRepo: deps.EstimateRepo,
		productRepo:  deps.ProductRepo,
		bills:        deps.Bills,
		txScope:      deps.TxScope,
		lines:        lineBuilder{pricer: deps.Pricer},
		validity:     deps.Validity,
		renderer:     deps.Renderer,
		store:        deps.Store,
		events:       deps.Events,
		now:          time.Now,
		logger:       logger,
	}
}

// Create prices the lines at today's rates and saves a draft estimate
func (s *EstimateService) Create(ctx context.Context, req CreateEstimateRequest) (*EstimateResponse, error) {
	doc, err := s.lines.build(ctx, req.Market, req.Items, s.productRepo.FindByID)
	if err != nil {
		return nil, err
	}
	validUntil, err := s.validUntil(ctx, req.ValidUntil)
	if err != nil {
		return nil, err
	}
	customer := req.Customer.toDomain()

	var estimate *billing.Estimate
	err = withNumberRetry(func() error {
		number, err := nextNumber(ctx, s.estimateRepo.CountByNumberPrefix, billing.EstimateNumberPrefix, s.now())
		if err != nil {
			return err
		}
		estimate, err = billing.NewEstimate(number, customer, doc.market, doc.lines, validUntil)
		if err != nil {
			return err
		}
		if !req.Discount.IsZero() || req.Notes != "" {
			if err := estimate.Revise(customer, doc.lines, req.Discount, req.Notes, validUntil); err != nil {
				return err
			}
		}
		return s.estimateRepo.Save(ctx, estimate)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("estimate created",
		zap.String("estimate_number", estimate.EstimateNumber),
		zap.Time("valid_until", estimate.ValidUntil))
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// GetByID returns an estimate
func (s *EstimateService) GetByID(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// List returns estimates matching the filter and the total count
func (s *EstimateService) List(ctx context.Context, filter shared.Filter) ([]EstimateResponse, int64, error) {
	estimates, err := s.estimateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list estimates: %w", err)
	}
	total, err := s.estimateRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count estimates: %w", err)
	}
	out := make([]EstimateResponse, len(estimates))
	for i := range estimates {
		out[i] = ToEstimateResponse(&estimates[i])
	}
	return out, total, nil
}

// Update re-prices the lines at current rates and revises a draft or sent estimate
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, req UpdateEstimateRequest) (*EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !estimate.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft or sent estimates can be edited")
	}
	market := req.Market
	if market == "" {
		market = string(estimate.Market)
	}
	doc, err := s.lines.build(ctx, market, req.Items, s.productRepo.FindByID)
	if err != nil {
		return nil, err
	}
	if doc.market != estimate.Market {
		return nil, shared.NewDomainError("INVALID_MARKET", "An estimate cannot change market")
	}
	validUntil := estimate.ValidUntil
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}
	if err := estimate.Revise(req.Customer.toDomain(), doc.lines, req.Discount, req.Notes, validUntil); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.Save(ctx, estimate); err != nil {
		return nil, err
	}
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// MarkSent records that a draft estimate was handed to the customer
func (s *EstimateService) MarkSent(ctx context.Context, id uuid.UUID) (*EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := estimate.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.estimateRepo.Save(ctx, estimate); err != nil {
		return nil, err
	}
	resp := ToEstimateResponse(estimate)
	return &resp, nil
}

// Delete soft-deletes an estimate
func (s *EstimateService) Delete(ctx context.Context, id uuid.UUID) error {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := estimate.Deactivate(); err != nil {
		return err
	}
	return s.estimateRepo.Save(ctx, estimate)
}

// Render produces the printable estimate
func (s *EstimateService) Render(ctx context.Context, id uuid.UUID, format DocumentFormat) (*RenderedDocument, error) {
	estimate, err := s.estimateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := s.store.StoreInfo(ctx)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderEstimate(ctx, estimate, store, format)
}

// ConvertToBill raises a store bill from the estimate's lines re-priced at
// current rates. Stock is decremented and the estimate is linked in the same transaction.
func (s *EstimateService) ConvertToBill(ctx context.Context, id uuid.UUID, req ConvertEstimateRequest) (*BillResponse, error) {
	method := billing.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = billing.PaymentCash
	}

	var estimate *billing.Estimate
	var bill *billing.Bill
	var products []*catalog.Product
	err := withNumberRetry(func() error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			estimate, err = repos.EstimateRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if !estimate.IsActive {
				return shared.NewDomainError("INVALID_STATE", "Estimate has been deleted")
			}
			now := s.now()
			if !estimate.IsEditable() {
				return shared.NewDomainError("INVALID_STATE", "Only draft or sent estimates can be converted")
			}
			if estimate.IsExpiredAt(now) {
				return shared.NewDomainError("INVALID_STATE", "Estimate has expired")
			}

			estimateID := estimate.ID
			bill, products, err = s.bills.raise(ctx, repos, billDraft{
				channel:    billing.ChannelStore,
				customer:   estimate.Customer,
				market:     string(estimate.Market),
				items:      requestsFromLines(estimate.Lines()),
				method:     method,
				discount:   estimate.Totals.Discount,
				notes:      estimate.Notes,
				estimateID: &estimateID,
				paid:       req.Paid,
			})
			if err != nil {
				return err
			}
			if err := estimate.MarkConverted(bill.ID, now); err != nil {
				return err
			}
			return repos.EstimateRepo().Save(ctx, estimate)
		})
	})
	if err != nil {
		return nil, err
	}

	s.bills.publishBill(ctx, bill, products)
	publishAll(ctx, s.events, s.logger, estimate)
	s.logger.Info("estimate converted",
		zap.String("estimate_number", estimate.EstimateNumber),
		zap.String("bill_number", bill.BillNumber))
	resp := ToBillResponse(bill)
	return &resp, nil
}

// ExpireDue marks at most limit lapsed estimates as expired and reports how many changed
func (s *EstimateService) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	lapsed, err := s.estimateRepo.FindLapsed(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("find lapsed estimates: %w", err)
	}
	expired := 0
	for i := range lapsed {
		e := &lapsed[i]
		if !e.Expire(now) {
			continue
		}
		if err := s.estimateRepo.Save(ctx, e); err != nil {
			if errors.Is(err, shared.ErrConcurrentModification) {
				s.logger.Debug("estimate changed while expiring, skipped", zap.String("estimate_number", e.EstimateNumber))
				continue
			}
			return expired, fmt.Errorf("expire %s: %w", e.EstimateNumber, err)
		}
		expired++
	}
	return expired, nil
}

func (s *EstimateService) validUntil(ctx context.Context, requested *time.Time) (time.Time, error) {
	if requested != nil {
		if !requested.After(s.now()) {
			return time.Time{}, shared.NewDomainError("INVALID_VALIDITY", "Valid-until must be in the future")
		}
		return *requested, nil
	}
	days := DefaultValidityDays
	if s.validity != nil {
		d, err := s.validity.EstimateValidityDays(ctx)
		if err != nil {
			s.logger.Warn("falling back to default estimate validity", zap.Error(err))
		} else if d > 0 {
			days = d
		}
	}
	return s.now().AddDate(0, 0, days), nil
}
