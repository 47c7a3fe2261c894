package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// productLoader fetches a product, locking it when called inside a transaction
type productLoader func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)

// pricedDocument is the outcome of pricing a set of requested lines
type pricedDocument struct {
	market   valueobject.Market
	lines    []billing.PricedLine
	products map[uuid.UUID]*catalog.Product
	// quantities is the total requested per product across lines
	quantities map[uuid.UUID]int
}

// lineBuilder prices requested lines at the live rates
type lineBuilder struct {
	pricer LinePricer
}

// build resolves the market, loads products and prices every line.
// An empty market is taken from the first product line.
func (b lineBuilder) build(ctx context.Context, market string, reqs []LineRequest, load productLoader) (*pricedDocument, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "At least one item is required")
	}
	doc := &pricedDocument{
		products:   make(map[uuid.UUID]*catalog.Product),
		quantities: make(map[uuid.UUID]int),
	}

	for _, id := range productIDs(reqs) {
		p, err := load(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Product "+id.String()+" not found")
			}
			return nil, err
		}
		if !p.IsActive {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product "+p.Code+" is not available")
		}
		doc.products[p.ID] = p
	}

	m, err := resolveMarket(market, reqs, doc.products)
	if err != nil {
		return nil, err
	}
	doc.market = m

	doc.lines = make([]billing.PricedLine, 0, len(reqs))
	for i, req := range reqs {
		src, err := doc.source(req)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		perPiece, err := b.pricer.PerPiece(ctx, src.Key, src.Charges)
		if err != nil {
			return nil, err
		}
		line, err := billing.NewPricedLine(src, req.Quantity, perPiece)
		if err != nil {
			return nil, err
		}
		doc.lines = append(doc.lines, line)
		if req.ProductID != nil {
			doc.quantities[*req.ProductID] += req.Quantity
		}
	}
	return doc, nil
}

// productIDs returns the distinct products requested, in ascending id order
// so concurrent writers lock rows in the same sequence.
func productIDs(reqs []LineRequest) []uuid.UUID {
	var ids []uuid.UUID
	for _, req := range reqs {
		if req.ProductID != nil && !slices.Contains(ids, *req.ProductID) {
			ids = append(ids, *req.ProductID)
		}
	}
	return sortIDs(ids)
}

// sortIDs orders ids ascending in place and returns them
func sortIDs(ids []uuid.UUID) []uuid.UUID {
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	return ids
}

// checkStock verifies every product line can be fulfilled
func (d *pricedDocument) checkStock() error {
	for id, qty := range d.quantities {
		p := d.products[id]
		if !p.HasStock(qty) {
			return shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Only %d of %s in stock, %d requested", p.Stock, p.Code, qty))
		}
	}
	return nil
}

func (d *pricedDocument) source(req LineRequest) (billing.LineSource, error) {
	if req.ProductID != nil {
		p := d.products[*req.ProductID]
		if p.Market != d.market {
			return billing.LineSource{}, shared.NewDomainError("INVALID_MARKET",
				"Product "+p.Code+" is sold in "+string(p.Market)+", not "+string(d.market))
		}
		return billing.LineSource{
			ProductID:   &p.ID,
			ProductCode: p.Code,
			Description: p.Name,
			Key:         p.RateKey(),
			Charges:     p.Charges(),
		}, nil
	}

	key, err := pricing.NewRateKey(req.Metal, req.Purity, string(d.market))
	if err != nil {
		return billing.LineSource{}, err
	}
	charges := pricing.Charges{
		GrossWeight:     req.GrossWeight,
		MakingPct:       req.MakingPct,
		WastagePct:      req.WastagePct,
		StonePct:        req.StonePct,
		HallmarkingFlat: req.HallmarkingCharge,
	}
	if err := charges.Validate(); err != nil {
		return billing.LineSource{}, err
	}
	description := req.Description
	if description == "" {
		description = key.Purity + " " + string(key.Metal)
	}
	return billing.LineSource{
		Description: description,
		Key:         key,
		Charges:     charges,
	}, nil
}

func resolveMarket(market string, reqs []LineRequest, products map[uuid.UUID]*catalog.Product) (valueobject.Market, error) {
	if market != "" {
		m, err := valueobject.ParseMarket(market)
		if err != nil {
			return "", shared.NewDomainError("INVALID_MARKET", "Market must be IN or BH")
		}
		return m, nil
	}
	for _, req := range reqs {
		if req.ProductID != nil {
			return products[*req.ProductID].Market, nil
		}
	}
	return "", shared.NewDomainError("INVALID_MARKET", "Market is required when no catalog product is billed")
}

// requestsFromLines turns stored lines back into requests so they can be re-priced
func requestsFromLines(lines []billing.PricedLine) []LineRequest {
	out := make([]LineRequest, len(lines))
	for i, l := range lines {
		if l.ProductID != nil {
			id := *l.ProductID
			out[i] = LineRequest{ProductID: &id, Quantity: l.Quantity}
			continue
		}
		out[i] = LineRequest{
			Quantity:          l.Quantity,
			Description:       l.Description,
			Metal:             string(l.Metal),
			Purity:            l.Purity,
			GrossWeight:       l.GrossWeight,
			MakingPct:         l.MakingPct,
			WastagePct:        l.WastagePct,
			StonePct:          l.StonePct,
			HallmarkingCharge: l.HallmarkingCharge,
		}
	}
	return out
}

// nextNumber allocates PREFIX-YYYYMMDD-NNNN from the count of the day's documents
func nextNumber(ctx context.Context, count func(context.Context, string) (int64, error), prefix string, day time.Time) (string, error) {
	n, err := count(ctx, billing.DocumentNumberDayPrefix(prefix, day))
	if err != nil {
		return "", fmt.Errorf("count %s numbers: %w", prefix, err)
	}
	return billing.FormatDocumentNumber(prefix, day, n+1), nil
}

// numberAttempts bounds retries when two writers allocate the same number
const numberAttempts = 3

// withNumberRetry reruns fn when the allocated document number collided
func withNumberRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	return err
}

// publishAll publishes and clears the pending events of each aggregate
func publishAll(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggs ...shared.AggregateRoot) {
	for _, agg := range aggs {
		if err := shared.PublishAndClear(ctx, publisher, agg); err != nil {
			logger.Warn("failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Error(err))
		}
	}
}
