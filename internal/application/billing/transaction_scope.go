package billing

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shipping"
)

// TransactionScope runs billing work in one database transaction.
// Stock decrements and the bill row commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a transaction. A returned error rolls it back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	BillRepo() billing.BillRepository
	EstimateRepo() billing.EstimateRepository
	ShipmentRepo() shipping.ShipmentRepository
}

// NoOpTransactionScope runs the function against plain repositories without a transaction.
// It is used by unit tests.
type NoOpTransactionScope struct {
	productRepo  catalog.ProductRepository
	billRepo     billing.BillRepository
	estimateRepo billing.EstimateRepository
	shipmentRepo shipping.ShipmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	billRepo billing.BillRepository,
	estimateRepo billing.EstimateRepository,
	shipmentRepo shipping.ShipmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:  productRepo,
		billRepo:     billRepo,
		estimateRepo: estimateRepo,
		shipmentRepo: shipmentRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }

// BillRepo returns the bill repository
func (s *NoOpTransactionScope) BillRepo() billing.BillRepository { return s.billRepo }

// EstimateRepo returns the estimate repository
func (s *NoOpTransactionScope) EstimateRepo() billing.EstimateRepository { return s.estimateRepo }

// ShipmentRepo returns the shipment repository
func (s *NoOpTransactionScope) ShipmentRepo() shipping.ShipmentRepository { return s.shipmentRepo }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
