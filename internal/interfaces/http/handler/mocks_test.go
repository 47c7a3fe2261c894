package handler

import (
	"context"
	"io"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	cartapp "github.com/aurum/jewelstore/internal/application/cart"
	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	contentapp "github.com/aurum/jewelstore/internal/application/content"
	identityapp "github.com/aurum/jewelstore/internal/application/identity"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	shippingapp "github.com/aurum/jewelstore/internal/application/shipping"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockProductService struct{ mock.Mock }

func (m *mockProductService) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, req)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, includeInactive)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) GetByCode(ctx context.Context, code string, includeInactive bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, code, includeInactive)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) List(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]catalogapp.ProductResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) Activate(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) AdjustStock(ctx context.Context, id uuid.UUID, req catalogapp.AdjustStockRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) ImageUploadURL(ctx context.Context, id uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*catalogapp.ImageUploadResponse](args, 0), args.Error(1)
}

func (m *mockProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, filename, contentType, data)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) AttachImage(ctx context.Context, id uuid.UUID, req catalogapp.AttachImageRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) DetachImage(ctx context.Context, id uuid.UUID, key string) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, key)
	return value[*catalogapp.ProductResponse](args, 0), args.Error(1)
}

func (m *mockProductService) Import(ctx context.Context, r io.Reader, dryRun bool) (*catalogapp.ImportResult, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, string(data), dryRun)
	return value[*catalogapp.ImportResult](args, 0), args.Error(1)
}

type mockCategoryService struct{ mock.Mock }

func (m *mockCategoryService) Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, req)
	return value[*catalogapp.CategoryResponse](args, 0), args.Error(1)
}

func (m *mockCategoryService) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, id, includeInactive)
	return value[*catalogapp.CategoryResponse](args, 0), args.Error(1)
}

func (m *mockCategoryService) GetBySlug(ctx context.Context, slug string) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, slug)
	return value[*catalogapp.CategoryResponse](args, 0), args.Error(1)
}

func (m *mockCategoryService) List(ctx context.Context, filter shared.Filter) ([]catalogapp.CategoryResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]catalogapp.CategoryResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockCategoryService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*catalogapp.CategoryResponse](args, 0), args.Error(1)
}

func (m *mockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockRateService struct{ mock.Mock }

func (m *mockRateService) List(ctx context.Context, filter shared.Filter) ([]pricingapp.RateResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]pricingapp.RateResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockRateService) GetByID(ctx context.Context, id uuid.UUID) (*pricingapp.RateResponse, error) {
	args := m.Called(ctx, id)
	return value[*pricingapp.RateResponse](args, 0), args.Error(1)
}

func (m *mockRateService) Upsert(ctx context.Context, req pricingapp.UpsertRateRequest) (*pricingapp.RateResponse, error) {
	args := m.Called(ctx, req)
	return value[*pricingapp.RateResponse](args, 0), args.Error(1)
}

func (m *mockRateService) Update(ctx context.Context, id uuid.UUID, req pricingapp.UpdateRateRequest) (*pricingapp.RateResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*pricingapp.RateResponse](args, 0), args.Error(1)
}

func (m *mockRateService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockQuoter struct{ mock.Mock }

func (m *mockQuoter) Quote(ctx context.Context, req pricingapp.QuoteRequest) (*pricingapp.QuoteResponse, error) {
	args := m.Called(ctx, req)
	return value[*pricingapp.QuoteResponse](args, 0), args.Error(1)
}

type mockSettingService struct{ mock.Mock }

func (m *mockSettingService) List(ctx context.Context, filter shared.Filter) ([]settingsapp.SettingResponse, error) {
	args := m.Called(ctx, filter)
	return value[[]settingsapp.SettingResponse](args, 0), args.Error(1)
}

func (m *mockSettingService) ListPublic(ctx context.Context) ([]settingsapp.SettingResponse, error) {
	args := m.Called(ctx)
	return value[[]settingsapp.SettingResponse](args, 0), args.Error(1)
}

func (m *mockSettingService) Get(ctx context.Context, key string) (*settingsapp.SettingResponse, error) {
	args := m.Called(ctx, key)
	return value[*settingsapp.SettingResponse](args, 0), args.Error(1)
}

func (m *mockSettingService) Upsert(ctx context.Context, key string, req settingsapp.UpsertSettingRequest) (*settingsapp.SettingResponse, error) {
	args := m.Called(ctx, key, req)
	return value[*settingsapp.SettingResponse](args, 0), args.Error(1)
}

func (m *mockSettingService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockBillService struct{ mock.Mock }

func (m *mockBillService) Create(ctx context.Context, req billingapp.CreateBillRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, req)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) GetByID(ctx context.Context, id uuid.UUID) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, id)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) GetByNumber(ctx context.Context, number string) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, number)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) List(ctx context.Context, filter shared.Filter) ([]billingapp.BillResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]billingapp.BillResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockBillService) Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateBillRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) MarkPaid(ctx context.Context, id uuid.UUID, req billingapp.MarkPaidRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) Cancel(ctx context.Context, id uuid.UUID, req billingapp.CancelBillRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

func (m *mockBillService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBillService) Render(ctx context.Context, id uuid.UUID, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error) {
	args := m.Called(ctx, id, format)
	return value[*billingapp.RenderedDocument](args, 0), args.Error(1)
}

func (m *mockBillService) EmailInvoice(ctx context.Context, id uuid.UUID, req billingapp.EmailInvoiceRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

type mockEstimateService struct{ mock.Mock }

func (m *mockEstimateService) Create(ctx context.Context, req billingapp.CreateEstimateRequest) (*billingapp.EstimateResponse, error) {
	args := m.Called(ctx, req)
	return value[*billingapp.EstimateResponse](args, 0), args.Error(1)
}

func (m *mockEstimateService) GetByID(ctx context.Context, id uuid.UUID) (*billingapp.EstimateResponse, error) {
	args := m.Called(ctx, id)
	return value[*billingapp.EstimateResponse](args, 0), args.Error(1)
}

func (m *mockEstimateService) List(ctx context.Context, filter shared.Filter) ([]billingapp.EstimateResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]billingapp.EstimateResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockEstimateService) Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateEstimateRequest) (*billingapp.EstimateResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.EstimateResponse](args, 0), args.Error(1)
}

func (m *mockEstimateService) MarkSent(ctx context.Context, id uuid.UUID) (*billingapp.EstimateResponse, error) {
	args := m.Called(ctx, id)
	return value[*billingapp.EstimateResponse](args, 0), args.Error(1)
}

func (m *mockEstimateService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEstimateService) Render(ctx context.Context, id uuid.UUID, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error) {
	args := m.Called(ctx, id, format)
	return value[*billingapp.RenderedDocument](args, 0), args.Error(1)
}

func (m *mockEstimateService) ConvertToBill(ctx context.Context, id uuid.UUID, req billingapp.ConvertEstimateRequest) (*billingapp.BillResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.BillResponse](args, 0), args.Error(1)
}

type mockCartService struct{ mock.Mock }

func (m *mockCartService) Get(ctx context.Context, id uuid.UUID) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, id)
	return value[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *mockCartService) AddItem(ctx context.Context, id uuid.UUID, req cartapp.AddItemRequest) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *mockCartService) UpdateItem(ctx context.Context, id, productID uuid.UUID, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, id, productID, req)
	return value[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *mockCartService) RemoveItem(ctx context.Context, id, productID uuid.UUID) (*cartapp.CartResponse, error) {
	args := m.Called(ctx, id, productID)
	return value[*cartapp.CartResponse](args, 0), args.Error(1)
}

func (m *mockCartService) Clear(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCartService) Checkout(ctx context.Context, id uuid.UUID, req cartapp.CheckoutRequest) (*billingapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*billingapp.OrderResponse](args, 0), args.Error(1)
}

type mockHomeSectionService struct{ mock.Mock }

func (m *mockHomeSectionService) Create(ctx context.Context, req contentapp.CreateSectionRequest) (*contentapp.SectionResponse, error) {
	args := m.Called(ctx, req)
	return value[*contentapp.SectionResponse](args, 0), args.Error(1)
}

func (m *mockHomeSectionService) GetByID(ctx context.Context, id uuid.UUID) (*contentapp.SectionResponse, error) {
	args := m.Called(ctx, id)
	return value[*contentapp.SectionResponse](args, 0), args.Error(1)
}

func (m *mockHomeSectionService) List(ctx context.Context, includeInactive bool) ([]contentapp.SectionResponse, error) {
	args := m.Called(ctx, includeInactive)
	return value[[]contentapp.SectionResponse](args, 0), args.Error(1)
}

func (m *mockHomeSectionService) ListPublic(ctx context.Context) ([]contentapp.SectionResponse, error) {
	args := m.Called(ctx)
	return value[[]contentapp.SectionResponse](args, 0), args.Error(1)
}

func (m *mockHomeSectionService) Update(ctx context.Context, id uuid.UUID, req contentapp.UpdateSectionRequest) (*contentapp.SectionResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*contentapp.SectionResponse](args, 0), args.Error(1)
}

func (m *mockHomeSectionService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockHomeSectionService) Reorder(ctx context.Context, req contentapp.ReorderRequest) ([]contentapp.SectionResponse, error) {
	args := m.Called(ctx, req)
	return value[[]contentapp.SectionResponse](args, 0), args.Error(1)
}

type mockShipmentService struct{ mock.Mock }

func (m *mockShipmentService) Create(ctx context.Context, req shippingapp.CreateShipmentRequest) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, req)
	return value[*shippingapp.ShipmentResponse](args, 0), args.Error(1)
}

func (m *mockShipmentService) GetByID(ctx context.Context, id uuid.UUID) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, id)
	return value[*shippingapp.ShipmentResponse](args, 0), args.Error(1)
}

func (m *mockShipmentService) List(ctx context.Context, filter shared.Filter) ([]shippingapp.ShipmentResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]shippingapp.ShipmentResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockShipmentService) UpdateStatus(ctx context.Context, id uuid.UUID, req shippingapp.UpdateStatusRequest) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*shippingapp.ShipmentResponse](args, 0), args.Error(1)
}

func (m *mockShipmentService) UpdateCarrier(ctx context.Context, id uuid.UUID, req shippingapp.UpdateCarrierRequest) (*shippingapp.ShipmentResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*shippingapp.ShipmentResponse](args, 0), args.Error(1)
}

func (m *mockShipmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockShipmentService) Track(ctx context.Context, trackingNumber string) (*shippingapp.TrackingResponse, error) {
	args := m.Called(ctx, trackingNumber)
	return value[*shippingapp.TrackingResponse](args, 0), args.Error(1)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, req)
	return value[*identityapp.TokenResponse](args, 0), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, req)
	return value[*identityapp.TokenResponse](args, 0), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, claims *auth.Claims, req identityapp.LogoutRequest) error {
	return m.Called(ctx, claims, req).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, userID)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Create(ctx context.Context, req identityapp.CreateUserRequest) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, req)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, id)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, filter shared.Filter) ([]identityapp.UserResponse, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]identityapp.UserResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserService) Update(ctx context.Context, id uuid.UUID, req identityapp.UpdateUserRequest) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, id, req)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

func (m *mockUserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, actorID, id)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

func (m *mockUserService) Activate(ctx context.Context, id uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, id)
	return value[*identityapp.UserResponse](args, 0), args.Error(1)
}

var (
	_ ProductService     = (*mockProductService)(nil)
	_ CategoryService    = (*mockCategoryService)(nil)
	_ RateService        = (*mockRateService)(nil)
	_ Quoter             = (*mockQuoter)(nil)
	_ SettingService     = (*mockSettingService)(nil)
	_ BillService        = (*mockBillService)(nil)
	_ EstimateService    = (*mockEstimateService)(nil)
	_ CartService        = (*mockCartService)(nil)
	_ HomeSectionService = (*mockHomeSectionService)(nil)
	_ ShipmentService    = (*mockShipmentService)(nil)
	_ AuthService        = (*mockAuthService)(nil)
	_ UserService        = (*mockUserService)(nil)
)
