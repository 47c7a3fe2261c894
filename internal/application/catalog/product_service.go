package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageUploadExpiry is how long a presigned image upload URL stays valid
const ImageUploadExpiry = 15 * time.Minute

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	pricer       ProductPricer
	images       ImageStorage
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	pricer ProductPricer,
	images ImageStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		pricer:       pricer,
		images:       images,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

func (s *ProductService) create(ctx context.Context, req CreateProductRequest) (*catalog.Product, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.spec())
	if err != nil {
		return nil, err
	}
	if err := product.Update(req.Name, req.Description, req.CategoryID, req.Tags, req.IsFeatured); err != nil {
		return nil, err
	}
	if req.Stock > 0 {
		if err := product.SetStock(req.Stock, "initial stock"); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID returns a product. Inactive products are hidden unless includeInactive is set.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductResponse, error) {
	product, err := s.find(ctx, id, includeInactive)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// GetByCode returns an active product by its code
func (s *ProductService) GetByCode(ctx context.Context, code string, includeInactive bool) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return s.respond(ctx, product), nil
}

// List returns products matching the filter, each priced at the live rate
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = *s.respond(ctx, &products[i])
	}
	return out, total, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && !strings.EqualFold(strings.TrimSpace(*req.Code), product.Code) {
		exists, err := s.productRepo.ExistsByCode(ctx, *req.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
		}
		if err := product.UpdateCode(*req.Code); err != nil {
			return nil, err
		}
	}

	if req.touchesSpec() {
		if err := product.UpdateSpec(req.mergeSpec(product)); err != nil {
			return nil, err
		}
	}

	name, description, categoryID, tags, featured := product.Name, product.Description, product.CategoryID, product.Tags, product.IsFeatured
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		categoryID = req.CategoryID
	}
	if req.ClearCategory {
		categoryID = nil
	}
	if req.Tags != nil {
		tags = req.Tags
	}
	if req.IsFeatured != nil {
		featured = *req.IsFeatured
	}
	if err := product.Update(name, description, categoryID, tags, featured); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// Delete soft-deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := product.Deactivate(); err != nil {
		return err
	}
	return s.save(ctx, product)
}

// Activate restores a soft-deleted product
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Activate(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// AdjustStock applies a manual stock correction
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reason := req.Reason
	if reason == "" {
		reason = "manual adjustment"
	}
	if err := product.AdjustStock(req.Delta, reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// ImageUploadURL issues a presigned URL for uploading a product image.
// The returned key must be attached once the upload has finished.
func (s *ProductService) ImageUploadURL(ctx context.Context, id uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only image uploads are allowed")
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= catalog.MaxProductImages {
		return nil, shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 10 images")
	}

	key := imageKey(product.ID, req.Filename)
	url, expiresAt, err := s.images.PresignUpload(ctx, key, req.ContentType, ImageUploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign image upload: %w", err)
	}
	return &ImageUploadResponse{
		UploadURL: url,
		Key:       key,
		PublicURL: s.images.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// UploadImage stores image bytes sent through the API and attaches them
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (*ProductResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only image uploads are allowed")
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := imageKey(product.ID, filename)
	if err := s.images.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if err := product.AttachImage(key); err != nil {
		s.discardImage(ctx, key)
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		s.discardImage(ctx, key)
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// AttachImage attaches an object uploaded through a presigned URL
func (s *ProductService) AttachImage(ctx context.Context, id uuid.UUID, req AttachImageRequest) (*ProductResponse, error) {
	if !strings.HasPrefix(req.Key, imagePrefix(id)) {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image key does not belong to this product")
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.images.Exists(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("check image: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Image has not been uploaded")
	}
	if err := product.AttachImage(req.Key); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// DetachImage removes an image from the product and deletes the object
func (s *ProductService) DetachImage(ctx context.Context, id uuid.UUID, key string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.DetachImage(key); err != nil {
		return nil, err
	}
	if err := s.save(ctx, product); err != nil {
		return nil, err
	}
	s.discardImage(ctx, key)
	return s.respond(ctx, product), nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
	}
	return product, nil
}

func (s *ProductService) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	if !category.IsActive {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is inactive")
	}
	return nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	if err := shared.PublishAndClear(ctx, s.events, product); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
	return nil
}

// respond prices the product. A pricing failure is logged and yields a null price.
func (s *ProductService) respond(ctx context.Context, product *catalog.Product) *ProductResponse {
	price, err := s.pricer.PriceProduct(ctx, product)
	if err != nil {
		s.logger.Warn("failed to price product",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		price = pricing.Unavailable(product.Currency())
	}
	resp := ToProductResponse(product, price, s.images.PublicURL)
	return &resp
}

func (s *ProductService) discardImage(ctx context.Context, key string) {
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete image object", zap.String("key", key), zap.Error(err))
	}
}

func imagePrefix(productID uuid.UUID) string {
	return "products/" + productID.String() + "/"
}

func imageKey(productID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return imagePrefix(productID) + uuid.NewString() + ext
}
