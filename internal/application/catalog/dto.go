package catalog

import (
	"time"

	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code              string          `json:"code" binding:"required,min=1,max=50"`
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Description       string          `json:"description" binding:"max=5000"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	Metal             string          `json:"metal" binding:"required,oneof=gold silver platinum"`
	Purity            string          `json:"purity" binding:"required,max=10"`
	Market            string          `json:"market" binding:"required,oneof=IN BH in bh"`
	GrossWeight       decimal.Decimal `json:"gross_weight" binding:"required"`
	NetWeight         decimal.Decimal `json:"net_weight"`
	StoneWeight       decimal.Decimal `json:"stone_weight"`
	MakingPct         decimal.Decimal `json:"making_pct"`
	WastagePct        decimal.Decimal `json:"wastage_pct"`
	StonePct          decimal.Decimal `json:"stone_pct"`
	HallmarkingCharge decimal.Decimal `json:"hallmarking_charge"`
	Stock             int             `json:"stock" binding:"min=0"`
	Tags              []string        `json:"tags" binding:"max=20,dive,max=40"`
	IsFeatured        bool            `json:"is_featured"`
}

func (r CreateProductRequest) spec() catalog.Spec {
	return catalog.Spec{
		Metal:             r.Metal,
		Purity:            r.Purity,
		Market:            r.Market,
		GrossWeight:       r.GrossWeight,
		NetWeight:         r.NetWeight,
		StoneWeight:       r.StoneWeight,
		MakingPct:         r.MakingPct,
		WastagePct:        r.WastagePct,
		StonePct:          r.StonePct,
		HallmarkingCharge: r.HallmarkingCharge,
	}
}

// UpdateProductRequest represents a partial product update. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Code              *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Name              *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=5000"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	ClearCategory     bool             `json:"clear_category"`
	Metal             *string          `json:"metal" binding:"omitempty,oneof=gold silver platinum"`
	Purity            *string          `json:"purity" binding:"omitempty,max=10"`
	Market            *string          `json:"market" binding:"omitempty,oneof=IN BH in bh"`
	GrossWeight       *decimal.Decimal `json:"gross_weight"`
	NetWeight         *decimal.Decimal `json:"net_weight"`
	StoneWeight       *decimal.Decimal `json:"stone_weight"`
	MakingPct         *decimal.Decimal `json:"making_pct"`
	WastagePct        *decimal.Decimal `json:"wastage_pct"`
	StonePct          *decimal.Decimal `json:"stone_pct"`
	HallmarkingCharge *decimal.Decimal `json:"hallmarking_charge"`
	Tags              []string         `json:"tags" binding:"omitempty,max=20,dive,max=40"`
	IsFeatured        *bool            `json:"is_featured"`
}

func (r UpdateProductRequest) touchesSpec() bool {
	return r.Metal != nil || r.Purity != nil || r.Market != nil || r.GrossWeight != nil ||
		r.NetWeight != nil || r.StoneWeight != nil || r.MakingPct != nil || r.WastagePct != nil ||
		r.StonePct != nil || r.HallmarkingCharge != nil
}

// mergeSpec overlays the set fields onto the product's current spec
func (r UpdateProductRequest) mergeSpec(p *catalog.Product) catalog.Spec {
	spec := catalog.Spec{
		Metal:             string(p.Metal),
		Purity:            p.Purity,
		Market:            string(p.Market),
		GrossWeight:       p.GrossWeight,
		NetWeight:         p.NetWeight,
		StoneWeight:       p.StoneWeight,
		MakingPct:         p.MakingPct,
		WastagePct:        p.WastagePct,
		StonePct:          p.StonePct,
		HallmarkingCharge: p.HallmarkingCharge,
	}
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setDecimal := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&spec.Metal, r.Metal)
	setString(&spec.Purity, r.Purity)
	setString(&spec.Market, r.Market)
	setDecimal(&spec.GrossWeight, r.GrossWeight)
	setDecimal(&spec.NetWeight, r.NetWeight)
	setDecimal(&spec.StoneWeight, r.StoneWeight)
	setDecimal(&spec.MakingPct, r.MakingPct)
	setDecimal(&spec.WastagePct, r.WastagePct)
	setDecimal(&spec.StonePct, r.StonePct)
	setDecimal(&spec.HallmarkingCharge, r.HallmarkingCharge)
	return spec
}

// AdjustStockRequest applies a signed stock delta
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"max=200"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=200"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned URL and the key to attach afterwards
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AttachImageRequest attaches an uploaded object to the product
type AttachImageRequest struct {
	Key string `json:"key" binding:"required,max=500"`
}

// ProductImage is an image reference in responses
type ProductImage struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ProductResponse represents a product in API responses. Price is null when no rate exists.
type ProductResponse struct {
	ID                uuid.UUID                 `json:"id"`
	Code              string                    `json:"code"`
	Name              string                    `json:"name"`
	Description       string                    `json:"description"`
	CategoryID        *uuid.UUID                `json:"category_id"`
	Metal             pricing.Metal             `json:"metal"`
	Purity            string                    `json:"purity"`
	Market            valueobject.Market        `json:"market"`
	Currency          valueobject.Currency      `json:"currency"`
	GrossWeight       decimal.Decimal           `json:"gross_weight"`
	NetWeight         decimal.Decimal           `json:"net_weight"`
	StoneWeight       decimal.Decimal           `json:"stone_weight"`
	MakingPct         decimal.Decimal           `json:"making_pct"`
	WastagePct        decimal.Decimal           `json:"wastage_pct"`
	StonePct          decimal.Decimal           `json:"stone_pct"`
	HallmarkingCharge decimal.Decimal           `json:"hallmarking_charge"`
	Stock             int                       `json:"stock"`
	InStock           bool                      `json:"in_stock"`
	Images            []ProductImage            `json:"images"`
	Tags              []string                  `json:"tags"`
	IsFeatured        bool                      `json:"is_featured"`
	IsActive          bool                      `json:"is_active"`
	Price             *pricingapp.PriceResponse `json:"price"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	Version           int                       `json:"version"`
}

// ToProductResponse converts a product and its priced breakdown to a response
func ToProductResponse(p *catalog.Product, price pricing.Breakdown, imageURL func(string) string) ProductResponse {
	images := make([]ProductImage, len(p.Images))
	for i, key := range p.Images {
		images[i] = ProductImage{Key: key, URL: imageURL(key)}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		Metal:             p.Metal,
		Purity:            p.Purity,
		Market:            p.Market,
		Currency:          p.Currency(),
		GrossWeight:       p.GrossWeight,
		NetWeight:         p.NetWeight,
		StoneWeight:       p.StoneWeight,
		MakingPct:         p.MakingPct,
		WastagePct:        p.WastagePct,
		StonePct:          p.StonePct,
		HallmarkingCharge: p.HallmarkingCharge,
		Stock:             p.Stock,
		InStock:           p.Stock > 0,
		Images:            images,
		Tags:              tags,
		IsFeatured:        p.IsFeatured,
		IsActive:          p.IsActive,
		Price:             pricingapp.ToPriceResponse(price),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Slug        string     `json:"slug" binding:"omitempty,max=120"`
	Description string     `json:"description" binding:"max=2000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// UpdateCategoryRequest replaces a category's editable fields
type UpdateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=100"`
	Slug        string     `json:"slug" binding:"required,max=120"`
	Description string     `json:"description" binding:"max=2000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}
