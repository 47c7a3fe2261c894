package catalog

import (
	"regexp"
	"slices"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxProductImages bounds the number of images attached to a product
const MaxProductImages = 10

var productCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]*$`)

// Product is a piece of jewelry in the catalog.
// Its price is not stored; it is derived from the live metal rate.
type Product struct {
	shared.BaseAggregateRoot
	Code              string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string             `gorm:"type:varchar(200);not null"`
	Description       string             `gorm:"type:text"`
	CategoryID        *uuid.UUID         `gorm:"type:uuid;index"`
	Metal             pricing.Metal      `gorm:"type:varchar(20);not null;index"`
	Purity            string             `gorm:"type:varchar(10);not null"`
	Market            valueobject.Market `gorm:"type:varchar(4);not null;index"`
	GrossWeight       decimal.Decimal    `gorm:"type:decimal(12,3);not null"`
	NetWeight         decimal.Decimal    `gorm:"type:decimal(12,3);not null;default:0"`
	StoneWeight       decimal.Decimal    `gorm:"type:decimal(12,3);not null;default:0"`
	MakingPct         decimal.Decimal    `gorm:"type:decimal(7,3);not null;default:0"`
	WastagePct        decimal.Decimal    `gorm:"type:decimal(7,3);not null;default:0"`
	StonePct          decimal.Decimal    `gorm:"type:decimal(7,3);not null;default:0"`
	HallmarkingCharge decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Stock             int                `gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	Images            []string           `gorm:"type:text;serializer:json"`
	Tags              []string           `gorm:"type:text;serializer:json"`
	IsFeatured        bool               `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Spec holds the metal and fabrication attributes of a product
type Spec struct {
	Metal             string
	Purity            string
	Market            string
	GrossWeight       decimal.Decimal
	NetWeight         decimal.Decimal
	StoneWeight       decimal.Decimal
	MakingPct         decimal.Decimal
	WastagePct        decimal.Decimal
	StonePct          decimal.Decimal
	HallmarkingCharge decimal.Decimal
}

// NewProduct creates a new product with zero stock
func NewProduct(code, name string, spec Spec) (*Product, error) {
	normalized, err := normalizeProductCode(code)
	if err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              normalized,
		Name:              strings.TrimSpace(name),
		Images:            []string{},
		Tags:              []string{},
	}
	if err := p.applySpec(spec); err != nil {
		return nil, err
	}

	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the descriptive fields
func (p *Product) Update(name, description string, categoryID *uuid.UUID, tags []string, featured bool) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.CategoryID = categoryID
	p.Tags = normalizeTags(tags)
	p.IsFeatured = featured
	p.Touch()
	p.IncrementVersion()
	return nil
}

// UpdateCode changes the product code
func (p *Product) UpdateCode(code string) error {
	normalized, err := normalizeProductCode(code)
	if err != nil {
		return err
	}
	p.Code = normalized
	p.Touch()
	p.IncrementVersion()
	return nil
}

// UpdateSpec replaces the metal and fabrication attributes
func (p *Product) UpdateSpec(spec Spec) error {
	if err := p.applySpec(spec); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	return nil
}

func (p *Product) applySpec(spec Spec) error {
	metal, err := pricing.ParseMetal(spec.Metal)
	if err != nil {
		return err
	}
	purity, err := pricing.NormalizePurity(spec.Purity)
	if err != nil {
		return err
	}
	market, err := valueobject.ParseMarket(spec.Market)
	if err != nil {
		return shared.NewDomainError("INVALID_MARKET", "Market must be IN or BH")
	}
	if !spec.GrossWeight.IsPositive() {
		return shared.NewDomainError("INVALID_WEIGHT", "Gross weight must be greater than zero")
	}
	if spec.NetWeight.IsNegative() || spec.StoneWeight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Net and stone weight cannot be negative")
	}
	if spec.NetWeight.GreaterThan(spec.GrossWeight) {
		return shared.NewDomainError("INVALID_WEIGHT", "Net weight cannot exceed gross weight")
	}
	charges := pricing.Charges{
		GrossWeight:     spec.GrossWeight,
		MakingPct:       spec.MakingPct,
		WastagePct:      spec.WastagePct,
		StonePct:        spec.StonePct,
		HallmarkingFlat: spec.HallmarkingCharge,
	}
	if err := charges.Validate(); err != nil {
		return err
	}

	p.Metal = metal
	p.Purity = purity
	p.Market = market
	p.GrossWeight = spec.GrossWeight
	p.NetWeight = spec.NetWeight
	p.StoneWeight = spec.StoneWeight
	p.MakingPct = spec.MakingPct
	p.WastagePct = spec.WastagePct
	p.StonePct = spec.StonePct
	p.HallmarkingCharge = spec.HallmarkingCharge
	return nil
}

// RateKey returns the metal rate key this product is priced against
func (p *Product) RateKey() pricing.RateKey {
	return pricing.RateKey{Metal: p.Metal, Purity: p.Purity, Market: p.Market}
}

// Charges returns the per-piece pricing inputs of the product
func (p *Product) Charges() pricing.Charges {
	return pricing.Charges{
		GrossWeight:     p.GrossWeight,
		MakingPct:       p.MakingPct,
		WastagePct:      p.WastagePct,
		StonePct:        p.StonePct,
		HallmarkingFlat: p.HallmarkingCharge,
	}
}

// Currency returns the currency the product is sold in
func (p *Product) Currency() valueobject.Currency {
	return p.Market.Currency()
}

// AdjustStock applies a signed delta. Stock never goes below zero.
func (p *Product) AdjustStock(delta int, reason string) error {
	next := p.Stock + delta
	if next < 0 {
		return shared.ErrInsufficientStock
	}
	old := p.Stock
	p.Stock = next
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, old, reason))
	return nil
}

// SetStock sets an absolute stock level
func (p *Product) SetStock(stock int, reason string) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	return p.AdjustStock(stock-p.Stock, reason)
}

// HasStock reports whether qty pieces are available
func (p *Product) HasStock(qty int) bool {
	return p.IsActive && p.Stock >= qty
}

// AttachImage records an uploaded image object key
func (p *Product) AttachImage(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Image key cannot be empty")
	}
	if slices.Contains(p.Images, key) {
		return nil
	}
	if len(p.Images) >= MaxProductImages {
		return shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 10 images")
	}
	p.Images = append(p.Images, key)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// DetachImage removes an image key
func (p *Product) DetachImage(key string) error {
	idx := slices.Index(p.Images, key)
	if idx < 0 {
		return shared.NewDomainError("NOT_FOUND", "Image not found on product")
	}
	p.Images = slices.Delete(p.Images, idx, idx+1)
	p.Touch()
	p.IncrementVersion()
	return nil
}

func normalizeProductCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return "", shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if !productCodePattern.MatchString(code) {
		return "", shared.NewDomainError("INVALID_CODE", "Product code may only contain letters, digits, '-' and '_'")
	}
	return code, nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
