package content

import (
	"context"
	"strings"
	"time"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

// SectionType selects how the storefront renders a home section
type SectionType string

const (
	SectionHeroBanner       SectionType = "hero_banner"
	SectionFeaturedProducts SectionType = "featured_products"
	SectionCategoryGrid     SectionType = "category_grid"
	SectionPromoBanner      SectionType = "promo_banner"
	SectionTestimonials     SectionType = "testimonials"
	SectionCustom           SectionType = "custom"
)

// IsValid reports whether the type is known
func (t SectionType) IsValid() bool {
	switch t {
	case SectionHeroBanner, SectionFeaturedProducts, SectionCategoryGrid,
		SectionPromoBanner, SectionTestimonials, SectionCustom:
		return true
	}
	return false
}

// MaxSectionProducts bounds the products pinned to one section
const MaxSectionProducts = 24

// HomeSection is a block of the storefront home page
type HomeSection struct {
	shared.BaseAggregateRoot
	Key        string      `gorm:"type:varchar(120);not null;uniqueIndex"`
	Type       SectionType `gorm:"type:varchar(30);not null"`
	Title      string      `gorm:"type:varchar(200)"`
	Subtitle   string      `gorm:"type:varchar(500)"`
	ImageURL   string      `gorm:"type:varchar(1000)"`
	LinkURL    string      `gorm:"type:varchar(1000)"`
	ProductIDs []uuid.UUID `gorm:"type:text;serializer:json"`
	CategoryID *uuid.UUID  `gorm:"type:uuid"`
	SortOrder  int         `gorm:"not null;default:0;index"`
	StartsAt   *time.Time
	EndsAt     *time.Time
}

// TableName returns the table name for GORM
func (HomeSection) TableName() string {
	return "home_sections"
}

// SectionContent is the editable body of a section
type SectionContent struct {
	Type       SectionType
	Title      string
	Subtitle   string
	ImageURL   string
	LinkURL    string
	ProductIDs []uuid.UUID
	CategoryID *uuid.UUID
	StartsAt   *time.Time
	EndsAt     *time.Time
}

// NewHomeSection creates a section
func NewHomeSection(key string, c SectionContent, sortOrder int) (*HomeSection, error) {
	key = strings.TrimSpace(key)
	if err := catalog.ValidateSlug(key); err != nil {
		return nil, shared.NewDomainError("INVALID_KEY", "Section key must be lowercase letters and digits separated by '-'")
	}
	s := &HomeSection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Key:               key,
		SortOrder:         sortOrder,
	}
	if err := s.apply(c); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the section body
func (s *HomeSection) Update(c SectionContent) error {
	if err := s.apply(c); err != nil {
		return err
	}
	s.Touch()
	s.IncrementVersion()
	return nil
}

// MoveTo sets the sort position
func (s *HomeSection) MoveTo(sortOrder int) {
	if s.SortOrder == sortOrder {
		return
	}
	s.SortOrder = sortOrder
	s.Touch()
	s.IncrementVersion()
}

// VisibleAt reports whether the section should be shown at t
func (s *HomeSection) VisibleAt(t time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.StartsAt != nil && t.Before(*s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && !t.Before(*s.EndsAt) {
		return false
	}
	return true
}

func (s *HomeSection) apply(c SectionContent) error {
	if !c.Type.IsValid() {
		return shared.NewDomainError("INVALID_SECTION_TYPE", "Unknown home section type")
	}
	if c.StartsAt != nil && c.EndsAt != nil && !c.EndsAt.After(*c.StartsAt) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Section end must be after its start")
	}
	if len(c.ProductIDs) > MaxSectionProducts {
		return shared.NewDomainError("TOO_MANY_PRODUCTS", "A section can pin at most 24 products")
	}
	switch c.Type {
	case SectionFeaturedProducts:
		if len(c.ProductIDs) == 0 {
			return shared.NewDomainError("INVALID_SECTION", "Featured products section needs at least one product")
		}
	case SectionHeroBanner, SectionPromoBanner:
		if c.ImageURL == "" {
			return shared.NewDomainError("INVALID_SECTION", "Banner sections need an image")
		}
	}
	s.Type = c.Type
	s.Title = c.Title
	s.Subtitle = c.Subtitle
	s.ImageURL = c.ImageURL
	s.LinkURL = c.LinkURL
	s.ProductIDs = dedupeIDs(c.ProductIDs)
	s.CategoryID = c.CategoryID
	s.StartsAt = c.StartsAt
	s.EndsAt = c.EndsAt
	return nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// HomeSectionRepository defines the interface for home section persistence
type HomeSectionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HomeSection, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]HomeSection, error)
	FindByKey(ctx context.Context, key string) (*HomeSection, error)
	// FindAllOrdered returns sections ordered by sort order
	FindAllOrdered(ctx context.Context, includeInactive bool) ([]HomeSection, error)
	Save(ctx context.Context, section *HomeSection) error
	SaveBatch(ctx context.Context, sections []*HomeSection) error
}
