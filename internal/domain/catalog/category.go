package catalog

import (
	"regexp"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugCollapser = regexp.MustCompile(`[^a-z0-9]+`)
)

// Category groups products for the storefront (rings, necklaces, bangles ...)
type Category struct {
	shared.BaseAggregateRoot
	Name        string     `gorm:"type:varchar(100);not null"`
	Slug        string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string     `gorm:"type:text"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	SortOrder   int        `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category. An empty slug is derived from the name.
func NewCategory(name, slug string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Slug:              slug,
	}, nil
}

// Update replaces the category's editable fields
func (c *Category) Update(name, slug, description string, parentID *uuid.UUID, sortOrder int) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	if parentID != nil && *parentID == c.ID {
		return shared.NewDomainError("INVALID_PARENT", "Category cannot be its own parent")
	}
	c.Name = strings.TrimSpace(name)
	c.Slug = slug
	c.Description = description
	c.ParentID = parentID
	c.SortOrder = sortOrder
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Slugify lowercases s and joins its alphanumeric runs with '-'
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugCollapser.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidateSlug checks the lowercase kebab form
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) || len(slug) > 120 {
		return shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters and digits separated by '-'")
	}
	return nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
