package content

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/content"
	"github.com/google/uuid"
)

// SectionRequest is the editable body of a home section
type SectionRequest struct {
	Type       string      `json:"type" binding:"required,oneof=hero_banner featured_products category_grid promo_banner testimonials custom"`
	Title      string      `json:"title" binding:"max=200"`
	Subtitle   string      `json:"subtitle" binding:"max=500"`
	ImageURL   string      `json:"image_url" binding:"omitempty,url,max=1000"`
	LinkURL    string      `json:"link_url" binding:"max=1000"`
	ProductIDs []uuid.UUID `json:"product_ids" binding:"max=24"`
	CategoryID *uuid.UUID  `json:"category_id"`
	StartsAt   *time.Time  `json:"starts_at"`
	EndsAt     *time.Time  `json:"ends_at"`
}

func (r SectionRequest) toContent() content.SectionContent {
	return content.SectionContent{
		Type:       content.SectionType(r.Type),
		Title:      r.Title,
		Subtitle:   r.Subtitle,
		ImageURL:   r.ImageURL,
		LinkURL:    r.LinkURL,
		ProductIDs: r.ProductIDs,
		CategoryID: r.CategoryID,
		StartsAt:   r.StartsAt,
		EndsAt:     r.EndsAt,
	}
}

// CreateSectionRequest creates a home section
type CreateSectionRequest struct {
	Key       string `json:"key" binding:"required,max=120"`
	SortOrder *int   `json:"sort_order"`
	SectionRequest
}

// UpdateSectionRequest replaces a section's body
type UpdateSectionRequest struct {
	SectionRequest
}

// ReorderRequest lists section ids in display order
type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=200"`
}

// SectionResponse represents a home section in API responses
type SectionResponse struct {
	ID         uuid.UUID           `json:"id"`
	Key        string              `json:"key"`
	Type       content.SectionType `json:"type"`
	Title      string              `json:"title"`
	Subtitle   string              `json:"subtitle"`
	ImageURL   string              `json:"image_url"`
	LinkURL    string              `json:"link_url"`
	ProductIDs []uuid.UUID         `json:"product_ids"`
	CategoryID *uuid.UUID          `json:"category_id"`
	SortOrder  int                 `json:"sort_order"`
	StartsAt   *time.Time          `json:"starts_at"`
	EndsAt     *time.Time          `json:"ends_at"`
	IsActive   bool                `json:"is_active"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Version    int                 `json:"version"`
}

// ToSectionResponse converts a domain section to a response
func ToSectionResponse(s *content.HomeSection) SectionResponse {
	ids := s.ProductIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return SectionResponse{
		ID:         s.ID,
		Key:        s.Key,
		Type:       s.Type,
		Title:      s.Title,
		Subtitle:   s.Subtitle,
		ImageURL:   s.ImageURL,
		LinkURL:    s.LinkURL,
		ProductIDs: ids,
		CategoryID: s.CategoryID,
		SortOrder:  s.SortOrder,
		StartsAt:   s.StartsAt,
		EndsAt:     s.EndsAt,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		Version:    s.Version,
	}
}
