package content

import (
	"context"
	"errors"
	"time"

	"github.com/aurum/jewelstore/internal/domain/content"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HomeSectionService manages the storefront home page layout
type HomeSectionService struct {
	repo   content.HomeSectionRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewHomeSectionService creates a new HomeSectionService
func NewHomeSectionService(repo content.HomeSectionRepository, logger *zap.Logger) *HomeSectionService {
	return &HomeSectionService{repo: repo, now: time.Now, logger: logger}
}

// Create adds a section. Without a sort order it goes to the end.
func (s *HomeSectionService) Create(ctx context.Context, req CreateSectionRequest) (*SectionResponse, error) {
	_, err := s.repo.FindByKey(ctx, req.Key)
	if err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Section with this key already exists")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		all, err := s.repo.FindAllOrdered(ctx, true)
		if err != nil {
			return nil, err
		}
		if n := len(all); n > 0 {
			sortOrder = all[n-1].SortOrder + 1
		}
	}

	section, err := content.NewHomeSection(req.Key, req.toContent(), sortOrder)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, section); err != nil {
		return nil, err
	}
	resp := ToSectionResponse(section)
	return &resp, nil
}

// GetByID returns a section
func (s *HomeSectionService) GetByID(ctx context.Context, id uuid.UUID) (*SectionResponse, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSectionResponse(section)
	return &resp, nil
}

// List returns every section in display order
func (s *HomeSectionService) List(ctx context.Context, includeInactive bool) ([]SectionResponse, error) {
	sections, err := s.repo.FindAllOrdered(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	return toResponses(sections, nil), nil
}

// ListPublic returns the active sections whose schedule covers now
func (s *HomeSectionService) ListPublic(ctx context.Context) ([]SectionResponse, error) {
	sections, err := s.repo.FindAllOrdered(ctx, false)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return toResponses(sections, func(h *content.HomeSection) bool { return h.VisibleAt(now) }), nil
}

// Update replaces a section's body
func (s *HomeSectionService) Update(ctx context.Context, id uuid.UUID, req UpdateSectionRequest) (*SectionResponse, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := section.Update(req.toContent()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, section); err != nil {
		return nil, err
	}
	resp := ToSectionResponse(section)
	return &resp, nil
}

// Delete soft-deletes a section
func (s *HomeSectionService) Delete(ctx context.Context, id uuid.UUID) error {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := section.Deactivate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, section)
}

// Reorder assigns sort orders 0..n-1 following the given ids
func (s *HomeSectionService) Reorder(ctx context.Context, req ReorderRequest) ([]SectionResponse, error) {
	seen := make(map[uuid.UUID]bool, len(req.IDs))
	for _, id := range req.IDs {
		if seen[id] {
			return nil, shared.NewDomainError("INVALID_ORDER", "Section ids must be unique")
		}
		seen[id] = true
	}

	sections, err := s.repo.FindByIDs(ctx, req.IDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*content.HomeSection, len(sections))
	for i := range sections {
		byID[sections[i].ID] = &sections[i]
	}

	ordered := make([]*content.HomeSection, 0, len(req.IDs))
	for pos, id := range req.IDs {
		section, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", "Section "+id.String()+" not found")
		}
		section.MoveTo(pos)
		ordered = append(ordered, section)
	}
	if err := s.repo.SaveBatch(ctx, ordered); err != nil {
		return nil, err
	}
	s.logger.Info("home sections reordered", zap.Int("count", len(ordered)))

	out := make([]SectionResponse, len(ordered))
	for i, section := range ordered {
		out[i] = ToSectionResponse(section)
	}
	return out, nil
}

func toResponses(sections []content.HomeSection, keep func(*content.HomeSection) bool) []SectionResponse {
	out := make([]SectionResponse, 0, len(sections))
	for i := range sections {
		if keep != nil && !keep(&sections[i]) {
			continue
		}
		out = append(out, ToSectionResponse(&sections[i]))
	}
	return out
}
