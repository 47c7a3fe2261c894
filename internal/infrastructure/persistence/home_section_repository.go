package persistence

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/content"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHomeSectionRepository implements HomeSectionRepository using GORM
type GormHomeSectionRepository struct {
	db *gorm.DB
}

// NewGormHomeSectionRepository creates a new GormHomeSectionRepository
func NewGormHomeSectionRepository(db *gorm.DB) *GormHomeSectionRepository {
	return &GormHomeSectionRepository{db: db}
}

// FindByID finds a section by ID
func (r *GormHomeSectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.HomeSection, error) {
	var section content.HomeSection
	if err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &section, nil
}

// FindByIDs finds sections by ID
func (r *GormHomeSectionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]content.HomeSection, error) {
	if len(ids) == 0 {
		return []content.HomeSection{}, nil
	}
	var sections []content.HomeSection
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// FindByKey finds a section by its key
func (r *GormHomeSectionRepository) FindByKey(ctx context.Context, key string) (*content.HomeSection, error) {
	var section content.HomeSection
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&section).Error; err != nil {
		return nil, notFound(err)
	}
	return &section, nil
}

// FindAllOrdered returns sections ordered by sort order
func (r *GormHomeSectionRepository) FindAllOrdered(ctx context.Context, includeInactive bool) ([]content.HomeSection, error) {
	var sections []content.HomeSection
	query := r.db.WithContext(ctx).Model(&content.HomeSection{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("sort_order ASC, created_at ASC").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Save creates or updates a section
func (r *GormHomeSectionRepository) Save(ctx context.Context, section *content.HomeSection) error {
	err := saveVersioned(r.db.WithContext(ctx), section)
	if err == nil {
		section.MarkStored()
	}
	return uniqueViolation(err, "Section key already exists")
}

// SaveBatch saves several sections in one transaction
func (r *GormHomeSectionRepository) SaveBatch(ctx context.Context, sections []*content.HomeSection) error {
	if len(sections) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range sections {
			if err := saveVersioned(tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, s := range sections {
		s.MarkStored()
	}
	return nil
}

// Ensure GormHomeSectionRepository implements HomeSectionRepository
var _ content.HomeSectionRepository = (*GormHomeSectionRepository)(nil)
