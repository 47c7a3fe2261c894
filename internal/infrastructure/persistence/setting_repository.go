package persistence

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/settings"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSettingRepository implements SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindByKey finds a setting by key, active or not
func (r *GormSettingRepository) FindByKey(ctx context.Context, key string) (*settings.AppSetting, error) {
	var setting settings.AppSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, notFound(err)
	}
	return &setting, nil
}

// FindAll finds settings matching the filter ordered by group and key
func (r *GormSettingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]settings.AppSetting, error) {
	var result []settings.AppSetting
	query := activeOnly(r.db.WithContext(ctx).Model(&settings.AppSetting{}), filter)

	for key, value := range filter.Filters {
		switch key {
		case "group":
			query = query.Where("setting_group = ?", value)
		case "public":
			query = query.Where("is_public = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("LOWER(key) LIKE ?", likePattern(filter.Search))
	}

	if err := query.Order("setting_group ASC, key ASC").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Save creates or updates a setting
func (r *GormSettingRepository) Save(ctx context.Context, setting *settings.AppSetting) error {
	err := saveVersioned(r.db.WithContext(ctx), setting)
	if err == nil {
		setting.MarkStored()
	}
	return uniqueViolation(err, "Setting key already exists")
}

// Ensure GormSettingRepository implements SettingRepository
var _ settings.SettingRepository = (*GormSettingRepository)(nil)
