package settings

import (
	"time"

	"github.com/aurum/jewelstore/internal/domain/settings"
	"github.com/google/uuid"
)

// UpsertSettingRequest creates or replaces the setting at a key
type UpsertSettingRequest struct {
	Value       string `json:"value"`
	ValueType   string `json:"value_type" binding:"omitempty,oneof=string number bool json"`
	Group       string `json:"group" binding:"max=50"`
	Description string `json:"description" binding:"max=500"`
	IsPublic    bool   `json:"is_public"`
}

// SettingResponse is a setting in API responses. Value is decoded to its declared type.
type SettingResponse struct {
	ID          uuid.UUID          `json:"id"`
	Key         string             `json:"key"`
	Value       any                `json:"value"`
	ValueType   settings.ValueType `json:"value_type"`
	Group       string             `json:"group"`
	Description string             `json:"description"`
	IsPublic    bool               `json:"is_public"`
	IsActive    bool               `json:"is_active"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// ToSettingResponse converts a domain setting to a response
func ToSettingResponse(s *settings.AppSetting) SettingResponse {
	return SettingResponse{
		ID:          s.ID,
		Key:         s.Key,
		Value:       s.Typed(),
		ValueType:   s.ValueType,
		Group:       s.Group,
		Description: s.Description,
		IsPublic:    s.IsPublic,
		IsActive:    s.IsActive,
		UpdatedAt:   s.UpdatedAt,
		Version:     s.Version,
	}
}
