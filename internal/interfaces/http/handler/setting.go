package handler

import (
	"context"

	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// SettingService is the settings behaviour the endpoints need
type SettingService interface {
	List(ctx context.Context, filter shared.Filter) ([]settingsapp.SettingResponse, error)
	ListPublic(ctx context.Context) ([]settingsapp.SettingResponse, error)
	Get(ctx context.Context, key string) (*settingsapp.SettingResponse, error)
	Upsert(ctx context.Context, key string, req settingsapp.UpsertSettingRequest) (*settingsapp.SettingResponse, error)
	Delete(ctx context.Context, key string) error
}

// SettingHandler handles application setting endpoints
type SettingHandler struct {
	BaseHandler
	settings SettingService
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settings SettingService) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// List godoc
// @Summary      List settings
// @Tags         settings
// @Produce      json
// @Param        group           query string false "Setting group"
// @Param        search          query string false "Search keys"
// @Param        includeInactive query bool   false "Include inactive"
// @Success      200 {object} APIResponse[[]settingsapp.SettingResponse]
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	// settings are a small keyed table, returned whole
	filter.Page, filter.PageSize = 0, 0
	queryFilter(c, &filter, "group", "group")
	boolFilter(c, &filter, "public", "public")

	items, err := h.settings.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListPublic godoc
// @Summary      List public settings
// @Description  Store name, contact details and other values the storefront renders
// @Tags         settings
// @Produce      json
// @Success      200 {object} APIResponse[[]settingsapp.SettingResponse]
// @Router       /settings/public [get]
func (h *SettingHandler) ListPublic(c *gin.Context) {
	items, err := h.settings.ListPublic(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Get godoc
// @Summary      Get a setting
// @Tags         settings
// @Produce      json
// @Param        key path string true "Setting key"
// @Success      200 {object} APIResponse[settingsapp.SettingResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /settings/{key} [get]
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}

// Upsert godoc
// @Summary      Create or replace a setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key     path string                            true "Setting key"
// @Param        request body settingsapp.UpsertSettingRequest true "Setting"
// @Success      200 {object} APIResponse[settingsapp.SettingResponse]
// @Failure      400 {object} ErrorResponse "INVALID_VALUE"
// @Security     BearerAuth
// @Router       /settings/{key} [put]
func (h *SettingHandler) Upsert(c *gin.Context) {
	var req settingsapp.UpsertSettingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	setting, err := h.settings.Upsert(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}

// Delete godoc
// @Summary      Deactivate a setting
// @Tags         settings
// @Param        key path string true "Setting key"
// @Success      204
// @Security     BearerAuth
// @Router       /settings/{key} [delete]
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
