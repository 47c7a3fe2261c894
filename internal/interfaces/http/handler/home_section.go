package handler

import (
	"context"

	contentapp "github.com/aurum/jewelstore/internal/application/content"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HomeSectionService is the home page content behaviour the endpoints need
type HomeSectionService interface {
	Create(ctx context.Context, req contentapp.CreateSectionRequest) (*contentapp.SectionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*contentapp.SectionResponse, error)
	List(ctx context.Context, includeInactive bool) ([]contentapp.SectionResponse, error)
	ListPublic(ctx context.Context) ([]contentapp.SectionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req contentapp.UpdateSectionRequest) (*contentapp.SectionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, req contentapp.ReorderRequest) ([]contentapp.SectionResponse, error)
}

// HomeSectionHandler handles home page section endpoints
type HomeSectionHandler struct {
	BaseHandler
	sections HomeSectionService
}

// NewHomeSectionHandler creates a new HomeSectionHandler
func NewHomeSectionHandler(sections HomeSectionService) *HomeSectionHandler {
	return &HomeSectionHandler{sections: sections}
}

// ListPublic godoc
// @Summary      Storefront home page
// @Description  Active sections inside their display window, in display order
// @Tags         home-sections
// @Produce      json
// @Success      200 {object} APIResponse[[]contentapp.SectionResponse]
// @Router       /home-sections/public [get]
func (h *HomeSectionHandler) ListPublic(c *gin.Context) {
	sections, err := h.sections.ListPublic(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sections)
}

// List godoc
// @Summary      List home sections
// @Tags         home-sections
// @Produce      json
// @Param        includeInactive query bool false "Include inactive"
// @Success      200 {object} APIResponse[[]contentapp.SectionResponse]
// @Security     BearerAuth
// @Router       /home-sections [get]
func (h *HomeSectionHandler) List(c *gin.Context) {
	sections, err := h.sections.List(c.Request.Context(), h.includeInactive(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sections)
}

// GetByID godoc
// @Summary      Get a home section
// @Tags         home-sections
// @Produce      json
// @Param        id path string true "Section ID" format(uuid)
// @Success      200 {object} APIResponse[contentapp.SectionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /home-sections/{id} [get]
func (h *HomeSectionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	section, err := h.sections.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, section)
}

// Create godoc
// @Summary      Create a home section
// @Description  Without sort_order the section is appended to the end
// @Tags         home-sections
// @Accept       json
// @Produce      json
// @Param        request body contentapp.CreateSectionRequest true "Section"
// @Success      201 {object} APIResponse[contentapp.SectionResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /home-sections [post]
func (h *HomeSectionHandler) Create(c *gin.Context) {
	var req contentapp.CreateSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	section, err := h.sections.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, section)
}

// Update godoc
// @Summary      Replace a section's content
// @Tags         home-sections
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Section ID" format(uuid)
// @Param        request body contentapp.UpdateSectionRequest true "Section"
// @Success      200 {object} APIResponse[contentapp.SectionResponse]
// @Security     BearerAuth
// @Router       /home-sections/{id} [put]
func (h *HomeSectionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req contentapp.UpdateSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	section, err := h.sections.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, section)
}

// Delete godoc
// @Summary      Deactivate a home section
// @Tags         home-sections
// @Param        id path string true "Section ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /home-sections/{id} [delete]
func (h *HomeSectionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.sections.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reorder godoc
// @Summary      Reorder home sections
// @Description  ids lists sections in their new display order
// @Tags         home-sections
// @Accept       json
// @Produce      json
// @Param        request body contentapp.ReorderRequest true "Order"
// @Success      200 {object} APIResponse[[]contentapp.SectionResponse]
// @Failure      400 {object} ErrorResponse "INVALID_ORDER"
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /home-sections/reorder [post]
func (h *HomeSectionHandler) Reorder(c *gin.Context) {
	var req contentapp.ReorderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sections, err := h.sections.Reorder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sections)
}
