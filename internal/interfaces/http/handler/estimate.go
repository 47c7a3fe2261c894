package handler

import (
	"context"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EstimateService is the estimate behaviour the endpoints need
type EstimateService interface {
	Create(ctx context.Context, req billingapp.CreateEstimateRequest) (*billingapp.EstimateResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*billingapp.EstimateResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]billingapp.EstimateResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateEstimateRequest) (*billingapp.EstimateResponse, error)
	MarkSent(ctx context.Context, id uuid.UUID) (*billingapp.EstimateResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Render(ctx context.Context, id uuid.UUID, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error)
	ConvertToBill(ctx context.Context, id uuid.UUID, req billingapp.ConvertEstimateRequest) (*billingapp.BillResponse, error)
}

// EstimateHandler handles estimate endpoints
type EstimateHandler struct {
	BaseHandler
	estimates EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimates EstimateService) *EstimateHandler {
	return &EstimateHandler{estimates: estimates}
}

// List godoc
// @Summary      List estimates
// @Tags         estimates
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Estimate number or customer"
// @Param        status    query string false "draft, sent, converted or expired"
// @Param        market    query string false "IN or BH"
// @Param        from      query string false "Created on or after"
// @Param        to        query string false "Created on or before"
// @Success      200 {object} APIResponse[[]billingapp.EstimateResponse]
// @Security     BearerAuth
// @Router       /estimates [get]
func (h *EstimateHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	queryFilter(c, &filter, "status", "status")
	queryFilter(c, &filter, "market", "market")
	if err := dateRangeFilter(c, &filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.estimates.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create an estimate
// @Description  Prices lines at current rates. Stock is not reserved.
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateEstimateRequest true "Estimate"
// @Success      201 {object} APIResponse[billingapp.EstimateResponse]
// @Failure      422 {object} ErrorResponse "RATE_NOT_FOUND"
// @Security     BearerAuth
// @Router       /estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	var req billingapp.CreateEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	estimate, err := h.estimates.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, estimate)
}

// GetByID godoc
// @Summary      Get estimate by ID
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.EstimateResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /estimates/{id} [get]
func (h *EstimateHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	estimate, err := h.estimates.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// Update godoc
// @Summary      Revise an estimate
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Estimate ID" format(uuid)
// @Param        request body billingapp.CreateEstimateRequest true "Revised estimate"
// @Success      200 {object} APIResponse[billingapp.EstimateResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /estimates/{id} [put]
func (h *EstimateHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateEstimateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	estimate, err := h.estimates.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// MarkSent godoc
// @Summary      Mark an estimate as sent
// @Tags         estimates
// @Produce      json
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.EstimateResponse]
// @Failure      422 {object} ErrorResponse "INVALID_TRANSITION"
// @Security     BearerAuth
// @Router       /estimates/{id}/send [post]
func (h *EstimateHandler) MarkSent(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	estimate, err := h.estimates.MarkSent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estimate)
}

// Convert godoc
// @Summary      Convert an estimate into a bill
// @Description  Raises a store bill at the current rates and deducts stock
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        id      path string                             true  "Estimate ID" format(uuid)
// @Param        request body billingapp.ConvertEstimateRequest false "Payment"
// @Success      201 {object} APIResponse[billingapp.BillResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE or INSUFFICIENT_STOCK"
// @Security     BearerAuth
// @Router       /estimates/{id}/convert [post]
func (h *EstimateHandler) Convert(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.ConvertEstimateRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	bill, err := h.estimates.ConvertToBill(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// Delete godoc
// @Summary      Deactivate an estimate
// @Tags         estimates
// @Param        id path string true "Estimate ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.estimates.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Document godoc
// @Summary      Download an estimate
// @Tags         estimates
// @Produce      application/pdf
// @Produce      text/html
// @Param        id     path  string true  "Estimate ID" format(uuid)
// @Param        format query string false "pdf or html" default(pdf)
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse "PRINTING_UNAVAILABLE"
// @Security     BearerAuth
// @Router       /estimates/{id}/pdf [get]
func (h *EstimateHandler) Document(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	format, ok := documentFormat(c)
	if !ok {
		h.BadRequest(c, "format must be pdf or html")
		return
	}
	doc, err := h.estimates.Render(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendDocument(c, doc)
}
