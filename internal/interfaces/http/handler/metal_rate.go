package handler

import (
	"context"

	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RateService is the metal rate behaviour the endpoints need
type RateService interface {
	List(ctx context.Context, filter shared.Filter) ([]pricingapp.RateResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*pricingapp.RateResponse, error)
	Upsert(ctx context.Context, req pricingapp.UpsertRateRequest) (*pricingapp.RateResponse, error)
	Update(ctx context.Context, id uuid.UUID, req pricingapp.UpdateRateRequest) (*pricingapp.RateResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Quoter prices an arbitrary piece
type Quoter interface {
	Quote(ctx context.Context, req pricingapp.QuoteRequest) (*pricingapp.QuoteResponse, error)
}

// MetalRateHandler handles metal rate and quote endpoints
type MetalRateHandler struct {
	BaseHandler
	rates  RateService
	quoter Quoter
}

// NewMetalRateHandler creates a new MetalRateHandler
func NewMetalRateHandler(rates RateService, quoter Quoter) *MetalRateHandler {
	return &MetalRateHandler{rates: rates, quoter: quoter}
}

// List godoc
// @Summary      List metal rates
// @Tags         metal-rates
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        metal     query string false "gold, silver or platinum"
// @Param        purity    query string false "Purity"
// @Param        market    query string false "IN or BH"
// @Success      200 {object} APIResponse[[]pricingapp.RateResponse]
// @Router       /metal-rates [get]
func (h *MetalRateHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	queryFilter(c, &filter, "metal", "metal")
	queryFilter(c, &filter, "purity", "purity")
	queryFilter(c, &filter, "market", "market")

	items, total, err := h.rates.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a metal rate
// @Tags         metal-rates
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} APIResponse[pricingapp.RateResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /metal-rates/{id} [get]
func (h *MetalRateHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	rate, err := h.rates.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Upsert godoc
// @Summary      Set the rate for a metal, purity and market
// @Description  Replaces the existing rate for the same key or creates a new one
// @Tags         metal-rates
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.UpsertRateRequest true "Rate"
// @Success      200 {object} APIResponse[pricingapp.RateResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /metal-rates [post]
func (h *MetalRateHandler) Upsert(c *gin.Context) {
	var req pricingapp.UpsertRateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rate, err := h.rates.Upsert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Update godoc
// @Summary      Update a metal rate
// @Tags         metal-rates
// @Accept       json
// @Produce      json
// @Param        id      path string                         true "Rate ID" format(uuid)
// @Param        request body pricingapp.UpdateRateRequest true "Rate"
// @Success      200 {object} APIResponse[pricingapp.RateResponse]
// @Security     BearerAuth
// @Router       /metal-rates/{id} [put]
func (h *MetalRateHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req pricingapp.UpdateRateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rate, err := h.rates.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Delete godoc
// @Summary      Deactivate a metal rate
// @Tags         metal-rates
// @Param        id path string true "Rate ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /metal-rates/{id} [delete]
func (h *MetalRateHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.rates.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Quote godoc
// @Summary      Quote a price
// @Description  Prices a piece from its weight and charges. price is null when no rate is configured.
// @Tags         metal-rates
// @Accept       json
// @Produce      json
// @Param        request body pricingapp.QuoteRequest true "Piece"
// @Success      200 {object} APIResponse[pricingapp.QuoteResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /metal-rates/quote [post]
func (h *MetalRateHandler) Quote(c *gin.Context) {
	var req pricingapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quote, err := h.quoter.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
