package handler

import (
	"context"

	shippingapp "github.com/aurum/jewelstore/internal/application/shipping"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShipmentService is the shipping behaviour the endpoints need
type ShipmentService interface {
	Create(ctx context.Context, req shippingapp.CreateShipmentRequest) (*shippingapp.ShipmentResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*shippingapp.ShipmentResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]shippingapp.ShipmentResponse, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req shippingapp.UpdateStatusRequest) (*shippingapp.ShipmentResponse, error)
	UpdateCarrier(ctx context.Context, id uuid.UUID, req shippingapp.UpdateCarrierRequest) (*shippingapp.ShipmentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Track(ctx context.Context, trackingNumber string) (*shippingapp.TrackingResponse, error)
}

// ShipmentHandler handles shipment endpoints
type ShipmentHandler struct {
	BaseHandler
	shipments ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipments ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

// List godoc
// @Summary      List shipments
// @Tags         shipments
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Tracking number"
// @Param        status    query string false "pending, packed, shipped, in_transit, out_for_delivery, delivered, returned or cancelled"
// @Param        bill_id   query string false "Bill ID"
// @Param        carrier   query string false "Carrier"
// @Success      200 {object} APIResponse[[]shippingapp.ShipmentResponse]
// @Security     BearerAuth
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	queryFilter(c, &filter, "status", "status")
	queryFilter(c, &filter, "bill_id", "bill_id")
	queryFilter(c, &filter, "carrier", "carrier")

	items, total, err := h.shipments.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create a shipment for an online bill
// @Description  A tracking number is generated when none is given
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        request body shippingapp.CreateShipmentRequest true "Shipment"
// @Success      201 {object} APIResponse[shippingapp.ShipmentResponse]
// @Failure      400 {object} ErrorResponse "INVALID_BILL"
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req shippingapp.CreateShipmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipments.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// GetByID godoc
// @Summary      Get a shipment
// @Tags         shipments
// @Produce      json
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} APIResponse[shippingapp.ShipmentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.shipments.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateStatus godoc
// @Summary      Advance a shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Shipment ID" format(uuid)
// @Param        request body shippingapp.UpdateStatusRequest true "Status"
// @Success      200 {object} APIResponse[shippingapp.ShipmentResponse]
// @Failure      422 {object} ErrorResponse "INVALID_TRANSITION"
// @Security     BearerAuth
// @Router       /shipments/{id}/status [patch]
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipments.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateCarrier godoc
// @Summary      Change the carrier
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Shipment ID" format(uuid)
// @Param        request body shippingapp.UpdateCarrierRequest true "Carrier"
// @Success      200 {object} APIResponse[shippingapp.ShipmentResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /shipments/{id}/carrier [patch]
func (h *ShipmentHandler) UpdateCarrier(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req shippingapp.UpdateCarrierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shipment, err := h.shipments.UpdateCarrier(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// Delete godoc
// @Summary      Deactivate a shipment
// @Tags         shipments
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.shipments.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Track godoc
// @Summary      Track a shipment
// @Description  Public tracking view without the delivery address
// @Tags         shipments
// @Produce      json
// @Param        trackingNumber path string true "Tracking number"
// @Success      200 {object} APIResponse[shippingapp.TrackingResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /shipments/track/{trackingNumber} [get]
func (h *ShipmentHandler) Track(c *gin.Context) {
	tracking, err := h.shipments.Track(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tracking)
}
