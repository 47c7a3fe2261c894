package handler

import (
	"context"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillService is the billing behaviour the bill endpoints need
type BillService interface {
	Create(ctx context.Context, req billingapp.CreateBillRequest) (*billingapp.BillResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*billingapp.BillResponse, error)
	GetByNumber(ctx context.Context, number string) (*billingapp.BillResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]billingapp.BillResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req billingapp.UpdateBillRequest) (*billingapp.BillResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID, req billingapp.MarkPaidRequest) (*billingapp.BillResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req billingapp.CancelBillRequest) (*billingapp.BillResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Render(ctx context.Context, id uuid.UUID, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error)
	EmailInvoice(ctx context.Context, id uuid.UUID, req billingapp.EmailInvoiceRequest) error
}

// BillHandler handles bill endpoints
type BillHandler struct {
	BaseHandler
	bills BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(bills BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

// List godoc
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Param        page           query int    false "Page number" default(1)
// @Param        page_size      query int    false "Page size" default(20)
// @Param        search         query string false "Bill number, customer name, phone or email"
// @Param        status         query string false "draft, issued or cancelled"
// @Param        payment_status query string false "unpaid or paid"
// @Param        channel        query string false "store or online"
// @Param        market         query string false "IN or BH"
// @Param        from           query string false "Issued on or after (YYYY-MM-DD or RFC 3339)"
// @Param        to             query string false "Issued on or before (YYYY-MM-DD or RFC 3339)"
// @Success      200 {object} APIResponse[[]billingapp.BillResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	queryFilter(c, &filter, "status", "status")
	queryFilter(c, &filter, "payment_status", "payment_status")
	queryFilter(c, &filter, "channel", "channel")
	queryFilter(c, &filter, "market", "market")
	if err := dateRangeFilter(c, &filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.bills.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create a counter bill
// @Description  Prices every line at the current rate and deducts stock
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateBillRequest true "Bill"
// @Success      201 {object} APIResponse[billingapp.BillResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK or RATE_NOT_FOUND"
// @Security     BearerAuth
// @Router       /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	var req billingapp.CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.bills.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// GetByID godoc
// @Summary      Get bill by ID
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.BillResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	bill, err := h.bills.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// GetByNumber godoc
// @Summary      Get bill by number
// @Tags         bills
// @Produce      json
// @Param        number path string true "Bill number" example(BL-20260101-0001)
// @Success      200 {object} APIResponse[billingapp.BillResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bills/number/{number} [get]
func (h *BillHandler) GetByNumber(c *gin.Context) {
	bill, err := h.bills.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Update godoc
// @Summary      Update customer, notes and discount
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Bill ID" format(uuid)
// @Param        request body billingapp.UpdateBillRequest true "Changes"
// @Success      200 {object} APIResponse[billingapp.BillResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.UpdateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	bill, err := h.bills.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// MarkPaid godoc
// @Summary      Record payment
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id      path string                     true  "Bill ID" format(uuid)
// @Param        request body billingapp.MarkPaidRequest false "Payment method"
// @Success      200 {object} APIResponse[billingapp.BillResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /bills/{id}/pay [post]
func (h *BillHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.MarkPaidRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	bill, err := h.bills.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Cancel godoc
// @Summary      Cancel a bill
// @Description  Voids the bill and returns its stock
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id      path string                        true  "Bill ID" format(uuid)
// @Param        request body billingapp.CancelBillRequest false "Reason"
// @Success      200 {object} APIResponse[billingapp.BillResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /bills/{id}/cancel [post]
func (h *BillHandler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.CancelBillRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	bill, err := h.bills.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Delete godoc
// @Summary      Deactivate a bill
// @Description  Unpaid bills are cancelled first. Paid bills must be cancelled explicitly.
// @Tags         bills
// @Param        id path string true "Bill ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse "INVALID_STATE"
// @Security     BearerAuth
// @Router       /bills/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.bills.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Document godoc
// @Summary      Download a bill
// @Tags         bills
// @Produce      application/pdf
// @Produce      text/html
// @Param        id     path  string true  "Bill ID" format(uuid)
// @Param        format query string false "pdf or html" default(pdf)
// @Success      200 {file} binary
// @Failure      503 {object} ErrorResponse "PRINTING_UNAVAILABLE"
// @Security     BearerAuth
// @Router       /bills/{id}/pdf [get]
func (h *BillHandler) Document(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	format, ok := documentFormat(c)
	if !ok {
		h.BadRequest(c, "format must be pdf or html")
		return
	}
	doc, err := h.bills.Render(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sendDocument(c, doc)
}

// Email godoc
// @Summary      Email the invoice
// @Description  Sends the invoice to the given address or the customer's email
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id      path string                          true  "Bill ID" format(uuid)
// @Param        request body billingapp.EmailInvoiceRequest false "Recipient"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse "INVALID_RECIPIENT"
// @Failure      500 {object} ErrorResponse "Mail delivery failed"
// @Security     BearerAuth
// @Router       /bills/{id}/email [post]
func (h *BillHandler) Email(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req billingapp.EmailInvoiceRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	if err := h.bills.EmailInvoice(c.Request.Context(), id, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"sent": true})
}
