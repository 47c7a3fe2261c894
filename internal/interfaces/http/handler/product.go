package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductService is the catalog behaviour the product endpoints need
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID, includeInactive bool) (*catalogapp.ProductResponse, error)
	GetByCode(ctx context.Context, code string, includeInactive bool) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req catalogapp.AdjustStockRequest) (*catalogapp.ProductResponse, error)
	ImageUploadURL(ctx context.Context, id uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
	UploadImage(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (*catalogapp.ProductResponse, error)
	AttachImage(ctx context.Context, id uuid.UUID, req catalogapp.AttachImageRequest) (*catalogapp.ProductResponse, error)
	DetachImage(ctx context.Context, id uuid.UUID, key string) (*catalogapp.ProductResponse, error)
	Import(ctx context.Context, r io.Reader, dryRun bool) (*catalogapp.ImportResult, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	products      ProductService
	maxUploadSize int64
}

// NewProductHandler creates a new ProductHandler. maxUploadSize caps multipart uploads.
func NewProductHandler(products ProductService, maxUploadSize int64) *ProductHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &ProductHandler{products: products, maxUploadSize: maxUploadSize}
}

// List godoc
// @Summary      List products
// @Description  Active products with live prices. Staff may pass includeInactive=true.
// @Tags         products
// @Produce      json
// @Param        page            query int    false "Page number" default(1)
// @Param        page_size       query int    false "Page size" default(20)
// @Param        order_by        query string false "Sort field" default(created_at)
// @Param        order_dir       query string false "asc or desc" default(desc)
// @Param        search          query string false "Search name, code or description"
// @Param        category_id     query string false "Category ID"
// @Param        metal           query string false "gold, silver or platinum"
// @Param        purity          query string false "Purity, e.g. 22K"
// @Param        market          query string false "IN or BH"
// @Param        featured        query bool   false "Featured only"
// @Param        in_stock        query bool   false "In-stock filter"
// @Param        includeInactive query bool   false "Include inactive (staff only)"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	filter, ok := h.bindList(c)
	if !ok {
		return
	}
	queryFilter(c, &filter, "category_id", "category_id")
	queryFilter(c, &filter, "metal", "metal")
	queryFilter(c, &filter, "purity", "purity")
	queryFilter(c, &filter, "market", "market")
	boolFilter(c, &filter, "featured", "featured")
	boolFilter(c, &filter, "in_stock", "in_stock")

	items, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id, h.includeInactive(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// GetByCode godoc
// @Summary      Get product by code
// @Tags         products
// @Produce      json
// @Param        code path string true "Product code"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/code/{code} [get]
func (h *ProductHandler) GetByCode(c *gin.Context) {
	product, err := h.products.GetByCode(c.Request.Context(), c.Param("code"), h.includeInactive(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                             true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Deactivate a product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate godoc
// @Summary      Reactivate a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// AdjustStock godoc
// @Summary      Adjust stock by a signed delta
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Product ID" format(uuid)
// @Param        request body catalogapp.AdjustStockRequest true "Delta"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK"
// @Security     BearerAuth
// @Router       /products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ImageUploadURL godoc
// @Summary      Presign an image upload
// @Description  Returns a presigned PUT URL and the object key to attach afterwards
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Product ID" format(uuid)
// @Param        request body catalogapp.ImageUploadRequest true "File details"
// @Success      200 {object} APIResponse[catalogapp.ImageUploadResponse]
// @Failure      400 {object} ErrorResponse "INVALID_CONTENT_TYPE or TOO_MANY_IMAGES"
// @Security     BearerAuth
// @Router       /products/{id}/images/upload-url [post]
func (h *ProductHandler) ImageUploadURL(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	upload, err := h.products.ImageUploadURL(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, upload)
}

// UploadImage godoc
// @Summary      Upload an image through the API
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Product ID" format(uuid)
// @Param        file formData file   true "Image file"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/images [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file field is required")
		return
	}
	if header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image exceeds maximum upload size")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	product, err := h.products.UploadImage(c.Request.Context(), id, header.Filename, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// AttachImage godoc
// @Summary      Attach an uploaded image
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Product ID" format(uuid)
// @Param        request body catalogapp.AttachImageRequest true "Object key"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /products/{id}/images/attach [post]
func (h *ProductHandler) AttachImage(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AttachImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.AttachImage(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DetachImage godoc
// @Summary      Detach an image
// @Tags         products
// @Produce      json
// @Param        id  path  string true "Product ID" format(uuid)
// @Param        key query string true "Object key"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Security     BearerAuth
// @Router       /products/{id}/images [delete]
func (h *ProductHandler) DetachImage(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	key := c.Query("key")
	if key == "" {
		h.BadRequest(c, "key query parameter is required")
		return
	}
	product, err := h.products.DetachImage(c.Request.Context(), id, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Import godoc
// @Summary      Import products from CSV
// @Description  One product per row. Required columns are code, name, metal, purity, market and gross_weight;
// @Description  category is a slug and tags are separated by "|". Nothing is created unless every row is valid.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file true  "CSV file"
// @Param        dry_run query    bool false "Only check the file"
// @Success      200 {object} APIResponse[catalogapp.ImportResult]
// @Failure      400 {object} ErrorResponse "INVALID_FILE or TOO_MANY_ROWS"
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/import [post]
func (h *ProductHandler) Import(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))
	if err != nil {
		h.BadRequest(c, "dry_run must be true or false")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file field is required")
		return
	}
	if header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "File exceeds maximum upload size")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.products.Import(c.Request.Context(), file, dryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
