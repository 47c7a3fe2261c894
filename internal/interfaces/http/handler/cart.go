package handler

import (
	"context"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	cartapp "github.com/aurum/jewelstore/internal/application/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHeader echoes the cart id so clients can persist it
const CartHeader = "X-Cart-ID"

// CartService is the cart behaviour the storefront endpoints need
type CartService interface {
	Get(ctx context.Context, id uuid.UUID) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, id uuid.UUID, req cartapp.AddItemRequest) (*cartapp.CartResponse, error)
	UpdateItem(ctx context.Context, id, productID uuid.UUID, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, id, productID uuid.UUID) (*cartapp.CartResponse, error)
	Clear(ctx context.Context, id uuid.UUID) error
	Checkout(ctx context.Context, id uuid.UUID, req cartapp.CheckoutRequest) (*billingapp.OrderResponse, error)
}

// CartHandler handles anonymous storefront cart endpoints
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) cartID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := h.parseID(c, "cartId")
	if ok {
		c.Header(CartHeader, id.String())
	}
	return id, ok
}

// New godoc
// @Summary      Start a cart
// @Description  Returns an empty cart with a fresh id. Carts expire after a period of inactivity.
// @Tags         cart
// @Produce      json
// @Success      201 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart [post]
func (h *CartHandler) New(c *gin.Context) {
	id := uuid.New()
	cart, err := h.carts.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header(CartHeader, id.String())
	h.Created(c, cart)
}

// Get godoc
// @Summary      Get a cart
// @Description  Lines are priced at live rates. An unknown id is an empty cart.
// @Tags         cart
// @Produce      json
// @Param        cartId path string true "Cart ID" format(uuid)
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/{cartId} [get]
func (h *CartHandler) Get(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        cartId  path string                 true "Cart ID" format(uuid)
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Failure      400 {object} ErrorResponse "INVALID_MARKET"
// @Failure      422 {object} ErrorResponse "INSUFFICIENT_STOCK or CART_FULL"
// @Router       /cart/{cartId}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @Summary      Set a line quantity
// @Description  A quantity of zero removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        cartId    path string                    true "Cart ID" format(uuid)
// @Param        productId path string                    true "Product ID" format(uuid)
// @Param        request   body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/{cartId}/items/{productId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "productId")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.UpdateItem(c.Request.Context(), id, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        cartId    path string true "Cart ID" format(uuid)
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[cartapp.CartResponse]
// @Router       /cart/{cartId}/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	productID, ok := h.parseID(c, "productId")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Param        cartId path string true "Cart ID" format(uuid)
// @Success      204
// @Router       /cart/{cartId} [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Checkout godoc
// @Summary      Place an order
// @Description  Creates an online bill and a pending shipment, then clears the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        cartId  path string                  true "Cart ID" format(uuid)
// @Param        request body cartapp.CheckoutRequest true "Buyer details"
// @Success      201 {object} APIResponse[billingapp.OrderResponse]
// @Failure      422 {object} ErrorResponse "INVALID_STATE, INSUFFICIENT_STOCK or RATE_NOT_FOUND"
// @Router       /cart/{cartId}/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	id, ok := h.cartID(c)
	if !ok {
		return
	}
	var req cartapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.carts.Checkout(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}
