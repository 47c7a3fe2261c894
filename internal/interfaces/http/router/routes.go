package router

import (
	"slices"

	"github.com/aurum/jewelstore/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers mounted under /api
type Handlers struct {
	Product     *handler.ProductHandler
	Category    *handler.CategoryHandler
	MetalRate   *handler.MetalRateHandler
	Setting     *handler.SettingHandler
	Bill        *handler.BillHandler
	Estimate    *handler.EstimateHandler
	Cart        *handler.CartHandler
	HomeSection *handler.HomeSectionHandler
	Shipment    *handler.ShipmentHandler
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	System      *handler.SystemHandler
}

// Guards are the access chains applied per route class
type Guards struct {
	// Optional reads a bearer token when present; public reads use it to reveal inactive rows
	Optional gin.HandlerFunc
	// Staff requires a valid access token of any role
	Staff []gin.HandlerFunc
	// Admin runs after Staff and requires the admin role
	Admin gin.HandlerFunc
	// Login throttles credential endpoints; nil disables it
	Login gin.HandlerFunc
}

func (g Guards) staff() []gin.HandlerFunc {
	return slices.Clone(g.Staff)
}

func (g Guards) admin() []gin.HandlerFunc {
	return append(g.staff(), g.Admin)
}

// APIGroups builds the storefront and back-office route table
func APIGroups(h Handlers, g Guards) []*DomainGroup {
	return []*DomainGroup{
		productRoutes(h.Product, g),
		categoryRoutes(h.Category, g),
		metalRateRoutes(h.MetalRate, g),
		settingRoutes(h.Setting, g),
		billRoutes(h.Bill, g),
		estimateRoutes(h.Estimate, g),
		cartRoutes(h.Cart),
		homeSectionRoutes(h.HomeSection, g),
		shipmentRoutes(h.Shipment, g),
		authRoutes(h.Auth, g),
		userRoutes(h.User, g),
		systemRoutes(h.System),
	}
}

func productRoutes(h *handler.ProductHandler, g Guards) *DomainGroup {
	products := NewDomainGroup("products", "/products")
	products.Group("products-public", "").Use(g.Optional).
		GET("", h.List).
		GET("/:id", h.GetByID).
		GET("/code/:code", h.GetByCode)
	products.Group("products-staff", "").Use(g.staff()...).
		POST("", h.Create).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		POST("/:id/activate", h.Activate).
		POST("/:id/stock", h.AdjustStock).
		POST("/:id/images", h.UploadImage).
		DELETE("/:id/images", h.DetachImage).
		POST("/:id/images/attach", h.AttachImage).
		POST("/:id/images/upload-url", h.ImageUploadURL)
	products.Group("products-admin", "").Use(g.admin()...).
		POST("/import", h.Import)
	return products
}

func categoryRoutes(h *handler.CategoryHandler, g Guards) *DomainGroup {
	categories := NewDomainGroup("categories", "/categories")
	categories.Group("categories-public", "").Use(g.Optional).
		GET("", h.List).
		GET("/:id", h.GetByID).
		GET("/slug/:slug", h.GetBySlug)
	categories.Group("categories-staff", "").Use(g.staff()...).
		POST("", h.Create).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return categories
}

func metalRateRoutes(h *handler.MetalRateHandler, g Guards) *DomainGroup {
	rates := NewDomainGroup("metal-rates", "/metal-rates")
	rates.Group("metal-rates-public", "").Use(g.Optional).
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("/quote", h.Quote)
	rates.Group("metal-rates-admin", "").Use(g.admin()...).
		POST("", h.Upsert).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return rates
}

func settingRoutes(h *handler.SettingHandler, g Guards) *DomainGroup {
	settings := NewDomainGroup("settings", "/settings")
	settings.GET("/public", h.ListPublic)
	settings.Group("settings-staff", "").Use(g.staff()...).
		GET("", h.List).
		GET("/:key", h.Get)
	settings.Group("settings-admin", "").Use(g.admin()...).
		PUT("/:key", h.Upsert).
		DELETE("/:key", h.Delete)
	return settings
}

func billRoutes(h *handler.BillHandler, g Guards) *DomainGroup {
	return NewDomainGroup("bills", "/bills").Use(g.staff()...).
		GET("", h.List).
		POST("", h.Create).
		GET("/number/:number", h.GetByNumber).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		POST("/:id/pay", h.MarkPaid).
		POST("/:id/cancel", h.Cancel).
		GET("/:id/pdf", h.Document).
		POST("/:id/email", h.Email)
}

func estimateRoutes(h *handler.EstimateHandler, g Guards) *DomainGroup {
	return NewDomainGroup("estimates", "/estimates").Use(g.staff()...).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		POST("/:id/send", h.MarkSent).
		POST("/:id/convert", h.Convert).
		GET("/:id/pdf", h.Document)
}

// cartRoutes are public; the cart id is the only credential
func cartRoutes(h *handler.CartHandler) *DomainGroup {
	return NewDomainGroup("cart", "/cart").
		POST("", h.New).
		GET("/:cartId", h.Get).
		DELETE("/:cartId", h.Clear).
		POST("/:cartId/items", h.AddItem).
		PUT("/:cartId/items/:productId", h.UpdateItem).
		DELETE("/:cartId/items/:productId", h.RemoveItem).
		POST("/:cartId/checkout", h.Checkout)
}

func homeSectionRoutes(h *handler.HomeSectionHandler, g Guards) *DomainGroup {
	sections := NewDomainGroup("home-sections", "/home-sections")
	sections.GET("/public", h.ListPublic)
	sections.Group("home-sections-staff", "").Use(g.staff()...).
		GET("", h.List).
		POST("", h.Create).
		POST("/reorder", h.Reorder).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return sections
}

func shipmentRoutes(h *handler.ShipmentHandler, g Guards) *DomainGroup {
	shipments := NewDomainGroup("shipments", "/shipments")
	shipments.GET("/track/:trackingNumber", h.Track)
	shipments.Group("shipments-staff", "").Use(g.staff()...).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		DELETE("/:id", h.Delete).
		PATCH("/:id/status", h.UpdateStatus).
		PATCH("/:id/carrier", h.UpdateCarrier)
	return shipments
}

func authRoutes(h *handler.AuthHandler, g Guards) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	credentials := auth.Group("auth-credentials", "")
	if g.Login != nil {
		credentials.Use(g.Login)
	}
	credentials.
		POST("/login", h.Login).
		POST("/refresh", h.Refresh)
	auth.Group("auth-session", "").Use(g.staff()...).
		POST("/logout", h.Logout).
		GET("/me", h.Me)
	return auth
}

func userRoutes(h *handler.UserHandler, g Guards) *DomainGroup {
	return NewDomainGroup("users", "/users").Use(g.admin()...).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		POST("/:id/deactivate", h.Deactivate).
		POST("/:id/activate", h.Activate)
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.Info)
}

// RegisterHealth mounts the liveness and readiness probes outside /api
func RegisterHealth(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Ready)
	engine.GET("/health/live", h.Live)
	engine.GET("/ready", h.Ready)
}
