package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aurum/jewelstore/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Use(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("subgroup names carry the parent", func(t *testing.T) {
		g := NewDomainGroup("products", "/products")
		assert.Equal(t, "products/products-admin", g.Group("products-admin", "").Name())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("test", "/test").
			GET("/a", ok).
			POST("/a", ok).
			PUT("/a", ok).
			PATCH("/a", ok).
			DELETE("/a", ok)
		NewRouter(engine).Register(g).Setup()

		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			assert.Equal(t, http.StatusOK, serve(engine, method, "/api/test/a").Code, method)
		}
	})

	t.Run("empty prefix subgroups share the parent path", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("items", "/items")
		g.Group("public", "").GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") })
		g.Group("guarded", "").
			Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }).
			POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })
		NewRouter(engine).Register(g).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/items").Code)
		assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/api/items").Code)
	})
}

func testHandlers() Handlers {
	return Handlers{
		Product:     handler.NewProductHandler(nil, 0),
		Category:    handler.NewCategoryHandler(nil),
		MetalRate:   handler.NewMetalRateHandler(nil, nil),
		Setting:     handler.NewSettingHandler(nil),
		Bill:        handler.NewBillHandler(nil),
		Estimate:    handler.NewEstimateHandler(nil),
		Cart:        handler.NewCartHandler(nil),
		HomeSection: handler.NewHomeSectionHandler(nil),
		Shipment:    handler.NewShipmentHandler(nil),
		Auth:        handler.NewAuthHandler(nil),
		User:        handler.NewUserHandler(nil),
		System:      handler.NewSystemHandler("jewelstore", "test", nil),
	}
}

// denyGuards reject at each guard so no handler with a nil service is reached
func denyGuards() Guards {
	return Guards{
		Optional: func(c *gin.Context) { c.Header("X-Guard", "optional"); c.AbortWithStatus(http.StatusTeapot) },
		Staff:    []gin.HandlerFunc{func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }},
		Admin:    func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
		Login:    func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) },
	}
}

func TestAPIGroups_RouteTable(t *testing.T) {
	engine := gin.New()
	require.NotPanics(t, func() {
		NewRouter(engine).Register(APIGroups(testHandlers(), denyGuards())...).Setup()
	})

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /api/products",
		"GET /api/products/code/:code",
		"POST /api/products/:id/images",
		"POST /api/products/import",
		"GET /api/categories/slug/:slug",
		"POST /api/metal-rates/quote",
		"GET /api/settings/public",
		"PUT /api/settings/:key",
		"GET /api/bills/number/:number",
		"GET /api/bills/:id/pdf",
		"POST /api/estimates/:id/convert",
		"POST /api/cart",
		"POST /api/cart/:cartId/checkout",
		"POST /api/home-sections/reorder",
		"GET /api/shipments/track/:trackingNumber",
		"PATCH /api/shipments/:id/status",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"POST /api/users/:id/deactivate",
		"GET /api/system/info",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestAPIGroups_Guards(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(APIGroups(testHandlers(), denyGuards())...).Setup()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/products", http.StatusTeapot},
		{http.MethodGet, "/api/metal-rates", http.StatusTeapot},
		{http.MethodPost, "/api/products", http.StatusUnauthorized},
		{http.MethodGet, "/api/bills", http.StatusUnauthorized},
		{http.MethodGet, "/api/settings", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/logout", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/login", http.StatusTooManyRequests},
		// admin routes run the staff guard first
		{http.MethodGet, "/api/users", http.StatusUnauthorized},
		{http.MethodPut, "/api/settings/store.name", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
	}
}

func TestAPIGroups_AdminRequiresRole(t *testing.T) {
	guards := denyGuards()
	guards.Staff = []gin.HandlerFunc{func(c *gin.Context) { c.Next() }}

	engine := gin.New()
	NewRouter(engine).Register(APIGroups(testHandlers(), guards)...).Setup()

	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/metal-rates").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodDelete, "/api/settings/store.name").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/users").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/products/import").Code)
}

func TestRegisterHealth(t *testing.T) {
	engine := gin.New()
	RegisterHealth(engine, handler.NewSystemHandler("jewelstore", "test", nil))

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health/live").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready").Code)
}
