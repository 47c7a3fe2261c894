package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	cartapp "github.com/aurum/jewelstore/internal/application/cart"
	catalogapp "github.com/aurum/jewelstore/internal/application/catalog"
	contentapp "github.com/aurum/jewelstore/internal/application/content"
	identityapp "github.com/aurum/jewelstore/internal/application/identity"
	pricingapp "github.com/aurum/jewelstore/internal/application/pricing"
	settingsapp "github.com/aurum/jewelstore/internal/application/settings"
	shippingapp "github.com/aurum/jewelstore/internal/application/shipping"
	"github.com/aurum/jewelstore/internal/domain/identity"
	"github.com/aurum/jewelstore/internal/infrastructure/auth"
	"github.com/aurum/jewelstore/internal/infrastructure/cache"
	"github.com/aurum/jewelstore/internal/infrastructure/config"
	"github.com/aurum/jewelstore/internal/infrastructure/event"
	"github.com/aurum/jewelstore/internal/infrastructure/mail"
	"github.com/aurum/jewelstore/internal/infrastructure/persistence"
	"github.com/aurum/jewelstore/internal/infrastructure/printing"
	"github.com/aurum/jewelstore/internal/infrastructure/storage"
	"github.com/aurum/jewelstore/internal/interfaces/http/handler"
	"github.com/aurum/jewelstore/internal/interfaces/http/middleware"
	"github.com/aurum/jewelstore/internal/interfaces/http/router"
	"github.com/aurum/jewelstore/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminUsername = "owner"
	adminPassword = "Sup3r-secret!"
)

// TestServer is the full API over a migrated database
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Events *testutil.RecordingHandler

	Users *identityapp.UserService
}

// NewTestServer wires every service the way the server command does, with
// in-memory cache and token revocation, stub image storage, HTML-only
// documents and a no-op mailer
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	testDB := NewTestDB(t)
	log := zap.NewNop()
	ctx := context.Background()

	backend := cache.NewMemoryBackend(time.Minute)
	t.Cleanup(func() { _ = backend.Close() })
	blacklist := auth.NewInMemoryTokenBlacklist()

	bus := event.NewInMemoryEventBus(log)
	recorder := testutil.NewRecordingHandler()
	bus.Subscribe(recorder)
	require.NoError(t, bus.Start(ctx))

	productRepo := persistence.NewGormProductRepository(testDB.DB)
	categoryRepo := persistence.NewGormCategoryRepository(testDB.DB)
	rateRepo := persistence.NewGormMetalRateRepository(testDB.DB)
	billRepo := persistence.NewGormBillRepository(testDB.DB)
	txScope := persistence.NewGormTransactionScope(testDB.DB)

	rates := cache.NewCachedRateLookup(rateRepo, backend, time.Minute, log)
	renderer := printing.NewDocumentRenderer(nil, log)
	mailer := mail.NewNopMailer(log)

	settingService := settingsapp.NewSettingService(persistence.NewGormSettingRepository(testDB.DB), log)
	pricer := pricingapp.NewPricer(rates, settingService, nil, log)
	checkoutPricer := pricingapp.NewPricer(rateRepo, settingService, nil, log)
	billService := billingapp.NewBillService(billingapp.BillServiceDeps{
		BillRepo: billRepo,
		TxScope:  txScope,
		Pricer:   checkoutPricer,
		Renderer: renderer,
		Store:    settingService,
		Mailer:   mailer,
		Events:   bus,
		Logger:   log,
	})
	estimateService := billingapp.NewEstimateService(billingapp.EstimateServiceDeps{
		EstimateRepo: persistence.NewGormEstimateRepository(testDB.DB),
		ProductRepo:  productRepo,
		Bills:        billService,
		TxScope:      txScope,
		Pricer:       checkoutPricer,
		Validity:     settingService,
		Renderer:     renderer,
		Store:        settingService,
		Events:       bus,
		Logger:       log,
	})
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-access-secret-0123456789",
		RefreshSecret:          "integration-refresh-secret-0123456789",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "jewelstore-test",
		MaxRefreshCount:        10,
	})
	userService := identityapp.NewUserService(persistence.NewGormUserRepository(testDB.DB), blacklist, jwtService, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, pricer, storage.NewStubObjectStorage("http://cdn.test"), bus, log)

	created, err := userService.Bootstrap(ctx, adminUsername, "owner@aurum.test", adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Optional: middleware.OptionalJWTAuthMiddleware(jwtService),
		Staff:    []gin.HandlerFunc{jwtAuth},
		Admin:    middleware.RequireRole(identity.RoleAdmin),
	}
	systemHandler := handler.NewSystemHandler("jewelstore", "test", map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return testDB.SqlDB.PingContext(ctx) },
	})
	handlers := router.Handlers{
		Product:     handler.NewProductHandler(productService, 10<<20),
		Category:    handler.NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo, log)),
		MetalRate:   handler.NewMetalRateHandler(pricingapp.NewRateService(rateRepo, rates, bus, log), pricer),
		Setting:     handler.NewSettingHandler(settingService),
		Bill:        handler.NewBillHandler(billService),
		Estimate:    handler.NewEstimateHandler(estimateService),
		Cart:        handler.NewCartHandler(cartapp.NewCartService(cache.NewCartStore(backend, time.Hour), productRepo, pricer, billService, nil, log)),
		HomeSection: handler.NewHomeSectionHandler(contentapp.NewHomeSectionService(persistence.NewGormHomeSectionRepository(testDB.DB), log)),
		Shipment:    handler.NewShipmentHandler(shippingapp.NewShipmentService(persistence.NewGormShipmentRepository(testDB.DB), billRepo, bus, log)),
		Auth:        handler.NewAuthHandler(identityapp.NewAuthService(persistence.NewGormUserRepository(testDB.DB), jwtService, blacklist, log)),
		User:        handler.NewUserHandler(userService),
		System:      systemHandler,
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	for _, g := range router.APIGroups(handlers, guards) {
		r.Register(g)
	}
	r.Setup()
	router.RegisterHealth(engine, systemHandler)

	return &TestServer{DB: testDB, Engine: engine, Events: recorder, Users: userService}
}

// Do sends a JSON request; token may be empty
func (ts *TestServer) Do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var headers map[string]string
	if token != "" {
		headers = testutil.Bearer(token)
	}
	return testutil.Serve(t, ts.Engine, method, path, body, headers)
}

// Login returns an access token for the given credentials
func (ts *TestServer) Login(t *testing.T, username, password string) identityapp.TokenResponse {
	t.Helper()
	w := ts.Do(t, http.MethodPost, "/api/auth/login", identityapp.LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.DecodeEnvelope[identityapp.TokenResponse](t, w).Data
}

// AdminToken logs in as the bootstrap admin
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()
	return ts.Login(t, adminUsername, adminPassword).AccessToken
}
