package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aurum/jewelstore/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingWithConfig(t *testing.T) {
	sr := setupTestTracer(t)
	svc := newTestJWTService(15 * time.Minute)

	router := gin.New()
	router.Use(
		RequestID(),
		TracingWithConfig(TracingConfig{ServiceName: "jewelstore", Enabled: true, SkipPaths: []string{"/health"}}),
		SpanErrorMarker(),
	)
	router.GET("/health", okHandler)
	admin := router.Group("/api/admin", JWTAuthMiddleware(svc), TracingAttributeInjector())
	admin.GET("/bills/:id", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "INTERNAL_ERROR")
		c.Status(http.StatusInternalServerError)
	})

	pair, userID := issue(t, svc, identity.RoleStaff)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/bills/42", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	req.Header.Set("X-Request-ID", "req-trace")
	router.ServeHTTP(w, req)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1, "health probes are not traced")
	span := spans[0]

	assert.Contains(t, span.Name(), "/api/admin/bills/:id")
	assert.Equal(t, codes.Error, span.Status().Code)

	a := attrs(span)
	assert.Equal(t, "req-trace", a["request_id"].AsString())
	assert.Equal(t, userID.String(), a["user_id"].AsString())
	assert.Equal(t, "staff", a["user_role"].AsString())
	assert.Equal(t, "INTERNAL_ERROR", a["error.code"].AsString())
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/", okHandler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, sr.Ended())
}

func TestSpanErrorMarker_ClientErrorKeepsStatusUnset(t *testing.T) {
	sr := setupTestTracer(t)
	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "jewelstore", Enabled: true}), SpanErrorMarker())
	router.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/x", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(404), attrs(spans[0])["http.status_code"].AsInt64())
}
