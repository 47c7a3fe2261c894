package handler

import (
	"net/http"
	"testing"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func estimateRoutes(router *gin.Engine, h *EstimateHandler) {
	router.GET("/estimates", h.List)
	router.POST("/estimates/:id/send", h.MarkSent)
	router.POST("/estimates/:id/convert", h.Convert)
	router.GET("/estimates/:id/pdf", h.Document)
}

func TestEstimateHandler_Convert(t *testing.T) {
	id := uuid.New()

	t.Run("returns the new bill", func(t *testing.T) {
		svc := new(mockEstimateService)
		router := setupTestRouter()
		estimateRoutes(router, NewEstimateHandler(svc))
		svc.On("ConvertToBill", mock.Anything, id, billingapp.ConvertEstimateRequest{PaymentMethod: "upi", Paid: true}).
			Return(&billingapp.BillResponse{BillNumber: "BL-20260301-0001"}, nil)

		w := doRequest(router, http.MethodPost, "/estimates/"+id.String()+"/convert", map[string]any{"payment_method": "upi", "paid": true})

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "BL-20260301-0001", data["bill_number"])
	})

	t.Run("expired estimate", func(t *testing.T) {
		svc := new(mockEstimateService)
		router := setupTestRouter()
		estimateRoutes(router, NewEstimateHandler(svc))
		svc.On("ConvertToBill", mock.Anything, id, billingapp.ConvertEstimateRequest{}).
			Return(nil, shared.NewDomainError("INVALID_STATE", "Estimate has expired"))

		w := doRequest(router, http.MethodPost, "/estimates/"+id.String()+"/convert", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEstimateHandler_MarkSent(t *testing.T) {
	svc := new(mockEstimateService)
	router := setupTestRouter()
	estimateRoutes(router, NewEstimateHandler(svc))
	id := uuid.New()
	svc.On("MarkSent", mock.Anything, id).
		Return(nil, shared.NewDomainError("INVALID_TRANSITION", "Estimate was already converted"))

	w := doRequest(router, http.MethodPost, "/estimates/"+id.String()+"/send", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, w))
}

func TestEstimateHandler_List_Status(t *testing.T) {
	svc := new(mockEstimateService)
	router := setupTestRouter()
	estimateRoutes(router, NewEstimateHandler(svc))
	svc.On("List", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "sent" && f.Filters["market"] == "BH"
	})).Return([]billingapp.EstimateResponse{}, int64(0), nil)

	w := doRequest(router, http.MethodGet, "/estimates?status=sent&market=BH", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestEstimateHandler_Document_HTML(t *testing.T) {
	svc := new(mockEstimateService)
	router := setupTestRouter()
	estimateRoutes(router, NewEstimateHandler(svc))
	id := uuid.New()
	svc.On("Render", mock.Anything, id, billingapp.FormatHTML).Return(&billingapp.RenderedDocument{
		Data: []byte("<html/>"), ContentType: "text/html; charset=utf-8", Filename: "ES-20260301-0001.html",
	}, nil)

	w := doRequest(router, http.MethodGet, "/estimates/"+id.String()+"/pdf?format=html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
