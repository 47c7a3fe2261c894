package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/pricing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

func testStore() billingapp.StoreInfo {
	return billingapp.StoreInfo{Name: "Aurum Jewels", Address: "MG Road, Bengaluru", TaxID: "29ABCDE1234F1Z5"}
}

func testLine() billing.PricedLine {
	dec := decimal.RequireFromString
	return billing.PricedLine{
		ProductCode: "RNG-001",
		Description: "Classic band",
		Metal:       pricing.MetalGold,
		Purity:      "22K",
		GrossWeight: dec("10"),
		Quantity:    1,
		RatePerGram: dec("6000"),
		MakingPct:   dec("10"),
		MetalValue:  dec("60000"),
		Making:      dec("6000"),
		Subtotal:    dec("66000"),
		Tax:         dec("1980"),
		LineTotal:   dec("67980"),
	}
}

func testBill() *billing.Bill {
	b := &billing.Bill{
		BillNumber:    "BL-20260305-0001",
		Channel:       billing.ChannelStore,
		Customer:      billing.Customer{Name: "Priya", Phone: "+919800000000"},
		Market:        valueobject.MarketIndia,
		Currency:      valueobject.INR,
		Items:         []billing.BillItem{{ID: uuid.New(), LineNo: 1, PricedLine: testLine()}},
		PaymentMethod: billing.PaymentUPI,
		PaymentStatus: billing.PaymentPaid,
		Status:        billing.BillConfirmed,
	}
	b.Totals = billing.Totals{
		Subtotal:   decimal.RequireFromString("66000"),
		TaxTotal:   decimal.RequireFromString("1980"),
		GrandTotal: decimal.RequireFromString("67980"),
	}
	b.CreatedAt = time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)
	return b
}

func testEstimate() *billing.Estimate {
	e := &billing.Estimate{
		EstimateNumber: "ES-20260305-0001",
		Customer:       billing.Customer{Name: "Ahmed", Email: "ahmed@example.com"},
		Market:         valueobject.MarketBahrain,
		Currency:       valueobject.BHD,
		Items:          []billing.EstimateItem{{ID: uuid.New(), LineNo: 1, PricedLine: testLine()}},
		Status:         billing.EstimateDraft,
		ValidUntil:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	e.CreatedAt = time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)
	return e
}

func TestDocumentRenderer_HTML(t *testing.T) {
	r := NewDocumentRenderer(nil, nil)

	doc, err := r.RenderBill(context.Background(), testBill(), testStore(), billingapp.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "BL-20260305-0001.html", doc.Filename)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)

	body := string(doc.Data)
	assert.Contains(t, body, "Aurum Jewels")
	assert.Contains(t, body, "INVOICE")
	assert.Contains(t, body, "Classic band")
	assert.Contains(t, body, "₹67,980")
	assert.Contains(t, body, "10.000 g")
	assert.Contains(t, body, "Upi")
}

func TestDocumentRenderer_EstimateUsesMarketCurrency(t *testing.T) {
	r := NewDocumentRenderer(nil, nil)

	doc, err := r.RenderEstimate(context.Background(), testEstimate(), testStore(), billingapp.FormatHTML)
	require.NoError(t, err)
	body := string(doc.Data)
	assert.Contains(t, body, "BHD 67,980.000")
	assert.Contains(t, body, "12 Mar 2026")
}

func TestDocumentRenderer_PDF(t *testing.T) {
	t.Run("without a pdf renderer", func(t *testing.T) {
		r := NewDocumentRenderer(nil, nil)
		_, err := r.RenderBill(context.Background(), testBill(), testStore(), billingapp.FormatPDF)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PRINTING_UNAVAILABLE", de.Code)
	})

	t.Run("defaults to pdf", func(t *testing.T) {
		pdf := new(MockPDFRenderer)
		pdf.On("Render", mock.Anything, mock.MatchedBy(func(req *RenderRequest) bool {
			return req.PaperSize == PaperA4 && req.Title == "Invoice BL-20260305-0001"
		})).Return(&RenderResult{PDFData: []byte("%PDF"), PageCount: 1}, nil)

		r := NewDocumentRenderer(pdf, nil)
		doc, err := r.RenderBill(context.Background(), testBill(), testStore(), "")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.Equal(t, "BL-20260305-0001.pdf", doc.Filename)
		assert.Equal(t, []byte("%PDF"), doc.Data)
		pdf.AssertExpectations(t)
	})

	t.Run("propagates renderer errors", func(t *testing.T) {
		pdf := new(MockPDFRenderer)
		pdf.On("Render", mock.Anything, mock.Anything).
			Return(nil, NewRenderError(ErrCodeRenderTimeout, "timed out", errors.New("deadline")))

		r := NewDocumentRenderer(pdf, nil)
		_, err := r.RenderEstimate(context.Background(), testEstimate(), testStore(), billingapp.FormatPDF)
		var re *RenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, ErrCodeRenderTimeout, re.Code)
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		r := NewDocumentRenderer(nil, nil)
		_, err := r.RenderBill(context.Background(), testBill(), testStore(), "docx")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_FORMAT", de.Code)
	})
}
