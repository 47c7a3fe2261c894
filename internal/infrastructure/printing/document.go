package printing

import (
	"context"
	"fmt"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrPrintingUnavailable is returned for PDF requests when no PDF renderer is configured
var ErrPrintingUnavailable = shared.NewDomainError("PRINTING_UNAVAILABLE", "PDF printing is not enabled, request format=html instead")

// DocumentRenderer renders bills and estimates to HTML, and to PDF through a PDFRenderer
type DocumentRenderer struct {
	engine *TemplateEngine
	pdf    PDFRenderer
	paper  PaperSize
	logger *zap.Logger
}

// NewDocumentRenderer creates a renderer. pdf may be nil, in which case only HTML is served.
func NewDocumentRenderer(pdf PDFRenderer, logger *zap.Logger) *DocumentRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentRenderer{
		engine: NewTemplateEngine(),
		pdf:    pdf,
		paper:  PaperA4,
		logger: logger,
	}
}

// RenderBill renders a bill as an invoice
func (r *DocumentRenderer) RenderBill(ctx context.Context, bill *billing.Bill, store billingapp.StoreInfo, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error) {
	return r.render(ctx, billView(bill, store), bill.BillNumber, format)
}

// RenderEstimate renders an estimate
func (r *DocumentRenderer) RenderEstimate(ctx context.Context, estimate *billing.Estimate, store billingapp.StoreInfo, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error) {
	return r.render(ctx, estimateView(estimate, store), estimate.EstimateNumber, format)
}

func (r *DocumentRenderer) render(ctx context.Context, view documentView, number string, format billingapp.DocumentFormat) (*billingapp.RenderedDocument, error) {
	if format == "" {
		format = billingapp.FormatPDF
	}
	if format != billingapp.FormatPDF && format != billingapp.FormatHTML {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("unsupported document format %q", format))
	}

	html, err := r.engine.Render(templateInvoice, view)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to render document", err)
	}

	if format == billingapp.FormatHTML {
		return &billingapp.RenderedDocument{
			Data:        []byte(html),
			ContentType: "text/html; charset=utf-8",
			Filename:    number + ".html",
		}, nil
	}

	if r.pdf == nil {
		return nil, ErrPrintingUnavailable
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:      html,
		Title:     view.Title + " " + number,
		PaperSize: r.paper,
		Margins:   DefaultMargins(),
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("document printed",
		zap.String("number", number),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return &billingapp.RenderedDocument{
		Data:        result.PDFData,
		ContentType: "application/pdf",
		Filename:    number + ".pdf",
	}, nil
}

var _ billingapp.DocumentRenderer = (*DocumentRenderer)(nil)
