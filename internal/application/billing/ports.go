package billing

import (
	"context"

	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/pricing"
)

// StoreInfo is the seller block printed on documents
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	TaxID   string
}

// DocumentFormat selects the rendered output
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatHTML DocumentFormat = "html"
)

// RenderedDocument is a printable bill or estimate
type RenderedDocument struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DocumentRenderer produces printable bills and estimates
type DocumentRenderer interface {
	RenderBill(ctx context.Context, bill *billing.Bill, store StoreInfo, format DocumentFormat) (*RenderedDocument, error)
	RenderEstimate(ctx context.Context, estimate *billing.Estimate, store StoreInfo, format DocumentFormat) (*RenderedDocument, error)
}

// InvoiceMail is an outgoing message with one attachment
type InvoiceMail struct {
	To         string
	Subject    string
	HTMLBody   string
	Attachment *RenderedDocument
}

// InvoiceMailer sends documents to customers
type InvoiceMailer interface {
	Send(ctx context.Context, mail InvoiceMail) error
}

// LinePricer prices one piece at the live rate.
// A missing rate yields an unavailable breakdown rather than an error.
type LinePricer interface {
	PerPiece(ctx context.Context, key pricing.RateKey, charges pricing.Charges) (pricing.Breakdown, error)
}

// StoreInfoSource resolves the seller block printed on documents
type StoreInfoSource interface {
	StoreInfo(ctx context.Context) (StoreInfo, error)
}

// ValiditySource returns the default estimate validity in days
type ValiditySource interface {
	EstimateValidityDays(ctx context.Context) (int, error)
}
