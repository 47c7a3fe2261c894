package printing

import (
	"embed"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/billing"
	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
)

//go:embed templates/*.html
var templateFS embed.FS

const templateInvoice = "invoice"

var invoiceTemplate = mustReadTemplate("templates/invoice.html")

func mustReadTemplate(path string) string {
	b, err := templateFS.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// documentView is the data handed to the invoice template for bills and estimates
type documentView struct {
	Title         string
	Number        string
	Date          time.Time
	ValidUntil    time.Time
	Status        string
	PaymentMethod string
	IsEstimate    bool
	Store         billingapp.StoreInfo
	Customer      billing.Customer
	Currency      valueobject.Currency
	Lines         []billing.PricedLine
	Totals        billing.Totals
	Notes         string
}

func billView(b *billing.Bill, store billingapp.StoreInfo) documentView {
	lines := make([]billing.PricedLine, 0, len(b.Items))
	for _, item := range b.Items {
		lines = append(lines, item.PricedLine)
	}
	return documentView{
		Title:         "Invoice",
		Number:        b.BillNumber,
		Date:          b.CreatedAt,
		Status:        string(b.PaymentStatus),
		PaymentMethod: string(b.PaymentMethod),
		Store:         store,
		Customer:      b.Customer,
		Currency:      b.Currency,
		Lines:         lines,
		Totals:        b.Totals,
		Notes:         b.Notes,
	}
}

func estimateView(e *billing.Estimate, store billingapp.StoreInfo) documentView {
	return documentView{
		Title:      "Estimate",
		Number:     e.EstimateNumber,
		Date:       e.CreatedAt,
		ValidUntil: e.ValidUntil,
		Status:     string(e.Status),
		IsEstimate: true,
		Store:      store,
		Customer:   e.Customer,
		Currency:   e.Currency,
		Lines:      e.Lines(),
		Totals:     e.Totals,
		Notes:      e.Notes,
	}
}
