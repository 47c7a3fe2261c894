package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/aurum/jewelstore/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TemplateEngine renders the document templates
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the built-in templates
func NewTemplateEngine() *TemplateEngine {
	t := template.New("documents").Funcs(FuncMap())
	template.Must(t.New(templateInvoice).Parse(invoiceTemplate))
	return &TemplateEngine{templates: t}
}

// Render executes the named template
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FuncMap returns the formatting helpers available to templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":  FormatMoney,
		"weight": FormatWeight,
		"pct":    FormatPercent,
		"date":   formatDate,
		"title":  titleCase,
		"upper":  strings.ToUpper,
		"inc":    func(i int) int { return i + 1 },
		"nonZero": func(d decimal.Decimal) bool {
			return !d.IsZero()
		},
	}
}

var (
	printersMu sync.Mutex
	printers   = map[valueobject.Currency]*message.Printer{}
)

// localeFor picks the number locale per currency; INR uses lakh grouping
func localeFor(c valueobject.Currency) language.Tag {
	if c == valueobject.INR {
		return language.MustParse("en-IN")
	}
	return language.English
}

func printerFor(c valueobject.Currency) *message.Printer {
	printersMu.Lock()
	defer printersMu.Unlock()
	p, ok := printers[c]
	if !ok {
		p = message.NewPrinter(localeFor(c))
		printers[c] = p
	}
	return p
}

func currencySymbol(c valueobject.Currency) string {
	switch c {
	case valueobject.INR:
		return "₹"
	case valueobject.BHD:
		return "BHD "
	default:
		return string(c) + " "
	}
}

// FormatMoney formats an amount with the currency's symbol, grouping and places
func FormatMoney(amount decimal.Decimal, c valueobject.Currency) string {
	places := int(c.Places())
	rounded := c.Round(amount)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	n := number.Decimal(rounded.InexactFloat64(), number.Scale(places))
	return sign + currencySymbol(c) + printerFor(c).Sprint(n)
}

// FormatWeight formats grams to 3 places
func FormatWeight(grams decimal.Decimal) string {
	return grams.StringFixed(3) + " g"
}

// FormatPercent drops trailing zeros: 12.50 -> 12.5%
func FormatPercent(pct decimal.Decimal) string {
	return pct.String() + "%"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
