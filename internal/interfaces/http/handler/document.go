package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	billingapp "github.com/aurum/jewelstore/internal/application/billing"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// documentFormat reads ?format=, defaulting to PDF
func documentFormat(c *gin.Context) (billingapp.DocumentFormat, bool) {
	switch strings.ToLower(c.DefaultQuery("format", string(billingapp.FormatPDF))) {
	case string(billingapp.FormatPDF):
		return billingapp.FormatPDF, true
	case string(billingapp.FormatHTML):
		return billingapp.FormatHTML, true
	default:
		return "", false
	}
}

// sendDocument streams a rendered document. PDFs download, HTML renders inline.
func sendDocument(c *gin.Context, doc *billingapp.RenderedDocument) {
	disposition := "attachment"
	if strings.HasPrefix(doc.ContentType, "text/html") {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// dateRangeFilter parses from/to as RFC 3339 timestamps or YYYY-MM-DD dates.
// A bare to date covers the whole day.
func dateRangeFilter(c *gin.Context, filter *shared.Filter) error {
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, _, err := parseDateParam(raw)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		filter.Filters["from"] = from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, dateOnly, err := parseDateParam(raw)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.Filters["to"] = to
	}
	return nil
}

func parseDateParam(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", raw)
	}
	return t, true, nil
}
