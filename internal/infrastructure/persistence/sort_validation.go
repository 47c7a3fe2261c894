package persistence

import (
	"strings"
)

// SortFields whitelists the columns a list endpoint may order by. Values
// reach ORDER BY unquoted, so nothing outside the set is ever used.
type SortFields map[string]bool

// sortable always allows the identity and timestamp columns
func sortable(columns ...string) SortFields {
	fields := SortFields{"id": true, "created_at": true, "updated_at": true}
	for _, c := range columns {
		fields[c] = true
	}
	return fields
}

var (
	ProductSortFields   = sortable("code", "name", "metal", "purity", "gross_weight", "stock")
	CategorySortFields  = sortable("name", "slug", "sort_order")
	MetalRateSortFields = sortable("metal", "purity", "market", "rate_per_gram", "effective_at")
	BillSortFields      = sortable("bill_number", "customer_name", "grand_total", "payment_status", "status")
	EstimateSortFields  = sortable("estimate_number", "customer_name", "grand_total", "status", "valid_until")
	ShipmentSortFields  = sortable("tracking_number", "status", "shipped_at", "delivered_at")
	UserSortFields      = sortable("username", "email", "role", "last_login_at")
)

// ValidateSortOrder returns ASC only for a case-insensitive "asc"; anything else is DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the field when whitelisted, else fallback
func ValidateSortField(field string, allowed SortFields, fallback string) string {
	if f := strings.TrimSpace(field); allowed[f] {
		return f
	}
	return fallback
}
