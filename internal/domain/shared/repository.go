package shared

// Filter is what list endpoints hand to repositories. Filters holds
// resource-specific equality filters keyed by name, e.g. "metal" or
// "payment_status"; each repository decides which keys it honours.
type Filter struct {
	Page            int
	PageSize        int
	OrderBy         string
	OrderDir        string
	Search          string
	IncludeInactive bool
	Filters         map[string]any
}

// DefaultFilter is page 1 of 20, newest first, active rows only
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
