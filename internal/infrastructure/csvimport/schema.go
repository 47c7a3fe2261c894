package csvimport

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Kind is the expected type of a cell
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindBool
)

// Column describes how one column is checked
type Column struct {
	Name     string
	Kind     Kind
	Required bool
	MaxLen   int
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	OneOf    []string
	Unique   bool
}

// Col starts a string column
func Col(name string) *Column {
	return &Column{Name: name}
}

// Require marks the column as mandatory
func (c *Column) Require() *Column { c.Required = true; return c }

func (c *Column) Int() *Column { c.Kind = KindInt; return c }

func (c *Column) Decimal() *Column { c.Kind = KindDecimal; return c }

func (c *Column) Bool() *Column { c.Kind = KindBool; return c }

func (c *Column) MaxLength(n int) *Column { c.MaxLen = n; return c }

// Distinct rejects a value already seen in an earlier row, ignoring case
func (c *Column) Distinct() *Column { c.Unique = true; return c }

// In restricts the column to a case-insensitive set of values
func (c *Column) In(values ...string) *Column {
	c.OneOf = values
	return c
}

// Between bounds a numeric column; either bound may be nil
func (c *Column) Between(min, max *decimal.Decimal) *Column {
	c.Min, c.Max = min, max
	return c
}

// AtLeast sets a lower bound on a numeric column
func (c *Column) AtLeast(min int64) *Column {
	v := decimal.NewFromInt(min)
	c.Min = &v
	return c
}

// Schema checks rows column by column and remembers unique values across rows
type Schema struct {
	columns []*Column
	seen    map[string]map[string]int
}

// NewSchema creates a schema from columns
func NewSchema(columns ...*Column) *Schema {
	return &Schema{columns: columns, seen: make(map[string]map[string]int)}
}

// Required returns the names of required columns
func (s *Schema) Required() []string {
	var names []string
	for _, c := range s.columns {
		if c.Required {
			names = append(names, c.Name)
		}
	}
	return names
}

// Check validates a row and adds any problems to errs. It reports whether
// the row passed.
func (s *Schema) Check(row Row, errs *Errors) bool {
	before := errs.Total()
	for _, c := range s.columns {
		s.checkCell(c, row, errs)
	}
	return errs.Total() == before
}

func (s *Schema) checkCell(c *Column, row Row, errs *Errors) {
	value := row.Get(c.Name)
	if value == "" {
		if c.Required {
			errs.Addf(row.Line, c.Name, CodeRequired, "", "%s is required", c.Name)
		}
		return
	}

	if c.MaxLen > 0 && utf8.RuneCountInString(value) > c.MaxLen {
		errs.Addf(row.Line, c.Name, CodeTooLong, value, "must be at most %d characters", c.MaxLen)
		return
	}
	if len(c.OneOf) > 0 && !slices.ContainsFunc(c.OneOf, func(v string) bool { return strings.EqualFold(v, value) }) {
		errs.Addf(row.Line, c.Name, CodeInvalidValue, value, "must be one of %s", strings.Join(c.OneOf, ", "))
		return
	}

	switch c.Kind {
	case KindInt, KindDecimal:
		n, err := decimal.NewFromString(value)
		if err != nil || (c.Kind == KindInt && !n.IsInteger()) {
			kind := "a number"
			if c.Kind == KindInt {
				kind = "a whole number"
			}
			errs.Addf(row.Line, c.Name, CodeInvalidType, value, "must be %s", kind)
			return
		}
		if (c.Min != nil && n.LessThan(*c.Min)) || (c.Max != nil && n.GreaterThan(*c.Max)) {
			errs.Addf(row.Line, c.Name, CodeOutOfRange, value, "is out of range")
			return
		}
	case KindBool:
		if _, err := strconv.ParseBool(value); err != nil && !isYesNo(value) {
			errs.Addf(row.Line, c.Name, CodeInvalidType, value, "must be true or false")
			return
		}
	}

	if c.Unique {
		key := strings.ToUpper(value)
		seen := s.seen[c.Name]
		if seen == nil {
			seen = make(map[string]int)
			s.seen[c.Name] = seen
		}
		if first, dup := seen[key]; dup {
			errs.Addf(row.Line, c.Name, CodeDuplicate, value, "duplicates row %d", first)
			return
		}
		seen[key] = row.Line
	}
}

// ParseBool accepts strconv forms plus yes/no and y/n
func ParseBool(value string) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	v := strings.ToLower(value)
	return v == "yes" || v == "y"
}

func isYesNo(value string) bool {
	switch strings.ToLower(value) {
	case "yes", "no", "y", "n":
		return true
	}
	return false
}
