package persistence

import (
	"errors"
	"testing"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	for input, want := range map[string]string{
		"":          "DESC",
		"asc":       "ASC",
		"  ASC  ":   "ASC",
		"desc":      "DESC",
		"ASC; --":   "DESC",
		"ascending": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(input), "input %q", input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "created_at"},
		{"gross_weight", "gross_weight"},
		{"  stock ", "stock"},
		{"GROSS_WEIGHT", "created_at"},
		{"price", "created_at"},
		{"stock; DROP TABLE products;--", "created_at"},
		{"name, (SELECT password_hash FROM users)", "created_at"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.input, ProductSortFields, "created_at"), "input %q", tt.input)
	}

	for name, fields := range map[string]SortFields{
		"products":    ProductSortFields,
		"categories":  CategorySortFields,
		"metal_rates": MetalRateSortFields,
		"bills":       BillSortFields,
		"estimates":   EstimateSortFields,
		"shipments":   ShipmentSortFields,
		"users":       UserSortFields,
	} {
		assert.True(t, fields["created_at"], "%s sorts by created_at", name)
		assert.False(t, fields["created_at; DROP TABLE users"], name)
	}
}

func TestPaginate(t *testing.T) {
	db := newTestDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []catalog.Product
		filter := shared.Filter{Page: 3, PageSize: 10, OrderBy: "stock", OrderDir: "asc"}
		return paginate(tx.Model(&catalog.Product{}), filter, ProductSortFields, "created_at").Find(&out)
	})
	assert.Contains(t, sql, "ORDER BY stock ASC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 20")

	sql = db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []catalog.Product
		filter := shared.Filter{OrderBy: "stock desc, id"}
		return paginate(tx.Model(&catalog.Product{}), filter, ProductSortFields, "created_at").Find(&out)
	})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.NotContains(t, sql, "LIMIT")
}

func TestQueryHelpers(t *testing.T) {
	assert.Equal(t, "%gold band%", likePattern("  Gold Band "))

	assert.ErrorIs(t, notFound(gorm.ErrRecordNotFound), shared.ErrNotFound)
	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other))

	assert.NoError(t, uniqueViolation(nil, "taken"))
	for _, err := range []error{
		gorm.ErrDuplicatedKey,
		errors.New(`ERROR: duplicate key value violates unique constraint "idx_products_code" (SQLSTATE 23505)`),
		errors.New("UNIQUE constraint failed: products.code"),
	} {
		got := uniqueViolation(err, "Product code is taken")
		assert.ErrorIs(t, got, shared.ErrAlreadyExists)
		assert.Equal(t, "Product code is taken", got.Error())
	}
	assert.Equal(t, other, uniqueViolation(other, "taken"))
}
