package persistence

import (
	"errors"
	"strings"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"gorm.io/gorm"
)

// activeOnly hides soft-deleted rows unless the filter asks for them
func activeOnly(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.IncludeInactive {
		return query
	}
	return query.Where("is_active = ?", true)
}

// paginate applies a whitelisted ordering and the page window
func paginate(query *gorm.DB, filter shared.Filter, allowed SortFields, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive contains pattern for LOWER(col) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// notFound maps a missing row to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// uniqueViolation maps duplicate key errors from postgres and sqlite to ALREADY_EXISTS
func uniqueViolation(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return shared.NewDomainError("ALREADY_EXISTS", message)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
