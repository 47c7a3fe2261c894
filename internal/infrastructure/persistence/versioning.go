package persistence

import (
	"reflect"

	"github.com/aurum/jewelstore/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// versioned is an aggregate whose row carries an optimistic lock counter
type versioned interface {
	StoredVersion() int
	MarkStored()
}

// OptimisticLocking is a GORM plugin that records the version every loaded
// aggregate was read at, so saveVersioned can refuse stale writes.
type OptimisticLocking struct{}

func (OptimisticLocking) Name() string {
	return "jewelstore:optimistic_locking"
}

func (OptimisticLocking) Initialize(db *gorm.DB) error {
	return db.Callback().Query().After("gorm:query").Register("jewelstore:mark_stored", markLoaded)
}

func markLoaded(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil || !db.Statement.ReflectValue.IsValid() {
		return
	}
	rv := reflect.Indirect(db.Statement.ReflectValue)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			markValue(rv.Index(i))
		}
	case reflect.Struct:
		markValue(rv)
	}
}

func markValue(v reflect.Value) {
	v = reflect.Indirect(v)
	if !v.IsValid() || !v.CanAddr() {
		return
	}
	if agg, ok := v.Addr().Interface().(versioned); ok {
		agg.MarkStored()
	}
}

// saveVersioned inserts an aggregate that was never stored. A stored one is
// updated only while its row still holds the version it was loaded at;
// otherwise ErrConcurrentModification is returned and nothing is written.
// Callers mark the aggregate stored once their transaction succeeds.
func saveVersioned(tx *gorm.DB, agg versioned) error {
	stored := agg.StoredVersion()
	if stored == 0 {
		return tx.Omit(clause.Associations).Save(agg).Error
	}
	result := tx.Model(agg).
		Select("*").
		Omit(clause.Associations).
		Where("version = ?", stored).
		Updates(agg)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}
