package shared

import "github.com/google/uuid"

// AggregateRoot is what the event publishing helpers need from a saved
// aggregate: its id and the events recorded since the last flush.
type AggregateRoot interface {
	GetID() uuid.UUID
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot is embedded by every catalog, billing and content
// aggregate. Rows are never physically removed; IsActive=false hides them.
type BaseAggregateRoot struct {
	BaseEntity
	Version  int  `gorm:"not null;default:1"`
	IsActive bool `gorm:"not null;index"`

	pending []DomainEvent `gorm:"-"`
	stored  int           `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1, IsActive: true}
}

// GetVersion is the optimistic locking counter
func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// MarkStored records that the database row now holds Version.
// Repositories call it after loading or saving the aggregate.
func (a *BaseAggregateRoot) MarkStored() { a.stored = a.Version }

// StoredVersion is the row version this copy was read or written at; zero
// for an aggregate that has never been stored.
func (a *BaseAggregateRoot) StoredVersion() int { return a.stored }

// Deactivate soft-deletes the aggregate
func (a *BaseAggregateRoot) Deactivate() error {
	return a.setActive(false)
}

// Activate restores a soft-deleted aggregate
func (a *BaseAggregateRoot) Activate() error {
	return a.setActive(true)
}

func (a *BaseAggregateRoot) setActive(active bool) error {
	if a.IsActive == active {
		state := "inactive"
		if active {
			state = "active"
		}
		return NewDomainError("INVALID_STATE", "Record is already "+state)
	}
	a.IsActive = active
	a.Touch()
	a.IncrementVersion()
	return nil
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// GetDomainEvents returns the events recorded since the last ClearDomainEvents
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
