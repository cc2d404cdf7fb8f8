package shared

import "gorm.io/gorm"

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version backs optimistic locking: domain mutations increment it in memory,
// and repositories saving with a lock compare the stored version against the
// version the aggregate was loaded with, failing on mismatch.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`

	// loadedVersion is the version read from storage, captured by AfterFind.
	// Zero for aggregates that were never loaded.
	loadedVersion int `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// LoadedVersion returns the version the aggregate carried when it was loaded
// from storage. Multiple mutations may have incremented Version since; the
// optimistic lock compares against this value.
func (a *BaseAggregateRoot) LoadedVersion() int {
	return a.loadedVersion
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AfterFind captures the stored version on load
func (a *BaseAggregateRoot) AfterFind(_ *gorm.DB) error {
	a.loadedVersion = a.Version
	return nil
}

// MarkLoaded records the current version as the loaded one. Repositories and
// tests use it to simulate a fresh load without a storage round trip.
func (a *BaseAggregateRoot) MarkLoaded() {
	a.loadedVersion = a.Version
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
