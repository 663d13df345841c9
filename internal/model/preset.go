package model

import (
	"time"

	"github.com/google/uuid"
)

// FilterPreset is a named, durable snapshot of a filter configuration.
// IDs are generated once at creation and never reused.
type FilterPreset struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Filters   Filters   `json:"filters"`
}

// NewFilterPreset creates a preset with a fresh id and creation timestamp.
func NewFilterPreset(name string, filters Filters) FilterPreset {
	return FilterPreset{
		ID:        uuid.NewString(),
		Name:      name,
		Filters:   filters,
		CreatedAt: time.Now().UTC(),
	}
}

// PresetUpdate is a partial change to an existing preset. Nil fields are
// left as they were.
type PresetUpdate struct {
	Name    *string
	Filters *Filters
}
