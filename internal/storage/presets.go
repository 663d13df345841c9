package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/model"
)

// presetsKey is the fixed storage key holding the JSON-encoded preset
// array. The layout mirrors the web client's browser storage: one key, one
// array, no schema version field.
const presetsKey = "filter_presets"

// KeyValueStore is the durable backing the preset store writes through.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// PresetStore manages named filter presets. Construct one and inject it
// wherever presets are consumed; every instance over the same backing sees
// the same data.
//
// SavePreset is accept-anything: it does not enforce name uniqueness.
// Callers that need unique names consult NameExists first.
type PresetStore struct {
	kv KeyValueStore
}

// NewPresetStore creates a preset store over the given backing.
func NewPresetStore(kv KeyValueStore) *PresetStore {
	return &PresetStore{kv: kv}
}

// Presets returns the current materialized preset list in insertion order.
//
// Two storage quirks are deliberately preserved from the reference client:
// unreadable stored content degrades to an empty list without erroring,
// and a stored literal "null" surfaces as a nil list rather than being
// coerced to empty.
func (p *PresetStore) Presets(ctx context.Context) ([]model.FilterPreset, error) {
	return p.load(ctx)
}

// SavePreset appends a new preset with a fresh id and creation timestamp,
// persists the full list, and returns the created record.
func (p *PresetStore) SavePreset(ctx context.Context, name string, filters model.Filters) (*model.FilterPreset, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	presets, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	preset := model.NewFilterPreset(name, filters)
	presets = append(presets, preset)

	if err := p.persist(ctx, presets); err != nil {
		return nil, err
	}

	slog.Debug("saved filter preset", "id", preset.ID, "name", preset.Name)
	return &preset, nil
}

// DeletePreset removes the preset with the given id. Deleting an unknown
// id is a no-op.
func (p *PresetStore) DeletePreset(ctx context.Context, id string) error {
	presets, err := p.load(ctx)
	if err != nil {
		return err
	}

	remaining := make([]model.FilterPreset, 0, len(presets))
	for _, preset := range presets {
		if preset.ID != id {
			remaining = append(remaining, preset)
		}
	}

	return p.persist(ctx, remaining)
}

// UpdatePreset shallow-merges a partial update into the preset matching
// id, leaving all other records untouched. Updating an unknown id is a
// no-op.
func (p *PresetStore) UpdatePreset(ctx context.Context, id string, update model.PresetUpdate) error {
	presets, err := p.load(ctx)
	if err != nil {
		return err
	}

	changed := false
	for i := range presets {
		if presets[i].ID != id {
			continue
		}
		if update.Name != nil {
			presets[i].Name = *update.Name
		}
		if update.Filters != nil {
			presets[i].Filters = *update.Filters
		}
		changed = true
		break
	}

	if !changed {
		return nil
	}

	return p.persist(ctx, presets)
}

// GetPreset returns the preset with the given id, or nil if none exists.
func (p *PresetStore) GetPreset(ctx context.Context, id string) (*model.FilterPreset, error) {
	presets, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range presets {
		if presets[i].ID == id {
			return &presets[i], nil
		}
	}
	return nil, nil
}

// NameExists reports whether any stored preset has the given name,
// compared case-insensitively. An optional excludeID skips one record,
// used when renaming a preset to check collisions against the others.
func (p *PresetStore) NameExists(ctx context.Context, name string, excludeID ...string) (bool, error) {
	presets, err := p.load(ctx)
	if err != nil {
		return false, err
	}

	exclude := ""
	if len(excludeID) > 0 {
		exclude = excludeID[0]
	}

	for _, preset := range presets {
		if preset.ID == exclude {
			continue
		}
		if strings.EqualFold(preset.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (p *PresetStore) load(ctx context.Context) ([]model.FilterPreset, error) {
	raw, ok, err := p.kv.Get(ctx, presetsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.FilterPreset{}, nil
	}

	// A persisted literal "null" deserializes to null and stays null.
	if strings.TrimSpace(raw) == "null" {
		return nil, nil
	}

	var presets []model.FilterPreset
	if err := json.Unmarshal([]byte(raw), &presets); err != nil {
		slog.Warn("stored presets are unreadable, degrading to empty list", "error", err)
		return []model.FilterPreset{}, nil
	}
	if presets == nil {
		presets = []model.FilterPreset{}
	}
	return presets, nil
}

func (p *PresetStore) persist(ctx context.Context, presets []model.FilterPreset) error {
	data, err := json.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	return p.kv.Set(ctx, presetsKey, string(data))
}
