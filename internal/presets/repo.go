package presets

import "context"

// PresetsRepo defines persistence operations for scribble presets.
type PresetsRepo interface {
	Create(ctx context.Context, preset Preset) error
	GetByID(ctx context.Context, presetID string) (Preset, error)
	List(ctx context.Context, style string) ([]Preset, error)
}
