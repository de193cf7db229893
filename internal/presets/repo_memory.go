package presets

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of PresetsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Preset
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Preset)}
}

// Create stores a preset.
func (r *MemoryRepo) Create(ctx context.Context, preset Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[preset.ID] = preset
	return nil
}

// GetByID returns a preset by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, presetID string) (Preset, error) {
	if err := ctx.Err(); err != nil {
		return Preset{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	preset, ok := r.data[presetID]
	if !ok {
		return Preset{}, ErrNotFound
	}
	return preset, nil
}

// List returns presets, optionally filtered by style, sorted by name.
func (r *MemoryRepo) List(ctx context.Context, style string) ([]Preset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Preset, 0)
	for _, preset := range r.data {
		if style == "" || preset.Style == style {
			out = append(out, preset)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ PresetsRepo = (*MemoryRepo)(nil)
