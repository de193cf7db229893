package presets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements PresetsRepo using Postgres. Paths and colors are
// stored as JSONB arrays.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new preset.
func (r *PGRepo) Create(ctx context.Context, preset Preset) error {
	const query = `
INSERT INTO scribble_presets (id, name, style, paths, colors, intensity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	paths, err := json.Marshal(preset.Paths)
	if err != nil {
		return fmt.Errorf("marshal paths: %w", err)
	}
	colors, err := json.Marshal(preset.Colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		preset.ID,
		preset.Name,
		preset.Style,
		paths,
		colors,
		preset.Intensity,
		preset.CreatedAt,
	)
	return err
}

// GetByID returns a preset by ID.
func (r *PGRepo) GetByID(ctx context.Context, presetID string) (Preset, error) {
	const query = `
SELECT id, name, style, paths, colors, intensity, created_at
FROM scribble_presets
WHERE id = $1
LIMIT 1`

	preset, err := scanPreset(r.DB.QueryRowContext(ctx, query, presetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preset{}, ErrNotFound
		}
		return Preset{}, err
	}
	return preset, nil
}

// List returns presets, optionally filtered by style, sorted by name.
func (r *PGRepo) List(ctx context.Context, style string) ([]Preset, error) {
	query := `
SELECT id, name, style, paths, colors, intensity, created_at
FROM scribble_presets`
	args := []any{}
	if style != "" {
		query += ` WHERE style = $1`
		args = append(args, style)
	}
	query += ` ORDER BY name`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Preset, 0)
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var preset Preset
	var paths, colors []byte
	if err := row.Scan(
		&preset.ID,
		&preset.Name,
		&preset.Style,
		&paths,
		&colors,
		&preset.Intensity,
		&preset.CreatedAt,
	); err != nil {
		return Preset{}, err
	}
	if err := json.Unmarshal(paths, &preset.Paths); err != nil {
		return Preset{}, fmt.Errorf("unmarshal paths: %w", err)
	}
	if err := json.Unmarshal(colors, &preset.Colors); err != nil {
		return Preset{}, fmt.Errorf("unmarshal colors: %w", err)
	}
	return preset, nil
}

var _ PresetsRepo = (*PGRepo)(nil)
