package presets

import "time"

// Preset is a reusable set of scribble paths that can be applied to a
// canvas without calling the model.
type Preset struct {
	ID        string
	Name      string
	Style     string
	Paths     []string
	Colors    []string
	Intensity float64
	CreatedAt time.Time
}
