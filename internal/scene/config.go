// Package scene loads the declarative scene description: dimensions,
// lighting defaults, the texel budget, and the initial walls and sources.
package scene

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"

	"chosenoffset.com/umbra/internal/geometry"
	"chosenoffset.com/umbra/internal/shadows"
	"chosenoffset.com/umbra/internal/wall"
)

// WallConfig describes one wall in the scene file.
type WallConfig struct {
	A           [2]float64 `json:"a"`
	B           [2]float64 `json:"b"`
	Bottom      float64    `json:"bottom"`
	Top         float64    `json:"top"`          // omit for an unbounded wall
	Unbounded   bool       `json:"unbounded"`    // top extends to infinity
	BlocksLight bool       `json:"blocks_light"`
	BlocksSight bool       `json:"blocks_sight"`
	BlocksSound bool       `json:"blocks_sound"`
	Door        bool       `json:"door"` // doors start closed
}

// SourceConfig describes one source in the scene file.
type SourceConfig struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"` // "light", "vision", "sound", "global-light"
	Position  [2]float64 `json:"position"`
	Radius    float64    `json:"radius"`
	Elevation float64    `json:"elevation"`
	Intensity float64    `json:"intensity"`
	Color     string     `json:"color"` // hex "RRGGBB", optional
}

// Config is the parsed scene file.
type Config struct {
	Name           string         `json:"name"`
	Width          float64        `json:"width"`
	Height         float64        `json:"height"`
	AmbientLight   float64        `json:"ambient_light"`
	MaxTexelBudget int            `json:"max_texel_budget"`
	Walls          []WallConfig   `json:"walls"`
	Sources        []SourceConfig `json:"sources"`
}

// Load reads and validates a scene configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config %s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse scene config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config %s: %w", path, err)
	}
	return &config, nil
}

// Validate checks the config for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid scene dimensions: %vx%v", c.Width, c.Height)
	}
	if c.MaxTexelBudget <= 0 {
		return fmt.Errorf("max_texel_budget must be positive, got %d", c.MaxTexelBudget)
	}
	if c.AmbientLight < 0 || c.AmbientLight > 1 {
		return fmt.Errorf("ambient_light must be in [0, 1], got %v", c.AmbientLight)
	}
	for i, s := range c.Sources {
		if s.ID == "" {
			return fmt.Errorf("source %d has no id", i)
		}
		if _, err := parseKind(s.Kind); err != nil {
			return fmt.Errorf("source %s: %w", s.ID, err)
		}
		if s.Kind != "global-light" && s.Radius <= 0 {
			return fmt.Errorf("source %s: radius must be positive, got %v", s.ID, s.Radius)
		}
	}
	return nil
}

// Bounds returns the scene rectangle.
func (c *Config) Bounds() geometry.Rect {
	return geometry.Rect{MinX: 0, MinY: 0, MaxX: c.Width, MaxY: c.Height}
}

// BuildWalls creates the configured walls in the store, returning their
// assigned IDs in config order.
func (c *Config) BuildWalls(store *wall.Store) ([]int64, error) {
	ids := make([]int64, 0, len(c.Walls))
	for i, wc := range c.Walls {
		top := wc.Top
		if wc.Unbounded {
			top = math.Inf(1)
		}
		door := wall.DoorNone
		if wc.Door {
			door = wall.DoorClosed
		}
		id, err := store.Create(
			geometry.Point{X: wc.A[0], Y: wc.A[1]},
			geometry.Point{X: wc.B[0], Y: wc.B[1]},
			wc.Bottom, top,
			wall.BlockFlags{Light: wc.BlocksLight, Sight: wc.BlocksSight, Sound: wc.BlocksSound},
			door,
		)
		if err != nil {
			return ids, fmt.Errorf("wall %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LightColor parses the source's optional hex color. Missing or
// malformed values fall back to a warm torch tint.
func (sc *SourceConfig) LightColor() color.NRGBA {
	if len(sc.Color) == 6 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(sc.Color, "%02x%02x%02x", &r, &g, &b); err == nil {
			return color.NRGBA{R: r, G: g, B: b, A: 255}
		}
	}
	return color.NRGBA{R: 255, G: 220, B: 160, A: 255}
}

// BuildSources converts the configured sources to source values.
func (c *Config) BuildSources() ([]*shadows.Source, error) {
	sources := make([]*shadows.Source, 0, len(c.Sources))
	for _, sc := range c.Sources {
		kind, err := parseKind(sc.Kind)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.ID, err)
		}
		sources = append(sources, &shadows.Source{
			ID:        sc.ID,
			X:         sc.Position[0],
			Y:         sc.Position[1],
			Radius:    sc.Radius,
			Elevation: sc.Elevation,
			Kind:      kind,
		})
	}
	return sources, nil
}

func parseKind(s string) (shadows.SourceKind, error) {
	switch s {
	case "light":
		return shadows.KindLight, nil
	case "vision":
		return shadows.KindVision, nil
	case "sound":
		return shadows.KindSound, nil
	case "global-light":
		return shadows.KindGlobalLight, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}
