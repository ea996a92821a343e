// Package lighting bridges the shadow caches to the lighting shader:
// ambient level, per-light uniform packing, and the global shading mode
// that decides whether shadow textures are sampled at all.
package lighting

import (
	"image/color"

	"chosenoffset.com/umbra/internal/shadows"
)

// ShadingMode selects the global shading algorithm.
type ShadingMode int

const (
	// ModeFlat applies ambient and per-light attenuation only; shadow
	// textures are never sampled.
	ModeFlat ShadingMode = iota
	// ModeAdaptive additionally darkens shadowed areas from the
	// per-source shadow textures.
	ModeAdaptive
)

// String returns a human-readable name for the shading mode.
func (m ShadingMode) String() string {
	switch m {
	case ModeFlat:
		return "flat"
	case ModeAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// MaxLights is the size of the uniform arrays in the lighting shader.
const MaxLights = 32

// Light pairs a cached source with its photometric properties for the
// shader.
type Light struct {
	Source    *shadows.Source
	Intensity float64
	Color     color.NRGBA
}

// Manager holds the scene's lighting state.
type Manager struct {
	mode    ShadingMode
	ambient float64
	lights  map[string]Light
	order   []string
}

// NewManager creates a lighting manager with flat shading and a dim
// ambient level.
func NewManager() *Manager {
	return &Manager{
		mode:    ModeFlat,
		ambient: 0.15,
		lights:  make(map[string]Light),
	}
}

// SetMode sets the global shading mode.
func (m *Manager) SetMode(mode ShadingMode) {
	m.mode = mode
}

// Mode returns the current shading mode.
func (m *Manager) Mode() ShadingMode {
	return m.mode
}

// SetAmbientLight sets the global ambient light level (0 = pitch black,
// 1 = fully lit).
func (m *Manager) SetAmbientLight(level float64) {
	m.ambient = level
}

// AmbientLight returns the current ambient light level.
func (m *Manager) AmbientLight() float64 {
	return m.ambient
}

// AddLight registers a light keyed by its source ID.
func (m *Manager) AddLight(l Light) {
	if _, exists := m.lights[l.Source.ID]; !exists {
		m.order = append(m.order, l.Source.ID)
	}
	m.lights[l.Source.ID] = l
}

// RemoveLight removes a light by source ID.
func (m *Manager) RemoveLight(id string) {
	if _, exists := m.lights[id]; !exists {
		return
	}
	delete(m.lights, id)
	for i, lid := range m.order {
		if lid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Lights returns all registered lights in registration order.
func (m *Manager) Lights() []Light {
	lights := make([]Light, 0, len(m.order))
	for _, id := range m.order {
		lights = append(lights, m.lights[id])
	}
	return lights
}

// ShadowSamplingActive reports whether the lighting shader should sample
// the given cache's shadow texture under the current shading mode. Only
// the adaptive mode consumes shadow textures; every other mode skips them
// at zero cost.
func (m *Manager) ShadowSamplingActive(cache *shadows.SourceCache) bool {
	if m.mode != ModeAdaptive {
		return false
	}
	return cache != nil && cache.SamplingActive()
}

// PackUniforms flattens the light list into the uniform arrays the
// lighting shader declares. Lights beyond MaxLights are dropped.
func (m *Manager) PackUniforms() map[string]interface{} {
	var positions [MaxLights * 2]float32
	var properties [MaxLights * 4]float32
	var colors [MaxLights * 3]float32

	lights := m.Lights()
	n := len(lights)
	if n > MaxLights {
		n = MaxLights
	}

	for i := 0; i < n; i++ {
		l := lights[i]
		positions[i*2] = float32(l.Source.X)
		positions[i*2+1] = float32(l.Source.Y)
		properties[i*4] = float32(l.Source.Radius)
		properties[i*4+1] = float32(l.Intensity)
		properties[i*4+2] = float32(l.Source.Elevation)
		properties[i*4+3] = 1.0
		colors[i*3] = float32(l.Color.R) / 255.0
		colors[i*3+1] = float32(l.Color.G) / 255.0
		colors[i*3+2] = float32(l.Color.B) / 255.0
	}

	return map[string]interface{}{
		"NumLights":       float32(n),
		"AmbientLight":    float32(m.ambient),
		"LightPositions":  positions[:],
		"LightProperties": properties[:],
		"LightColors":     colors[:],
	}
}
