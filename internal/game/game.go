// Package game wires the demo scene: a wall layout from the scene config,
// a mouse-driven light, a door to toggle, and the shadow cache registry
// reacting to every edit.
package game

import (
	"fmt"
	"log"

	"chosenoffset.com/umbra/internal/lighting"
	"chosenoffset.com/umbra/internal/render"
	"chosenoffset.com/umbra/internal/scene"
	"chosenoffset.com/umbra/internal/shadows"
	"chosenoffset.com/umbra/internal/wall"
)

// Game runs the interactive shadow demo.
type Game struct {
	Renderer render.Renderer
	InputMgr render.InputManager

	Config   *scene.Config
	Walls    *wall.Store
	Registry *shadows.Registry
	Lighting *lighting.Manager
	Sources  []*shadows.Source

	// Shader source (passed in from main); compiled on first draw.
	LightingShaderSrc []byte
	LightingShader    render.Shader

	SceneTexture    render.Image
	ShadowComposite render.Image

	doorIDs     []int64
	doorOpen    bool
	initialized bool
	FrameCount  int
}

// New builds the demo game from a scene config.
func New(renderer render.Renderer, input render.InputManager, cfg *scene.Config, shaderSrc []byte) (*Game, error) {
	store := wall.NewStore()
	registry := shadows.NewRegistry(renderer, store, cfg.Bounds(), cfg.MaxTexelBudget)

	wallIDs, err := cfg.BuildWalls(store)
	if err != nil {
		return nil, fmt.Errorf("failed to build walls: %w", err)
	}

	sources, err := cfg.BuildSources()
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}

	lightMgr := lighting.NewManager()
	lightMgr.SetAmbientLight(cfg.AmbientLight)
	lightMgr.SetMode(lighting.ModeAdaptive)
	for i, src := range sources {
		if src.Kind != shadows.KindLight {
			continue
		}
		sc := cfg.Sources[i]
		intensity := sc.Intensity
		if intensity <= 0 {
			intensity = 1.0
		}
		lightMgr.AddLight(lighting.Light{
			Source:    src,
			Intensity: intensity,
			Color:     sc.LightColor(),
		})
	}

	g := &Game{
		Renderer:          renderer,
		InputMgr:          input,
		Config:            cfg,
		Walls:             store,
		Registry:          registry,
		Lighting:          lightMgr,
		Sources:           sources,
		LightingShaderSrc: shaderSrc,
	}

	for i, wc := range cfg.Walls {
		if wc.Door {
			g.doorIDs = append(g.doorIDs, wallIDs[i])
		}
	}
	return g, nil
}

// Update advances the demo one tick.
func (g *Game) Update() error {
	if !g.initialized {
		// The first tick doubles as the host's shader-initialization
		// notification for every source.
		for _, src := range g.Sources {
			g.Registry.InitializeShaders(src)
		}
		g.initialized = true
		log.Printf("Shadow caches initialized for %d sources", g.Registry.Len())
	}

	g.handleInput()
	g.FrameCount++
	return nil
}

// handleInput maps demo controls to registry notifications.
func (g *Game) handleInput() {
	src := g.movableSource()
	if src == nil {
		return
	}

	if g.InputMgr.IsMouseButtonPressed(render.MouseButtonLeft) {
		x, y := g.InputMgr.GetCursorPosition()
		if float64(x) != src.X || float64(y) != src.Y {
			src.X = float64(x)
			src.Y = float64(y)
			g.Registry.SourceChanged(src, shadows.FieldPosition)
		}
	}

	if g.InputMgr.IsKeyPressed(render.KeyUp) {
		src.Elevation++
		g.Registry.SourceChanged(src, shadows.FieldElevation)
	}
	if g.InputMgr.IsKeyPressed(render.KeyDown) {
		src.Elevation--
		g.Registry.SourceChanged(src, shadows.FieldElevation)
	}

	if g.InputMgr.IsKeyPressed(render.KeyRight) {
		src.Radius += 4
		g.Registry.SourceChanged(src, shadows.FieldRadius)
	}
	if g.InputMgr.IsKeyPressed(render.KeyLeft) && src.Radius > 8 {
		src.Radius -= 4
		g.Registry.SourceChanged(src, shadows.FieldRadius)
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyD) {
		g.toggleDoors()
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyM) {
		if g.Lighting.Mode() == lighting.ModeAdaptive {
			g.Lighting.SetMode(lighting.ModeFlat)
		} else {
			g.Lighting.SetMode(lighting.ModeAdaptive)
		}
		log.Printf("Shading mode: %s", g.Lighting.Mode())
	}
}

// movableSource returns the demo's interactive light.
func (g *Game) movableSource() *shadows.Source {
	for _, src := range g.Sources {
		if src.Kind == shadows.KindLight {
			return src
		}
	}
	return nil
}

// toggleDoors flips every door wall between open and closed. The store
// emits restriction-only change events, exercising the cheap
// invalidation path.
func (g *Game) toggleDoors() {
	g.doorOpen = !g.doorOpen
	state := wall.DoorClosed
	if g.doorOpen {
		state = wall.DoorOpen
	}
	for _, id := range g.doorIDs {
		rec, ok := g.Walls.Get(id)
		if !ok {
			continue
		}
		if err := g.Walls.UpdateRestriction(id, rec.Blocks, state); err != nil {
			log.Printf("Warning: Failed to toggle door %d: %v", id, err)
		}
	}
}

// Layout implements render.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.Config.Width), int(g.Config.Height)
}
