package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/umbra/internal/lighting"
	"chosenoffset.com/umbra/internal/render"
)

// Draw renders the demo to the screen.
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()

	// Ensure render textures exist and are the right size
	if g.SceneTexture == nil || needsResize(g.SceneTexture, w, h) {
		if g.SceneTexture != nil {
			g.SceneTexture.Dispose()
		}
		g.SceneTexture = g.Renderer.NewImage(w, h)
	}
	if g.ShadowComposite == nil || needsResize(g.ShadowComposite, w, h) {
		if g.ShadowComposite != nil {
			g.ShadowComposite.Dispose()
		}
		g.ShadowComposite = g.Renderer.NewImage(w, h)
	}

	// Step 1: render the scene to an offscreen texture
	g.SceneTexture.Clear()
	g.SceneTexture.Fill(color.RGBA{40, 40, 48, 255})
	g.drawWalls(g.SceneTexture)
	g.drawSources(g.SceneTexture)

	// Step 2: composite the per-source shadow masks in screen space
	g.ShadowComposite.Clear()
	g.compositeShadowMasks(g.ShadowComposite)

	// Step 3: apply the lighting shader
	g.applyLightingShader(screen)

	// Step 4: overlay
	g.drawOverlay(screen)
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

func (g *Game) drawWalls(dst render.Image) {
	for _, rec := range g.Walls.Walls() {
		clr := color.RGBA{180, 180, 190, 255}
		if !rec.BlocksLight() {
			// Open doors and non-occluding walls draw dimmer.
			clr = color.RGBA{90, 90, 100, 255}
		}
		g.Renderer.StrokeLine(dst,
			float32(rec.A.X), float32(rec.A.Y),
			float32(rec.B.X), float32(rec.B.Y),
			3, clr)
	}
}

func (g *Game) drawSources(dst render.Image) {
	for _, src := range g.Sources {
		g.Renderer.FillCircle(dst, float32(src.X), float32(src.Y), 6, color.RGBA{255, 240, 180, 255})
		g.Renderer.StrokeCircle(dst, float32(src.X), float32(src.Y), float32(src.Radius), 1, color.RGBA{120, 110, 70, 255})
	}
}

// compositeShadowMasks draws every active shadow texture into one
// screen-space mask, positioned and scaled by its cache's mask geometry.
func (g *Game) compositeShadowMasks(dst render.Image) {
	for _, cache := range g.Registry.Caches() {
		if !g.Lighting.ShadowSamplingActive(cache) {
			continue
		}
		mask, ok := cache.MaskFor()
		if !ok {
			continue
		}
		opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
		opts.GeoM.Scale(mask.Scale, mask.Scale)
		opts.GeoM.Translate(mask.X, mask.Y)
		dst.DrawImage(mask.Texture, opts)
	}
}

func (g *Game) applyLightingShader(screen render.Image) {
	if g.LightingShader == nil && len(g.LightingShaderSrc) > 0 {
		shader, err := g.Renderer.CompileShader(g.LightingShaderSrc)
		if err != nil {
			// Compile once; on failure fall back to unlit output.
			g.LightingShaderSrc = nil
		} else {
			g.LightingShader = shader
		}
	}

	if g.LightingShader == nil {
		screen.DrawImage(g.SceneTexture, nil)
		return
	}

	w, h := screen.Size()
	uniforms := g.Lighting.PackUniforms()
	uniforms["ShadowsEnabled"] = shadowsEnabledUniform(g.Lighting.Mode())

	opts := &render.DrawRectShaderOptions{Uniforms: uniforms}
	opts.Images[0] = g.SceneTexture
	opts.Images[1] = g.ShadowComposite
	screen.DrawRectShader(w, h, g.LightingShader, opts)
}

// shadowsEnabledUniform is the shader-side toggle: only the adaptive
// shading mode samples the shadow composite.
func shadowsEnabledUniform(mode lighting.ShadingMode) float32 {
	if mode == lighting.ModeAdaptive {
		return 1
	}
	return 0
}

func (g *Game) drawOverlay(screen render.Image) {
	src := g.movableSource()
	if src == nil {
		return
	}
	status := fmt.Sprintf(
		"drag: move light  arrows: radius/elevation  D: doors  M: mode\nelev %.0f  radius %.0f  mode %s  caches %d",
		src.Elevation, src.Radius, g.Lighting.Mode(), g.Registry.Len(),
	)
	g.Renderer.DrawText(screen, status, 8, 8)
}
