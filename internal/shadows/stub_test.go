package shadows

import (
	"image"
	"image/color"

	"chosenoffset.com/umbra/internal/render"
)

// stubRenderer implements render.Renderer for tests, recording
// allocations and draw calls instead of touching a GPU.
type stubRenderer struct {
	maxSize   int
	allocated []*stubImage
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{maxSize: 8192}
}

func (r *stubRenderer) NewImage(width, height int) render.Image {
	img := &stubImage{w: width, h: height}
	r.allocated = append(r.allocated, img)
	return img
}

func (r *stubRenderer) MaxImageSize() int { return r.maxSize }

func (r *stubRenderer) FillCircle(render.Image, float32, float32, float32, color.Color) {}
func (r *stubRenderer) StrokeCircle(render.Image, float32, float32, float32, float32, color.Color) {
}
func (r *stubRenderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
}
func (r *stubRenderer) DrawText(render.Image, string, int, int) {}

func (r *stubRenderer) CompileShader([]byte) (render.Shader, error) {
	return stubShader{}, nil
}

type stubShader struct{}

func (stubShader) Dispose() {}

// drawCall records one DrawTriangles invocation.
type drawCall struct {
	vertices []render.Vertex
	indices  []uint16
}

// stubImage records the draw calls since the last Clear, which is what
// the idempotency and minimal-invalidation assertions compare.
type stubImage struct {
	w, h     int
	clears   int
	disposed int
	draws    []drawCall
}

func (i *stubImage) Bounds() image.Rectangle { return image.Rect(0, 0, i.w, i.h) }
func (i *stubImage) Size() (int, int)        { return i.w, i.h }
func (i *stubImage) Fill(color.Color)        {}

func (i *stubImage) Clear() {
	i.clears++
	i.draws = nil
}

func (i *stubImage) DrawImage(render.Image, *render.DrawImageOptions) {}

func (i *stubImage) DrawTriangles(vertices []render.Vertex, indices []uint16, img render.Image, opts *render.DrawTrianglesOptions) {
	call := drawCall{
		vertices: append([]render.Vertex(nil), vertices...),
		indices:  append([]uint16(nil), indices...),
	}
	i.draws = append(i.draws, call)
}

func (i *stubImage) DrawRectShader(int, int, render.Shader, *render.DrawRectShaderOptions) {}

func (i *stubImage) Dispose() { i.disposed++ }

// drawsEqual compares two recorded draw sequences exactly.
func drawsEqual(a, b []drawCall) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].vertices) != len(b[i].vertices) || len(a[i].indices) != len(b[i].indices) {
			return false
		}
		for j := range a[i].vertices {
			if a[i].vertices[j] != b[i].vertices[j] {
				return false
			}
		}
		for j := range a[i].indices {
			if a[i].indices[j] != b[i].indices[j] {
				return false
			}
		}
	}
	return true
}
