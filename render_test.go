package keyframe

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestNewRendererDimensions(t *testing.T) {
	r := NewRenderer(640, 360)
	defer r.Dispose()

	w, h := r.Size()
	if w != 640 || h != 360 {
		t.Errorf("Size = %dx%d, want 640x360", w, h)
	}
	if r.Target() == nil {
		t.Error("Target() should not be nil")
	}
}

func TestNewScreenRendererHasNoTarget(t *testing.T) {
	r := NewScreenRenderer()
	defer r.Dispose()

	if r.Target() != nil {
		t.Error("screen renderer should not own a target")
	}
}

func TestExtractRGBRejectsWrongBufferSize(t *testing.T) {
	r := NewRenderer(4, 4)
	defer r.Dispose()

	if err := r.ExtractRGB(make([]byte, 10)); err == nil {
		t.Error("short buffer accepted")
	}
	if err := r.ExtractRGB(make([]byte, 4*4*4)); err == nil {
		t.Error("RGBA-sized buffer accepted, want RGB size")
	}
}

func TestDrawReturnsComputedGeometry(t *testing.T) {
	r := NewRenderer(128, 72)
	defer r.Dispose()
	frame := ebiten.NewImage(64, 36)
	defer frame.Deallocate()

	fs := identityState()
	fs.Scale = 2
	canvas := DefaultCanvasSettings()
	cursor := DefaultCursorSettings()

	got := r.RenderFrame(frame, fs, canvas, cursor)
	want := ComputeDrawGeometry(fs, canvas, cursor, 64, 36, 128, 72)
	if got != want {
		t.Errorf("geometry = %+v, want %+v", got, want)
	}
}

func TestDrawDegenerateGeometryDoesNotPanic(t *testing.T) {
	r := NewRenderer(16, 16)
	defer r.Dispose()
	frame := ebiten.NewImage(8, 8)
	defer frame.Deallocate()

	canvas := DefaultCanvasSettings()
	canvas.Padding = 60
	r.RenderFrame(frame, identityState(), canvas, DefaultCursorSettings())
}

func TestDrawWithBlurAndCursor(t *testing.T) {
	r := NewRenderer(32, 32)
	defer r.Dispose()
	frame := ebiten.NewImage(32, 32)
	defer frame.Deallocate()

	fs := identityState()
	fs.BlurIntensity = 6
	fs.CursorVisible = true
	fs.CursorX, fs.CursorY = 0.5, 0.5
	fs.Ripples = []Ripple{{X: 0.5, Y: 0.5, Age: 0.3}}

	for _, style := range []CursorStyle{CursorPointer, CursorDot} {
		cursor := DefaultCursorSettings()
		cursor.Style = style
		r.RenderFrame(frame, fs, DefaultCanvasSettings(), cursor)
	}
}
