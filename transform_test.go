package keyframe

import "testing"

func identityState() FrameState {
	return FrameState{Scale: 1, ViewportX: 0.5, ViewportY: 0.5, CursorScale: 1}
}

func TestGeometryCenteredWithPadding(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.Padding = 5
	g := ComputeDrawGeometry(identityState(), canvas, DefaultCursorSettings(), 1920, 1080, 1920, 1080)

	if !approxEqual(g.Width, 1728, epsilon) || !approxEqual(g.Height, 972, epsilon) {
		t.Errorf("draw size = %v x %v, want 1728 x 972", g.Width, g.Height)
	}
	if !approxEqual(g.X, 96, epsilon) || !approxEqual(g.Y, 54, epsilon) {
		t.Errorf("draw origin = (%v, %v), want centered (96, 54)", g.X, g.Y)
	}
	if !approxEqual(g.EffectiveScale, 0.9, epsilon) {
		t.Errorf("EffectiveScale = %v, want 0.9", g.EffectiveScale)
	}
}

func TestGeometryAspectFit(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.Padding = 0

	// Wide source into a square destination: width-limited.
	g := ComputeDrawGeometry(identityState(), canvas, DefaultCursorSettings(), 1920, 1080, 1000, 1000)
	if !approxEqual(g.Width, 1000, epsilon) {
		t.Errorf("wide source width = %v, want 1000", g.Width)
	}
	wantH := 1080.0 / 1920.0 * 1000
	if !approxEqual(g.Height, wantH, epsilon) {
		t.Errorf("wide source height = %v, want %v", g.Height, wantH)
	}
	if g.X != 0 || !approxEqual(g.Y, (1000-wantH)/2, epsilon) {
		t.Errorf("wide source origin = (%v, %v), want letterboxed", g.X, g.Y)
	}

	// Tall source: height-limited.
	g = ComputeDrawGeometry(identityState(), canvas, DefaultCursorSettings(), 1080, 1920, 1000, 1000)
	if !approxEqual(g.Height, 1000, epsilon) {
		t.Errorf("tall source height = %v, want 1000", g.Height)
	}
}

func TestGeometryZoomPansTowardViewport(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.Padding = 0
	cursor := DefaultCursorSettings()

	fs := identityState()
	fs.Scale = 2
	fs.ViewportX = 0.75

	g := ComputeDrawGeometry(fs, canvas, cursor, 1920, 1080, 1920, 1080)
	if !approxEqual(g.Width, 3840, epsilon) {
		t.Errorf("zoomed width = %v, want 3840", g.Width)
	}
	// Pan offset shifts left to bring the right-side viewport into frame:
	// (0.5 - 0.75) * (2 - 1) * 1920 = -480 on top of the centered -960.
	if !approxEqual(g.X, -960-480, epsilon) {
		t.Errorf("g.X = %v, want -1440", g.X)
	}
	if !approxEqual(g.Y, -540, epsilon) {
		t.Errorf("g.Y = %v, want centered -540", g.Y)
	}

	// A centered viewport produces no pan at any scale.
	fs.ViewportX = 0.5
	g = ComputeDrawGeometry(fs, canvas, cursor, 1920, 1080, 1920, 1080)
	if !approxEqual(g.X, -960, epsilon) {
		t.Errorf("centered viewport g.X = %v, want -960", g.X)
	}
}

func TestGeometryCursorTracksClip(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.Padding = 5
	cursor := DefaultCursorSettings()

	fs := identityState()
	fs.Scale = 1.5
	fs.ViewportX = 0.6
	fs.ViewportY = 0.4
	fs.CursorVisible = true
	fs.CursorX = 0.25
	fs.CursorY = 0.8
	fs.CursorScale = 1.3

	g := ComputeDrawGeometry(fs, canvas, cursor, 1920, 1080, 1280, 720)
	if !approxEqual(g.CursorX, g.X+0.25*g.Width, epsilon) {
		t.Errorf("CursorX = %v, want %v on the drawn clip", g.CursorX, g.X+0.25*g.Width)
	}
	if !approxEqual(g.CursorY, g.Y+0.8*g.Height, epsilon) {
		t.Errorf("CursorY = %v, want %v on the drawn clip", g.CursorY, g.Y+0.8*g.Height)
	}
	if !approxEqual(g.CursorSize, cursor.Size*1.3, epsilon) {
		t.Errorf("CursorSize = %v, want %v", g.CursorSize, cursor.Size*1.3)
	}

	fs.CursorVisible = false
	g = ComputeDrawGeometry(fs, canvas, cursor, 1920, 1080, 1280, 720)
	if g.CursorSize != 0 {
		t.Errorf("hidden cursor CursorSize = %v, want 0", g.CursorSize)
	}
}

func TestGeometryCornerRadiusScalesWithZoom(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.CornerRadius = 12

	fs := identityState()
	fs.Scale = 2
	g := ComputeDrawGeometry(fs, canvas, DefaultCursorSettings(), 1920, 1080, 1920, 1080)
	if !approxEqual(g.CornerRadius, 24, epsilon) {
		t.Errorf("CornerRadius = %v, want 24", g.CornerRadius)
	}
}

func TestGeometryExcessPaddingCollapses(t *testing.T) {
	canvas := DefaultCanvasSettings()
	canvas.Padding = 60
	g := ComputeDrawGeometry(identityState(), canvas, DefaultCursorSettings(), 1920, 1080, 1920, 1080)
	if g.Width != 0 || g.Height != 0 {
		t.Errorf("draw size = %v x %v, want collapsed to zero", g.Width, g.Height)
	}
}

func TestGeometryDeterministicAcrossSessions(t *testing.T) {
	// Two independent runs over the same inputs produce identical geometry
	// at every step. Preview and export share this path.
	z := zoomAt(1, 4, 2.5)
	track := NewTrack([]Sample{
		{TimestampMs: 0, X: 0.1, Y: 0.1},
		{TimestampMs: 5000, X: 0.9, Y: 0.9},
	}, nil)
	comp := NewStateComputer([]*Effect{z}, track, DefaultCursorSettings())
	canvas := DefaultCanvasSettings()
	cursor := DefaultCursorSettings()

	s1, s2 := NewSession(), NewSession()
	for i := 0; i <= 150; i++ {
		tt := float64(i) / 30
		g1 := ComputeDrawGeometry(comp.StateAt(tt, s1), canvas, cursor, 1920, 1080, 1280, 720)
		g2 := ComputeDrawGeometry(comp.StateAt(tt, s2), canvas, cursor, 1920, 1080, 1280, 720)
		if g1 != g2 {
			t.Fatalf("t=%v: sessions diverged:\n%+v\n%+v", tt, g1, g2)
		}
	}
}

func TestRipplePointMapsLikeCursor(t *testing.T) {
	g := DrawGeometry{X: 100, Y: 50, Width: 800, Height: 600}
	x, y := ripplePoint(g, Ripple{X: 0.5, Y: 0.25})
	if x != 500 || y != 200 {
		t.Errorf("ripple point = (%v, %v), want (500, 200)", x, y)
	}
}
