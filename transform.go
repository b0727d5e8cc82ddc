package keyframe

// DrawGeometry is the concrete draw parameterization of one frame on a
// destination canvas: where the clip lands, how large, and where the cursor
// glyph sits in destination space. It is pure geometry; the rasterizer and
// any caller-side draw path consume it without further math.
type DrawGeometry struct {
	// X, Y, Width, Height is the clip's draw rectangle on the destination.
	X, Y          float64
	Width, Height float64
	// EffectiveScale is the padding-adjusted zoom factor applied to the
	// aspect-fitted clip.
	EffectiveScale float64
	// CornerRadius is the rounded-corner radius in destination pixels,
	// already scaled with the zoom.
	CornerRadius float64
	// CursorX, CursorY is the glyph center on the destination. It tracks
	// the rendered clip, not raw destination coordinates.
	CursorX, CursorY float64
	// CursorSize is the glyph size in destination pixels, velocity growth
	// included.
	CursorSize float64
}

// ComputeDrawGeometry maps a frame state onto a destination canvas.
//
// The clip is aspect-fitted to the destination, shrunk by the padding
// percentage, scaled by the frame's zoom factor, and offset so the
// viewport center pans across the source. Live preview and export both go
// through this function with identical inputs; that equality is the core
// correctness contract of the engine.
func ComputeDrawGeometry(fs FrameState, canvas CanvasSettings, cursor CursorSettings, srcW, srcH, dstW, dstH float64) DrawGeometry {
	padScale := 1 - 2*canvas.Padding/100
	if padScale < 0 {
		padScale = 0
	}

	// Aspect-fit the source into the destination.
	fit := dstW / srcW
	if dstH/srcH < fit {
		fit = dstH / srcH
	}
	baseW := srcW * fit * padScale
	baseH := srcH * fit * padScale

	drawW := baseW * fs.Scale
	drawH := baseH * fs.Scale

	panX := (0.5 - fs.ViewportX) * (fs.Scale - 1) * baseW
	panY := (0.5 - fs.ViewportY) * (fs.Scale - 1) * baseH

	x := (dstW-drawW)/2 + panX
	y := (dstH-drawH)/2 + panY

	g := DrawGeometry{
		X:              x,
		Y:              y,
		Width:          drawW,
		Height:         drawH,
		EffectiveScale: padScale * fs.Scale,
		CornerRadius:   canvas.CornerRadius * fs.Scale,
	}

	if fs.CursorVisible {
		g.CursorX = x + fs.CursorX*drawW
		g.CursorY = y + fs.CursorY*drawH
		g.CursorSize = cursor.Size * fs.CursorScale
	}
	return g
}

// ripplePoint maps a source-normalized ripple position into destination
// space using the same clip rectangle as the cursor glyph.
func ripplePoint(g DrawGeometry, r Ripple) (x, y float64) {
	return g.X + r.X*g.Width, g.Y + r.Y*g.Height
}
