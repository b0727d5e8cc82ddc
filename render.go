package keyframe

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// whitePixel is a 1x1 white image used for solid-color triangle fills.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(ColorWhite.toRGBA())
}

// Renderer rasterizes one frame composition: background, the source clip
// scaled and panned per the draw geometry with rounded corners, optional
// blur, click ripples, and the cursor glyph.
//
// A Renderer owns its offscreen target and scratch images. The preview
// loop and the export walker each own one; nothing is shared between them.
type Renderer struct {
	w, h int

	target  *ebiten.Image
	blurred *ebiten.Image
	clipBuf *ebiten.Image
	blur    blurChain

	readback []byte
}

// NewRenderer creates a renderer with an offscreen target of the given
// destination size. The export walker uses this form.
func NewRenderer(w, h int) *Renderer {
	return &Renderer{
		w:      w,
		h:      h,
		target: ebiten.NewImage(w, h),
	}
}

// NewScreenRenderer creates a renderer without an owned offscreen target.
// The preview loop uses this form and draws directly onto the screen image
// passed to Draw.
func NewScreenRenderer() *Renderer {
	return &Renderer{}
}

// Size returns the destination dimensions in pixels.
func (r *Renderer) Size() (int, int) {
	return r.w, r.h
}

// Target returns the owned offscreen target.
func (r *Renderer) Target() *ebiten.Image {
	return r.target
}

// RenderFrame rasterizes the frame state into the owned offscreen target
// and returns the geometry it used.
func (r *Renderer) RenderFrame(frame *ebiten.Image, fs FrameState, canvas CanvasSettings, cursor CursorSettings) DrawGeometry {
	return r.Draw(r.target, frame, fs, canvas, cursor)
}

// Draw rasterizes the frame state onto dst. The draw geometry is computed
// here, from the same transform the caller could run independently, so
// preview and export cannot drift apart.
func (r *Renderer) Draw(dst *ebiten.Image, frame *ebiten.Image, fs FrameState, canvas CanvasSettings, cursor CursorSettings) DrawGeometry {
	db := dst.Bounds()
	fb := frame.Bounds()
	g := ComputeDrawGeometry(fs, canvas, cursor,
		float64(fb.Dx()), float64(fb.Dy()),
		float64(db.Dx()), float64(db.Dy()))

	dst.Fill(canvas.Background.toRGBA())

	src := frame
	if fs.BlurIntensity > 0 {
		if r.blurred == nil || r.blurred.Bounds() != fb {
			if r.blurred != nil {
				r.blurred.Deallocate()
			}
			r.blurred = ebiten.NewImage(fb.Dx(), fb.Dy())
		}
		r.blur.apply(frame, r.blurred, fs.BlurIntensity)
		src = r.blurred
	}

	r.drawClip(dst, src, g)

	if canvas.ClickRipple {
		r.drawRipples(dst, fs, cursor, g)
	}
	if fs.CursorVisible && cursor.Visible {
		r.drawCursor(dst, cursor, g)
	}
	return g
}

// drawClip draws the source image into the geometry rectangle with rounded
// corners. The corner mask is composited in a scratch buffer: the rounded
// silhouette first, then the clip with source-in blending so only the
// silhouette keeps pixels.
func (r *Renderer) drawClip(dst *ebiten.Image, src *ebiten.Image, g DrawGeometry) {
	if g.Width <= 0 || g.Height <= 0 {
		return
	}

	var op ebiten.DrawImageOptions
	sb := src.Bounds()
	op.GeoM.Scale(g.Width/float64(sb.Dx()), g.Height/float64(sb.Dy()))
	op.Filter = ebiten.FilterLinear

	radius := g.CornerRadius
	if radius*2 > g.Width {
		radius = g.Width / 2
	}
	if radius*2 > g.Height {
		radius = g.Height / 2
	}
	if radius <= 0 {
		op.GeoM.Translate(g.X, g.Y)
		dst.DrawImage(src, &op)
		return
	}

	db := dst.Bounds()
	if r.clipBuf == nil || r.clipBuf.Bounds() != db {
		if r.clipBuf != nil {
			r.clipBuf.Deallocate()
		}
		r.clipBuf = ebiten.NewImage(db.Dx(), db.Dy())
	}
	r.clipBuf.Clear()

	fillRoundedRect(r.clipBuf, g.X, g.Y, g.Width, g.Height, radius, ColorWhite)
	op.GeoM.Translate(g.X, g.Y)
	op.Blend = ebiten.BlendSourceIn
	r.clipBuf.DrawImage(src, &op)

	var cop ebiten.DrawImageOptions
	dst.DrawImage(r.clipBuf, &cop)
}

// fillRoundedRect composes a rounded rectangle from two rects and four
// corner circles.
func fillRoundedRect(dst *ebiten.Image, x, y, w, h, radius float64, c Color) {
	clr := c.toRGBA()
	fx, fy := float32(x), float32(y)
	fw, fh := float32(w), float32(h)
	fr := float32(radius)

	vector.DrawFilledRect(dst, fx+fr, fy, fw-2*fr, fh, clr, true)
	vector.DrawFilledRect(dst, fx, fy+fr, fw, fh-2*fr, clr, true)
	vector.DrawFilledCircle(dst, fx+fr, fy+fr, fr, clr, true)
	vector.DrawFilledCircle(dst, fx+fw-fr, fy+fr, fr, clr, true)
	vector.DrawFilledCircle(dst, fx+fr, fy+fh-fr, fr, clr, true)
	vector.DrawFilledCircle(dst, fx+fw-fr, fy+fh-fr, fr, clr, true)
}

// drawCursor renders the cursor glyph at the geometry's destination-space
// position.
func (r *Renderer) drawCursor(dst *ebiten.Image, cursor CursorSettings, g DrawGeometry) {
	if g.CursorSize <= 0 {
		return
	}
	switch cursor.Style {
	case CursorDot:
		vector.DrawFilledCircle(dst,
			float32(g.CursorX), float32(g.CursorY),
			float32(g.CursorSize/2), cursor.Color.toRGBA(), true)
	default:
		drawPointerGlyph(dst, g.CursorX, g.CursorY, g.CursorSize, cursor.Color)
	}
}

// drawPointerGlyph draws the arrow glyph as a filled triangle, tip at the
// cursor position.
func drawPointerGlyph(dst *ebiten.Image, x, y, size float64, c Color) {
	cr := float32(c.R * c.A)
	cg := float32(c.G * c.A)
	cb := float32(c.B * c.A)
	ca := float32(c.A)
	vs := []ebiten.Vertex{
		{DstX: float32(x), DstY: float32(y), SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		{DstX: float32(x + size*0.35), DstY: float32(y + size), SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		{DstX: float32(x - size*0.35), DstY: float32(y + size*0.75), SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
	}
	is := []uint16{0, 1, 2}
	dst.DrawTriangles(vs, is, whitePixel, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawRipples renders the expanding click rings. Radius grows and alpha
// fades linearly with ripple age.
func (r *Renderer) drawRipples(dst *ebiten.Image, fs FrameState, cursor CursorSettings, g DrawGeometry) {
	base := cursor.Size
	if base <= 0 {
		base = 18
	}
	for _, rp := range fs.Ripples {
		x, y := ripplePoint(g, rp)
		radius := base * (0.5 + 1.5*rp.Age) * fs.Scale
		c := cursor.Color
		c.A *= 1 - rp.Age
		vector.StrokeCircle(dst, float32(x), float32(y), float32(radius), 2, c.toRGBA(), true)
	}
}

// ExtractRGB reads the offscreen target back and packs it into buf as
// width×height×3 bytes, RGB, row-major, top to bottom, alpha dropped.
// buf must be exactly 3*w*h bytes.
func (r *Renderer) ExtractRGB(buf []byte) error {
	want := 3 * r.w * r.h
	if len(buf) != want {
		return fmt.Errorf("keyframe: RGB buffer is %d bytes, want %d", len(buf), want)
	}
	if r.readback == nil {
		r.readback = make([]byte, 4*r.w*r.h)
	}
	r.target.ReadPixels(r.readback)
	for i, j := 0, 0; i < len(r.readback); i, j = i+4, j+3 {
		buf[j] = r.readback[i]
		buf[j+1] = r.readback[i+1]
		buf[j+2] = r.readback[i+2]
	}
	return nil
}

// Dispose deallocates the renderer's images. The Renderer must not be used
// afterwards.
func (r *Renderer) Dispose() {
	if r.target != nil {
		r.target.Deallocate()
		r.target = nil
	}
	if r.blurred != nil {
		r.blurred.Deallocate()
		r.blurred = nil
	}
	if r.clipBuf != nil {
		r.clipBuf.Deallocate()
		r.clipBuf = nil
	}
	r.blur.dispose()
}
