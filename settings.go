package keyframe

import "fmt"

// CursorStyle selects the rendered cursor glyph.
type CursorStyle uint8

const (
	CursorPointer CursorStyle = iota // arrow-like triangle glyph
	CursorDot                        // filled circle
)

// ParseCursorStyle converts a style name back to a CursorStyle.
func ParseCursorStyle(s string) (CursorStyle, error) {
	switch s {
	case "pointer", "":
		return CursorPointer, nil
	case "dot":
		return CursorDot, nil
	default:
		return 0, fmt.Errorf("keyframe: unknown cursor style %q", s)
	}
}

// CursorSettings controls how the captured cursor is displayed. The same
// settings drive preview and export.
type CursorSettings struct {
	// Visible toggles the cursor glyph entirely.
	Visible bool
	// Style selects the glyph shape.
	Style CursorStyle
	// Size is the glyph size in destination pixels at scale 1.
	Size float64
	// Color tints the glyph.
	Color Color
	// Smoothing is the exponential follow factor in (0, 1]; 1 snaps the
	// rendered cursor to the raw sample, lower values trail it.
	Smoothing float64
	// VelocityScale grows the glyph with cursor speed.
	VelocityScale bool
	// ClickRipple emits an expanding ring at each captured click.
	ClickRipple bool
}

// DefaultCursorSettings returns the editor defaults.
func DefaultCursorSettings() CursorSettings {
	return CursorSettings{
		Visible:       true,
		Style:         CursorPointer,
		Size:          18,
		Color:         ColorWhite,
		Smoothing:     0.3,
		VelocityScale: true,
		ClickRipple:   true,
	}
}

// CanvasSettings controls the framing of the source clip on the canvas.
type CanvasSettings struct {
	// Background fills the canvas outside the clip.
	Background Color
	// CornerRadius rounds the clip corners, in destination pixels at
	// scale 1. The effective radius scales with the zoom.
	CornerRadius float64
	// Padding shrinks the clip inside the canvas, as a percentage of the
	// destination size per side.
	Padding float64
	// ClickRipple gates ripple rendering on the canvas regardless of the
	// cursor settings.
	ClickRipple bool
}

// DefaultCanvasSettings returns the editor defaults.
func DefaultCanvasSettings() CanvasSettings {
	return CanvasSettings{
		Background:   Color{0.08, 0.08, 0.1, 1},
		CornerRadius: 12,
		Padding:      5,
		ClickRipple:  true,
	}
}

// Resolution is an export resolution preset.
type Resolution string

const (
	ResolutionOriginal Resolution = "original"
	Resolution4K       Resolution = "4k"
	Resolution1080p    Resolution = "1080p"
	Resolution720p     Resolution = "720p"
)

// Dimensions resolves the preset against the source size. Presets fix the
// output height and keep the source aspect ratio, rounded to even pixel
// counts for the encoder's sake.
func (r Resolution) Dimensions(srcW, srcH int) (int, int) {
	var h int
	switch r {
	case Resolution4K:
		h = 2160
	case Resolution1080p:
		h = 1080
	case Resolution720p:
		h = 720
	default:
		return srcW, srcH
	}
	if srcH == 0 {
		return srcW, srcH
	}
	w := int(float64(srcW) * float64(h) / float64(srcH))
	if w%2 == 1 {
		w++
	}
	return w, h
}

// ExportSettings bundles the encoder-facing configuration. Format and
// Quality are passed through to the external encoder, not interpreted
// here.
type ExportSettings struct {
	Resolution Resolution
	FPS        int
	Format     string
	Quality    int
}

// DefaultExportSettings returns the editor defaults.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Resolution: Resolution1080p,
		FPS:        30,
		Format:     "mp4",
		Quality:    80,
	}
}
