package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/marrowlabs/keyframe"
)

// Project is the TOML description of one export job: the raw capture, its
// geometry, the effect timeline, cursor data, and render settings. The
// engine itself keeps all of this as transient session state; the project
// file belongs to the CLI layer only.
type Project struct {
	// Source is a raw RGBA frame file (width×height×4 bytes per frame)
	// as produced by the capture collaborator or an ffmpeg rawvideo pass.
	Source    string  `toml:"source"`
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	SourceFPS int     `toml:"source_fps"`
	Duration  float64 `toml:"duration"`

	Trim    *TrimSection    `toml:"trim"`
	Effects []EffectSection `toml:"effect"`
	Samples []SampleSection `toml:"sample"`
	Clicks  []ClickSection  `toml:"click"`
	Canvas  *CanvasSection  `toml:"canvas"`
	Pointer *PointerSection `toml:"pointer"`
	Export  *ExportSection  `toml:"export"`
}

// TrimSection bounds playback and export.
type TrimSection struct {
	Start float64 `toml:"start"`
	End   float64 `toml:"end"`
}

// EffectSection is one timed effect.
type EffectSection struct {
	Kind  string  `toml:"kind"`
	Start float64 `toml:"start"`
	End   float64 `toml:"end"`
	Lane  int     `toml:"lane"`

	// Zoom fields. The target coordinates are pointers so an explicit
	// corner target of 0 still reads as set; omitted values keep the
	// centered default.
	Scale  float64  `toml:"scale"`
	X      *float64 `toml:"x"`
	Y      *float64 `toml:"y"`
	Easing string   `toml:"easing"`

	// Blur field.
	Intensity float64 `toml:"intensity"`

	// Slowmo field.
	Speed float64 `toml:"speed"`
}

// SampleSection is one captured cursor position.
type SampleSection struct {
	T int64   `toml:"t"`
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// ClickSection is one captured click.
type ClickSection struct {
	T int64   `toml:"t"`
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// CanvasSection mirrors keyframe.CanvasSettings.
type CanvasSection struct {
	Background   string  `toml:"background"`
	CornerRadius float64 `toml:"corner_radius"`
	Padding      float64 `toml:"padding"`
	ClickRipple  *bool   `toml:"click_ripple"`
}

// PointerSection mirrors keyframe.CursorSettings.
type PointerSection struct {
	Visible       *bool   `toml:"visible"`
	Style         string  `toml:"style"`
	Size          float64 `toml:"size"`
	Color         string  `toml:"color"`
	Smoothing     float64 `toml:"smoothing"`
	VelocityScale *bool   `toml:"velocity_scale"`
	ClickRipple   *bool   `toml:"click_ripple"`
}

// ExportSection mirrors keyframe.ExportSettings.
type ExportSection struct {
	Resolution string `toml:"resolution"`
	FPS        int    `toml:"fps"`
	Format     string `toml:"format"`
	Quality    int    `toml:"quality"`
}

// LoadProject reads and validates a project file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if p.Source == "" {
		return nil, fmt.Errorf("project %s: missing source", path)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("project %s: invalid dimensions %dx%d", path, p.Width, p.Height)
	}
	if p.SourceFPS <= 0 {
		return nil, fmt.Errorf("project %s: invalid source_fps %d", path, p.SourceFPS)
	}
	if p.Duration <= 0 {
		return nil, fmt.Errorf("project %s: invalid duration %v", path, p.Duration)
	}
	return &p, nil
}

// BuildTimeline assembles the engine timeline from the project's trim and
// effect sections.
func (p *Project) BuildTimeline() (*keyframe.Timeline, error) {
	tl := keyframe.NewTimeline(p.Duration)
	tl.SetLanePolicy(keyframe.LaneFree)
	for i, es := range p.Effects {
		kind, err := keyframe.ParseEffectKind(es.Kind)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		e := tl.AddEffectLane(kind, es.Start, es.Lane)
		if e == nil {
			return nil, fmt.Errorf("effect %d: no room in lane %d at %vs", i, es.Lane, es.Start)
		}
		if err := tl.BeginDrag(e.ID); err != nil {
			return nil, err
		}
		tl.DragResize(e.ID, es.Start, es.End)
		tl.EndDrag(e.ID, es.Lane)
		if e.Start >= e.End {
			return nil, fmt.Errorf("effect %d: %s range [%v, %v) is empty", i, es.Kind, es.Start, es.End)
		}

		switch kind {
		case keyframe.EffectZoom:
			preset, err := keyframe.ParseEasingPreset(es.Easing)
			if err != nil {
				return nil, fmt.Errorf("effect %d: %w", i, err)
			}
			if es.Scale > 0 {
				e.Zoom.Scale = es.Scale
			}
			if es.X != nil {
				e.Zoom.X = *es.X
			}
			if es.Y != nil {
				e.Zoom.Y = *es.Y
			}
			e.Zoom.Easing = preset
		case keyframe.EffectBlur:
			if es.Intensity > 0 {
				e.Blur.Intensity = es.Intensity
			}
		case keyframe.EffectSlowmo:
			if es.Speed > 0 {
				e.Slowmo.Speed = es.Speed
			}
		}
	}
	if p.Trim != nil {
		if err := tl.SetTrim(p.Trim.Start, p.Trim.End); err != nil {
			return nil, err
		}
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	return tl, nil
}

// BuildTrack assembles the cursor track from the sample and click sections.
func (p *Project) BuildTrack() *keyframe.Track {
	samples := make([]keyframe.Sample, len(p.Samples))
	for i, s := range p.Samples {
		samples[i] = keyframe.Sample{TimestampMs: s.T, X: s.X, Y: s.Y}
	}
	clicks := make([]keyframe.ClickEvent, len(p.Clicks))
	for i, c := range p.Clicks {
		clicks[i] = keyframe.ClickEvent{TimestampMs: c.T, X: c.X, Y: c.Y}
	}
	return keyframe.NewTrack(samples, clicks)
}

// CanvasSettings resolves the canvas section over the engine defaults.
func (p *Project) CanvasSettings() (keyframe.CanvasSettings, error) {
	cs := keyframe.DefaultCanvasSettings()
	if p.Canvas == nil {
		return cs, nil
	}
	if p.Canvas.Background != "" {
		c, err := parseHexColor(p.Canvas.Background)
		if err != nil {
			return cs, err
		}
		cs.Background = c
	}
	if p.Canvas.CornerRadius > 0 {
		cs.CornerRadius = p.Canvas.CornerRadius
	}
	if p.Canvas.Padding > 0 {
		cs.Padding = p.Canvas.Padding
	}
	if p.Canvas.ClickRipple != nil {
		cs.ClickRipple = *p.Canvas.ClickRipple
	}
	return cs, nil
}

// CursorSettings resolves the pointer section over the engine defaults.
func (p *Project) CursorSettings() (keyframe.CursorSettings, error) {
	cs := keyframe.DefaultCursorSettings()
	if p.Pointer == nil {
		return cs, nil
	}
	if p.Pointer.Visible != nil {
		cs.Visible = *p.Pointer.Visible
	}
	if p.Pointer.Style != "" {
		style, err := keyframe.ParseCursorStyle(p.Pointer.Style)
		if err != nil {
			return cs, err
		}
		cs.Style = style
	}
	if p.Pointer.Size > 0 {
		cs.Size = p.Pointer.Size
	}
	if p.Pointer.Color != "" {
		c, err := parseHexColor(p.Pointer.Color)
		if err != nil {
			return cs, err
		}
		cs.Color = c
	}
	if p.Pointer.Smoothing > 0 {
		cs.Smoothing = p.Pointer.Smoothing
	}
	if p.Pointer.VelocityScale != nil {
		cs.VelocityScale = *p.Pointer.VelocityScale
	}
	if p.Pointer.ClickRipple != nil {
		cs.ClickRipple = *p.Pointer.ClickRipple
	}
	return cs, nil
}

// ExportSettings resolves the export section over the engine defaults.
func (p *Project) ExportSettings() keyframe.ExportSettings {
	es := keyframe.DefaultExportSettings()
	if p.Export == nil {
		return es
	}
	if p.Export.Resolution != "" {
		es.Resolution = keyframe.Resolution(p.Export.Resolution)
	}
	if p.Export.FPS > 0 {
		es.FPS = p.Export.FPS
	}
	if p.Export.Format != "" {
		es.Format = p.Export.Format
	}
	if p.Export.Quality > 0 {
		es.Quality = p.Export.Quality
	}
	return es
}

// parseHexColor parses "#rrggbb" or "#rrggbbaa".
func parseHexColor(s string) (keyframe.Color, error) {
	if len(s) == 0 || s[0] != '#' || (len(s) != 7 && len(s) != 9) {
		return keyframe.Color{}, fmt.Errorf("invalid color %q, want #rrggbb or #rrggbbaa", s)
	}
	var r, g, b uint8
	a := uint8(255)
	var err error
	if len(s) == 7 {
		_, err = fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b)
	} else {
		_, err = fmt.Sscanf(s[1:], "%02x%02x%02x%02x", &r, &g, &b, &a)
	}
	if err != nil {
		return keyframe.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return keyframe.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}
