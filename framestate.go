package keyframe

import "math"

// CursorSmoothState is the carried smoothed cursor render position. One
// instance per active session.
type CursorSmoothState struct {
	X, Y         float64
	PrevX, PrevY float64
	Velocity     float64

	seeded bool
}

// Session bundles the carried per-frame state for one playback or export
// run: the viewport pan center, the smoothed cursor, and the cursor-track
// lookup cache. Sessions are created at the start of a run and discarded at
// its end; preview and export never share one.
type Session struct {
	Viewport ViewportState
	Cursor   CursorSmoothState
	cache    QueryCache
}

// NewSession returns a fresh session with the viewport centered.
func NewSession() *Session {
	return &Session{Viewport: NewViewportState()}
}

// Reset returns the session to its initial state for a new run.
func (s *Session) Reset() {
	s.Viewport = NewViewportState()
	s.Cursor = CursorSmoothState{}
	s.cache = QueryCache{}
}

// Ripple is one derived click ripple: position in source-normalized
// coordinates and age in [0, 1] across the ripple's lifetime.
type Ripple struct {
	X, Y float64
	Age  float64
}

// FrameState is the complete computed visual description of one instant.
// It is derived, never stored, and independent of any render target.
type FrameState struct {
	Scale          float64
	ViewportX      float64
	ViewportY      float64
	CursorX        float64
	CursorY        float64
	CursorVisible  bool
	CursorScale    float64
	BlurIntensity  float64
	ActiveEffectID string
	Ripples        []Ripple
}

// Velocity filter and glyph growth tuning.
const (
	velocityFilterKeep = 0.8
	velocityFilterMix  = 0.2
	velocityGain       = 30
	velocityMaxGrowth  = 0.5
)

// rippleLifeMs is how long a click ripple stays visible.
const rippleLifeMs = 600.0

// StateComputer turns a point in time into a FrameState. It bundles the
// immutable inputs of a run: the effect list, the cursor track, and the
// cursor display settings. All carried state lives in the Session passed to
// each call, so one computer can serve a preview and an export at the same
// time as long as each brings its own session.
type StateComputer struct {
	Effects []*Effect
	Track   *Track
	Cursor  CursorSettings
}

// NewStateComputer creates a computer over the given inputs. Track may be
// nil when no cursor data was captured.
func NewStateComputer(effects []*Effect, track *Track, cursor CursorSettings) *StateComputer {
	if track == nil {
		track = NewTrack(nil, nil)
	}
	return &StateComputer{Effects: effects, Track: track, Cursor: cursor}
}

// StateAt computes the visual description of the frame at time t (seconds).
//
// Frame-state computation is strictly sequential per session: each call
// advances the session's viewport and cursor smoothing from the previous
// call's result, so callers must visit timestamps in playback order within
// one session.
func (c *StateComputer) StateAt(t float64, s *Session) FrameState {
	fs := FrameState{
		Scale:       1,
		ViewportX:   0.5,
		ViewportY:   0.5,
		CursorScale: 1,
	}

	rawX, rawY, haveCursor := c.Track.Query(t*1000, &s.cache)

	c.applyZoom(t, s, &fs, rawX, rawY, haveCursor)
	fs.BlurIntensity = c.blurAt(t)
	c.applyCursor(s, &fs, rawX, rawY, haveCursor)
	fs.Ripples = c.ripplesAt(t)

	return fs
}

// applyZoom runs the anticipation/hold/release phase machine.
//
// A zoom with window [start, end) and easing duration D is active over
// [start−D, end]. The first matching effect in list order wins. When none
// is active the viewport resets and the tracked effect id clears.
func (c *StateComputer) applyZoom(t float64, s *Session, fs *FrameState, cx, cy float64, haveCursor bool) {
	var active *Effect
	for _, e := range c.Effects {
		if e.Kind != EffectZoom || e.Zoom == nil {
			continue
		}
		d := e.easingDuration()
		if t >= e.Start-d && t <= e.End {
			active = e
			break
		}
	}

	if active == nil {
		s.Viewport.reset()
		return
	}

	zp := active.Zoom
	d := active.easingDuration()

	if s.Viewport.LastEffectID != active.ID {
		// A new zoom begins at its own configured target, regardless of
		// where the previous one left the viewport.
		s.Viewport.X, s.Viewport.Y = zp.X, zp.Y
		s.Viewport.LastEffectID = active.ID
	}

	switch {
	case t < active.Start:
		// Anticipation: ramp up, viewport pinned to the configured target.
		fs.Scale = 1 + (zp.Scale-1)*active.ramp((t-(active.Start-d))/d)
		s.Viewport.X, s.Viewport.Y = zp.X, zp.Y
	case t > active.End-d:
		// Release: ramp down, viewport pinned.
		fs.Scale = 1 + (zp.Scale-1)*active.ramp((active.End-t)/d)
		s.Viewport.X, s.Viewport.Y = zp.X, zp.Y
	default:
		// Hold: full scale, viewport follows the cursor. With no cursor
		// data the viewport stays pinned at the configured target.
		fs.Scale = zp.Scale
		if haveCursor {
			smartPan(&s.Viewport, fs.Scale, cx, cy)
		}
	}

	fs.ViewportX = s.Viewport.X
	fs.ViewportY = s.Viewport.Y
	fs.ActiveEffectID = active.ID
}

// blurAt returns the intensity of the first blur effect whose closed
// window [start, end] contains t, or 0.
func (c *StateComputer) blurAt(t float64) float64 {
	for _, e := range c.Effects {
		if e.Kind != EffectBlur || e.Blur == nil {
			continue
		}
		if t >= e.Start && t <= e.End {
			return e.Blur.Intensity
		}
	}
	return 0
}

// SpeedAt returns the playback speed factor at time t: the speed of the
// first slow-motion effect whose half-open window contains t, else 1.
func (c *StateComputer) SpeedAt(t float64) float64 {
	for _, e := range c.Effects {
		if e.Kind != EffectSlowmo || e.Slowmo == nil {
			continue
		}
		if t >= e.Start && t < e.End && e.Slowmo.Speed > 0 {
			return e.Slowmo.Speed
		}
	}
	return 1
}

// applyCursor advances the exponential smoothing and velocity filter. The
// velocity-scaled growth affects only the rendered glyph size, never the
// position.
func (c *StateComputer) applyCursor(s *Session, fs *FrameState, rawX, rawY float64, haveCursor bool) {
	if !haveCursor || !c.Cursor.Visible {
		return
	}

	sm := &s.Cursor
	if !sm.seeded {
		sm.X, sm.Y = rawX, rawY
		sm.PrevX, sm.PrevY = rawX, rawY
		sm.seeded = true
	}

	f := c.Cursor.Smoothing
	if f <= 0 || f > 1 {
		f = 1
	}
	sm.X += (rawX - sm.X) * f
	sm.Y += (rawY - sm.Y) * f

	frameVelocity := math.Hypot(sm.X-sm.PrevX, sm.Y-sm.PrevY)
	sm.Velocity = sm.Velocity*velocityFilterKeep + frameVelocity*velocityFilterMix
	sm.PrevX, sm.PrevY = sm.X, sm.Y

	fs.CursorX = sm.X
	fs.CursorY = sm.Y
	fs.CursorVisible = true
	if c.Cursor.VelocityScale {
		fs.CursorScale = 1 + math.Min(sm.Velocity*velocityGain, velocityMaxGrowth)
	}
}

// ripplesAt derives the click ripples visible at time t from the click
// events in the trailing ripple lifetime. Purely derived, no carried state.
func (c *StateComputer) ripplesAt(t float64) []Ripple {
	if !c.Cursor.ClickRipple {
		return nil
	}
	tMs := t * 1000
	clicks := c.Track.ClicksIn(tMs-rippleLifeMs, tMs)
	if len(clicks) == 0 {
		return nil
	}
	out := make([]Ripple, 0, len(clicks))
	for _, cl := range clicks {
		out = append(out, Ripple{
			X:   cl.X,
			Y:   cl.Y,
			Age: (tMs - float64(cl.TimestampMs)) / rippleLifeMs,
		})
	}
	return out
}
