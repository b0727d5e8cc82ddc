package keyframe

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
)

// EffectKind distinguishes the timed effect variants.
type EffectKind uint8

const (
	EffectZoom   EffectKind = iota // scale toward a target point with eased in/out
	EffectBlur                     // full-frame blur at a fixed intensity
	EffectSlowmo                   // playback speed factor over the window
)

// String returns the kind name used in project files and log output.
func (k EffectKind) String() string {
	switch k {
	case EffectZoom:
		return "zoom"
	case EffectBlur:
		return "blur"
	case EffectSlowmo:
		return "slowmo"
	default:
		return "unknown"
	}
}

// ParseEffectKind converts a kind name back to an EffectKind.
func ParseEffectKind(s string) (EffectKind, error) {
	switch s {
	case "zoom":
		return EffectZoom, nil
	case "blur":
		return EffectBlur, nil
	case "slowmo":
		return EffectSlowmo, nil
	default:
		return 0, fmt.Errorf("keyframe: unknown effect kind %q", s)
	}
}

// EasingPreset selects the easing window of a zoom effect. The preset
// determines the duration D of the anticipation and release phases; the
// ramp shape itself is [Smoothstep] unless the payload carries a custom
// curve.
type EasingPreset uint8

const (
	EaseSmooth EasingPreset = iota // 0.35s, the editor default
	EaseQuick                      // 0.20s, snappy cuts
	EaseSlow                       // 0.60s, cinematic drift
)

// Duration returns the anticipation/release phase length in seconds.
func (p EasingPreset) Duration() float64 {
	switch p {
	case EaseQuick:
		return 0.20
	case EaseSlow:
		return 0.60
	default:
		return 0.35
	}
}

// ParseEasingPreset converts a preset name back to an EasingPreset.
func ParseEasingPreset(s string) (EasingPreset, error) {
	switch s {
	case "smooth", "":
		return EaseSmooth, nil
	case "quick":
		return EaseQuick, nil
	case "slow":
		return EaseSlow, nil
	default:
		return 0, fmt.Errorf("keyframe: unknown easing preset %q", s)
	}
}

// ZoomPayload holds the zoom-specific effect parameters.
type ZoomPayload struct {
	// Scale is the target zoom factor during the hold phase (>= 1).
	Scale float64
	// X and Y are the configured zoom target, normalized to [0, 1].
	X, Y float64
	// Easing selects the anticipation/release duration.
	Easing EasingPreset
	// Curve, when non-nil, replaces Smoothstep as the ramp shape. The
	// easing duration still comes from the preset.
	Curve ease.TweenFunc
}

// BlurPayload holds the blur-specific effect parameters.
type BlurPayload struct {
	// Intensity is the blur strength in source pixels.
	Intensity float64
}

// SlowmoPayload holds the slow-motion-specific effect parameters.
type SlowmoPayload struct {
	// Speed is the playback speed factor over the window (0.5 = half speed).
	Speed float64
}

// Effect is one timed effect on the timeline: shared timing fields plus a
// kind-specific payload. Exactly one of Zoom, Blur, and Slowmo is non-nil,
// matching Kind. Times are in seconds relative to the source.
//
// Invariant: Start < End. Within one lane no two effects' half-open ranges
// [Start, End) overlap; the Timeline enforces both at every mutation.
type Effect struct {
	ID    string
	Kind  EffectKind
	Start float64
	End   float64
	Lane  int

	Zoom   *ZoomPayload
	Blur   *BlurPayload
	Slowmo *SlowmoPayload
}

// Default durations per kind, in seconds.
const (
	defaultZoomDuration   = 3.0
	defaultBlurDuration   = 2.0
	defaultSlowmoDuration = 2.0
)

func defaultDuration(kind EffectKind) float64 {
	switch kind {
	case EffectBlur:
		return defaultBlurDuration
	case EffectSlowmo:
		return defaultSlowmoDuration
	default:
		return defaultZoomDuration
	}
}

// newEffect creates an effect of the given kind at the given start time with
// the kind's default duration and payload.
func newEffect(kind EffectKind, at float64) *Effect {
	e := &Effect{
		ID:    uuid.NewString(),
		Kind:  kind,
		Start: at,
		End:   at + defaultDuration(kind),
	}
	switch kind {
	case EffectZoom:
		e.Zoom = &ZoomPayload{Scale: 2.0, X: 0.5, Y: 0.5, Easing: EaseSmooth}
	case EffectBlur:
		e.Blur = &BlurPayload{Intensity: 8}
	case EffectSlowmo:
		e.Slowmo = &SlowmoPayload{Speed: 0.5}
	}
	return e
}

// Duration returns End − Start in seconds.
func (e *Effect) Duration() float64 {
	return e.End - e.Start
}

// midpoint is the temporal center of the effect window.
func (e *Effect) midpoint() float64 {
	return (e.Start + e.End) / 2
}

// easingDuration returns the anticipation/release phase length for zoom
// effects, and 0 for every other kind. The preset length is clamped to the
// effect window so a zoom shorter than its preset still eases continuously,
// ramping fully up by Start and back down across the whole window.
func (e *Effect) easingDuration() float64 {
	if e.Kind == EffectZoom && e.Zoom != nil {
		d := e.Zoom.Easing.Duration()
		if w := e.End - e.Start; w < d {
			return w
		}
		return d
	}
	return 0
}

// ramp evaluates the zoom easing shape at progress x in [0, 1].
func (e *Effect) ramp(x float64) float64 {
	if e.Zoom != nil && e.Zoom.Curve != nil {
		return float64(e.Zoom.Curve(float32(clamp01(x)), 0, 1, 1))
	}
	return Smoothstep(x)
}

// overlaps reports whether the half-open ranges [s1, e1) and [s2, e2)
// intersect.
func overlaps(s1, e1, s2, e2 float64) bool {
	return s1 < e2 && e1 > s2
}
