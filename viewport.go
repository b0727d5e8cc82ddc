package keyframe

import "math"

// ViewportState is the carried pan center during zoom, normalized to the
// source frame. One instance per active session, reset to the frame center
// whenever no zoom effect is active.
type ViewportState struct {
	X, Y float64
	// LastEffectID tracks which zoom effect the viewport currently serves,
	// so the next zoom starts cleanly from its own configured target.
	LastEffectID string
}

// NewViewportState returns a viewport centered on the frame.
func NewViewportState() ViewportState {
	return ViewportState{X: 0.5, Y: 0.5}
}

// reset recenters the viewport and clears the tracked effect.
func (v *ViewportState) reset() {
	v.X, v.Y = 0.5, 0.5
	v.LastEffectID = ""
}

// Smart-pan tuning. The inner margin defines the dead zone as a fraction of
// the visible extent; the gain scales how fast the viewport chases a cursor
// that has left it.
const (
	panInnerMargin = 0.15
	panGain        = 0.08
)

// smartPan advances the viewport center one frame toward the cursor.
//
// The visible half-extent at scale s is 0.5/s. While the cursor stays
// inside the inner dead zone nothing moves; once it crosses, the center
// moves proportionally to how far past the dead zone it is, each axis
// independently. The result is clamped so the visible window never leaves
// [0, 1] on either axis. Runs only during the hold phase; anticipation and
// release pin the viewport to the effect's configured target.
func smartPan(v *ViewportState, scale, cx, cy float64) {
	if scale <= 1 {
		return
	}
	halfExtent := 0.5 / scale
	innerHalf := halfExtent * (1 - 2*panInnerMargin)

	relX := cx - v.X
	relY := cy - v.Y
	if math.Abs(relX) > innerHalf {
		v.X += sign(relX) * panGain * (math.Abs(relX) - innerHalf) * 2
	}
	if math.Abs(relY) > innerHalf {
		v.Y += sign(relY) * panGain * (math.Abs(relY) - innerHalf) * 2
	}

	v.X = clamp(v.X, halfExtent, 1-halfExtent)
	v.Y = clamp(v.Y, halfExtent, 1-halfExtent)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
