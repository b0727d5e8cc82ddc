package keyframe

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidRange reports a rejected time range (start >= end, or outside
// the source duration).
var ErrInvalidRange = errors.New("keyframe: invalid time range")

// ErrTrimLocked reports a trim mutation attempted while an export walk is
// running.
var ErrTrimLocked = errors.New("keyframe: trim range is locked during export")

// LanePolicy controls where newly added effects are placed.
type LanePolicy uint8

const (
	// LaneSingle forces every new effect into lane 0. This is the editor's
	// shipped behavior; different effect kinds still end up temporally
	// separated because lane 0 is overlap-free.
	LaneSingle LanePolicy = iota
	// LaneFree places new effects into the lane requested by the caller.
	LaneFree
)

// TrimRange bounds the portion of the source that playback and export
// cover. 0 <= Start < End <= source duration.
type TrimRange struct {
	Start, End float64
}

// Timeline owns the effect list, the current selection, and the trim range
// for one editing session. It resolves all time and lane placement so that
// no two effects in a lane ever overlap; the frame-state computer can rely
// on that without re-checking.
//
// A Timeline is not safe for concurrent use. The editor mutates it from a
// single goroutine, and the export walker only reads a pre-filtered
// snapshot of its effects.
type Timeline struct {
	effects  []*Effect
	selected string
	trim     TrimRange
	duration float64
	policy   LanePolicy

	trimLocked bool
	drag       *dragSnapshot
}

// dragSnapshot preserves an effect's placement so an invalid drag can be
// reverted on release.
type dragSnapshot struct {
	id         string
	start, end float64
	lane       int
}

// NewTimeline creates an empty timeline over a source of the given duration
// in seconds. The trim range starts as the full source.
func NewTimeline(sourceDuration float64) *Timeline {
	return &Timeline{
		trim:     TrimRange{Start: 0, End: sourceDuration},
		duration: sourceDuration,
	}
}

// SetLanePolicy switches between single-lane and free lane placement.
func (tl *Timeline) SetLanePolicy(p LanePolicy) {
	tl.policy = p
}

// Duration returns the source duration in seconds.
func (tl *Timeline) Duration() float64 {
	return tl.duration
}

// Effects returns the effect list in creation order. The returned slice
// MUST NOT be mutated.
func (tl *Timeline) Effects() []*Effect {
	return tl.effects
}

// Effect returns the effect with the given id, or nil.
func (tl *Timeline) Effect(id string) *Effect {
	for _, e := range tl.effects {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Selected returns the currently selected effect, or nil.
func (tl *Timeline) Selected() *Effect {
	return tl.Effect(tl.selected)
}

// Select marks the effect with the given id as selected.
func (tl *Timeline) Select(id string) {
	if tl.Effect(id) != nil {
		tl.selected = id
	}
}

// AddEffect creates an effect of the given kind at the current play time,
// places it into a free slot, appends it, and selects it.
//
// The desired range is [at, at+defaultDuration). Under LaneSingle the
// target lane is 0; under LaneFree it is the lane passed via AddEffectLane.
// If the desired range overlaps an existing effect in the target lane, the
// new effect snaps to start exactly at the end of the last effect in that
// lane instead. The placement is then kept inside the source: when the
// snap or a late requested time leaves less than a full default duration
// before the source end, the effect is shortened to the free tail of the
// lane. A lane whose tail has no room at all returns nil.
func (tl *Timeline) AddEffect(kind EffectKind, at float64) *Effect {
	return tl.AddEffectLane(kind, at, 0)
}

// AddEffectLane is AddEffect with an explicit target lane, honored only
// under LaneFree.
func (tl *Timeline) AddEffectLane(kind EffectKind, at float64, lane int) *Effect {
	if tl.policy == LaneSingle {
		lane = 0
	}
	e := newEffect(kind, at)
	e.Lane = lane

	if blocked, last := tl.laneBlocked(lane, e.Start, e.End, ""); blocked {
		d := e.Duration()
		e.Start = last
		e.End = last + d
	}

	// Keep the placement inside the source. Shifting back may land on an
	// occupied stretch, in which case the effect shortens to the free tail
	// of the lane.
	if e.End > tl.duration {
		e.Start -= e.End - tl.duration
		e.End = tl.duration
		if e.Start < 0 {
			e.Start = 0
		}
		if blocked, last := tl.laneBlocked(lane, e.Start, e.End, ""); blocked {
			e.Start = last
		}
	}
	if e.Start >= e.End {
		return nil
	}

	tl.effects = append(tl.effects, e)
	tl.selected = e.ID
	return e
}

// laneBlocked reports whether [start, end) overlaps any effect in the lane
// (excluding the effect with id skip), and returns the end time of the last
// effect in that lane.
func (tl *Timeline) laneBlocked(lane int, start, end float64, skip string) (bool, float64) {
	blocked := false
	last := 0.0
	for _, o := range tl.effects {
		if o.Lane != lane || o.ID == skip {
			continue
		}
		if overlaps(start, end, o.Start, o.End) {
			blocked = true
		}
		if o.End > last {
			last = o.End
		}
	}
	return blocked, last
}

// RemoveEffect deletes the effect with the given id and reports whether it
// existed. Lanes are compacted afterwards.
func (tl *Timeline) RemoveEffect(id string) bool {
	for i, e := range tl.effects {
		if e.ID == id {
			tl.effects = append(tl.effects[:i], tl.effects[i+1:]...)
			if tl.selected == id {
				tl.selected = ""
			}
			tl.compactLanes()
			return true
		}
	}
	return false
}

// BeginDrag snapshots an effect's placement so DragTo/DragResize can move
// it freely and EndDrag can revert if the release position is invalid.
func (tl *Timeline) BeginDrag(id string) error {
	e := tl.Effect(id)
	if e == nil {
		return fmt.Errorf("keyframe: no effect %q", id)
	}
	tl.drag = &dragSnapshot{id: id, start: e.Start, end: e.End, lane: e.Lane}
	return nil
}

// DragTo moves the effect to a new start time, preserving its duration.
// No overlap resolution happens while the drag is in progress; the effect
// follows the pointer for responsiveness and is resolved on EndDrag.
func (tl *Timeline) DragTo(id string, newStart float64) {
	e := tl.Effect(id)
	if e == nil {
		return
	}
	d := e.Duration()
	e.Start = newStart
	e.End = newStart + d
}

// DragResize updates both edge times unconstrained while a resize drag is
// in progress.
func (tl *Timeline) DragResize(id string, newStart, newEnd float64) {
	e := tl.Effect(id)
	if e == nil {
		return
	}
	e.Start = newStart
	e.End = newEnd
}

// EndDrag resolves the dragged effect against the destination lane and
// ends the drag session.
//
// If the released range overlaps an effect in the destination lane, the
// dragged effect snaps to whichever side of that effect its midpoint is
// closer to: snap-before sets End = other.Start and Start = End − duration;
// snap-after sets Start = other.End and End = Start + duration. When the
// midpoints are exactly equidistant it snaps after. The result is clamped
// into [0, duration]; if the release still violates Start < End, or the
// clamp pushed it back onto an occupied stretch of the lane, the drag
// reverts to its pre-drag placement. Lanes are compacted afterwards.
func (tl *Timeline) EndDrag(id string, lane int) {
	e := tl.Effect(id)
	snap := tl.drag
	tl.drag = nil
	if e == nil {
		return
	}
	e.Lane = lane

	d := e.Duration()
	if other := tl.firstOverlap(e); other != nil {
		if e.midpoint() < other.midpoint() {
			e.End = other.Start
			e.Start = e.End - d
		} else {
			e.Start = other.End
			e.End = e.Start + d
		}
	}

	// Keep the effect inside the source.
	if e.Start < 0 {
		e.End -= e.Start
		e.Start = 0
	}
	if e.End > tl.duration {
		e.Start -= e.End - tl.duration
		e.End = tl.duration
	}

	if snap != nil && snap.id == id && (e.Start >= e.End || tl.firstOverlap(e) != nil) {
		e.Start, e.End, e.Lane = snap.start, snap.end, snap.lane
	}

	tl.compactLanes()
}

// firstOverlap returns the first effect in e's lane whose range overlaps
// e's range, or nil.
func (tl *Timeline) firstOverlap(e *Effect) *Effect {
	for _, o := range tl.effects {
		if o.ID == e.ID || o.Lane != e.Lane {
			continue
		}
		if overlaps(e.Start, e.End, o.Start, o.End) {
			return o
		}
	}
	return nil
}

// compactLanes renumbers the lanes actually in use to consecutive integers
// starting at 0, preserving relative order.
func (tl *Timeline) compactLanes() {
	used := map[int]bool{}
	for _, e := range tl.effects {
		used[e.Lane] = true
	}
	lanes := make([]int, 0, len(used))
	for l := range used {
		lanes = append(lanes, l)
	}
	sort.Ints(lanes)
	remap := make(map[int]int, len(lanes))
	for i, l := range lanes {
		remap[l] = i
	}
	for _, e := range tl.effects {
		e.Lane = remap[e.Lane]
	}
}

// SetTrim updates the trim range. The range must satisfy
// 0 <= start < end <= source duration, and the trim must not be locked by a
// running export.
func (tl *Timeline) SetTrim(start, end float64) error {
	if tl.trimLocked {
		return ErrTrimLocked
	}
	if start < 0 || start >= end || end > tl.duration {
		return fmt.Errorf("%w: trim [%v, %v) over %vs source", ErrInvalidRange, start, end, tl.duration)
	}
	tl.trim = TrimRange{Start: start, End: end}
	return nil
}

// Trim returns the current trim range.
func (tl *Timeline) Trim() TrimRange {
	return tl.trim
}

// LockTrim freezes the trim range for the duration of an export walk.
// Unlock with UnlockTrim once the walk ends.
func (tl *Timeline) LockTrim() {
	tl.trimLocked = true
}

// UnlockTrim releases a trim lock.
func (tl *Timeline) UnlockTrim() {
	tl.trimLocked = false
}

// EffectsInRange returns the effects whose half-open range overlaps
// [start, end), in list order. The export walker uses this to pre-filter
// the effect list for a trimmed walk.
func (tl *Timeline) EffectsInRange(start, end float64) []*Effect {
	var out []*Effect
	for _, e := range tl.effects {
		if overlaps(e.Start, e.End, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks the two timeline invariants: every effect has
// Start < End, and no two effects sharing a lane overlap under the
// half-open rule.
func (tl *Timeline) Validate() error {
	for _, e := range tl.effects {
		if e.Start >= e.End {
			return fmt.Errorf("%w: effect %s [%v, %v)", ErrInvalidRange, e.ID, e.Start, e.End)
		}
	}
	for i, a := range tl.effects {
		for _, b := range tl.effects[i+1:] {
			if a.Lane == b.Lane && overlaps(a.Start, a.End, b.Start, b.End) {
				return fmt.Errorf("keyframe: effects %s and %s overlap in lane %d", a.ID, b.ID, a.Lane)
			}
		}
	}
	return nil
}
