package keyframe

import "sort"

// Sample is one captured pointer position. X and Y are normalized to
// [0, 1]; timestamps are source-relative milliseconds. The capture
// collaborator produces samples once, in ascending timestamp order.
type Sample struct {
	TimestampMs int64
	X, Y        float64
}

// ClickEvent is one captured pointer press, in the same coordinate space
// and clock as Sample.
type ClickEvent struct {
	TimestampMs int64
	X, Y        float64
}

// Track converts the captured sample list into a continuously queryable
// position function. It is immutable after construction and shared freely
// between a preview and an export session; all per-session lookup state
// lives in the caller's QueryCache.
type Track struct {
	samples []Sample
	clicks  []ClickEvent
}

// NewTrack builds a track from ascending samples and clicks. The slices are
// retained, not copied.
func NewTrack(samples []Sample, clicks []ClickEvent) *Track {
	return &Track{samples: samples, clicks: clicks}
}

// Empty reports whether the track has no position samples.
func (tr *Track) Empty() bool {
	return len(tr.samples) == 0
}

// Len returns the number of position samples.
func (tr *Track) Len() int {
	return len(tr.samples)
}

// QueryCache carries the last bracket index between sequential queries.
// Its zero value is ready to use. One cache per playback or export session;
// caches are never shared.
type QueryCache struct {
	idx int
}

// Query returns the interpolated cursor position at tMs milliseconds.
// ok is false when the track has no samples.
//
// The common case during playback and export is a timestamp still inside
// the previously used bracket, answered in O(1). Anything else falls back
// to a binary search over the ascending sample list. Before the first
// sample and after the last the boundary sample is returned unchanged, and
// a zero-width bracket (duplicate timestamps) returns the bracket's own
// value rather than dividing by zero.
func (tr *Track) Query(tMs float64, c *QueryCache) (x, y float64, ok bool) {
	n := len(tr.samples)
	if n == 0 {
		return 0, 0, false
	}
	if tMs <= float64(tr.samples[0].TimestampMs) {
		c.idx = 0
		return tr.samples[0].X, tr.samples[0].Y, true
	}
	if tMs >= float64(tr.samples[n-1].TimestampMs) {
		c.idx = n - 1
		return tr.samples[n-1].X, tr.samples[n-1].Y, true
	}

	i := c.idx
	if i < 0 || i >= n-1 || !tr.bracketContains(i, tMs) {
		// sort.Search finds the first sample past tMs; the bracket starts
		// one before it.
		i = sort.Search(n, func(j int) bool {
			return float64(tr.samples[j].TimestampMs) > tMs
		}) - 1
		if i < 0 {
			i = 0
		}
		if i > n-2 {
			i = n - 2
		}
		c.idx = i
	}

	a, b := tr.samples[i], tr.samples[i+1]
	span := float64(b.TimestampMs - a.TimestampMs)
	if span <= 0 {
		return a.X, a.Y, true
	}
	f := (tMs - float64(a.TimestampMs)) / span
	return a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f, true
}

// bracketContains reports whether tMs lies inside the bracket [i, i+1].
func (tr *Track) bracketContains(i int, tMs float64) bool {
	return float64(tr.samples[i].TimestampMs) <= tMs &&
		tMs <= float64(tr.samples[i+1].TimestampMs)
}

// ClicksIn returns the clicks with fromMs < timestamp <= toMs, in order.
// The click-ripple renderer asks for the short window trailing the current
// frame time.
func (tr *Track) ClicksIn(fromMs, toMs float64) []ClickEvent {
	lo := sort.Search(len(tr.clicks), func(j int) bool {
		return float64(tr.clicks[j].TimestampMs) > fromMs
	})
	hi := sort.Search(len(tr.clicks), func(j int) bool {
		return float64(tr.clicks[j].TimestampMs) > toMs
	})
	return tr.clicks[lo:hi]
}
