package keyframe

import (
	"math"
	"testing"
)

func makeTrack(ts ...int64) *Track {
	samples := make([]Sample, len(ts))
	for i, t := range ts {
		// Deterministic but non-trivial positions.
		samples[i] = Sample{
			TimestampMs: t,
			X:           0.1 + 0.8*float64(i)/float64(len(ts)),
			Y:           0.9 - 0.8*float64(i)/float64(len(ts)),
		}
	}
	return NewTrack(samples, nil)
}

func TestQueryEmptyTrack(t *testing.T) {
	tr := NewTrack(nil, nil)
	var c QueryCache
	if _, _, ok := tr.Query(100, &c); ok {
		t.Error("empty track should report ok=false")
	}
}

func TestQueryClampsToBoundaries(t *testing.T) {
	tr := NewTrack([]Sample{
		{TimestampMs: 100, X: 0.2, Y: 0.3},
		{TimestampMs: 200, X: 0.8, Y: 0.7},
	}, nil)
	var c QueryCache

	x, y, ok := tr.Query(0, &c)
	if !ok || x != 0.2 || y != 0.3 {
		t.Errorf("before first sample: (%v, %v, %v), want (0.2, 0.3, true)", x, y, ok)
	}
	x, y, _ = tr.Query(500, &c)
	if x != 0.8 || y != 0.7 {
		t.Errorf("after last sample: (%v, %v), want (0.8, 0.7)", x, y)
	}
}

func TestQueryInterpolates(t *testing.T) {
	tr := NewTrack([]Sample{
		{TimestampMs: 100, X: 0.0, Y: 1.0},
		{TimestampMs: 200, X: 1.0, Y: 0.0},
	}, nil)
	var c QueryCache

	x, y, _ := tr.Query(150, &c)
	if !approxEqual(x, 0.5, epsilon) || !approxEqual(y, 0.5, epsilon) {
		t.Errorf("midpoint query = (%v, %v), want (0.5, 0.5)", x, y)
	}
	x, _, _ = tr.Query(175, &c)
	if !approxEqual(x, 0.75, epsilon) {
		t.Errorf("3/4 query x = %v, want 0.75", x)
	}
}

// bruteQuery is the reference implementation: linear scan, no cache.
func bruteQuery(samples []Sample, tMs float64) (float64, float64) {
	n := len(samples)
	if tMs <= float64(samples[0].TimestampMs) {
		return samples[0].X, samples[0].Y
	}
	if tMs >= float64(samples[n-1].TimestampMs) {
		return samples[n-1].X, samples[n-1].Y
	}
	for i := 0; i < n-1; i++ {
		a, b := samples[i], samples[i+1]
		if float64(a.TimestampMs) <= tMs && tMs <= float64(b.TimestampMs) {
			span := float64(b.TimestampMs - a.TimestampMs)
			if span <= 0 {
				return a.X, a.Y
			}
			f := (tMs - float64(a.TimestampMs)) / span
			return a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f
		}
	}
	return 0, 0
}

func TestSequentialCacheMatchesReference(t *testing.T) {
	tr := makeTrack(0, 16, 33, 50, 66, 100, 150, 151, 300, 1000, 1001, 2500)
	var c QueryCache

	// Sequential sweep, the playback/export pattern the cache serves.
	for tMs := -50.0; tMs < 2700; tMs += 7.3 {
		gx, gy, ok := tr.Query(tMs, &c)
		if !ok {
			t.Fatalf("query at %v failed", tMs)
		}
		wx, wy := bruteQuery(tr.samples, tMs)
		if !approxEqual(gx, wx, epsilon) || !approxEqual(gy, wy, epsilon) {
			t.Fatalf("t=%v: cached query = (%v, %v), reference = (%v, %v)", tMs, gx, gy, wx, wy)
		}
	}
}

func TestRandomAccessMatchesReference(t *testing.T) {
	tr := makeTrack(0, 10, 20, 40, 80, 160, 320, 640)
	var c QueryCache

	// Jumping around invalidates the bracket and exercises the binary
	// search fallback on every call.
	for _, tMs := range []float64{500, 5, 300, 15, 640, 0, 77, 333} {
		gx, gy, _ := tr.Query(tMs, &c)
		wx, wy := bruteQuery(tr.samples, tMs)
		if !approxEqual(gx, wx, epsilon) || !approxEqual(gy, wy, epsilon) {
			t.Fatalf("t=%v: cached query = (%v, %v), reference = (%v, %v)", tMs, gx, gy, wx, wy)
		}
	}
}

func TestQueryDuplicateTimestamps(t *testing.T) {
	tr := NewTrack([]Sample{
		{TimestampMs: 100, X: 0.1, Y: 0.1},
		{TimestampMs: 100, X: 0.9, Y: 0.9},
		{TimestampMs: 200, X: 0.5, Y: 0.5},
	}, nil)
	var c QueryCache

	x, y, ok := tr.Query(100, &c)
	if !ok {
		t.Fatal("query failed")
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		t.Fatal("duplicate timestamps produced NaN")
	}
	// A zero-width bracket returns its own value, either duplicate is fine.
	if !(x == 0.1 || x == 0.9) {
		t.Errorf("zero-width bracket x = %v, want a bracket sample value", x)
	}
}

func TestClicksIn(t *testing.T) {
	tr := NewTrack(nil, []ClickEvent{
		{TimestampMs: 100, X: 0.1, Y: 0.1},
		{TimestampMs: 200, X: 0.2, Y: 0.2},
		{TimestampMs: 300, X: 0.3, Y: 0.3},
	})

	got := tr.ClicksIn(100, 300)
	if len(got) != 2 || got[0].TimestampMs != 200 || got[1].TimestampMs != 300 {
		t.Errorf("ClicksIn(100, 300) = %v, want clicks at 200 and 300", got)
	}
	if got := tr.ClicksIn(300, 1000); len(got) != 0 {
		t.Errorf("ClicksIn(300, 1000) = %v, want none", got)
	}
	if got := tr.ClicksIn(-1000, 1000); len(got) != 3 {
		t.Errorf("full-window ClicksIn returned %d clicks, want 3", len(got))
	}
}
