package keyframe

import "testing"

func TestResolutionDimensions(t *testing.T) {
	cases := []struct {
		res          Resolution
		srcW, srcH   int
		wantW, wantH int
	}{
		{ResolutionOriginal, 2560, 1440, 2560, 1440},
		{Resolution1080p, 1920, 1080, 1920, 1080},
		{Resolution1080p, 3840, 2160, 1920, 1080},
		{Resolution720p, 1920, 1080, 1280, 720},
		{Resolution4K, 1920, 1080, 3840, 2160},
		// 1350x1080 scaled to 720 high gives 900 wide, already even.
		{Resolution720p, 1350, 1080, 900, 720},
		// Odd scaled width rounds up to even for the encoder.
		{Resolution720p, 1005, 1000, 724, 720},
		// Degenerate sources pass through untouched.
		{Resolution1080p, 0, 0, 0, 0},
	}
	for _, c := range cases {
		w, h := c.res.Dimensions(c.srcW, c.srcH)
		if w != c.wantW || h != c.wantH {
			t.Errorf("%s.Dimensions(%d, %d) = (%d, %d), want (%d, %d)",
				c.res, c.srcW, c.srcH, w, h, c.wantW, c.wantH)
		}
	}
}

func TestParseEffectKindRoundTrip(t *testing.T) {
	for _, k := range []EffectKind{EffectZoom, EffectBlur, EffectSlowmo} {
		got, err := ParseEffectKind(k.String())
		if err != nil {
			t.Fatalf("ParseEffectKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseEffectKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseEffectKind("sparkle"); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestParseEasingPreset(t *testing.T) {
	cases := []struct {
		in   string
		want EasingPreset
	}{
		{"smooth", EaseSmooth},
		{"", EaseSmooth},
		{"quick", EaseQuick},
		{"slow", EaseSlow},
	}
	for _, c := range cases {
		got, err := ParseEasingPreset(c.in)
		if err != nil {
			t.Fatalf("ParseEasingPreset(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseEasingPreset(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, err := ParseEasingPreset("bouncy"); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestEasingPresetDurations(t *testing.T) {
	if d := EaseSmooth.Duration(); d != 0.35 {
		t.Errorf("EaseSmooth duration = %v, want 0.35", d)
	}
	if d := EaseQuick.Duration(); d != 0.20 {
		t.Errorf("EaseQuick duration = %v, want 0.20", d)
	}
	if d := EaseSlow.Duration(); d != 0.60 {
		t.Errorf("EaseSlow duration = %v, want 0.60", d)
	}
}

func TestParseCursorStyle(t *testing.T) {
	if s, err := ParseCursorStyle("dot"); err != nil || s != CursorDot {
		t.Errorf("ParseCursorStyle(dot) = %v, %v", s, err)
	}
	if s, err := ParseCursorStyle(""); err != nil || s != CursorPointer {
		t.Errorf("empty style should default to pointer, got %v, %v", s, err)
	}
	if _, err := ParseCursorStyle("crosshair"); err == nil {
		t.Error("unknown style accepted")
	}
}

func TestEffectDefaults(t *testing.T) {
	z := newEffect(EffectZoom, 4)
	if z.Duration() != 3 || z.Zoom == nil || z.Zoom.Scale != 2 {
		t.Errorf("zoom defaults off: %+v", z)
	}
	if z.Zoom.X != 0.5 || z.Zoom.Y != 0.5 {
		t.Errorf("zoom target = (%v, %v), want frame center", z.Zoom.X, z.Zoom.Y)
	}
	b := newEffect(EffectBlur, 0)
	if b.Duration() != 2 || b.Blur == nil || b.Blur.Intensity != 8 {
		t.Errorf("blur defaults off: %+v", b)
	}
	s := newEffect(EffectSlowmo, 0)
	if s.Duration() != 2 || s.Slowmo == nil || s.Slowmo.Speed != 0.5 {
		t.Errorf("slowmo defaults off: %+v", s)
	}
	if z.ID == "" || z.ID == b.ID {
		t.Error("effect ids must be unique and non-empty")
	}
}
