package keyframe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrSeekFailed reports that the frame source could not reach a requested
// time. The wrapping error carries the failing frame index and time.
var ErrSeekFailed = errors.New("keyframe: seek failed")

// ErrExportCanceled reports a walk stopped by context cancellation. No
// frame is emitted after cancellation; the source is left paused.
var ErrExportCanceled = errors.New("keyframe: export canceled")

// FrameSource is the export walker's view of the decoded video. The
// decoder itself is an external collaborator.
type FrameSource interface {
	// Pause halts playback-side frame delivery. Walk pauses the source
	// before the first seek and never resumes it.
	Pause()
	// SeekTo positions the source exactly at t seconds and returns once
	// the frame at t is available. No frame may be read before it returns.
	SeekTo(ctx context.Context, t float64) error
	// Frame returns the most recently sought frame.
	Frame() *ebiten.Image
}

// ExportFrame is one rasterized frame handed to the caller's sink.
type ExportFrame struct {
	// RGB is the packed pixel buffer: width×height×3 bytes, row-major,
	// top to bottom, alpha dropped. The buffer is reused for the next
	// frame once the sink returns; sinks that retain it must copy.
	RGB []byte
	// Index is the zero-based output frame number.
	Index int
	// SourceTime is the source-relative time the frame was sampled at.
	// It advances more slowly through slow-motion windows.
	SourceTime float64
	// PTS is the presentation timestamp for the encoder, Index/FPS.
	// Output pacing is uniform; slow motion is realized by the
	// source-time remapping, so constant-rate sinks need no timestamps.
	PTS float64
}

// FrameFunc consumes one exported frame. The walker does not proceed to
// the next frame until it returns, which bounds in-flight memory to one
// frame (backpressure). Returning an error aborts the walk.
type FrameFunc func(f ExportFrame) error

// Progress is a walk progress report, computed from measured frame
// throughput.
type Progress struct {
	Frame     int
	Total     int
	Percent   float64
	Elapsed   time.Duration
	Remaining time.Duration
}

// ProgressFunc receives a progress report every 10 frames and on the final
// frame.
type ProgressFunc func(p Progress)

// WalkConfig describes one export walk.
type WalkConfig struct {
	// Source delivers decoded frames. Required.
	Source FrameSource
	// SourceWidth and SourceHeight are the decoded frame dimensions.
	SourceWidth, SourceHeight int
	// Resolution picks the output size preset.
	Resolution Resolution
	// FPS is the output frame rate. Required, > 0.
	FPS int
	// Range is the walked time span [Start, End). When zero and Timeline
	// is set, the timeline's trim range is used.
	Range TrimRange
	// Effects is the effect list, pre-filtered to those overlapping the
	// range. When nil and Timeline is set, it is filtered from there.
	Effects []*Effect
	// Track is the cursor track; may be nil.
	Track *Track
	// Timeline, when set, locks its trim range for the duration of the
	// walk and supplies Range and Effects defaults.
	Timeline *Timeline

	Canvas CanvasSettings
	Cursor CursorSettings

	// OnFrame consumes each rasterized frame. Required.
	OnFrame FrameFunc
	// OnProgress, when set, receives periodic progress reports.
	OnProgress ProgressFunc
	// Logger, when set, logs walk lifecycle and progress.
	Logger *log.Logger

	// rasterize is the frame rasterization seam. Left nil, a Renderer at
	// the export resolution is used; tests substitute a stub to walk
	// without a GPU.
	rasterize func(frame *ebiten.Image, fs FrameState) ([]byte, error)
}

// progressInterval is how many frames pass between progress reports.
const progressInterval = 10

// Walk steps output frames across the range, remapping each output time
// to a source time, rasterizes each frame off-screen at the export
// resolution, and streams packed RGB buffers to the sink.
//
// Outside slow-motion windows the source advances one output frame
// interval per frame, landing on the exact Start+i/FPS grid. Inside a
// slow-motion window it advances by speed/FPS instead, sampling the
// source more densely, so a constant-rate encoder plays the window
// slowed just as the preview did.
//
// The walk is strictly sequential: one Session carries the viewport and
// cursor smoothing across the whole range, so the output matches what
// playback over the same span would have produced. The only suspension
// points are awaiting seek confirmation and awaiting the sink. The source
// is paused before the walk and is not resumed; cancellation stops before
// the next seek and leaves the source paused.
func Walk(ctx context.Context, cfg WalkConfig) error {
	if cfg.Source == nil || cfg.OnFrame == nil {
		return errors.New("keyframe: walk requires a source and a frame sink")
	}
	if cfg.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalidRange, cfg.FPS)
	}

	if cfg.Timeline != nil {
		cfg.Timeline.LockTrim()
		defer cfg.Timeline.UnlockTrim()
		if cfg.Range == (TrimRange{}) {
			cfg.Range = cfg.Timeline.Trim()
		}
		if cfg.Effects == nil {
			cfg.Effects = cfg.Timeline.EffectsInRange(cfg.Range.Start, cfg.Range.End)
		}
	}
	if cfg.Range.Start >= cfg.Range.End {
		return fmt.Errorf("%w: export range [%v, %v)", ErrInvalidRange, cfg.Range.Start, cfg.Range.End)
	}

	w, h := cfg.Resolution.Dimensions(cfg.SourceWidth, cfg.SourceHeight)
	raster := cfg.rasterize
	if raster == nil {
		r := NewRenderer(w, h)
		defer r.Dispose()
		buf := make([]byte, 3*w*h)
		raster = func(frame *ebiten.Image, fs FrameState) ([]byte, error) {
			r.RenderFrame(frame, fs, cfg.Canvas, cfg.Cursor)
			if err := r.ExtractRGB(buf); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}

	comp := NewStateComputer(cfg.Effects, cfg.Track, cfg.Cursor)
	sess := NewSession()

	fps := float64(cfg.FPS)
	remap := hasSlowmo(cfg.Effects)
	total := int(math.Ceil((cfg.Range.End - cfg.Range.Start) * fps))
	if remap {
		total = countRemappedFrames(comp, cfg.Range, fps)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("export walk starting",
			"frames", total, "fps", cfg.FPS, "size", fmt.Sprintf("%dx%d", w, h))
	}

	cfg.Source.Pause()
	started := time.Now()

	t := cfg.Range.Start
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w before frame %d: %v", ErrExportCanceled, i, ctx.Err())
		default:
		}

		if err := cfg.Source.SeekTo(ctx, t); err != nil {
			return fmt.Errorf("%w: frame %d at t=%.3fs: %v", ErrSeekFailed, i, t, err)
		}

		fs := comp.StateAt(t, sess)
		rgb, err := raster(cfg.Source.Frame(), fs)
		if err != nil {
			return fmt.Errorf("keyframe: rasterize frame %d: %w", i, err)
		}
		if err := cfg.OnFrame(ExportFrame{RGB: rgb, Index: i, SourceTime: t, PTS: float64(i) / fps}); err != nil {
			return fmt.Errorf("keyframe: frame sink at frame %d: %w", i, err)
		}
		if remap {
			t += comp.SpeedAt(t) / fps
		} else {
			t = cfg.Range.Start + float64(i+1)/fps
		}

		if (i+1)%progressInterval == 0 || i == total-1 {
			reportProgress(cfg, i, total, started)
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("export walk finished",
			"frames", total, "elapsed", time.Since(started).Round(time.Millisecond))
	}
	return nil
}

// hasSlowmo reports whether any effect can bend the time mapping.
func hasSlowmo(effects []*Effect) bool {
	for _, e := range effects {
		if e.Kind == EffectSlowmo && e.Slowmo != nil && e.Slowmo.Speed > 0 && e.Slowmo.Speed != 1 {
			return true
		}
	}
	return false
}

// countRemappedFrames runs the time mapping once to size the output. It
// accumulates the same increments Walk will, so the counts agree; the
// epsilon keeps accumulated float error from minting a stray frame at the
// exact range end.
func countRemappedFrames(comp *StateComputer, r TrimRange, fps float64) int {
	n := 0
	for t := r.Start; t < r.End-1e-9; t += comp.SpeedAt(t) / fps {
		n++
	}
	return n
}

// reportProgress computes the rate-based estimate and fans it out to the
// callback and the logger.
func reportProgress(cfg WalkConfig, i, total int, started time.Time) {
	done := i + 1
	elapsed := time.Since(started)
	remaining := time.Duration(0)
	if done > 0 {
		remaining = time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	}
	p := Progress{
		Frame:     i,
		Total:     total,
		Percent:   float64(done) / float64(total) * 100,
		Elapsed:   elapsed,
		Remaining: remaining,
	}
	if cfg.OnProgress != nil {
		cfg.OnProgress(p)
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("export progress",
			"frame", done, "total", total,
			"percent", fmt.Sprintf("%.1f%%", p.Percent),
			"eta", remaining.Round(time.Millisecond))
	}
}
