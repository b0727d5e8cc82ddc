package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/marrowlabs/keyframe"
)

// newExportCmd creates the export command: render a project's effect
// timeline and stream raw RGB frames to a file or stdout.
func newExportCmd() *cobra.Command {
	var (
		projectPath string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a project and stream raw RGB frames",
		Long: `Export walks the project's trim range at the configured frame rate,
renders every frame with its active effects, and writes packed RGB24
frames to the output. Pipe the result into an external encoder:

  keyframe export --project demo.toml --out - |
      ffmpeg -f rawvideo -pix_fmt rgb24 -s WxH -r FPS -i - out.mp4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), projectPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project TOML file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, or - for stdout")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func runExport(ctx context.Context, projectPath, outPath string) error {
	logger := loggerFromContext(ctx)

	project, err := LoadProject(projectPath)
	if err != nil {
		return err
	}
	tl, err := project.BuildTimeline()
	if err != nil {
		return err
	}
	track := project.BuildTrack()
	canvas, err := project.CanvasSettings()
	if err != nil {
		return err
	}
	cursor, err := project.CursorSettings()
	if err != nil {
		return err
	}
	export := project.ExportSettings()

	source, err := openRawSource(project.Source, project.Width, project.Height, project.SourceFPS, project.Duration)
	if err != nil {
		return err
	}
	defer source.Close()

	var out io.Writer
	if outPath == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriterSize(out, 1<<20)

	w, h := export.Resolution.Dimensions(project.Width, project.Height)
	logger.Info("exporting", "project", projectPath, "size", fmt.Sprintf("%dx%d", w, h), "fps", export.FPS)
	elapsed := newProgress(logger)

	cfg := keyframe.WalkConfig{
		Source:       source,
		SourceWidth:  project.Width,
		SourceHeight: project.Height,
		Resolution:   export.Resolution,
		FPS:          export.FPS,
		Timeline:     tl,
		Track:        track,
		Canvas:       canvas,
		Cursor:       cursor,
		Logger:       logger,
		// The walker samples slow-motion windows more densely, so the
		// constant-rate raw stream already carries their pacing.
		OnFrame: func(f keyframe.ExportFrame) error {
			_, err := bw.Write(f.RGB)
			return err
		},
	}

	// Frame rasterization needs a live ebiten graphics context, so the
	// walk runs inside a minimal run-loop and terminates it when done.
	if err := runWalk(ctx, cfg); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	elapsed.done(fmt.Sprintf("exported %s", outPath))
	return nil
}

// walkGame hosts an export walk inside an ebiten run loop. The walk runs
// on its own goroutine, started at the first update tick; the loop
// terminates once it finishes.
type walkGame struct {
	ctx     context.Context
	cfg     keyframe.WalkConfig
	started bool
	done    chan error
	err     error
}

func (g *walkGame) Update() error {
	if !g.started {
		g.started = true
		go func() {
			g.done <- keyframe.Walk(g.ctx, g.cfg)
		}()
	}
	select {
	case g.err = <-g.done:
		return ebiten.Termination
	default:
		return nil
	}
}

func (g *walkGame) Draw(screen *ebiten.Image) {}

func (g *walkGame) Layout(_, _ int) (int, int) { return 1, 1 }

// runWalk executes the walk inside a hidden ebiten window.
func runWalk(ctx context.Context, cfg keyframe.WalkConfig) error {
	game := &walkGame{ctx: ctx, cfg: cfg, done: make(chan error, 1)}
	ebiten.SetWindowSize(320, 180)
	ebiten.SetWindowTitle("keyframe export")
	ebiten.SetTPS(ebiten.SyncWithFPS)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run export loop: %w", err)
	}
	return game.err
}

// rawSource reads pre-decoded RGBA frames from a raw capture file. Frame n
// starts at byte n×width×height×4. Seeking maps a time to the nearest
// source frame and uploads its pixels once.
type rawSource struct {
	f       *os.File
	w, h    int
	fps     int
	frames  int
	buf     []byte
	img     *ebiten.Image
	current int
}

func openRawSource(path string, w, h, fps int, duration float64) (*rawSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat source %s: %w", path, err)
	}
	stride := int64(w) * int64(h) * 4
	frames := int(st.Size() / stride)
	if frames == 0 {
		f.Close()
		return nil, fmt.Errorf("source %s holds no complete %dx%d frame", path, w, h)
	}
	if want := int(math.Ceil(duration * float64(fps))); frames > want && want > 0 {
		// Ignore trailing frames past the declared duration.
		frames = want
	}
	return &rawSource{
		f:       f,
		w:       w,
		h:       h,
		fps:     fps,
		frames:  frames,
		buf:     make([]byte, stride),
		current: -1,
	}, nil
}

// Pause is a no-op: a raw file source has no playback side to halt.
func (s *rawSource) Pause() {}

// SeekTo reads and uploads the frame covering t. Returns once the pixels
// are in place, so the walker's read-after-seek contract holds.
func (s *rawSource) SeekTo(ctx context.Context, t float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx := int(math.Round(t * float64(s.fps)))
	if idx < 0 {
		idx = 0
	}
	if idx >= s.frames {
		idx = s.frames - 1
	}
	if idx == s.current {
		return nil
	}
	stride := int64(s.w) * int64(s.h) * 4
	if _, err := s.f.ReadAt(s.buf, int64(idx)*stride); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read frame %d: %w", idx, err)
	}
	if s.img == nil {
		s.img = ebiten.NewImage(s.w, s.h)
	}
	s.img.WritePixels(s.buf)
	s.current = idx
	return nil
}

// Frame returns the most recently sought frame.
func (s *rawSource) Frame() *ebiten.Image {
	return s.img
}

// Close releases the file and the uploaded frame.
func (s *rawSource) Close() error {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	return s.f.Close()
}
