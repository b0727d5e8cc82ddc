package keyframe

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FrameProvider returns the decoded frame to show at time t, or nil when
// no frame is available yet. The decoder is an external collaborator; the
// preview loop never blocks on it.
type FrameProvider func(t float64) *ebiten.Image

// Player drives the frame-state computation once per display tick and
// renders on-screen. It owns its carried session; exactly one preview
// instance is active at a time, so Update and Draw run without locking on
// the shared display goroutine.
//
// Wire it into an ebiten game loop:
//
//	func (g *Game) Update() error        { g.player.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.player.Draw(s) }
type Player struct {
	timeline *Timeline
	frames   FrameProvider
	comp     *StateComputer
	session  *Session
	renderer *Renderer

	Canvas CanvasSettings
	HUD    bool

	playhead float64
	playing  bool
	seek     *gween.Tween
}

// NewPlayer creates a preview player over a timeline, cursor track, and
// frame provider. The session starts at the trim start, paused.
func NewPlayer(tl *Timeline, track *Track, frames FrameProvider, canvas CanvasSettings, cursor CursorSettings) *Player {
	return &Player{
		timeline: tl,
		frames:   frames,
		comp:     NewStateComputer(tl.Effects(), track, cursor),
		session:  NewSession(),
		renderer: NewScreenRenderer(),
		Canvas:   canvas,
		playhead: tl.Trim().Start,
	}
}

// Playhead returns the current play time in seconds.
func (p *Player) Playhead() float64 {
	return p.playhead
}

// Playing reports whether the playhead is advancing.
func (p *Player) Playing() bool {
	return p.playing
}

// Play starts or resumes playback. Starting from the trim end rewinds to
// the trim start and begins a fresh session.
func (p *Player) Play() {
	trim := p.timeline.Trim()
	if p.playhead >= trim.End {
		p.playhead = trim.Start
		p.session.Reset()
	}
	p.playing = true
}

// Pause halts playback without moving the playhead.
func (p *Player) Pause() {
	p.playing = false
}

// Stop pauses and rewinds to the trim start with a fresh session.
func (p *Player) Stop() {
	p.playing = false
	p.seek = nil
	p.playhead = p.timeline.Trim().Start
	p.session.Reset()
}

// SeekTo jumps the playhead to t. The carried state restarts there, since
// viewport and cursor smoothing are only meaningful along a continuous
// run.
func (p *Player) SeekTo(t float64) {
	trim := p.timeline.Trim()
	p.playhead = clamp(t, trim.Start, trim.End)
	p.seek = nil
	p.session.Reset()
}

// AnimateTo glides the playhead to t over the given duration in seconds.
// Useful for click-to-scrub in the timeline UI.
func (p *Player) AnimateTo(t float64, duration float64) {
	trim := p.timeline.Trim()
	t = clamp(t, trim.Start, trim.End)
	p.seek = gween.New(float32(p.playhead), float32(t), float32(duration), ease.OutQuad)
}

// Update advances the playhead one tick. Call once per ebiten update.
// Playback speed honors active slow-motion effects. Reaching the trim end
// pauses the player there.
func (p *Player) Update() {
	dt := 1.0 / float64(ebiten.TPS())

	// Track timeline edits made since the last tick.
	p.comp.Effects = p.timeline.Effects()

	if p.seek != nil {
		val, done := p.seek.Update(float32(dt))
		p.playhead = float64(val)
		if done {
			p.seek = nil
			p.session.Reset()
		}
		return
	}

	if !p.playing {
		return
	}

	p.playhead += dt * p.comp.SpeedAt(p.playhead)
	if trim := p.timeline.Trim(); p.playhead >= trim.End {
		p.playhead = trim.End
		p.playing = false
	}
}

// Draw renders the current instant onto the screen. Call once per ebiten
// draw. No suspension happens here; a missing frame just leaves the
// background.
func (p *Player) Draw(screen *ebiten.Image) {
	frame := p.frames(p.playhead)
	if frame == nil {
		screen.Fill(p.Canvas.Background.toRGBA())
		return
	}

	fs := p.comp.StateAt(p.playhead, p.session)
	p.renderer.Draw(screen, frame, fs, p.Canvas, p.comp.Cursor)

	if p.HUD {
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"t: %6.2fs  scale: %.2f  fps: %.1f", p.playhead, fs.Scale, ebiten.ActualFPS()))
	}
}

// Dispose releases the player's render resources.
func (p *Player) Dispose() {
	p.renderer.Dispose()
}
