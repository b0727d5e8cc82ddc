// Package keyframe is the effect-timeline and frame-rendering engine behind
// a screen-recording editor, built on [Ebitengine].
//
// The engine owns the deterministic core of the editor: timed visual effects
// (zoom, blur, slow motion) placed on overlap-free timeline lanes, a
// continuously queryable cursor track, and the pure computation that turns a
// point in time into the exact visual description of that frame. Two
// consumers drive that computation, a live preview loop and a frame-stepped
// export walker, and both go through the same render transform, so the
// exported pixels match what the preview showed.
//
// # Building a session
//
// Create a [Timeline] from the source duration, add effects, and build a
// cursor [Track] from captured samples:
//
//	tl := keyframe.NewTimeline(12.5)
//	tl.AddEffect(keyframe.EffectZoom, 2.0)
//	track := keyframe.NewTrack(samples, clicks)
//
// A [StateComputer] bundles the immutable inputs; per-frame carried state
// lives in a [Session], one per active preview or export:
//
//	comp := keyframe.NewStateComputer(tl.Effects(), track, cursorSettings)
//	sess := keyframe.NewSession()
//	fs := comp.StateAt(3.2, sess)
//
// # Preview and export
//
// [Player] drives the computation once per display tick and draws on-screen
// through a [Renderer]. [Walk] steps fixed frame times across the trim
// range, rasterizes off-screen at export resolution, and streams packed RGB
// buffers to a caller callback with backpressure. Both call
// [ComputeDrawGeometry] with identical inputs; that shared transform is the
// correctness contract of the whole system.
//
// Screen capture, video decode/encode, and UI chrome are external
// collaborators. The export side consumes frames through the [FrameSource]
// interface and hands raw pixels to an external encoder.
//
// [Ebitengine]: https://ebitengine.org
package keyframe
