package keyframe

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// blurChain applies a Kawase iterative blur using downscale/upscale passes.
// No shader needed: bilinear filtering during DrawImage does the work.
// Scratch images persist between frames and are resized lazily, so a
// preview session at a steady blur intensity allocates once.
type blurChain struct {
	temps []*ebiten.Image
	imgOp ebiten.DrawImageOptions
}

// apply renders src blurred by the given intensity (in pixels) into dst.
// Intensity <= 0 copies src through unchanged.
func (b *blurChain) apply(src, dst *ebiten.Image, intensity float64) {
	radius := int(math.Round(intensity))
	if radius <= 0 {
		b.imgOp.GeoM.Reset()
		b.imgOp.ColorScale.Reset()
		b.imgOp.Filter = ebiten.FilterNearest
		dst.Clear()
		dst.DrawImage(src, &b.imgOp)
		return
	}

	passes := int(math.Ceil(math.Log2(float64(radius))))
	if passes < 1 {
		passes = 1
	}

	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(b.temps) < passes {
		b.temps = append(b.temps, nil)
	}
	for i := passes; i < len(b.temps); i++ {
		if b.temps[i] != nil {
			b.temps[i].Deallocate()
			b.temps[i] = nil
		}
	}
	b.temps = b.temps[:passes]

	op := &b.imgOp

	// Downscale chain, each pass half size.
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if b.temps[i] == nil || b.temps[i].Bounds().Dx() != w || b.temps[i].Bounds().Dy() != h {
			if b.temps[i] != nil {
				b.temps[i].Deallocate()
			}
			b.temps[i] = ebiten.NewImage(w, h)
		} else {
			b.temps[i].Clear()
		}
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(
			float64(w)/float64(current.Bounds().Dx()),
			float64(h)/float64(current.Bounds().Dy()),
		)
		op.Filter = ebiten.FilterLinear
		b.temps[i].DrawImage(current, op)
		current = b.temps[i]
	}

	// Upscale back through the chain.
	for i := passes - 2; i >= 0; i-- {
		b.temps[i].Clear()
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(
			float64(b.temps[i].Bounds().Dx())/float64(current.Bounds().Dx()),
			float64(b.temps[i].Bounds().Dy())/float64(current.Bounds().Dy()),
		)
		op.Filter = ebiten.FilterLinear
		b.temps[i].DrawImage(current, op)
		current = b.temps[i]
	}

	// Final upscale to dst.
	dst.Clear()
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(
		float64(dst.Bounds().Dx())/float64(current.Bounds().Dx()),
		float64(dst.Bounds().Dy())/float64(current.Bounds().Dy()),
	)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(current, op)
}

// dispose deallocates the scratch chain.
func (b *blurChain) dispose() {
	for i, img := range b.temps {
		if img != nil {
			img.Deallocate()
			b.temps[i] = nil
		}
	}
	b.temps = b.temps[:0]
}
