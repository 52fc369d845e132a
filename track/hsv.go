/*
DESCRIPTION
  hsv.go provides the hue plane, validity mask and hue histogram used by the
  appearance tracker. Hue, saturation and value use the 8 bit OpenCV scale,
  i.e. hue in [0, 180) and saturation and value in [0, 255].

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// maxHue is the exclusive upper bound of the 8 bit hue scale.
const maxHue = 180

// histPeak is the value of the largest bin of a normalised histogram.
const histPeak = 255

// hsvPlanes holds the hue of every pixel of a frame and whether the pixel's
// saturation and value are inside the gates.
type hsvPlanes struct {
	size  image.Point
	hue   []uint8
	valid []bool
}

// gates holds the saturation and value bounds of pixels with usable hue.
type gates struct {
	smin       int
	vmin, vmax int
}

// inRange reports whether s and v lie inside the gates. The bounds are
// inclusive and vmin and vmax may be given in either order.
func (g gates) inRange(s, v int) bool {
	lo, hi := min(g.vmin, g.vmax), max(g.vmin, g.vmax)
	return s >= g.smin && v >= lo && v <= hi
}

// convert fills the planes from img. Planes are reallocated if the frame size
// changed.
func (p *hsvPlanes) convert(img image.Image, g gates) {
	b := img.Bounds()
	if b.Size() != p.size {
		p.size = b.Size()
		p.hue = make([]uint8, p.size.X*p.size.Y)
		p.valid = make([]bool, p.size.X*p.size.Y)
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			h, s, v := hsv8(img.At(x, y))
			p.hue[i] = h
			p.valid[i] = g.inRange(s, v)
			i++
		}
	}
}

// hsv8 converts c to hue, saturation and value on the 8 bit OpenCV scale.
func hsv8(c color.Color) (uint8, int, int) {
	col, _ := colorful.MakeColor(c)
	h, s, v := col.Hsv()
	hue := int(h/2 + 0.5)
	if hue >= maxHue {
		hue -= maxHue
	}
	return uint8(hue), int(s*255 + 0.5), int(v*255 + 0.5)
}

// bin returns the histogram bin of hue h for a histogram of n bins over
// [0, maxHue).
func bin(h uint8, n int) int {
	return int(h) * n / maxHue
}

// histogram computes the hue histogram of the valid pixels of p inside r, r
// being relative to the frame origin. The histogram is scaled so that its
// largest bin is histPeak; if no pixel is valid all bins are zero.
func (p *hsvPlanes) histogram(r image.Rectangle, n int) []float64 {
	hist := make([]float64, n)
	r = r.Intersect(image.Rectangle{Max: p.size})
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := y*p.size.X + x
			if p.valid[i] {
				hist[bin(p.hue[i], n)]++
			}
		}
	}

	peak := floats.Max(hist)
	if peak == 0 {
		return hist
	}
	// Divide last so the peak bin is exactly histPeak.
	for i := range hist {
		hist[i] = hist[i] * histPeak / peak
	}
	return hist
}

// backProject writes the histogram value of each valid pixel's hue to dst;
// invalid pixels get zero.
func (p *hsvPlanes) backProject(hist []float64, dst []float64) {
	for i, h := range p.hue {
		if !p.valid[i] {
			dst[i] = 0
			continue
		}
		dst[i] = hist[bin(h, len(hist))]
	}
}
