/*
DESCRIPTION
  annotate.go provides drawing of tracker state onto frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package annotate draws the state of a track.Tracker onto frames: the
// largest motion segment, the oriented box of the tracked region and the
// tracked feature points.
package annotate

import (
	"image"
	"image/color"
	"image/draw"

	"git.sr.ht/~sbinet/gg"

	"github.com/ausocean/satori/track"
)

// Overlay colours.
var (
	SegmentColor = color.RGBA{0, 0, 0xff, 0xff}
	BoxColor     = color.RGBA{0xff, 0, 0, 0xff}
	PointColor   = color.RGBA{0, 0xff, 0, 0xff}
)

const (
	lineWidth   = 2
	pointRadius = 3
)

// Frame draws the tracker's largest motion segment, its track box if
// tracking is active, and pts onto dst.
func Frame(dst *image.RGBA, t *track.Tracker, pts []image.Point) {
	// gg expects a zero origin; draw onto a view sharing dst's pixels.
	off := dst.Bounds().Min
	view := &image.RGBA{Pix: dst.Pix, Stride: dst.Stride, Rect: image.Rectangle{Max: dst.Bounds().Size()}}

	dc := gg.NewContextForRGBA(view)
	dc.SetLineWidth(lineWidth)

	if seg, ok := t.LargestSegment(); ok {
		r := seg.Rect.Sub(off)
		dc.SetColor(SegmentColor)
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
	}

	if t.Active() {
		Box(dc, t.TrackBox(), off)
	}

	dc.SetColor(PointColor)
	for _, p := range pts {
		p = p.Sub(off)
		dc.DrawCircle(float64(p.X), float64(p.Y), pointRadius)
		dc.Fill()
	}
}

// Box strokes the oriented box b onto dc. Box angles are measured from the
// vertical axis; the major axis is the box height.
func Box(dc *gg.Context, b track.Box, off image.Point) {
	if b.Size.X == 0 && b.Size.Y == 0 {
		return
	}
	cx, cy := b.Center.X-float64(off.X), b.Center.Y-float64(off.Y)
	dc.Push()
	dc.SetColor(BoxColor)
	dc.RotateAbout(gg.Radians(b.Angle), cx, cy)
	dc.DrawRectangle(cx-b.Size.X/2, cy-b.Size.Y/2, b.Size.X, b.Size.Y)
	dc.Stroke()
	dc.Pop()
}

// RGBA returns img as an *image.RGBA, copying it if necessary.
func RGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}
