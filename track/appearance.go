/*
DESCRIPTION
  appearance.go provides the hue histogram appearance tracker. The tracker is
  seeded with a window, learns the hue histogram of the window and follows it
  on later frames by CAMShift over the histogram back projection.

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
)

type appearance struct {
	bins      int
	gates     gates
	crit      criteria
	flipAngle bool // Negate box angles, i.e. frames have a top left origin.

	frame     image.Image // Most recent frame.
	origin    image.Point
	converted bool // hsv holds the conversion of frame.
	hsv       hsvPlanes
	prob      plane

	active bool
	hist   []float64
	window image.Rectangle // Relative to origin.
	box    Box
}

// setFrame records img as the current frame. Conversion is deferred until the
// frame is needed.
func (a *appearance) setFrame(img image.Image) {
	a.frame = img
	a.origin = img.Bounds().Min
	a.converted = false
}

func (a *appearance) convert() bool {
	if a.frame == nil {
		return false
	}
	if !a.converted {
		a.hsv.convert(a.frame, a.gates)
		a.converted = true
	}
	return true
}

// initialize learns the hue histogram inside seed, given in frame
// coordinates, and starts tracking from it. It returns false if there is no
// frame to learn from.
func (a *appearance) initialize(seed image.Rectangle) bool {
	if !a.convert() {
		return false
	}
	a.window = seed.Sub(a.origin)
	a.hist = a.hsv.histogram(a.window, a.bins)
	a.box = Box{}
	a.active = true
	return true
}

// update tracks the target into the current frame. It does nothing if the
// tracker is inactive.
func (a *appearance) update() {
	if !a.active || !a.convert() {
		return
	}

	size := a.hsv.size
	if a.prob.w != size.X || a.prob.h != size.Y {
		a.prob = plane{w: size.X, h: size.Y, pix: make([]float64, size.X*size.Y)}
	}
	a.hsv.backProject(a.hist, a.prob.pix)

	a.window, a.box = camShift(&a.prob, a.window, a.crit)
	a.box.Center.X += float64(a.origin.X)
	a.box.Center.Y += float64(a.origin.Y)
	if a.flipAngle {
		a.box.Angle = -a.box.Angle
	}
}

// trackWindow returns the tracked window in frame coordinates.
func (a *appearance) trackWindow() image.Rectangle {
	return a.window.Add(a.origin)
}

// deactivate stops tracking; the histogram and window become meaningless.
func (a *appearance) deactivate() {
	a.active = false
	a.hist = nil
	a.window = image.Rectangle{}
	a.box = Box{}
}

// release drops all buffers.
func (a *appearance) release() {
	a.deactivate()
	a.frame = nil
	a.converted = false
	a.hsv = hsvPlanes{}
	a.prob = plane{}
}
