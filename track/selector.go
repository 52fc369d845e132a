/*
DESCRIPTION
  selector.go provides selection of the seed window used to (re)initialise
  appearance tracking.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import "image"

// selectWindow returns the seed window for appearance tracking. With no
// points the window is the bounding rectangle of the largest motion segment.
// With points, the window is the bounding rectangle of the points that lie
// inside the largest segment. The window is never smaller than 1x1; with no
// segment it is the 1x1 rectangle at the frame origin.
func (m *motionHistory) selectWindow(pts []image.Point) image.Rectangle {
	def := image.Rect(0, 0, 1, 1).Add(m.origin)

	seg, ok := m.largest()
	if !ok {
		return def
	}
	if len(pts) == 0 {
		return seg.Rect
	}

	// The intersection of the segment rectangle mask and the rasterised
	// points is the set of points inside the rectangle.
	frame := image.Rectangle{Max: m.size}.Add(m.origin)
	area := seg.Rect.Intersect(frame)
	var r image.Rectangle
	found := false
	for _, p := range pts {
		if !p.In(area) {
			continue
		}
		pr := image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
		if !found {
			r = pr
			found = true
			continue
		}
		r = r.Union(pr)
	}
	if !found {
		r = image.Rectangle{Min: m.origin, Max: m.origin}
	}

	if r.Dx() == 0 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() == 0 {
		r.Max.Y = r.Min.Y + 1
	}
	return r
}
