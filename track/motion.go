/*
DESCRIPTION
  motion.go provides the motion history engine. Each frame is differenced
  against the oldest frame of the history ring, the resulting silhouette is
  merged into a per pixel motion history and the history is segmented into
  connected regions of recent motion.

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
	"math"
)

// noMotion marks a motion history cell with no motion inside the retention
// window.
var noMotion = math.Inf(-1)

// Segment is a connected region of recent motion.
type Segment struct {
	Rect image.Rectangle // Bounding rectangle in frame coordinates.
	Area int             // Number of pixels in the region.
}

// motionHistory holds the motion history field and the segments extracted
// from it on the most recent update.
type motionHistory struct {
	hist *history

	thresh   uint8   // Difference threshold; larger differences are motion.
	duration float64 // Retention of the history.
	maxDelta float64 // Maximum age of motion included in a segment.
	minDelta float64 // Lower bound on motion age; does not gate segmentation.

	origin   image.Point // Bounds.Min of the frames being processed.
	size     image.Point
	channels int // Channel count of the frames being processed.
	mhi    []float64 // Timestamp of the most recent motion per pixel.
	silh   []bool    // Pixels that moved on the most recent update.
	moved  int       // Number of true values in silh.

	segs []Segment
	best int // Index of the largest segment in segs, or -1 if not yet found.

	labels []int32 // Scratch for segmentation.
	stack  []int
}

func newMotionHistory(thresh uint8, duration, maxDelta, minDelta float64) *motionHistory {
	return &motionHistory{
		hist:     newHistory(),
		thresh:   thresh,
		duration: duration,
		maxDelta: maxDelta,
		minDelta: minDelta,
		best:     -1,
	}
}

// alloc discards all history and allocates buffers for frames of the given
// size and channel count.
func (m *motionHistory) alloc(size image.Point, channels int) {
	n := size.X * size.Y
	m.size = size
	m.channels = channels
	m.mhi = make([]float64, n)
	for i := range m.mhi {
		m.mhi[i] = noMotion
	}
	m.silh = make([]bool, n)
	m.labels = make([]int32, n)
	m.stack = m.stack[:0]
	m.segs = nil
	m.best = -1
	m.hist.alloc(size)
}

// update advances the motion history by the frame img captured at time ts.
// It returns true if the buffers had to be (re)allocated because this is the
// first frame or its size or channel count changed, in which case all
// previous history was discarded.
func (m *motionHistory) update(img image.Image, ts float64) bool {
	b := img.Bounds()
	c := Channels(img)
	realloc := m.mhi == nil || b.Size() != m.size || c != m.channels
	if realloc {
		m.alloc(b.Size(), c)
	}
	m.origin = b.Min

	m.hist.push(img)
	m.silhouette(m.hist.previous(), m.hist.current())

	stale := ts - m.duration
	for i, moved := range m.silh {
		switch {
		case moved:
			m.mhi[i] = ts
		case m.mhi[i] < stale:
			m.mhi[i] = noMotion
		}
	}

	m.segment(ts)
	return realloc
}

// silhouette marks the pixels whose absolute difference between prev and cur
// is strictly greater than the threshold.
func (m *motionHistory) silhouette(prev, cur *image.Gray) {
	m.moved = 0
	for i := range m.silh {
		d := int(cur.Pix[i]) - int(prev.Pix[i])
		if d < 0 {
			d = -d
		}
		m.silh[i] = d > int(m.thresh)
		if m.silh[i] {
			m.moved++
		}
	}
}

// recent reports whether the history cell i holds motion no older than
// maxDelta relative to ts.
func (m *motionHistory) recent(i int, ts float64) bool {
	v := m.mhi[i]
	return v != noMotion && ts-v <= m.maxDelta
}

// segment labels the 4-connected components of recent motion. Components are
// recorded in the row major order of their first pixel.
func (m *motionHistory) segment(ts float64) {
	for i := range m.labels {
		m.labels[i] = 0
	}
	m.segs = m.segs[:0]
	m.best = -1

	w, h := m.size.X, m.size.Y
	for seed := range m.labels {
		if m.labels[seed] != 0 || !m.recent(seed, ts) {
			continue
		}
		label := int32(len(m.segs) + 1)
		m.labels[seed] = label

		x0, y0, x1, y1 := w, h, -1, -1
		area := 0
		m.stack = append(m.stack[:0], seed)
		for len(m.stack) > 0 {
			i := m.stack[len(m.stack)-1]
			m.stack = m.stack[:len(m.stack)-1]

			x, y := i%w, i/w
			area++
			x0, y0 = min(x0, x), min(y0, y)
			x1, y1 = max(x1, x), max(y1, y)

			if x > 0 {
				m.visit(i-1, label, ts)
			}
			if x < w-1 {
				m.visit(i+1, label, ts)
			}
			if y > 0 {
				m.visit(i-w, label, ts)
			}
			if y < h-1 {
				m.visit(i+w, label, ts)
			}
		}

		m.segs = append(m.segs, Segment{
			Rect: image.Rect(x0, y0, x1+1, y1+1).Add(m.origin),
			Area: area,
		})
	}
}

func (m *motionHistory) visit(i int, label int32, ts float64) {
	if m.labels[i] != 0 || !m.recent(i, ts) {
		return
	}
	m.labels[i] = label
	m.stack = append(m.stack, i)
}

// segments returns the segments of the most recent update.
func (m *motionHistory) segments() []Segment {
	return m.segs
}

// largest returns the segment with the largest area. Of segments with equal
// areas the first found is returned. The search is performed at most once per
// update.
func (m *motionHistory) largest() (Segment, bool) {
	if len(m.segs) == 0 {
		return Segment{}, false
	}
	if m.best < 0 {
		m.best = 0
		for i, s := range m.segs {
			if s.Area > m.segs[m.best].Area {
				m.best = i
			}
		}
	}
	return m.segs[m.best], true
}

// release drops all buffers.
func (m *motionHistory) release() {
	m.hist.release()
	m.mhi = nil
	m.silh = nil
	m.labels = nil
	m.stack = nil
	m.segs = nil
	m.best = -1
	m.size = image.Point{}
}
