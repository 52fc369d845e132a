/*
DESCRIPTION
  track.go provides Tracker, the controller of the motion tracking state
  machine. Each frame advances a motion history and, once a target has been
  selected, an appearance tracker that follows the target's hue histogram.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package track provides a single object tracker that combines motion
// history segmentation with CAMShift hue histogram tracking.
//
// Frames are processed synchronously; a Tracker must not be used from more
// than one goroutine at a time.
package track

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ausocean/satori/config"
)

// Used to indicate package in logging.
const pkg = "track: "

// State is the buffer state of a Tracker.
type State int

// Tracker states. A Tracker is Uninitialized until the first frame arrives
// and Active from then on. A frame of different dimensions moves an Active
// tracker through Reinitializing, in which all history is discarded, back to
// Active.
const (
	Uninitialized State = iota
	Active
	Reinitializing
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Active:
		return "Active"
	case Reinitializing:
		return "Reinitializing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tracker tracks the dominant moving object of a frame sequence.
type Tracker struct {
	cfg    config.Config
	motion *motionHistory
	app    appearance

	state   State
	reinits int // Number of Reinitializing transitions.
	frames  int // Frames seen since construction.
	start   time.Time
	now     func() time.Time
}

// New returns a new Tracker configured by c. Unset or invalid fields of c are
// defaulted.
func New(c config.Config) (*Tracker, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger in config")
	}
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	t := &Tracker{
		cfg: c,
		motion: newMotionHistory(
			uint8(c.DiffThreshold),
			c.MHIDuration,
			c.MaxTimeDelta,
			c.MinTimeDelta,
		),
		app: appearance{
			bins:      int(c.HistBins),
			gates:     gates{smin: int(c.SMin), vmin: int(c.VMin), vmax: int(c.VMax)},
			crit:      criteria{maxIter: int(c.CamShiftIterations), eps: c.CamShiftEpsilon},
			flipAngle: !c.BottomLeftOrigin,
		},
		now: time.Now,
	}
	t.start = t.now()
	return t, nil
}

// Config returns a copy of the tracker's validated config.
func (t *Tracker) Config() config.Config {
	return t.cfg
}

// Update processes the next frame. With a FileFPS configured, frames are
// timestamped at that rate; otherwise the wall clock is used.
func (t *Tracker) Update(img image.Image) {
	var ts float64
	if t.cfg.FileFPS != 0 {
		ts = float64(t.frames+1) / float64(t.cfg.FileFPS)
	} else {
		ts = t.now().Sub(t.start).Seconds()
	}
	t.UpdateAt(img, ts)
}

// UpdateAt processes the next frame, captured at time ts in seconds. The
// motion history is always advanced before the appearance tracker so that a
// following Reset sees the segmentation of this frame.
func (t *Tracker) UpdateAt(img image.Image, ts float64) {
	t.frames++

	realloc := t.motion.update(img, ts)
	switch {
	case t.state == Uninitialized:
		t.transition(Active, "size", img.Bounds().Size())
	case realloc:
		t.transition(Reinitializing, "size", img.Bounds().Size())
		t.reinits++
		t.app.deactivate()
		t.transition(Active)
	}

	t.app.setFrame(img)
	t.app.update()

	if t.cfg.AutoReset && !t.app.active {
		seg, ok := t.motion.largest()
		if ok && seg.Area >= int(t.cfg.MotionMinArea) {
			t.cfg.Logger.Info(pkg+"motion found, selecting target", "area", seg.Area, "rect", seg.Rect.String())
			t.Reset()
		}
	}
}

func (t *Tracker) transition(to State, args ...interface{}) {
	t.cfg.Logger.Debug(pkg+"state transition", append([]interface{}{"from", t.state.String(), "to", to.String()}, args...)...)
	t.state = to
}

// Reset seeds the appearance tracker with the bounding rectangle of the
// largest motion segment, or a 1x1 window at the origin if there is none.
func (t *Tracker) Reset() {
	t.reset(nil)
}

// ResetWithPoints seeds the appearance tracker with the bounding rectangle of
// the tracked feature points lying inside the largest motion segment. With no
// points it behaves like Reset.
func (t *Tracker) ResetWithPoints(pts []image.Point) {
	t.reset(pts)
}

func (t *Tracker) reset(pts []image.Point) {
	if t.state == Uninitialized {
		t.cfg.Logger.Warning(pkg + "reset before first frame, ignoring")
		return
	}
	seed := t.motion.selectWindow(pts)
	if !t.app.initialize(seed) {
		t.cfg.Logger.Warning(pkg + "no frame to initialise tracking from")
		return
	}
	t.cfg.Logger.Debug(pkg+"tracking reset", "seed", seed.String(), "points", len(pts), "hist", t.app.hist)
}

// Segments returns the motion segments of the most recent frame. The slice is
// owned by the tracker and is only valid until the next Update.
func (t *Tracker) Segments() []Segment {
	return t.motion.segments()
}

// LargestSegment returns the motion segment of largest area, with ties going
// to the segment found first. It returns false if there are no segments.
func (t *Tracker) LargestSegment() (Segment, bool) {
	return t.motion.largest()
}

// TrackBox returns the oriented box of the tracked region. It is only
// meaningful while Active returns true.
func (t *Tracker) TrackBox() Box {
	return t.app.box
}

// TrackWindow returns the window the target is searched for from on the next
// frame. It is only meaningful while Active returns true.
func (t *Tracker) TrackWindow() image.Rectangle {
	return t.app.trackWindow()
}

// Histogram returns a copy of the target hue histogram.
func (t *Tracker) Histogram() []float64 {
	return append([]float64(nil), t.app.hist...)
}

// Active reports whether a target is being tracked.
func (t *Tracker) Active() bool {
	return t.app.active
}

// State returns the buffer state of the tracker.
func (t *Tracker) State() State {
	return t.state
}

// Reinitializations returns the number of times a change of frame dimensions
// discarded the tracker's history.
func (t *Tracker) Reinitializations() int {
	return t.reinits
}

// Close releases the tracker's buffers. The tracker returns to the
// Uninitialized state and may be reused.
func (t *Tracker) Close() error {
	t.motion.release()
	t.app.release()
	t.state = Uninitialized
	return nil
}
