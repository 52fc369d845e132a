/*
DESCRIPTION
  report.go provides per frame tracking samples and plots of them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package report records the state of a tracker frame by frame and renders
// plots of the tracked trajectory and of motion segment areas.
package report

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/satori/track"
)

// ErrNoSamples is returned when asked to plot an empty or inactive sample
// set.
var ErrNoSamples = errors.New("no samples to plot")

// Plot dimensions.
const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// Sample is the state of a tracker after one frame.
type Sample struct {
	Frame       int
	Active      bool
	Center      r2.Vec          // Centre of the track box; valid if Active.
	Window      image.Rectangle // Tracked window; valid if Active.
	Segments    int             // Number of motion segments.
	LargestArea int             // Area of the largest motion segment.
}

// NewSample returns the sample of t after frame n.
func NewSample(n int, t *track.Tracker) Sample {
	s := Sample{
		Frame:    n,
		Active:   t.Active(),
		Segments: len(t.Segments()),
	}
	if seg, ok := t.LargestSegment(); ok {
		s.LargestArea = seg.Area
	}
	if s.Active {
		s.Center = t.TrackBox().Center
		s.Window = t.TrackWindow()
	}
	return s
}

// Trajectory saves a PNG, SVG or PDF plot, chosen by the extension of path,
// of the track box centre over all active samples. The vertical axis is
// inverted to match image coordinates.
func Trajectory(path string, samples []Sample) error {
	var pts plotter.XYs
	for _, s := range samples {
		if s.Active {
			pts = append(pts, plotter.XY{X: s.Center.X, Y: -s.Center.Y})
		}
	}
	if len(pts) == 0 {
		return ErrNoSamples
	}

	p := plot.New()
	p.Title.Text = "Track Trajectory"
	p.X.Label.Text = "x (pixels)"
	p.Y.Label.Text = "-y (pixels)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("could not create trajectory line: %w", err)
	}
	line.Color = color.RGBA{R: 0xff, A: 0xff}
	line.Width = vg.Points(1)
	p.Add(line)

	start, err := plotter.NewScatter(pts[:1])
	if err != nil {
		return fmt.Errorf("could not create start marker: %w", err)
	}
	start.Color = color.RGBA{G: 0xff, A: 0xff}
	p.Add(start)
	p.Legend.Add("track centre", line)
	p.Legend.Add("start", start)

	err = p.Save(plotWidth, plotHeight, path)
	if err != nil {
		return fmt.Errorf("could not save trajectory plot: %w", err)
	}
	return nil
}

// Areas saves a plot of the largest motion segment area and the tracked
// window area per frame.
func Areas(path string, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}

	seg := make(plotter.XYs, 0, len(samples))
	var win plotter.XYs
	for _, s := range samples {
		seg = append(seg, plotter.XY{X: float64(s.Frame), Y: float64(s.LargestArea)})
		if s.Active {
			win = append(win, plotter.XY{X: float64(s.Frame), Y: float64(s.Window.Dx() * s.Window.Dy())})
		}
	}

	p := plot.New()
	p.Title.Text = "Motion and Track Areas"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Area (pixels)"

	segLine, err := plotter.NewLine(seg)
	if err != nil {
		return fmt.Errorf("could not create segment line: %w", err)
	}
	segLine.Color = color.RGBA{B: 0xff, A: 0xff}
	segLine.Width = vg.Points(1)
	p.Add(segLine)
	p.Legend.Add("largest segment", segLine)

	if len(win) > 0 {
		winLine, err := plotter.NewLine(win)
		if err != nil {
			return fmt.Errorf("could not create window line: %w", err)
		}
		winLine.Color = color.RGBA{R: 0xff, A: 0xff}
		winLine.Width = vg.Points(1)
		p.Add(winLine)
		p.Legend.Add("track window", winLine)
	}
	p.Legend.Top = true

	err = p.Save(plotWidth, plotHeight, path)
	if err != nil {
		return fmt.Errorf("could not save area plot: %w", err)
	}
	return nil
}
