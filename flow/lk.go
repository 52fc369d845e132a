//go:build withcv
// +build withcv

/*
DESCRIPTION
  lk.go provides a Tracker that follows Shi-Tomasi corners with pyramidal
  Lucas-Kanade optical flow.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/gift"
	"gocv.io/x/gocv"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/utils/logging"
)

// Corner detection parameters.
const (
	qualityLevel = 0.01
	minDistance  = 10
)

// LK tracks corners between consecutive frames.
type LK struct {
	log       logging.Logger
	maxPoints int

	g    *gift.GIFT
	gray *image.Gray

	prev    gocv.Mat // Previous grayscale frame.
	prevPts gocv.Mat // Points on prev as an Nx2 CV32F matrix.
	pts     []image.Point
}

// New returns a new LK tracker following at most c.MaxPoints points.
func New(c config.Config) (Tracker, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger in config")
	}
	maxPoints := int(c.MaxPoints)
	if maxPoints <= 0 {
		return nil, fmt.Errorf("invalid maximum point count: %d", c.MaxPoints)
	}
	return &LK{
		log:       c.Logger,
		maxPoints: maxPoints,
		g:         gift.New(gift.Grayscale()),
		prev:      gocv.NewMat(),
		prevPts:   gocv.NewMat(),
	}, nil
}

// Update implements Tracker.
func (t *LK) Update(img image.Image) error {
	b := img.Bounds()
	if t.gray == nil || t.gray.Bounds().Size() != b.Size() {
		t.gray = image.NewGray(image.Rectangle{Max: b.Size()})
		t.pts = t.pts[:0]
	}
	t.g.Draw(t.gray, img)

	cur, err := gocv.ImageGrayToMatGray(t.gray)
	if err != nil {
		return fmt.Errorf("could not convert frame: %w", err)
	}

	if t.prev.Empty() || len(t.pts) == 0 {
		t.detect(cur, b.Min)
	} else {
		t.follow(cur, b.Min)
	}

	t.prev.Close()
	t.prev = cur
	return nil
}

// detect finds new corners on img.
func (t *LK) detect(img gocv.Mat, origin image.Point) {
	corners := gocv.NewMat()
	defer corners.Close()
	gocv.GoodFeaturesToTrack(img, &corners, t.maxPoints, qualityLevel, minDistance)

	t.pts = t.pts[:0]
	xy := make([][2]float32, 0, corners.Rows())
	for i := 0; i < corners.Rows(); i++ {
		v := corners.GetVecfAt(i, 0)
		xy = append(xy, [2]float32{v[0], v[1]})
		t.pts = append(t.pts, toPoint(v[0], v[1]).Add(origin))
	}
	t.setPrevPoints(xy)
	t.log.Debug(pkg+"detected corners", "count", len(t.pts))
}

// follow moves the previous points into img, dropping points that were lost.
func (t *LK) follow(img gocv.Mat, origin image.Point) {
	next := gocv.NewMat()
	defer next.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	gocv.CalcOpticalFlowPyrLK(t.prev, img, t.prevPts, next, &status, &errMat)

	t.pts = t.pts[:0]
	xy := make([][2]float32, 0, status.Rows())
	for i := 0; i < status.Rows(); i++ {
		if status.GetUCharAt(i, 0) != 1 {
			continue
		}
		var x, y float32
		if next.Channels() == 2 {
			v := next.GetVecfAt(i, 0)
			x, y = v[0], v[1]
		} else {
			x, y = next.GetFloatAt(i, 0), next.GetFloatAt(i, 1)
		}
		xy = append(xy, [2]float32{x, y})
		t.pts = append(t.pts, toPoint(x, y).Add(origin))
	}
	t.setPrevPoints(xy)
	if len(t.pts) == 0 {
		t.log.Debug(pkg + "all points lost")
	}
}

func (t *LK) setPrevPoints(xy [][2]float32) {
	t.prevPts.Close()
	if len(xy) == 0 {
		t.prevPts = gocv.NewMat()
		return
	}
	t.prevPts = gocv.NewMatWithSize(len(xy), 2, gocv.MatTypeCV32F)
	for i, p := range xy {
		t.prevPts.SetFloatAt(i, 0, p[0])
		t.prevPts.SetFloatAt(i, 1, p[1])
	}
}

// Points implements Tracker.
func (t *LK) Points() []image.Point { return t.pts }

// Close implements Tracker.
func (t *LK) Close() error {
	t.pts = nil
	err := t.prev.Close()
	if err != nil {
		return fmt.Errorf("could not close frame: %w", err)
	}
	return t.prevPts.Close()
}

func toPoint(x, y float32) image.Point {
	return image.Pt(int(x+0.5), int(y+0.5))
}
