//go:build test
// +build test

/*
DESCRIPTION
  imp_testing.go provides a camera that generates synthetic JPEG frames of a
  red square moving across a black background, one per timelapse interval.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package raspistill

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
)

const (
	testFrameSize = 80
	targetSize    = 20
)

// camera writes generated frames into a pipe that read drains.
type camera struct {
	log logging.Logger

	mu   sync.Mutex
	pr   *io.PipeReader
	quit chan struct{}
	live bool
}

func (c *camera) start(r *Raspistill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live {
		return errors.New("raspistill already started")
	}
	pr, pw := io.Pipe()
	c.pr, c.quit, c.live = pr, make(chan struct{}), true
	go c.capture(pw, r.interval, r.duration, c.quit)
	return nil
}

// capture writes a frame immediately and then one per interval until the
// duration has passed or quit is closed.
func (c *camera) capture(pw *io.PipeWriter, interval, duration time.Duration, quit chan struct{}) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	end := time.NewTimer(duration)
	defer end.Stop()

	for n := 0; ; n++ {
		err := jpeg.Encode(pw, testFrame(n), &jpeg.Options{Quality: jpegQuality})
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		select {
		case <-tick.C:
		case <-quit:
			pw.Close()
			return
		case <-end.C:
			c.log.Debug(pkg+"timelapse over", "frames", n+1)
			c.mu.Lock()
			c.live = false
			c.mu.Unlock()
			pw.Close()
			return
		}
	}
}

// testFrame returns frame n of the timelapse. The square moves 2 pixels right
// per frame, wrapping at the frame edge.
func testFrame(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, testFrameSize, testFrameSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)
	x := (2 * n) % (testFrameSize - targetSize)
	y := (testFrameSize - targetSize) / 2
	draw.Draw(img, image.Rect(x, y, x+targetSize, y+targetSize), &image.Uniform{color.RGBA{0xff, 0, 0, 0xff}}, image.Point{}, draw.Src)
	return img
}

func (c *camera) stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pr == nil {
		return nil
	}
	if c.live {
		close(c.quit)
		c.live = false
	}
	return c.pr.Close()
}

func (c *camera) read(p []byte) (int, error) {
	c.mu.Lock()
	pr := c.pr
	c.mu.Unlock()
	if pr == nil {
		return 0, errNotStarted
	}
	return pr.Read(p)
}

func (c *camera) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}
