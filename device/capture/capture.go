//go:build withcv
// +build withcv

/*
DESCRIPTION
  capture.go provides an implementation of the Source interface for cameras
  and video streams opened through OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package capture

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/utils/logging"
)

// Capture is an implementation of the Source interface for an OpenCV video
// capture. Frames are encoded as JPEG.
type Capture struct {
	mu        sync.Mutex
	log       logging.Logger
	cfg       config.Config
	set       bool
	isRunning bool

	vc   *gocv.VideoCapture
	pr   *io.PipeReader
	pw   *io.PipeWriter
	done chan struct{}
	wg   sync.WaitGroup
}

// New returns a new Capture.
func New(l logging.Logger) *Capture { return &Capture{log: l} }

// Name returns the name of the device.
func (c *Capture) Name() string { return "Capture" }

// Set takes the InputPath, Width, Height and FrameRate fields of cfg. An
// InputPath holding an integer selects a camera by index; anything else is
// opened as a file or URL. An empty InputPath selects camera 0.
func (c *Capture) Set(cfg config.Config) error {
	err := validate(&cfg)
	c.cfg = cfg
	c.set = true
	return err
}

// device returns the argument for gocv.OpenVideoCapture.
func (c *Capture) device() interface{} {
	if id, err := strconv.Atoi(c.cfg.InputPath); err == nil {
		return id
	}
	return c.cfg.InputPath
}

// Start opens the capture and begins encoding frames.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return errors.New("capture has not been set with config")
	}
	if c.isRunning {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.device())
	if err != nil {
		return fmt.Errorf("could not open video capture: %w", err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.cfg.FrameRate))

	c.vc = vc
	c.pr, c.pw = io.Pipe()
	c.done = make(chan struct{})
	c.isRunning = true

	c.wg.Add(1)
	go c.capture(vc, c.pw, c.done)
	c.log.Info(pkg+"capture started", "device", c.cfg.InputPath)
	return nil
}

func (c *Capture) capture(vc *gocv.VideoCapture, pw *io.PipeWriter, done chan struct{}) {
	defer c.wg.Done()
	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-done:
			return
		default:
		}

		if ok := vc.Read(&img); !ok {
			c.log.Info(pkg + "capture closed")
			pw.Close()
			return
		}
		if img.Empty() {
			continue
		}

		buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
		if err != nil {
			c.log.Warning(pkg+"could not encode frame", "error", err.Error())
			continue
		}
		_, err = pw.Write(buf.GetBytes())
		buf.Close()
		if err != nil {
			return
		}
	}
}

// Stop closes the capture. Readers see io.EOF.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	close(c.done)
	c.pw.Close()
	c.mu.Unlock()

	c.wg.Wait()
	return c.vc.Close()
}

// Read implements io.Reader.
func (c *Capture) Read(p []byte) (int, error) {
	c.mu.Lock()
	pr := c.pr
	c.mu.Unlock()
	if pr == nil {
		return 0, errors.New("capture not started")
	}
	return pr.Read(p)
}

// IsRunning is used to determine if the capture is running.
func (c *Capture) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}
