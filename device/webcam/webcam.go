/*
DESCRIPTION
  webcam.go provides a Source for V4L2 webcams, read through ffmpeg.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package webcam provides a Source for V4L2 webcams.
package webcam

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/utils/logging"
)

const pkg = "webcam: "

// Capture used when the config leaves a field unset.
const (
	defaultDevice = "/dev/video0"
	defaultFPS    = 25
	defaultWidth  = 640
	defaultHeight = 480
)

var errNotStarted = errors.New("webcam not started")

// Webcam reads MJPEG from a V4L2 device by running ffmpeg and reading its
// standard output.
type Webcam struct {
	log logging.Logger

	dev  string
	fps  uint
	size image.Point

	mu     sync.Mutex
	cmd    *exec.Cmd
	out    io.ReadCloser
	stderr sync.WaitGroup // Done once ffmpeg's stderr is drained.
}

// New returns a Webcam that logs to l. Set must be called before Start.
func New(l logging.Logger) *Webcam { return &Webcam{log: l} }

// Name returns "Webcam".
func (w *Webcam) Name() string { return "Webcam" }

// Set takes the device path, frame rate and frame size from c. Each unset
// field is replaced by its default and reported in the returned
// device.MultiError; the Webcam is usable either way.
func (w *Webcam) Set(c config.Config) error {
	var errs device.MultiError
	w.dev = c.InputPath
	if w.dev == "" {
		w.dev = defaultDevice
		errs = append(errs, fmt.Errorf("no input path, using %s", defaultDevice))
	}
	w.fps = c.FrameRate
	if w.fps == 0 {
		w.fps = defaultFPS
		errs = append(errs, fmt.Errorf("no frame rate, using %d", defaultFPS))
	}
	w.size = image.Pt(int(c.Width), int(c.Height))
	if w.size.X == 0 {
		w.size.X = defaultWidth
		errs = append(errs, fmt.Errorf("no width, using %d", defaultWidth))
	}
	if w.size.Y == 0 {
		w.size.Y = defaultHeight
		errs = append(errs, fmt.Errorf("no height, using %d", defaultHeight))
	}
	if errs != nil {
		return errs
	}
	return nil
}

// args returns ffmpeg arguments asking the device for MJPEG at the
// configured rate and size and writing it unchanged to stdout.
func (w *Webcam) args() []string {
	return []string{
		"-loglevel", "error",
		"-f", "v4l2",
		"-input_format", "mjpeg",
		"-framerate", strconv.Itoa(int(w.fps)),
		"-video_size", fmt.Sprintf("%dx%d", w.size.X, w.size.Y),
		"-i", w.dev,
		"-c:v", "copy",
		"-f", "mjpeg",
		"-",
	}
}

// Start runs ffmpeg. Anything it prints to stderr is logged as a warning.
func (w *Webcam) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cmd != nil {
		return errors.New("webcam already started")
	}

	cmd := exec.Command("ffmpeg", w.args()...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("could not pipe ffmpeg stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("could not pipe ffmpeg stderr: %w", err)
	}
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start ffmpeg: %w", err)
	}
	w.log.Info(pkg+"ffmpeg started", "device", w.dev, "fps", w.fps, "size", w.size.String(), "pid", cmd.Process.Pid)

	w.stderr.Add(1)
	go func() {
		defer w.stderr.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			w.log.Warning(pkg+"ffmpeg", "stderr", sc.Text())
		}
	}()

	w.cmd, w.out = cmd, out
	return nil
}

// Stop kills ffmpeg and waits for it to exit. Stopping a Webcam that is not
// running does nothing.
func (w *Webcam) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cmd == nil {
		return nil
	}
	cmd := w.cmd
	w.cmd, w.out = nil, nil

	err := cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("could not kill ffmpeg: %w", err)
	}
	w.stderr.Wait()
	err = cmd.Wait()
	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) {
		return fmt.Errorf("could not wait for ffmpeg: %w", err)
	}
	w.log.Info(pkg + "ffmpeg stopped")
	return nil
}

// Read implements io.Reader over ffmpeg's stdout.
func (w *Webcam) Read(p []byte) (int, error) {
	w.mu.Lock()
	out := w.out
	w.mu.Unlock()
	if out == nil {
		return 0, errNotStarted
	}
	return out.Read(p)
}

// IsRunning reports whether ffmpeg has been started and not stopped.
func (w *Webcam) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cmd != nil
}
