/*
DESCRIPTION
  raspistill.go provides a Source that captures a timelapse of JPEG images
  from the Raspberry Pi camera.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package raspistill provides a timelapse Source for the Raspberry Pi camera.
// Images are read as a stream of concatenated JPEGs, one per interval, which
// the MJPEG lexer splits like any other MJPEG source.
//
// Builds with the test tag replace the camera with a generator of synthetic
// frames of a moving target.
package raspistill

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/utils/logging"
)

const pkg = "raspistill: "

// Accepted settings.
const (
	maxRotation = 359 // Degrees.
	minDuration = 10 * time.Second
	maxDuration = 24 * time.Hour
	minInterval = time.Second
	maxInterval = 24 * time.Hour
)

// Settings used in place of unset or out of range config fields.
const (
	defaultWidth    = 1280
	defaultHeight   = 720
	defaultDuration = maxDuration
	defaultInterval = 10 * time.Second
)

const jpegQuality = 75

var errNotStarted = errors.New("raspistill not started")

// Raspistill captures a timelapse with the raspistill utility.
type Raspistill struct {
	log logging.Logger

	width, height uint
	rotation      uint
	duration      time.Duration // Length of the whole timelapse.
	interval      time.Duration // Time between captures.

	cam camera
}

// New returns a Raspistill that logs to l. Set should be called before Start.
func New(l logging.Logger) *Raspistill {
	return &Raspistill{log: l, cam: camera{log: l}}
}

// Name returns "Raspistill".
func (r *Raspistill) Name() string { return "Raspistill" }

// Set takes the frame size, rotation and timelapse timing from c. Fields
// that are unset or out of range are replaced by defaults and reported in
// the returned device.MultiError; the Raspistill is usable either way.
func (r *Raspistill) Set(c config.Config) error {
	var errs device.MultiError
	replace := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%s bad or unset, using %v", field, v))
	}

	r.width, r.height, r.rotation = c.Width, c.Height, c.Rotation
	r.duration, r.interval = c.TimelapseDuration, c.TimelapseInterval
	if r.rotation > maxRotation {
		r.rotation = 0
		replace("Rotation", r.rotation)
	}
	if r.width == 0 {
		r.width = defaultWidth
		replace("Width", r.width)
	}
	if r.height == 0 {
		r.height = defaultHeight
		replace("Height", r.height)
	}
	if r.duration < minDuration || r.duration > maxDuration {
		r.duration = defaultDuration
		replace("TimelapseDuration", r.duration)
	}
	if r.interval < minInterval || r.interval > maxInterval {
		r.interval = defaultInterval
		replace("TimelapseInterval", r.interval)
	}

	if errs != nil {
		return errs
	}
	return nil
}

// args returns the raspistill command line for the current settings.
// raspistill takes times in milliseconds.
func (r *Raspistill) args() []string {
	ms := func(d time.Duration) string { return strconv.FormatInt(d.Milliseconds(), 10) }
	return []string{
		"--output", "-",
		"--nopreview",
		"--encoding", "jpg",
		"--width", strconv.FormatUint(uint64(r.width), 10),
		"--height", strconv.FormatUint(uint64(r.height), 10),
		"--rotation", strconv.FormatUint(uint64(r.rotation), 10),
		"--timeout", ms(r.duration),
		"--timelapse", ms(r.interval),
		"--quality", strconv.Itoa(jpegQuality),
	}
}

// Start begins the timelapse.
func (r *Raspistill) Start() error {
	r.log.Info(pkg+"starting timelapse", "size", fmt.Sprintf("%dx%d", r.width, r.height), "duration", r.duration.String(), "interval", r.interval.String())
	return r.cam.start(r)
}

// Stop ends the timelapse. Stopping a Raspistill that is not running does
// nothing.
func (r *Raspistill) Stop() error { return r.cam.stop() }

// Read implements io.Reader over the captured JPEG stream. It returns an
// error if Start has not been called.
func (r *Raspistill) Read(p []byte) (int, error) { return r.cam.read(p) }

// IsRunning reports whether the timelapse is in progress.
func (r *Raspistill) IsRunning() bool { return r.cam.running() }
