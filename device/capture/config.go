/*
DESCRIPTION
  config.go provides configuration validation shared by the OpenCV capture
  Source and its stand in for builds without OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package capture provides an implementation of Source for cameras and
// streams opened through OpenCV. Without the withcv build tag the Source
// cannot be started.
package capture

import (
	"errors"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
)

// Used to indicate package in logging.
const pkg = "capture: "

// Configuration defaults.
const (
	defaultInputPath = "0"
	defaultFrameRate = 25
	defaultWidth     = 640
	defaultHeight    = 480
)

// Configuration field errors.
var (
	errBadFrameRate = errors.New("frame rate bad or unset, defaulting")
	errBadWidth     = errors.New("width bad or unset, defaulting")
	errBadHeight    = errors.New("height bad or unset, defaulting")
	errBadInputPath = errors.New("input path bad or unset, defaulting")
)

// validate defaults the fields of c used by Capture, returning a
// device.MultiError naming each defaulted field.
func validate(c *config.Config) error {
	var errs device.MultiError
	if c.InputPath == "" {
		errs = append(errs, errBadInputPath)
		c.InputPath = defaultInputPath
	}
	if c.Width == 0 {
		errs = append(errs, errBadWidth)
		c.Width = defaultWidth
	}
	if c.Height == 0 {
		errs = append(errs, errBadHeight)
		c.Height = defaultHeight
	}
	if c.FrameRate == 0 {
		errs = append(errs, errBadFrameRate)
		c.FrameRate = defaultFrameRate
	}
	if len(errs) != 0 {
		return errs
	}
	return nil
}
