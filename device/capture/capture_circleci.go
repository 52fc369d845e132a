//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  capture_circleci.go replaces the OpenCV capture Source for builds without
  OpenCV.

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

	"github.com/ausocean/satori/config"
	"github.com/ausocean/utils/logging"
)

// ErrNoOpenCV is returned by Start in builds without OpenCV.
var ErrNoOpenCV = errors.New("capture requires a build with the withcv tag")

// Capture stands in for the OpenCV capture Source; it cannot be started.
type Capture struct {
	log logging.Logger
	cfg config.Config
}

// New returns a new Capture.
func New(l logging.Logger) *Capture { return &Capture{log: l} }

// Name returns the name of the device.
func (c *Capture) Name() string { return "Capture" }

// Set validates the capture fields of cfg.
func (c *Capture) Set(cfg config.Config) error {
	err := validate(&cfg)
	c.cfg = cfg
	return err
}

// Start always fails with ErrNoOpenCV.
func (c *Capture) Start() error {
	c.log.Error(pkg + ErrNoOpenCV.Error())
	return ErrNoOpenCV
}

func (c *Capture) Stop() error                { return nil }
func (c *Capture) Read(p []byte) (int, error) { return 0, ErrNoOpenCV }
func (c *Capture) IsRunning() bool            { return false }
