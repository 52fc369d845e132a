//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  flow_circleci.go provides a stub Tracker for builds without OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"image"

	"github.com/ausocean/satori/config"
)

// NoPoints is a Tracker that never finds any points.
type NoPoints struct{}

// New returns a NoPoints tracker; feature tracking requires the withcv build
// tag.
func New(c config.Config) (Tracker, error) {
	if c.Logger != nil {
		c.Logger.Debug(pkg + "built without OpenCV, feature points disabled")
	}
	return NoPoints{}, nil
}

func (NoPoints) Update(img image.Image) error { return nil }
func (NoPoints) Points() []image.Point        { return nil }
func (NoPoints) Close() error                 { return nil }
