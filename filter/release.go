//go:build !debug || !withcv
// +build !debug !withcv

/*
DESCRIPTION
  Replaces the debug window of the track filter in builds without the debug
  tag or without OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import "image"

type debugWindow struct{}

func newDebugWindow(name string) debugWindow { return debugWindow{} }

func (d debugWindow) show(img image.Image) {}

func (d debugWindow) close() error { return nil }
