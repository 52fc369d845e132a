//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  Displays annotated frames of the track filter in a window.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"

	"gocv.io/x/gocv"
)

// debugWindow shows annotated frames as they are produced.
type debugWindow struct {
	window *gocv.Window
}

func newDebugWindow(name string) debugWindow {
	return debugWindow{window: gocv.NewWindow(name)}
}

func (d debugWindow) show(img image.Image) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	defer m.Close()
	d.window.IMShow(m)
	d.window.WaitKey(1)
}

func (d debugWindow) close() error {
	return d.window.Close()
}
