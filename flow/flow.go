/*
DESCRIPTION
  flow.go provides the feature point tracker interface used to refine the
  tracking seed window and to annotate frames.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flow provides sparse feature point tracking across frames.
//
// Builds with the withcv tag follow corners with pyramidal Lucas-Kanade
// optical flow using OpenCV. Other builds provide a tracker that never
// reports any points, in which case tracking falls back to motion only
// seed windows.
package flow

import "image"

// Used to indicate package in logging.
const pkg = "flow: "

// Tracker follows a sparse set of feature points from frame to frame.
type Tracker interface {
	// Update advances the points into img. The first frame, and any frame
	// following one on which every point was lost, detects new points.
	Update(img image.Image) error

	// Points returns the points found on the most recent frame. The slice is
	// owned by the tracker and is only valid until the next Update.
	Points() []image.Point

	// Close releases any resources held by the tracker.
	Close() error
}
