/*
DESCRIPTION
  track.go provides a filter that tracks the dominant moving object of a
  JPEG frame stream and writes annotated frames to its destination.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"sync"

	"github.com/ausocean/satori/annotate"
	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/flow"
	"github.com/ausocean/satori/track"
	"github.com/ausocean/utils/logging"
)

const jpegQuality = 90

var _ Filter = (*Track)(nil)

// Track is a filter that runs every frame through a motion tracker and a
// feature point tracker, and writes the annotated frame to dst as a JPEG.
type Track struct {
	dst  io.Writer
	log  logging.Logger
	mu   sync.Mutex
	tr   *track.Tracker
	fl   flow.Tracker
	buf  bytes.Buffer
	show debugWindow
}

// NewTrack returns a new Track filter writing to dst. fl may be nil, in which
// case no feature points are followed.
func NewTrack(dst io.Writer, c config.Config, fl flow.Tracker) (*Track, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger in config")
	}
	tr, err := track.New(c)
	if err != nil {
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}
	return &Track{
		dst:  dst,
		log:  c.Logger,
		tr:   tr,
		fl:   fl,
		show: newDebugWindow("satori"),
	}, nil
}

// Process updates the trackers with img and returns an annotated copy of it.
// img itself is not modified.
func (t *Track) Process(img image.Image) *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pts []image.Point
	if t.fl != nil {
		err := t.fl.Update(img)
		if err != nil {
			t.log.Warning(pkg+"could not update feature points", "error", err.Error())
		}
		pts = t.fl.Points()
	}
	t.tr.Update(img)

	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	annotate.Frame(out, t.tr, pts)
	t.show.show(out)
	return out
}

// Write implements io.Writer. f must hold a single JPEG frame. The frame is
// tracked and its annotated version is encoded and written to dst. An error
// wrapping ErrDecode means f was not tracked; any other error comes from
// encoding or from dst.
func (t *Track) Write(f []byte) (int, error) {
	img, err := jpeg.Decode(bytes.NewReader(f))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	out := t.Process(img)

	t.buf.Reset()
	err = jpeg.Encode(&t.buf, out, &jpeg.Options{Quality: jpegQuality})
	if err != nil {
		return 0, fmt.Errorf("could not encode annotated frame: %w", err)
	}
	_, err = t.dst.Write(t.buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("could not write annotated frame: %w", err)
	}
	return len(f), nil
}

// Reset selects a new target, refined by the current feature points if there
// are any.
func (t *Track) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	var pts []image.Point
	if t.fl != nil {
		pts = t.fl.Points()
	}
	t.tr.ResetWithPoints(pts)
}

// Tracker returns the underlying motion tracker. Callers must not use it
// concurrently with Write, Process or Reset; see Inspect.
func (t *Track) Tracker() *track.Tracker { return t.tr }

// Inspect calls fn with the underlying motion tracker while holding the
// filter's lock.
func (t *Track) Inspect(fn func(*track.Tracker)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.tr)
}

// Close implements io.Closer. It releases the trackers but does not close
// dst.
func (t *Track) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.tr.Close()
	if err != nil {
		return fmt.Errorf("could not close tracker: %w", err)
	}
	if t.fl != nil {
		err = t.fl.Close()
		if err != nil {
			return fmt.Errorf("could not close feature tracker: %w", err)
		}
	}
	return t.show.close()
}
