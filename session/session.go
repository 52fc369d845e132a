/*
DESCRIPTION
  session.go provides the driver of a tracking session, over either a batch
  of still images or an online MJPEG source.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package session sequences frames through the motion tracker. A batch
// session ingests still images with Add, tracks every consecutive pair with
// Run and writes the annotated frames with Animate. Stream tracks frames
// from a device.Source until it ends or is cancelled.
package session

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/filter"
	"github.com/ausocean/satori/flow"
	"github.com/ausocean/satori/report"
	"github.com/ausocean/satori/track"
	"github.com/ausocean/utils/logging"
)

const pkg = "session: "

// Errors returned by the batch driver.
var (
	ErrNoImages         = errors.New("no images to process")
	ErrImageConsistency = errors.New("images differ in dimensions or channel count")
	ErrNotRun           = errors.New("tracking has not been run")
	ErrNotAnnotated     = errors.New("not all images have been annotated")
)

// Session holds the frames, annotations and samples of one tracking session.
type Session struct {
	ID uuid.UUID

	cfg config.Config
	log logging.Logger

	mu        sync.Mutex
	images    []image.Image
	annotated []*image.RGBA // annotated[i] is the annotation of images[i+1].
	samples   []report.Sample
	ran       bool
	live      *filter.Track // Filter of a running Stream.
}

// New returns a new Session configured by c.
func New(c config.Config) (*Session, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger in config")
	}
	err := c.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	s := &Session{ID: uuid.New(), cfg: c, log: c.Logger}
	s.log.Info(pkg+"session created", "id", s.ID.String())
	return s, nil
}

// Add decodes the image at path and appends it to the session. PNG, JPEG,
// GIF, BMP and TIFF images are supported.
func (s *Session) Add(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "could not open image")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "could not decode image %s", path)
	}
	s.log.Debug(pkg+"image added", "path", path, "format", format, "size", img.Bounds().Size().String())
	s.AddImage(img)
	return nil
}

// AddImage appends img to the session. Adding invalidates the results of a
// previous Run.
func (s *Session) AddImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	s.ran = false
}

// Len returns the number of images in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Run tracks the session's images in order, annotating the second image of
// every consecutive pair. All pairs are checked for consistent dimensions and
// channel counts before any tracking is done.
func (s *Session) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.images) == 0 {
		s.log.Info(pkg + "no images to process")
		return ErrNoImages
	}
	for i := 0; i < len(s.images)-1; i++ {
		a, b := s.images[i], s.images[i+1]
		if a.Bounds().Size() != b.Bounds().Size() || track.Channels(a) != track.Channels(b) {
			s.log.Error(pkg+"inconsistent image pair", "pair", i, "first", a.Bounds().Size().String(), "second", b.Bounds().Size().String())
			return errors.Wrapf(ErrImageConsistency, "pair %d", i)
		}
	}

	f, err := s.newFilter(io.Discard)
	if err != nil {
		return err
	}
	defer f.Close()

	s.log.Info(pkg+"tracking image pairs", "id", s.ID.String(), "pairs", len(s.images)-1)
	s.annotated = s.annotated[:0]
	s.samples = s.samples[:0]

	f.Process(s.images[0])
	s.samples = append(s.samples, report.NewSample(0, f.Tracker()))
	for i := 1; i < len(s.images); i++ {
		s.annotated = append(s.annotated, f.Process(s.images[i]))
		sample := report.NewSample(i, f.Tracker())
		s.samples = append(s.samples, sample)

		args := []interface{}{"pair", i - 1, "segments", sample.Segments, "active", sample.Active}
		if s.cfg.Verbose {
			s.log.Info(pkg+"processed image pair", args...)
		} else {
			s.log.Debug(pkg+"processed image pair", args...)
		}
	}
	s.ran = true
	return nil
}

// Animate writes the annotated images to outDir as 000.png, 001.png and so
// on. Run must have completed since the last image was added.
func (s *Session) Animate(outDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ran {
		return ErrNotRun
	}
	if len(s.annotated) != len(s.images)-1 {
		return ErrNotAnnotated
	}

	err := os.MkdirAll(outDir, 0o755)
	if err != nil {
		return errors.Wrap(err, "could not create output directory")
	}
	s.log.Info(pkg+"writing annotated images", "dir", outDir, "count", len(s.annotated))
	for i, img := range s.annotated {
		err := writePNG(filepath.Join(outDir, fmt.Sprintf("%03d.png", i)), img)
		if err != nil {
			return err
		}
		if s.cfg.Verbose {
			s.log.Info(pkg+"wrote annotated image", "pair", i)
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create image file")
	}
	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "could not encode %s", path)
	}
	return f.Close()
}

// Samples returns the per frame samples of the last Run or Stream.
func (s *Session) Samples() []report.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.Sample(nil), s.samples...)
}

// Reset selects a new target in a running Stream. It does nothing if no
// Stream is running.
func (s *Session) Reset() {
	s.mu.Lock()
	f := s.live
	s.mu.Unlock()
	if f == nil {
		s.log.Debug(pkg + "reset without running stream, ignoring")
		return
	}
	s.log.Info(pkg + "resetting target")
	f.Reset()
}

// Close releases the session's images.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = nil
	s.annotated = nil
	s.ran = false
	return nil
}

func (s *Session) newFilter(dst io.Writer) (*filter.Track, error) {
	fl, err := flow.New(s.cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create feature tracker")
	}
	f, err := filter.NewTrack(dst, s.cfg, fl)
	if err != nil {
		fl.Close()
		return nil, errors.Wrap(err, "could not create track filter")
	}
	return f, nil
}
