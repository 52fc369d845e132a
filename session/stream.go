/*
DESCRIPTION
  stream.go provides tracking of online MJPEG sources.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ausocean/satori/codec/mjpeg"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/satori/filter"
	"github.com/ausocean/satori/report"
	"github.com/ausocean/satori/track"
)

// Stream starts src and tracks its frames until src ends or ctx is
// cancelled, in which case src is stopped and Stream returns nil. Annotated
// frames are written to the configured OutputPath as 000.jpg, 001.jpg and so
// on, or discarded if there is no OutputPath.
func (s *Session) Stream(ctx context.Context, src device.Source) error {
	var dst io.Writer = io.Discard
	if s.cfg.OutputPath != "" {
		err := os.MkdirAll(s.cfg.OutputPath, 0o755)
		if err != nil {
			return errors.Wrap(err, "could not create output directory")
		}
		dst = &frameFiles{dir: s.cfg.OutputPath}
	}

	f, err := s.newFilter(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	s.mu.Lock()
	s.live = f
	s.samples = s.samples[:0]
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.live = nil
		s.mu.Unlock()
	}()

	err = src.Start()
	if err != nil {
		return errors.Wrapf(err, "could not start %s", src.Name())
	}
	s.log.Info(pkg+"streaming", "id", s.ID.String(), "source", src.Name())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.log.Info(pkg+"stream cancelled, stopping source", "source", src.Name())
			err := src.Stop()
			if err != nil {
				s.log.Warning(pkg+"could not stop source", "error", err.Error())
			}
		case <-done:
		}
	}()

	w := &sampler{ctx: ctx, s: s, f: f}
	err = mjpeg.NewLexer(s.log, 0).Lex(w, src)
	if ctx.Err() != nil {
		s.log.Info(pkg+"stream ended", "frames", w.n)
		return nil
	}

	stopErr := src.Stop()
	if stopErr != nil {
		s.log.Warning(pkg+"could not stop source", "error", stopErr.Error())
	}
	if err == io.EOF {
		s.log.Info(pkg+"end of stream", "frames", w.n)
		return nil
	}
	return errors.Wrap(err, "could not lex stream")
}

// sampler passes frames to the track filter and records a sample per frame.
// Frames that cannot be decoded are logged and skipped. Failure to write an
// annotated frame ends the stream.
type sampler struct {
	ctx context.Context
	s   *Session
	f   *filter.Track
	n   int
}

func (w *sampler) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	_, err := w.f.Write(p)
	switch {
	case errors.Is(err, filter.ErrDecode):
		w.s.log.Warning(pkg+"could not track frame", "frame", w.n, "error", err.Error())
		return len(p), nil
	case err != nil:
		w.s.log.Error(pkg+"could not write frame", "frame", w.n, "error", err.Error())
		return 0, errors.Wrapf(err, "frame %d", w.n)
	}
	var sample report.Sample
	w.f.Inspect(func(t *track.Tracker) { sample = report.NewSample(w.n, t) })
	w.s.mu.Lock()
	w.s.samples = append(w.s.samples, sample)
	w.s.mu.Unlock()
	w.n++
	return len(p), nil
}

// frameFiles writes each frame to its own numbered file.
type frameFiles struct {
	dir string
	n   int
}

func (w *frameFiles) Write(p []byte) (int, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%03d.jpg", w.n))
	err := os.WriteFile(path, p, 0o644)
	if err != nil {
		return 0, fmt.Errorf("could not write frame: %w", err)
	}
	w.n++
	return len(p), nil
}
