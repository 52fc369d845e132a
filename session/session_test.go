/*
DESCRIPTION
  session_test.go provides testing for batch and stream tracking sessions.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/satori/device"
	"github.com/ausocean/satori/filter"
	"github.com/ausocean/utils/logging"
)

var red = color.RGBA{0xff, 0, 0, 0xff}

// squareFrame returns a black frame of the given size with a red 20x20
// square at x.
func squareFrame(size image.Point, x int) *image.RGBA {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(x, 30, x+20, 50), &image.Uniform{red}, image.Point{}, draw.Src)
	return img
}

func newTestSession(t *testing.T, c config.Config) *Session {
	c.Logger = (*logging.TestLogger)(t)
	c.FileFPS = 25
	s, err := New(c)
	if err != nil {
		t.Fatalf("could not create session: %v", err)
	}
	return s
}

func TestNewNoLogger(t *testing.T) {
	_, err := New(config.Config{})
	if err == nil {
		t.Error("expected error for config without logger")
	}
}

func TestRunNoImages(t *testing.T) {
	s := newTestSession(t, config.Config{})
	err := s.Run()
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("unexpected error, got: %v, want: %v", err, ErrNoImages)
	}
	err = s.Animate(t.TempDir())
	if !errors.Is(err, ErrNotRun) {
		t.Errorf("unexpected error from Animate, got: %v, want: %v", err, ErrNotRun)
	}
}

func TestRunInconsistent(t *testing.T) {
	size := image.Pt(80, 80)
	tests := []struct {
		name   string
		images []image.Image
	}{
		{
			name:   "dimensions",
			images: []image.Image{squareFrame(size, 10), squareFrame(size, 12), squareFrame(image.Pt(80, 60), 14)},
		},
		{
			name:   "channels",
			images: []image.Image{squareFrame(size, 10), image.NewGray(image.Rectangle{Max: size})},
		},
	}

	for _, test := range tests {
		s := newTestSession(t, config.Config{})
		for _, img := range test.images {
			s.AddImage(img)
		}
		err := s.Run()
		if !errors.Is(err, ErrImageConsistency) {
			t.Errorf("%s: unexpected error, got: %v, want: %v", test.name, err, ErrImageConsistency)
		}
		if len(s.Samples()) != 0 {
			t.Errorf("%s: frames tracked despite inconsistency", test.name)
		}
		err = s.Animate(t.TempDir())
		if !errors.Is(err, ErrNotRun) {
			t.Errorf("%s: unexpected error from Animate, got: %v, want: %v", test.name, err, ErrNotRun)
		}
	}
}

func TestRunAnimate(t *testing.T) {
	const n = 5
	size := image.Pt(80, 80)
	s := newTestSession(t, config.Config{AutoReset: true, MotionMinArea: 100})
	for i := 0; i < n; i++ {
		s.AddImage(squareFrame(size, 10+2*i))
	}
	if s.Len() != n {
		t.Fatalf("unexpected image count: %d", s.Len())
	}

	err := s.Run()
	if err != nil {
		t.Fatalf("unexpected error from Run: %v", err)
	}

	samples := s.Samples()
	if len(samples) != n {
		t.Fatalf("unexpected sample count, got: %d, want: %d", len(samples), n)
	}
	last := samples[n-1]
	if !last.Active {
		t.Fatal("target not acquired")
	}
	x := 10 + 2*(n-1)
	if c := last.Center; c.X < float64(x) || c.X > float64(x+20) || c.Y < 30 || c.Y > 50 {
		t.Errorf("track centre %v outside the square", c)
	}

	dir := filepath.Join(t.TempDir(), "out")
	err = s.Animate(dir)
	if err != nil {
		t.Fatalf("unexpected error from Animate: %v", err)
	}
	for i := 0; i < n-1; i++ {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("%03d.png", i)))
		if err != nil {
			t.Fatalf("could not open annotated image %d: %v", i, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("could not decode annotated image %d: %v", i, err)
		}
		if img.Bounds().Size() != size {
			t.Errorf("image %d: unexpected size: %v", i, img.Bounds().Size())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, fmt.Sprintf("%03d.png", n-1))); !os.IsNotExist(err) {
		t.Errorf("unexpected extra annotated image: %v", err)
	}

	s.AddImage(squareFrame(size, 30))
	err = s.Animate(dir)
	if !errors.Is(err, ErrNotRun) {
		t.Errorf("unexpected error after adding an image, got: %v, want: %v", err, ErrNotRun)
	}
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create image file: %v", err)
	}
	err = png.Encode(f, squareFrame(image.Pt(60, 60), 10))
	f.Close()
	if err != nil {
		t.Fatalf("could not encode image: %v", err)
	}
	bad := filepath.Join(dir, "bad.png")
	err = os.WriteFile(bad, []byte("not an image"), 0o644)
	if err != nil {
		t.Fatalf("could not write file: %v", err)
	}

	s := newTestSession(t, config.Config{})
	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: path},
		{path: filepath.Join(dir, "missing.png"), wantErr: true},
		{path: bad, wantErr: true},
	}
	for _, test := range tests {
		err := s.Add(test.path)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: unexpected error: %v", test.path, err)
		}
	}
	if s.Len() != 1 {
		t.Errorf("unexpected image count, got: %d, want: 1", s.Len())
	}
}

func TestStream(t *testing.T) {
	const n = 4
	out := t.TempDir()
	s := newTestSession(t, config.Config{AutoReset: true, MotionMinArea: 100, OutputPath: out})
	src := device.NewManualInput()

	var frames [][]byte
	for i := 0; i < n; i++ {
		var buf bytes.Buffer
		err := jpeg.Encode(&buf, squareFrame(image.Pt(80, 80), 10+2*i), &jpeg.Options{Quality: 95})
		if err != nil {
			t.Fatalf("could not encode frame: %v", err)
		}
		frames = append(frames, buf.Bytes())
	}

	errs := make(chan error, 1)
	go func() {
		for !src.IsRunning() {
			time.Sleep(time.Millisecond)
		}
		for _, f := range frames {
			_, err := src.Write(f)
			if err != nil {
				errs <- err
				return
			}
		}
		errs <- src.Close()
	}()

	err := s.Stream(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error from Stream: %v", err)
	}
	if err := <-errs; err != nil {
		t.Fatalf("could not write frames: %v", err)
	}
	if src.IsRunning() {
		t.Error("source still running")
	}

	samples := s.Samples()
	if len(samples) != n {
		t.Fatalf("unexpected sample count, got: %d, want: %d", len(samples), n)
	}
	if !samples[n-1].Active {
		t.Error("target not acquired")
	}
	for i := 0; i < n; i++ {
		_, err := os.Stat(filepath.Join(out, fmt.Sprintf("%03d.jpg", i)))
		if err != nil {
			t.Errorf("frame %d not written: %v", i, err)
		}
	}
}

func TestStreamCancel(t *testing.T) {
	s := newTestSession(t, config.Config{})
	src := device.NewManualInput()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for !src.IsRunning() {
			time.Sleep(time.Millisecond)
		}
		s.Reset()
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- s.Stream(ctx, src) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error from cancelled Stream: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancellation")
	}
	if src.IsRunning() {
		t.Error("source still running after cancellation")
	}
}

var errFull = errors.New("no space left on device")

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errFull }

func TestSamplerWrite(t *testing.T) {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, squareFrame(image.Pt(80, 80), 10), &jpeg.Options{Quality: 95})
	if err != nil {
		t.Fatalf("could not encode frame: %v", err)
	}
	good := buf.Bytes()
	bad := []byte{0xff, 0xd8, 0x00, 0xff, 0xd9}

	tests := []struct {
		name    string
		dst     io.Writer
		frame   []byte
		wantErr error
		samples int
	}{
		{name: "good frame", dst: io.Discard, frame: good, samples: 1},
		{name: "undecodable frame", dst: io.Discard, frame: bad, samples: 0},
		{name: "destination failure", dst: failWriter{}, frame: good, wantErr: errFull, samples: 0},
	}

	for _, test := range tests {
		s := newTestSession(t, config.Config{})
		f, err := s.newFilter(test.dst)
		if err != nil {
			t.Fatalf("%s: could not create filter: %v", test.name, err)
		}
		w := &sampler{ctx: context.Background(), s: s, f: f}
		n, err := w.Write(test.frame)
		f.Close()

		switch {
		case test.wantErr == nil && err != nil:
			t.Errorf("%s: unexpected error: %v", test.name, err)
		case test.wantErr != nil && !errors.Is(err, test.wantErr):
			t.Errorf("%s: unexpected error, got: %v, want: %v", test.name, err, test.wantErr)
		case test.wantErr != nil && errors.Is(err, filter.ErrDecode):
			t.Errorf("%s: write failure reported as a decode error", test.name)
		case err == nil && n != len(test.frame):
			t.Errorf("%s: unexpected count, got: %d, want: %d", test.name, n, len(test.frame))
		}
		if got := len(s.Samples()); got != test.samples {
			t.Errorf("%s: unexpected sample count, got: %d, want: %d", test.name, got, test.samples)
		}
	}
}

func TestStreamWriteError(t *testing.T) {
	out := t.TempDir()
	// A directory in place of the first frame file makes its write fail.
	err := os.Mkdir(filepath.Join(out, "000.jpg"), 0o755)
	if err != nil {
		t.Fatalf("could not create directory: %v", err)
	}
	s := newTestSession(t, config.Config{OutputPath: out})
	src := device.NewManualInput()

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, squareFrame(image.Pt(80, 80), 10), &jpeg.Options{Quality: 95})
	if err != nil {
		t.Fatalf("could not encode frame: %v", err)
	}

	go func() {
		for !src.IsRunning() {
			time.Sleep(time.Millisecond)
		}
		src.Write(buf.Bytes())
		src.Write(buf.Bytes())
		src.Close()
	}()

	err = s.Stream(context.Background(), src)
	if err == nil {
		t.Fatal("expected error for failed frame write")
	}
	if errors.Is(err, filter.ErrDecode) {
		t.Errorf("write failure reported as a decode error: %v", err)
	}
	if n := len(s.Samples()); n != 0 {
		t.Errorf("unexpected sample count, got: %d, want: 0", n)
	}
}
