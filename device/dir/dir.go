/*
DESCRIPTION
  dir.go provides an implementation of the Source interface for a directory
  into which still images are placed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dir provides an implementation of Source for a watched directory
// of still images. Each image created in the directory becomes a JPEG frame
// in the order the images appear. Images should be moved into the directory
// once complete, e.g. by renaming, so that no partial file is seen.
package dir

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/utils/logging"
)

// Used to indicate package in logging.
const pkg = "dir: "

// jpegQuality is the quality of frames re-encoded from other formats.
const jpegQuality = 90

// Extensions of the images picked up from the directory.
var extensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Dir is an implementation of the Source interface for a watched directory.
type Dir struct {
	mu        sync.Mutex
	log       logging.Logger
	path      string
	set       bool
	isRunning bool

	w    *fsnotify.Watcher
	pr   *io.PipeReader
	pw   *io.PipeWriter
	done chan struct{}
	wg   sync.WaitGroup
}

// New returns a new Dir.
func New(l logging.Logger) *Dir { return &Dir{log: l} }

// Name returns the name of the device.
func (d *Dir) Name() string { return "Dir" }

// Set takes the InputPath field of c, which must be a directory.
func (d *Dir) Set(c config.Config) error {
	fi, err := os.Stat(c.InputPath)
	if err != nil {
		return fmt.Errorf("could not stat input path: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("input path %s is not a directory", c.InputPath)
	}
	d.path = c.InputPath
	d.set = true
	return nil
}

// Start begins watching the directory.
func (d *Dir) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set {
		return errors.New("dir has not been set with config")
	}
	if d.isRunning {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	err = w.Add(d.path)
	if err != nil {
		w.Close()
		return fmt.Errorf("could not watch %s: %w", d.path, err)
	}

	d.w = w
	d.pr, d.pw = io.Pipe()
	d.done = make(chan struct{})
	d.isRunning = true

	d.wg.Add(1)
	go d.watch(w, d.pw, d.done)
	d.log.Info(pkg+"watching directory", "path", d.path)
	return nil
}

// watch writes each image created in the directory to pw until done is
// closed or the watcher fails.
func (d *Dir) watch(w *fsnotify.Watcher, pw *io.PipeWriter, done chan struct{}) {
	defer d.wg.Done()
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) || !extensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}
			err := d.emit(pw, ev.Name)
			if errors.Is(err, io.ErrClosedPipe) {
				return
			}
			if err != nil {
				d.log.Warning(pkg+"skipping image", "file", ev.Name, "error", err.Error())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			d.log.Error(pkg+"watcher error", "error", err.Error())
		}
	}
}

// emit writes the image at path to pw as a JPEG frame.
func (d *Dir) emit(pw *io.PipeWriter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}
	d.log.Debug(pkg+"new image", "file", path, "format", format, "size", img.Bounds().Size().String())
	return jpeg.Encode(pw, img, &jpeg.Options{Quality: jpegQuality})
}

// Stop stops watching the directory. Readers see io.EOF once any frame in
// progress has been read.
func (d *Dir) Stop() error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	close(d.done)
	d.pw.Close()
	err := d.w.Close()
	d.mu.Unlock()

	d.wg.Wait()
	if err != nil {
		return fmt.Errorf("could not close watcher: %w", err)
	}
	return nil
}

// Read implements io.Reader.
func (d *Dir) Read(p []byte) (int, error) {
	d.mu.Lock()
	pr := d.pr
	d.mu.Unlock()
	if pr == nil {
		return 0, errors.New("dir not started")
	}
	return pr.Read(p)
}

// IsRunning is used to determine if the directory is being watched.
func (d *Dir) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}
