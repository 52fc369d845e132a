/*
DESCRIPTION
  file.go provides a Source that reads MJPEG from a file.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides a Source for files of MJPEG data or concatenated
// JPEG images, optionally replayed in a loop.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ausocean/satori/config"
	"github.com/ausocean/utils/logging"
)

const pkg = "file: "

var (
	errNoPath     = errors.New("no input path")
	errNotStarted = errors.New("file not started")
)

// File reads frames from the file at InputPath.
type File struct {
	log  logging.Logger
	path string
	loop bool

	mu     sync.Mutex
	f      *os.File
	rewind int // Times the file has been replayed since Start.
}

// New returns a File that logs to l. Set must be called before Start.
func New(l logging.Logger) *File { return &File{log: l} }

// Name returns "File".
func (d *File) Name() string { return "File" }

// Set takes InputPath and Loop from c. An empty InputPath is an error.
func (d *File) Set(c config.Config) error {
	if c.InputPath == "" {
		return errNoPath
	}
	d.path, d.loop = c.InputPath, c.Loop
	return nil
}

// Start opens the file.
func (d *File) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.path == "" {
		return errNoPath
	}
	f, err := os.Open(d.path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", d.path, err)
	}
	d.f, d.rewind = f, 0
	d.log.Info(pkg+"opened input", "path", d.path, "loop", d.loop)
	return nil
}

// Stop closes the file. Further reads fail until Start is called again.
func (d *File) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	if err != nil {
		return fmt.Errorf("could not close %s: %w", d.path, err)
	}
	return nil
}

// Read implements io.Reader. At the end of the file Read returns io.EOF, or
// with Loop set carries on from the start of the file.
func (d *File) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return 0, errNotStarted
	}

	n, err := d.f.Read(p)
	if n != 0 || err != io.EOF || !d.loop {
		return n, err
	}

	_, err = d.f.Seek(0, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("could not rewind %s: %w", d.path, err)
	}
	d.rewind++
	d.log.Info(pkg+"replaying input", "path", d.path, "replay", d.rewind)
	return d.f.Read(p)
}

// IsRunning reports whether the file is open.
func (d *File) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f != nil
}
