/*
DESCRIPTION
  device.go provides Source, an interface that describes a configurable
  frame source that can be started and stopped and from which MJPEG data may
  be read.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for frame
// sources that can be started and stopped and from which MJPEG data can be
// obtained.
package device

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ausocean/satori/config"
)

// Source describes a configurable frame source. Source is an io.Reader of
// MJPEG data, i.e. concatenated JPEG images.
type Source interface {
	io.Reader

	// Name returns the name of the Source.
	Name() string

	// Set allows for configuration of the Source using a Config struct. All,
	// some or none of the fields of the Config struct may be used for
	// configuration by an implementation. An implementation should specify
	// what fields are considered.
	Set(c config.Config) error

	// Start will start the Source capturing frames; after which the Read
	// method may be called to obtain the data.
	Start() error

	// Stop will stop the Source from capturing frames. From this point Reads
	// will no longer be successful.
	Stop() error

	// IsRunning is used to determine if the source is running.
	IsRunning() bool
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of configuration parameters
// for Sources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ManualInput is an implementation of the Source interface that represents
// a manual input mechanism, i.e. data is written to this input manually through
// software (ManualInput also implements io.Writer, unlike other implementations).
// The ManualInput employs an io.Pipe, as such, every write must be accompanied
// by a full read (or reads) of the bytes, otherwise blocking will occur (and
// vice versa).
type ManualInput struct {
	mu        sync.Mutex
	isRunning bool
	reader    *io.PipeReader
	writer    *io.PipeWriter
}

// NewManualInput provides a new ManualInput.
func NewManualInput() *ManualInput {
	return &ManualInput{}
}

// Read reads from the manual input and puts the bytes into p.
func (m *ManualInput) Read(p []byte) (int, error) {
	m.mu.Lock()
	r := m.reader
	running := m.isRunning
	m.mu.Unlock()
	if !running {
		return 0, errors.New("manual input has not been started, can't read")
	}
	return r.Read(p)
}

// Name returns the name of ManualInput i.e. "ManualInput".
func (m *ManualInput) Name() string { return "ManualInput" }

// Set is a stub to satisfy the Source interface; no configuration fields are
// required by ManualInput.
func (m *ManualInput) Set(c config.Config) error { return nil }

// Start sets the ManualInput isRunning flag to true and opens the pipe.
func (m *ManualInput) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isRunning = true
	m.reader, m.writer = io.Pipe()
	return nil
}

// Stop closes the pipe and sets the isRunning flag to false.
func (m *ManualInput) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reader != nil {
		m.reader.Close()
	}
	m.isRunning = false
	return nil
}

// IsRunning returns the value of the isRunning flag to indicate if Start has
// been called (and Stop has not been called after).
func (m *ManualInput) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// Write writes p to the ManualInput's writer side of its pipe.
func (m *ManualInput) Write(p []byte) (int, error) {
	m.mu.Lock()
	w := m.writer
	running := m.isRunning
	m.mu.Unlock()
	if !running {
		return 0, errors.New("manual input has not been started, can't write")
	}
	return w.Write(p)
}

// Close closes the writer side of the pipe so that readers see io.EOF once
// all written data has been read.
func (m *ManualInput) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == nil {
		return nil
	}
	return m.writer.Close()
}
