/*
NAME
  filter.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package filter provides the interface and implementations of the filters
// to be used on lexed MJPEG frames.
package filter

import (
	"errors"
	"io"
)

const pkg = "filter: "

// ErrDecode is returned, wrapped, by filters given a frame they cannot decode.
var ErrDecode = errors.New("frame can't be decoded")

// Interface for all filters.
type Filter interface {
	io.WriteCloser
}

// The NoOp filter performs no operation on the data that is being received,
// it passes it on to the destination with no changes.
type NoOp struct {
	dst io.Writer
}

func NewNoOp(dst io.Writer) *NoOp { return &NoOp{dst: dst} }

func (n *NoOp) Write(p []byte) (int, error) { return n.dst.Write(p) }

func (n *NoOp) Close() error { return nil }
