/*
NAME
  lex.go

DESCRIPTION
  lex.go provides a lexer to extract separate JPEG images from an MJPEG
  stream or a file of concatenated JPEG images.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mjpeg provides lexing of MJPEG streams into JPEG frames.
package mjpeg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/utils/logging"
)

// JPEG markers.
const (
	marker = 0xff
	soi    = 0xd8 // Start of image.
	eoi    = 0xd9 // End of image.
)

// ErrNotFrameStart is returned when the data between frames does not begin
// with a start of image marker.
var ErrNotFrameStart = errors.New("not JPEG frame start")

var noDelay = make(chan time.Time)

func init() {
	close(noDelay)
}

// Lexer splits a stream into JPEG frames.
type Lexer struct {
	log     logging.Logger
	delay   time.Duration
	bufSize int
}

// NewLexer returns a Lexer that performs successive writes not earlier than
// delay apart. A zero delay writes frames as fast as they are read.
func NewLexer(l logging.Logger, delay time.Duration) *Lexer {
	return &Lexer{log: l, delay: delay, bufSize: 4 << 10}
}

// Lex parses JPEG frames read from src into separate writes to dst. Embedded
// images, such as EXIF thumbnails, are kept within their enclosing frame.
// Lex returns io.EOF if src ends on a frame boundary and
// io.ErrUnexpectedEOF if it ends within a frame. Errors from dst are
// returned unwrapped.
func (l *Lexer) Lex(dst io.Writer, src io.Reader) error {
	var tick <-chan time.Time
	if l.delay == 0 {
		tick = noDelay
	} else {
		ticker := time.NewTicker(l.delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	r := bufio.NewReader(src)
	for n := 0; ; n++ {
		buf := make([]byte, 2, l.bufSize)
		_, err := io.ReadFull(r, buf)
		switch {
		case err == io.EOF:
			l.log.Debug("end of stream", "frames", n)
			return io.EOF
		case err != nil:
			return err
		}
		if buf[0] != marker || buf[1] != soi {
			return fmt.Errorf("%w: %#v", ErrNotFrameStart, buf)
		}

		depth := 1
		var last byte
		for depth > 0 {
			b, err := r.ReadByte()
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			if err != nil {
				return err
			}
			buf = append(buf, b)

			if last == marker {
				switch b {
				case soi:
					depth++
				case eoi:
					depth--
				}
			}
			last = b
		}

		<-tick
		l.log.Debug("writing frame", "len(buf)", len(buf))
		_, err = dst.Write(buf)
		if err != nil {
			return err
		}
	}
}
