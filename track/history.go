/*
DESCRIPTION
  history.go provides the ring of recent grayscale frames from which frame
  differences are taken.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package track

import (
	"image"

	"github.com/disintegration/gift"
)

// Channels returns 1 for greyscale images and 3 otherwise. Alpha is not
// used by the tracker and is not counted.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	default:
		return 3
	}
}

// historyLen is the number of grayscale frames held by the history ring.
const historyLen = 4

// history is a fixed capacity ring of grayscale frames. Slots are allocated
// once per frame size and written in place.
type history struct {
	buf  []*image.Gray // Underlying buffer.
	i    int           // Write cursor; the slot the next push overwrites.
	size image.Point   // Dimensions of every slot.
	g    *gift.GIFT    // Grayscale conversion.
}

func newHistory() *history {
	return &history{g: gift.New(gift.Grayscale())}
}

// alloc (re)creates all slots with the given size, zero filled, and rewinds
// the cursor.
func (h *history) alloc(size image.Point) {
	h.buf = make([]*image.Gray, historyLen)
	for i := range h.buf {
		h.buf[i] = image.NewGray(image.Rectangle{Max: size})
	}
	h.size = size
	h.i = 0
}

// push converts img to grayscale into the slot at the cursor and advances the
// cursor. The ring is allocated by the first push and reallocated if the
// frame size changes.
func (h *history) push(img image.Image) {
	size := img.Bounds().Size()
	if h.buf == nil || size != h.size {
		h.alloc(size)
	}
	h.g.Draw(h.buf[h.i], img)
	h.i = (h.i + 1) % historyLen
}

// current returns the frame written by the most recent push.
func (h *history) current() *image.Gray {
	return h.buf[(h.i+historyLen-1)%historyLen]
}

// previous returns the frame that the next push will overwrite, i.e. the
// oldest frame in the ring. Until the ring has been filled this is a zero
// frame.
func (h *history) previous() *image.Gray {
	return h.buf[h.i]
}

// frames returns the ring contents from oldest to newest.
func (h *history) frames() []*image.Gray {
	f := make([]*image.Gray, 0, len(h.buf))
	for k := range h.buf {
		f = append(f, h.buf[(h.i+k)%historyLen])
	}
	return f
}

// release drops the slots.
func (h *history) release() {
	h.buf = nil
	h.size = image.Point{}
	h.i = 0
}
