/*
DESCRIPTION
  motion_test.go provides testing for the frame history, motion history
  segmentation and seed window selection.

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
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func grayFrame(size image.Point, v uint8) *image.Gray {
	img := image.NewGray(image.Rectangle{Max: size})
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestHistoryRing(t *testing.T) {
	size := image.Pt(4, 3)
	for n := 1; n <= 10; n++ {
		h := newHistory()
		for k := 1; k <= n; k++ {
			h.push(grayFrame(size, uint8(10*k)))
		}

		// Oldest to newest; slots not yet written are zero.
		var want []uint8
		for k := n - historyLen + 1; k <= n; k++ {
			if k < 1 {
				want = append(want, 0)
				continue
			}
			want = append(want, uint8(10*k))
		}

		var got []uint8
		for _, f := range h.frames() {
			if f.Bounds().Size() != size {
				t.Fatalf("n=%d: unexpected slot size: %v", n, f.Bounds().Size())
			}
			got = append(got, f.Pix[0])
		}
		if !cmp.Equal(got, want) {
			t.Errorf("n=%d: unexpected ring contents, got: %v, want: %v", n, got, want)
		}
		if h.current().Pix[0] != want[historyLen-1] {
			t.Errorf("n=%d: unexpected current frame value: %d", n, h.current().Pix[0])
		}
		if h.previous().Pix[0] != want[0] {
			t.Errorf("n=%d: unexpected previous frame value: %d", n, h.previous().Pix[0])
		}
	}
}

func TestHistoryRealloc(t *testing.T) {
	h := newHistory()
	h.push(grayFrame(image.Pt(4, 4), 50))
	h.push(grayFrame(image.Pt(4, 4), 60))
	h.push(grayFrame(image.Pt(8, 2), 70))

	for i, f := range h.frames() {
		if f.Bounds().Size() != image.Pt(8, 2) {
			t.Errorf("slot %d not reallocated, size: %v", i, f.Bounds().Size())
		}
	}
	if h.previous().Pix[0] != 0 {
		t.Errorf("old frame survived reallocation: %d", h.previous().Pix[0])
	}
	if h.current().Pix[0] != 70 {
		t.Errorf("unexpected current frame value: %d", h.current().Pix[0])
	}
}

func TestSilhouetteThreshold(t *testing.T) {
	size := image.Pt(16, 16)
	prev := image.NewGray(image.Rectangle{Max: size})
	cur := image.NewGray(image.Rectangle{Max: size})
	for i := range cur.Pix {
		prev.Pix[i] = uint8(i * 7 % 256)
		cur.Pix[i] = uint8(i * 13 % 256)
	}

	last := -1
	for thresh := 255; thresh >= 0; thresh -= 15 {
		m := newMotionHistory(uint8(thresh), 1, 0.5, 0.05)
		m.alloc(size, 1)
		m.silhouette(prev, cur)
		if last != -1 && m.moved < last {
			t.Errorf("threshold %d: moved count %d smaller than %d at higher threshold", thresh, m.moved, last)
		}
		last = m.moved
	}
	if last == 0 {
		t.Error("no motion found at the lowest threshold")
	}
}

func TestSilhouetteStrict(t *testing.T) {
	size := image.Pt(2, 1)
	prev := grayFrame(size, 100)
	cur := image.NewGray(image.Rectangle{Max: size})
	cur.Pix[0] = 130 // Difference equal to the threshold.
	cur.Pix[1] = 131

	m := newMotionHistory(30, 1, 0.5, 0.05)
	m.alloc(size, 1)
	m.silhouette(prev, cur)
	if !cmp.Equal(m.silh, []bool{false, true}) {
		t.Errorf("unexpected silhouette: %v", m.silh)
	}
}

func TestSegments(t *testing.T) {
	// Blocks of area 50, 100 and 100; the top 100 block is found first.
	small := image.Rect(2, 2, 12, 7)
	top := image.Rect(30, 5, 40, 15)
	bottom := image.Rect(5, 30, 15, 40)
	img := frame(image.Pt(50, 50), white, small, top, bottom)

	m := newMotionHistory(30, 1, 0.5, 0.05)
	m.update(img, 0.04)

	want := []Segment{
		{Rect: small, Area: 50},
		{Rect: top, Area: 100},
		{Rect: bottom, Area: 100},
	}
	if !cmp.Equal(m.segments(), want) {
		t.Errorf("unexpected segments, got: %v, want: %v", m.segments(), want)
	}

	for i := 0; i < 3; i++ {
		got, ok := m.largest()
		if !ok {
			t.Fatal("no largest segment")
		}
		if got != want[1] {
			t.Errorf("call %d: unexpected largest segment, got: %v, want: %v", i, got, want[1])
		}
	}
}

func TestSegmentsOffsetOrigin(t *testing.T) {
	full := frame(image.Pt(60, 60), white, image.Rect(30, 30, 40, 40))
	sub := full.SubImage(image.Rect(20, 20, 60, 60))

	m := newMotionHistory(30, 1, 0.5, 0.05)
	m.update(sub, 0.04)
	seg, ok := m.largest()
	if !ok {
		t.Fatal("no segment")
	}
	if want := image.Rect(30, 30, 40, 40); seg.Rect != want {
		t.Errorf("unexpected segment, got: %v, want: %v", seg.Rect, want)
	}
}

func TestMotionRealloc(t *testing.T) {
	size := image.Pt(40, 40)
	tests := []struct {
		name string
		next image.Image
		want bool
	}{
		{name: "same frame type", next: frame(size, white), want: false},
		{name: "size change", next: frame(image.Pt(40, 30), white), want: true},
		{name: "greyscale", next: grayFrame(size, 0xff), want: true},
		{name: "greyscale 16", next: image.NewGray16(image.Rectangle{Max: size}), want: true},
		{name: "colour without alpha", next: image.NewYCbCr(image.Rectangle{Max: size}, image.YCbCrSubsampleRatio420), want: false},
	}

	for _, test := range tests {
		m := newMotionHistory(30, 1, 0.5, 0.05)
		if !m.update(frame(size, white, square(5, 5, 10)), 0.04) {
			t.Fatalf("%s: first frame did not allocate", test.name)
		}
		got := m.update(test.next, 0.08)
		if got != test.want {
			t.Errorf("%s: unexpected realloc, got: %v, want: %v", test.name, got, test.want)
		}
		if m.size != test.next.Bounds().Size() || m.channels != Channels(test.next) {
			t.Errorf("%s: buffers not matched to frame, size: %v, channels: %d", test.name, m.size, m.channels)
		}
	}
}

func TestChannels(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)
	tests := []struct {
		img  image.Image
		want int
	}{
		{img: image.NewGray(r), want: 1},
		{img: image.NewGray16(r), want: 1},
		{img: image.NewRGBA(r), want: 3},
		{img: image.NewNRGBA(r), want: 3},
		{img: image.NewYCbCr(r, image.YCbCrSubsampleRatio444), want: 3},
	}
	for i, test := range tests {
		if got := Channels(test.img); got != test.want {
			t.Errorf("did not get expected result for test %d (%T), got: %d, want: %d", i, test.img, got, test.want)
		}
	}
}

func TestHistoryRetention(t *testing.T) {
	size := image.Pt(20, 20)
	empty := frame(size, black)

	m := newMotionHistory(30, 1, 0.5, 0.05)
	m.update(empty, 0.1)
	for y := 5; y < 10; y++ {
		for x := 5; x < 10; x++ {
			m.mhi[y*size.X+x] = 0.1
		}
	}

	m.update(empty, 0.5)
	if n := len(m.segments()); n != 1 {
		t.Fatalf("unexpected segment count for recent motion: %d", n)
	}

	m.update(empty, 0.7)
	if n := len(m.segments()); n != 0 {
		t.Errorf("motion older than the maximum delta still segmented: %d segments", n)
	}
	i := 5*size.X + 5
	if m.mhi[i] != 0.1 {
		t.Errorf("motion inside the duration cleared: %v", m.mhi[i])
	}

	m.update(empty, 1.2)
	if m.mhi[i] != noMotion {
		t.Errorf("motion older than the duration not cleared: %v", m.mhi[i])
	}
}

func TestSelectWindow(t *testing.T) {
	seg := image.Rect(10, 10, 30, 20)
	img := frame(image.Pt(40, 40), white, seg)

	tests := []struct {
		name   string
		motion bool
		pts    []image.Point
		want   image.Rectangle
	}{
		{name: "no motion", motion: false, want: image.Rect(0, 0, 1, 1)},
		{name: "segment", motion: true, want: seg},
		{
			name:   "points inside",
			motion: true,
			pts:    []image.Point{{12, 12}, {25, 18}, {35, 35}},
			want:   image.Rect(12, 12, 26, 19),
		},
		{
			name:   "points outside",
			motion: true,
			pts:    []image.Point{{1, 1}, {35, 35}},
			want:   image.Rect(0, 0, 1, 1),
		},
		{
			name:   "single point",
			motion: true,
			pts:    []image.Point{{15, 15}},
			want:   image.Rect(15, 15, 16, 16),
		},
		{
			name:   "collinear points",
			motion: true,
			pts:    []image.Point{{11, 14}, {20, 14}},
			want:   image.Rect(11, 14, 21, 15),
		},
	}

	for _, test := range tests {
		m := newMotionHistory(30, 1, 0.5, 0.05)
		if test.motion {
			m.update(img, 0.04)
		} else {
			m.update(frame(image.Pt(40, 40), color.Black), 0.04)
		}
		got := m.selectWindow(test.pts)
		if got != test.want {
			t.Errorf("%s: unexpected window, got: %v, want: %v", test.name, got, test.want)
		}
		if got.Dx() < 1 || got.Dy() < 1 {
			t.Errorf("%s: degenerate window: %v", test.name, got)
		}
	}
}
