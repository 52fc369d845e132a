/*
DESCRIPTION
  camshift.go provides mean shift and continuously adaptive mean shift
  (CAMShift) over a likelihood plane.

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
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// camShiftTolerance is the margin by which the converged mean shift window is
// grown before the region's moments are measured.
const camShiftTolerance = 10

// minMass is the smallest zeroth moment considered non-empty.
const minMass = 1e-12

// Box is an oriented rectangle describing the best fit ellipse of the tracked
// region.
type Box struct {
	Center r2.Vec
	Size   r2.Vec  // Width (minor axis) and height (major axis).
	Angle  float64 // Degrees.
}

// criteria holds the termination criteria of mean shift.
type criteria struct {
	maxIter int
	eps     float64
}

// plane is a row major likelihood image with its origin at (0, 0).
type plane struct {
	w, h int
	pix  []float64
}

func (p *plane) bounds() image.Rectangle {
	return image.Rect(0, 0, p.w, p.h)
}

// moments holds raw moments up to first order and central moments of second
// order of a region, relative to the region's top left corner.
type moments struct {
	m00, m10, m01    float64
	mu20, mu11, mu02 float64
}

func (p *plane) moments(r image.Rectangle) moments {
	var m moments
	var m20, m11, m02 float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.pix[y*p.w : (y+1)*p.w]
		fy := float64(y - r.Min.Y)
		for x := r.Min.X; x < r.Max.X; x++ {
			v := row[x]
			if v == 0 {
				continue
			}
			fx := float64(x - r.Min.X)
			m.m00 += v
			m.m10 += v * fx
			m.m01 += v * fy
			m20 += v * fx * fx
			m11 += v * fx * fy
			m02 += v * fy * fy
		}
	}
	if m.m00 < minMass {
		return m
	}
	cx, cy := m.m10/m.m00, m.m01/m.m00
	m.mu20 = m20 - cx*m.m10
	m.mu11 = m11 - cx*m.m01
	m.mu02 = m02 - cy*m.m01
	return m
}

// meanShift moves win to the centre of mass of p beneath it until the shift
// falls under the criteria's epsilon or the iterations are exhausted. The
// window keeps its size and is kept inside the plane.
func meanShift(p *plane, win image.Rectangle, c criteria) image.Rectangle {
	eps := math.RoundToEven(c.eps * c.eps)
	size := win.Size()
	cur := win
	for i := 0; i < c.maxIter; i++ {
		cur = cur.Intersect(p.bounds())
		if cur.Empty() {
			cur = image.Rect(p.w/2, p.h/2, p.w/2, p.h/2)
		}
		if cur.Dx() < 1 {
			cur.Max.X = cur.Min.X + 1
		}
		if cur.Dy() < 1 {
			cur.Max.Y = cur.Min.Y + 1
		}

		m := p.moments(cur)
		if m.m00 < minMass {
			break
		}

		dx := int(math.RoundToEven(m.m10/m.m00 - float64(size.X)*0.5))
		dy := int(math.RoundToEven(m.m01/m.m00 - float64(size.Y)*0.5))
		nx := min(max(cur.Min.X+dx, 0), p.w-cur.Dx())
		ny := min(max(cur.Min.Y+dy, 0), p.h-cur.Dy())
		dx, dy = nx-cur.Min.X, ny-cur.Min.Y
		cur = cur.Add(image.Pt(dx, dy))

		if float64(dx*dx+dy*dy) < eps {
			break
		}
	}
	return cur
}

// camShift runs mean shift from win and then adapts the window size and
// orientation to the second order moments of the region found. It returns
// the window to search from on the next frame and the oriented box of the
// region. If the region holds no mass the box is zero and the window is the
// mean shift window grown by the tolerance.
func camShift(p *plane, win image.Rectangle, c criteria) (image.Rectangle, Box) {
	win = meanShift(p, win, c)

	win = image.Rect(
		max(win.Min.X-camShiftTolerance, 0),
		max(win.Min.Y-camShiftTolerance, 0),
		min(win.Max.X+camShiftTolerance, p.w),
		min(win.Max.Y+camShiftTolerance, p.h),
	)

	m := p.moments(win)
	if m.m00 < minMass {
		return win, Box{}
	}

	xc := int(math.RoundToEven(m.m10/m.m00 + float64(win.Min.X)))
	yc := int(math.RoundToEven(m.m01/m.m00 + float64(win.Min.Y)))

	// The eigenvectors of the normalised covariance give the axes of the
	// best fit ellipse; its half axes are twice the standard deviations.
	a, b, cc := m.mu20/m.m00, m.mu11/m.m00, m.mu02/m.m00
	var es mat.EigenSym
	var major, minor, theta float64
	if es.Factorize(mat.NewSymDense(2, []float64{a, b, b, cc}), true) {
		vals := es.Values(nil) // Ascending.
		var vecs mat.Dense
		es.VectorsTo(&vecs)
		major = 4 * math.Sqrt(math.Max(vals[1], 0))
		minor = 4 * math.Sqrt(math.Max(vals[0], 0))
		theta = math.Atan2(vecs.At(1, 1), vecs.At(0, 1))
	}
	cs, sn := math.Cos(theta), math.Sin(theta)

	t0 := int(math.RoundToEven(math.Abs(major * cs)))
	t1 := int(math.RoundToEven(math.Abs(minor * sn)))
	w := min(max(t0, t1)+2, (p.w-xc)*2)

	t0 = int(math.RoundToEven(math.Abs(major * sn)))
	t1 = int(math.RoundToEven(math.Abs(minor * cs)))
	h := min(max(t0, t1)+2, (p.h-yc)*2)

	x := max(0, xc-w/2)
	y := max(0, yc-h/2)
	w = min(p.w-x, w)
	h = min(p.h-y, h)
	win = image.Rect(x, y, x+w, y+h)

	angle := (math.Pi/2 + theta) * 180 / math.Pi
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle >= 180 {
		angle -= 180
	}

	return win, Box{
		Center: r2.Vec{X: float64(x) + float64(w)/2, Y: float64(y) + float64(h)/2},
		Size:   r2.Vec{X: minor, Y: major},
		Angle:  angle,
	}
}
