package scanning

import (
	"image"
	"math"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type point struct{ X, Y float64 }

// inkHullCandidates returns the leftmost and rightmost ink pixel of every
// row. Every vertex of the ink convex hull is among them.
func inkHullCandidates(bin *image.Gray) []point {
	w, h := bin.Rect.Dx(), bin.Rect.Dy()
	var pts []point
	for y := 0; y < h; y++ {
		row := bin.Pix[y*bin.Stride : y*bin.Stride+w]
		left, right := -1, -1
		for x, v := range row {
			if v < 128 {
				if left < 0 {
					left = x
				}
				right = x
			}
		}
		if left < 0 {
			continue
		}
		pts = append(pts, point{float64(left), float64(y)})
		if right != left {
			pts = append(pts, point{float64(right), float64(y)})
		}
	}
	return pts
}

func cross(o, a, b point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// convexHull is Andrew's monotone chain; the result is counter-clockwise
// without the closing point.
func convexHull(pts []point) []point {
	if len(pts) < 3 {
		return pts
	}
	sorted := append([]point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// minAreaRectAngle returns the edge angle, in radians, of the smallest
// rectangle enclosing hull. One side of that rectangle is collinear with a
// hull edge.
func minAreaRectAngle(hull []point) float64 {
	best := math.Inf(1)
	bestAngle := 0.0
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		theta := math.Atan2(b.Y-a.Y, b.X-a.X)
		ux, uy := math.Cos(theta), math.Sin(theta)

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := p.X*ux + p.Y*uy
			v := -p.X*uy + p.Y*ux
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		if area := (maxU - minU) * (maxV - minV); area < best {
			best = area
			bestAngle = theta
		}
	}
	return bestAngle
}

// estimateSkew returns the tilt of the ink block in degrees, within
// (-45, 45]. Positive angles tilt clockwise on screen. ok is false when there
// is too little ink to judge.
func estimateSkew(bin *image.Gray) (angle float64, ok bool) {
	hull := convexHull(inkHullCandidates(bin))
	if len(hull) < 3 {
		return 0, false
	}
	angle = minAreaRectAngle(hull) * 180 / math.Pi
	for angle > 45 {
		angle -= 90
	}
	for angle <= -45 {
		angle += 90
	}
	return angle, true
}

// rotate turns bin by -angle degrees about its centre so a block tilted by
// angle becomes level. Uncovered pixels stay white and the output is
// re-binarised.
func rotate(bin *image.Gray, angle float64) *image.Gray {
	b := bin.Bounds()
	dst := image.NewGray(b)
	for i := range dst.Pix {
		dst.Pix[i] = white
	}

	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(b.Dx())/2, float64(b.Dy())/2
	s2d := f64.Aff3{
		cos, sin, cx - (cos*cx + sin*cy),
		-sin, cos, cy - (-sin*cx + cos*cy),
	}
	draw.CatmullRom.Transform(dst, s2d, bin, b, draw.Src, nil)

	for i, v := range dst.Pix {
		if v < 128 {
			dst.Pix[i] = black
		} else {
			dst.Pix[i] = white
		}
	}
	return dst
}
