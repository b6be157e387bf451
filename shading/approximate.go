// seehuhn.de/go/pssvg - render PostScript graphics as SVG
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shading

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/outline"
)

// Approximate splits the patch into gridSize×gridSize segments and calls cb
// for each of them, with the segment colored by the patch color at its
// center.  Patches with a single color are reported as one segment.
//
// If overlap is set, each segment of a tensor-product patch is enlarged to
// cover the following segment in both parameter directions, so that no
// gaps appear between adjacent segments in renderers using anti-aliasing.
// Bézier curves whose control points lie within delta of the chord are
// replaced by straight lines.
func (p *Patch) Approximate(gridSize int, overlap bool, delta float64, cb Callback) {
	if gridSize < 1 {
		gridSize = 1
	}
	if p.uniform() {
		cb(p.Boundary(), p.color(p.cols[0]))
		return
	}
	if p.Type.triangular() {
		p.approximateTriangle(gridSize, cb)
	} else {
		p.approximateTensor(gridSize, overlap, delta, cb)
	}
}

func (p *Patch) approximateTriangle(n int, cb Callback) {
	a, b, c := p.pts[0], p.pts[1], p.pts[2]
	vertex := func(i, j int) vec.Vec2 {
		return a.Add(b.Sub(a).Mul(float64(i) / float64(n))).Add(c.Sub(a).Mul(float64(j) / float64(n)))
	}
	emit := func(i1, j1, i2, j2, i3, j3 int) {
		seg := &outline.Path{}
		moveTo(seg, vertex(i1, j1))
		lineTo(seg, vertex(i2, j2))
		lineTo(seg, vertex(i3, j3))
		seg.Close()

		// barycentric coordinates of the centroid
		s := float64(i1+i2+i3) / float64(3*n)
		t := float64(j1+j2+j3) / float64(3*n)
		comps := mix(p.cols[:3], []float64{1 - s - t, s, t})
		cb(seg, p.color(comps))
	}
	for j := range n {
		for i := 0; i+j < n; i++ {
			emit(i, j, i+1, j, i, j+1)
			if i+j < n-1 {
				emit(i+1, j, i+1, j+1, i, j+1)
			}
		}
	}
}

func (p *Patch) approximateTensor(n int, overlap bool, delta float64, cb Callback) {
	g := p.grid()
	step := 1 / float64(n)
	for iu := range n {
		u0 := float64(iu) * step
		u1 := u0 + step
		for iv := range n {
			v0 := float64(iv) * step
			v1 := v0 + step

			uc, vc := (u0+u1)/2, (v0+v1)/2
			comps := mix(p.cols[:], []float64{
				(1 - uc) * (1 - vc),
				(1 - uc) * vc,
				uc * vc,
				uc * (1 - vc),
			})

			eu, ev := u1, v1
			if overlap {
				eu = math.Min(1, u0+2*step)
				ev = math.Min(1, v0+2*step)
			}
			q := subPatch(&g, u0, eu, v0, ev)
			cb(segmentPath(&q, delta), p.color(comps))
		}
	}
}

// subPatch returns the control net of the part of a tensor-product patch
// with u in [u0, u1] and v in [v0, v1].
func subPatch(g *[4][4]vec.Vec2, u0, u1, v0, v1 float64) [4][4]vec.Vec2 {
	var tmp, res [4][4]vec.Vec2
	for j := range 4 {
		c := subCurve([4]vec.Vec2{g[0][j], g[1][j], g[2][j], g[3][j]}, u0, u1)
		for i := range 4 {
			tmp[i][j] = c[i]
		}
	}
	for i := range 4 {
		res[i] = subCurve(tmp[i], v0, v1)
	}
	return res
}

// subCurve returns the control points of the part of a cubic Bézier curve
// with parameter in [t0, t1].
func subCurve(c [4]vec.Vec2, t0, t1 float64) [4]vec.Vec2 {
	if t1 < 1 {
		c, _ = splitCurve(c, t1)
	}
	if t0 > 0 && t1 > 0 {
		_, c = splitCurve(c, t0/t1)
	}
	return c
}

func splitCurve(c [4]vec.Vec2, t float64) (left, right [4]vec.Vec2) {
	lerp := func(a, b vec.Vec2) vec.Vec2 {
		return a.Add(b.Sub(a).Mul(t))
	}
	p01 := lerp(c[0], c[1])
	p12 := lerp(c[1], c[2])
	p23 := lerp(c[2], c[3])
	p012 := lerp(p01, p12)
	p123 := lerp(p12, p23)
	m := lerp(p012, p123)
	return [4]vec.Vec2{c[0], p01, p012, m}, [4]vec.Vec2{m, p123, p23, c[3]}
}

func segmentPath(q *[4][4]vec.Vec2, delta float64) *outline.Path {
	seg := &outline.Path{}
	moveTo(seg, q[0][0])
	edges := [4][4]vec.Vec2{
		{q[0][0], q[1][0], q[2][0], q[3][0]},
		{q[3][0], q[3][1], q[3][2], q[3][3]},
		{q[3][3], q[2][3], q[1][3], q[0][3]},
		{q[0][3], q[0][2], q[0][1], q[0][0]},
	}
	for _, e := range edges {
		if isFlat(e, delta) {
			lineTo(seg, e[3])
		} else {
			cubeTo(seg, e[1], e[2], e[3])
		}
	}
	seg.Close()
	return seg
}

// isFlat reports whether both inner control points of a cubic curve are
// within delta of the line through its end points.
func isFlat(c [4]vec.Vec2, delta float64) bool {
	d := c[3].Sub(c[0])
	l := d.Length()
	for _, pt := range c[1:3] {
		r := pt.Sub(c[0])
		var dist float64
		if l == 0 {
			dist = r.Length()
		} else {
			dist = math.Abs(d.X*r.Y-d.Y*r.X) / l
		}
		if dist > delta {
			return false
		}
	}
	return true
}
