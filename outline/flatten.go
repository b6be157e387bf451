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

package outline

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Polygons approximates p by closed polygons.  Curves are replaced by line
// segments which deviate from the curve by at most tol.
// Subpaths with fewer than three vertices are omitted.
func (p *Path) Polygons(tol float64) [][]vec.Vec2 {
	var res [][]vec.Vec2
	var cur []vec.Vec2
	flush := func() {
		if len(cur) > 1 && cur[len(cur)-1] == cur[0] {
			cur = cur[:len(cur)-1]
		}
		if len(cur) >= 3 {
			res = append(res, cur)
		}
		cur = nil
	}
	var last, start vec.Vec2
	for cmd, pts := range p.Iter() {
		switch cmd {
		case path.CmdMoveTo:
			flush()
			last, start = pts[0], pts[0]
			cur = append(cur, last)
		case path.CmdLineTo:
			if cur == nil {
				cur = append(cur, last)
			}
			last = pts[0]
			cur = append(cur, last)
		case path.CmdQuadTo:
			if cur == nil {
				cur = append(cur, last)
			}
			c1 := last.Add(pts[0].Sub(last).Mul(2.0 / 3))
			c2 := pts[1].Add(pts[0].Sub(pts[1]).Mul(2.0 / 3))
			cur = flattenCubic(cur, last, c1, c2, pts[1], tol)
			last = pts[1]
		case path.CmdCubeTo:
			if cur == nil {
				cur = append(cur, last)
			}
			cur = flattenCubic(cur, last, pts[0], pts[1], pts[2], tol)
			last = pts[2]
		case path.CmdClose:
			flush()
			last = start
		}
	}
	flush()
	return res
}

// flattenCubic appends the end points of a polyline approximating the given
// cubic Bézier curve to dst.  The number of segments is chosen using Wang's
// formula.
func flattenCubic(dst []vec.Vec2, p0, p1, p2, p3 vec.Vec2, tol float64) []vec.Vec2 {
	if tol <= 0 {
		tol = 0.01
	}
	dd1 := p0.Sub(p1.Mul(2)).Add(p2)
	dd2 := p1.Sub(p2.Mul(2)).Add(p3)
	m := math.Max(dd1.Length(), dd2.Length())
	n := int(math.Ceil(math.Sqrt(3 * m / (4 * tol))))
	if n < 1 {
		n = 1
	} else if n > 100 {
		n = 100
	}
	for i := 1; i <= n; i++ {
		dst = append(dst, cubicAt(p0, p1, p2, p3, float64(i)/float64(n)))
	}
	return dst
}
