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

package clip

import (
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/outline"
)

// Clipper computes boolean combinations of clipping paths.
type Clipper interface {
	// Unite returns the union of the areas enclosed by a and b.
	Unite(a, b *outline.Path) *outline.Path

	// Intersect returns the intersection of the areas enclosed by a and b.
	Intersect(a, b *outline.Path) *outline.Path
}

// SlabClipper implements Clipper for polygonal approximations of the input
// paths.  The plane is cut into horizontal slabs at all vertices and edge
// crossings; inside each slab the area is a union of trapezoids, which are
// merged vertically where possible.
//
// The result always uses the nonzero winding rule.
type SlabClipper struct {
	// Tolerance is the maximal distance between a curve and its polygonal
	// approximation.  If zero, 0.01 is used.
	Tolerance float64
}

// Unite implements the [Clipper] interface.
func (c SlabClipper) Unite(a, b *outline.Path) *outline.Path {
	return c.combine(a, b, func(inA, inB bool) bool { return inA || inB })
}

// Intersect implements the [Clipper] interface.
func (c SlabClipper) Intersect(a, b *outline.Path) *outline.Path {
	return c.combine(a, b, func(inA, inB bool) bool { return inA && inB })
}

type edge struct {
	p0, p1  vec.Vec2 // p0.Y < p1.Y
	dir     int      // +1 if the original edge pointed upwards
	operand int      // 0 or 1
}

func (e *edge) xAt(y float64) float64 {
	if e.p1.Y == e.p0.Y {
		return e.p0.X
	}
	t := (y - e.p0.Y) / (e.p1.Y - e.p0.Y)
	return e.p0.X + t*(e.p1.X-e.p0.X)
}

type trapezoid struct {
	left, right int // edge indices
	y0, y1      float64
}

func (c SlabClipper) combine(a, b *outline.Path, op func(inA, inB bool) bool) *outline.Path {
	tol := c.Tolerance
	if tol <= 0 {
		tol = 0.01
	}

	var edges []edge
	rules := [2]outline.WindingRule{}
	for k, p := range [2]*outline.Path{a, b} {
		if p == nil {
			continue
		}
		rules[k] = p.Rule
		for _, poly := range p.Polygons(tol) {
			for i, p0 := range poly {
				p1 := poly[(i+1)%len(poly)]
				switch {
				case p0.Y < p1.Y:
					edges = append(edges, edge{p0, p1, 1, k})
				case p0.Y > p1.Y:
					edges = append(edges, edge{p1, p0, -1, k})
				}
			}
		}
	}

	ys := make([]float64, 0, 2*len(edges))
	for _, e := range edges {
		ys = append(ys, e.p0.Y, e.p1.Y)
	}
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if y, ok := crossingY(&edges[i], &edges[j]); ok {
				ys = append(ys, y)
			}
		}
	}
	sort.Float64s(ys)
	ys = dedup(ys)

	inside := func(w int, rule outline.WindingRule) bool {
		if rule == outline.EvenOdd {
			return w%2 != 0
		}
		return w != 0
	}

	var done []trapezoid
	var open []trapezoid
	var active []int
	for s := 0; s+1 < len(ys); s++ {
		y0, y1 := ys[s], ys[s+1]
		ym := (y0 + y1) / 2

		active = active[:0]
		for i := range edges {
			e := &edges[i]
			if e.p0.Y <= ym && e.p1.Y > ym {
				active = append(active, i)
			}
		}
		sort.Slice(active, func(i, j int) bool {
			return edges[active[i]].xAt(ym) < edges[active[j]].xAt(ym)
		})

		var next []trapezoid
		var w [2]int
		in := false
		left := -1
		for _, idx := range active {
			e := &edges[idx]
			w[e.operand] += e.dir
			now := op(inside(w[0], rules[0]), inside(w[1], rules[1]))
			if now && !in {
				left = idx
			} else if !now && in {
				next = append(next, trapezoid{left: left, right: idx, y0: y0, y1: y1})
			}
			in = now
		}

		// continue trapezoids bounded by the same pair of edges
		for i := range next {
			for j := range open {
				if open[j].left == next[i].left && open[j].right == next[i].right && open[j].y1 == y0 {
					next[i].y0 = open[j].y0
					open[j].left = -1
					break
				}
			}
		}
		for _, t := range open {
			if t.left >= 0 {
				done = append(done, t)
			}
		}
		open = next
	}
	done = append(done, open...)

	res := &outline.Path{}
	for _, t := range done {
		l, r := &edges[t.left], &edges[t.right]
		pts := []vec.Vec2{
			{X: l.xAt(t.y0), Y: t.y0},
			{X: r.xAt(t.y0), Y: t.y0},
			{X: r.xAt(t.y1), Y: t.y1},
			{X: l.xAt(t.y1), Y: t.y1},
		}
		appendPolygon(res, pts)
	}
	return res
}

func appendPolygon(p *outline.Path, pts []vec.Vec2) {
	var poly []vec.Vec2
	for _, pt := range pts {
		if len(poly) > 0 && near(poly[len(poly)-1], pt) {
			continue
		}
		poly = append(poly, pt)
	}
	if len(poly) > 1 && near(poly[0], poly[len(poly)-1]) {
		poly = poly[:len(poly)-1]
	}
	if len(poly) < 3 {
		return
	}
	p.MoveTo(poly[0].X, poly[0].Y)
	for _, pt := range poly[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
}

// crossingY returns the y coordinate where the interiors of two edges
// cross.
func crossingY(a, b *edge) (float64, bool) {
	if a.p1.Y <= b.p0.Y || b.p1.Y <= a.p0.Y {
		return 0, false
	}
	r := a.p1.Sub(a.p0)
	s := b.p1.Sub(b.p0)
	denom := r.X*s.Y - r.Y*s.X
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	q := b.p0.Sub(a.p0)
	t := (q.X*s.Y - q.Y*s.X) / denom
	u := (q.X*r.Y - q.Y*r.X) / denom
	if t <= 0 || t >= 1 || u <= 0 || u >= 1 {
		return 0, false
	}
	return a.p0.Y + t*r.Y, true
}

func dedup(ys []float64) []float64 {
	const eps = 1e-9
	out := ys[:0]
	for _, y := range ys {
		if len(out) > 0 && y-out[len(out)-1] < eps {
			continue
		}
		out = append(out, y)
	}
	return out
}

func near(a, b vec.Vec2) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}
