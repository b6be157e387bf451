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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pssvg/outline"
)

func area(p *outline.Path) float64 {
	total := 0.0
	for _, poly := range p.Polygons(0.001) {
		a := 0.0
		for i, p0 := range poly {
			p1 := poly[(i+1)%len(poly)]
			a += p0.X*p1.Y - p1.X*p0.Y
		}
		total += a / 2
	}
	return total
}

func TestIntersect(t *testing.T) {
	var c SlabClipper
	res := c.Intersect(rectPath(0, 0, 2, 2), rectPath(1, 1, 3, 3))
	want := rect.Rect{LLx: 1, LLy: 1, URx: 2, URy: 2}
	if d := cmp.Diff(want, res.BBox().Rect(), cmpopts.EquateApprox(0, 1e-9)); d != "" {
		t.Error(d)
	}
	if a := area(res); math.Abs(a-1) > 1e-9 {
		t.Errorf("area %g, want 1", a)
	}
	if res.Rule != outline.NonZero {
		t.Error("result must use the nonzero rule")
	}
}

func TestUnite(t *testing.T) {
	var c SlabClipper
	res := c.Unite(rectPath(0, 0, 2, 2), rectPath(1, 1, 3, 3))
	if a := area(res); math.Abs(a-7) > 1e-9 {
		t.Errorf("area %g, want 7", a)
	}
}

func TestDisjoint(t *testing.T) {
	var c SlabClipper
	res := c.Intersect(rectPath(0, 0, 1, 1), rectPath(5, 5, 6, 6))
	if !res.Empty() {
		t.Errorf("got %s", res.SVG(false))
	}
}

func TestEvenOdd(t *testing.T) {
	// a square with a hole, given as two nested squares
	ring := rectPath(0, 0, 4, 4)
	ring.Prepend(rectPath(1, 1, 3, 3))
	ring.Rule = outline.EvenOdd

	var c SlabClipper
	res := c.Intersect(ring, rectPath(0, 0, 4, 4))
	if a := area(res); math.Abs(a-12) > 1e-9 {
		t.Errorf("area %g, want 12", a)
	}

	ring.Rule = outline.NonZero
	res = c.Intersect(ring, rectPath(0, 0, 4, 4))
	if a := area(res); math.Abs(a-16) > 1e-9 {
		t.Errorf("area %g, want 16", a)
	}
}

func TestCrossingEdges(t *testing.T) {
	// two triangles whose edges cross away from any vertex
	a := &outline.Path{}
	a.MoveTo(0, 0)
	a.LineTo(4, 0)
	a.LineTo(2, 4)
	a.Close()
	b := &outline.Path{}
	b.MoveTo(0, 4)
	b.LineTo(4, 4)
	b.LineTo(2, 0)
	b.Close()

	var c SlabClipper
	res := c.Intersect(a, b)
	// the intersection is a rhombus with diagonals 2 and 4
	if got := area(res); math.Abs(got-4) > 1e-9 {
		t.Errorf("area %g, want 4", got)
	}
}
