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

// Package bbox implements axis-parallel bounding boxes which keep track of
// whether they enclose anything at all.
package bbox

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pssvg/transform"
)

// Box is a bounding box.  The zero value is an empty (invalid) box.
//
// A locked box ignores all modifications until it is unlocked again.
type Box struct {
	r      rect.Rect
	valid  bool
	locked bool
}

// New returns the box with corners (x1, y1) and (x2, y2).
// The corners may be given in any order.
func New(x1, y1, x2, y2 float64) Box {
	return Box{
		r: rect.Rect{
			LLx: math.Min(x1, x2),
			LLy: math.Min(y1, y2),
			URx: math.Max(x1, x2),
			URy: math.Max(y1, y2),
		},
		valid: true,
	}
}

// FromRect returns the box covering r.
func FromRect(r rect.Rect) Box {
	return New(r.LLx, r.LLy, r.URx, r.URy)
}

// Valid reports whether b encloses at least one point.
func (b Box) Valid() bool {
	return b.valid
}

// Rect returns the extent of b.  The result is zero for invalid boxes.
func (b Box) Rect() rect.Rect {
	return b.r
}

// Width returns the horizontal extent of b.
func (b Box) Width() float64 {
	return b.r.URx - b.r.LLx
}

// Height returns the vertical extent of b.
func (b Box) Height() float64 {
	return b.r.URy - b.r.LLy
}

// MinX returns the smallest x coordinate covered by b.
func (b Box) MinX() float64 { return b.r.LLx }

// MinY returns the smallest y coordinate covered by b.
func (b Box) MinY() float64 { return b.r.LLy }

// MaxX returns the largest x coordinate covered by b.
func (b Box) MaxX() float64 { return b.r.URx }

// MaxY returns the largest y coordinate covered by b.
func (b Box) MaxY() float64 { return b.r.URy }

// EmbedPoint enlarges b to include p.
func (b *Box) EmbedPoint(p vec.Vec2) {
	if b.locked {
		return
	}
	if !b.valid {
		b.r = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
		b.valid = true
		return
	}
	b.r.LLx = math.Min(b.r.LLx, p.X)
	b.r.LLy = math.Min(b.r.LLy, p.Y)
	b.r.URx = math.Max(b.r.URx, p.X)
	b.r.URy = math.Max(b.r.URy, p.Y)
}

// Embed enlarges b to include other.
func (b *Box) Embed(other Box) {
	if b.locked || !other.valid {
		return
	}
	b.EmbedPoint(vec.Vec2{X: other.r.LLx, Y: other.r.LLy})
	b.EmbedPoint(vec.Vec2{X: other.r.URx, Y: other.r.URy})
}

// Intersect shrinks b to its intersection with other.
// If the boxes are disjoint, b becomes invalid and false is returned.
func (b *Box) Intersect(other Box) bool {
	if b.locked {
		return b.valid
	}
	if !b.valid || !other.valid {
		return false
	}
	if b.r.URx < other.r.LLx || b.r.URy < other.r.LLy ||
		b.r.LLx > other.r.URx || b.r.LLy > other.r.URy {
		*b = Box{}
		return false
	}
	b.r.LLx = math.Max(b.r.LLx, other.r.LLx)
	b.r.LLy = math.Max(b.r.LLy, other.r.LLy)
	b.r.URx = math.Min(b.r.URx, other.r.URx)
	b.r.URy = math.Min(b.r.URy, other.r.URy)
	return true
}

// Expand grows b by d in every direction.
func (b *Box) Expand(d float64) {
	if b.locked || !b.valid {
		return
	}
	b.r.LLx -= d
	b.r.LLy -= d
	b.r.URx += d
	b.r.URy += d
}

// Transform replaces b by the bounding box of its image under m.
func (b *Box) Transform(m transform.Matrix) {
	if b.locked || !b.valid {
		return
	}
	corners := [4]vec.Vec2{
		{X: b.r.LLx, Y: b.r.LLy},
		{X: b.r.URx, Y: b.r.LLy},
		{X: b.r.URx, Y: b.r.URy},
		{X: b.r.LLx, Y: b.r.URy},
	}
	*b = Box{}
	for _, c := range corners {
		b.EmbedPoint(m.Apply(c))
	}
}

// Lock freezes b.
func (b *Box) Lock() { b.locked = true }

// Unlock allows b to be modified again.
func (b *Box) Unlock() { b.locked = false }

// Locked reports whether b is locked.
func (b Box) Locked() bool { return b.locked }
